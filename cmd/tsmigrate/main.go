package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"tsmigrate/internal/config"
	"tsmigrate/internal/mapping"
)

const version = "0.3.0"

var (
	configPath string
	verbose    bool

	logger *zap.Logger
	cfg    *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "tsmigrate",
	Short: "Migrate legacy hardware-diagnostic tests to the TNG framework",
	Long: `tsmigrate translates legacy TServer diagnostic tests into the TNG
framework in two stages: extraction distills each C++ test (plus its XML
descriptor) into a YAML specification, and generation renders that
specification into a compilable TNG skeleton with a migration guide.

The skeleton is deterministic; wherever translation needs judgement the
tool marks the spot for manual review instead of guessing.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		zcfg := zap.NewProductionConfig()
		if verbose {
			zcfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
		}
		var err error
		logger, err = zcfg.Build()
		if err != nil {
			return fmt.Errorf("initialize logger: %w", err)
		}

		cfg, err = config.Load(configPath)
		if err != nil {
			return err
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the tsmigrate version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("tsmigrate %s\n", version)
	},
}

func main() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", config.DefaultPath, "config file path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(extractCmd)
	rootCmd.AddCommand(generateCmd)
	rootCmd.AddCommand(guideCmd)
	rootCmd.AddCommand(translateCmd)
	rootCmd.AddCommand(batchCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(ipsCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(watchCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// loadTable resolves the mapping table: an explicit flag wins, then the
// config override, then the built-in default.
func loadTable(flagPath string) (*mapping.Table, error) {
	path := flagPath
	if path == "" {
		path = cfg.Output.Mappings
	}
	if path == "" {
		return mapping.Default(), nil
	}
	return mapping.Load(path)
}
