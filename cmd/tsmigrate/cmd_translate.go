package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"tsmigrate/internal/batch"
	"tsmigrate/internal/discover"
)

var (
	translateOutDir  string
	translateRefDir  string
	translateNoGuide bool
	translateMaps    string
)

var translateCmd = &cobra.Command{
	Use:   "translate <test.cpp>",
	Short: "Run the full pipeline for a single legacy test",
	Long: `Extracts the specification, generates the TNG skeleton, and writes
the migration guide for one legacy test. Outputs land in a subdirectory of
the output directory named after the source file.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		scanner, err := discover.NewScanner(logger, cfg.Exclude.Dirs, cfg.Exclude.Files)
		if err != nil {
			return err
		}
		test, ok := scanner.Analyze(args[0])
		if !ok {
			return fmt.Errorf("%s does not look like a legacy framework test", args[0])
		}

		table, err := loadTable(translateMaps)
		if err != nil {
			return err
		}

		outDir := translateOutDir
		if outDir == "" {
			outDir = cfg.Output.Dir
		}
		proc := batch.NewProcessor(logger, table, batch.Options{
			OutputDir:    outDir,
			Guide:        !translateNoGuide,
			ReferenceDir: translateRefDir,
		})

		result := proc.TranslateOne(test)
		if !result.Success {
			return fmt.Errorf("translate %s: %s", args[0], result.Error)
		}

		fmt.Printf("Spec:     %s\n", result.SpecFile)
		fmt.Printf("Skeleton: %s\n", result.SkeletonFile)
		if result.GuideFile != "" {
			fmt.Printf("Guide:    %s\n", result.GuideFile)
		}
		if len(result.NeedsReview) > 0 {
			fmt.Printf("Variations needing manual review: %v\n", result.NeedsReview)
		}
		return nil
	},
}

func init() {
	translateCmd.Flags().StringVarP(&translateOutDir, "out-dir", "o", "", "output directory (default from config)")
	translateCmd.Flags().BoolVar(&translateNoGuide, "no-guide", false, "skip the migration guide")
	translateCmd.Flags().StringVar(&translateRefDir, "reference-dir", "", "directory searched for existing TNG reference tests")
	translateCmd.Flags().StringVar(&translateMaps, "mappings", "", "mapping table YAML (default: built-in)")
}
