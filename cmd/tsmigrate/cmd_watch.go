package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"tsmigrate/internal/batch"
	"tsmigrate/internal/discover"
	"tsmigrate/internal/observability"
	"tsmigrate/internal/watch"
)

var (
	watchOutDir      string
	watchMaps        string
	watchMetricsAddr string
)

var watchCmd = &cobra.Command{
	Use:   "watch [root]",
	Short: "Re-translate legacy tests when their sources change",
	Long: `Watches the suite tree and re-runs the pipeline for any legacy test
whose .cpp or .xml file changes. Events are debounced so an editor save
storm produces one run.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		root := cfg.Paths.TServerRoot
		if len(args) == 1 {
			root = args[0]
		}
		if root == "" {
			return fmt.Errorf("no root directory: pass one or set paths.tserver_root")
		}

		scanner, err := discover.NewScanner(logger, cfg.Exclude.Dirs, cfg.Exclude.Files)
		if err != nil {
			return err
		}
		table, err := loadTable(watchMaps)
		if err != nil {
			return err
		}

		outDir := watchOutDir
		if outDir == "" {
			outDir = cfg.Output.Dir
		}
		proc := batch.NewProcessor(logger, table, batch.Options{
			OutputDir: outDir,
			Guide:     cfg.Output.Guide,
		})

		onChange := func(paths []string) {
			for _, p := range paths {
				cpp := p
				if strings.HasSuffix(cpp, ".xml") {
					// A descriptor change re-runs its sibling test source.
					cpp = strings.TrimSuffix(cpp, ".xml") + ".cpp"
				}
				test, ok := scanner.Analyze(cpp)
				if !ok {
					logger.Debug("changed file is not a legacy test", zap.String("path", p))
					continue
				}
				result := proc.TranslateOne(test)
				if result.Success {
					logger.Info("re-translated", zap.String("source", cpp), zap.String("skeleton", result.SkeletonFile))
				} else {
					logger.Warn("re-translation failed", zap.String("source", cpp), zap.String("error", result.Error))
				}
			}
		}

		w, err := watch.New(logger, cfg.Watch.Debounce, cfg.Exclude.Dirs, cfg.Exclude.Files, onChange)
		if err != nil {
			return err
		}
		defer w.Close()

		if err := w.Watch([]string{root}); err != nil {
			return err
		}
		logger.Info("watching", zap.String("root", root), zap.Duration("debounce", cfg.Watch.Debounce))

		if watchMetricsAddr != "" {
			srv := observability.NewServer(watchMetricsAddr, logger)
			srv.Start()
			defer func() {
				ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
				defer cancel()
				_ = srv.Stop(ctx)
			}()
		}

		sig := make(chan os.Signal, 1)
		signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
		<-sig
		logger.Info("shutting down")
		return nil
	},
}

func init() {
	watchCmd.Flags().StringVarP(&watchOutDir, "out-dir", "o", "", "output directory (default from config)")
	watchCmd.Flags().StringVar(&watchMaps, "mappings", "", "mapping table YAML (default: built-in)")
	watchCmd.Flags().StringVar(&watchMetricsAddr, "metrics-addr", "", "serve /metrics and /health on this address")
}
