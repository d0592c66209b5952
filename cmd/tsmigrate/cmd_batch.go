package main

import (
	"fmt"
	"os"
	"path/filepath"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"tsmigrate/internal/batch"
	"tsmigrate/internal/discover"
	"tsmigrate/internal/history"
)

var (
	batchOutDir  string
	batchWorkers int
	batchNoGuide bool
	batchRefDir  string
	batchMaps    string
	batchReport  string
	batchIP      string
)

var batchCmd = &cobra.Command{
	Use:   "batch [root]",
	Short: "Translate every legacy test under a directory",
	Long: `Discovers legacy tests under the root directory and runs the full
pipeline for each across a worker pool. One test's failure never stops the
others. A markdown report summarizes the run, and outcomes are recorded in
the history database.

With --ip the root is resolved from the configured IP block's suite
directories instead of the command line.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		roots, err := batchRoots(args)
		if err != nil {
			return err
		}

		scanner, err := discover.NewScanner(logger, cfg.Exclude.Dirs, cfg.Exclude.Files)
		if err != nil {
			return err
		}

		table, err := loadTable(batchMaps)
		if err != nil {
			return err
		}

		outDir := batchOutDir
		if outDir == "" {
			outDir = cfg.Output.Dir
		}
		workers := batchWorkers
		if workers <= 0 {
			workers = cfg.Output.Workers
		}

		var store *history.Store
		if cfg.History.Enabled {
			store, err = history.Open(cfg.History.Path)
			if err != nil {
				logger.Warn("history disabled", zap.Error(err))
			} else {
				defer store.Close()
			}
		}

		proc := batch.NewProcessor(logger, table, batch.Options{
			OutputDir:    outDir,
			Workers:      workers,
			Guide:        cfg.Output.Guide && !batchNoGuide,
			ReferenceDir: batchRefDir,
			Store:        store,
		})

		var allTests []discover.Test
		var allResults []batch.Result
		for _, root := range roots {
			tests, err := scanner.Discover(root)
			if err != nil {
				return err
			}
			logger.Info("discovered legacy tests", zap.String("root", root), zap.Int("count", len(tests)))
			results := proc.Run(cmd.Context(), root, tests)
			allTests = append(allTests, tests...)
			allResults = append(allResults, results...)
		}

		reportPath := batchReport
		if reportPath == "" {
			reportPath = filepath.Join(outDir, "translation_report.md")
		}
		if err := batch.WriteReport(allTests, allResults, batch.ReportOptions{OutputDir: outDir}, reportPath); err != nil {
			return err
		}

		succeeded := 0
		for _, r := range allResults {
			if r.Success {
				succeeded++
			}
		}
		fmt.Printf("Translated %d/%d tests. Report: %s\n", succeeded, len(allResults), reportPath)
		if succeeded < len(allResults) {
			return fmt.Errorf("%d translations failed", len(allResults)-succeeded)
		}
		return nil
	},
}

// batchRoots resolves the directories to scan from the --ip flag, the
// positional argument, or the configured legacy root, in that order.
func batchRoots(args []string) ([]string, error) {
	if batchIP != "" {
		block, ok := cfg.IPBlock(batchIP)
		if !ok {
			return nil, fmt.Errorf("unknown IP block %q", batchIP)
		}
		if len(block.Suites) == 0 {
			return nil, fmt.Errorf("IP block %q has no suite directories", batchIP)
		}
		roots := make([]string, 0, len(block.Suites))
		for _, suite := range block.Suites {
			roots = append(roots, filepath.Join(cfg.Paths.TServerRoot, suite))
		}
		return roots, nil
	}
	if len(args) == 1 {
		return []string{args[0]}, nil
	}
	if cfg.Paths.TServerRoot != "" {
		return []string{cfg.Paths.TServerRoot}, nil
	}
	return nil, fmt.Errorf("no root directory: pass one, set paths.tserver_root, or use --ip")
}

var listCmd = &cobra.Command{
	Use:   "list [root]",
	Short: "List translatable legacy tests under a directory",
	Args:  cobra.MaximumNArgs(1),
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
		tests, err := scanner.Discover(root)
		if err != nil {
			return err
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "TEST\tCLASS\tVARIATIONS\tPARAMS\tFEATURES\tFILE")
		for _, t := range tests {
			fmt.Fprintf(w, "%s\t%s\t%d\t%d\t%s\t%s\n",
				t.TestName, t.ClassName, t.Variations, t.Parameters, t.Features(), t.CPPFile)
		}
		w.Flush()
		fmt.Printf("\n%d translatable tests\n", len(tests))
		return nil
	},
}

var ipsCmd = &cobra.Command{
	Use:   "ips [tserver-root]",
	Short: "List IP block suites in the legacy source tree",
	Long: `Scans the suite/gpu, suite/cpu, and suite/nbridge subtrees of the
legacy source root and lists every IP block directory that holds test
sources or a CMake build file.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		root := cfg.Paths.TServerRoot
		if len(args) == 1 {
			root = args[0]
		}
		if root == "" {
			return fmt.Errorf("no legacy source root: pass one or set paths.tserver_root")
		}

		suites, err := discover.DiscoverIPBlocks(root)
		if err != nil {
			return err
		}
		if len(suites) == 0 {
			fmt.Println("No IP suites found. Point the command at the legacy source root.")
			return nil
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "IP SUITE\tCATEGORY\tTESTS\tCMAKE\tPATH")
		for _, s := range suites {
			cmake := ""
			if s.HasCMake {
				cmake = "yes"
			}
			fmt.Fprintf(w, "%s\t%s\t%d\t%s\t%s\n", s.Name, s.Category, s.TestFiles, cmake, s.SuitePath)
		}
		w.Flush()
		fmt.Printf("\n%d IP suites\n", len(suites))
		return nil
	},
}

var historyLimit int

var historyCmd = &cobra.Command{
	Use:   "history [run-id]",
	Short: "Show recent translation runs",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := history.Open(cfg.History.Path)
		if err != nil {
			return err
		}
		defer store.Close()

		if len(args) == 1 {
			outcomes, err := store.Outcomes(args[0])
			if err != nil {
				return err
			}
			w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "FILE\tOK\tERROR")
			for _, o := range outcomes {
				fmt.Fprintf(w, "%s\t%v\t%s\n", o.CPPFile, o.Success, o.Error)
			}
			return w.Flush()
		}

		runs, err := store.RecentRuns(historyLimit)
		if err != nil {
			return err
		}
		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "RUN\tSTARTED\tROOT\tTOTAL\tOK\tFAILED")
		for _, r := range runs {
			fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%d\t%d\n",
				r.ID, r.Started.Format("2006-01-02 15:04:05"), r.Root, r.Total, r.Succeeded, r.Failed)
		}
		return w.Flush()
	},
}

func init() {
	batchCmd.Flags().StringVarP(&batchOutDir, "out-dir", "o", "", "output directory (default from config)")
	batchCmd.Flags().IntVarP(&batchWorkers, "workers", "w", 0, "worker pool size (default from config)")
	batchCmd.Flags().BoolVar(&batchNoGuide, "no-guide", false, "skip migration guides")
	batchCmd.Flags().StringVar(&batchRefDir, "reference-dir", "", "directory searched for existing TNG reference tests")
	batchCmd.Flags().StringVar(&batchMaps, "mappings", "", "mapping table YAML (default: built-in)")
	batchCmd.Flags().StringVar(&batchReport, "report", "", "report path (default: <out-dir>/translation_report.md)")
	batchCmd.Flags().StringVar(&batchIP, "ip", "", "translate the configured IP block's suites")

	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", 10, "number of runs to show")
}
