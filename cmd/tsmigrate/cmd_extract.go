package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"tsmigrate/internal/extract"
	"tsmigrate/internal/generate"
	"tsmigrate/internal/guide"
	"tsmigrate/internal/spec"
)

var (
	extractXML string
	extractOut string
)

var extractCmd = &cobra.Command{
	Use:   "extract <test.cpp>",
	Short: "Extract a YAML specification from a legacy test",
	Long: `Reads a legacy C++ test, optionally enriches it from its XML suite
descriptor, and writes the extracted specification as YAML. Without --xml
the descriptor is located next to the source file.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cppPath := args[0]

		engine := extract.New(logger)
		res, err := engine.ExtractFile(cppPath, extractXML)
		if err != nil {
			return err
		}

		out := extractOut
		if out == "" {
			base := strings.TrimSuffix(filepath.Base(cppPath), filepath.Ext(cppPath))
			out = base + "_spec.yaml"
		}
		if err := res.Spec.Save(out); err != nil {
			return err
		}

		logger.Info("specification written",
			zap.String("source", cppPath),
			zap.String("spec", out),
			zap.Int("parameters", len(res.Spec.Parameters)),
			zap.Int("variations", len(res.Spec.Variations)))
		if len(res.NeedsReview) > 0 {
			fmt.Printf("Variations needing manual review: %v\n", res.NeedsReview)
		}
		fmt.Printf("Wrote %s\n", out)
		return nil
	},
}

var (
	generateMappings string
	generateOut      string
)

var generateCmd = &cobra.Command{
	Use:   "generate <spec.yaml>",
	Short: "Generate a TNG test skeleton from a specification",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := spec.Load(args[0])
		if err != nil {
			return err
		}
		table, err := loadTable(generateMappings)
		if err != nil {
			return err
		}

		out := generateOut
		if out == "" {
			base := strings.TrimSuffix(filepath.Base(args[0]), filepath.Ext(args[0]))
			out = strings.TrimSuffix(base, "_spec") + "_tng_test.cpp"
		}
		if err := generate.New(table).WriteFile(s, out); err != nil {
			return err
		}

		logger.Info("skeleton written", zap.String("spec", args[0]), zap.String("skeleton", out))
		fmt.Printf("Wrote %s\n", out)
		return nil
	},
}

var (
	guideRef      string
	guideOut      string
	guideMappings string
)

var guideCmd = &cobra.Command{
	Use:   "guide <spec.yaml> <test.cpp>",
	Short: "Render the migration guide for an extracted specification",
	Long: `Renders the markdown migration guide from an already-extracted
specification and the legacy source it came from. With --reference an
existing TNG test is embedded as a worked example.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := spec.Load(args[0])
		if err != nil {
			return err
		}
		original, err := os.ReadFile(args[1])
		if err != nil {
			return err
		}
		table, err := loadTable(guideMappings)
		if err != nil {
			return err
		}

		in := guide.Input{Spec: s, Original: string(original)}
		if guideRef != "" {
			ref, err := os.ReadFile(guideRef)
			if err != nil {
				return err
			}
			in.Reference = string(ref)
			in.ReferencePath = guideRef
		}

		out := guideOut
		if out == "" {
			base := strings.TrimSuffix(filepath.Base(args[0]), filepath.Ext(args[0]))
			out = strings.TrimSuffix(base, "_spec") + "_guide.md"
		}
		if err := guide.New(table).WriteFile(in, out); err != nil {
			return err
		}

		logger.Info("guide written", zap.String("spec", args[0]), zap.String("guide", out))
		fmt.Printf("Wrote %s\n", out)
		return nil
	},
}

func init() {
	extractCmd.Flags().StringVar(&extractXML, "xml", "", "suite descriptor path (default: alongside the source)")
	extractCmd.Flags().StringVarP(&extractOut, "out", "o", "", "output spec path")

	generateCmd.Flags().StringVar(&generateMappings, "mappings", "", "mapping table YAML (default: built-in)")
	generateCmd.Flags().StringVarP(&generateOut, "out", "o", "", "output skeleton path")

	guideCmd.Flags().StringVar(&guideRef, "reference", "", "existing TNG test embedded as a worked example")
	guideCmd.Flags().StringVarP(&guideOut, "out", "o", "", "output guide path")
	guideCmd.Flags().StringVar(&guideMappings, "mappings", "", "mapping table YAML (default: built-in)")
}
