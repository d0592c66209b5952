package batch

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"tsmigrate/internal/discover"
)

// ReportOptions shape the batch summary report.
type ReportOptions struct {
	OutputDir string
}

// RenderReport builds the markdown translation report for one batch run.
func RenderReport(tests []discover.Test, results []Result, opts ReportOptions) string {
	var successful, failed []Result
	for _, r := range results {
		if r.Success {
			successful = append(successful, r)
		} else {
			failed = append(failed, r)
		}
	}

	var b strings.Builder
	b.WriteString("# Legacy Test Translation Report\n\n")
	b.WriteString("## Summary\n\n")
	fmt.Fprintf(&b, "- **Total Tests**: %d\n", len(tests))
	fmt.Fprintf(&b, "- **Successful**: %d\n", len(successful))
	fmt.Fprintf(&b, "- **Failed**: %d\n", len(failed))
	fmt.Fprintf(&b, "- **Output Directory**: `%s`\n\n", opts.OutputDir)

	b.WriteString("## Test Analysis\n\n")
	b.WriteString("| Test | Suite | Variations | TCore | RegAccess | Memory |\n")
	b.WriteString("|------|-------|------------|-------|-----------|--------|\n")
	for _, t := range tests {
		fmt.Fprintf(&b, "| %s | %s | %d | %s | %s | %s |\n",
			t.TestName, t.SuiteName, t.Variations,
			mark(t.HasTcore), mark(t.HasRegisterAccess), mark(t.HasMemoryOps))
	}

	b.WriteString("\n## Translation Results\n")
	if len(successful) > 0 {
		b.WriteString("\n### Successful Translations\n\n")
		for _, r := range successful {
			name := strings.TrimSuffix(filepath.Base(r.CPPFile), filepath.Ext(r.CPPFile))
			fmt.Fprintf(&b, "- **%s**\n", name)
			fmt.Fprintf(&b, "  - Spec: `%s`\n", r.SpecFile)
			fmt.Fprintf(&b, "  - Skeleton: `%s`\n", r.SkeletonFile)
			if r.GuideFile != "" {
				fmt.Fprintf(&b, "  - Guide: `%s`\n", r.GuideFile)
			}
			if len(r.NeedsReview) > 0 {
				fmt.Fprintf(&b, "  - Needs manual review: variations %s\n", joinInts(r.NeedsReview))
			}
		}
	}
	if len(failed) > 0 {
		b.WriteString("\n### Failed Translations\n\n")
		for _, r := range failed {
			name := strings.TrimSuffix(filepath.Base(r.CPPFile), filepath.Ext(r.CPPFile))
			fmt.Fprintf(&b, "- **%s**: %s\n", name, r.Error)
		}
	}

	b.WriteString(`
## Next Steps

1. Review the generated specifications (.yaml files)
2. Fill in feature/sub_characteristic in the specs, then regenerate
3. Use the guide documents to complete the variation implementations
4. Resolve any variations flagged for manual review
5. Add the finished tests to the target build system
`)
	return b.String()
}

// WriteReport renders the report and commits it in one write.
func WriteReport(tests []discover.Test, results []Result, opts ReportOptions, path string) error {
	report := RenderReport(tests, results, opts)
	if err := os.WriteFile(path, []byte(report), 0o644); err != nil {
		return fmt.Errorf("write report %q: %w", path, err)
	}
	return nil
}

func mark(b bool) string {
	if b {
		return "yes"
	}
	return ""
}

func joinInts(values []int) string {
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = fmt.Sprintf("%d", v)
	}
	return strings.Join(parts, ", ")
}
