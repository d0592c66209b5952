package batch

import (
	"strings"
	"testing"

	"tsmigrate/internal/discover"
)

func TestRenderReport_SummaryAndSections(t *testing.T) {
	tests := []discover.Test{
		{TestName: "GpuSmokeTest", SuiteName: "GPU-100", Variations: 2,
			HasRegisterAccess: true, CPPFile: "suites/gpu/smoke_test.cpp"},
		{TestName: "MemStressTest", SuiteName: "MEM-7", Variations: 5,
			HasMemoryOps: true, CPPFile: "suites/mem/stress_test.cpp"},
	}
	results := []Result{
		{
			CPPFile:      "suites/gpu/smoke_test.cpp",
			Success:      true,
			SpecFile:     "out/smoke_test/smoke_test_spec.yaml",
			SkeletonFile: "out/smoke_test/smoke_test_tng_test.cpp",
			GuideFile:    "out/smoke_test/smoke_test_guide.md",
			NeedsReview:  []int{3, 5},
		},
		{
			CPPFile: "suites/mem/stress_test.cpp",
			Error:   "read legacy source: permission denied",
		},
	}

	out := RenderReport(tests, results, ReportOptions{OutputDir: "out"})

	for _, want := range []string{
		"- **Total Tests**: 2",
		"- **Successful**: 1",
		"- **Failed**: 1",
		"| GpuSmokeTest | GPU-100 | 2 |  | yes |  |",
		"### Successful Translations",
		"- Needs manual review: variations 3, 5",
		"### Failed Translations",
		"- **stress_test**: read legacy source: permission denied",
		"## Next Steps",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("report missing %q:\n%s", want, out)
		}
	}
}

func TestRenderReport_NoFailuresOmitsSection(t *testing.T) {
	out := RenderReport(
		[]discover.Test{{TestName: "T"}},
		[]Result{{CPPFile: "t.cpp", Success: true}},
		ReportOptions{OutputDir: "out"})
	if strings.Contains(out, "### Failed Translations") {
		t.Error("failed section rendered with no failures")
	}
}
