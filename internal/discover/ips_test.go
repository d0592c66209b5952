package discover

import (
	"path/filepath"
	"testing"
)

func TestDiscoverIPBlocks(t *testing.T) {
	root := writeTree(t, map[string]string{
		"suite/gpu/sdma/sdma_basic_test.cpp":      "// test",
		"suite/gpu/sdma/sub/sdma_stress_Test.cpp": "// test",
		"suite/gpu/sdma/helpers.cpp":              "// no marker in name",
		"suite/gpu/empty/readme.md":               "nothing translatable here",
		"suite/cpu/pstate/CMakeLists.txt":         "add_library(pstate)",
		"suite/nbridge/xgmi/xgmi_link_test.cpp":   "// test",
		"suite/nbridge/stray.cpp":                 "files directly under a category are not suites",
	})

	suites, err := DiscoverIPBlocks(root)
	if err != nil {
		t.Fatal(err)
	}
	if len(suites) != 3 {
		t.Fatalf("got %d suites: %+v", len(suites), suites)
	}

	// Sorted by name across categories.
	wantNames := []string{"pstate", "sdma", "xgmi"}
	for i, want := range wantNames {
		if suites[i].Name != want {
			t.Errorf("suites[%d].Name = %q, want %q", i, suites[i].Name, want)
		}
	}

	sdma := suites[1]
	if sdma.Category != "gpu" {
		t.Errorf("sdma category = %q", sdma.Category)
	}
	if sdma.TestFiles != 2 {
		t.Errorf("sdma test count = %d, want 2 (recursive, name must contain test)", sdma.TestFiles)
	}
	if sdma.SuitePath != filepath.Join("suite", "gpu", "sdma") {
		t.Errorf("sdma suite path = %q", sdma.SuitePath)
	}
	if sdma.HasCMake {
		t.Errorf("sdma has no CMakeLists.txt")
	}

	pstate := suites[0]
	if pstate.TestFiles != 0 || !pstate.HasCMake {
		t.Errorf("cmake-only suite = %+v", pstate)
	}
}

func TestDiscoverIPBlocks_MissingCategoriesSkipped(t *testing.T) {
	root := writeTree(t, map[string]string{
		"suite/gpu/sdma/sdma_test.cpp": "// test",
	})
	suites, err := DiscoverIPBlocks(root)
	if err != nil {
		t.Fatal(err)
	}
	if len(suites) != 1 || suites[0].Name != "sdma" {
		t.Fatalf("got %+v", suites)
	}
}

func TestDiscoverIPBlocks_BadRoot(t *testing.T) {
	if _, err := DiscoverIPBlocks(filepath.Join(t.TempDir(), "nope")); err == nil {
		t.Fatal("expected error for a missing root")
	}
}
