package discover

import (
	"os"
	"path/filepath"
	"testing"
)

const legacySource = `
class GpuSmokeTest : public ts::Test
{
};

Result GpuSmokeTest::Main()
{
    uint64_t v = RegRead(0x10);
    auto* res = env::System::palloc(4096, 0, 0, 64, 0);
    env::System::pfree(res);
    switch (GetId())
    {
    case 1:
        basic();
        break;
    case 2:
        other();
        break;
    }
    return Pass;
}

TServerTestInstance(GpuSmokeTest, GpuSmoke)
`

func writeTree(t *testing.T, files map[string]string) string {
	t.Helper()
	root := t.TempDir()
	for rel, content := range files {
		path := filepath.Join(root, rel)
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	return root
}

func TestIsLegacyTest(t *testing.T) {
	if !IsLegacyTest([]byte("class X : public ts::Test {};")) {
		t.Error("ts::Test marker not recognized")
	}
	if !IsLegacyTest([]byte("TServerTestInstance(X, Y)")) {
		t.Error("instance marker not recognized")
	}
	if IsLegacyTest([]byte("int main() { return 0; }")) {
		t.Error("plain source classified as legacy test")
	}
}

func TestDiscover_FindsTestsAndSkipsOthers(t *testing.T) {
	root := writeTree(t, map[string]string{
		"gpu/smoke_test.cpp":  legacySource,
		"gpu/helper.cpp":      "int helper() { return 1; }",
		"gpu/readme.md":       "not a source file",
		"build/generated.cpp": legacySource,
	})

	s, err := NewScanner(nil, []string{"build"}, nil)
	if err != nil {
		t.Fatal(err)
	}
	tests, err := s.Discover(root)
	if err != nil {
		t.Fatalf("discover: %v", err)
	}
	if len(tests) != 1 {
		t.Fatalf("got %d tests, want 1: %+v", len(tests), tests)
	}

	got := tests[0]
	if got.TestName != "GpuSmokeTest" || got.ClassName != "GpuSmokeTest" {
		t.Errorf("names = %q / %q", got.TestName, got.ClassName)
	}
	if got.Variations != 2 {
		t.Errorf("Variations = %d, want 2", got.Variations)
	}
	if !got.HasRegisterAccess || !got.HasMemoryOps || got.HasTcore {
		t.Errorf("capability flags = %+v", got)
	}
}

func TestDiscover_ExcludedFiles(t *testing.T) {
	root := writeTree(t, map[string]string{
		"a_generated.cpp": legacySource,
		"real_test.cpp":   legacySource,
	})
	s, err := NewScanner(nil, nil, []string{"*_generated.cpp"})
	if err != nil {
		t.Fatal(err)
	}
	tests, err := s.Discover(root)
	if err != nil {
		t.Fatal(err)
	}
	if len(tests) != 1 || filepath.Base(tests[0].CPPFile) != "real_test.cpp" {
		t.Errorf("tests = %+v", tests)
	}
}

func TestAnalyze_RejectsNonLegacySource(t *testing.T) {
	root := writeTree(t, map[string]string{"plain.cpp": "int main() {}"})
	s, err := NewScanner(nil, nil, nil)
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := s.Analyze(filepath.Join(root, "plain.cpp")); ok {
		t.Error("plain source accepted")
	}
	if _, ok := s.Analyze(filepath.Join(root, "absent.cpp")); ok {
		t.Error("missing file accepted")
	}
}

func TestFeatures(t *testing.T) {
	got := Test{HasTcore: true, HasMemoryOps: true}.Features()
	if got != "TCore, Mem" {
		t.Errorf("Features() = %q", got)
	}
}
