package batch

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tsmigrate/internal/discover"
	"tsmigrate/internal/history"
)

const legacySource = `
class GpuSmokeTest : public ts::Test
{
public:
    GpuSmokeTest() :
        m_size(Parameter<int>("size", 4096))
    {
    }
    Result Main();
private:
    void checkBasics();
    int m_size;
};

Result GpuSmokeTest::Main()
{
    uint64_t v = RegRead(0x10);
    switch (GetId())
    {
    case 1:
        checkBasics();
        break;
    }
    return Pass;
}

void GpuSmokeTest::checkBasics()
{
}

TServerTestInstance(GpuSmokeTest, GpuSmoke)
`

func writeLegacyTest(t *testing.T, dir, name string) discover.Test {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(legacySource), 0o644))

	scanner, err := discover.NewScanner(nil, nil, nil)
	require.NoError(t, err)
	test, ok := scanner.Analyze(path)
	require.True(t, ok, "fixture not recognized as a legacy test")
	return test
}

func TestTranslateOne_WritesAllArtifacts(t *testing.T) {
	srcDir := t.TempDir()
	outDir := t.TempDir()
	test := writeLegacyTest(t, srcDir, "smoke_test.cpp")

	proc := NewProcessor(nil, nil, Options{OutputDir: outDir, Guide: true})
	result := proc.TranslateOne(test)
	require.True(t, result.Success, "translate failed: %s", result.Error)

	assert.FileExists(t, filepath.Join(outDir, "smoke_test", "smoke_test_spec.yaml"))
	assert.FileExists(t, filepath.Join(outDir, "smoke_test", "smoke_test_tng_test.cpp"))
	assert.FileExists(t, filepath.Join(outDir, "smoke_test", "smoke_test_guide.md"))
	assert.Empty(t, result.NeedsReview)
}

func TestTranslateOne_GuideDisabled(t *testing.T) {
	srcDir := t.TempDir()
	outDir := t.TempDir()
	test := writeLegacyTest(t, srcDir, "smoke_test.cpp")

	proc := NewProcessor(nil, nil, Options{OutputDir: outDir})
	result := proc.TranslateOne(test)
	require.True(t, result.Success, "translate failed: %s", result.Error)
	assert.Empty(t, result.GuideFile)
	assert.NoFileExists(t, filepath.Join(outDir, "smoke_test", "smoke_test_guide.md"))
}

func TestRun_FailuresAreIsolated(t *testing.T) {
	srcDir := t.TempDir()
	outDir := t.TempDir()
	good := writeLegacyTest(t, srcDir, "good_test.cpp")
	bad := discover.Test{CPPFile: filepath.Join(srcDir, "missing_test.cpp")}

	proc := NewProcessor(nil, nil, Options{OutputDir: outDir, Workers: 2})
	results := proc.Run(context.Background(), srcDir, []discover.Test{good, bad})
	require.Len(t, results, 2)

	assert.True(t, results[0].Success)
	assert.False(t, results[1].Success)
	assert.NotEmpty(t, results[1].Error)
	// Results stay aligned with the input order.
	assert.Equal(t, good.CPPFile, results[0].CPPFile)
	assert.Equal(t, bad.CPPFile, results[1].CPPFile)
}

func TestRun_RecordsHistory(t *testing.T) {
	srcDir := t.TempDir()
	outDir := t.TempDir()
	good := writeLegacyTest(t, srcDir, "good_test.cpp")

	store, err := history.Open(filepath.Join(t.TempDir(), "history.db"))
	require.NoError(t, err)
	defer store.Close()

	proc := NewProcessor(nil, nil, Options{OutputDir: outDir, Store: store})
	proc.Run(context.Background(), srcDir, []discover.Test{good, {CPPFile: "absent.cpp"}})

	runs, err := store.RecentRuns(5)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, srcDir, runs[0].Root)
	assert.Equal(t, 2, runs[0].Total)
	assert.Equal(t, 1, runs[0].Succeeded)
	assert.Equal(t, 1, runs[0].Failed)

	outcomes, err := store.Outcomes(runs[0].ID)
	require.NoError(t, err)
	assert.Len(t, outcomes, 2)
}

func TestFindReference_MatchesClassName(t *testing.T) {
	dir := t.TempDir()
	ref := filepath.Join(dir, "nested", "gpu_smoke_test.cpp")
	require.NoError(t, os.MkdirAll(filepath.Dir(ref), 0o755))
	require.NoError(t, os.WriteFile(ref, []byte("// tng test"), 0o644))

	assert.Equal(t, ref, FindReference(dir, "GpuSmokeTest"))
	assert.Empty(t, FindReference(dir, "SomethingElse"))
	assert.Empty(t, FindReference("", "GpuSmokeTest"))
}
