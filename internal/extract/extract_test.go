package extract

import (
	"os"
	"path/filepath"
	"testing"
)

const sampleSource = `
#include <test/test.h>
#include "gpu/hal_gpu.h"

class GpuSmokeTest : public ts::Test
{
public:
    GpuSmokeTest() :
        m_size(Parameter<int>("size", 4096)),
        m_ratio(Parameter<int>("ratio", 10)),
        m_label(ParameterOpt<uint32_t>("label"))
    {
    }

    Result Main();

private:
    void checkBasics();
    void computeRatio();
    void stressLoop();

    int m_size;
    int m_ratio;
    std::string m_label;
    Logger m_lg;
    uint64_t m_base;
};

Result GpuSmokeTest::Main()
{
    if (!TargetActive())
    {
        return Skip;
    }

    auto* gpu = Get<HalGpu>();
    uint64_t status = RegRead(0x1000);
    RegWrite(0x1004, status | 1);
    CORE_LOG_DEBUG(m_lg) << "status" << std::endl;

    switch (GetId())
    {
    case 1:
        checkBasics();
        break;
    case 2:
        // sweep the full range
        computeRatio();
        break;
    case 3:
        for (int i = 0; i < m_ratio; i++)
        {
            stressLoop();
        }
        break;
    default:
        return Fail;
    }

    return Pass;
}

TServerTestInstance(GpuSmokeTest, GpuSmoke)
`

func TestExtract_ClassAndTestName(t *testing.T) {
	res := New(nil).Extract(sampleSource)
	s := res.Spec
	if s.ClassName != "GpuSmokeTest" {
		t.Errorf("ClassName = %q, want GpuSmokeTest", s.ClassName)
	}
	if s.TestName != "GpuSmokeTest" {
		t.Errorf("TestName = %q, want GpuSmokeTest", s.TestName)
	}
	if len(s.Includes) != 2 || s.Includes[0] != "test/test.h" || s.Includes[1] != "gpu/hal_gpu.h" {
		t.Errorf("Includes = %v", s.Includes)
	}
}

func TestExtract_Parameters(t *testing.T) {
	s := New(nil).Extract(sampleSource).Spec
	if len(s.Parameters) != 3 {
		t.Fatalf("got %d parameters, want 3: %+v", len(s.Parameters), s.Parameters)
	}

	size := s.FindParameter("size")
	if size == nil || size.Type != "int" || size.Default != "4096" {
		t.Errorf("size = %+v", size)
	}
	ratio := s.FindParameter("ratio")
	if ratio == nil || ratio.Default != "10" {
		t.Errorf("ratio = %+v", ratio)
	}
	label := s.FindParameter("label")
	if label == nil || label.Default != "" || label.Description != "Optional parameter" {
		t.Errorf("label = %+v", label)
	}
}

func TestExtract_ParameterNameIsUniqueKey(t *testing.T) {
	source := `
Parameter<int>("size", 1)
Parameter<int>("size", 2)
ParameterOpt<int>("size")
`
	s := New(nil).Extract(source).Spec
	if len(s.Parameters) != 1 {
		t.Fatalf("got %d parameters, want 1", len(s.Parameters))
	}
	if s.Parameters[0].Default != "1" {
		t.Errorf("first declaration should win, got default %q", s.Parameters[0].Default)
	}
}

func TestExtract_VariationsExactShape(t *testing.T) {
	res := New(nil).Extract(sampleSource)
	s := res.Spec
	if len(s.Variations) != 3 {
		t.Fatalf("got %d variations, want 3: %+v", len(s.Variations), s.Variations)
	}

	v1 := s.FindVariation(1)
	if v1 == nil || v1.FunctionName != "checkBasics" {
		t.Errorf("variation 1 = %+v, want function checkBasics", v1)
	}
	// A leading comment does not disqualify the single-call shape.
	v2 := s.FindVariation(2)
	if v2 == nil || v2.FunctionName != "computeRatio" {
		t.Errorf("variation 2 = %+v, want function computeRatio", v2)
	}
	// The loop body is not a single invocation: no function name, flagged.
	v3 := s.FindVariation(3)
	if v3 == nil || v3.FunctionName != "" {
		t.Errorf("variation 3 = %+v, want empty function name", v3)
	}
	if len(res.NeedsReview) != 1 || res.NeedsReview[0] != 3 {
		t.Errorf("NeedsReview = %v, want [3]", res.NeedsReview)
	}
}

func TestExtract_SingleCallWithoutBreak(t *testing.T) {
	source := `
Result T::Main()
{
    switch (GetId())
    {
    case 7:
        lastCase();
    }
    return Pass;
}
`
	res := New(nil).Extract(source)
	v := res.Spec.FindVariation(7)
	if v == nil || v.FunctionName != "lastCase" {
		t.Fatalf("variation 7 = %+v, want function lastCase", v)
	}
	if len(res.NeedsReview) != 0 {
		t.Errorf("NeedsReview = %v, want empty", res.NeedsReview)
	}
}

func TestExtract_NoDispatchSwitch(t *testing.T) {
	source := `
Result T::Main()
{
    doEverything();
    return Pass;
}
`
	res := New(nil).Extract(source)
	if len(res.Spec.Variations) != 0 {
		t.Errorf("Variations = %+v, want none", res.Spec.Variations)
	}
	if len(res.NeedsReview) != 0 {
		t.Errorf("NeedsReview = %v, want empty", res.NeedsReview)
	}
}

func TestExtract_ApiCallOccurrencesPreserved(t *testing.T) {
	source := `
uint64_t a = RegRead(0x10);
uint64_t b = RegRead(0x14);
RegWrite(0x18, a + b);
`
	s := New(nil).Extract(source).Spec
	reads := 0
	for _, c := range s.ApiCalls {
		if c.Context == "RegRead" {
			reads++
		}
	}
	if reads != 2 {
		t.Errorf("got %d RegRead entries, want occurrences preserved as 2", reads)
	}
}

func TestExtract_MembersKeepPrefixedNamesOnly(t *testing.T) {
	s := New(nil).Extract(sampleSource).Spec
	for _, m := range s.Members {
		if m.Name[:2] != "m_" {
			t.Errorf("member %q lacks the m_ prefix", m.Name)
		}
	}
	found := false
	for _, m := range s.Members {
		if m.Name == "m_base" && m.Type == "uint64_t" {
			found = true
		}
	}
	if !found {
		t.Errorf("m_base missing from members: %+v", s.Members)
	}
}

func TestExtract_FunctionsSkipKeywords(t *testing.T) {
	s := New(nil).Extract(sampleSource).Spec
	for _, f := range s.Functions {
		if cppKeywords[f.Name] {
			t.Errorf("keyword %q reported as function", f.Name)
		}
	}
}

func TestExtractFile_MissingSourceFails(t *testing.T) {
	_, err := New(nil).ExtractFile(filepath.Join(t.TempDir(), "absent.cpp"), "")
	if err == nil {
		t.Fatal("expected an error for a missing source file")
	}
}

func TestExtractFile_MalformedDescriptorIsNotFatal(t *testing.T) {
	dir := t.TempDir()
	cpp := filepath.Join(dir, "test.cpp")
	xml := filepath.Join(dir, "test.xml")
	if err := os.WriteFile(cpp, []byte(sampleSource), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(xml, []byte("<unclosed"), 0o644); err != nil {
		t.Fatal(err)
	}

	res, err := New(nil).ExtractFile(cpp, xml)
	if err != nil {
		t.Fatalf("extract with bad descriptor: %v", err)
	}
	if res.Spec.ClassName != "GpuSmokeTest" {
		t.Errorf("source pass result lost: ClassName = %q", res.Spec.ClassName)
	}
}

func TestFindDescriptor_FirstSorted(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"zz.xml", "aa.xml"} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("<x/>"), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	got := FindDescriptor(filepath.Join(dir, "test.cpp"))
	if filepath.Base(got) != "aa.xml" {
		t.Errorf("FindDescriptor = %q, want aa.xml", got)
	}
}
