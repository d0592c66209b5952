package extract

import (
	"testing"

	"tsmigrate/internal/spec"
)

const sampleDescriptor = `<?xml version="1.0"?>
<Suite id="GPU-100" description="GPU smoke suite">
  <UserParameter name="size" pattern="integer" description="Buffer size in bytes"/>
  <UserParameter name="threshold" pattern="hex" description="Abort threshold"/>
  <UserParameter name="mode" pattern="tristate"/>
  <Test id="1" alt="basic_check" description="Basic sanity pass"/>
  <Test id="9" alt="extended" description="Descriptor-only variation"/>
  <Test id="smoke" alt="bogus" description="Non-numeric id"/>
  <Variation id="1">
    <Parameter name="size">8192</Parameter>
    <Parameter name="mode">fast</Parameter>
  </Variation>
</Suite>
`

func enrichedFixture(t *testing.T) *spec.Specification {
	t.Helper()
	s := &spec.Specification{
		Parameters: []spec.Parameter{
			{Name: "size", Type: "int", Default: "4096", Description: "from source"},
		},
		Variations: []spec.Variation{
			{ID: 1, Name: "variation_1", FunctionName: "checkBasics"},
		},
	}
	if err := EnrichFromDescriptor(s, []byte(sampleDescriptor)); err != nil {
		t.Fatalf("enrich: %v", err)
	}
	return s
}

func TestEnrich_SuiteAttributes(t *testing.T) {
	s := enrichedFixture(t)
	if s.SuiteID != "GPU-100" {
		t.Errorf("SuiteID = %q", s.SuiteID)
	}
	if s.SuiteDescription != "GPU smoke suite" {
		t.Errorf("SuiteDescription = %q", s.SuiteDescription)
	}
}

func TestEnrich_ExistingParameterKeepsIdentity(t *testing.T) {
	s := enrichedFixture(t)
	p := s.FindParameter("size")
	if p == nil {
		t.Fatal("size parameter lost")
	}
	if p.Type != "int" || p.Default != "4096" {
		t.Errorf("identity fields overwritten: %+v", p)
	}
	if p.Description != "Buffer size in bytes" {
		t.Errorf("Description = %q, want descriptor text", p.Description)
	}
	if p.Pattern != "integer" {
		t.Errorf("Pattern = %q", p.Pattern)
	}
}

func TestEnrich_EmptyDescriptorFieldsDoNotErase(t *testing.T) {
	s := &spec.Specification{
		Parameters: []spec.Parameter{
			{Name: "mode", Type: "int", Description: "kept"},
		},
	}
	err := EnrichFromDescriptor(s, []byte(`<Suite><UserParameter name="mode"/></Suite>`))
	if err != nil {
		t.Fatal(err)
	}
	if s.Parameters[0].Description != "kept" {
		t.Errorf("empty descriptor attribute erased the description: %+v", s.Parameters[0])
	}
}

func TestEnrich_NewParameterTypeInference(t *testing.T) {
	s := enrichedFixture(t)

	threshold := s.FindParameter("threshold")
	if threshold == nil || threshold.Type != "uint64_t" {
		t.Errorf("threshold = %+v, want inferred uint64_t", threshold)
	}
	mode := s.FindParameter("mode")
	if mode == nil || mode.Type != "auto" {
		t.Errorf("mode = %+v, want fallback type auto", mode)
	}
}

func TestEnrich_VariationMergeById(t *testing.T) {
	s := enrichedFixture(t)

	v1 := s.FindVariation(1)
	if v1 == nil {
		t.Fatal("variation 1 lost")
	}
	if v1.FunctionName != "checkBasics" {
		t.Errorf("function reference overwritten: %+v", v1)
	}
	if v1.Name != "basic_check" || v1.Description != "Basic sanity pass" {
		t.Errorf("descriptive fields not merged: %+v", v1)
	}

	v9 := s.FindVariation(9)
	if v9 == nil || v9.Name != "extended" || v9.FunctionName != "" {
		t.Errorf("descriptor-only variation = %+v", v9)
	}
}

func TestEnrich_NonNumericTestIdSkipped(t *testing.T) {
	s := enrichedFixture(t)
	for _, v := range s.Variations {
		if v.Name == "bogus" {
			t.Errorf("non-numeric Test id produced a variation: %+v", v)
		}
	}
}

func TestEnrich_VariationParameterBindings(t *testing.T) {
	s := enrichedFixture(t)
	v1 := s.FindVariation(1)
	if v1 == nil {
		t.Fatal("variation 1 lost")
	}
	if v1.Parameters["size"] != "8192" {
		t.Errorf("size binding = %q, want 8192", v1.Parameters["size"])
	}
	if v1.Parameters["mode"] != "fast" {
		t.Errorf("mode binding = %q, want fast", v1.Parameters["mode"])
	}
}

func TestEnrich_BindingsSurviveNestedAppends(t *testing.T) {
	// Test elements inside a Variation block append new variations while
	// the block is still open, which reallocates the slice. Bindings must
	// still land on the enclosing variation.
	descriptor := `<Suite id="S">
  <Variation id="1">
    <Test id="2" alt="two"/>
    <Test id="3" alt="three"/>
    <Test id="4" alt="four"/>
    <Test id="5" alt="five"/>
    <Parameter name="size">512</Parameter>
  </Variation>
</Suite>`

	s := &spec.Specification{}
	if err := EnrichFromDescriptor(s, []byte(descriptor)); err != nil {
		t.Fatal(err)
	}

	v1 := s.FindVariation(1)
	if v1 == nil {
		t.Fatal("variation 1 lost")
	}
	if v1.Parameters["size"] != "512" {
		t.Errorf("size binding = %q, want 512", v1.Parameters["size"])
	}
	for _, id := range []int{2, 3, 4, 5} {
		v := s.FindVariation(id)
		if v == nil {
			t.Fatalf("variation %d lost", id)
		}
		if len(v.Parameters) != 0 {
			t.Errorf("variation %d stole a binding: %+v", id, v.Parameters)
		}
	}
}

func TestEnrich_Idempotent(t *testing.T) {
	s := enrichedFixture(t)
	before := len(s.Parameters)
	if err := EnrichFromDescriptor(s, []byte(sampleDescriptor)); err != nil {
		t.Fatal(err)
	}
	if len(s.Parameters) != before {
		t.Errorf("second enrichment grew parameters: %d -> %d", before, len(s.Parameters))
	}
	if v := s.FindVariation(1); v == nil || v.FunctionName != "checkBasics" {
		t.Errorf("second enrichment damaged variation 1: %+v", v)
	}
}
