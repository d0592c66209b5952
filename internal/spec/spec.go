// Package spec defines the intermediate test specification shared between
// extraction and generation. A Specification is a plain serializable value:
// it is written to YAML after extraction, may be hand-edited, and is read
// back independently by generation. The two stages never share in-memory
// state beyond this contract.
package spec

// Parameter is one declared test parameter. Name is the unique key within a
// specification; Type is the raw declared type, captured verbatim and only
// re-mapped at generation time. Default and Pattern are literal source text.
type Parameter struct {
	Name        string `yaml:"name"`
	Type        string `yaml:"type"`
	Description string `yaml:"description,omitempty"`
	Default     string `yaml:"default,omitempty"`
	Pattern     string `yaml:"pattern,omitempty"`
}

// Variation is one numbered execution path of the legacy test, selected by
// the runtime dispatch id. ID is assigned once at creation and never changed
// by descriptor enrichment; an empty FunctionName means the dispatch branch
// did not match the single-call shape and needs manual review.
type Variation struct {
	ID           int               `yaml:"id"`
	Name         string            `yaml:"name"`
	Description  string            `yaml:"description,omitempty"`
	FunctionName string            `yaml:"function_name,omitempty"`
	Parameters   map[string]string `yaml:"parameters,omitempty"`
}

// ApiCall is one textual occurrence of a legacy API call. Context names the
// pattern-catalogue entry that matched. Occurrences are not deduplicated
// here; every match is kept so coverage is visible.
type ApiCall struct {
	Text      string `yaml:"tserver_api"`
	Context   string `yaml:"context"`
	Suggested string `yaml:"suggested_tng,omitempty"`
}

// Member is a private member variable of the legacy test class.
type Member struct {
	Type string `yaml:"type"`
	Name string `yaml:"name"`
}

// Function is a function declaration found in the legacy source.
type Function struct {
	Name      string `yaml:"name"`
	Signature string `yaml:"signature"`
}

// Specification is the aggregate root: everything extraction learned about
// one legacy test, and everything generation needs to render its skeleton.
type Specification struct {
	SourceCPP string `yaml:"source_cpp,omitempty"`
	SourceXML string `yaml:"source_xml,omitempty"`

	TestName         string `yaml:"test_name,omitempty"`
	ClassName        string `yaml:"class_name,omitempty"`
	SuiteID          string `yaml:"suite_id,omitempty"`
	SuiteDescription string `yaml:"suite_description,omitempty"`

	// Target classification, filled in by hand or from config before
	// generation.
	Feature           string `yaml:"feature,omitempty"`
	SubCharacteristic string `yaml:"sub_characteristic,omitempty"`

	Parameters []Parameter `yaml:"parameters"`
	Variations []Variation `yaml:"variations"`
	ApiCalls   []ApiCall   `yaml:"api_calls"`

	Includes  []string   `yaml:"includes,omitempty"`
	Members   []Member   `yaml:"member_variables,omitempty"`
	Functions []Function `yaml:"functions,omitempty"`
}

// FindParameter returns the parameter with the given name, or nil.
func (s *Specification) FindParameter(name string) *Parameter {
	for i := range s.Parameters {
		if s.Parameters[i].Name == name {
			return &s.Parameters[i]
		}
	}
	return nil
}

// FindVariation returns the variation with the given id, or nil.
func (s *Specification) FindVariation(id int) *Variation {
	for i := range s.Variations {
		if s.Variations[i].ID == id {
			return &s.Variations[i]
		}
	}
	return nil
}
