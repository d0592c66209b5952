// Package mapping holds the static legacy-to-target API lookup table
// consumed by generation. The table is loaded once and injected read-only;
// nothing here mutates it after parse.
package mapping

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// categoryOrder fixes the section scan order for hint lookup. Sections
// outside this list are still parsed and rendered in the guide, but Lookup
// never consults them.
var categoryOrder = []string{
	"device_access",
	"memory",
	"registers",
	"logging",
	"verification",
}

// reservedSection holds structural metadata for the guide's framework table
// and is never rendered as a call hint.
const reservedSection = "test_structure"

// Entry pairs the legacy call text with the suggested target equivalent.
type Entry struct {
	TServer string `yaml:"tserver"`
	TNG     string `yaml:"tng"`
}

type keyedEntry struct {
	Key   string
	Entry Entry
}

// Section is one named group of entries, in document order.
type Section struct {
	Name    string
	Entries []keyedEntry
}

// Table is the parsed mapping table. Section and entry order follow the
// source document so lookup is deterministic.
type Table struct {
	sections []Section
	byName   map[string]*Section
}

// Parse reads a mapping table from YAML. Entry order within each section is
// preserved; unknown sections are kept for guide rendering but carry no
// lookup weight.
func Parse(data []byte) (*Table, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse mapping table: %w", err)
	}
	if len(doc.Content) == 0 {
		return &Table{byName: map[string]*Section{}}, nil
	}
	root := doc.Content[0]
	if root.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("mapping table root must be a mapping, got %v", root.Kind)
	}

	t := &Table{byName: make(map[string]*Section)}
	for i := 0; i+1 < len(root.Content); i += 2 {
		nameNode, bodyNode := root.Content[i], root.Content[i+1]
		if bodyNode.Kind != yaml.MappingNode {
			continue
		}
		sec := Section{Name: nameNode.Value}
		for j := 0; j+1 < len(bodyNode.Content); j += 2 {
			keyNode, valNode := bodyNode.Content[j], bodyNode.Content[j+1]
			var entry Entry
			if err := valNode.Decode(&entry); err != nil {
				// Plain scalar form: the value is the suggestion itself.
				var s string
				if err2 := valNode.Decode(&s); err2 != nil {
					return nil, fmt.Errorf("mapping entry %s.%s: %w", sec.Name, keyNode.Value, err)
				}
				entry = Entry{TNG: s}
			}
			sec.Entries = append(sec.Entries, keyedEntry{Key: keyNode.Value, Entry: entry})
		}
		t.sections = append(t.sections, sec)
	}
	for i := range t.sections {
		t.byName[t.sections[i].Name] = &t.sections[i]
	}
	return t, nil
}

// Load reads a mapping table from a file.
func Load(path string) (*Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read mapping table %q: %w", path, err)
	}
	return Parse(data)
}

// Lookup resolves a call context to a suggested replacement. Only the
// declared category sections are scanned, in their fixed order; within a
// section the first entry whose key is a case-insensitive substring of the
// context wins. Unknown sections and the reserved structural section are
// ignored. A miss returns ok=false, never an error.
func (t *Table) Lookup(context string) (Entry, bool) {
	lowered := strings.ToLower(context)
	for _, name := range categoryOrder {
		sec, ok := t.byName[name]
		if !ok {
			continue
		}
		for _, ke := range sec.Entries {
			if strings.Contains(lowered, strings.ToLower(ke.Key)) {
				return ke.Entry, true
			}
		}
	}
	return Entry{}, false
}

// HintSections returns every renderable section for the guide, categories
// first and remaining sections in document order, excluding the reserved
// structural section. Unlike Lookup, unknown sections are included.
func (t *Table) HintSections() []Section {
	var out []Section
	for _, sec := range t.orderedSections() {
		if sec.Name == reservedSection {
			continue
		}
		out = append(out, sec)
	}
	return out
}

// Structural returns the reserved framework-metadata section, if present.
func (t *Table) Structural() (Section, bool) {
	if sec, ok := t.byName[reservedSection]; ok {
		return *sec, true
	}
	return Section{}, false
}

func (t *Table) orderedSections() []Section {
	seen := make(map[string]bool, len(categoryOrder))
	out := make([]Section, 0, len(t.sections))
	for _, name := range categoryOrder {
		if sec, ok := t.byName[name]; ok {
			out = append(out, *sec)
			seen[name] = true
		}
	}
	for _, sec := range t.sections {
		if !seen[sec.Name] {
			out = append(out, sec)
		}
	}
	return out
}
