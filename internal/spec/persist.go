package spec

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Load reads a specification from its persisted YAML form. The file may have
// been written by extraction or edited by hand; missing fields stay at their
// zero value.
func Load(path string) (*Specification, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read specification %q: %w", path, err)
	}
	var s Specification
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("parse specification %q: %w", path, err)
	}
	return &s, nil
}

// Save writes the specification as YAML, creating parent directories as
// needed. The document is assembled in memory and committed in one write.
func (s *Specification) Save(path string) error {
	data, err := yaml.Marshal(s)
	if err != nil {
		return fmt.Errorf("encode specification: %w", err)
	}
	dir := filepath.Dir(path)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create specification directory %q: %w", dir, err)
		}
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write specification %q: %w", path, err)
	}
	return nil
}
