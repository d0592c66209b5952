package extract

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"strconv"
	"strings"

	"tsmigrate/internal/spec"
)

// patternTypes maps a descriptor value pattern to the legacy C++ type used
// when the parameter never appeared in the source pass.
var patternTypes = map[string]string{
	"integer": "int",
	"bool":    "bool",
	"hex":     "uint64_t",
	"string":  "std::string",
	"float":   "float",
}

// EnrichFromDescriptor merges the suite descriptor into an extracted
// specification. The merge is order-independent relative to the source pass
// and strictly additive: entries matched by parameter name or variation id
// have only their descriptive fields overwritten, never their identity key
// or source-declared type; unmatched descriptor entries are appended.
func EnrichFromDescriptor(s *spec.Specification, data []byte) error {
	dec := xml.NewDecoder(bytes.NewReader(data))

	sawRoot := false
	inVariation := false
	variationID := 0
	var pendingParam string
	depthInVariation := 0

	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return fmt.Errorf("parse descriptor: %w", err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			if !sawRoot {
				sawRoot = true
				s.SuiteID = attr(t, "id")
				s.SuiteDescription = attr(t, "description")
				continue
			}
			switch t.Name.Local {
			case "UserParameter":
				enrichParameter(s, t)
			case "Test":
				enrichVariation(s, attr(t, "id"), attr(t, "alt"), attr(t, "description"))
			case "Variation":
				variationID, inVariation = variationBindingTarget(s, attr(t, "id"), attr(t, "description"))
				depthInVariation = 0
			case "Parameter":
				if inVariation {
					pendingParam = attr(t, "name")
					depthInVariation++
				}
			default:
				if inVariation {
					depthInVariation++
				}
			}
		case xml.CharData:
			if inVariation && pendingParam != "" {
				value := strings.TrimSpace(string(t))
				if value != "" {
					// Resolve by id on every write: sibling appends may
					// have reallocated the variations slice since the
					// element opened.
					if v := s.FindVariation(variationID); v != nil {
						if v.Parameters == nil {
							v.Parameters = make(map[string]string)
						}
						v.Parameters[pendingParam] = value
					}
				}
			}
		case xml.EndElement:
			switch {
			case t.Name.Local == "Variation":
				inVariation = false
				pendingParam = ""
			case inVariation && t.Name.Local == "Parameter":
				pendingParam = ""
				depthInVariation--
			case inVariation && depthInVariation > 0:
				depthInVariation--
			}
		}
	}
	return nil
}

// enrichParameter merges one UserParameter element by name. An existing
// parameter keeps its identity and source-declared type; the descriptor only
// supplies description and pattern. An unknown name is appended with a type
// inferred from its pattern.
func enrichParameter(s *spec.Specification, el xml.StartElement) {
	name := attr(el, "name")
	if name == "" {
		return
	}
	pattern := attr(el, "pattern")
	description := attr(el, "description")

	if existing := s.FindParameter(name); existing != nil {
		if description != "" {
			existing.Description = description
		}
		if pattern != "" {
			existing.Pattern = pattern
		}
		return
	}
	s.Parameters = append(s.Parameters, spec.Parameter{
		Name:        name,
		Type:        patternType(pattern),
		Description: description,
		Pattern:     pattern,
	})
}

// enrichVariation merges one Test element by numeric id: name and
// description are overwritten on an existing variation, the id and the
// function reference never are. Non-numeric ids are skipped.
func enrichVariation(s *spec.Specification, rawID, alt, description string) {
	id, err := strconv.Atoi(strings.TrimSpace(rawID))
	if err != nil {
		return
	}
	if existing := s.FindVariation(id); existing != nil {
		if alt != "" {
			existing.Name = alt
		}
		if description != "" {
			existing.Description = description
		}
		return
	}
	s.Variations = append(s.Variations, spec.Variation{
		ID:          id,
		Name:        alt,
		Description: description,
	})
}

// variationBindingTarget resolves the variation a Variation element's
// parameter values bind to, appending it when the id is new. It returns
// the id rather than a slice element so later appends cannot strand the
// binding.
func variationBindingTarget(s *spec.Specification, rawID, description string) (int, bool) {
	id, err := strconv.Atoi(strings.TrimSpace(rawID))
	if err != nil {
		return 0, false
	}
	if existing := s.FindVariation(id); existing != nil {
		if existing.Description == "" && description != "" {
			existing.Description = description
		}
		return id, true
	}
	s.Variations = append(s.Variations, spec.Variation{
		ID:          id,
		Name:        fmt.Sprintf("variation_%d", id),
		Description: description,
	})
	return id, true
}

func patternType(pattern string) string {
	if t, ok := patternTypes[pattern]; ok {
		return t
	}
	return "auto"
}

func attr(el xml.StartElement, name string) string {
	for _, a := range el.Attr {
		if a.Name.Local == name {
			return a.Value
		}
	}
	return ""
}
