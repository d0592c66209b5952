// Package extract turns legacy TServer test source into a spec.Specification
// by targeted pattern matching. It never fails on a missing sub-pattern:
// absent matches leave the field at its zero value. The only hard failure is
// an unreadable primary source file.
package extract

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	"tsmigrate/internal/errs"
	"tsmigrate/internal/observability"
	"tsmigrate/internal/spec"
)

// Engine extracts specifications from legacy source text. The call-shape
// catalogue is injected at construction and never mutated afterwards.
type Engine struct {
	log       *zap.Logger
	catalogue []ApiPattern
}

// Result pairs the extracted specification with the dispatch branches that
// could not be recognized and need manual review.
type Result struct {
	Spec *spec.Specification

	// NeedsReview lists variation ids whose dispatch branch had any shape
	// other than a single function call. Their FunctionName is left empty.
	NeedsReview []int
}

func New(log *zap.Logger) *Engine {
	return NewWithCatalogue(log, DefaultCatalogue())
}

func NewWithCatalogue(log *zap.Logger, catalogue []ApiPattern) *Engine {
	if log == nil {
		log = zap.NewNop()
	}
	return &Engine{log: log, catalogue: catalogue}
}

// ExtractFile runs the primary source pass and, when a descriptor is present,
// the enrichment pass. xmlPath may be empty; the companion descriptor is then
// looked up next to the source. A missing or malformed descriptor is not an
// error.
func (e *Engine) ExtractFile(cppPath, xmlPath string) (*Result, error) {
	start := time.Now()
	content, err := os.ReadFile(cppPath)
	if err != nil {
		return nil, errs.AddContext(
			errs.Wrap(err, errs.CodeReadFailed, "read legacy source"),
			errs.CtxPath, cppPath)
	}

	res := e.Extract(string(content))
	res.Spec.SourceCPP = cppPath

	if xmlPath == "" {
		xmlPath = FindDescriptor(cppPath)
	}
	if xmlPath != "" {
		data, err := os.ReadFile(xmlPath)
		if err != nil {
			e.log.Warn("descriptor unreadable, skipping enrichment",
				zap.String("path", xmlPath), zap.Error(err))
		} else {
			res.Spec.SourceXML = xmlPath
			if err := EnrichFromDescriptor(res.Spec, data); err != nil {
				e.log.Warn("descriptor malformed, skipping enrichment",
					zap.String("path", xmlPath), zap.Error(err))
			}
		}
	}

	observability.ExtractionDuration.Observe(time.Since(start).Seconds())
	return res, nil
}

// Extract runs the primary source pass over in-memory text.
func (e *Engine) Extract(source string) *Result {
	s := &spec.Specification{
		Parameters: []spec.Parameter{},
		Variations: []spec.Variation{},
		ApiCalls:   []spec.ApiCall{},
	}

	s.Includes = e.extractIncludes(source)

	if m := reClassDecl.FindStringSubmatch(source); m != nil {
		s.ClassName = m[1]
	}
	if m := reTestInstance.FindStringSubmatch(source); m != nil {
		s.TestName = m[1]
	}

	e.extractParameters(source, s)
	review := e.extractVariations(source, s)
	e.extractApiCalls(source, s)
	e.extractMembers(source, s)
	e.extractFunctions(source, s)

	return &Result{Spec: s, NeedsReview: review}
}

func (e *Engine) extractIncludes(source string) []string {
	var includes []string
	for _, m := range reInclude.FindAllStringSubmatch(source, -1) {
		includes = append(includes, m[1])
	}
	return includes
}

func (e *Engine) extractParameters(source string, s *spec.Specification) {
	for _, m := range reParameter.FindAllStringSubmatch(source, -1) {
		p := spec.Parameter{
			Name:    m[2],
			Type:    m[1],
			Default: strings.TrimSpace(m[3]),
		}
		appendParameter(s, p)
	}
	for _, m := range reParameterOpt.FindAllStringSubmatch(source, -1) {
		appendParameter(s, spec.Parameter{
			Name:        m[2],
			Type:        m[1],
			Description: "Optional parameter",
		})
	}
}

// appendParameter keeps the parameter name a unique key: the first
// declaration of a name wins, later ones are dropped.
func appendParameter(s *spec.Specification, p spec.Parameter) {
	if s.FindParameter(p.Name) != nil {
		return
	}
	s.Parameters = append(s.Parameters, p)
}

// extractVariations walks the dispatch region chain: Main body, the GetId
// switch within it, then every case label of the switch. A branch becomes a
// Variation with its function name only when its body is exactly one
// function invocation followed by branch termination; any other shape keeps
// an empty function name and is reported for manual review.
func (e *Engine) extractVariations(source string, s *spec.Specification) []int {
	switchBody := findRegion(reMainBody, source).then(reSwitchBody)
	if !switchBody.ok {
		return nil
	}

	var review []int
	labels := reCaseLabel.FindAllStringSubmatchIndex(switchBody.text, -1)
	for i, label := range labels {
		id := 0
		fmt.Sscanf(switchBody.text[label[2]:label[3]], "%d", &id)
		if s.FindVariation(id) != nil {
			continue
		}

		bodyEnd := len(switchBody.text)
		if i+1 < len(labels) {
			bodyEnd = labels[i+1][0]
		} else if d := strings.Index(switchBody.text[label[1]:], "default"); d >= 0 {
			bodyEnd = label[1] + d
		}
		body := switchBody.text[label[1]:bodyEnd]

		v := spec.Variation{
			ID:   id,
			Name: fmt.Sprintf("variation_%d", id),
		}
		if m := reSimpleBranch.FindStringSubmatch(body); m != nil {
			v.FunctionName = m[1]
		} else {
			review = append(review, id)
		}
		s.Variations = append(s.Variations, v)
	}
	sort.Ints(review)
	return review
}

// extractApiCalls records every textual match of every catalogue pattern.
// Occurrences are deliberately kept as separate entries.
func (e *Engine) extractApiCalls(source string, s *spec.Specification) {
	for _, pat := range e.catalogue {
		for _, m := range pat.Pattern.FindAllString(source, -1) {
			s.ApiCalls = append(s.ApiCalls, spec.ApiCall{
				Text:    m,
				Context: pat.Context,
			})
		}
	}
}

// extractMembers narrows class body to private section to declaration lines,
// keeping only names that follow the m_ member convention.
func (e *Engine) extractMembers(source string, s *spec.Specification) {
	private := findRegion(reClassBody, source).then(rePrivateSection)
	if !private.ok {
		return
	}
	for _, m := range reMemberDecl.FindAllStringSubmatch(private.text, -1) {
		name := m[2]
		if !strings.HasPrefix(name, "m_") {
			continue
		}
		s.Members = append(s.Members, spec.Member{
			Type: strings.TrimSpace(m[1]),
			Name: name,
		})
	}
}

func (e *Engine) extractFunctions(source string, s *spec.Specification) {
	for _, m := range reFunctionDecl.FindAllStringSubmatch(source, -1) {
		name := m[2]
		if cppKeywords[name] {
			continue
		}
		s.Functions = append(s.Functions, spec.Function{
			Name:      name,
			Signature: strings.TrimSpace(m[0]),
		})
	}
}

// FindDescriptor returns the first XML descriptor next to the source file,
// or empty when there is none.
func FindDescriptor(cppPath string) string {
	matches, err := filepath.Glob(filepath.Join(filepath.Dir(cppPath), "*.xml"))
	if err != nil || len(matches) == 0 {
		return ""
	}
	sort.Strings(matches)
	return matches[0]
}
