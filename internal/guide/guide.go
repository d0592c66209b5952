// Package guide renders the migration guide: a markdown document that puts
// the original legacy source, the extracted structure, and the API mapping
// reference side by side for whoever (or whatever) completes the
// translation. Like the skeleton, the document is a pure function of its
// inputs; a located reference example changes presentation only.
package guide

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"tsmigrate/internal/mapping"
	"tsmigrate/internal/spec"
)

// Input carries everything the guide is rendered from.
type Input struct {
	Spec     *spec.Specification
	Original string // full text of the legacy source

	// Reference holds an existing target-framework test located for this
	// legacy test, when one exists. Its presence switches the reference
	// section, nothing else.
	Reference     string
	ReferencePath string
}

type Builder struct {
	table *mapping.Table
}

func New(table *mapping.Table) *Builder {
	if table == nil {
		table = mapping.Default()
	}
	return &Builder{table: table}
}

// WriteFile renders the guide and commits it in one write.
func (b *Builder) WriteFile(in Input, path string) error {
	doc := b.Render(in)
	dir := filepath.Dir(path)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create guide directory %q: %w", dir, err)
		}
	}
	if err := os.WriteFile(path, []byte(doc), 0o644); err != nil {
		return fmt.Errorf("write guide %q: %w", path, err)
	}
	return nil
}

func (b *Builder) Render(in Input) string {
	s := in.Spec
	var doc strings.Builder

	testName := s.TestName
	if testName == "" {
		testName = "UnknownTest"
	}
	class := s.ClassName
	if class == "" {
		class = testName
	}

	fmt.Fprintf(&doc, `# Legacy Test Translation Context

## Test Information

| Field | Value |
|-------|-------|
| **Test Name** | %s |
| **Class Name** | %s |
| **Suite** | %s |
| **Description** | %s |
| **Source File** | `+"`%s`"+` |
`, testName, class, s.SuiteID, s.SuiteDescription, s.SourceCPP)

	b.referenceSection(&doc, in)
	b.parameterSection(&doc, s)
	b.variationSection(&doc, s)

	doc.WriteString("\n---\n\n## Original Legacy Test Code\n\n```cpp\n")
	doc.WriteString(in.Original)
	doc.WriteString("\n```\n")

	var fns []string
	for _, v := range s.Variations {
		if v.FunctionName != "" {
			fns = append(fns, v.FunctionName)
		}
	}
	doc.WriteString(AppendFunctionBodies(in.Original, class, fns))

	b.mappingSection(&doc)
	b.instructionSection(&doc)

	return doc.String()
}

func (b *Builder) referenceSection(doc *strings.Builder, in Input) {
	if in.Reference == "" {
		doc.WriteString(`
---

## Reference Test

> Note: no existing target-framework test was found for this legacy test.
> The generated skeleton provides a starting template; refer to other tests
> in your codebase for specific patterns.

---
`)
		return
	}
	fmt.Fprintf(doc, `
---

## Existing Reference Test

An existing target-framework test was found that corresponds to this legacy
test. Use it as the primary reference for structure and conventions.

**Reference File**: `+"`%s`"+`

`+"```cpp\n%s\n```"+`

Key patterns to follow from the reference: class hierarchy, the ScalarValue
parameter pattern, the k_TestCaseMap variation table, m_log logging, monitor
expectations, HAL device access.

---
`, in.ReferencePath, in.Reference)
}

func (b *Builder) parameterSection(doc *strings.Builder, s *spec.Specification) {
	doc.WriteString("\n## Parameters\n\n")
	if len(s.Parameters) == 0 {
		doc.WriteString("No parameters detected.\n")
		return
	}
	doc.WriteString("| Name | Type | Default | Description |\n")
	doc.WriteString("|------|------|---------|-------------|\n")
	for _, p := range s.Parameters {
		def := p.Default
		if def == "" {
			def = "N/A"
		}
		fmt.Fprintf(doc, "| `%s` | %s | %s | %s |\n", p.Name, p.Type, def, p.Description)
	}
}

func (b *Builder) variationSection(doc *strings.Builder, s *spec.Specification) {
	doc.WriteString("\n## Test Variations\n\n")
	if len(s.Variations) == 0 {
		doc.WriteString("No variations detected.\n")
		return
	}
	doc.WriteString("| ID | Name | Function | Description |\n")
	doc.WriteString("|----|------|----------|-------------|\n")
	for _, v := range s.Variations {
		fn := v.FunctionName
		if fn == "" {
			fn = "(needs manual review)"
		}
		fmt.Fprintf(doc, "| %d | %s | %s | %s |\n", v.ID, v.Name, fn, v.Description)
	}
}

func (b *Builder) mappingSection(doc *strings.Builder) {
	doc.WriteString(`
---

## API Translation Reference

### Framework Differences

| Aspect | Legacy | Target |
|--------|--------|--------|
`)
	if structural, ok := b.table.Structural(); ok {
		for _, e := range structural.Entries {
			fmt.Fprintf(doc, "| **%s** | `%s` | `%s` |\n",
				titleize(e.Key), e.Entry.TServer, e.Entry.TNG)
		}
	}

	for _, sec := range b.table.HintSections() {
		fmt.Fprintf(doc, "\n### %s\n", titleize(sec.Name))
		for _, e := range sec.Entries {
			if e.Entry.TServer == "" || e.Entry.TNG == "" {
				continue
			}
			fmt.Fprintf(doc, "- `%s` -> `%s`\n", e.Entry.TServer, e.Entry.TNG)
		}
	}
}

func (b *Builder) instructionSection(doc *strings.Builder) {
	doc.WriteString(`
---

## Translation Instructions

### Memory Allocation

` + "```cpp" + `
// Legacy
env::Resource* res = env::System::palloc(size, minAddr, maxAddr, alignment, cacheType);
void* ptr = res->ptr();
// ... use memory ...
env::System::pfree(res);

// Target
auto& localNode = tng::hal::getHal().getLocalNode();
auto buffer = localNode.allocateBuffer(size, alignment);
auto binding = localNode.bindBufferToHost(buffer);
void* ptr = binding.getHostVirtualAddress();
// automatic cleanup (RAII)
` + "```" + `

### Logging

` + "```cpp" + `
// Legacy
CORE_LOG_DEBUG(m_lg) << "Value: " << std::hex << value << std::endl;

// Target
m_log.debug("Value: {:#x}", value);
` + "```" + `

### Result Handling

` + "```cpp" + `
// Legacy
if (error_condition) {
    return Fail;
}
return Pass;

// Target
monitor.expectTrue(!error_condition, "Something failed");
return monitor;
` + "```" + `

### Parameter Access

` + "```cpp" + `
// Legacy
int count = Parameter<int>("count", 10);

// Target (in run()):
int count = m_parameters.get<Count>();
` + "```" + `

---

## How to Use This Context

1. Copy this document into your assistant of choice, or keep it open while
   translating by hand.
2. Translate one variation at a time; the generated skeleton already carries
   the parameter structs and the test case map.
3. Review everything: the skeleton and these hints are a starting point, not
   final code.
`)
}

func titleize(name string) string {
	parts := strings.Split(name, "_")
	for i, p := range parts {
		if p == "" {
			continue
		}
		parts[i] = strings.ToUpper(p[:1]) + p[1:]
	}
	return strings.Join(parts, " ")
}
