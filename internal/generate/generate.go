// Package generate renders a specification plus the mapping table into a TNG
// skeleton source file. Rendering is a pure function of its inputs: the same
// specification and table always produce byte-identical output. The result
// is assembled fully in memory and committed as a single write.
package generate

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"tsmigrate/internal/mapping"
	"tsmigrate/internal/observability"
	"tsmigrate/internal/spec"
)

// Engine renders skeletons against an injected, immutable mapping table.
type Engine struct {
	table *mapping.Table
}

func New(table *mapping.Table) *Engine {
	if table == nil {
		table = mapping.Default()
	}
	return &Engine{table: table}
}

// WriteFile renders the skeleton and commits it in one write.
func (e *Engine) WriteFile(s *spec.Specification, path string) error {
	code := e.Render(s)
	dir := filepath.Dir(path)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create output directory %q: %w", dir, err)
		}
	}
	if err := os.WriteFile(path, []byte(code), 0o644); err != nil {
		return fmt.Errorf("write skeleton %q: %w", path, err)
	}
	return nil
}

// Render produces the complete skeleton text. It is total over any
// well-formed specification: missing optional fields degrade to explicit
// placeholder markers.
func (e *Engine) Render(s *spec.Specification) string {
	start := time.Now()
	defer func() {
		observability.GenerationDuration.Observe(time.Since(start).Seconds())
	}()

	var b strings.Builder
	b.WriteString(e.header(s))
	b.WriteString(e.includes(s))
	b.WriteString("\nnamespace\n{\n")
	b.WriteString(e.class(s))
	b.WriteString(e.registration(s))
	b.WriteString(e.constructor(s))
	b.WriteString(e.setUp(s))
	b.WriteString(e.run(s))
	b.WriteString("\n}  // anonymous namespace\n")
	return b.String()
}

func className(s *spec.Specification) string {
	name := s.ClassName
	if name == "" {
		name = "GeneratedTest"
	}
	return name + "TNG"
}

func (e *Engine) header(s *spec.Specification) string {
	base := s.ClassName
	if base == "" {
		base = "GeneratedTest"
	}
	return fmt.Sprintf(`/**
 * @file %s_test.cpp
 * @brief %s
 * @note Auto-generated skeleton from legacy test: %s
 */
`, toSnakeCase(base), s.SuiteDescription, s.SourceCPP)
}

func (e *Engine) includes(s *spec.Specification) string {
	lines := []string{
		"#include <test/cmn/basic_monolithic_test.h>",
		"#include <test/cmn/monolithic_support.h>",
		"#include <test/cmn/random.h>",
		"",
		"#include <hal/device.h>",
		"",
		"#include <cfg/config.h>",
		"",
		"#include <algorithm>",
		"#include <cstring>",
	}

	extra := make(map[string]bool)
	for _, call := range s.ApiCalls {
		switch {
		case strings.Contains(call.Context, "HalGpu"),
			strings.Contains(call.Context, "RegRead"),
			strings.Contains(call.Context, "RegWrite"):
			extra["// TODO: Add IP-specific includes for register access"] = true
		case strings.Contains(call.Context, "palloc"):
			extra["#include <ip/buffer_util.h>"] = true
		}
	}
	if len(extra) > 0 {
		keys := make([]string, 0, len(extra))
		for k := range extra {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		lines = append(lines, "")
		lines = append(lines, keys...)
	}
	return strings.Join(lines, "\n") + "\n"
}

func (e *Engine) class(s *spec.Specification) string {
	feature := s.Feature
	if feature == "" {
		feature = "unknown"
	}
	sub := s.SubCharacteristic
	if sub == "" {
		sub = "unknown"
	}

	return fmt.Sprintf(`
class %s final : public tng::test::MonolithicTest
{
private:
%s    using Parameters = diag::type::IntrospectableStructure<%s>;

public:
    static constexpr std::string_view k_Feature           = "%s";
    static constexpr std::string_view k_SubCharacteristic = "%s";
    static constexpr size_t           k_Purpose           = 1; // TODO: Set appropriate purpose enum

    static constexpr std::string_view k_Description{
        "%s"};

    static constexpr auto k_TestCaseMap = frozen::make_unordered_map<size_t, Parameters>({
%s
    });

    %s(const tng::test::Parameters& parameters, tng::test::Environment& environment);

    tng::test::SetUpResult setUp(tng::test::ExecutionContext& context) final;
    tng::test::Monitor run(const tng::test::ExecutionContext& context) override;

private:
%s
};
`,
		className(s),
		e.parameterStructs(s),
		e.parameterList(s),
		feature,
		sub,
		s.SuiteDescription,
		e.testCaseMap(s),
		className(s),
		e.memberVariables(s),
	)
}

// parameterStructs renders one named, typed placeholder declaration per
// parameter, in specification order.
func (e *Engine) parameterStructs(s *spec.Specification) string {
	if len(s.Parameters) == 0 {
		return "    // No parameters\n"
	}
	var b strings.Builder
	for _, p := range s.Parameters {
		fmt.Fprintf(&b, `    struct %s : public diag::value::ScalarValue<%s>
    {
        static constexpr std::string_view k_Name = "%s";
    };

`, toPascalCase(p.Name), mapParameterType(p.Type), p.Name)
	}
	return b.String()
}

func (e *Engine) parameterList(s *spec.Specification) string {
	if len(s.Parameters) == 0 {
		return "/* no parameters */"
	}
	names := make([]string, len(s.Parameters))
	for i, p := range s.Parameters {
		names[i] = toPascalCase(p.Name)
	}
	return strings.Join(names, ",\n                                                           ")
}

// testCaseMap renders one lookup row per variation, keyed by its dispatch
// id. Row values use the parameter's declared default when present, else a
// type-appropriate zero value; they are a starting skeleton, never asserted
// correct.
func (e *Engine) testCaseMap(s *spec.Specification) string {
	if len(s.Variations) == 0 {
		return "        {1, {/* default parameters */}},"
	}
	rows := make([]string, 0, len(s.Variations))
	for _, v := range s.Variations {
		values := make([]string, 0, len(s.Parameters))
		for _, p := range s.Parameters {
			value := p.Default
			if value == "" {
				value = zeroValue(p.Type)
			}
			values = append(values, fmt.Sprintf("/*%s*/ %s", p.Name, value))
		}
		valueList := "/* no params */"
		if len(values) > 0 {
			valueList = strings.Join(values, ", ")
		}
		comment := "  // " + v.Description
		if v.FunctionName != "" {
			comment = fmt.Sprintf("  // %s: %s", v.FunctionName, v.Description)
		}
		rows = append(rows, fmt.Sprintf("        {%d, {%s}},%s", v.ID, valueList, comment))
	}
	return strings.Join(rows, "\n")
}

// memberVariables carries the legacy private members over with the type
// substitution applied. Logging handles are dropped entirely.
func (e *Engine) memberVariables(s *spec.Specification) string {
	lines := []string{
		"    tng::test::ExclusiveReservation<tng::hal::Device> m_device;",
		"    const Parameters& m_parameters;",
	}
	for _, m := range s.Members {
		mapped, keep := mapMemberType(m.Type)
		if !keep {
			continue
		}
		lines = append(lines, fmt.Sprintf("    %s %s; // Original: %s", mapped, m.Name, m.Type))
	}
	return strings.Join(lines, "\n")
}

func (e *Engine) registration(s *spec.Specification) string {
	return fmt.Sprintf(`
constexpr tng::test::impl::MonolithicTestSpecification<%s> k_TestSpec;

const bool k_TestRegistered = tng::test::registerTest(k_TestSpec);
`, className(s))
}

func (e *Engine) constructor(s *spec.Specification) string {
	name := className(s)
	return fmt.Sprintf(`
%s::%s(const tng::test::Parameters& parameters, tng::test::Environment& environment) :
    MonolithicTest{parameters, environment},
    m_parameters{diag::value::parameterCast<Parameters>(parameters)}
{
}
`, name, name)
}

func (e *Engine) setUp(s *spec.Specification) string {
	return fmt.Sprintf(`
tng::test::SetUpResult %s::setUp(tng::test::ExecutionContext& /* context */)
{
    // TODO: Add device reservation and setup code
    // Example:
    // m_device = environment.reserveDevice<tng::hal::Device>("GPU");
    // if (!m_device) {
    //     m_log.warning("No device available!");
    //     return tng::test::SetUpResult::Skip;
    // }

    return tng::test::SetUpResult::Ready;
}
`, className(s))
}

func (e *Engine) run(s *spec.Specification) string {
	var variations strings.Builder
	for _, v := range s.Variations {
		fmt.Fprintf(&variations, `
    // Variation %d: %s
    // Description: %s
    // TODO: Implement variation logic
    // Original function: %s()
`, v.ID, v.FunctionName, v.Description, v.FunctionName)
	}
	body := variations.String()
	if body == "" {
		body = "    // TODO: Implement test logic\n"
	}

	return fmt.Sprintf(`
tng::test::Monitor %s::run(const tng::test::ExecutionContext& /* context */)
{
    tng::test::Monitor monitor{m_log};

    // ============================================
    // API Translation Hints (from the legacy test):
%s
    // ============================================

    // Test implementation
%s
    return monitor;
}
`, className(s), e.apiHints(s), body)
}

// apiHints renders one instructional note per distinct call context in
// first-seen order; occurrence duplicates are collapsed here, unlike in the
// model. A context with no mapping match is silently omitted.
func (e *Engine) apiHints(s *spec.Specification) string {
	seen := make(map[string]bool)
	var hints []string
	for _, call := range s.ApiCalls {
		if seen[call.Context] {
			continue
		}
		seen[call.Context] = true

		entry, ok := e.table.Lookup(call.Context)
		if !ok || entry.TNG == "" {
			continue
		}
		hints = append(hints,
			fmt.Sprintf("    // %s:", call.Context),
			fmt.Sprintf("    //   Legacy: %s", truncate(call.Text, 60)),
			fmt.Sprintf("    //   TNG:    %s", entry.TNG),
			"")
	}
	if len(hints) == 0 {
		return "    // No special API calls detected"
	}
	return strings.Join(hints, "\n")
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
