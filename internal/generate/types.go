package generate

import "strings"

// parameterTypes re-maps legacy scalar types to target framework types.
// Unknown types pass through unchanged.
var parameterTypes = map[string]string{
	"int":       "int32_t",
	"uint":      "uint32_t",
	"uintmax_t": "uint64_t",
	"size_t":    "size_t",
	"bool":      "bool",
	"float":     "float",
	"double":    "double",
	"string":    "std::string",
}

// integralTypes are raw legacy types whose placeholder zero value is 0.
var integralTypes = map[string]bool{
	"int":       true,
	"uint":      true,
	"int32_t":   true,
	"uint32_t":  true,
	"uint64_t":  true,
	"size_t":    true,
	"uintmax_t": true,
}

// memberTypeSubst is applied to carried-over member declarations as a
// whole-token substitution.
var memberTypeSubst = map[string]string{
	"boost::optional": "std::optional",
}

func mapParameterType(legacy string) string {
	if mapped, ok := parameterTypes[legacy]; ok {
		return mapped
	}
	return legacy
}

// mapMemberType rewrites a member's type for the target framework. A
// logging-handle member returns ok=false and is dropped: the target
// framework provides logging intrinsically.
func mapMemberType(legacy string) (string, bool) {
	if strings.Contains(legacy, "Logger") {
		return "", false
	}
	mapped := legacy
	for old, repl := range memberTypeSubst {
		mapped = strings.ReplaceAll(mapped, old, repl)
	}
	return mapped, true
}

// zeroValue picks the placeholder for a parameter without a default.
func zeroValue(rawType string) string {
	switch {
	case rawType == "bool":
		return "false"
	case integralTypes[rawType]:
		return "0"
	default:
		return "{}"
	}
}

// toSnakeCase converts CamelCase to snake_case for file naming.
func toSnakeCase(name string) string {
	var b strings.Builder
	runes := []rune(name)
	for i, r := range runes {
		if r >= 'A' && r <= 'Z' {
			if i > 0 && (isLower(runes[i-1]) || isDigit(runes[i-1]) ||
				(i+1 < len(runes) && isLower(runes[i+1]))) {
				b.WriteByte('_')
			}
			b.WriteRune(r - 'A' + 'a')
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// toPascalCase converts snake_case to PascalCase for struct naming.
func toPascalCase(name string) string {
	parts := strings.Split(name, "_")
	var b strings.Builder
	for _, part := range parts {
		if part == "" {
			continue
		}
		b.WriteString(strings.ToUpper(part[:1]))
		b.WriteString(strings.ToLower(part[1:]))
	}
	return b.String()
}

func isLower(r rune) bool { return r >= 'a' && r <= 'z' }
func isDigit(r rune) bool { return r >= '0' && r <= '9' }
