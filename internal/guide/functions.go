package guide

import (
	"fmt"
	"regexp"
	"strings"
)

// ExtractFunction pulls one method implementation out of the legacy source
// by matching the definition header and then scanning to the matching
// closing brace. String literals are honored so braces inside them do not
// unbalance the scan. Returns ok=false when the method is not defined in
// the source.
func ExtractFunction(source, className, funcName string) (string, bool) {
	if funcName == "" {
		return "", false
	}
	header := fmt.Sprintf(
		`(?:void|bool|int|Result|[\w:]+)\s+%s::%s\s*\([^)]*\)\s*(?:override\s*)?\{`,
		regexp.QuoteMeta(className), regexp.QuoteMeta(funcName))
	re, err := regexp.Compile(header)
	if err != nil {
		return "", false
	}
	loc := re.FindStringIndex(source)
	if loc == nil {
		return "", false
	}

	start := loc[0]
	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(source); i++ {
		c := source[i]
		if escaped {
			escaped = false
			continue
		}
		switch c {
		case '\\':
			escaped = true
		case '"':
			inString = !inString
		case '{':
			if !inString {
				depth++
			}
		case '}':
			if !inString {
				depth--
				if depth == 0 {
					return source[start : i+1], true
				}
			}
		}
	}
	return "", false
}

// AppendFunctionBodies renders the original implementation of every
// variation function that could be located, for inclusion after the guide.
func AppendFunctionBodies(source, className string, functionNames []string) string {
	var b strings.Builder
	for _, name := range functionNames {
		body, ok := ExtractFunction(source, className, name)
		if !ok {
			continue
		}
		fmt.Fprintf(&b, "\n### `%s()`\n\n```cpp\n%s\n```\n", name, body)
	}
	if b.Len() == 0 {
		return ""
	}
	return "\n---\n\n## Original Variation Implementations\n" + b.String()
}
