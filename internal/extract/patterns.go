package extract

import "regexp"

// Structural patterns for the legacy TServer C++ dialect. These are targeted
// best-effort matches, not a grammar: a miss leaves the corresponding
// specification field empty instead of failing.
var (
	reClassDecl    = regexp.MustCompile(`class\s+(\w+)\s*:\s*public\s+ts::Test`)
	reInclude      = regexp.MustCompile(`#include\s*[<"]([^>"]+)[>"]`)
	reTestInstance = regexp.MustCompile(`TServerTestInstance\s*\(\s*(\w+)\s*,\s*(\w+)\s*\)`)

	// The two recognized parameter declaration idioms: with optional
	// default, and the Opt form without one.
	reParameter    = regexp.MustCompile(`Parameter<(\w+)>\s*\(\s*"(\w+)"(?:\s*,\s*([^)]+))?\)`)
	reParameterOpt = regexp.MustCompile(`ParameterOpt<(\w+)>\s*\(\s*"(\w+)"\s*\)`)

	// Dispatch region chain: Main body, then the GetId switch inside it,
	// then the case labels inside that.
	reMainBody   = regexp.MustCompile(`(?ms)Result\s+\w+::Main\(\)\s*\{(.+?)^\}`)
	reSwitchBody = regexp.MustCompile(`(?s)switch\s*\(\s*(?:this->)?GetId\(\)\s*\)\s*\{(.+?)\}`)
	reCaseLabel  = regexp.MustCompile(`case\s+(\d+)\s*:`)

	// The only branch shape translated automatically: one comment at most,
	// one function invocation, then branch termination. Anything else is
	// flagged for manual review rather than guessed at.
	reSimpleBranch = regexp.MustCompile(`(?s)^\s*(?://[^\n]*\n)?\s*(\w+)\s*\(\s*\)\s*;\s*(?:break\s*;)?\s*$`)

	// Member region chain: class body, then the private section, then
	// declaration-shaped lines.
	reClassBody      = regexp.MustCompile(`(?s)class\s+\w+[^{]*\{(.+?)\};`)
	rePrivateSection = regexp.MustCompile(`(?s)private\s*:(.*?)(?:public\s*:|protected\s*:|$)`)
	reMemberDecl     = regexp.MustCompile(`(?m)^\s*([\w:<>,]+(?:[ \t]+[\w:<>,]+)*?)[ \t]+(\w+)\s*;`)

	reFunctionDecl = regexp.MustCompile(`(?:void|Result|bool|int|[\w:]+)\s+(?:(\w+)::)?(\w+)\s*\([^)]*\)`)
)

// ApiPattern is one entry of the call-shape catalogue. Context tags every
// match so generation can collapse occurrences and look up a suggestion.
type ApiPattern struct {
	Context string
	Pattern *regexp.Regexp
}

// DefaultCatalogue returns the fixed call-shape catalogue in its declared
// order: resource allocate/free, register access, component lookup, log
// emission.
func DefaultCatalogue() []ApiPattern {
	return []ApiPattern{
		{"TargetActive", regexp.MustCompile(`TargetActive\(\)`)},
		{"GetComponent", regexp.MustCompile(`GetComponent<(\w+)>`)},
		{"palloc", regexp.MustCompile(`env::System::palloc\s*\([^)]+\)`)},
		{"pfree", regexp.MustCompile(`env::System::pfree\s*\([^)]+\)`)},
		{"TcoreProcess", regexp.MustCompile(`GetTcoreProcess\(\)`)},
		{"HalGpu", regexp.MustCompile(`Get<\s*(\w+)\s*>\s*\(\s*\)`)},
		{"RegRead", regexp.MustCompile(`RegRead\s*\([^)]+\)`)},
		{"RegWrite", regexp.MustCompile(`RegWrite\s*\([^)]+\)`)},
		{"CORE_LOG", regexp.MustCompile(`CORE_LOG_(\w+)\s*\(`)},
	}
}

// cppKeywords are control keywords that the loose function pattern would
// otherwise report as function names.
var cppKeywords = map[string]bool{
	"if":     true,
	"while":  true,
	"for":    true,
	"switch": true,
	"catch":  true,
	"return": true,
}
