package quality

import (
	"regexp"
	"strings"
)

// mergeSyntax is one templating-variable notation used by email platforms.
type mergeSyntax struct {
	Name string
	re   *regexp.Regexp
}

// mergeSyntaxes are tried in order and each match is blanked before the
// next pattern runs, so "{{x}}" is never also counted as "{x}".
var mergeSyntaxes = []mergeSyntax{
	{"{{x}}", regexp.MustCompile(`\{\{\s*[^{}]+?\s*\}\}`)},
	{"{%x%}", regexp.MustCompile(`\{%\s*[^%]+?\s*%\}`)},
	{"<%x%>", regexp.MustCompile(`<%=?\s*[^%]+?\s*%>`)},
	{"*|x|*", regexp.MustCompile(`\*\|[A-Za-z0-9_:-]+\|\*`)},
	{"${x}", regexp.MustCompile(`\$\{[^{}\s]+\}`)},
	{"#{x}", regexp.MustCompile(`#\{[^{}\s]+\}`)},
	{"[[x]]", regexp.MustCompile(`\[\[[^\[\]]+\]\]`)},
	{"%%x%%", regexp.MustCompile(`%%[A-Za-z0-9_.:-]+%%`)},
	{"((x))", regexp.MustCompile(`\(\([A-Za-z0-9_.:-]+\)\)`)},
	{"##x##", regexp.MustCompile(`##[A-Za-z0-9_.:-]+##`)},
	{"%x%", regexp.MustCompile(`%[A-Za-z_][A-Za-z0-9_.:-]*%`)},
	{"{x}", regexp.MustCompile(`\{[A-Za-z_][A-Za-z0-9_.:-]*\}`)},
	{"[x]", regexp.MustCompile(`\[[A-Z][A-Z0-9_]*\]`)},
}

// MergeFields counts the merge fields of s per notation.
func MergeFields(s string) map[string]int {
	out := map[string]int{}
	for _, m := range mergeSyntaxes {
		s = m.re.ReplaceAllStringFunc(s, func(found string) string {
			out[m.Name]++
			return strings.Repeat(" ", len(found))
		})
	}
	return out
}

// HasMergeField reports whether s contains any merge field.
func HasMergeField(s string) bool {
	for _, m := range mergeSyntaxes {
		if m.re.MatchString(s) {
			return true
		}
	}
	return false
}
