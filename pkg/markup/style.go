package markup

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/aymerick/douceur/parser"
	"github.com/gorilla/css/scanner"
)

// Decl is one CSS declaration from an inline style.
type Decl struct {
	Property string // lower-cased
	Value    string
}

// ParseStyle splits an inline style into declarations. Semicolons inside
// strings, url() or other functions (data URIs, font names) do not split.
// A malformed declaration is dropped without losing the ones after it.
func ParseStyle(style string) []Decl {
	var out []Decl
	for _, chunk := range declChunks(style) {
		decls, err := parser.ParseDeclarations(chunk + ";")
		if err != nil {
			continue
		}
		for _, d := range decls {
			if d.Property == "" {
				continue
			}
			v := d.Value
			if d.Important {
				v += " !important"
			}
			out = append(out, Decl{Property: strings.ToLower(d.Property), Value: v})
		}
	}
	return out
}

// declChunks cuts a declaration list at its top-level semicolons.
// douceur stops at the first bad declaration, so each one is parsed alone.
func declChunks(style string) []string {
	var (
		chunks []string
		b      strings.Builder
		depth  int
	)
	flush := func() {
		if c := strings.TrimSpace(b.String()); c != "" {
			chunks = append(chunks, c)
		}
		b.Reset()
	}
	s := scanner.New(style)
	for {
		tok := s.Next()
		if tok.Type == scanner.TokenEOF || tok.Type == scanner.TokenError {
			break
		}
		switch {
		case tok.Type == scanner.TokenComment:
			continue
		case tok.Type == scanner.TokenFunction:
			depth++
		case tok.Type != scanner.TokenChar:
		case tok.Value == "(":
			depth++
		case tok.Value == ")":
			if depth > 0 {
				depth--
			}
		case tok.Value == ";" && depth == 0:
			flush()
			continue
		}
		b.WriteString(tok.Value)
	}
	flush()
	return chunks
}

// FormatStyle joins declarations back into an inline style.
func FormatStyle(decls []Decl) string {
	parts := make([]string, 0, len(decls))
	for _, d := range decls {
		parts = append(parts, d.Property+":"+d.Value)
	}
	if len(parts) == 0 {
		return ""
	}
	return strings.Join(parts, ";") + ";"
}

// MergeStyles combines several inline styles; a later value wins per
// property while the property keeps its first position.
func MergeStyles(styles ...string) string {
	var merged []Decl
	index := map[string]int{}
	for _, s := range styles {
		for _, d := range ParseStyle(s) {
			if i, ok := index[d.Property]; ok {
				merged[i].Value = d.Value
				continue
			}
			index[d.Property] = len(merged)
			merged = append(merged, d)
		}
	}
	return FormatStyle(merged)
}

// StyleValue returns the last value declared for prop.
func StyleValue(style, prop string) (string, bool) {
	prop = strings.ToLower(prop)
	val, found := "", false
	for _, d := range ParseStyle(style) {
		if d.Property == prop {
			val, found = d.Value, true
		}
	}
	return val, found
}

var numberPrefix = regexp.MustCompile(`^-?\d+(?:\.\d+)?`)

// PxValue reads the leading number of a length such as "44px" or "44".
// Percentages and other relative units are rejected.
func PxValue(v string) (float64, bool) {
	v = strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(v), "!important"))
	m := numberPrefix.FindString(v)
	if m == "" {
		return 0, false
	}
	unit := strings.TrimSpace(v[len(m):])
	if unit != "" && unit != "px" {
		return 0, false
	}
	f, err := strconv.ParseFloat(m, 64)
	if err != nil {
		return 0, false
	}
	return f, true
}

var colorPattern = regexp.MustCompile(`(?i)#[0-9a-f]{3,8}\b|rgba?\([^)]*\)|\b(?:white|black|red|green|blue|orange|purple|gray|grey|navy|teal|maroon|transparent)\b`)

// FirstColor returns the first color literal in a CSS value such as a
// background shorthand.
func FirstColor(v string) string {
	return colorPattern.FindString(v)
}
