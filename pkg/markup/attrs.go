// Package markup holds the small lexical helpers shared by the repair
// phases: attribute lists of a raw start tag and inline style declarations.
package markup

import (
	"regexp"
	"strings"
)

// Attr is one attribute of a start tag as written in the source.
type Attr struct {
	Name  string // lower-cased
	Value string // unquoted, not entity-decoded
	Raw   string // exactly as written, e.g. `href="x"`
}

var (
	attrPattern  = regexp.MustCompile(`([^\s=/>"']+)(?:\s*=\s*("[^"]*"|'[^']*'|[^\s>"']+))?`)
	startTagHead = regexp.MustCompile(`^<([a-zA-Z][a-zA-Z0-9:-]*)`)
)

// ParseAttrs parses the attribute section of a start tag. It accepts the
// whole tag (`<a href="x">`) or just the attribute text.
func ParseAttrs(s string) []Attr {
	if loc := startTagHead.FindStringIndex(s); loc != nil {
		s = s[loc[1]:]
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), ">")
	s = strings.TrimSuffix(strings.TrimSpace(s), "/")

	var out []Attr
	for _, m := range attrPattern.FindAllStringSubmatch(s, -1) {
		a := Attr{Name: strings.ToLower(m[1]), Raw: m[0]}
		if len(m[2]) > 0 {
			a.Value = unquote(m[2])
		}
		out = append(out, a)
	}
	return out
}

func unquote(v string) string {
	if len(v) >= 2 && (v[0] == '"' || v[0] == '\'') && v[len(v)-1] == v[0] {
		return v[1 : len(v)-1]
	}
	return v
}

// TagName returns the lower-cased element name of a raw start tag.
func TagName(tag string) string {
	m := startTagHead.FindStringSubmatch(tag)
	if m == nil {
		return ""
	}
	return strings.ToLower(m[1])
}

// AttrValue returns the first value of name in a raw start tag.
func AttrValue(tag, name string) (string, bool) {
	name = strings.ToLower(name)
	for _, a := range ParseAttrs(tag) {
		if a.Name == name {
			return a.Value, true
		}
	}
	return "", false
}

// HasAttr reports whether the raw start tag carries name.
func HasAttr(tag, name string) bool {
	_, ok := AttrValue(tag, name)
	return ok
}

// BuildTag writes a start tag from a name and raw attribute strings.
func BuildTag(name string, raws []string, selfClosing bool) string {
	var b strings.Builder
	b.WriteByte('<')
	b.WriteString(name)
	for _, r := range raws {
		b.WriteByte(' ')
		b.WriteString(r)
	}
	if selfClosing {
		b.WriteString(" /")
	}
	b.WriteByte('>')
	return b.String()
}

// IsSelfClosing reports whether a raw start tag ends in "/>".
func IsSelfClosing(tag string) bool {
	return strings.HasSuffix(strings.TrimSpace(strings.TrimSuffix(tag, ">")), "/")
}

// HasClass reports whether the class attribute of tag lists cls.
func HasClass(tag, cls string) bool {
	v, ok := AttrValue(tag, "class")
	if !ok {
		return false
	}
	for _, c := range strings.Fields(v) {
		if c == cls {
			return true
		}
	}
	return false
}
