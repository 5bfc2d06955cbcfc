// Package doctype enforces the document prologue email clients expect:
// one XHTML 1.0 Transitional doctype, the Office namespaces on <html>, a
// utf-8 charset declaration and a title.
package doctype

import (
	"regexp"
	"strings"

	"github.com/joeblew999/plat-mailfix/pkg/check"
	"github.com/joeblew999/plat-mailfix/pkg/mask"
)

const (
	IDDoctype     = "P01_DOCTYPE"
	IDHTMLXmlns   = "P02_HTML_XMLNS"
	IDMetaCharset = "P03_META_CHARSET"
	IDTitle       = "P04_TITLE"
)

// Canonical is the doctype every repaired template carries.
const Canonical = `<!DOCTYPE html PUBLIC "-//W3C//DTD XHTML 1.0 Transitional//EN" "http://www.w3.org/TR/xhtml1/DTD/xhtml1-transitional.dtd">`

var (
	doctypePattern = regexp.MustCompile(`(?is)<!DOCTYPE\b[^>]*>`)
	spaceRun       = regexp.MustCompile(`\s+`)
)

// Family names the kind of doctype found.
type Family string

const (
	FamilyTransitional Family = "XHTML 1.0 Transitional"
	FamilyStrict       Family = "XHTML Strict"
	FamilyHTML5        Family = "HTML5"
	FamilyHTML4        Family = "HTML 4"
	FamilyUnknown      Family = "unknown"
)

// Classify returns the family of a raw doctype declaration.
func Classify(decl string) Family {
	d := strings.ToLower(spaceRun.ReplaceAllString(decl, " "))
	switch {
	case strings.Contains(d, "xhtml 1.0 transitional"):
		return FamilyTransitional
	case strings.Contains(d, "strict"):
		return FamilyStrict
	case strings.Contains(d, "html 4"):
		return FamilyHTML4
	case strings.TrimSpace(strings.TrimSuffix(strings.TrimPrefix(d, "<!doctype"), ">")) == "html":
		return FamilyHTML5
	}
	return FamilyUnknown
}

// Normalize drives the doctype state machine on c: none is inserted, one
// is kept, normalized or replaced, several collapse into one canonical
// declaration at the start of the document.
func Normalize(c *check.Context) {
	matches := mask.FindOutside(doctypePattern, c.Text)
	switch len(matches) {
	case 0:
		c.Text = Canonical + "\n" + strings.TrimLeft(c.Text, " \t\n")
		c.Fixed(IDDoctype, "inserted %s doctype", FamilyTransitional)
		return
	case 1:
		normalizeOne(c, matches[0])
		return
	}

	text := c.Text
	for i := len(matches) - 1; i >= 0; i-- {
		text = text[:matches[i][0]] + text[matches[i][1]:]
	}
	c.Text = Canonical + "\n" + strings.TrimLeft(text, " \t\n")
	c.Fixed(IDDoctype, "replaced %d doctype declarations with one %s doctype", len(matches), FamilyTransitional)
}

func normalizeOne(c *check.Context, m []int) {
	decl := c.Text[m[0]:m[1]]
	before := c.Text[:m[0]]
	atStart := strings.TrimSpace(before) == ""
	rest := strings.TrimLeft(c.Text[m[1]:], " \t\n")

	family := Classify(decl)
	switch {
	case decl == Canonical && atStart && before == "":
		c.Pass(IDDoctype, "%s doctype present", family)
		return
	case decl == Canonical && atStart:
		c.Text = Canonical + "\n" + rest
		c.Fixed(IDDoctype, "removed whitespace before doctype")
		return
	case decl == Canonical:
		c.Text = Canonical + "\n" + strings.TrimLeft(before, " \t\n") + rest
		c.Fixed(IDDoctype, "moved doctype to the start of the document")
		return
	case family == FamilyTransitional && strings.EqualFold(spaceRun.ReplaceAllString(decl, " "), Canonical):
		c.Text = Canonical + "\n" + strings.TrimLeft(before, " \t\n") + rest
		c.Fixed(IDDoctype, "normalized whitespace in doctype")
		return
	}
	c.Text = Canonical + "\n" + strings.TrimLeft(before, " \t\n") + rest
	c.Fixed(IDDoctype, "replaced %s doctype with %s", family, FamilyTransitional)
}
