package font

import (
	"html"
	"regexp"
	"slices"
	"sort"
	"strings"

	"github.com/joeblew999/plat-mailfix/pkg/check"
	"github.com/joeblew999/plat-mailfix/pkg/markup"
	"github.com/joeblew999/plat-mailfix/pkg/mask"
)

var (
	linkTag    = regexp.MustCompile(`(?i)<link\b(?:[^>"']|"[^"]*"|'[^']*')*>[ \t]*\n?`)
	styleBlock = regexp.MustCompile(`(?is)<style\b[^>]*>(.*?)</style\s*>`)
	styleAttr  = regexp.MustCompile(`(?i)\sstyle\s*=\s*(?:"([^"]*)"|'([^']*)')`)
	importRule = regexp.MustCompile(`(?i)@import\s+(?:url\(\s*(?:"([^"]*)"|'([^']*)'|([^)\s]*))\s*\)|"([^"]*)"|'([^']*)')[^;\n]*;?[ \t]*\n?`)
	fontFace   = regexp.MustCompile(`(?is)@font-face\s*\{[^}]*\}[ \t]*\n?`)
	familyDecl = regexp.MustCompile(`(?i)(font-family\s*:\s*)([^;}]+)`)
)

// Remove deletes hosted font stylesheets, web font imports and @font-face
// rules, then gives every font-family declaration without an installed
// fallback an email-safe stack.
func Remove(c *check.Context) {
	var families []string
	removed := 0

	links := mask.FindOutside(linkTag, c.Text)
	for i := len(links) - 1; i >= 0; i-- {
		m := links[i]
		href, _ := markup.AttrValue(c.Text[m[0]:m[1]], "href")
		href = html.UnescapeString(href)
		if !IsWebFontURL(href) {
			continue
		}
		families = appendNew(families, FamiliesFromURL(href)...)
		c.Replace(m[0], m[1], "")
		removed++
	}

	blocks := mask.FindOutside(styleBlock, c.Text)
	for i := len(blocks) - 1; i >= 0; i-- {
		m := blocks[i]
		css, n, found := stripRules(c.Text[m[2]:m[3]])
		if n == 0 {
			continue
		}
		removed += n
		families = appendNew(families, found...)
		c.Replace(m[2], m[3], css)
	}

	fixed := 0
	regions := cssRegions(c.Text)
	for i := len(regions) - 1; i >= 0; i-- {
		r := regions[i]
		css, n := addFallbacks(c.Text[r.start:r.end], r.quote)
		if n > 0 {
			c.Replace(r.start, r.end, css)
			fixed += n
		}
	}

	switch {
	case removed == 0 && fixed == 0:
		c.Pass(IDWebFonts, "no web fonts")
	case removed == 0:
		c.Fixed(IDWebFonts, "added email-safe fallbacks to %d font-family declaration(s)", fixed)
	default:
		sort.Strings(families)
		names := ""
		if len(families) > 0 {
			names = " (" + strings.Join(families, ", ") + ")"
		}
		c.Fixed(IDWebFonts, "removed %d web font reference(s)%s; added fallbacks to %d font-family declaration(s)",
			removed, names, fixed)
	}
}

// stripRules removes web font imports and @font-face rules from a style
// sheet, returning the families they declared.
func stripRules(css string) (string, int, []string) {
	n := 0
	var families []string
	css = importRule.ReplaceAllStringFunc(css, func(rule string) string {
		u := importURL(importRule.FindStringSubmatch(rule))
		if !IsWebFontURL(u) {
			return rule
		}
		n++
		families = appendNew(families, FamiliesFromURL(u)...)
		return ""
	})
	css = fontFace.ReplaceAllStringFunc(css, func(rule string) string {
		n++
		if m := familyDecl.FindStringSubmatch(rule); m != nil {
			families = appendNew(families, Families(m[2])...)
		}
		return ""
	})
	return css, n, families
}

// importURL picks the URL out of whichever quoting form matched.
func importURL(m []string) string {
	for _, g := range m[1:] {
		if g != "" {
			return g
		}
	}
	return ""
}

type region struct {
	start, end int
	quote      byte
}

// cssRegions returns the style attribute values and style sheet bodies
// outside comments, in document order.
func cssRegions(text string) []region {
	var out []region
	for _, t := range mask.TagsOutside(text) {
		if t.Closing {
			continue
		}
		m := styleAttr.FindStringSubmatchIndex(t.Raw(text))
		switch {
		case m == nil:
		case m[2] >= 0:
			out = append(out, region{start: t.Start + m[2], end: t.Start + m[3], quote: '"'})
		default:
			out = append(out, region{start: t.Start + m[4], end: t.Start + m[5], quote: '\''})
		}
	}
	for _, m := range mask.FindOutside(styleBlock, text) {
		out = append(out, region{start: m[2], end: m[3]})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].start < out[j].start })
	return out
}

// addFallbacks rewrites font-family values that name no installed font.
// quote is the delimiter of the enclosing attribute, if any.
func addFallbacks(css string, quote byte) (string, int) {
	n := 0
	out := familyDecl.ReplaceAllStringFunc(css, func(decl string) string {
		m := familyDecl.FindStringSubmatch(decl)
		value := m[2]
		names := Families(value)
		if len(names) == 0 || HasFallback(value) {
			return decl
		}
		n++
		stack := Stack(names[0])
		if quote == '\'' {
			stack = strings.ReplaceAll(stack, "'", `"`)
		}
		if strings.Contains(strings.ToLower(value), "!important") {
			stack += " !important"
		}
		trail := value[len(strings.TrimRight(value, " \t\r\n")):]
		return m[1] + stack + trail
	})
	return out, n
}

func appendNew(list []string, items ...string) []string {
	for _, it := range items {
		if !slices.Contains(list, it) {
			list = append(list, it)
		}
	}
	return list
}
