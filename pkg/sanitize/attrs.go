package sanitize

import (
	"regexp"
	"strings"

	"github.com/joeblew999/plat-mailfix/pkg/check"
	"github.com/joeblew999/plat-mailfix/pkg/markup"
	"github.com/joeblew999/plat-mailfix/pkg/mask"
)

// dedupeAttributes rewrites start tags that repeat an attribute. Repeated
// style attributes are merged, any other repeat keeps its first value.
func dedupeAttributes(c *check.Context) {
	text := c.Text
	tags := mask.TagsOutside(text)
	fixed := 0
	for i := len(tags) - 1; i >= 0; i-- {
		t := tags[i]
		if t.Closing {
			continue
		}
		raw := t.Raw(text)
		rebuilt, ok := rebuildWithoutDuplicates(raw)
		if !ok {
			continue
		}
		text = text[:t.Start] + rebuilt + text[t.End:]
		fixed++
	}
	if fixed == 0 {
		c.Pass(IDDupAttributes, "no duplicate attributes")
		return
	}
	c.Text = text
	c.Fixed(IDDupAttributes, "merged duplicate attributes on %d tag(s)", fixed)
}

func rebuildWithoutDuplicates(raw string) (string, bool) {
	attrs := markup.ParseAttrs(raw)
	seen := make(map[string]bool, len(attrs))
	dup := false
	for _, a := range attrs {
		if seen[a.Name] {
			dup = true
			break
		}
		seen[a.Name] = true
	}
	if !dup {
		return raw, false
	}

	clear(seen)
	var styles []string
	stylePos := -1
	out := make([]string, 0, len(attrs))
	for _, a := range attrs {
		if a.Name == "style" {
			styles = append(styles, a.Value)
			if stylePos < 0 {
				stylePos = len(out)
				out = append(out, a.Raw)
			}
			continue
		}
		if seen[a.Name] {
			continue
		}
		seen[a.Name] = true
		out = append(out, a.Raw)
	}
	if len(styles) > 1 {
		out[stylePos] = quoteAttr("style", markup.MergeStyles(styles...))
	}

	// keep the author's casing of the element name
	name := raw[1 : 1+len(markup.TagName(raw))]
	return markup.BuildTag(name, out, markup.IsSelfClosing(raw)), true
}

func quoteAttr(name, value string) string {
	if strings.Contains(value, `"`) {
		return name + "='" + value + "'"
	}
	return name + `="` + value + `"`
}

var hrefAttr = regexp.MustCompile(`(?i)(\bhref\s*=\s*)(?:"([^"]*)"|'([^']*)')`)

var lineBreakRun = regexp.MustCompile(`[ \t]*[\r\n]+[ \t]*`)

// cleanHrefs trims whitespace around href values. A line break inside a
// URL breaks the link in most clients and is reported on its own.
func cleanHrefs(c *check.Context) {
	trimmed, broken := 0, 0
	c.Text = hrefAttr.ReplaceAllStringFunc(c.Text, func(m string) string {
		sub := hrefAttr.FindStringSubmatch(m)
		quote := `"`
		value := sub[2]
		if strings.HasPrefix(m[len(sub[1]):], "'") {
			quote = "'"
			value = sub[3]
		}
		orig := value
		hadBreak := strings.ContainsAny(value, "\r\n")
		if hadBreak {
			value = lineBreakRun.ReplaceAllString(value, "")
		}
		value = strings.TrimSpace(value)
		if value == orig {
			return m
		}
		if hadBreak {
			broken++
		} else {
			trimmed++
		}
		return sub[1] + quote + value + quote
	})

	if trimmed == 0 {
		c.Pass(IDHrefWhitespace, "no whitespace around href values")
	} else {
		c.Fixed(IDHrefWhitespace, "trimmed whitespace in %d href value(s)", trimmed)
	}
	if broken == 0 {
		c.Pass(IDHrefNewline, "no line breaks inside href values")
	} else {
		c.Fixed(IDHrefNewline, "removed line breaks from %d href value(s); these links were broken", broken)
	}
}

var selfClosedBlock = regexp.MustCompile(`(?i)<(td|th|tr|table|div|span|a|p|center|tbody)\b((?:[^>"'/]|"[^"]*"|'[^']*'|/[^>])*?)\s*/>`)

// expandSelfClosing turns <td/> style tags into explicit open/close pairs.
// Void tags such as <br/> and <img/> are left alone.
func expandSelfClosing(c *check.Context) {
	n := 0
	c.Text = selfClosedBlock.ReplaceAllStringFunc(c.Text, func(m string) string {
		sub := selfClosedBlock.FindStringSubmatch(m)
		n++
		return "<" + sub[1] + sub[2] + "></" + sub[1] + ">"
	})
	if n == 0 {
		c.Pass(IDSelfClosing, "no self-closed block tags")
		return
	}
	c.Fixed(IDSelfClosing, "expanded %d self-closed block tag(s)", n)
}
