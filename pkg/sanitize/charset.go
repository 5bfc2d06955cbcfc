package sanitize

import (
	"regexp"
	"strings"

	"github.com/joeblew999/plat-mailfix/pkg/check"
	"github.com/joeblew999/plat-mailfix/pkg/mask"
)

// Matches both <meta charset="x"> and the http-equiv content form.
var metaCharset = regexp.MustCompile(`(?i)<meta\b[^>]*?\bcharset\s*=\s*["']?\s*([a-z0-9_:.-]+)[^>]*>`)

func normalizeCharset(v string) string {
	v = strings.ToLower(strings.TrimSpace(v))
	if v == "utf8" {
		return "utf-8"
	}
	return v
}

// CharsetDeclarations returns the normalized charset of every meta
// declaration outside comments, in document order.
func CharsetDeclarations(html string) []string {
	var out []string
	for _, m := range mask.FindOutside(metaCharset, html) {
		out = append(out, normalizeCharset(html[m[2]:m[3]]))
	}
	return out
}

// resolveCharset leaves exactly one charset declaration, preferring utf-8.
func resolveCharset(c *check.Context) {
	matches := mask.FindOutside(metaCharset, c.Text)
	switch len(matches) {
	case 0:
		c.Pass(IDDupCharset, "no charset declaration to deduplicate")
		return
	case 1:
		cs := normalizeCharset(c.Text[matches[0][2]:matches[0][3]])
		if cs != "utf-8" {
			c.Warn(IDDupCharset, "document declares charset %s, expected utf-8", cs)
			return
		}
		c.Pass(IDDupCharset, "single utf-8 charset declaration")
		return
	}

	values := make([]string, len(matches))
	keep := -1
	for i, m := range matches {
		values[i] = normalizeCharset(c.Text[m[2]:m[3]])
		if keep < 0 && values[i] == "utf-8" {
			keep = i
		}
	}
	if keep < 0 {
		keep = 0
	}

	conflict := false
	for _, v := range values {
		if v != values[0] {
			conflict = true
		}
	}
	var n int
	c.Text, n = removeMatchesExcept(c.Text, matches, keep)
	if conflict {
		c.Fixed(IDDupCharset, "conflicting charset declarations [%s]: kept %s, removed %d",
			strings.Join(values, ", "), values[keep], n)
		return
	}
	c.Fixed(IDDupCharset, "removed %d duplicate %s charset declaration(s)", n, values[keep])
}
