package sanitize

import (
	"strings"

	"github.com/joeblew999/plat-mailfix/pkg/check"
	"github.com/joeblew999/plat-mailfix/pkg/markup"
	"github.com/joeblew999/plat-mailfix/pkg/mask"
)

var editorAttrPrefixes = []string{"data-qa-", "data-editor-"}

var editorStyleProps = map[string]bool{
	"-webkit-user-modify": true,
	"user-modify":         true,
	"caret-color":         true,
	"user-select":         true,
	"-webkit-user-select": true,
}

// StripCMSArtifacts removes residue that visual editors leave on markup:
// contenteditable, data-qa-* and data-editor-* attributes, editor-only
// inline style properties, empty class attributes and alt="null". It is
// idempotent and returns the number of artifacts removed.
func StripCMSArtifacts(html string) (string, int) {
	tags := mask.Tags(html)
	total := 0
	for i := len(tags) - 1; i >= 0; i-- {
		t := tags[i]
		if t.Closing {
			continue
		}
		raw := t.Raw(html)
		rebuilt, n := stripTagArtifacts(raw)
		if n == 0 {
			continue
		}
		html = html[:t.Start] + rebuilt + html[t.End:]
		total += n
	}
	return html, total
}

func stripTagArtifacts(raw string) (string, int) {
	attrs := markup.ParseAttrs(raw)
	out := make([]string, 0, len(attrs))
	removed := 0
	for _, a := range attrs {
		switch {
		case a.Name == "contenteditable" || hasAnyPrefix(a.Name, editorAttrPrefixes):
			removed++
		case a.Name == "class" && strings.TrimSpace(a.Value) == "":
			removed++
		case a.Name == "alt" && strings.EqualFold(strings.TrimSpace(a.Value), "null"):
			out = append(out, `alt=""`)
			removed++
		case a.Name == "style":
			style, n := stripEditorStyles(a.Value)
			removed += n
			switch {
			case n == 0:
				out = append(out, a.Raw)
			case style != "":
				out = append(out, quoteAttr("style", style))
			}
		default:
			out = append(out, a.Raw)
		}
	}
	if removed == 0 {
		return raw, 0
	}
	name := raw[1 : 1+len(markup.TagName(raw))]
	return markup.BuildTag(name, out, markup.IsSelfClosing(raw)), removed
}

func stripEditorStyles(style string) (string, int) {
	decls := markup.ParseStyle(style)
	kept := decls[:0]
	n := 0
	for _, d := range decls {
		if editorStyleProps[d.Property] {
			n++
			continue
		}
		kept = append(kept, d)
	}
	if n == 0 {
		return style, 0
	}
	return markup.FormatStyle(kept), n
}

func hasAnyPrefix(s string, prefixes []string) bool {
	for _, p := range prefixes {
		if strings.HasPrefix(s, p) {
			return true
		}
	}
	return false
}

func stripCMSResidue(c *check.Context) {
	var n int
	c.Text, n = StripCMSArtifacts(c.Text)
	if n == 0 {
		c.Pass(IDCMSResidue, "no editor residue")
		return
	}
	c.Fixed(IDCMSResidue, "removed %d editor artifact(s)", n)
}
