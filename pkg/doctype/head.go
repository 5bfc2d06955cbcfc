package doctype

import (
	"html"
	"regexp"
	"strings"

	"github.com/joeblew999/plat-mailfix/pkg/check"
	"github.com/joeblew999/plat-mailfix/pkg/markup"
	"github.com/joeblew999/plat-mailfix/pkg/mask"
	"github.com/joeblew999/plat-mailfix/pkg/sanitize"
)

// Namespace is one xmlns attribute required on <html>.
type Namespace struct {
	Attr  string
	Value string
}

// Namespaces lists the attributes Outlook needs to render VML and Office
// extensions.
var Namespaces = []Namespace{
	{"xmlns", "http://www.w3.org/1999/xhtml"},
	{"xmlns:v", "urn:schemas-microsoft-com:vml"},
	{"xmlns:o", "urn:schemas-microsoft-com:office:office"},
}

var (
	htmlOpenTag  = regexp.MustCompile(`(?i)<html\b(?:[^>"']|"[^"]*"|'[^']*')*>`)
	headOpenTag  = regexp.MustCompile(`(?i)<head\b[^>]*>`)
	titleElement = regexp.MustCompile(`(?is)<title\b[^>]*>(.*?)</title\s*>`)
)

// EnforceXmlns adds or corrects the xmlns attributes of the first <html>
// tag. Every other attribute, such as lang or dir, is kept verbatim.
func EnforceXmlns(c *check.Context) {
	matches := mask.FindOutside(htmlOpenTag, c.Text)
	if len(matches) == 0 {
		c.Fail(IDHTMLXmlns, "no <html> tag to attach xmlns attributes to")
		return
	}
	m := matches[0]
	raw := c.Text[m[0]:m[1]]

	attrs := markup.ParseAttrs(raw)
	out := make([]string, 0, len(attrs)+len(Namespaces))
	want := make(map[string]string, len(Namespaces))
	for _, ns := range Namespaces {
		want[ns.Attr] = ns.Value
	}
	var changed []string
	present := map[string]bool{}
	for _, a := range attrs {
		v, required := want[a.Name]
		if !required {
			out = append(out, a.Raw)
			continue
		}
		if present[a.Name] {
			changed = append(changed, "duplicate "+a.Name)
			continue
		}
		present[a.Name] = true
		if a.Value != v {
			changed = append(changed, a.Name)
			out = append(out, a.Name+`="`+v+`"`)
			continue
		}
		out = append(out, a.Raw)
	}
	for _, ns := range Namespaces {
		if !present[ns.Attr] {
			changed = append(changed, ns.Attr)
			out = append(out, ns.Attr+`="`+ns.Value+`"`)
		}
	}
	if len(changed) == 0 {
		c.Pass(IDHTMLXmlns, "xmlns, xmlns:v and xmlns:o present")
		return
	}
	name := raw[1 : 1+len("html")]
	c.Text = c.Text[:m[0]] + markup.BuildTag(name, out, false) + c.Text[m[1]:]
	c.Fixed(IDHTMLXmlns, "set %s on <html>", strings.Join(changed, ", "))
}

const metaCharsetTag = `<meta http-equiv="Content-Type" content="text/html; charset=utf-8" />`

// EnsureCharset inserts a utf-8 declaration when the document has none.
// Conflicting declarations are resolved earlier by the sanitizer.
func EnsureCharset(c *check.Context) {
	if decls := sanitize.CharsetDeclarations(c.Text); len(decls) > 0 {
		c.Pass(IDMetaCharset, "charset declared as %s", decls[0])
		return
	}
	head := mask.FindOutside(headOpenTag, c.Text)
	if len(head) == 0 {
		c.Warn(IDMetaCharset, "no charset declaration and no <head> to add one to")
		return
	}
	at := head[0][1]
	c.Text = c.Text[:at] + "\n" + metaCharsetTag + c.Text[at:]
	c.Fixed(IDMetaCharset, "inserted utf-8 charset declaration")
}

// EnsureTitle returns a phase that makes the document title match want.
// With want empty it only reports a missing or empty title.
func EnsureTitle(want string) func(*check.Context) {
	want = strings.TrimSpace(want)
	return func(c *check.Context) {
		titles := mask.FindOutside(titleElement, c.Text)
		if len(titles) > 0 {
			t := titles[0]
			current := strings.TrimSpace(html.UnescapeString(c.Text[t[2]:t[3]]))
			switch {
			case want != "" && current != want:
				c.Text = c.Text[:t[2]] + html.EscapeString(want) + c.Text[t[3]:]
				c.Fixed(IDTitle, "set title to %q", want)
			case current == "":
				c.Warn(IDTitle, "title is empty; some clients show it in the preview pane")
			default:
				c.Pass(IDTitle, "title %q", current)
			}
			return
		}

		head := mask.FindOutside(headOpenTag, c.Text)
		switch {
		case len(head) == 0:
			c.Warn(IDTitle, "no <head> to add a title to")
		case want == "":
			c.Warn(IDTitle, "document has no title")
		default:
			at := head[0][1]
			c.Text = c.Text[:at] + "\n<title>" + html.EscapeString(want) + "</title>" + c.Text[at:]
			c.Fixed(IDTitle, "inserted title %q", want)
		}
	}
}
