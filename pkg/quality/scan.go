package quality

import (
	"regexp"
	"strconv"
	"strings"

	"golang.org/x/net/html"

	"github.com/joeblew999/plat-mailfix/pkg/markup"
	"github.com/joeblew999/plat-mailfix/pkg/mask"
)

// element is one start tag seen by the tokenizer. Markup inside comments,
// including Outlook conditional blocks, is never reported.
type element struct {
	Tag   string
	Attrs map[string]string // first value wins; values are entity-decoded
	Start int
	End   int
	Text  string // visible text of an <a>, image alt included
}

func (e element) attr(name string) (string, bool) {
	v, ok := e.Attrs[name]
	return v, ok
}

// elements tokenizes text read-only and returns its start tags in order.
func elements(text string) []element {
	z := html.NewTokenizer(strings.NewReader(text))
	var out []element
	var linkText strings.Builder
	link := -1
	pos := 0
	for {
		tt := z.Next()
		start := pos
		pos += len(z.Raw())
		switch tt {
		case html.ErrorToken:
			if link >= 0 {
				out[link].Text = normalizeSpace(linkText.String())
			}
			return out
		case html.StartTagToken, html.SelfClosingTagToken:
			name, more := z.TagName()
			e := element{Tag: string(name), Attrs: map[string]string{}, Start: start, End: pos}
			for more {
				var k, v []byte
				k, v, more = z.TagAttr()
				if _, dup := e.Attrs[string(k)]; !dup {
					e.Attrs[string(k)] = string(v)
				}
			}
			out = append(out, e)
			switch {
			case e.Tag == "a" && tt == html.StartTagToken:
				if link >= 0 {
					out[link].Text = normalizeSpace(linkText.String())
				}
				link = len(out) - 1
				linkText.Reset()
			case e.Tag == "img" && link >= 0:
				linkText.WriteString(" " + e.Attrs["alt"] + " ")
			}
		case html.EndTagToken:
			if name, _ := z.TagName(); string(name) == "a" && link >= 0 {
				out[link].Text = normalizeSpace(linkText.String())
				link = -1
			}
		case html.TextToken:
			if link >= 0 {
				linkText.Write(z.Text())
			}
		}
	}
}

func byTag(els []element, tags ...string) []element {
	var out []element
	for _, e := range els {
		for _, t := range tags {
			if e.Tag == t {
				out = append(out, e)
				break
			}
		}
	}
	return out
}

func normalizeSpace(s string) string {
	return strings.Join(strings.Fields(strings.ReplaceAll(s, "\u00a0", " ")), " ")
}

// isPixel reports whether an image is a 1x1 (or smaller) tracker or is
// hidden outright.
func isPixel(img element) bool {
	style := img.Attrs["style"]
	if v, ok := markup.StyleValue(style, "display"); ok && strings.EqualFold(strings.TrimSpace(v), "none") {
		return true
	}
	w, wok := dimension(img, "width")
	h, hok := dimension(img, "height")
	return wok && hok && w <= 1 && h <= 1
}

func dimension(img element, name string) (float64, bool) {
	if v, ok := img.Attrs[name]; ok {
		if n, err := strconv.ParseFloat(strings.TrimSuffix(strings.TrimSpace(v), "px"), 64); err == nil {
			return n, true
		}
	}
	if v, ok := markup.StyleValue(img.Attrs["style"], name); ok {
		return markup.PxValue(v)
	}
	return 0, false
}

var (
	styleBlock  = regexp.MustCompile(`(?is)<style\b[^>]*>(.*?)</style\s*>`)
	scriptBlock = regexp.MustCompile(`(?is)<script\b[^>]*>.*?</script\s*>`)
)

// styleSheets returns the contents of the <style> blocks outside comments.
func styleSheets(text string) []string {
	var out []string
	for _, m := range mask.FindOutside(styleBlock, text) {
		out = append(out, text[m[2]:m[3]])
	}
	return out
}

// inlineStyles returns every style attribute value outside comments.
func inlineStyles(els []element) []string {
	var out []string
	for _, e := range els {
		if v, ok := e.Attrs["style"]; ok && v != "" {
			out = append(out, v)
		}
	}
	return out
}

// withoutCode removes style and script blocks and every comment, leaving
// the markup a reader could see.
func withoutCode(text string) string {
	text = mask.Strip(text)
	text = styleBlock.ReplaceAllString(text, " ")
	return scriptBlock.ReplaceAllString(text, " ")
}
