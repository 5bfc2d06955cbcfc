package placeholder

import (
	"fmt"
	"html"
	"math"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/joeblew999/plat-mailfix/pkg/check"
	"github.com/joeblew999/plat-mailfix/pkg/markup"
	"github.com/joeblew999/plat-mailfix/pkg/mask"
)

const (
	// preheaderWindow is how far after <body> a preheader may start.
	preheaderWindow = 5000
	// preheaderTarget is the visible length the padding aims for.
	preheaderTarget = 300
	preheaderPad    = "&zwnj;&nbsp;"
)

var (
	bodyOpenTag  = regexp.MustCompile(`(?i)<body\b(?:[^>"']|"[^"]*"|'[^']*')*>`)
	bodyCloseTag = regexp.MustCompile(`(?i)</body\s*>`)
	divOpenTag   = regexp.MustCompile(`(?i)<div\b(?:[^>"']|"[^"]*"|'[^']*')*>`)
	hiddenStyle  = regexp.MustCompile(`(?i)display\s*:\s*none|visibility\s*:\s*hidden|mso-hide\s*:\s*all|max-height\s*:\s*0(?:px)?\s*(?:;|!|$)|font-size\s*:\s*0(?:px)?\s*(?:;|!|$)`)
	nestedBlock  = regexp.MustCompile(`(?i)<(?:table|img)\b`)
	anyTag       = regexp.MustCompile(`<[^>]*>`)
	paddingChars = strings.NewReplacer("&zwnj;", "", "&nbsp;", " ", "\u200c", "", "\u00a0", " ", "&#8204;", "", "&#847;", "")
)

// Preheader is a hidden preview-text div found right after <body>.
type Preheader struct {
	Start int // offset of <div
	End   int // offset just past </div>
	Text  string
}

// FindPreheaders returns the hidden divs near the top of <body> that look
// like preview text: hidden by inline style, no class, and no nested table
// or image. Nested candidates are reported once, by their outermost div.
func FindPreheaders(html string) []Preheader {
	body := mask.FindOutside(bodyOpenTag, html)
	if len(body) == 0 {
		return nil
	}
	from := body[0][1]
	limit := from + preheaderWindow

	var out []Preheader
	var closers mask.Closers
	for _, m := range mask.FindOutside(divOpenTag, html) {
		if m[0] < from {
			continue
		}
		if m[0] > limit {
			break
		}
		if len(out) > 0 && m[0] < out[len(out)-1].End {
			continue
		}
		tag := html[m[0]:m[1]]
		style, _ := markup.AttrValue(tag, "style")
		if !hiddenStyle.MatchString(style) || markup.HasAttr(tag, "class") {
			continue
		}
		if closers == nil {
			closers = mask.IndexClosers(html)
		}
		closeStart, closeEnd := closers.Match(m[0])
		if closeStart < 0 {
			continue
		}
		inner := html[m[1]:closeStart]
		if nestedBlock.MatchString(inner) {
			continue
		}
		out = append(out, Preheader{
			Start: m[0],
			End:   closeEnd,
			Text:  strings.TrimSpace(paddingChars.Replace(anyTag.ReplaceAllString(inner, ""))),
		})
	}
	return out
}

// PaddingRepeats is how many zero-width pairs follow preview text of
// textLen characters.
func PaddingRepeats(textLen int) int {
	return max(30, int(math.Ceil(float64(preheaderTarget-textLen)/2)))
}

// PreheaderMarkup builds a hidden preview-text div padded so clients do
// not pull body copy into the inbox preview line. text is plain text and
// is escaped.
func PreheaderMarkup(text string) string {
	n := PaddingRepeats(utf8.RuneCountInString(text))
	return fmt.Sprintf(`<div style="display:none;font-size:1px;color:#ffffff;line-height:1px;max-height:0px;max-width:0px;opacity:0;overflow:hidden;mso-hide:all;">%s%s</div>`,
		html.EscapeString(text), strings.Repeat(preheaderPad, n))
}

func (m *Manager) preheader(c *check.Context) {
	found := FindPreheaders(c.Text)
	switch {
	case len(found) > 1:
		for i := len(found) - 1; i > 0; i-- {
			c.Text = c.Text[:found[i].Start] + c.Text[found[i].End:]
		}
		c.Fixed(IDPreheader, "removed %d extra preheader(s), kept %q", len(found)-1, truncate(found[0].Text, 60))
	case len(found) == 1:
		c.Pass(IDPreheader, "preheader present: %q", truncate(found[0].Text, 60))
	case m.cfg.PreheaderText == "":
		c.Warn(IDPreheader, "no preheader; clients will preview the first body text")
	default:
		body := mask.FindOutside(bodyOpenTag, c.Text)
		if len(body) == 0 {
			c.Fail(IDPreheader, "no <body> to insert the preheader into")
			return
		}
		at := body[0][1]
		c.Text = c.Text[:at] + "\n" + PreheaderMarkup(m.cfg.PreheaderText) + c.Text[at:]
		c.Fixed(IDPreheader, "inserted preheader %q", truncate(m.cfg.PreheaderText, 60))
	}
}

func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	r := []rune(s)
	return string(r[:n]) + "..."
}
