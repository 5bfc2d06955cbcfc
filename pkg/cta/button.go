// Package cta finds call-to-action buttons across the three ways email
// authors build them and gives every button Outlook can not paint a VML
// fallback.
package cta

import (
	"html"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/joeblew999/plat-mailfix/pkg/markup"
	"github.com/joeblew999/plat-mailfix/pkg/mask"
)

// Type is the authoring pattern a button was found through.
type Type string

const (
	TypeInline   Type = "inline"
	TypeTable    Type = "table"
	TypeCSSClass Type = "css-class"
)

// VMLStatus describes the Outlook fallback of a button.
type VMLStatus string

const (
	VMLOK       VMLStatus = "ok"
	VMLNativeOK VMLStatus = "native_ok"
	VMLMismatch VMLStatus = "mismatch"
	VMLMissing  VMLStatus = "missing"
)

// vmlWindow is how far before a button a VML block may start.
const vmlWindow = 500

// Button is one detected call-to-action. Buttons are derived from the
// current text and go stale after any mutation.
type Button struct {
	ID           string    `json:"id" yaml:"id"`
	Type         Type      `json:"type" yaml:"type"`
	Href         string    `json:"href" yaml:"href"`
	Text         string    `json:"text" yaml:"text"`
	BgColor      string    `json:"bgColor" yaml:"bgColor"`
	TextColor    string    `json:"textColor" yaml:"textColor"`
	Width        int       `json:"width" yaml:"width"`
	Height       int       `json:"height" yaml:"height"`
	BorderRadius int       `json:"borderRadius" yaml:"borderRadius"`
	FontSize     int       `json:"fontSize" yaml:"fontSize"`
	HasVML       bool      `json:"hasVml" yaml:"hasVml"`
	VMLStatus    VMLStatus `json:"vmlStatus" yaml:"vmlStatus"`
	MatchIndex   int       `json:"matchIndex" yaml:"matchIndex"`
	FullMatch    string    `json:"fullMatch" yaml:"fullMatch"`

	// AnchorStart and AnchorEnd delimit the <a> element inside FullMatch.
	AnchorStart int `json:"-" yaml:"-"`
	AnchorEnd   int `json:"-" yaml:"-"`
}

// End is the offset just past FullMatch.
func (b Button) End() int { return b.MatchIndex + len(b.FullMatch) }

var (
	anchorElement = regexp.MustCompile(`(?is)<a\b(?:[^>"']|"[^"]*"|'[^']*')*>(.*?)</a\s*>`)
	tdOpenTag     = regexp.MustCompile(`(?i)<td\b(?:[^>"']|"[^"]*"|'[^']*')*>`)
	nestedCell    = regexp.MustCompile(`(?i)<td\b`)
	blockChild    = regexp.MustCompile(`(?i)<(?:p|div|table|h[1-6]|ul|ol)\b`)
	anyTag        = regexp.MustCompile(`<[^>]*>`)
	maizzleMSO    = regexp.MustCompile(`(?is)<!--\[if mso\]>\s*<i\b`)
)

type element struct {
	start, openEnd, end int
	open                string
}

type anchor struct {
	element
	href, text string
}

func anchors(text string) []anchor {
	var out []anchor
	for _, m := range mask.FindOutside(anchorElement, text) {
		open := text[m[0]:m[2]]
		href, _ := markup.AttrValue(open, "href")
		out = append(out, anchor{
			element: element{start: m[0], openEnd: m[2], end: m[1], open: open},
			href:    strings.TrimSpace(href),
			text:    visibleText(text[m[2]:m[3]]),
		})
	}
	return out
}

// visibleText flattens markup to the words a reader sees.
func visibleText(s string) string {
	s = anyTag.ReplaceAllString(mask.Strip(s), " ")
	s = strings.ReplaceAll(html.UnescapeString(s), "\u00a0", " ")
	return strings.Join(strings.Fields(s), " ")
}

type claims [][2]int

func (c *claims) take(start, end int) bool {
	for _, r := range *c {
		if start < r[1] && r[0] < end {
			return false
		}
	}
	*c = append(*c, [2]int{start, end})
	return true
}

// Extract detects the buttons of text. Inline-styled anchors are claimed
// first, then centered colored cells, then elements styled through a CSS
// class; a later pattern never claims a region an earlier one holds.
func Extract(text string) []Button {
	var taken claims
	var out []Button
	links := anchors(text)
	tds := cells(text, mask.IndexClosers(text))

	for _, a := range links {
		style, _ := markup.AttrValue(a.open, "style")
		if !hasBackground(style) || !hasShape(style) || a.text == "" {
			continue
		}
		if !taken.take(a.start, a.end) {
			continue
		}
		b := newButton(TypeInline, text, a.element, a)
		measure(&b, "", style)
		out = append(out, b)
	}

	for _, td := range tds {
		if !isCentered(td.open) || !cellHasBackground(td.open) {
			continue
		}
		a, ok := soleAnchor(text, td, links)
		if !ok {
			continue
		}
		if !taken.take(td.start, td.end) {
			continue
		}
		b := newButton(TypeTable, text, td, a)
		tdStyle, _ := markup.AttrValue(td.open, "style")
		aStyle, _ := markup.AttrValue(a.open, "style")
		measure(&b, tdStyle, aStyle)
		applyCellAttrs(&b, td.open)
		out = append(out, b)
	}

	if classes := backgroundClasses(text); len(classes) > 0 {
		out = append(out, classButtons(text, classes, links, tds, &taken)...)
	}

	sort.Slice(out, func(i, j int) bool { return out[i].MatchIndex < out[j].MatchIndex })
	for i := range out {
		out[i].ID = "cta-" + strconv.Itoa(i+1)
	}
	classifyVML(text, out)
	return out
}

func classButtons(text string, classes map[string]classRule, links []anchor, tds []element, taken *claims) []Button {
	type candidate struct {
		el   element
		a    anchor
		rule classRule
	}
	var cands []candidate
	for _, a := range links {
		if r, ok := ruleFor(a.open, classes); ok && a.text != "" {
			cands = append(cands, candidate{el: a.element, a: a, rule: r})
		}
	}
	for _, td := range tds {
		r, ok := ruleFor(td.open, classes)
		if !ok {
			continue
		}
		if a, ok := soleAnchor(text, td, links); ok {
			cands = append(cands, candidate{el: td, a: a, rule: r})
		}
	}
	sort.SliceStable(cands, func(i, j int) bool { return cands[i].el.start < cands[j].el.start })

	var out []Button
	for _, cd := range cands {
		if !taken.take(cd.el.start, cd.el.end) {
			continue
		}
		b := newButton(TypeCSSClass, text, cd.el, cd.a)
		elStyle, _ := markup.AttrValue(cd.el.open, "style")
		aStyle := ""
		if cd.el.start != cd.a.start {
			aStyle, _ = markup.AttrValue(cd.a.open, "style")
		}
		measure(&b, markup.FormatStyle(cd.rule.decls)+elStyle, aStyle)
		out = append(out, b)
	}
	return out
}

func ruleFor(open string, classes map[string]classRule) (classRule, bool) {
	v, ok := markup.AttrValue(open, "class")
	if !ok {
		return classRule{}, false
	}
	for _, cls := range strings.Fields(v) {
		if r, ok := classes[cls]; ok {
			return r, true
		}
	}
	return classRule{}, false
}

func newButton(t Type, text string, container element, a anchor) Button {
	return Button{
		Type:        t,
		Href:        a.href,
		Text:        a.text,
		MatchIndex:  container.start,
		FullMatch:   text[container.start:container.end],
		AnchorStart: a.start,
		AnchorEnd:   a.end,
	}
}

func cells(text string, closers mask.Closers) []element {
	var out []element
	for _, m := range mask.FindOutside(tdOpenTag, text) {
		_, end := closers.Match(m[0])
		if end < 0 {
			continue
		}
		out = append(out, element{start: m[0], openEnd: m[1], end: end, open: text[m[0]:m[1]]})
	}
	return out
}

// soleAnchor returns the only link of a cell that looks like a button
// cell: one anchor with text, no nested cells, and at most one other
// block-level child.
func soleAnchor(text string, td element, links []anchor) (anchor, bool) {
	inner := mask.Strip(text[td.openEnd:td.end])
	if nestedCell.MatchString(inner) {
		return anchor{}, false
	}
	var found []anchor
	i := sort.Search(len(links), func(i int) bool { return links[i].start >= td.openEnd })
	for ; i < len(links) && links[i].start < td.end && len(found) < 2; i++ {
		if links[i].end <= td.end {
			found = append(found, links[i])
		}
	}
	if len(found) != 1 || found[0].text == "" {
		return anchor{}, false
	}
	a := found[0]
	rest := text[td.openEnd:a.start] + text[a.end:td.end]
	if len(blockChild.FindAllString(mask.Strip(rest), -1)) > 1 {
		return anchor{}, false
	}
	return a, true
}

func hasBackground(style string) bool {
	return paintsBackground(markup.ParseStyle(style))
}

func hasShape(style string) bool {
	for _, d := range markup.ParseStyle(style) {
		if strings.HasPrefix(d.Property, "padding") {
			return true
		}
		if d.Property == "display" {
			v := strings.ToLower(d.Value)
			if strings.HasPrefix(v, "block") || strings.HasPrefix(v, "inline-block") {
				return true
			}
		}
	}
	return false
}

func isCentered(open string) bool {
	if v, ok := markup.AttrValue(open, "align"); ok && strings.EqualFold(strings.TrimSpace(v), "center") {
		return true
	}
	style, _ := markup.AttrValue(open, "style")
	v, _ := markup.StyleValue(style, "text-align")
	return strings.EqualFold(strings.TrimSpace(v), "center")
}

func cellHasBackground(open string) bool {
	if v, ok := markup.AttrValue(open, "bgcolor"); ok && !isTransparent(v) {
		return true
	}
	style, _ := markup.AttrValue(open, "style")
	return hasBackground(style)
}

// measure fills colors and sizes from the container style and then the
// anchor style; the anchor wins where both declare a property.
func measure(b *Button, containerStyle, anchorStyle string) {
	style := markup.MergeStyles(containerStyle, anchorStyle)
	b.BgColor = backgroundColor(anchorStyle)
	if b.BgColor == "" {
		b.BgColor = backgroundColor(containerStyle)
	}
	b.TextColor, _ = markup.StyleValue(anchorStyle, "color")
	if b.TextColor == "" {
		b.TextColor, _ = markup.StyleValue(containerStyle, "color")
	}
	b.Width = px(style, "width")
	b.Height = px(style, "height")
	if b.Height == 0 {
		b.Height = px(style, "line-height")
	}
	radius, _ := markup.StyleValue(style, "border-radius")
	if f := strings.Fields(radius); len(f) > 0 {
		if v, ok := markup.PxValue(f[0]); ok {
			b.BorderRadius = int(v)
		}
	}
	b.FontSize = px(style, "font-size")
	if b.FontSize == 0 {
		b.FontSize = defaultFontSize
	}
}

func applyCellAttrs(b *Button, open string) {
	if v, ok := markup.AttrValue(open, "bgcolor"); ok && !isTransparent(v) && b.BgColor == "" {
		b.BgColor = strings.TrimSpace(v)
	}
	if b.Width == 0 {
		if v, ok := markup.AttrValue(open, "width"); ok {
			if n, ok := markup.PxValue(v); ok {
				b.Width = int(n)
			}
		}
	}
	if b.Height == 0 {
		if v, ok := markup.AttrValue(open, "height"); ok {
			if n, ok := markup.PxValue(v); ok {
				b.Height = int(n)
			}
		}
	}
}

func backgroundColor(style string) string {
	if v, ok := markup.StyleValue(style, "background-color"); ok && !isTransparent(v) {
		return strings.TrimSpace(strings.TrimSuffix(v, "!important"))
	}
	for _, prop := range []string{"background", "background-image"} {
		if v, ok := markup.StyleValue(style, prop); ok {
			if c := markup.FirstColor(v); c != "" && !strings.EqualFold(c, "transparent") {
				return c
			}
		}
	}
	return ""
}

func px(style, prop string) int {
	v, ok := markup.StyleValue(style, prop)
	if !ok {
		return 0
	}
	n, ok := markup.PxValue(v)
	if !ok {
		return 0
	}
	return int(n)
}
