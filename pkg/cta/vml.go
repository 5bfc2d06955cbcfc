package cta

import (
	"fmt"
	"html"
	"math"
	"regexp"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/joeblew999/plat-mailfix/pkg/check"
	"github.com/joeblew999/plat-mailfix/pkg/mask"
)

const (
	IDButtons = "C01_CTA_BUTTONS"
	IDVML     = "C02_CTA_VML"
)

const (
	defaultFontSize  = 16
	defaultBgColor   = "#000000"
	defaultTextColor = "#ffffff"
	minWidth         = 120
	minHeight        = 36
	horizontalPad    = 40
	verticalPad      = 20
	charWidthRatio   = 0.6
	lineHeightRatio  = 1.3
)

var (
	msoOpen      = regexp.MustCompile(`(?i)^<!--\[if\s+mso`)
	vmlShape     = regexp.MustCompile(`(?i)<v:(?:roundrect|rect)\b`)
	vmlHref      = regexp.MustCompile(`(?i)<v:(?:roundrect|rect)\b[^>]*?\bhref\s*=\s*["']([^"']*)["']`)
	vmlCenter    = regexp.MustCompile(`(?is)<center\b[^>]*>(.*?)</center\s*>`)
	vmlShapeBody = regexp.MustCompile(`(?is)<v:(?:roundrect|rect)\b[^>]*>(.*?)</v:(?:roundrect|rect)\s*>`)
)

type vmlBlock struct {
	start, end int
	href, text string
}

// vmlBlocks returns the Outlook conditional comments that draw a shape.
func vmlBlocks(text string) []vmlBlock {
	var out []vmlBlock
	for _, s := range mask.CommentSpans(text) {
		body := text[s.Start:s.End]
		if !msoOpen.MatchString(body) || !vmlShape.MatchString(body) {
			continue
		}
		b := vmlBlock{start: s.Start, end: s.End}
		if m := vmlHref.FindStringSubmatch(body); m != nil {
			b.href = html.UnescapeString(strings.TrimSpace(m[1]))
		}
		if m := vmlCenter.FindStringSubmatch(body); m != nil {
			b.text = visibleText(m[1])
		} else if m := vmlShapeBody.FindStringSubmatch(body); m != nil {
			b.text = visibleText(m[1])
		}
		out = append(out, b)
	}
	return out
}

// classifyVML sets HasVML and VMLStatus on every button. A VML block
// belongs to a button when it starts within vmlWindow bytes before the
// button's container, or inside the container before the anchor, and no
// other button sits between the two.
func classifyVML(text string, buttons []Button) {
	blocks := vmlBlocks(text)
	for i := range buttons {
		b := &buttons[i]
		anchorHTML := text[b.AnchorStart:b.AnchorEnd]
		if maizzleMSO.MatchString(anchorHTML) {
			b.HasVML, b.VMLStatus = true, VMLOK
			continue
		}

		var found *vmlBlock
		from := max(0, b.MatchIndex-vmlWindow)
		k := sort.Search(len(blocks), func(k int) bool { return blocks[k].end > from })
		for ; k < len(blocks) && blocks[k].start < b.AnchorStart; k++ {
			v := &blocks[k]
			if i > 0 && buttons[i-1].AnchorEnd > v.end && buttons[i-1].AnchorEnd <= b.MatchIndex {
				continue
			}
			found = v
		}

		switch {
		case found != nil:
			b.HasVML = true
			b.VMLStatus = VMLMismatch
			if found.href == html.UnescapeString(b.Href) && strings.EqualFold(found.text, b.Text) {
				b.VMLStatus = VMLOK
			}
		case b.Type == TypeTable:
			b.VMLStatus = VMLNativeOK
		default:
			b.VMLStatus = VMLMissing
		}
	}
}

// Geometry is the VML shape size derived for a button.
type Geometry struct {
	Width   int
	Height  int
	ArcSize int // percent
	Lines   int
}

// Estimate sizes a VML shape for b. Outlook does not grow a shape to fit
// its text, so the height allows for the text wrapping within the width.
func Estimate(b Button) Geometry {
	fontSize := b.FontSize
	if fontSize <= 0 {
		fontSize = defaultFontSize
	}
	charW := float64(fontSize) * charWidthRatio
	textLen := utf8.RuneCountInString(b.Text)

	width := b.Width
	if width <= 0 {
		width = max(minWidth, int(math.Ceil(float64(textLen)*charW))+horizontalPad)
	}
	available := float64(width - horizontalPad)
	perLine := max(1, int(available/charW))
	lines := max(1, int(math.Ceil(float64(textLen)/float64(perLine))))

	estimated := int(math.Ceil(float64(lines)*float64(fontSize)*lineHeightRatio + verticalPad))
	height := max(b.Height, estimated, minHeight)

	arc := 0
	if b.BorderRadius > 0 {
		arc = int(math.Round(float64(b.BorderRadius) / float64(min(width, height)) * 100))
		arc = min(arc, 50)
	}
	return Geometry{Width: width, Height: height, ArcSize: arc, Lines: lines}
}

// VMLMarkup renders the Outlook shape for b.
func VMLMarkup(b Button) string {
	g := Estimate(b)
	bg := b.BgColor
	if bg == "" {
		bg = defaultBgColor
	}
	fg := b.TextColor
	if fg == "" {
		fg = defaultTextColor
	}
	fontSize := b.FontSize
	if fontSize <= 0 {
		fontSize = defaultFontSize
	}

	shape, arc := "v:rect", ""
	if g.ArcSize > 0 {
		shape, arc = "v:roundrect", fmt.Sprintf(` arcsize="%d%%"`, g.ArcSize)
	}
	var sb strings.Builder
	sb.WriteString("<!--[if mso]>\n")
	fmt.Fprintf(&sb, `<%s xmlns:v="urn:schemas-microsoft-com:vml" xmlns:w="urn:schemas-microsoft-com:office:word" href="%s" style="height:%dpx;v-text-anchor:middle;width:%dpx;"%s stroke="f" fillcolor="%s">`,
		shape, html.EscapeString(b.Href), g.Height, g.Width, arc, bg)
	sb.WriteString("\n<w:anchorlock/>\n")
	fmt.Fprintf(&sb, `<center style="color:%s;font-family:Arial,sans-serif;font-size:%dpx;font-weight:bold;">%s</center>`,
		fg, fontSize, html.EscapeString(b.Text))
	fmt.Fprintf(&sb, "\n</%s>\n<![endif]-->", shape)
	return sb.String()
}

const (
	hideFromMSOOpen  = "<!--[if !mso]><!-->"
	hideFromMSOClose = "<!--<![endif]-->"
)

// Synthesize detects buttons and inserts a VML fallback for every button
// that has none. The shape goes directly before the anchor, and the anchor
// is hidden from Outlook so it renders only once. It returns the buttons as
// found before any insertion.
func Synthesize(c *check.Context) []Button {
	buttons := Extract(c.Text)
	if len(buttons) == 0 {
		c.Info(IDButtons, "no call-to-action buttons detected")
		c.Pass(IDVML, "no buttons need a VML fallback")
		return nil
	}

	counts := map[VMLStatus]int{}
	var mismatched []string
	for _, b := range buttons {
		counts[b.VMLStatus]++
		if b.VMLStatus == VMLMismatch {
			mismatched = append(mismatched, fmt.Sprintf("%s %q", b.ID, b.Text))
		}
	}
	summary := fmt.Sprintf("%d button(s): %d ok, %d native_ok, %d mismatch, %d missing",
		len(buttons), counts[VMLOK], counts[VMLNativeOK], counts[VMLMismatch], counts[VMLMissing])
	if len(mismatched) > 0 {
		c.Warn(IDButtons, "%s; VML disagrees with the HTML button for %s", summary, strings.Join(mismatched, ", "))
	} else {
		c.Info(IDButtons, "%s", summary)
	}

	var edits []check.Edit
	for _, b := range buttons {
		if b.VMLStatus != VMLMissing {
			continue
		}
		edits = append(edits, check.Edit{
			Start: b.AnchorStart,
			End:   b.AnchorEnd,
			Text:  VMLMarkup(b) + hideFromMSOOpen + c.Text[b.AnchorStart:b.AnchorEnd] + hideFromMSOClose,
		})
	}
	if len(edits) == 0 {
		c.Pass(IDVML, "every button has an Outlook rendering")
		return buttons
	}
	c.Apply(edits)
	c.Fixed(IDVML, "synthesized VML fallback for %d button(s)", len(edits))
	return buttons
}
