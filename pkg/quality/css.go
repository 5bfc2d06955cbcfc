package quality

import (
	"regexp"
	"strconv"
	"strings"

	dcss "github.com/aymerick/douceur/css"
	"github.com/aymerick/douceur/parser"

	"github.com/joeblew999/plat-mailfix/pkg/check"
	"github.com/joeblew999/plat-mailfix/pkg/mask"
)

var unsupportedCSS = []struct {
	feature string
	re      *regexp.Regexp
}{
	{"flexbox", regexp.MustCompile(`(?i)display\s*:\s*(?:inline-)?flex\b`)},
	{"grid", regexp.MustCompile(`(?i)display\s*:\s*(?:inline-)?grid\b`)},
	{"positioning", regexp.MustCompile(`(?i)position\s*:\s*(?:absolute|fixed|sticky)\b`)},
	{"custom properties", regexp.MustCompile(`var\(\s*--`)},
	{"box-shadow", regexp.MustCompile(`(?i)box-shadow\s*:`)},
	{"transform", regexp.MustCompile(`(?i)(?:^|[;\s{])transform\s*:`)},
}

// css returns the stylesheets and inline styles a client would apply.
// Outlook-only styles inside conditional comments are excluded.
func css(text string) string {
	var b strings.Builder
	for _, s := range styleSheets(text) {
		b.WriteString(s)
		b.WriteString("\n")
	}
	for _, s := range inlineStyles(elements(text)) {
		b.WriteString(s)
		b.WriteString(";\n")
	}
	return b.String()
}

func cssSupport(c *check.Context) {
	all := css(c.Text)
	var found []string
	for _, u := range unsupportedCSS {
		if n := len(u.re.FindAllStringIndex(all, -1)); n > 0 {
			found = append(found, u.feature+" ("+strconv.Itoa(n)+")")
		}
	}
	if len(found) > 0 {
		c.Warn(IDCSSSupport, "CSS with poor email client support: %s", strings.Join(found, ", "))
		return
	}
	c.Pass(IDCSSSupport, "no unsupported CSS")
}

var (
	cssBackgroundURL = regexp.MustCompile(`(?i)background(?:-image)?\s*:[^;"}]*url\(`)
	backgroundAttr   = regexp.MustCompile(`(?i)<(?:td|table|body|div)\b[^>]*\bbackground\s*=\s*["'][^"']+["']`)
	vmlFill          = regexp.MustCompile(`(?i)<v:(?:fill|image|background)\b`)
)

func backgroundImages(c *check.Context) {
	n := len(cssBackgroundURL.FindAllStringIndex(css(c.Text), -1)) +
		len(mask.FindOutside(backgroundAttr, c.Text))
	switch {
	case n == 0:
		c.Pass(IDBackgroundImage, "no background images")
	case vmlFill.MatchString(c.Text):
		c.Pass(IDBackgroundImage, "%d background image(s) with a VML fallback", n)
	default:
		c.Warn(IDBackgroundImage, "%d background image(s) without a VML fallback; Outlook will not show them", n)
	}
}

var collapse = regexp.MustCompile(`(?i)border-collapse\s*:\s*collapse`)

func borderCollapse(c *check.Context) {
	switch {
	case len(byTag(elements(c.Text), "table")) == 0:
		c.Pass(IDBorderCollapse, "no tables")
	case collapse.MatchString(c.Text):
		c.Pass(IDBorderCollapse, "border-collapse set")
	default:
		c.Warn(IDBorderCollapse, "tables without border-collapse:collapse; Outlook adds gaps between cells")
	}
}

var (
	hidesBlock = regexp.MustCompile(`(?i)display\s*:\s*none|visibility\s*:\s*hidden|max-height\s*:\s*0(?:px)?\s*(?:;|!|$)`)
)

// footerMedia makes sure no media query hides the footer on small screens.
func (s *Suite) footerMedia(c *check.Context) {
	if s.cfg.Themed {
		c.Skipped(IDFooterMedia, "not required for the themed layout")
		return
	}
	for _, sheet := range styleSheets(c.Text) {
		rules, _ := parser.NewParser(sheet).ParseRules()
		if sel, ok := hiddenFooter(rules, false); ok {
			c.Warn(IDFooterMedia, "media query hides the footer (%s); unsubscribe links must stay visible", sel)
			return
		}
	}
	c.Pass(IDFooterMedia, "footer visible at every width")
}

// hiddenFooter finds a footer rule inside a media query that hides it.
func hiddenFooter(rules []*dcss.Rule, inMedia bool) (string, bool) {
	for _, r := range rules {
		if r.Kind == dcss.AtRule {
			media := inMedia || strings.EqualFold(r.Name, "@media")
			if sel, ok := hiddenFooter(r.Rules, media); ok {
				return sel, true
			}
			continue
		}
		if !inMedia || !strings.Contains(strings.ToLower(r.Prelude), "footer") {
			continue
		}
		for _, d := range r.Declarations {
			if hidesBlock.MatchString(d.Property + ":" + d.Value) {
				return r.Prelude, true
			}
		}
	}
	return "", false
}

var cssImport = regexp.MustCompile(`(?i)@import\b`)

func externalCSS(c *check.Context) {
	n := 0
	for _, l := range byTag(elements(c.Text), "link") {
		if strings.Contains(strings.ToLower(l.Attrs["rel"]), "stylesheet") {
			n++
		}
	}
	for _, s := range styleSheets(c.Text) {
		n += len(cssImport.FindAllStringIndex(s, -1))
	}
	if n > 0 {
		c.Warn(IDExternalCSS, "%d external stylesheet(s); Gmail and most webmail drop them", n)
		return
	}
	c.Pass(IDExternalCSS, "all CSS is embedded")
}
