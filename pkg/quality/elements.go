package quality

import (
	"net/url"
	"path"
	"regexp"
	"slices"
	"strings"

	"github.com/joeblew999/plat-mailfix/pkg/check"
	"github.com/joeblew999/plat-mailfix/pkg/mask"
)

var faviconLink = regexp.MustCompile(`(?i)<link\b[^>]*\brel\s*=\s*["']?\s*(?:shortcut\s+)?(?:icon|apple-touch-icon(?:-precomposed)?)\s*["']?[^>]*>[ \t]*\n?`)

// removeFavicons drops favicon links, which no email client uses.
func removeFavicons(c *check.Context) {
	found := mask.FindOutside(faviconLink, c.Text)
	if len(found) == 0 {
		c.Pass(IDFavicon, "no favicon links")
		return
	}
	for i := len(found) - 1; i >= 0; i-- {
		c.Replace(found[i][0], found[i][1], "")
	}
	c.Fixed(IDFavicon, "removed %d favicon link(s)", len(found))
}

func imgAlt(c *check.Context) {
	n := 0
	for _, img := range byTag(elements(c.Text), "img") {
		if _, ok := img.attr("alt"); !ok && !isPixel(img) {
			n++
		}
	}
	if n > 0 {
		c.Warn(IDImgAlt, "%d image(s) without an alt attribute", n)
		return
	}
	c.Pass(IDImgAlt, "every image has alt text")
}

func scripts(c *check.Context) {
	if n := len(byTag(elements(c.Text), "script")); n > 0 {
		c.Warn(IDScript, "%d <script> element(s); email clients strip scripts", n)
		return
	}
	c.Pass(IDScript, "no scripts")
}

func forms(c *check.Context) {
	n := len(byTag(elements(c.Text), "form", "input", "select", "textarea"))
	if n > 0 {
		c.Warn(IDForms, "%d form element(s); most clients disable forms", n)
		return
	}
	c.Pass(IDForms, "no form elements")
}

func imgDimensions(c *check.Context) {
	n := 0
	for _, img := range byTag(elements(c.Text), "img") {
		if _, ok := img.attr("width"); !ok {
			n++
		}
	}
	if n > 0 {
		c.Warn(IDImgDimensions, "%d image(s) without a width attribute; Outlook renders them at natural size", n)
		return
	}
	c.Pass(IDImgDimensions, "every image declares its width")
}

var unsupportedImageExt = []string{".svg", ".webp", ".avif", ".heic", ".heif", ".tif", ".tiff", ".bmp"}

func imageFormats(c *check.Context) {
	var bad []string
	for _, img := range byTag(elements(c.Text), "img") {
		src := strings.TrimSpace(img.Attrs["src"])
		if strings.HasPrefix(strings.ToLower(src), "data:image/svg") {
			bad = append(bad, "inline svg")
			continue
		}
		u, err := url.Parse(src)
		if err != nil {
			continue
		}
		if ext := strings.ToLower(path.Ext(u.Path)); slices.Contains(unsupportedImageExt, ext) {
			bad = append(bad, path.Base(u.Path))
		}
	}
	if len(bad) > 0 {
		c.Warn(IDImageFormat, "%d image(s) in formats Outlook or Gmail can not show: %s", len(bad), summarize(bad))
		return
	}
	c.Pass(IDImageFormat, "image formats are widely supported")
}

func tableRoles(c *check.Context) {
	tables := byTag(elements(c.Text), "table")
	n := 0
	for _, t := range tables {
		if _, ok := t.attr("role"); !ok {
			n++
		}
	}
	if n > 0 {
		c.Warn(IDTableRole, `%d of %d table(s) without role="presentation"; screen readers announce them as data tables`, n, len(tables))
		return
	}
	c.Pass(IDTableRole, "layout tables carry a role")
}

func lang(c *check.Context) {
	roots := byTag(elements(c.Text), "html")
	if len(roots) == 0 {
		c.Warn(IDLang, "no <html> element to carry a lang attribute")
		return
	}
	if v, ok := roots[0].attr("lang"); ok && strings.TrimSpace(v) != "" {
		c.Pass(IDLang, "document language is %s", v)
		return
	}
	c.Warn(IDLang, "<html> has no lang attribute")
}

func (s *Suite) viewport(c *check.Context) {
	if s.cfg.Themed {
		c.Skipped(IDViewport, "not required for the themed layout")
		return
	}
	for _, m := range byTag(elements(c.Text), "meta") {
		if strings.EqualFold(strings.TrimSpace(m.Attrs["name"]), "viewport") {
			c.Pass(IDViewport, "viewport meta present")
			return
		}
	}
	c.Warn(IDViewport, "no viewport meta tag; mobile clients may scale the layout down")
}

func base64Images(c *check.Context) {
	n := 0
	for _, img := range byTag(elements(c.Text), "img") {
		if strings.HasPrefix(strings.ToLower(strings.TrimSpace(img.Attrs["src"])), "data:") {
			n++
		}
	}
	if n > 0 {
		c.Warn(IDBase64Images, "%d embedded data: image(s); Gmail and Outlook block them", n)
		return
	}
	c.Pass(IDBase64Images, "no embedded images")
}

var (
	conditionalOpen  = regexp.MustCompile(`(?i)\[if\s[^\]]*\]`)
	conditionalClose = regexp.MustCompile(`(?i)\[endif\]`)
)

func msoConditionals(c *check.Context) {
	opens := len(conditionalOpen.FindAllStringIndex(c.Text, -1))
	closes := len(conditionalClose.FindAllStringIndex(c.Text, -1))
	switch {
	case opens != closes:
		c.Warn(IDMSOConditionals, "unbalanced conditional comments: %d [if] against %d [endif]", opens, closes)
	case opens == 0:
		c.Info(IDMSOConditionals, "no Outlook conditional comments")
	default:
		c.Pass(IDMSOConditionals, "%d conditional comment(s) balanced", opens)
	}
}

func trackingPixels(c *check.Context) {
	n := 0
	for _, img := range byTag(elements(c.Text), "img") {
		if isPixel(img) {
			n++
		}
	}
	if n > 0 {
		c.Info(IDTrackingPixels, "%d tracking pixel(s); left out of the text/image ratio", n)
		return
	}
	c.Pass(IDTrackingPixels, "no tracking pixels")
}
