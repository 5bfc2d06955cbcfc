// Package quality holds the stateless checks that run after repair. Each
// reads the current document and appends one Check; a few make a minor
// fix, such as dropping favicon links.
package quality

import (
	"github.com/joeblew999/plat-mailfix/pkg/check"
)

const (
	IDTemplateSize    = "Q01_TEMPLATE_SIZE"
	IDTextImageRatio  = "Q02_TEXT_IMAGE_RATIO"
	IDImgAlt          = "Q03_IMG_ALT"
	IDLinkText        = "Q04_LINK_TEXT"
	IDEmptyHref       = "Q05_EMPTY_HREF"
	IDBrokenLinks     = "Q06_BROKEN_LINKS"
	IDInsecureURLs    = "Q07_INSECURE_URLS"
	IDFavicon         = "Q08_FAVICON"
	IDScript          = "Q09_SCRIPT"
	IDForms           = "Q10_FORMS"
	IDCSSSupport      = "Q11_CSS_SUPPORT"
	IDBackgroundImage = "Q12_BACKGROUND_IMAGE"
	IDBorderCollapse  = "Q13_BORDER_COLLAPSE"
	IDImgDimensions   = "Q14_IMG_DIMENSIONS"
	IDImageFormat     = "Q15_IMAGE_FORMAT"
	IDTableRole       = "Q16_TABLE_ROLE"
	IDLang            = "Q17_LANG"
	IDUnsubscribe     = "Q18_UNSUBSCRIBE"
	IDViewport        = "Q19_VIEWPORT"
	IDFooterMedia     = "Q20_FOOTER_MEDIA"
	IDSalutation      = "Q21_SALUTATION"
	IDMailto          = "Q22_MAILTO"
	IDExternalCSS     = "Q23_EXTERNAL_CSS"
	IDBase64Images    = "Q24_BASE64_IMAGES"
	IDMSOConditionals = "Q25_MSO_CONDITIONALS"
	IDTrackingPixels  = "Q26_TRACKING_PIXELS"
	IDMergeFields     = "Q27_MERGE_FIELDS"
)

// Config tunes the checks for one run.
type Config struct {
	// Themed skips the checks only the standard layout needs.
	Themed bool
	// FooterToken is the placeholder later replaced by the sender's footer.
	FooterToken string
	// Salutation replaces generic greetings when set, e.g. "{{FIRST_NAME}}".
	Salutation string
}

// Suite runs the quality checks for one configuration.
type Suite struct {
	cfg Config
}

func New(cfg Config) *Suite {
	return &Suite{cfg: cfg}
}

// Phases returns the checks in execution order. Checks that edit the
// document run before those that only read it.
func (s *Suite) Phases() []check.Phase {
	return []check.Phase{
		{Name: "favicon", Run: removeFavicons},
		{Name: "salutation", Run: s.salutation},
		{Name: "template-size", Run: templateSize},
		{Name: "text-image-ratio", Run: textImageRatio},
		{Name: "img-alt", Run: imgAlt},
		{Name: "link-text", Run: linkText},
		{Name: "empty-href", Run: emptyHref},
		{Name: "broken-links", Run: brokenLinks},
		{Name: "insecure-urls", Run: insecureURLs},
		{Name: "script", Run: scripts},
		{Name: "forms", Run: forms},
		{Name: "css-support", Run: cssSupport},
		{Name: "background-image", Run: backgroundImages},
		{Name: "border-collapse", Run: borderCollapse},
		{Name: "img-dimensions", Run: imgDimensions},
		{Name: "image-format", Run: imageFormats},
		{Name: "table-role", Run: tableRoles},
		{Name: "lang", Run: lang},
		{Name: "unsubscribe", Run: s.unsubscribe},
		{Name: "viewport", Run: s.viewport},
		{Name: "footer-media", Run: s.footerMedia},
		{Name: "mailto", Run: mailtoLinks},
		{Name: "external-css", Run: externalCSS},
		{Name: "base64-images", Run: base64Images},
		{Name: "mso-conditionals", Run: msoConditionals},
		{Name: "tracking-pixels", Run: trackingPixels},
		{Name: "merge-fields", Run: mergeFields},
	}
}

// Run executes every check against c.
func (s *Suite) Run(c *check.Context) {
	for _, p := range s.Phases() {
		p.Run(c)
	}
}
