package quality

// Description names what a quality check looks for.
type Description struct {
	ID      string `json:"id"`
	Summary string `json:"summary"`
}

var descriptions = []Description{
	{IDTemplateSize, "HTML size against Gmail's 102KB clipping threshold"},
	{IDTextImageRatio, "visible words per non-pixel image"},
	{IDImgAlt, "images without an alt attribute"},
	{IDLinkText, "generic link text such as \"click here\""},
	{IDEmptyHref, "links with an empty or \"#\" href"},
	{IDBrokenLinks, "malformed or placeholder URLs, merge fields excepted"},
	{IDInsecureURLs, "http:// links and images"},
	{IDFavicon, "favicon <link> tags, removed"},
	{IDScript, "<script> blocks, stripped by every client"},
	{IDForms, "form controls"},
	{IDCSSSupport, "CSS with poor email client support"},
	{IDBackgroundImage, "CSS background images without an Outlook fallback"},
	{IDBorderCollapse, "tables without border-collapse"},
	{IDImgDimensions, "images without width and height"},
	{IDImageFormat, "image formats with weak client support"},
	{IDTableRole, "layout tables without role=\"presentation\""},
	{IDLang, "lang attribute on <html>"},
	{IDUnsubscribe, "an unsubscribe link"},
	{IDViewport, "viewport meta tag (standard only)"},
	{IDFooterMedia, "footer media queries (standard only)"},
	{IDSalutation, "generic greetings such as \"Dear Customer\""},
	{IDMailto, "mailto: links"},
	{IDExternalCSS, "external stylesheets"},
	{IDBase64Images, "base64-embedded images"},
	{IDMSOConditionals, "balanced Outlook conditional comments"},
	{IDTrackingPixels, "1x1 tracking pixels"},
	{IDMergeFields, "unresolved merge fields"},
}

// Descriptions lists every quality check in run order.
func Descriptions() []Description {
	return append([]Description(nil), descriptions...)
}
