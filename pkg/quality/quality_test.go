package quality

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joeblew999/plat-mailfix/pkg/check"
)

func run(phase func(*check.Context), html string) *check.Context {
	c := check.NewContext(html)
	phase(c)
	return c
}

func only(t *testing.T, c *check.Context, id string) check.Check {
	t.Helper()
	found := c.Find(id)
	require.Len(t, found, 1, id)
	return found[0]
}

func TestMergeFields(t *testing.T) {
	tests := []struct {
		in   string
		want map[string]int
	}{
		{"Hi {{first_name}}", map[string]int{"{{x}}": 1}},
		{"Hi *|FNAME|*", map[string]int{"*|x|*": 1}},
		{"%%UNSUB%% and %FIRSTNAME%", map[string]int{"%%x%%": 1, "%x%": 1}},
		{"{name} ${user.name} #{id}", map[string]int{"{x}": 1, "${x}": 1, "#{x}": 1}},
		{"[[name]] ##NAME## [FIRSTNAME]", map[string]int{"[[x]]": 1, "##x##": 1, "[x]": 1}},
		{"{% raw %} <%= name %> ((name))", map[string]int{"{%x%}": 1, "<%x%>": 1, "((x))": 1}},
		{"100% off, 50% more [note]", map[string]int{}},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, MergeFields(tt.in))
			assert.Equal(t, len(tt.want) > 0, HasMergeField(tt.in))
		})
	}
}

func TestBrokenReason(t *testing.T) {
	tests := []struct {
		href string
		want string
	}{
		{"https://shop.com/x", ""},
		{"{{unsubscribe_url}}", ""},
		{"https://shop.com/?u=*|UNIQID|*", ""},
		{"%%view_online%%", ""},
		{"#top", ""},
		{"mailto:a@b.com", ""},
		{"tel:+123", ""},
		{"javascript:void(0)", "javascript URL"},
		{"undefined", "unresolved value"},
		{"https://shop.com/a b", "contains whitespace"},
		{"https://example.com/offer", "placeholder domain"},
		{"http://www.yourdomain.com", "placeholder domain"},
		{"http://", "missing host"},
		{"http://localhost:8080/x", "local address"},
		{"www.shop.com", "missing http(s) scheme"},
		{"/offers", "relative URL"},
	}
	for _, tt := range tests {
		t.Run(tt.href, func(t *testing.T) {
			assert.Equal(t, tt.want, BrokenReason(tt.href))
		})
	}
}

func TestLinkChecks(t *testing.T) {
	html := `<a href="https://shop.com">Click here</a>
<a href="">Empty</a>
<a href="http://shop.com/p">Spring &amp; summer sale</a>
<a href="mailto:bad@@x">Mail</a>
<a href="https://shop.com/i"><img src="https://cdn.shop.com/i.png" alt="" width="10"></a>
<!--[if mso]><a href="http://ignored">here</a><![endif]-->`

	c := run(linkText, html)
	got := only(t, c, IDLinkText)
	assert.Equal(t, check.StatusWarn, got.Status)
	assert.Contains(t, got.Message, `"Click here"`)
	assert.Contains(t, got.Message, "link to https://shop.com/i has no text")

	assert.Equal(t, check.StatusWarn, only(t, run(emptyHref, html), IDEmptyHref).Status)
	assert.Equal(t, check.StatusPass, only(t, run(brokenLinks, html), IDBrokenLinks).Status)

	insecure := only(t, run(insecureURLs, html), IDInsecureURLs)
	assert.Equal(t, check.StatusWarn, insecure.Status)
	assert.Contains(t, insecure.Message, "0 image(s) and 1 link(s)")

	mailto := only(t, run(mailtoLinks, html), IDMailto)
	assert.Equal(t, check.StatusWarn, mailto.Status)
	assert.Contains(t, mailto.Message, "mailto:bad@@x")

	ok := `<a href="mailto:a@shop.com,{{rep_email}}?subject=Hi%20there">Write to us</a>`
	assert.Equal(t, check.StatusPass, only(t, run(mailtoLinks, ok), IDMailto).Status)
	assert.Equal(t, check.StatusPass, only(t, run(linkText, ok), IDLinkText).Status)
}

func TestBrokenLinksReported(t *testing.T) {
	c := run(brokenLinks, `<a href="https://example.com">Shop</a><a href="{{url}}">Ok</a><a href="/x">Rel</a>`)
	got := only(t, c, IDBrokenLinks)
	assert.Equal(t, check.StatusWarn, got.Status)
	assert.Contains(t, got.Message, "2 broken")
	assert.Contains(t, got.Message, "https://example.com (placeholder domain)")
	assert.Contains(t, got.Message, "/x (relative URL)")
}

func TestRemoveFavicons(t *testing.T) {
	html := "<head><link rel=\"icon\" href=\"/f.ico\">\n<link rel=\"stylesheet\" href=\"s.css\"><!--<link rel=\"icon\" href=\"x\">--></head>"

	c := run(removeFavicons, html)
	assert.Equal(t, `<head><link rel="stylesheet" href="s.css"><!--<link rel="icon" href="x">--></head>`, c.Text)
	got := only(t, c, IDFavicon)
	assert.Equal(t, check.StatusFixed, got.Status)
	assert.Equal(t, "removed 1 favicon link(s)", got.Message)

	again := run(removeFavicons, c.Text)
	assert.Equal(t, c.Text, again.Text)
	assert.Equal(t, check.StatusPass, only(t, again, IDFavicon).Status)
}

func TestSalutation(t *testing.T) {
	html := `<p>Dear Customer,</p><img alt="Dear Customer" src="a.png"><p>Hi   valued customer!</p><p>Dear customers</p>`

	personal := New(Config{Salutation: "{{FIRST_NAME}}"})
	c := run(personal.salutation, html)
	assert.Equal(t, `<p>Dear {{FIRST_NAME}},</p><img alt="Dear Customer" src="a.png"><p>Hi   {{FIRST_NAME}}!</p><p>Dear customers</p>`, c.Text)
	got := only(t, c, IDSalutation)
	assert.Equal(t, check.StatusFixed, got.Status)
	assert.Contains(t, got.Message, "replaced 2")

	plain := run(New(Config{}).salutation, html)
	assert.Equal(t, html, plain.Text)
	warn := only(t, plain, IDSalutation)
	assert.Equal(t, check.StatusWarn, warn.Status)
	assert.Contains(t, warn.Message, `"Dear Customer"`)

	assert.Equal(t, check.StatusPass, only(t, run(personal.salutation, "<p>Dear Ana,</p>"), IDSalutation).Status)
}

func TestVisibleWords(t *testing.T) {
	html := `<style>p{color:red}</style><!--[if mso]>outlook only words<![endif]-->
<body><div style="display:none">hidden preview text</div>
<p>One two</p><table><tr><td>three</td><td>four&nbsp;&amp;</td></tr></table><script>var five = 5</script></body>`
	assert.Equal(t, 5, VisibleWords(html))
}

func TestTextImageRatio(t *testing.T) {
	many := strings.Repeat("word ", 40)
	tests := []struct {
		name string
		html string
		want check.Status
	}{
		{"few words per image", `<body><p>Short text</p><img src="a.png" width="600"><img src="p.gif" width="1" height="1"></body>`, check.StatusWarn},
		{"image only", `<body><img src="a.png" width="600"></body>`, check.StatusWarn},
		{"enough text", `<body><p>` + many + `</p><img src="a.png" width="600"></body>`, check.StatusPass},
		{"text only", `<body><p>Hello there</p></body>`, check.StatusPass},
		{"pixels are not images", `<body><p>Hello</p><img src="p.gif" width="1" height="1"></body>`, check.StatusPass},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, only(t, run(textImageRatio, tt.html), IDTextImageRatio).Status)
		})
	}
}

func TestTemplateSize(t *testing.T) {
	assert.Equal(t, check.StatusWarn, only(t, run(templateSize, strings.Repeat("a", ClipThreshold+1)), IDTemplateSize).Status)
	assert.Equal(t, check.StatusInfo, only(t, run(templateSize, strings.Repeat("a", 95*1024)), IDTemplateSize).Status)
	assert.Equal(t, check.StatusPass, only(t, run(templateSize, "<p>small</p>"), IDTemplateSize).Status)
}

func TestChecks(t *testing.T) {
	tests := []struct {
		name  string
		phase func(*check.Context)
		id    string
		html  string
		want  check.Status
	}{
		{"alt missing", imgAlt, IDImgAlt, `<img src="a.png">`, check.StatusWarn},
		{"empty alt is fine", imgAlt, IDImgAlt, `<img src="a.png" alt="">`, check.StatusPass},
		{"pixel needs no alt", imgAlt, IDImgAlt, `<img src="t.gif" width="1" height="1">`, check.StatusPass},
		{"script", scripts, IDScript, `<script>track()</script>`, check.StatusWarn},
		{"no script", scripts, IDScript, `<p>x</p>`, check.StatusPass},
		{"form", forms, IDForms, `<form><input name="q"></form>`, check.StatusWarn},
		{"no width", imgDimensions, IDImgDimensions, `<img src="a.png" alt="">`, check.StatusWarn},
		{"width", imgDimensions, IDImgDimensions, `<img src="a.png" alt="" width="600">`, check.StatusPass},
		{"svg", imageFormats, IDImageFormat, `<img src="https://cdn/x/logo.svg?v=2">`, check.StatusWarn},
		{"inline svg", imageFormats, IDImageFormat, `<img src="data:image/svg+xml;base64,AAA">`, check.StatusWarn},
		{"png", imageFormats, IDImageFormat, `<img src="https://cdn/x/logo.png">`, check.StatusPass},
		{"table without role", tableRoles, IDTableRole, `<table><tr><td>x</td></tr></table>`, check.StatusWarn},
		{"table with role", tableRoles, IDTableRole, `<table role="presentation"><tr><td>x</td></tr></table>`, check.StatusPass},
		{"lang", lang, IDLang, `<html lang="en"><body></body></html>`, check.StatusPass},
		{"no lang", lang, IDLang, `<html><body></body></html>`, check.StatusWarn},
		{"base64", base64Images, IDBase64Images, `<img src="data:image/png;base64,AAA">`, check.StatusWarn},
		{"balanced conditionals", msoConditionals, IDMSOConditionals, `<!--[if mso]><table><![endif]--><!--[if !mso]><!--><p>x</p><!--<![endif]-->`, check.StatusPass},
		{"no conditionals", msoConditionals, IDMSOConditionals, `<p>x</p>`, check.StatusInfo},
		{"unbalanced conditionals", msoConditionals, IDMSOConditionals, `<!--[if mso]><table>`, check.StatusWarn},
		{"pixel", trackingPixels, IDTrackingPixels, `<img src="t.gif" width="1" height="1" alt="">`, check.StatusInfo},
		{"hidden pixel", trackingPixels, IDTrackingPixels, `<img src="t.gif" style="display:none">`, check.StatusInfo},
		{"no pixel", trackingPixels, IDTrackingPixels, `<img src="a.png" width="600">`, check.StatusPass},
		{"inline flex", cssSupport, IDCSSSupport, `<div style="display:flex">x</div>`, check.StatusWarn},
		{"grid in sheet", cssSupport, IDCSSSupport, `<style>.a{display:grid}</style>`, check.StatusWarn},
		{"outlook-only css ignored", cssSupport, IDCSSSupport, `<!--[if mso]><style>.a{display:flex}</style><![endif]-->`, check.StatusPass},
		{"background without vml", backgroundImages, IDBackgroundImage, `<td style="background-image:url(a.png)">x</td>`, check.StatusWarn},
		{"background attribute", backgroundImages, IDBackgroundImage, `<td background="a.png">x</td>`, check.StatusWarn},
		{
			"background with vml", backgroundImages, IDBackgroundImage,
			`<td background="a.png" style="background:url(a.png)"><!--[if gte mso 9]><v:rect><v:fill type="tile" src="a.png"/></v:rect><![endif]-->x</td>`,
			check.StatusPass,
		},
		{"collapse", borderCollapse, IDBorderCollapse, `<table style="border-collapse:collapse"><tr><td>x</td></tr></table>`, check.StatusPass},
		{"no collapse", borderCollapse, IDBorderCollapse, `<table><tr><td>x</td></tr></table>`, check.StatusWarn},
		{"no tables", borderCollapse, IDBorderCollapse, `<p>x</p>`, check.StatusPass},
		{"linked stylesheet", externalCSS, IDExternalCSS, `<link rel="stylesheet" href="a.css">`, check.StatusWarn},
		{"import", externalCSS, IDExternalCSS, `<style>@import url(x.css);</style>`, check.StatusWarn},
		{"embedded css", externalCSS, IDExternalCSS, `<style>p{margin:0}</style>`, check.StatusPass},
		{"mixed merge fields", mergeFields, IDMergeFields, `<p>{{a}} and *|B|*</p>`, check.StatusWarn},
		{"one notation", mergeFields, IDMergeFields, `<p>{{a}}</p><a href="{{b}}">b</a>`, check.StatusInfo},
		{"unbalanced braces", mergeFields, IDMergeFields, `<p>{{a}</p>`, check.StatusWarn},
		{"no merge fields", mergeFields, IDMergeFields, `<style>.a{b:c}</style><p>plain</p>`, check.StatusPass},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, only(t, run(tt.phase, tt.html), tt.id).Status)
		})
	}
}

func TestLayoutSpecificChecks(t *testing.T) {
	standard := New(Config{})
	themed := New(Config{Themed: true})
	hiddenFooter := `<style>@media (max-width:600px){ .footer-links{display:none !important} }</style>`

	assert.Equal(t, check.StatusWarn, only(t, run(standard.viewport, "<head></head>"), IDViewport).Status)
	assert.Equal(t, check.StatusPass, only(t, run(standard.viewport, `<meta name="viewport" content="width=device-width">`), IDViewport).Status)
	assert.Equal(t, check.StatusSkipped, only(t, run(themed.viewport, "<head></head>"), IDViewport).Status)

	assert.Equal(t, check.StatusWarn, only(t, run(standard.footerMedia, hiddenFooter), IDFooterMedia).Status)
	assert.Equal(t, check.StatusPass, only(t, run(standard.footerMedia, `<style>@media (max-width:600px){ .header{display:none} }</style>`), IDFooterMedia).Status)
	assert.Equal(t, check.StatusPass, only(t, run(standard.footerMedia, `<style>.footer{display:none}</style>`), IDFooterMedia).Status)
	assert.Equal(t, check.StatusWarn, only(t, run(standard.footerMedia, `<style>@supports (display:block){@media screen{#footer{max-height:0}}}</style>`), IDFooterMedia).Status)
	assert.Equal(t, check.StatusSkipped, only(t, run(themed.footerMedia, hiddenFooter), IDFooterMedia).Status)
}

func TestUnsubscribe(t *testing.T) {
	s := New(Config{FooterToken: "{{FOOTER}}"})
	assert.Equal(t, check.StatusPass, only(t, run(s.unsubscribe, `<a href="https://x/u">Unsubscribe</a>`), IDUnsubscribe).Status)
	assert.Equal(t, check.StatusPass, only(t, run(s.unsubscribe, `<a href="*|UNSUB|*">Leave</a>`), IDUnsubscribe).Status)
	assert.Equal(t, check.StatusInfo, only(t, run(s.unsubscribe, `<body>{{FOOTER}}</body>`), IDUnsubscribe).Status)
	assert.Equal(t, check.StatusWarn, only(t, run(s.unsubscribe, `<body><p>Hi</p></body>`), IDUnsubscribe).Status)
	assert.Equal(t, check.StatusWarn, only(t, run(s.unsubscribe, `<body><!-- unsubscribe --></body>`), IDUnsubscribe).Status)
}

func TestSuiteRunsEveryCheckOnce(t *testing.T) {
	html := `<!DOCTYPE html><html lang="en"><head><link rel="shortcut icon" href="f.ico"></head>
<body><p>Dear Customer,</p><a href="https://shop.com/u">Unsubscribe</a></body></html>`
	c := check.NewContext(html)
	New(Config{Salutation: "{{NAME}}"}).Run(c)

	ids := []string{
		IDTemplateSize, IDTextImageRatio, IDImgAlt, IDLinkText, IDEmptyHref, IDBrokenLinks,
		IDInsecureURLs, IDFavicon, IDScript, IDForms, IDCSSSupport, IDBackgroundImage,
		IDBorderCollapse, IDImgDimensions, IDImageFormat, IDTableRole, IDLang, IDUnsubscribe,
		IDViewport, IDFooterMedia, IDSalutation, IDMailto, IDExternalCSS, IDBase64Images,
		IDMSOConditionals, IDTrackingPixels, IDMergeFields,
	}
	assert.Len(t, c.Checks, len(ids))
	for _, id := range ids {
		only(t, c, id)
	}
	assert.NotContains(t, c.Text, "f.ico")
	assert.Contains(t, c.Text, "Dear {{NAME}},")
	assert.Equal(t, check.StatusInfo, only(t, c, IDMergeFields).Status)
}

func TestDescriptionsCoverEveryCheck(t *testing.T) {
	c := check.NewContext(`<html><body><p>x</p></body></html>`)
	New(Config{}).Run(c)

	var ran, described []string
	for _, ch := range c.Checks {
		ran = append(ran, ch.ID)
	}
	for _, d := range Descriptions() {
		assert.NotEmpty(t, d.Summary, d.ID)
		described = append(described, d.ID)
	}
	assert.ElementsMatch(t, ran, described)
}
