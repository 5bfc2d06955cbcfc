package placeholder

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joeblew999/plat-mailfix/pkg/check"
)

func runAll(m *Manager, html string) *check.Context {
	c := check.NewContext(html)
	for _, p := range m.Phases() {
		p.Run(c)
	}
	return c
}

func status(t *testing.T, c *check.Context, id string) check.Status {
	t.Helper()
	found := c.Find(id)
	require.Len(t, found, 1, id)
	return found[0].Status
}

func TestPaddingRepeats(t *testing.T) {
	assert.Equal(t, 150, PaddingRepeats(0))
	assert.Equal(t, 50, PaddingRepeats(200))
	assert.Equal(t, 30, PaddingRepeats(241))
	assert.Equal(t, 30, PaddingRepeats(280))
	assert.Equal(t, 30, PaddingRepeats(400))
}

func TestFindPreheaders(t *testing.T) {
	tests := []struct {
		name string
		body string
		want []string
	}{
		{"hidden div", `<div style="display:none;max-height:0">Spring offers</div>`, []string{"Spring offers"}},
		{"mso hide", `<div style="mso-hide:all;font-size:0px;">Hi</div>`, []string{"Hi"}},
		{"visible div", `<div style="font-size:14px">Hi</div>`, nil},
		{"mobile-only block has class", `<div class="mobile" style="display:none">Menu</div>`, nil},
		{"nested image", `<div style="display:none"><img src="a.png"></div>`, nil},
		{"nested table", `<div style="display:none"><table><tr><td>x</td></tr></table></div>`, nil},
		{"outermost reported once", `<div style="display:none"><div style="display:none">x</div></div>`, []string{"x"}},
		{"padding stripped", `<div style="display:none">Sale&zwnj;&nbsp;&zwnj;&nbsp;</div>`, []string{"Sale"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			found := FindPreheaders("<html><body>" + tt.body + "<p>content</p></body></html>")
			var texts []string
			for _, p := range found {
				texts = append(texts, p.Text)
			}
			assert.Equal(t, tt.want, texts)
		})
	}
}

func TestPreheaderOutsideWindowIgnored(t *testing.T) {
	html := "<body>" + strings.Repeat("x", preheaderWindow+10) + `<div style="display:none">late</div></body>`
	assert.Empty(t, FindPreheaders(html))
}

func TestInsertPreheaderHeaderFooter(t *testing.T) {
	m := New(Config{PreheaderText: "Big sale"})
	c := runAll(m, "<html><body>\n<p>x</p>\n</body></html>")

	assert.Equal(t, check.StatusFixed, status(t, c, IDPreheader))
	assert.Equal(t, check.StatusFixed, status(t, c, IDHeader))
	assert.Equal(t, check.StatusFixed, status(t, c, IDFooter))

	found := FindPreheaders(c.Text)
	require.Len(t, found, 1)
	assert.Equal(t, "Big sale", found[0].Text)
	assert.Equal(t, PaddingRepeats(len("Big sale")), strings.Count(c.Text, "&zwnj;&nbsp;"))

	header := strings.Index(c.Text, DefaultHeaderToken)
	assert.Greater(t, header, found[0].End-1, "header goes after the preheader")
	assert.Less(t, header, strings.Index(c.Text, "<p>x</p>"))
	footer := strings.Index(c.Text, DefaultFooterToken)
	assert.Greater(t, footer, strings.Index(c.Text, "<p>x</p>"))
	assert.Less(t, footer, strings.Index(c.Text, "</body>"))

	again := runAll(m, c.Text)
	assert.Equal(t, c.Text, again.Text)
	for _, ch := range again.Checks {
		assert.Equal(t, check.StatusPass, ch.Status, ch.String())
	}
}

func TestPreheaderTextIsEscaped(t *testing.T) {
	m := New(Config{PreheaderText: "Save 10% <today> & more"})
	c := runAll(m, "<html><body>\n<p>x</p>\n</body></html>")

	assert.NotContains(t, c.Text, "<today>")
	assert.Contains(t, c.Text, "Save 10% &lt;today&gt; &amp; more")
	require.Len(t, FindPreheaders(c.Text), 1)
}

func TestDuplicateTokensKeepFirst(t *testing.T) {
	m := New(Config{})
	c := runAll(m, `<body>{{HEADER}}<p>{{HEADER}}</p>{{FOOTER}}<p>{{FOOTER}}</p></body>`)
	assert.Equal(t, `<body>{{HEADER}}<p></p>{{FOOTER}}<p></p></body>`, c.Text)
	assert.Equal(t, check.StatusFixed, status(t, c, IDHeader))
	assert.Equal(t, check.StatusFixed, status(t, c, IDFooter))
	assert.Equal(t, check.StatusWarn, status(t, c, IDPreheader))
}

func TestDuplicatePreheadersKeepFirst(t *testing.T) {
	m := New(Config{})
	c := runAll(m, `<body><div style="display:none">one</div><div style="display:none">two</div>{{HEADER}}{{FOOTER}}</body>`)
	assert.Equal(t, `<body><div style="display:none">one</div>{{HEADER}}{{FOOTER}}</body>`, c.Text)
	assert.Equal(t, check.StatusFixed, status(t, c, IDPreheader))
}

func TestThemedVariantAnchorsInsideWrapper(t *testing.T) {
	m := New(Config{Themed: true, ThemeColor: "#0a2540"})
	c := runAll(m, "<html><body><p>x</p></body></html>")

	assert.Equal(t, check.StatusFixed, status(t, c, IDThemeWrapper))
	wrapper := strings.Index(c.Text, `<div class="email-theme" style="background-color:#0a2540;">`)
	header := strings.Index(c.Text, DefaultHeaderToken)
	content := strings.Index(c.Text, "<p>x</p>")
	footer := strings.Index(c.Text, DefaultFooterToken)
	closing := strings.Index(c.Text, "</div>"+msoClose)

	require.GreaterOrEqual(t, wrapper, 0)
	assert.Contains(t, c.Text[:wrapper], "<!--[if mso]><table")
	assert.Less(t, wrapper, header)
	assert.Less(t, header, content)
	assert.Less(t, content, footer)
	assert.Less(t, footer, closing)

	again := runAll(m, c.Text)
	assert.Equal(t, c.Text, again.Text)
	assert.Equal(t, check.StatusPass, status(t, again, IDThemeWrapper))
}

func TestExistingWrapperGetsConditionalTable(t *testing.T) {
	m := New(Config{Themed: true})
	c := runAll(m, `<body><div class="email-theme"><p>x</p></div></body>`)
	assert.Equal(t, check.StatusFixed, status(t, c, IDThemeWrapper))
	assert.Contains(t, c.Text, `<![endif]--><div class="email-theme">`)
	assert.Contains(t, c.Text, "</div>"+msoClose)
}

func TestMissingBodyFails(t *testing.T) {
	c := runAll(New(Config{}), `<table><tr><td>x</td></tr></table>`)
	assert.Equal(t, check.StatusFail, status(t, c, IDHeader))
	assert.Equal(t, check.StatusFail, status(t, c, IDFooter))
}
