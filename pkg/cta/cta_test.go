package cta

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joeblew999/plat-mailfix/pkg/check"
)

func TestTableButtonWithoutVMLIsNativeOK(t *testing.T) {
	html := `<td bgcolor="#112233" align="center"><a href="https://x">Buy now</a></td>`

	buttons := Extract(html)
	require.Len(t, buttons, 1)
	b := buttons[0]
	assert.Equal(t, TypeTable, b.Type)
	assert.Equal(t, VMLNativeOK, b.VMLStatus)
	assert.False(t, b.HasVML)
	assert.Equal(t, "https://x", b.Href)
	assert.Equal(t, "Buy now", b.Text)
	assert.Equal(t, "#112233", b.BgColor)
	assert.Equal(t, 0, b.MatchIndex)
	assert.Equal(t, html, b.FullMatch)

	c := check.NewContext(html)
	Synthesize(c)
	assert.Equal(t, html, c.Text)
	assert.Equal(t, check.StatusPass, c.Find(IDVML)[0].Status)
	assert.Equal(t, check.StatusInfo, c.Find(IDButtons)[0].Status)
}

func TestInlineButtonMeasured(t *testing.T) {
	html := `<p>Hi</p><a href="https://shop" style="background-color:#ff0000;padding:12px 24px;color:#ffffff;border-radius:4px;font-size:18px">Shop</a>`

	buttons := Extract(html)
	require.Len(t, buttons, 1)
	b := buttons[0]
	assert.Equal(t, "cta-1", b.ID)
	assert.Equal(t, TypeInline, b.Type)
	assert.Equal(t, "#ff0000", b.BgColor)
	assert.Equal(t, "#ffffff", b.TextColor)
	assert.Equal(t, 4, b.BorderRadius)
	assert.Equal(t, 18, b.FontSize)
	assert.Equal(t, strings.Index(html, "<a "), b.MatchIndex)
	assert.Equal(t, VMLMissing, b.VMLStatus)
}

func TestAnchorWithoutShapeIsNotAButton(t *testing.T) {
	assert.Empty(t, Extract(`<a href="https://x" style="background:#000">plain</a>`))
	assert.Empty(t, Extract(`<a href="https://x" style="padding:10px"></a>`))
}

func TestCellWithSeveralBlocksIsContent(t *testing.T) {
	html := `<td align="center" bgcolor="#eeeeee"><h1>Title</h1><p>Body</p><a href="https://x">More</a></td>`
	assert.Empty(t, Extract(html))
}

func TestCSSClassButtons(t *testing.T) {
	html := `<style>
/* .ghost { background: #f00 } */
.btn { background-color: #0000ff; border-radius: 6px; }
.btn:hover { background-color: #ff00ff; }
@media (max-width: 600px) { .wide { background: #ff0000; } }
</style>
<table><tr><td class="btn"><a href="https://c" style="color:#ffffff">Go</a></td></tr></table>
<a class="wide" href="https://d">No</a>
<a class="ghost" href="https://e">Nope</a>`

	buttons := Extract(html)
	require.Len(t, buttons, 1)
	b := buttons[0]
	assert.Equal(t, TypeCSSClass, b.Type)
	assert.Equal(t, "https://c", b.Href)
	assert.Equal(t, "#0000ff", b.BgColor)
	assert.Equal(t, "#ffffff", b.TextColor)
	assert.Equal(t, 6, b.BorderRadius)
	assert.True(t, strings.HasPrefix(b.FullMatch, `<td class="btn">`))
	assert.Equal(t, VMLMissing, b.VMLStatus)
}

func TestBackgroundClassesTopLevelOnly(t *testing.T) {
	html := `<style>
@supports (display:block) { @media screen { .deep { background: #f00; } } }
.btn, td.alt { background: #00f !important; }
.plain { color: red; }
</style>`

	classes := backgroundClasses(html)
	require.Len(t, classes, 2)
	assert.Equal(t, "#00f !important", classes["btn"].value("background"))
	assert.Contains(t, classes, "alt")
	assert.NotContains(t, classes, "deep")
}

func TestButtonsNeverOverlap(t *testing.T) {
	html := `<style>.cta{background:#123456}</style>
<table><tr>
<td align="center" bgcolor="#123456"><a href="https://a" style="background:#123456;padding:10px;display:inline-block">A</a></td>
<td align="center" bgcolor="#654321"><a href="https://b">B</a></td>
<td class="cta"><a class="cta" href="https://c">C</a></td>
</tr></table>`

	buttons := Extract(html)
	require.Len(t, buttons, 3)
	assert.Equal(t, TypeInline, buttons[0].Type)
	assert.Equal(t, TypeTable, buttons[1].Type)
	assert.Equal(t, TypeCSSClass, buttons[2].Type)
	assert.True(t, strings.HasPrefix(buttons[2].FullMatch, `<td class="cta">`), "the outer cell is claimed first")

	for i := range buttons {
		for j := i + 1; j < len(buttons); j++ {
			a, b := buttons[i], buttons[j]
			overlap := a.MatchIndex < b.End() && b.MatchIndex < a.End()
			assert.False(t, overlap, "%s overlaps %s", a.ID, b.ID)
		}
	}
}

func TestVMLClassification(t *testing.T) {
	vml := func(href, text string) string {
		return `<!--[if mso]><v:roundrect href="` + href + `" style="height:40px;width:200px" arcsize="10%" fillcolor="#112233"><w:anchorlock/><center>` + text + `</center></v:roundrect><![endif]-->`
	}
	button := `<a href="https://x?a=1&amp;b=2" style="background:#112233;padding:10px">Buy now</a>`

	tests := []struct {
		name   string
		html   string
		status VMLStatus
	}{
		{"matching shape", vml("https://x?a=1&amp;b=2", "Buy now") + "\n" + button, VMLOK},
		{"text differs", vml("https://x?a=1&amp;b=2", "Buy later") + "\n" + button, VMLMismatch},
		{"href differs", vml("https://y", "Buy now") + "\n" + button, VMLMismatch},
		{"too far away", vml("https://x?a=1&amp;b=2", "Buy now") + strings.Repeat(" ", 600) + button, VMLMissing},
		{"no shape", button, VMLMissing},
		{
			"inline mso fallback",
			`<a href="https://m" style="background-color:#000;padding:12px"><!--[if mso]><i style="mso-text-raise:30px">&#8202;</i><![endif]--><span>Go</span><!--[if mso]><i>&#8202;</i><![endif]--></a>`,
			VMLOK,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buttons := Extract(tt.html)
			require.Len(t, buttons, 1)
			assert.Equal(t, tt.status, buttons[0].VMLStatus)
			assert.Equal(t, tt.status != VMLMissing, buttons[0].HasVML)
		})
	}
}

func TestVMLBelongsToTheNearestButton(t *testing.T) {
	html := `<!--[if mso]><v:rect href="https://one" fillcolor="#000"><center>One</center></v:rect><![endif]-->` +
		`<a href="https://one" style="background:#000;padding:8px">One</a>` +
		`<a href="https://two" style="background:#000;padding:8px">Two</a>`

	buttons := Extract(html)
	require.Len(t, buttons, 2)
	assert.Equal(t, VMLOK, buttons[0].VMLStatus)
	assert.Equal(t, VMLMissing, buttons[1].VMLStatus)
}

func TestEstimate(t *testing.T) {
	tests := []struct {
		name string
		b    Button
		want Geometry
	}{
		{
			name: "short text gets the minimum width",
			b:    Button{Text: "Buy now", FontSize: 16},
			want: Geometry{Width: 120, Height: 41, Lines: 1},
		},
		{
			name: "wrapping text grows the height",
			b:    Button{Text: strings.Repeat("x", 30), FontSize: 16, Width: 200, BorderRadius: 100},
			want: Geometry{Width: 200, Height: 62, ArcSize: 50, Lines: 2},
		},
		{
			name: "declared height wins when larger",
			b:    Button{Text: "Go", FontSize: 16, Height: 60, BorderRadius: 6},
			want: Geometry{Width: 120, Height: 60, ArcSize: 10, Lines: 1},
		},
		{
			name: "height floor",
			b:    Button{Text: "Go", FontSize: 8},
			want: Geometry{Width: 120, Height: 36, Lines: 1},
		},
		{
			name: "missing font size uses the default",
			b:    Button{Text: "Buy now"},
			want: Geometry{Width: 120, Height: 41, Lines: 1},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Estimate(tt.b))
		})
	}
}

func TestVMLMarkup(t *testing.T) {
	b := Button{Href: "https://x?a=1&b=2", Text: "Buy <now>", BgColor: "#ff0000", FontSize: 16, BorderRadius: 4}
	got := VMLMarkup(b)

	assert.True(t, strings.HasPrefix(got, "<!--[if mso]>"))
	assert.True(t, strings.HasSuffix(got, "<![endif]-->"))
	assert.Contains(t, got, `<v:roundrect `)
	assert.Contains(t, got, `</v:roundrect>`)
	assert.Contains(t, got, `href="https://x?a=1&amp;b=2"`)
	assert.Contains(t, got, `fillcolor="#ff0000"`)
	assert.Contains(t, got, `arcsize="10%"`)
	assert.Contains(t, got, `<w:anchorlock/>`)
	assert.Contains(t, got, `color:#ffffff`)
	assert.Contains(t, got, `>Buy &lt;now&gt;</center>`)

	square := VMLMarkup(Button{Href: "https://x", Text: "Go"})
	assert.Contains(t, square, `<v:rect `)
	assert.Contains(t, square, `fillcolor="#000000"`)
	assert.NotContains(t, square, "arcsize")
}

func TestSynthesizeWrapsMissingButtons(t *testing.T) {
	first := `<a href="https://one" style="background:#111111;padding:8px">One</a>`
	second := `<a href="https://two" style="background:#222222;padding:8px;border-radius:5px">Two</a>`
	html := "<body>" + first + "<p>gap</p>" + second + "</body>"

	c := check.NewContext(html)
	c.AutoFixes = []check.AutoFix{{ID: "fix-1", InsertPosition: strings.Index(html, "</body>")}}
	found := Synthesize(c)
	require.Len(t, found, 2)
	for _, b := range found {
		assert.Equal(t, VMLMissing, b.VMLStatus, b.ID)
	}

	assert.Equal(t, check.StatusFixed, c.Find(IDVML)[0].Status)
	assert.Contains(t, c.Find(IDVML)[0].Message, "2 button(s)")
	assert.Equal(t, 2, strings.Count(c.Text, "<!--[if mso]>"))
	assert.Equal(t, 1, strings.Count(c.Text, "<v:rect "))
	assert.Equal(t, 1, strings.Count(c.Text, "<v:roundrect "))
	assert.Contains(t, c.Text, hideFromMSOOpen+first+hideFromMSOClose)
	assert.Contains(t, c.Text, hideFromMSOOpen+second+hideFromMSOClose)
	assert.Equal(t, "</body>", c.Text[c.AutoFixes[0].InsertPosition:c.AutoFixes[0].InsertPosition+7])

	for _, b := range Extract(c.Text) {
		assert.Equal(t, VMLOK, b.VMLStatus, b.Text)
	}

	again := check.NewContext(c.Text)
	Synthesize(again)
	assert.Equal(t, c.Text, again.Text)
	assert.Equal(t, check.StatusPass, again.Find(IDVML)[0].Status)
}

func TestSynthesizeReportsMismatch(t *testing.T) {
	html := `<!--[if mso]><v:rect href="https://old"><center>Old</center></v:rect><![endif]-->` +
		`<a href="https://new" style="background:#000;padding:8px">New</a>`

	c := check.NewContext(html)
	Synthesize(c)
	assert.Equal(t, html, c.Text)
	got := c.Find(IDButtons)
	require.Len(t, got, 1)
	assert.Equal(t, check.StatusWarn, got[0].Status)
	assert.Contains(t, got[0].Message, `cta-1 "New"`)
}

func TestSynthesizeWithoutButtons(t *testing.T) {
	c := check.NewContext("<p>nothing to press</p>")
	Synthesize(c)
	assert.Equal(t, check.StatusInfo, c.Find(IDButtons)[0].Status)
	assert.Equal(t, check.StatusPass, c.Find(IDVML)[0].Status)
}
