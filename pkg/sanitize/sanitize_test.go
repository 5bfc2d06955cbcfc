package sanitize

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joeblew999/plat-mailfix/pkg/check"
)

func run(t *testing.T, step func(*check.Context), html string) *check.Context {
	t.Helper()
	c := check.NewContext(html)
	step(c)
	return c
}

func only(t *testing.T, c *check.Context, id string) check.Check {
	t.Helper()
	found := c.Find(id)
	require.Len(t, found, 1, "checks with id %s", id)
	return found[0]
}

func TestMojibakeUmlaut(t *testing.T) {
	c := run(t, repairMojibake, "<p>Ã¼ber uns</p>")
	assert.Equal(t, "<p>über uns</p>", c.Text)
	ch := only(t, c, IDMojibake)
	assert.Equal(t, check.StatusFixed, ch.Status)
	assert.Contains(t, ch.Message, "1 ")
}

func TestMojibakeLongestMatchFirst(t *testing.T) {
	out, n := RepairMojibake("a â€” b â€™ c")
	assert.Equal(t, "a — b ’ c", out)
	assert.Equal(t, 2, n)
}

func TestMojibakeLeavesCleanTextAlone(t *testing.T) {
	in := "<p>Grüße — “quoted” €5</p>"
	out, n := RepairMojibake(in)
	assert.Equal(t, in, out)
	assert.Zero(t, n)
}

func TestCharsetConflictPrefersUTF8(t *testing.T) {
	html := `<head><meta charset="iso-8859-1"><meta charset="iso-8859-1"><meta charset="utf-8"></head>`
	c := run(t, resolveCharset, html)
	assert.Equal(t, 1, strings.Count(c.Text, "<meta"))
	assert.Contains(t, c.Text, `<meta charset="utf-8">`)
	ch := only(t, c, IDDupCharset)
	assert.Equal(t, check.StatusFixed, ch.Status)
	assert.Contains(t, ch.Message, "conflicting")
	assert.Contains(t, ch.Message, "iso-8859-1")
}

func TestCharsetKeepsFirstWithoutUTF8(t *testing.T) {
	html := `<meta charset="windows-1252"><meta http-equiv="Content-Type" content="text/html; charset=iso-8859-1">`
	c := run(t, resolveCharset, html)
	assert.Equal(t, `<meta charset="windows-1252">`, c.Text)
}

func TestCharsetSingleNonUTF8Warns(t *testing.T) {
	c := run(t, resolveCharset, `<meta charset="iso-8859-1">`)
	assert.Equal(t, check.StatusWarn, only(t, c, IDDupCharset).Status)
}

func TestCollapseStructureAndTitle(t *testing.T) {
	html := `<html><head><title>Untitled</title></head><body>` +
		`<html><head><title>Spring Sale</title></head><body><p>x</p></body></html>` +
		`</body></html>`
	c := check.NewContext(html)
	collapseStructure(c)
	dedupeTitle(c)
	assert.Equal(t, `<html><head><title>Spring Sale</title></head><body><p>x</p></body></html>`, c.Text)
	assert.Equal(t, check.StatusFixed, only(t, c, IDDupStructure).Status)
	assert.Equal(t, check.StatusFixed, only(t, c, IDDupTitle).Status)
}

func TestCollapseStructureIgnoresCommentedMarkup(t *testing.T) {
	html := `<html><body><!-- <body> --><p>x</p></body></html>`
	c := run(t, collapseStructure, html)
	assert.Equal(t, html, c.Text)
	assert.Equal(t, check.StatusPass, only(t, c, IDDupStructure).Status)
}

func TestDedupeAttributes(t *testing.T) {
	c := run(t, dedupeAttributes, `<td style="color:red" align="left" style="padding:4px;color:blue" align="right">x</td>`)
	assert.Equal(t, `<td style="color:blue;padding:4px;" align="left">x</td>`, c.Text)
	assert.Equal(t, check.StatusFixed, only(t, c, IDDupAttributes).Status)
}

func TestCleanHrefs(t *testing.T) {
	c := run(t, cleanHrefs, "<a href=\" https://x.com/a \">a</a><a href=\"https://x.com/\nb\">b</a>")
	assert.Equal(t, `<a href="https://x.com/a">a</a><a href="https://x.com/b">b</a>`, c.Text)
	assert.Equal(t, check.StatusFixed, only(t, c, IDHrefWhitespace).Status)
	assert.Equal(t, check.StatusFixed, only(t, c, IDHrefNewline).Status)
}

func TestStripCMSArtifacts(t *testing.T) {
	in := `<div contenteditable="true" data-qa-id="x" class="" style="color:red;caret-color:auto"><img src="a.png" alt="null"></div>`
	out, n := StripCMSArtifacts(in)
	assert.Equal(t, `<div style="color:red;"><img src="a.png" alt=""></div>`, out)
	assert.Equal(t, 5, n)

	again, n := StripCMSArtifacts(out)
	assert.Equal(t, out, again)
	assert.Zero(t, n)
}

func TestExpandSelfClosing(t *testing.T) {
	c := run(t, expandSelfClosing, `<td width="10"/><br/><div class="x" /><img src="a"/>`)
	assert.Equal(t, `<td width="10"></td><br/><div class="x"></div><img src="a"/>`, c.Text)
	assert.Equal(t, check.StatusFixed, only(t, c, IDSelfClosing).Status)
}

func TestBOMAndLineEndings(t *testing.T) {
	c := check.NewContext("\uFEFF<p>a</p>\r\n<p>b</p>\r")
	stripBOM(c)
	normalizeLineEndings(c)
	assert.Equal(t, "<p>a</p>\n<p>b</p>\n", c.Text)
	assert.Equal(t, check.StatusFixed, only(t, c, IDBOM).Status)
	assert.Equal(t, check.StatusFixed, only(t, c, IDLineEndings).Status)
}

func TestRunIsIdempotent(t *testing.T) {
	html := "\uFEFF<html><head><meta charset=\"utf-8\"><meta charset=\"utf-8\"></head>\r\n" +
		`<body><td style="a:b" style="c:d"/><a href=" x ">Ã©t&eacute;</a></body></html>`
	first := check.NewContext(html)
	Run(first)

	second := check.NewContext(first.Text)
	Run(second)
	assert.Equal(t, first.Text, second.Text)
	for _, ch := range second.Checks {
		assert.NotEqual(t, check.StatusFixed, ch.Status, ch.String())
	}
}
