package report

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/joeblew999/plat-mailfix/pkg/check"
	"github.com/joeblew999/plat-mailfix/pkg/cta"
	"github.com/joeblew999/plat-mailfix/pkg/pipeline"
)

func init() {
	color.NoColor = true
}

func sample() []Summary {
	res := &pipeline.Result{
		ID:              "run-1",
		Confidence:      72,
		ConfidenceLevel: pipeline.LevelMedium,
		Checks: []check.Check{
			{ID: "S01_BOM", Status: check.StatusPass, Message: "no BOM"},
			{ID: "B01_BALANCE_TD", Status: check.StatusWarn, Message: "1 unclosed <td>"},
			{ID: "Q07_ALT_TEXT", Status: check.StatusFail, Message: "2 image(s) without alt"},
		},
		AutoFixes: []check.AutoFix{{
			ID: "FIX_001", Tag: "td", InsertedText: "</td>", Confidence: check.ConfidenceMedium,
			OpenTagLine: 4, OpenTagSnippet: " <td class=\"x\"> ",
		}},
		TagProblems: []check.TagProblem{{
			ID: "TP_001", Type: check.ProblemExcessClosingTag, Tag: "div", LineNumber: 9, Snippet: "</div>",
		}},
		AttentionItems: []string{"Q07_ALT_TEXT: 2 image(s) without alt"},
	}
	return []Summary{
		Summarize("welcome.html", res, nil),
		Summarize("broken.html", nil, errors.New("template is empty")),
	}
}

func TestParseFormat(t *testing.T) {
	for in, want := range map[string]Format{"": FormatHuman, "JSON": FormatJSON, " yaml ": FormatYAML, "html": FormatHTML} {
		got, err := ParseFormat(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got)
	}
	_, err := ParseFormat("xml")
	assert.Error(t, err)
}

func TestSummarize(t *testing.T) {
	s := sample()
	assert.Equal(t, 1, s[0].Counts[check.StatusPass])
	assert.Equal(t, 1, s[0].Counts[check.StatusFail])
	assert.True(t, s[0].Failed())
	assert.True(t, s[1].Failed())
	assert.Empty(t, s[1].Checks)

	clean := Summarize("ok.html", &pipeline.Result{Checks: []check.Check{{ID: "A", Status: check.StatusWarn}}}, nil)
	assert.False(t, clean.Failed())
}

func TestWriteHuman(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, FormatHuman, sample(), Options{}))
	out := buf.String()

	assert.Contains(t, out, "welcome.html")
	assert.Contains(t, out, "confidence 72/100 (medium)")
	assert.Contains(t, out, "1 fail, 1 warn, 1 pass")
	assert.Contains(t, out, "Q07_ALT_TEXT")
	assert.NotContains(t, out, "S01_BOM")
	assert.Contains(t, out, "1. Q07_ALT_TEXT")
	assert.Contains(t, out, "ERROR  template is empty")
	assert.Contains(t, out, "2 file(s), 2 with failures")

	buf.Reset()
	require.NoError(t, Write(&buf, FormatHuman, sample(), Options{Verbose: true}))
	assert.Contains(t, buf.String(), "S01_BOM")
}

func TestWriteJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, FormatJSON, sample(), Options{}))

	var got []Summary
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	require.Len(t, got, 2)
	assert.Equal(t, "run-1", got[0].ID)
	assert.Equal(t, 72, got[0].Confidence)
	assert.Len(t, got[0].Checks, 3)
	assert.Equal(t, "template is empty", got[1].Error)
}

func TestWriteYAML(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, FormatYAML, sample(), Options{}))

	var got []Summary
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &got))
	require.Len(t, got, 2)
	assert.Equal(t, pipeline.LevelMedium, got[0].ConfidenceLevel)
	assert.Equal(t, "td", got[0].AutoFixes[0].Tag)
}

func TestWriteHTML(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, FormatHTML, sample(), Options{}))
	out := buf.String()

	assert.Contains(t, out, "<!doctype html>")
	assert.Contains(t, out, "<h2>welcome.html</h2>")
	assert.Contains(t, out, `<span class="status FAIL">FAIL</span>`)
	assert.Contains(t, out, "&lt;/td&gt;")
	assert.Contains(t, out, "pending review")
	assert.Contains(t, out, "1 orphan closing tag(s)")
	assert.Contains(t, out, "template is empty")
}

func TestWriteButtons(t *testing.T) {
	buttons := []cta.Button{{
		ID: "BTN_1", Type: cta.TypeTable, Href: "https://x.com", Text: "Buy",
		BgColor: "#e4002b", Width: 200, Height: 44, VMLStatus: cta.VMLMissing,
	}}

	var buf bytes.Buffer
	require.NoError(t, WriteButtons(&buf, FormatHuman, "a.html", buttons))
	assert.Contains(t, buf.String(), "a.html: 1 button(s)")
	assert.Contains(t, buf.String(), `"Buy" -> https://x.com (200x44, bg #e4002b)`)

	buf.Reset()
	require.NoError(t, WriteButtons(&buf, FormatJSON, "a.html", buttons))
	var doc struct {
		File    string       `json:"file"`
		Buttons []cta.Button `json:"buttons"`
	}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &doc))
	assert.Equal(t, "a.html", doc.File)
	assert.Equal(t, "BTN_1", doc.Buttons[0].ID)
}
