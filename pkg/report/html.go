package report

import (
	"fmt"
	"io"
	"strings"

	g "maragu.dev/gomponents"
	h "maragu.dev/gomponents/html"

	"github.com/joeblew999/plat-mailfix/pkg/check"
)

func writeHTML(w io.Writer, summaries []Summary) error {
	return Page("Template repair report", summaries).Render(w)
}

// Page renders a standalone HTML report.
func Page(title string, summaries []Summary) g.Node {
	return h.Doctype(h.HTML(
		h.Lang("en"),
		h.Head(
			h.Meta(h.Charset("utf-8")),
			h.Meta(h.Name("viewport"), h.Content("width=device-width, initial-scale=1")),
			h.TitleEl(g.Text(title)),
			h.StyleEl(h.Type("text/css"), g.Raw(styles)),
		),
		h.Body(
			h.H1(g.Text(title)),
			h.P(h.Class("meta"), g.Textf("%d file(s)", len(summaries))),
			g.Map(summaries, fileSection),
		),
	))
}

func fileSection(s Summary) g.Node {
	if s.Error != "" {
		return h.Section(h.Class("file"),
			h.H2(g.Text(s.File)),
			h.P(h.Class("status FAIL"), g.Text(s.Error)),
		)
	}
	return h.Section(h.Class("file"),
		h.H2(g.Text(s.File)),
		h.P(
			h.Span(h.Class("confidence "+string(s.ConfidenceLevel)), g.Textf("%d/100 %s", s.Confidence, s.ConfidenceLevel)),
			g.Text(" "+countsLine(s.Counts)),
		),
		g.If(len(s.AttentionItems) > 0, h.Div(h.Class("attention"),
			h.H3(g.Text("Needs review")),
			h.Ol(g.Map(s.AttentionItems, func(item string) g.Node { return h.Li(g.Text(item)) })),
		)),
		h.Table(
			h.THead(h.Tr(h.Th(g.Text("Status")), h.Th(g.Text("Check")), h.Th(g.Text("Message")))),
			h.TBody(g.Map(s.Checks, checkRow)),
		),
		g.If(len(s.AutoFixes) > 0, h.Details(
			h.Summary(g.Textf("%d proposed closing tag(s)", len(s.AutoFixes))),
			h.Table(
				h.THead(h.Tr(
					h.Th(g.Text("Fix")), h.Th(g.Text("Insert")), h.Th(g.Text("Confidence")),
					h.Th(g.Text("Line")), h.Th(g.Text("Opened by")), h.Th(g.Text("State")),
				)),
				h.TBody(g.Map(s.AutoFixes, fixRow)),
			),
		)),
		g.If(len(s.TagProblems) > 0, h.Details(
			h.Summary(g.Textf("%d orphan closing tag(s)", len(s.TagProblems))),
			h.Ul(g.Map(s.TagProblems, func(p check.TagProblem) g.Node {
				return h.Li(g.Textf("line %d: </%s> ", p.LineNumber, p.Tag), h.Code(g.Text(p.Snippet)))
			})),
		)),
	)
}

func checkRow(c check.Check) g.Node {
	return h.Tr(
		h.Td(h.Span(h.Class("status "+string(c.Status)), g.Text(string(c.Status)))),
		h.Td(h.Code(g.Text(c.ID))),
		h.Td(g.Text(c.Message)),
	)
}

func fixRow(f check.AutoFix) g.Node {
	state := "pending review"
	switch {
	case f.Applied:
		state = "applied"
	case f.CoveredBy != "":
		state = "covered by " + f.CoveredBy
	}
	return h.Tr(
		h.Td(g.Text(f.ID)),
		h.Td(h.Code(g.Text(f.InsertedText))),
		h.Td(g.Text(string(f.Confidence))),
		h.Td(g.Text(fmt.Sprint(f.OpenTagLine))),
		h.Td(h.Code(g.Text(strings.TrimSpace(f.OpenTagSnippet)))),
		h.Td(g.Text(state)),
	)
}

const styles = `
body { font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, sans-serif; margin: 2rem; color: #222; }
h1 { font-size: 1.5rem; }
.meta { color: #666; }
.file { border: 1px solid #ddd; border-radius: 8px; padding: 1rem 1.5rem; margin-bottom: 1.5rem; }
table { border-collapse: collapse; width: 100%; margin: 1rem 0; font-size: 0.9rem; }
th, td { text-align: left; padding: 4px 8px; border-bottom: 1px solid #eee; vertical-align: top; }
code { font-size: 0.85rem; }
.status { font-weight: bold; padding: 1px 6px; border-radius: 4px; }
.PASS, .SKIPPED { color: #777; }
.FIXED { color: #1b7f3b; }
.WARN { color: #a86500; }
.FAIL { color: #c62828; }
.INFO { color: #1565c0; }
.confidence { font-weight: bold; }
.confidence.high { color: #1b7f3b; }
.confidence.medium { color: #a86500; }
.confidence.low { color: #c62828; }
.attention { background: #fff8e1; padding: 0.5rem 1rem; border-radius: 6px; }
`
