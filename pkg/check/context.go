package check

import (
	"fmt"
	"sort"
	"strings"
)

// Context is the state owned by one pipeline run. Phases read and replace
// Text and append findings; nothing else holds a reference to it.
type Context struct {
	Text        string
	Checks      []Check
	AutoFixes   []AutoFix
	TagProblems []TagProblem
}

// NewContext starts a run over html.
func NewContext(html string) *Context {
	return &Context{Text: html}
}

func (c *Context) add(id string, status Status, format string, args ...any) {
	c.Checks = append(c.Checks, Check{ID: id, Status: status, Message: fmt.Sprintf(format, args...)})
}

func (c *Context) Pass(id, format string, args ...any)  { c.add(id, StatusPass, format, args...) }
func (c *Context) Fixed(id, format string, args ...any) { c.add(id, StatusFixed, format, args...) }
func (c *Context) Warn(id, format string, args ...any)  { c.add(id, StatusWarn, format, args...) }
func (c *Context) Fail(id, format string, args ...any)  { c.add(id, StatusFail, format, args...) }
func (c *Context) Info(id, format string, args ...any)  { c.add(id, StatusInfo, format, args...) }

func (c *Context) Skipped(id, format string, args ...any) {
	c.add(id, StatusSkipped, format, args...)
}

// Find returns the checks with the given id.
func (c *Context) Find(id string) []Check {
	var out []Check
	for _, ch := range c.Checks {
		if ch.ID == id {
			out = append(out, ch)
		}
	}
	return out
}

// NextProblemID returns a sequential id for a new TagProblem.
func (c *Context) NextProblemID() string {
	return fmt.Sprintf("problem-%d", len(c.TagProblems)+1)
}

// LineAt returns the 1-based line number of byte offset pos in text.
func LineAt(text string, pos int) int {
	if pos > len(text) {
		pos = len(text)
	}
	if pos < 0 {
		pos = 0
	}
	return strings.Count(text[:pos], "\n") + 1
}

// Lines answers LineAt for many offsets of one text.
type Lines []int

// NewLines records the newline offsets of text.
func NewLines(text string) Lines {
	var l Lines
	for i := 0; i < len(text); i++ {
		if text[i] == '\n' {
			l = append(l, i)
		}
	}
	return l
}

// At returns the 1-based line number of byte offset pos.
func (l Lines) At(pos int) int {
	return sort.SearchInts(l, pos) + 1
}

// Snippet returns up to radius bytes on each side of pos with newlines
// flattened, for display next to a finding.
func Snippet(text string, pos, radius int) string {
	start := max(pos-radius, 0)
	end := min(pos+radius, len(text))
	if start > end {
		return ""
	}
	s := strings.NewReplacer("\n", " ", "\t", " ").Replace(text[start:end])
	return strings.TrimSpace(s)
}

// Phase is one named step of the repair pipeline.
type Phase struct {
	Name string
	Run  func(*Context)
}

// Replace swaps Text[start:end] for s and re-projects every recorded
// AutoFix and TagProblem position at or after end onto the new text.
func (c *Context) Replace(start, end int, s string) {
	c.Text = c.Text[:start] + s + c.Text[end:]
	c.Shift(end, len(s)-(end-start))
}

// Insert splices s into Text at pos.
func (c *Context) Insert(pos int, s string) { c.Replace(pos, pos, s) }

// Shift moves recorded positions at or after from by delta and refreshes
// their line numbers against the current Text.
func (c *Context) Shift(from, delta int) {
	if delta == 0 {
		return
	}
	c.reproject(func(pos int) int {
		if pos >= from {
			return pos + delta
		}
		return pos
	})
}

// Edit replaces [Start, End) of the text with Text.
type Edit struct {
	Start int
	End   int
	Text  string
}

// Apply performs non-overlapping edits in one pass and re-projects recorded
// positions as Replace would have done edit by edit. edits must be sorted
// by Start.
func (c *Context) Apply(edits []Edit) {
	if len(edits) == 0 {
		return
	}
	var b strings.Builder
	last := 0
	// shift[k] is the length change made by the first k edits
	shift := make([]int, len(edits)+1)
	for k, e := range edits {
		b.WriteString(c.Text[last:e.Start])
		b.WriteString(e.Text)
		last = e.End
		shift[k+1] = shift[k] + len(e.Text) - (e.End - e.Start)
	}
	b.WriteString(c.Text[last:])
	c.Text = b.String()
	if shift[len(edits)] == 0 {
		return
	}
	c.reproject(func(pos int) int {
		k := sort.Search(len(edits), func(k int) bool { return edits[k].End > pos })
		return pos + shift[k]
	})
}

func (c *Context) reproject(move func(int) int) {
	var lines Lines
	lineAt := func(pos int) int {
		if lines == nil {
			lines = NewLines(c.Text)
		}
		return lines.At(pos)
	}
	for i := range c.AutoFixes {
		f := &c.AutoFixes[i]
		f.InsertPosition = move(f.InsertPosition)
		if p := move(f.OpenPosition); p != f.OpenPosition {
			f.OpenPosition = p
			f.OpenTagLine = lineAt(p)
		}
	}
	for i := range c.TagProblems {
		p := &c.TagProblems[i]
		if pos := move(p.Position); pos != p.Position {
			p.Position = pos
			p.LineNumber = lineAt(pos)
		}
	}
}
