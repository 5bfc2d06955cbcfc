// Package mask hides HTML comments, including Outlook conditional blocks,
// from tag counting while keeping a way back to original offsets.
//
// Two kinds of span are removed:
//   - ordinary comments <!-- ... -->, which also covers <!--[if mso]>...<![endif]-->
//   - bare downlevel-revealed markers <![if !mso]> and <![endif]>; only the
//     markers go, the markup between them is real and must be counted.
//
// Offsets are never cached across calls: every function rescans the string
// it is given, because the document changes between phases. Mapper and
// Closers hold offsets for one version of a document only.
package mask

import (
	"regexp"
	"sort"
	"strings"
)

// Span is a half-open byte range [Start, End) of the original text.
type Span struct {
	Start int
	End   int
}

// Len returns the byte length of the span.
func (s Span) Len() int { return s.End - s.Start }

var (
	maskable = regexp.MustCompile(`(?s)<!--.*?-->|<!\[if[^\]]*\]>|<!\[endif\]>`)
	comments = regexp.MustCompile(`(?s)<!--.*?-->`)
)

// Spans returns every span Strip removes, in order.
func Spans(html string) []Span {
	return toSpans(maskable.FindAllStringIndex(html, -1))
}

// CommentSpans returns only real <!-- --> comments. Boundary searches use
// these: a closer inside a comment is invisible to every renderer but the
// one the comment targets.
func CommentSpans(html string) []Span {
	return toSpans(comments.FindAllStringIndex(html, -1))
}

func toSpans(idx [][]int) []Span {
	out := make([]Span, 0, len(idx))
	for _, m := range idx {
		out = append(out, Span{Start: m[0], End: m[1]})
	}
	return out
}

// Strip removes comments and bare conditional markers from html.
func Strip(html string) string {
	spans := Spans(html)
	if len(spans) == 0 {
		return html
	}
	var b strings.Builder
	b.Grow(len(html))
	last := 0
	for _, s := range spans {
		b.WriteString(html[last:s.Start])
		last = s.End
	}
	b.WriteString(html[last:])
	return b.String()
}

// MapPosition converts an offset into Strip(html) back to the offset of the
// same byte in html. An offset that lands exactly where a removed span began
// maps past that span.
func MapPosition(html string, cleanPos int) int {
	return NewMapper(html).Map(cleanPos)
}

// Mapper converts offsets of Strip(html) back to html for many positions of
// the same document.
type Mapper struct {
	// cleanStart[k] is where span k would begin in the stripped text;
	// removed[k] is the byte count of spans before k.
	cleanStart []int
	removed    []int
}

// NewMapper scans the spans of html once.
func NewMapper(html string) Mapper {
	spans := Spans(html)
	m := Mapper{cleanStart: make([]int, len(spans)), removed: make([]int, len(spans)+1)}
	for k, s := range spans {
		m.cleanStart[k] = s.Start - m.removed[k]
		m.removed[k+1] = m.removed[k] + s.Len()
	}
	return m
}

// Map returns the html offset of cleanPos.
func (m Mapper) Map(cleanPos int) int {
	k := sort.Search(len(m.cleanStart), func(k int) bool { return m.cleanStart[k] > cleanPos })
	return cleanPos + m.removed[k]
}

// Contains reports whether pos falls inside one of spans. spans must be
// sorted, as returned by Spans and CommentSpans.
func Contains(spans []Span, pos int) bool {
	i := sort.Search(len(spans), func(i int) bool { return spans[i].End > pos })
	return i < len(spans) && spans[i].Start <= pos
}

// Overlaps reports whether [start, end) intersects any of spans.
func Overlaps(spans []Span, start, end int) bool {
	i := sort.Search(len(spans), func(i int) bool { return spans[i].End > start })
	return i < len(spans) && spans[i].Start < end
}

// FindOutside returns the index pairs of re matches in html that do not
// start inside a comment.
func FindOutside(re *regexp.Regexp, html string) [][]int {
	spans := CommentSpans(html)
	var out [][]int
	for _, m := range re.FindAllStringSubmatchIndex(html, -1) {
		if Contains(spans, m[0]) {
			continue
		}
		out = append(out, m)
	}
	return out
}
