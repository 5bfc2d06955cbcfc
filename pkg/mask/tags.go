package mask

import (
	"regexp"
	"strings"
)

// Tag is one start or end tag found by the lexical scanner.
type Tag struct {
	Name        string
	Closing     bool
	SelfClosing bool
	Start       int
	End         int
}

// Raw returns the tag's source text.
func (t Tag) Raw(text string) string { return text[t.Start:t.End] }

var tagPattern = regexp.MustCompile(`<(/?)([a-zA-Z][a-zA-Z0-9:-]*)((?:[^>"']|"[^"]*"|'[^']*')*)>`)

var voidTags = map[string]bool{
	"area": true, "base": true, "br": true, "col": true, "embed": true,
	"hr": true, "img": true, "input": true, "link": true, "meta": true,
	"param": true, "source": true, "track": true, "wbr": true,
}

// IsVoid reports whether name never takes a closing tag.
func IsVoid(name string) bool { return voidTags[strings.ToLower(name)] }

// Tags scans text for start and end tags. Names are lower-cased. Comments
// are not treated specially; callers pass masked text or use TagsOutside.
func Tags(text string) []Tag {
	matches := tagPattern.FindAllStringSubmatchIndex(text, -1)
	out := make([]Tag, 0, len(matches))
	for _, m := range matches {
		attrs := strings.TrimSpace(text[m[6]:m[7]])
		out = append(out, Tag{
			Name:        strings.ToLower(text[m[4]:m[5]]),
			Closing:     m[3] > m[2],
			SelfClosing: strings.HasSuffix(attrs, "/"),
			Start:       m[0],
			End:         m[1],
		})
	}
	return out
}

// TagsOutside scans html directly, dropping tags that sit inside a real
// comment. Offsets are offsets into html.
func TagsOutside(html string) []Tag {
	spans := CommentSpans(html)
	all := Tags(html)
	out := all[:0]
	for _, t := range all {
		if !Contains(spans, t.Start) {
			out = append(out, t)
		}
	}
	return out
}

// Closers pairs every start tag of a document with the end tag that closes
// it. Keys are start-tag offsets; values are the [start, end) of the end tag.
type Closers map[int][2]int

// IndexClosers tokenizes html once and pairs start and end tags of the same
// name with one stack per name, ignoring commented markup. Void and
// self-closed tags are never paired.
func IndexClosers(html string) Closers {
	return ClosersOf(TagsOutside(html))
}

// ClosersOf builds the index from tags already returned by TagsOutside.
func ClosersOf(tags []Tag) Closers {
	open := map[string][]int{}
	out := make(Closers)
	for _, t := range tags {
		if t.SelfClosing {
			continue
		}
		if !t.Closing {
			if !IsVoid(t.Name) {
				open[t.Name] = append(open[t.Name], t.Start)
			}
			continue
		}
		stack := open[t.Name]
		if len(stack) == 0 {
			continue
		}
		out[stack[len(stack)-1]] = [2]int{t.Start, t.End}
		open[t.Name] = stack[:len(stack)-1]
	}
	return out
}

// Match returns the [start, end) of the end tag closing the element whose
// start tag begins at openStart, or -1, -1.
func (cl Closers) Match(openStart int) (int, int) {
	if m, ok := cl[openStart]; ok {
		return m[0], m[1]
	}
	return -1, -1
}

// MatchClose finds the end tag that closes the element whose start tag
// begins at openStart, counting nesting of the same name and ignoring
// commented markup. It returns the [start, end) of that end tag, or -1, -1.
// Callers matching more than one element should build IndexClosers once.
func MatchClose(html string, openStart int) (int, int) {
	return IndexClosers(html).Match(openStart)
}
