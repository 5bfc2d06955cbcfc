package tags

import (
	"regexp"
	"strings"

	"github.com/joeblew999/plat-mailfix/pkg/check"
	"github.com/joeblew999/plat-mailfix/pkg/mask"
)

var (
	closerRun = regexp.MustCompile(`(?:</[a-zA-Z][a-zA-Z0-9]*\s*>\s*){2,}</[a-zA-Z][a-zA-Z0-9]*\s*>`)
	closer    = regexp.MustCompile(`</([a-zA-Z][a-zA-Z0-9]*)\s*>`)
)

var blockFamily = map[string]bool{
	"div": true, "span": true, "section": true,
	"article": true, "nav": true, "aside": true,
}

// mixesFamilies reports whether a run closes both table structure and
// block containers. Such runs are left alone: mobile layouts often rely on
// this kind of crossed nesting.
func mixesFamilies(names []string) bool {
	var table, block bool
	for _, n := range names {
		table = table || tableFamily[n]
		block = block || blockFamily[n]
	}
	return table && block
}

// openStack tracks the elements open at a position while walking the tags
// of a document once, front to back. Void and self-closed tags never enter
// the stack; a closer pops back to the nearest opener of its name and is
// ignored when there is none.
type openStack struct {
	tags  []mask.Tag
	next  int
	names []string
}

func newOpenStack(html string) *openStack {
	return &openStack{tags: mask.TagsOutside(html)}
}

// advance consumes the tags that end at or before pos.
func (s *openStack) advance(pos int) {
	for ; s.next < len(s.tags); s.next++ {
		t := s.tags[s.next]
		if t.End > pos {
			return
		}
		if t.SelfClosing || mask.IsVoid(t.Name) {
			continue
		}
		if t.Closing {
			s.close(t.Name)
		} else {
			s.names = append(s.names, t.Name)
		}
	}
}

func (s *openStack) close(name string) {
	for k := len(s.names) - 1; k >= 0; k-- {
		if s.names[k] == name {
			s.names = s.names[:k]
			return
		}
	}
}

// skip drops the tags that start before pos without applying them.
func (s *openStack) skip(pos int) {
	for s.next < len(s.tags) && s.tags[s.next].Start < pos {
		s.next++
	}
}

// current returns the open elements, outermost first.
func (s *openStack) current() []string { return s.names }

// Reorder returns names sorted innermost-first against stack. Names not on
// the stack keep their relative order at the end.
func Reorder(names, stack []string) []string {
	used := make([]bool, len(names))
	out := make([]string, 0, len(names))
	for k := len(stack) - 1; k >= 0 && len(out) < len(names); k-- {
		for i, n := range names {
			if !used[i] && n == stack[k] {
				used[i] = true
				out = append(out, n)
				break
			}
		}
	}
	for i, n := range names {
		if !used[i] {
			out = append(out, n)
		}
	}
	return out
}

// FixNesting reorders runs of three or more adjacent closing tags into the
// order implied by the elements open before the run. A reordered run keeps
// its length, so the tags of the document are scanned once.
func FixNesting(c *check.Context) {
	spans := mask.CommentSpans(c.Text)
	runs := closerRun.FindAllStringIndex(c.Text, -1)
	stack := newOpenStack(c.Text)
	reordered, mixed := 0, 0
	for _, r := range runs {
		if mask.Overlaps(spans, r[0], r[1]) {
			continue
		}
		stack.advance(r[0])
		run := c.Text[r[0]:r[1]]
		locs := closer.FindAllStringSubmatchIndex(run, -1)
		names := make([]string, len(locs))
		for i, l := range locs {
			names[i] = strings.ToLower(run[l[2]:l[3]])
		}
		if mixesFamilies(names) {
			mixed++
			continue
		}
		order := Reorder(names, stack.current())

		// the run's closers are applied in their final order
		stack.skip(r[1])
		for _, n := range order {
			stack.close(n)
		}
		if strings.Join(order, ",") == strings.Join(names, ",") {
			continue
		}

		// separators stay where they were and each tag keeps its own
		// spelling, so the run keeps its length
		raws := make([]string, len(locs))
		for i, l := range locs {
			raws[i] = run[l[0]:l[1]]
		}
		taken := make([]bool, len(locs))
		var b strings.Builder
		last := 0
		for i, l := range locs {
			b.WriteString(run[last:l[0]])
			for j := range names {
				if !taken[j] && names[j] == order[i] {
					taken[j] = true
					b.WriteString(raws[j])
					break
				}
			}
			last = l[1]
		}
		b.WriteString(run[last:])
		c.Replace(r[0], r[1], b.String())
		reordered++
	}

	switch {
	case reordered == 0 && mixed == 0:
		c.Pass(IDNesting, "closing tag order matches nesting")
	case reordered > 0:
		c.Fixed(IDNesting, "reordered %d closing tag run(s)", reordered)
	}
	if mixed > 0 {
		c.Info(IDNesting, "left %d closing tag run(s) mixing table and block tags untouched", mixed)
	}
}
