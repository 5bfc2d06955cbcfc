// Package tags repairs tag balance and closing order over comment-masked
// text. Balance decisions always count tags with comments removed, so a
// closer inside an Outlook conditional block never satisfies an opener
// outside it.
package tags

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/joeblew999/plat-mailfix/pkg/check"
	"github.com/joeblew999/plat-mailfix/pkg/mask"
)

const (
	IDBalancePrefix = "B01_BALANCE_"
	IDExcessClosers = "B02_EXCESS_CLOSERS"
	IDNesting       = "B03_NESTING"
)

// EndOfDocument is the BoundaryTag of a fix that falls back to the end of
// the text.
const EndOfDocument = "end of document"

// Family is one monitored tag and the tags that bound its content.
type Family struct {
	Tag        string
	Boundaries []string
	// EndIsBoundary makes the end of the document an acceptable boundary.
	EndIsBoundary bool
}

// Families are checked in this order.
var Families = []Family{
	{Tag: "table", Boundaries: []string{"</body>", "</html>"}, EndIsBoundary: true},
	{Tag: "tr", Boundaries: []string{"</tbody>", "</thead>", "</tfoot>", "</table>", "<tr"}},
	{Tag: "td", Boundaries: []string{"</tr>", "<td", "<th", "</table>"}},
	{Tag: "a", Boundaries: []string{"</td>", "</tr>", "</table>", "</div>", "</body>"}},
	{Tag: "div", Boundaries: []string{"</td>", "</table>", "</body>"}},
}

var tableFamily = map[string]bool{
	"table": true, "tr": true, "td": true, "th": true,
	"thead": true, "tbody": true, "tfoot": true,
}

// IsTableFamily reports whether name is a table structure tag.
func IsTableFamily(name string) bool { return tableFamily[name] }

// autoApplied reports whether a fix is safe to splice in without review.
func autoApplied(f check.AutoFix) bool {
	return f.Confidence == check.ConfidenceHigh && f.Tag == "table"
}

var boundaryCache = map[string]*regexp.Regexp{}

func init() {
	for _, f := range Families {
		for _, b := range f.Boundaries {
			boundaryCache[b] = boundaryPattern(b)
		}
	}
}

func boundaryPattern(b string) *regexp.Regexp {
	if name, ok := strings.CutPrefix(b, "</"); ok {
		return regexp.MustCompile(`(?i)</` + regexp.QuoteMeta(strings.TrimSuffix(name, ">")) + `\s*>`)
	}
	return regexp.MustCompile(`(?i)<` + regexp.QuoteMeta(strings.TrimPrefix(b, "<")) + `\b`)
}

// Count returns the opening and closing tags named tag in html with
// comments masked out. Self-closed tags count as neither.
func Count(html, tag string) (open, closed int) {
	return countTags(mask.Tags(mask.Strip(html)), tag)
}

func countTags(tags []mask.Tag, name string) (open, closed int) {
	for _, t := range tags {
		if t.Name != name || t.SelfClosing {
			continue
		}
		if t.Closing {
			closed++
		} else {
			open++
		}
	}
	return open, closed
}

// scan runs the open/close stack over tags of the masked text for one
// name. It returns the openers left on the stack and the closers that
// found it empty.
func scan(tags []mask.Tag, name string) (unclosed, orphans []mask.Tag) {
	for _, t := range tags {
		if t.Name != name || t.SelfClosing {
			continue
		}
		if !t.Closing {
			unclosed = append(unclosed, t)
			continue
		}
		if len(unclosed) == 0 {
			orphans = append(orphans, t)
			continue
		}
		unclosed = unclosed[:len(unclosed)-1]
	}
	return unclosed, orphans
}

// series counts the start and end tags of one name over ranges of a
// document. Offsets are offsets of the unmasked text.
type series struct {
	starts []int
	opens  []int // opens[k] counts start tags among the first k entries
	closes []int
}

func newSeries(tags []mask.Tag, name string) series {
	s := series{opens: []int{0}, closes: []int{0}}
	for _, t := range tags {
		if t.Name != name || t.SelfClosing {
			continue
		}
		o, c := s.opens[len(s.starts)], s.closes[len(s.starts)]
		if t.Closing {
			c++
		} else {
			o++
		}
		s.starts = append(s.starts, t.Start)
		s.opens = append(s.opens, o)
		s.closes = append(s.closes, c)
	}
	return s
}

// count returns the tags starting in [from, to).
func (s series) count(from, to int) (open, closed int) {
	i := sort.SearchInts(s.starts, from)
	j := sort.SearchInts(s.starts, max(from, to))
	return s.opens[j] - s.opens[i], s.closes[j] - s.closes[i]
}

type boundaryHit struct {
	pos int
	tag string
}

// document indexes one version of the text for balance analysis, so that
// every proposed fix is resolved without rescanning the whole text.
type document struct {
	html      string
	cleanTags []mask.Tag
	mapper    mask.Mapper
	lines     check.Lines
	outside   []mask.Tag
	comments  []mask.Span
	series    map[string]series
}

func index(html string) *document {
	d := &document{
		html:      html,
		cleanTags: mask.Tags(mask.Strip(html)),
		mapper:    mask.NewMapper(html),
		lines:     check.NewLines(html),
		outside:   mask.TagsOutside(html),
		comments:  mask.CommentSpans(html),
		series:    map[string]series{},
	}
	return d
}

func (d *document) seriesOf(name string) series {
	s, ok := d.series[name]
	if !ok {
		s = newSeries(d.outside, name)
		d.series[name] = s
	}
	return s
}

// boundaries returns every boundary of fam outside comments, by position.
// At equal positions the earlier boundary of fam.Boundaries wins.
func (d *document) boundaries(fam Family) []boundaryHit {
	var hits []boundaryHit
	for _, b := range fam.Boundaries {
		for _, loc := range boundaryCache[b].FindAllStringIndex(d.html, -1) {
			if !mask.Contains(d.comments, loc[0]) {
				hits = append(hits, boundaryHit{pos: loc[0], tag: b})
			}
		}
	}
	sort.SliceStable(hits, func(i, j int) bool { return hits[i].pos < hits[j].pos })
	return hits
}

// findBoundary returns the nearest boundary at or after from. Outside the
// table family, a boundary inside a table opened after from belongs to
// that nested table and is skipped.
func (d *document) findBoundary(hits []boundaryHit, from int, fam Family) (boundaryHit, bool) {
	tables := d.seriesOf("table")
	i := sort.Search(len(hits), func(i int) bool { return hits[i].pos >= from })
	for ; i < len(hits); i++ {
		if fam.Tag != "table" {
			if o, c := tables.count(from, hits[i].pos); o > c {
				continue
			}
		}
		return hits[i], true
	}
	return boundaryHit{}, false
}

// Balance proposes a closer for every missing one in the monitored
// families, applies the safe ones and reports orphan closers.
func Balance(c *check.Context) {
	d := index(c.Text)
	var fixes []check.AutoFix
	var summaries []familySummary
	for _, fam := range Families {
		fs, proposed := d.analyse(fam, len(c.AutoFixes)+len(fixes))
		fixes = append(fixes, proposed...)
		summaries = append(summaries, fs)
	}

	text, fixes := apply(c.Text, fixes)
	c.Text, fixes = settleTables(text, fixes)
	c.AutoFixes = append(c.AutoFixes, fixes...)

	for _, fs := range summaries {
		fs.report(c, fixes)
	}
	reportExcess(c)
}

// settleTables re-analyses the tables still open after a round of applied
// fixes. An outer table only has a clean region once the tables nested in
// it are closed, so each round can promote the next one out.
func settleTables(html string, fixes []check.AutoFix) (string, []check.AutoFix) {
	table := Families[0]
	for {
		d := index(html)
		if open, closed := countTags(d.cleanTags, table.Tag); open <= closed {
			return html, fixes
		}
		_, fresh := d.analyse(table, 0)
		byOpen := make(map[int]check.AutoFix, len(fresh))
		for _, f := range fresh {
			byOpen[f.OpenPosition] = f
		}
		ready := false
		for i := range fixes {
			f := &fixes[i]
			if f.Tag != table.Tag || f.Applied || f.CoveredBy != "" {
				continue
			}
			nf, ok := byOpen[f.OpenPosition]
			if !ok {
				continue
			}
			f.InsertPosition, f.BoundaryTag, f.Confidence = nf.InsertPosition, nf.BoundaryTag, nf.Confidence
			ready = ready || autoApplied(*f)
		}
		if !ready {
			return html, fixes
		}
		html, fixes = apply(html, fixes)
	}
}

type familySummary struct {
	tag          string
	open, closed int
	fixIDs       []string
}

func (d *document) analyse(fam Family, idBase int) (familySummary, []check.AutoFix) {
	fs := familySummary{tag: fam.Tag}
	fs.open, fs.closed = countTags(d.cleanTags, fam.Tag)
	diff := fs.open - fs.closed
	if diff <= 0 {
		return fs, nil
	}

	html := d.html
	unclosed, _ := scan(d.cleanTags, fam.Tag)
	hits := d.boundaries(fam)
	own := d.seriesOf(fam.Tag)
	var fixes []check.AutoFix
	for k := 0; k < diff && k < len(unclosed); k++ {
		t := unclosed[len(unclosed)-1-k]
		openStart := d.mapper.Map(t.Start)
		openEnd := d.mapper.Map(t.End-1) + 1

		fix := check.AutoFix{
			ID:             fmt.Sprintf("fix-%d", idBase+len(fixes)+1),
			Tag:            fam.Tag,
			InsertedText:   "</" + fam.Tag + ">",
			OpenPosition:   openStart,
			OpenTagLine:    d.lines.At(openStart),
			OpenTagSnippet: snippet(html[openStart:openEnd]),
		}
		hit, found := d.findBoundary(hits, openEnd, fam)
		switch {
		case found:
			fix.InsertPosition, fix.BoundaryTag = hit.pos, hit.tag
		case fam.EndIsBoundary:
			fix.InsertPosition, fix.BoundaryTag = len(html), EndOfDocument
			found = true
		default:
			fix.InsertPosition, fix.BoundaryTag = len(html), EndOfDocument
		}
		fix.Confidence = check.ConfidenceLow
		if found {
			fix.Confidence = check.ConfidenceMedium
			if o, cl := own.count(openEnd, fix.InsertPosition); o == cl {
				fix.Confidence = check.ConfidenceHigh
			}
		}
		fixes = append(fixes, fix)
		fs.fixIDs = append(fs.fixIDs, fix.ID)
	}
	return fs, fixes
}

func snippet(s string) string {
	s = strings.Join(strings.Fields(s), " ")
	if len(s) > 120 {
		return s[:117] + "..."
	}
	return s
}

// apply splices the auto-applied fixes not yet applied into html, last
// position first. A table fix also closes the table-family elements still
// open inside it; fixes proposed for those elements are marked as covered.
// Every recorded position is re-projected onto the returned text.
func apply(html string, fixes []check.AutoFix) (string, []check.AutoFix) {
	var eligible []int
	for i, f := range fixes {
		if autoApplied(f) && !f.Applied {
			eligible = append(eligible, i)
		}
	}
	if len(eligible) == 0 {
		return html, fixes
	}
	sort.Slice(eligible, func(a, b int) bool {
		return fixes[eligible[a]].OpenPosition < fixes[eligible[b]].OpenPosition
	})

	byOpen := make(map[int]int, len(fixes))
	for i, f := range fixes {
		byOpen[f.OpenPosition] = i
	}

	outside := mask.TagsOutside(html)
	var chosen []int
	for _, i := range eligible {
		if fixes[i].CoveredBy != "" {
			continue
		}
		stack := openTableElements(outside, fixes[i].OpenPosition, fixes[i].InsertPosition)
		var b strings.Builder
		for k := len(stack) - 1; k >= 0; k-- {
			b.WriteString("</" + stack[k].Name + ">")
			if k == 0 {
				continue
			}
			if j, ok := byOpen[stack[k].Start]; ok && j != i && !fixes[j].Applied {
				fixes[j].CoveredBy = fixes[i].ID
			}
		}
		if b.Len() > 0 {
			fixes[i].InsertedText = b.String()
		}
		chosen = append(chosen, i)
	}

	sort.SliceStable(chosen, func(a, b int) bool {
		return fixes[chosen[a]].InsertPosition > fixes[chosen[b]].InsertPosition
	})
	for _, i := range chosen {
		f := &fixes[i]
		p, text := f.InsertPosition, f.InsertedText
		html = html[:p] + text + html[p:]
		f.Applied = true
		for j := range fixes {
			if j == i {
				continue
			}
			if fixes[j].InsertPosition >= p {
				fixes[j].InsertPosition += len(text)
			}
			if fixes[j].OpenPosition >= p {
				fixes[j].OpenPosition += len(text)
			}
		}
	}
	lines := check.NewLines(html)
	for i := range fixes {
		fixes[i].OpenTagLine = lines.At(fixes[i].OpenPosition)
	}
	return html, fixes
}

// openTableElements returns the table-family elements opened at or after
// from and still open at to, outermost first. tags must come from
// mask.TagsOutside.
func openTableElements(tags []mask.Tag, from, to int) []mask.Tag {
	var stack []mask.Tag
	i := sort.Search(len(tags), func(i int) bool { return tags[i].Start >= from })
	for _, t := range tags[i:] {
		if !tableFamily[t.Name] || t.SelfClosing {
			continue
		}
		if t.End > to {
			break
		}
		if !t.Closing {
			stack = append(stack, t)
			continue
		}
		for k := len(stack) - 1; k >= 0; k-- {
			if stack[k].Name == t.Name {
				stack = stack[:k]
				break
			}
		}
	}
	return stack
}

func (fs familySummary) report(c *check.Context, fixes []check.AutoFix) {
	id := IDBalancePrefix + strings.ToUpper(fs.tag)
	switch {
	case fs.open == fs.closed:
		c.Pass(id, "<%s> balanced (%d open, %d closed)", fs.tag, fs.open, fs.closed)
		return
	case fs.closed > fs.open:
		c.Warn(id, "<%s> has %d more closing than opening tags", fs.tag, fs.closed-fs.open)
		return
	}

	var applied, covered, pending []string
	for _, f := range fixes {
		if !containsID(fs.fixIDs, f.ID) {
			continue
		}
		switch {
		case f.Applied:
			applied = append(applied, fmt.Sprintf("%s %s before %s", f.ID, f.InsertedText, f.BoundaryTag))
		case f.CoveredBy != "":
			covered = append(covered, fmt.Sprintf("%s by %s", f.ID, f.CoveredBy))
		default:
			pending = append(pending, fmt.Sprintf("%s (%s, before %s)", f.ID, f.Confidence, f.BoundaryTag))
		}
	}
	missing := fs.open - fs.closed
	switch {
	case len(pending) > 0:
		c.Warn(id, "%d unclosed <%s>; review proposed fixes: %s", missing, fs.tag, strings.Join(pending, ", "))
	case len(applied) > 0:
		c.Fixed(id, "closed %d unclosed <%s>: %s", missing, fs.tag, strings.Join(applied, ", "))
	default:
		c.Info(id, "%d unclosed <%s> closed by table repair: %s", missing, fs.tag, strings.Join(covered, ", "))
	}
}

func containsID(ids []string, id string) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}

// reportExcess records every orphan closer of a family that has more
// closing than opening tags. Orphans are never removed here.
func reportExcess(c *check.Context) {
	d := index(c.Text)
	total := 0
	for _, fam := range Families {
		open, closed := countTags(d.cleanTags, fam.Tag)
		if closed <= open {
			continue
		}
		_, orphans := scan(d.cleanTags, fam.Tag)
		for _, t := range orphans {
			pos := d.mapper.Map(t.Start)
			severity := "medium"
			if tableFamily[fam.Tag] {
				severity = "high"
			}
			c.TagProblems = append(c.TagProblems, check.TagProblem{
				ID:         c.NextProblemID(),
				Type:       check.ProblemExcessClosingTag,
				Tag:        fam.Tag,
				Position:   pos,
				LineNumber: d.lines.At(pos),
				Snippet:    check.Snippet(c.Text, pos, 40),
				Severity:   severity,
			})
			total++
		}
	}
	if total == 0 {
		c.Pass(IDExcessClosers, "no orphan closing tags")
		return
	}
	c.Warn(IDExcessClosers, "%d closing tag(s) without an opener; review and remove manually", total)
}
