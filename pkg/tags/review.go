package tags

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/joeblew999/plat-mailfix/pkg/check"
)

var (
	ErrAlreadyApplied = errors.New("fix is already applied")
	ErrNotApplied     = errors.New("fix is not applied")
	ErrOutOfRange     = errors.New("position is outside the document")
	ErrStale          = errors.New("document changed since the finding was recorded")
)

// ApplyFix splices a proposed closer into html at its recorded position.
// The returned fix is marked applied.
func ApplyFix(html string, fix check.AutoFix) (string, check.AutoFix, error) {
	if fix.Applied {
		return html, fix, ErrAlreadyApplied
	}
	if fix.InsertPosition < 0 || fix.InsertPosition > len(html) {
		return html, fix, fmt.Errorf("%s at %d: %w", fix.ID, fix.InsertPosition, ErrOutOfRange)
	}
	p := fix.InsertPosition
	fix.Applied = true
	return html[:p] + fix.InsertedText + html[p:], fix, nil
}

// RevertFix removes the text an applied fix inserted. It refuses when the
// inserted text is no longer at the recorded position.
func RevertFix(html string, fix check.AutoFix) (string, check.AutoFix, error) {
	if !fix.Applied {
		return html, fix, ErrNotApplied
	}
	p, end := fix.InsertPosition, fix.InsertPosition+len(fix.InsertedText)
	if p < 0 || end > len(html) {
		return html, fix, fmt.Errorf("%s at %d: %w", fix.ID, p, ErrOutOfRange)
	}
	if html[p:end] != fix.InsertedText {
		return html, fix, fmt.Errorf("%s: expected %q at %d: %w", fix.ID, fix.InsertedText, p, ErrStale)
	}
	fix.Applied = false
	return html[:p] + html[end:], fix, nil
}

// RemoveExcessCloser deletes the orphan closing tag a TagProblem points at.
func RemoveExcessCloser(html string, problem check.TagProblem) (string, error) {
	p := problem.Position
	if p < 0 || p >= len(html) {
		return html, fmt.Errorf("%s at %d: %w", problem.ID, p, ErrOutOfRange)
	}
	re := regexp.MustCompile(`(?i)^</` + regexp.QuoteMeta(problem.Tag) + `\s*>`)
	loc := re.FindStringIndex(html[p:])
	if loc == nil {
		got := html[p:min(len(html), p+len(problem.Tag)+3)]
		return html, fmt.Errorf("%s: expected </%s> at %d, found %q: %w",
			problem.ID, problem.Tag, p, strings.TrimSpace(got), ErrStale)
	}
	return html[:p] + html[p+loc[1]:], nil
}
