package pipeline

import (
	"fmt"
	"strings"

	"github.com/joeblew999/plat-mailfix/pkg/check"
	"github.com/joeblew999/plat-mailfix/pkg/cta"
	"github.com/joeblew999/plat-mailfix/pkg/quality"
	"github.com/joeblew999/plat-mailfix/pkg/sanitize"
	"github.com/joeblew999/plat-mailfix/pkg/tags"
)

// Level buckets a confidence score.
type Level string

const (
	LevelHigh   Level = "high"
	LevelMedium Level = "medium"
	LevelLow    Level = "low"
)

// Score tells a reviewer how much of the output to double-check.
type Score struct {
	Value     int
	Level     Level
	Attention []string
}

// Scorer grades a finished run. It is a review aid, never a gate.
type Scorer interface {
	Score(checks []check.Check, fixes []check.AutoFix, problems []check.TagProblem) Score
}

// Deductions applied by DefaultScorer.
const (
	failPenalty           = 20
	deliverabilityPenalty = 8
	cosmeticPenalty       = 2
	structuralFixPenalty  = 3
	pendingFixPenalty     = 4
	tagProblemPenalty     = 4
)

// deliverability lists the warnings that affect whether a message arrives
// or works, rather than how it looks.
var deliverability = map[string]bool{
	sanitize.IDHrefWhitespace: true,
	sanitize.IDHrefNewline:    true,
	sanitize.IDDupCharset:     true,
	tags.IDExcessClosers:      true,
	cta.IDButtons:             true,
	quality.IDTemplateSize:    true,
	quality.IDTextImageRatio:  true,
	quality.IDEmptyHref:       true,
	quality.IDBrokenLinks:     true,
	quality.IDInsecureURLs:    true,
	quality.IDScript:          true,
	quality.IDForms:           true,
	quality.IDUnsubscribe:     true,
	quality.IDMailto:          true,
	quality.IDExternalCSS:     true,
	quality.IDBase64Images:    true,
	quality.IDMSOConditionals: true,
	quality.IDMergeFields:     true,
}

// structural lists fixes that changed document structure rather than
// normalizing text, so a reviewer should look at them.
var structural = map[string]bool{
	sanitize.IDHrefNewline:  true,
	sanitize.IDDupStructure: true,
	sanitize.IDDupCharset:   true,
	sanitize.IDMojibake:     true,
	sanitize.IDSelfClosing:  true,
	tags.IDNesting:          true,
	cta.IDVML:               true,
}

// reviewFixed lists fixes that repaired a defect the original template
// shipped with, so a reviewer hears about them even though they are fixed.
var reviewFixed = map[string]bool{
	sanitize.IDHrefNewline: true,
}

// DefaultScorer starts at 100 and deducts per failure, warning, structural
// fix and finding left for manual review.
type DefaultScorer struct{}

func (DefaultScorer) Score(checks []check.Check, fixes []check.AutoFix, problems []check.TagProblem) Score {
	value := 100
	var attention []string
	for _, c := range checks {
		switch c.Status {
		case check.StatusFail:
			value -= failPenalty
			attention = append(attention, fmt.Sprintf("%s: %s", c.ID, c.Message))
		case check.StatusWarn:
			if deliverability[c.ID] {
				value -= deliverabilityPenalty
				attention = append(attention, fmt.Sprintf("%s: %s", c.ID, c.Message))
			} else {
				value -= cosmeticPenalty
			}
		case check.StatusFixed:
			if structural[c.ID] || strings.HasPrefix(c.ID, tags.IDBalancePrefix) {
				value -= structuralFixPenalty
			}
			if reviewFixed[c.ID] {
				attention = append(attention, fmt.Sprintf("%s: %s", c.ID, c.Message))
			}
		}
	}
	for _, f := range fixes {
		if f.Applied || f.CoveredBy != "" {
			continue
		}
		value -= pendingFixPenalty
		attention = append(attention, fmt.Sprintf("%s: review proposed %s (%s confidence) for <%s> on line %d",
			f.ID, f.InsertedText, f.Confidence, f.Tag, f.OpenTagLine))
	}
	for _, p := range problems {
		value -= tagProblemPenalty
		attention = append(attention, fmt.Sprintf("%s: unmatched </%s> on line %d", p.ID, p.Tag, p.LineNumber))
	}

	value = max(0, min(100, value))
	return Score{Value: value, Level: LevelFor(value), Attention: attention}
}

// LevelFor buckets a score.
func LevelFor(value int) Level {
	switch {
	case value >= 80:
		return LevelHigh
	case value >= 50:
		return LevelMedium
	}
	return LevelLow
}
