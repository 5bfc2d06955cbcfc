// Package pipeline runs the repair phases in order over one template and
// packages the outcome for review.
package pipeline

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/zeromicro/go-zero/core/logx"

	"github.com/joeblew999/plat-mailfix/pkg/check"
	"github.com/joeblew999/plat-mailfix/pkg/cta"
	"github.com/joeblew999/plat-mailfix/pkg/doctype"
	"github.com/joeblew999/plat-mailfix/pkg/font"
	"github.com/joeblew999/plat-mailfix/pkg/placeholder"
	"github.com/joeblew999/plat-mailfix/pkg/quality"
	"github.com/joeblew999/plat-mailfix/pkg/sanitize"
	"github.com/joeblew999/plat-mailfix/pkg/tags"
)

// ErrProcessFailed wraps a panic raised by any phase. The partial document
// is discarded.
var ErrProcessFailed = errors.New("template processing failed")

// Result is everything one run produced. It is not modified after
// Process returns.
type Result struct {
	ID              string             `json:"id" yaml:"id"`
	OriginalHTML    string             `json:"originalHtml" yaml:"originalHtml"`
	OptimizedHTML   string             `json:"optimizedHtml" yaml:"optimizedHtml"`
	Checks          []check.Check      `json:"checks" yaml:"checks"`
	AutoFixes       []check.AutoFix    `json:"autoFixes" yaml:"autoFixes"`
	TagProblems     []check.TagProblem `json:"tagProblems" yaml:"tagProblems"`
	Confidence      int                `json:"confidence" yaml:"confidence"`
	ConfidenceLevel Level              `json:"confidenceLevel" yaml:"confidenceLevel"`
	AttentionItems  []string           `json:"attentionItems" yaml:"attentionItems"`
	Elapsed         time.Duration      `json:"elapsed" yaml:"elapsed"`
}

// Count returns how many checks finished with status.
func (r *Result) Count(status check.Status) int {
	n := 0
	for _, c := range r.Checks {
		if c.Status == status {
			n++
		}
	}
	return n
}

// Phases returns every phase for opts in execution order.
func Phases(opts Options) []check.Phase {
	opts = opts.WithDefaults()

	phases := sanitize.Phases()
	phases = append(phases,
		check.Phase{Name: "doctype", Run: doctype.Normalize},
		check.Phase{Name: "html-xmlns", Run: doctype.EnforceXmlns},
		check.Phase{Name: "meta-charset", Run: doctype.EnsureCharset},
		check.Phase{Name: "title", Run: doctype.EnsureTitle(opts.TitleText)},
		font.Phase(opts.RemoveFonts),
	)
	phases = append(phases, placeholder.New(placeholder.Config{
		HeaderToken:   opts.HeaderToken,
		FooterToken:   opts.FooterToken,
		PreheaderText: opts.PreheaderText,
		Themed:        opts.Themed(),
		WrapperClass:  opts.ThemeWrapperClass,
		ThemeColor:    opts.ThemeColor,
	}).Phases()...)
	phases = append(phases,
		check.Phase{Name: "tag-balance", Run: tags.Balance},
		check.Phase{Name: "tag-nesting", Run: tags.FixNesting},
		check.Phase{Name: "cta-vml", Run: synthesizeVML},
	)
	return append(phases, quality.New(quality.Config{
		Themed:      opts.Themed(),
		FooterToken: opts.FooterToken,
		Salutation:  opts.Salutation,
	}).Phases()...)
}

func synthesizeVML(c *check.Context) {
	for _, b := range cta.Synthesize(c) {
		if b.VMLStatus == cta.VMLMissing {
			vmlSyntheses.Inc(string(b.Type))
		}
	}
}

// Process repairs html with the default scorer.
func Process(html string, opts Options) (*Result, error) {
	return ProcessWith(DefaultScorer{}, html, opts)
}

// ProcessWith repairs html and grades the outcome with scorer. A panic in
// any phase is returned as ErrProcessFailed and no Result is produced.
func ProcessWith(scorer Scorer, html string, opts Options) (res *Result, err error) {
	start := time.Now()
	c := check.NewContext(html)
	current := ""
	defer func() {
		if r := recover(); r != nil {
			processFailures.Inc(current)
			logx.Errorf("phase %s panicked: %v", current, r)
			res, err = nil, fmt.Errorf("%w: phase %s: %v", ErrProcessFailed, current, r)
		}
	}()

	for _, p := range Phases(opts) {
		current = p.Name
		before := len(c.Checks)
		phaseStart := time.Now()
		p.Run(c)
		phaseDuration.Observe(time.Since(phaseStart).Milliseconds(), p.Name)
		for _, ch := range c.Checks[before:] {
			checksTotal.Inc(string(ch.Status))
		}
		logx.Debugf("phase %s: %d check(s), %d bytes", p.Name, len(c.Checks)-before, len(c.Text))
	}
	current = "score"

	score := scorer.Score(c.Checks, c.AutoFixes, c.TagProblems)
	res = &Result{
		ID:              uuid.NewString(),
		OriginalHTML:    html,
		OptimizedHTML:   c.Text,
		Checks:          c.Checks,
		AutoFixes:       c.AutoFixes,
		TagProblems:     c.TagProblems,
		Confidence:      score.Value,
		ConfidenceLevel: score.Level,
		AttentionItems:  score.Attention,
		Elapsed:         time.Since(start),
	}
	logx.Infow("template processed",
		logx.Field("id", res.ID),
		logx.Field("checks", len(res.Checks)),
		logx.Field("fixed", res.Count(check.StatusFixed)),
		logx.Field("confidence", res.Confidence),
		logx.Field("duration", res.Elapsed.String()),
	)
	return res, nil
}

// Buttons lists the call-to-action buttons of html as it stands.
func Buttons(html string) []cta.Button {
	return cta.Extract(html)
}

// PrepareDownload runs the final CMS residue pass over html before it
// leaves the tool. It returns the cleaned text and the number of removals.
func PrepareDownload(html string) (string, int) {
	return sanitize.StripCMSArtifacts(html)
}
