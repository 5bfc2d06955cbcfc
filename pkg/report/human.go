package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"

	"github.com/joeblew999/plat-mailfix/pkg/check"
	"github.com/joeblew999/plat-mailfix/pkg/cta"
	"github.com/joeblew999/plat-mailfix/pkg/pipeline"
)

var statusOrder = []check.Status{
	check.StatusFail, check.StatusWarn, check.StatusFixed,
	check.StatusInfo, check.StatusPass, check.StatusSkipped,
}

func statusColor(s check.Status) *color.Color {
	switch s {
	case check.StatusFail:
		return color.New(color.FgRed, color.Bold)
	case check.StatusWarn:
		return color.New(color.FgYellow)
	case check.StatusFixed:
		return color.New(color.FgGreen)
	case check.StatusInfo:
		return color.New(color.FgCyan)
	default:
		return color.New(color.FgHiBlack)
	}
}

func levelColor(l pipeline.Level) *color.Color {
	switch l {
	case pipeline.LevelHigh:
		return color.New(color.FgGreen, color.Bold)
	case pipeline.LevelMedium:
		return color.New(color.FgYellow, color.Bold)
	default:
		return color.New(color.FgRed, color.Bold)
	}
}

func writeHuman(w io.Writer, summaries []Summary, opts Options) {
	bold := color.New(color.Bold)
	failed := 0
	for _, s := range summaries {
		fmt.Fprintln(w)
		bold.Fprintf(w, "%s\n", s.File)
		if s.Error != "" {
			failed++
			statusColor(check.StatusFail).Fprintf(w, "   ERROR  %s\n", s.Error)
			continue
		}
		if s.Failed() {
			failed++
		}
		levelColor(s.ConfidenceLevel).Fprintf(w, "   confidence %d/100 (%s)\n", s.Confidence, s.ConfidenceLevel)
		fmt.Fprintf(w, "   %s\n", countsLine(s.Counts))

		for _, c := range s.Checks {
			if !opts.Verbose && (c.Status == check.StatusPass || c.Status == check.StatusSkipped) {
				continue
			}
			statusColor(c.Status).Fprintf(w, "   %-7s", c.Status)
			fmt.Fprintf(w, " %-22s %s\n", c.ID, c.Message)
		}

		if len(s.AttentionItems) > 0 {
			color.New(color.FgYellow, color.Bold).Fprintln(w, "   needs review:")
			for i, item := range s.AttentionItems {
				fmt.Fprintf(w, "   %d. %s\n", i+1, item)
			}
		}
		if s.Output != "" {
			fmt.Fprintf(w, "   written to %s\n", color.CyanString(s.Output))
		}
	}

	fmt.Fprintln(w, strings.Repeat("─", 72))
	fmt.Fprintf(w, "%d file(s), %d with failures\n", len(summaries), failed)
	if !opts.Verbose {
		fmt.Fprintln(w, color.HiBlackString("Run with -v to list passing checks, or -o json|yaml|html for a full report"))
	}
}

func countsLine(counts map[check.Status]int) string {
	var parts []string
	for _, st := range statusOrder {
		if n := counts[st]; n > 0 {
			parts = append(parts, fmt.Sprintf("%d %s", n, strings.ToLower(string(st))))
		}
	}
	if len(parts) == 0 {
		return "no checks"
	}
	return strings.Join(parts, ", ")
}

func writeHumanButtons(w io.Writer, file string, buttons []cta.Button) {
	color.New(color.Bold).Fprintf(w, "%s: %d button(s)\n", file, len(buttons))
	for _, b := range buttons {
		st := color.New(color.FgGreen)
		switch b.VMLStatus {
		case cta.VMLMismatch:
			st = color.New(color.FgRed)
		case cta.VMLMissing:
			st = color.New(color.FgYellow)
		}
		fmt.Fprintf(w, "   %-6s %-9s ", b.ID, b.Type)
		st.Fprintf(w, "%-9s", b.VMLStatus)
		fmt.Fprintf(w, " %q -> %s (%dx%d, bg %s)\n", b.Text, b.Href, b.Width, b.Height, orNone(b.BgColor))
	}
}

func orNone(s string) string {
	if s == "" {
		return "none"
	}
	return s
}
