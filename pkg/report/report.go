// Package report renders repair results for people and for tools.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/joeblew999/plat-mailfix/pkg/check"
	"github.com/joeblew999/plat-mailfix/pkg/cta"
	"github.com/joeblew999/plat-mailfix/pkg/pipeline"
)

// Format selects an output encoding.
type Format string

const (
	FormatHuman Format = "human"
	FormatJSON  Format = "json"
	FormatYAML  Format = "yaml"
	FormatHTML  Format = "html"
)

// Formats lists every supported format.
var Formats = []Format{FormatHuman, FormatJSON, FormatYAML, FormatHTML}

// ParseFormat accepts a format name case-insensitively. An empty name
// selects human output.
func ParseFormat(s string) (Format, error) {
	f := Format(strings.ToLower(strings.TrimSpace(s)))
	if f == "" {
		return FormatHuman, nil
	}
	for _, known := range Formats {
		if f == known {
			return f, nil
		}
	}
	return "", fmt.Errorf("unknown output format %q", s)
}

// Summary is the reviewable part of one run, without the document text.
type Summary struct {
	File            string               `json:"file" yaml:"file"`
	ID              string               `json:"id,omitempty" yaml:"id,omitempty"`
	Error           string               `json:"error,omitempty" yaml:"error,omitempty"`
	Output          string               `json:"output,omitempty" yaml:"output,omitempty"`
	Confidence      int                  `json:"confidence" yaml:"confidence"`
	ConfidenceLevel pipeline.Level       `json:"confidenceLevel,omitempty" yaml:"confidenceLevel,omitempty"`
	Counts          map[check.Status]int `json:"counts,omitempty" yaml:"counts,omitempty"`
	Checks          []check.Check        `json:"checks,omitempty" yaml:"checks,omitempty"`
	AutoFixes       []check.AutoFix      `json:"autoFixes,omitempty" yaml:"autoFixes,omitempty"`
	TagProblems     []check.TagProblem   `json:"tagProblems,omitempty" yaml:"tagProblems,omitempty"`
	AttentionItems  []string             `json:"attentionItems,omitempty" yaml:"attentionItems,omitempty"`
}

// Summarize builds the summary for file from a run outcome.
func Summarize(file string, res *pipeline.Result, err error) Summary {
	s := Summary{File: file}
	if err != nil {
		s.Error = err.Error()
		return s
	}
	s.ID = res.ID
	s.Confidence = res.Confidence
	s.ConfidenceLevel = res.ConfidenceLevel
	s.Checks = res.Checks
	s.AutoFixes = res.AutoFixes
	s.TagProblems = res.TagProblems
	s.AttentionItems = res.AttentionItems
	s.Counts = map[check.Status]int{}
	for _, c := range res.Checks {
		s.Counts[c.Status]++
	}
	return s
}

// Failed reports whether the run errored or recorded a FAIL check.
func (s Summary) Failed() bool {
	return s.Error != "" || s.Counts[check.StatusFail] > 0
}

// Options tunes rendering.
type Options struct {
	// Verbose includes passing and skipped checks in human output.
	Verbose bool
}

// Write renders summaries to w.
func Write(w io.Writer, format Format, summaries []Summary, opts Options) error {
	switch format {
	case FormatJSON:
		return writeJSON(w, summaries)
	case FormatYAML:
		return writeYAML(w, summaries)
	case FormatHTML:
		return writeHTML(w, summaries)
	case FormatHuman, "":
		writeHuman(w, summaries, opts)
		return nil
	}
	return fmt.Errorf("unknown output format %q", format)
}

// WriteButtons renders detected buttons to w. HTML output is not
// offered for buttons and falls back to human output.
func WriteButtons(w io.Writer, format Format, file string, buttons []cta.Button) error {
	doc := struct {
		File    string       `json:"file" yaml:"file"`
		Buttons []cta.Button `json:"buttons" yaml:"buttons"`
	}{file, buttons}

	switch format {
	case FormatJSON:
		return writeJSON(w, doc)
	case FormatYAML:
		return writeYAML(w, doc)
	}
	writeHumanButtons(w, file, buttons)
	return nil
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func writeYAML(w io.Writer, v any) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return err
	}
	return enc.Close()
}
