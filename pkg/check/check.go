// Package check defines the records every repair phase produces and the
// mutable context threaded through the pipeline.
package check

import "fmt"

// Status is the outcome of a single check.
type Status string

const (
	StatusPass    Status = "PASS"
	StatusFixed   Status = "FIXED"
	StatusWarn    Status = "WARN"
	StatusFail    Status = "FAIL"
	StatusInfo    Status = "INFO"
	StatusSkipped Status = "SKIPPED"
)

// Check is one finding appended by a phase. Order is execution order.
type Check struct {
	ID      string `json:"id" yaml:"id"`
	Status  Status `json:"status" yaml:"status"`
	Message string `json:"message" yaml:"message"`
}

func (c Check) String() string {
	return fmt.Sprintf("[%s] %s: %s", c.Status, c.ID, c.Message)
}

// Confidence grades a proposed closing-tag insertion.
type Confidence string

const (
	ConfidenceHigh   Confidence = "high"
	ConfidenceMedium Confidence = "medium"
	ConfidenceLow    Confidence = "low"
)

// AutoFix is a proposed closing-tag insertion. Only applied fixes have
// already been spliced into the document; the rest wait for review.
type AutoFix struct {
	ID             string     `json:"id" yaml:"id"`
	Tag            string     `json:"tag" yaml:"tag"`
	InsertedText   string     `json:"insertedText" yaml:"insertedText"`
	InsertPosition int        `json:"insertPosition" yaml:"insertPosition"`
	Confidence     Confidence `json:"confidence" yaml:"confidence"`
	BoundaryTag    string     `json:"boundaryTag" yaml:"boundaryTag"`
	OpenTagLine    int        `json:"openTagLine" yaml:"openTagLine"`
	OpenTagSnippet string     `json:"openTagSnippet" yaml:"openTagSnippet"`
	OpenPosition   int        `json:"openPosition" yaml:"openPosition"`
	Applied        bool       `json:"applied" yaml:"applied"`
	CoveredBy      string     `json:"coveredBy,omitempty" yaml:"coveredBy,omitempty"`
}

// ProblemType classifies a TagProblem.
type ProblemType string

const ProblemExcessClosingTag ProblemType = "EXCESS_CLOSING_TAG"

// TagProblem is a closing tag with no matching opener. It is reported only.
type TagProblem struct {
	ID         string      `json:"id" yaml:"id"`
	Type       ProblemType `json:"type" yaml:"type"`
	Tag        string      `json:"tag" yaml:"tag"`
	Position   int         `json:"position" yaml:"position"`
	LineNumber int         `json:"lineNumber" yaml:"lineNumber"`
	Snippet    string      `json:"snippet" yaml:"snippet"`
	Severity   string      `json:"severity" yaml:"severity"`
}
