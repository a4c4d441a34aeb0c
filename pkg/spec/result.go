package spec

import (
	"strings"
	"time"

	"digital.vasic.specs/pkg/matcher"
)

// Status constants for example outcomes.
const (
	StatusPassed  = "passed"
	StatusFailed  = "failed"
	StatusError   = "error"
	StatusSkipped = "skipped"
)

// Result is the outcome of one example. It is immutable once the
// runner emits it.
type Result struct {
	// RunID identifies the run that produced the result.
	RunID string `json:"run_id"`

	// Index is the example's declaration index in the tree.
	Index int `json:"index"`

	// Label is the example label.
	Label string `json:"label"`

	// Ancestors are the enclosing group labels, outermost first.
	Ancestors []string `json:"ancestors"`

	// Status is one of the Status* constants.
	Status string `json:"status"`

	// Messages explain failures, errors and skips.
	Messages []string `json:"messages,omitempty"`

	// Assertions holds every evaluated expectation.
	Assertions []matcher.Result `json:"assertions,omitempty"`

	// Location is where the example was declared.
	Location string `json:"location,omitempty"`

	StartTime time.Time     `json:"start_time"`
	EndTime   time.Time     `json:"end_time"`
	Duration  time.Duration `json:"duration"`
}

// FullLabel joins the ancestor labels and the example label.
func (r *Result) FullLabel() string {
	parts := append(append([]string{}, r.Ancestors...), r.Label)
	return strings.Join(parts, " ")
}

// Counts aggregates outcomes.
type Counts struct {
	Total   int `json:"total"`
	Passed  int `json:"passed"`
	Failed  int `json:"failed"`
	Errors  int `json:"errors"`
	Skipped int `json:"skipped"`
}

// Add counts one status.
func (c *Counts) Add(status string) {
	c.Total++
	switch status {
	case StatusPassed:
		c.Passed++
	case StatusFailed:
		c.Failed++
	case StatusError:
		c.Errors++
	case StatusSkipped:
		c.Skipped++
	}
}

// Succeeded reports whether no example failed or errored.
func (c Counts) Succeeded() bool {
	return c.Failed == 0 && c.Errors == 0
}

// Tally counts the outcomes of results.
func Tally(results []*Result) Counts {
	var c Counts
	for _, r := range results {
		c.Add(r.Status)
	}
	return c
}
