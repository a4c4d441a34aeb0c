package report

import (
	"io"
	"time"

	"digital.vasic.specs/pkg/runner"
	"digital.vasic.specs/pkg/spec"
)

// JSONReporter renders runs as JSON documents.
type JSONReporter struct {
	pretty bool
}

// NewJSONReporter creates a JSON reporter. When pretty is true,
// output is indented for readability.
func NewJSONReporter(pretty bool) *JSONReporter {
	return &JSONReporter{pretty: pretty}
}

// jsonRun is the document written for a run.
type jsonRun struct {
	RunID       string         `json:"run_id"`
	Target      string         `json:"target,omitempty"`
	GeneratedAt time.Time      `json:"generated_at"`
	Counts      spec.Counts    `json:"counts"`
	Duration    time.Duration  `json:"duration"`
	Summary     *Summary       `json:"summary"`
	Results     []*spec.Result `json:"results"`
}

// Generate marshals run, results in declaration order.
func (r *JSONReporter) Generate(run *runner.Run) ([]byte, error) {
	doc := jsonRun{
		RunID:       run.ID,
		Target:      run.Target,
		GeneratedAt: time.Now(),
		Counts:      run.Counts,
		Duration:    run.Duration,
		Summary:     SummarizeRun(run),
		Results:     ordered(run.Results),
	}
	if r.pretty {
		return jsonMarshalIndent(doc, "", "  ")
	}
	return jsonMarshal(doc)
}

// Report writes the JSON document for run.
func (r *JSONReporter) Report(w io.Writer, run *runner.Run) error {
	data, err := r.Generate(run)
	if err != nil {
		return err
	}
	_, err = w.Write(append(data, '\n'))
	return err
}
