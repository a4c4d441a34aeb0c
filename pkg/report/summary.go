package report

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"digital.vasic.specs/pkg/runner"
	"digital.vasic.specs/pkg/spec"
)

// Summary aggregates the results of a run.
type Summary struct {
	RunID       string        `json:"run_id,omitempty"`
	Target      string        `json:"target,omitempty"`
	GeneratedAt time.Time     `json:"generated_at"`
	Counts      spec.Counts   `json:"counts"`
	Duration    time.Duration `json:"duration"`
	PassRate    float64       `json:"pass_rate"`
	Failures    []Failure     `json:"failures,omitempty"`
	Pending     []Skip        `json:"pending,omitempty"`
	Skipped     []Skip        `json:"skipped,omitempty"`
	Assertions  int           `json:"assertions"`
}

// Failure is a failed or errored example.
type Failure struct {
	Label    string   `json:"label"`
	Status   string   `json:"status"`
	Location string   `json:"location,omitempty"`
	Messages []string `json:"messages"`
}

// Skip is an example that did not run.
type Skip struct {
	Label  string `json:"label"`
	Reason string `json:"reason"`
}

// BuildSummary aggregates results in declaration order. Duration
// is the sum of example durations; the pass rate is computed over
// examples that ran.
func BuildSummary(results []*spec.Result) *Summary {
	s := &Summary{GeneratedAt: time.Now()}

	for _, r := range ordered(results) {
		s.Counts.Add(r.Status)
		s.Duration += r.Duration
		s.Assertions += len(r.Assertions)

		switch r.Status {
		case spec.StatusFailed, spec.StatusError:
			s.Failures = append(s.Failures, Failure{
				Label:    r.FullLabel(),
				Status:   r.Status,
				Location: r.Location,
				Messages: r.Messages,
			})
		case spec.StatusSkipped:
			skip := Skip{Label: r.FullLabel()}
			if len(r.Messages) > 0 {
				skip.Reason = r.Messages[0]
			}
			if strings.HasPrefix(skip.Reason, "pending: ") {
				skip.Reason = strings.TrimPrefix(skip.Reason, "pending: ")
				s.Pending = append(s.Pending, skip)
			} else {
				s.Skipped = append(s.Skipped, skip)
			}
		}
	}

	if ran := s.Counts.Total - s.Counts.Skipped; ran > 0 {
		s.PassRate = float64(s.Counts.Passed) / float64(ran)
	}
	return s
}

// SummarizeRun builds the summary of run, using its wall-clock
// duration.
func SummarizeRun(run *runner.Run) *Summary {
	s := BuildSummary(run.Results)
	s.RunID = run.ID
	s.Target = run.Target
	s.Duration = run.Duration
	return s
}

// SaveSummary writes the summary as JSON and Markdown into
// outputDir and points latest_summary.{json,md} at them.
func SaveSummary(summary *Summary, outputDir string) error {
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return fmt.Errorf(
			"failed to create output directory: %w", err,
		)
	}

	ts := summary.GeneratedAt.Format("20060102_150405")

	jsonPath := filepath.Join(
		outputDir, fmt.Sprintf("summary_%s.json", ts),
	)
	jsonData, err := jsonMarshalIndent(summary, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal summary: %w", err)
	}
	if err := os.WriteFile(jsonPath, jsonData, 0644); err != nil {
		return fmt.Errorf(
			"failed to write JSON summary: %w", err,
		)
	}

	mdPath := filepath.Join(
		outputDir, fmt.Sprintf("summary_%s.md", ts),
	)
	if err := os.WriteFile(
		mdPath, []byte(MarkdownSummary(summary)), 0644,
	); err != nil {
		return fmt.Errorf(
			"failed to write Markdown summary: %w", err,
		)
	}

	latestJSON := filepath.Join(outputDir, "latest_summary.json")
	latestMD := filepath.Join(outputDir, "latest_summary.md")

	_ = os.Remove(latestJSON)
	_ = os.Remove(latestMD)
	_ = os.Symlink(filepath.Base(jsonPath), latestJSON)
	_ = os.Symlink(filepath.Base(mdPath), latestMD)

	return nil
}
