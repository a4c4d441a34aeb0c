package report

import (
	"fmt"
	"os"
	"time"

	"digital.vasic.specs/pkg/runner"
)

// HistoricalEntry is one run in the history log.
type HistoricalEntry struct {
	Timestamp time.Time `json:"timestamp"`
	RunID     string    `json:"run_id"`
	Target    string    `json:"target,omitempty"`
	Total     int       `json:"total"`
	Passed    int       `json:"passed"`
	Failed    int       `json:"failed"`
	Errors    int       `json:"errors"`
	Skipped   int       `json:"skipped"`
	Duration  string    `json:"duration"`
}

// AppendToHistory adds run to the JSON Lines log at historyPath.
func AppendToHistory(historyPath string, run *runner.Run) error {
	entry := HistoricalEntry{
		Timestamp: run.Started.Add(run.Duration),
		RunID:     run.ID,
		Target:    run.Target,
		Total:     run.Counts.Total,
		Passed:    run.Counts.Passed,
		Failed:    run.Counts.Failed,
		Errors:    run.Counts.Errors,
		Skipped:   run.Counts.Skipped,
		Duration:  run.Duration.String(),
	}

	data, err := jsonMarshal(entry)
	if err != nil {
		return fmt.Errorf(
			"failed to marshal history entry: %w", err,
		)
	}

	file, err := os.OpenFile(
		historyPath,
		os.O_CREATE|os.O_APPEND|os.O_WRONLY,
		0644,
	)
	if err != nil {
		return fmt.Errorf(
			"failed to open history file: %w", err,
		)
	}
	defer func() { _ = file.Close() }()

	_, err = fmt.Fprintln(file, string(data))
	return err
}
