package monitor

import (
	"time"

	"digital.vasic.specs/pkg/spec"
)

// EventType represents the type of run event.
type EventType string

const (
	EventPassed       EventType = "passed"
	EventFailed       EventType = "failed"
	EventError        EventType = "error"
	EventSkipped      EventType = "skipped"
	EventRunCompleted EventType = "run_completed"
)

// ExampleEvent is published for every result and once when a
// run completes.
type ExampleEvent struct {
	Type      EventType     `json:"type"`
	RunID     string        `json:"run_id,omitempty"`
	Index     int           `json:"index"`
	Label     string        `json:"label,omitempty"`
	Ancestors []string      `json:"ancestors,omitempty"`
	Messages  []string      `json:"messages,omitempty"`
	Duration  time.Duration `json:"duration,omitempty"`
	Timestamp time.Time     `json:"timestamp"`
	Counts    *spec.Counts  `json:"counts,omitempty"`
}

// eventFor converts a result into its event.
func eventFor(r *spec.Result) ExampleEvent {
	typ := EventType(r.Status)
	switch r.Status {
	case spec.StatusPassed, spec.StatusFailed,
		spec.StatusError, spec.StatusSkipped:
	default:
		typ = EventError
	}
	ts := r.EndTime
	if ts.IsZero() {
		ts = time.Now()
	}
	return ExampleEvent{
		Type:      typ,
		RunID:     r.RunID,
		Index:     r.Index,
		Label:     r.Label,
		Ancestors: r.Ancestors,
		Messages:  r.Messages,
		Duration:  r.Duration,
		Timestamp: ts,
	}
}
