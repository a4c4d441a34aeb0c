package monitor

import (
	"sort"
	"sync"
	"time"
)

// Run states shown on the dashboard.
const (
	RunRunning   = "running"
	RunCompleted = "completed"
	RunFailed    = "failed"
)

// DashboardData keeps the live state of a run.
type DashboardData struct {
	mu        sync.RWMutex
	runID     string
	startTime time.Time
	status    string
	examples  map[int]ExampleState
}

// ExampleState is the dashboard row of one example.
type ExampleState struct {
	Index    int           `json:"index"`
	Label    string        `json:"label"`
	Group    []string      `json:"group,omitempty"`
	Status   string        `json:"status"`
	Duration time.Duration `json:"duration,omitempty"`
	Message  string        `json:"message,omitempty"`
}

// DashboardSummary holds aggregate stats for the dashboard.
type DashboardSummary struct {
	Total    int     `json:"total"`
	Passed   int     `json:"passed"`
	Failed   int     `json:"failed"`
	Errors   int     `json:"errors"`
	Skipped  int     `json:"skipped"`
	PassRate float64 `json:"pass_rate"`
	Elapsed  string  `json:"elapsed"`
}

// DashboardSnapshot is a point-in-time copy of DashboardData.
type DashboardSnapshot struct {
	RunID     string           `json:"run_id"`
	StartTime time.Time        `json:"start_time"`
	Status    string           `json:"status"`
	Examples  []ExampleState   `json:"examples"`
	Summary   DashboardSummary `json:"summary"`
}

// NewDashboardData creates a new dashboard data instance.
func NewDashboardData(runID string) *DashboardData {
	return &DashboardData{
		runID:     runID,
		startTime: time.Now(),
		status:    RunRunning,
		examples:  make(map[int]ExampleState),
	}
}

// UpdateFromEvent updates dashboard state from an event.
func (d *DashboardData) UpdateFromEvent(event ExampleEvent) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if event.RunID != "" {
		d.runID = event.RunID
	}

	if event.Type == EventRunCompleted {
		d.status = RunCompleted
		if event.Counts != nil && !event.Counts.Succeeded() {
			d.status = RunFailed
		}
		return
	}

	state := ExampleState{
		Index:    event.Index,
		Label:    event.Label,
		Group:    event.Ancestors,
		Status:   string(event.Type),
		Duration: event.Duration,
	}
	if len(event.Messages) > 0 {
		state.Message = event.Messages[0]
	}
	d.examples[event.Index] = state
}

// Snapshot returns a copy of the current dashboard state with
// examples in declaration order.
func (d *DashboardData) Snapshot() DashboardSnapshot {
	d.mu.RLock()
	defer d.mu.RUnlock()

	snap := DashboardSnapshot{
		RunID:     d.runID,
		StartTime: d.startTime,
		Status:    d.status,
		Examples:  make([]ExampleState, 0, len(d.examples)),
	}
	for _, ex := range d.examples {
		snap.Examples = append(snap.Examples, ex)
	}
	sort.Slice(snap.Examples, func(i, j int) bool {
		return snap.Examples[i].Index < snap.Examples[j].Index
	})

	s := &snap.Summary
	for _, ex := range snap.Examples {
		s.Total++
		switch EventType(ex.Status) {
		case EventPassed:
			s.Passed++
		case EventFailed:
			s.Failed++
		case EventError:
			s.Errors++
		case EventSkipped:
			s.Skipped++
		}
	}
	if ran := s.Passed + s.Failed + s.Errors; ran > 0 {
		s.PassRate = float64(s.Passed) / float64(ran) * 100
	}
	s.Elapsed = time.Since(d.startTime).Round(time.Millisecond).String()
	return snap
}

// SetStatus sets the overall run status.
func (d *DashboardData) SetStatus(status string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.status = status
}

// BuildDashboardData creates a DashboardData by replaying all
// events of collector.
func BuildDashboardData(collector *EventCollector) *DashboardData {
	data := NewDashboardData("")
	for _, event := range collector.Events() {
		data.UpdateFromEvent(event)
	}
	return data
}
