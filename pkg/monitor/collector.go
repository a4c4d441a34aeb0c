package monitor

import (
	"sync"
	"time"

	"digital.vasic.specs/pkg/runner"
	"digital.vasic.specs/pkg/spec"
)

// EventCollector records run events and fans them out to
// handlers. It is a runner.Listener.
type EventCollector struct {
	mu       sync.RWMutex
	events   []ExampleEvent
	handlers []func(ExampleEvent)
	stats    CollectorStats
}

var _ runner.Listener = (*EventCollector)(nil)

// CollectorStats holds aggregate statistics.
type CollectorStats struct {
	Total     int           `json:"total"`
	Passed    int           `json:"passed"`
	Failed    int           `json:"failed"`
	Errors    int           `json:"errors"`
	Skipped   int           `json:"skipped"`
	StartTime time.Time     `json:"start_time"`
	Duration  time.Duration `json:"duration"`
}

// NewEventCollector creates a new event collector.
func NewEventCollector() *EventCollector {
	return &EventCollector{
		events: make([]ExampleEvent, 0, 64),
		stats:  CollectorStats{StartTime: time.Now()},
	}
}

// OnEvent registers a handler to be called for each event.
func (c *EventCollector) OnEvent(handler func(ExampleEvent)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.handlers = append(c.handlers, handler)
}

// OnResult records the event for r.
func (c *EventCollector) OnResult(r *spec.Result) {
	c.Emit(eventFor(r))
}

// Finish publishes the completion of run.
func (c *EventCollector) Finish(run *runner.Run) {
	counts := run.Counts
	c.Emit(ExampleEvent{
		Type:     EventRunCompleted,
		RunID:    run.ID,
		Index:    -1,
		Duration: run.Duration,
		Counts:   &counts,
	})
}

// Emit records an event and notifies all handlers.
func (c *EventCollector) Emit(event ExampleEvent) {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}

	c.mu.Lock()
	c.events = append(c.events, event)
	switch event.Type {
	case EventPassed:
		c.stats.Passed++
	case EventFailed:
		c.stats.Failed++
	case EventError:
		c.stats.Errors++
	case EventSkipped:
		c.stats.Skipped++
	}
	if event.Type != EventRunCompleted {
		c.stats.Total++
	}
	c.stats.Duration = time.Since(c.stats.StartTime)
	handlers := make([]func(ExampleEvent), len(c.handlers))
	copy(handlers, c.handlers)
	c.mu.Unlock()

	for _, h := range handlers {
		h(event)
	}
}

// Events returns a copy of all collected events.
func (c *EventCollector) Events() []ExampleEvent {
	c.mu.RLock()
	defer c.mu.RUnlock()
	result := make([]ExampleEvent, len(c.events))
	copy(result, c.events)
	return result
}

// Stats returns the current aggregate statistics.
func (c *EventCollector) Stats() CollectorStats {
	c.mu.RLock()
	defer c.mu.RUnlock()
	s := c.stats
	s.Duration = time.Since(s.StartTime)
	return s
}

// Reset clears all collected events and statistics.
func (c *EventCollector) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.events = c.events[:0]
	c.stats = CollectorStats{StartTime: time.Now()}
}
