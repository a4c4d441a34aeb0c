package monitor

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"digital.vasic.specs/pkg/runner"
	"digital.vasic.specs/pkg/spec"
)

func result(index int, status string, msgs ...string) *spec.Result {
	return &spec.Result{
		RunID:     "run-1",
		Index:     index,
		Label:     "example",
		Ancestors: []string{"Group"},
		Status:    status,
		Messages:  msgs,
		Duration:  time.Millisecond,
	}
}

func TestEventCollector_OnResult(t *testing.T) {
	c := NewEventCollector()
	c.OnResult(result(0, spec.StatusPassed))
	c.OnResult(result(1, spec.StatusFailed, "expected 1, got 2"))
	c.OnResult(result(2, spec.StatusError, "raised RuntimeError (x)"))
	c.OnResult(result(3, spec.StatusSkipped, "pending: later"))

	events := c.Events()
	require.Len(t, events, 4)
	assert.Equal(t, EventFailed, events[1].Type)
	assert.Equal(t, []string{"expected 1, got 2"}, events[1].Messages)
	assert.False(t, events[0].Timestamp.IsZero())

	stats := c.Stats()
	assert.Equal(t, 4, stats.Total)
	assert.Equal(t, 1, stats.Passed)
	assert.Equal(t, 1, stats.Failed)
	assert.Equal(t, 1, stats.Errors)
	assert.Equal(t, 1, stats.Skipped)
}

func TestEventCollector_Handlers(t *testing.T) {
	c := NewEventCollector()
	var got []EventType
	c.OnEvent(func(e ExampleEvent) { got = append(got, e.Type) })

	c.OnResult(result(0, spec.StatusPassed))
	c.Finish(&runner.Run{ID: "run-1", Counts: spec.Counts{Total: 1, Passed: 1}})

	assert.Equal(t, []EventType{EventPassed, EventRunCompleted}, got)
	assert.Equal(t, 1, c.Stats().Total)
}

func TestEventCollector_AsRunnerListener(t *testing.T) {
	c := NewEventCollector()
	root := spec.NewRoot()
	root.It("one", func(*spec.Env) {})
	root.Pending("two", "")

	_, err := runner.New(runner.WithListener(c)).Run(t.Context(), root)
	require.NoError(t, err)

	events := c.Events()
	require.Len(t, events, 2)
	assert.Equal(t, EventPassed, events[0].Type)
	assert.Equal(t, EventSkipped, events[1].Type)
}

func TestEventCollector_Concurrent(t *testing.T) {
	c := NewEventCollector()
	var wg sync.WaitGroup
	for i := range 50 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			c.OnResult(result(i, spec.StatusPassed))
		}()
	}
	wg.Wait()
	assert.Equal(t, 50, c.Stats().Total)
}

func TestEventCollector_Reset(t *testing.T) {
	c := NewEventCollector()
	c.OnResult(result(0, spec.StatusPassed))
	c.Reset()
	assert.Empty(t, c.Events())
	assert.Zero(t, c.Stats().Total)
}
