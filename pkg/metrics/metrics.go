// Package metrics records run statistics. The runner reports
// through the Metrics interface; PrometheusMetrics exports the
// numbers through client_golang collectors.
package metrics

import "time"

// Metrics defines the interface for recording run metrics.
type Metrics interface {
	// RecordExample records a finished example.
	RecordExample(status string, duration time.Duration)
	// RecordAssertion records an evaluated expectation.
	RecordAssertion(matcher string, passed bool)
	// IncrementRunTotal increments the total run counter.
	IncrementRunTotal()
	// SetActiveExamples sets the gauge of running examples.
	SetActiveExamples(count int)
}

// NoopMetrics is a no-op implementation of Metrics used when
// metrics collection is disabled.
type NoopMetrics struct{}

func (NoopMetrics) RecordExample(_ string, _ time.Duration) {}
func (NoopMetrics) RecordAssertion(_ string, _ bool)        {}
func (NoopMetrics) IncrementRunTotal()                      {}
func (NoopMetrics) SetActiveExamples(_ int)                 {}
