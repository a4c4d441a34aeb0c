package runner

import (
	"time"

	"go.opentelemetry.io/otel/trace"

	"digital.vasic.specs/pkg/logging"
	"digital.vasic.specs/pkg/metrics"
	"digital.vasic.specs/pkg/mock"
	"digital.vasic.specs/pkg/version"
)

// RunnerOption configures a DefaultRunner.
type RunnerOption func(*DefaultRunner)

// WithLogger sets the logger used by the runner.
func WithLogger(logger logging.Logger) RunnerOption {
	return func(r *DefaultRunner) {
		r.logger = logger
	}
}

// WithTarget sets the target gates are evaluated against.
func WithTarget(target version.Target) RunnerOption {
	return func(r *DefaultRunner) {
		r.target = target
	}
}

// WithParallel sets the number of workers. Values below 2 run
// sequentially.
func WithParallel(workers int) RunnerOption {
	return func(r *DefaultRunner) {
		if workers < 1 {
			workers = 1
		}
		r.parallel = workers
	}
}

// WithDeadline bounds how long the runner waits on one example,
// hooks included. Zero waits forever.
func WithDeadline(d time.Duration) RunnerOption {
	return func(r *DefaultRunner) {
		r.deadline = d
	}
}

// WithListener adds a result listener.
func WithListener(l Listener) RunnerOption {
	return func(r *DefaultRunner) {
		r.listeners = append(r.listeners, l)
	}
}

// WithMetrics sets the metrics recorder.
func WithMetrics(m metrics.Metrics) RunnerOption {
	return func(r *DefaultRunner) {
		r.metrics = m
	}
}

// WithTracer sets the tracer used for run and example spans.
func WithTracer(t trace.Tracer) RunnerOption {
	return func(r *DefaultRunner) {
		r.tracer = t
	}
}

// WithStrictMocks controls whether mocks created through the
// example Env reject undeclared messages. Mocks are strict by
// default.
func WithStrictMocks(strict bool) RunnerOption {
	return func(r *DefaultRunner) {
		r.mockOpts = nil
		if !strict {
			r.mockOpts = []mock.Option{mock.Permissive()}
		}
	}
}
