// Package runner executes a spec tree. Each included example goes
// through setup, body, teardown and mock verification, and yields
// exactly one Result. Examples run sequentially by default or, in
// parallel mode, with top-level groups spread over a worker pool.
package runner

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"digital.vasic.specs/pkg/fault"
	"digital.vasic.specs/pkg/logging"
	"digital.vasic.specs/pkg/matcher"
	"digital.vasic.specs/pkg/metrics"
	"digital.vasic.specs/pkg/mock"
	"digital.vasic.specs/pkg/scratch"
	"digital.vasic.specs/pkg/spec"
	"digital.vasic.specs/pkg/version"
)

// ErrDeadline marks an example the runner stopped waiting on.
var ErrDeadline = errors.New("deadline exceeded")

// Runner executes a spec tree.
type Runner interface {
	// Run validates root and executes every example beneath it.
	// A malformed tree is returned as an error before any
	// example runs; example failures never are.
	Run(ctx context.Context, root *spec.Group) (*Run, error)
}

// Listener receives each Result as soon as it is produced.
// Calls are serialized.
type Listener interface {
	OnResult(r *spec.Result)
}

// ListenerFunc adapts a function to Listener.
type ListenerFunc func(r *spec.Result)

// OnResult calls f(r).
func (f ListenerFunc) OnResult(r *spec.Result) { f(r) }

// Run is the outcome of one execution of a tree.
type Run struct {
	ID       string         `json:"id"`
	Target   string         `json:"target,omitempty"`
	Results  []*spec.Result `json:"results"`
	Counts   spec.Counts    `json:"counts"`
	Started  time.Time      `json:"started"`
	Duration time.Duration  `json:"duration"`
}

// Succeeded reports whether no example failed or errored.
func (r *Run) Succeeded() bool { return r.Counts.Succeeded() }

// DefaultRunner is the standard Runner implementation.
type DefaultRunner struct {
	logger    logging.Logger
	target    version.Target
	parallel  int
	deadline  time.Duration
	listeners []Listener
	metrics   metrics.Metrics
	tracer    trace.Tracer
	mockOpts  []mock.Option

	emitMu sync.Mutex
	active atomic.Int64
}

// New creates a DefaultRunner with the supplied options.
func New(opts ...RunnerOption) *DefaultRunner {
	r := &DefaultRunner{
		logger:   logging.NullLogger{},
		parallel: 1,
		metrics:  metrics.NoopMetrics{},
		tracer:   otel.Tracer("digital.vasic.specs/runner"),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// planned is an example with its declaration index.
type planned struct {
	index   int
	example *spec.Example
}

// worker owns the scratch pad of one execution lane.
type worker struct {
	pad *scratch.Pad
}

func newWorker() *worker {
	return &worker{pad: scratch.New()}
}

// Run validates root and executes it.
func (r *DefaultRunner) Run(
	ctx context.Context,
	root *spec.Group,
) (*Run, error) {
	if err := spec.Validate(root); err != nil {
		return nil, err
	}

	run := &Run{
		ID:      uuid.NewString(),
		Started: time.Now(),
	}
	if !r.target.Version.IsZero() {
		run.Target = r.target.Version.String()
	}
	log := r.logger.WithFields(logging.RunIDField(run.ID))

	ctx, span := r.tracer.Start(ctx, "spec.Run",
		trace.WithAttributes(
			attribute.String("spec.run_id", run.ID),
			attribute.String("spec.target", run.Target),
			attribute.Int("spec.parallel", r.parallel),
		),
	)
	defer span.End()

	var plan []planned
	spec.Walk(root, func(i int, ex *spec.Example) {
		plan = append(plan, planned{index: i, example: ex})
	})

	log.Info("run_started",
		logging.IntField("examples", len(plan)),
		logging.StringField("target", run.Target),
		logging.IntField("parallel", r.parallel),
	)
	r.metrics.IncrementRunTotal()

	var (
		results []*spec.Result
		err     error
	)
	if r.parallel > 1 {
		results, err = r.runParallel(ctx, run.ID, log, plan)
	} else {
		results, err = r.runSequential(
			ctx, run.ID, log, plan, newWorker(),
		)
	}

	run.Results = results
	run.Counts = spec.Tally(results)
	run.Duration = time.Since(run.Started)

	span.SetAttributes(
		attribute.Int("spec.passed", run.Counts.Passed),
		attribute.Int("spec.failed", run.Counts.Failed),
		attribute.Int("spec.errors", run.Counts.Errors),
		attribute.Int("spec.skipped", run.Counts.Skipped),
	)
	log.Info("run_completed",
		logging.IntField("total", run.Counts.Total),
		logging.IntField("passed", run.Counts.Passed),
		logging.IntField("failed", run.Counts.Failed),
		logging.IntField("errors", run.Counts.Errors),
		logging.IntField("skipped", run.Counts.Skipped),
		logging.DurationField(run.Duration),
	)

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "run interrupted")
		return run, fmt.Errorf("run interrupted: %w", err)
	}
	if !run.Succeeded() {
		span.SetStatus(codes.Error, "examples failed")
	}
	return run, nil
}

// runSequential executes plan in order on one worker. It stops
// early only when ctx is done.
func (r *DefaultRunner) runSequential(
	ctx context.Context,
	runID string,
	log logging.Logger,
	plan []planned,
	w *worker,
) ([]*spec.Result, error) {
	results := make([]*spec.Result, 0, len(plan))
	for _, p := range plan {
		if err := ctx.Err(); err != nil {
			return results, err
		}
		res := r.execute(ctx, runID, log, p, w)
		results = append(results, res)
		r.emit(res)
	}
	return results, nil
}

// emit forwards a result to every listener, one at a time.
func (r *DefaultRunner) emit(res *spec.Result) {
	r.emitMu.Lock()
	defer r.emitMu.Unlock()
	for _, l := range r.listeners {
		l.OnResult(res)
	}
}

// outcome is what the lifecycle of one example produced.
type outcome struct {
	status     string
	messages   []string
	assertions []matcher.Result
	err        error
}

// execute produces the Result of one example.
func (r *DefaultRunner) execute(
	ctx context.Context,
	runID string,
	log logging.Logger,
	p planned,
	w *worker,
) *spec.Result {
	ex := p.example
	res := &spec.Result{
		RunID:     runID,
		Index:     p.index,
		Label:     ex.Label(),
		Ancestors: spec.Path(ex),
		Location:  ex.Location(),
		StartTime: time.Now(),
	}
	exLog := log.WithFields(
		logging.ExampleField(append(res.Ancestors, res.Label)...),
	)

	if gate := ex.ExcludedBy(r.target); gate != nil {
		return r.skip(res, exLog, "excluded: "+gate.String())
	}
	if reason := ex.PendingReason(); reason != "" {
		return r.skip(res, exLog, "pending: "+reason)
	}

	ctx, span := r.tracer.Start(ctx, "spec.Example",
		trace.WithAttributes(
			attribute.String("spec.example", res.FullLabel()),
			attribute.Int("spec.index", p.index),
		),
	)
	defer span.End()

	exLog.Debug("example_started")
	r.metrics.SetActiveExamples(int(r.active.Add(1)))
	defer func() {
		r.metrics.SetActiveExamples(int(r.active.Add(-1)))
	}()

	out := r.guarded(ctx, ex, w)

	res.Status = out.status
	res.Messages = out.messages
	res.Assertions = out.assertions
	res.EndTime = time.Now()
	res.Duration = res.EndTime.Sub(res.StartTime)

	span.SetAttributes(attribute.String("spec.status", res.Status))
	if out.err != nil {
		span.RecordError(out.err)
	}
	if res.Status != spec.StatusPassed {
		span.SetStatus(codes.Error, res.Status)
	}

	r.metrics.RecordExample(res.Status, res.Duration)
	if res.Status == spec.StatusError {
		exLog.Error("example_error",
			logging.StatusField(res.Status),
			logging.ErrorField(out.err),
			logging.DurationField(res.Duration),
		)
	} else {
		exLog.Info("example_completed",
			logging.StatusField(res.Status),
			logging.IntField("assertions", len(res.Assertions)),
			logging.DurationField(res.Duration),
		)
	}
	return res
}

func (r *DefaultRunner) skip(
	res *spec.Result,
	log logging.Logger,
	reason string,
) *spec.Result {
	res.Status = spec.StatusSkipped
	res.Messages = []string{reason}
	res.EndTime = res.StartTime
	r.metrics.RecordExample(res.Status, 0)
	log.Debug("example_skipped", logging.StringField("reason", reason))
	return res
}

// guarded runs the lifecycle, abandoning it when the deadline
// passes. An abandoned example keeps running on its own goroutine
// with a cancelled context, a sealed Env and a pad the worker no
// longer uses.
func (r *DefaultRunner) guarded(
	ctx context.Context,
	ex *spec.Example,
	w *worker,
) outcome {
	exCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	env := spec.NewEnv(exCtx, ex, w.pad, mock.NewRegistry())
	env.DefaultMockOptions(r.mockOpts...)
	env.Observe(func(m matcher.Result) {
		r.metrics.RecordAssertion(m.Matcher, m.Passed)
	})

	if r.deadline <= 0 {
		return r.lifecycle(env, ex)
	}

	done := make(chan outcome, 1)
	go func() { done <- r.lifecycle(env, ex) }()

	timer := time.NewTimer(r.deadline)
	defer timer.Stop()

	select {
	case out := <-done:
		return out
	case <-timer.C:
	}

	cancel()
	env.Seal()
	env.Mocks().Discard()
	w.pad = scratch.New()

	return outcome{
		status:     spec.StatusError,
		messages:   append(env.Failures(), fmt.Sprintf("deadline exceeded after %s", r.deadline)),
		assertions: env.Assertions(),
		err:        ErrDeadline,
	}
}

// lifecycle clears the scratch pad, runs setup, body and teardown
// and verifies the example's mocks. When a setup hook raises, the
// body is skipped and only groups whose setup completed are torn
// down.
func (r *DefaultRunner) lifecycle(env *spec.Env, ex *spec.Example) outcome {
	env.Scratch().Clear()
	levels := spec.HookLevels(ex)

	entered := 0
	var setupErr error
setup:
	for _, level := range levels {
		for _, h := range level.Before {
			if err := spec.Capture(func() { h(env) }); err != nil {
				setupErr = err
				break setup
			}
		}
		entered++
	}

	if setupErr != nil {
		teardownErrs := runHooks(env, spec.Teardown(levels[:entered]))
		env.Mocks().Discard()
		out := outcome{
			status: spec.StatusError,
			messages: append(env.Failures(),
				"setup failed: "+describe(setupErr)),
			assertions: env.Assertions(),
			err:        setupErr,
		}
		for _, err := range teardownErrs {
			out.messages = append(out.messages,
				"teardown failed: "+describe(err))
		}
		return out
	}

	bodyErr := spec.Capture(func() { ex.Body()(env) })
	teardownErrs := runHooks(env, spec.Teardown(levels))

	reg := env.Mocks()
	mockErrs := append(reg.Violations(), reg.Verify()...)
	reg.Discard()

	out := outcome{
		status:     spec.StatusPassed,
		messages:   env.Failures(),
		assertions: env.Assertions(),
	}
	for _, err := range mockErrs {
		out.messages = append(out.messages, err.Error())
	}
	if len(out.messages) > 0 {
		out.status = spec.StatusFailed
	}

	if bodyErr != nil {
		out.status = spec.StatusError
		out.err = bodyErr
		out.messages = append(out.messages, describe(bodyErr))
	}
	for _, err := range teardownErrs {
		out.status = spec.StatusError
		if out.err == nil {
			out.err = err
		}
		out.messages = append(out.messages,
			"teardown failed: "+describe(err))
	}
	return out
}

// runHooks runs every hook, collecting what they raise.
func runHooks(env *spec.Env, hooks []spec.Hook) []error {
	var errs []error
	for _, h := range hooks {
		if err := spec.Capture(func() { h(env) }); err != nil {
			errs = append(errs, err)
		}
	}
	return errs
}

// describe renders a raised error for a Result message.
func describe(err error) string {
	var expErr *spec.ExpectationError
	if errors.As(err, &expErr) {
		return expErr.Error()
	}
	return "raised " + fault.Describe(err)
}
