package spec

import (
	"context"
	"fmt"
	"sync"

	"digital.vasic.specs/pkg/fault"
	"digital.vasic.specs/pkg/matcher"
	"digital.vasic.specs/pkg/mock"
	"digital.vasic.specs/pkg/scratch"
)

// abort carries an error out of a hook or body. It is raised when
// an expectation cannot be decided or the body calls Raise.
type abort struct{ err error }

// Env is handed to every hook and body of one example. It records
// expectation outcomes, owns the example's mocks and exposes the
// worker's scratch pad. Once sealed, further records are dropped;
// this happens when the runner stops waiting on the example.
type Env struct {
	ctx      context.Context
	example  *Example
	pad      *scratch.Pad
	mocks    *mock.Registry
	mockOpts []mock.Option
	observer func(matcher.Result)

	mu         sync.Mutex
	sealed     bool
	assertions []matcher.Result
	failures   []string
}

// NewEnv creates the environment for one run of ex.
func NewEnv(
	ctx context.Context,
	ex *Example,
	pad *scratch.Pad,
	mocks *mock.Registry,
) *Env {
	if pad == nil {
		pad = scratch.New()
	}
	if mocks == nil {
		mocks = mock.NewRegistry()
	}
	return &Env{ctx: ctx, example: ex, pad: pad, mocks: mocks}
}

// Observe registers fn to be called with every evaluated
// expectation. It must be set before hooks run.
func (e *Env) Observe(fn func(matcher.Result)) {
	e.observer = fn
}

// DefaultMockOptions sets options applied to every mock created
// with Mock, before the caller's own options.
func (e *Env) DefaultMockOptions(opts ...mock.Option) {
	e.mockOpts = opts
}

// Context is cancelled when the runner abandons the example.
func (e *Env) Context() context.Context { return e.ctx }

// Label returns the example label.
func (e *Env) Label() string { return e.example.label }

// Scratch returns the scratch pad, cleared before setup.
func (e *Env) Scratch() *scratch.Pad { return e.pad }

// Mocks returns the example's mock registry.
func (e *Env) Mocks() *mock.Registry { return e.mocks }

// Mock creates a mock owned by this example. It is verified when
// the example ends.
func (e *Env) Mock(name string, opts ...mock.Option) *mock.Mock {
	all := append(append([]mock.Option{}, e.mockOpts...), opts...)
	return e.mocks.New(name, all...)
}

// Expect starts an expectation on actual.
func (e *Env) Expect(actual any) *Expectation {
	return &Expectation{
		env:      e,
		actual:   actual,
		location: callerLocation(2),
	}
}

// Fail records a failure without stopping the body.
func (e *Env) Fail(format string, args ...any) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.sealed {
		return
	}
	e.failures = append(e.failures, fmt.Sprintf(format, args...))
}

// Raise stops the current hook or body with err. The runner
// reports it as an error unless it is caught by a raise_error
// expectation.
func (e *Env) Raise(err error) {
	if err == nil {
		err = fault.New(fault.RuntimeError, "unhandled exception")
	}
	panic(&abort{err: err})
}

// Must raises err when it is non-nil.
func (e *Env) Must(err error) {
	if err != nil {
		e.Raise(err)
	}
}

// Seal stops the Env from recording anything further.
func (e *Env) Seal() {
	e.mu.Lock()
	e.sealed = true
	e.mu.Unlock()
}

// Assertions returns every evaluated expectation in order.
func (e *Env) Assertions() []matcher.Result {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]matcher.Result, len(e.assertions))
	copy(out, e.assertions)
	return out
}

// Failures returns the failure messages of failed expectations
// and Fail calls, in the order they happened.
func (e *Env) Failures() []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]string, len(e.failures))
	copy(out, e.failures)
	return out
}

func (e *Env) record(r matcher.Result) {
	e.mu.Lock()
	if e.sealed {
		e.mu.Unlock()
		return
	}
	e.assertions = append(e.assertions, r)
	if !r.Passed && r.Err == nil {
		msg := r.Message
		if r.Location != "" {
			msg = fmt.Sprintf("%s (%s)", msg, r.Location)
		}
		e.failures = append(e.failures, msg)
	}
	observer := e.observer
	e.mu.Unlock()

	if observer != nil {
		observer(r)
	}
}

// Expectation is a pending assertion on an actual value.
type Expectation struct {
	env      *Env
	actual   any
	location string
}

// To asserts that m matches. A failure is recorded and the body
// continues; an undecidable evaluation raises.
func (x *Expectation) To(m matcher.Matcher) bool {
	return x.evaluate(m, false)
}

// NotTo asserts that m does not match.
func (x *Expectation) NotTo(m matcher.Matcher) bool {
	return x.evaluate(m, true)
}

// ToNot is an alias of NotTo.
func (x *Expectation) ToNot(m matcher.Matcher) bool {
	return x.evaluate(m, true)
}

func (x *Expectation) evaluate(m matcher.Matcher, negated bool) bool {
	r := matcher.Evaluate(m, x.actual, negated)
	r.Location = x.location
	x.env.record(r)
	if r.Err != nil {
		panic(&abort{err: &ExpectationError{
			Message:  r.Message,
			Location: r.Location,
			Err:      r.Err,
		}})
	}
	return r.Passed
}

// ExpectationError is raised when an expectation could not be
// decided: the matcher raised, or a raise_error expectation saw a
// different kind of error. It unwraps to the underlying error.
type ExpectationError struct {
	Message  string
	Location string
	Err      error
}

func (e *ExpectationError) Error() string {
	msg := e.Message
	if msg == "" {
		msg = e.Err.Error()
	}
	if e.Location != "" {
		msg = fmt.Sprintf("%s (%s)", msg, e.Location)
	}
	return msg
}

// Unwrap returns the raised error.
func (e *ExpectationError) Unwrap() error { return e.Err }

// Capture runs fn and returns what it raised: the error passed to
// Env.Raise, the error of an undecidable expectation, or a
// recovered panic converted with fault.FromPanic.
func Capture(fn func()) (err error) {
	defer func() {
		if r := recover(); r != nil {
			if a, ok := r.(*abort); ok {
				err = a.err
				return
			}
			err = fault.FromPanic(r)
		}
	}()
	fn()
	return nil
}
