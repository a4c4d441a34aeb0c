package mock

import (
	"fmt"

	"digital.vasic.specs/pkg/matcher"
)

const unbounded = -1

// Expectation is a declared message a mock should receive. New
// expectations default to exactly one call with any arguments.
// Expectations are configured while the example is being set up
// and must not be changed once calls start arriving.
type Expectation struct {
	method   string
	min, max int
	anyArgs  bool
	args     []any
	value    any
	compute  func(args ...any) (any, error)
	raise    error
	calls    int
	registry *Registry
}

func newExpectation(method string) *Expectation {
	return &Expectation{
		method:  method,
		min:     1,
		max:     1,
		anyArgs: true,
	}
}

// Once expects exactly one call.
func (e *Expectation) Once() *Expectation { return e.Times(1) }

// Twice expects exactly two calls.
func (e *Expectation) Twice() *Expectation { return e.Times(2) }

// Times expects exactly n calls.
func (e *Expectation) Times(n int) *Expectation {
	e.min, e.max = n, n
	return e
}

// AtLeast expects n or more calls.
func (e *Expectation) AtLeast(n int) *Expectation {
	e.min, e.max = n, unbounded
	return e
}

// AtMost expects no more than n calls.
func (e *Expectation) AtMost(n int) *Expectation {
	e.min, e.max = 0, n
	return e
}

// AnyNumberOfTimes accepts any call count, including zero.
func (e *Expectation) AnyNumberOfTimes() *Expectation {
	e.min, e.max = 0, unbounded
	return e
}

// With restricts the expectation to calls whose arguments equal
// args. An argument that is a matcher.Matcher is matched with it
// instead of by equality.
func (e *Expectation) With(args ...any) *Expectation {
	e.anyArgs = false
	e.args = args
	return e
}

// WithAnyArgs accepts every argument list. This is the default.
func (e *Expectation) WithAnyArgs() *Expectation {
	e.anyArgs = true
	e.args = nil
	return e
}

// AndReturn sets a static return value.
func (e *Expectation) AndReturn(v any) *Expectation {
	e.value = v
	e.compute = nil
	e.raise = nil
	return e
}

// AndCall computes the return value from the call arguments.
func (e *Expectation) AndCall(
	fn func(args ...any) (any, error),
) *Expectation {
	e.compute = fn
	e.raise = nil
	return e
}

// AndRaise makes every matching call fail with err.
func (e *Expectation) AndRaise(err error) *Expectation {
	e.raise = err
	e.compute = nil
	return e
}

// Calls returns how many calls the expectation has absorbed.
func (e *Expectation) Calls() int {
	e.registry.mu.Lock()
	defer e.registry.mu.Unlock()
	return e.calls
}

// Satisfied reports whether the call count is within bounds.
func (e *Expectation) Satisfied() bool {
	e.registry.mu.Lock()
	defer e.registry.mu.Unlock()
	return e.satisfied()
}

func (e *Expectation) satisfied() bool {
	return e.calls >= e.min && (e.max == unbounded || e.calls <= e.max)
}

func (e *Expectation) eligible() bool {
	return e.max == unbounded || e.calls < e.max
}

// accepts runs argument matchers, which may call back into mocks,
// so it must be called without the registry lock.
func (e *Expectation) accepts(args []any) bool {
	if e.anyArgs {
		return true
	}
	if len(args) != len(e.args) {
		return false
	}
	for i, want := range e.args {
		m, ok := want.(matcher.Matcher)
		if !ok {
			m = matcher.Equal(want)
		}
		v := m.Match(args[i])
		if v.Err != nil || !v.Passed {
			return false
		}
	}
	return true
}

func (e *Expectation) bound() string {
	switch {
	case e.max == unbounded && e.min == 0:
		return "any number of times"
	case e.max == unbounded:
		return "at least " + times(e.min)
	case e.min == e.max:
		return "exactly " + times(e.min)
	case e.min == 0:
		return "at most " + times(e.max)
	}
	return fmt.Sprintf("between %d and %s", e.min, times(e.max))
}

func (e *Expectation) respond(args []any) (any, error) {
	switch {
	case e.raise != nil:
		return nil, e.raise
	case e.compute != nil:
		return e.compute(args...)
	}
	return e.value, nil
}
