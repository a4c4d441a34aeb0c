// Package mock provides per-example substitute collaborators with
// declared call expectations. A Registry owns every mock created
// during one example; the runner verifies it when the example
// ends and discards it afterwards.
package mock

import (
	"fmt"
	"sync"

	"digital.vasic.specs/pkg/fault"
)

// Registry owns the mocks of a single example. It is safe for
// concurrent use by goroutines spawned from that example.
type Registry struct {
	mu         sync.Mutex
	mocks      []*Mock
	violations []error
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{}
}

// Option configures a Mock at creation.
type Option func(*Mock)

// Permissive makes undeclared messages return nil instead of
// failing with ErrUnexpectedCall.
func Permissive() Option {
	return func(m *Mock) { m.permissive = true }
}

// New creates a mock owned by the registry. Mocks are strict
// unless Permissive is given.
func (r *Registry) New(name string, opts ...Option) *Mock {
	m := &Mock{
		name:     name,
		registry: r,
		methods:  make(map[string][]*Expectation),
	}
	for _, opt := range opts {
		opt(m)
	}

	r.mu.Lock()
	r.mocks = append(r.mocks, m)
	r.mu.Unlock()
	return m
}

// Mocks returns the mocks created so far, in creation order.
func (r *Registry) Mocks() []*Mock {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]*Mock, len(r.mocks))
	copy(out, r.mocks)
	return out
}

// Verify returns an *UnmetError for every expectation whose call
// count falls outside its bound, in declaration order.
func (r *Registry) Verify() []error {
	r.mu.Lock()
	defer r.mu.Unlock()

	var errs []error
	for _, m := range r.mocks {
		for _, method := range m.order {
			for _, e := range m.methods[method] {
				if e.satisfied() {
					continue
				}
				errs = append(errs, &UnmetError{
					Mock:   m.name,
					Method: method,
					Bound:  e.bound(),
					Calls:  e.calls,
				})
			}
		}
	}
	return errs
}

// Violations returns every call-time violation recorded so far.
// They are kept even when the body ignored the returned error.
func (r *Registry) Violations() []error {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]error, len(r.violations))
	copy(out, r.violations)
	return out
}

// Discard drops all mocks and recorded violations without
// verifying them.
func (r *Registry) Discard() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.mocks = nil
	r.violations = nil
}

func (r *Registry) record(err error) {
	r.violations = append(r.violations, err)
}

// Mock is a substitute collaborator. It answers messages through
// Send and implements matcher.Receiver so it can stand in for a
// value in ordering comparisons.
type Mock struct {
	name       string
	registry   *Registry
	permissive bool
	methods    map[string][]*Expectation
	order      []string
}

// Name returns the mock name.
func (m *Mock) Name() string { return m.name }

// String renders the mock for failure messages.
func (m *Mock) String() string {
	return fmt.Sprintf("#<Mock '%s'>", m.name)
}

// Expect declares that method must be received. The returned
// expectation defaults to exactly once with any arguments.
func (m *Mock) Expect(method string) *Expectation {
	e := newExpectation(method)
	m.add(method, e)
	return e
}

// Stub declares that method may be received any number of times.
func (m *Mock) Stub(method string) *Expectation {
	e := newExpectation(method).AnyNumberOfTimes()
	m.add(method, e)
	return e
}

func (m *Mock) add(method string, e *Expectation) {
	e.registry = m.registry
	m.registry.mu.Lock()
	defer m.registry.mu.Unlock()

	if _, seen := m.methods[method]; !seen {
		m.order = append(m.order, method)
	}
	m.methods[method] = append(m.methods[method], e)
}

// RespondsTo reports whether method has any declared expectation.
func (m *Mock) RespondsTo(method string) bool {
	m.registry.mu.Lock()
	defer m.registry.mu.Unlock()
	return len(m.methods[method]) > 0
}

// Send delivers a message. The first declared expectation for the
// method that is still eligible and accepts the arguments absorbs
// the call and supplies the response. Violations are returned and
// also recorded on the registry. Argument matchers run without
// the registry lock, so they may send to mocks themselves.
func (m *Mock) Send(method string, args ...any) (any, error) {
	for {
		candidates, exhausted, declared := m.candidates(method)
		if !declared {
			if m.permissive {
				return nil, nil
			}
			return nil, m.violate(&CallError{
				Mock: m.name, Method: method, Args: args,
				err: ErrUnexpectedCall,
			})
		}

		var chosen *Expectation
		for _, e := range candidates {
			if e.accepts(args) {
				chosen = e
				break
			}
		}

		if chosen == nil {
			err := &CallError{Mock: m.name, Method: method, Args: args}
			if len(candidates) > 0 {
				err.err = ErrWrongArguments
			} else {
				m.registry.mu.Lock()
				err.err = ErrUnexpectedCall
				err.Detail = fmt.Sprintf(
					"expected %s, received %s",
					exhausted.bound(), times(exhausted.calls+1),
				)
				m.registry.mu.Unlock()
			}
			return nil, m.violate(err)
		}

		m.registry.mu.Lock()
		if !chosen.eligible() {
			// A concurrent call took the last slot; match again.
			m.registry.mu.Unlock()
			continue
		}
		chosen.calls++
		m.registry.mu.Unlock()

		return chosen.respond(args)
	}
}

// candidates returns the still eligible expectations for method in
// declaration order, and the last exhausted one.
func (m *Mock) candidates(method string) (eligible []*Expectation, exhausted *Expectation, declared bool) {
	m.registry.mu.Lock()
	defer m.registry.mu.Unlock()

	exps, declared := m.methods[method]
	for _, e := range exps {
		if e.eligible() {
			eligible = append(eligible, e)
		} else {
			exhausted = e
		}
	}
	return eligible, exhausted, declared
}

func (m *Mock) violate(err *CallError) error {
	m.registry.mu.Lock()
	m.registry.record(err)
	m.registry.mu.Unlock()
	return err
}

// Call sends method to m and converts the response to T. A nil
// response yields the zero value; a response of another type is
// a TypeError.
func Call[T any](m *Mock, method string, args ...any) (T, error) {
	var zero T

	v, err := m.Send(method, args...)
	if err != nil {
		return zero, err
	}
	if v == nil {
		return zero, nil
	}

	out, ok := v.(T)
	if !ok {
		return zero, fault.New(
			fault.TypeError,
			"%s.%s returned %T, not %T", m, method, v, zero,
		)
	}
	return out, nil
}
