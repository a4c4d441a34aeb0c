// Package matcher evaluates actual values against expectations.
// Every matcher is tagged with the comparison capability it
// provides (equality, identity, approximate, exception, predicate
// or ordering) and is evaluated exactly once per expectation, so
// negation never re-runs a side-effecting computation.
package matcher

import (
	"errors"
	"fmt"
)

// ErrUnsupported is returned when a matcher cannot evaluate the
// operand types it was given. It is a declared failure of the
// expectation itself, never a silent pass or fail.
var ErrUnsupported = errors.New("unsupported matcher operands")

// Capability tags which comparison a matcher performs.
type Capability int

const (
	// CapEquality compares structural values.
	CapEquality Capability = iota
	// CapIdentity compares references.
	CapIdentity
	// CapApproximate compares numbers within a tolerance.
	CapApproximate
	// CapException runs a deferred computation and inspects
	// what it raised.
	CapException
	// CapPredicate checks a boolean property of the actual value.
	CapPredicate
	// CapOrdering delegates to the three-way comparison contract.
	CapOrdering
	// CapComposite combines other matchers.
	CapComposite
)

// String returns the capability name.
func (c Capability) String() string {
	switch c {
	case CapEquality:
		return "equality"
	case CapIdentity:
		return "identity"
	case CapApproximate:
		return "approximate"
	case CapException:
		return "exception"
	case CapPredicate:
		return "predicate"
	case CapOrdering:
		return "ordering"
	case CapComposite:
		return "composite"
	default:
		return "unknown"
	}
}

// Verdict is the single evaluation of a matcher against an actual
// value. Message explains a failure of the positive form and
// NegatedMessage a failure of the negated form. A non-nil Err
// means evaluation itself raised; it wins over Passed in both
// forms.
type Verdict struct {
	Passed         bool
	Message        string
	NegatedMessage string
	Err            error
}

// Matcher evaluates an actual value.
type Matcher interface {
	// Capability returns the comparison capability.
	Capability() Capability

	// Describe returns a short phrase such as "equal 3".
	Describe() string

	// Match evaluates the actual value once.
	Match(actual any) Verdict
}

// Definition describes a matcher declaratively so it can be
// built by name through an Engine.
type Definition struct {
	// Type is the registered matcher name (e.g., "eq",
	// "be_close", "raise_error", "<").
	Type string `json:"matcher" yaml:"matcher"`

	// Value is the expected value for single-operand matchers.
	Value any `json:"value,omitempty" yaml:"value,omitempty"`

	// Values holds operands for multi-operand matchers
	// (e.g., "between").
	Values []any `json:"values,omitempty" yaml:"values,omitempty"`

	// Tolerance is the allowed delta for approximate matchers.
	Tolerance float64 `json:"tolerance,omitempty" yaml:"tolerance,omitempty"`

	// Kind names the expected error kind for exception
	// matchers.
	Kind string `json:"kind,omitempty" yaml:"kind,omitempty"`

	// Message is a substring the raised message must contain.
	Message string `json:"message,omitempty" yaml:"message,omitempty"`

	// Negate inverts the expectation.
	Negate bool `json:"not,omitempty" yaml:"not,omitempty"`
}

// Result records one evaluated expectation.
type Result struct {
	// Matcher is the matcher description.
	Matcher string `json:"matcher"`

	// Capability is the capability name.
	Capability string `json:"capability"`

	// Actual is a rendering of the observed value.
	Actual string `json:"actual"`

	// Negated is true for not_to expectations.
	Negated bool `json:"negated,omitempty"`

	// Passed indicates whether the expectation held.
	Passed bool `json:"passed"`

	// Message is a human-readable description of the outcome.
	Message string `json:"message"`

	// Location is the file:line of the expectation.
	Location string `json:"location,omitempty"`

	// Err is set when evaluation raised instead of deciding.
	Err error `json:"-"`
}

// Evaluate runs m against actual exactly once and applies
// negation to the single verdict.
func Evaluate(m Matcher, actual any, negated bool) Result {
	v := m.Match(actual)
	r := Result{
		Matcher:    m.Describe(),
		Capability: m.Capability().String(),
		Actual:     render(actual),
		Negated:    negated,
	}

	if v.Err != nil {
		r.Err = v.Err
		r.Message = v.Message
		if r.Message == "" {
			r.Message = v.Err.Error()
		}
		return r
	}

	r.Passed = v.Passed != negated
	switch {
	case r.Passed && negated:
		r.Message = "not " + m.Describe()
	case r.Passed:
		r.Message = m.Describe()
	case negated:
		r.Message = v.NegatedMessage
	default:
		r.Message = v.Message
	}
	return r
}

// render formats a value for messages. Deferred computations have
// no useful printable form.
func render(v any) string {
	switch v.(type) {
	case func(), func() error, func() (any, error):
		return "<deferred computation>"
	case string:
		return fmt.Sprintf("%q", v)
	}
	return fmt.Sprintf("%#v", v)
}
