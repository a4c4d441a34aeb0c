package mock

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors for mock violations. Concrete errors wrap one
// of these so callers can branch with errors.Is.
var (
	// ErrUnexpectedCall is returned when a strict mock receives a
	// message it has no eligible expectation for.
	ErrUnexpectedCall = errors.New("unexpected message")

	// ErrWrongArguments is returned when a message matches a
	// declared method but none of its eligible expectations
	// accept the arguments.
	ErrWrongArguments = errors.New("wrong arguments")

	// ErrUnmetExpectation is reported at verification when an
	// expectation's call count is outside its declared bound.
	ErrUnmetExpectation = errors.New("unmet expectation")
)

// CallError describes a violation detected while a message was
// being sent to a mock.
type CallError struct {
	Mock   string
	Method string
	Args   []any
	Detail string
	err    error
}

func (e *CallError) Error() string {
	msg := fmt.Sprintf(
		"mock '%s' received unexpected message '%s' with %s",
		e.Mock, e.Method, formatArgs(e.Args),
	)
	if errors.Is(e.err, ErrWrongArguments) {
		msg = fmt.Sprintf(
			"mock '%s' received '%s' with wrong arguments %s",
			e.Mock, e.Method, formatArgs(e.Args),
		)
	}
	if e.Detail != "" {
		msg += " (" + e.Detail + ")"
	}
	return msg
}

// Unwrap returns the sentinel the violation belongs to.
func (e *CallError) Unwrap() error { return e.err }

// UnmetError describes an expectation whose counter is outside
// its bound when the owning example ends.
type UnmetError struct {
	Mock   string
	Method string
	Bound  string
	Calls  int
}

func (e *UnmetError) Error() string {
	return fmt.Sprintf(
		"mock '%s' expected '%s' %s, received %s",
		e.Mock, e.Method, e.Bound, times(e.Calls),
	)
}

// Unwrap returns ErrUnmetExpectation.
func (e *UnmetError) Unwrap() error { return ErrUnmetExpectation }

func formatArgs(args []any) string {
	if len(args) == 0 {
		return "no arguments"
	}
	parts := make([]string, len(args))
	for i, a := range args {
		parts[i] = fmt.Sprintf("%#v", a)
	}
	return "(" + strings.Join(parts, ", ") + ")"
}

func times(n int) string {
	if n == 1 {
		return "1 time"
	}
	return fmt.Sprintf("%d times", n)
}
