// Package fault models the exception taxonomy that example bodies
// raise and that expectations match against. A Kind names a class
// of failure and may declare a parent Kind, so matching an error
// against a Kind succeeds for the Kind itself and for every Kind
// beneath it.
package fault

import (
	"errors"
	"fmt"
)

// Kind identifies a class of raised error. Kinds are compared by
// identity; two Kinds with the same name are still distinct.
type Kind struct {
	name   string
	parent *Kind
}

// NewKind declares a Kind with an optional parent.
func NewKind(name string, parent *Kind) *Kind {
	return &Kind{name: name, parent: parent}
}

// Built-in kinds, arranged as a superclass chain.
var (
	Exception         = NewKind("Exception", nil)
	StandardError     = NewKind("StandardError", Exception)
	ArgumentError     = NewKind("ArgumentError", StandardError)
	TypeError         = NewKind("TypeError", StandardError)
	RuntimeError      = NewKind("RuntimeError", StandardError)
	FrozenError       = NewKind("FrozenError", RuntimeError)
	NameError         = NewKind("NameError", StandardError)
	NoMethodError     = NewKind("NoMethodError", NameError)
	ZeroDivisionError = NewKind("ZeroDivisionError", StandardError)
	RangeError        = NewKind("RangeError", StandardError)
	FloatDomainError  = NewKind("FloatDomainError", RangeError)
)

// Name returns the kind name.
func (k *Kind) Name() string {
	if k == nil {
		return "<nil>"
	}
	return k.name
}

// Parent returns the declared superclass, or nil for a root kind.
func (k *Kind) Parent() *Kind { return k.parent }

// Error lets a Kind be used directly as an errors.Is target.
func (k *Kind) Error() string { return k.Name() }

// IsA reports whether k is other or descends from it.
func (k *Kind) IsA(other *Kind) bool {
	if other == nil {
		return false
	}
	for cur := k; cur != nil; cur = cur.parent {
		if cur == other {
			return true
		}
	}
	return false
}

// Error is a raised failure carrying a Kind and a message. It may
// wrap an underlying cause.
type Error struct {
	kind    *Kind
	message string
	cause   error
}

// New creates an Error of the given kind.
func New(kind *Kind, format string, args ...any) *Error {
	return &Error{
		kind:    kind,
		message: fmt.Sprintf(format, args...),
	}
}

// Wrap creates an Error of the given kind around cause. The
// message defaults to the cause's message.
func Wrap(kind *Kind, cause error) *Error {
	msg := ""
	if cause != nil {
		msg = cause.Error()
	}
	return &Error{kind: kind, message: msg, cause: cause}
}

// Kind returns the error kind.
func (e *Error) Kind() *Kind { return e.kind }

// Message returns the message without the kind prefix.
func (e *Error) Message() string { return e.message }

func (e *Error) Error() string {
	if e.message == "" {
		return e.kind.Name()
	}
	return fmt.Sprintf("%s: %s", e.kind.Name(), e.message)
}

// Unwrap returns the wrapped cause.
func (e *Error) Unwrap() error { return e.cause }

// Is matches a target Kind by superclass chain, or another *Error
// of the same kind and message.
func (e *Error) Is(target error) bool {
	switch t := target.(type) {
	case *Kind:
		return e.kind.IsA(t)
	case *Error:
		return e.kind == t.kind && e.message == t.message
	}
	return false
}

// KindOf returns the Kind of the first *Error found in err's
// chain.
func KindOf(err error) (*Kind, bool) {
	var fe *Error
	if errors.As(err, &fe) {
		return fe.kind, true
	}
	return nil, false
}

// MessageOf returns the raised message of err: the bare message for
// an *Error, or err.Error() otherwise.
func MessageOf(err error) string {
	var fe *Error
	if errors.As(err, &fe) {
		return fe.message
	}
	if err == nil {
		return ""
	}
	return err.Error()
}

// Describe renders err as "Kind (message)" for diagnostics. Errors
// without a Kind are described by their Go type.
func Describe(err error) string {
	if err == nil {
		return "no error"
	}
	if k, ok := KindOf(err); ok {
		return fmt.Sprintf("%s (%s)", k.Name(), MessageOf(err))
	}
	return fmt.Sprintf("%T (%s)", err, err.Error())
}

// FromPanic converts a recovered panic value into an error. Error
// values are kept; anything else becomes a RuntimeError.
func FromPanic(v any) error {
	if err, ok := v.(error); ok {
		return err
	}
	return New(RuntimeError, "%v", v)
}
