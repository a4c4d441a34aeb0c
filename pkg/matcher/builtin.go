package matcher

import (
	"errors"
	"fmt"
	"math"
	"reflect"
	"regexp"
	"strings"

	"github.com/google/go-cmp/cmp"

	"digital.vasic.specs/pkg/fault"
)

// Set is an unordered collection for equality purposes. Two Sets
// are equal when they hold the same elements regardless of the
// order they were built in. Elements must be comparable.
type Set map[any]struct{}

// NewSet builds a Set from the given elements.
func NewSet(elems ...any) Set {
	s := make(Set, len(elems))
	for _, e := range elems {
		s[e] = struct{}{}
	}
	return s
}

// equalOptions let go-cmp descend into unexported fields so any
// value can be compared structurally.
var equalOptions = []cmp.Option{
	cmp.Exporter(func(reflect.Type) bool { return true }),
}

// --- equality ---

type equalMatcher struct{ expected any }

// Equal matches structurally equal values. Sequences compare
// element-wise in order; maps and Sets ignore order.
func Equal(expected any) Matcher {
	return &equalMatcher{expected: expected}
}

func (m *equalMatcher) Capability() Capability { return CapEquality }

func (m *equalMatcher) Describe() string {
	return "equal " + render(m.expected)
}

func (m *equalMatcher) Match(actual any) (v Verdict) {
	defer func() {
		if r := recover(); r != nil {
			v = Verdict{Err: fmt.Errorf(
				"%w: cannot compare %s with %s: %v",
				ErrUnsupported, typeName(actual),
				typeName(m.expected), r,
			)}
		}
	}()

	if cmp.Equal(m.expected, actual, equalOptions...) {
		return Verdict{
			Passed: true,
			NegatedMessage: fmt.Sprintf(
				"expected %s not to equal %s",
				render(actual), render(m.expected),
			),
		}
	}

	return Verdict{
		Message: fmt.Sprintf(
			"expected %s to equal %s\ndiff (-expected +actual):\n%s",
			render(actual), render(m.expected),
			cmp.Diff(m.expected, actual, equalOptions...),
		),
	}
}

// --- identity ---

type identityMatcher struct{ expected any }

// BeIdenticalTo matches the same referenced instance: the same
// pointer, map, channel, function or slice backing array. Value
// types carry no identity and are rejected as unsupported.
func BeIdenticalTo(expected any) Matcher {
	return &identityMatcher{expected: expected}
}

func (m *identityMatcher) Capability() Capability { return CapIdentity }

func (m *identityMatcher) Describe() string {
	return "be identical to " + render(m.expected)
}

func (m *identityMatcher) Match(actual any) Verdict {
	if actual == nil && m.expected == nil {
		return Verdict{
			Passed:         true,
			NegatedMessage: "expected nil not to be identical to nil",
		}
	}

	av, ev := reflect.ValueOf(actual), reflect.ValueOf(m.expected)
	if !isReference(av) || !isReference(ev) {
		return Verdict{Err: fmt.Errorf(
			"%w: identity needs reference values, got %s and %s",
			ErrUnsupported, typeName(actual), typeName(m.expected),
		)}
	}

	same := av.Type() == ev.Type() && av.Pointer() == ev.Pointer()
	if same && av.Kind() == reflect.Slice {
		same = av.Len() == ev.Len()
	}

	msg := fmt.Sprintf(
		"expected %s to be the same instance as %s",
		render(actual), render(m.expected),
	)
	return Verdict{
		Passed:         same,
		Message:        msg,
		NegatedMessage: strings.Replace(msg, " to be ", " not to be ", 1),
	}
}

func isReference(v reflect.Value) bool {
	if !v.IsValid() {
		return false
	}
	switch v.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Chan, reflect.Func,
		reflect.Slice, reflect.UnsafePointer:
		return true
	}
	return false
}

// --- approximate ---

type closeMatcher struct {
	expected  any
	tolerance float64
}

// BeCloseTo matches numbers with |actual - expected| <= tolerance.
func BeCloseTo(expected any, tolerance float64) Matcher {
	return &closeMatcher{expected: expected, tolerance: tolerance}
}

func (m *closeMatcher) Capability() Capability { return CapApproximate }

func (m *closeMatcher) Describe() string {
	return fmt.Sprintf(
		"be within %g of %s", m.tolerance, render(m.expected),
	)
}

func (m *closeMatcher) Match(actual any) Verdict {
	a, ok := toFloat64(actual)
	if !ok {
		return Verdict{Err: fmt.Errorf(
			"%w: be_close needs a numeric actual, got %s",
			ErrUnsupported, typeName(actual),
		)}
	}
	e, ok := toFloat64(m.expected)
	if !ok {
		return Verdict{Err: fmt.Errorf(
			"%w: be_close needs a numeric expected, got %s",
			ErrUnsupported, typeName(m.expected),
		)}
	}

	delta := math.Abs(a - e)
	return Verdict{
		Passed: delta <= m.tolerance,
		Message: fmt.Sprintf(
			"expected %v to be within %g of %v (delta %g)",
			a, m.tolerance, e, delta,
		),
		NegatedMessage: fmt.Sprintf(
			"expected %v not to be within %g of %v (delta %g)",
			a, m.tolerance, e, delta,
		),
	}
}

// --- exception ---

type raiseMatcher struct {
	target      error
	messageDesc string
	message     func(string) bool
}

// RaiseError matches a deferred computation that raises target.
// Target is usually a *fault.Kind, matched by superclass chain,
// but any sentinel error works through errors.Is. A nil target
// matches any raised error. The actual value must be a func(),
// func() error or func() (any, error); panics count as raising.
func RaiseError(target error) Matcher {
	return &raiseMatcher{target: target}
}

// RaiseErrorWithMessage is RaiseError that also requires the
// raised message to contain substring.
func RaiseErrorWithMessage(target error, substring string) Matcher {
	return &raiseMatcher{
		target:      target,
		messageDesc: fmt.Sprintf("with message containing %q", substring),
		message: func(s string) bool {
			return strings.Contains(s, substring)
		},
	}
}

// RaiseErrorMatching is RaiseError that also requires the raised
// message to match re.
func RaiseErrorMatching(target error, re *regexp.Regexp) Matcher {
	return &raiseMatcher{
		target:      target,
		messageDesc: fmt.Sprintf("with message matching /%s/", re),
		message:     re.MatchString,
	}
}

func (m *raiseMatcher) Capability() Capability { return CapException }

func (m *raiseMatcher) Describe() string {
	d := "raise " + m.targetName()
	if m.messageDesc != "" {
		d += " " + m.messageDesc
	}
	return d
}

func (m *raiseMatcher) targetName() string {
	if m.target == nil {
		return "an error"
	}
	if k, ok := m.target.(*fault.Kind); ok {
		return k.Name()
	}
	return fmt.Sprintf("%q", m.target.Error())
}

func (m *raiseMatcher) Match(actual any) Verdict {
	raised, ok := invoke(actual)
	if !ok {
		return Verdict{Err: fmt.Errorf(
			"%w: raise_error needs a deferred computation, got %s",
			ErrUnsupported, typeName(actual),
		)}
	}

	if raised == nil {
		return Verdict{
			Message: fmt.Sprintf(
				"expected %s but nothing was raised", m.Describe(),
			),
		}
	}

	if !m.kindMatches(raised) {
		// The body crashed with something else; surface the real
		// fault rather than a plain mismatch.
		return Verdict{
			Message: fmt.Sprintf(
				"expected %s, got %s",
				m.Describe(), fault.Describe(raised),
			),
			Err: raised,
		}
	}

	msg := fault.MessageOf(raised)
	if m.message != nil && !m.message(msg) {
		return Verdict{
			Message: fmt.Sprintf(
				"expected %s, got %s",
				m.Describe(), fault.Describe(raised),
			),
		}
	}

	return Verdict{
		Passed: true,
		NegatedMessage: fmt.Sprintf(
			"expected no %s, got %s",
			m.targetName(), fault.Describe(raised),
		),
	}
}

func (m *raiseMatcher) kindMatches(raised error) bool {
	if m.target == nil || errors.Is(raised, m.target) {
		return true
	}
	// Errors raised without a kind behave as StandardError.
	if _, hasKind := fault.KindOf(raised); !hasKind {
		k, isKind := m.target.(*fault.Kind)
		return isKind && fault.StandardError.IsA(k)
	}
	return false
}

// invoke runs a deferred computation, converting panics into the
// raised error.
func invoke(fn any) (raised error, ok bool) {
	switch fn.(type) {
	case func(), func() error, func() (any, error):
	default:
		return nil, false
	}

	defer func() {
		if r := recover(); r != nil {
			raised = fault.FromPanic(r)
			ok = true
		}
	}()

	switch f := fn.(type) {
	case func():
		f()
		return nil, true
	case func() error:
		return f(), true
	case func() (any, error):
		_, err := f()
		return err, true
	}
	return nil, false
}

// --- predicates ---

type predicateMatcher struct {
	desc  string
	check func(actual any) (bool, error)
}

func (m *predicateMatcher) Capability() Capability { return CapPredicate }

func (m *predicateMatcher) Describe() string { return m.desc }

func (m *predicateMatcher) Match(actual any) Verdict {
	ok, err := m.check(actual)
	if err != nil {
		return Verdict{Err: err}
	}
	return Verdict{
		Passed: ok,
		Message: fmt.Sprintf(
			"expected %s to %s", render(actual), m.desc,
		),
		NegatedMessage: fmt.Sprintf(
			"expected %s not to %s", render(actual), m.desc,
		),
	}
}

// BeTrue matches the boolean true.
func BeTrue() Matcher {
	return &predicateMatcher{
		desc: "be true",
		check: func(a any) (bool, error) {
			b, ok := a.(bool)
			return ok && b, nil
		},
	}
}

// BeFalse matches the boolean false.
func BeFalse() Matcher {
	return &predicateMatcher{
		desc: "be false",
		check: func(a any) (bool, error) {
			b, ok := a.(bool)
			return ok && !b, nil
		},
	}
}

// BeNil matches nil, including typed nil pointers, maps, slices,
// channels, functions and interfaces.
func BeNil() Matcher {
	return &predicateMatcher{
		desc:  "be nil",
		check: func(a any) (bool, error) { return isNil(a), nil },
	}
}

// BeKindOf matches values whose type is assignable to the type of
// sample. To test against an interface pass a nil pointer to it,
// e.g. BeKindOf((*error)(nil)).
func BeKindOf(sample any) Matcher {
	want := reflect.TypeOf(sample)
	if want != nil && want.Kind() == reflect.Pointer &&
		want.Elem().Kind() == reflect.Interface {
		want = want.Elem()
	}
	return &predicateMatcher{
		desc: fmt.Sprintf("be a kind of %v", want),
		check: func(a any) (bool, error) {
			if want == nil {
				return false, fmt.Errorf(
					"%w: be_kind_of needs a typed sample",
					ErrUnsupported,
				)
			}
			t := reflect.TypeOf(a)
			if t == nil {
				return false, nil
			}
			return t.AssignableTo(want), nil
		},
	}
}

// Satisfy matches when predicate holds for the actual value.
func Satisfy(desc string, predicate func(any) bool) Matcher {
	return &predicateMatcher{
		desc:  desc,
		check: func(a any) (bool, error) { return predicate(a), nil },
	}
}

func isNil(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Chan,
		reflect.Func, reflect.Interface, reflect.UnsafePointer:
		return rv.IsNil()
	}
	return false
}

// --- ordering ---

type orderingMatcher struct {
	op       string
	operands []any
	test     func(actual any) (bool, error)
}

func (m *orderingMatcher) Capability() Capability { return CapOrdering }

func (m *orderingMatcher) Describe() string {
	if m.op == "between" {
		return fmt.Sprintf(
			"be between %s and %s",
			render(m.operands[0]), render(m.operands[1]),
		)
	}
	return fmt.Sprintf("be %s %s", m.op, render(m.operands[0]))
}

func (m *orderingMatcher) Match(actual any) Verdict {
	ok, err := m.test(actual)
	if err != nil {
		return Verdict{Err: err}
	}
	return Verdict{
		Passed: ok,
		Message: fmt.Sprintf(
			"expected %s to %s", render(actual), m.Describe(),
		),
		NegatedMessage: fmt.Sprintf(
			"expected %s not to %s", render(actual), m.Describe(),
		),
	}
}

func ordering(
	op string,
	expected any,
	fn func(a, b any) (bool, error),
) Matcher {
	return &orderingMatcher{
		op:       op,
		operands: []any{expected},
		test: func(actual any) (bool, error) {
			return fn(actual, expected)
		},
	}
}

// BeLessThan matches actual < expected.
func BeLessThan(expected any) Matcher {
	return ordering("<", expected, Less)
}

// BeLessThanOrEqualTo matches actual <= expected.
func BeLessThanOrEqualTo(expected any) Matcher {
	return ordering("<=", expected, LessOrEqual)
}

// BeGreaterThan matches actual > expected.
func BeGreaterThan(expected any) Matcher {
	return ordering(">", expected, Greater)
}

// BeGreaterThanOrEqualTo matches actual >= expected.
func BeGreaterThanOrEqualTo(expected any) Matcher {
	return ordering(">=", expected, GreaterOrEqual)
}

// BeNumericallyEqualTo matches when the three-way comparison of
// actual and expected is zero.
func BeNumericallyEqualTo(expected any) Matcher {
	return ordering("==", expected, func(a, b any) (bool, error) {
		c, err := Compare(a, b)
		return c == 0, err
	})
}

// BeBetween matches lower <= actual <= upper.
func BeBetween(lower, upper any) Matcher {
	return &orderingMatcher{
		op:       "between",
		operands: []any{lower, upper},
		test: func(actual any) (bool, error) {
			return Between(actual, lower, upper)
		},
	}
}
