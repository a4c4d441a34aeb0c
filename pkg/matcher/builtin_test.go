package matcher

import (
	"errors"
	"math"
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"digital.vasic.specs/pkg/fault"
)

// ==========================================================================
// Equality
// ==========================================================================

func TestEqual(t *testing.T) {
	tests := []struct {
		name     string
		expected any
		actual   any
		passed   bool
	}{
		{"same int", 3, 3, true},
		{"different int", 3, 4, false},
		{"different types", 1, int64(1), false},
		{"ordered slices", []int{1, 2}, []int{1, 2}, true},
		{"slice order matters", []int{1, 2}, []int{2, 1}, false},
		{"maps ignore order",
			map[string]int{"a": 1, "b": 2},
			map[string]int{"b": 2, "a": 1}, true},
		{"sets ignore order", NewSet(1, 2, 3), NewSet(3, 2, 1), true},
		{"sets differ", NewSet(1, 2), NewSet(1, 3), false},
		{"nil", nil, nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := Equal(tt.expected).Match(tt.actual)
			require.NoError(t, v.Err)
			assert.Equal(t, tt.passed, v.Passed)
		})
	}
}

func TestEqual_FailureIncludesDiff(t *testing.T) {
	v := Equal([]string{"a", "b"}).Match([]string{"a", "c"})

	assert.False(t, v.Passed)
	assert.Contains(t, v.Message, "diff (-expected +actual)")
}

func TestEqual_UnexportedFields(t *testing.T) {
	type point struct{ x, y int }

	assert.True(t, Equal(point{1, 2}).Match(point{1, 2}).Passed)
	assert.False(t, Equal(point{1, 2}).Match(point{2, 1}).Passed)
}

// ==========================================================================
// Identity
// ==========================================================================

func TestBeIdenticalTo(t *testing.T) {
	a, b := 1, 1
	pa := &a

	assert.True(t, BeIdenticalTo(pa).Match(pa).Passed)
	assert.False(t, BeIdenticalTo(pa).Match(&b).Passed)
}

func TestBeIdenticalTo_ValueTypesUnsupported(t *testing.T) {
	v := BeIdenticalTo(3).Match(3)

	require.Error(t, v.Err)
	assert.ErrorIs(t, v.Err, ErrUnsupported)
}

func TestBeIdenticalTo_SliceHeaders(t *testing.T) {
	s := []int{1, 2, 3}

	assert.True(t, BeIdenticalTo(s).Match(s).Passed)
	assert.False(t, BeIdenticalTo(s).Match(s[:2]).Passed)
}

// ==========================================================================
// Approximate
// ==========================================================================

func TestBeCloseTo_Atan(t *testing.T) {
	v := BeCloseTo(math.Pi/4, 1e-10).Match(math.Atan(1))
	assert.True(t, v.Passed)

	v = BeCloseTo(math.Pi/4, 1e-10).Match(math.Atan(1) + 2e-10)
	assert.False(t, v.Passed)
	assert.Contains(t, v.Message, "to be within")
}

func TestBeCloseTo_IntegerOperands(t *testing.T) {
	assert.True(t, BeCloseTo(10, 0.5).Match(10).Passed)
	assert.False(t, BeCloseTo(10, 0.5).Match(11).Passed)
}

func TestBeCloseTo_NonNumeric(t *testing.T) {
	v := BeCloseTo(1.0, 0.1).Match("1.0")
	assert.ErrorIs(t, v.Err, ErrUnsupported)
}

// ==========================================================================
// Exceptions
// ==========================================================================

func TestRaiseError_MatchingKind(t *testing.T) {
	m := RaiseError(fault.ArgumentError)

	v := m.Match(func() {
		panic(fault.New(fault.ArgumentError, "bad input"))
	})
	assert.True(t, v.Passed)
	assert.NoError(t, v.Err)
}

func TestRaiseError_SuperclassMatches(t *testing.T) {
	m := RaiseError(fault.RuntimeError)

	v := m.Match(func() error {
		return fault.New(fault.FrozenError, "can't modify frozen")
	})
	assert.True(t, v.Passed)
}

func TestRaiseError_NothingRaised(t *testing.T) {
	v := RaiseError(fault.ArgumentError).Match(func() {})

	assert.False(t, v.Passed)
	assert.NoError(t, v.Err)
	assert.Contains(t, v.Message, "nothing was raised")
}

func TestRaiseError_WrongKindPropagates(t *testing.T) {
	v := RaiseError(fault.ArgumentError).Match(func() error {
		return fault.New(fault.TypeError, "no implicit conversion")
	})

	require.Error(t, v.Err)
	assert.ErrorIs(t, v.Err, fault.TypeError)
	assert.Contains(t, v.Message, "TypeError (no implicit conversion)")
}

func TestRaiseError_PlainErrorIsStandardError(t *testing.T) {
	plain := func() error { return errors.New("plain") }

	assert.True(t, RaiseError(fault.StandardError).Match(plain).Passed)
	assert.Error(t, RaiseError(fault.ArgumentError).Match(plain).Err)
}

func TestRaiseError_AnyError(t *testing.T) {
	v := RaiseError(nil).Match(func() (any, error) {
		return nil, errors.New("anything")
	})
	assert.True(t, v.Passed)
}

func TestRaiseError_SentinelTarget(t *testing.T) {
	sentinel := errors.New("sentinel")

	v := RaiseError(sentinel).Match(func() error {
		return errors.Join(errors.New("other"), sentinel)
	})
	assert.True(t, v.Passed)
}

func TestRaiseErrorWithMessage(t *testing.T) {
	m := RaiseErrorWithMessage(fault.ArgumentError, "negative")

	assert.True(t, m.Match(func() {
		panic(fault.New(fault.ArgumentError, "negative radius"))
	}).Passed)

	v := m.Match(func() {
		panic(fault.New(fault.ArgumentError, "zero radius"))
	})
	assert.False(t, v.Passed)
	assert.NoError(t, v.Err)
}

func TestRaiseErrorMatching(t *testing.T) {
	m := RaiseErrorMatching(
		fault.RangeError, regexp.MustCompile(`^out of \d+$`),
	)

	assert.True(t, m.Match(func() error {
		return fault.New(fault.RangeError, "out of 10")
	}).Passed)
	assert.False(t, m.Match(func() error {
		return fault.New(fault.RangeError, "out of range")
	}).Passed)
}

func TestRaiseError_NotDeferred(t *testing.T) {
	v := RaiseError(nil).Match(42)
	assert.ErrorIs(t, v.Err, ErrUnsupported)
}

func TestRaiseError_NonErrorPanic(t *testing.T) {
	v := RaiseError(fault.RuntimeError).Match(func() { panic("boom") })
	assert.True(t, v.Passed)
}

// ==========================================================================
// Predicates
// ==========================================================================

func TestPredicates(t *testing.T) {
	var nilPtr *int
	var nilErr error

	assert.True(t, BeTrue().Match(true).Passed)
	assert.False(t, BeTrue().Match(1).Passed)
	assert.True(t, BeFalse().Match(false).Passed)
	assert.False(t, BeFalse().Match(nil).Passed)
	assert.True(t, BeNil().Match(nil).Passed)
	assert.True(t, BeNil().Match(nilPtr).Passed)
	assert.True(t, BeNil().Match(nilErr).Passed)
	assert.False(t, BeNil().Match(0).Passed)
}

func TestBeKindOf(t *testing.T) {
	assert.True(t, BeKindOf(0).Match(5).Passed)
	assert.False(t, BeKindOf(0).Match("5").Passed)

	errType := BeKindOf((*error)(nil))
	assert.True(t, errType.Match(errors.New("x")).Passed)
	assert.True(t, errType.Match(fault.New(fault.TypeError, "x")).Passed)
	assert.False(t, errType.Match(3).Passed)
}

func TestSatisfy(t *testing.T) {
	even := Satisfy("be even", func(a any) bool {
		n, ok := a.(int)
		return ok && n%2 == 0
	})

	assert.True(t, even.Match(4).Passed)
	v := even.Match(3)
	assert.False(t, v.Passed)
	assert.Equal(t, "expected 3 to be even", v.Message)
}

// ==========================================================================
// Ordering
// ==========================================================================

func TestOrderingMatchers(t *testing.T) {
	tests := []struct {
		name    string
		matcher Matcher
		actual  any
		passed  bool
	}{
		{"less", BeLessThan(5), 3, true},
		{"not less", BeLessThan(5), 5, false},
		{"less or equal", BeLessThanOrEqualTo(5), 5, true},
		{"greater", BeGreaterThan(1.5), 2, true},
		{"greater or equal", BeGreaterThanOrEqualTo(2), 1, false},
		{"numerically equal", BeNumericallyEqualTo(2), 2.0, true},
		{"between", BeBetween(1, 3), 2, true},
		{"outside", BeBetween(1, 3), 4, false},
		{"strings", BeLessThan("b"), "a", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := tt.matcher.Match(tt.actual)
			require.NoError(t, v.Err)
			assert.Equal(t, tt.passed, v.Passed)
		})
	}
}

func TestOrdering_IncomparableRaisesArgumentError(t *testing.T) {
	v := BeLessThan(symbol("b")).Match("a")

	require.Error(t, v.Err)
	assert.ErrorIs(t, v.Err, fault.ArgumentError)
}

// ==========================================================================
// Evaluate
// ==========================================================================

func TestEvaluate_Negation(t *testing.T) {
	r := Evaluate(Equal(3), 4, true)
	assert.True(t, r.Passed)
	assert.Equal(t, "not equal 3", r.Message)

	r = Evaluate(Equal(3), 3, true)
	assert.False(t, r.Passed)
	assert.Equal(t, "expected 3 not to equal 3", r.Message)
}

func TestEvaluate_ErrorWinsOverNegation(t *testing.T) {
	r := Evaluate(BeLessThan(symbol("b")), "a", true)

	assert.False(t, r.Passed)
	assert.ErrorIs(t, r.Err, fault.ArgumentError)
}

func TestEvaluate_DeferredComputationRunsOnce(t *testing.T) {
	calls := 0
	fn := func() { calls++ }

	r := Evaluate(RaiseError(nil), fn, true)

	assert.True(t, r.Passed)
	assert.Equal(t, 1, calls)
	assert.Equal(t, "<deferred computation>", r.Actual)
}

func TestEvaluate_RecordsCapability(t *testing.T) {
	r := Evaluate(BeCloseTo(1.0, 0.1), 1.05, false)

	assert.True(t, r.Passed)
	assert.Equal(t, "approximate", r.Capability)
	assert.Equal(t, "be within 0.1 of 1", r.Matcher)
}
