package spec

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"digital.vasic.specs/pkg/fault"
	"digital.vasic.specs/pkg/matcher"
	"digital.vasic.specs/pkg/mock"
)

func newTestEnv(t *testing.T) *Env {
	t.Helper()
	ex := NewRoot().It("example", noop)
	return NewEnv(t.Context(), ex, nil, nil)
}

func TestEnv_FailuresAccumulate(t *testing.T) {
	env := newTestEnv(t)

	err := Capture(func() {
		env.Expect(1).To(matcher.Equal(2))
		env.Expect("a").To(matcher.Equal("a"))
		env.Expect(true).To(matcher.BeFalse())
	})

	require.NoError(t, err)
	assert.Len(t, env.Assertions(), 3)
	failures := env.Failures()
	require.Len(t, failures, 2)
	assert.Contains(t, failures[0], "expected 1 to equal 2")
	assert.Contains(t, failures[0], "env_test.go:")
	assert.Contains(t, failures[1], "expected true to be false")
}

func TestEnv_NegatedExpectation(t *testing.T) {
	env := newTestEnv(t)

	assert.True(t, env.Expect(1).NotTo(matcher.Equal(2)))
	assert.False(t, env.Expect(1).ToNot(matcher.Equal(1)))
	assert.Len(t, env.Failures(), 1)
}

func TestEnv_UndecidableExpectationAborts(t *testing.T) {
	env := newTestEnv(t)
	reached := false

	err := Capture(func() {
		env.Expect("a").To(matcher.BeLessThan(symbolValue("b")))
		reached = true
	})

	require.Error(t, err)
	assert.ErrorIs(t, err, fault.ArgumentError)
	assert.False(t, reached)
	assert.Empty(t, env.Failures())
}

type symbolValue string

func TestEnv_RaiseAndMust(t *testing.T) {
	env := newTestEnv(t)
	boom := errors.New("boom")

	assert.ErrorIs(t, Capture(func() { env.Raise(boom) }), boom)
	assert.ErrorIs(t, Capture(func() { env.Must(boom) }), boom)
	assert.NoError(t, Capture(func() { env.Must(nil) }))
	assert.ErrorIs(t,
		Capture(func() { env.Raise(nil) }), fault.RuntimeError)
}

func TestCapture_ConvertsPanics(t *testing.T) {
	err := Capture(func() { panic("kaboom") })
	assert.ErrorIs(t, err, fault.RuntimeError)
	assert.Contains(t, err.Error(), "kaboom")

	typed := fault.New(fault.ZeroDivisionError, "divided by 0")
	assert.Same(t, typed, Capture(func() { panic(typed) }))
}

func TestEnv_Fail(t *testing.T) {
	env := newTestEnv(t)
	env.Fail("custom %d", 1)

	assert.Equal(t, []string{"custom 1"}, env.Failures())
}

func TestEnv_SealDropsRecords(t *testing.T) {
	env := newTestEnv(t)
	env.Seal()

	env.Fail("late")
	env.Expect(1).To(matcher.Equal(2))

	assert.Empty(t, env.Failures())
	assert.Empty(t, env.Assertions())
}

func TestEnv_Observe(t *testing.T) {
	env := newTestEnv(t)
	var seen []bool
	env.Observe(func(r matcher.Result) { seen = append(seen, r.Passed) })

	env.Expect(1).To(matcher.Equal(1))
	env.Expect(1).To(matcher.Equal(2))

	assert.Equal(t, []bool{true, false}, seen)
}

func TestEnv_MockAndScratch(t *testing.T) {
	env := newTestEnv(t)

	m := env.Mock("collab", mock.Permissive())
	env.Scratch().Record("x")

	assert.Equal(t, []*mock.Mock{m}, env.Mocks().Mocks())
	assert.Equal(t, "x", env.Scratch().Recorded())
	assert.Equal(t, "example", env.Label())
	assert.NotNil(t, env.Context())
}

func TestEnv_ExpectationErrorCarriesLocation(t *testing.T) {
	env := newTestEnv(t)

	err := Capture(func() {
		env.Expect(func() error {
			return fault.New(fault.TypeError, "bad operand")
		}).To(matcher.RaiseError(fault.ArgumentError))
	})

	var expErr *ExpectationError
	require.ErrorAs(t, err, &expErr)
	assert.ErrorIs(t, err, fault.TypeError)
	assert.Contains(t, err.Error(),
		"expected raise ArgumentError, got TypeError (bad operand)")
	assert.Contains(t, err.Error(), "env_test.go:")
}

func TestEnv_DefaultMockOptions(t *testing.T) {
	env := newTestEnv(t)
	env.DefaultMockOptions(mock.Permissive())

	m := env.Mock("loose")
	_, err := m.Send("anything")

	assert.NoError(t, err)
}
