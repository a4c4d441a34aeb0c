package mock

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"digital.vasic.specs/pkg/fault"
	"digital.vasic.specs/pkg/matcher"
)

func TestExpectation_ExactlyTwice(t *testing.T) {
	tests := []struct {
		name       string
		calls      int
		unmet      int
		violations int
	}{
		{"one call is unmet", 1, 1, 0},
		{"two calls satisfy", 2, 0, 0},
		{"third call fails", 3, 0, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NewRegistry()
			m := r.New("counter")
			m.Expect("tick").Twice()

			var lastErr error
			for i := 0; i < tt.calls; i++ {
				_, lastErr = m.Send("tick")
			}

			assert.Len(t, r.Verify(), tt.unmet)
			assert.Len(t, r.Violations(), tt.violations)
			if tt.violations > 0 {
				assert.ErrorIs(t, lastErr, ErrUnexpectedCall)
				assert.Contains(t, lastErr.Error(),
					"expected exactly 2 times, received 3 times")
			}
		})
	}
}

func TestVerify_UnmetError(t *testing.T) {
	r := NewRegistry()
	m := r.New("logger")
	m.Expect("write").Twice()
	_, _ = m.Send("write")

	errs := r.Verify()
	require.Len(t, errs, 1)
	assert.ErrorIs(t, errs[0], ErrUnmetExpectation)

	var unmet *UnmetError
	require.True(t, errors.As(errs[0], &unmet))
	assert.Equal(t, "write", unmet.Method)
	assert.Equal(t, 1, unmet.Calls)
	assert.Equal(t,
		"mock 'logger' expected 'write' exactly 2 times, received 1 time",
		unmet.Error())
}

func TestSend_UndeclaredStrict(t *testing.T) {
	r := NewRegistry()
	m := r.New("strict")

	_, err := m.Send("missing", 1)

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnexpectedCall)
	assert.Contains(t, err.Error(), "'missing' with (1)")
	assert.Len(t, r.Violations(), 1)
}

func TestSend_UndeclaredPermissive(t *testing.T) {
	r := NewRegistry()
	m := r.New("loose", Permissive())

	v, err := m.Send("anything")

	assert.NoError(t, err)
	assert.Nil(t, v)
	assert.Empty(t, r.Violations())
	assert.Empty(t, r.Verify())
}

func TestSend_WrongArguments(t *testing.T) {
	r := NewRegistry()
	m := r.New("calc")
	m.Expect("add").With(1, 2).AndReturn(3)

	_, err := m.Send("add", 2, 2)

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrWrongArguments)
	assert.NotErrorIs(t, err, ErrUnexpectedCall)
	assert.Contains(t, err.Error(), "wrong arguments (2, 2)")
}

func TestSend_FirstDeclaredFirstMatched(t *testing.T) {
	r := NewRegistry()
	m := r.New("seq")
	m.Expect("next").AndReturn("first")
	m.Expect("next").AndReturn("second")

	v1, err := m.Send("next")
	require.NoError(t, err)
	v2, err := m.Send("next")
	require.NoError(t, err)

	assert.Equal(t, "first", v1)
	assert.Equal(t, "second", v2)
	assert.Empty(t, r.Verify())
}

func TestSend_ArgumentsSelectExpectation(t *testing.T) {
	r := NewRegistry()
	m := r.New("lookup")
	m.Stub("get").With("a").AndReturn(1)
	m.Stub("get").With("b").AndReturn(2)

	v, err := m.Send("get", "b")
	require.NoError(t, err)
	assert.Equal(t, 2, v)
}

func TestSend_MatcherArguments(t *testing.T) {
	r := NewRegistry()
	m := r.New("sink")
	m.Expect("put").With(matcher.BeGreaterThan(10))

	_, err := m.Send("put", 42)
	assert.NoError(t, err)
	assert.Empty(t, r.Verify())
}

func TestSend_AndCall(t *testing.T) {
	r := NewRegistry()
	m := r.New("doubler")
	m.Stub("double").AndCall(func(args ...any) (any, error) {
		return args[0].(int) * 2, nil
	})

	v, err := m.Send("double", 21)
	require.NoError(t, err)
	assert.Equal(t, 42, v)
}

func TestSend_AndRaise(t *testing.T) {
	r := NewRegistry()
	m := r.New("db")
	m.Expect("query").AndRaise(fault.New(fault.RuntimeError, "down"))

	_, err := m.Send("query")

	assert.ErrorIs(t, err, fault.RuntimeError)
	assert.Empty(t, r.Violations())
	assert.Empty(t, r.Verify())
}

func TestCountBounds(t *testing.T) {
	tests := []struct {
		name      string
		configure func(*Expectation)
		calls     int
		satisfied bool
	}{
		{"at least met", func(e *Expectation) { e.AtLeast(2) }, 3, true},
		{"at least unmet", func(e *Expectation) { e.AtLeast(2) }, 1, false},
		{"at most zero", func(e *Expectation) { e.AtMost(2) }, 0, true},
		{"any number", func(e *Expectation) { e.AnyNumberOfTimes() }, 0, true},
		{"times", func(e *Expectation) { e.Times(3) }, 3, true},
		{"once default", func(*Expectation) {}, 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NewRegistry()
			m := r.New("m")
			e := m.Expect("call")
			tt.configure(e)

			for i := 0; i < tt.calls; i++ {
				_, err := m.Send("call")
				require.NoError(t, err)
			}

			assert.Equal(t, tt.satisfied, e.Satisfied())
			assert.Equal(t, tt.calls, e.Calls())
		})
	}
}

func TestAtMost_ExtraCallIsViolation(t *testing.T) {
	r := NewRegistry()
	m := r.New("m")
	m.Expect("call").AtMost(1)

	_, err := m.Send("call")
	require.NoError(t, err)
	_, err = m.Send("call")

	assert.ErrorIs(t, err, ErrUnexpectedCall)
	assert.Contains(t, err.Error(), "at most 1 time")
}

func TestRespondsTo(t *testing.T) {
	r := NewRegistry()
	m := r.New("m", Permissive())
	m.Stub("to_str").AndReturn("x")

	assert.True(t, m.RespondsTo("to_str"))
	assert.False(t, m.RespondsTo("<=>"))
}

func TestMock_ParticipatesInComparison(t *testing.T) {
	r := NewRegistry()
	m := r.New("stringish")
	m.Expect("to_str").AndReturn("b")

	less, err := matcher.Less("a", m)

	require.NoError(t, err)
	assert.True(t, less)
	assert.Empty(t, r.Verify())
}

func TestMock_ToStrWrongTypeIsTypeError(t *testing.T) {
	r := NewRegistry()
	m := r.New("liar")
	m.Expect("to_str").AndReturn(1)

	_, err := matcher.Compare("a", m)
	assert.ErrorIs(t, err, fault.TypeError)
}

func TestCall_Generic(t *testing.T) {
	r := NewRegistry()
	m := r.New("typed")
	m.Stub("count").AndReturn(7)
	m.Stub("name").AndReturn(7)
	m.Stub("none")

	n, err := Call[int](m, "count")
	require.NoError(t, err)
	assert.Equal(t, 7, n)

	_, err = Call[string](m, "name")
	assert.ErrorIs(t, err, fault.TypeError)

	s, err := Call[string](m, "none")
	require.NoError(t, err)
	assert.Empty(t, s)
}

func TestRegistry_Discard(t *testing.T) {
	r := NewRegistry()
	m := r.New("m")
	m.Expect("never")
	_, _ = m.Send("other")

	r.Discard()

	assert.Empty(t, r.Mocks())
	assert.Empty(t, r.Verify())
	assert.Empty(t, r.Violations())
}

func TestRegistry_ConcurrentSends(t *testing.T) {
	r := NewRegistry()
	m := r.New("shared")
	e := m.Expect("hit").Times(50)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = m.Send("hit")
		}()
	}
	wg.Wait()

	assert.Equal(t, 50, e.Calls())
	assert.Empty(t, r.Verify())
}

func TestRegistry_MocksInCreationOrder(t *testing.T) {
	r := NewRegistry()
	a := r.New("a")
	b := r.New("b")

	assert.Equal(t, []*Mock{a, b}, r.Mocks())
	assert.Equal(t, "#<Mock 'a'>", a.String())
}

func TestSend_ArgumentMatcherMaySendToMocks(t *testing.T) {
	r := NewRegistry()
	oracle := r.New("oracle")
	oracle.Stub("allowed?").AndReturn(true)

	gate := r.New("gate")
	gate.Expect("open").
		With(matcher.Satisfy("allowed", func(v any) bool {
			ok, _ := oracle.Send("allowed?", v)
			return ok == true
		})).
		AndReturn("opened")

	type reply struct {
		v   any
		err error
	}
	done := make(chan reply, 1)
	go func() {
		v, err := gate.Send("open", "front door")
		done <- reply{v, err}
	}()

	select {
	case got := <-done:
		require.NoError(t, got.err)
		assert.Equal(t, "opened", got.v)
	case <-time.After(5 * time.Second):
		t.Fatal("send blocked while matching arguments")
	}
	assert.Empty(t, r.Verify())
}

func TestExpectation_CallsWhileSending(t *testing.T) {
	r := NewRegistry()
	m := r.New("counter")
	e := m.Stub("tick")

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			_, _ = m.Send("tick")
		}()
		go func() {
			defer wg.Done()
			_ = e.Calls()
			_ = e.Satisfied()
		}()
	}
	wg.Wait()

	assert.Equal(t, 20, e.Calls())
}
