package matcher

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"digital.vasic.specs/pkg/fault"
)

func TestAnd(t *testing.T) {
	m := And(BeGreaterThan(1), BeLessThan(10))

	assert.True(t, m.Match(5).Passed)
	v := m.Match(12)
	assert.False(t, v.Passed)
	assert.Equal(t, "expected 12 to be < 10", v.Message)
	assert.Equal(t, "be > 1 and be < 10", m.Describe())
}

func TestOr(t *testing.T) {
	m := Or(Equal(1), Equal(2))

	assert.True(t, m.Match(2).Passed)
	v := m.Match(3)
	assert.False(t, v.Passed)
	assert.Contains(t, v.Message, "none of 2 matchers passed")
}

func TestComposite_ErrorStopsEvaluation(t *testing.T) {
	m := Or(BeLessThan(symbol("x")), Equal("a"))

	v := m.Match("a")
	assert.ErrorIs(t, v.Err, fault.ArgumentError)
}

func TestComposite_Capability(t *testing.T) {
	assert.Equal(t, CapComposite, And().Capability())
	assert.True(t, And().Match(1).Passed)
	assert.False(t, Or().Match(1).Passed)
}
