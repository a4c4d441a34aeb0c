package spec

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"digital.vasic.specs/pkg/version"
)

func noop(*Env) {}

func sampleTree() *Group {
	root := NewRoot()
	root.Describe("Math", func(g *Group) {
		g.It("adds", noop)
		g.Context("with floats", func(g *Group) {
			g.It("rounds", noop)
		})
		g.It("subtracts", noop)
	})
	root.Describe("String", func(g *Group) {
		g.Pending("compares", "")
	})
	return root
}

func TestWalk_DeclarationOrder(t *testing.T) {
	var labels []string
	var indices []int
	Walk(sampleTree(), func(i int, ex *Example) {
		labels = append(labels, ex.Label())
		indices = append(indices, i)
	})

	assert.Equal(t,
		[]string{"adds", "rounds", "subtracts", "compares"}, labels)
	assert.Equal(t, []int{0, 1, 2, 3}, indices)
}

func TestPath_SkipsUnlabeledGroups(t *testing.T) {
	root := NewRoot()
	var ex *Example
	root.Describe("Module", func(g *Group) {
		g.VersionIs("1.9", func(g *Group) {
			g.Describe("#extend", func(g *Group) {
				ex = g.It("extends", noop)
			})
		})
	})

	assert.Equal(t, []string{"Module", "#extend"}, Path(ex))
}

func TestGroup_Accessors(t *testing.T) {
	root := sampleTree()

	groups := root.Groups()
	require.Len(t, groups, 2)
	assert.Equal(t, "Math", groups[0].Label())
	assert.Same(t, root, groups[0].Parent())
	assert.Len(t, groups[0].Examples(), 2)
	assert.Len(t, groups[0].Groups(), 1)
	assert.Contains(t, groups[0].Location(), "tree_test.go:")
}

func TestPending(t *testing.T) {
	root := NewRoot()
	ex := root.Pending("later", "")

	assert.Nil(t, ex.Body())
	assert.Equal(t, "not yet implemented", ex.PendingReason())
	assert.Contains(t, ex.Location(), "tree_test.go:")
}

func TestExample_Skip(t *testing.T) {
	root := NewRoot()
	ex := root.It("flaky", noop).Skip("platform specific")

	assert.Equal(t, "platform specific", ex.PendingReason())
	assert.NotNil(t, ex.Body())
}

func TestExample_SkipWithoutReason(t *testing.T) {
	root := NewRoot()
	ex := root.It("flaky", noop).Skip("")

	assert.Equal(t, "skipped", ex.PendingReason())
}

func TestAt_OverridesLocation(t *testing.T) {
	root := NewRoot()
	g := root.Describe("loaded", nil).At("bank: groups[0]")
	ex := g.It("from data", noop).At("bank: groups[0].examples[0]")

	assert.Equal(t, "bank: groups[0]", g.Location())
	assert.Equal(t, "bank: groups[0].examples[0]", ex.Location())
}

func TestExcludedBy(t *testing.T) {
	target, err := version.NewTarget("1.8.7", "linux")
	require.NoError(t, err)

	root := NewRoot()
	var old, modern, linuxOnly, windowsOnly *Example
	root.Describe("Gates", func(g *Group) {
		g.VersionIs("...1.9", func(g *Group) {
			old = g.It("old", noop)
		})
		g.VersionIs("1.9", func(g *Group) {
			modern = g.It("modern", noop)
		})
		linuxOnly = g.It("linux", noop).Gate(version.OnPlatform("linux"))
		windowsOnly = g.It("windows", noop).
			Gate(version.OnPlatform("windows"))
	})

	assert.Nil(t, old.ExcludedBy(target))
	assert.Nil(t, linuxOnly.ExcludedBy(target))
	assert.NotNil(t, modern.ExcludedBy(target))
	assert.Equal(t, "version >= 1.9", modern.ExcludedBy(target).String())
	assert.NotNil(t, windowsOnly.ExcludedBy(target))
}

type countingGate struct{ calls *int }

func (g countingGate) Admits(version.Target) bool {
	*g.calls++
	return true
}

func (g countingGate) String() string { return "counting" }

func TestExcludedBy_StopsAtExcludingGroup(t *testing.T) {
	calls := 0
	root := NewRoot()
	var ex *Example
	root.Describe("outer", func(g *Group) {
		g.Gate(version.Since("9.0"))
		g.Describe("inner", func(g *Group) {
			g.Gate(countingGate{calls: &calls})
			ex = g.It("never", noop)
		})
	})

	target, err := version.NewTarget("1.0", "linux")
	require.NoError(t, err)

	assert.NotNil(t, ex.ExcludedBy(target))
	assert.Zero(t, calls)
}

func TestUnit(t *testing.T) {
	root := NewRoot()
	var nested, top *Example
	outer := root.Describe("outer", func(g *Group) {
		g.Describe("inner", func(g *Group) {
			nested = g.It("deep", noop)
		})
	})
	top = root.It("top", noop)

	assert.Same(t, outer, Unit(nested))
	assert.Same(t, root, Unit(top))
}
