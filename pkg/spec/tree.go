// Package spec models a behavior specification as an explicit
// tree. Groups own nested groups, examples and hooks; examples
// hold a body that receives an Env. The tree is built once by a
// loading phase and is read-only while a runner walks it.
package spec

import (
	"fmt"
	"path/filepath"
	"runtime"

	"digital.vasic.specs/pkg/version"
)

// Hook is a setup or teardown callable inherited by every example
// beneath the group that declares it.
type Hook func(env *Env)

// Body is the executable part of an example.
type Body func(env *Env)

// entry keeps groups and examples in one declaration sequence.
type entry struct {
	group   *Group
	example *Example
}

// Group is a named node of the tree (describe/context).
type Group struct {
	label       string
	parent      *Group
	entries     []entry
	before      []Hook
	after       []Hook
	gate        version.Gate
	transparent bool
	location    string
	err         error
}

// NewRoot creates the root group of a tree.
func NewRoot() *Group {
	return &Group{transparent: true}
}

// Label returns the display label.
func (g *Group) Label() string { return g.label }

// Parent returns the owning group, or nil for the root.
func (g *Group) Parent() *Group { return g.parent }

// Location returns the file:line where the group was declared.
func (g *Group) Location() string { return g.location }

// Guard returns the group's own inclusion gate, if any.
func (g *Group) Guard() version.Gate { return g.gate }

// Groups returns the child groups in declaration order.
func (g *Group) Groups() []*Group {
	var out []*Group
	for _, e := range g.entries {
		if e.group != nil {
			out = append(out, e.group)
		}
	}
	return out
}

// Examples returns the group's own examples in declaration order.
func (g *Group) Examples() []*Example {
	var out []*Example
	for _, e := range g.entries {
		if e.example != nil {
			out = append(out, e.example)
		}
	}
	return out
}

// Describe declares a nested group and builds it with fn.
func (g *Group) Describe(label string, fn func(g *Group)) *Group {
	return g.nest(label, fn)
}

// Context is an alias of Describe for grouping by circumstance.
func (g *Group) Context(label string, fn func(g *Group)) *Group {
	return g.nest(label, fn)
}

func (g *Group) nest(label string, fn func(g *Group)) *Group {
	child := &Group{
		label:    label,
		parent:   g,
		location: callerLocation(3),
	}
	g.entries = append(g.entries, entry{group: child})
	if fn != nil {
		fn(child)
	}
	return child
}

// VersionIs declares an unlabeled group whose contents take part
// only when the target version lies in the range expression (see
// version.ParseRange). An invalid expression makes the tree fail
// validation.
func (g *Group) VersionIs(expr string, fn func(g *Group)) *Group {
	child := &Group{
		parent:      g,
		transparent: true,
		location:    callerLocation(2),
	}
	r, err := version.ParseRange(expr)
	if err != nil {
		child.err = err
	} else {
		child.gate = r
	}
	g.entries = append(g.entries, entry{group: child})
	if fn != nil {
		fn(child)
	}
	return child
}

// Gate restricts the group to targets the gate admits.
func (g *Group) Gate(gate version.Gate) *Group {
	g.gate = gate
	return g
}

// At overrides the recorded declaration location.
func (g *Group) At(location string) *Group {
	g.location = location
	return g
}

// BeforeEach adds a setup hook.
func (g *Group) BeforeEach(h Hook) *Group {
	g.before = append(g.before, h)
	return g
}

// AfterEach adds a teardown hook.
func (g *Group) AfterEach(h Hook) *Group {
	g.after = append(g.after, h)
	return g
}

// It declares an example.
func (g *Group) It(label string, body Body) *Example {
	ex := &Example{
		label:    label,
		body:     body,
		group:    g,
		location: callerLocation(2),
	}
	g.entries = append(g.entries, entry{example: ex})
	return ex
}

// Pending declares an example without a body. It is reported as
// skipped with the reason.
func (g *Group) Pending(label, reason string) *Example {
	ex := g.It(label, nil)
	ex.location = callerLocation(2)
	ex.pending = reason
	if ex.pending == "" {
		ex.pending = "not yet implemented"
	}
	return ex
}

// Example is one executable behavior check.
type Example struct {
	label    string
	body     Body
	group    *Group
	gate     version.Gate
	pending  string
	location string
}

// Label returns the display label.
func (e *Example) Label() string { return e.label }

// Group returns the owning group.
func (e *Example) Group() *Group { return e.group }

// Body returns the example body; nil for pending examples.
func (e *Example) Body() Body { return e.body }

// Location returns the file:line where the example was declared.
func (e *Example) Location() string { return e.location }

// Guard returns the example's own inclusion gate, if any.
func (e *Example) Guard() version.Gate { return e.gate }

// PendingReason returns the skip reason, or "" if the example
// runs.
func (e *Example) PendingReason() string { return e.pending }

// Gate restricts the example to targets the gate admits.
func (e *Example) Gate(gate version.Gate) *Example {
	e.gate = gate
	return e
}

// Skip marks the example as skipped with reason.
func (e *Example) Skip(reason string) *Example {
	if reason == "" {
		reason = "skipped"
	}
	e.pending = reason
	return e
}

// At overrides the recorded declaration location, for examples
// declared from data rather than Go source.
func (e *Example) At(location string) *Example {
	e.location = location
	return e
}

// ExcludedBy returns the first gate on the path from the root to
// the example that rejects target, or nil when the example is
// included. Gates beneath an excluding group are not evaluated.
func (e *Example) ExcludedBy(target version.Target) version.Gate {
	for _, g := range lineage(e.group) {
		if !version.Included(g.gate, target) {
			return g.gate
		}
	}
	if !version.Included(e.gate, target) {
		return e.gate
	}
	return nil
}

// Path returns the labels of the example's ancestor groups from
// the outermost inward. Unlabeled groups are omitted.
func Path(e *Example) []string {
	var labels []string
	for _, g := range lineage(e.group) {
		if !g.transparent {
			labels = append(labels, g.label)
		}
	}
	return labels
}

// lineage returns g and its ancestors ordered root first.
func lineage(g *Group) []*Group {
	var chain []*Group
	for cur := g; cur != nil; cur = cur.parent {
		chain = append(chain, cur)
	}
	for i, j := 0, len(chain)-1; i < j; i, j = i+1, j-1 {
		chain[i], chain[j] = chain[j], chain[i]
	}
	return chain
}

// Walk visits every example beneath root in declaration order,
// passing its zero-based declaration index.
func Walk(root *Group, fn func(index int, ex *Example)) {
	index := 0
	var visit func(g *Group)
	visit = func(g *Group) {
		for _, e := range g.entries {
			if e.example != nil {
				fn(index, e.example)
				index++
				continue
			}
			visit(e.group)
		}
	}
	visit(root)
}

// Unit returns the top-level node the example belongs to: its
// ancestor directly beneath the root, or the example's own group
// when it is declared on the root. Examples sharing a unit are
// run by the same worker.
func Unit(e *Example) *Group {
	chain := lineage(e.group)
	if len(chain) < 2 {
		return e.group
	}
	return chain[1]
}

func callerLocation(skip int) string {
	_, file, line, ok := runtime.Caller(skip)
	if !ok {
		return ""
	}
	return fmt.Sprintf("%s:%d", filepath.Base(file), line)
}
