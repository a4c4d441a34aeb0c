package spec

import (
	"errors"
	"fmt"
)

// ErrMalformedTree marks a tree the runner cannot execute. It is a
// defect of the loading phase, reported before any example runs.
var ErrMalformedTree = errors.New("malformed spec tree")

// Validate checks the structural invariants of the tree rooted at
// root and returns every violation joined into one error.
func Validate(root *Group) error {
	if root == nil {
		return fmt.Errorf("%w: nil root", ErrMalformedTree)
	}
	if root.parent != nil {
		return fmt.Errorf(
			"%w: root group %q has a parent",
			ErrMalformedTree, root.label,
		)
	}

	v := &validator{
		groups:   make(map[*Group]bool),
		examples: make(map[*Example]bool),
	}
	v.group(root, "")
	return errors.Join(v.errs...)
}

type validator struct {
	groups   map[*Group]bool
	examples map[*Example]bool
	errs     []error
}

func (v *validator) fail(format string, args ...any) {
	v.errs = append(v.errs, fmt.Errorf(
		"%w: "+format, append([]any{ErrMalformedTree}, args...)...,
	))
}

func (v *validator) group(g *Group, where string) {
	if v.groups[g] {
		v.fail("group %q declared twice (%s)", g.label, where)
		return
	}
	v.groups[g] = true

	if g.err != nil {
		v.fail("%s: %v", describeAt(where, g.location), g.err)
	}
	if !g.transparent && g.label == "" {
		v.fail("%s: group without a label", describeAt(where, g.location))
	}
	for i, h := range g.before {
		if h == nil {
			v.fail("%s: before hook %d is nil", groupName(g, where), i)
		}
	}
	for i, h := range g.after {
		if h == nil {
			v.fail("%s: after hook %d is nil", groupName(g, where), i)
		}
	}

	for _, e := range g.entries {
		switch {
		case e.group != nil:
			if e.group.parent != g {
				v.fail(
					"group %q is not owned by %s",
					e.group.label, groupName(g, where),
				)
			}
			v.group(e.group, groupName(g, where))
		case e.example != nil:
			v.example(e.example, g, groupName(g, where))
		default:
			v.fail("%s: empty entry", groupName(g, where))
		}
	}
}

func (v *validator) example(ex *Example, owner *Group, where string) {
	if v.examples[ex] {
		v.fail("example %q declared twice in %s", ex.label, where)
		return
	}
	v.examples[ex] = true

	if ex.group != owner {
		v.fail("example %q is not owned by %s", ex.label, where)
	}
	if ex.label == "" {
		v.fail("%s: example without a label",
			describeAt(where, ex.location))
	}
	if ex.body == nil && ex.pending == "" {
		v.fail("example %q in %s has no body and is not pending",
			ex.label, where)
	}
}

func groupName(g *Group, where string) string {
	switch {
	case g.parent == nil:
		return "root"
	case g.transparent:
		return fmt.Sprintf("gated group in %s", where)
	}
	return fmt.Sprintf("group %q", g.label)
}

func describeAt(where, location string) string {
	if location == "" {
		return where
	}
	return fmt.Sprintf("%s at %s", where, location)
}
