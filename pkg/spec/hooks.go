package spec

// HookLevel is one ancestor group's share of an example's hooks.
type HookLevel struct {
	Group  *Group
	Before []Hook
	After  []Hook
}

// HookLevels returns the hooks of every group from the root down
// to ex's own group, outermost first.
func HookLevels(ex *Example) []HookLevel {
	chain := lineage(ex.group)
	levels := make([]HookLevel, len(chain))
	for i, g := range chain {
		levels[i] = HookLevel{Group: g, Before: g.before, After: g.after}
	}
	return levels
}

// ResolveHooks returns the setup hooks that run before ex, outermost
// group first, and the teardown hooks that run after it, innermost
// group first. Within one group hooks keep declaration order.
func ResolveHooks(ex *Example) (setup, teardown []Hook) {
	levels := HookLevels(ex)
	for _, l := range levels {
		setup = append(setup, l.Before...)
	}
	return setup, Teardown(levels)
}

// Teardown flattens the after hooks of levels, innermost first.
func Teardown(levels []HookLevel) []Hook {
	var hooks []Hook
	for i := len(levels) - 1; i >= 0; i-- {
		hooks = append(hooks, levels[i].After...)
	}
	return hooks
}
