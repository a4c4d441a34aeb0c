// Package scratch holds per-example transient state. The runner
// clears a Pad immediately before each example's setup hooks, so
// hooks and the body can observe side effects recorded earlier in
// the same example.
package scratch

import "sort"

// Pad is a bag of recorded values and keyed values. A Pad belongs
// to one worker and is never shared by concurrently running
// examples, so it does no locking.
type Pad struct {
	recorded []any
	values   map[string]any
}

// New creates an empty Pad.
func New() *Pad {
	return &Pad{values: make(map[string]any)}
}

// Record replaces the recorded sequence with the single value v.
func (p *Pad) Record(v any) {
	p.recorded = []any{v}
}

// Append adds v to the recorded sequence.
func (p *Pad) Append(v any) {
	p.recorded = append(p.recorded, v)
}

// Recorded returns the recorded value when exactly one was
// recorded, the whole sequence when several were appended, and
// nil when nothing was recorded.
func (p *Pad) Recorded() any {
	switch len(p.recorded) {
	case 0:
		return nil
	case 1:
		return p.recorded[0]
	}
	out := make([]any, len(p.recorded))
	copy(out, p.recorded)
	return out
}

// Set stores v under key.
func (p *Pad) Set(key string, v any) {
	p.values[key] = v
}

// Get returns the value stored under key.
func (p *Pad) Get(key string) (any, bool) {
	v, ok := p.values[key]
	return v, ok
}

// Keys returns the stored keys in sorted order.
func (p *Pad) Keys() []string {
	keys := make([]string, 0, len(p.values))
	for k := range p.values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Clear empties the Pad.
func (p *Pad) Clear() {
	p.recorded = nil
	clear(p.values)
}
