// Package registry holds named specification suites and hands
// them out in dependency order. A suite declares its groups onto
// a tree root; selecting a suite also selects the suites it
// depends on.
package registry

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"digital.vasic.specs/pkg/spec"
)

// ErrNotFound is returned for unknown suite names.
var ErrNotFound = errors.New("suite not found")

// Suite is a named, self-contained set of groups.
type Suite struct {
	// Name identifies the suite, e.g. "core/math".
	Name string

	// Category groups related suites, e.g. "core".
	Category string

	// Description is a one-line summary.
	Description string

	// Dependencies name suites that must be declared first.
	Dependencies []string

	// Declare adds the suite's groups beneath root.
	Declare func(root *spec.Group)
}

// Registry defines the interface for managing suites.
type Registry interface {
	// Register adds a suite.
	Register(s *Suite) error

	// Get retrieves a suite by name.
	Get(name string) (*Suite, error)

	// List returns all registered suites sorted by name.
	List() []*Suite

	// ListByCategory returns suites in the given category.
	ListByCategory(category string) []*Suite

	// GetDependencyOrder returns every suite in topological
	// (dependency) order.
	GetDependencyOrder() ([]*Suite, error)

	// Resolve returns the named suites plus everything they
	// depend on, in dependency order.
	Resolve(names ...string) ([]*Suite, error)

	// ValidateDependencies checks that every dependency
	// referenced by a suite is also registered.
	ValidateDependencies() error

	// Clear removes all suites.
	Clear()

	// Count returns the number of registered suites.
	Count() int
}

// DefaultRegistry is the standard Registry implementation.
// It is safe for concurrent use.
type DefaultRegistry struct {
	mu     sync.RWMutex
	suites map[string]*Suite
}

// NewRegistry creates a new, empty DefaultRegistry.
func NewRegistry() *DefaultRegistry {
	return &DefaultRegistry{suites: make(map[string]*Suite)}
}

// Default is the package-level default registry instance.
var Default = NewRegistry()

// Register adds a suite. Returns an error if the suite has no
// name or declaration, or if the name is already taken.
func (r *DefaultRegistry) Register(s *Suite) error {
	if s == nil || s.Name == "" || s.Declare == nil {
		return fmt.Errorf("suite needs a name and a declaration")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.suites[s.Name]; exists {
		return fmt.Errorf("suite already registered: %s", s.Name)
	}
	r.suites[s.Name] = s
	return nil
}

// Get retrieves a suite by name.
func (r *DefaultRegistry) Get(name string) (*Suite, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	s, exists := r.suites[name]
	if !exists {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	return s, nil
}

// List returns all registered suites sorted by name.
func (r *DefaultRegistry) List() []*Suite {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*Suite, 0, len(r.suites))
	for _, s := range r.suites {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Name < out[j].Name
	})
	return out
}

// ListByCategory returns suites whose category matches, sorted
// by name.
func (r *DefaultRegistry) ListByCategory(category string) []*Suite {
	var out []*Suite
	for _, s := range r.List() {
		if s.Category == category {
			out = append(out, s)
		}
	}
	return out
}

// GetDependencyOrder returns suites in topological order using
// Kahn's algorithm. Returns an error if a dependency cycle is
// detected.
func (r *DefaultRegistry) GetDependencyOrder() ([]*Suite, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return topologicalSort(r.suites)
}

// Resolve returns the named suites and their transitive
// dependencies in dependency order. With no names it resolves
// every registered suite.
func (r *DefaultRegistry) Resolve(names ...string) ([]*Suite, error) {
	if len(names) == 0 {
		return r.GetDependencyOrder()
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	picked := make(map[string]*Suite)
	pending := append([]string{}, names...)
	for len(pending) > 0 {
		name := pending[0]
		pending = pending[1:]
		if _, seen := picked[name]; seen {
			continue
		}
		s, exists := r.suites[name]
		if !exists {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, name)
		}
		picked[name] = s
		pending = append(pending, s.Dependencies...)
	}
	return topologicalSort(picked)
}

// ValidateDependencies checks that every dependency referenced
// by a registered suite is also registered. Returns the first
// missing dependency found.
func (r *DefaultRegistry) ValidateDependencies() error {
	for _, s := range r.List() {
		for _, dep := range s.Dependencies {
			if _, err := r.Get(dep); err != nil {
				return fmt.Errorf(
					"suite %s has unregistered dependency: %s",
					s.Name, dep,
				)
			}
		}
	}
	return nil
}

// Clear removes all suites.
func (r *DefaultRegistry) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.suites = make(map[string]*Suite)
}

// Count returns the number of registered suites.
func (r *DefaultRegistry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.suites)
}

// Build resolves the named suites in reg and declares them, in
// dependency order, beneath a new root.
func Build(reg Registry, names ...string) (*spec.Group, error) {
	if err := reg.ValidateDependencies(); err != nil {
		return nil, err
	}
	suites, err := reg.Resolve(names...)
	if err != nil {
		return nil, err
	}
	root := spec.NewRoot()
	for _, s := range suites {
		s.Declare(root)
	}
	return root, nil
}
