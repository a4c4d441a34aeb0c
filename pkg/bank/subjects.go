package bank

import (
	"fmt"
	"sort"
	"sync"
)

// Subject is a named Go function a bank can call.
type Subject func(args ...any) (any, error)

// Subjects is a registry of named subjects. It is safe for
// concurrent use.
type Subjects struct {
	mu    sync.RWMutex
	funcs map[string]Subject
}

// NewSubjects creates an empty registry.
func NewSubjects() *Subjects {
	return &Subjects{funcs: make(map[string]Subject)}
}

// Register adds fn under name.
func (s *Subjects) Register(name string, fn Subject) error {
	if name == "" || fn == nil {
		return fmt.Errorf("subject needs a name and a function")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.funcs[name]; exists {
		return fmt.Errorf("subject already registered: %s", name)
	}
	s.funcs[name] = fn
	return nil
}

// MustRegister is Register that panics on error.
func (s *Subjects) MustRegister(name string, fn Subject) {
	if err := s.Register(name, fn); err != nil {
		panic(err)
	}
}

// Get returns the subject registered as name.
func (s *Subjects) Get(name string) (Subject, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	fn, ok := s.funcs[name]
	return fn, ok
}

// Names returns the registered names, sorted.
func (s *Subjects) Names() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	names := make([]string, 0, len(s.funcs))
	for name := range s.funcs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
