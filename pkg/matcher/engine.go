package matcher

import (
	"fmt"
	"sort"
	"sync"

	"digital.vasic.specs/pkg/fault"
)

// Factory builds a Matcher from a declarative Definition. It
// returns ErrUnsupported when the definition's operands do not fit
// the matcher's capability.
type Factory func(engine *Engine, def Definition) (Matcher, error)

// Engine builds matchers by name. It is safe for concurrent use.
type Engine struct {
	mu        sync.RWMutex
	factories map[string]Factory
	kinds     map[string]*fault.Kind
}

// NewEngine creates an Engine with the built-in matchers and
// error kinds registered.
func NewEngine() *Engine {
	e := &Engine{
		factories: make(map[string]Factory),
		kinds:     make(map[string]*fault.Kind),
	}
	e.registerDefaults()
	return e
}

// registerDefaults registers the built-in matchers and kinds.
func (e *Engine) registerDefaults() {
	equal := func(_ *Engine, d Definition) (Matcher, error) {
		return Equal(d.Value), nil
	}
	e.factories["eq"] = equal
	e.factories["equal"] = equal
	e.factories["be_identical"] = func(_ *Engine, d Definition) (Matcher, error) {
		return BeIdenticalTo(d.Value), nil
	}
	e.factories["be_close"] = buildClose
	e.factories["raise_error"] = buildRaise
	e.factories["be_true"] = func(*Engine, Definition) (Matcher, error) {
		return BeTrue(), nil
	}
	e.factories["be_false"] = func(*Engine, Definition) (Matcher, error) {
		return BeFalse(), nil
	}
	e.factories["be_nil"] = func(*Engine, Definition) (Matcher, error) {
		return BeNil(), nil
	}
	e.factories["be_kind_of"] = func(_ *Engine, d Definition) (Matcher, error) {
		if d.Value == nil {
			return nil, fmt.Errorf(
				"%w: be_kind_of needs a sample value", ErrUnsupported,
			)
		}
		return BeKindOf(d.Value), nil
	}
	e.factories["<"] = single(BeLessThan)
	e.factories["<="] = single(BeLessThanOrEqualTo)
	e.factories["=="] = single(BeNumericallyEqualTo)
	e.factories[">"] = single(BeGreaterThan)
	e.factories[">="] = single(BeGreaterThanOrEqualTo)
	e.factories["between"] = func(_ *Engine, d Definition) (Matcher, error) {
		if len(d.Values) != 2 {
			return nil, fmt.Errorf(
				"%w: between needs exactly 2 values, got %d",
				ErrUnsupported, len(d.Values),
			)
		}
		return BeBetween(d.Values[0], d.Values[1]), nil
	}

	for _, k := range []*fault.Kind{
		fault.Exception, fault.StandardError, fault.ArgumentError,
		fault.TypeError, fault.RuntimeError, fault.FrozenError,
		fault.NameError, fault.NoMethodError,
		fault.ZeroDivisionError, fault.RangeError,
		fault.FloatDomainError,
	} {
		e.kinds[k.Name()] = k
	}
}

func single(fn func(any) Matcher) Factory {
	return func(_ *Engine, d Definition) (Matcher, error) {
		if d.Value == nil {
			return nil, fmt.Errorf(
				"%w: %s needs a value", ErrUnsupported, d.Type,
			)
		}
		return fn(d.Value), nil
	}
}

func buildClose(_ *Engine, d Definition) (Matcher, error) {
	if _, ok := toFloat64(d.Value); !ok {
		return nil, fmt.Errorf(
			"%w: be_close needs a numeric value, got %s",
			ErrUnsupported, typeName(d.Value),
		)
	}
	if d.Tolerance < 0 {
		return nil, fmt.Errorf(
			"%w: negative tolerance %g", ErrUnsupported, d.Tolerance,
		)
	}
	return BeCloseTo(d.Value, d.Tolerance), nil
}

func buildRaise(e *Engine, d Definition) (Matcher, error) {
	var target error
	if d.Kind != "" {
		k, ok := e.Kind(d.Kind)
		if !ok {
			return nil, fmt.Errorf(
				"%w: unknown error kind %q", ErrUnsupported, d.Kind,
			)
		}
		target = k
	}
	if d.Message != "" {
		return RaiseErrorWithMessage(target, d.Message), nil
	}
	return RaiseError(target), nil
}

// Register adds a named matcher factory. Returns an error if the
// name is already registered.
func (e *Engine) Register(name string, factory Factory) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if _, exists := e.factories[name]; exists {
		return fmt.Errorf("matcher already registered: %s", name)
	}
	e.factories[name] = factory
	return nil
}

// RegisterKind makes a custom error kind available to
// raise_error definitions by name.
func (e *Engine) RegisterKind(k *fault.Kind) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if _, exists := e.kinds[k.Name()]; exists {
		return fmt.Errorf("error kind already registered: %s", k.Name())
	}
	e.kinds[k.Name()] = k
	return nil
}

// Kind looks up a registered error kind.
func (e *Engine) Kind(name string) (*fault.Kind, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	k, ok := e.kinds[name]
	return k, ok
}

// HasMatcher returns true if name has a registered factory.
func (e *Engine) HasMatcher(name string) bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	_, exists := e.factories[name]
	return exists
}

// Names returns the registered matcher names, sorted.
func (e *Engine) Names() []string {
	e.mu.RLock()
	defer e.mu.RUnlock()

	out := make([]string, 0, len(e.factories))
	for name := range e.factories {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// Build constructs the matcher a Definition describes.
func (e *Engine) Build(def Definition) (Matcher, error) {
	e.mu.RLock()
	factory, exists := e.factories[def.Type]
	e.mu.RUnlock()

	if !exists {
		return nil, fmt.Errorf(
			"%w: unknown matcher %q", ErrUnsupported, def.Type,
		)
	}
	return factory(e, def)
}

// Evaluate builds the matcher for def and evaluates actual,
// honouring def.Negate. A definition that cannot be built yields a
// Result carrying the build error.
func (e *Engine) Evaluate(def Definition, actual any) Result {
	m, err := e.Build(def)
	if err != nil {
		return Result{
			Matcher: def.Type,
			Actual:  render(actual),
			Negated: def.Negate,
			Message: err.Error(),
			Err:     err,
		}
	}
	return Evaluate(m, actual, def.Negate)
}
