// Package corpus ships a small set of core-library behavior
// suites: Math.atan, String comparison, Process.gid and
// Module#extend_object. They exercise every part of the
// framework (nested groups, inherited hooks, mocks, scratch
// state, approximate and exception matchers, version guards)
// and double as the default suites of the specrun command.
package corpus

import (
	"digital.vasic.specs/pkg/registry"
	"digital.vasic.specs/pkg/spec"
)

// Tolerance is the absolute tolerance used by the approximate
// numeric expectations of the suites.
const Tolerance = 0.00003

// Suite names.
const (
	SuiteMath    = "core/math"
	SuiteString  = "core/string"
	SuiteProcess = "core/process"
	SuiteModule  = "core/module"
)

// Symbol is an interned name. Symbols order among themselves but
// never against strings.
type Symbol string

func (s Symbol) String() string { return ":" + string(s) }

// Suites returns the corpus suites.
func Suites() []*registry.Suite {
	return []*registry.Suite{
		{
			Name:        SuiteMath,
			Category:    "core",
			Description: "Math.atan over the real line",
			Declare:     declareMath,
		},
		{
			Name:        SuiteString,
			Category:    "core",
			Description: "String ordering and comparison operators",
			Declare:     declareString,
		},
		{
			Name:        SuiteProcess,
			Category:    "core",
			Description: "Process group identity",
			Declare:     declareProcess,
		},
		{
			Name:        SuiteModule,
			Category:    "core",
			Description: "Module#extend_object hook",
			Declare:     declareModule,
		},
	}
}

// Register adds the corpus suites to reg.
func Register(reg registry.Registry) error {
	for _, s := range Suites() {
		if err := reg.Register(s); err != nil {
			return err
		}
	}
	return nil
}

// Registry returns a new registry holding the corpus suites.
func Registry() *registry.DefaultRegistry {
	reg := registry.NewRegistry()
	if err := Register(reg); err != nil {
		panic(err)
	}
	return reg
}

// All returns one tree with every corpus suite.
func All() *spec.Group {
	root, err := registry.Build(Registry())
	if err != nil {
		panic(err)
	}
	return root
}

// MathSuite returns the Math.atan tree.
func MathSuite() *spec.Group { return tree(declareMath) }

// StringSuite returns the String comparison tree.
func StringSuite() *spec.Group { return tree(declareString) }

// ProcessSuite returns the Process.gid tree.
func ProcessSuite() *spec.Group { return tree(declareProcess) }

// ModuleSuite returns the Module#extend_object tree.
func ModuleSuite() *spec.Group { return tree(declareModule) }

func tree(declare func(*spec.Group)) *spec.Group {
	root := spec.NewRoot()
	declare(root)
	return root
}
