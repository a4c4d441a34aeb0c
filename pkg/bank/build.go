package bank

import (
	"errors"
	"fmt"
	"strings"

	"digital.vasic.specs/pkg/fault"
	"digital.vasic.specs/pkg/matcher"
	"digital.vasic.specs/pkg/spec"
	"digital.vasic.specs/pkg/version"
)

// Build turns the loaded files into a new spec tree.
func (b *Bank) Build(subjects *Subjects, engine *matcher.Engine) (*spec.Group, error) {
	root := spec.NewRoot()
	if err := b.Attach(root, subjects, engine); err != nil {
		return nil, err
	}
	return root, nil
}

// Attach declares the groups of every loaded file beneath root.
// Unknown subjects, unbuildable matchers and bad version ranges
// are all reported together.
func (b *Bank) Attach(root *spec.Group, subjects *Subjects, engine *matcher.Engine) error {
	if engine == nil {
		engine = matcher.NewEngine()
	}
	if subjects == nil {
		subjects = NewSubjects()
	}
	bld := &builder{subjects: subjects, engine: engine}
	for _, f := range b.Files() {
		for i := range f.Groups {
			bld.group(root, &f.Groups[i], fmt.Sprintf("%s: groups[%d]", f.Name, i))
		}
	}
	if len(bld.errs) > 0 {
		return fmt.Errorf("%w: %w", ErrInvalidBank, errors.Join(bld.errs...))
	}
	return nil
}

type builder struct {
	subjects *Subjects
	engine   *matcher.Engine
	errs     []error
}

func (b *builder) fail(where, format string, args ...any) {
	b.errs = append(b.errs, fmt.Errorf("%s: %s", where, fmt.Sprintf(format, args...)))
}

func (b *builder) group(parent *spec.Group, def *GroupDef, where string) {
	parent.Describe(def.Describe, func(g *spec.Group) {
		g.At(where)
		if gate := b.gate(def.Version, def.Platform, def.Features, where); gate != nil {
			g.Gate(gate)
		}
		for i, st := range def.Before {
			if h := b.step(st, fmt.Sprintf("%s.before[%d]", where, i)); h != nil {
				g.BeforeEach(h)
			}
		}
		for i, st := range def.After {
			if h := b.step(st, fmt.Sprintf("%s.after[%d]", where, i)); h != nil {
				g.AfterEach(h)
			}
		}
		for i := range def.Examples {
			b.example(g, &def.Examples[i], fmt.Sprintf("%s.examples[%d]", where, i))
		}
		for i := range def.Groups {
			b.group(g, &def.Groups[i], fmt.Sprintf("%s.groups[%d]", where, i))
		}
	})
}

func (b *builder) gate(expr string, platforms, features []string, where string) version.Gate {
	var gates []version.Gate
	if expr != "" {
		r, err := version.ParseRange(expr)
		if err != nil {
			b.errs = append(b.errs, fmt.Errorf("%s: %w", where, err))
		} else {
			gates = append(gates, r)
		}
	}
	if len(platforms) > 0 {
		gates = append(gates, version.OnPlatform(platforms...))
	}
	for _, f := range features {
		gates = append(gates, version.WithFeature(f))
	}
	switch len(gates) {
	case 0:
		return nil
	case 1:
		return gates[0]
	}
	return version.All(gates...)
}

func (b *builder) step(def StepDef, where string) spec.Hook {
	subject, ok := b.subjects.Get(def.Subject)
	if !ok {
		b.fail(where, "unknown subject %q", def.Subject)
		return nil
	}
	args, record := def.Args, def.Record
	return func(env *spec.Env) {
		v, err := subject(resolveArgs(env, args)...)
		env.Must(err)
		if record != "" {
			env.Scratch().Set(record, v)
		} else {
			env.Scratch().Append(v)
		}
	}
}

func (b *builder) example(g *spec.Group, def *ExampleDef, where string) {
	gate := b.gate(def.Version, nil, nil, where)

	if def.Pending != "" {
		ex := g.Pending(def.It, def.Pending).At(where)
		if gate != nil {
			ex.Gate(gate)
		}
		return
	}

	subject, ok := b.subjects.Get(def.Subject)
	if !ok {
		b.fail(where, "unknown subject %q", def.Subject)
		return
	}

	var (
		m      matcher.Matcher
		negate bool
	)
	if def.Expect != nil {
		built, err := b.engine.Build(*def.Expect)
		if err != nil {
			b.errs = append(b.errs, fmt.Errorf("%s: %w", where, err))
			return
		}
		m, negate = built, def.Expect.Negate
	}

	args := def.Args
	ex := g.It(def.It, func(env *spec.Env) {
		resolved := resolveArgs(env, args)
		call := func() (any, error) { return subject(resolved...) }

		if m == nil {
			_, err := call()
			env.Must(err)
			return
		}

		var actual any = call
		if m.Capability() != matcher.CapException {
			v, err := call()
			env.Must(err)
			actual = v
		}
		if negate {
			env.Expect(actual).NotTo(m)
		} else {
			env.Expect(actual).To(m)
		}
	})
	ex.At(where)
	if gate != nil {
		ex.Gate(gate)
	}
}

// resolveArgs replaces "$name" arguments with scratch values.
func resolveArgs(env *spec.Env, args []any) []any {
	out := make([]any, len(args))
	for i, a := range args {
		s, ok := a.(string)
		if !ok || !strings.HasPrefix(s, "$") || len(s) == 1 {
			out[i] = a
			continue
		}
		v, found := env.Scratch().Get(s[1:])
		if !found {
			env.Raise(fault.New(fault.NameError, "undefined scratch value %q", s[1:]))
		}
		out[i] = v
	}
	return out
}
