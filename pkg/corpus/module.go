package corpus

import (
	"fmt"
	"slices"

	"digital.vasic.specs/pkg/fault"
	"digital.vasic.specs/pkg/matcher"
	"digital.vasic.specs/pkg/scratch"
	"digital.vasic.specs/pkg/spec"
)

// Method is a callable defined on a module or an object.
type Method func(self *Object, args ...any) (any, error)

// ExtendHook replaces a module's extend_object. super runs the
// default behavior.
type ExtendHook func(obj *Object, super func() error) error

// Module is a named bag of methods and constants that objects can
// be extended with.
type Module struct {
	name      string
	methods   map[string]Method
	constants map[string]any
	private   map[string]bool
	hook      ExtendHook
	intercept matcher.Receiver
}

// NewModule creates an empty module. An empty name renders as an
// anonymous module.
func NewModule(name string) *Module {
	return &Module{
		name:      name,
		methods:   make(map[string]Method),
		constants: make(map[string]any),
		private:   make(map[string]bool),
	}
}

func (m *Module) String() string {
	if m.name == "" {
		return "#<Module>"
	}
	return m.name
}

// Define adds an instance method.
func (m *Module) Define(name string, fn Method) *Module {
	m.methods[name] = fn
	return m
}

// Const sets a constant.
func (m *Module) Const(name string, v any) *Module {
	m.constants[name] = v
	return m
}

// MakePrivate hides method from public calls.
func (m *Module) MakePrivate(method string) *Module {
	m.private[method] = true
	return m
}

// OnExtendObject overrides extend_object.
func (m *Module) OnExtendObject(hook ExtendHook) *Module {
	m.hook = hook
	return m
}

// Intercept routes the module's own messages to r whenever r
// responds to them, the way a partial mock replaces a method on a
// real object.
func (m *Module) Intercept(r matcher.Receiver) *Module {
	m.intercept = r
	return m
}

// RespondsTo reports whether the module answers method.
func (m *Module) RespondsTo(method string) bool {
	if m.intercept != nil && m.intercept.RespondsTo(method) {
		return true
	}
	return method == "extend_object"
}

// Send delivers method regardless of its visibility.
func (m *Module) Send(method string, args ...any) (any, error) {
	if m.intercept != nil && m.intercept.RespondsTo(method) {
		return m.intercept.Send(method, args...)
	}
	if method != "extend_object" {
		return nil, fault.New(
			fault.NoMethodError, "undefined method `%s' for %s", method, m,
		)
	}
	if len(args) != 1 {
		return nil, fault.New(
			fault.ArgumentError,
			"wrong number of arguments (given %d, expected 1)", len(args),
		)
	}
	obj, ok := args[0].(*Object)
	if !ok {
		return nil, fault.New(
			fault.TypeError, "wrong argument type %T (expected Object)", args[0],
		)
	}
	super := func() error { return m.extendObject(obj) }
	if m.hook != nil {
		return obj, m.hook(obj, super)
	}
	return obj, super()
}

// Call delivers a public message. Private methods raise
// NoMethodError.
func (m *Module) Call(method string, args ...any) (any, error) {
	if m.private[method] {
		return nil, fault.New(
			fault.NoMethodError,
			"private method `%s' called for %s", method, m,
		)
	}
	return m.Send(method, args...)
}

// extendObject adds the module's methods and constants to obj's
// singleton class.
func (m *Module) extendObject(obj *Object) error {
	if obj.frozen {
		return fault.New(fault.FrozenError, "can't modify frozen object: %s", obj)
	}
	if !obj.KindOf(m) {
		obj.modules = append(obj.modules, m)
	}
	return nil
}

// Object is a plain object with a singleton class.
type Object struct {
	name    string
	frozen  bool
	modules []*Module
}

// NewObject creates an unfrozen object.
func NewObject(name string) *Object {
	return &Object{name: name}
}

func (o *Object) String() string {
	return fmt.Sprintf("#<Object %s>", o.name)
}

// Freeze makes the object immutable.
func (o *Object) Freeze() *Object {
	o.frozen = true
	return o
}

// Frozen reports whether Freeze was called.
func (o *Object) Frozen() bool { return o.frozen }

// Extend calls extend_object on each module in turn.
func (o *Object) Extend(mods ...*Module) error {
	for _, m := range mods {
		if _, err := m.Send("extend_object", o); err != nil {
			return err
		}
	}
	return nil
}

// KindOf reports whether the object was extended with m.
func (o *Object) KindOf(m *Module) bool {
	return slices.Contains(o.modules, m)
}

// Call invokes a method gained through extension. The most
// recently added module wins.
func (o *Object) Call(method string, args ...any) (any, error) {
	for _, m := range slices.Backward(o.modules) {
		if fn, ok := m.methods[method]; ok {
			return fn(o, args...)
		}
	}
	return nil, fault.New(
		fault.NoMethodError, "undefined method `%s' for %s", method, o,
	)
}

// SingletonConst looks up a constant through the singleton class.
func (o *Object) SingletonConst(name string) (any, error) {
	for _, m := range slices.Backward(o.modules) {
		if v, ok := m.constants[name]; ok {
			return v, nil
		}
	}
	return nil, fault.New(fault.NameError, "uninitialized constant %s", name)
}

// NewExtendObject builds the fixture module with a test method and
// a constant.
func NewExtendObject() *Module {
	return NewModule("ModuleSpecs::ExtendObject").
		Define("test_method", func(*Object, ...any) (any, error) {
			return "hello test", nil
		}).
		Const("C", Symbol("test"))
}

// NewExtendObjectPrivate builds the fixture module whose private
// extend_object records :extended on pad before extending.
func NewExtendObjectPrivate(pad *scratch.Pad) *Module {
	return NewModule("ModuleSpecs::ExtendObjectPrivate").
		OnExtendObject(func(_ *Object, super func() error) error {
			pad.Record(Symbol("extended"))
			return super()
		}).
		MakePrivate("extend_object")
}

func declareModule(root *spec.Group) {
	root.Describe("Module#extend_object", func(g *spec.Group) {
		g.BeforeEach(func(env *spec.Env) {
			env.Scratch().Clear()
		})

		g.It("is called when #extend is called on an object", func(env *spec.Env) {
			mod := NewExtendObject()
			hook := env.Mock("ModuleSpecs::ExtendObject")
			hook.Expect("extend_object")
			mod.Intercept(hook)

			obj := NewObject("extended object")
			env.Must(obj.Extend(mod))
		})

		g.It("extends the given object with its constants and methods by default", func(env *spec.Env) {
			obj := NewObject("extended direct")
			_, err := NewExtendObject().Send("extend_object", obj)
			env.Must(err)

			v, err := obj.Call("test_method")
			env.Must(err)
			env.Expect(v).To(matcher.Equal("hello test"))

			c, err := obj.SingletonConst("C")
			env.Must(err)
			env.Expect(c).To(matcher.Equal(Symbol("test")))
		})

		g.It("is called even when private", func(env *spec.Env) {
			obj := NewObject("extended private")
			env.Must(obj.Extend(NewExtendObjectPrivate(env.Scratch())))
			env.Expect(env.Scratch().Recorded()).To(matcher.Equal(Symbol("extended")))
		})

		g.Describe("when given a frozen object", func(g *spec.Group) {
			g.BeforeEach(func(env *spec.Env) {
				env.Scratch().Set("receiver", NewModule(""))
				env.Scratch().Set("object", NewObject("frozen").Freeze())
			})

			extend := func(env *spec.Env) (*Module, *Object, func() error) {
				r, _ := env.Scratch().Get("receiver")
				o, _ := env.Scratch().Get("object")
				receiver, object := r.(*Module), o.(*Object)
				return receiver, object, func() error {
					_, err := receiver.Send("extend_object", object)
					return err
				}
			}

			g.VersionIs("...1.9", func(g *spec.Group) {
				g.It("raises a TypeError before extending the object", func(env *spec.Env) {
					receiver, object, call := extend(env)
					env.Expect(call).To(matcher.RaiseError(fault.TypeError))
					env.Expect(object.KindOf(receiver)).To(matcher.BeFalse())
				})
			})

			g.VersionIs("1.9", func(g *spec.Group) {
				g.It("raises a RuntimeError before extending the object", func(env *spec.Env) {
					receiver, object, call := extend(env)
					env.Expect(call).To(matcher.RaiseError(fault.RuntimeError))
					env.Expect(object.KindOf(receiver)).To(matcher.BeFalse())
				})
			})
		})
	})
}
