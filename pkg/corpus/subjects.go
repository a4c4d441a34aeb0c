package corpus

import (
	"digital.vasic.specs/pkg/bank"
	"digital.vasic.specs/pkg/fault"
)

// Subjects returns the functions banks can call by name:
//
//	atan        Math.atan(x)
//	float       Kernel#Float(x)
//	<=>         a <=> b
//	string.==   String#==(a, b)
//	gid         Process.gid
//	identity    returns its argument
func Subjects() *bank.Subjects {
	s := bank.NewSubjects()
	s.MustRegister("atan", unary(func(x any) (any, error) { return Atan(x) }))
	s.MustRegister("float", unary(func(x any) (any, error) { return Float(x) }))
	s.MustRegister("identity", unary(func(x any) (any, error) { return x, nil }))
	s.MustRegister("<=>", func(args ...any) (any, error) {
		if err := arity(args, 2); err != nil {
			return nil, err
		}
		return Spaceship(args[0], args[1])
	})
	s.MustRegister("string.==", func(args ...any) (any, error) {
		if err := arity(args, 2); err != nil {
			return nil, err
		}
		str, ok := args[0].(string)
		if !ok {
			return nil, fault.New(fault.TypeError, "receiver must be a String, got %T", args[0])
		}
		return StringEquals(str, args[1]), nil
	})
	s.MustRegister("gid", func(args ...any) (any, error) {
		if err := arity(args, 0); err != nil {
			return nil, err
		}
		return Gid(), nil
	})
	return s
}

func unary(fn func(x any) (any, error)) bank.Subject {
	return func(args ...any) (any, error) {
		if err := arity(args, 1); err != nil {
			return nil, err
		}
		return fn(args[0])
	}
}

func arity(args []any, want int) error {
	if len(args) != want {
		return fault.New(
			fault.ArgumentError,
			"wrong number of arguments (given %d, expected %d)", len(args), want,
		)
	}
	return nil
}
