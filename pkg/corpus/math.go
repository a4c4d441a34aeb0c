package corpus

import (
	"math"
	"reflect"
	"strconv"
	"strings"

	"digital.vasic.specs/pkg/fault"
	"digital.vasic.specs/pkg/matcher"
	"digital.vasic.specs/pkg/spec"
)

// Float coerces x to a float64 the way Kernel#Float does: numbers
// convert, numeric strings parse, nil is a TypeError and any other
// string an ArgumentError.
func Float(x any) (float64, error) {
	switch v := x.(type) {
	case nil:
		return 0, fault.New(fault.TypeError, "can't convert nil into Float")
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return 0, fault.New(
				fault.ArgumentError, "invalid value for Float(): %q", v,
			)
		}
		return f, nil
	}

	rv := reflect.ValueOf(x)
	switch {
	case rv.CanFloat():
		return rv.Float(), nil
	case rv.CanInt():
		return float64(rv.Int()), nil
	case rv.CanUint():
		return float64(rv.Uint()), nil
	}
	return 0, fault.New(fault.TypeError, "can't convert %T into Float", x)
}

// Atan returns the arctangent of x, in (-Pi/2, Pi/2).
func Atan(x any) (float64, error) {
	f, err := Float(x)
	if err != nil {
		return 0, err
	}
	return math.Atan(f), nil
}

// arctangent : (-Inf, Inf) --> (-PI/2, PI/2)
func declareMath(root *spec.Group) {
	root.Describe("Math.atan", func(g *spec.Group) {
		atan := func(env *spec.Env, x any) float64 {
			v, err := Atan(x)
			env.Must(err)
			return v
		}

		g.It("returns a float", func(env *spec.Env) {
			env.Expect(atan(env, 1)).To(matcher.BeKindOf(float64(0)))
		})

		g.It("return the arctangent of the argument", func(env *spec.Env) {
			cases := []struct {
				in   any
				want float64
			}{
				{1, math.Pi / 4},
				{0, 0.0},
				{-1, -math.Pi / 4},
				{0.25, 0.244978663126864},
				{0.50, 0.463647609000806},
				{0.75, 0.643501108793284},
			}
			for _, c := range cases {
				env.Expect(atan(env, c.in)).To(matcher.BeCloseTo(c.want, Tolerance))
			}
		})

		g.It("raises an ArgumentError if the argument cannot be coerced with Float()", func(env *spec.Env) {
			env.Expect(func() error {
				_, err := Atan("test")
				return err
			}).To(matcher.RaiseError(fault.ArgumentError))
		})

		g.It("raises a TypeError if the argument is nil", func(env *spec.Env) {
			env.Expect(func() error {
				_, err := Atan(nil)
				return err
			}).To(matcher.RaiseError(fault.TypeError))
		})
	})
}
