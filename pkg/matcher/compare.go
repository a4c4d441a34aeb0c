package matcher

import (
	"fmt"
	"math"
	"reflect"
	"strings"

	"digital.vasic.specs/pkg/fault"
)

// Comparable is the three-way comparison contract. CompareTo
// returns a negative, zero or positive result, or ok=false when
// other cannot be ordered against the receiver.
type Comparable interface {
	CompareTo(other any) (result int, ok bool)
}

// StringConvertible values can stand in for a string operand.
type StringConvertible interface {
	ToStr() string
}

// Receiver answers named messages at run time. Mock collaborators
// implement it, which lets them take part in comparisons by
// declaring "to_str" or "<=>".
type Receiver interface {
	RespondsTo(method string) bool
	Send(method string, args ...any) (any, error)
}

// Compare orders a against b. It returns an ArgumentError when
// neither operand provides an ordering or conversion contract for
// the other.
func Compare(a, b any) (int, error) {
	c, ok, err := compare(a, b)
	if err != nil {
		return 0, err
	}
	if !ok {
		return 0, fault.New(
			fault.ArgumentError,
			"comparison of %s with %s failed",
			typeName(a), typeName(b),
		)
	}
	return c, nil
}

func compare(a, b any) (int, bool, error) {
	if s, isString := a.(string); isString {
		return compareString(s, b)
	}

	if c, ok := compareNumeric(a, b); ok {
		return c, true, nil
	}

	if ca, ok := a.(Comparable); ok {
		c, ok := ca.CompareTo(b)
		return c, ok, nil
	}

	if cb, ok := b.(Comparable); ok {
		c, ok := cb.CompareTo(a)
		return -c, ok, nil
	}

	// Values of the same named string type (e.g. symbols) order
	// among themselves.
	av, bv := reflect.ValueOf(a), reflect.ValueOf(b)
	if av.IsValid() && bv.IsValid() &&
		av.Type() == bv.Type() && av.Kind() == reflect.String {
		return sign(strings.Compare(av.String(), bv.String())),
			true, nil
	}

	return 0, false, nil
}

func compareString(s string, other any) (int, bool, error) {
	switch o := other.(type) {
	case string:
		return sign(strings.Compare(s, o)), true, nil
	case StringConvertible:
		return sign(strings.Compare(s, o.ToStr())), true, nil
	case Receiver:
		if o.RespondsTo("to_str") {
			v, err := o.Send("to_str")
			if err != nil {
				return 0, false, err
			}
			str, ok := v.(string)
			if !ok {
				return 0, false, fault.New(
					fault.TypeError,
					"can't convert %s to String (to_str gives %s)",
					typeName(other), typeName(v),
				)
			}
			return sign(strings.Compare(s, str)), true, nil
		}
		if o.RespondsTo("<=>") {
			v, err := o.Send("<=>", s)
			if err != nil {
				return 0, false, err
			}
			n, ok := toInt(v)
			if !ok {
				return 0, false, nil
			}
			return -sign(n), true, nil
		}
	case Comparable:
		c, ok := o.CompareTo(s)
		return -c, ok, nil
	}
	return 0, false, nil
}

// compareNumeric orders any two Go numeric values, including
// named numeric types. NaN is unordered.
func compareNumeric(a, b any) (int, bool) {
	av, bv := reflect.ValueOf(a), reflect.ValueOf(b)
	if !isNumber(av) || !isNumber(bv) {
		return 0, false
	}

	if isFloat(av) || isFloat(bv) {
		x, y := asFloat(av), asFloat(bv)
		if math.IsNaN(x) || math.IsNaN(y) {
			return 0, false
		}
		switch {
		case x < y:
			return -1, true
		case x > y:
			return 1, true
		}
		return 0, true
	}

	if isSigned(av) && isSigned(bv) {
		return cmpInt(av.Int(), bv.Int()), true
	}
	if !isSigned(av) && !isSigned(bv) {
		return cmpUint(av.Uint(), bv.Uint()), true
	}
	if isSigned(av) {
		if av.Int() < 0 {
			return -1, true
		}
		return cmpUint(uint64(av.Int()), bv.Uint()), true
	}
	if bv.Int() < 0 {
		return 1, true
	}
	return cmpUint(av.Uint(), uint64(bv.Int())), true
}

// Less reports a < b.
func Less(a, b any) (bool, error) {
	c, err := Compare(a, b)
	return c < 0, err
}

// LessOrEqual reports a <= b.
func LessOrEqual(a, b any) (bool, error) {
	c, err := Compare(a, b)
	return c <= 0, err
}

// Greater reports a > b.
func Greater(a, b any) (bool, error) {
	c, err := Compare(a, b)
	return c > 0, err
}

// GreaterOrEqual reports a >= b.
func GreaterOrEqual(a, b any) (bool, error) {
	c, err := Compare(a, b)
	return c >= 0, err
}

// Between reports lower <= x <= upper.
func Between(x, lower, upper any) (bool, error) {
	lo, err := Compare(x, lower)
	if err != nil {
		return false, err
	}
	hi, err := Compare(x, upper)
	if err != nil {
		return false, err
	}
	return lo >= 0 && hi <= 0, nil
}

// --- helpers ---

func typeName(v any) string {
	if v == nil {
		return "nil"
	}
	return fmt.Sprintf("%T", v)
}

func sign(n int) int {
	switch {
	case n < 0:
		return -1
	case n > 0:
		return 1
	}
	return 0
}

func cmpInt(x, y int64) int {
	switch {
	case x < y:
		return -1
	case x > y:
		return 1
	}
	return 0
}

func cmpUint(x, y uint64) int {
	switch {
	case x < y:
		return -1
	case x > y:
		return 1
	}
	return 0
}

func isNumber(v reflect.Value) bool {
	if !v.IsValid() {
		return false
	}
	switch v.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32,
		reflect.Int64, reflect.Uint, reflect.Uint8, reflect.Uint16,
		reflect.Uint32, reflect.Uint64, reflect.Uintptr,
		reflect.Float32, reflect.Float64:
		return true
	}
	return false
}

func isFloat(v reflect.Value) bool {
	return v.Kind() == reflect.Float32 || v.Kind() == reflect.Float64
}

func isSigned(v reflect.Value) bool {
	switch v.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32,
		reflect.Int64:
		return true
	}
	return false
}

func asFloat(v reflect.Value) float64 {
	switch {
	case isFloat(v):
		return v.Float()
	case isSigned(v):
		return float64(v.Int())
	}
	return float64(v.Uint())
}

// toFloat64 converts any Go numeric value to float64.
func toFloat64(v any) (float64, bool) {
	rv := reflect.ValueOf(v)
	if !isNumber(rv) {
		return 0, false
	}
	return asFloat(rv), true
}

// toInt converts an integral numeric value to int.
func toInt(v any) (int, bool) {
	rv := reflect.ValueOf(v)
	if !isNumber(rv) || isFloat(rv) {
		return 0, false
	}
	if isSigned(rv) {
		return int(rv.Int()), true
	}
	return int(rv.Uint()), true
}
