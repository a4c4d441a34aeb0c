package version

import (
	"fmt"
	"strings"
)

// Range is a version interval with an inclusive lower bound and an
// exclusive upper bound. A nil bound is unbounded.
type Range struct {
	Lower *Version
	Upper *Version
}

// Since admits versions >= lower.
func Since(lower string) Range {
	v := MustParse(lower)
	return Range{Lower: &v}
}

// Before admits versions < upper.
func Before(upper string) Range {
	v := MustParse(upper)
	return Range{Upper: &v}
}

// Between admits lower <= version < upper.
func Between(lower, upper string) Range {
	lo, hi := MustParse(lower), MustParse(upper)
	return Range{Lower: &lo, Upper: &hi}
}

// ParseRange parses a range expression:
//
//	"1.9"        since 1.9
//	"...1.9"     before 1.9
//	"1.8...1.9"  from 1.8 up to but excluding 1.9
//	"1.8..."     since 1.8
func ParseRange(expr string) (Range, error) {
	expr = strings.TrimSpace(expr)
	if expr == "" {
		return Range{}, fmt.Errorf(
			"%w: empty range", ErrInvalidVersion,
		)
	}

	lower, upper, isRange := strings.Cut(expr, "...")
	if !isRange {
		lower = expr
	}

	var r Range
	if lower = strings.TrimSpace(lower); lower != "" {
		v, err := Parse(lower)
		if err != nil {
			return Range{}, fmt.Errorf("range %q: %w", expr, err)
		}
		r.Lower = &v
	}
	if upper = strings.TrimSpace(upper); upper != "" {
		v, err := Parse(upper)
		if err != nil {
			return Range{}, fmt.Errorf("range %q: %w", expr, err)
		}
		r.Upper = &v
	}

	if r.Lower != nil && r.Upper != nil &&
		r.Lower.Compare(*r.Upper) > 0 {
		return Range{}, fmt.Errorf(
			"%w: range %q has lower bound above upper bound",
			ErrInvalidVersion, expr,
		)
	}
	return r, nil
}

// Contains reports whether v lies in the range.
func (r Range) Contains(v Version) bool {
	if r.Lower != nil && v.Compare(*r.Lower) < 0 {
		return false
	}
	if r.Upper != nil && v.Compare(*r.Upper) >= 0 {
		return false
	}
	return true
}

// Admits implements Gate. A target without a version is admitted
// only by the unbounded range.
func (r Range) Admits(t Target) bool {
	if t.Version.IsZero() {
		return r.Lower == nil && r.Upper == nil
	}
	return r.Contains(t.Version)
}

func (r Range) String() string {
	var lo, hi string
	if r.Lower != nil {
		lo = r.Lower.String()
	}
	if r.Upper != nil {
		hi = r.Upper.String()
	}
	switch {
	case lo == "" && hi == "":
		return "any version"
	case hi == "":
		return "version >= " + lo
	case lo == "":
		return "version < " + hi
	}
	return fmt.Sprintf("version %s...%s", lo, hi)
}
