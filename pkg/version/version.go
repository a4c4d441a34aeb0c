// Package version decides whether groups and examples take part in
// a run. A Gate is evaluated against the run's Target; the most
// common gate is a half-open Range over version identifiers.
package version

import (
	"errors"
	"fmt"
	"strings"

	"golang.org/x/mod/semver"
)

// ErrInvalidVersion is returned for identifiers that are not
// ordered versions.
var ErrInvalidVersion = errors.New("invalid version")

// Version is an ordered version identifier such as "1.9",
// "1.8.7" or "2.0.0-preview1".
type Version struct {
	raw   string
	canon string
}

// Parse validates s and returns its Version.
func Parse(s string) (Version, error) {
	trimmed := strings.TrimSpace(s)
	v := "v" + strings.TrimPrefix(trimmed, "v")
	if trimmed == "" || !semver.IsValid(v) {
		return Version{}, fmt.Errorf("%w: %q", ErrInvalidVersion, s)
	}
	return Version{raw: trimmed, canon: v}, nil
}

// MustParse is Parse that panics on error. It is meant for
// literals in spec declarations.
func MustParse(s string) Version {
	v, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return v
}

// String returns the identifier as written.
func (v Version) String() string { return v.raw }

// IsZero reports whether v was never parsed.
func (v Version) IsZero() bool { return v.canon == "" }

// Compare returns -1, 0 or +1 ordering v against other.
func (v Version) Compare(other Version) int {
	return semver.Compare(v.canon, other.canon)
}

// Target describes the run a gate is evaluated against.
type Target struct {
	Version  Version
	Platform string
	Features map[string]bool
}

// NewTarget parses the version and builds a Target.
func NewTarget(
	ver, platform string,
	features ...string,
) (Target, error) {
	v, err := Parse(ver)
	if err != nil {
		return Target{}, err
	}
	t := Target{
		Version:  v,
		Platform: platform,
		Features: make(map[string]bool, len(features)),
	}
	for _, f := range features {
		t.Features[f] = true
	}
	return t, nil
}

// Gate decides inclusion. Implementations must be pure.
type Gate interface {
	Admits(t Target) bool
	String() string
}

// Included reports whether gate admits target. A nil gate admits
// everything.
func Included(gate Gate, target Target) bool {
	if gate == nil {
		return true
	}
	return gate.Admits(target)
}
