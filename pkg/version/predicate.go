package version

import (
	"fmt"
	"slices"
	"strings"
)

type platformGate struct {
	platforms []string
	negate    bool
}

// OnPlatform admits targets running on one of platforms.
func OnPlatform(platforms ...string) Gate {
	return platformGate{platforms: platforms}
}

// NotOnPlatform excludes targets running on any of platforms.
func NotOnPlatform(platforms ...string) Gate {
	return platformGate{platforms: platforms, negate: true}
}

func (g platformGate) Admits(t Target) bool {
	return slices.Contains(g.platforms, t.Platform) != g.negate
}

func (g platformGate) String() string {
	list := strings.Join(g.platforms, ", ")
	if g.negate {
		return "platform not in [" + list + "]"
	}
	return "platform in [" + list + "]"
}

type featureGate string

// WithFeature admits targets that enable feature.
func WithFeature(feature string) Gate {
	return featureGate(feature)
}

func (g featureGate) Admits(t Target) bool {
	return t.Features[string(g)]
}

func (g featureGate) String() string {
	return fmt.Sprintf("feature %q", string(g))
}

type allGate []Gate

// All admits targets admitted by every gate.
func All(gates ...Gate) Gate {
	return allGate(gates)
}

func (g allGate) Admits(t Target) bool {
	for _, gate := range g {
		if !Included(gate, t) {
			return false
		}
	}
	return true
}

func (g allGate) String() string {
	parts := make([]string, 0, len(g))
	for _, gate := range g {
		if gate != nil {
			parts = append(parts, gate.String())
		}
	}
	return strings.Join(parts, " and ")
}
