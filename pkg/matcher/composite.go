package matcher

import (
	"fmt"
	"strings"
)

type compositeMatcher struct {
	all      bool
	matchers []Matcher
}

// And matches when every matcher matches. Evaluation stops at the
// first failure or raised error.
func And(matchers ...Matcher) Matcher {
	return &compositeMatcher{all: true, matchers: matchers}
}

// Or matches when at least one matcher matches.
func Or(matchers ...Matcher) Matcher {
	return &compositeMatcher{matchers: matchers}
}

func (m *compositeMatcher) Capability() Capability { return CapComposite }

func (m *compositeMatcher) Describe() string {
	parts := make([]string, len(m.matchers))
	for i, sub := range m.matchers {
		parts[i] = sub.Describe()
	}
	sep := " or "
	if m.all {
		sep = " and "
	}
	return strings.Join(parts, sep)
}

func (m *compositeMatcher) Match(actual any) Verdict {
	var failures []string
	for _, sub := range m.matchers {
		v := sub.Match(actual)
		if v.Err != nil {
			return v
		}
		if m.all && !v.Passed {
			return Verdict{
				Message: v.Message,
				NegatedMessage: fmt.Sprintf(
					"expected %s not to %s",
					render(actual), m.Describe(),
				),
			}
		}
		if !m.all && v.Passed {
			return Verdict{
				Passed: true,
				NegatedMessage: fmt.Sprintf(
					"expected %s not to %s", render(actual),
					sub.Describe(),
				),
			}
		}
		failures = append(failures, v.Message)
	}

	if m.all {
		return Verdict{
			Passed: true,
			NegatedMessage: fmt.Sprintf(
				"expected %s not to %s", render(actual), m.Describe(),
			),
		}
	}
	return Verdict{
		Message: fmt.Sprintf(
			"none of %d matchers passed: %s",
			len(m.matchers), strings.Join(failures, "; "),
		),
	}
}
