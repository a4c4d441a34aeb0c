package bank

import (
	"context"
	"errors"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"digital.vasic.specs/pkg/fault"
	"digital.vasic.specs/pkg/matcher"
	"digital.vasic.specs/pkg/runner"
	"digital.vasic.specs/pkg/spec"
	"digital.vasic.specs/pkg/version"
)

func testSubjects(t *testing.T) *Subjects {
	t.Helper()
	s := NewSubjects()
	s.MustRegister("const", func(args ...any) (any, error) {
		return args[0], nil
	})
	s.MustRegister("div", func(args ...any) (any, error) {
		a, okA := args[0].(int)
		b, okB := args[1].(int)
		if !okA || !okB {
			return nil, fault.New(fault.TypeError, "div needs integers")
		}
		if b == 0 {
			return nil, fault.New(fault.ZeroDivisionError, "divided by 0")
		}
		return a / b, nil
	})
	s.MustRegister("atan", func(args ...any) (any, error) {
		switch x := args[0].(type) {
		case int:
			return math.Atan(float64(x)), nil
		case float64:
			return math.Atan(x), nil
		}
		return nil, fault.New(fault.TypeError, "atan needs a number")
	})
	return s
}

func run(t *testing.T, root *spec.Group) *runner.Run {
	t.Helper()
	target, err := version.NewTarget("1.9", "linux")
	require.NoError(t, err)
	r, err := runner.New(runner.WithTarget(target)).Run(context.Background(), root)
	require.NoError(t, err)
	return r
}

// =============================================================================
// Loading
// =============================================================================

func TestBank_LoadAndBuild(t *testing.T) {
	b := New()
	require.NoError(t, b.LoadFile(filepath.Join("testdata", "arithmetic.yaml")))
	assert.Equal(t, 1, b.Count())

	root, err := b.Build(testSubjects(t), matcher.NewEngine())
	require.NoError(t, err)

	result := run(t, root)
	var got []string
	for _, r := range result.Results {
		got = append(got, r.Status)
	}
	assert.Equal(t, []string{
		spec.StatusPassed, spec.StatusPassed, spec.StatusPassed,
		spec.StatusSkipped, spec.StatusPassed, spec.StatusSkipped,
	}, got)
	assert.Equal(t, "Integer#/ divides evenly", result.Results[0].FullLabel())
	assert.Equal(t, []string{"Math.atan", "future"}, result.Results[5].Ancestors)
	assert.Equal(t, "pending: needs bignum", result.Results[3].Messages[0])
}

func TestBank_ExampleLocations(t *testing.T) {
	b := New()
	require.NoError(t, b.LoadFile(filepath.Join("testdata", "arithmetic.yaml")))
	root, err := b.Build(testSubjects(t), matcher.NewEngine())
	require.NoError(t, err)

	result := run(t, root)
	var got []string
	for _, r := range result.Results {
		got = append(got, r.Location)
	}
	assert.Equal(t, []string{
		"arithmetic: groups[0].examples[0]",
		"arithmetic: groups[0].examples[1]",
		"arithmetic: groups[0].examples[2]",
		"arithmetic: groups[0].examples[3]",
		"arithmetic: groups[1].examples[0]",
		"arithmetic: groups[1].groups[0].examples[0]",
	}, got)
	assert.Equal(t, "arithmetic: groups[1]", root.Groups()[1].Location())
}

func TestBank_JSON(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "one.json")
	require.NoError(t, os.WriteFile(path, []byte(`{
		"version": "1",
		"name": "json bank",
		"groups": [{
			"describe": "const",
			"examples": [{
				"it": "echoes",
				"subject": "const",
				"args": [1.5],
				"expect": {"matcher": "eq", "value": 1.5}
			}]
		}]
	}`), 0644))

	b := New()
	require.NoError(t, b.LoadFile(path))
	root, err := b.Build(testSubjects(t), nil)
	require.NoError(t, err)
	assert.Equal(t, spec.StatusPassed, run(t, root).Results[0].Status)
}

func TestBank_LoadDir(t *testing.T) {
	dir := t.TempDir()
	data, err := os.ReadFile(filepath.Join("testdata", "arithmetic.yaml"))
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.yml"), data, 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0644))
	require.NoError(t, os.Mkdir(filepath.Join(dir, "sub"), 0755))

	b := New()
	require.NoError(t, b.Load(dir))
	assert.Equal(t, []string{filepath.Join(dir, "a.yml")}, b.Sources())
}

func TestBank_DuplicateName(t *testing.T) {
	b := New()
	path := filepath.Join("testdata", "arithmetic.yaml")
	require.NoError(t, b.LoadFile(path))
	err := b.LoadFile(path)
	assert.ErrorIs(t, err, ErrInvalidBank)
	assert.Contains(t, err.Error(), "already loaded")
}

func TestBank_LoadErrors(t *testing.T) {
	b := New()
	assert.Error(t, b.Load(filepath.Join("testdata", "missing.yaml")))
	assert.ErrorIs(t, b.LoadFile(filepath.Join("testdata", "malformed.yaml")), ErrInvalidBank)
	assert.ErrorIs(t, b.LoadFile(filepath.Join("testdata", "invalid.yaml")), ErrInvalidBank)
	assert.Zero(t, b.Count())
}

// =============================================================================
// Building
// =============================================================================

func TestBank_BuildErrors(t *testing.T) {
	b := New()
	require.NoError(t, b.Add("inline", &BankFile{
		Version: "1",
		Name:    "bad",
		Groups: []GroupDef{{
			Describe: "g",
			Before:   []StepDef{{Subject: "nope"}},
			Examples: []ExampleDef{
				{It: "unknown subject", Subject: "missing"},
				{It: "unknown matcher", Subject: "const",
					Expect: &matcher.Definition{Type: "be_shiny"}},
			},
		}},
	}))

	_, err := b.Build(testSubjects(t), matcher.NewEngine())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidBank)
	assert.ErrorIs(t, err, matcher.ErrUnsupported)
	assert.Contains(t, err.Error(), `bad: groups[0].before[0]: unknown subject "nope"`)
	assert.Contains(t, err.Error(), `unknown subject "missing"`)
}

func TestBank_UndefinedScratchValue(t *testing.T) {
	b := New()
	require.NoError(t, b.Add("inline", &BankFile{
		Version: "1",
		Name:    "scratch",
		Groups: []GroupDef{{
			Describe: "g",
			Examples: []ExampleDef{{It: "reads", Subject: "const", Args: []any{"$nothing"}}},
		}},
	}))

	root, err := b.Build(testSubjects(t), nil)
	require.NoError(t, err)

	res := run(t, root).Results[0]
	assert.Equal(t, spec.StatusError, res.Status)
	assert.Contains(t, res.Messages[0], "NameError")
}

func TestBank_SubjectErrorIsRaised(t *testing.T) {
	b := New()
	require.NoError(t, b.Add("inline", &BankFile{
		Version: "1",
		Name:    "errors",
		Groups: []GroupDef{{
			Describe: "g",
			Examples: []ExampleDef{{
				It: "divides", Subject: "div", Args: []any{1, 0},
				Expect: &matcher.Definition{Type: "eq", Value: 0},
			}},
		}},
	}))

	root, err := b.Build(testSubjects(t), nil)
	require.NoError(t, err)
	res := run(t, root).Results[0]
	assert.Equal(t, spec.StatusError, res.Status)
	assert.Equal(t, "raised ZeroDivisionError (divided by 0)", res.Messages[0])
}

func TestBank_Gates(t *testing.T) {
	b := New()
	require.NoError(t, b.Add("inline", &BankFile{
		Version: "1",
		Name:    "gates",
		Groups: []GroupDef{
			{Describe: "windows only", Platform: []string{"windows"},
				Examples: []ExampleDef{{It: "x", Subject: "const", Args: []any{1}}}},
			{Describe: "with feature", Version: "1.0", Features: []string{"jit"},
				Examples: []ExampleDef{{It: "y", Subject: "const", Args: []any{1}}}},
			{Describe: "old only",
				Examples: []ExampleDef{{It: "z", Subject: "const", Args: []any{1}, Version: "...1.5"}}},
		},
	}))

	root, err := b.Build(testSubjects(t), nil)
	require.NoError(t, err)
	result := run(t, root)
	for _, r := range result.Results {
		assert.Equal(t, spec.StatusSkipped, r.Status, r.FullLabel())
	}
	assert.Equal(t, `excluded: version >= 1.0 and feature "jit"`, result.Results[1].Messages[0])
}

// =============================================================================
// Subjects
// =============================================================================

func TestSubjects(t *testing.T) {
	s := NewSubjects()
	require.NoError(t, s.Register("b", func(...any) (any, error) { return nil, nil }))
	require.NoError(t, s.Register("a", func(...any) (any, error) { return nil, nil }))
	assert.Error(t, s.Register("a", func(...any) (any, error) { return nil, nil }))
	assert.Error(t, s.Register("", nil))
	assert.Equal(t, []string{"a", "b"}, s.Names())

	_, ok := s.Get("c")
	assert.False(t, ok)
	assert.Panics(t, func() { s.MustRegister("a", nil) })
}

// =============================================================================
// Validation
// =============================================================================

func TestValidateFile_Valid(t *testing.T) {
	assert.Empty(t, ValidateFile(filepath.Join("testdata", "arithmetic.yaml")))
}

func TestValidateFile_Invalid(t *testing.T) {
	errs := ValidateFile(filepath.Join("testdata", "invalid.yaml"))

	var got []string
	for _, e := range errs {
		got = append(got, e.Error())
	}
	joined := strings.Join(got, "\n")

	assert.Contains(t, joined, "version: is required")
	assert.Contains(t, joined, "groups[0].examples[0].subject: is required unless the example is pending")
	assert.Contains(t, joined, "groups[0].examples[3].it: is required")
	assert.Contains(t, joined, `groups[0].examples[2].it: duplicate example "twice"`)
	assert.Contains(t, joined, `groups[1].describe: duplicate group "dup"`)
	assert.Contains(t, joined, "groups[0].version:")
}

func TestValidateFile_Unreadable(t *testing.T) {
	errs := ValidateFile(filepath.Join("testdata", "missing.yaml"))
	require.Len(t, errs, 1)
	assert.Equal(t, "file", errs[0].Field)

	errs = ValidateFile(filepath.Join("testdata", "malformed.yaml"))
	require.Len(t, errs, 1)
	assert.Equal(t, "document", errs[0].Field)
}

func TestValidationError_Error(t *testing.T) {
	assert.Equal(t, "boom", ValidationError{Message: "boom"}.Error())
	assert.Equal(t, "a.b: boom", ValidationError{Field: "a.b", Message: "boom"}.Error())
	assert.False(t, errors.Is(ValidationError{}, ErrInvalidBank))
}
