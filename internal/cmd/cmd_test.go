package cmd

import (
	"bytes"
	"encoding/json"
	"errors"
	"net"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"digital.vasic.specs/pkg/corpus"
	"digital.vasic.specs/pkg/report"
)

const failingBank = `version: "1"
name: failing
groups:
  - describe: broken atan
    examples:
      - it: is wrong on purpose
        subject: atan
        args: [1]
        expect: {matcher: eq, value: 0}
      - it: is fine
        subject: atan
        args: [0]
        expect: {matcher: be_close, value: 0.0, tolerance: 0.00003}
`

func execRoot(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	root := NewRootCommand()
	root.SetOut(&out)
	root.SetErr(&errOut)
	root.SetArgs(args)
	err := root.ExecuteContext(t.Context())
	return out.String(), err
}

func exitCode(t *testing.T, err error) int {
	t.Helper()
	if err == nil {
		return report.ExitSuccess
	}
	var exit *ExitError
	require.True(t, errors.As(err, &exit), "unexpected error: %v", err)
	return exit.Code
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

// ==========================================================================
// root
// ==========================================================================

func TestRootCommand_Subcommands(t *testing.T) {
	root := NewRootCommand()
	var names []string
	for _, c := range root.Commands() {
		names = append(names, c.Name())
	}
	assert.Subset(t, names, []string{"run", "validate", "list"})
}

func TestExitError(t *testing.T) {
	inner := errors.New("boom")
	err := &ExitError{Code: 2, Err: inner}
	assert.Equal(t, "boom", err.Error())
	assert.ErrorIs(t, err, inner)
	assert.Equal(t, "exit status 1", (&ExitError{Code: 1}).Error())
}

// ==========================================================================
// run
// ==========================================================================

func TestRunCommand_Suite(t *testing.T) {
	out, err := execRoot(t, "run", "--suite", corpus.SuiteMath, "--target", "2.0")
	require.NoError(t, err)
	assert.Contains(t, out, "Math.atan")
	assert.Contains(t, out, "4 examples, 0 failures, 0 errors, 0 skipped")
}

func TestRunCommand_DotFormat(t *testing.T) {
	out, err := execRoot(t, "run", "--suite", corpus.SuiteMath, "--format", "dot")
	require.NoError(t, err)
	assert.Contains(t, out, "....")
	assert.NotContains(t, out, "Math.atan\n")
}

func TestRunCommand_FailingBankExitsOne(t *testing.T) {
	path := writeFile(t, t.TempDir(), "failing.yaml", failingBank)

	out, err := execRoot(t, "run", "--bank", path)
	assert.Equal(t, report.ExitFailures, exitCode(t, err))
	assert.Contains(t, out, "Failures:")
	assert.Contains(t, out, "2 examples, 1 failures, 0 errors, 0 skipped")
}

func TestRunCommand_BankAndSuite(t *testing.T) {
	bankPath := filepath.Join("..", "..", "pkg", "corpus", "testdata", "atan.yaml")

	out, err := execRoot(t, "run",
		"--suite", corpus.SuiteMath, "--bank", bankPath, "--format", "json")
	require.NoError(t, err)

	var doc struct {
		Counts struct {
			Total  int `json:"total"`
			Passed int `json:"passed"`
		} `json:"counts"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &doc))
	assert.Equal(t, 15, doc.Counts.Total)
	assert.Equal(t, 15, doc.Counts.Passed)
}

func TestRunCommand_InvalidConfigExitsTwo(t *testing.T) {
	_, err := execRoot(t, "run", "--parallel", "0")
	assert.Equal(t, report.ExitBroken, exitCode(t, err))
	assert.Contains(t, err.Error(), "Parallel")

	_, err = execRoot(t, "run", "--format", "yaml")
	assert.Equal(t, report.ExitBroken, exitCode(t, err))
}

func TestRunCommand_UnknownSuiteExitsTwo(t *testing.T) {
	_, err := execRoot(t, "run", "--suite", "core/nope")
	assert.Equal(t, report.ExitBroken, exitCode(t, err))
	assert.Contains(t, err.Error(), "core/nope")
}

func TestRunCommand_BrokenBankExitsTwo(t *testing.T) {
	path := writeFile(t, t.TempDir(), "bad.yaml", "groups: [")
	_, err := execRoot(t, "run", "--bank", path)
	assert.Equal(t, report.ExitBroken, exitCode(t, err))
}

func TestRunCommand_ConfigFileAndEnvFile(t *testing.T) {
	dir := t.TempDir()
	cfgPath := writeFile(t, dir, "specrun.yaml",
		"suites: [core/math]\nformat: spec\nparallel: 2\n")
	envPath := writeFile(t, dir, ".env", "SPECRUN_FORMAT=markdown\n")

	out, err := execRoot(t, "run", "--config", cfgPath, "--env-file", envPath)
	require.NoError(t, err)
	assert.Contains(t, out, "# Spec Run Summary")
	assert.Contains(t, out, "| Examples | 4 |")
}

func TestRunCommand_ResultsDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "results")

	_, err := execRoot(t, "run",
		"--suite", corpus.SuiteMath, "--results-dir", dir, "--format", "dot")
	require.NoError(t, err)

	for _, name := range []string{
		"latest_summary.json", "latest_summary.md",
		"history.jsonl", "report.html", "specrun.log",
	} {
		assert.FileExists(t, filepath.Join(dir, name))
	}
}

func TestRunCommand_Monitor(t *testing.T) {
	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := l.Addr().String()
	require.NoError(t, l.Close())

	_, err = execRoot(t, "run",
		"--suite", corpus.SuiteMath, "--monitor", addr, "--format", "dot")
	require.NoError(t, err)
}

// ==========================================================================
// validate
// ==========================================================================

func TestValidateCommand_Valid(t *testing.T) {
	out, err := execRoot(t, "validate", filepath.Join("..", "..", "pkg", "corpus", "testdata"))
	require.NoError(t, err)
	assert.Contains(t, out, "✓")
	assert.Contains(t, out, "1 bank file(s) valid")
}

func TestValidateCommand_Invalid(t *testing.T) {
	path := writeFile(t, t.TempDir(), "bad.yaml", `version: "1"
name: bad
groups:
  - describe: ""
    examples:
      - it: no subject
`)
	out, err := execRoot(t, "validate", path)
	assert.Equal(t, report.ExitFailures, exitCode(t, err))
	assert.Contains(t, out, "✗")
}

func TestValidateCommand_UnknownSubject(t *testing.T) {
	path := writeFile(t, t.TempDir(), "ghost.yaml", `version: "1"
name: ghost
groups:
  - describe: ghosts
    examples:
      - it: calls nothing real
        subject: ghost
`)
	out, err := execRoot(t, "validate", path)
	assert.Equal(t, report.ExitFailures, exitCode(t, err))
	assert.Contains(t, out, "build failed")
	assert.Contains(t, out, `unknown subject "ghost"`)
}

func TestValidateCommand_MissingPath(t *testing.T) {
	_, err := execRoot(t, "validate", filepath.Join(t.TempDir(), "nope"))
	assert.Equal(t, report.ExitFailures, exitCode(t, err))
}

// ==========================================================================
// list
// ==========================================================================

func TestListCommand(t *testing.T) {
	out, err := execRoot(t, "list")
	require.NoError(t, err)
	for _, name := range []string{
		corpus.SuiteMath, corpus.SuiteModule, corpus.SuiteProcess, corpus.SuiteString,
	} {
		assert.Contains(t, out, name)
	}
	assert.Contains(t, out, "EXAMPLES")
	assert.Contains(t, out, "49")
}
