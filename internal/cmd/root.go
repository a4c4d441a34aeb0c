// Package cmd implements the specrun command line.
package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

// Version is injected at build time via -ldflags
var Version = "dev"

// ExitError carries the process exit status out of a command.
// Err may be nil when the output already explains the status.
type ExitError struct {
	Code int
	Err  error
}

func (e *ExitError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("exit status %d", e.Code)
	}
	return e.Err.Error()
}

func (e *ExitError) Unwrap() error { return e.Err }

// NewRootCommand creates and returns the root cobra command for specrun
func NewRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "specrun",
		Short: "Behavior specification runner",
		Long: `specrun executes behavior specifications: nested groups of examples
with inherited hooks, expectation matchers, verified mocks and
version-gated variants.

It runs the built-in core suites and any declarative spec banks
(YAML or JSON) given on the command line, and reports results as
text, JSON, Markdown or HTML.`,
		Version: Version,
		// Silence usage and errors; main prints the error once.
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.AddCommand(NewRunCommand())
	cmd.AddCommand(NewValidateCommand())
	cmd.AddCommand(NewListCommand())

	return cmd
}
