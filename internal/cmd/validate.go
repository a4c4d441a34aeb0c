package cmd

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"digital.vasic.specs/pkg/bank"
	"digital.vasic.specs/pkg/corpus"
	"digital.vasic.specs/pkg/matcher"
	"digital.vasic.specs/pkg/report"
	"digital.vasic.specs/pkg/spec"
)

// NewValidateCommand creates and returns the validate subcommand
func NewValidateCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate <bank-file-or-directory>...",
		Short: "Validate spec bank files",
		Long: `Parse and validate spec banks, checking for:
  - Required fields (describe, it, subject unless pending)
  - Duplicate group and example labels
  - Malformed version ranges
  - Unknown subjects and unbuildable matchers

Exit code: 0 if valid, 1 if errors found`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := validateBanks(args, cmd.OutOrStdout()); err != nil {
				return &ExitError{Code: report.ExitFailures, Err: err}
			}
			return nil
		},
	}

	return cmd
}

// validateBanks validates every bank file under paths and writes
// one line per file to output.
func validateBanks(paths []string, output io.Writer) error {
	files, err := bankFiles(paths)
	if err != nil {
		return err
	}
	if len(files) == 0 {
		return fmt.Errorf("no bank files found in %s", strings.Join(paths, ", "))
	}

	invalid := 0
	b := bank.New()
	for _, path := range files {
		if problems := bank.ValidateFile(path); len(problems) > 0 {
			invalid++
			fmt.Fprintf(output, "✗ %s\n", path)
			for _, p := range problems {
				fmt.Fprintf(output, "    %s\n", p)
			}
			continue
		}
		if err := b.LoadFile(path); err != nil {
			invalid++
			fmt.Fprintf(output, "✗ %s\n    %v\n", path, err)
			continue
		}
		fmt.Fprintf(output, "✓ %s\n", path)
	}

	if b.Count() > 0 {
		if err := b.Attach(spec.NewRoot(), corpus.Subjects(), matcher.NewEngine()); err != nil {
			invalid++
			fmt.Fprintf(output, "✗ build failed\n    %v\n", err)
		}
	}

	if invalid > 0 {
		return fmt.Errorf("validation failed: %d problem(s)", invalid)
	}
	fmt.Fprintf(output, "%d bank file(s) valid\n", len(files))
	return nil
}

// bankFiles expands directories into their bank files, sorted.
func bankFiles(paths []string) ([]string, error) {
	var files []string
	for _, path := range paths {
		info, err := os.Stat(path)
		if err != nil {
			return nil, fmt.Errorf("failed to access path: %w", err)
		}
		if !info.IsDir() {
			files = append(files, path)
			continue
		}
		entries, err := os.ReadDir(path)
		if err != nil {
			return nil, err
		}
		for _, e := range entries {
			if e.IsDir() {
				continue
			}
			switch strings.ToLower(filepath.Ext(e.Name())) {
			case ".yaml", ".yml", ".json":
				files = append(files, filepath.Join(path, e.Name()))
			}
		}
	}
	sort.Strings(files)
	return files, nil
}
