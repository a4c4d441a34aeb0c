// Package report renders spec run results: a streaming text
// listener, full-run reporters (text, JSON, Markdown, HTML), a
// summary model and the JSONL run history.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"

	"digital.vasic.specs/pkg/runner"
	"digital.vasic.specs/pkg/spec"
)

// Output formats understood by ForFormat.
const (
	FormatSpec     = "spec"
	FormatDot      = "dot"
	FormatJSON     = "json"
	FormatMarkdown = "markdown"
	FormatHTML     = "html"
)

// Exit codes for command-line runs.
const (
	ExitSuccess  = 0
	ExitFailures = 1
	ExitBroken   = 2
)

// Overridable for tests.
var (
	jsonMarshal       = json.Marshal
	jsonMarshalIndent = json.MarshalIndent
)

// Reporter renders a completed run.
type Reporter interface {
	// Report writes the rendering of run to w.
	Report(w io.Writer, run *runner.Run) error
}

// ForFormat returns the reporter for format. Colored applies to
// the text formats only.
func ForFormat(format string, colored bool) (Reporter, error) {
	switch format {
	case FormatSpec, "":
		return NewTextReporter(FormatSpec, colored), nil
	case FormatDot:
		return NewTextReporter(FormatDot, colored), nil
	case FormatJSON:
		return NewJSONReporter(true), nil
	case FormatMarkdown:
		return MarkdownReporter{}, nil
	case FormatHTML:
		return NewHTMLReporter(), nil
	}
	return nil, fmt.Errorf("unknown report format: %s", format)
}

// ExitCode maps run counts to a process exit status.
func ExitCode(c spec.Counts) int {
	if c.Succeeded() {
		return ExitSuccess
	}
	return ExitFailures
}

// ordered returns results sorted by declaration index.
func ordered(results []*spec.Result) []*spec.Result {
	out := make([]*spec.Result, 0, len(results))
	for _, r := range results {
		if r != nil {
			out = append(out, r)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Index < out[j].Index
	})
	return out
}
