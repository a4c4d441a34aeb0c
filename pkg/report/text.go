package report

import (
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/fatih/color"

	"digital.vasic.specs/pkg/runner"
	"digital.vasic.specs/pkg/spec"
)

type styles struct {
	pass, fail, err, skip, dim, bold *color.Color
}

func newStyles(colored bool) styles {
	mk := func(attrs ...color.Attribute) *color.Color {
		c := color.New(attrs...)
		if colored {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
		return c
	}
	return styles{
		pass: mk(color.FgGreen),
		fail: mk(color.FgRed),
		err:  mk(color.FgRed, color.Bold),
		skip: mk(color.FgYellow),
		dim:  mk(color.FgHiBlack),
		bold: mk(color.Bold),
	}
}

func (s styles) forStatus(status string) *color.Color {
	switch status {
	case spec.StatusPassed:
		return s.pass
	case spec.StatusFailed:
		return s.fail
	case spec.StatusError:
		return s.err
	}
	return s.skip
}

// Stream is a runner.Listener that prints each result as it
// arrives. In spec format every example gets a line under its
// group headings; in dot format one character per example.
type Stream struct {
	mu     sync.Mutex
	w      io.Writer
	format string
	styles styles
	path   []string
	dots   int
}

var _ runner.Listener = (*Stream)(nil)

// NewStream creates a stream writing to w in format (FormatSpec
// or FormatDot).
func NewStream(w io.Writer, format string, colored bool) *Stream {
	if format != FormatDot {
		format = FormatSpec
	}
	return &Stream{w: w, format: format, styles: newStyles(colored)}
}

// OnResult prints r.
func (s *Stream) OnResult(r *spec.Result) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.format == FormatDot {
		s.dot(r)
		return
	}

	// Print headings for groups not shared with the previous line.
	common := 0
	for common < len(s.path) && common < len(r.Ancestors) &&
		s.path[common] == r.Ancestors[common] {
		common++
	}
	for i := common; i < len(r.Ancestors); i++ {
		fmt.Fprintf(s.w, "%s%s\n",
			strings.Repeat("  ", i), s.styles.bold.Sprint(r.Ancestors[i]))
	}
	s.path = append(s.path[:0], r.Ancestors...)

	indent := strings.Repeat("  ", len(r.Ancestors))
	line := r.Label
	switch r.Status {
	case spec.StatusFailed:
		line += " (FAILED)"
	case spec.StatusError:
		line += " (ERROR)"
	case spec.StatusSkipped:
		if len(r.Messages) > 0 {
			line += " (" + r.Messages[0] + ")"
		}
	}
	fmt.Fprintf(s.w, "%s%s\n", indent, s.styles.forStatus(r.Status).Sprint(line))
}

func (s *Stream) dot(r *spec.Result) {
	var ch string
	switch r.Status {
	case spec.StatusPassed:
		ch = "."
	case spec.StatusFailed:
		ch = "F"
	case spec.StatusError:
		ch = "E"
	default:
		ch = "*"
	}
	fmt.Fprint(s.w, s.styles.forStatus(r.Status).Sprint(ch))
	s.dots++
}

// Finish prints the failure details and the totals line of run.
func (s *Stream) Finish(run *runner.Run) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.dots > 0 {
		fmt.Fprintln(s.w)
	}
	summary := SummarizeRun(run)

	if len(summary.Pending) > 0 {
		fmt.Fprintf(s.w, "\nPending:\n")
		for _, p := range summary.Pending {
			fmt.Fprintf(s.w, "  %s\n    %s\n",
				s.styles.skip.Sprint(p.Label), s.styles.dim.Sprint(p.Reason))
		}
	}

	if len(summary.Failures) > 0 {
		fmt.Fprintf(s.w, "\nFailures:\n")
		for i, f := range summary.Failures {
			fmt.Fprintf(s.w, "\n  %d) %s\n", i+1, f.Label)
			tint := s.styles.forStatus(f.Status)
			for _, m := range f.Messages {
				fmt.Fprintf(s.w, "     %s\n", tint.Sprint(m))
			}
			if f.Location != "" {
				fmt.Fprintf(s.w, "     %s\n", s.styles.dim.Sprint("# "+f.Location))
			}
		}
	}

	c := summary.Counts
	totals := fmt.Sprintf(
		"%d examples, %d failures, %d errors, %d skipped",
		c.Total, c.Failed, c.Errors, c.Skipped,
	)
	tint := s.styles.pass
	if !c.Succeeded() {
		tint = s.styles.fail
	}
	fmt.Fprintf(s.w, "\nFinished in %s\n%s\n",
		run.Duration.Round(time.Microsecond), tint.Sprint(totals))
}

// TextReporter renders a completed run the way Stream prints it
// live.
type TextReporter struct {
	format  string
	colored bool
}

// NewTextReporter creates a text reporter for FormatSpec or
// FormatDot.
func NewTextReporter(format string, colored bool) *TextReporter {
	return &TextReporter{format: format, colored: colored}
}

// Report writes every result followed by the summary.
func (r *TextReporter) Report(w io.Writer, run *runner.Run) error {
	s := NewStream(w, r.format, r.colored)
	for _, res := range ordered(run.Results) {
		s.OnResult(res)
	}
	s.Finish(run)
	return nil
}
