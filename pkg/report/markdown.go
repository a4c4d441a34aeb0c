package report

import (
	"fmt"
	"io"
	"strings"
	"time"

	"digital.vasic.specs/pkg/runner"
)

// MarkdownReporter renders a run summary as Markdown.
type MarkdownReporter struct{}

// Report writes the Markdown summary of run.
func (MarkdownReporter) Report(w io.Writer, run *runner.Run) error {
	_, err := io.WriteString(w, MarkdownSummary(SummarizeRun(run)))
	return err
}

// MarkdownSummary renders s as a Markdown document.
func MarkdownSummary(s *Summary) string {
	var sb strings.Builder

	sb.WriteString("# Spec Run Summary\n\n")
	if s.RunID != "" {
		fmt.Fprintf(&sb, "**Run:** %s\n\n", s.RunID)
	}
	if s.Target != "" {
		fmt.Fprintf(&sb, "**Target:** %s\n\n", s.Target)
	}
	fmt.Fprintf(&sb, "**Generated:** %s\n\n",
		s.GeneratedAt.Format(time.RFC3339))

	sb.WriteString("## Statistics\n\n")
	sb.WriteString("| Metric | Value |\n")
	sb.WriteString("|--------|-------|\n")
	fmt.Fprintf(&sb, "| Examples | %d |\n", s.Counts.Total)
	fmt.Fprintf(&sb, "| Passed | %d |\n", s.Counts.Passed)
	fmt.Fprintf(&sb, "| Failed | %d |\n", s.Counts.Failed)
	fmt.Fprintf(&sb, "| Errors | %d |\n", s.Counts.Errors)
	fmt.Fprintf(&sb, "| Skipped | %d |\n", s.Counts.Skipped)
	fmt.Fprintf(&sb, "| Assertions | %d |\n", s.Assertions)
	fmt.Fprintf(&sb, "| Pass Rate | %.0f%% |\n", s.PassRate*100)
	fmt.Fprintf(&sb, "| Duration | %v |\n", s.Duration)

	if len(s.Failures) > 0 {
		sb.WriteString("\n## Failures\n\n")
		for i, f := range s.Failures {
			fmt.Fprintf(&sb, "%d. **%s** (%s)", i+1,
				escapeCell(f.Label), strings.ToUpper(f.Status))
			if f.Location != "" {
				fmt.Fprintf(&sb, " `%s`", f.Location)
			}
			sb.WriteString("\n")
			for _, m := range f.Messages {
				fmt.Fprintf(&sb, "   - %s\n", m)
			}
		}
	}

	writeSkips(&sb, "Pending", s.Pending)
	writeSkips(&sb, "Skipped", s.Skipped)

	sb.WriteString("\n---\n\n")
	sb.WriteString("*Generated by specrun*\n")
	return sb.String()
}

func writeSkips(sb *strings.Builder, title string, skips []Skip) {
	if len(skips) == 0 {
		return
	}
	fmt.Fprintf(sb, "\n## %s\n\n", title)
	sb.WriteString("| Example | Reason |\n")
	sb.WriteString("|---------|--------|\n")
	for _, s := range skips {
		fmt.Fprintf(sb, "| %s | %s |\n",
			escapeCell(s.Label), escapeCell(s.Reason))
	}
}

func escapeCell(s string) string {
	return strings.ReplaceAll(s, "|", `\|`)
}
