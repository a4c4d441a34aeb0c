package report

import (
	"bytes"
	"fmt"
	"html"
	"io"
	"strings"
	"time"

	"digital.vasic.specs/pkg/runner"
	"digital.vasic.specs/pkg/spec"
)

// HTMLReporter renders a run as a standalone HTML page.
type HTMLReporter struct{}

// NewHTMLReporter creates a new HTML reporter.
func NewHTMLReporter() *HTMLReporter {
	return &HTMLReporter{}
}

// Generate returns the HTML page for run.
func (r *HTMLReporter) Generate(run *runner.Run) ([]byte, error) {
	var buf bytes.Buffer
	if err := r.Report(&buf, run); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Report writes the HTML page for run.
func (r *HTMLReporter) Report(w io.Writer, run *runner.Run) error {
	summary := SummarizeRun(run)

	r.writeHeader(w, "Spec Run "+run.ID)
	fmt.Fprintf(w, "<h1>Spec Run</h1>\n")
	fmt.Fprintf(w, "<p><strong>Run:</strong> <code>%s</code></p>\n",
		html.EscapeString(run.ID))
	if run.Target != "" {
		fmt.Fprintf(w, "<p><strong>Target:</strong> %s</p>\n",
			html.EscapeString(run.Target))
	}
	fmt.Fprintf(w, "<p><strong>Started:</strong> %s</p>\n",
		run.Started.Format(time.RFC3339))

	r.writeStats(w, summary)
	r.writeExamples(w, ordered(run.Results))
	r.writeFooter(w)
	return nil
}

func (r *HTMLReporter) writeStats(w io.Writer, s *Summary) {
	fmt.Fprintln(w, "<h2>Statistics</h2>")
	fmt.Fprintln(w, "<table>")
	fmt.Fprintln(w, "<tr><th>Metric</th><th>Value</th></tr>")
	rows := []struct {
		name  string
		value any
	}{
		{"Examples", s.Counts.Total},
		{"Passed", s.Counts.Passed},
		{"Failed", s.Counts.Failed},
		{"Errors", s.Counts.Errors},
		{"Skipped", s.Counts.Skipped},
		{"Pass Rate", fmt.Sprintf("%.0f%%", s.PassRate*100)},
		{"Duration", s.Duration},
	}
	for _, row := range rows {
		fmt.Fprintf(w, "<tr><td>%s</td><td>%v</td></tr>\n",
			row.name, row.value)
	}
	fmt.Fprintln(w, "</table>")
}

func (r *HTMLReporter) writeExamples(w io.Writer, results []*spec.Result) {
	if len(results) == 0 {
		return
	}

	fmt.Fprintln(w, "<h2>Examples</h2>")
	fmt.Fprintln(w, "<table>")
	fmt.Fprintln(w,
		"<tr><th>Example</th><th>Status</th>"+
			"<th>Assertions</th><th>Messages</th></tr>")

	for _, res := range results {
		passed := 0
		for _, a := range res.Assertions {
			if a.Passed {
				passed++
			}
		}
		msgs := make([]string, len(res.Messages))
		for i, m := range res.Messages {
			msgs[i] = html.EscapeString(m)
		}
		fmt.Fprintf(w,
			"<tr><td>%s</td><td class=\"status-%s\">%s</td>"+
				"<td>%d/%d</td><td>%s</td></tr>\n",
			html.EscapeString(res.FullLabel()),
			res.Status, strings.ToUpper(res.Status),
			passed, len(res.Assertions),
			strings.Join(msgs, "<br>"),
		)
	}
	fmt.Fprintln(w, "</table>")
}

func (r *HTMLReporter) writeHeader(w io.Writer, title string) {
	fmt.Fprintf(w, `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="UTF-8">
<meta name="viewport" content="width=device-width, initial-scale=1.0">
<title>%s</title>
<style>
body {
  font-family: -apple-system, BlinkMacSystemFont,
    "Segoe UI", Roboto, sans-serif;
  max-width: 960px;
  margin: 0 auto;
  padding: 20px;
  color: #333;
}
h1 { color: #2c3e50; border-bottom: 2px solid #3498db; }
table { border-collapse: collapse; width: 100%%; margin: 10px 0; }
th, td { border: 1px solid #ddd; padding: 6px 10px; text-align: left; }
th { background: #3498db; color: #fff; }
.status-passed { color: #27ae60; font-weight: bold; }
.status-failed, .status-error { color: #e74c3c; font-weight: bold; }
.status-skipped { color: #f39c12; }
code { background: #ecf0f1; padding: 2px 6px; }
footer { margin-top: 40px; color: #7f8c8d; font-size: 0.9em; }
</style>
</head>
<body>
`, html.EscapeString(title))
}

func (r *HTMLReporter) writeFooter(w io.Writer) {
	fmt.Fprintln(w, "<footer>")
	fmt.Fprintln(w, "<p>Generated by specrun</p>")
	fmt.Fprintln(w, "</footer>")
	fmt.Fprintln(w, "</body>")
	fmt.Fprintln(w, "</html>")
}
