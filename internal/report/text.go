package report

import (
	"fmt"
	"io"
	"strings"
)

// TextWriter outputs one line per kept listing for terminal display.
type TextWriter struct {
	baseWriter
}

// NewTextWriter creates a TextWriter that outputs to the given writer.
func NewTextWriter(output io.Writer) *TextWriter {
	return &TextWriter{baseWriter: newBaseWriter(output)}
}

// Write outputs the report.
func (w *TextWriter) Write(report *FilterReport) (int, error) {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%d of %d listing(s) at or below %.2f\n", len(report.Records), report.Loaded, report.Limit)
	if len(report.Records) > 0 {
		sb.WriteString(strings.Repeat("=", 60) + "\n")
	}
	for i, r := range report.Records {
		fmt.Fprintf(&sb, "%3d. %10.2f  %s\n", i+1, r.Total, titleOf(r))
		if u := stringField(r.Summary, "URL"); u != "" && u != "#" {
			fmt.Fprintf(&sb, "     %s\n", u)
		}
		fmt.Fprintf(&sb, "     %s\n", r.Path)
	}
	return io.WriteString(w.output, sb.String())
}
