package report

import (
	"io"

	"github.com/nao1215/aptscout/internal/price"
)

// JSONWriter outputs the kept summaries as the JSON array produced by
// price.Marshal, followed by a newline.
type JSONWriter struct {
	baseWriter
}

// NewJSONWriter creates a JSONWriter that outputs to the given writer.
func NewJSONWriter(output io.Writer) *JSONWriter {
	return &JSONWriter{baseWriter: newBaseWriter(output)}
}

// Write outputs the report's records.
func (w *JSONWriter) Write(report *FilterReport) (int, error) {
	data, err := price.Marshal(report.Records)
	if err != nil {
		return 0, err
	}
	return w.output.Write(append(data, '\n'))
}
