package report

import (
	"io"
	"time"

	"github.com/nao1215/aptscout/internal/price"
)

// FilterReport is the outcome of one filter run.
type FilterReport struct {
	// Dir is the summary directory that was read.
	Dir string

	// Limit is the price threshold.
	Limit float64

	// Loaded is the number of summaries that could be totalled.
	Loaded int

	// Records are the kept summaries in ascending total order.
	Records []price.Record

	// GeneratedAt is when the report was produced.
	GeneratedAt time.Time
}

// Writer outputs a FilterReport.
type Writer interface {
	// Write outputs the report and returns the number of bytes written.
	Write(report *FilterReport) (int, error)
}

// MultiWriter writes a report to several Writers, stopping at the first
// error.
type MultiWriter struct {
	writers []Writer
}

// NewMultiWriter creates a Writer that writes to all provided Writers.
func NewMultiWriter(writers ...Writer) *MultiWriter {
	return &MultiWriter{writers: writers}
}

// Write outputs the report to all configured Writers.
func (m *MultiWriter) Write(report *FilterReport) (int, error) {
	var total int
	for _, w := range m.writers {
		n, err := w.Write(report)
		total += n
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

type baseWriter struct {
	output io.Writer
}

func newBaseWriter(output io.Writer) baseWriter {
	return baseWriter{output: output}
}
