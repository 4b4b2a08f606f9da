package report

import (
	"bufio"
	"io"
)

// URLListWriter writes URLs one per line.
type URLListWriter struct {
	baseWriter
}

// NewURLListWriter creates a URLListWriter that outputs to the given writer.
func NewURLListWriter(output io.Writer) *URLListWriter {
	return &URLListWriter{baseWriter: newBaseWriter(output)}
}

// Write outputs urls, each followed by a newline.
func (w *URLListWriter) Write(urls []string) (int, error) {
	bw := bufio.NewWriter(w.output)
	total := 0
	for _, u := range urls {
		n, err := bw.WriteString(u + "\n")
		total += n
		if err != nil {
			return total, err
		}
	}
	return total, bw.Flush()
}
