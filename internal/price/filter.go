package price

import (
	"bytes"
	"cmp"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"slices"
	"strings"
)

// SummarySuffix is the file name suffix of summary files.
const SummarySuffix = ".ai.json"

// Record is a decoded summary together with its source path and total.
type Record struct {
	Path    string
	Total   float64
	Summary map[string]any
}

// NewRecord decodes a summary and computes its total. Numbers keep their
// original textual form when the summary is encoded again.
func NewRecord(path string, data []byte) (Record, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var summary map[string]any
	if err := dec.Decode(&summary); err != nil {
		return Record{}, fmt.Errorf("failed to decode summary: %w", err)
	}
	total, err := TotalPrice(summary)
	if err != nil {
		return Record{}, err
	}
	return Record{Path: path, Total: total, Summary: summary}, nil
}

// LoadDir reads every regular file in dir whose name ends with
// SummarySuffix. Files that cannot be read, decoded or totalled are logged
// with their path and skipped. Only a failure to list dir is returned.
func LoadDir(ctx context.Context, dir string, logger *slog.Logger) ([]Record, error) {
	if logger == nil {
		logger = slog.Default()
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read summary directory: %w", err)
	}

	records := make([]Record, 0, len(entries))
	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			return records, err
		}
		path := filepath.Join(dir, entry.Name())
		if !strings.HasSuffix(path, SummarySuffix) || !entry.Type().IsRegular() {
			continue
		}

		data, err := os.ReadFile(path) //nolint:gosec // path comes from the user's summary directory
		if err != nil {
			logger.Error("failed to read summary", "path", path, "error", err)
			continue
		}
		rec, err := NewRecord(path, data)
		if err != nil {
			logger.Error("failed to process summary", "path", path, "error", err)
			continue
		}
		records = append(records, rec)
	}
	return records, nil
}

// Filter keeps the records whose total is finite and at most limit,
// annotates each kept summary with its path and total, and orders them by
// ascending total. Records with equal totals keep their input order.
func Filter(records []Record, limit float64) []Record {
	kept := make([]Record, 0, len(records))
	for _, r := range records {
		if math.IsInf(r.Total, 0) || !(r.Total <= limit) {
			continue
		}
		r.Summary[KeyPath] = r.Path
		r.Summary[KeyTotalPrice] = r.Total
		kept = append(kept, r)
	}
	slices.SortStableFunc(kept, func(a, b Record) int {
		return cmp.Compare(a.Total, b.Total)
	})
	return kept
}

// Marshal encodes the summaries of records as a JSON array with sorted keys,
// a four-space indent and unescaped UTF-8 text.
func Marshal(records []Record) ([]byte, error) {
	summaries := make([]map[string]any, 0, len(records))
	for _, r := range records {
		summaries = append(summaries, r.Summary)
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "    ")
	if err := enc.Encode(summaries); err != nil {
		return nil, fmt.Errorf("failed to encode filtered summaries: %w", err)
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}
