package pipeline

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/nao1215/aptscout/internal/extract"
	"github.com/nao1215/aptscout/internal/fetch"
	"github.com/nao1215/aptscout/internal/model"
	"github.com/nao1215/aptscout/internal/normalize"
	"github.com/nao1215/aptscout/internal/summarize"
)

const (
	dirPerm  = 0o750
	filePerm = 0o600
)

var (
	// ErrNoBody is returned when a step needs fetched markup that is missing.
	ErrNoBody = errors.New("job has no page body")

	// ErrNoRecord is returned when a step needs a record that is missing.
	ErrNoRecord = errors.New("job has no listing record")

	// ErrNoSummary is returned when a step needs a summary that is missing.
	ErrNoSummary = errors.New("job has no summary")
)

// AdStore persists normalized listings.
type AdStore interface {
	SaveAd(ctx context.Context, url string, rec *model.AdRecord) error
}

// FetchStep downloads job.URL into job.Body.
type FetchStep struct {
	fetcher fetch.Fetcher
}

// NewFetchStep returns a FetchStep using fetcher.
func NewFetchStep(fetcher fetch.Fetcher) *FetchStep {
	return &FetchStep{fetcher: fetcher}
}

// Name returns the step name.
func (s *FetchStep) Name() string { return "fetch" }

// Do fetches the listing page.
func (s *FetchStep) Do(ctx context.Context, job *Job) error {
	body, err := s.fetcher.Fetch(ctx, job.URL)
	if err != nil {
		return fmt.Errorf("fetch %s: %w", job.URL, err)
	}
	job.Body = body
	return nil
}

// ExtractStep parses job.Body and collects its tagged pairs.
type ExtractStep struct {
	extractor *extract.Extractor
}

// NewExtractStep returns an ExtractStep. A nil extractor uses the default
// data-cy extractor.
func NewExtractStep(extractor *extract.Extractor) *ExtractStep {
	if extractor == nil {
		extractor = extract.NewExtractor()
	}
	return &ExtractStep{extractor: extractor}
}

// Name returns the step name.
func (s *ExtractStep) Name() string { return "extract" }

// Do extracts tagged pairs from the page body.
func (s *ExtractStep) Do(_ context.Context, job *Job) error {
	if job.Body == nil {
		return ErrNoBody
	}
	doc, err := extract.ParseHTMLBytes(job.Body)
	if err != nil {
		return fmt.Errorf("parse %s: %w", job.Target(), err)
	}
	job.Pairs = s.extractor.Extract(doc)
	return nil
}

// NormalizeStep turns job.Pairs into job.Record and stamps the listing URL.
type NormalizeStep struct{}

// NewNormalizeStep returns a NormalizeStep.
func NewNormalizeStep() *NormalizeStep { return &NormalizeStep{} }

// Name returns the step name.
func (s *NormalizeStep) Name() string { return "normalize" }

// Do builds the canonical record.
func (s *NormalizeStep) Do(_ context.Context, job *Job) error {
	job.Record = normalize.WithURL(normalize.Normalize(job.Pairs), job.URL)
	return nil
}

// SkipExistingStep marks a job as skipped when its output file exists.
type SkipExistingStep struct {
	logger *slog.Logger
}

// NewSkipExistingStep returns a SkipExistingStep.
func NewSkipExistingStep(logger *slog.Logger) *SkipExistingStep {
	if logger == nil {
		logger = slog.Default()
	}
	return &SkipExistingStep{logger: logger}
}

// Name returns the step name.
func (s *SkipExistingStep) Name() string { return "skip_existing" }

// Do checks job.OutputPath.
func (s *SkipExistingStep) Do(_ context.Context, job *Job) error {
	if job.OutputPath == "" {
		return nil
	}
	_, err := os.Stat(job.OutputPath)
	switch {
	case err == nil:
		s.logger.Warn("output exists, skipping", "index", job.Index, "path", job.OutputPath)
		job.Skipped = true
		return nil
	case errors.Is(err, fs.ErrNotExist):
		return nil
	default:
		return fmt.Errorf("stat %s: %w", job.OutputPath, err)
	}
}

// WriteAdStep writes job.Record as canonical JSON.
type WriteAdStep struct {
	echo io.Writer
}

// NewWriteAdStep returns a WriteAdStep. When echo is non-nil the record is
// also written there.
func NewWriteAdStep(echo io.Writer) *WriteAdStep {
	return &WriteAdStep{echo: echo}
}

// Name returns the step name.
func (s *WriteAdStep) Name() string { return "write_ad" }

// Do formats and writes the record.
func (s *WriteAdStep) Do(_ context.Context, job *Job) error {
	if job.Record == nil {
		return ErrNoRecord
	}
	data, err := normalize.Format(job.Record)
	if err != nil {
		return fmt.Errorf("format record: %w", err)
	}
	return writeOutput(job.OutputPath, s.echo, data)
}

// StoreStep saves job.Record in an AdStore.
type StoreStep struct {
	store AdStore
}

// NewStoreStep returns a StoreStep.
func NewStoreStep(store AdStore) *StoreStep {
	return &StoreStep{store: store}
}

// Name returns the step name.
func (s *StoreStep) Name() string { return "store" }

// Do persists the record.
func (s *StoreStep) Do(ctx context.Context, job *Job) error {
	if job.Record == nil {
		return ErrNoRecord
	}
	if err := s.store.SaveAd(ctx, job.URL, job.Record); err != nil {
		return fmt.Errorf("store %s: %w", job.URL, err)
	}
	return nil
}

// LoadAdStep reads a stored record from job.InputPath.
type LoadAdStep struct{}

// NewLoadAdStep returns a LoadAdStep.
func NewLoadAdStep() *LoadAdStep { return &LoadAdStep{} }

// Name returns the step name.
func (s *LoadAdStep) Name() string { return "load_ad" }

// Do decodes the record file. The record's URL field becomes job.URL when
// the job has none.
func (s *LoadAdStep) Do(_ context.Context, job *Job) error {
	data, err := os.ReadFile(filepath.Clean(job.InputPath))
	if err != nil {
		return fmt.Errorf("read %s: %w", job.InputPath, err)
	}
	rec := model.NewAdRecord()
	if err := json.Unmarshal(data, rec); err != nil {
		return fmt.Errorf("decode %s: %w", job.InputPath, err)
	}
	job.Record = rec
	if job.URL == "" {
		if f, ok := rec.Get(model.FieldURL); ok {
			job.URL = f.String()
		}
	}
	return nil
}

// SummarizeStep asks a Summarizer about job.Record.
type SummarizeStep struct {
	summarizer summarize.Summarizer
}

// NewSummarizeStep returns a SummarizeStep.
func NewSummarizeStep(summarizer summarize.Summarizer) *SummarizeStep {
	return &SummarizeStep{summarizer: summarizer}
}

// Name returns the step name.
func (s *SummarizeStep) Name() string { return "summarize" }

// Do requests the summary.
func (s *SummarizeStep) Do(ctx context.Context, job *Job) error {
	if job.Record == nil {
		return ErrNoRecord
	}
	summary, err := s.summarizer.Summarize(ctx, job.Record)
	if err != nil {
		return fmt.Errorf("summarize %s: %w", job.Target(), err)
	}
	job.Summary = summary
	return nil
}

// WriteSummaryStep writes job.Summary as JSON indented by two spaces.
type WriteSummaryStep struct {
	echo io.Writer
}

// NewWriteSummaryStep returns a WriteSummaryStep. When echo is non-nil the
// summary is also written there.
func NewWriteSummaryStep(echo io.Writer) *WriteSummaryStep {
	return &WriteSummaryStep{echo: echo}
}

// Name returns the step name.
func (s *WriteSummaryStep) Name() string { return "write_summary" }

// Do encodes and writes the summary.
func (s *WriteSummaryStep) Do(_ context.Context, job *Job) error {
	if job.Summary == nil {
		return ErrNoSummary
	}
	var buf bytes.Buffer
	if err := normalize.Encode(&buf, job.Summary, "  "); err != nil {
		return fmt.Errorf("encode summary: %w", err)
	}
	return writeOutput(job.OutputPath, s.echo, buf.Bytes())
}

func writeOutput(path string, echo io.Writer, data []byte) error {
	if echo != nil {
		if _, err := echo.Write(data); err != nil {
			return fmt.Errorf("echo output: %w", err)
		}
	}
	if path == "" {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(path), dirPerm); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}
	if err := os.WriteFile(path, data, filePerm); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
