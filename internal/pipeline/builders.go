package pipeline

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/nao1215/aptscout/internal/fetch"
	"github.com/nao1215/aptscout/internal/model"
	"github.com/nao1215/aptscout/internal/price"
	"github.com/nao1215/aptscout/internal/summarize"
)

// ParseOptions configures NewParsePipeline.
type ParseOptions struct {
	Fetcher fetch.Fetcher
	Store   AdStore
	Echo    io.Writer
	Force   bool
	Logger  *slog.Logger
}

// NewParsePipeline returns the fetch, extract and normalize pipeline for a
// listing URL. Existing output files are skipped unless Force is set; the
// store step is added only when a store is configured.
func NewParsePipeline(o ParseOptions) *Pipeline {
	p := New(WithLogger(o.Logger))
	if !o.Force {
		p.AddStep(NewSkipExistingStep(o.Logger))
	}
	p.AddSteps(
		NewFetchStep(o.Fetcher),
		NewExtractStep(nil),
		NewNormalizeStep(),
		NewWriteAdStep(o.Echo),
	)
	if o.Store != nil {
		p.AddStep(NewStoreStep(o.Store))
	}
	return p
}

// SummarizeOptions configures NewSummarizePipeline.
type SummarizeOptions struct {
	Summarizer summarize.Summarizer
	Echo       io.Writer
	Force      bool
	Logger     *slog.Logger
}

// NewSummarizePipeline returns the load, summarize and write pipeline for a
// stored record.
func NewSummarizePipeline(o SummarizeOptions) *Pipeline {
	p := New(WithLogger(o.Logger))
	if !o.Force {
		p.AddStep(NewSkipExistingStep(o.Logger))
	}
	p.AddSteps(
		NewLoadAdStep(),
		NewSummarizeStep(o.Summarizer),
		NewWriteSummaryStep(o.Echo),
	)
	return p
}

// ScrapAd fetches one listing page and returns its normalized record.
func ScrapAd(ctx context.Context, fetcher fetch.Fetcher, url string) (*model.AdRecord, error) {
	job := &Job{URL: url}
	p := New()
	p.AddSteps(NewFetchStep(fetcher), NewExtractStep(nil), NewNormalizeStep())
	if err := p.Execute(ctx, job); err != nil {
		return nil, err
	}
	return job.Record, nil
}

// ParseJobs builds one job per URL. With an output directory each job
// writes <dir>/<index>.json, indexed from 0 in URL order.
func ParseJobs(urls []string, outputDir string) []*Job {
	jobs := make([]*Job, 0, len(urls))
	for i, url := range urls {
		job := &Job{Index: i, URL: url}
		if outputDir != "" {
			job.OutputPath = filepath.Join(outputDir, strconv.Itoa(job.Index)+".json")
		}
		jobs = append(jobs, job)
	}
	return jobs
}

// SummarizeJobs builds one job per record file. With an output directory
// each job writes <dir>/<stem>.ai.json.
func SummarizeJobs(paths []string, outputDir string) []*Job {
	jobs := make([]*Job, 0, len(paths))
	for i, path := range paths {
		job := &Job{Index: i, InputPath: path}
		if outputDir != "" {
			job.OutputPath = filepath.Join(outputDir, SummaryName(path))
		}
		jobs = append(jobs, job)
	}
	return jobs
}

// SummaryName returns the summary file name for a record file.
func SummaryName(recordPath string) string {
	base := filepath.Base(recordPath)
	return strings.TrimSuffix(base, filepath.Ext(base)) + price.SummarySuffix
}

// RecordFiles lists the *.json record files in dir, excluding summaries.
func RecordFiles(dir string) ([]string, error) {
	matches, err := filepath.Glob(filepath.Join(dir, "*.json"))
	if err != nil {
		return nil, fmt.Errorf("list records: %w", err)
	}
	files := make([]string, 0, len(matches))
	for _, m := range matches {
		if strings.HasSuffix(m, price.SummarySuffix) {
			continue
		}
		files = append(files, m)
	}
	return files, nil
}
