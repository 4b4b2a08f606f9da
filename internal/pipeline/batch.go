package pipeline

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"
)

// DefaultConcurrency processes jobs one after another.
const DefaultConcurrency = 1

// BatchResult summarizes a finished batch.
type BatchResult struct {
	Total     int
	Succeeded int
	Skipped   int
	Failed    int
	Elapsed   time.Duration
}

// BatchProcessor runs jobs through fresh pipelines with a concurrency limit.
type BatchProcessor struct {
	pipelineFactory func() *Pipeline
	concurrency     int
	logger          *slog.Logger
}

// BatchOption configures a BatchProcessor.
type BatchOption func(*BatchProcessor)

// WithBatchLogger sets the logger.
func WithBatchLogger(logger *slog.Logger) BatchOption {
	return func(b *BatchProcessor) {
		b.logger = logger
	}
}

// WithConcurrency sets how many jobs run at once. Non-positive values are
// ignored.
func WithConcurrency(n int) BatchOption {
	return func(b *BatchProcessor) {
		if n > 0 {
			b.concurrency = n
		}
	}
}

// NewBatchProcessor returns a processor that builds one pipeline per job
// with pipelineFactory.
func NewBatchProcessor(pipelineFactory func() *Pipeline, opts ...BatchOption) *BatchProcessor {
	bp := &BatchProcessor{
		pipelineFactory: pipelineFactory,
		concurrency:     DefaultConcurrency,
	}
	for _, opt := range opts {
		opt(bp)
	}
	if bp.logger == nil {
		bp.logger = slog.Default()
	}
	return bp
}

// ProcessBatch runs every job. A job that fails is logged with its index
// and target and recorded in job.Err; the remaining jobs still run. The
// returned error is non-nil only when ctx ends the batch early.
func (bp *BatchProcessor) ProcessBatch(ctx context.Context, jobs []*Job) (BatchResult, error) {
	bp.logger.Info("starting batch", "total", len(jobs), "concurrency", bp.concurrency)
	start := time.Now()

	var succeeded, skipped, failed atomic.Int64
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(bp.concurrency)

	for _, job := range jobs {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}

			bp.logger.Info("processing item", "index", job.Index, "target", job.Target(), "total", len(jobs))
			if err := bp.pipelineFactory().Execute(gctx, job); err != nil {
				failed.Add(1)
				bp.logger.Error("failed to process item", "index", job.Index, "target", job.Target(), "error", err)
				return nil
			}
			if job.Skipped {
				skipped.Add(1)
				return nil
			}
			succeeded.Add(1)
			return nil
		})
	}

	err := g.Wait()
	if err == nil {
		err = ctx.Err()
	}
	result := BatchResult{
		Total:     len(jobs),
		Succeeded: int(succeeded.Load()),
		Skipped:   int(skipped.Load()),
		Failed:    int(failed.Load()),
		Elapsed:   time.Since(start),
	}
	bp.logger.Info("batch complete",
		"total", result.Total,
		"succeeded", result.Succeeded,
		"skipped", result.Skipped,
		"failed", result.Failed,
		"elapsed", result.Elapsed,
	)
	return result, err
}
