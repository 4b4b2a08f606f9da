package pipeline

import (
	"context"
	"log/slog"
)

// Step is one stage of a Pipeline.
type Step interface {
	// Do runs the step against job. A returned error stops the job unless
	// the pipeline continues on error.
	Do(ctx context.Context, job *Job) error

	// Name returns the step's name for logging.
	Name() string
}

// Pipeline executes steps in order.
type Pipeline struct {
	steps           []Step
	logger          *slog.Logger
	continueOnError bool
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) {
		p.logger = logger
	}
}

// WithContinueOnError keeps running later steps after a step fails.
func WithContinueOnError(continueOnError bool) Option {
	return func(p *Pipeline) {
		p.continueOnError = continueOnError
	}
}

// New creates an empty Pipeline.
func New(opts ...Option) *Pipeline {
	p := &Pipeline{steps: make([]Step, 0)}
	for _, opt := range opts {
		opt(p)
	}
	if p.logger == nil {
		p.logger = slog.Default()
	}
	return p
}

// AddStep appends a step.
func (p *Pipeline) AddStep(step Step) {
	p.steps = append(p.steps, step)
}

// AddSteps appends several steps.
func (p *Pipeline) AddSteps(steps ...Step) {
	p.steps = append(p.steps, steps...)
}

// Execute runs every step against job, checking ctx before each one. It
// returns the first step error unless the pipeline continues on error, and
// stops early without error once a step marks the job as skipped.
func (p *Pipeline) Execute(ctx context.Context, job *Job) error {
	for _, step := range p.steps {
		if err := ctx.Err(); err != nil {
			p.logger.Warn("pipeline cancelled", "step", step.Name(), "reason", err)
			job.Err = err
			return err
		}

		p.logger.Debug("executing step", "step", step.Name(), "index", job.Index, "target", job.Target())
		if err := step.Do(ctx, job); err != nil {
			p.logger.Debug("step failed", "step", step.Name(), "index", job.Index, "error", err)
			job.Err = err
			if !p.continueOnError {
				return err
			}
		}
		job.Performed = append(job.Performed, step.Name())

		if job.Skipped {
			p.logger.Debug("job skipped", "step", step.Name(), "index", job.Index)
			return nil
		}
	}
	return nil
}

// StepCount returns the number of steps.
func (p *Pipeline) StepCount() int {
	return len(p.steps)
}

// StepNames returns the step names in execution order.
func (p *Pipeline) StepNames() []string {
	names := make([]string, len(p.steps))
	for i, step := range p.steps {
		names[i] = step.Name()
	}
	return names
}
