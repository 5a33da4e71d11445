package pipeline

import (
	"context"
	"log/slog"

	"github.com/nao1215/policyscan/internal/model"
)

// Job carries one analysis through the steps of a Pipeline.
type Job struct {
	// Key is the cache key for the subject. Empty disables caching.
	Key string

	// Domain is the normalized site to discover a policy for, if any.
	Domain string

	// Subject names the company or platform in prose.
	Subject string

	// Text is caller-provided policy text.
	Text string

	// Profile is set for built-in platform analyses.
	Profile *model.PolicyProfile

	// Document is the discovery outcome for domain analyses.
	Document *model.PolicyDocument

	// PolicyText is what the model backend is shown.
	PolicyText string

	// Result is filled by the first step that can produce one.
	Result *model.AnalysisResult

	// Cached is true when Result came from the store.
	Cached bool

	// Cancelled is set when the context ended before all steps ran.
	Cancelled bool

	// PerformedSteps lists the steps that ran, in order.
	PerformedSteps []string
}

// Step defines the interface that all pipeline steps must implement.
// Steps run in sequence, each seeing what earlier steps left in the Job.
type Step interface {
	// Do executes the step. Problems that should not stop the analysis are
	// logged and nil is returned.
	Do(ctx context.Context, job *Job) error

	// Name returns the step's name for logging purposes.
	Name() string
}

// Pipeline runs steps in order and stops at the first error.
type Pipeline struct {
	steps  []Step
	logger *slog.Logger
}

// Option is a function that configures a Pipeline.
type Option func(*Pipeline)

// WithLogger sets a custom logger for the pipeline.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) {
		p.logger = logger
	}
}

// New creates a new Pipeline with the given options.
func New(opts ...Option) *Pipeline {
	p := &Pipeline{
		steps: make([]Step, 0),
	}

	for _, opt := range opts {
		opt(p)
	}

	if p.logger == nil {
		p.logger = slog.Default()
	}

	return p
}

// AddStep appends a step to the pipeline.
func (p *Pipeline) AddStep(step Step) {
	p.steps = append(p.steps, step)
}

// AddSteps appends multiple steps to the pipeline.
func (p *Pipeline) AddSteps(steps ...Step) {
	p.steps = append(p.steps, steps...)
}

// Execute runs all steps in sequence. Context cancellation is checked
// between steps; steps handle their own timeouts.
func (p *Pipeline) Execute(ctx context.Context, job *Job) error {
	for _, step := range p.steps {
		select {
		case <-ctx.Done():
			p.logger.Warn("pipeline cancelled",
				"step", step.Name(),
				"reason", ctx.Err(),
			)
			job.Cancelled = true
			return ctx.Err()
		default:
		}

		p.logger.Debug("executing step",
			"step", step.Name(),
			"subject", job.Subject,
		)

		if err := step.Do(ctx, job); err != nil {
			p.logger.Debug("step failed",
				"step", step.Name(),
				"subject", job.Subject,
				"error", err,
			)
			return err
		}

		job.PerformedSteps = append(job.PerformedSteps, step.Name())
	}

	return nil
}

// StepCount returns the number of steps in the pipeline.
func (p *Pipeline) StepCount() int {
	return len(p.steps)
}

// StepNames returns the names of all steps in execution order.
func (p *Pipeline) StepNames() []string {
	names := make([]string, len(p.steps))
	for i, step := range p.steps {
		names[i] = step.Name()
	}
	return names
}
