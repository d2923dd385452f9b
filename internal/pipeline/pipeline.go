package pipeline

import (
	"context"
	"errors"
	"log/slog"

	"github.com/nao1215/pdscload/internal/model"
)

// Step defines the interface that all pipeline steps must implement.
// Steps are executed in sequence, each receiving the run as left by the
// steps before it.
type Step interface {
	// Do executes the step. Problems that only affect one folder, item or
	// file are reported to the observer and Do returns nil; a returned error
	// means the step itself failed.
	Do(ctx context.Context, run *model.LoadRun) error

	// Name returns the step's name for logging and the run record.
	Name() string
}

// Pipeline orchestrates the execution of multiple steps.
type Pipeline struct {
	steps []Step

	observer model.Observer

	logger *slog.Logger

	// continueOnError keeps executing steps after a non-fatal failure.
	continueOnError bool
}

// Option is a function that configures a Pipeline.
type Option func(*Pipeline)

// WithLogger sets a custom logger for the pipeline.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) {
		p.logger = logger
	}
}

// WithObserver sets the observer told when the run is done.
func WithObserver(o model.Observer) Option {
	return func(p *Pipeline) {
		p.observer = o
	}
}

// WithContinueOnError configures the pipeline to keep going when a step
// fails. The error is still recorded on the run. A *FatalError always stops
// the pipeline.
func WithContinueOnError(continueOnError bool) Option {
	return func(p *Pipeline) {
		p.continueOnError = continueOnError
	}
}

// New creates a new Pipeline with the given options.
// Steps should be added using AddStep after creation.
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
	if p.observer == nil {
		p.observer = model.NopObserver{}
	}

	return p
}

// AddStep appends a step to the pipeline.
// Steps are executed in the order they are added.
func (p *Pipeline) AddStep(step Step) {
	p.steps = append(p.steps, step)
}

// AddSteps appends multiple steps to the pipeline.
func (p *Pipeline) AddSteps(steps ...Step) {
	p.steps = append(p.steps, steps...)
}

// Execute runs all steps in sequence and finishes the run.
//
// Cancellation is checked before each step; steps check it again between
// units of work. A cancelled run is marked cancelled and the context error
// is returned. A failed step marks the run failed and its error is
// returned, unless continueOnError is set and the error is not fatal.
func (p *Pipeline) Execute(ctx context.Context, run *model.LoadRun) error {
	for _, step := range p.steps {
		if err := ctx.Err(); err != nil {
			p.logger.Warn("pipeline cancelled",
				"step", step.Name(),
				"reason", err,
			)
			run.Finish(model.RunCancelled, err)
			return err
		}

		p.logger.Info("executing step",
			"step", step.Name(),
			"run", run.ID,
		)

		if err := step.Do(ctx, run); err != nil {
			run.PerformedSteps = append(run.PerformedSteps, step.Name())

			if ctx.Err() != nil && errors.Is(err, ctx.Err()) {
				p.logger.Warn("step cancelled", "step", step.Name())
				run.Finish(model.RunCancelled, err)
				return err
			}

			p.logger.Error("step failed",
				"step", step.Name(),
				"run", run.ID,
				"error", err,
			)

			if !p.continueOnError || errors.Is(err, ErrFatalPrecondition) {
				run.Finish(model.RunFailed, err)
				return err
			}

			run.Error = err
			run.ErrorMessage = err.Error()
			continue
		}

		p.logger.Debug("step completed",
			"step", step.Name(),
			"run", run.ID,
		)
		run.PerformedSteps = append(run.PerformedSteps, step.Name())
	}

	run.Finish(model.RunCompleted, nil)
	p.observer.Complete("Done.")
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
