package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/nao1215/prodscout/internal/log"
	"github.com/nao1215/prodscout/internal/metrics"
	"github.com/nao1215/prodscout/internal/model"
)

// Step is one stage of an analysis.
type Step interface {
	// Do runs the stage. It reads the outputs of earlier stages from
	// analysis and records its own output there.
	Do(ctx context.Context, analysis *model.Analysis) error

	// Name returns the stage name shown to users.
	Name() string
}

// Observer is told when each stage starts.
type Observer interface {
	StageStarted(ctx context.Context, analysis *model.Analysis, stage string)
}

// ObserverFunc adapts a function to the Observer interface.
type ObserverFunc func(ctx context.Context, analysis *model.Analysis, stage string)

// StageStarted calls f.
func (f ObserverFunc) StageStarted(ctx context.Context, analysis *model.Analysis, stage string) {
	f(ctx, analysis, stage)
}

// StageError is returned by Execute when a stage fails.
type StageError struct {
	// Stage is the name of the failed stage.
	Stage string

	// Err is the error returned by the stage.
	Err error
}

// Error implements error.
func (e *StageError) Error() string {
	return fmt.Sprintf("%s failed: %v", e.Stage, e.Err)
}

// Unwrap returns the stage error.
func (e *StageError) Unwrap() error {
	return e.Err
}

// Pipeline runs steps in sequence. It keeps no state between runs, so one
// Pipeline may execute many analyses, including concurrently.
type Pipeline struct {
	steps    []Step
	logger   *slog.Logger
	observer Observer
	now      func() time.Time
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) {
		p.logger = logger
	}
}

// WithObserver sets the observer notified before each stage.
func WithObserver(o Observer) Option {
	return func(p *Pipeline) {
		p.observer = o
	}
}

// WithNow replaces time.Now for the start and end times of an analysis.
func WithNow(now func() time.Time) Option {
	return func(p *Pipeline) {
		if now != nil {
			p.now = now
		}
	}
}

// New creates an empty Pipeline.
func New(opts ...Option) *Pipeline {
	p := &Pipeline{
		steps: make([]Step, 0),
		now:   time.Now,
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.logger == nil {
		p.logger = log.Discard()
	}
	return p
}

// AddStep appends a step.
func (p *Pipeline) AddStep(step Step) {
	p.steps = append(p.steps, step)
}

// AddSteps appends steps in order.
func (p *Pipeline) AddSteps(steps ...Step) {
	p.steps = append(p.steps, steps...)
}

// Execute runs every step on analysis. The first failure, including a
// cancelled context, marks the analysis failed and is returned as a
// *StageError; the remaining steps do not run.
func (p *Pipeline) Execute(ctx context.Context, analysis *model.Analysis) error {
	analysis.MarkRunning(p.now())
	p.logger.Info("analysis started", "id", analysis.ID, "url", analysis.URL)

	for _, step := range p.steps {
		name := step.Name()
		if err := ctx.Err(); err != nil {
			p.logger.Warn("analysis cancelled", "id", analysis.ID, "stage", name, "reason", err)
			return p.fail(analysis, name, err)
		}

		if p.observer != nil {
			p.observer.StageStarted(ctx, analysis, name)
		}
		p.logger.Info("executing stage", "id", analysis.ID, "stage", name)

		start := time.Now()
		err := step.Do(ctx, analysis)
		metrics.ObserveStage(name, time.Since(start))
		if err != nil {
			p.logger.Error("stage failed", "id", analysis.ID, "stage", name, "error", err)
			return p.fail(analysis, name, err)
		}

		analysis.MarkStageCompleted(name)
		p.logger.Debug("stage completed", "id", analysis.ID, "stage", name)
	}

	analysis.MarkComplete(p.now())
	metrics.PipelineRuns.WithLabelValues(string(model.StatusComplete)).Inc()
	p.logger.Info("analysis complete", "id", analysis.ID, "duration", analysis.Duration())
	return nil
}

func (p *Pipeline) fail(analysis *model.Analysis, stage string, err error) error {
	analysis.MarkFailed(stage, err, p.now())
	metrics.PipelineRuns.WithLabelValues(string(model.StatusFailed)).Inc()
	return &StageError{Stage: stage, Err: err}
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
