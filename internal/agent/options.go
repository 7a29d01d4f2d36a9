package agent

import (
	"context"
	"log/slog"

	"github.com/nao1215/prodscout/internal/llm"
	"github.com/nao1215/prodscout/internal/log"
	"github.com/nao1215/prodscout/internal/ratelimit"
)

// Temperatures of the generation calls.
const (
	ExtractionTemperature = 0.0
	ResearchTemperature   = 0.7
	ComparisonTemperature = 0.6
	ReportTemperature     = 0.7
	FactCheckTemperature  = 0.2
)

// options are shared by all agents; each agent reads the ones it needs.
type options struct {
	limiter     *ratelimit.Manager
	policy      ratelimit.Policy
	logger      *slog.Logger
	model       string
	temperature *float64
}

// Option configures an agent.
type Option func(*options)

// WithRateLimit runs network work under the manager's retry policy.
func WithRateLimit(m *ratelimit.Manager, p ratelimit.Policy) Option {
	return func(o *options) {
		o.limiter = m
		o.policy = p
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithModel overrides the model of the generation calls.
func WithModel(model string) Option {
	return func(o *options) {
		o.model = model
	}
}

// WithTemperature overrides the agent's default temperature.
func WithTemperature(t float64) Option {
	return func(o *options) {
		o.temperature = &t
	}
}

func newOptions(opts []Option) options {
	o := options{
		policy: ratelimit.DefaultPolicy(),
		logger: log.Discard(),
	}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// retry runs op under the retry policy, or once without a manager.
func (o options) retry(ctx context.Context, op func(ctx context.Context) error) error {
	if o.limiter == nil {
		return op(ctx)
	}
	return o.limiter.Do(ctx, o.policy, op)
}

// generator issues model calls for one agent.
type generator struct {
	gen         llm.Generator
	temperature float64
	options
}

func newGenerator(gen llm.Generator, defaultTemperature float64, opts []Option) generator {
	o := newOptions(opts)
	t := defaultTemperature
	if o.temperature != nil {
		t = *o.temperature
	}
	return generator{gen: gen, temperature: t, options: o}
}

func (g generator) generate(ctx context.Context, prompt string) (string, error) {
	return g.generateAt(ctx, prompt, g.temperature)
}

func (g generator) generateAt(ctx context.Context, prompt string, temperature float64) (string, error) {
	var text string
	err := g.retry(ctx, func(ctx context.Context) error {
		var err error
		text, err = g.gen.Generate(ctx, prompt, llm.Options{
			Temperature: temperature,
			Model:       g.model,
		})
		return err
	})
	return text, err
}
