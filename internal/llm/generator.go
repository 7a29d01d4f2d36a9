package llm

import "context"

// Options are per-call generation settings.
type Options struct {
	// Temperature is the sampling temperature.
	Temperature float64

	// Model overrides the client's default model when not empty.
	Model string

	// MaxRetries overrides the client's retry count for server errors
	// when positive.
	MaxRetries int
}

// Generator produces text for a prompt.
type Generator interface {
	Generate(ctx context.Context, prompt string, opts Options) (string, error)
}

// GeneratorFunc adapts a function to the Generator interface.
type GeneratorFunc func(ctx context.Context, prompt string, opts Options) (string, error)

// Generate calls f.
func (f GeneratorFunc) Generate(ctx context.Context, prompt string, opts Options) (string, error) {
	return f(ctx, prompt, opts)
}
