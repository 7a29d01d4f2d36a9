package ratelimit

import (
	"context"
	"time"

	"github.com/nao1215/prodscout/internal/config"
	"github.com/nao1215/prodscout/internal/metrics"
)

// Policy controls retries of rate limited operations.
type Policy struct {
	// MaxRetries is the number of retries after the first attempt.
	MaxRetries int

	// InitialBackoff is the delay before the first retry.
	InitialBackoff time.Duration

	// MaxBackoff caps the delay.
	MaxBackoff time.Duration
}

// DefaultPolicy returns 6 retries with backoff from 1s doubling up to 60s.
func DefaultPolicy() Policy {
	return Policy{
		MaxRetries:     config.DefaultRetryMax,
		InitialBackoff: config.DefaultRetryInitialBackoff,
		MaxBackoff:     config.DefaultRetryMaxBackoff,
	}
}

// PolicyFromConfig builds a Policy from the rate limit configuration.
func PolicyFromConfig(c config.RateLimitConfig) Policy {
	return Policy{
		MaxRetries:     c.MaxRetries,
		InitialBackoff: c.InitialBackoff,
		MaxBackoff:     c.MaxBackoff,
	}
}

// Backoff returns min(InitialBackoff * 2^attempt, MaxBackoff).
func (p Policy) Backoff(attempt int) time.Duration {
	d := p.InitialBackoff
	for i := 0; i < attempt; i++ {
		if d >= p.MaxBackoff {
			return p.MaxBackoff
		}
		d *= 2
	}
	if d > p.MaxBackoff {
		return p.MaxBackoff
	}
	return d
}

// Do runs op, retrying it with exponential backoff while it fails with a
// rate limit error. Any other error is returned at once. When the last
// permitted retry also hits a rate limit, Do returns a
// *RetriesExhaustedError wrapping that error.
func (m *Manager) Do(ctx context.Context, p Policy, op func(ctx context.Context) error) error {
	for attempt := 0; ; attempt++ {
		err := op(ctx)
		if err == nil {
			return nil
		}
		if !IsRateLimitError(err) {
			return err
		}
		if attempt >= p.MaxRetries {
			metrics.RateLimitExhausted.Inc()
			m.logger.Warn("rate limit retries exhausted", "retries", p.MaxRetries, "error", err)
			return &RetriesExhaustedError{Retries: p.MaxRetries, Err: err}
		}

		backoff := p.Backoff(attempt)
		metrics.RateLimitRetries.Inc()
		m.logger.Info("rate limited, backing off",
			"attempt", attempt+1,
			"max_retries", p.MaxRetries,
			"backoff", backoff,
		)
		if err := m.clock.Sleep(ctx, backoff); err != nil {
			return err
		}
	}
}

// Execute is Do for operations that return a value.
func Execute[T any](ctx context.Context, m *Manager, p Policy, op func(ctx context.Context) (T, error)) (T, error) {
	var result T
	err := m.Do(ctx, p, func(ctx context.Context) error {
		v, err := op(ctx)
		if err != nil {
			return err
		}
		result = v
		return nil
	})
	return result, err
}
