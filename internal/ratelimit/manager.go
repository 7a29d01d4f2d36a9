package ratelimit

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"sync"
	"time"

	"github.com/nao1215/prodscout/internal/config"
	"github.com/nao1215/prodscout/internal/log"
	"github.com/nao1215/prodscout/internal/metrics"
)

// domainState is the fixed window of one domain.
type domainState struct {
	count       int
	windowStart time.Time
}

// Manager throttles requests per domain and retries rate limited operations.
// It is safe for concurrent use.
type Manager struct {
	mu      sync.Mutex
	domains map[string]*domainState

	window time.Duration
	budget int
	clock  Clock
	logger *slog.Logger
}

// Option configures a Manager.
type Option func(*Manager)

// WithWindow sets the throttle window.
func WithWindow(d time.Duration) Option {
	return func(m *Manager) {
		if d > 0 {
			m.window = d
		}
	}
}

// WithBudget sets how many requests a domain may receive per window.
func WithBudget(n int) Option {
	return func(m *Manager) {
		if n > 0 {
			m.budget = n
		}
	}
}

// WithClock replaces the system clock.
func WithClock(c Clock) Option {
	return func(m *Manager) {
		if c != nil {
			m.clock = c
		}
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(m *Manager) {
		if logger != nil {
			m.logger = logger
		}
	}
}

// NewManager creates a Manager with a 60 requests per 60 seconds window
// unless overridden.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		domains: make(map[string]*domainState),
		window:  config.DefaultRateLimitWindow,
		budget:  config.DefaultRateLimitBudget,
		clock:   SystemClock(),
		logger:  log.Discard(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Clock returns the clock used by the manager.
func (m *Manager) Clock() Clock {
	return m.clock
}

// CheckDomain admits one request to the host of rawURL. When the domain has
// used its budget for the current window, the call blocks until the window
// has elapsed and then opens a new window. It returns an error for URLs
// without a host or when ctx is cancelled while waiting.
func (m *Manager) CheckDomain(ctx context.Context, rawURL string) error {
	domain, err := domainOf(rawURL)
	if err != nil {
		return err
	}

	for {
		m.mu.Lock()
		now := m.clock.Now()
		st, ok := m.domains[domain]
		if !ok || now.Sub(st.windowStart) > m.window {
			m.domains[domain] = &domainState{count: 1, windowStart: now}
			m.mu.Unlock()
			return nil
		}
		if st.count < m.budget {
			st.count++
			m.mu.Unlock()
			return nil
		}
		observed := st.windowStart
		wait := m.window - now.Sub(st.windowStart)
		m.mu.Unlock()

		metrics.DomainThrottleWaits.Inc()
		m.logger.Info("domain request budget used, waiting for the next window",
			"domain", domain,
			"wait", wait,
		)
		if err := m.clock.Sleep(ctx, wait); err != nil {
			return err
		}

		// The first waiter to wake opens the next window. Others see the
		// new window start and compete for its budget on the next loop.
		m.mu.Lock()
		if st := m.domains[domain]; st.windowStart.Equal(observed) {
			m.domains[domain] = &domainState{count: 1, windowStart: m.clock.Now()}
			m.mu.Unlock()
			return nil
		}
		m.mu.Unlock()
	}
}

// Usage returns the request count and window start of a domain.
func (m *Manager) Usage(domain string) (count int, windowStart time.Time, ok bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	st, ok := m.domains[domain]
	if !ok {
		return 0, time.Time{}, false
	}
	return st.count, st.windowStart, true
}

func domainOf(rawURL string) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", fmt.Errorf("%w: %s: %w", ErrInvalidURL, rawURL, err)
	}
	host := u.Hostname()
	if host == "" {
		return "", fmt.Errorf("%w: %q has no host", ErrInvalidURL, rawURL)
	}
	return host, nil
}
