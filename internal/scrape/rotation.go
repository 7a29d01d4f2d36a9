package scrape

import (
	"net/url"
	"sync"
)

// DefaultUserAgents is the built-in user agent pool.
var DefaultUserAgents = []string{
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36",
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7)",
	"Mozilla/5.0 (iPhone; CPU iPhone OS 14_7_1 like Mac OS X)",
}

// rotator hands out the items of a pool in round-robin order.
type rotator[T any] struct {
	mu    sync.Mutex
	items []T
	next  int
}

func newRotator[T any](items []T) *rotator[T] {
	return &rotator[T]{items: append([]T(nil), items...)}
}

// Next returns the next item, or false when the pool is empty.
func (r *rotator[T]) Next() (T, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var zero T
	if len(r.items) == 0 {
		return zero, false
	}
	item := r.items[r.next]
	r.next = (r.next + 1) % len(r.items)
	return item, true
}

// Len returns the pool size.
func (r *rotator[T]) Len() int {
	return len(r.items)
}

// proxyRotator is the proxy pool type.
type proxyRotator = rotator[*url.URL]
