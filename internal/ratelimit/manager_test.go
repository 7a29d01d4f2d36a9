package ratelimit

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

func TestManagerCheckDomain(t *testing.T) {
	t.Parallel()

	t.Run("requests within budget do not wait", func(t *testing.T) {
		t.Parallel()

		clock := newFakeClock()
		m := NewManager(WithClock(clock))

		for i := 0; i < 60; i++ {
			if err := m.CheckDomain(t.Context(), "https://shop.example.com/item"); err != nil {
				t.Fatalf("request %d: unexpected error: %v", i+1, err)
			}
		}
		if len(clock.Sleeps()) != 0 {
			t.Errorf("expected no waits, got %v", clock.Sleeps())
		}
		count, _, ok := m.Usage("shop.example.com")
		if !ok || count != 60 {
			t.Errorf("expected count 60, got %d", count)
		}
	})

	t.Run("61st request waits for the window to reset", func(t *testing.T) {
		t.Parallel()

		clock := newFakeClock()
		m := NewManager(WithClock(clock))
		start := clock.Now()

		for i := 0; i < 60; i++ {
			if err := m.CheckDomain(t.Context(), "https://shop.example.com/"); err != nil {
				t.Fatal(err)
			}
		}
		clock.Advance(15 * time.Second)

		if err := m.CheckDomain(t.Context(), "https://shop.example.com/"); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		sleeps := clock.Sleeps()
		if len(sleeps) != 1 || sleeps[0] != 45*time.Second {
			t.Fatalf("expected a single 45s wait, got %v", sleeps)
		}
		count, windowStart, _ := m.Usage("shop.example.com")
		if count != 1 {
			t.Errorf("expected count reset to 1, got %d", count)
		}
		if !windowStart.Equal(start.Add(60 * time.Second)) {
			t.Errorf("expected new window at %v, got %v", start.Add(60*time.Second), windowStart)
		}
	})

	t.Run("window elapsed resets without waiting", func(t *testing.T) {
		t.Parallel()

		clock := newFakeClock()
		m := NewManager(WithClock(clock), WithBudget(2))

		for i := 0; i < 2; i++ {
			if err := m.CheckDomain(t.Context(), "https://a.example/"); err != nil {
				t.Fatal(err)
			}
		}
		clock.Advance(61 * time.Second)
		if err := m.CheckDomain(t.Context(), "https://a.example/"); err != nil {
			t.Fatal(err)
		}
		if len(clock.Sleeps()) != 0 {
			t.Errorf("expected no waits, got %v", clock.Sleeps())
		}
	})

	t.Run("domains are counted independently", func(t *testing.T) {
		t.Parallel()

		clock := newFakeClock()
		m := NewManager(WithClock(clock), WithBudget(1))

		for _, u := range []string{"https://a.example/", "https://b.example/", "http://c.example:8080/x"} {
			if err := m.CheckDomain(t.Context(), u); err != nil {
				t.Fatal(err)
			}
		}
		if len(clock.Sleeps()) != 0 {
			t.Errorf("expected no waits, got %v", clock.Sleeps())
		}
		if _, _, ok := m.Usage("c.example"); !ok {
			t.Error("expected port to be stripped from the domain")
		}
	})

	t.Run("invalid URL", func(t *testing.T) {
		t.Parallel()

		m := NewManager(WithClock(newFakeClock()))
		for _, u := range []string{"", "not a url", "://missing-scheme", "mailto:someone"} {
			if err := m.CheckDomain(t.Context(), u); !errors.Is(err, ErrInvalidURL) {
				t.Errorf("%q: expected ErrInvalidURL, got %v", u, err)
			}
		}
	})

	t.Run("cancelled context stops the wait", func(t *testing.T) {
		t.Parallel()

		m := NewManager(WithBudget(1), WithWindow(time.Hour))
		if err := m.CheckDomain(t.Context(), "https://a.example/"); err != nil {
			t.Fatal(err)
		}

		ctx, cancel := context.WithTimeout(t.Context(), 20*time.Millisecond)
		defer cancel()
		if err := m.CheckDomain(ctx, "https://a.example/"); !errors.Is(err, context.DeadlineExceeded) {
			t.Errorf("expected deadline exceeded, got %v", err)
		}
	})

	t.Run("concurrent callers never exceed the budget", func(t *testing.T) {
		t.Parallel()

		clock := newFakeClock()
		m := NewManager(WithClock(clock), WithBudget(10))

		var wg sync.WaitGroup
		for i := 0; i < 10; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				if err := m.CheckDomain(t.Context(), "https://a.example/"); err != nil {
					t.Error(err)
				}
			}()
		}
		wg.Wait()

		count, _, _ := m.Usage("a.example")
		if count != 10 {
			t.Errorf("expected count 10, got %d", count)
		}
		if len(clock.Sleeps()) != 0 {
			t.Errorf("expected no waits, got %v", clock.Sleeps())
		}
	})
}
