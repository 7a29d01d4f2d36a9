// Package ratelimit provides the shared rate limit manager: a per-domain
// fixed-window throttle for outgoing page fetches and an exponential backoff
// retry wrapper for operations that fail with rate limit errors.
//
// A single Manager is created at startup and injected into every component
// that talks to the network, so all concurrent analyses share the same
// per-domain counters.
//
//	m := ratelimit.NewManager(ratelimit.WithLogger(logger))
//	if err := m.CheckDomain(ctx, target); err != nil {
//	    return err
//	}
//	text, err := ratelimit.Execute(ctx, m, ratelimit.DefaultPolicy(), generate)
package ratelimit
