// Package log builds the slog loggers used by prodscout.
//
// Every logger returned by New wraps its output handler in a SecureHandler,
// which masks values that must never reach a log file:
//   - HTTP credentials (Authorization, Proxy-Authorization, Cookie)
//   - Model provider API keys, whether logged under a sensitive key or
//     recognised by their shape (sk-..., bearer tokens, JWTs)
//   - Passwords embedded in proxy URLs, which are reduced to user:xxxxx
//
// Output is text by default or JSON when requested. When a file is
// configured, records are also written to a size-rotated file.
//
// # Usage
//
//	logger := log.New(os.Stderr, log.Options{Verbose: true})
//	logger.Info("fetching", "url", target, "proxy", proxyURL)
//	slog.SetDefault(logger)
package log
