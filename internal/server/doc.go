// Package server exposes product analysis over HTTP.
//
//   - GET /api/analyze?url=...  streams progress as server-sent events and
//     ends with exactly one "complete" or "error" event
//   - POST /api/analyze         runs an analysis and returns the report
//   - GET /healthz              liveness probe
//   - GET /metrics              Prometheus metrics
package server
