// Package controller contains HTTP middlewares and helper handlers used by the API server.
//
// Provided middlewares:
//   - WithCORS: Adds CORS headers for the allowed origins and handles OPTIONS preflight.
//   - WithLogger: Attaches a request-scoped logger and request ID to the context and logs access info.
//   - WithMetrics: Observes request latency per route in a Prometheus histogram.
//   - WithRateLimit: Rejects clients that exceed their per-IP token bucket.
//
// Provided helpers:
//   - PprofMux: Returns a ServeMux exposing net/http/pprof handlers.
//   - ClientLimiter: Per-client token buckets backing WithRateLimit.
package controller
