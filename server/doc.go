// Package server provides the HTTP server of the heroes backend: a Gin
// engine mounted on a ServeMux, wrapped by the net/http middleware chain
// and served over HTTP/1.1 and h2c on one port.
//
// # Middleware
//
// Built-in middleware (server/middleware), outermost first:
//
//   - Recovery: panic recovery with structured logging
//   - RequestID: X-Request-Id generation and propagation
//   - RequestLogger: request logging with duration
//   - CORS: cross-origin resource sharing
//   - BodySizeLimit: request body size limit
//   - Metrics: OpenTelemetry request counters and latency
//
// # Endpoints
//
// Built-in endpoints (server/endpoint): /health, /ready, /alive, /info and
// /metrics (runtime memory statistics).
package server
