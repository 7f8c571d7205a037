// Package bootstrap runs the heroes service lifecycle: config defaults and
// validation, logger initialization, ordered component startup, configure
// callbacks, a ready check and startup summary, then graceful shutdown on
// SIGINT/SIGTERM or context cancellation.
package bootstrap
