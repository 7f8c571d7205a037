// Package observability wires OpenTelemetry metrics and tracing.
//
// The Component creates OTLP/HTTP meter and tracer providers and installs
// them globally, but only when observability.enabled is set. Metrics holds
// the HTTP request instruments and SearchMetrics those of the search
// pipeline; both are safe to use as nil pointers.
//
//	m, err := observability.NewSearchMetrics(observability.Meter("heroes/search"))
//	m.LookupDispatched(ctx)
package observability
