package observability

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "github.com/kbukum/heroes"

const (
	SpanHTTPRequest  = "http.request"
	SpanHeroLookup   = "search.lookup"
	SpanHeroesClient = "heroes.client"
)

const (
	AttrServiceName = "service.name"
	AttrRequestID   = "request.id"
	AttrSessionID   = "search.session"
	AttrQuery       = "search.query"
	AttrGeneration  = "search.generation"
	AttrResultCount = "search.result_count"
	AttrStale       = "search.stale"
)

// StartSpan starts a span on the global tracer provider.
func StartSpan(ctx context.Context, name string, opts ...trace.SpanStartOption) (context.Context, trace.Span) {
	return otel.Tracer(tracerName).Start(ctx, name, opts...)
}

// SetSpanError records err on the span in ctx, if it is recording.
func SetSpanError(ctx context.Context, err error) {
	if span := trace.SpanFromContext(ctx); span.IsRecording() {
		span.RecordError(err)
	}
}
