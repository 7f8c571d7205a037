package observability

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// instruments creates instruments on one meter and keeps the first error,
// so constructors can declare everything and check once.
type instruments struct {
	meter metric.Meter
	err   error
}

func (b *instruments) fail(name string, err error) {
	if err != nil && b.err == nil {
		b.err = fmt.Errorf("creating %s: %w", name, err)
	}
}

func (b *instruments) counter(name, desc string) metric.Int64Counter {
	c, err := b.meter.Int64Counter(name, metric.WithDescription(desc))
	b.fail(name, err)
	return c
}

func (b *instruments) gauge(name, desc string) metric.Int64UpDownCounter {
	c, err := b.meter.Int64UpDownCounter(name, metric.WithDescription(desc))
	b.fail(name, err)
	return c
}

func (b *instruments) seconds(name, desc string) metric.Float64Histogram {
	h, err := b.meter.Float64Histogram(name, metric.WithDescription(desc), metric.WithUnit("s"))
	b.fail(name, err)
	return h
}

// Metrics are the HTTP request instruments used by the server middleware.
// A nil *Metrics records nothing.
type Metrics struct {
	total    metric.Int64Counter
	duration metric.Float64Histogram
	active   metric.Int64UpDownCounter
}

func NewMetrics(meter metric.Meter) (*Metrics, error) {
	b := &instruments{meter: meter}
	m := &Metrics{
		total:    b.counter("http.request.total", "Total number of HTTP requests"),
		duration: b.seconds("http.request.duration", "Duration of HTTP requests in seconds"),
		active:   b.gauge("http.request.active", "Number of in-flight HTTP requests"),
	}
	if b.err != nil {
		return nil, b.err
	}
	return m, nil
}

func (m *Metrics) RecordRequestStart(ctx context.Context) {
	if m != nil {
		m.active.Add(ctx, 1)
	}
}

// RecordRequestEnd closes a request opened by RecordRequestStart.
func (m *Metrics) RecordRequestEnd(ctx context.Context, route, method string, status int, d time.Duration) {
	if m == nil {
		return
	}
	attrs := []attribute.KeyValue{attribute.String("route", route), attribute.String("method", method)}
	m.active.Add(ctx, -1)
	m.total.Add(ctx, 1, metric.WithAttributes(append(attrs, attribute.Int("status", status))...))
	m.duration.Record(ctx, d.Seconds(), metric.WithAttributes(attrs...))
}

const (
	MetricQuerySubmitted   = "search.query.submitted"
	MetricLookupDispatched = "search.lookup.dispatched"
	MetricLookupStale      = "search.lookup.stale"
	MetricLookupFailed     = "search.lookup.failed"
	MetricLookupDuration   = "search.lookup.duration"
)

// SearchMetrics follows queries through the search pipeline. A nil
// *SearchMetrics records nothing.
type SearchMetrics struct {
	submitted  metric.Int64Counter
	dispatched metric.Int64Counter
	stale      metric.Int64Counter
	failed     metric.Int64Counter
	duration   metric.Float64Histogram
}

func NewSearchMetrics(meter metric.Meter) (*SearchMetrics, error) {
	b := &instruments{meter: meter}
	m := &SearchMetrics{
		submitted:  b.counter(MetricQuerySubmitted, "Raw queries submitted to a query source"),
		dispatched: b.counter(MetricLookupDispatched, "Lookups started after debounce and dedupe"),
		stale:      b.counter(MetricLookupStale, "Lookups superseded by a newer query"),
		failed:     b.counter(MetricLookupFailed, "Lookups that failed and were replaced by an empty result"),
		duration:   b.seconds(MetricLookupDuration, "Duration of hero lookups in seconds"),
	}
	if b.err != nil {
		return nil, b.err
	}
	return m, nil
}

func (m *SearchMetrics) QuerySubmitted(ctx context.Context) {
	if m != nil {
		m.submitted.Add(ctx, 1)
	}
}

func (m *SearchMetrics) LookupDispatched(ctx context.Context) {
	if m != nil {
		m.dispatched.Add(ctx, 1)
	}
}

func (m *SearchMetrics) LookupStale(ctx context.Context) {
	if m != nil {
		m.stale.Add(ctx, 1)
	}
}

// LookupFinished records how long a lookup took and counts it as failed
// when err is set.
func (m *SearchMetrics) LookupFinished(ctx context.Context, d time.Duration, err error) {
	if m == nil {
		return
	}
	status := "ok"
	if err != nil {
		status = "error"
		m.failed.Add(ctx, 1)
	}
	m.duration.Record(ctx, d.Seconds(), metric.WithAttributes(attribute.String("status", status)))
}
