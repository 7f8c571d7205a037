package search

import (
	"context"
	"errors"
	"strings"
	"sync/atomic"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	apperrors "github.com/kbukum/heroes/errors"
	"github.com/kbukum/heroes/hero"
	"github.com/kbukum/heroes/logger"
	"github.com/kbukum/heroes/observability"
	"github.com/kbukum/heroes/pipeline"
)

// Result is the lookup outcome for one forwarded query. Heroes is never
// nil; an empty slice means no matches, a blank query or a failed lookup.
type Result struct {
	Query      string      `json:"query"`
	Generation uint64      `json:"generation"`
	Heroes     []hero.Hero `json:"heroes"`
}

// Pipeline wires a Source to a Lookup through debounce, dedupe and
// cancel-and-switch dispatch.
type Pipeline struct {
	source   *Source
	lookup   Lookup
	debounce time.Duration
	timeout  time.Duration
	log      *logger.Logger
	metrics  *observability.SearchMetrics
	observer Observer
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithDebounce sets the quiet period D. Zero forwards every query as soon
// as it is pulled.
func WithDebounce(d time.Duration) Option {
	return func(p *Pipeline) {
		if d >= 0 {
			p.debounce = d
		}
	}
}

// WithLookupTimeout bounds each lookup. A timed-out lookup counts as failed.
func WithLookupTimeout(d time.Duration) Option {
	return func(p *Pipeline) {
		if d >= 0 {
			p.timeout = d
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l *logger.Logger) Option {
	return func(p *Pipeline) {
		if l != nil {
			p.log = l
		}
	}
}

// WithMetrics records search instruments.
func WithMetrics(m *observability.SearchMetrics) Option {
	return func(p *Pipeline) { p.metrics = m }
}

// WithObserver registers a callback for pipeline events.
func WithObserver(fn Observer) Option {
	return func(p *Pipeline) { p.observer = fn }
}

// WithConfig applies the debounce and lookup timeout of cfg.
func WithConfig(cfg Config) Option {
	return func(p *Pipeline) {
		p.debounce = cfg.Debounce
		p.timeout = cfg.LookupTimeout
	}
}

// New creates a Pipeline reading from source and resolving queries with
// lookup.
func New(source *Source, lookup Lookup, opts ...Option) *Pipeline {
	p := &Pipeline{
		source:   source,
		lookup:   lookup,
		debounce: DefaultDebounce,
		log:      logger.GetGlobalLogger(),
	}
	for _, opt := range opts {
		opt(p)
	}
	p.log = p.log.WithComponent("search")
	return p
}

// Source returns the query source the pipeline reads from.
func (p *Pipeline) Source() *Source {
	return p.source
}

// dispatch is a forwarded query tagged with its generation.
type dispatch struct {
	query string
	gen   uint64
}

// Results returns the result stream. Nothing runs until the stream is
// consumed, and every consumer subscribes to the source with its own
// debounce timer, last forwarded query and generation counter.
func (p *Pipeline) Results() *pipeline.Pipeline[Result] {
	return pipeline.FromFunc(func(ctx context.Context) pipeline.Iterator[Result] {
		var gen atomic.Uint64

		queries := pipeline.Tap(p.source.Pipeline(), func(ctx context.Context, _ string) error {
			p.metrics.QuerySubmitted(ctx)
			return nil
		})
		settled := pipeline.Distinct(pipeline.Debounce(queries, p.debounce))
		forwarded := pipeline.Map(settled, func(_ context.Context, q string) (dispatch, error) {
			return dispatch{query: q, gen: gen.Add(1)}, nil
		})
		results := pipeline.Switch(forwarded, p.resolve)
		emitted := pipeline.Tap(results, func(_ context.Context, r Result) error {
			p.emit(Event{Kind: EventEmitted, Query: r.Query, Generation: r.Generation})
			return nil
		})
		return emitted.Iter(ctx)
	})
}

// Subscribe starts a consumer and returns its iterator. The subscription
// to the source is in place when Subscribe returns, so queries submitted
// afterwards are never missed. The caller must Close the iterator.
func (p *Pipeline) Subscribe(ctx context.Context) pipeline.Iterator[Result] {
	return p.Results().Iter(ctx)
}

// Run delivers every Result to sink until ctx ends, the source is closed
// or sink fails. Cancellation of ctx is a clean exit.
func (p *Pipeline) Run(ctx context.Context, sink func(context.Context, Result) error) error {
	return RunIter(ctx, p.Subscribe(ctx), sink)
}

// RunIter drains an iterator obtained from Subscribe into sink and closes it.
func RunIter(ctx context.Context, it pipeline.Iterator[Result], sink func(context.Context, Result) error) error {
	err := pipeline.Drain(pipeline.From(it), sink).Run(ctx)
	if err != nil && ctx.Err() != nil && errors.Is(err, ctx.Err()) {
		return nil
	}
	return err
}

// resolve runs one lookup. It never fails for a lookup error: the error
// is logged and replaced by an empty Result. Only cancellation of the
// surrounding stream is returned as an error.
func (p *Pipeline) resolve(ctx context.Context, d dispatch) (Result, error) {
	res := Result{Query: d.query, Generation: d.gen, Heroes: []hero.Hero{}}
	log := p.log.WithContext(ctx)

	if strings.TrimSpace(d.query) == "" {
		p.emit(Event{Kind: EventSkipped, Query: d.query, Generation: d.gen})
		log.Debug("blank query, skipping lookup", logger.QueryFields(d.query, d.gen))
		return res, nil
	}

	p.metrics.LookupDispatched(ctx)
	p.emit(Event{Kind: EventDispatched, Query: d.query, Generation: d.gen})
	log.Debug("lookup dispatched", logger.QueryFields(d.query, d.gen))

	spanCtx, span := observability.StartSpan(ctx, observability.SpanHeroLookup, trace.WithAttributes(
		attribute.String(observability.AttrQuery, d.query),
		attribute.Int64(observability.AttrGeneration, int64(d.gen)),
	))
	defer span.End()

	lookupCtx := spanCtx
	if p.timeout > 0 {
		var cancel context.CancelFunc
		lookupCtx, cancel = context.WithTimeout(spanCtx, p.timeout)
		defer cancel()
	}

	start := time.Now()
	heroes, err := p.lookup.SearchHeroes(lookupCtx, d.query)

	// The switch cancels ctx when a newer query is forwarded or the
	// stream shuts down; either way this outcome must not be delivered.
	if ctx.Err() != nil {
		p.metrics.LookupStale(ctx)
		span.SetAttributes(attribute.Bool(observability.AttrStale, true))
		p.emit(Event{Kind: EventStale, Query: d.query, Generation: d.gen})
		log.Debug("lookup superseded", logger.QueryFields(d.query, d.gen))
		return res, ctx.Err()
	}

	p.metrics.LookupFinished(ctx, time.Since(start), err)
	if err != nil {
		lookupErr := asLookupError(d.query, err)
		observability.SetSpanError(spanCtx, lookupErr)
		p.emit(Event{Kind: EventFailed, Query: d.query, Generation: d.gen, Err: lookupErr})
		log.Warn("lookup failed, showing no matches",
			logger.MergeWithError(logger.QueryFields(d.query, d.gen), lookupErr))
		return res, nil
	}

	res.Heroes = hero.Clone(heroes)
	span.SetAttributes(attribute.Int(observability.AttrResultCount, len(res.Heroes)))
	log.Debug("lookup finished", logger.MergeWithDuration(
		logger.Fields(logger.FieldQuery, d.query, logger.FieldGeneration, d.gen, logger.FieldCount, len(res.Heroes)),
		time.Since(start)))
	return res, nil
}

func (p *Pipeline) emit(e Event) {
	if p.observer != nil {
		p.observer(e)
	}
}

// asLookupError normalises any lookup failure to a LookupError.
func asLookupError(query string, err error) *apperrors.AppError {
	if appErr, ok := apperrors.AsAppError(err); ok && appErr.Code == apperrors.ErrCodeLookupFailed {
		return appErr
	}
	return apperrors.LookupError(query, err)
}
