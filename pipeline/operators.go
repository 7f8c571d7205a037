package pipeline

import "context"

// stage builds a pipeline whose iterator wraps the one p opens.
func stage[I, O any](p *Pipeline[I], wrap func(Iterator[I]) Iterator[O]) *Pipeline[O] {
	return &Pipeline[O]{open: func(ctx context.Context) Iterator[O] {
		return wrap(p.open(ctx))
	}}
}

// Map transforms each value with fn. An error from fn ends the pipeline.
func Map[I, O any](p *Pipeline[I], fn func(context.Context, I) (O, error)) *Pipeline[O] {
	return stage(p, func(src Iterator[I]) Iterator[O] {
		return &mapIter[I, O]{src: src, fn: fn}
	})
}

// Tap runs fn for each value and forwards the value unchanged.
func Tap[T any](p *Pipeline[T], fn func(context.Context, T) error) *Pipeline[T] {
	return Map(p, func(ctx context.Context, v T) (T, error) {
		return v, fn(ctx, v)
	})
}

// Distinct forwards a value only when it differs from the last one
// forwarded. The first value always passes; repeats further apart do too.
func Distinct[T comparable](p *Pipeline[T]) *Pipeline[T] {
	return DistinctBy(p, func(prev, next T) bool { return prev == next })
}

// DistinctBy is Distinct with a caller-supplied equality.
func DistinctBy[T any](p *Pipeline[T], equal func(prev, next T) bool) *Pipeline[T] {
	return stage(p, func(src Iterator[T]) Iterator[T] {
		return &distinctIter[T]{src: src, equal: equal}
	})
}

type mapIter[I, O any] struct {
	src Iterator[I]
	fn  func(context.Context, I) (O, error)
}

func (it *mapIter[I, O]) Next(ctx context.Context) (O, bool, error) {
	var zero O
	v, ok, err := it.src.Next(ctx)
	if err != nil || !ok {
		return zero, false, err
	}
	out, err := it.fn(ctx, v)
	if err != nil {
		return zero, false, err
	}
	return out, true, nil
}

func (it *mapIter[I, O]) Close() error { return it.src.Close() }

type distinctIter[T any] struct {
	src   Iterator[T]
	equal func(prev, next T) bool
	last  *T
}

func (it *distinctIter[T]) Next(ctx context.Context) (T, bool, error) {
	for {
		v, ok, err := it.src.Next(ctx)
		if err != nil || !ok {
			return v, ok, err
		}
		if it.last != nil && it.equal(*it.last, v) {
			continue
		}
		it.last = &v
		return v, true, nil
	}
}

func (it *distinctIter[T]) Close() error { return it.src.Close() }
