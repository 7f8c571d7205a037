package pipeline

import "context"

// Iterator is a pull-based stream. Next returns (zero, false, nil) once
// the stream is exhausted.
type Iterator[T any] interface {
	Next(ctx context.Context) (T, bool, error)
	Close() error
}

// Pipeline is a lazy stream description. Nothing runs until a terminal
// such as Drain or Collect opens it.
type Pipeline[T any] struct {
	open func(ctx context.Context) Iterator[T]
}

// Iter opens the pipeline. The caller owns the returned iterator and must
// close it.
func (p *Pipeline[T]) Iter(ctx context.Context) Iterator[T] {
	return p.open(ctx)
}

// From wraps an existing iterator. It can be consumed only once.
func From[T any](it Iterator[T]) *Pipeline[T] {
	return FromFunc(func(context.Context) Iterator[T] { return it })
}

// FromFunc opens a new iterator per consumer. A factory that subscribes
// to a shared source gives every consumer its own stream.
func FromFunc[T any](open func(ctx context.Context) Iterator[T]) *Pipeline[T] {
	return &Pipeline[T]{open: open}
}

// FromSlice replays items in order.
func FromSlice[T any](items []T) *Pipeline[T] {
	return FromFunc(func(context.Context) Iterator[T] {
		return &sliceIter[T]{rest: items}
	})
}

// Runnable is a pipeline bound to its sink.
type Runnable struct {
	run func(ctx context.Context) error
}

// Run pulls until the stream ends, the sink fails or ctx is done.
func (r *Runnable) Run(ctx context.Context) error { return r.run(ctx) }

// Drain binds p to sink. The first error from either side stops the run.
func Drain[T any](p *Pipeline[T], sink func(context.Context, T) error) *Runnable {
	return &Runnable{run: func(ctx context.Context) error {
		it := p.open(ctx)
		defer it.Close()
		for {
			v, ok, err := it.Next(ctx)
			if err != nil || !ok {
				return err
			}
			if err := sink(ctx, v); err != nil {
				return err
			}
		}
	}}
}

// ForEach is Drain followed by Run.
func ForEach[T any](ctx context.Context, p *Pipeline[T], fn func(context.Context, T) error) error {
	return Drain(p, fn).Run(ctx)
}

// Collect gathers every value. On error it returns what was gathered so far.
func Collect[T any](ctx context.Context, p *Pipeline[T]) ([]T, error) {
	var out []T
	err := ForEach(ctx, p, func(_ context.Context, v T) error {
		out = append(out, v)
		return nil
	})
	return out, err
}

// item is one value or error handed across a goroutine boundary.
type item[T any] struct {
	val T
	ok  bool
	err error
}

// chanIter reads items from a channel until it is closed.
type chanIter[T any] struct {
	src     <-chan item[T]
	onClose func() error
}

func (it *chanIter[T]) Next(ctx context.Context) (T, bool, error) {
	var zero T
	select {
	case <-ctx.Done():
		return zero, false, ctx.Err()
	case in, open := <-it.src:
		if !open {
			return zero, false, nil
		}
		return in.val, in.ok, in.err
	}
}

func (it *chanIter[T]) Close() error {
	if it.onClose == nil {
		return nil
	}
	return it.onClose()
}

type sliceIter[T any] struct {
	rest []T
}

func (it *sliceIter[T]) Next(context.Context) (T, bool, error) {
	if len(it.rest) == 0 {
		var zero T
		return zero, false, nil
	}
	v := it.rest[0]
	it.rest = it.rest[1:]
	return v, true, nil
}

func (it *sliceIter[T]) Close() error { return nil }
