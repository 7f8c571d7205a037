package pipeline

import (
	"context"
	"sync"
	"sync/atomic"
)

// Switch maps each value to an asynchronous computation. When a new value
// arrives while an earlier computation is still running, the earlier
// computation's context is canceled and its outcome is discarded, even if
// it completes later. Outputs are therefore yielded in input order and at
// most one output is yielded per input.
//
// An error returned by the current computation terminates the pipeline;
// errors from abandoned computations are ignored. When the source is
// exhausted, the last computation is awaited before the pipeline ends.
func Switch[I, O any](p *Pipeline[I], fn func(context.Context, I) (O, error)) *Pipeline[O] {
	return &Pipeline[O]{
		open: func(ctx context.Context) Iterator[O] {
			swCtx, cancel := context.WithCancel(ctx)
			it := &switchIter[I, O]{
				source: p.open(ctx),
				fn:     fn,
				ch:     make(chan generational[O]),
				cancel: cancel,
				done:   make(chan struct{}),
			}
			go it.dispatch(swCtx)
			return it
		},
	}
}

// generational tags an output with the generation that produced it.
// Generation zero marks an upstream error, which is never stale.
type generational[O any] struct {
	gen uint64
	val O
	err error
}

type switchIter[I, O any] struct {
	source Iterator[I]
	fn     func(context.Context, I) (O, error)
	ch     chan generational[O]
	gen    atomic.Uint64
	cancel context.CancelFunc
	done   chan struct{}
}

// dispatch pulls from the source and starts one computation per value.
// It owns the cancel handle of the current computation.
func (it *switchIter[I, O]) dispatch(ctx context.Context) {
	var (
		wg          sync.WaitGroup
		cancelInner context.CancelFunc
	)
	defer func() {
		wg.Wait()
		close(it.ch)
		close(it.done)
	}()
	defer func() {
		if cancelInner != nil && ctx.Err() != nil {
			cancelInner()
		}
	}()

	for {
		val, ok, err := it.source.Next(ctx)
		if err != nil {
			it.gen.Add(1)
			if cancelInner != nil {
				cancelInner()
			}
			select {
			case it.ch <- generational[O]{err: err}:
			case <-ctx.Done():
			}
			return
		}
		if !ok {
			return
		}

		// Advance the generation before canceling, so a computation that
		// observes its cancellation is already stale.
		gen := it.gen.Add(1)
		if cancelInner != nil {
			cancelInner()
		}
		innerCtx, innerCancel := context.WithCancel(ctx)
		cancelInner = innerCancel

		wg.Add(1)
		go func(gen uint64, val I) {
			defer wg.Done()
			defer innerCancel()
			out, err := it.fn(innerCtx, val)
			if it.gen.Load() != gen {
				return
			}
			select {
			case it.ch <- generational[O]{gen: gen, val: out, err: err}:
			case <-ctx.Done():
			}
		}(gen, val)
	}
}

func (it *switchIter[I, O]) Next(ctx context.Context) (result O, ok bool, err error) {
	for {
		select {
		case r, open := <-it.ch:
			if !open {
				var zero O
				return zero, false, nil
			}
			// A newer value was dispatched after this computation
			// finished but before it was pulled.
			if r.gen != 0 && r.gen != it.gen.Load() {
				continue
			}
			if r.err != nil {
				var zero O
				return zero, false, r.err
			}
			return r.val, true, nil

		case <-ctx.Done():
			var zero O
			return zero, false, ctx.Err()
		}
	}
}

// Close cancels the in-flight computation, waits for the dispatcher to
// stop and then closes the source.
func (it *switchIter[I, O]) Close() error {
	it.cancel()
	<-it.done
	return it.source.Close()
}
