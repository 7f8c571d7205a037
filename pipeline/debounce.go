package pipeline

import (
	"context"
	"time"
)

// Debounce forwards a value only after the source has been quiet for
// quiet. Every arrival restarts the wait and replaces the pending value,
// so a burst collapses to its last element. A value still pending when
// the source ends is flushed.
func Debounce[T any](p *Pipeline[T], quiet time.Duration) *Pipeline[T] {
	return FromFunc(func(ctx context.Context) Iterator[T] {
		src := p.open(ctx)
		pumpCtx, stop := context.WithCancel(ctx)
		it := &debounceIter[T]{quiet: quiet, src: src, stop: stop, stopped: make(chan struct{})}
		it.in = pump(pumpCtx, src, it.stopped)
		return it
	})
}

// pump moves values from src onto a channel so they can be selected on
// together with a timer. stopped is closed when the goroutine exits.
func pump[T any](ctx context.Context, src Iterator[T], stopped chan<- struct{}) <-chan item[T] {
	out := make(chan item[T], 1)
	go func() {
		defer close(stopped)
		defer close(out)
		for {
			v, ok, err := src.Next(ctx)
			if !ok && err == nil {
				return
			}
			select {
			case out <- item[T]{val: v, ok: ok, err: err}:
			case <-ctx.Done():
				return
			}
			if err != nil {
				return
			}
		}
	}()
	return out
}

type debounceIter[T any] struct {
	quiet   time.Duration
	src     Iterator[T]
	in      <-chan item[T]
	stop    context.CancelFunc
	stopped chan struct{}
}

func (it *debounceIter[T]) Next(ctx context.Context) (T, bool, error) {
	var (
		pending T
		held    bool
		zero    T
		timer   *time.Timer
		fire    <-chan time.Time
	)
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return zero, false, ctx.Err()
		case <-fire:
			return pending, true, nil
		case in, open := <-it.in:
			switch {
			case !open:
				return pending, held, nil
			case in.err != nil:
				return zero, false, in.err
			}
			pending, held = in.val, true
			if timer == nil {
				timer = time.NewTimer(it.quiet)
				fire = timer.C
			} else {
				timer.Reset(it.quiet)
			}
		}
	}
}

// Close stops the pump before closing the source, so Close never races
// an in-flight Next on the source.
func (it *debounceIter[T]) Close() error {
	it.stop()
	<-it.stopped
	return it.src.Close()
}
