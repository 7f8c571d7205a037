package search

import (
	"context"
	"sync"

	"github.com/kbukum/heroes/pipeline"
)

// Source is a multicast query emitter. Submit never blocks: every
// subscriber buffers the values it has not consumed yet.
type Source struct {
	mu     sync.Mutex
	latest string
	subs   map[*subscription]struct{}
	closed bool
	done   chan struct{}
}

// NewSource creates an open Source with no subscribers.
func NewSource() *Source {
	return &Source{
		subs: make(map[*subscription]struct{}),
		done: make(chan struct{}),
	}
}

// Submit records text as the most recent query and hands it to every
// current subscriber. Submitting to a closed Source only updates Latest.
func (s *Source) Submit(text string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.latest = text
	if s.closed {
		return
	}
	for sub := range s.subs {
		sub.push(text)
	}
}

// Latest returns the most recently submitted query.
func (s *Source) Latest() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.latest
}

// Subscribers returns the number of live subscriptions.
func (s *Source) Subscribers() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.subs)
}

// Subscribe returns an iterator over every value submitted after the call.
// The iterator is exhausted once ctx is done, the iterator is closed or
// the Source is closed. Values already queued are still delivered when the
// Source closes.
func (s *Source) Subscribe(ctx context.Context) pipeline.Iterator[string] {
	sub := &subscription{
		src:    s,
		notify: make(chan struct{}, 1),
		ctx:    ctx,
		closed: make(chan struct{}),
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.closed {
		s.subs[sub] = struct{}{}
	}
	return sub
}

// Close ends every subscription. It is safe to call more than once.
func (s *Source) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	close(s.done)
	clear(s.subs)
}

// Done is closed when the Source is closed.
func (s *Source) Done() <-chan struct{} {
	return s.done
}

// Pipeline returns the Source as a multicast pipeline: each consumer
// subscribes on its own.
func (s *Source) Pipeline() *pipeline.Pipeline[string] {
	return pipeline.FromFunc(s.Subscribe)
}

type subscription struct {
	src    *Source
	mu     sync.Mutex
	queue  []string
	notify chan struct{}
	ctx    context.Context
	once   sync.Once
	closed chan struct{}
}

func (sub *subscription) push(v string) {
	sub.mu.Lock()
	sub.queue = append(sub.queue, v)
	sub.mu.Unlock()
	select {
	case sub.notify <- struct{}{}:
	default:
	}
}

func (sub *subscription) pop() (string, bool) {
	sub.mu.Lock()
	defer sub.mu.Unlock()
	if len(sub.queue) == 0 {
		return "", false
	}
	v := sub.queue[0]
	sub.queue[0] = ""
	sub.queue = sub.queue[1:]
	return v, true
}

func (sub *subscription) Next(ctx context.Context) (string, bool, error) {
	for {
		if v, ok := sub.pop(); ok {
			return v, true, nil
		}
		select {
		case <-sub.notify:
		case <-sub.closed:
			v, ok := sub.pop()
			return v, ok, nil
		case <-sub.src.done:
			v, ok := sub.pop()
			return v, ok, nil
		case <-sub.ctx.Done():
			return "", false, nil
		case <-ctx.Done():
			return "", false, ctx.Err()
		}
	}
}

func (sub *subscription) Close() error {
	sub.once.Do(func() {
		sub.src.mu.Lock()
		delete(sub.src.subs, sub)
		sub.src.mu.Unlock()
		close(sub.closed)
	})
	return nil
}
