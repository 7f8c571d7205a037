package search

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/kbukum/heroes/component"
	apperrors "github.com/kbukum/heroes/errors"
	"github.com/kbukum/heroes/logger"
	"github.com/kbukum/heroes/pipeline"
	"github.com/kbukum/heroes/sse"
	"github.com/kbukum/heroes/validation"
)

const clientPrefix = "search:"

// ClientID returns the SSE client id for one connection to a session.
func ClientID(sessionID, connID string) string {
	return clientPrefix + sessionID + ":" + connID
}

// Pattern returns the SSE pattern matching every connection to a session.
func Pattern(sessionID string) string {
	return clientPrefix + sessionID + ":*"
}

// Sessions keeps one Source and Pipeline per remote client. Sessions are
// created on first query, expire after the configured TTL of inactivity
// and broadcast each Result as JSON to the session's SSE clients.
type Sessions struct {
	cfg    Config
	lookup Lookup
	hub    sse.Broadcaster
	opts   []Option
	log    *logger.Logger
	now    func() time.Time

	mu       sync.Mutex
	sessions map[string]*session
	running  bool
	stopped  bool
	stop     chan struct{}
	wg       sync.WaitGroup
}

type session struct {
	id       string
	source   *Source
	cancel   context.CancelFunc
	done     chan struct{}
	lastSeen atomic.Int64
}

var (
	_ component.Component   = (*Sessions)(nil)
	_ component.Describable = (*Sessions)(nil)
)

// NewSessions creates the session registry. opts are applied to every
// session pipeline after the debounce and timeout from cfg.
func NewSessions(cfg Config, lookup Lookup, hub sse.Broadcaster, opts ...Option) *Sessions {
	cfg.ApplyDefaults()
	s := &Sessions{
		cfg:      cfg,
		lookup:   lookup,
		hub:      hub,
		opts:     append([]Option{WithConfig(cfg)}, opts...),
		log:      logger.GetGlobalLogger().WithComponent("search.sessions"),
		now:      time.Now,
		sessions: make(map[string]*session),
		stop:     make(chan struct{}),
	}
	return s
}

// Name implements component.Component.
func (s *Sessions) Name() string { return "search" }

// Start launches the expiry loop.
func (s *Sessions) Start(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running || s.stopped {
		return nil
	}
	s.running = true

	interval := min(max(s.cfg.SessionTTL/2, time.Second), time.Minute)
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-s.stop:
				return
			case <-ticker.C:
				if n := s.sweep(); n > 0 {
					s.log.Debug("expired idle search sessions", logger.Fields(logger.FieldCount, n))
				}
			}
		}
	}()
	return nil
}

// Stop ends the expiry loop and every session.
func (s *Sessions) Stop(ctx context.Context) error {
	s.mu.Lock()
	if s.stopped {
		s.mu.Unlock()
		return nil
	}
	s.stopped = true
	close(s.stop)
	all := make([]*session, 0, len(s.sessions))
	for id, sess := range s.sessions {
		all = append(all, sess)
		delete(s.sessions, id)
	}
	s.mu.Unlock()

	s.wg.Wait()
	for _, sess := range all {
		sess.end()
	}
	for _, sess := range all {
		select {
		case <-sess.done:
		case <-ctx.Done():
			return fmt.Errorf("stopping search sessions: %w", ctx.Err())
		}
	}
	s.log.Info("search sessions stopped", logger.Fields(logger.FieldCount, len(all)))
	return nil
}

// Health implements component.Component.
func (s *Sessions) Health(_ context.Context) component.Health {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stopped {
		return component.Health{Name: s.Name(), Status: component.StatusUnhealthy, Message: "stopped"}
	}
	return component.Health{
		Name:    s.Name(),
		Status:  component.StatusHealthy,
		Message: fmt.Sprintf("%d active sessions", len(s.sessions)),
	}
}

// Describe implements component.Describable.
func (s *Sessions) Describe() component.Description {
	return component.Description{
		Name:    "Search Sessions",
		Type:    "search",
		Details: fmt.Sprintf("debounce=%s ttl=%s", s.cfg.Debounce, s.cfg.SessionTTL),
	}
}

// Submit hands text to the session's Source, creating the session first
// if needed.
func (s *Sessions) Submit(sessionID, text string) error {
	if err := validation.SessionID(sessionID); err != nil {
		return err
	}
	sess, err := s.getOrCreate(sessionID)
	if err != nil {
		return err
	}
	sess.lastSeen.Store(s.now().UnixNano())
	sess.source.Submit(text)
	return nil
}

// Latest returns the last query submitted to a session.
func (s *Sessions) Latest(sessionID string) (string, bool) {
	s.mu.Lock()
	sess, ok := s.sessions[sessionID]
	s.mu.Unlock()
	if !ok {
		return "", false
	}
	return sess.source.Latest(), true
}

// Touch marks a session as active, e.g. while a stream is attached.
func (s *Sessions) Touch(sessionID string) {
	s.mu.Lock()
	sess, ok := s.sessions[sessionID]
	s.mu.Unlock()
	if ok {
		sess.lastSeen.Store(s.now().UnixNano())
	}
}

// End stops one session. It reports whether the session existed.
func (s *Sessions) End(sessionID string) bool {
	s.mu.Lock()
	sess, ok := s.sessions[sessionID]
	delete(s.sessions, sessionID)
	s.mu.Unlock()
	if ok {
		sess.end()
		<-sess.done
	}
	return ok
}

// Count returns the number of live sessions.
func (s *Sessions) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

func (s *Sessions) getOrCreate(id string) (*session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stopped {
		return nil, apperrors.ServiceUnavailable("search service")
	}
	if sess, ok := s.sessions[id]; ok {
		return sess, nil
	}

	ctx, cancel := context.WithCancel(logger.ContextWithSessionID(context.Background(), id))
	sess := &session{
		id:     id,
		source: NewSource(),
		cancel: cancel,
		done:   make(chan struct{}),
	}
	sess.lastSeen.Store(s.now().UnixNano())
	p := New(sess.source, s.lookup, s.opts...)
	results := p.Subscribe(ctx)
	s.sessions[id] = sess

	go s.run(ctx, sess, results)
	s.log.Debug("search session started", logger.Fields(logger.FieldSessionID, id))
	return sess, nil
}

func (s *Sessions) run(ctx context.Context, sess *session, results pipeline.Iterator[Result]) {
	defer close(sess.done)
	pattern := Pattern(sess.id)
	encoded := pipeline.Map(pipeline.From(results), func(_ context.Context, r Result) ([]byte, error) {
		return json.Marshal(r)
	})
	err := pipeline.Drain(encoded, func(_ context.Context, data []byte) error {
		s.hub.BroadcastToPattern(pattern, data)
		return nil
	}).Run(ctx)
	if err != nil && ctx.Err() == nil {
		s.log.Error("search session ended with error", logger.MergeWithError(
			logger.Fields(logger.FieldSessionID, sess.id), err))
	}
}

// sweep ends sessions idle for longer than the TTL and returns how many.
func (s *Sessions) sweep() int {
	cutoff := s.now().Add(-s.cfg.SessionTTL).UnixNano()
	s.mu.Lock()
	var expired []*session
	for id, sess := range s.sessions {
		if sess.lastSeen.Load() < cutoff {
			expired = append(expired, sess)
			delete(s.sessions, id)
		}
	}
	s.mu.Unlock()

	for _, sess := range expired {
		sess.end()
		<-sess.done
	}
	return len(expired)
}

func (sess *session) end() {
	sess.source.Close()
	sess.cancel()
}
