package component

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/kbukum/heroes/logger"
)

// DefaultStopTimeout bounds each component's Stop call.
const DefaultStopTimeout = 10 * time.Second

type slot struct {
	Component
	running bool
}

// Registry starts components in registration order and stops them in
// reverse, so a component may depend on anything registered before it.
type Registry struct {
	mu          sync.RWMutex
	slots       []*slot
	byName      map[string]*slot
	stopTimeout time.Duration
	log         *logger.Logger
}

func NewRegistry() *Registry {
	return &Registry{
		byName:      map[string]*slot{},
		stopTimeout: DefaultStopTimeout,
		log:         logger.WithComponent("registry"),
	}
}

// SetStopTimeout overrides DefaultStopTimeout. Non-positive values are ignored.
func (r *Registry) SetStopTimeout(d time.Duration) {
	if d <= 0 {
		return
	}
	r.mu.Lock()
	r.stopTimeout = d
	r.mu.Unlock()
}

// Register appends c. Names must be unique.
func (r *Registry) Register(c Component) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	name := c.Name()
	if r.byName[name] != nil {
		return fmt.Errorf("component %s already registered", name)
	}
	s := &slot{Component: c}
	r.slots = append(r.slots, s)
	r.byName[name] = s
	r.log.Debug("Component registered", logger.Fields(logger.FieldComponent, name))
	return nil
}

// StartAll starts every component not yet running. If one fails, those
// started so far are stopped again and the error is returned.
func (r *Registry) StartAll(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.log.Info("Starting all components", logger.Fields(logger.FieldCount, len(r.slots)))
	for _, s := range r.slots {
		if s.running {
			continue
		}
		if err := s.Start(ctx); err != nil {
			r.log.Error("Component start failed", logger.MergeWithError(logger.Fields(logger.FieldComponent, s.Name()), err))
			_ = r.stopRunning(context.WithoutCancel(ctx))
			return fmt.Errorf("failed to start %s: %w", s.Name(), err)
		}
		s.running = true
		r.log.Debug("Component started", logger.Fields(logger.FieldComponent, s.Name()))
	}
	r.log.Info("All components started successfully")
	return nil
}

// StopAll stops every running component in reverse order and joins the
// errors. A failing Stop does not prevent the others from running.
func (r *Registry) StopAll(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.log.Info("Stopping all components")
	err := r.stopRunning(ctx)
	if err == nil {
		r.log.Info("All components stopped successfully")
	}
	return err
}

// stopRunning expects r.mu to be held.
func (r *Registry) stopRunning(ctx context.Context) error {
	var errs []error
	for i := len(r.slots) - 1; i >= 0; i-- {
		s := r.slots[i]
		if !s.running {
			continue
		}
		if err := r.stopOne(ctx, s); err != nil {
			errs = append(errs, fmt.Errorf("failed to stop %s: %w", s.Name(), err))
		}
		s.running = false
	}
	return errors.Join(errs...)
}

func (r *Registry) stopOne(ctx context.Context, s *slot) error {
	ctx, cancel := context.WithTimeout(ctx, r.stopTimeout)
	defer cancel()
	fields := logger.Fields(logger.FieldComponent, s.Name())
	if err := s.Stop(ctx); err != nil {
		r.log.Error("Component stop failed", logger.MergeWithError(fields, err))
		return err
	}
	r.log.Debug("Component stopped", fields)
	return nil
}

// HealthAll probes every component in registration order.
func (r *Registry) HealthAll(ctx context.Context) []Health {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Health, len(r.slots))
	for i, s := range r.slots {
		out[i] = s.Health(ctx)
	}
	return out
}

// Get returns the component registered as name, or nil.
func (r *Registry) Get(name string) Component {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if s := r.byName[name]; s != nil {
		return s.Component
	}
	return nil
}

// All returns the components in registration order.
func (r *Registry) All() []Component {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Component, len(r.slots))
	for i, s := range r.slots {
		out[i] = s.Component
	}
	return out
}
