package sse

import (
	"context"
	"fmt"
	"sync"

	"github.com/kbukum/heroes/component"
)

// Component runs a Hub under the component registry.
type Component struct {
	hub  *Hub
	path string

	start sync.Once
	done  chan struct{}
}

var (
	_ component.Component   = (*Component)(nil)
	_ component.Describable = (*Component)(nil)
)

// NewComponent wraps a fresh Hub. path only shows up in the startup summary.
func NewComponent(path string) *Component {
	return &Component{hub: NewHub(), path: path, done: make(chan struct{})}
}

func (c *Component) Hub() *Hub    { return c.hub }
func (c *Component) Name() string { return "sse" }

// Start runs the hub loop in the background. Repeated calls are no-ops.
func (c *Component) Start(context.Context) error {
	c.start.Do(func() {
		go func() {
			defer close(c.done)
			c.hub.Run()
		}()
	})
	return nil
}

// Stop shuts the hub down and waits for its loop to exit. A component
// that never started has nothing to wait for.
func (c *Component) Stop(ctx context.Context) error {
	c.hub.Stop()
	c.start.Do(func() { close(c.done) })
	select {
	case <-c.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (c *Component) Health(context.Context) component.Health {
	h := component.Health{Name: c.Name(), Status: component.StatusHealthy}
	select {
	case <-c.hub.Done():
		h.Status, h.Message = component.StatusUnhealthy, "stopped"
	default:
		h.Message = fmt.Sprintf("%d clients connected", c.hub.ClientCount())
	}
	return h
}

func (c *Component) Describe() component.Description {
	return component.Description{Name: "SSE Hub", Type: "sse", Details: "Path: " + c.path}
}
