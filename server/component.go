package server

import (
	"context"

	"github.com/kbukum/heroes/component"
)

const componentName = "http-server"

var (
	_ component.Component     = (*Component)(nil)
	_ component.Describable   = (*Component)(nil)
	_ component.RouteProvider = (*Component)(nil)
)

// Component runs a Server under the component registry.
type Component struct {
	srv *Server
}

func NewComponent(s *Server) *Component { return &Component{srv: s} }

func (c *Component) Server() *Server                 { return c.srv }
func (c *Component) Name() string                    { return componentName }
func (c *Component) Start(ctx context.Context) error { return c.srv.Start(ctx) }
func (c *Component) Stop(ctx context.Context) error  { return c.srv.Stop(ctx) }

// Health is healthy once the listener is bound.
func (c *Component) Health(context.Context) component.Health {
	if c.srv.bound() {
		return component.Health{Name: componentName, Status: component.StatusHealthy}
	}
	return component.Health{Name: componentName, Status: component.StatusUnhealthy, Message: "listener not bound"}
}

func (c *Component) Describe() component.Description {
	return component.Description{
		Name:    "HTTP Server",
		Type:    "server",
		Details: "gin h2c " + c.srv.Addr(),
		Port:    c.srv.cfg.Port,
	}
}

// Routes lists the Gin routes, API routes before the system ones.
func (c *Component) Routes() []component.Route {
	return sortedRoutes(c.srv.engine.Routes())
}
