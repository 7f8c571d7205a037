package component

import "context"

// Component is a long-lived part of the service: the HTTP server, the SSE
// hub, the search sessions, the telemetry exporters.
type Component interface {
	Name() string
	Start(ctx context.Context) error
	Stop(ctx context.Context) error
	Health(ctx context.Context) Health
}

// HealthStatus is the coarse state reported by a health probe.
type HealthStatus string

const (
	StatusHealthy   HealthStatus = "healthy"
	StatusDegraded  HealthStatus = "degraded"
	StatusUnhealthy HealthStatus = "unhealthy"
)

// Health is one component's probe answer.
type Health struct {
	Name    string       `json:"name"`
	Status  HealthStatus `json:"status"`
	Message string       `json:"message,omitempty"`
}

// Describable components get a line in the startup summary.
type Describable interface {
	Describe() Description
}

// Description is that line. An empty Name falls back to the component's
// Name, and Port is zero when nothing listens.
type Description struct {
	Name    string
	Type    string
	Details string
	Port    int
}

// RouteProvider is implemented by components that serve HTTP routes.
type RouteProvider interface {
	Routes() []Route
}

// Route is one registered HTTP route.
type Route struct {
	Method  string
	Path    string
	Handler string
}
