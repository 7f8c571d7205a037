// Package endpoint holds the probe and diagnostics handlers mounted by
// server.RegisterDefaultEndpoints.
package endpoint

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/kbukum/heroes/component"
)

// HealthChecker returns health status for registered components.
type HealthChecker func(ctx context.Context) []component.Health

// probeReport is the body of every probe response.
type probeReport struct {
	Status     string             `json:"status"`
	Service    string             `json:"service"`
	Timestamp  string             `json:"timestamp"`
	Components []component.Health `json:"components,omitempty"`
}

func newReport(service, status string) probeReport {
	return probeReport{Status: status, Service: service, Timestamp: time.Now().UTC().Format(time.RFC3339)}
}

// overall folds component health into one status: any unhealthy component
// makes the service unhealthy, otherwise any degraded one degrades it.
func overall(components []component.Health) component.HealthStatus {
	status := component.StatusHealthy
	for _, h := range components {
		switch h.Status {
		case component.StatusUnhealthy:
			return component.StatusUnhealthy
		case component.StatusDegraded:
			status = component.StatusDegraded
		}
	}
	return status
}

func check(c *gin.Context, checker HealthChecker) []component.Health {
	if checker == nil {
		return nil
	}
	return checker(c.Request.Context())
}

// Health reports the service status with every component's health.
// An unhealthy component turns the response into a 503.
func Health(serviceName string, checker HealthChecker) gin.HandlerFunc {
	return func(c *gin.Context) {
		components := check(c, checker)
		status := overall(components)

		report := newReport(serviceName, string(status))
		report.Components = components
		code := http.StatusOK
		if status == component.StatusUnhealthy {
			code = http.StatusServiceUnavailable
		}
		c.JSON(code, report)
	}
}

// Readiness reports whether the service can take traffic. Degraded
// components still count as ready.
func Readiness(serviceName string, checker HealthChecker) gin.HandlerFunc {
	return func(c *gin.Context) {
		if overall(check(c, checker)) == component.StatusUnhealthy {
			c.JSON(http.StatusServiceUnavailable, newReport(serviceName, "not_ready"))
			return
		}
		c.JSON(http.StatusOK, newReport(serviceName, "ready"))
	}
}

// Liveness only confirms the process serves HTTP.
func Liveness(serviceName string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, newReport(serviceName, "alive"))
	}
}
