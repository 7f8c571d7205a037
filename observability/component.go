package observability

import (
	"context"
	"errors"
	"fmt"
	"sync"

	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"

	"github.com/kbukum/heroes/component"
	"github.com/kbukum/heroes/logger"
)

// Component owns the OTLP meter and tracer providers. While disabled,
// Start does nothing and the global no-op providers stay installed.
type Component struct {
	cfg Config
	id  Identity

	mu sync.Mutex
	mp *sdkmetric.MeterProvider
	tp *sdktrace.TracerProvider
}

var (
	_ component.Component   = (*Component)(nil)
	_ component.Describable = (*Component)(nil)
)

func NewComponent(cfg Config, service, version, environment string) *Component {
	cfg.ApplyDefaults()
	return &Component{cfg: cfg, id: Identity{Service: service, Version: version, Environment: environment}}
}

func (c *Component) Name() string { return "telemetry" }

// Start creates both providers and installs them globally.
func (c *Component) Start(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.cfg.Enabled || c.mp != nil {
		return nil
	}

	mp, err := newMeterProvider(ctx, c.cfg, c.id)
	if err != nil {
		return fmt.Errorf("telemetry: %w", err)
	}
	tp, err := newTracerProvider(ctx, c.cfg, c.id)
	if err != nil {
		_ = mp.Shutdown(ctx)
		return fmt.Errorf("telemetry: %w", err)
	}
	installGlobal(mp, tp)
	c.mp, c.tp = mp, tp

	logger.Info("telemetry exporting", logger.Fields(
		"service", c.id.Service,
		"endpoint", c.cfg.Endpoint,
		"interval", c.cfg.Interval.String(),
		"sample_rate", c.cfg.SampleRate,
	))
	return nil
}

// Stop flushes and shuts down both providers.
func (c *Component) Stop(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.mp == nil {
		return nil
	}
	err := errors.Join(c.mp.Shutdown(ctx), c.tp.Shutdown(ctx))
	c.mp, c.tp = nil, nil
	return err
}

func (c *Component) Health(context.Context) component.Health {
	h := component.Health{Name: c.Name(), Status: component.StatusHealthy}
	if !c.cfg.Enabled {
		h.Message = "disabled"
	}
	return h
}

func (c *Component) Describe() component.Description {
	d := component.Description{Name: "Telemetry", Type: "telemetry", Details: "disabled"}
	if c.cfg.Enabled {
		d.Details = fmt.Sprintf("otlp http %s every %s", c.cfg.Endpoint, c.cfg.Interval)
	}
	return d
}
