package bootstrap

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/kbukum/heroes/component"
	"github.com/kbukum/heroes/logger"
)

// App drives one service through start, configure, ready, run and stop.
//
//	app, err := bootstrap.NewApp(cfg)
//	app.OnConfigure(func(ctx context.Context, a *bootstrap.App[*AppConfig]) error {
//	    return a.RegisterComponent(search.NewSessions(...))
//	})
//	err = app.Run(ctx)
type App[C Config] struct {
	Name       string
	Version    string
	Cfg        C
	Components *component.Registry
	Logger     *logger.Logger
	Summary    *Summary

	grace       time.Duration
	signals     []os.Signal
	configurers []func(ctx context.Context, app *App[C]) error

	onStart hookList
	onReady hookList
	onStop  hookList
}

// NewApp defaults and validates cfg, then sets up logging and the
// component registry.
func NewApp[C Config](cfg C, opts ...Option) (*App[C], error) {
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}

	s := settings{grace: DefaultGracefulTimeout}
	for _, opt := range opts {
		opt(&s)
	}

	svc := cfg.GetServiceConfig()
	if s.log == nil {
		logger.Init(svc.Logging, svc.Name)
		s.log = logger.GetGlobalLogger()
	}
	summary := NewSummary(svc.Name, svc.Version)
	if s.summaryOut != nil {
		summary.SetOutput(s.summaryOut)
	}

	return &App[C]{
		Name:       svc.Name,
		Version:    svc.Version,
		Cfg:        cfg,
		Components: component.NewRegistry(),
		Logger:     s.log,
		Summary:    summary,
		grace:      s.grace,
		signals:    []os.Signal{syscall.SIGINT, syscall.SIGTERM},
	}, nil
}

// RegisterComponent adds c to the registry.
func (a *App[C]) RegisterComponent(c component.Component) error {
	return a.Components.Register(c)
}

// OnConfigure callbacks run once the components registered up front are
// started. Anything they register is started before the ready check.
func (a *App[C]) OnConfigure(fn func(ctx context.Context, app *App[C]) error) {
	a.configurers = append(a.configurers, fn)
}

// ReadyCheck fails when any component reports a status other than healthy.
func (a *App[C]) ReadyCheck(ctx context.Context) error {
	var bad []string
	for _, h := range a.Components.HealthAll(ctx) {
		if h.Status == component.StatusHealthy {
			continue
		}
		entry := h.Name + "=" + string(h.Status)
		if h.Message != "" {
			entry += "(" + h.Message + ")"
		}
		bad = append(bad, entry)
	}
	if len(bad) == 0 {
		return nil
	}
	return fmt.Errorf("unhealthy components: [%s]", strings.Join(bad, " "))
}

// Run starts the service and blocks until SIGINT, SIGTERM or ctx ends it.
func (a *App[C]) Run(ctx context.Context) error {
	if err := a.boot(ctx); err != nil {
		return err
	}
	a.Logger.Info("Application ready, waiting for shutdown signal")
	a.awaitShutdown(ctx)
	return a.shutdown()
}

// RunTask starts the service, runs task and shuts down when it returns.
// task's context ends on SIGINT or SIGTERM. The task error wins over a
// shutdown error.
func (a *App[C]) RunTask(ctx context.Context, task func(ctx context.Context) error) error {
	if err := a.boot(ctx); err != nil {
		return err
	}
	taskCtx, cancel := signal.NotifyContext(ctx, a.signals...)
	defer cancel()

	err := task(taskCtx)
	if stopErr := a.shutdown(); err == nil {
		err = stopErr
	}
	return err
}

// boot runs every startup phase in order. If one fails, whatever already
// started is shut down again.
func (a *App[C]) boot(ctx context.Context) error {
	began := time.Now()
	a.Logger.Info("Starting application", logger.Fields("name", a.Name, "version", a.Version))

	phases := []struct {
		failure string
		run     func(context.Context) error
	}{
		{"initialization failed", a.Components.StartAll},
		{"onStart hook failed", a.onStart.run},
		{"configuration failed", a.configure},
		{"ready check", a.checkReady},
		{"onReady hook failed", a.onReady.run},
	}
	for _, p := range phases {
		if err := p.run(ctx); err != nil {
			if stopErr := a.shutdown(); stopErr != nil {
				a.Logger.Error("Cleanup after failed startup", logger.Fields(logger.FieldError, stopErr.Error()))
			}
			return fmt.Errorf("%s: %w", p.failure, err)
		}
	}

	a.Summary.SetStartupDuration(time.Since(began))
	a.Summary.Display(ctx, a.Components)
	return nil
}

func (a *App[C]) configure(ctx context.Context) error {
	if len(a.configurers) == 0 {
		return nil
	}
	a.Logger.Debug("Running configuration callbacks", logger.Fields(logger.FieldCount, len(a.configurers)))
	for _, fn := range a.configurers {
		if err := fn(ctx, a); err != nil {
			return err
		}
	}
	return a.Components.StartAll(ctx)
}

// checkReady only warns. A degraded component does not block startup.
func (a *App[C]) checkReady(ctx context.Context) error {
	if err := a.ReadyCheck(ctx); err != nil {
		a.Logger.Warn("Ready check reported issues", logger.Fields(logger.FieldError, err.Error()))
	}
	return nil
}

func (a *App[C]) awaitShutdown(ctx context.Context) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, a.signals...)
	defer signal.Stop(sigs)

	select {
	case sig := <-sigs:
		a.Logger.Info("Received shutdown signal", logger.Fields("signal", sig.String()))
	case <-ctx.Done():
		a.Logger.Info("Context canceled, shutting down")
	}
}

// shutdown runs the OnStop hooks and then stops the components, all
// within the graceful timeout. The last error seen is returned.
func (a *App[C]) shutdown() error {
	a.Logger.Info("Shutting down application", logger.Fields("timeout", a.grace.String()))
	ctx, cancel := context.WithTimeout(context.Background(), a.grace)
	defer cancel()

	var last error
	if err := a.onStop.run(ctx); err != nil {
		a.Logger.Error("OnStop hook error", logger.Fields(logger.FieldError, err.Error()))
		last = err
	}
	if err := a.Components.StopAll(ctx); err != nil {
		a.Logger.Error("Shutdown completed with errors", logger.Fields(logger.FieldError, err.Error()))
		last = err
	}
	a.Logger.Info("Application shutdown complete")
	return last
}
