package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kbukum/heroes/api"
	"github.com/kbukum/heroes/bootstrap"
	"github.com/kbukum/heroes/hero"
	"github.com/kbukum/heroes/messages"
	"github.com/kbukum/heroes/observability"
	"github.com/kbukum/heroes/search"
	"github.com/kbukum/heroes/server"
	"github.com/kbukum/heroes/sse"
)

// serveCmd runs the HTTP backend
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the hero backend",
	Long: `Serves the hero REST API, the message log and remote search sessions.

Search sessions run the same pipeline as the terminal search; results are
pushed to clients over server-sent events at /api/search/:session/stream.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	app, err := bootstrap.NewApp(cfg)
	if err != nil {
		return err
	}
	if err := registerServe(app); err != nil {
		return err
	}
	return app.Run(cmd.Context())
}

// registerServe wires the backend components into app. Telemetry and the
// SSE hub start first; everything else is built once they are up.
func registerServe(app *bootstrap.App[*AppConfig]) error {
	cfg := app.Cfg
	events := sse.NewComponent("/api/search/:session/stream")

	if err := app.RegisterComponent(observability.NewComponent(cfg.Observability, cfg.Name, cfg.Version, cfg.Environment)); err != nil {
		return err
	}
	if err := app.RegisterComponent(events); err != nil {
		return err
	}

	app.OnConfigure(func(_ context.Context, a *bootstrap.App[*AppConfig]) error {
		httpMetrics, err := observability.NewMetrics(observability.Meter("heroes/http"))
		if err != nil {
			return fmt.Errorf("http metrics: %w", err)
		}
		searchMetrics, err := observability.NewSearchMetrics(observability.Meter("heroes/search"))
		if err != nil {
			return fmt.Errorf("search metrics: %w", err)
		}

		heroes := hero.NewService(hero.NewSeededStore(), messages.NewLog(), hero.WithLogger(a.Logger))
		sessions := search.NewSessions(a.Cfg.Search, heroes, events.Hub(),
			search.WithLogger(a.Logger),
			search.WithMetrics(searchMetrics))

		srv := server.New(a.Cfg.Server, a.Logger, server.WithMetrics(httpMetrics))
		srv.RegisterDefaultEndpoints(a.Name, a.Components.HealthAll)
		api.NewHandler(heroes, sessions, events.Hub(), api.WithLogger(a.Logger)).Register(srv.GinEngine())

		if err := a.RegisterComponent(sessions); err != nil {
			return err
		}
		return a.RegisterComponent(server.NewComponent(srv))
	})
	return nil
}
