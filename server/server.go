package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"

	"github.com/kbukum/heroes/logger"
	"github.com/kbukum/heroes/observability"
	"github.com/kbukum/heroes/server/endpoint"
	"github.com/kbukum/heroes/server/middleware"
)

// Server serves a Gin engine, plus any handlers mounted with Handle, on
// one port over HTTP/1.1 and h2c.
type Server struct {
	cfg     Config
	log     *logger.Logger
	metrics *observability.Metrics

	engine *gin.Engine
	mux    *http.ServeMux
	http   *http.Server

	mu sync.Mutex
	ln net.Listener
}

type Option func(*Server)

// WithMetrics adds request metrics to the middleware chain.
func WithMetrics(m *observability.Metrics) Option {
	return func(s *Server) { s.metrics = m }
}

// New builds a server from cfg, which must have defaults applied. Gin runs
// in debug mode only while the global log level is debug or lower.
func New(cfg Config, log *logger.Logger, opts ...Option) *Server {
	mode := gin.ReleaseMode
	if zerolog.GlobalLevel() <= zerolog.DebugLevel {
		mode = gin.DebugMode
	}
	gin.SetMode(mode)

	s := &Server{
		cfg:    cfg,
		log:    log.WithComponent("server"),
		engine: gin.New(),
		mux:    http.NewServeMux(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.mux.Handle("/", s.engine)
	s.http = &http.Server{
		Addr:         cfg.Addr(),
		Handler:      s.Handler(),
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  cfg.IdleTimeout,
	}
	return s
}

// GinEngine is where API routes are registered.
func (s *Server) GinEngine() *gin.Engine { return s.engine }

// Handle mounts h next to the Gin engine.
func (s *Server) Handle(pattern string, h http.Handler) {
	s.mux.Handle(pattern, h)
	s.log.Debug("Handler mounted", logger.Fields("pattern", pattern))
}

// Handler is the full stack: middleware around the mux, behind h2c.
func (s *Server) Handler() http.Handler {
	chain := middleware.Chain(
		middleware.Recovery(s.log),
		middleware.RequestID(),
		middleware.RequestLogger(s.log),
		middleware.CORS(&s.cfg.CORS),
		middleware.BodySizeLimit(s.cfg.MaxBodySize),
		middleware.Metrics(s.metrics),
	)
	return h2c.NewHandler(chain(s.mux), &http2.Server{
		MaxConcurrentStreams: 250,
		IdleTimeout:          2 * time.Minute,
	})
}

// Start binds the listener and serves in the background. Once it returns
// the port accepts connections.
func (s *Server) Start(context.Context) error {
	ln, err := net.Listen("tcp", s.http.Addr)
	if err != nil {
		return fmt.Errorf("server failed to bind %s: %w", s.http.Addr, err)
	}
	s.mu.Lock()
	s.ln = ln
	s.mu.Unlock()

	go func() {
		if err := s.http.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.log.Error("Server error", logger.MergeWithError(nil, err))
		}
	}()
	s.log.Info("HTTP server started", logger.Fields("addr", ln.Addr().String()))
	return nil
}

// Stop drains open requests for at most the configured shutdown timeout.
func (s *Server) Stop(ctx context.Context) error {
	s.log.Info("Shutting down HTTP server")
	ctx, cancel := context.WithTimeout(ctx, s.cfg.ShutdownTimeout)
	defer cancel()
	if err := s.http.Shutdown(ctx); err != nil {
		s.log.Error("Server shutdown error", logger.MergeWithError(nil, err))
		return fmt.Errorf("server shutdown error: %w", err)
	}
	return nil
}

// Addr is the bound address after Start and the configured one before.
func (s *Server) Addr() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ln != nil {
		return s.ln.Addr().String()
	}
	return s.http.Addr
}

func (s *Server) bound() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ln != nil
}

// RegisterDefaultEndpoints adds the probe, info and runtime metrics routes.
func (s *Server) RegisterDefaultEndpoints(service string, checker endpoint.HealthChecker) {
	for path, h := range map[string]gin.HandlerFunc{
		"/health":  endpoint.Health(service, checker),
		"/ready":   endpoint.Readiness(service, checker),
		"/alive":   endpoint.Liveness(service),
		"/info":    endpoint.Info(service),
		"/metrics": endpoint.Metrics(),
	} {
		s.engine.GET(path, h)
	}
}
