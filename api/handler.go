package api

import (
	"strconv"

	"github.com/gin-gonic/gin"

	apperrors "github.com/kbukum/heroes/errors"
	"github.com/kbukum/heroes/hero"
	"github.com/kbukum/heroes/logger"
	"github.com/kbukum/heroes/search"
	"github.com/kbukum/heroes/sse"
)

// Handler serves the hero and search routes.
type Handler struct {
	heroes   *hero.Service
	sessions *search.Sessions
	hub      *sse.Hub
	log      *logger.Logger
}

// Option configures a Handler.
type Option func(*Handler)

// WithLogger sets the logger.
func WithLogger(l *logger.Logger) Option {
	return func(h *Handler) {
		if l != nil {
			h.log = l
		}
	}
}

// NewHandler creates a Handler. sessions and hub may be nil, in which case
// the search routes are not registered.
func NewHandler(heroes *hero.Service, sessions *search.Sessions, hub *sse.Hub, opts ...Option) *Handler {
	h := &Handler{
		heroes:   heroes,
		sessions: sessions,
		hub:      hub,
		log:      logger.GetGlobalLogger(),
	}
	for _, opt := range opts {
		opt(h)
	}
	h.log = h.log.WithComponent("api")
	return h
}

// Register mounts every route under /api.
func (h *Handler) Register(r gin.IRouter) {
	g := r.Group("/api")

	g.GET("/heroes", h.listHeroes)
	g.GET("/dashboard", h.dashboard)
	g.GET("/heroes/:id", h.getHero)
	g.POST("/heroes", h.addHero)
	g.PUT("/heroes/:id", h.updateHero)
	g.DELETE("/heroes/:id", h.deleteHero)

	g.GET("/messages", h.listMessages)
	g.DELETE("/messages", h.clearMessages)

	if h.sessions != nil && h.hub != nil {
		g.POST("/search/:session/query", h.submitQuery)
		g.GET("/search/:session", h.latestQuery)
		g.DELETE("/search/:session", h.endSession)
		g.GET("/search/:session/stream", h.streamResults)
	}
}

func heroID(c *gin.Context) (int, error) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return 0, apperrors.InvalidInput("id", "id must be an integer")
	}
	return id, nil
}
