package api

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	apperrors "github.com/kbukum/heroes/errors"
	"github.com/kbukum/heroes/logger"
	"github.com/kbukum/heroes/search"
	"github.com/kbukum/heroes/server"
	"github.com/kbukum/heroes/sse"
	"github.com/kbukum/heroes/validation"
)

type queryRequest struct {
	Query *string `json:"query"`
}

type queryResponse struct {
	Session string `json:"session"`
	Query   string `json:"query"`
}

// submitQuery hands one keystroke to the session. The query may be blank:
// clearing the input is a keystroke too.
func (h *Handler) submitQuery(c *gin.Context) {
	session := c.Param("session")
	var req queryRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Query == nil {
		appErr := apperrors.MissingField("query")
		if err != nil {
			appErr = appErr.WithCause(err)
		}
		server.RespondWithError(c, appErr)
		return
	}
	if err := h.sessions.Submit(session, *req.Query); err != nil {
		server.RespondWithError(c, err)
		return
	}
	server.RespondAccepted(c, queryResponse{Session: session, Query: *req.Query})
}

func (h *Handler) latestQuery(c *gin.Context) {
	session := c.Param("session")
	if err := validation.SessionID(session); err != nil {
		server.RespondWithError(c, err)
		return
	}
	latest, ok := h.sessions.Latest(session)
	if !ok {
		server.RespondWithError(c, apperrors.NotFound("search session", session))
		return
	}
	server.RespondOK(c, queryResponse{Session: session, Query: latest})
}

func (h *Handler) endSession(c *gin.Context) {
	session := c.Param("session")
	if !h.sessions.End(session) {
		server.RespondWithError(c, apperrors.NotFound("search session", session))
		return
	}
	server.RespondNoContent(c)
}

// streamResults attaches a display to the session. Every connection gets
// its own hub client so several tabs can follow one session.
func (h *Handler) streamResults(c *gin.Context) {
	session := c.Param("session")
	if err := validation.SessionID(session); err != nil {
		server.RespondWithError(c, err)
		return
	}
	h.sessions.Touch(session)

	ctx := logger.ContextWithSessionID(c.Request.Context(), session)
	clientID := search.ClientID(session, uuid.NewString())
	sse.ServeSSE(h.hub, c.Writer, c.Request.WithContext(ctx), clientID, sse.WithSessionID(session))
	h.sessions.Touch(session)
}
