package api

import (
	"github.com/gin-gonic/gin"

	apperrors "github.com/kbukum/heroes/errors"
	"github.com/kbukum/heroes/hero"
	"github.com/kbukum/heroes/server"
)

type heroRequest struct {
	Name string `json:"name"`
}

func (h *Handler) listHeroes(c *gin.Context) {
	ctx := c.Request.Context()
	if term, ok := c.GetQuery("name"); ok {
		heroes, err := h.heroes.SearchHeroes(ctx, term)
		if err != nil {
			server.RespondWithError(c, err)
			return
		}
		server.RespondOKWithMeta(c, heroes, &server.Meta{Total: len(heroes), Query: term})
		return
	}
	heroes, err := h.heroes.Heroes(ctx)
	if err != nil {
		server.RespondWithError(c, err)
		return
	}
	server.RespondOKWithMeta(c, heroes, &server.Meta{Total: len(heroes)})
}

func (h *Handler) dashboard(c *gin.Context) {
	heroes, err := h.heroes.Top(c.Request.Context())
	if err != nil {
		server.RespondWithError(c, err)
		return
	}
	server.RespondOK(c, heroes)
}

func (h *Handler) getHero(c *gin.Context) {
	id, err := heroID(c)
	if err != nil {
		server.RespondWithError(c, err)
		return
	}
	got, err := h.heroes.Hero(c.Request.Context(), id)
	if err != nil {
		server.RespondWithError(c, err)
		return
	}
	server.RespondOK(c, got)
}

func (h *Handler) addHero(c *gin.Context) {
	var req heroRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		server.RespondWithError(c, apperrors.Validation("request body must be a JSON object with a name").WithCause(err))
		return
	}
	added, err := h.heroes.Add(c.Request.Context(), req.Name)
	if err != nil {
		server.RespondWithError(c, err)
		return
	}
	server.RespondCreated(c, added)
}

func (h *Handler) updateHero(c *gin.Context) {
	id, err := heroID(c)
	if err != nil {
		server.RespondWithError(c, err)
		return
	}
	var req heroRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		server.RespondWithError(c, apperrors.Validation("request body must be a JSON object with a name").WithCause(err))
		return
	}
	updated, err := h.heroes.Update(c.Request.Context(), hero.Hero{ID: id, Name: req.Name})
	if err != nil {
		server.RespondWithError(c, err)
		return
	}
	server.RespondOK(c, updated)
}

func (h *Handler) deleteHero(c *gin.Context) {
	id, err := heroID(c)
	if err != nil {
		server.RespondWithError(c, err)
		return
	}
	if err := h.heroes.Delete(c.Request.Context(), id); err != nil {
		server.RespondWithError(c, err)
		return
	}
	server.RespondNoContent(c)
}

func (h *Handler) listMessages(c *gin.Context) {
	server.RespondOK(c, h.heroes.Messages().Messages())
}

func (h *Handler) clearMessages(c *gin.Context) {
	h.heroes.Messages().Clear()
	server.RespondNoContent(c)
}
