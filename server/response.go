package server

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "github.com/kbukum/heroes/errors"
)

// DataResponse wraps every successful JSON body.
type DataResponse struct {
	Data any   `json:"data"`
	Meta *Meta `json:"meta,omitempty"`
}

type Meta struct {
	Total int    `json:"total,omitempty"`
	Query string `json:"query,omitempty"`
}

// RespondWithError writes err as an error body. AppErrors keep their
// status; a canceled or expired request becomes a timeout and anything
// else a 500 that hides the cause.
func RespondWithError(c *gin.Context, err error) {
	appErr, ok := apperrors.AsAppError(err)
	if !ok {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			appErr = apperrors.Timeout("request").WithCause(err)
		} else {
			appErr = apperrors.Internal(err)
		}
	}
	c.JSON(appErr.HTTPStatus, appErr.ToResponse())
}

func respond(c *gin.Context, status int, data any, meta *Meta) {
	c.JSON(status, DataResponse{Data: data, Meta: meta})
}

func RespondOK(c *gin.Context, data any)                     { respond(c, http.StatusOK, data, nil) }
func RespondOKWithMeta(c *gin.Context, data any, meta *Meta) { respond(c, http.StatusOK, data, meta) }
func RespondCreated(c *gin.Context, data any)                { respond(c, http.StatusCreated, data, nil) }
func RespondAccepted(c *gin.Context, data any)               { respond(c, http.StatusAccepted, data, nil) }
func RespondNoContent(c *gin.Context)                        { c.Status(http.StatusNoContent) }
