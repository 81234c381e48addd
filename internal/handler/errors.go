package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/tgo/chariott/internal/middleware"
	"github.com/tgo/chariott/internal/pkg/response"
	"github.com/tgo/chariott/internal/service"
)

const (
	defaultPageLimit = 10
	maxPageLimit     = 100
)

// writeError maps service errors onto HTTP statuses.
func writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrValidation):
		response.BadRequest(c, err.Error())
	case errors.Is(err, service.ErrUnauthorized):
		response.Unauthorized(c, "Invalid credentials")
	case errors.Is(err, service.ErrForbidden):
		response.Forbidden(c, err.Error())
	case errors.Is(err, service.ErrNotFound):
		response.NotFound(c, err.Error())
	case errors.Is(err, service.ErrConflict):
		response.Conflict(c, err.Error())
	default:
		slog.Error("request failed", "path", c.FullPath(), "request_id", c.GetString(middleware.ContextRequest), "error", err)
		response.InternalError(c, err.Error())
	}
}

// pageParams reads skip/limit query parameters.
func pageParams(c *gin.Context) (skip, limit int, ok bool) {
	skip, err := strconv.Atoi(c.DefaultQuery("skip", "0"))
	if err != nil || skip < 0 {
		response.BadRequest(c, "skip must be a non-negative integer")
		return 0, 0, false
	}
	limit, err = strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(defaultPageLimit)))
	if err != nil || limit < 1 || limit > maxPageLimit {
		response.BadRequest(c, "limit must be between 1 and 100")
		return 0, 0, false
	}
	return skip, limit, true
}

func bindJSON(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body", err.Error())
		return false
	}
	return true
}
