// Package httperr renders service errors as JSON responses.
package httperr

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/alanyang/promptshelf/internal/domain/apperr"
)

// Status maps an error class to its HTTP status.
func Status(err error) int {
	switch {
	case errors.Is(err, apperr.ErrUnauthenticated):
		return http.StatusUnauthorized
	case errors.Is(err, apperr.ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, apperr.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, apperr.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, apperr.ErrStale):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// Write sends err with its mapped status. Remote failures are logged and
// reported without internal detail.
func Write(c *gin.Context, err error) {
	status := Status(err)
	if status == http.StatusInternalServerError {
		slog.ErrorContext(c.Request.Context(), "request failed",
			"method", c.Request.Method,
			"path", c.FullPath(),
			"error", err,
		)
		c.JSON(status, gin.H{"error": "something went wrong, try again"})
		return
	}
	c.JSON(status, gin.H{"error": err.Error()})
}

// BadRequest reports malformed input that never reached a service.
func BadRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, gin.H{"error": msg})
}
