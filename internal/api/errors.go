package api

import (
	"errors"
	"net/http"

	"deliwaste/server/internal/services"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// respondError maps service errors onto status codes. Unexpected errors are
// logged and answered without their details.
func respondError(c *gin.Context, log *zap.Logger, message string, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, services.ErrInvalidArgument):
		status = http.StatusBadRequest
	case errors.Is(err, services.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, services.ErrConflict):
		status = http.StatusConflict
	}

	_ = c.Error(err)
	if status == http.StatusInternalServerError {
		log.Error(message, zap.Error(err))
		c.JSON(status, gin.H{"error": message})
		return
	}
	c.JSON(status, gin.H{
		"error":   message,
		"details": err.Error(),
	})
}

func badRequest(c *gin.Context, message, details string) {
	c.JSON(http.StatusBadRequest, gin.H{
		"error":   message,
		"details": details,
	})
}
