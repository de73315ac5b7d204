package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ollema/skiftesgatan-sub000/internal/service"
)

// writeError maps service sentinels to status codes; anything unmapped is a
// 500 with a generic body so internals never leak.
func writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrInvalidSlot), errors.Is(err, service.ErrPastBooking),
		errors.Is(err, service.ErrInvalidPreference):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrSlotConflict), errors.Is(err, service.ErrEmailTaken):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrInvalidCredentials):
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}
