package handler

import (
	"errors"
	"net/http"

	"github.com/folgercn/ai-bookkeeper/internal/apperr"

	"github.com/gin-gonic/gin"
)

const ownerKey = "owner_id"

// RequireOwner extracts the caller identity set by the upstream auth layer.
// Credential verification itself is the auth collaborator's job; this side
// only refuses requests that arrive without an identity.
func RequireOwner() gin.HandlerFunc {
	return func(c *gin.Context) {
		ownerID := c.GetHeader("X-User-ID")
		if ownerID == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing user identity"})
			return
		}
		c.Set(ownerKey, ownerID)
		c.Next()
	}
}

func owner(c *gin.Context) string {
	return c.GetString(ownerKey)
}

// statusFor maps the error taxonomy onto HTTP statuses.
func statusFor(err error) int {
	switch {
	case errors.Is(err, apperr.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, apperr.ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, apperr.ErrExtractionFailed), errors.Is(err, apperr.ErrInterpretationFailed):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
