package middleware

import (
	"crypto/subtle"

	"github.com/gin-gonic/gin"

	apperrors "pokeproxy/pkg/errors"
)

// APIKeyHeader carries the shared secret.
const APIKeyHeader = "X-API-Key"

// APIKey rejects requests whose header doesn't match the configured secret exactly.
func APIKey(secret string) gin.HandlerFunc {
	expected := []byte(secret)

	return func(c *gin.Context) {
		provided := []byte(c.GetHeader(APIKeyHeader))
		if len(expected) == 0 || subtle.ConstantTimeCompare(provided, expected) != 1 {
			c.AbortWithStatusJSON(apperrors.ErrUnauthorized.StatusCode, gin.H{"error": apperrors.ErrUnauthorized.Message})
			return
		}
		c.Next()
	}
}
