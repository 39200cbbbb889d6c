package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	apperrors "pokeproxy/pkg/errors"
	"pokeproxy/pkg/logger"
	"pokeproxy/pkg/metrics"
)

// RateLimit limits requests per client address within a fixed window.
// A failing store lets the request through.
func RateLimit(store RateStore, maxRequests int, window time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		if store == nil || maxRequests <= 0 || window <= 0 {
			c.Next()
			return
		}

		count, resetIn, err := store.Increment(c.Request.Context(), c.ClientIP(), window)
		if err != nil {
			logger.WithModule("ratelimit").Warn("rate store failed, allowing request",
				zap.String("client_ip", c.ClientIP()),
				zap.Error(err),
			)
			c.Next()
			return
		}

		c.Header("X-RateLimit-Limit", strconv.Itoa(maxRequests))
		c.Header("X-RateLimit-Remaining", strconv.Itoa(max(0, maxRequests-count)))
		c.Header("X-RateLimit-Reset", strconv.Itoa(int(resetIn.Seconds())))

		if count > maxRequests {
			metrics.RateLimited.Inc()
			c.Header("Retry-After", strconv.Itoa(max(1, int(resetIn.Seconds()))))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": apperrors.ErrRateLimit.Message})
			return
		}

		c.Next()
	}
}
