package middleware

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"pokeproxy/pkg/metrics"
)

// Label used for requests that matched no route.
const unmatchedRoute = "unmatched"

// Metrics tracks the requests in flight and observes their latency by route template.
func Metrics() gin.HandlerFunc {
	return func(c *gin.Context) {
		metrics.RequestsInFlight.Inc()
		defer metrics.RequestsInFlight.Dec()

		start := time.Now()
		c.Next()

		// Unknown paths share one label.
		route := c.FullPath()
		if route == "" {
			route = unmatchedRoute
		}

		metrics.APILatency.
			WithLabelValues(c.Request.Method, route, strconv.Itoa(c.Writer.Status())).
			Observe(time.Since(start).Seconds())
	}
}
