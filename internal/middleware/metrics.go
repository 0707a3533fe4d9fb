package middleware

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/foreningshub/backend/pkg/metrics"
)

// Metrics observes per-request latency labelled by method, route and status.
func Metrics() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		// Prefer the route template over the raw path to bound label cardinality.
		route := c.FullPath()
		if route == "" {
			route = c.Request.URL.Path
		}

		metrics.APILatency.
			WithLabelValues(c.Request.Method, route, strconv.Itoa(c.Writer.Status())).
			Observe(time.Since(start).Seconds())
	}
}
