package middleware

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"weatherdiary/internal/pkg/metrics"
)

// Metrics records request counts and latency by route template, so that
// /favorites/:id does not explode into one series per id.
func Metrics() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		metrics.HTTPRequestsTotal.WithLabelValues(c.Request.Method, route, strconv.Itoa(c.Writer.Status())).Inc()
		metrics.HTTPRequestDuration.WithLabelValues(c.Request.Method, route).Observe(time.Since(start).Seconds())
	}
}
