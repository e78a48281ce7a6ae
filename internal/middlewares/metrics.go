package middlewares

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"dutoan_backend/internal/metrics"
)

// Metrics records request counts and latency per route pattern.
func Metrics() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		// FullPath keeps ids out of the label set.
		endpoint := c.FullPath()
		if endpoint == "" {
			endpoint = "unmatched"
		}
		method := c.Request.Method

		metrics.HTTPRequestsTotal.WithLabelValues(method, endpoint, strconv.Itoa(c.Writer.Status())).Inc()
		metrics.HTTPRequestDurationSeconds.WithLabelValues(method, endpoint).Observe(time.Since(start).Seconds())
	}
}
