package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"portfolio-analytics/internal/monitoring"
)

// Metrics records every request against its route template so that path
// parameters do not explode label cardinality.
func Metrics(metrics monitoring.MetricsService) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		endpoint := c.FullPath()
		if endpoint == "" {
			endpoint = "unmatched"
		}
		metrics.RecordHTTPRequest(c.Request.Method, endpoint, c.Writer.Status(), time.Since(start))
	}
}
