package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/ssg-mis/order-to-dispatch-backend/pkg/metrics"
)

// MetricsMiddleware instruments every request with the HTTP collectors.
// The route template is used as the path label so /api/orders/DO-416 and
// /api/orders/DO-417 land in the same series.
func MetricsMiddleware(m *metrics.Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		m.IncrementHTTPRequestsInFlight()
		defer m.DecrementHTTPRequestsInFlight()

		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		m.RecordHTTPRequest(c.Request.Method, path, c.Writer.Status(), time.Since(start))
	}
}

// MetricsEndpoint serves the prometheus scrape endpoint
func MetricsEndpoint(m *metrics.Metrics) gin.HandlerFunc {
	handler := m.Handler()
	return func(c *gin.Context) {
		handler.ServeHTTP(c.Writer, c.Request)
	}
}
