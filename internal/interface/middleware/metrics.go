package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
)

// HTTPObserver is satisfied by *metrics.Collector.
type HTTPObserver interface {
	ObserveHTTP(method, route string, status int, d time.Duration)
}

// Metrics records per-route request counts and latency. Unmatched routes are
// folded into one label to keep cardinality bounded.
func Metrics(obs HTTPObserver) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		obs.ObserveHTTP(c.Request.Method, route, c.Writer.Status(), time.Since(start))
	}
}
