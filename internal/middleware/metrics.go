package middleware

import (
	"time"

	"github.com/farellandr/museum-tickets/internal/monitoring"
	"github.com/gin-gonic/gin"
)

func Metrics() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		monitoring.ObserveRequest(c.Request.Method, route, c.Writer.Status(), time.Since(start))
	}
}
