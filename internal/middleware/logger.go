package middleware

import (
	"time"

	"github.com/farellandr/museum-tickets/internal/logging"
	"github.com/gin-gonic/gin"
	"github.com/lithammer/shortuuid/v3"
	"github.com/sirupsen/logrus"
)

const CorrelationIDHeader = "Correlation-ID"

// RequestLogger attaches a correlation id and a request scoped logrus entry
// to the request context and logs every completed request.
func RequestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		correlationID := c.GetHeader(CorrelationIDHeader)
		if correlationID == "" {
			correlationID = "gen_" + shortuuid.New()
		}
		c.Header(CorrelationIDHeader, correlationID)

		entry := logrus.WithField("correlation_id", correlationID)
		ctx := logging.ContextWithCorrelationID(c.Request.Context(), correlationID)
		ctx = logging.ToContext(ctx, entry)
		c.Request = c.Request.WithContext(ctx)

		c.Next()

		fields := logrus.Fields{
			"method":    c.Request.Method,
			"path":      c.Request.URL.Path,
			"status":    c.Writer.Status(),
			"latency":   time.Since(start).String(),
			"client_ip": c.ClientIP(),
		}
		switch status := c.Writer.Status(); {
		case status >= 500:
			entry.WithFields(fields).Error("Request handled")
		case status >= 400:
			entry.WithFields(fields).Warn("Request handled")
		default:
			entry.WithFields(fields).Info("Request handled")
		}
	}
}
