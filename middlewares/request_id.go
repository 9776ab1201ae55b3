package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/joy095/bookmarathon/logger"
)

// RequestID tags every request with an id and writes an access log line
// once the handler chain finishes.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader("X-Request-ID")
		if requestID == "" {
			requestID = uuid.NewString()
		}
		c.Set("request_id", requestID)
		c.Writer.Header().Set("X-Request-ID", requestID)

		start := time.Now()
		c.Next()

		logger.InfoLogger.Infof("%s %s -> %d (%s) request_id=%s",
			c.Request.Method, c.Request.URL.Path, c.Writer.Status(),
			time.Since(start), requestID)
	}
}
