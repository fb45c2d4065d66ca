package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"storage-bca/internal/logger"
)

// Logger logs one line per request.
func Logger(log logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		fields := map[string]any{
			"method":     c.Request.Method,
			"path":       c.FullPath(),
			"status":     c.Writer.Status(),
			"latency_ms": time.Since(start).Milliseconds(),
		}
		if len(c.Errors) > 0 {
			fields["errors"] = c.Errors.String()
		}
		if c.Writer.Status() >= 500 {
			log.Errorf("%s %s -> %d", c.Request.Method, c.Request.URL.Path, c.Writer.Status())
			return
		}
		log.Debugw("request", fields)
	}
}
