package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/churchcomm/admin-api/pkg/logger"
)

// Logger logs one line per request with latency and status.
func Logger(log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		if raw := c.Request.URL.RawQuery; raw != "" {
			path = path + "?" + raw
		}

		c.Next()

		status := c.Writer.Status()
		fields := []interface{}{
			"request_id", c.GetString(ContextRequestID),
			"method", c.Request.Method,
			"path", path,
			"status", status,
			"latency", time.Since(start).String(),
			"client_ip", c.ClientIP(),
		}

		switch {
		case status >= 500:
			log.Error(nil, "server error", fields...)
		case status >= 400:
			log.Warn("client error", fields...)
		default:
			log.Info("request processed", fields...)
		}
	}
}
