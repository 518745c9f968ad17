package middleware

import (
	"log/slog"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/answjddnjs04/errand-app/internal/observability"
)

// RequestLogger emits one structured log line per request.
func RequestLogger(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = c.Request.URL.Path
		}

		args := []any{
			"method", c.Request.Method,
			"route", route,
			"status", c.Writer.Status(),
			"duration_ms", time.Since(start).Milliseconds(),
			"remote_addr", observability.IPFromRequest(c.Request),
		}
		if rid := observability.RequestIDFromRequest(c.Request); rid != "" {
			args = append(args, "request_id", rid)
		}
		logger.Info("http_request", args...)
	}
}
