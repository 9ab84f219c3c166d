package middleware

import (
	"log/slog"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	RequestIDHeader = "X-Request-ID"
	RequestIDKey    = "request_id"
)

type AccessLogMiddleware struct {
	logger *slog.Logger
}

func NewAccessLogMiddleware(logger *slog.Logger) *AccessLogMiddleware {
	if logger == nil {
		logger = slog.Default()
	}
	return &AccessLogMiddleware{logger: logger}
}

// Middleware tags every request with an X-Request-ID (generated when the
// client sent none) and logs one line per request. Errors attached with
// c.Error are included.
func (m *AccessLogMiddleware) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		rid := c.GetHeader(RequestIDHeader)
		if rid == "" {
			rid = uuid.NewString()
		}
		c.Set(RequestIDKey, rid)
		c.Header(RequestIDHeader, rid)

		c.Next()

		status := c.Writer.Status()
		attrs := []any{
			"rid", rid,
			"ip", c.ClientIP(),
			"method", c.Request.Method,
			"path", c.Request.URL.RequestURI(),
			"status", status,
			"latency", time.Since(start).String(),
			"resp_bytes", c.Writer.Size(),
			"ua", c.Request.UserAgent(),
		}
		if len(c.Errors) > 0 {
			attrs = append(attrs, "errors", c.Errors.String())
		}

		level := slog.LevelInfo
		switch {
		case status >= 500:
			level = slog.LevelError
		case status >= 400:
			level = slog.LevelWarn
		}
		m.logger.Log(c.Request.Context(), level, "HTTP access", attrs...)
	}
}
