package api

import (
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"addressproof/internal/logger"
)

const (
	// HeaderRequestID carries the request id in both directions.
	HeaderRequestID = "X-Request-ID"

	requestIDKey = "request_id"
)

// RequestIDMiddleware assigns every request an id, echoes it in the response and
// stores a request-scoped logger in the request context.
func RequestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := strings.TrimSpace(c.GetHeader(HeaderRequestID))
		if id == "" {
			id = uuid.NewString()
		}

		c.Set(requestIDKey, id)
		c.Header(HeaderRequestID, id)

		log := logger.WithRequestID(id)
		c.Request = c.Request.WithContext(log.WithContext(c.Request.Context()))

		c.Next()
	}
}

// LoggerMiddleware logs one line per request with method, path, status and duration.
func LoggerMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path

		c.Next()

		log := logger.WithContext(c.Request.Context())
		event := log.Info()
		if len(c.Errors) > 0 {
			event = log.Warn().Strs("errors", c.Errors.Errors())
		}
		if !strings.HasPrefix(path, "/health") {
			event = event.Str("user_agent", c.Request.UserAgent())
		}
		event.
			Str("method", c.Request.Method).
			Str("path", path).
			Int("status", c.Writer.Status()).
			Dur("duration", time.Since(start)).
			Str("client_ip", c.ClientIP()).
			Msg("HTTP request")
	}
}
