package middlewares

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	RequestIDHeader = "X-Request-Id"
	requestIDKey    = "request_id"
	loggerKey       = "logger"
)

// RequestID makes sure every request carries an id. An incoming
// X-Request-Id is reused, otherwise a new uuid is generated. The id is
// echoed back in the response and attached to a request-scoped logger.
func RequestID(base *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		rid := strings.TrimSpace(c.GetHeader(RequestIDHeader))
		if rid == "" {
			rid = uuid.NewString()
		}

		c.Set(requestIDKey, rid)
		c.Set(loggerKey, base.With(zap.String("request_id", rid)))
		c.Header(RequestIDHeader, rid)

		c.Next()
	}
}

// GetRequestID returns the id set by RequestID, or "".
func GetRequestID(c *gin.Context) string {
	return c.GetString(requestIDKey)
}

// GetLogger returns the request-scoped logger, or fallback when the
// RequestID middleware did not run.
func GetLogger(c *gin.Context, fallback *zap.Logger) *zap.Logger {
	if v, ok := c.Get(loggerKey); ok {
		if l, ok := v.(*zap.Logger); ok {
			return l
		}
	}
	return fallback
}
