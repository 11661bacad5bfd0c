package middleware

import (
	"fmt"
	"net/http"
	"runtime/debug"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"mathtutor/internal/pkg/logger"
	"mathtutor/internal/pkg/response"
)

const (
	HeaderRequestID = "X-Request-ID"
	CtxRequestID    = "request_id"
)

// RequestID propagates X-Request-ID or assigns a fresh one.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(HeaderRequestID)
		if id == "" {
			id = uuid.NewString()
		}
		c.Set(CtxRequestID, id)
		c.Writer.Header().Set(HeaderRequestID, id)
		c.Next()
	}
}

// RequestLogger writes one line per request. Errors attached with c.Error
// and 5xx responses are logged at error level.
func RequestLogger(log *zap.Logger) gin.HandlerFunc {
	log = logger.OrNop(log)
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		status := c.Writer.Status()
		fields := []zap.Field{
			zap.Int("status", status),
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.String("client_ip", c.ClientIP()),
			zap.Duration("latency", time.Since(start)),
			zap.String(logger.FieldRequestID, c.GetString(CtxRequestID)),
		}
		if uid := c.GetInt64(CtxUserID); uid > 0 {
			fields = append(fields, zap.Int64(logger.FieldUserID, uid), zap.String("role", c.GetString(CtxRole)))
		}

		switch {
		case len(c.Errors) > 0:
			for _, e := range c.Errors {
				log.Error("request_error", append(fields, zap.Error(e.Err))...)
			}
		case status >= http.StatusInternalServerError:
			log.Error("request_failed", fields...)
		case status >= http.StatusBadRequest:
			log.Info("request_rejected", fields...)
		default:
			log.Debug("request", fields...)
		}
	}
}

// Recovery turns a panic into a 500 and logs the stack.
func Recovery(log *zap.Logger) gin.HandlerFunc {
	log = logger.OrNop(log)
	return func(c *gin.Context) {
		defer func() {
			if recovered := recover(); recovered != nil {
				log.Error("panic",
					zap.String(logger.FieldError, fmt.Sprintf("%v", recovered)),
					zap.String("path", c.Request.URL.Path),
					zap.String(logger.FieldRequestID, c.GetString(CtxRequestID)),
					zap.ByteString("stack", debug.Stack()),
				)
				response.AbortError(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Internal server error")
			}
		}()
		c.Next()
	}
}
