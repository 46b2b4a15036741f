package handlers

import (
	"context"
	goerrors "errors"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/turtacn/ueba/pkg/constants"
	"github.com/turtacn/ueba/pkg/errors"
	"github.com/turtacn/ueba/pkg/logger"
)

// SendError writes the client-facing representation of an error. Internal
// details never reach the response body.
func SendError(c *gin.Context, err error) {
	status := 500
	if appErr, ok := errors.AsAppError(err); ok {
		status = appErr.HTTPStatus()
	}
	c.JSON(status, errors.ToErrorResponse(err))
}

// RequestIDMiddleware assigns each request an identifier, honoring one the
// caller already set.
func RequestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader("X-Request-ID")
		if requestID == "" {
			requestID = uuid.NewString()
		}
		ctx := context.WithValue(c.Request.Context(), constants.ContextKeyRequestID, requestID)
		c.Request = c.Request.WithContext(ctx)
		c.Writer.Header().Set("X-Request-ID", requestID)
		c.Next()
	}
}

// LoggingMiddleware logs one line per completed request.
func LoggingMiddleware(log logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		latency := time.Since(start)
		log.Info(c.Request.Context(), "request processed",
			logger.String("method", c.Request.Method),
			logger.String("path", c.Request.URL.Path),
			logger.Int("status", c.Writer.Status()),
			logger.Int("latency_ms", int(latency.Milliseconds())),
			logger.String("client_ip", c.ClientIP()),
		)
	}
}

// RecoveryMiddleware converts panics into opaque 500 responses.
func RecoveryMiddleware(log logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if r := recover(); r != nil {
				log.Error(c.Request.Context(), "panic recovered", goerrors.New("panic"),
					logger.Any("panic", r),
					logger.String("path", c.Request.URL.Path),
				)
				c.Abort()
				SendError(c, errors.ErrInternal("panic in request handler"))
			}
		}()
		c.Next()
	}
}
