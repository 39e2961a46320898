// Package middleware holds the request context keys and the error response shared by all routes.
package middleware

import (
	"time"

	"bitbucket.org/hovr/booking-site/internal/schema"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const (
	LoggerKey        = "logger"
	CorrelationIdKey = "correlationId"
	StartTimeKey     = "requestStartTime"
)

// Logger is the request logger, or the global one outside the middleware chain.
func Logger(c *gin.Context) *zerolog.Logger {
	if logger, ok := c.Get(LoggerKey); ok {
		if l, ok := logger.(*zerolog.Logger); ok {
			return l
		}
	}

	return &log.Logger
}

func StartTime(c *gin.Context) time.Time {
	return c.GetTime(StartTimeKey)
}

// HandleError writes {"detail": message} with status and aborts the chain.
func HandleError(c *gin.Context, status int, message string, err error) {
	logger := Logger(c)

	event := logger.Warn()
	if status >= 500 {
		event = logger.Error()
	}

	event.
		Err(err).
		Int("code", status).
		Msg(message)

	c.AbortWithStatusJSON(status, schema.ErrorResponse{Detail: message})
}
