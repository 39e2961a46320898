package web

import (
	"bitbucket.org/hovr/booking-site/internal/web/middleware"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

func RegisterLogger(logger *zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		requestLogger := logger.
			With().
			Str(middleware.CorrelationIdKey, c.GetString(middleware.CorrelationIdKey)).
			Logger()

		c.Set(middleware.LoggerKey, &requestLogger)
	}
}
