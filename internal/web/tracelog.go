package web

import (
	"bitbucket.org/hovr/booking-site/internal/web/middleware"
	"github.com/gin-gonic/gin"
)

func TraceLog(c *gin.Context) {
	// Finish all others and then write trace log
	c.Next()

	middleware.Logger(c).Info().
		Str("label", "trace").
		Str("method", c.Request.Method).
		Str("url", c.Request.URL.Path).
		Int("code", c.Writer.Status()).
		Float64("duration", CurrentTimeFunc().Sub(middleware.StartTime(c)).Seconds()).
		Msg("")
}
