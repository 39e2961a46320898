package web

import (
	"time"

	"bitbucket.org/hovr/booking-site/internal/web/middleware"
	"github.com/gin-gonic/gin"
)

// CurrentTimeFunc Current time. Can be mocked for testing.
var CurrentTimeFunc = time.Now

func StartRequest(c *gin.Context) {
	c.Set(middleware.StartTimeKey, CurrentTimeFunc())
}
