package storefront

import (
	"fmt"
	"net/http"

	"bitbucket.org/hovr/booking-site/internal/session"
	"bitbucket.org/hovr/booking-site/internal/web/middleware"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	ParamsKey  = "params"
	SessionKey = "sessionId"
)

// PrepareSession resolves the visitor's session from the cookie, starting a new one when the
// cookie is missing or its token does not verify. The request logger gets the session id.
func PrepareSession(tokens *session.Tokens, secureCookie bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		logger := middleware.Logger(c)

		var id string
		if cookie, err := c.Cookie(session.CookieName); err == nil {
			id, err = tokens.Parse(cookie)
			if err != nil {
				logger.Info().Err(err).Msg("Discarding session cookie")
			}
		}

		if id == "" {
			token, newId, err := tokens.Issue()
			if err != nil {
				middleware.HandleError(c, http.StatusInternalServerError, "Unable to start a session", err)
				return
			}

			id = newId
			c.SetSameSite(http.SameSiteLaxMode)
			c.SetCookie(session.CookieName, token, int(tokens.TTL().Seconds()), "/", "", secureCookie, true)
		}

		c.Set(SessionKey, id)

		requestLogger := logger.
			With().
			Str(SessionKey, id).
			Str("operationId", uuid.New().String()).
			Logger()

		c.Set(middleware.LoggerKey, &requestLogger)
	}
}

// PrepareParams binds the request into a new T by content type and stores the pointer under ParamsKey.
func PrepareParams[T any]() gin.HandlerFunc {
	return func(c *gin.Context) {
		params := new(T)

		if err := c.ShouldBind(params); err != nil {
			middleware.HandleError(c, http.StatusBadRequest, fmt.Sprintf("Failed to bind request params: %s", err), err)
			return
		}

		c.Set(ParamsKey, params)
	}
}
