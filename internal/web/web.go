package web

import (
	"fmt"
	"net/http"
	"os"
	"time"

	"bitbucket.org/hovr/booking-site/api"
	"bitbucket.org/hovr/booking-site/internal/config"
	"bitbucket.org/hovr/booking-site/internal/session"
	"bitbucket.org/hovr/booking-site/internal/storefront"
	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/pprof"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

func SetupRouter(
	log *zerolog.Logger,
	cfg config.Config,
	sessions storefront.Sessions,
	tokens *session.Tokens,
) (*gin.Engine, error) {
	startTime := time.Now()

	openApiContent := api.Document
	if cfg.OpenAPILocation != "" {
		content, err := os.ReadFile(cfg.OpenAPILocation)
		if err != nil {
			return nil, fmt.Errorf("unable to read openapi document: %w", err)
		}
		openApiContent = content
	}

	document, err := LoadDocument(openApiContent)
	if err != nil {
		return nil, err
	}

	validator, err := OpenapiValidator(document)
	if err != nil {
		return nil, err
	}

	if cfg.Production {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	router.
		Use(StartRequest).
		Use(CorrelationId).
		Use(RegisterLogger(log)).
		Use(TraceLog).
		Use(PanicRecovery)

	if len(cfg.AllowedOrigins) > 0 {
		corsConfig := cors.Config{
			AllowOrigins:     cfg.AllowedOrigins,
			AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodOptions},
			AllowHeaders:     []string{"Origin", "Content-Type", "Accept", CorrelationIdHeader},
			ExposeHeaders:    []string{CorrelationIdHeader},
			AllowCredentials: true,
			MaxAge:           12 * time.Hour,
		}
		if err := corsConfig.Validate(); err != nil {
			return nil, fmt.Errorf("invalid ALLOWED_ORIGINS: %w", err)
		}

		router.Use(cors.New(corsConfig))
	}

	router.Use(validator)

	router.GET("/status", func(c *gin.Context) {
		response := struct {
			Uptime float64 `json:"uptime"`
		}{
			Uptime: time.Since(startTime).Seconds(),
		}

		c.JSON(http.StatusOK, response)
	})

	router.GET("/openapi.json", func(c *gin.Context) {
		c.Data(http.StatusOK, "application/json", openApiContent)
	})

	pprof.Register(router)

	storefront.RegisterRoutes(router, storefront.Options{
		Sessions:     sessions,
		Tokens:       tokens,
		SecureCookie: cfg.Production,
	})

	return router, nil
}
