//go:build !integration

package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"bitbucket.org/hovr/booking-site/internal/checkout"
	"bitbucket.org/hovr/booking-site/internal/config"
	"bitbucket.org/hovr/booking-site/internal/logger"
	"bitbucket.org/hovr/booking-site/internal/session"
	"bitbucket.org/hovr/booking-site/internal/tools/redisfactory"
	"bitbucket.org/hovr/booking-site/internal/web"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
)

func serverApp(httpServer *http.Server, logger *zerolog.Logger) int {
	shutdown := false
	done := make(chan error, 1)
	stop := make(chan os.Signal, 1)
	go func() {
		logger.
			Info().
			Msg("Listening on address " + httpServer.Addr)
		done <- httpServer.ListenAndServe()
	}()
	go func() {
		// Wait for stop
		<-stop
		shutdown = true
		logger.Info().Msg("Shutting down server...")
		_ = httpServer.Shutdown(context.Background())
	}()

	// Notify stop channel if SIGINT or SIGTERM is received
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	err := <-done
	if err != nil && !shutdown {
		logger.
			Error().
			Err(err).
			Msg("Server failed")
		return 1
	}
	return 0
}

func sessionStorage(factory *redisfactory.Factory, log *zerolog.Logger) session.Storage {
	if client := factory.SessionsClient(); client != nil {
		return session.NewRedisStorage(client, log)
	}

	log.Warn().Msg("SESSION_REDIS_URI not set, keeping sessions in memory")
	return session.NewMemoryStorage(log)
}

func run() int {
	_ = godotenv.Load(".env")

	cfg, err := config.Load()
	log := logger.New(cfg.LogLevel)
	if err != nil {
		log.Error().Err(err).Msg("Invalid configuration")
		return 1
	}

	redisFactory, err := redisfactory.New(cfg.SessionRedisURI)
	if err != nil {
		log.Error().Err(err).Msg("Invalid SESSION_REDIS_URI")
		return 1
	}
	defer redisFactory.Close()

	if cfg.SessionSecret == "" {
		log.Warn().Msg("SESSION_SECRET not set, sessions end with the process")
	}

	tokens, err := session.NewTokens(cfg.SessionSecret, cfg.SessionTTL)
	if err != nil {
		log.Error().Err(err).Msg("Unable to create session tokens")
		return 1
	}

	client := checkout.NewClient(
		checkout.WithBaseURL(cfg.BackendURL),
		checkout.WithTimeout(cfg.CheckoutTimeout),
	)

	manager := session.NewManager(sessionStorage(redisFactory, log), client, cfg.SessionTTL)

	appRouter, err := web.SetupRouter(log, cfg, manager, tokens)
	if err != nil {
		log.Error().Err(err).Msg("Unable to set up router")
		return 1
	}

	var host string
	if os.Getenv("TEST") == "true" {
		host = "localhost"
	}

	httpServer := &http.Server{
		Addr:    fmt.Sprintf("%s:%s", host, cfg.Port),
		Handler: appRouter,
	}

	log.Info().Str("backend", client.URL()).Msg("Checkout backend configured")

	return serverApp(httpServer, log)
}

func main() {
	os.Exit(run())
}
