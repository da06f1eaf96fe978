package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/Kushagra128/LangBridge/internal/api"
	"github.com/Kushagra128/LangBridge/internal/auth"
	"github.com/Kushagra128/LangBridge/internal/config"
	"github.com/Kushagra128/LangBridge/internal/events"
	"github.com/Kushagra128/LangBridge/internal/messaging"
	"github.com/Kushagra128/LangBridge/internal/realtime"
	"github.com/Kushagra128/LangBridge/internal/store"
	"github.com/Kushagra128/LangBridge/internal/translate"
)

func main() {
	// Load configuration
	cfg := config.Load()

	// Initialize logger
	var logger zerolog.Logger
	if cfg.IsDevelopment() {
		logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}).
			With().
			Timestamp().
			Logger()
	} else {
		logger = zerolog.New(os.Stdout).
			With().
			Timestamp().
			Logger()
	}

	ctx, stop := context.WithCancel(context.Background())
	defer stop()

	db := openStore(ctx, cfg, logger)
	defer db.Close()

	// Initialize Redis store
	var redisStore *store.RedisStore
	if cfg.RedisURL != "" {
		var err error
		redisStore, err = store.NewRedisStore(ctx, cfg.RedisURL)
		if err != nil {
			logger.Fatal().Err(err).Msg("redis connection failed")
		}
		defer redisStore.Close()
		logger.Info().Msg("connected to Redis")
	}

	// Domain events
	var publisher events.Publisher = events.Nop{}
	if cfg.AMQPURL != "" {
		rp, err := events.NewRabbitPublisher(ctx, cfg.AMQPURL, cfg.AMQPExchange, logger)
		if err != nil {
			logger.Fatal().Err(err).Msg("rabbitmq connection failed")
		}
		defer rp.Close()
		publisher = rp
		logger.Info().Str("exchange", cfg.AMQPExchange).Msg("connected to RabbitMQ")
	}

	oracle := newOracle(ctx, cfg, redisStore, logger)
	gate := translate.NewGate(oracle, cfg.TranslateTimeout, logger)

	hub := realtime.NewHub(realtime.NewRegistry(), logger)
	hubDone := make(chan struct{})
	go func() {
		hub.Run(ctx)
		close(hubDone)
	}()

	svc := messaging.NewService(db, gate, hub, publisher, logger)

	// Create router
	router := api.NewRouter(logger, cfg, api.Deps{
		Store:    db,
		Redis:    redisStore,
		Messages: svc,
		Hub:      hub,
		Verifier: auth.NewVerifier(cfg.JWTSecret, cfg.TokenTTL),
	})

	// Create server
	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		logger.Info().
			Str("port", cfg.Port).
			Str("env", cfg.Env).
			Msg("starting LangBridge server")

		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("server failed to start")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("shutting down server...")

	// Graceful shutdown with 30 second timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("server forced to shutdown")
	}

	// Shutdown does not track hijacked connections; stopping the hub closes them
	stop()
	<-hubDone

	logger.Info().Msg("server stopped")
}

// openStore picks PostgreSQL when DATABASE_URL is set, then SQLite, then an
// in-memory store for local development.
func openStore(ctx context.Context, cfg *config.Config, logger zerolog.Logger) store.DataStore {
	switch {
	case cfg.DatabaseURL != "":
		logger.Info().Msg("running database migrations...")
		if err := store.RunMigrations(cfg.DatabaseURL); err != nil {
			logger.Fatal().Err(err).Msg("migration failed")
		}
		logger.Info().Msg("migrations completed")

		pg, err := store.NewPostgresStore(ctx, cfg.DatabaseURL)
		if err != nil {
			logger.Fatal().Err(err).Msg("postgres connection failed")
		}
		logger.Info().Msg("connected to PostgreSQL")
		return pg

	case cfg.SQLitePath != "":
		lite, err := store.NewSQLiteStore(ctx, cfg.SQLitePath)
		if err != nil {
			logger.Fatal().Err(err).Str("path", cfg.SQLitePath).Msg("sqlite open failed")
		}
		logger.Info().Str("path", cfg.SQLitePath).Msg("using SQLite store")
		return lite

	default:
		logger.Warn().Msg("no database configured, messages are kept in memory")
		return store.NewMemoryStore()
	}
}

func newOracle(ctx context.Context, cfg *config.Config, redisStore *store.RedisStore, logger zerolog.Logger) translate.Oracle {
	if cfg.GeminiAPIKey == "" {
		logger.Warn().Msg("GEMINI_API_KEY not set, translation disabled")
		return translate.NopOracle{}
	}

	gemini, err := translate.NewGeminiOracle(ctx, cfg.GeminiAPIKey, cfg.GeminiModel, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("gemini client init failed")
	}
	logger.Info().Str("model", cfg.GeminiModel).Msg("translation enabled")

	if redisStore == nil {
		return gemini
	}
	return translate.NewCachedOracle(gemini, redisStore, logger)
}
