/**
 * @description
 * This is the main entry point for the subscription tracker API. It wires
 * together configuration, the database connection pool, the repository, the
 * application service with its optional collaborators (event producer, Redis
 * rate limiter, identity provider client), and the HTTP router, then starts
 * the server with graceful shutdown.
 */
package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"

	"github.com/m-ch1ang/subscription-tracker/internal/api"
	"github.com/m-ch1ang/subscription-tracker/internal/app"
	"github.com/m-ch1ang/subscription-tracker/internal/config"
	"github.com/m-ch1ang/subscription-tracker/internal/store"
	"github.com/m-ch1ang/subscription-tracker/pkg/rabbitmq"
	"github.com/m-ch1ang/subscription-tracker/pkg/supabase"
)

func main() {
	// Initialize structured logger
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	// Load .env file for local development. In production, env vars are set directly.
	if err := godotenv.Load(); err != nil {
		logger.Info("no .env file found, using environment variables")
	}

	cfg, err := config.LoadConfig(".")
	if err != nil {
		logger.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	// Establish the PostgreSQL connection pool.
	dbConfig, err := pgxpool.ParseConfig(cfg.DatabaseURL)
	if err != nil {
		logger.Error("unable to parse database URL", "error", err)
		os.Exit(1)
	}

	dbConfig.MaxConns = 10
	dbConfig.MinConns = 2
	dbConfig.MaxConnLifetime = 30 * time.Minute
	dbConfig.MaxConnIdleTime = 5 * time.Minute

	// Use the simple protocol so the pool works behind PgBouncer transaction
	// pooling without prepared-statement cache errors.
	dbConfig.ConnConfig.DefaultQueryExecMode = pgx.QueryExecModeSimpleProtocol

	dbpool, err := pgxpool.NewWithConfig(ctx, dbConfig)
	if err != nil {
		logger.Error("unable to connect to database", "error", err)
		os.Exit(1)
	}
	defer dbpool.Close()
	logger.Info("database connection established")

	repository := store.NewRepository(dbpool)
	if err := repository.EnsureSchema(ctx); err != nil {
		logger.Error("failed to initialize database schema", "error", err)
		os.Exit(1)
	}

	// Optional collaborators: eventing and rate limiting degrade to disabled
	// when their backends are not configured.
	var producer app.EventPublisher
	if cfg.RabbitMQURL != "" {
		eventProducer, err := rabbitmq.NewEventProducer(cfg.RabbitMQURL)
		if err != nil {
			logger.Warn("rabbitmq unavailable, lifecycle events disabled", "error", err)
		} else {
			defer eventProducer.Close()
			producer = eventProducer
			logger.Info("rabbitmq event producer connected")
		}
	}

	var limiter app.RateLimiter
	if cfg.RedisURL != "" {
		redisOpts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			logger.Warn("invalid redis URL, rate limiting disabled", "error", err)
		} else {
			redisClient := redis.NewClient(redisOpts)
			defer redisClient.Close()
			limiter = app.NewRedisRateLimiter(redisClient, cfg.RedisRateLimitPrefix)
			logger.Info("redis rate limiter configured")
		}
	}

	var identity app.IdentityClient
	if cfg.SupabaseURL != "" && cfg.SupabaseServiceRoleKey != "" {
		identity = supabase.NewClient(cfg.SupabaseURL, cfg.SupabaseServiceRoleKey)
	} else {
		logger.Warn("supabase admin credentials missing, password changes disabled")
	}

	service := app.NewService(repository, logger, app.ServiceOptions{
		Producer:              producer,
		Identity:              identity,
		Limiter:               limiter,
		EventExchange:         cfg.EventExchange,
		PasswordChangesPerMin: cfg.PasswordChangesPerMin,
	})
	handler := api.NewHandler(service)
	router := api.NewRouter(handler, api.AuthConfig{
		JWTSecret:        cfg.SupabaseJWTSecret,
		JWKSURL:          cfg.SupabaseJWKSURL,
		ExpectedAudience: cfg.SupabaseJWTAudience,
		ExpectedIssuer:   cfg.SupabaseJWTIssuer,
	})

	server := &http.Server{
		Addr:    fmt.Sprintf(":%s", cfg.ServerPort),
		Handler: router,
	}

	go func() {
		logger.Info("starting server", "port", cfg.ServerPort)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	<-sigCh
	logger.Info("shutdown signal received, gracefully shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown failed", "error", err)
	}

	logger.Info("server stopped")
}
