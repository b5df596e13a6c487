// Package main is the entrypoint for the TicketDesk API server.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/url"
	"os"
	"os/signal"
	"regexp"
	"strings"
	"syscall"

	"github.com/ticketdesk/ticketdesk/internal/auth"
	"github.com/ticketdesk/ticketdesk/internal/cache"
	"github.com/ticketdesk/ticketdesk/internal/config"
	"github.com/ticketdesk/ticketdesk/internal/handler"
	"github.com/ticketdesk/ticketdesk/internal/llm"
	"github.com/ticketdesk/ticketdesk/internal/metrics"
	"github.com/ticketdesk/ticketdesk/internal/middleware"
	"github.com/ticketdesk/ticketdesk/internal/repository"
	"github.com/ticketdesk/ticketdesk/internal/server"
	"github.com/ticketdesk/ticketdesk/internal/service"
)

func main() {
	if err := run(); err != nil {
		slog.Error("fatal", "error", err)
		os.Exit(1)
	}
}

func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	logger := initLogger(cfg)

	// Document store
	repo, err := repository.New(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Error(
			"failed to connect to database",
			slog.String("error", sanitizeError(err, cfg.DatabaseURL)),
			slog.String("database_url", redactURL(cfg.DatabaseURL)),
		)
		return errors.New("database unavailable")
	}
	logger.Info("connected to database")

	applied, err := repo.Migrate(ctx)
	if err != nil {
		repo.Close()
		return err
	}
	logger.Info("schema migrated", "migrations", applied)

	// Rate-limit backend
	cacheClient, err := cache.New(ctx, cfg.RedisURL)
	if err != nil {
		logger.Error(
			"failed to connect to Redis",
			slog.String("error", sanitizeError(err, cfg.RedisURL)),
			slog.String("redis_url", redactURL(cfg.RedisURL)),
		)
		repo.Close()
		return errors.New("redis unavailable")
	}
	logger.Info("connected to Redis")

	// Services
	metricsRecorder := metrics.NewInMemory()
	issuer := auth.NewTokenIssuer(cfg.JWTSecret, cfg.TokenTTL)
	generator := llm.New(cfg.OllamaURL, cfg.OllamaModel, llm.NewHTTPClient(), logger)

	authService := service.NewAuthService(repo, issuer, logger, metricsRecorder)
	ticketService := service.NewTicketService(repo, logger, metricsRecorder,
		service.WithOwnershipCheck(cfg.RestrictTicketMutations),
	)
	commentService := service.NewCommentService(repo, logger, metricsRecorder)
	solutionService := service.NewSolutionService(ticketService, generator, logger, metricsRecorder)
	adminService := service.NewAdminService(repo, repo)

	// Boot-time housekeeping never blocks startup.
	if created, err := authService.SeedAdmin(ctx, cfg.AdminUsername, cfg.AdminPassword); err != nil {
		logger.Error("admin seed failed", "error", err)
	} else if created {
		logger.Warn("seeded default admin account; change its password", "username", cfg.AdminUsername)
	}

	if cfg.SweepOrphanComments {
		if _, err := commentService.SweepOrphans(ctx); err != nil {
			logger.Error("orphan comment sweep failed", "error", err)
		}
	}

	corsCfg := middleware.DefaultCORSConfig()
	corsCfg.AllowedOrigins = cfg.AllowedOrigins()

	router := handler.NewRouter(handler.RouterConfig{
		Logger:    logger,
		Auth:      authService,
		Tickets:   ticketService,
		Comments:  commentService,
		Solutions: solutionService,
		Admin:     adminService,
		Verifier:  issuer,
		DB:        repo,
		Cache:     cacheClient,
		Metrics:   metricsRecorder,
		RateLimit: middleware.RateLimitConfig{
			Logger:  logger,
			Limiter: cacheClient,
			Metrics: metricsRecorder,
			Enabled: cfg.RateLimitAuthEnabled,
			RPS:     cfg.RateLimitAuthRPS,
			Burst:   cfg.RateLimitAuthBurst,
		},
		CORS:        corsCfg,
		Security:    middleware.SecurityConfig{IsDevelopment: cfg.IsDevelopment()},
		MaxBodySize: cfg.MaxRequestBodySize,
	})

	srv := server.New(router, server.Config{
		Port:            cfg.Port,
		ReadTimeout:     cfg.ReadTimeout,
		WriteTimeout:    cfg.WriteTimeout,
		ShutdownTimeout: cfg.ShutdownTimeout,
	}, logger)

	// LIFO: Redis closes before Postgres.
	srv.OnShutdown("postgres", func(context.Context) error {
		repo.Close()
		return nil
	})
	srv.OnShutdown("redis", func(context.Context) error {
		return cacheClient.Close()
	})

	logger.Info("starting server",
		"port", cfg.Port,
		"env", cfg.AppEnv,
		"ollama_url", redactURL(cfg.OllamaURL),
		"ollama_model", cfg.OllamaModel,
		"restrict_ticket_mutations", cfg.RestrictTicketMutations,
	)

	return srv.Run(ctx)
}

// initLogger initializes the slog logger based on configuration.
func initLogger(cfg *config.Config) *slog.Logger {
	opts := &slog.HandlerOptions{
		Level: parseLogLevel(cfg.LogLevel),
	}

	var h slog.Handler
	if cfg.LogFormat == "json" {
		h = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		h = slog.NewTextHandler(os.Stdout, opts)
	}

	logger := slog.New(h).With("service", "ticketdesk")
	slog.SetDefault(logger)

	return logger
}

// parseLogLevel converts string log level to slog.Level.
func parseLogLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

var passwordPattern = regexp.MustCompile(`(?i)password=[^\s]+`)

func redactURL(raw string) string {
	if raw == "" {
		return ""
	}

	parsed, err := url.Parse(raw)
	if err != nil {
		return "[redacted]"
	}

	if parsed.User != nil {
		username := parsed.User.Username()
		if username == "" {
			parsed.User = url.User("redacted")
		} else {
			parsed.User = url.User(username)
		}
	}

	return parsed.String()
}

func sanitizeError(err error, secrets ...string) string {
	if err == nil {
		return ""
	}

	msg := err.Error()
	for _, secret := range secrets {
		if secret == "" {
			continue
		}
		redacted := redactURL(secret)
		if redacted == "" {
			redacted = "[redacted]"
		}
		msg = strings.ReplaceAll(msg, secret, redacted)
	}

	return passwordPattern.ReplaceAllString(msg, "password=redacted")
}
