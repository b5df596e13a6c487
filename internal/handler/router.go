package handler

import (
	"log/slog"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/ticketdesk/ticketdesk/internal/metrics"
	"github.com/ticketdesk/ticketdesk/internal/middleware"
	"github.com/ticketdesk/ticketdesk/internal/service"
)

// Rate-limit scopes for the unauthenticated endpoints.
const (
	ScopeSignup = "signup"
	ScopeLogin  = "login"
)

// RouterConfig carries everything the HTTP surface depends on.
type RouterConfig struct {
	Logger *slog.Logger

	Auth      *service.AuthService
	Tickets   *service.TicketService
	Comments  *service.CommentService
	Solutions *service.SolutionService
	Admin     *service.AdminService

	Verifier middleware.TokenVerifier
	DB       HealthChecker
	Cache    HealthChecker
	Metrics  metrics.Snapshotter

	RateLimit   middleware.RateLimitConfig
	CORS        middleware.CORSConfig
	Security    middleware.SecurityConfig
	MaxBodySize int64
}

// NewRouter builds the chi router with all routes and middleware.
func NewRouter(cfg RouterConfig) *chi.Mux {
	logger := cfg.Logger

	h := New()
	healthHandler := NewHealthHandler(cfg.DB, cfg.Cache)
	metricsHandler := NewMetricsHandler(cfg.Metrics)
	authHandler := NewAuthHandler(cfg.Auth, logger)
	ticketHandler := NewTicketHandler(cfg.Tickets, logger)
	commentHandler := NewCommentHandler(cfg.Comments, logger)
	solutionHandler := NewSolutionHandler(cfg.Solutions, logger)
	adminHandler := NewAdminHandler(cfg.Admin, logger)

	requireAuth := middleware.Auth(middleware.AuthConfig{
		Logger:   logger,
		Verifier: cfg.Verifier,
	})

	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger(logger))
	r.Use(middleware.Recoverer(logger))
	r.Use(middleware.Security(cfg.Security))
	r.Use(middleware.CORS(cfg.CORS))
	if cfg.MaxBodySize > 0 {
		r.Use(middleware.MaxBodySize(cfg.MaxBodySize))
	}

	// Operational endpoints
	r.Get("/", h.Index)
	r.Get("/healthz", healthHandler.Healthz)
	r.Get("/readyz", healthHandler.Readyz)
	r.Get("/metrics", metricsHandler.Metrics)

	// Accounts
	r.With(middleware.RateLimitIP(cfg.RateLimit, ScopeSignup)).Post("/signup", authHandler.Signup)
	r.With(middleware.RateLimitIP(cfg.RateLimit, ScopeLogin)).Post("/login", authHandler.Login)

	r.Route("/admin", func(r chi.Router) {
		r.Use(requireAuth)
		r.Use(middleware.RequireAdmin(logger))

		r.Get("/users", adminHandler.ListUsers)
		r.Get("/tickets", adminHandler.ListTickets)
	})

	// Reads are public; writes and the solution proxy need a token.
	r.Route("/tickets", func(r chi.Router) {
		r.Get("/", ticketHandler.List)
		r.With(requireAuth).Post("/", ticketHandler.Create)

		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", ticketHandler.Get)
			r.With(requireAuth).Put("/", ticketHandler.Update)
			r.With(requireAuth).Delete("/", ticketHandler.Delete)

			r.With(requireAuth).Get("/solution", solutionHandler.Get)

			r.Get("/comments", commentHandler.List)
			r.With(requireAuth).Post("/comments", commentHandler.Create)
		})
	})

	r.NotFound(h.NotFound)
	r.MethodNotAllowed(h.MethodNotAllowed)

	return r
}
