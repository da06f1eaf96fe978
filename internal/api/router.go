package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/Kushagra128/LangBridge/internal/api/middleware"
	"github.com/Kushagra128/LangBridge/internal/auth"
	"github.com/Kushagra128/LangBridge/internal/config"
	"github.com/Kushagra128/LangBridge/internal/handlers"
	"github.com/Kushagra128/LangBridge/internal/messaging"
	"github.com/Kushagra128/LangBridge/internal/realtime"
	"github.com/Kushagra128/LangBridge/internal/store"
)

// maxBodyBytes leaves room for inline base64 images and voice clips.
const maxBodyBytes = 10 << 20

// Deps are the long-lived components the router serves.
type Deps struct {
	Store    store.DataStore
	Redis    *store.RedisStore // optional
	Messages *messaging.Service
	Hub      *realtime.Hub
	Verifier *auth.Verifier
}

// NewRouter creates and configures the HTTP router.
func NewRouter(logger zerolog.Logger, cfg *config.Config, deps Deps) *chi.Mux {
	r := chi.NewRouter()

	// Metrics middleware (first to capture all requests)
	r.Use(middleware.Metrics)

	// Security middleware (order matters!)
	r.Use(middleware.SecurityHeaders)
	r.Use(middleware.MaxBodySize(maxBodyBytes))
	r.Use(middleware.ValidateRequest)

	// Standard middleware
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.Logger(logger))
	r.Use(chimw.Recoverer)

	// The web client sends its session cookie, so origins must be explicit
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"X-RateLimit-Limit", "X-RateLimit-Remaining", "X-RateLimit-Reset", "Retry-After"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	h := handlers.NewHandler(handlers.Options{
		DB:             deps.Store,
		Redis:          deps.Redis,
		Messages:       deps.Messages,
		Hub:            deps.Hub,
		AllowedOrigins: cfg.CORSOrigins,
		Logger:         logger,
	})
	authMW := middleware.NewAuthMiddleware(deps.Verifier, logger)
	limiter := middleware.NewRateLimiter(deps.Redis.Client(), logger, middleware.RateLimiterConfig{
		Whitelist:        cfg.RateLimitWhitelist,
		AutoBlockEnabled: cfg.AutoBlockEnabled,
	})

	// Metrics endpoint (for Prometheus scraping)
	r.Handle("/metrics", promhttp.Handler())

	// Public routes (no auth required)
	r.Get("/api", h.Root)
	r.Get("/health", h.Health)
	r.Get("/stats", h.Stats)

	// Authenticated routes; limits are keyed by user, so the limiter runs
	// after identity is known
	r.Group(func(r chi.Router) {
		r.Use(authMW.RequireAuth)
		r.Use(limiter.Middleware)

		r.Get("/ws", h.Connect)

		r.Get("/api/users/{id}", h.Who)
		r.Get("/api/messages/users", h.ListUsers)
		r.Get("/api/messages/{id}", h.GetMessages)
		r.Post("/api/messages/send/{id}", h.SendMessage)
		r.Delete("/api/messages/{id}", h.DeleteMessage)
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		h.Error(w, http.StatusNotFound, "not found")
	})

	return r
}
