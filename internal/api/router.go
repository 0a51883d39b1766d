package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/resumeforge/resumeforge/internal/database"
	mw "github.com/resumeforge/resumeforge/internal/middleware"
	inats "github.com/resumeforge/resumeforge/internal/nats"
)

// HandlerSet holds handler functions injected from main.go to avoid import cycles.
type HandlerSet struct {
	// Auth handlers
	Register http.HandlerFunc
	Login    http.HandlerFunc
	Refresh  http.HandlerFunc
	Logout   http.HandlerFunc

	// User handlers
	Me         http.HandlerFunc
	UpdatePlan http.HandlerFunc

	// Resume handlers
	CreateResume        http.HandlerFunc
	ListResumes         http.HandlerFunc
	GetResume           http.HandlerFunc
	UpdateResume        http.HandlerFunc
	DeleteResume        http.HandlerFunc
	OwnershipMiddleware func(http.Handler) http.Handler

	// AI handlers
	GenerateAI http.HandlerFunc

	// Usage handlers
	GetUsage         http.HandlerFunc
	GetUsageStats    http.HandlerFunc
	GetUsageWarnings http.HandlerFunc

	// Audit handlers
	ListAuditLogs       http.HandlerFunc
	ListResumeAuditLogs http.HandlerFunc

	// Auth middleware
	AuthMiddleware func(http.Handler) http.Handler
}

// RouterConfig holds configuration for the router.
type RouterConfig struct {
	CORSAllowedOrigins []string
	AuthRateLimiter    func(http.Handler) http.Handler
}

func NewRouter(pool *pgxpool.Pool, natsClient *inats.Client, cfg RouterConfig, h HandlerSet) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(mw.RequestID)
	r.Use(mw.SecurityHeaders)
	r.Use(mw.Logging)
	r.Use(mw.Recovery)
	r.Use(mw.Metrics)
	r.Use(cors.Handler(mw.CORS(cfg.CORSAllowedOrigins)))

	// Liveness probe — always 200, no dependency checks
	r.Get("/health/live", func(w http.ResponseWriter, r *http.Request) {
		JSON(w, http.StatusOK, map[string]string{"status": "alive"})
	})

	// Readiness probe — checks DB and NATS
	readinessHandler := func(w http.ResponseWriter, r *http.Request) {
		health := map[string]string{
			"status":   "healthy",
			"database": "healthy",
			"nats":     "healthy",
		}

		status := http.StatusOK

		if err := database.HealthCheck(r.Context(), pool); err != nil {
			health["database"] = "unhealthy"
			health["status"] = "degraded"
			status = http.StatusServiceUnavailable
		}

		if natsClient != nil && !natsClient.Healthy() {
			health["nats"] = "unhealthy"
			health["status"] = "degraded"
			status = http.StatusServiceUnavailable
		} else if natsClient == nil {
			health["nats"] = "not configured"
		}

		JSON(w, status, health)
	}

	r.Get("/health/ready", readinessHandler)
	r.Get("/health", readinessHandler)

	// Prometheus metrics
	r.Handle("/metrics", promhttp.Handler())

	// API v1
	r.Route("/api/v1", func(r chi.Router) {
		// Auth routes (public) — optionally rate-limited
		r.Route("/auth", func(r chi.Router) {
			if cfg.AuthRateLimiter != nil {
				r.Use(cfg.AuthRateLimiter)
			}
			r.Post("/register", h.Register)
			r.Post("/login", h.Login)
			r.Post("/refresh", h.Refresh)

			// Protected auth routes
			r.Group(func(r chi.Router) {
				r.Use(h.AuthMiddleware)
				r.Post("/logout", h.Logout)
			})
		})

		// Protected routes
		r.Group(func(r chi.Router) {
			r.Use(h.AuthMiddleware)

			r.Route("/users/me", func(r chi.Router) {
				r.Get("/", h.Me)
				r.Put("/plan", h.UpdatePlan)
			})

			r.Route("/resumes", func(r chi.Router) {
				r.Post("/", h.CreateResume)
				r.Get("/", h.ListResumes)

				r.Route("/{resumeID}", func(r chi.Router) {
					r.Use(h.OwnershipMiddleware)
					r.Get("/", h.GetResume)
					r.Put("/", h.UpdateResume)
					r.Delete("/", h.DeleteResume)

					r.Post("/ai/{feature}", h.GenerateAI)

					r.Get("/audit", h.ListResumeAuditLogs)
				})
			})

			r.Route("/usage", func(r chi.Router) {
				r.Get("/", h.GetUsage)
				r.Get("/stats", h.GetUsageStats)
				r.Get("/warnings", h.GetUsageWarnings)
			})

			r.Get("/audit", h.ListAuditLogs)
		})
	})

	return r
}
