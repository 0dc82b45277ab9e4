package api

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"

	"github.com/soaringjerry/Resilience/internal/middleware"
	"github.com/soaringjerry/Resilience/internal/services"
	"github.com/soaringjerry/Resilience/internal/utils"
)

type Deps struct {
	Engine         *services.Engine
	Assessments    *services.AssessmentService
	History        *services.HistoryService
	Auth           *services.AuthService
	Tokens         *middleware.Auth
	Health         HealthChecker
	Logger         *slog.Logger
	AllowedOrigins []string
	StaticDir      string
	Commit         string
	BuildTime      string
}

type Router struct {
	Deps
	logger   *slog.Logger
	validate *validator.Validate
}

func NewRouter(d Deps) *Router {
	logger := d.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Router{Deps: d, logger: logger, validate: validator.New()}
}

// Handler assembles the middleware chain and routes.
func (rt *Router) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)
	r.Use(middleware.CORS(rt.AllowedOrigins))
	r.Use(middleware.SecureHeaders)
	r.Use(middleware.LocaleMiddleware)
	r.Use(rt.Tokens.WithAuth)
	r.Use(middleware.RequestLogger(rt.logger))

	r.Get("/health", rt.handleHealth)
	r.Get("/version", rt.handleVersion)

	r.Route("/api", func(r chi.Router) {
		r.Use(middleware.NoStore)

		r.Post("/auth/register", rt.handleRegister)
		r.Post("/auth/login", rt.handleLogin)
		r.Get("/catalog", rt.handleCatalog)
		r.Post("/score", rt.handleScore)

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireAuth)

			r.Post("/sessions", rt.handleStartSession)
			r.Get("/sessions/{id}", rt.handleGetSession)
			r.Put("/sessions/{id}/answers", rt.handleAnswer)
			r.Delete("/sessions/{id}", rt.handleDiscardSession)
			r.Post("/sessions/{id}/submit", rt.handleSubmit)

			r.Get("/assessments", rt.handleDashboard)
			r.Get("/assessments/trend", rt.handleTrend)
			r.Get("/assessments/export", rt.handleExport)
			r.Delete("/assessments/{id}", rt.handleDeleteAssessment)
		})
	})

	if rt.StaticDir != "" {
		r.Handle("/*", http.FileServer(http.Dir(rt.StaticDir)))
	}
	return r
}

func (rt *Router) handleHealth(w http.ResponseWriter, r *http.Request) {
	locale := middleware.LocaleFromContext(r.Context())
	status := http.StatusOK
	body := map[string]any{
		"ok":         true,
		"name":       "Resilience API",
		"locale":     locale,
		"msg":        utils.T(locale, "health.ok"),
		"commit":     rt.Commit,
		"build_time": rt.BuildTime,
	}
	if rt.Health != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := rt.Health.Ping(ctx); err != nil {
			rt.logger.WarnContext(r.Context(), "store health check failed", "error", err)
			status = http.StatusServiceUnavailable
			body["ok"] = false
			body["store"] = "unavailable"
		}
	}
	writeJSON(w, status, body)
}

func (rt *Router) handleVersion(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"commit":     rt.Commit,
		"build_time": rt.BuildTime,
	})
}
