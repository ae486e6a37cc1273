package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/cloo-solutions/pmstd/internal/api/handlers"
	"github.com/cloo-solutions/pmstd/internal/api/middleware"
	"github.com/cloo-solutions/pmstd/internal/metrics"
)

const maxBodyBytes int64 = 1 << 20

type RouterConfig struct {
	Logger      *zap.Logger
	AdminAPIKey string

	HealthHandler     *handlers.HealthHandler
	StandardHandler   *handlers.StandardHandler
	SearchHandler     *handlers.SearchHandler
	ComparisonHandler *handlers.ComparisonHandler
	ProcessHandler    *handlers.ProcessHandler
	AdminHandler      *handlers.AdminHandler
}

func NewRouter(cfg RouterConfig) http.Handler {
	log := cfg.Logger
	if log == nil {
		log = zap.NewNop()
	}

	r := chi.NewRouter()

	r.Use(middleware.Recover)
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger(log))
	r.Use(middleware.Sentry)
	r.Use(middleware.AccessLog(log))
	r.Use(metrics.Middleware())
	r.Use(middleware.MaxBodyBytes(maxBodyBytes))

	health := cfg.HealthHandler
	if health == nil {
		health = handlers.NewHealthHandler(nil)
	}
	r.Get("/health", health.Live)
	r.Get("/ready", health.Ready)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Route("/standards", func(r chi.Router) {
			r.Get("/", cfg.StandardHandler.List)
			r.Get("/{id}", cfg.StandardHandler.Get)
			r.Get("/{id}/sections", cfg.StandardHandler.ListSections)
			r.Get("/{id}/search", cfg.SearchHandler.SearchStandard)
		})
		r.Get("/sections/{id}", cfg.StandardHandler.GetSection)
		r.Get("/search", cfg.SearchHandler.SearchAll)

		r.Get("/topics", cfg.ComparisonHandler.Topics)
		r.Post("/compare", cfg.ComparisonHandler.Compare)
		r.Post("/insights", cfg.ComparisonHandler.Insights)

		r.Post("/process", cfg.ProcessHandler.Generate)
	})

	r.Group(func(r chi.Router) {
		r.Use(middleware.AdminKeyAuth(cfg.AdminAPIKey))

		r.Post("/admin/seed", cfg.AdminHandler.Seed)
	})

	return r
}
