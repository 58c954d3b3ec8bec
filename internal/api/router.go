package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/gophishfree/risk-engine/pkg/logger"
)

// NewRouter wires the scan endpoints, health check and metrics surface
func NewRouter(service ScanService, registry *prometheus.Registry, log *logger.Logger) http.Handler {
	handlers := NewHandlers(service, NewMetrics(registry), log)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger(log))
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/scan", handlers.Scan)
		r.Post("/score", handlers.Score)
		r.Get("/scans/recent", handlers.RecentScans)
	})

	r.Get("/healthz", handlers.Healthz)
	r.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))

	return r
}
