package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/MikeSquared-Agency/Circularity/internal/hermes"
	"github.com/MikeSquared-Agency/Circularity/internal/metrics"
	"github.com/MikeSquared-Agency/Circularity/internal/scoring"
	"github.com/MikeSquared-Agency/Circularity/internal/session"
)

func NewRouter(s *scoring.Scorer, sm *session.Manager, h hermes.Client, m *metrics.Metrics, requestsPerMinute int, logger *slog.Logger) http.Handler {
	r := chi.NewRouter()

	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.RequestID)
	r.Use(RequestLogger(logger))
	r.Use(MetricsMiddleware(m))
	r.Use(RateLimitMiddleware(requestsPerMinute))

	pub := &publisher{hermes: h, metrics: m, logger: logger}
	cat := NewCatalogHandler(s.Catalog(), s.Weights())
	reports := NewReportsHandler(s, pub)
	sessions := NewSessionsHandler(sm, pub)

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/catalog", cat.Get)
		r.Get("/catalog/factors/{factor}/actions/{rating}", cat.Lookup)

		r.Post("/reports", reports.Create)

		r.Post("/sessions", sessions.Create)
		r.Get("/sessions/{id}", sessions.Get)
		r.Delete("/sessions/{id}", sessions.Delete)
		r.Put("/sessions/{id}/responses", sessions.Submit)
		r.Delete("/sessions/{id}/responses/{factor}", sessions.Clear)
		r.Post("/sessions/{id}/report", sessions.Report)
	})

	return r
}

func NewMetricsRouter(g prometheus.Gatherer) http.Handler {
	r := chi.NewRouter()
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Handle("/metrics", promhttp.HandlerFor(g, promhttp.HandlerOpts{}))
	return r
}
