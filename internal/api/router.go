package api

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"wilhelm/internal/metrics"
	"wilhelm/internal/vocab"
)

// NewRouter mounts every route. health may be nil, in which case readiness
// always reports ready and /data/status is not served.
func NewRouter(svc *vocab.Service, health HealthSource) chi.Router {
	h := NewHandler(svc, health)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(metrics.Middleware)

	r.Get("/data/healthcheck", h.Healthcheck)
	r.Get("/health/live", h.Live)
	r.Get("/health/ready", h.Ready)
	if health != nil {
		r.Get("/data/status", h.Status)
	}
	r.Handle("/metrics", metrics.Handler())

	r.Route("/neo4j", func(r chi.Router) {
		r.Route("/languages/{language}", func(r chi.Router) {
			r.Use(LanguageCheck)
			r.Get("/", h.VocabularyPage)
			r.Get("/count", h.CountByLanguage)
		})
		r.Get("/search/{keyword}", h.Search)
		r.Get("/expand/{word}", h.Expand)
		r.Get("/expandApoc/{word}", h.ExpandApoc)
		r.Get("/expandDfs/{word}", h.ExpandRecursive)
		r.Get("/history", h.History)
	})

	return r
}
