package rest

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/heartmarshall/ideaflow-backend/internal/config"
	"github.com/heartmarshall/ideaflow-backend/internal/transport/middleware"
)

// RouterDeps holds what NewRouter wires into the HTTP surface.
type RouterDeps struct {
	Ideas       *IdeaHandler
	Health      *HealthHandler
	Gatherer    prometheus.Gatherer
	HTTPMetrics *middleware.HTTPMetrics
	RateLimiter *middleware.RateLimiter
	CORS        config.CORSConfig
	RateLimit   config.RateLimitConfig
	Logger      *slog.Logger
}

// NewRouter builds the HTTP handler. Probes and /metrics sit outside the
// identity and rate limit middleware.
func NewRouter(d RouterDeps) http.Handler {
	r := chi.NewRouter()

	r.Use(
		middleware.RequestID(),
		middleware.Logger(d.Logger),
		middleware.Recovery(d.Logger),
		middleware.CORS(d.CORS),
	)
	if d.HTTPMetrics != nil {
		r.Use(d.HTTPMetrics.Middleware())
	}

	r.Get("/live", d.Health.Live)
	r.Get("/ready", d.Health.Ready)
	r.Get("/health", d.Health.Health)
	r.Handle("/metrics", promhttp.HandlerFor(d.Gatherer, promhttp.HandlerOpts{}))

	r.Route("/ideas", func(r chi.Router) {
		r.Use(middleware.Identity())

		writes := middleware.Chain()
		if d.RateLimiter != nil && d.RateLimit.WritesPerMinute > 0 {
			writes = middleware.Chain(d.RateLimiter.Limit(d.RateLimit.WritesPerMinute))
		}

		r.With(writes).Post("/", d.Ideas.Create)
		r.Get("/{id}/enrichment", d.Ideas.GetEnrichment)
		r.With(writes).Post("/{id}/enrichment", d.Ideas.Retrigger)
	})

	return r
}
