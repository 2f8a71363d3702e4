/* router.go
 * Contains the routes of the web server
 */

package web

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// NewServer creates a server from its configuration
func NewServer(cfg Config) *Server {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{
		api:           cfg.API,
		gatherer:      cfg.Gatherer,
		logger:        logger.With("component", "web"),
		webhookSecret: cfg.WebhookSecret,
	}
}

// Routes returns the handler serving every endpoint
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.HealthHandler)
	if s.gatherer != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))
	}
	r.Get("/leagues/{league}/status", s.LeagueStatusHandler)
	if s.webhookSecret != "" {
		r.Post("/webhooks/heltour", s.HeltourWebhookHandler)
	}
	return r
}
