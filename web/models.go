/* models.go
 * Contains the configuration and the request bodies of the web server
 */

package web

import (
	"log/slog"

	"league-watcher/api/api"

	"github.com/prometheus/client_golang/prometheus"
)

// Config holds the configuration for the web server
type Config struct {
	Addr     string
	API      *api.API
	Gatherer prometheus.Gatherer // served on /metrics, nil disables the endpoint
	Logger   *slog.Logger

	// WebhookSecret must be sent in the X-Webhook-Secret header of heltour webhooks. Empty disables the webhook
	WebhookSecret string
}

// Server is the HTTP server that reports league status and receives webhook requests
type Server struct {
	api      *api.API
	gatherer      prometheus.Gatherer
	logger        *slog.Logger
	webhookSecret string
}

// HeltourEvent is the body of a heltour webhook, sent when the pairings of a league change
type HeltourEvent struct {
	League string `json:"league"`
}
