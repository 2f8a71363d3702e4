/* handlers.go
 * Contains the HTTP handlers of the web server
 */

package web

import (
	"crypto/subtle"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"league-watcher/api/api"

	"github.com/go-chi/chi/v5"
)

const webhookSecretHeader = "X-Webhook-Secret"

// HealthHandler reports that the process is up
func (s *Server) HealthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain")
	w.Write([]byte("ok"))
}

// LeagueStatusHandler returns the watcher state, the pairings summary and the latest decisions of a league
func (s *Server) LeagueStatusHandler(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "league")

	status, err := s.api.GetLeagueStatus(r.Context(), name)
	if err != nil {
		if errors.Is(err, api.ErrUnknownLeague) {
			http.Error(w, fmt.Sprintf("Unknown league %s", name), http.StatusNotFound)
			return
		}
		s.logger.Error("failed to get league status", "league", name, "error", err)
		http.Error(w, "Failed to get league status", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(status); err != nil {
		s.logger.Error("failed to encode league status", "league", name, "error", err)
	}
}

// HeltourWebhookHandler HTTP endpoint that receives a webhook from heltour when the pairings of a league change
// Preconditions: HTTP server has been started, receives HTTP ResponseWriter and Http Request
// Postconditions: The pairings of the league are refreshed, which resubscribes the watcher if the players changed.
// Requests without the shared secret are rejected
func (s *Server) HeltourWebhookHandler(w http.ResponseWriter, r *http.Request) {
	defer r.Body.Close()

	if !s.authorized(r) {
		s.logger.Warn("rejected webhook with a missing or wrong secret", "remote", r.RemoteAddr)
		w.WriteHeader(http.StatusUnauthorized)
		return
	}

	var event HeltourEvent
	if err := json.NewDecoder(r.Body).Decode(&event); err != nil || event.League == "" {
		s.logger.Warn("failed to decode webhook", "error", err)
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	s.logger.Info("heltour event", "league", event.League)

	if err := s.api.RefreshLeague(r.Context(), event.League); err != nil {
		if errors.Is(err, api.ErrUnknownLeague) {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		s.logger.Error("webhook refresh failed", "league", event.League, "error", err)
		w.WriteHeader(http.StatusBadGateway)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) authorized(r *http.Request) bool {
	if s.webhookSecret == "" {
		return false
	}
	got := r.Header.Get(webhookSecretHeader)
	return subtle.ConstantTimeCompare([]byte(got), []byte(s.webhookSecret)) == 1
}
