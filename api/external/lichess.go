/* lichess.go
 * Contains the client for the lichess api: the games-by-users stream the watcher listens to and the game export used
 * to settle results
 */

package external

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"golang.org/x/time/rate"
)

// Lichess talks to lichess.org (or a compatible server)
type Lichess struct {
	baseURL   string
	streamURL string
	client    *http.Client
	stream    *http.Client
	limiter   *rate.Limiter
}

// NewLichess creates a lichess client. streamURL is the games-by-users endpoint
func NewLichess(baseURL, streamURL string, limiter *rate.Limiter) *Lichess {
	if !strings.HasSuffix(baseURL, "/") {
		baseURL += "/"
	}
	if limiter == nil {
		limiter = rate.NewLimiter(rate.Inf, 1)
	}
	return &Lichess{
		baseURL:   baseURL,
		streamURL: streamURL,
		client:    &http.Client{Timeout: 30 * time.Second},
		// The stream is held open by the server, so it must not time out
		stream:  &http.Client{},
		limiter: limiter,
	}
}

// GameIDToLink returns the link of a game
func (l *Lichess) GameIDToLink(gameID string) string {
	return l.baseURL + gameID
}

// GetGame fetches the details of a game
// Preconditions: Receives a lichess game id
// Postconditions: Returns the exported game, or an error if it could not be fetched
func (l *Lichess) GetGame(ctx context.Context, gameID string) (GameDetail, error) {
	if err := l.limiter.Wait(ctx); err != nil {
		return GameDetail{}, err
	}

	request, err := http.NewRequestWithContext(ctx, http.MethodGet, l.baseURL+"game/export/"+gameID, nil)
	if err != nil {
		return GameDetail{}, fmt.Errorf("failed to create request: %w", err)
	}
	request.Header.Set("Accept", "application/json")

	response, err := l.client.Do(request)
	if err != nil {
		return GameDetail{}, fmt.Errorf("lichess request failed: %w", err)
	}
	defer response.Body.Close()

	if response.StatusCode != http.StatusOK {
		return GameDetail{}, fmt.Errorf("%w: game %s returned %d", ErrUnexpectedStatus, gameID, response.StatusCode)
	}

	var game GameDetail
	if err := json.NewDecoder(response.Body).Decode(&game); err != nil {
		return GameDetail{}, fmt.Errorf("failed to decode game %s: %w", gameID, err)
	}
	return game, nil
}

// OpenGameStream starts the games-by-users stream for the comma separated list of users in body. The returned reader
// yields newline delimited json until the server closes it or ctx is cancelled
func (l *Lichess) OpenGameStream(ctx context.Context, body string) (io.ReadCloser, error) {
	request, err := http.NewRequestWithContext(ctx, http.MethodPost, l.streamURL, strings.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create stream request: %w", err)
	}
	request.Header.Set("Content-Type", "text/plain")

	response, err := l.stream.Do(request)
	if err != nil {
		return nil, fmt.Errorf("stream request failed: %w", err)
	}
	if response.StatusCode != http.StatusOK {
		response.Body.Close()
		return nil, fmt.Errorf("%w: stream returned %d", ErrUnexpectedStatus, response.StatusCode)
	}
	return response.Body, nil
}
