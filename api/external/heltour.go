/* heltour.go
 * Contains the client for the heltour league management api: fetching the pairings of the current round, updating
 * a pairing with a game link or result and forwarding game warnings
 */

package external

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"league-watcher/api/shared"

	"golang.org/x/time/rate"
)

// HeltourConfig holds the settings of one league's heltour endpoint
type HeltourConfig struct {
	BaseEndpoint string
	Token        string
	LeagueTag    string
	Defaults     Defaults
}

// Heltour is the pairing repository of one league
type Heltour struct {
	cfg     HeltourConfig
	lichess *Lichess
	client  *http.Client
	limiter *rate.Limiter
}

// NewHeltour creates a heltour client. The lichess client is used to turn game ids into links, the limiter is shared
// with every other client talking to the same host
func NewHeltour(cfg HeltourConfig, lichess *Lichess, limiter *rate.Limiter) *Heltour {
	if !strings.HasSuffix(cfg.BaseEndpoint, "/") {
		cfg.BaseEndpoint += "/"
	}
	if limiter == nil {
		limiter = rate.NewLimiter(rate.Inf, 1)
	}
	return &Heltour{
		cfg:     cfg,
		lichess: lichess,
		client:  &http.Client{Timeout: 30 * time.Second},
		limiter: limiter,
	}
}

// GetAllPairings returns every pairing of the current round of the league
// Preconditions: The client was created with a league tag
// Postconditions: Returns the pairings with league defaults applied, or an error if the request failed
func (h *Heltour) GetAllPairings(ctx context.Context) ([]shared.Pairing, error) {
	if h.cfg.LeagueTag == "" {
		return nil, fmt.Errorf("league tag is required to fetch all pairings")
	}
	return h.findPairings(ctx, url.Values{"league": {h.cfg.LeagueTag}})
}

// FindPairing returns the pairings between two players in the league
func (h *Heltour) FindPairing(ctx context.Context, white, black string) ([]shared.Pairing, error) {
	params := url.Values{"white": {white}, "black": {black}}
	if h.cfg.LeagueTag != "" {
		params.Set("league", h.cfg.LeagueTag)
	}
	return h.findPairings(ctx, params)
}

func (h *Heltour) findPairings(ctx context.Context, params url.Values) ([]shared.Pairing, error) {
	endpoint := h.cfg.BaseEndpoint + "find_pairing/?" + params.Encode()

	var res pairingsResponse
	if err := h.do(ctx, http.MethodGet, endpoint, nil, &res); err != nil {
		return nil, err
	}
	if res.Error != "" {
		return nil, fmt.Errorf("%w: %s", ErrHeltour, res.Error)
	}
	if res.Pairings == nil {
		return nil, fmt.Errorf("%w: no pairings in response", ErrHeltour)
	}

	pairings := make([]shared.Pairing, 0, len(res.Pairings))
	for _, p := range res.Pairings {
		pairings = append(pairings, p.ToPairing(h.cfg.Defaults))
	}
	return pairings, nil
}

// UpdatePairing sends a result and/or game link for a pairing. Sending the same update twice is safe
// Preconditions: Receives the pairing to update and the fields to change
// Postconditions: Returns the pairing as stored by heltour, or an error if the update was rejected
func (h *Heltour) UpdatePairing(ctx context.Context, pairing shared.Pairing, update PairingUpdate) (shared.Pairing, error) {
	body := map[string]any{
		"league":   h.cfg.LeagueTag,
		"pairings": []string{pairing.ID},
	}
	if update.Result != nil {
		body["result"] = *update.Result
	}
	if update.GameLink != nil {
		body["game_link"] = *update.GameLink
	}

	var res pairingsResponse
	if err := h.do(ctx, http.MethodPost, h.cfg.BaseEndpoint+"update_pairing/", body, &res); err != nil {
		return shared.Pairing{}, err
	}
	if res.Error != "" {
		return shared.Pairing{}, fmt.Errorf("%w: %s", ErrHeltour, res.Error)
	}
	if len(res.Pairings) == 0 {
		return update.Apply(pairing), nil
	}
	return res.Pairings[0].ToPairing(h.cfg.Defaults), nil
}

// BindGame attaches a lichess game to a pairing
func (h *Heltour) BindGame(ctx context.Context, pairing shared.Pairing, gameID string) (shared.Pairing, error) {
	return h.UpdatePairing(ctx, pairing, WithGameLink(h.lichess.GameIDToLink(gameID)))
}

// SendGameWarning records on heltour that the players were warned about their game
func (h *Heltour) SendGameWarning(ctx context.Context, white, black string, reasons []string) error {
	body := map[string]any{
		"league": h.cfg.LeagueTag,
		"white":  white,
		"black":  black,
		"reason": strings.Join(reasons, "\n"),
	}
	var res pairingsResponse
	if err := h.do(ctx, http.MethodPost, h.cfg.BaseEndpoint+"game_warning/", body, &res); err != nil {
		return err
	}
	if res.Error != "" {
		return fmt.Errorf("%w: %s", ErrHeltour, res.Error)
	}
	return nil
}

func (h *Heltour) do(ctx context.Context, method, endpoint string, body any, out any) error {
	if err := h.limiter.Wait(ctx); err != nil {
		return err
	}

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	request, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	request.Header.Set("Authorization", "Token "+h.cfg.Token)
	request.Header.Set("Accept", "application/json")
	if body != nil {
		request.Header.Set("Content-Type", "application/json")
	}

	response, err := h.client.Do(request)
	if err != nil {
		return fmt.Errorf("heltour request failed: %w", err)
	}
	defer response.Body.Close()

	if response.StatusCode < 200 || response.StatusCode > 299 {
		return fmt.Errorf("%w: %s %s returned %d", ErrUnexpectedStatus, method, endpoint, response.StatusCode)
	}

	if err := json.NewDecoder(response.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode heltour response: %w", err)
	}
	return nil
}
