/* models.go
 * This file contains the models used by the external package when talking to heltour and lichess
 */

package external

import (
	"encoding/json"
	"errors"
	"net/url"
	"strings"
	"time"

	"league-watcher/api/shared"
)

var (
	// ErrUnexpectedStatus is returned when a remote answers with a non 2xx status code
	ErrUnexpectedStatus = errors.New("unexpected status code")
	// ErrHeltour is returned when heltour answers with an error field
	ErrHeltour = errors.New("heltour error")
)

// Defaults are the game settings of a league, applied to pairings heltour returns without them
type Defaults struct {
	Clock   shared.Clock
	Rated   bool
	Variant string
}

// HeltourPairing is a pairing as returned by the heltour find_pairing endpoint
type HeltourPairing struct {
	ID       json.RawMessage `json:"id"`
	White    string          `json:"white"`
	Black    string          `json:"black"`
	Datetime *time.Time      `json:"datetime"`
	GameLink string          `json:"game_link"`
	Result   string          `json:"result"`
	Clock    *shared.Clock   `json:"clock"`
	Rated    *bool           `json:"rated"`
	Variant  string          `json:"variant"`
}

// ToPairing converts the heltour record into a pairing, filling the missing settings from the league defaults
func (h HeltourPairing) ToPairing(defaults Defaults) shared.Pairing {
	p := shared.Pairing{
		ID:       strings.Trim(string(h.ID), `"`),
		White:    h.White,
		Black:    h.Black,
		Result:   h.Result,
		GameLink: h.GameLink,
		GameID:   GameLinkToID(h.GameLink),
		Clock:    defaults.Clock,
		Rated:    defaults.Rated,
		Variant:  defaults.Variant,
	}
	if h.Datetime != nil {
		at := h.Datetime.UTC()
		p.Datetime = &at
	}
	if h.Clock != nil {
		p.Clock = *h.Clock
	}
	if h.Rated != nil {
		p.Rated = *h.Rated
	}
	if h.Variant != "" {
		p.Variant = h.Variant
	}
	return p
}

type pairingsResponse struct {
	Pairings []HeltourPairing `json:"pairings"`
	Error    string           `json:"error"`
}

// PairingUpdate is the change sent to heltour for a pairing. Nil fields are left untouched, an empty GameLink clears it
type PairingUpdate struct {
	Result   *string
	GameLink *string
}

// WithResult returns an update setting the result
func WithResult(result string) PairingUpdate {
	return PairingUpdate{Result: &result}
}

// WithGameLink returns an update setting the game link
func WithGameLink(link string) PairingUpdate {
	return PairingUpdate{GameLink: &link}
}

// ClearGameLink returns an update removing the game link
func ClearGameLink() PairingUpdate {
	empty := ""
	return PairingUpdate{GameLink: &empty}
}

// Apply returns a copy of the pairing with the update applied
func (u PairingUpdate) Apply(p shared.Pairing) shared.Pairing {
	if u.Result != nil {
		p.Result = *u.Result
	}
	if u.GameLink != nil {
		p.GameLink = *u.GameLink
		p.GameID = GameLinkToID(*u.GameLink)
	}
	return p
}

// GameDetail is the subset of the lichess game export needed to settle a result
type GameDetail struct {
	ID        string `json:"id"`
	Rated     bool   `json:"rated"`
	Variant   string `json:"variant"`
	Status    string `json:"status"`
	Winner    string `json:"winner"`
	CreatedAt int64  `json:"createdAt"`
	Players   struct {
		White struct {
			User struct {
				Name string `json:"name"`
				ID   string `json:"id"`
			} `json:"user"`
		} `json:"white"`
		Black struct {
			User struct {
				Name string `json:"name"`
				ID   string `json:"id"`
			} `json:"user"`
		} `json:"black"`
	} `json:"players"`
}

// GameLinkToID extracts the game id from a lichess game link, e.g. https://lichess.org/abcd1234/black -> abcd1234
func GameLinkToID(link string) string {
	if link == "" {
		return ""
	}
	u, err := url.Parse(link)
	if err != nil {
		return ""
	}
	parts := strings.Split(strings.Trim(u.Path, "/"), "/")
	return parts[0]
}
