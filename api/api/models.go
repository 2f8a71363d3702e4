/* models.go
 * This file contains the errors and structs returned by the api package
 */

package api

import (
	"errors"
	"time"

	"league-watcher/api/shared"
	"league-watcher/api/watcher"
)

var (
	// ErrUnknownLeague is returned when no league has the requested name
	ErrUnknownLeague = errors.New("unknown league")
	// ErrUnknownChannel is returned when a channel is not linked to any league
	ErrUnknownChannel = errors.New("channel is not linked to a league")
)

// LeagueStatus is the state of one league as reported over http
type LeagueStatus struct {
	League       string                     `json:"league"`
	Watcher      watcher.Status             `json:"watcher"`
	Pairings     int                        `json:"pairings"`
	Unplayed     int                        `json:"unplayed"`
	RefreshedAt  time.Time                  `json:"refreshed_at"`
	Round        shared.Extrema             `json:"round"`
	Dispositions []shared.DispositionRecord `json:"dispositions,omitempty"`
}
