/* api.go
 * This file contains the public methods used by the bot commands and the http server. They read the state of the
 * leagues and their watchers; nothing here classifies events
 */

package api

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"league-watcher/api/league"
	"league-watcher/api/logic"
	"league-watcher/api/scheduling"
	"league-watcher/api/shared"
	"league-watcher/api/store"
	"league-watcher/api/watcher"
)

// recentDispositions is how many ledger entries a league status includes
const recentDispositions = 20

// API gives read access to the watched leagues
type API struct {
	Leagues  map[string]*league.League
	Registry *watcher.Registry
	Store    store.Interface // nil when mongo is not configured
}

// NewAPI creates a new API instance over the leagues and their watchers
func NewAPI(leagues []*league.League, registry *watcher.Registry, st store.Interface) (*API, error) {
	if len(leagues) == 0 || registry == nil {
		return nil, fmt.Errorf("at least one league and a watcher registry are required")
	}

	byName := make(map[string]*league.League, len(leagues))
	for _, l := range leagues {
		byName[l.Name()] = l
	}
	return &API{
		Leagues:  byName,
		Registry: registry,
		Store:    st,
	}, nil
}

// League returns a league by name
func (a *API) League(name string) (*league.League, error) {
	l, ok := a.Leagues[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownLeague, name)
	}
	return l, nil
}

// LeagueForChannel returns the league a discord channel belongs to
func (a *API) LeagueForChannel(channelID string) (*league.League, error) {
	for _, name := range a.leagueNames() {
		l := a.Leagues[name]
		cfg := l.Config()
		if cfg.GameLinks.ChannelID == channelID || cfg.Results.ChannelID == channelID {
			return l, nil
		}
		for _, c := range cfg.Channels {
			if c == channelID {
				return l, nil
			}
		}
	}
	return nil, ErrUnknownChannel
}

func (a *API) leagueNames() []string {
	names := make([]string, 0, len(a.Leagues))
	for name := range a.Leagues {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// GetPairings formats the pairings of the current round of the league linked to a channel
// Preconditions: Receives the id of the channel the command was sent in
// Postconditions: Returns one line per pairing, or an error if the channel is not linked to a league
func (a *API) GetPairings(channelID string) (string, error) {
	l, err := a.LeagueForChannel(channelID)
	if err != nil {
		return "", err
	}

	pairings := l.Pairings()
	if len(pairings) == 0 {
		return fmt.Sprintf("There are no pairings for %s yet", l.Name()), nil
	}

	var res strings.Builder
	res.WriteString(fmt.Sprintf("Pairings for %s:\n", l.Name()))
	for _, p := range pairings {
		res.WriteString(formatPairing(p))
	}
	return res.String(), nil
}

// FindPlayer formats the pairings of a player, matching the name loosely
func (a *API) FindPlayer(channelID string, query string) (string, error) {
	l, err := a.LeagueForChannel(channelID)
	if err != nil {
		return "", err
	}

	name, pairings := logic.FindPlayerPairings(query, l.Pairings())
	if name == "" {
		return fmt.Sprintf("No player matching %q in %s", query, l.Name()), nil
	}

	var res strings.Builder
	res.WriteString(fmt.Sprintf("Pairings of %s:\n", name))
	for _, p := range pairings {
		res.WriteString(formatPairing(p))
	}
	return res.String(), nil
}

// WatchStatus returns the state of the watcher of the league linked to a channel
func (a *API) WatchStatus(channelID string) (watcher.Status, error) {
	l, err := a.LeagueForChannel(channelID)
	if err != nil {
		return watcher.Status{}, err
	}
	w, ok := a.Registry.Get(l.Name())
	if !ok {
		return watcher.Status{}, fmt.Errorf("%w: %s has no watcher", ErrUnknownLeague, l.Name())
	}
	return w.Status(), nil
}

// GetLeagueStatus reports the watcher, the pairings and the latest decisions of a league
func (a *API) GetLeagueStatus(ctx context.Context, name string) (LeagueStatus, error) {
	l, err := a.League(name)
	if err != nil {
		return LeagueStatus{}, err
	}

	pairings := l.Pairings()
	status := LeagueStatus{
		League:      name,
		Pairings:    len(pairings),
		RefreshedAt: l.RefreshedAt(),
		Round:       scheduling.Scheduler{Extrema: l.Config().GameLinks.Extrema}.GetRoundExtrema(),
	}
	for _, p := range pairings {
		if p.Result == "" {
			status.Unplayed++
		}
	}
	if w, ok := a.Registry.Get(name); ok {
		status.Watcher = w.Status()
	}

	if a.Store != nil {
		records, err := a.Store.RecentDispositions(ctx, name, recentDispositions)
		if err != nil {
			return LeagueStatus{}, fmt.Errorf("failed to load dispositions of %s: %w", name, err)
		}
		status.Dispositions = records
	}
	return status, nil
}

// RefreshLeague fetches the pairings of a league now instead of waiting for the next scheduled refresh
func (a *API) RefreshLeague(ctx context.Context, name string) error {
	l, err := a.League(name)
	if err != nil {
		return err
	}
	return l.RefreshCurrentRoundSchedules(ctx)
}

func formatPairing(p shared.Pairing) string {
	line := fmt.Sprintf("- %s vs %s", p.White, p.Black)
	if p.Datetime != nil {
		line += " at " + p.Datetime.UTC().Format("Mon 02 Jan 15:04 UTC")
	}
	if p.GameLink != "" {
		line += ": <" + p.GameLink + ">"
	}
	if p.Result != "" {
		line += " (" + p.Result + ")"
	}
	return line + "\n"
}
