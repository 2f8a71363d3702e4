/* players.go
 * Contains the logic for resolving a player name typed by a user into the pairings that player is part of
 */

package logic

import (
	"strings"

	"league-watcher/api/shared"

	"github.com/lithammer/fuzzysearch/fuzzy"
)

// FindPlayerPairings resolves a (possibly misspelled) player name against the players of the given pairings.
// Preconditions: receives the name typed by the user and the pairings of the current round
// Postconditions: returns the resolved player name and their pairings, or an empty name if nobody matched
func FindPlayerPairings(query string, pairings []shared.Pairing) (string, []shared.Pairing) {
	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		return "", nil
	}

	// Build lookup of lowercase names so the original spelling can be returned
	lookup := make(map[string]string)
	var players []string
	for _, p := range pairings {
		for _, name := range []string{p.White, p.Black} {
			lower := strings.ToLower(name)
			if _, ok := lookup[lower]; ok || lower == "" {
				continue
			}
			lookup[lower] = name
			players = append(players, lower)
		}
	}

	ranks := fuzzy.RankFind(query, players)
	if len(ranks) == 0 {
		return "", nil
	}

	// Prefer an exact match, otherwise take the closest ranked name
	best := ""
	for _, r := range ranks {
		if r.Target == query {
			best = r.Target
			break
		}
	}
	if best == "" {
		bestDistance := -1
		for _, r := range ranks {
			if bestDistance == -1 || r.Distance < bestDistance {
				best, bestDistance = r.Target, r.Distance
			}
		}
	}

	var found []shared.Pairing
	for _, p := range pairings {
		if strings.EqualFold(p.White, best) || strings.EqualFold(p.Black, best) {
			found = append(found, p)
		}
	}
	return lookup[best], found
}
