/* models.go
 * This file contains the documents stored in the db
 */

package store

import (
	"errors"
	"time"

	"league-watcher/api/shared"
)

// ErrNoSnapshot is returned when no unexpired snapshot exists for a league
var ErrNoSnapshot = errors.New("no pairing snapshot stored")

// SnapshotDoc is the last set of pairings fetched for a league
type SnapshotDoc struct {
	League    string           `bson:"league"`
	Pairings  []shared.Pairing `bson:"pairings"`
	UpdatedAt time.Time        `bson:"updated_at"`
	ExpiresAt time.Time        `bson:"expires_at"`
}

// NewSnapshotDoc builds the document for the pairings fetched at now, expiring after ttl
func NewSnapshotDoc(league string, pairings []shared.Pairing, now time.Time, ttl time.Duration) SnapshotDoc {
	if pairings == nil {
		pairings = []shared.Pairing{}
	}
	return SnapshotDoc{
		League:    league,
		Pairings:  pairings,
		UpdatedAt: now.UTC(),
		ExpiresAt: now.UTC().Add(ttl),
	}
}

// Expired reports whether the document is past its expiry. The TTL monitor only runs once a minute, so reads check
// this as well
func (d SnapshotDoc) Expired(now time.Time) bool {
	return !d.ExpiresAt.After(now)
}
