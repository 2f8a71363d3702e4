/* snapshots.go
 * Contains the methods for interacting with the pairing_snapshots collection
 */

package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"league-watcher/api/shared"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Function to store the latest pairings of a league, replacing the previous snapshot
// Preconditions: Receives the league name and the pairings returned by heltour
// Postconditions: Upserts the snapshot, returns error if the operation was unsuccessful
func (s *Store) SaveSnapshot(ctx context.Context, league string, pairings []shared.Pairing) error {
	doc := NewSnapshotDoc(league, pairings, time.Now(), s.SnapshotTTL)

	_, err := s.Collections.Snapshots.ReplaceOne(ctx,
		bson.M{"league": league},
		doc,
		options.Replace().SetUpsert(true),
	)
	if err != nil {
		return fmt.Errorf("failed to store snapshot for %s: %w", league, err)
	}
	return nil
}

// Function used to fetch the last pairings stored for a league
// Preconditions: Receives the league name
// Postconditions: Returns the stored pairings, ErrNoSnapshot if there are none (or they expired), or error if the
// lookup failed
func (s *Store) LoadSnapshot(ctx context.Context, league string) ([]shared.Pairing, error) {
	var doc SnapshotDoc
	err := s.Collections.Snapshots.FindOne(ctx, bson.M{"league": league}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNoSnapshot
		}
		return nil, fmt.Errorf("error fetching snapshot from db: %w", err)
	}
	if doc.Expired(time.Now()) {
		return nil, ErrNoSnapshot
	}
	return doc.Pairings, nil
}
