/* dispositions.go
 * Contains the methods for interacting with the dispositions collection, the audit ledger of every decision taken by
 * the reconciliation engine
 */

package store

import (
	"context"
	"fmt"

	"league-watcher/api/shared"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// RecordDisposition appends a decision to the ledger
func (s *Store) RecordDisposition(ctx context.Context, record shared.DispositionRecord) error {
	if _, err := s.Collections.Dispositions.InsertOne(ctx, record); err != nil {
		return fmt.Errorf("failed to record disposition of %s: %w", record.EventID, err)
	}
	return nil
}

// Function used to fetch the latest decisions of a league
// Preconditions: Receives the league name and the maximum number of records
// Postconditions: Returns the records newest first, or error if the query failed
func (s *Store) RecentDispositions(ctx context.Context, league string, limit int64) ([]shared.DispositionRecord, error) {
	opts := options.Find().SetSort(bson.D{{Key: "at", Value: -1}}).SetLimit(limit)

	cursor, err := s.Collections.Dispositions.Find(ctx, bson.M{"league": league}, opts)
	if err != nil {
		return nil, fmt.Errorf("error fetching dispositions from db: %w", err)
	}
	defer cursor.Close(ctx)

	records := []shared.DispositionRecord{}
	if err := cursor.All(ctx, &records); err != nil {
		return nil, fmt.Errorf("error decoding dispositions: %w", err)
	}
	return records, nil
}
