/* test_helpers.go
 * Contains test helper functions for store package tests
 */

package store

import (
	"context"
	"os"
	"testing"
	"time"

	"league-watcher/api/shared"
)

// NewTestStore creates a Store connected to the database named by MONGO_TEST_URI, skipping the test when it is not
// set. The test database is dropped when the test ends
func NewTestStore(t *testing.T) *Store {
	t.Helper()

	mongoURI := os.Getenv("MONGO_TEST_URI")
	if mongoURI == "" {
		t.Skip("MONGO_TEST_URI not set, skipping mongo integration test")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	s, err := NewStore(ctx, "test_league_watcher", mongoURI)
	if err != nil {
		t.Fatalf("Failed to connect to MongoDB: %v", err)
	}

	t.Cleanup(func() {
		s.Database.Drop(context.TODO())
		s.Close(context.TODO())
	})
	return s
}

// CreateSamplePairings creates sample pairing data for testing
func CreateSamplePairings() []shared.Pairing {
	scheduled := time.Date(2024, time.May, 15, 18, 0, 0, 0, time.UTC)
	return []shared.Pairing{
		{
			ID:       "101",
			White:    "alice",
			Black:    "bob",
			Datetime: &scheduled,
			Clock:    shared.Clock{Initial: 45, Increment: 45},
			Rated:    true,
			Variant:  "standard",
		},
		{
			ID:       "102",
			White:    "carol",
			Black:    "dave",
			Clock:    shared.Clock{Initial: 45, Increment: 45},
			Rated:    true,
			Variant:  "standard",
			GameLink: "https://lichess.org/abcd1234",
			GameID:   "abcd1234",
		},
	}
}
