/* store.go
 * Contains the store struct and NewStore function. The methods of this package are split by collection: snapshots.go
 * holds the last known pairings of every league, dispositions.go holds the audit ledger of processed events
 */

package store

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// DefaultSnapshotTTL is how long a pairing snapshot is kept after its last update
const DefaultSnapshotTTL = 7 * 24 * time.Hour

type Store struct {
	Client      *mongo.Client
	Database    *mongo.Database
	SnapshotTTL time.Duration
	Collections struct {
		Dispositions *mongo.Collection
		Snapshots    *mongo.Collection
	}
}

// Function for initialising Store. Connects to mongo and makes sure the TTL index on the snapshots exists
// Preconditions: Receives the database name and the mongo uri
// Postconditions: Returns pointer to the Store object, or error if the connection or index creation failed
func NewStore(ctx context.Context, dbName string, mongoURI string) (*Store, error) {
	if dbName == "" || mongoURI == "" {
		return nil, fmt.Errorf("database name and mongo uri cannot be empty")
	}

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(mongoURI))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongo: %w", err)
	}
	db := client.Database(dbName)

	s := &Store{
		Client:      client,
		Database:    db,
		SnapshotTTL: DefaultSnapshotTTL,
	}
	s.Collections.Dispositions = db.Collection("dispositions")
	s.Collections.Snapshots = db.Collection("pairing_snapshots")

	if err := s.ensureIndexes(ctx); err != nil {
		client.Disconnect(ctx)
		return nil, err
	}
	return s, nil
}

func (s *Store) ensureIndexes(ctx context.Context) error {
	_, err := s.Collections.Snapshots.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "league", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys:    bson.D{{Key: "expires_at", Value: 1}},
			Options: options.Index().SetExpireAfterSeconds(0),
		},
	})
	if err != nil {
		return fmt.Errorf("failed to create snapshot indexes: %w", err)
	}

	_, err = s.Collections.Dispositions.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "league", Value: 1}, {Key: "at", Value: -1}},
	})
	if err != nil {
		return fmt.Errorf("failed to create disposition index: %w", err)
	}
	return nil
}

// Close disconnects the mongo client
func (s *Store) Close(ctx context.Context) error {
	return s.Client.Disconnect(ctx)
}
