/* store_interface.go
 * Contains the Store interface for dependency injection and testing
 */

package store

import (
	"context"

	"league-watcher/api/shared"
)

// Interface defines the methods that Store implements.
// This allows for mocking in tests.
type Interface interface {
	SaveSnapshot(ctx context.Context, league string, pairings []shared.Pairing) error
	LoadSnapshot(ctx context.Context, league string) ([]shared.Pairing, error)
	RecordDisposition(ctx context.Context, record shared.DispositionRecord) error
	RecentDispositions(ctx context.Context, league string, limit int64) ([]shared.DispositionRecord, error)
	Close(ctx context.Context) error
}

// Ensure Store implements Interface
var _ Interface = (*Store)(nil)
