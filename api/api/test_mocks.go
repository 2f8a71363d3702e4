/* test_mocks.go
 * Contains mock structures for testing the API package and its users
 */

package api

import (
	"context"

	"league-watcher/api/shared"
	"league-watcher/api/store"
)

// MockStore implements the store Interface for testing
type MockStore struct {
	// Storage for mock data
	Snapshots    map[string][]shared.Pairing
	Dispositions []shared.DispositionRecord

	// Error injection for testing error paths
	SaveSnapshotError       error
	LoadSnapshotError       error
	RecordDispositionError  error
	RecentDispositionsError error
}

// Ensure MockStore implements the store Interface
var _ store.Interface = (*MockStore)(nil)

// NewMockStore creates a new empty MockStore
func NewMockStore() *MockStore {
	return &MockStore{
		Snapshots: make(map[string][]shared.Pairing),
	}
}

func (m *MockStore) SaveSnapshot(ctx context.Context, league string, pairings []shared.Pairing) error {
	if m.SaveSnapshotError != nil {
		return m.SaveSnapshotError
	}
	m.Snapshots[league] = pairings
	return nil
}

func (m *MockStore) LoadSnapshot(ctx context.Context, league string) ([]shared.Pairing, error) {
	if m.LoadSnapshotError != nil {
		return nil, m.LoadSnapshotError
	}
	pairings, ok := m.Snapshots[league]
	if !ok {
		return nil, store.ErrNoSnapshot
	}
	return pairings, nil
}

func (m *MockStore) RecordDisposition(ctx context.Context, record shared.DispositionRecord) error {
	if m.RecordDispositionError != nil {
		return m.RecordDispositionError
	}
	m.Dispositions = append(m.Dispositions, record)
	return nil
}

// RecentDispositions returns the records of a league, newest first
func (m *MockStore) RecentDispositions(ctx context.Context, league string, limit int64) ([]shared.DispositionRecord, error) {
	if m.RecentDispositionsError != nil {
		return nil, m.RecentDispositionsError
	}
	var records []shared.DispositionRecord
	for i := len(m.Dispositions) - 1; i >= 0 && int64(len(records)) < limit; i-- {
		if m.Dispositions[i].League == league {
			records = append(records, m.Dispositions[i])
		}
	}
	return records, nil
}

func (m *MockStore) Close(ctx context.Context) error {
	return nil
}

// StaticPairings is a pairing source returning fixed pairings
type StaticPairings struct {
	Pairings []shared.Pairing
	Err      error
}

func (s *StaticPairings) GetAllPairings(ctx context.Context) ([]shared.Pairing, error) {
	if s.Err != nil {
		return nil, s.Err
	}
	return s.Pairings, nil
}
