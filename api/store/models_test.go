/* models_test.go
 * Contains unit tests for the store documents
 */

package store

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNewSnapshotDoc(t *testing.T) {
	now := time.Date(2024, time.May, 15, 20, 0, 0, 0, time.FixedZone("AEST", 10*3600))

	doc := NewSnapshotDoc("team4545", nil, now, time.Hour)

	assert.Equal(t, "team4545", doc.League)
	assert.NotNil(t, doc.Pairings)
	assert.Equal(t, time.UTC, doc.UpdatedAt.Location())
	assert.Equal(t, now.Add(time.Hour).UTC(), doc.ExpiresAt)
}

func TestSnapshotDoc_Expired(t *testing.T) {
	now := time.Date(2024, time.May, 15, 20, 0, 0, 0, time.UTC)
	doc := NewSnapshotDoc("team4545", CreateSamplePairings(), now, time.Hour)

	assert.False(t, doc.Expired(now))
	assert.False(t, doc.Expired(now.Add(59*time.Minute)))
	assert.True(t, doc.Expired(now.Add(time.Hour)))
}
