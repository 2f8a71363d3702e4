/* metrics_test.go
 * Contains unit tests for the prometheus collectors
 */

package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCounters(t *testing.T) {
	m := New(prometheus.NewRegistry())

	m.EventReceived("team4545")
	m.EventReceived("team4545")
	m.Disposition("team4545", "bound_game")
	m.StreamStarted("lonewolf")
	m.BackedOff("lonewolf")
	m.DecodeFailed("lonewolf")
	m.RefreshFailed("team4545")

	assert.Equal(t, 2.0, testutil.ToFloat64(m.EventsReceived.WithLabelValues("team4545")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Dispositions.WithLabelValues("team4545", "bound_game")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.StreamStarts.WithLabelValues("lonewolf")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Backoffs.WithLabelValues("lonewolf")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.DecodeErrors.WithLabelValues("lonewolf")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.RefreshFailures.WithLabelValues("team4545")))
}

func TestSetWatched(t *testing.T) {
	m := New(prometheus.NewRegistry())

	m.SetWatched("team4545", 12)
	m.SetWatched("team4545", 4)

	assert.Equal(t, 4.0, testutil.ToFloat64(m.WatchedPlayers.WithLabelValues("team4545")))
}

func TestObserveProcess(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)

	m.ObserveProcess("team4545", time.Now())

	count, err := testutil.GatherAndCount(reg, "league_watcher_process_duration_seconds")
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestNilMetrics(t *testing.T) {
	var m *Metrics

	assert.NotPanics(t, func() {
		m.EventReceived("x")
		m.Disposition("x", "y")
		m.StreamStarted("x")
		m.BackedOff("x")
		m.DecodeFailed("x")
		m.RefreshFailed("x")
		m.SetWatched("x", 1)
		m.ObserveProcess("x", time.Now())
	})
}

func TestNew_DuplicateRegistrationPanics(t *testing.T) {
	reg := prometheus.NewRegistry()
	New(reg)

	assert.Panics(t, func() { New(reg) })
}
