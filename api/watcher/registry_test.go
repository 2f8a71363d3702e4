/* registry_test.go
 * Contains unit tests for the watcher registry
 */

package watcher

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newIdleWatcher(t *testing.T, league string) *Watcher {
	w := New(league, Deps{Transport: newFakeTransport(), Refresher: &fakeRefresher{}, Processor: &fakeProcessor{}})
	t.Cleanup(w.Stop)
	return w
}

func TestRegistry_AddGet(t *testing.T) {
	r := NewRegistry()
	w := newIdleWatcher(t, "team4545")

	require.NoError(t, r.Add(w))

	got, ok := r.Get("team4545")
	assert.True(t, ok)
	assert.Same(t, w, got)

	_, ok = r.Get("lonewolf")
	assert.False(t, ok)
}

func TestRegistry_DuplicateLeague(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.Add(newIdleWatcher(t, "team4545")))

	err := r.Add(newIdleWatcher(t, "team4545"))

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "already watched")
}

func TestRegistry_AllSorted(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.Add(newIdleWatcher(t, "team4545")))
	require.NoError(t, r.Add(newIdleWatcher(t, "chess960")))
	require.NoError(t, r.Add(newIdleWatcher(t, "lonewolf")))

	var names []string
	for _, w := range r.All() {
		names = append(names, w.League())
	}

	assert.Equal(t, []string{"chess960", "lonewolf", "team4545"}, names)
}

func TestRegistry_WatchUnknownLeague(t *testing.T) {
	r := NewRegistry()

	assert.Error(t, r.Watch("team4545"))
}

func TestRegistry_StopAll(t *testing.T) {
	r := NewRegistry()
	transport := newFakeTransport()
	w := New("team4545", Deps{Transport: transport, Refresher: &fakeRefresher{}, Processor: &fakeProcessor{}})
	require.NoError(t, r.Add(w))
	w.OnPairingsRefreshed(pairings("alice", "bob"))
	stream := transport.next(t)

	done := make(chan struct{})
	go func() {
		r.StopAll()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("StopAll did not return")
	}
	<-stream.closed
	assert.Equal(t, Closed, w.State())
}
