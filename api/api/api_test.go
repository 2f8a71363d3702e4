/* api_test.go
 * Contains unit tests for api.go - testing all public API methods
 */

package api

import (
	"context"
	"errors"
	"testing"
	"time"

	"league-watcher/api/league"
	"league-watcher/api/shared"
	"league-watcher/api/store"
	"league-watcher/api/watcher"
	"league-watcher/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestAPI(t *testing.T, mock *MockStore) (*API, *StaticPairings) {
	t.Helper()
	scheduled := time.Date(2024, time.May, 15, 18, 0, 0, 0, time.UTC)
	source := &StaticPairings{Pairings: []shared.Pairing{
		{ID: "1", White: "Magnus", Black: "Hikaru", Datetime: &scheduled, GameLink: "https://lichess.org/abcd1234", Result: "1-0"},
		{ID: "2", White: "Alireza", Black: "Ding"},
	}}

	l := league.New(config.League{
		Name:      "team4545",
		Results:   config.Channel{ChannelID: "results"},
		GameLinks: config.GameLinks{ChannelID: "gamelinks", Extrema: config.Extrema{ISOWeekday: 1, Hour: 11}},
		Channels:  []string{"general"},
	}, source, league.Options{})
	require.NoError(t, l.RefreshCurrentRoundSchedules(context.Background()))

	registry := watcher.NewRegistry()
	w := watcher.New("team4545", watcher.Deps{})
	t.Cleanup(w.Stop)
	require.NoError(t, registry.Add(w))

	var st store.Interface
	if mock != nil {
		st = mock
	}
	a, err := NewAPI([]*league.League{l}, registry, st)
	require.NoError(t, err)
	return a, source
}

// region NewAPI tests

func TestNewAPI_MissingParameters(t *testing.T) {
	_, err := NewAPI(nil, watcher.NewRegistry(), nil)
	assert.Error(t, err)

	_, err = NewAPI([]*league.League{league.New(config.League{Name: "x"}, &StaticPairings{}, league.Options{})}, nil, nil)
	assert.Error(t, err)
}

// endregion

// region lookup tests

func TestLeagueForChannel(t *testing.T) {
	a, _ := newTestAPI(t, nil)

	for _, channel := range []string{"results", "gamelinks", "general"} {
		l, err := a.LeagueForChannel(channel)
		require.NoError(t, err, channel)
		assert.Equal(t, "team4545", l.Name())
	}

	_, err := a.LeagueForChannel("random")
	assert.True(t, errors.Is(err, ErrUnknownChannel))
}

func TestLeague_Unknown(t *testing.T) {
	a, _ := newTestAPI(t, nil)

	_, err := a.League("lonewolf")

	assert.True(t, errors.Is(err, ErrUnknownLeague))
}

// endregion

// region command tests

func TestGetPairings(t *testing.T) {
	a, _ := newTestAPI(t, nil)

	res, err := a.GetPairings("general")

	require.NoError(t, err)
	assert.Equal(t, "Pairings for team4545:\n"+
		"- Magnus vs Hikaru at Wed 15 May 18:00 UTC: <https://lichess.org/abcd1234> (1-0)\n"+
		"- Alireza vs Ding\n", res)
}

func TestGetPairings_Empty(t *testing.T) {
	a, source := newTestAPI(t, nil)
	source.Pairings = []shared.Pairing{}
	require.NoError(t, a.RefreshLeague(context.Background(), "team4545"))

	res, err := a.GetPairings("general")

	require.NoError(t, err)
	assert.Equal(t, "There are no pairings for team4545 yet", res)
}

func TestFindPlayer(t *testing.T) {
	a, _ := newTestAPI(t, nil)

	res, err := a.FindPlayer("general", "alireza")
	require.NoError(t, err)
	assert.Equal(t, "Pairings of Alireza:\n- Alireza vs Ding\n", res)

	res, err = a.FindPlayer("general", "carlsen")
	require.NoError(t, err)
	assert.Contains(t, res, "No player matching")

	_, err = a.FindPlayer("random", "alireza")
	assert.True(t, errors.Is(err, ErrUnknownChannel))
}

func TestWatchStatus(t *testing.T) {
	a, _ := newTestAPI(t, nil)

	status, err := a.WatchStatus("gamelinks")

	require.NoError(t, err)
	assert.Equal(t, "team4545", status.League)
	assert.Equal(t, "idle", status.State)
}

// endregion

// region status tests

func TestGetLeagueStatus(t *testing.T) {
	st := NewMockStore()
	st.Dispositions = []shared.DispositionRecord{
		{League: "team4545", EventID: "g1", Disposition: "bound_game"},
		{League: "lonewolf", EventID: "g2", Disposition: "bound_game"},
		{League: "team4545", EventID: "g3", Disposition: "result_recorded"},
	}
	a, _ := newTestAPI(t, st)

	status, err := a.GetLeagueStatus(context.Background(), "team4545")

	require.NoError(t, err)
	assert.Equal(t, 2, status.Pairings)
	assert.Equal(t, 1, status.Unplayed)
	assert.Equal(t, "idle", status.Watcher.State)
	assert.False(t, status.RefreshedAt.IsZero())
	assert.Equal(t, status.Round.End.Add(-7*24*time.Hour), status.Round.Start)
	require.Len(t, status.Dispositions, 2)
	assert.Equal(t, "g3", status.Dispositions[0].EventID)
}

func TestGetLeagueStatus_StoreError(t *testing.T) {
	st := NewMockStore()
	st.RecentDispositionsError = errors.New("mongo down")
	a, _ := newTestAPI(t, st)

	_, err := a.GetLeagueStatus(context.Background(), "team4545")

	assert.Error(t, err)
}

func TestGetLeagueStatus_UnknownLeague(t *testing.T) {
	a, _ := newTestAPI(t, nil)

	_, err := a.GetLeagueStatus(context.Background(), "lonewolf")

	assert.True(t, errors.Is(err, ErrUnknownLeague))
}

func TestRefreshLeague_Error(t *testing.T) {
	a, source := newTestAPI(t, nil)
	source.Err = errors.New("heltour down")

	err := a.RefreshLeague(context.Background(), "team4545")

	assert.Error(t, err)
	_, err = a.GetPairings("general")
	assert.NoError(t, err)
}

// endregion
