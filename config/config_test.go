/* config_test.go
 * Contains unit tests for loading and validating the configuration
 */

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleLeagues = `
leagues:
  - name: zhteam
    heltour:
      base_endpoint: http://localhost:8000/api/
    results:
      channel_id: "111"
    gamelinks:
      channel_id: "222"
      clock:
        initial: 5
        increment: 5
      rated: true
      variant: crazyhouse
      extrema:
        iso_weekday: 1
        hour: 11
        minute: 0
        warning_hours: 1
    players:
      alice: "9001"
    channels: ["333"]
`

func writeLeagues(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "leagues.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

// region Load tests

func TestLoad_Success(t *testing.T) {
	t.Setenv("LEAGUES_FILE", writeLeagues(t, sampleLeagues))
	t.Setenv("HELTOUR_TOKEN", "secret")
	t.Setenv("REFRESH_INTERVAL", "30s")

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.env"))

	require.NoError(t, err)
	assert.Equal(t, DefaultWatcherBaseURL, cfg.WatcherBaseURL)
	assert.Equal(t, DefaultLichessBaseURL, cfg.LichessBaseURL)
	assert.Equal(t, 30*time.Second, cfg.Env.RefreshInterval)
	assert.Equal(t, ":8080", cfg.Env.HTTPAddr)
	require.Len(t, cfg.Leagues, 1)

	league := cfg.Leagues[0]
	assert.Equal(t, "secret", league.Heltour.Token)
	assert.Equal(t, "zhteam", league.Heltour.LeagueTag)
	assert.Equal(t, "crazyhouse", league.GameLinks.Variant)
	assert.Equal(t, 5, league.GameLinks.Clock.Initial)
	assert.True(t, league.GameLinks.Rated)
	assert.Equal(t, "9001", league.Players["alice"])
}

func TestLoad_MissingLeagueFile(t *testing.T) {
	t.Setenv("LEAGUES_FILE", filepath.Join(t.TempDir(), "nope.yaml"))

	_, err := Load("")

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read league file")
}

func TestLoad_InvalidYAML(t *testing.T) {
	t.Setenv("LEAGUES_FILE", writeLeagues(t, "leagues: [this is: not valid"))

	_, err := Load("")

	assert.Error(t, err)
}

// endregion

// region Validate tests

func validConfig() *Config {
	return &Config{Leagues: []League{{
		Name:      "lonewolf",
		Heltour:   Heltour{BaseEndpoint: "http://heltour/api/"},
		Results:   Channel{ChannelID: "1"},
		GameLinks: GameLinks{ChannelID: "2", Extrema: Extrema{ISOWeekday: 1}},
	}}}
}

func TestValidate_Valid(t *testing.T) {
	assert.NoError(t, validConfig().Validate())
}

func TestValidate_NoLeagues(t *testing.T) {
	err := (&Config{}).Validate()
	assert.EqualError(t, err, "no leagues configured")
}

func TestValidate_DuplicateLeague(t *testing.T) {
	cfg := validConfig()
	cfg.Leagues = append(cfg.Leagues, cfg.Leagues[0])

	err := cfg.Validate()

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "multiple times")
}

func TestValidate_MissingChannel(t *testing.T) {
	cfg := validConfig()
	cfg.Leagues[0].Results.ChannelID = ""

	assert.Error(t, cfg.Validate())
}

func TestValidate_BadWeekday(t *testing.T) {
	cfg := validConfig()
	cfg.Leagues[0].GameLinks.Extrema.ISOWeekday = 8

	assert.Error(t, cfg.Validate())
}

// endregion

// region lookup tests

func TestLeagueForChannel(t *testing.T) {
	cfg := validConfig()
	cfg.Leagues[0].Channels = []string{"general"}

	for _, channel := range []string{"1", "2", "general"} {
		league, ok := cfg.LeagueForChannel(channel)
		assert.True(t, ok, channel)
		assert.Equal(t, "lonewolf", league.Name)
	}

	_, ok := cfg.LeagueForChannel("other")
	assert.False(t, ok)
}

func TestLeague_ByName(t *testing.T) {
	cfg := validConfig()

	_, ok := cfg.League("lonewolf")
	assert.True(t, ok)
	_, ok = cfg.League("45+45")
	assert.False(t, ok)
}

// endregion
