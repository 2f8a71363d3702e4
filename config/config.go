/* config.go
 * Contains the configuration for the watcher. Secrets and process settings come from the environment (optionally via a
 * .env file), the leagues being watched come from a YAML file
 */

package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"league-watcher/api/shared"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	DefaultWatcherBaseURL = "https://lichess.org/api/stream/games-by-users"
	DefaultLichessBaseURL = "https://lichess.org/"
)

// Env holds the settings read from environment variables
type Env struct {
	DiscordToken    string        `env:"DISCORD_TOKEN"`
	HeltourToken    string        `env:"HELTOUR_TOKEN"`
	MongoURI        string        `env:"MONGO_URI"`
	MongoDatabase   string        `env:"MONGO_DATABASE" envDefault:"league_watcher"`
	HTTPAddr        string        `env:"HTTP_ADDR" envDefault:":8080"`
	RefreshInterval time.Duration `env:"REFRESH_INTERVAL" envDefault:"2m"`
	LeaguesFile     string        `env:"LEAGUES_FILE" envDefault:"leagues.yaml"`
	LogLevel        string        `env:"LOG_LEVEL" envDefault:"info"`
	RequestsPerSec  float64       `env:"REQUESTS_PER_SECOND" envDefault:"2"`
	WebhookSecret   string        `env:"HELTOUR_WEBHOOK_SECRET"`
}

// File is the YAML league file
type File struct {
	WatcherBaseURL string   `yaml:"watcher_base_url"`
	LichessBaseURL string   `yaml:"lichess_base_url"`
	Leagues        []League `yaml:"leagues"`
}

// League holds the settings for one watched league
type League struct {
	Name      string            `yaml:"name"`
	Heltour   Heltour           `yaml:"heltour"`
	Results   Channel           `yaml:"results"`
	GameLinks GameLinks         `yaml:"gamelinks"`
	Players   map[string]string `yaml:"players"`  // lichess id -> discord user id
	Channels  []string          `yaml:"channels"` // discord channels whose commands refer to this league
}

// Heltour holds the league management endpoint for a league
type Heltour struct {
	BaseEndpoint string `yaml:"base_endpoint"`
	LeagueTag    string `yaml:"league_tag"`
	Token        string `yaml:"token"`
}

// Channel is a discord channel
type Channel struct {
	ChannelID string `yaml:"channel_id"`
}

// GameLinks holds the game link channel and the rules a league game must follow
type GameLinks struct {
	ChannelID string       `yaml:"channel_id"`
	Clock     shared.Clock `yaml:"clock"`
	Rated     bool         `yaml:"rated"`
	Variant   string       `yaml:"variant"`
	Extrema   Extrema      `yaml:"extrema"`
}

// Extrema describes when a round ends. Rounds are one week long
type Extrema struct {
	ISOWeekday   int `yaml:"iso_weekday"`
	Hour         int `yaml:"hour"`
	Minute       int `yaml:"minute"`
	WarningHours int `yaml:"warning_hours"`
}

// Config is the full configuration of the process
type Config struct {
	Env            Env
	WatcherBaseURL string
	LichessBaseURL string
	Leagues        []League
}

// Load reads the .env file if present, the environment and the league file named by LEAGUES_FILE
// Preconditions: envFile may name a file that does not exist
// Postconditions: Returns the validated configuration, or an error if any source is invalid
func Load(envFile string) (*Config, error) {
	if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load %s: %w", envFile, err)
	}

	var e Env
	if err := env.Parse(&e); err != nil {
		return nil, fmt.Errorf("failed to parse environment: %w", err)
	}

	file, err := LoadLeagues(e.LeaguesFile)
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		Env:            e,
		WatcherBaseURL: file.WatcherBaseURL,
		LichessBaseURL: file.LichessBaseURL,
		Leagues:        file.Leagues,
	}
	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadLeagues reads and unmarshals the YAML league file
func LoadLeagues(path string) (File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return File{}, fmt.Errorf("failed to read league file: %w", err)
	}

	var file File
	if err := yaml.Unmarshal(data, &file); err != nil {
		return File{}, fmt.Errorf("failed to unmarshal league file: %w", err)
	}
	return file, nil
}

func (c *Config) applyDefaults() {
	if c.WatcherBaseURL == "" {
		c.WatcherBaseURL = DefaultWatcherBaseURL
	}
	if c.LichessBaseURL == "" {
		c.LichessBaseURL = DefaultLichessBaseURL
	}
	if !strings.HasSuffix(c.LichessBaseURL, "/") {
		c.LichessBaseURL += "/"
	}
	for i := range c.Leagues {
		l := &c.Leagues[i]
		if l.Heltour.Token == "" {
			l.Heltour.Token = c.Env.HeltourToken
		}
		if l.Heltour.LeagueTag == "" {
			l.Heltour.LeagueTag = l.Name
		}
		if l.GameLinks.Variant == "" {
			l.GameLinks.Variant = "standard"
		}
	}
}

// Validate checks that every league can be watched
func (c *Config) Validate() error {
	if len(c.Leagues) == 0 {
		return fmt.Errorf("no leagues configured")
	}

	seen := make(map[string]bool)
	for _, l := range c.Leagues {
		if l.Name == "" {
			return fmt.Errorf("league without a name")
		}
		if seen[l.Name] {
			return fmt.Errorf("league '%s' configured multiple times", l.Name)
		}
		seen[l.Name] = true

		if l.Heltour.BaseEndpoint == "" {
			return fmt.Errorf("league '%s': heltour base_endpoint is required", l.Name)
		}
		if l.GameLinks.ChannelID == "" || l.Results.ChannelID == "" {
			return fmt.Errorf("league '%s': gamelinks and results channel ids are required", l.Name)
		}
		if l.GameLinks.Extrema.ISOWeekday < 1 || l.GameLinks.Extrema.ISOWeekday > 7 {
			return fmt.Errorf("league '%s': extrema iso_weekday must be between 1 and 7", l.Name)
		}
	}
	return nil
}

// League returns the league with the given name
func (c *Config) League(name string) (League, bool) {
	for _, l := range c.Leagues {
		if l.Name == name {
			return l, true
		}
	}
	return League{}, false
}

// LeagueForChannel returns the league a discord channel belongs to. Results and game link channels count as well
func (c *Config) LeagueForChannel(channelID string) (League, bool) {
	for _, l := range c.Leagues {
		if l.GameLinks.ChannelID == channelID || l.Results.ChannelID == channelID {
			return l, true
		}
		for _, ch := range l.Channels {
			if ch == channelID {
				return l, true
			}
		}
	}
	return League{}, false
}
