/* utils.go
 * Utility functions used across the application
 */

package main

import (
	"io"
	"log/slog"
	"strings"

	"league-watcher/api/external"
	"league-watcher/config"
)

// parseLogLevel converts a level name into a slog level
// Preconditions: Receives debug, info, warn or error (case insensitive)
// Postconditions: Returns the level, defaulting to info for anything else
func parseLogLevel(str string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(str)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	}
	return slog.LevelInfo
}

// newLogger creates the JSON logger used by every component
func newLogger(level string, out io.Writer) *slog.Logger {
	return slog.New(slog.NewJSONHandler(out, &slog.HandlerOptions{Level: parseLogLevel(level)}))
}

// leagueDefaults are the game settings applied to pairings that heltour returns without them
func leagueDefaults(l config.League) external.Defaults {
	return external.Defaults{
		Clock:   l.GameLinks.Clock,
		Rated:   l.GameLinks.Rated,
		Variant: l.GameLinks.Variant,
	}
}
