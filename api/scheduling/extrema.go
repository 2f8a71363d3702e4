/* extrema.go
 * Contains the round window computation used to check that a game was played in the current round
 */

package scheduling

import (
	"time"

	"league-watcher/api/shared"
	"league-watcher/config"
)

const roundLength = 7 * 24 * time.Hour

// RoundExtrema returns the start and end of the round containing reference. A round ends on the configured ISO weekday
// (1 = Monday .. 7 = Sunday) at hour:minute UTC and starts one week earlier
func RoundExtrema(cfg config.Extrema, reference time.Time) shared.Extrema {
	ref := reference.UTC()

	// time.Weekday counts Sunday as 0, ISO weekdays count it as 7
	target := time.Weekday(cfg.ISOWeekday % 7)
	days := (int(target) - int(ref.Weekday()) + 7) % 7

	end := time.Date(ref.Year(), ref.Month(), ref.Day()+days, cfg.Hour, cfg.Minute, 0, 0, time.UTC)
	if end.Before(ref) {
		end = end.Add(roundLength)
	}

	return shared.Extrema{
		Start: end.Add(-roundLength),
		End:   end,
	}
}

// Scheduler returns round extrema for a league, relative to the current time
type Scheduler struct {
	Extrema config.Extrema
	Now     func() time.Time
}

// GetRoundExtrema returns the window of the current round
func (s Scheduler) GetRoundExtrema() shared.Extrema {
	now := time.Now
	if s.Now != nil {
		now = s.Now
	}
	return RoundExtrema(s.Extrema, now())
}
