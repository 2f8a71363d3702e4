/* scoring.go
 * Contains the logic for deciding how well a streamed game fits a pairing. Every function in this file is pure: they
 * take the game and the pairings and return marks, validation errors or warnings without side effects
 */

package logic

import (
	"sort"
	"strings"
	"time"

	"league-watcher/api/shared"
)

// ScheduleTolerance is how far from the scheduled time a game may start and still count as on schedule
const ScheduleTolerance = 2 * time.Hour

// Marks holds the criteria a game is scored against for one pairing
type Marks struct {
	CorrectColors        bool
	ColorsReversed       bool
	CorrectScheduledTime bool
	CorrectTimeControl   bool
	CorrectRatingType    bool
	CorrectVariantType   bool
	HasResult            bool
	HasGameLink          bool
	HasIncorrectGameLink bool
}

// MarkedPairing is a candidate pairing together with its marks
type MarkedPairing struct {
	Pairing shared.Pairing
	Marks   Marks
}

// ValidationError is a problem with the game itself that prevents it from counting, whatever pairing it matches
type ValidationError struct {
	Label  string
	Reason string
}

// Validation labels
const (
	LabelPlayedOutOfRound = "gamePlayedOutOfRound"
	LabelVictoryClaimed   = "victoryClaimed"
	LabelCheatDetected    = "cheatDetected"
)

// ScorePairing computes the marks of a game against a single pairing
// Preconditions: Receives a decoded game event and a candidate pairing
// Postconditions: Returns the marks, neither argument is modified
func ScorePairing(game shared.GameEvent, pairing shared.Pairing) Marks {
	white, black := game.White(), game.Black()
	wrongLink := pairing.GameLink != "" && !strings.HasSuffix(pairing.GameLink, game.ID)

	return Marks{
		CorrectColors:        white == pairing.White && black == pairing.Black,
		ColorsReversed:       strings.EqualFold(pairing.White, black),
		CorrectScheduledTime: onSchedule(game, pairing),
		CorrectTimeControl: game.Clock != nil &&
			game.Clock.Initial == pairing.Clock.Initial*60 &&
			game.Clock.Increment == pairing.Clock.Increment,
		CorrectRatingType:    game.Rated == pairing.Rated,
		CorrectVariantType:   game.Variant == pairing.Variant,
		HasResult:            pairing.Result != "" && game.Status == shared.StatusStarted,
		HasGameLink:          wrongLink,
		HasIncorrectGameLink: wrongLink,
	}
}

func onSchedule(game shared.GameEvent, pairing shared.Pairing) bool {
	if pairing.Datetime == nil {
		return false
	}
	diff := game.CreatedAt().Sub(pairing.Datetime.UTC())
	if diff < 0 {
		diff = -diff
	}
	return diff <= ScheduleTolerance
}

// MarkPairings scores every candidate, keeping the order of the input
func MarkPairings(game shared.GameEvent, pairings []shared.Pairing) []MarkedPairing {
	marked := make([]MarkedPairing, 0, len(pairings))
	for _, p := range pairings {
		marked = append(marked, MarkedPairing{Pairing: p, Marks: ScorePairing(game, p)})
	}
	return marked
}

// IsPerfect reports whether the marks allow the game to be bound to the pairing automatically
func (m Marks) IsPerfect() bool {
	return m.CorrectColors &&
		m.CorrectTimeControl &&
		m.CorrectRatingType &&
		m.CorrectVariantType &&
		!m.HasResult &&
		!m.HasIncorrectGameLink
}

// IsClose reports whether the game looks like a failed attempt at playing the pairing
func (m Marks) IsClose() bool {
	return (m.CorrectColors || m.ColorsReversed) && m.CorrectScheduledTime
}

// PerfectMatch returns the first perfectly matching candidate in list order
func PerfectMatch(marked []MarkedPairing) (MarkedPairing, bool) {
	for _, mp := range marked {
		if mp.Marks.IsPerfect() {
			return mp, true
		}
	}
	return MarkedPairing{}, false
}

// CloseMatches returns the close candidates with the ones that have the correct colors first. Candidates that tie keep
// their original order
func CloseMatches(marked []MarkedPairing) []MarkedPairing {
	var matches []MarkedPairing
	for _, mp := range marked {
		if mp.Marks.IsClose() {
			matches = append(matches, mp)
		}
	}
	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Marks.CorrectColors && !matches[j].Marks.CorrectColors
	})
	return matches
}

// CloseMatchWarnings builds the explanation sent to the players when their game only comes close to the pairing
// Preconditions: Receives the selected close match
// Postconditions: Returns one human readable line per failed criterion, in a fixed order
func CloseMatchWarnings(closest MarkedPairing) []string {
	marks, pairing := closest.Marks, closest.Pairing
	var warnings []string

	if !marks.CorrectTimeControl {
		warnings = append(warnings, "The time control is incorrect.")
	}
	if marks.ColorsReversed {
		warnings = append(warnings, "The colors are reversed.")
	}
	if !marks.CorrectRatingType {
		if pairing.Rated {
			warnings = append(warnings, "The game is unrated, but it must be rated.")
		} else {
			warnings = append(warnings, "The game is rated, but it must be unrated.")
		}
	}
	if !marks.CorrectVariantType {
		warnings = append(warnings, "The variant should be "+pairing.Variant+".")
	}
	if marks.HasResult {
		warnings = append(warnings, "There is already a result set for this pairing. If you want "+
			"the new game to count for the league, please contact a mod.")
	}
	if marks.HasIncorrectGameLink {
		warnings = append(warnings, "This pairing is already linked to a different game. If you want "+
			"the new game to count for the league, please contact a mod.")
	}
	return warnings
}

// ValidateGame checks the rules that apply to the game whatever pairing it belongs to
// Preconditions: Receives the game and the window of the current round
// Postconditions: Returns the list of broken rules, empty if the game is valid
func ValidateGame(game shared.GameEvent, round shared.Extrema) []ValidationError {
	var errs []ValidationError

	start := game.CreatedAt()
	if start.Before(round.Start) || start.After(round.End) {
		errs = append(errs, ValidationError{
			Label:  LabelPlayedOutOfRound,
			Reason: "the game was not played in the current round.",
		})
	}
	if game.Status == shared.StatusTimeout {
		errs = append(errs, ValidationError{
			Label:  LabelVictoryClaimed,
			Reason: "using \"Claim Victory\" is not permitted. Contact a mod.",
		})
	}
	if game.Status == shared.StatusCheat {
		errs = append(errs, ValidationError{
			Label:  LabelCheatDetected,
			Reason: "The game ended with a \"Cheat Detected\". Contact a mod.",
		})
	}
	return errs
}

// Reasons returns the human readable reason of every validation error
func Reasons(errs []ValidationError) []string {
	reasons := make([]string, 0, len(errs))
	for _, e := range errs {
		reasons = append(reasons, e.Reason)
	}
	return reasons
}
