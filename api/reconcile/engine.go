/* engine.go
 * Contains the reconciliation engine. Every decoded game event is classified as the continuation of a game already
 * bound to a pairing, a perfect match for a pairing, a close match that only deserves a warning, or an unrelated game.
 * The engine then drives the side effects: binding the game link, recording the result, warning the players
 */

package reconcile

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"league-watcher/api/events"
	"league-watcher/api/external"
	"league-watcher/api/logic"
	"league-watcher/api/metrics"
	"league-watcher/api/shared"
)

// Disposition is the decision taken for one event
type Disposition string

const (
	NoPairing         Disposition = "no_pairing"
	NoMatch           Disposition = "no_match"
	BoundGame         Disposition = "bound_game"
	ValidationWarning Disposition = "validation_warning"
	CloseMatchWarning Disposition = "close_match_warning"
	ResultRecorded    Disposition = "result_recorded"
	GameAborted       Disposition = "game_aborted"
	ClaimRejected     Disposition = "claim_rejected"
	AbnormalResult    Disposition = "abnormal_result"
	ResultKept        Disposition = "result_kept"
	Failed            Disposition = "failed"
)

// PairingStore is the in-memory view of the current round
type PairingStore interface {
	FindPairing(white, black string) []shared.Pairing
	PairingByGameID(gameID string) (shared.Pairing, bool)
	Update(pairing shared.Pairing)
	Mention(player string) string
}

// Repository persists pairing mutations
type Repository interface {
	UpdatePairing(ctx context.Context, pairing shared.Pairing, update external.PairingUpdate) (shared.Pairing, error)
	BindGame(ctx context.Context, pairing shared.Pairing, gameID string) (shared.Pairing, error)
	SendGameWarning(ctx context.Context, white, black string, reasons []string) error
}

// GameDetailer resolves the final state of a game
type GameDetailer interface {
	GetGame(ctx context.Context, gameID string) (external.GameDetail, error)
	GameIDToLink(gameID string) string
}

// ExtremaProvider returns the window of the current round
type ExtremaProvider interface {
	GetRoundExtrema() shared.Extrema
}

// Notifier posts chat messages. Delivery failures are handled by the notifier
type Notifier interface {
	Say(msg shared.Message)
}

// Ledger stores the decisions of the engine
type Ledger interface {
	RecordDisposition(ctx context.Context, record shared.DispositionRecord) error
}

// Config holds the league settings the engine needs
type Config struct {
	League           string
	GameLinksChannel string
	ResultsChannel   string
}

// Deps are the collaborators of an engine. Bus, Ledger, Logger and Metrics are optional
type Deps struct {
	Pairings   PairingStore
	Repository Repository
	Games      GameDetailer
	Extrema    ExtremaProvider
	Notifier   Notifier
	Bus        *events.Bus
	Ledger     Ledger
	Logger     *slog.Logger
	Metrics    *metrics.Metrics
}

// Engine classifies the events of one league
type Engine struct {
	cfg    Config
	deps   Deps
	logger *slog.Logger
	now    func() time.Time
}

// NewEngine creates the engine of a league
func NewEngine(cfg Config, deps Deps) *Engine {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{
		cfg:    cfg,
		deps:   deps,
		logger: logger.With("league", cfg.League, "component", "reconcile"),
		now:    time.Now,
	}
}

// outcome is what a single event led to, recorded once processing finishes
type outcome struct {
	disposition Disposition
	pairingID   string
	warnings    []string
}

// Process classifies one event and performs the resulting side effects
// Preconditions: The pairing store was refreshed for this event. ctx bounds every collaborator call
// Postconditions: Returns the disposition taken. Collaborator failures are logged and reported as Failed, they are
// never returned to the caller
func (e *Engine) Process(ctx context.Context, chunkID string, game shared.GameEvent) Disposition {
	log := e.logger.With("chunk_id", chunkID, "game_id", game.ID)

	var out outcome
	if pairing, ok := e.deps.Pairings.PairingByGameID(game.ID); ok {
		out = e.processResult(ctx, log, pairing, game)
	} else {
		out = e.processNewGame(ctx, log, game)
	}

	e.deps.Metrics.Disposition(e.cfg.League, string(out.disposition))
	e.record(ctx, log, chunkID, game, out)
	return out.disposition
}

func (e *Engine) record(ctx context.Context, log *slog.Logger, chunkID string, game shared.GameEvent, out outcome) {
	// Games between league players that match nothing are noise, only decisions about pairings are kept
	if e.deps.Ledger == nil || out.disposition == NoPairing || out.disposition == NoMatch {
		return
	}
	err := e.deps.Ledger.RecordDisposition(ctx, shared.DispositionRecord{
		League:      e.cfg.League,
		EventID:     game.ID,
		White:       game.White(),
		Black:       game.Black(),
		Status:      game.Status.String(),
		Disposition: string(out.disposition),
		PairingID:   out.pairingID,
		Warnings:    out.warnings,
		ChunkID:     chunkID,
		At:          e.now().UTC(),
	})
	if err != nil {
		log.Warn("failed to record disposition", "error", err)
	}
}

// region new games

func (e *Engine) processNewGame(ctx context.Context, log *slog.Logger, game shared.GameEvent) outcome {
	white, black := game.White(), game.Black()

	candidates := e.deps.Pairings.FindPairing(white, black)
	if len(candidates) == 0 {
		log.Debug("no pairing, ignoring game", "white", white, "black", black)
		return outcome{disposition: NoPairing}
	}

	validationErrors := logic.ValidateGame(game, e.deps.Extrema.GetRoundExtrema())
	marked := logic.MarkPairings(game, candidates)

	if match, ok := logic.PerfectMatch(marked); ok {
		pairing := match.Pairing
		// An aborted game never counts, there is nothing to bind
		if game.Status == shared.StatusAborted {
			log.Info("ignoring aborted game", "pairing_id", pairing.ID)
			return outcome{disposition: NoMatch}
		}
		// A stored result stays until a mod clears it, a finished game seen for the first time cannot replace it
		if pairing.Result != "" && game.Status.IsNormalTermination() {
			log.Info("pairing already has a result, keeping it", "pairing_id", pairing.ID, "result", pairing.Result)
			return outcome{disposition: ResultKept, pairingID: pairing.ID}
		}
		if len(validationErrors) > 0 {
			reasons := logic.Reasons(validationErrors)
			e.warnClose(ctx, log, reasons, white, black)
			return outcome{disposition: ValidationWarning, pairingID: pairing.ID, warnings: reasons}
		}
		if !match.Marks.CorrectScheduledTime {
			e.warnWrongTime(log, pairing)
		}

		bound, err := e.bindGame(ctx, log, game, pairing)
		if err != nil {
			return outcome{disposition: Failed, pairingID: pairing.ID}
		}

		// The start of the game was missed, settle it now
		if game.Status.IsNormalTermination() {
			return e.processResult(ctx, log, bound, game)
		}
		return outcome{disposition: BoundGame, pairingID: pairing.ID}
	}

	closeMatches := logic.CloseMatches(marked)
	if len(closeMatches) > 0 {
		closest := closeMatches[0]
		warnings := append(logic.CloseMatchWarnings(closest), logic.Reasons(validationErrors)...)
		e.warnClose(ctx, log, warnings, white, black)
		return outcome{disposition: CloseMatchWarning, pairingID: closest.Pairing.ID, warnings: warnings}
	}

	log.Info("ignoring game", "white", white, "black", black, "candidates", len(candidates))
	return outcome{disposition: NoMatch}
}

func (e *Engine) bindGame(ctx context.Context, log *slog.Logger, game shared.GameEvent, pairing shared.Pairing) (shared.Pairing, error) {
	log.Info("assigning game to pairing", "pairing_id", pairing.ID)

	bound, err := e.deps.Repository.BindGame(ctx, pairing, game.ID)
	if err != nil {
		log.Error("error assigning game link to pairing", "pairing_id", pairing.ID, "error", err)
		return shared.Pairing{}, err
	}
	if bound.GameID == "" {
		bound.GameID = game.ID
	}
	e.deps.Pairings.Update(bound)

	link := e.deps.Games.GameIDToLink(game.ID)
	e.deps.Notifier.Say(shared.Message{
		Text:      e.mention(pairing.White) + " vs " + e.mention(pairing.Black) + ": <" + link + ">",
		ChannelID: e.cfg.GameLinksChannel,
	})
	if e.deps.Bus != nil {
		e.deps.Bus.PublishGameStarted(events.GameStarted{
			League: e.cfg.League,
			White:  pairing.White,
			Black:  pairing.Black,
			GameID: game.ID,
			Link:   link,
		})
	}
	return bound, nil
}

func (e *Engine) warnClose(ctx context.Context, log *slog.Logger, warnings []string, white, black string) {
	log.Info("sending warning", "white", white, "black", black, "warnings", len(warnings))

	e.deps.Notifier.Say(shared.Message{
		Text: e.mention(white) + ", " + e.mention(black) + ": Your game is *not valid* because:\n" +
			strings.Join(warnings, "\n"),
		ChannelID: e.cfg.GameLinksChannel,
	})
	e.deps.Notifier.Say(shared.Message{
		Text: "If this was a mistake, please correct it and try again. If this is not a league game, you " +
			"may ignore this message. Thank you.",
		ChannelID: e.cfg.GameLinksChannel,
	})

	if err := e.deps.Repository.SendGameWarning(ctx, white, black, warnings); err != nil {
		log.Error("error sending game warning", "error", err)
	}
}

func (e *Engine) warnWrongTime(log *slog.Logger, pairing shared.Pairing) {
	log.Info("game being played at wrong time", "pairing_id", pairing.ID)

	e.deps.Notifier.Say(shared.Message{
		Text: e.mention(pairing.White) + ", " + e.mention(pairing.Black) + ": " +
			"Registering game even though it's not being played at the scheduled time. " +
			"If this is an error please contact a mod.",
		ChannelID: e.cfg.GameLinksChannel,
	})
}

// endregion

// region results

func (e *Engine) processResult(ctx context.Context, log *slog.Logger, pairing shared.Pairing, game shared.GameEvent) outcome {
	switch {
	case game.Status == shared.StatusAborted:
		updated, err := e.deps.Repository.UpdatePairing(ctx, pairing, external.ClearGameLink())
		if err != nil {
			log.Error("error clearing game link of aborted game", "pairing_id", pairing.ID, "error", err)
			return outcome{disposition: Failed, pairingID: pairing.ID}
		}
		e.deps.Pairings.Update(updated)
		log.Info("game aborted", "pairing_id", pairing.ID)
		return outcome{disposition: GameAborted, pairingID: pairing.ID}

	case game.Status == shared.StatusTimeout:
		log.Info("game terminated by claim victory or claim draw", "pairing_id", pairing.ID)
		link := pairing.GameLink
		if link == "" {
			link = e.deps.Games.GameIDToLink(game.ID)
		}
		e.deps.Notifier.Say(shared.Message{
			Text: e.mention(pairing.White) + " " + e.mention(pairing.Black) + " Claim Victory/Draw is " +
				"not allowed. Please contact a mod\n<" + link + ">",
			ChannelID: e.cfg.GameLinksChannel,
		})
		return outcome{disposition: ClaimRejected, pairingID: pairing.ID}

	case game.Status.IsNormalTermination():
		return e.bindResult(ctx, log, pairing, game)
	}

	log.Info("game result abnormal", "pairing_id", pairing.ID, "status", game.Status.String())
	return outcome{disposition: AbnormalResult, pairingID: pairing.ID}
}

func (e *Engine) bindResult(ctx context.Context, log *slog.Logger, pairing shared.Pairing, game shared.GameEvent) outcome {
	detail, err := e.deps.Games.GetGame(ctx, game.ID)
	if err != nil {
		log.Error("error fetching game details", "error", err)
		return outcome{disposition: Failed, pairingID: pairing.ID}
	}
	result := logic.ParseResult(detail.Winner)

	updated, err := e.deps.Repository.UpdatePairing(ctx, pairing, external.WithResult(result))
	if err != nil {
		log.Error("error trying to save result", "pairing_id", pairing.ID, "error", err)
		return outcome{disposition: Failed, pairingID: pairing.ID}
	}
	e.deps.Pairings.Update(updated)

	e.deps.Notifier.Say(shared.Message{
		Text:      e.mention(pairing.White) + " " + result + " " + e.mention(pairing.Black),
		ChannelID: e.cfg.ResultsChannel,
	})
	if e.deps.Bus != nil {
		e.deps.Bus.PublishGameOver(events.GameOver{
			League: e.cfg.League,
			White:  pairing.White,
			Black:  pairing.Black,
			GameID: game.ID,
			Result: result,
		})
	}
	log.Info("result recorded", "pairing_id", pairing.ID, "result", result)
	return outcome{disposition: ResultRecorded, pairingID: pairing.ID}
}

// endregion

func (e *Engine) mention(player string) string {
	return e.deps.Pairings.Mention(player)
}
