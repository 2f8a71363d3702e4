/* league.go
 * Contains the League type: the in-memory view of the pairings of the current round of one league. Pairings are
 * refreshed from heltour on demand and listeners (the watcher) are told about every successful refresh
 */

package league

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"league-watcher/api/metrics"
	"league-watcher/api/shared"
	"league-watcher/api/store"
	"league-watcher/config"

	"github.com/google/go-cmp/cmp"
)

// snapshotRefresh is how often an unchanged pairing set is stored again, keeping its expiry ahead of the round
const snapshotRefresh = time.Hour

// PairingSource fetches the pairings of the current round
type PairingSource interface {
	GetAllPairings(ctx context.Context) ([]shared.Pairing, error)
}

// SnapshotStore keeps the last fetched pairings across restarts
type SnapshotStore interface {
	SaveSnapshot(ctx context.Context, league string, pairings []shared.Pairing) error
	LoadSnapshot(ctx context.Context, league string) ([]shared.Pairing, error)
}

// League holds the current round of one league
type League struct {
	cfg       config.League
	source    PairingSource
	snapshots SnapshotStore
	logger    *slog.Logger
	metrics   *metrics.Metrics
	mentions  map[string]string
	now       func() time.Time

	refreshMu sync.Mutex // serialises refreshes so listeners see sets in fetch order
	saved     []shared.Pairing
	savedAt   time.Time

	mu          sync.RWMutex
	pairings    []shared.Pairing
	refreshedAt time.Time
	listeners   []func([]shared.Pairing)
}

// Options are the optional collaborators of a League
type Options struct {
	Snapshots SnapshotStore
	Logger    *slog.Logger
	Metrics   *metrics.Metrics
}

// New creates a league with no pairings. snapshots may be nil
func New(cfg config.League, source PairingSource, opts Options) *League {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	mentions := make(map[string]string, len(cfg.Players))
	for player, discordID := range cfg.Players {
		mentions[strings.ToLower(player)] = discordID
	}
	return &League{
		cfg:       cfg,
		source:    source,
		snapshots: opts.Snapshots,
		logger:    logger.With("league", cfg.Name, "component", "league"),
		metrics:   opts.Metrics,
		mentions:  mentions,
		now:       time.Now,
	}
}

// Name returns the league name
func (l *League) Name() string {
	return l.cfg.Name
}

// Config returns the league settings
func (l *League) Config() config.League {
	return l.cfg
}

// OnPairingsRefreshed registers a listener called with a copy of the pairings after every refresh
func (l *League) OnPairingsRefreshed(listener func([]shared.Pairing)) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.listeners = append(l.listeners, listener)
}

// RefreshCurrentRoundSchedules fetches the pairings of the current round and replaces the in-memory view
// Preconditions: Receives a context bounding the heltour request
// Postconditions: On success the pairings are replaced, the snapshot saved and the listeners notified. On failure the
// previous pairings are kept and the error returned
func (l *League) RefreshCurrentRoundSchedules(ctx context.Context) error {
	l.refreshMu.Lock()
	defer l.refreshMu.Unlock()

	pairings, err := l.source.GetAllPairings(ctx)
	if err != nil {
		l.metrics.RefreshFailed(l.cfg.Name)
		return fmt.Errorf("failed to refresh pairings of %s: %w", l.cfg.Name, err)
	}

	l.replace(pairings)
	l.saveSnapshot(ctx, pairings)
	return nil
}

// saveSnapshot stores the pairings unless the same set was stored less than snapshotRefresh ago. Callers hold refreshMu
func (l *League) saveSnapshot(ctx context.Context, pairings []shared.Pairing) {
	if l.snapshots == nil {
		return
	}
	now := l.now()
	if cmp.Equal(pairings, l.saved) && now.Sub(l.savedAt) < snapshotRefresh {
		return
	}
	if err := l.snapshots.SaveSnapshot(ctx, l.cfg.Name, pairings); err != nil {
		l.logger.Warn("failed to save pairing snapshot", "error", err)
		return
	}
	l.saved = append([]shared.Pairing(nil), pairings...)
	l.savedAt = now
}

// Prime loads the last stored snapshot so the watcher can subscribe before heltour answers. A missing snapshot is not
// an error
func (l *League) Prime(ctx context.Context) error {
	if l.snapshots == nil {
		return nil
	}
	pairings, err := l.snapshots.LoadSnapshot(ctx, l.cfg.Name)
	if err != nil {
		if errors.Is(err, store.ErrNoSnapshot) {
			return nil
		}
		return fmt.Errorf("failed to load snapshot of %s: %w", l.cfg.Name, err)
	}

	l.refreshMu.Lock()
	defer l.refreshMu.Unlock()
	l.logger.Info("loaded pairing snapshot", "pairings", len(pairings))
	l.replace(pairings)
	l.saved = append([]shared.Pairing(nil), pairings...)
	return nil
}

func (l *League) replace(pairings []shared.Pairing) {
	l.mu.Lock()
	l.pairings = append([]shared.Pairing(nil), pairings...)
	l.refreshedAt = l.now()
	listeners := append([]func([]shared.Pairing){}, l.listeners...)
	l.mu.Unlock()

	for _, listener := range listeners {
		listener(append([]shared.Pairing(nil), pairings...))
	}
}

// Update replaces a single pairing (matched by id) with the version returned by heltour
func (l *League) Update(pairing shared.Pairing) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for i := range l.pairings {
		if l.pairings[i].ID == pairing.ID {
			l.pairings[i] = pairing
			return
		}
	}
}

// Pairings returns a copy of the current pairings
func (l *League) Pairings() []shared.Pairing {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return append([]shared.Pairing(nil), l.pairings...)
}

// RefreshedAt returns when the pairings were last replaced
func (l *League) RefreshedAt() time.Time {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.refreshedAt
}

// FindPairing returns every pairing between the two players in either color order, in heltour order
func (l *League) FindPairing(white, black string) []shared.Pairing {
	l.mu.RLock()
	defer l.mu.RUnlock()

	var found []shared.Pairing
	for _, p := range l.pairings {
		if p.Involves(white, black) {
			found = append(found, p)
		}
	}
	return found
}

// PairingByGameID returns the pairing a game is already bound to
func (l *League) PairingByGameID(gameID string) (shared.Pairing, bool) {
	if gameID == "" {
		return shared.Pairing{}, false
	}

	l.mu.RLock()
	defer l.mu.RUnlock()
	for _, p := range l.pairings {
		if p.GameID == gameID || (p.GameLink != "" && strings.HasSuffix(p.GameLink, "/"+gameID)) {
			return p, true
		}
	}
	return shared.Pairing{}, false
}

// Mention renders a player for a chat message: a discord mention if the player is known, otherwise their name in bold
func (l *League) Mention(player string) string {
	if id, ok := l.mentions[strings.ToLower(player)]; ok && id != "" {
		return "<@" + id + ">"
	}
	return "**" + player + "**"
}

// RunRefreshLoop refreshes the pairings every interval until ctx is cancelled. Failures are logged and the loop keeps
// going
func (l *League) RunRefreshLoop(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := l.RefreshCurrentRoundSchedules(ctx); err != nil {
				l.logger.Warn("scheduled pairing refresh failed", "error", err)
			}
		}
	}
}
