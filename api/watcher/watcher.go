/* watcher.go
 * Contains the Watcher: the long lived games-by-users stream of one league. The watcher keeps exactly one transport
 * open, resubscribes when the players of the league change and hands every decoded event to the reconciliation engine
 * after refreshing the pairings
 */

package watcher

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"time"

	"league-watcher/api/metrics"
	"league-watcher/api/reconcile"
	"league-watcher/api/shared"

	"github.com/google/uuid"
)

// BackoffTimeout is the minimum time between two connection attempts. A second attempt inside this window clears the
// watch list instead of connecting
const BackoffTimeout = 10 * time.Second

// maxLineSize bounds a single event line of the stream
const maxLineSize = 1 << 20

// State is the lifecycle state of the connection
type State int

const (
	Idle State = iota
	Connecting
	Streaming
	Closed
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Connecting:
		return "connecting"
	case Streaming:
		return "streaming"
	case Closed:
		return "closed"
	}
	return "unknown"
}

// Transport opens the event stream for a comma separated list of players
type Transport interface {
	OpenGameStream(ctx context.Context, body string) (io.ReadCloser, error)
}

// Refresher refreshes the pairings of the current round
type Refresher interface {
	RefreshCurrentRoundSchedules(ctx context.Context) error
}

// Processor classifies a decoded event
type Processor interface {
	Process(ctx context.Context, chunkID string, game shared.GameEvent) reconcile.Disposition
}

// Deps are the collaborators of a watcher. Logger, Metrics and Now are optional
type Deps struct {
	Transport Transport
	Refresher Refresher
	Processor Processor
	Logger    *slog.Logger
	Metrics   *metrics.Metrics
	Now       func() time.Time
}

// Status is a snapshot of the watcher for reporting
type Status struct {
	League    string    `json:"league"`
	State     string    `json:"state"`
	Players   []string  `json:"players"`
	StartedAt time.Time `json:"started_at"`
}

// Watcher owns the stream of one league
type Watcher struct {
	league  string
	deps    Deps
	logger  *slog.Logger
	now     func() time.Time
	backoff time.Duration

	// lifetime context, cancelled by Stop. Collaborator calls run under it so that aborting a transport does not
	// cancel the classification of the event that caused the abort
	ctx  context.Context
	stop context.CancelFunc
	wg   sync.WaitGroup

	mu            sync.Mutex
	state         State
	usernames     []string
	cancel        context.CancelFunc // live transport handle, nil when none is open
	done          chan struct{}      // closed when the goroutine of the latest transport exits
	generation    uint64
	startedAt     time.Time
	lastStartedAt time.Time
}

// New creates an idle watcher for a league. Nothing is opened until the watch list is set
func New(league string, deps Deps) *Watcher {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	now := deps.Now
	if now == nil {
		now = time.Now
	}
	ctx, stop := context.WithCancel(context.Background())
	return &Watcher{
		league:  league,
		deps:    deps,
		logger:  logger.With("league", league, "component", "watcher"),
		now:     now,
		backoff: BackoffTimeout,
		ctx:     ctx,
		stop:    stop,
		state:   Idle,
	}
}

// League returns the name of the watched league
func (w *Watcher) League() string {
	return w.league
}

// Watch (re)starts the stream. If a transport is open it is aborted and Watch returns, the end of that stream starts
// the next one so two transports never race
func (w *Watcher) Watch() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.watchLocked()
}

func (w *Watcher) watchLocked() {
	if w.state == Closed {
		return
	}

	if w.cancel != nil {
		w.cancel()
		w.cancel = nil
		return
	}

	if len(w.usernames) == 0 {
		w.state = Idle
		return
	}

	w.lastStartedAt = w.startedAt
	w.startedAt = w.now()
	if !w.lastStartedAt.IsZero() {
		if since := w.startedAt.Sub(w.lastStartedAt); since < w.backoff {
			w.logger.Warn("backing off the watcher due to two starts in a row", "since", since, "threshold", w.backoff)
			w.usernames = nil
			w.state = Idle
			w.deps.Metrics.BackedOff(w.league)
			w.deps.Metrics.SetWatched(w.league, 0)
			return
		}
	}

	body := strings.Join(w.usernames, ",")
	ctx, cancel := context.WithCancel(w.ctx)
	prev := w.done
	done := make(chan struct{})

	w.cancel = cancel
	w.done = done
	w.generation++
	w.state = Connecting

	w.logger.Info("watching", "players", len(w.usernames))
	w.wg.Add(1)
	go w.stream(ctx, cancel, w.generation, body, prev, done)
}

// stream runs one transport from open to end, then hands control to ended
func (w *Watcher) stream(ctx context.Context, cancel context.CancelFunc, gen uint64, body string, prev, done chan struct{}) {
	defer w.wg.Done()
	defer close(done)

	// The previous transport was aborted before this one was started, wait for it to be released
	if prev != nil {
		select {
		case <-prev:
		case <-ctx.Done():
		}
	}

	if ctx.Err() == nil {
		reader, err := w.deps.Transport.OpenGameStream(ctx, body)
		if err != nil {
			w.logger.Error("failed to open stream", "error", err)
		} else {
			w.setStreaming(gen)
			w.deps.Metrics.StreamStarted(w.league)
			w.read(ctx, cancel, reader)
			reader.Close()
		}
	}

	w.ended(gen)
}

func (w *Watcher) setStreaming(gen uint64) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if gen == w.generation && w.state == Connecting {
		w.state = Streaming
	}
}

// read processes the stream line by line. Each line is handled to completion before the next one is read
func (w *Watcher) read(ctx context.Context, cancel context.CancelFunc, reader io.Reader) {
	scanner := bufio.NewScanner(reader)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)

	for scanner.Scan() {
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			// keep-alive
			continue
		}

		var game shared.GameEvent
		if err := json.Unmarshal(line, &game); err != nil {
			w.logger.Error("ending request due to error in content", "error", err)
			w.deps.Metrics.DecodeFailed(w.league)
			cancel()
			return
		}
		w.handle(game)
	}

	if err := scanner.Err(); err != nil && ctx.Err() == nil {
		w.logger.Error("stream failed", "error", err)
	}
}

func (w *Watcher) handle(game shared.GameEvent) {
	chunkID := uuid.NewString()
	start := time.Now()
	log := w.logger.With("chunk_id", chunkID, "game_id", game.ID)

	w.deps.Metrics.EventReceived(w.league)
	log.Info("received game details", "white", game.White(), "black", game.Black(), "status", game.Status.String())

	if err := w.deps.Refresher.RefreshCurrentRoundSchedules(w.ctx); err != nil {
		log.Error("error refreshing pairings, dropping event", "error", err)
		return
	}

	disposition := w.deps.Processor.Process(w.ctx, chunkID, game)
	w.deps.Metrics.ObserveProcess(w.league, start)
	log.Debug("event processed", "disposition", string(disposition))
}

// ended restarts the stream unless a newer transport owns the watcher or it was stopped
func (w *Watcher) ended(gen uint64) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if gen != w.generation {
		return
	}
	if w.cancel != nil {
		w.cancel()
		w.cancel = nil
	}
	if w.state == Closed {
		return
	}

	w.logger.Info("watcher response ended")
	w.state = Idle
	w.watchLocked()
}

// OnPairingsRefreshed recomputes the watch list from the pairings and resubscribes if it changed
func (w *Watcher) OnPairingsRefreshed(pairings []shared.Pairing) {
	usernames := watchList(pairings)

	w.mu.Lock()
	defer w.mu.Unlock()

	if w.state == Closed || sameSet(usernames, w.usernames) {
		return
	}

	w.logger.Info("watch list changed", "previous", len(w.usernames), "current", len(usernames))
	w.usernames = usernames
	w.deps.Metrics.SetWatched(w.league, len(usernames))
	w.watchLocked()
}

// Stop aborts the transport and waits for it to exit. The watcher cannot be restarted
func (w *Watcher) Stop() {
	w.mu.Lock()
	w.state = Closed
	if w.cancel != nil {
		w.cancel()
		w.cancel = nil
	}
	w.mu.Unlock()

	w.stop()
	w.wg.Wait()
	w.logger.Info("watcher stopped")
}

// State returns the connection state
func (w *Watcher) State() State {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.state
}

// Status returns a snapshot of the watcher
func (w *Watcher) Status() Status {
	w.mu.Lock()
	defer w.mu.Unlock()
	return Status{
		League:    w.league,
		State:     w.state.String(),
		Players:   append([]string{}, w.usernames...),
		StartedAt: w.startedAt,
	}
}

// watchList returns the sorted, deduplicated players of the pairings
func watchList(pairings []shared.Pairing) []string {
	seen := make(map[string]struct{}, len(pairings)*2)
	var usernames []string
	for _, p := range pairings {
		for _, name := range []string{p.White, p.Black} {
			name = strings.ToLower(strings.TrimSpace(name))
			if name == "" {
				continue
			}
			if _, ok := seen[name]; ok {
				continue
			}
			seen[name] = struct{}{}
			usernames = append(usernames, name)
		}
	}
	sort.Strings(usernames)
	return usernames
}

// sameSet reports whether the symmetric difference of a and b is empty
func sameSet(a, b []string) bool {
	diff := make(map[string]int, len(a)+len(b))
	for _, s := range a {
		diff[s] |= 1
	}
	for _, s := range b {
		diff[s] |= 2
	}
	for _, v := range diff {
		if v != 3 {
			return false
		}
	}
	return true
}
