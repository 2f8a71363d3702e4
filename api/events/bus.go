/* bus.go
 * Contains the typed event bus the reconciliation engine publishes domain events to. Subscribers register explicitly
 * with the bus owned by main instead of listening on a global emitter
 */

package events

import "sync"

// GameStarted is published when a game is bound to a pairing
type GameStarted struct {
	League string
	White  string
	Black  string
	GameID string
	Link   string
}

// GameOver is published when a result is recorded for a pairing
type GameOver struct {
	League string
	White  string
	Black  string
	GameID string
	Result string
}

// Bus delivers domain events to the subscribers registered on it. Handlers run synchronously on the publishing
// goroutine in registration order
type Bus struct {
	mu       sync.RWMutex
	started  []func(GameStarted)
	finished []func(GameOver)
}

// NewBus creates an empty bus
func NewBus() *Bus {
	return &Bus{}
}

// OnGameStarted registers a handler for GameStarted events
func (b *Bus) OnGameStarted(handler func(GameStarted)) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.started = append(b.started, handler)
}

// OnGameOver registers a handler for GameOver events
func (b *Bus) OnGameOver(handler func(GameOver)) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.finished = append(b.finished, handler)
}

// PublishGameStarted delivers the event to every GameStarted handler
func (b *Bus) PublishGameStarted(event GameStarted) {
	b.mu.RLock()
	handlers := append([]func(GameStarted){}, b.started...)
	b.mu.RUnlock()

	for _, handler := range handlers {
		handler(event)
	}
}

// PublishGameOver delivers the event to every GameOver handler
func (b *Bus) PublishGameOver(event GameOver) {
	b.mu.RLock()
	handlers := append([]func(GameOver){}, b.finished...)
	b.mu.RUnlock()

	for _, handler := range handlers {
		handler(event)
	}
}
