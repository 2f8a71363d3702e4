/* bus_test.go
 * Contains unit tests for the event bus
 */

package events

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPublishGameStarted_AllHandlersInOrder(t *testing.T) {
	bus := NewBus()
	var calls []string

	bus.OnGameStarted(func(e GameStarted) { calls = append(calls, "first:"+e.GameID) })
	bus.OnGameStarted(func(e GameStarted) { calls = append(calls, "second:"+e.GameID) })

	bus.PublishGameStarted(GameStarted{League: "team4545", White: "a", Black: "b", GameID: "abcd1234"})

	assert.Equal(t, []string{"first:abcd1234", "second:abcd1234"}, calls)
}

func TestPublishGameOver_OnlyGameOverHandlers(t *testing.T) {
	bus := NewBus()
	var started, over []string

	bus.OnGameStarted(func(e GameStarted) { started = append(started, e.GameID) })
	bus.OnGameOver(func(e GameOver) { over = append(over, e.Result) })

	bus.PublishGameOver(GameOver{GameID: "abcd1234", Result: "1-0"})

	assert.Empty(t, started)
	assert.Equal(t, []string{"1-0"}, over)
}

func TestPublish_NoSubscribers(t *testing.T) {
	bus := NewBus()

	assert.NotPanics(t, func() {
		bus.PublishGameStarted(GameStarted{})
		bus.PublishGameOver(GameOver{})
	})
}

func TestHandlerMaySubscribeDuringPublish(t *testing.T) {
	bus := NewBus()
	count := 0

	bus.OnGameOver(func(e GameOver) {
		count++
		bus.OnGameOver(func(GameOver) { count++ })
	})

	bus.PublishGameOver(GameOver{})
	assert.Equal(t, 1, count)

	bus.PublishGameOver(GameOver{})
	assert.Equal(t, 3, count)
}
