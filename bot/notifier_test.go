/* notifier_test.go
 * Contains unit tests for the Notifier
 */

package bot

import (
	"errors"
	"testing"

	"league-watcher/api/shared"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNotifier_Say(t *testing.T) {
	session := NewMockDiscordSession()
	n := NewNotifier(nil)
	n.SetSession(session)

	n.Say(shared.Message{Text: "alice vs bob: https://lichess.org/abcd1234", ChannelID: "gamelinks"})

	require.Len(t, session.Messages(), 1)
	assert.Equal(t, MockMessage{ChannelID: "gamelinks", Content: "alice vs bob: https://lichess.org/abcd1234"}, session.GetLastMessage())
}

func TestNotifier_NoSession(t *testing.T) {
	n := NewNotifier(nil)

	assert.NotPanics(t, func() {
		n.Say(shared.Message{Text: "hello", ChannelID: "gamelinks"})
	})
}

func TestNotifier_SendFailureIsSwallowed(t *testing.T) {
	session := NewMockDiscordSession()
	session.ErrorToReturn = errors.New("discord down")
	n := NewNotifier(nil)
	n.SetSession(session)

	assert.NotPanics(t, func() {
		n.Say(shared.Message{Text: "hello", ChannelID: "gamelinks"})
	})
	assert.Empty(t, session.Messages())
}

func TestNotifier_EmptyChannelDropped(t *testing.T) {
	session := NewMockDiscordSession()
	n := NewNotifier(nil)
	n.SetSession(session)

	n.Say(shared.Message{Text: "hello"})

	assert.Empty(t, session.Messages())
}

func TestNotifier_DetachSession(t *testing.T) {
	session := NewMockDiscordSession()
	n := NewNotifier(nil)
	n.SetSession(session)
	n.SetSession(nil)

	n.Say(shared.Message{Text: "hello", ChannelID: "gamelinks"})

	assert.Empty(t, session.Messages())
}
