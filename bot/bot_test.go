/* bot_test.go
 * Contains unit tests for bot.go functions
 */

package bot

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// region NewBot tests

func TestNewBot_Success(t *testing.T) {
	apiPtr := createTestAPI(t)
	bot, err := NewBot("test_token", apiPtr, nil)

	assert.NoError(t, err)
	assert.Equal(t, "test_token", bot.BotToken)
	assert.Same(t, apiPtr, bot.APIPtr)
}

func TestNewBot_EmptyToken(t *testing.T) {
	_, err := NewBot("", nil, nil)

	assert.ErrorContains(t, err, "botToken is required")
}

// endregion

// region isCommand tests

func TestIsCommand_ExactMatch(t *testing.T) {
	assert.True(t, isCommand("$help", "$help"))
}

func TestIsCommand_WithArguments(t *testing.T) {
	assert.True(t, isCommand("$pairing alice", "$pairing"))
}

func TestIsCommand_LongerCommandIsNotAPrefix(t *testing.T) {
	assert.False(t, isCommand("$pairings", "$pairing"))
}

func TestIsCommand_NotAtStart(t *testing.T) {
	assert.False(t, isCommand("hello $help", "$help"))
}

func TestIsCommand_CaseSensitive(t *testing.T) {
	assert.False(t, isCommand("$Help", "$help"))
}

func TestIsCommand_EmptyInput(t *testing.T) {
	assert.False(t, isCommand("", "$help"))
}

// endregion
