/* bot.go
 * Contains the Bot used for answering commands in the league channels. Requires a discord bot token and the API, both
 * of which are passed in from main.go
 */

package bot

import (
	"fmt"
	"log/slog"
	"strings"

	"league-watcher/api/api"
)

type Bot struct {
	BotToken string
	APIPtr   *api.API
	logger   *slog.Logger
}

func NewBot(botToken string, apiPtr *api.API, logger *slog.Logger) (*Bot, error) {
	if botToken == "" {
		return nil, fmt.Errorf("botToken is required but none was provided")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &Bot{
		BotToken: botToken,
		APIPtr:   apiPtr,
		logger:   logger.With("component", "bot"),
	}, nil
}

// Helper function to check if a message is a given command
// Preconditions: Receives the message content and the command including its prefix
// Postconditions: Returns true if the message is the command, optionally followed by arguments
func isCommand(content string, command string) bool {
	if !strings.HasPrefix(content, command) {
		return false
	}
	rest := content[len(command):]
	return rest == "" || rest[0] == ' '
}
