/* notifier.go
 * Contains the Notifier: the fire and forget channel used by the reconciliation engines to post to discord
 */

package bot

import (
	"log/slog"
	"sync"

	"league-watcher/api/shared"
)

// Notifier posts messages to discord channels. Until a session is attached messages are only logged
type Notifier struct {
	mu      sync.RWMutex
	session DiscordSession
	logger  *slog.Logger
}

// NewNotifier creates a notifier without a session
func NewNotifier(logger *slog.Logger) *Notifier {
	if logger == nil {
		logger = slog.Default()
	}
	return &Notifier{logger: logger.With("component", "notifier")}
}

// SetSession attaches (or with nil, detaches) the discord session
func (n *Notifier) SetSession(session DiscordSession) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.session = session
}

// Say sends a message. Failures are logged and never returned to the caller
func (n *Notifier) Say(msg shared.Message) {
	n.mu.RLock()
	session := n.session
	n.mu.RUnlock()

	if session == nil {
		n.logger.Info("no discord session, message not sent", "channel_id", msg.ChannelID, "text", msg.Text)
		return
	}
	if msg.ChannelID == "" {
		n.logger.Warn("message without channel dropped", "text", msg.Text)
		return
	}

	if _, err := session.ChannelMessageSend(msg.ChannelID, msg.Text); err != nil {
		n.logger.Error("failed to send message", "channel_id", msg.ChannelID, "error", err)
	}
}
