/* handlers.go
 * Contains testable handler methods that accept the DiscordSession interface
 */

package bot

import (
	"errors"
	"fmt"
	"strings"

	"league-watcher/api/api"

	"github.com/bwmarrin/discordgo"
	"github.com/go-andiamo/splitter"
)

const notLinkedMessage = "This channel is not linked to a league"

// helpMessageHandler handles the $help command
func (b *Bot) helpMessageHandler(session DiscordSession, message *discordgo.MessageCreate) {
	var res strings.Builder
	res.WriteString("League Watcher\n")
	res.WriteString("Games between paired players are picked up automatically from lichess. Post nothing, just play at the scheduled time with the league time control\n")
	res.WriteString("`$pairings`: shows the pairings of the current round of this channel's league with their game links and results\n")
	res.WriteString("`$pairing player`: shows the pairings of a player. There is fuzzy matching on names\n")
	res.WriteString("`$watching`: shows whether the games of the league are being watched and how many players are followed\n")
	session.ChannelMessageSend(message.ChannelID, res.String())
}

// pairingsHandler handles the $pairings command
// Preconditions: Receives the session and a message sent in a league channel
// Postconditions: The pairings of the current round are sent to the channel, or an error message if the channel is
// not linked to a league
func (b *Bot) pairingsHandler(session DiscordSession, message *discordgo.MessageCreate) {
	res, err := b.APIPtr.GetPairings(message.ChannelID)
	if err != nil {
		res = b.errorMessage("getting the pairings", err)
	}
	session.ChannelMessageSend(message.ChannelID, res)
}

// pairingHandler handles the $pairing command. Names that contain spaces can be quoted
func (b *Bot) pairingHandler(session DiscordSession, message *discordgo.MessageCreate) {
	spaceSplitter, _ := splitter.NewSplitter(' ', splitter.DoubleQuotes, splitter.LeftRightDoubleDoubleQuotes)
	args, err := spaceSplitter.Split(message.Content)
	if err != nil || len(args) < 2 || strings.TrimSpace(args[1]) == "" {
		session.ChannelMessageSend(message.ChannelID, "Usage: `$pairing player`")
		return
	}
	player := strings.Trim(args[1], "\"“”")

	res, err := b.APIPtr.FindPlayer(message.ChannelID, player)
	if err != nil {
		res = b.errorMessage("finding "+player, err)
	}
	session.ChannelMessageSend(message.ChannelID, res)
}

// watchingHandler handles the $watching command
func (b *Bot) watchingHandler(session DiscordSession, message *discordgo.MessageCreate) {
	status, err := b.APIPtr.WatchStatus(message.ChannelID)
	if err != nil {
		session.ChannelMessageSend(message.ChannelID, b.errorMessage("getting the watcher status", err))
		return
	}

	res := fmt.Sprintf("%s: %s, following %d players", status.League, status.State, len(status.Players))
	if !status.StartedAt.IsZero() {
		res += fmt.Sprintf(" (last connected %s)", status.StartedAt.UTC().Format("Mon 02 Jan 15:04 UTC"))
	}
	session.ChannelMessageSend(message.ChannelID, res)
}

func (b *Bot) errorMessage(action string, err error) string {
	if errors.Is(err, api.ErrUnknownChannel) {
		return notLinkedMessage
	}
	b.logger.Error("command failed", "action", action, "error", err)
	return fmt.Sprintf("An error occurred %s", action)
}

// newMessageHandler routes messages to appropriate handlers
// botUserID is the bot's user ID to prevent self-responses
func (b *Bot) newMessageHandler(session DiscordSession, message *discordgo.MessageCreate, botUserID string) {
	// Prevent bot from responding to its own messages
	if message.Author == nil || message.Author.ID == botUserID {
		return
	}

	switch {
	case isCommand(message.Content, "$help"):
		b.helpMessageHandler(session, message)

	case isCommand(message.Content, "$pairings"):
		b.pairingsHandler(session, message)

	case isCommand(message.Content, "$pairing"):
		b.pairingHandler(session, message)

	case isCommand(message.Content, "$watching"):
		b.watchingHandler(session, message)
	}
}
