/* session_interface.go
 * Contains the interface for the discord session so the bot and the notifier can be tested without discord
 */

package bot

import "github.com/bwmarrin/discordgo"

// DiscordSession defines the discord session methods used by the bot and the notifier
type DiscordSession interface {
	ChannelMessageSend(channelID string, content string, options ...discordgo.RequestOption) (*discordgo.Message, error)
}

// Ensure *discordgo.Session implements DiscordSession
var _ DiscordSession = (*discordgo.Session)(nil)
