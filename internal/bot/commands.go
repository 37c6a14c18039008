package bot

import (
	"strings"

	"github.com/bwmarrin/discordgo"
)

const (
	deployCommand = "!deploy"
	deleteCommand = "!delete"
)

// handleCommand runs an owner command and reports whether m was one.
func (b *Bot) handleCommand(m *discordgo.Message) bool {
	if b.opts.OwnerID == "" || m.Author.ID != b.opts.OwnerID {
		return false
	}
	log := b.logger.With("channel", m.ChannelID)

	switch strings.TrimSpace(m.Content) {
	case deployCommand:
		if _, err := b.session.ChannelMessageSendComplex(m.ChannelID, currencyPromptMessage(currencySelectPrefix)); err != nil {
			log.Error("deploy: failed to post currency prompt", "err", err)
		}
	case deleteCommand:
		if _, err := b.session.ChannelDelete(m.ChannelID); err != nil {
			log.Error("delete: failed to delete channel", "err", err)
		}
	default:
		return false
	}
	return true
}
