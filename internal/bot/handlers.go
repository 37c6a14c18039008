package bot

import (
	"context"
	"fmt"
	"strings"

	"github.com/bwmarrin/discordgo"

	"github.com/alfredjeanlab/ticketbot/internal/model"
)

func (b *Bot) onReady(_ *discordgo.Session, r *discordgo.Ready) {
	b.logger.Info("gateway ready", "session", r.SessionID, "guilds", len(r.Guilds))
	n, err := b.Recover(b.ctx)
	if err != nil {
		b.logger.Error("recovery failed", "err", err)
	} else {
		b.logger.Info("recovery complete", "collectors", n)
	}
	b.ready.Store(true)
	if b.opts.OnReady != nil {
		b.opts.OnReady()
	}
}

func (b *Bot) onMessageCreate(_ *discordgo.Session, m *discordgo.MessageCreate) {
	b.handleMessage(m.Message)
}

func (b *Bot) onInteractionCreate(_ *discordgo.Session, i *discordgo.InteractionCreate) {
	b.handleInteraction(b.ctx, i.Interaction)
}

func (b *Bot) handleMessage(m *discordgo.Message) {
	if m == nil || m.Author == nil || m.Author.Bot {
		return
	}
	if b.handleCommand(m) {
		return
	}
	b.collectors.deliver(m.ChannelID, m.Author.ID, m.Content)
}

func (b *Bot) handleInteraction(ctx context.Context, i *discordgo.Interaction) {
	if i == nil || i.Type != discordgo.InteractionMessageComponent {
		return
	}
	data := i.MessageComponentData()
	switch {
	case data.CustomID == closeButtonID:
		b.handleCloseButton(ctx, i)
	case strings.HasPrefix(data.CustomID, currencySelectPrefix):
		b.handleCurrencySelect(ctx, i, data.Values)
	}
}

func (b *Bot) handleCurrencySelect(ctx context.Context, i *discordgo.Interaction, values []string) {
	if len(values) == 0 {
		return
	}
	cur := model.Currency(values[0])
	requesterID := interactionUserID(i)
	log := b.logger.With("requester", requesterID, "currency", cur)

	ticket, err := b.OpenTicket(ctx, requesterID, cur)
	if err != nil {
		log.Error("failed to open ticket", "err", err)
		b.bestEffort("error reply", b.session.InteractionRespond(i, ephemeralResponse(errorEmbed("Your ticket could not be created. Please try again.")), discordgo.WithContext(ctx)))
		return
	}

	if err := b.session.InteractionRespond(i, ephemeralResponse(ticketCreatedEmbed(cur, ticket.ChannelID)), discordgo.WithContext(ctx)); err != nil {
		log.Warn("failed to acknowledge ticket creation", "ticket", ticket.ID, "err", err)
	}
	b.refreshCurrencyPrompt(ctx, i)

	b.StartCollector(ticket, true)
}

// refreshCurrencyPrompt replaces the select menu on the prompt that was used
// so the same option can be picked again.
func (b *Bot) refreshCurrencyPrompt(ctx context.Context, i *discordgo.Interaction) {
	if i.Message == nil {
		return
	}
	customID := fmt.Sprintf("%s_%d", currencySelectPrefix, b.now().UnixMilli())
	components := []discordgo.MessageComponent{currencySelectRow(customID)}

	edit := discordgo.NewMessageEdit(i.ChannelID, i.Message.ID)
	edit.Components = &components
	if _, err := b.session.ChannelMessageEditComplex(edit, discordgo.WithContext(ctx)); err != nil {
		b.logger.Warn("failed to refresh currency prompt", "message", i.Message.ID, "err", err)
	}
}

func (b *Bot) handleCloseButton(ctx context.Context, i *discordgo.Interaction) {
	closedBy := interactionUserID(i)
	if err := b.CloseTicket(ctx, i.ChannelID, closedBy); err != nil {
		b.logger.Error("failed to close ticket", "channel", i.ChannelID, "err", err)
		b.bestEffort("error reply", b.session.InteractionRespond(i, ephemeralResponse(errorEmbed("This ticket could not be closed. Please try again.")), discordgo.WithContext(ctx)))
		return
	}
	if err := b.session.InteractionRespond(i, b.closeResponse(), discordgo.WithContext(ctx)); err != nil {
		b.logger.Warn("failed to reply to close", "channel", i.ChannelID, "err", err)
	}
}

func interactionUserID(i *discordgo.Interaction) string {
	if i.Member != nil && i.Member.User != nil {
		return i.Member.User.ID
	}
	if i.User != nil {
		return i.User.ID
	}
	return ""
}
