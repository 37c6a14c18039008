package bot

import (
	"context"
	"fmt"

	"github.com/bwmarrin/discordgo"

	"github.com/alfredjeanlab/ticketbot/internal/events"
	"github.com/alfredjeanlab/ticketbot/internal/idgen"
	"github.com/alfredjeanlab/ticketbot/internal/model"
)

// OpenTicket creates a private ticket channel for the requester, stores the
// ticket as pending a counterparty, and posts the welcome message.
// Failing to post the welcome message is logged but does not fail the open.
func (b *Bot) OpenTicket(ctx context.Context, requesterID string, cur model.Currency) (*model.Ticket, error) {
	if !cur.IsValid() {
		return nil, fmt.Errorf("invalid currency %q", cur)
	}

	ch, err := b.session.GuildChannelCreateComplex(b.opts.GuildID, discordgo.GuildChannelCreateData{
		Name:     cur.String() + "-ticket",
		Type:     discordgo.ChannelTypeGuildText,
		ParentID: b.opts.CategoryID,
		PermissionOverwrites: []*discordgo.PermissionOverwrite{
			{ID: b.opts.GuildID, Type: discordgo.PermissionOverwriteTypeRole, Deny: discordgo.PermissionViewChannel},
			{ID: requesterID, Type: discordgo.PermissionOverwriteTypeMember, Allow: discordgo.PermissionViewChannel},
		},
	}, discordgo.WithContext(ctx))
	if err != nil {
		return nil, fmt.Errorf("create ticket channel: %w", err)
	}

	ticket, err := b.persistTicket(ctx, requesterID, cur, ch.ID)
	if err != nil {
		_, delErr := b.session.ChannelDelete(ch.ID, discordgo.WithContext(ctx))
		b.bestEffort("rollback of ticket channel", delErr)
		return nil, err
	}

	b.logger.Info("ticket opened",
		"ticket", ticket.ID, "channel", ticket.ChannelID, "requester", requesterID, "currency", cur)
	b.publish(ctx, events.TopicTicketOpened, events.TicketOpened{Ticket: ticket})

	welcome := welcomeMessage(requesterID, cur, ticket.SecureToken, b.opts.ThumbnailURL)
	if _, err := b.session.ChannelMessageSendComplex(ch.ID, welcome, discordgo.WithContext(ctx)); err != nil {
		b.logger.Warn("failed to post welcome message", "ticket", ticket.ID, "err", err)
	}
	return ticket, nil
}

func (b *Bot) persistTicket(ctx context.Context, requesterID string, cur model.Currency, channelID string) (*model.Ticket, error) {
	id, err := idgen.TicketID()
	if err != nil {
		return nil, fmt.Errorf("generate ticket id: %w", err)
	}
	token, err := idgen.Token(idgen.DefaultTokenLength)
	if err != nil {
		return nil, fmt.Errorf("generate secure token: %w", err)
	}
	now := b.now().UTC()
	ticket := &model.Ticket{
		ID:             id,
		RequesterID:    requesterID,
		Currency:       cur,
		ChannelID:      channelID,
		SecureToken:    token,
		UserAddPending: true,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := b.store.CreateTicket(ctx, ticket); err != nil {
		return nil, fmt.Errorf("store ticket: %w", err)
	}
	return ticket, nil
}
