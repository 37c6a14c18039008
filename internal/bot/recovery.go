package bot

import (
	"context"
	"fmt"

	"github.com/bwmarrin/discordgo"

	"github.com/alfredjeanlab/ticketbot/internal/model"
)

// Recover restarts collectors for tickets still waiting on a counterparty.
// Tickets whose channel no longer resolves are left pending and skipped.
// Collectors resumed here do not re-post the prompt. It returns how many
// collectors were started.
func (b *Bot) Recover(ctx context.Context) (int, error) {
	pending := true
	tickets, err := b.store.ListTickets(ctx, model.TicketFilter{Pending: &pending})
	if err != nil {
		return 0, fmt.Errorf("list pending tickets: %w", err)
	}
	if len(tickets) == 0 {
		return 0, nil
	}

	if _, err := b.session.Guild(b.opts.GuildID, discordgo.WithContext(ctx)); err != nil {
		b.logger.Debug("recovery: guild unavailable, skipping pending tickets", "guild", b.opts.GuildID, "pending", len(tickets), "err", err)
		return 0, nil
	}

	started := 0
	for _, t := range tickets {
		if _, err := b.session.Channel(t.ChannelID, discordgo.WithContext(ctx)); err != nil {
			b.logger.Debug("recovery: skipping ticket with unknown channel", "ticket", t.ID, "channel", t.ChannelID, "err", err)
			continue
		}
		if b.StartCollector(t, false) {
			started++
		}
	}
	return started, nil
}
