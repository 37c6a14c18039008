package bot

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/bwmarrin/discordgo"

	"github.com/alfredjeanlab/ticketbot/internal/events"
)

// CloseTicket removes the ticket bound to channelID, stops its collector and
// schedules the channel for deletion after the close delay. A channel with no
// stored ticket is still closed.
func (b *Bot) CloseTicket(ctx context.Context, channelID, closedBy string) error {
	if err := b.store.DeleteTicketByChannel(ctx, channelID); err != nil && !errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("delete ticket for channel %s: %w", channelID, err)
	}
	b.collectors.cancel(channelID)

	b.logger.Info("ticket closed", "channel", channelID, "closed_by", closedBy)
	b.publish(ctx, events.TopicTicketClosed, events.TicketClosed{ChannelID: channelID, ClosedBy: closedBy})

	b.scheduleChannelDelete(channelID)
	return nil
}

func (b *Bot) scheduleChannelDelete(channelID string) {
	b.timers.Add(1)
	time.AfterFunc(b.opts.CloseDelay, func() {
		defer b.timers.Done()
		_, err := b.session.ChannelDelete(channelID)
		b.bestEffort("delete of closed channel", err)
	})
}

func (b *Bot) closeDelaySeconds() int {
	return int(math.Round(b.opts.CloseDelay.Seconds()))
}

// closeResponse is the public reply to a close button press.
func (b *Bot) closeResponse() *discordgo.InteractionResponse {
	return &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Embeds: []*discordgo.MessageEmbed{closingEmbed(b.closeDelaySeconds())},
		},
	}
}
