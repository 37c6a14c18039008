package bot

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/bwmarrin/discordgo"

	"github.com/alfredjeanlab/ticketbot/internal/events"
	"github.com/alfredjeanlab/ticketbot/internal/model"
)

var snowflakePattern = regexp.MustCompile(`^[0-9]{15,21}$`)

var errNotSnowflake = errors.New("not a user ID")

// StartCollector begins waiting for the requester to name a counterparty in
// the ticket's channel. When prompt is set the "Add User" prompt is posted
// first. It reports false if a collector is already running for the channel.
func (b *Bot) StartCollector(t *model.Ticket, prompt bool) bool {
	ctx, cancel := context.WithCancel(b.ctx)
	c := &collector{
		ticketID:    t.ID,
		channelID:   t.ChannelID,
		requesterID: t.RequesterID,
		inbox:       make(chan string, inboxSize),
		cancel:      cancel,
	}
	if !b.collectors.add(c) {
		cancel()
		return false
	}
	go b.runCollector(ctx, c, prompt)
	return true
}

func (b *Bot) runCollector(ctx context.Context, c *collector, prompt bool) {
	defer b.collectors.remove(c)
	defer c.cancel()

	log := b.logger.With("ticket", c.ticketID, "channel", c.channelID)
	if prompt {
		if _, err := b.session.ChannelMessageSendComplex(c.channelID, addUserPromptMessage(), discordgo.WithContext(ctx)); err != nil {
			log.Warn("collector: failed to post prompt", "err", err)
		}
	}
	log.Debug("collector: started")

	for {
		select {
		case <-ctx.Done():
			log.Debug("collector: cancelled")
			return
		case content := <-c.inbox:
			done, err := b.evaluate(ctx, c, content)
			if err != nil {
				log.Error("collector: evaluation failed", "err", err)
			}
			if done {
				log.Debug("collector: finished")
				return
			}
		}
	}
}

// evaluate handles one candidate from the requester and reports whether the
// collector is finished.
func (b *Bot) evaluate(ctx context.Context, c *collector, content string) (bool, error) {
	candidate := strings.TrimSpace(content)

	t, err := b.store.GetTicket(ctx, c.ticketID)
	if errors.Is(err, sql.ErrNoRows) {
		return true, nil
	}
	if err != nil {
		return false, fmt.Errorf("reload ticket: %w", err)
	}
	if !t.UserAddPending {
		return true, nil
	}

	switch {
	case candidate == t.RequesterID:
		return false, b.warnOnce(ctx, t, model.WarnSelf)
	case b.opts.Restricted.Contains(candidate):
		return false, b.warnOnce(ctx, t, model.WarnRestricted)
	}

	member, err := b.resolveMember(ctx, candidate)
	if err != nil {
		b.logger.Debug("collector: candidate did not resolve", "ticket", t.ID, "err", err)
		return false, b.warnOnce(ctx, t, model.WarnInvalid)
	}
	memberID := member.User.ID

	// A refused grant is not an invalid user. No warning; wait for the next message.
	allow := int64(discordgo.PermissionViewChannel | discordgo.PermissionSendMessages)
	if err := b.session.ChannelPermissionSet(t.ChannelID, memberID, discordgo.PermissionOverwriteTypeMember, allow, 0, discordgo.WithContext(ctx)); err != nil {
		return false, fmt.Errorf("grant channel access to %s: %w", memberID, err)
	}

	b.clearPrompts(ctx, t.ChannelID)
	if _, err := b.session.ChannelMessageSendComplex(t.ChannelID, userAddedMessage(memberID), discordgo.WithContext(ctx)); err != nil {
		b.logger.Warn("collector: failed to announce added user", "ticket", t.ID, "err", err)
	}

	if err := b.store.MarkUserAdded(ctx, t.ID, memberID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			b.logger.Info("collector: ticket closed or already resolved before user was recorded", "ticket", t.ID)
			return true, nil
		}
		return true, fmt.Errorf("record added user: %w", err)
	}

	b.logger.Info("user added to ticket", "ticket", t.ID, "user", memberID)
	b.publish(ctx, events.TopicTicketUserAdded, events.TicketUserAdded{
		TicketID:       t.ID,
		ChannelID:      t.ChannelID,
		CounterpartyID: memberID,
	})
	return true, nil
}

// warnOnce posts warning w unless the ticket has already received it.
func (b *Bot) warnOnce(ctx context.Context, t *model.Ticket, w model.Warning) error {
	if t.Warned.Has(w) {
		return nil
	}
	if _, err := b.session.ChannelMessageSendComplex(t.ChannelID, warningMessage(w), discordgo.WithContext(ctx)); err != nil {
		return fmt.Errorf("post %s warning: %w", w, err)
	}
	if err := b.store.MarkWarned(ctx, t.ID, w); err != nil {
		return fmt.Errorf("record %s warning: %w", w, err)
	}
	t.Warned = t.Warned.With(w)

	b.publish(ctx, events.TopicTicketWarned, events.TicketWarned{
		TicketID:  t.ID,
		ChannelID: t.ChannelID,
		Warning:   w.String(),
	})
	return nil
}

func (b *Bot) resolveMember(ctx context.Context, candidate string) (*discordgo.Member, error) {
	if !snowflakePattern.MatchString(candidate) {
		return nil, errNotSnowflake
	}
	member, err := b.session.GuildMember(b.opts.GuildID, candidate, discordgo.WithContext(ctx))
	if err != nil {
		return nil, err
	}
	if member == nil || member.User == nil {
		return nil, fmt.Errorf("member %s has no user", candidate)
	}
	return member, nil
}

// clearPrompts removes add-user prompts and warnings from the channel's
// recent history.
func (b *Bot) clearPrompts(ctx context.Context, channelID string) {
	msgs, err := b.session.ChannelMessages(channelID, recentMessageScan, "", "", "", discordgo.WithContext(ctx))
	if err != nil {
		b.bestEffort("fetch of recent messages", err)
		return
	}
	for _, m := range msgs {
		if isStaleNotice(m) {
			b.bestEffort("delete of stale notice", b.session.ChannelMessageDelete(channelID, m.ID, discordgo.WithContext(ctx)))
		}
	}
}
