// Package bot runs the escrow ticket flow on top of a Discord session:
// opening ticket channels, collecting the counterparty, closing tickets, and
// resuming unfinished collections after a restart.
package bot

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/bwmarrin/discordgo"

	"github.com/alfredjeanlab/ticketbot/internal/events"
	"github.com/alfredjeanlab/ticketbot/internal/store"
)

// DefaultCloseDelay is how long a closed ticket channel lingers before deletion.
const DefaultCloseDelay = 5 * time.Second

// recentMessageScan is how many recent messages are checked for stale notices.
const recentMessageScan = 25

// Options configures a Bot.
type Options struct {
	GuildID      string
	CategoryID   string
	OwnerID      string
	Restricted   RestrictedSet
	CloseDelay   time.Duration
	ThumbnailURL string

	Publisher events.Publisher
	Logger    *slog.Logger

	// OnReady is called after startup recovery has run for a Ready event.
	OnReady func()
}

// Bot owns the ticket lifecycle. Create it with New, attach it to a gateway
// session with Register, and stop it with Close.
type Bot struct {
	session   Session
	store     store.Store
	publisher events.Publisher
	logger    *slog.Logger
	opts      Options

	collectors *registry
	now        func() time.Time

	ctx    context.Context
	cancel context.CancelFunc
	timers sync.WaitGroup
	ready  atomic.Bool
}

// New returns a Bot that talks to Discord through session and persists tickets in s.
func New(session Session, s store.Store, opts Options) *Bot {
	if opts.CloseDelay <= 0 {
		opts.CloseDelay = DefaultCloseDelay
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Publisher == nil {
		opts.Publisher = &events.NoopPublisher{}
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Bot{
		session:    session,
		store:      s,
		publisher:  opts.Publisher,
		logger:     opts.Logger,
		opts:       opts,
		collectors: newRegistry(opts.Logger),
		now:        time.Now,
		ctx:        ctx,
		cancel:     cancel,
	}
}

// Register attaches the bot's gateway handlers to a live discordgo session.
func (b *Bot) Register(s *discordgo.Session) {
	s.AddHandler(b.onReady)
	s.AddHandler(b.onMessageCreate)
	s.AddHandler(b.onInteractionCreate)
}

// Ready reports whether startup recovery has completed at least once.
func (b *Bot) Ready() bool {
	return b.ready.Load()
}

// Collecting reports whether a collector is active for the channel.
func (b *Bot) Collecting(channelID string) bool {
	return b.collectors.active(channelID)
}

// Close stops all collectors and waits for pending channel deletions.
func (b *Bot) Close() {
	b.cancel()
	b.collectors.wait()
	b.timers.Wait()
}

// publish emits an event; failures are logged and never block the caller.
func (b *Bot) publish(ctx context.Context, topic string, event any) {
	if err := b.publisher.Publish(ctx, topic, event); err != nil {
		b.logger.Warn("failed to publish event", "topic", topic, "err", err)
	}
}

// bestEffort records the outcome of a cleanup call whose failure is tolerated.
func (b *Bot) bestEffort(what string, err error) {
	if err != nil {
		b.logger.Debug("best-effort "+what+" failed", "err", err)
	}
}
