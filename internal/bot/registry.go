package bot

import (
	"context"
	"log/slog"
	"sync"
)

// inboxSize bounds how many requester messages may queue while one is evaluated.
const inboxSize = 16

// collector is the live state of one ticket's user-addition loop.
type collector struct {
	ticketID    string
	channelID   string
	requesterID string
	inbox       chan string
	cancel      context.CancelFunc
}

// registry tracks running collectors by channel ID. At most one collector
// exists per channel.
type registry struct {
	mu        sync.Mutex
	byChannel map[string]*collector
	wg        sync.WaitGroup
	logger    *slog.Logger
}

func newRegistry(logger *slog.Logger) *registry {
	return &registry{byChannel: make(map[string]*collector), logger: logger}
}

// add registers c unless its channel already has a collector.
func (r *registry) add(c *collector) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.byChannel[c.channelID]; exists {
		return false
	}
	r.byChannel[c.channelID] = c
	r.wg.Add(1)
	return true
}

// remove unregisters c; a newer collector on the same channel is left alone.
func (r *registry) remove(c *collector) {
	r.mu.Lock()
	if cur, ok := r.byChannel[c.channelID]; ok && cur == c {
		delete(r.byChannel, c.channelID)
	}
	r.mu.Unlock()
	r.wg.Done()
}

// deliver hands a message to the channel's collector if it was written by the
// ticket's requester. It reports whether the message was queued. A message
// arriving while the inbox is full is dropped.
func (r *registry) deliver(channelID, authorID, content string) bool {
	r.mu.Lock()
	c, ok := r.byChannel[channelID]
	r.mu.Unlock()
	if !ok || authorID != c.requesterID {
		return false
	}
	select {
	case c.inbox <- content:
		return true
	default:
		r.logger.Debug("collector: inbox full, dropping message",
			"ticket", c.ticketID, "channel", channelID, "queued", len(c.inbox))
		return false
	}
}

// cancel stops the channel's collector, if any.
func (r *registry) cancel(channelID string) bool {
	r.mu.Lock()
	c, ok := r.byChannel[channelID]
	if ok {
		delete(r.byChannel, channelID)
	}
	r.mu.Unlock()
	if ok {
		c.cancel()
	}
	return ok
}

func (r *registry) active(channelID string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.byChannel[channelID]
	return ok
}

func (r *registry) wait() {
	r.wg.Wait()
}
