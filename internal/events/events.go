// Package events publishes ticket lifecycle changes to the event bus.
package events

import (
	"context"

	"github.com/alfredjeanlab/ticketbot/internal/model"
)

// Event topic constants
const (
	TopicTicketOpened    = "tickets.ticket.opened"
	TopicTicketWarned    = "tickets.ticket.warned"
	TopicTicketUserAdded = "tickets.ticket.user_added"
	TopicTicketClosed    = "tickets.ticket.closed"

	// TopicAll matches every ticket topic.
	TopicAll = "tickets.>"
)

// Event types

type TicketOpened struct {
	Ticket *model.Ticket `json:"ticket"`
}

type TicketWarned struct {
	TicketID  string `json:"ticket_id"`
	ChannelID string `json:"channel_id"`
	Warning   string `json:"warning"`
}

type TicketUserAdded struct {
	TicketID       string `json:"ticket_id"`
	ChannelID      string `json:"channel_id"`
	CounterpartyID string `json:"counterparty_id"`
}

type TicketClosed struct {
	ChannelID string `json:"channel_id"`
	ClosedBy  string `json:"closed_by,omitempty"`
}

// Publisher is the interface for emitting events.
type Publisher interface {
	Publish(ctx context.Context, topic string, event any) error
	Close() error
}
