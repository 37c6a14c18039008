package store

import (
	"context"

	"github.com/alfredjeanlab/ticketbot/internal/model"
)

// Store defines the persistence interface for tickets.
// Lookups of missing tickets return sql.ErrNoRows.
type Store interface {
	CreateTicket(ctx context.Context, ticket *model.Ticket) error
	GetTicket(ctx context.Context, id string) (*model.Ticket, error)
	GetTicketByChannel(ctx context.Context, channelID string) (*model.Ticket, error)
	ListTickets(ctx context.Context, filter model.TicketFilter) ([]*model.Ticket, error)

	// MarkWarned latches the given one-shot warning for the ticket.
	MarkWarned(ctx context.Context, id string, w model.Warning) error
	// MarkUserAdded clears UserAddPending and records the counterparty.
	// It returns sql.ErrNoRows if the ticket is missing or already resolved.
	// There is no operation that sets UserAddPending back to true.
	MarkUserAdded(ctx context.Context, id, counterpartyID string) error

	// DeleteTicketByChannel removes the ticket bound to a channel.
	DeleteTicketByChannel(ctx context.Context, channelID string) error

	// Lifecycle
	Close() error
}
