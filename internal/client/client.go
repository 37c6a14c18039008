// Package client talks to a running ticket bot's ops surface: the HTTP API
// for ticket state and the gRPC health service.
package client

import (
	"context"

	"github.com/alfredjeanlab/ticketbot/internal/model"
)

// TicketsClient is what the CLI uses to read ticket state from the bot.
type TicketsClient interface {
	ListTickets(ctx context.Context, req *ListTicketsRequest) (*ListTicketsResponse, error)
	GetTicket(ctx context.Context, id string) (*model.Ticket, error)
	GetTicketByChannel(ctx context.Context, channelID string) (*model.Ticket, error)
	Health(ctx context.Context) (string, error)
	Close() error
}

// ListTicketsRequest filters a ticket listing.
type ListTicketsRequest struct {
	Pending *bool
	Limit   int
}

// ListTicketsResponse is the body of GET /v1/tickets.
type ListTicketsResponse struct {
	Tickets []*model.Ticket `json:"tickets"`
	Total   int             `json:"total"`
}
