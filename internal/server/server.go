// Package server exposes the ticket bot's operational surface: a read-only
// HTTP API over the ticket store and a gRPC health service.
package server

import (
	"context"
	"log/slog"

	"github.com/alfredjeanlab/ticketbot/internal/model"
)

// TicketReader is the store capability the ops API needs.
type TicketReader interface {
	GetTicket(ctx context.Context, id string) (*model.Ticket, error)
	GetTicketByChannel(ctx context.Context, channelID string) (*model.Ticket, error)
	ListTickets(ctx context.Context, filter model.TicketFilter) ([]*model.Ticket, error)
}

// OpsServer serves ticket state to operators.
type OpsServer struct {
	store  TicketReader
	ready  func() bool
	logger *slog.Logger
}

// NewOpsServer returns an OpsServer reading from s. ready reports whether the
// bot has finished connecting; a nil ready is treated as always ready.
func NewOpsServer(s TicketReader, ready func() bool, logger *slog.Logger) *OpsServer {
	if ready == nil {
		ready = func() bool { return true }
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &OpsServer{store: s, ready: ready, logger: logger}
}
