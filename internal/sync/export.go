package sync

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/alfredjeanlab/ticketbot/internal/model"
)

// FormatVersion is written into every archive header.
const FormatVersion = "1"

// header is the first JSONL record written by ExportJSONL.
type header struct {
	Version      string    `json:"version"`
	Type         string    `json:"type"`
	Timestamp    time.Time `json:"timestamp"`
	TicketCount  int       `json:"ticket_count"`
	PendingCount int       `json:"pending_count"`
}

type record struct {
	Type string        `json:"type"`
	Data *model.Ticket `json:"data"`
}

// ExportJSONL writes every ticket as JSONL to w: a header line, then one
// line per ticket sorted by ID.
func ExportJSONL(ctx context.Context, tickets TicketLister, w io.Writer) error {
	all, err := tickets.ListTickets(ctx, model.TicketFilter{})
	if err != nil {
		return fmt.Errorf("list tickets: %w", err)
	}
	sort.Slice(all, func(i, j int) bool {
		return all[i].ID < all[j].ID
	})

	pending := 0
	for _, t := range all {
		if t.UserAddPending {
			pending++
		}
	}

	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)

	if err := enc.Encode(header{
		Version:      FormatVersion,
		Type:         "header",
		Timestamp:    time.Now().UTC(),
		TicketCount:  len(all),
		PendingCount: pending,
	}); err != nil {
		return fmt.Errorf("encode header: %w", err)
	}

	for _, t := range all {
		if err := enc.Encode(record{Type: "ticket", Data: t}); err != nil {
			return fmt.Errorf("encode ticket %s: %w", t.ID, err)
		}
	}
	return nil
}
