package postgres

import (
	"database/sql"

	"github.com/alfredjeanlab/ticketbot/internal/model"
)

// scannable is the interface satisfied by both *sql.Row and *sql.Rows.
type scannable interface {
	Scan(dest ...any) error
}

// scanTicket scans a single row into a model.Ticket.
// The row must contain columns in the order defined by ticketColumns.
func scanTicket(row scannable) (*model.Ticket, error) {
	var t model.Ticket
	var (
		selfWarned       bool
		restrictedWarned bool
		invalidWarned    bool
		counterpartyID   sql.NullString
	)

	err := row.Scan(
		&t.ID,
		&t.RequesterID,
		&t.Currency,
		&t.ChannelID,
		&t.SecureToken,
		&t.UserAddPending,
		&selfWarned,
		&restrictedWarned,
		&invalidWarned,
		&counterpartyID,
		&t.CreatedAt,
		&t.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	t.Warned = warningsFromColumns(selfWarned, restrictedWarned, invalidWarned)
	t.CounterpartyID = counterpartyID.String
	return &t, nil
}

// scanTickets scans multiple rows into a slice of model.Ticket pointers.
func scanTickets(rows *sql.Rows) ([]*model.Ticket, error) {
	var tickets []*model.Ticket
	for rows.Next() {
		t, err := scanTicket(rows)
		if err != nil {
			return nil, err
		}
		tickets = append(tickets, t)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return tickets, nil
}

func warningsFromColumns(self, restricted, invalid bool) model.Warnings {
	var ws model.Warnings
	if self {
		ws = ws.With(model.WarnSelf)
	}
	if restricted {
		ws = ws.With(model.WarnRestricted)
	}
	if invalid {
		ws = ws.With(model.WarnInvalid)
	}
	return ws
}

// warningColumn maps a warning to the boolean column that latches it.
func warningColumn(w model.Warning) (string, bool) {
	switch w {
	case model.WarnSelf:
		return "self_warned", true
	case model.WarnRestricted:
		return "restricted_warned", true
	case model.WarnInvalid:
		return "invalid_warned", true
	}
	return "", false
}

// nullString converts a string to sql.NullString; empty string is null.
func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}
