package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/alfredjeanlab/ticketbot/internal/model"
)

// ticketColumns is the column list used for SELECT statements on the tickets table.
const ticketColumns = `id, requester_id, currency, channel_id, secure_token,
	user_add_pending, self_warned, restricted_warned, invalid_warned,
	counterparty_id, created_at, updated_at`

// executor is the interface satisfied by both *sql.DB and *sql.Tx.
type executor interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func queryCreateTicket(ctx context.Context, db executor, t *model.Ticket) error {
	_, err := db.ExecContext(ctx, `
		INSERT INTO tickets (
			id, requester_id, currency, channel_id, secure_token,
			user_add_pending, self_warned, restricted_warned, invalid_warned,
			counterparty_id, created_at, updated_at
		) VALUES (
			$1, $2, $3, $4, $5,
			$6, $7, $8, $9,
			$10, $11, $12
		)`,
		t.ID,
		t.RequesterID,
		string(t.Currency),
		t.ChannelID,
		t.SecureToken,
		t.UserAddPending,
		t.Warned.Has(model.WarnSelf),
		t.Warned.Has(model.WarnRestricted),
		t.Warned.Has(model.WarnInvalid),
		nullString(t.CounterpartyID),
		t.CreatedAt,
		t.UpdatedAt,
	)
	return err
}

func queryGetTicket(ctx context.Context, db executor, id string) (*model.Ticket, error) {
	row := db.QueryRowContext(ctx, `SELECT `+ticketColumns+` FROM tickets WHERE id = $1`, id)
	return scanTicket(row)
}

func queryGetTicketByChannel(ctx context.Context, db executor, channelID string) (*model.Ticket, error) {
	row := db.QueryRowContext(ctx, `SELECT `+ticketColumns+` FROM tickets WHERE channel_id = $1`, channelID)
	return scanTicket(row)
}

func queryListTickets(ctx context.Context, db executor, filter model.TicketFilter) ([]*model.Ticket, error) {
	var (
		whereClauses []string
		args         []any
	)

	if filter.Pending != nil {
		args = append(args, *filter.Pending)
		whereClauses = append(whereClauses, fmt.Sprintf("user_add_pending = $%d", len(args)))
	}

	q := `SELECT ` + ticketColumns + ` FROM tickets`
	if len(whereClauses) > 0 {
		q += " WHERE " + strings.Join(whereClauses, " AND ")
	}
	q += " ORDER BY created_at ASC"

	if filter.Limit > 0 {
		args = append(args, filter.Limit)
		q += fmt.Sprintf(" LIMIT $%d", len(args))
	}

	rows, err := db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("list tickets: %w", err)
	}
	defer rows.Close()

	tickets, err := scanTickets(rows)
	if err != nil {
		return nil, fmt.Errorf("scan tickets: %w", err)
	}
	return tickets, nil
}

func queryMarkWarned(ctx context.Context, db executor, id string, w model.Warning) error {
	col, ok := warningColumn(w)
	if !ok {
		return fmt.Errorf("unknown warning %d", w)
	}
	res, err := db.ExecContext(ctx,
		`UPDATE tickets SET `+col+` = TRUE, updated_at = $2 WHERE id = $1`,
		id, time.Now().UTC(),
	)
	if err != nil {
		return err
	}
	return expectOneRow(res)
}

// queryMarkUserAdded resolves a pending ticket. A ticket that is already
// resolved is left untouched and reported as sql.ErrNoRows.
func queryMarkUserAdded(ctx context.Context, db executor, id, counterpartyID string) error {
	res, err := db.ExecContext(ctx,
		`UPDATE tickets SET user_add_pending = FALSE, counterparty_id = $2, updated_at = $3 WHERE id = $1 AND user_add_pending`,
		id, nullString(counterpartyID), time.Now().UTC(),
	)
	if err != nil {
		return err
	}
	return expectOneRow(res)
}

func queryDeleteTicketByChannel(ctx context.Context, db executor, channelID string) error {
	res, err := db.ExecContext(ctx, `DELETE FROM tickets WHERE channel_id = $1`, channelID)
	if err != nil {
		return err
	}
	return expectOneRow(res)
}

// expectOneRow returns sql.ErrNoRows when a statement matched nothing.
func expectOneRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return sql.ErrNoRows
	}
	return nil
}
