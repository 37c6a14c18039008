// Package postgres implements the store.Store interface backed by PostgreSQL.
package postgres

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"time"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	_ "github.com/lib/pq"

	"github.com/alfredjeanlab/ticketbot/internal/model"
	"github.com/alfredjeanlab/ticketbot/internal/store"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// PostgresStore implements store.Store backed by a PostgreSQL database.
type PostgresStore struct {
	db *sql.DB
}

// Compile-time check that PostgresStore implements store.Store.
var _ store.Store = (*PostgresStore)(nil)

// New opens a connection to the PostgreSQL database at the given URL,
// configures the connection pool, and runs any pending migrations.
func New(databaseURL string) (*PostgresStore, error) {
	db, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(2)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := runMigrations(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &PostgresStore{db: db}, nil
}

// NewWithDB wraps an already opened database without running migrations.
func NewWithDB(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func runMigrations(db *sql.DB) error {
	sourceDriver, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return fmt.Errorf("create migration source: %w", err)
	}

	dbDriver, err := postgres.WithInstance(db, &postgres.Config{})
	if err != nil {
		return fmt.Errorf("create migration db driver: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", sourceDriver, "postgres", dbDriver)
	if err != nil {
		return fmt.Errorf("create migrator: %w", err)
	}

	if err := m.Up(); err != nil && err != migrate.ErrNoChange {
		return fmt.Errorf("apply migrations: %w", err)
	}

	return nil
}

// Close closes the underlying database connection.
func (s *PostgresStore) Close() error {
	return s.db.Close()
}

func (s *PostgresStore) CreateTicket(ctx context.Context, ticket *model.Ticket) error {
	return queryCreateTicket(ctx, s.db, ticket)
}

func (s *PostgresStore) GetTicket(ctx context.Context, id string) (*model.Ticket, error) {
	return queryGetTicket(ctx, s.db, id)
}

func (s *PostgresStore) GetTicketByChannel(ctx context.Context, channelID string) (*model.Ticket, error) {
	return queryGetTicketByChannel(ctx, s.db, channelID)
}

func (s *PostgresStore) ListTickets(ctx context.Context, filter model.TicketFilter) ([]*model.Ticket, error) {
	return queryListTickets(ctx, s.db, filter)
}

func (s *PostgresStore) MarkWarned(ctx context.Context, id string, w model.Warning) error {
	return queryMarkWarned(ctx, s.db, id, w)
}

func (s *PostgresStore) MarkUserAdded(ctx context.Context, id, counterpartyID string) error {
	return queryMarkUserAdded(ctx, s.db, id, counterpartyID)
}

func (s *PostgresStore) DeleteTicketByChannel(ctx context.Context, channelID string) error {
	return queryDeleteTicketByChannel(ctx, s.db, channelID)
}
