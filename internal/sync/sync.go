// Package sync periodically archives the ticket table to external
// destinations as JSONL.
package sync

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/alfredjeanlab/ticketbot/internal/model"
)

// TicketLister is the store capability the archive needs.
type TicketLister interface {
	ListTickets(ctx context.Context, filter model.TicketFilter) ([]*model.Ticket, error)
}

// Destination is a sync target (S3, git, etc.).
type Destination interface {
	// Write stores the JSONL payload, replacing the previous archive.
	Write(ctx context.Context, data []byte) error
	// String names the destination in logs.
	String() string
}

// Scheduler archives tickets to one or more destinations on an interval.
type Scheduler struct {
	tickets      TicketLister
	destinations []Destination
	interval     time.Duration
	logger       *slog.Logger

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewScheduler returns a scheduler that exports from tickets to destinations
// every interval.
func NewScheduler(tickets TicketLister, destinations []Destination, interval time.Duration, logger *slog.Logger) *Scheduler {
	return &Scheduler{
		tickets:      tickets,
		destinations: destinations,
		interval:     interval,
		logger:       logger,
	}
}

// Start runs one sync immediately and then one per tick until Stop.
func (s *Scheduler) Start() {
	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.run(ctx)
	}()
}

// Stop cancels the scheduler and waits for an in-flight sync to finish.
func (s *Scheduler) Stop() {
	if s.cancel != nil {
		s.cancel()
	}
	s.wg.Wait()
}

func (s *Scheduler) run(ctx context.Context) {
	_ = s.SyncOnce(ctx)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			_ = s.SyncOnce(ctx)
		}
	}
}

// SyncOnce exports the tickets and writes the archive to every destination.
// A failing destination does not stop the others; all failures are returned.
func (s *Scheduler) SyncOnce(ctx context.Context) error {
	var buf bytes.Buffer
	if err := ExportJSONL(ctx, s.tickets, &buf); err != nil {
		s.logger.Error("sync export failed", "err", err)
		return err
	}
	data := buf.Bytes()

	var errs []error
	for _, dest := range s.destinations {
		if err := dest.Write(ctx, data); err != nil {
			s.logger.Error("sync destination write failed", "destination", dest.String(), "err", err)
			errs = append(errs, fmt.Errorf("%s: %w", dest, err))
		}
	}

	s.logger.Info("sync completed", "destinations", len(s.destinations), "failed", len(errs), "bytes", len(data))
	return errors.Join(errs...)
}
