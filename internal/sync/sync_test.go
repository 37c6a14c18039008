package sync

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alfredjeanlab/ticketbot/internal/model"
)

// mockDestination records calls to Write.
type mockDestination struct {
	name   string
	err    error
	writes atomic.Int64
	last   atomic.Value // []byte
}

func (d *mockDestination) Write(_ context.Context, data []byte) error {
	d.writes.Add(1)
	cp := make([]byte, len(data))
	copy(cp, data)
	d.last.Store(cp)
	return d.err
}

func (d *mockDestination) String() string { return d.name }

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestSchedulerStartStop(t *testing.T) {
	now := time.Now().UTC()
	lister := &mockLister{tickets: []*model.Ticket{
		{ID: "tk-1", RequesterID: "1", Currency: model.CurrencyEthereum, ChannelID: "c1", UserAddPending: true, CreatedAt: now, UpdatedAt: now},
	}}

	dest := &mockDestination{name: "mock"}
	sched := NewScheduler(lister, []Destination{dest}, 50*time.Millisecond, testLogger())
	sched.Start()

	// Wait for at least the initial sync + one tick.
	time.Sleep(120 * time.Millisecond)
	sched.Stop()

	if writes := dest.writes.Load(); writes < 2 {
		t.Fatalf("expected at least 2 writes, got %d", writes)
	}

	data, ok := dest.last.Load().([]byte)
	if !ok || len(data) == 0 {
		t.Fatal("expected non-empty data")
	}
	if lines := nonEmptyLines(string(data)); len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %d", len(lines))
	}
}

func TestSchedulerStop_NoStart(t *testing.T) {
	sched := NewScheduler(&mockLister{}, nil, time.Minute, testLogger())
	// Stop without Start should not panic.
	sched.Stop()
}

func TestSyncOnce_FailingDestinationDoesNotBlockOthers(t *testing.T) {
	bad := &mockDestination{name: "bad", err: errors.New("access denied")}
	good := &mockDestination{name: "good"}
	sched := NewScheduler(&mockLister{}, []Destination{bad, good}, time.Minute, testLogger())

	err := sched.SyncOnce(context.Background())
	if err == nil {
		t.Fatal("expected error from failing destination")
	}
	if !errors.Is(err, bad.err) {
		t.Fatalf("expected wrapped destination error, got %v", err)
	}
	if good.writes.Load() != 1 {
		t.Fatalf("expected good destination to be written, got %d writes", good.writes.Load())
	}
}

func TestSyncOnce_ExportError(t *testing.T) {
	dest := &mockDestination{name: "mock"}
	sched := NewScheduler(&mockLister{err: errors.New("db down")}, []Destination{dest}, time.Minute, testLogger())

	if err := sched.SyncOnce(context.Background()); err == nil {
		t.Fatal("expected export error")
	}
	if dest.writes.Load() != 0 {
		t.Fatal("expected no writes when export fails")
	}
}

func TestDestinationNames(t *testing.T) {
	if got := NewGitDestination("/srv/archive", "tickets.jsonl", "main").String(); got != "git:/srv/archive/tickets.jsonl@main" {
		t.Fatalf("unexpected git name %q", got)
	}
	s3 := &S3Destination{bucket: "backups", key: "tickets/backup.jsonl"}
	if got := s3.String(); got != "s3://backups/tickets/backup.jsonl" {
		t.Fatalf("unexpected s3 name %q", got)
	}
}
