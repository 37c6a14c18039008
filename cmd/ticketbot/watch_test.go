package main

import (
	"testing"
	"time"

	"github.com/alfredjeanlab/ticketbot/internal/model"
)

func TestDiffTickets_InitialPoll(t *testing.T) {
	seen := make(map[string]time.Time)
	now := time.Now()
	tickets := []*model.Ticket{
		{ID: "a", UpdatedAt: now},
		{ID: "b", UpdatedAt: now.Add(time.Second)},
	}

	changed := diffTickets(tickets, seen)
	if len(changed) != 2 {
		t.Fatalf("got %d changed, want 2", len(changed))
	}
	if len(seen) != 2 {
		t.Fatalf("got %d seen, want 2", len(seen))
	}
}

func TestDiffTickets_NoChanges(t *testing.T) {
	now := time.Now()
	seen := map[string]time.Time{"a": now}
	changed := diffTickets([]*model.Ticket{{ID: "a", UpdatedAt: now}}, seen)
	if len(changed) != 0 {
		t.Fatalf("got %d changed, want 0", len(changed))
	}
}

func TestDiffTickets_CounterpartyAdded(t *testing.T) {
	now := time.Now()
	seen := map[string]time.Time{"a": now, "b": now}
	tickets := []*model.Ticket{
		{ID: "a", UpdatedAt: now},
		{ID: "b", UpdatedAt: now.Add(time.Minute), CounterpartyID: "200000000000000002"},
	}

	changed := diffTickets(tickets, seen)
	if len(changed) != 1 || changed[0].ID != "b" {
		t.Fatalf("changed = %v, want [b]", changed)
	}
	if !seen["b"].Equal(now.Add(time.Minute)) {
		t.Errorf("seen[b] not updated")
	}
}
