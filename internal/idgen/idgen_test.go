package idgen

import (
	"regexp"
	"strings"
	"testing"
)

func TestTicketID_Length(t *testing.T) {
	id, err := TicketID()
	if err != nil {
		t.Fatalf("TicketID() error: %v", err)
	}
	wantLen := len(TicketPrefix) + TicketLength
	if len(id) != wantLen {
		t.Errorf("TicketID() length = %d, want %d (id=%q)", len(id), wantLen, id)
	}
	if !strings.HasPrefix(id, TicketPrefix) {
		t.Errorf("TicketID() = %q, want prefix %q", id, TicketPrefix)
	}
}

func TestTicketID_Uniqueness(t *testing.T) {
	const count = 10_000
	seen := make(map[string]struct{}, count)
	for i := 0; i < count; i++ {
		id, err := TicketID()
		if err != nil {
			t.Fatalf("TicketID() error on iteration %d: %v", i, err)
		}
		if _, dup := seen[id]; dup {
			t.Fatalf("duplicate ID after %d generations: %q", i, id)
		}
		seen[id] = struct{}{}
	}
}

func TestToken_Charset(t *testing.T) {
	pattern := regexp.MustCompile(`^[A-Z0-9]{16}$`)
	for i := 0; i < 100; i++ {
		tok, err := Token(16)
		if err != nil {
			t.Fatalf("Token(16) error on iteration %d: %v", i, err)
		}
		if !pattern.MatchString(tok) {
			t.Fatalf("Token(16) = %q, does not match expected charset pattern", tok)
		}
	}
}

func TestToken_DefaultLength(t *testing.T) {
	for _, n := range []int{0, -3} {
		tok, err := Token(n)
		if err != nil {
			t.Fatalf("Token(%d) error: %v", n, err)
		}
		if len(tok) != DefaultTokenLength {
			t.Errorf("Token(%d) length = %d, want %d", n, len(tok), DefaultTokenLength)
		}
	}
}

func TestToken_CustomLength(t *testing.T) {
	tok, err := Token(32)
	if err != nil {
		t.Fatalf("Token(32) error: %v", err)
	}
	if len(tok) != 32 {
		t.Errorf("Token(32) length = %d, want 32", len(tok))
	}
}

func TestToken_NotConstant(t *testing.T) {
	a, err := Token(16)
	if err != nil {
		t.Fatalf("Token error: %v", err)
	}
	b, err := Token(16)
	if err != nil {
		t.Fatalf("Token error: %v", err)
	}
	if a == b {
		t.Errorf("two tokens are equal: %q", a)
	}
}
