package model

import (
	"strings"
	"time"
)

// Currency is the escrow currency a ticket is opened for.
// Well-known codes are provided below, but the set is extensible;
// unknown codes are labelled by their upper-cased code.
type Currency string

const (
	CurrencyBitcoin  Currency = "btc"
	CurrencyEthereum Currency = "eth"
	CurrencyLitecoin Currency = "ltc"
	CurrencySolana   Currency = "sol"
)

// Currencies lists the currencies offered in the selection prompt, in display order.
var Currencies = []Currency{
	CurrencyBitcoin,
	CurrencyEthereum,
	CurrencyLitecoin,
	CurrencySolana,
}

var currencyLabels = map[Currency]string{
	CurrencyBitcoin:  "Bitcoin",
	CurrencyEthereum: "Ethereum",
	CurrencyLitecoin: "Litecoin",
	CurrencySolana:   "Solana",
}

// String returns the currency code.
func (c Currency) String() string {
	return string(c)
}

// Label returns the human readable name of the currency.
func (c Currency) Label() string {
	if l, ok := currencyLabels[c]; ok {
		return l
	}
	return strings.ToUpper(string(c))
}

// IsValid reports whether the currency is a non-empty code.
func (c Currency) IsValid() bool {
	return c != ""
}

// Warning identifies one kind of one-shot warning shown in a ticket channel.
type Warning uint8

const (
	WarnSelf Warning = 1 << iota
	WarnRestricted
	WarnInvalid
)

// String returns the warning name as used in logs and event payloads.
func (w Warning) String() string {
	switch w {
	case WarnSelf:
		return "self"
	case WarnRestricted:
		return "restricted"
	case WarnInvalid:
		return "invalid"
	}
	return "unknown"
}

// Warnings is the set of warnings already shown for a ticket.
// A warning in the set is never shown again.
type Warnings uint8

// Has reports whether w has already been shown.
func (ws Warnings) Has(w Warning) bool {
	return ws&Warnings(w) != 0
}

// With returns the set with w added.
func (ws Warnings) With(w Warning) Warnings {
	return ws | Warnings(w)
}

// Ticket is the record backing one escrow channel.
type Ticket struct {
	ID             string    `json:"id"`
	RequesterID    string    `json:"requester_id"`
	Currency       Currency  `json:"currency"`
	ChannelID      string    `json:"channel_id"`
	SecureToken    string    `json:"secure_token"`
	UserAddPending bool      `json:"user_add_pending"`
	Warned         Warnings  `json:"warned"`
	CounterpartyID string    `json:"counterparty_id,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// TicketFilter narrows ListTickets results.
type TicketFilter struct {
	// Pending, when non-nil, matches tickets whose UserAddPending equals *Pending.
	Pending *bool
	Limit   int
}
