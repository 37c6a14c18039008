// Package idgen provides ticket IDs and secure display tokens backed by nanoid.
package idgen

import (
	"fmt"

	nanoid "github.com/matoous/go-nanoid/v2"
)

// TicketPrefix is prepended to every generated ticket ID.
var TicketPrefix = "tk-"

// TicketAlphabet defines the character set used for the random portion of ticket IDs.
var TicketAlphabet = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// TicketLength is the number of random characters in a ticket ID (excluding the prefix).
var TicketLength = 12

// TokenAlphabet is the character set of secure tokens shown to requesters.
const TokenAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// DefaultTokenLength is used when Token is called with a non-positive length.
const DefaultTokenLength = 16

// TicketID returns a new unique ticket ID.
func TicketID() (string, error) {
	id, err := nanoid.Generate(TicketAlphabet, TicketLength)
	if err != nil {
		return "", fmt.Errorf("idgen: %w", err)
	}
	return TicketPrefix + id, nil
}

// Token returns a random token of the given length drawn from TokenAlphabet.
// nanoid reads crypto/rand, so tokens cannot be predicted from earlier ones.
func Token(length int) (string, error) {
	if length <= 0 {
		length = DefaultTokenLength
	}
	tok, err := nanoid.Generate(TokenAlphabet, length)
	if err != nil {
		return "", fmt.Errorf("idgen: %w", err)
	}
	return tok, nil
}
