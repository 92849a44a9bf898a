package auth

import (
	"context"

	"github.com/go-faster/errors"
)

// ErrUnknownKey is returned when no API key matches the presented hash.
var ErrUnknownKey = errors.New("unknown api key")

// APIKeyInfo holds the identity data for a validated API key. Username links
// the key to the account it acts for; Admin keys may manage order state.
type APIKeyInfo struct {
	ID       string
	KeyHash  string
	Username string
	Admin    bool
}

// Repository provides lookup of API keys by their HMAC hash.
type Repository interface {
	FindByHash(ctx context.Context, hash string) (*APIKeyInfo, error)
}
