package account

import (
	"context"
	"strings"

	"github.com/go-faster/errors"
)

// ErrNotFound is returned when no account exists for a username.
var ErrNotFound = errors.New("account not found")

// Account is a customer or operator identity. Contact fields (Phone, Address)
// gate the final checkout confirmation.
type Account struct {
	Username string
	FullName string
	Email    string
	Phone    string
	Address  string
	Admin    bool
}

// HasPhone reports whether the account carries a usable phone number.
func (a *Account) HasPhone() bool {
	return strings.TrimSpace(a.Phone) != ""
}

// HasAddress reports whether the account carries a usable postal address.
func (a *Account) HasAddress() bool {
	return strings.TrimSpace(a.Address) != ""
}

// Repository provides read access to the account directory.
type Repository interface {
	GetByUsername(ctx context.Context, username string) (*Account, error)
}
