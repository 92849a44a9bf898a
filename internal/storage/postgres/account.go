package postgres

import (
	"context"
	"fmt"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/xenking/storefront/internal/domain/account"
)

var _ account.Repository = (*AccountRepository)(nil)

// AccountRepository implements account.Repository backed by PostgreSQL.
type AccountRepository struct {
	pool *pgxpool.Pool
}

// NewAccountRepository returns an AccountRepository that uses the given pool.
func NewAccountRepository(pool *pgxpool.Pool) *AccountRepository {
	return &AccountRepository{pool: pool}
}

// GetByUsername returns the account for username, or account.ErrNotFound.
func (r *AccountRepository) GetByUsername(ctx context.Context, username string) (*account.Account, error) {
	var a account.Account
	err := r.pool.QueryRow(ctx,
		`SELECT username, full_name, email, phone, address, is_admin
		 FROM accounts WHERE username = $1`,
		username,
	).Scan(&a.Username, &a.FullName, &a.Email, &a.Phone, &a.Address, &a.Admin)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, account.ErrNotFound
		}
		return nil, fmt.Errorf("getting account %q: %w", username, err)
	}
	return &a, nil
}
