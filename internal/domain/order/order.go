package order

import (
	"context"
	"time"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
)

// ErrNotFound is returned when a requested order does not exist.
var ErrNotFound = errors.New("order not found")

// Detail is one frozen line of a committed order. It is owned exclusively by
// its Order: quantity and price are fixed at commit time and later catalog
// changes never alter them.
type Detail struct {
	ProductID string
	Quantity  int
	UnitPrice decimal.Decimal
}

// Subtotal returns quantity * unit price for this detail.
func (d Detail) Subtotal() decimal.Decimal {
	return d.UnitPrice.Mul(decimal.NewFromInt(int64(d.Quantity)))
}

// Order is a committed purchase. Only Status may change after creation;
// orders are never deleted (cancellation is a status, not a deletion).
type Order struct {
	ID        string
	Username  string
	Address   string
	Status    Status
	Details   []Detail
	Total     decimal.Decimal
	CreatedAt time.Time
}

// Repository defines persistence operations for orders. Create must persist
// the order together with its details as a single unit.
type Repository interface {
	Create(ctx context.Context, o *Order) error
	GetByID(ctx context.Context, id string) (*Order, error)
	List(ctx context.Context) ([]Order, error)
	UpdateStatus(ctx context.Context, id string, status Status) error
}
