package product

import (
	"context"
	"fmt"
	"time"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
)

// Sentinel errors for catalog lookups.
var (
	// ErrNotFound is returned when a requested product does not exist.
	ErrNotFound = errors.New("product not found")
	// ErrUnavailable is returned when a product exists but is not purchasable.
	ErrUnavailable = errors.New("product not available")
)

// InsufficientStockError indicates demand exceeds the product's current or
// reserved supply. Requested is the quantity of the failing request itself;
// InCart carries the quantity already held when a cart merge overflows.
type InsufficientStockError struct {
	ProductID string
	Requested int
	InCart    int
}

func (e *InsufficientStockError) Error() string {
	if e.InCart > 0 {
		return fmt.Sprintf("insufficient stock for product %s (requested %d, %d already in cart)",
			e.ProductID, e.Requested, e.InCart)
	}
	return fmt.Sprintf("insufficient stock for product %s (requested %d)", e.ProductID, e.Requested)
}

// Product represents a catalog item. Amount is the live available quantity;
// it is mutated only through Directory.Reserve and Directory.Restore.
type Product struct {
	ID        string
	Name      string
	Price     decimal.Decimal
	Amount    int
	Available bool
	Category  string
	CreatedAt time.Time
}

// Directory is the catalog view the cart and checkout layers run against.
//
// Reserve must be a single indivisible check-and-decrement on the product's
// stock counter: it fails with InsufficientStockError when the counter cannot
// support the requested decrement at the time of the attempt. Restore undoes
// a prior reservation and is used only to compensate a partially reserved
// commit.
type Directory interface {
	List(ctx context.Context) ([]Product, error)
	GetByID(ctx context.Context, id string) (*Product, error)
	Reserve(ctx context.Context, id string, quantity int) error
	Restore(ctx context.Context, id string, quantity int) error
}
