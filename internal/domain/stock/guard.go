// Package stock provides the advisory pre-check that runs before the
// checkout commit protocol. It narrows the window between "looked available"
// and "is actually available" but is not atomic across lines; the
// authoritative check is the per-line reservation performed during commit.
package stock

import (
	"context"

	"github.com/go-faster/errors"

	"github.com/xenking/storefront/internal/domain/cart"
	"github.com/xenking/storefront/internal/domain/product"
)

// Guard validates a cart's demand against current directory state.
type Guard struct {
	products product.Directory
}

// NewGuard creates a Guard backed by the given directory.
func NewGuard(products product.Directory) *Guard {
	return &Guard{products: products}
}

// Validate re-reads every line's product and fails with
// *product.InsufficientStockError on the first line whose quantity exceeds
// the currently available amount. It is a cheap fail-fast gate: failing here
// avoids reserving stock for early lines only to roll them back when a later
// line cannot be satisfied.
func (g *Guard) Validate(ctx context.Context, lines []cart.Line) error {
	for _, l := range lines {
		p, err := g.products.GetByID(ctx, l.ProductID)
		if err != nil {
			if errors.Is(err, product.ErrNotFound) {
				return product.ErrNotFound
			}
			return errors.Wrapf(err, "get product %s", l.ProductID)
		}
		if l.Quantity > p.Amount {
			return &product.InsufficientStockError{ProductID: l.ProductID, Requested: l.Quantity}
		}
	}
	return nil
}
