package cart

import (
	"context"

	"github.com/go-faster/errors"

	"github.com/xenking/storefront/internal/domain/product"
)

// Service validates cart mutations against the live product directory.
// The cart itself never touches inventory; every check here is advisory and
// the authoritative stock check happens at checkout commit.
type Service struct {
	products product.Directory
	known    *product.IDFilter
}

// NewService creates a cart Service. filter may be nil, in which case every
// lookup goes straight to the directory.
func NewService(products product.Directory, filter *product.IDFilter) *Service {
	return &Service{products: products, known: filter}
}

// AddLine merges quantity into the cart's line for productID, creating the
// line (with a price snapshot taken now) when absent.
//
// Fails with product.ErrNotFound for an unknown product, product.ErrUnavailable
// for a product marked not purchasable, *InvalidQuantityError for a
// non-positive quantity, and *product.InsufficientStockError when the merged
// quantity would exceed the currently available amount.
func (s *Service) AddLine(ctx context.Context, c *Cart, productID string, quantity int) error {
	if quantity <= 0 {
		return &InvalidQuantityError{ProductID: productID, Quantity: quantity}
	}

	// Membership filter: a negative answer means the ID certainly does not
	// exist, so skip the database round trip.
	if !s.known.MightContain(productID) {
		return product.ErrNotFound
	}

	p, err := s.products.GetByID(ctx, productID)
	if err != nil {
		if errors.Is(err, product.ErrNotFound) {
			return product.ErrNotFound
		}
		return errors.Wrapf(err, "get product %s", productID)
	}
	if !p.Available {
		return product.ErrUnavailable
	}

	existing := c.Quantity(productID)
	if existing+quantity > p.Amount {
		return &product.InsufficientStockError{ProductID: productID, Requested: quantity, InCart: existing}
	}

	c.merge(productID, quantity, p.Price)
	return nil
}

// UpdateLine overwrites the quantity of the cart's line for productID.
// A quantity of zero or less removes the line; removal of an absent line is a
// no-op. A positive quantity is re-checked against the currently available
// amount and fails with *product.InsufficientStockError when exceeded.
// Updating an absent line with a positive quantity is a no-op.
func (s *Service) UpdateLine(ctx context.Context, c *Cart, productID string, quantity int) error {
	if quantity <= 0 {
		c.Remove(productID)
		return nil
	}

	if c.Quantity(productID) == 0 {
		return nil
	}

	p, err := s.products.GetByID(ctx, productID)
	if err != nil {
		if errors.Is(err, product.ErrNotFound) {
			return product.ErrNotFound
		}
		return errors.Wrapf(err, "get product %s", productID)
	}
	if quantity > p.Amount {
		return &product.InsufficientStockError{ProductID: productID, Requested: quantity}
	}

	c.setQuantity(productID, quantity)
	return nil
}
