package order

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/xenking/storefront/internal/domain/account"
	"github.com/xenking/storefront/internal/domain/cart"
	"github.com/xenking/storefront/internal/domain/product"
	"github.com/xenking/storefront/internal/domain/stock"
)

// Sentinel errors for checkout preconditions.
var (
	ErrEmptyCart       = errors.New("cart is empty")
	ErrAddressRequired = errors.New("delivery address required")
	ErrPhoneRequired   = errors.New("contact phone required")
)

// Preview is the result of the checkout review step: the payable total plus
// soft warnings the customer should resolve before confirming.
type Preview struct {
	Total    decimal.Decimal
	Warnings []string
}

// Service runs the checkout commit protocol and the post-commit status
// lifecycle.
type Service struct {
	products product.Directory
	accounts account.Repository
	orders   Repository
	guard    *stock.Guard

	now   func() time.Time
	newID func() string
}

// NewService creates an order Service with the required collaborators.
func NewService(
	products product.Directory,
	accounts account.Repository,
	orders Repository,
	guard *stock.Guard,
) *Service {
	return &Service{
		products: products,
		accounts: accounts,
		orders:   orders,
		guard:    guard,
		now:      time.Now,
		newID:    uuid.NewString,
	}
}

// PreviewCheckout validates the review-step preconditions and returns the
// cart total together with soft contact warnings. Missing contact data is a
// warning here and a hard failure in ConfirmCheckout.
func (s *Service) PreviewCheckout(ctx context.Context, c *cart.Cart, username, address string) (*Preview, error) {
	if strings.TrimSpace(address) == "" {
		return nil, ErrAddressRequired
	}
	if c.Empty() {
		return nil, ErrEmptyCart
	}
	if err := s.guard.Validate(ctx, c.Lines()); err != nil {
		return nil, err
	}

	acc, err := s.accounts.GetByUsername(ctx, username)
	if err != nil {
		return nil, err
	}

	var warnings []string
	if !acc.HasPhone() {
		warnings = append(warnings, "account has no contact phone")
	}
	if !acc.HasAddress() {
		warnings = append(warnings, "account has no saved address")
	}

	return &Preview{Total: c.Total(), Warnings: warnings}, nil
}

// ConfirmCheckout converts the cart into a persisted order, all or nothing.
//
// Preconditions are always re-validated here regardless of any earlier
// preview. On success the reserved stock corresponds exactly to the persisted
// order and the cart is cleared; on any failure every already-reserved line
// is restored before the error surfaces, so no partial effect is observable.
func (s *Service) ConfirmCheckout(ctx context.Context, c *cart.Cart, username, address string) (*Order, error) {
	address = strings.TrimSpace(address)
	if address == "" {
		return nil, ErrAddressRequired
	}
	if c.Empty() {
		return nil, ErrEmptyCart
	}
	if err := s.guard.Validate(ctx, c.Lines()); err != nil {
		return nil, err
	}

	acc, err := s.accounts.GetByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	if !acc.HasPhone() {
		return nil, ErrPhoneRequired
	}

	// Freeze the cart snapshot. Reservations are attempted in ascending
	// product ID order so concurrent commits over the same products acquire
	// row locks in one global order and cannot deadlock each other.
	lines := c.Lines()
	sort.Slice(lines, func(i, j int) bool { return lines[i].ProductID < lines[j].ProductID })

	for i, l := range lines {
		if err := s.products.Reserve(ctx, l.ProductID, l.Quantity); err != nil {
			if rerr := s.restore(ctx, lines[:i]); rerr != nil {
				return nil, errors.Wrapf(err, "reserve %s (compensation also failed: %v)", l.ProductID, rerr)
			}
			var ise *product.InsufficientStockError
			if errors.As(err, &ise) {
				return nil, ise
			}
			return nil, errors.Wrapf(err, "reserve %s", l.ProductID)
		}
	}

	details := make([]Detail, len(lines))
	total := decimal.Zero
	for i, l := range lines {
		details[i] = Detail{
			ProductID: l.ProductID,
			Quantity:  l.Quantity,
			UnitPrice: l.UnitPrice,
		}
		total = total.Add(l.Subtotal())
	}

	o := &Order{
		ID:        s.newID(),
		Username:  acc.Username,
		Address:   address,
		Status:    StatusPending,
		Details:   details,
		Total:     total,
		CreatedAt: s.now(),
	}

	if err := s.orders.Create(ctx, o); err != nil {
		// A reservation without a persisted order would undercount stock
		// forever, so compensate before surfacing the write error.
		if rerr := s.restore(ctx, lines); rerr != nil {
			return nil, errors.Wrapf(err, "create order (compensation also failed: %v)", rerr)
		}
		return nil, errors.Wrap(err, "create order")
	}

	c.Clear()
	return o, nil
}

// restore undoes reservations for the given lines in reverse order. It keeps
// going past individual failures and returns the first error encountered.
func (s *Service) restore(ctx context.Context, reserved []cart.Line) error {
	// A cancelled request must still compensate, otherwise the stock counter
	// diverges from the persisted orders.
	ctx = context.WithoutCancel(ctx)

	var firstErr error
	for i := len(reserved) - 1; i >= 0; i-- {
		l := reserved[i]
		if err := s.products.Restore(ctx, l.ProductID, l.Quantity); err != nil && firstErr == nil {
			firstErr = errors.Wrapf(err, "restore %s", l.ProductID)
		}
	}
	return firstErr
}

// Get returns a committed order by ID.
func (s *Service) Get(ctx context.Context, id string) (*Order, error) {
	return s.orders.GetByID(ctx, id)
}

// List returns all committed orders, newest first.
func (s *Service) List(ctx context.Context) ([]Order, error) {
	return s.orders.List(ctx)
}

// UpdateStatus applies an operator's lifecycle transition. The raw status
// string is parsed (ErrInvalidStatus on unknown values), the current state is
// loaded (ErrNotFound for unknown orders), and the step is checked against
// the lifecycle before writing.
func (s *Service) UpdateStatus(ctx context.Context, id, rawStatus string) error {
	next, err := ParseStatus(rawStatus)
	if err != nil {
		return err
	}

	o, err := s.orders.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if !o.Status.CanTransitionTo(next) {
		return &InvalidTransitionError{From: o.Status, To: next}
	}

	return s.orders.UpdateStatus(ctx, id, next)
}
