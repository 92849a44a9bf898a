// Package cart implements the session-owned, pre-commit collection of
// intended purchases. A cart never mutates inventory; it only reads the
// product directory for validation. Stock is decremented at checkout commit.
package cart

import (
	"fmt"
	"sync"

	"github.com/shopspring/decimal"
)

// Line is one product within a cart. UnitPrice is snapshotted from the
// catalog at the moment the line is first added and is not refreshed when
// later adds merge into it, so catalog price changes do not retroactively
// alter an open cart.
type Line struct {
	ProductID string
	Quantity  int
	UnitPrice decimal.Decimal
}

// Subtotal returns quantity * unit price for this line.
func (l Line) Subtotal() decimal.Decimal {
	return l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// InvalidQuantityError indicates a requested quantity that is not a positive
// integer.
type InvalidQuantityError struct {
	ProductID string
	Quantity  int
}

func (e *InvalidQuantityError) Error() string {
	return fmt.Sprintf("invalid quantity %d for product %s", e.Quantity, e.ProductID)
}

// Cart holds at most one line per product, in insertion order. It is owned by
// a single session; the mutex only covers the rare case of overlapping
// requests arriving on the same session cookie.
type Cart struct {
	mu    sync.Mutex
	lines []Line
}

// New returns an empty cart.
func New() *Cart {
	return &Cart{}
}

// Lines returns a copy of the cart's lines in insertion order.
func (c *Cart) Lines() []Line {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := make([]Line, len(c.lines))
	copy(out, c.lines)
	return out
}

// Len returns the number of lines in the cart.
func (c *Cart) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.lines)
}

// Empty reports whether the cart has no lines.
func (c *Cart) Empty() bool {
	return c.Len() == 0
}

// Quantity returns the current quantity for productID, or 0 if no line exists.
func (c *Cart) Quantity(productID string) int {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, l := range c.lines {
		if l.ProductID == productID {
			return l.Quantity
		}
	}
	return 0
}

// merge adds quantity into an existing line or appends a new line with the
// given price snapshot. An existing line keeps its original snapshot.
func (c *Cart) merge(productID string, quantity int, unitPrice decimal.Decimal) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for i := range c.lines {
		if c.lines[i].ProductID == productID {
			c.lines[i].Quantity += quantity
			return
		}
	}
	c.lines = append(c.lines, Line{ProductID: productID, Quantity: quantity, UnitPrice: unitPrice})
}

// setQuantity overwrites the quantity of an existing line. It reports whether
// a line for productID was present.
func (c *Cart) setQuantity(productID string, quantity int) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	for i := range c.lines {
		if c.lines[i].ProductID == productID {
			c.lines[i].Quantity = quantity
			return true
		}
	}
	return false
}

// Remove deletes the line for productID. Removing an absent line is a no-op.
func (c *Cart) Remove(productID string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for i := range c.lines {
		if c.lines[i].ProductID == productID {
			c.lines = append(c.lines[:i], c.lines[i+1:]...)
			return
		}
	}
}

// Clear removes all lines. Clearing an empty cart is a no-op.
func (c *Cart) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lines = c.lines[:0]
}

// Total returns the sum of line subtotals, zero for an empty cart.
func (c *Cart) Total() decimal.Decimal {
	c.mu.Lock()
	defer c.mu.Unlock()

	total := decimal.Zero
	for _, l := range c.lines {
		total = total.Add(l.Subtotal())
	}
	return total
}
