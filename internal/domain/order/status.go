package order

import (
	"fmt"
	"strings"

	"github.com/go-faster/errors"
)

// Status is an order's fulfillment state. The lifecycle is
// PENDING → CONFIRMED → SHIPPED → DELIVERED, with CANCELLED reachable from
// any pre-terminal state. Transitions never touch inventory: stock was
// already committed when the order was created.
type Status string

const (
	StatusPending   Status = "PENDING"
	StatusConfirmed Status = "CONFIRMED"
	StatusShipped   Status = "SHIPPED"
	StatusDelivered Status = "DELIVERED"
	StatusCancelled Status = "CANCELLED"
)

// ErrInvalidStatus is returned when a status string does not name a known
// lifecycle state.
var ErrInvalidStatus = errors.New("invalid order status")

// InvalidTransitionError indicates a lifecycle transition that is not
// permitted from the order's current state.
type InvalidTransitionError struct {
	From Status
	To   Status
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("cannot transition order from %s to %s", e.From, e.To)
}

// ParseStatus maps a status string (case-insensitive) to a Status, failing
// with ErrInvalidStatus for unknown values.
func ParseStatus(s string) (Status, error) {
	switch Status(strings.ToUpper(strings.TrimSpace(s))) {
	case StatusPending:
		return StatusPending, nil
	case StatusConfirmed:
		return StatusConfirmed, nil
	case StatusShipped:
		return StatusShipped, nil
	case StatusDelivered:
		return StatusDelivered, nil
	case StatusCancelled:
		return StatusCancelled, nil
	}
	return "", ErrInvalidStatus
}

// Terminal reports whether no further transitions are allowed from s.
func (s Status) Terminal() bool {
	return s == StatusDelivered || s == StatusCancelled
}

// CanTransitionTo reports whether moving from s to next is a legal lifecycle
// step.
func (s Status) CanTransitionTo(next Status) bool {
	if next == StatusCancelled {
		return !s.Terminal()
	}
	switch s {
	case StatusPending:
		return next == StatusConfirmed
	case StatusConfirmed:
		return next == StatusShipped
	case StatusShipped:
		return next == StatusDelivered
	}
	return false
}
