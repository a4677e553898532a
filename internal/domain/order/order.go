// Package order covers checkout and the back-office order lifecycle.
package order

import (
	"context"
	"time"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"

	"github.com/emiliogarza/distrimax/internal/domain/cart"
)

// ErrNotFound is returned when a requested order does not exist.
var ErrNotFound = errors.New("order not found")

// Status is the back-office lifecycle state of an order.
type Status string

const (
	StatusPending   Status = "pending"
	StatusConfirmed Status = "confirmed"
	StatusDelivered Status = "delivered"
	StatusCancelled Status = "cancelled"
)

// transitions lists the allowed status moves. Delivered and cancelled are
// terminal.
var transitions = map[Status][]Status{
	StatusPending:   {StatusConfirmed, StatusCancelled},
	StatusConfirmed: {StatusDelivered, StatusCancelled},
}

// CanTransition reports whether an order may move from one status to another.
func CanTransition(from, to Status) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// InvalidTransitionError indicates a disallowed status change.
type InvalidTransitionError struct {
	From Status
	To   Status
}

func (e *InvalidTransitionError) Error() string {
	return "invalid status transition from " + string(e.From) + " to " + string(e.To)
}

// Line is a cart line frozen at checkout with its resolved price. Unlike
// cart lines, order lines never reprice.
type Line struct {
	ProductID string               `json:"product_id"`
	Name      string               `json:"name"`
	Kind      cart.Kind            `json:"kind"`
	Unit      cart.FulfillmentUnit `json:"unit"`
	Quantity  int                  `json:"quantity"`
	UnitPrice decimal.Decimal      `json:"unit_price"`
	LineTotal decimal.Decimal      `json:"line_total"`
}

// Order is a placed wholesale order.
type Order struct {
	ID         string
	CommerceID string
	Lines      []Line
	Subtotal   decimal.Decimal
	Discount   decimal.Decimal
	Total      decimal.Decimal
	CouponCode string
	Status     Status
	Notes      string
	CreatedAt  time.Time
}

// ListFilter narrows an order listing.
type ListFilter struct {
	CommerceID string
	Status     Status
	Limit      int
	Page       int
}

// Repository defines persistence operations for orders.
type Repository interface {
	Create(ctx context.Context, o *Order) error
	GetByID(ctx context.Context, id string) (*Order, error)
	List(ctx context.Context, filter ListFilter) ([]Order, error)
	UpdateStatus(ctx context.Context, id string, status Status) error
}
