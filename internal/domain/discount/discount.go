// Package discount manages admin-defined discount codes and turns a valid
// code into the cart's discount overlay.
package discount

import (
	"context"
	"time"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"

	"github.com/emiliogarza/distrimax/internal/domain/cart"
)

var (
	// ErrInvalidCode is returned when a code is not found, inactive, or the
	// cart does not satisfy the code's minimum item requirement.
	ErrInvalidCode = errors.New("invalid discount code")
	// ErrExpired is returned when a code is outside its valid time window.
	ErrExpired = errors.New("discount code expired")
	// ErrUsageLimitReached is returned when a code has exhausted its allowed uses.
	ErrUsageLimitReached = errors.New("discount code usage limit reached")
)

// Rule defines a discount code's behaviour and eligibility constraints.
// Type and Value map directly onto the cart's discount overlay: percentage
// codes scale the subtotal, fixed codes subtract from it (floored at zero
// by the cart).
type Rule struct {
	ID          string
	Code        string
	Type        cart.DiscountType
	Value       decimal.Decimal
	MinItems    int
	Description string
	ValidFrom   *time.Time
	ValidUntil  *time.Time
	MaxUses     int
	Uses        int
	Active      bool
}

// Apply checks the rule's cart eligibility and returns the discount overlay
// to hand to the cart. It returns ErrInvalidCode when the cart's total item
// count is below the rule's minimum.
func Apply(rule *Rule, itemCount int) (cart.Discount, error) {
	if rule.MinItems > 0 && itemCount < rule.MinItems {
		return cart.Discount{}, ErrInvalidCode
	}

	switch rule.Type {
	case cart.DiscountPercentage, cart.DiscountFixed:
		return cart.Discount{Type: rule.Type, Value: rule.Value}, nil
	default:
		return cart.Discount{}, errors.Errorf("unsupported discount type: %q", rule.Type)
	}
}

// Repository provides lookup and mutation of discount rules.
type Repository interface {
	FindByCode(ctx context.Context, code string) (*Rule, error)
	IncrementUses(ctx context.Context, code string) error

	List(ctx context.Context) ([]Rule, error)
	Create(ctx context.Context, r *Rule) error
	Update(ctx context.Context, r *Rule) error
	Delete(ctx context.Context, id string) error
}
