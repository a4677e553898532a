package order

import (
	"context"
	"time"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/emiliogarza/distrimax/internal/domain/cart"
	"github.com/emiliogarza/distrimax/internal/domain/discount"
)

// Sentinel errors for checkout validation.
var (
	ErrEmptyCart       = errors.New("cart is empty")
	ErrMissingCommerce = errors.New("commerce required")
)

// CheckoutRequest holds the input for placing an order from a session cart.
type CheckoutRequest struct {
	Cart       *cart.Cart
	CommerceID string
	CouponCode string
	Notes      string
}

// Service encapsulates checkout business logic. Pricing is delegated
// entirely to the cart engine; the service freezes the resolved prices,
// applies an optional discount code, and persists the result.
type Service struct {
	discounts discount.Validator
	orders    Repository
	now       func() time.Time
}

// NewService creates an order Service with the required domain dependencies.
func NewService(discounts discount.Validator, orders Repository) *Service {
	return &Service{
		discounts: discounts,
		orders:    orders,
		now:       time.Now,
	}
}

// Checkout validates the cart, resolves a discount code into the cart's
// overlay, freezes every line at its current effective price, and persists
// the order. The total is floored at zero and rounded to 2 decimal places;
// the cart itself is left untouched apart from the applied discount.
func (s *Service) Checkout(ctx context.Context, req CheckoutRequest) (*Order, error) {
	if req.CommerceID == "" {
		return nil, ErrMissingCommerce
	}

	items := req.Cart.Items()
	if len(items) == 0 {
		return nil, ErrEmptyCart
	}

	if req.CouponCode != "" {
		d, err := s.discounts.Validate(ctx, req.CouponCode, req.Cart.ItemCount())
		if err != nil {
			return nil, errors.Wrap(err, "validate discount code")
		}
		req.Cart.ApplyDiscount(*d)
	}

	lines := make([]Line, len(items))
	for i, item := range items {
		price := item.EffectivePrice()
		lines[i] = Line{
			ProductID: item.ProductID,
			Name:      item.Name,
			Kind:      item.Kind,
			Unit:      item.Unit,
			Quantity:  item.Quantity,
			UnitPrice: price,
			LineTotal: item.LineTotal(),
		}
	}

	subtotal := req.Cart.Subtotal()
	total := req.Cart.DiscountedTotal()
	if total.IsNegative() {
		total = decimal.Zero
	}

	o := &Order{
		ID:         uuid.New().String(),
		CommerceID: req.CommerceID,
		Lines:      lines,
		Subtotal:   subtotal.Round(2),
		Discount:   subtotal.Sub(total).Round(2),
		Total:      total.Round(2),
		CouponCode: req.CouponCode,
		Status:     StatusPending,
		Notes:      req.Notes,
		CreatedAt:  s.now(),
	}
	if err := s.orders.Create(ctx, o); err != nil {
		return nil, errors.Wrap(err, "create order")
	}

	// One use per placed order. A failed checkout never burns the code.
	if req.CouponCode != "" {
		if err := s.discounts.Consume(ctx, req.CouponCode); err != nil {
			return nil, errors.Wrap(err, "consume discount code")
		}
	}

	return o, nil
}

// ChangeStatus moves an order to a new lifecycle state, enforcing the
// transition rules, and returns the order with its new status.
func (s *Service) ChangeStatus(ctx context.Context, id string, to Status) (*Order, error) {
	o, err := s.orders.GetByID(ctx, id)
	if err != nil {
		return nil, errors.Wrap(err, "get order")
	}

	if !CanTransition(o.Status, to) {
		return nil, &InvalidTransitionError{From: o.Status, To: to}
	}

	if err := s.orders.UpdateStatus(ctx, id, to); err != nil {
		return nil, errors.Wrap(err, "update order status")
	}
	o.Status = to
	return o, nil
}
