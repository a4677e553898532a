// Package combo defines product bundles sold at one precomputed final
// price, opaque to the cart's per-unit tier logic.
package combo

import (
	"context"
	"time"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"

	"github.com/emiliogarza/distrimax/internal/domain/cart"
)

// ErrNotFound is returned when a requested combo does not exist.
var ErrNotFound = errors.New("combo not found")

// Item is one component of a combo.
type Item struct {
	ProductID string `json:"productId"`
	Quantity  int    `json:"quantity"`
}

// Combo bundles products at a single final price.
type Combo struct {
	ID          string
	Slug        string
	Name        string
	Description string
	Items       []Item
	FinalPrice  decimal.Decimal
	Image       string
	Active      bool
	CreatedAt   time.Time
}

// CartSnapshot freezes the combo for the cart. Only the final price
// matters; tier fields stay zero and are ignored by the pricing engine.
func (c Combo) CartSnapshot() cart.Snapshot {
	return cart.Snapshot{
		ProductID:  c.ID,
		Name:       c.Name,
		FinalPrice: c.FinalPrice,
	}
}

// Repository defines persistence operations for combos.
type Repository interface {
	List(ctx context.Context, includeInactive bool) ([]Combo, error)
	GetByID(ctx context.Context, id string) (*Combo, error)
	Create(ctx context.Context, c *Combo) error
	Update(ctx context.Context, c *Combo) error
	Delete(ctx context.Context, id string) error
}
