// Package catalog defines the product catalog: beverages sold wholesale by
// the unit, the pack, or the pallet, with optional quantity-break pricing.
package catalog

import (
	"context"
	"time"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"

	"github.com/emiliogarza/distrimax/internal/domain/cart"
)

// ErrNotFound is returned when a requested product does not exist.
var ErrNotFound = errors.New("product not found")

// Product is a catalog item. PackPrice is the base price (the price of one
// pack); UnitPrice and PalletPrice cover the other fulfillment units.
// PalletPrice is per pack when the product is bought by the pallet.
type Product struct {
	ID             string
	Slug           string
	Name           string
	Description    string
	Category       string
	SupplierID     string
	PackPrice      decimal.Decimal
	UnitPrice      decimal.Decimal
	PalletPrice    decimal.Decimal
	ExclusivePrice decimal.Decimal
	UnitsPerPack   int
	PacksPerPallet int
	BulkTiers      []cart.BulkTier
	Stock          int
	Image          string
	Exclusive      bool
	Active         bool
	CreatedAt      time.Time
}

// CartSnapshot freezes the product's pricing attributes for the cart. The
// cart copies everything at add time; later catalog edits do not reach
// lines already in a cart.
func (p Product) CartSnapshot() cart.Snapshot {
	tiers := make([]cart.BulkTier, len(p.BulkTiers))
	copy(tiers, p.BulkTiers)
	return cart.Snapshot{
		ProductID:      p.ID,
		Name:           p.Name,
		PackPrice:      p.PackPrice,
		UnitPrice:      p.UnitPrice,
		PalletPrice:    p.PalletPrice,
		UnitsPerPack:   p.UnitsPerPack,
		PacksPerPallet: p.PacksPerPallet,
		BulkTiers:      tiers,
	}
}

// ListFilter narrows and orders a catalog listing. Zero values mean "no
// constraint"; Limit <= 0 disables pagination.
type ListFilter struct {
	Search          string
	Category        string
	ExcludeCategory string
	SellType        string // unit | pack | pallet: only products priced for that unit
	Sort            string // name | price | price_desc | newest
	Exclusive       bool
	IncludeInactive bool
	Limit           int
	Page            int
}

// PriceSample is one point of a product's price history.
type PriceSample struct {
	PackPrice  decimal.Decimal
	RecordedAt time.Time
}

// HistoryStats summarizes a product's recorded price history.
type HistoryStats struct {
	Samples  []PriceSample
	MinPrice decimal.Decimal
	MaxPrice decimal.Decimal
	AvgPrice decimal.Decimal
}

// Repository defines persistence operations for the product catalog.
type Repository interface {
	List(ctx context.Context, filter ListFilter) ([]Product, error)
	GetByID(ctx context.Context, id string) (*Product, error)
	GetBySlug(ctx context.Context, slug string) (*Product, error)
	GetByIDs(ctx context.Context, ids []string) ([]Product, error)
	Categories(ctx context.Context) ([]string, error)
	CreateCategory(ctx context.Context, name string) error

	Create(ctx context.Context, p *Product) error
	Update(ctx context.Context, p *Product) error
	Delete(ctx context.Context, id string) error
	ToggleStatus(ctx context.Context, id string) (bool, error)
	HistoryStats(ctx context.Context, id string) (*HistoryStats, error)
}
