// Package cart implements the session cart and its pricing engine: line
// items keyed by (product, kind, fulfillment unit), tiered wholesale price
// resolution, and total aggregation with an optional discount overlay.
package cart

import (
	"context"
	"sort"

	"github.com/shopspring/decimal"
)

// Kind distinguishes regular catalog products from combos. Combos carry a
// precomputed final price and bypass tiered pricing entirely.
type Kind string

const (
	KindProduct Kind = "product"
	KindCombo   Kind = "combo"
)

// FulfillmentUnit is the granularity at which a product is purchased:
// a single unit, a pack of units, or a full pallet of packs.
type FulfillmentUnit string

const (
	UnitSingle FulfillmentUnit = "unit"
	UnitPack   FulfillmentUnit = "pack"
	UnitPallet FulfillmentUnit = "pallet"
)

// BulkTier is a quantity break: once the line quantity reaches MinQuantity,
// the per-unit price drops to Price. Tiers apply to unit fulfillment only.
type BulkTier struct {
	MinQuantity int             `json:"minQuantity"`
	Price       decimal.Decimal `json:"price"`
}

// Snapshot carries a product's pricing attributes at the moment it is added
// to the cart. The cart copies everything; later catalog changes never
// affect items already in the cart.
type Snapshot struct {
	ProductID      string
	Name           string
	PackPrice      decimal.Decimal // base price: the price of one pack
	UnitPrice      decimal.Decimal // flat price for a single unit
	PalletPrice    decimal.Decimal // per-pack price when sold by the pallet
	UnitsPerPack   int
	PacksPerPallet int
	FinalPrice     decimal.Decimal // combos only
	BulkTiers      []BulkTier
}

// LineItem is one entry in the cart, keyed by (ProductID, Kind, Unit). The
// same product may appear on several lines under different fulfillment units.
type LineItem struct {
	ProductID      string
	Name           string
	Kind           Kind
	Unit           FulfillmentUnit
	Quantity       int
	PackPrice      decimal.Decimal
	UnitPrice      decimal.Decimal
	PalletPrice    decimal.Decimal
	UnitsPerPack   int
	PacksPerPallet int
	FinalPrice     decimal.Decimal
	BulkTiers      []BulkTier
}

// EffectivePrice resolves the price of one fulfillment unit of this line at
// its current quantity. It is pure and must be re-evaluated whenever the
// quantity changes, since bulk tier selection depends on it.
//
// Resolution order:
//  1. combo: the stored final price, unconditionally
//  2. pack: the base pack price
//  3. pallet: per-pack pallet price times packs per pallet — the price of
//     the whole pallet, not of one pack
//  4. unit: the best matching bulk tier (largest MinQuantity satisfied by
//     the current quantity), falling back to the flat unit price. The
//     fallback is never derived by dividing the pack price.
func (i LineItem) EffectivePrice() decimal.Decimal {
	if i.Kind == KindCombo {
		return i.FinalPrice
	}

	switch i.Unit {
	case UnitPack:
		return i.PackPrice
	case UnitPallet:
		return i.PalletPrice.Mul(decimal.NewFromInt(int64(i.PacksPerPallet)))
	}

	if tier, ok := i.bestTier(); ok {
		return tier.Price
	}
	return i.UnitPrice
}

// bestTier returns the tier with the largest MinQuantity that the current
// quantity satisfies, or false when no tier matches.
func (i LineItem) bestTier() (BulkTier, bool) {
	best := BulkTier{MinQuantity: -1}
	for _, t := range i.BulkTiers {
		if i.Quantity >= t.MinQuantity && t.MinQuantity > best.MinQuantity {
			best = t
		}
	}
	return best, best.MinQuantity >= 0
}

// LineTotal is the line's contribution to the subtotal.
func (i LineItem) LineTotal() decimal.Decimal {
	return i.EffectivePrice().Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// matches reports whether this line is the one identified by the triple.
func (i LineItem) matches(productID string, kind Kind, unit FulfillmentUnit) bool {
	return i.ProductID == productID && i.Kind == kind && i.Unit == unit
}

// DiscountType enumerates the supported cart discount strategies.
type DiscountType string

const (
	// DiscountPercentage reduces the subtotal by Value percent (0-100).
	DiscountPercentage DiscountType = "percentage"
	// DiscountFixed subtracts Value from the subtotal, floored at zero.
	DiscountFixed DiscountType = "fixed"
)

// Discount is the single optional discount overlay on the cart total.
type Discount struct {
	Type  DiscountType
	Value decimal.Decimal
}

// Store persists the cart's line items. Implementations hold a single entry
// per session containing the full JSON-encoded item list; it is rewritten in
// full on every mutation.
type Store interface {
	Load(ctx context.Context) ([]LineItem, error)
	Save(ctx context.Context, items []LineItem) error
}

// Cart owns a session's line items and applied discount. It is the single
// source of truth for all derived monetary totals.
//
// A Cart is owned by exactly one session and is not safe for concurrent use.
// The discount is session-scoped and never persisted; items are persisted on
// every mutation.
type Cart struct {
	store    Store
	items    []LineItem
	discount *Discount
}

// New returns an empty cart backed by the given store.
func New(store Store) *Cart {
	return &Cart{store: store}
}

// Open rehydrates a cart from its store. Malformed or unreadable persisted
// state is discarded and the cart starts empty; corruption is never
// surfaced to the caller.
func Open(ctx context.Context, store Store) *Cart {
	c := &Cart{store: store}
	items, err := store.Load(ctx)
	if err != nil {
		return c
	}
	c.items = items
	return c
}

var hundred = decimal.NewFromInt(100)

// Add puts one fulfillment unit of the product in the cart. When a line for
// the same (product, kind, unit) triple already exists its quantity is
// incremented; otherwise a new line with quantity 1 is appended, copying the
// snapshot's pricing attributes. Invalid snapshots produce a zero-priced
// line rather than an error.
func (c *Cart) Add(ctx context.Context, snap Snapshot, kind Kind, unit FulfillmentUnit) error {
	if unit == "" {
		unit = UnitSingle
	}

	for idx := range c.items {
		if c.items[idx].matches(snap.ProductID, kind, unit) {
			c.items[idx].Quantity++
			return c.persist(ctx)
		}
	}

	c.items = append(c.items, newLine(snap, kind, unit))
	return c.persist(ctx)
}

// newLine builds a line item from a snapshot, normalizing missing or
// negative numeric fields to zero so no line is ever priced as garbage.
func newLine(snap Snapshot, kind Kind, unit FulfillmentUnit) LineItem {
	tiers := make([]BulkTier, 0, len(snap.BulkTiers))
	for _, t := range snap.BulkTiers {
		if t.MinQuantity < 0 {
			continue
		}
		tiers = append(tiers, BulkTier{
			MinQuantity: t.MinQuantity,
			Price:       clampZero(t.Price),
		})
	}
	sort.SliceStable(tiers, func(a, b int) bool {
		return tiers[a].MinQuantity < tiers[b].MinQuantity
	})
	if len(tiers) == 0 {
		tiers = nil
	}

	return LineItem{
		ProductID:      snap.ProductID,
		Name:           snap.Name,
		Kind:           kind,
		Unit:           unit,
		Quantity:       1,
		PackPrice:      clampZero(snap.PackPrice),
		UnitPrice:      clampZero(snap.UnitPrice),
		PalletPrice:    clampZero(snap.PalletPrice),
		UnitsPerPack:   maxInt(snap.UnitsPerPack, 0),
		PacksPerPallet: maxInt(snap.PacksPerPallet, 0),
		FinalPrice:     clampZero(snap.FinalPrice),
		BulkTiers:      tiers,
	}
}

// Remove deletes the line identified by the triple. Removing an absent line
// is a no-op, but the item list is persisted either way.
func (c *Cart) Remove(ctx context.Context, productID string, kind Kind, unit FulfillmentUnit) error {
	if unit == "" {
		unit = UnitSingle
	}

	kept := c.items[:0]
	for _, item := range c.items {
		if !item.matches(productID, kind, unit) {
			kept = append(kept, item)
		}
	}
	c.items = kept
	return c.persist(ctx)
}

// SetQuantity sets the line's quantity to an absolute value. A quantity
// below 1 removes the line.
func (c *Cart) SetQuantity(ctx context.Context, productID string, kind Kind, quantity int, unit FulfillmentUnit) error {
	if quantity < 1 {
		return c.Remove(ctx, productID, kind, unit)
	}
	if unit == "" {
		unit = UnitSingle
	}

	for idx := range c.items {
		if c.items[idx].matches(productID, kind, unit) {
			c.items[idx].Quantity = quantity
			break
		}
	}
	return c.persist(ctx)
}

// Clear empties the item list and drops the applied discount.
func (c *Cart) Clear(ctx context.Context) error {
	c.items = nil
	c.discount = nil
	return c.persist(ctx)
}

// Items returns a copy of the current line items in insertion order.
func (c *Cart) Items() []LineItem {
	out := make([]LineItem, len(c.items))
	copy(out, c.items)
	return out
}

// Subtotal sums every line's effective price times its quantity. It is
// recomputed from scratch on every call: tier selection depends on the
// current quantities, so a cached total would go stale.
func (c *Cart) Subtotal() decimal.Decimal {
	sum := decimal.Zero
	for _, item := range c.items {
		sum = sum.Add(item.LineTotal())
	}
	return sum
}

// ItemCount is the sum of all line quantities, not the line count.
func (c *Cart) ItemCount() int {
	n := 0
	for _, item := range c.items {
		n += item.Quantity
	}
	return n
}

// ApplyDiscount sets the discount overlay, replacing any previous one.
func (c *Cart) ApplyDiscount(d Discount) {
	c.discount = &d
}

// RemoveDiscount clears the discount overlay.
func (c *Cart) RemoveDiscount() {
	c.discount = nil
}

// AppliedDiscount returns the active discount, or nil.
func (c *Cart) AppliedDiscount() *Discount {
	if c.discount == nil {
		return nil
	}
	d := *c.discount
	return &d
}

// DiscountedTotal applies the discount overlay to the subtotal. A fixed
// discount is floored at zero; a percentage discount scales the subtotal.
func (c *Cart) DiscountedTotal() decimal.Decimal {
	subtotal := c.Subtotal()
	if c.discount == nil {
		return subtotal
	}

	switch c.discount.Type {
	case DiscountFixed:
		return clampZero(subtotal.Sub(c.discount.Value))
	case DiscountPercentage:
		return subtotal.Mul(hundred.Sub(c.discount.Value)).Div(hundred)
	}
	return subtotal
}

func (c *Cart) persist(ctx context.Context) error {
	return c.store.Save(ctx, c.items)
}

func clampZero(d decimal.Decimal) decimal.Decimal {
	if d.IsNegative() {
		return decimal.Zero
	}
	return d
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
