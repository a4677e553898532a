package httpapi

import (
	"net/http"

	"github.com/go-faster/errors"

	"github.com/emiliogarza/distrimax/internal/domain/cart"
	"github.com/emiliogarza/distrimax/internal/domain/catalog"
	"github.com/emiliogarza/distrimax/internal/domain/combo"
	"github.com/emiliogarza/distrimax/internal/domain/discount"
)

type cartLineDTO struct {
	ProductID string  `json:"productId"`
	Name      string  `json:"name"`
	Kind      string  `json:"kind"`
	Unit      string  `json:"unit"`
	Quantity  int     `json:"quantity"`
	UnitPrice float64 `json:"unitPrice"`
	LineTotal float64 `json:"lineTotal"`
}

type discountDTO struct {
	Type  string  `json:"type"`
	Value float64 `json:"value"`
}

type cartDTO struct {
	Items     []cartLineDTO `json:"items"`
	ItemCount int           `json:"itemCount"`
	Subtotal  float64       `json:"subtotal"`
	Discount  *discountDTO  `json:"discount,omitempty"`
	Total     float64       `json:"total"`
}

func cartToDTO(c *cart.Cart) cartDTO {
	items := c.Items()
	lines := make([]cartLineDTO, len(items))
	for i, item := range items {
		lines[i] = cartLineDTO{
			ProductID: item.ProductID,
			Name:      item.Name,
			Kind:      string(item.Kind),
			Unit:      string(item.Unit),
			Quantity:  item.Quantity,
			UnitPrice: item.EffectivePrice().InexactFloat64(),
			LineTotal: item.LineTotal().InexactFloat64(),
		}
	}

	dto := cartDTO{
		Items:     lines,
		ItemCount: c.ItemCount(),
		Subtotal:  c.Subtotal().InexactFloat64(),
		Total:     c.DiscountedTotal().InexactFloat64(),
	}
	if d := c.AppliedDiscount(); d != nil {
		dto.Discount = &discountDTO{Type: string(d.Type), Value: d.Value.InexactFloat64()}
	}
	return dto
}

func (h *Handler) getCart(w http.ResponseWriter, r *http.Request) {
	c, _ := h.sessionCart(w, r)
	respond(w, http.StatusOK, cartToDTO(c))
}

// cartItemRequest identifies a cart line. Quantity is only used by PATCH.
type cartItemRequest struct {
	ProductID string `json:"productId"`
	Kind      string `json:"kind"`
	Unit      string `json:"unit"`
	Quantity  int    `json:"quantity"`
}

func (req cartItemRequest) kind() cart.Kind {
	if req.Kind == string(cart.KindCombo) {
		return cart.KindCombo
	}
	return cart.KindProduct
}

func (req cartItemRequest) unit() cart.FulfillmentUnit {
	switch req.Unit {
	case string(cart.UnitPack):
		return cart.UnitPack
	case string(cart.UnitPallet):
		return cart.UnitPallet
	default:
		return cart.UnitSingle
	}
}

// snapshot resolves the live pricing attributes for the requested item.
func (h *Handler) snapshot(r *http.Request, req cartItemRequest) (cart.Snapshot, error) {
	if req.kind() == cart.KindCombo {
		c, err := h.combos.GetByID(r.Context(), req.ProductID)
		if err != nil {
			return cart.Snapshot{}, err
		}
		if !c.Active {
			return cart.Snapshot{}, combo.ErrNotFound
		}
		return c.CartSnapshot(), nil
	}

	p, err := h.products.GetByID(r.Context(), req.ProductID)
	if err != nil {
		return cart.Snapshot{}, err
	}
	if !p.Active {
		return cart.Snapshot{}, catalog.ErrNotFound
	}
	return p.CartSnapshot(), nil
}

func (h *Handler) addCartItem(w http.ResponseWriter, r *http.Request) {
	var req cartItemRequest
	if err := decodeBody(r, &req); err != nil || req.ProductID == "" {
		respondError(w, http.StatusBadRequest, "productId is required")
		return
	}

	snap, err := h.snapshot(r, req)
	if err != nil {
		if errors.Is(err, catalog.ErrNotFound) || errors.Is(err, combo.ErrNotFound) {
			respondError(w, http.StatusUnprocessableEntity, "unknown product")
			return
		}
		respondInternal(w, r, err)
		return
	}

	c, ctx := h.sessionCart(w, r)
	if err := c.Add(ctx, snap, req.kind(), req.unit()); err != nil {
		respondInternal(w, r, err)
		return
	}
	respond(w, http.StatusOK, cartToDTO(c))
}

func (h *Handler) setCartQuantity(w http.ResponseWriter, r *http.Request) {
	var req cartItemRequest
	if err := decodeBody(r, &req); err != nil || req.ProductID == "" {
		respondError(w, http.StatusBadRequest, "productId is required")
		return
	}

	c, ctx := h.sessionCart(w, r)
	if err := c.SetQuantity(ctx, req.ProductID, req.kind(), req.Quantity, req.unit()); err != nil {
		respondInternal(w, r, err)
		return
	}
	respond(w, http.StatusOK, cartToDTO(c))
}

func (h *Handler) removeCartItem(w http.ResponseWriter, r *http.Request) {
	var req cartItemRequest
	if err := decodeBody(r, &req); err != nil || req.ProductID == "" {
		respondError(w, http.StatusBadRequest, "productId is required")
		return
	}

	c, ctx := h.sessionCart(w, r)
	if err := c.Remove(ctx, req.ProductID, req.kind(), req.unit()); err != nil {
		respondInternal(w, r, err)
		return
	}
	respond(w, http.StatusOK, cartToDTO(c))
}

func (h *Handler) clearCart(w http.ResponseWriter, r *http.Request) {
	c, ctx := h.sessionCart(w, r)
	if err := c.Clear(ctx); err != nil {
		respondInternal(w, r, err)
		return
	}
	respond(w, http.StatusOK, cartToDTO(c))
}

func (h *Handler) applyCartDiscount(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Code string `json:"code"`
	}
	if err := decodeBody(r, &req); err != nil || req.Code == "" {
		respondError(w, http.StatusBadRequest, "code is required")
		return
	}

	c, ctx := h.sessionCart(w, r)
	d, err := h.validator.Validate(ctx, req.Code, c.ItemCount())
	if err != nil {
		switch {
		case errors.Is(err, discount.ErrInvalidCode):
			respondError(w, http.StatusUnprocessableEntity, "invalid discount code")
		case errors.Is(err, discount.ErrExpired):
			respondError(w, http.StatusUnprocessableEntity, "discount code expired")
		case errors.Is(err, discount.ErrUsageLimitReached):
			respondError(w, http.StatusUnprocessableEntity, "discount code usage limit reached")
		default:
			respondInternal(w, r, err)
		}
		return
	}

	c.ApplyDiscount(*d)
	respond(w, http.StatusOK, cartToDTO(c))
}

func (h *Handler) removeCartDiscount(w http.ResponseWriter, r *http.Request) {
	c, _ := h.sessionCart(w, r)
	c.RemoveDiscount()
	respond(w, http.StatusOK, cartToDTO(c))
}
