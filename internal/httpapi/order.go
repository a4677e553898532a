package httpapi

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-faster/errors"

	"github.com/emiliogarza/distrimax/internal/domain/commerce"
	"github.com/emiliogarza/distrimax/internal/domain/discount"
	"github.com/emiliogarza/distrimax/internal/domain/order"
)

type orderLineDTO struct {
	ProductID string  `json:"productId"`
	Name      string  `json:"name"`
	Kind      string  `json:"kind"`
	Unit      string  `json:"unit"`
	Quantity  int     `json:"quantity"`
	UnitPrice float64 `json:"unitPrice"`
	LineTotal float64 `json:"lineTotal"`
}

type orderDTO struct {
	ID         string         `json:"id"`
	CommerceID string         `json:"commerceId"`
	Lines      []orderLineDTO `json:"lines"`
	Subtotal   float64        `json:"subtotal"`
	Discount   float64        `json:"discount"`
	Total      float64        `json:"total"`
	CouponCode string         `json:"couponCode,omitempty"`
	Status     string         `json:"status"`
	Notes      string         `json:"notes,omitempty"`
	CreatedAt  time.Time      `json:"createdAt"`
}

func orderToDTO(o *order.Order) orderDTO {
	lines := make([]orderLineDTO, len(o.Lines))
	for i, l := range o.Lines {
		lines[i] = orderLineDTO{
			ProductID: l.ProductID,
			Name:      l.Name,
			Kind:      string(l.Kind),
			Unit:      string(l.Unit),
			Quantity:  l.Quantity,
			UnitPrice: l.UnitPrice.InexactFloat64(),
			LineTotal: l.LineTotal.InexactFloat64(),
		}
	}
	return orderDTO{
		ID:         o.ID,
		CommerceID: o.CommerceID,
		Lines:      lines,
		Subtotal:   o.Subtotal.InexactFloat64(),
		Discount:   o.Discount.InexactFloat64(),
		Total:      o.Total.InexactFloat64(),
		CouponCode: o.CouponCode,
		Status:     string(o.Status),
		Notes:      o.Notes,
		CreatedAt:  o.CreatedAt,
	}
}

func (h *Handler) placeOrder(w http.ResponseWriter, r *http.Request) {
	var req struct {
		CommerceID string `json:"commerceId"`
		CouponCode string `json:"couponCode"`
		Notes      string `json:"notes"`
	}
	if err := decodeBody(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	// The commerce must exist and be active before anything is priced.
	if req.CommerceID != "" {
		com, err := h.commerces.GetByID(r.Context(), req.CommerceID)
		if err != nil {
			if errors.Is(err, commerce.ErrNotFound) {
				respondError(w, http.StatusUnprocessableEntity, "unknown commerce")
				return
			}
			respondInternal(w, r, err)
			return
		}
		if !com.Active {
			respondError(w, http.StatusUnprocessableEntity, "commerce is inactive")
			return
		}
	}

	c, ctx := h.sessionCart(w, r)
	o, err := h.checkout.Checkout(ctx, order.CheckoutRequest{
		Cart:       c,
		CommerceID: req.CommerceID,
		CouponCode: req.CouponCode,
		Notes:      req.Notes,
	})
	if err != nil {
		switch {
		case errors.Is(err, order.ErrEmptyCart):
			respondError(w, http.StatusBadRequest, "cart is empty")
		case errors.Is(err, order.ErrMissingCommerce):
			respondError(w, http.StatusBadRequest, "commerceId is required")
		case errors.Is(err, discount.ErrInvalidCode),
			errors.Is(err, discount.ErrExpired),
			errors.Is(err, discount.ErrUsageLimitReached):
			respondError(w, http.StatusUnprocessableEntity, "invalid coupon code")
		default:
			respondInternal(w, r, err)
		}
		return
	}

	// The cart served its purpose; a fresh session starts empty.
	if err := c.Clear(ctx); err != nil {
		respondInternal(w, r, err)
		return
	}
	respond(w, http.StatusCreated, orderToDTO(o))
}

func (h *Handler) listOrders(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := order.ListFilter{
		CommerceID: q.Get("commerceId"),
		Status:     order.Status(q.Get("status")),
	}
	if n, err := strconv.Atoi(q.Get("limit")); err == nil && n > 0 {
		filter.Limit = n
	}
	if n, err := strconv.Atoi(q.Get("page")); err == nil && n > 1 {
		filter.Page = n
	}

	orders, err := h.orders.List(r.Context(), filter)
	if err != nil {
		respondInternal(w, r, err)
		return
	}

	out := make([]orderDTO, len(orders))
	for i := range orders {
		out[i] = orderToDTO(&orders[i])
	}
	respond(w, http.StatusOK, out)
}

func (h *Handler) getOrder(w http.ResponseWriter, r *http.Request) {
	o, err := h.orders.GetByID(r.Context(), r.PathValue("id"))
	if err != nil {
		if errors.Is(err, order.ErrNotFound) {
			respondError(w, http.StatusNotFound, "order not found")
			return
		}
		respondInternal(w, r, err)
		return
	}
	respond(w, http.StatusOK, orderToDTO(o))
}

func (h *Handler) updateOrderStatus(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Status string `json:"status"`
	}
	if err := decodeBody(r, &req); err != nil || req.Status == "" {
		respondError(w, http.StatusBadRequest, "status is required")
		return
	}

	o, err := h.checkout.ChangeStatus(r.Context(), r.PathValue("id"), order.Status(req.Status))
	if err != nil {
		var transitionErr *order.InvalidTransitionError
		switch {
		case errors.Is(err, order.ErrNotFound):
			respondError(w, http.StatusNotFound, "order not found")
		case errors.As(err, &transitionErr):
			respondError(w, http.StatusUnprocessableEntity, transitionErr.Error())
		default:
			respondInternal(w, r, err)
		}
		return
	}
	respond(w, http.StatusOK, orderToDTO(o))
}
