package httpapi

import (
	"net/http"
	"time"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/emiliogarza/distrimax/internal/domain/cart"
	"github.com/emiliogarza/distrimax/internal/domain/discount"
)

type discountRuleDTO struct {
	ID          string     `json:"id"`
	Code        string     `json:"code"`
	Type        string     `json:"type"`
	Value       float64    `json:"value"`
	MinItems    int        `json:"minItems,omitempty"`
	Description string     `json:"description,omitempty"`
	ValidFrom   *time.Time `json:"validFrom,omitempty"`
	ValidUntil  *time.Time `json:"validUntil,omitempty"`
	MaxUses     int        `json:"maxUses,omitempty"`
	Uses        int        `json:"uses"`
	Active      bool       `json:"active"`
}

func ruleToDTO(rule discount.Rule) discountRuleDTO {
	return discountRuleDTO{
		ID:          rule.ID,
		Code:        rule.Code,
		Type:        string(rule.Type),
		Value:       rule.Value.InexactFloat64(),
		MinItems:    rule.MinItems,
		Description: rule.Description,
		ValidFrom:   rule.ValidFrom,
		ValidUntil:  rule.ValidUntil,
		MaxUses:     rule.MaxUses,
		Uses:        rule.Uses,
		Active:      rule.Active,
	}
}

type discountRuleRequest struct {
	Code        string     `json:"code"`
	Type        string     `json:"type"`
	Value       float64    `json:"value"`
	MinItems    int        `json:"minItems"`
	Description string     `json:"description"`
	ValidFrom   *time.Time `json:"validFrom"`
	ValidUntil  *time.Time `json:"validUntil"`
	MaxUses     int        `json:"maxUses"`
	Active      bool       `json:"active"`
}

func (req discountRuleRequest) validate() string {
	switch {
	case req.Code == "":
		return "code is required"
	case req.Type != string(cart.DiscountPercentage) && req.Type != string(cart.DiscountFixed):
		return "type must be percentage or fixed"
	case req.Value <= 0:
		return "value must be positive"
	case req.Type == string(cart.DiscountPercentage) && req.Value > 100:
		return "percentage value must not exceed 100"
	}
	return ""
}

func (req discountRuleRequest) toRule(id string) *discount.Rule {
	return &discount.Rule{
		ID:          id,
		Code:        req.Code,
		Type:        cart.DiscountType(req.Type),
		Value:       decimal.NewFromFloat(req.Value),
		MinItems:    req.MinItems,
		Description: req.Description,
		ValidFrom:   req.ValidFrom,
		ValidUntil:  req.ValidUntil,
		MaxUses:     req.MaxUses,
		Active:      req.Active,
	}
}

func (h *Handler) listDiscounts(w http.ResponseWriter, r *http.Request) {
	rules, err := h.discounts.List(r.Context())
	if err != nil {
		respondInternal(w, r, err)
		return
	}

	out := make([]discountRuleDTO, len(rules))
	for i, rule := range rules {
		out[i] = ruleToDTO(rule)
	}
	respond(w, http.StatusOK, out)
}

func (h *Handler) createDiscount(w http.ResponseWriter, r *http.Request) {
	var req discountRuleRequest
	if err := decodeBody(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if msg := req.validate(); msg != "" {
		respondError(w, http.StatusUnprocessableEntity, msg)
		return
	}

	rule := req.toRule(uuid.New().String())
	if err := h.discounts.Create(r.Context(), rule); err != nil {
		respondInternal(w, r, err)
		return
	}
	respond(w, http.StatusCreated, ruleToDTO(*rule))
}

func (h *Handler) updateDiscount(w http.ResponseWriter, r *http.Request) {
	var req discountRuleRequest
	if err := decodeBody(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if msg := req.validate(); msg != "" {
		respondError(w, http.StatusUnprocessableEntity, msg)
		return
	}

	rule := req.toRule(r.PathValue("id"))
	if err := h.discounts.Update(r.Context(), rule); err != nil {
		if errors.Is(err, discount.ErrInvalidCode) {
			respondError(w, http.StatusNotFound, "discount not found")
			return
		}
		respondInternal(w, r, err)
		return
	}
	respond(w, http.StatusOK, ruleToDTO(*rule))
}

func (h *Handler) deleteDiscount(w http.ResponseWriter, r *http.Request) {
	if err := h.discounts.Delete(r.Context(), r.PathValue("id")); err != nil {
		if errors.Is(err, discount.ErrInvalidCode) {
			respondError(w, http.StatusNotFound, "discount not found")
			return
		}
		respondInternal(w, r, err)
		return
	}
	respond(w, http.StatusOK, map[string]string{"id": r.PathValue("id")})
}
