package httpapi

import (
	"net/http"
	"time"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/emiliogarza/distrimax/internal/domain/combo"
)

type comboItemDTO struct {
	ProductID string `json:"productId"`
	Quantity  int    `json:"quantity"`
}

type comboDTO struct {
	ID          string         `json:"id"`
	Slug        string         `json:"slug"`
	Name        string         `json:"name"`
	Description string         `json:"description,omitempty"`
	Items       []comboItemDTO `json:"items"`
	FinalPrice  float64        `json:"finalPrice"`
	Image       string         `json:"image,omitempty"`
	Active      bool           `json:"active"`
	CreatedAt   time.Time      `json:"createdAt"`
}

func (h *Handler) comboDTO(c combo.Combo) comboDTO {
	items := make([]comboItemDTO, len(c.Items))
	for i, item := range c.Items {
		items[i] = comboItemDTO{ProductID: item.ProductID, Quantity: item.Quantity}
	}
	return comboDTO{
		ID:          c.ID,
		Slug:        c.Slug,
		Name:        c.Name,
		Description: c.Description,
		Items:       items,
		FinalPrice:  c.FinalPrice.InexactFloat64(),
		Image:       h.imageURL(c.Image),
		Active:      c.Active,
		CreatedAt:   c.CreatedAt,
	}
}

func (h *Handler) listCombos(w http.ResponseWriter, r *http.Request) {
	combos, err := h.combos.List(r.Context(), false)
	if err != nil {
		respondInternal(w, r, err)
		return
	}

	out := make([]comboDTO, len(combos))
	for i, c := range combos {
		out[i] = h.comboDTO(c)
	}
	respond(w, http.StatusOK, out)
}

func (h *Handler) adminListCombos(w http.ResponseWriter, r *http.Request) {
	combos, err := h.combos.List(r.Context(), true)
	if err != nil {
		respondInternal(w, r, err)
		return
	}

	out := make([]comboDTO, len(combos))
	for i, c := range combos {
		out[i] = h.comboDTO(c)
	}
	respond(w, http.StatusOK, out)
}

type comboRequest struct {
	Slug        string         `json:"slug"`
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Items       []comboItemDTO `json:"items"`
	FinalPrice  float64        `json:"finalPrice"`
	Image       string         `json:"image"`
	Active      bool           `json:"active"`
}

func (req comboRequest) toCombo(id string) *combo.Combo {
	items := make([]combo.Item, len(req.Items))
	for i, item := range req.Items {
		items[i] = combo.Item{ProductID: item.ProductID, Quantity: item.Quantity}
	}
	return &combo.Combo{
		ID:          id,
		Slug:        req.Slug,
		Name:        req.Name,
		Description: req.Description,
		Items:       items,
		FinalPrice:  decimal.NewFromFloat(req.FinalPrice),
		Image:       req.Image,
		Active:      req.Active,
	}
}

func (req comboRequest) validate() string {
	switch {
	case req.Slug == "":
		return "slug is required"
	case req.Name == "":
		return "name is required"
	case len(req.Items) == 0:
		return "combo needs at least one item"
	case req.FinalPrice <= 0:
		return "finalPrice must be positive"
	}
	return ""
}

func (h *Handler) createCombo(w http.ResponseWriter, r *http.Request) {
	var req comboRequest
	if err := decodeBody(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if msg := req.validate(); msg != "" {
		respondError(w, http.StatusUnprocessableEntity, msg)
		return
	}

	c := req.toCombo(uuid.New().String())
	if err := h.combos.Create(r.Context(), c); err != nil {
		respondInternal(w, r, err)
		return
	}
	respond(w, http.StatusCreated, h.comboDTO(*c))
}

func (h *Handler) updateCombo(w http.ResponseWriter, r *http.Request) {
	var req comboRequest
	if err := decodeBody(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if msg := req.validate(); msg != "" {
		respondError(w, http.StatusUnprocessableEntity, msg)
		return
	}

	c := req.toCombo(r.PathValue("id"))
	if err := h.combos.Update(r.Context(), c); err != nil {
		if errors.Is(err, combo.ErrNotFound) {
			respondError(w, http.StatusNotFound, "combo not found")
			return
		}
		respondInternal(w, r, err)
		return
	}
	respond(w, http.StatusOK, h.comboDTO(*c))
}

func (h *Handler) deleteCombo(w http.ResponseWriter, r *http.Request) {
	if err := h.combos.Delete(r.Context(), r.PathValue("id")); err != nil {
		if errors.Is(err, combo.ErrNotFound) {
			respondError(w, http.StatusNotFound, "combo not found")
			return
		}
		respondInternal(w, r, err)
		return
	}
	respond(w, http.StatusOK, map[string]string{"id": r.PathValue("id")})
}
