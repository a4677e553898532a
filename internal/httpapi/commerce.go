package httpapi

import (
	"net/http"
	"time"

	"github.com/go-faster/errors"
	"github.com/google/uuid"

	"github.com/emiliogarza/distrimax/internal/domain/commerce"
)

type commerceDTO struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CUIT      string    `json:"cuit,omitempty"`
	Email     string    `json:"email,omitempty"`
	Phone     string    `json:"phone,omitempty"`
	Address   string    `json:"address,omitempty"`
	Zone      string    `json:"zone,omitempty"`
	Exclusive bool      `json:"exclusive"`
	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"createdAt"`
}

func commerceToDTO(c commerce.Commerce) commerceDTO {
	return commerceDTO{
		ID:        c.ID,
		Name:      c.Name,
		CUIT:      c.CUIT,
		Email:     c.Email,
		Phone:     c.Phone,
		Address:   c.Address,
		Zone:      c.Zone,
		Exclusive: c.Exclusive,
		Active:    c.Active,
		CreatedAt: c.CreatedAt,
	}
}

type commerceRequest struct {
	Name      string `json:"name"`
	CUIT      string `json:"cuit"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
	Address   string `json:"address"`
	Zone      string `json:"zone"`
	Exclusive bool   `json:"exclusive"`
	Active    bool   `json:"active"`
}

func (req commerceRequest) toCommerce(id string) *commerce.Commerce {
	return &commerce.Commerce{
		ID:        id,
		Name:      req.Name,
		CUIT:      req.CUIT,
		Email:     req.Email,
		Phone:     req.Phone,
		Address:   req.Address,
		Zone:      req.Zone,
		Exclusive: req.Exclusive,
		Active:    req.Active,
	}
}

func (h *Handler) listCommerces(w http.ResponseWriter, r *http.Request) {
	commerces, err := h.commerces.List(r.Context())
	if err != nil {
		respondInternal(w, r, err)
		return
	}

	out := make([]commerceDTO, len(commerces))
	for i, c := range commerces {
		out[i] = commerceToDTO(c)
	}
	respond(w, http.StatusOK, out)
}

func (h *Handler) createCommerce(w http.ResponseWriter, r *http.Request) {
	var req commerceRequest
	if err := decodeBody(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Name == "" {
		respondError(w, http.StatusUnprocessableEntity, "name is required")
		return
	}

	c := req.toCommerce(uuid.New().String())
	if err := h.commerces.Create(r.Context(), c); err != nil {
		respondInternal(w, r, err)
		return
	}
	respond(w, http.StatusCreated, commerceToDTO(*c))
}

func (h *Handler) updateCommerce(w http.ResponseWriter, r *http.Request) {
	var req commerceRequest
	if err := decodeBody(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Name == "" {
		respondError(w, http.StatusUnprocessableEntity, "name is required")
		return
	}

	c := req.toCommerce(r.PathValue("id"))
	if err := h.commerces.Update(r.Context(), c); err != nil {
		if errors.Is(err, commerce.ErrNotFound) {
			respondError(w, http.StatusNotFound, "commerce not found")
			return
		}
		respondInternal(w, r, err)
		return
	}
	respond(w, http.StatusOK, commerceToDTO(*c))
}

func (h *Handler) deleteCommerce(w http.ResponseWriter, r *http.Request) {
	if err := h.commerces.Delete(r.Context(), r.PathValue("id")); err != nil {
		if errors.Is(err, commerce.ErrNotFound) {
			respondError(w, http.StatusNotFound, "commerce not found")
			return
		}
		respondInternal(w, r, err)
		return
	}
	respond(w, http.StatusOK, map[string]string{"id": r.PathValue("id")})
}

func (h *Handler) toggleCommerce(w http.ResponseWriter, r *http.Request) {
	active, err := h.commerces.ToggleStatus(r.Context(), r.PathValue("id"))
	if err != nil {
		if errors.Is(err, commerce.ErrNotFound) {
			respondError(w, http.StatusNotFound, "commerce not found")
			return
		}
		respondInternal(w, r, err)
		return
	}
	respond(w, http.StatusOK, map[string]bool{"active": active})
}
