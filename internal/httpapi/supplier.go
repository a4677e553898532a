package httpapi

import (
	"net/http"
	"time"

	"github.com/go-faster/errors"
	"github.com/google/uuid"

	"github.com/emiliogarza/distrimax/internal/domain/supplier"
)

type supplierDTO struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Contact      string    `json:"contact,omitempty"`
	Email        string    `json:"email,omitempty"`
	Phone        string    `json:"phone,omitempty"`
	CBU          string    `json:"cbu,omitempty"`
	PaymentTerms string    `json:"paymentTerms,omitempty"`
	Notes        string    `json:"notes,omitempty"`
	CreatedAt    time.Time `json:"createdAt"`
}

func supplierToDTO(s supplier.Supplier) supplierDTO {
	return supplierDTO{
		ID:           s.ID,
		Name:         s.Name,
		Contact:      s.Contact,
		Email:        s.Email,
		Phone:        s.Phone,
		CBU:          s.CBU,
		PaymentTerms: s.PaymentTerms,
		Notes:        s.Notes,
		CreatedAt:    s.CreatedAt,
	}
}

type supplierRequest struct {
	Name         string `json:"name"`
	Contact      string `json:"contact"`
	Email        string `json:"email"`
	Phone        string `json:"phone"`
	CBU          string `json:"cbu"`
	PaymentTerms string `json:"paymentTerms"`
	Notes        string `json:"notes"`
}

func (req supplierRequest) toSupplier(id string) *supplier.Supplier {
	return &supplier.Supplier{
		ID:           id,
		Name:         req.Name,
		Contact:      req.Contact,
		Email:        req.Email,
		Phone:        req.Phone,
		CBU:          req.CBU,
		PaymentTerms: req.PaymentTerms,
		Notes:        req.Notes,
	}
}

func (h *Handler) listSuppliers(w http.ResponseWriter, r *http.Request) {
	suppliers, err := h.suppliers.List(r.Context())
	if err != nil {
		respondInternal(w, r, err)
		return
	}

	out := make([]supplierDTO, len(suppliers))
	for i, s := range suppliers {
		out[i] = supplierToDTO(s)
	}
	respond(w, http.StatusOK, out)
}

func (h *Handler) createSupplier(w http.ResponseWriter, r *http.Request) {
	var req supplierRequest
	if err := decodeBody(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Name == "" {
		respondError(w, http.StatusUnprocessableEntity, "name is required")
		return
	}

	s := req.toSupplier(uuid.New().String())
	if err := h.suppliers.Create(r.Context(), s); err != nil {
		respondInternal(w, r, err)
		return
	}
	respond(w, http.StatusCreated, supplierToDTO(*s))
}

func (h *Handler) updateSupplier(w http.ResponseWriter, r *http.Request) {
	var req supplierRequest
	if err := decodeBody(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Name == "" {
		respondError(w, http.StatusUnprocessableEntity, "name is required")
		return
	}

	s := req.toSupplier(r.PathValue("id"))
	if err := h.suppliers.Update(r.Context(), s); err != nil {
		if errors.Is(err, supplier.ErrNotFound) {
			respondError(w, http.StatusNotFound, "supplier not found")
			return
		}
		respondInternal(w, r, err)
		return
	}
	respond(w, http.StatusOK, supplierToDTO(*s))
}

func (h *Handler) deleteSupplier(w http.ResponseWriter, r *http.Request) {
	if err := h.suppliers.Delete(r.Context(), r.PathValue("id")); err != nil {
		if errors.Is(err, supplier.ErrNotFound) {
			respondError(w, http.StatusNotFound, "supplier not found")
			return
		}
		respondInternal(w, r, err)
		return
	}
	respond(w, http.StatusOK, map[string]string{"id": r.PathValue("id")})
}
