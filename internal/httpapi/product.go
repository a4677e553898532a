package httpapi

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/emiliogarza/distrimax/internal/domain/cart"
	"github.com/emiliogarza/distrimax/internal/domain/catalog"
)

type tierDTO struct {
	MinQuantity int     `json:"minQuantity"`
	Price       float64 `json:"price"`
}

type productDTO struct {
	ID             string    `json:"id"`
	Slug           string    `json:"slug"`
	Name           string    `json:"name"`
	Description    string    `json:"description,omitempty"`
	Category       string    `json:"category,omitempty"`
	SupplierID     string    `json:"supplierId,omitempty"`
	PackPrice      float64   `json:"packPrice"`
	UnitPrice      float64   `json:"unitPrice"`
	PalletPrice    float64   `json:"palletPrice"`
	ExclusivePrice float64   `json:"exclusivePrice,omitempty"`
	UnitsPerPack   int       `json:"unitsPerPack"`
	PacksPerPallet int       `json:"packsPerPallet"`
	BulkTiers      []tierDTO `json:"bulkTiers,omitempty"`
	Stock          int       `json:"stock"`
	Image          string    `json:"image,omitempty"`
	Exclusive      bool      `json:"exclusive"`
	Active         bool      `json:"active"`
	CreatedAt      time.Time `json:"createdAt"`
}

func (h *Handler) productDTO(p catalog.Product) productDTO {
	tiers := make([]tierDTO, 0, len(p.BulkTiers))
	for _, t := range p.BulkTiers {
		tiers = append(tiers, tierDTO{MinQuantity: t.MinQuantity, Price: t.Price.InexactFloat64()})
	}
	if len(tiers) == 0 {
		tiers = nil
	}
	return productDTO{
		ID:             p.ID,
		Slug:           p.Slug,
		Name:           p.Name,
		Description:    p.Description,
		Category:       p.Category,
		SupplierID:     p.SupplierID,
		PackPrice:      p.PackPrice.InexactFloat64(),
		UnitPrice:      p.UnitPrice.InexactFloat64(),
		PalletPrice:    p.PalletPrice.InexactFloat64(),
		ExclusivePrice: p.ExclusivePrice.InexactFloat64(),
		UnitsPerPack:   p.UnitsPerPack,
		PacksPerPallet: p.PacksPerPallet,
		BulkTiers:      tiers,
		Stock:          p.Stock,
		Image:          h.imageURL(p.Image),
		Exclusive:      p.Exclusive,
		Active:         p.Active,
		CreatedAt:      p.CreatedAt,
	}
}

func listFilterFromQuery(r *http.Request) catalog.ListFilter {
	q := r.URL.Query()
	filter := catalog.ListFilter{
		Search:          q.Get("search"),
		Category:        q.Get("category"),
		ExcludeCategory: q.Get("excludeCategory"),
		SellType:        q.Get("sellType"),
		Sort:            q.Get("sort"),
		Exclusive:       q.Get("exclusive") == "true",
	}
	if n, err := strconv.Atoi(q.Get("limit")); err == nil && n > 0 {
		filter.Limit = n
	}
	if n, err := strconv.Atoi(q.Get("page")); err == nil && n > 1 {
		filter.Page = n
	}
	return filter
}

func (h *Handler) listProducts(w http.ResponseWriter, r *http.Request) {
	products, err := h.products.List(r.Context(), listFilterFromQuery(r))
	if err != nil {
		respondInternal(w, r, err)
		return
	}

	out := make([]productDTO, len(products))
	for i, p := range products {
		out[i] = h.productDTO(p)
	}
	respond(w, http.StatusOK, out)
}

func (h *Handler) getProduct(w http.ResponseWriter, r *http.Request) {
	p, err := h.products.GetBySlug(r.Context(), r.PathValue("slug"))
	if err != nil {
		if errors.Is(err, catalog.ErrNotFound) {
			respondError(w, http.StatusNotFound, "product not found")
			return
		}
		respondInternal(w, r, err)
		return
	}
	respond(w, http.StatusOK, h.productDTO(*p))
}

func (h *Handler) listCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.products.Categories(r.Context())
	if err != nil {
		respondInternal(w, r, err)
		return
	}
	respond(w, http.StatusOK, categories)
}

// productRequest is the admin create/update payload.
type productRequest struct {
	Slug           string    `json:"slug"`
	Name           string    `json:"name"`
	Description    string    `json:"description"`
	Category       string    `json:"category"`
	SupplierID     string    `json:"supplierId"`
	PackPrice      float64   `json:"packPrice"`
	UnitPrice      float64   `json:"unitPrice"`
	PalletPrice    float64   `json:"palletPrice"`
	ExclusivePrice float64   `json:"exclusivePrice"`
	UnitsPerPack   int       `json:"unitsPerPack"`
	PacksPerPallet int       `json:"packsPerPallet"`
	BulkTiers      []tierDTO `json:"bulkTiers"`
	Stock          int       `json:"stock"`
	Image          string    `json:"image"`
	Exclusive      bool      `json:"exclusive"`
	Active         bool      `json:"active"`
}

func (req productRequest) toProduct(id string) *catalog.Product {
	tiers := make([]cart.BulkTier, 0, len(req.BulkTiers))
	for _, t := range req.BulkTiers {
		tiers = append(tiers, cart.BulkTier{
			MinQuantity: t.MinQuantity,
			Price:       decimal.NewFromFloat(t.Price),
		})
	}
	if len(tiers) == 0 {
		tiers = nil
	}
	return &catalog.Product{
		ID:             id,
		Slug:           req.Slug,
		Name:           req.Name,
		Description:    req.Description,
		Category:       req.Category,
		SupplierID:     req.SupplierID,
		PackPrice:      decimal.NewFromFloat(req.PackPrice),
		UnitPrice:      decimal.NewFromFloat(req.UnitPrice),
		PalletPrice:    decimal.NewFromFloat(req.PalletPrice),
		ExclusivePrice: decimal.NewFromFloat(req.ExclusivePrice),
		UnitsPerPack:   req.UnitsPerPack,
		PacksPerPallet: req.PacksPerPallet,
		BulkTiers:      tiers,
		Stock:          req.Stock,
		Image:          req.Image,
		Exclusive:      req.Exclusive,
		Active:         req.Active,
	}
}

func (req productRequest) validate() string {
	switch {
	case req.Slug == "":
		return "slug is required"
	case req.Name == "":
		return "name is required"
	case req.PackPrice < 0 || req.UnitPrice < 0 || req.PalletPrice < 0:
		return "prices must not be negative"
	}
	return ""
}

func (h *Handler) adminListProducts(w http.ResponseWriter, r *http.Request) {
	filter := listFilterFromQuery(r)
	filter.IncludeInactive = true

	products, err := h.products.List(r.Context(), filter)
	if err != nil {
		respondInternal(w, r, err)
		return
	}

	out := make([]productDTO, len(products))
	for i, p := range products {
		out[i] = h.productDTO(p)
	}
	respond(w, http.StatusOK, out)
}

func (h *Handler) createProduct(w http.ResponseWriter, r *http.Request) {
	var req productRequest
	if err := decodeBody(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if msg := req.validate(); msg != "" {
		respondError(w, http.StatusUnprocessableEntity, msg)
		return
	}

	p := req.toProduct(uuid.New().String())
	if err := h.products.Create(r.Context(), p); err != nil {
		respondInternal(w, r, err)
		return
	}
	respond(w, http.StatusCreated, h.productDTO(*p))
}

func (h *Handler) updateProduct(w http.ResponseWriter, r *http.Request) {
	var req productRequest
	if err := decodeBody(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if msg := req.validate(); msg != "" {
		respondError(w, http.StatusUnprocessableEntity, msg)
		return
	}

	p := req.toProduct(r.PathValue("id"))
	if err := h.products.Update(r.Context(), p); err != nil {
		if errors.Is(err, catalog.ErrNotFound) {
			respondError(w, http.StatusNotFound, "product not found")
			return
		}
		respondInternal(w, r, err)
		return
	}
	respond(w, http.StatusOK, h.productDTO(*p))
}

func (h *Handler) deleteProduct(w http.ResponseWriter, r *http.Request) {
	if err := h.products.Delete(r.Context(), r.PathValue("id")); err != nil {
		if errors.Is(err, catalog.ErrNotFound) {
			respondError(w, http.StatusNotFound, "product not found")
			return
		}
		respondInternal(w, r, err)
		return
	}
	respond(w, http.StatusOK, map[string]string{"id": r.PathValue("id")})
}

func (h *Handler) toggleProduct(w http.ResponseWriter, r *http.Request) {
	active, err := h.products.ToggleStatus(r.Context(), r.PathValue("id"))
	if err != nil {
		if errors.Is(err, catalog.ErrNotFound) {
			respondError(w, http.StatusNotFound, "product not found")
			return
		}
		respondInternal(w, r, err)
		return
	}
	respond(w, http.StatusOK, map[string]bool{"active": active})
}

type priceSampleDTO struct {
	PackPrice  float64   `json:"packPrice"`
	RecordedAt time.Time `json:"recordedAt"`
}

type historyStatsDTO struct {
	Samples  []priceSampleDTO `json:"samples"`
	MinPrice float64          `json:"minPrice"`
	MaxPrice float64          `json:"maxPrice"`
	AvgPrice float64          `json:"avgPrice"`
}

func (h *Handler) productHistory(w http.ResponseWriter, r *http.Request) {
	stats, err := h.products.HistoryStats(r.Context(), r.PathValue("id"))
	if err != nil {
		if errors.Is(err, catalog.ErrNotFound) {
			respondError(w, http.StatusNotFound, "no price history")
			return
		}
		respondInternal(w, r, err)
		return
	}

	samples := make([]priceSampleDTO, len(stats.Samples))
	for i, s := range stats.Samples {
		samples[i] = priceSampleDTO{PackPrice: s.PackPrice.InexactFloat64(), RecordedAt: s.RecordedAt}
	}
	respond(w, http.StatusOK, historyStatsDTO{
		Samples:  samples,
		MinPrice: stats.MinPrice.InexactFloat64(),
		MaxPrice: stats.MaxPrice.InexactFloat64(),
		AvgPrice: stats.AvgPrice.InexactFloat64(),
	})
}

func (h *Handler) createCategory(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name string `json:"name"`
	}
	if err := decodeBody(r, &req); err != nil || req.Name == "" {
		respondError(w, http.StatusBadRequest, "category name is required")
		return
	}

	if err := h.products.CreateCategory(r.Context(), req.Name); err != nil {
		respondInternal(w, r, err)
		return
	}
	respond(w, http.StatusCreated, map[string]string{"name": req.Name})
}
