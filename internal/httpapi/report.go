package httpapi

import (
	"net/http"
	"strconv"
	"time"
)

type statsDTO struct {
	TotalOrders     int     `json:"totalOrders"`
	PendingOrders   int     `json:"pendingOrders"`
	Revenue         float64 `json:"revenue"`
	ActiveCommerces int     `json:"activeCommerces"`
	ActiveProducts  int     `json:"activeProducts"`
}

func (h *Handler) reportStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.reports.Stats(r.Context())
	if err != nil {
		respondInternal(w, r, err)
		return
	}
	respond(w, http.StatusOK, statsDTO{
		TotalOrders:     stats.TotalOrders,
		PendingOrders:   stats.PendingOrders,
		Revenue:         stats.Revenue.InexactFloat64(),
		ActiveCommerces: stats.ActiveCommerces,
		ActiveProducts:  stats.ActiveProducts,
	})
}

type dailySalesDTO struct {
	Day     time.Time `json:"day"`
	Orders  int       `json:"orders"`
	Revenue float64   `json:"revenue"`
}

func (h *Handler) reportSalesHistory(w http.ResponseWriter, r *http.Request) {
	days := 30
	if n, err := strconv.Atoi(r.URL.Query().Get("days")); err == nil && n > 0 {
		days = n
	}

	history, err := h.reports.SalesHistory(r.Context(), days)
	if err != nil {
		respondInternal(w, r, err)
		return
	}

	out := make([]dailySalesDTO, len(history))
	for i, d := range history {
		out[i] = dailySalesDTO{Day: d.Day, Orders: d.Orders, Revenue: d.Revenue.InexactFloat64()}
	}
	respond(w, http.StatusOK, out)
}

type topProductDTO struct {
	ProductID string  `json:"productId"`
	Name      string  `json:"name"`
	Units     int     `json:"units"`
	Revenue   float64 `json:"revenue"`
}

func (h *Handler) reportTopProducts(w http.ResponseWriter, r *http.Request) {
	limit := 10
	if n, err := strconv.Atoi(r.URL.Query().Get("limit")); err == nil && n > 0 {
		limit = n
	}

	top, err := h.reports.TopProducts(r.Context(), limit)
	if err != nil {
		respondInternal(w, r, err)
		return
	}

	out := make([]topProductDTO, len(top))
	for i, p := range top {
		out[i] = topProductDTO{ProductID: p.ProductID, Name: p.Name, Units: p.Units, Revenue: p.Revenue.InexactFloat64()}
	}
	respond(w, http.StatusOK, out)
}
