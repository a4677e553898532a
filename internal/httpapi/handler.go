// Package httpapi implements the REST surface of the storefront and the
// admin back office. Handlers are thin: they parse, delegate to the domain
// packages, and shape the response envelope.
package httpapi

import (
	"context"
	"net/http"

	"github.com/emiliogarza/distrimax/internal/domain/cart"
	"github.com/emiliogarza/distrimax/internal/domain/catalog"
	"github.com/emiliogarza/distrimax/internal/domain/combo"
	"github.com/emiliogarza/distrimax/internal/domain/commerce"
	"github.com/emiliogarza/distrimax/internal/domain/discount"
	"github.com/emiliogarza/distrimax/internal/domain/order"
	"github.com/emiliogarza/distrimax/internal/domain/report"
	"github.com/emiliogarza/distrimax/internal/domain/supplier"
)

// CartStores hands out a persistence backend per cart session.
type CartStores interface {
	ForSession(session string) cart.Store
}

// Config holds non-dependency configuration for the Handler.
type Config struct {
	// ImageBaseURL is prepended to relative image paths in product and combo
	// responses. When empty, paths are returned as stored.
	ImageBaseURL string
}

// Handler wires every route to its domain dependency.
type Handler struct {
	cfg Config

	products  catalog.Repository
	combos    combo.Repository
	discounts discount.Repository
	validator discount.Validator
	checkout  *order.Service
	orders    order.Repository
	commerces commerce.Repository
	suppliers supplier.Repository
	reports   report.Repository
	carts     CartStores
}

// Deps groups the Handler's domain dependencies.
type Deps struct {
	Products  catalog.Repository
	Combos    combo.Repository
	Discounts discount.Repository
	Validator discount.Validator
	Checkout  *order.Service
	Orders    order.Repository
	Commerces commerce.Repository
	Suppliers supplier.Repository
	Reports   report.Repository
	Carts     CartStores
}

// NewHandler constructs a Handler.
func NewHandler(cfg Config, deps Deps) *Handler {
	return &Handler{
		cfg:       cfg,
		products:  deps.Products,
		combos:    deps.Combos,
		discounts: deps.Discounts,
		validator: deps.Validator,
		checkout:  deps.Checkout,
		orders:    deps.Orders,
		commerces: deps.Commerces,
		suppliers: deps.Suppliers,
		reports:   deps.Reports,
		carts:     deps.Carts,
	}
}

// Middleware matches pkg/httpmiddleware's wrapper shape without importing it.
type Middleware func(http.Handler) http.Handler

// Register mounts all routes on mux. The admin middleware gates everything
// under /api/admin/.
func (h *Handler) Register(mux *http.ServeMux, admin Middleware) {
	// Public catalog.
	mux.HandleFunc("GET /api/products", h.listProducts)
	mux.HandleFunc("GET /api/products/categories", h.listCategories)
	mux.HandleFunc("GET /api/products/{slug}", h.getProduct)
	mux.HandleFunc("GET /api/combos", h.listCombos)

	// Session cart.
	mux.HandleFunc("GET /api/cart", h.getCart)
	mux.HandleFunc("DELETE /api/cart", h.clearCart)
	mux.HandleFunc("POST /api/cart/items", h.addCartItem)
	mux.HandleFunc("PATCH /api/cart/items", h.setCartQuantity)
	mux.HandleFunc("DELETE /api/cart/items", h.removeCartItem)
	mux.HandleFunc("POST /api/cart/discount", h.applyCartDiscount)
	mux.HandleFunc("DELETE /api/cart/discount", h.removeCartDiscount)
	mux.HandleFunc("POST /api/cart/checkout", h.placeOrder)

	// Admin back office.
	adminMux := http.NewServeMux()
	adminMux.HandleFunc("GET /api/admin/products", h.adminListProducts)
	adminMux.HandleFunc("POST /api/admin/products", h.createProduct)
	adminMux.HandleFunc("PUT /api/admin/products/{id}", h.updateProduct)
	adminMux.HandleFunc("DELETE /api/admin/products/{id}", h.deleteProduct)
	adminMux.HandleFunc("POST /api/admin/products/{id}/toggle", h.toggleProduct)
	adminMux.HandleFunc("GET /api/admin/products/{id}/history", h.productHistory)
	adminMux.HandleFunc("POST /api/admin/categories", h.createCategory)

	adminMux.HandleFunc("GET /api/admin/combos", h.adminListCombos)
	adminMux.HandleFunc("POST /api/admin/combos", h.createCombo)
	adminMux.HandleFunc("PUT /api/admin/combos/{id}", h.updateCombo)
	adminMux.HandleFunc("DELETE /api/admin/combos/{id}", h.deleteCombo)

	adminMux.HandleFunc("GET /api/admin/commerces", h.listCommerces)
	adminMux.HandleFunc("POST /api/admin/commerces", h.createCommerce)
	adminMux.HandleFunc("PUT /api/admin/commerces/{id}", h.updateCommerce)
	adminMux.HandleFunc("DELETE /api/admin/commerces/{id}", h.deleteCommerce)
	adminMux.HandleFunc("POST /api/admin/commerces/{id}/toggle", h.toggleCommerce)

	adminMux.HandleFunc("GET /api/admin/suppliers", h.listSuppliers)
	adminMux.HandleFunc("POST /api/admin/suppliers", h.createSupplier)
	adminMux.HandleFunc("PUT /api/admin/suppliers/{id}", h.updateSupplier)
	adminMux.HandleFunc("DELETE /api/admin/suppliers/{id}", h.deleteSupplier)

	adminMux.HandleFunc("GET /api/admin/discounts", h.listDiscounts)
	adminMux.HandleFunc("POST /api/admin/discounts", h.createDiscount)
	adminMux.HandleFunc("PUT /api/admin/discounts/{id}", h.updateDiscount)
	adminMux.HandleFunc("DELETE /api/admin/discounts/{id}", h.deleteDiscount)

	adminMux.HandleFunc("GET /api/admin/orders", h.listOrders)
	adminMux.HandleFunc("GET /api/admin/orders/{id}", h.getOrder)
	adminMux.HandleFunc("PATCH /api/admin/orders/{id}/status", h.updateOrderStatus)

	adminMux.HandleFunc("GET /api/admin/reports/stats", h.reportStats)
	adminMux.HandleFunc("GET /api/admin/reports/sales-history", h.reportSalesHistory)
	adminMux.HandleFunc("GET /api/admin/reports/top-products", h.reportTopProducts)

	mux.Handle("/api/admin/", admin(adminMux))
}

// imageURL resolves a stored image path against the configured base URL.
func (h *Handler) imageURL(path string) string {
	if path == "" || h.cfg.ImageBaseURL == "" {
		return path
	}
	if len(path) > 8 && (path[:7] == "http://" || path[:8] == "https://") {
		return path
	}
	base := h.cfg.ImageBaseURL
	if base[len(base)-1] != '/' && path[0] != '/' {
		base += "/"
	}
	return base + path
}

// sessionStore resolves the request's cart store and the session ID it is
// bound to, minting a fresh session when the client sent none or sent one
// that fails validation. The session ID is always echoed so the client can
// persist it.
func (h *Handler) sessionCart(w http.ResponseWriter, r *http.Request) (*cart.Cart, context.Context) {
	ctx := r.Context()
	session := r.Header.Get(sessionHeader)
	if !validSession(session) {
		session = newSessionID()
	}
	w.Header().Set(sessionHeader, session)
	return cart.Open(ctx, h.carts.ForSession(session)), ctx
}
