//go:build integration

package integration

import (
	"net/http"
	"regexp"
	"testing"
)

const testAPIKey = "integration-test-key"

var uuidPattern = regexp.MustCompile(`^[0-9a-f]{8}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{12}$`)

type checkoutRequest struct {
	CommerceID string `json:"commerceId"`
	CouponCode string `json:"couponCode,omitempty"`
	Notes      string `json:"notes,omitempty"`
}

// createCommerce registers a commerce through the admin API and returns its ID.
func createCommerce(t *testing.T, name string) string {
	t.Helper()

	resp := doReq(t, http.MethodPost, "/api/admin/commerces",
		map[string]any{"name": name, "zone": "Centro", "active": true},
		reqOpts{apiKey: testAPIKey})
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create commerce: expected 201, got %d", resp.StatusCode)
	}
	return decodeData[commerceResponse](t, resp).ID
}

// fillCart adds one pack of the given product to a fresh session and returns
// the session ID.
func fillCart(t *testing.T, productID string) string {
	t.Helper()

	session := newSession()
	resp := doReq(t, http.MethodPost, "/api/cart/items",
		cartItemRequest{ProductID: productID, Unit: "pack"},
		reqOpts{session: session})
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("fill cart: expected 200, got %d", resp.StatusCode)
	}
	return session
}

func TestAdmin_NoAuth(t *testing.T) {
	resp := doGet(t, "/api/admin/orders")
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", resp.StatusCode)
	}
}

func TestAdmin_InvalidKey(t *testing.T) {
	resp := doReq(t, http.MethodGet, "/api/admin/orders", nil, reqOpts{apiKey: "wrong-key"})
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", resp.StatusCode)
	}
}

func TestCheckout(t *testing.T) {
	commerceID := createCommerce(t, "Kiosco El Faro")
	session := fillCart(t, "quilmes-cerveza-1l")

	resp := doReq(t, http.MethodPost, "/api/cart/checkout",
		checkoutRequest{CommerceID: commerceID},
		reqOpts{session: session})
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("expected 201, got %d", resp.StatusCode)
	}

	order := decodeData[orderResponse](t, resp)
	if !uuidPattern.MatchString(order.ID) {
		t.Errorf("order ID %q is not a valid UUID", order.ID)
	}
	if order.Status != "pending" {
		t.Errorf("status: got %q, want pending", order.Status)
	}
	if order.Total != 10800 {
		t.Errorf("total: got %v, want 10800", order.Total)
	}
	if len(order.Lines) != 1 {
		t.Fatalf("expected 1 line, got %d", len(order.Lines))
	}

	// The cart is consumed by checkout.
	cartResp := doReq(t, http.MethodGet, "/api/cart", nil, reqOpts{session: session})
	defer cartResp.Body.Close()
	c := decodeData[cartResponse](t, cartResp)
	if len(c.Items) != 0 {
		t.Errorf("expected empty cart after checkout, got %d items", len(c.Items))
	}
}

func TestCheckout_WithCoupon(t *testing.T) {
	commerceID := createCommerce(t, "Almacen Rivadavia")
	session := fillCart(t, "quilmes-cerveza-1l")

	resp := doReq(t, http.MethodPost, "/api/cart/checkout",
		checkoutRequest{CommerceID: commerceID, CouponCode: "VERANO25"},
		reqOpts{session: session})
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("expected 201, got %d", resp.StatusCode)
	}

	order := decodeData[orderResponse](t, resp)
	// 10800 * 25% = 2700
	if order.Discount != 2700 {
		t.Errorf("discount: got %v, want 2700", order.Discount)
	}
	if order.Total != 8100 {
		t.Errorf("total: got %v, want 8100", order.Total)
	}
}

func TestCheckout_EmptyCart(t *testing.T) {
	commerceID := createCommerce(t, "Autoservicio Norte")

	resp := doReq(t, http.MethodPost, "/api/cart/checkout",
		checkoutRequest{CommerceID: commerceID},
		reqOpts{session: newSession()})
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
}

func TestCheckout_UnknownCommerce(t *testing.T) {
	session := fillCart(t, "coca-cola-225l")

	resp := doReq(t, http.MethodPost, "/api/cart/checkout",
		checkoutRequest{CommerceID: "no-such-commerce"},
		reqOpts{session: session})
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", resp.StatusCode)
	}
}

func TestCheckout_InvalidCoupon(t *testing.T) {
	commerceID := createCommerce(t, "Despensa Sur")
	session := fillCart(t, "coca-cola-225l")

	resp := doReq(t, http.MethodPost, "/api/cart/checkout",
		checkoutRequest{CommerceID: commerceID, CouponCode: "NONEXISTENT"},
		reqOpts{session: session})
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", resp.StatusCode)
	}
}

func TestOrderStatus_Transition(t *testing.T) {
	commerceID := createCommerce(t, "Kiosco 24hs")
	session := fillCart(t, "salus-soda-2l")

	resp := doReq(t, http.MethodPost, "/api/cart/checkout",
		checkoutRequest{CommerceID: commerceID},
		reqOpts{session: session})
	order := decodeData[orderResponse](t, resp)
	resp.Body.Close()

	// pending -> confirmed is allowed.
	resp = doReq(t, http.MethodPatch, "/api/admin/orders/"+order.ID+"/status",
		map[string]string{"status": "confirmed"},
		reqOpts{apiKey: testAPIKey})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("confirm: expected 200, got %d", resp.StatusCode)
	}
	updated := decodeData[orderResponse](t, resp)
	resp.Body.Close()
	if updated.Status != "confirmed" {
		t.Errorf("status: got %q, want confirmed", updated.Status)
	}

	// Going back to pending is not.
	resp = doReq(t, http.MethodPatch, "/api/admin/orders/"+order.ID+"/status",
		map[string]string{"status": "pending"},
		reqOpts{apiKey: testAPIKey})
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusUnprocessableEntity {
		t.Fatalf("revert: expected 422, got %d", resp.StatusCode)
	}
}

func TestGetOrder_NotFound(t *testing.T) {
	resp := doReq(t, http.MethodGet, "/api/admin/orders/no-such-order", nil, reqOpts{apiKey: testAPIKey})
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.StatusCode)
	}
}
