//go:build integration

package integration

import (
	"net/http"
	"testing"

	"github.com/google/uuid"
)

type cartItemRequest struct {
	ProductID string `json:"productId"`
	Kind      string `json:"kind,omitempty"`
	Unit      string `json:"unit,omitempty"`
	Quantity  int    `json:"quantity,omitempty"`
}

func newSession() string {
	return uuid.New().String()
}

func TestCart_SessionMinted(t *testing.T) {
	resp := doReq(t, http.MethodGet, "/api/cart", nil, reqOpts{})
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	if session := resp.Header.Get("X-Session-ID"); session == "" {
		t.Fatal("X-Session-ID header not present")
	}

	c := decodeData[cartResponse](t, resp)
	if len(c.Items) != 0 {
		t.Errorf("fresh cart: expected 0 items, got %d", len(c.Items))
	}
}

func TestCart_AddItem(t *testing.T) {
	session := newSession()

	resp := doReq(t, http.MethodPost, "/api/cart/items",
		cartItemRequest{ProductID: "quilmes-cerveza-1l", Unit: "pack"},
		reqOpts{session: session})
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	c := decodeData[cartResponse](t, resp)
	if len(c.Items) != 1 {
		t.Fatalf("expected 1 item, got %d", len(c.Items))
	}
	if c.Items[0].Quantity != 1 {
		t.Errorf("quantity: got %d, want 1", c.Items[0].Quantity)
	}
	if c.Subtotal != 10800 {
		t.Errorf("subtotal: got %v, want 10800", c.Subtotal)
	}
}

func TestCart_AddItem_Deduplicates(t *testing.T) {
	session := newSession()
	item := cartItemRequest{ProductID: "coca-cola-225l", Unit: "pack"}

	resp := doReq(t, http.MethodPost, "/api/cart/items", item, reqOpts{session: session})
	resp.Body.Close()

	resp = doReq(t, http.MethodPost, "/api/cart/items", item, reqOpts{session: session})
	defer resp.Body.Close()

	c := decodeData[cartResponse](t, resp)
	if len(c.Items) != 1 {
		t.Fatalf("expected 1 line, got %d", len(c.Items))
	}
	if c.Items[0].Quantity != 2 {
		t.Errorf("quantity: got %d, want 2", c.Items[0].Quantity)
	}
	if c.Subtotal != 26400 {
		t.Errorf("subtotal: got %v, want 26400", c.Subtotal)
	}
}

func TestCart_AddItem_UnknownProduct(t *testing.T) {
	resp := doReq(t, http.MethodPost, "/api/cart/items",
		cartItemRequest{ProductID: "no-such-product", Unit: "pack"},
		reqOpts{session: newSession()})
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", resp.StatusCode)
	}
}

func TestCart_BulkTierRepricing(t *testing.T) {
	session := newSession()

	// Single units price at the flat unit price first.
	resp := doReq(t, http.MethodPost, "/api/cart/items",
		cartItemRequest{ProductID: "quilmes-cerveza-1l", Unit: "unit"},
		reqOpts{session: session})
	c := decodeData[cartResponse](t, resp)
	resp.Body.Close()
	if c.Items[0].UnitPrice != 1950 {
		t.Fatalf("flat unit price: got %v, want 1950", c.Items[0].UnitPrice)
	}

	// 30 units crosses the 30+ quantity break: 1650 per unit.
	resp = doReq(t, http.MethodPatch, "/api/cart/items",
		cartItemRequest{ProductID: "quilmes-cerveza-1l", Unit: "unit", Quantity: 30},
		reqOpts{session: session})
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	c = decodeData[cartResponse](t, resp)
	if len(c.Items) != 1 {
		t.Fatalf("expected 1 line, got %d", len(c.Items))
	}
	if c.Items[0].UnitPrice != 1650 {
		t.Errorf("unitPrice: got %v, want 1650", c.Items[0].UnitPrice)
	}
	if c.Subtotal != 49500 {
		t.Errorf("subtotal: got %v, want 49500", c.Subtotal)
	}
}

func TestCart_SessionIsolation(t *testing.T) {
	first := newSession()

	resp := doReq(t, http.MethodPost, "/api/cart/items",
		cartItemRequest{ProductID: "salus-soda-2l", Unit: "pack"},
		reqOpts{session: first})
	resp.Body.Close()

	// The same session sees its cart; another session starts empty.
	resp = doReq(t, http.MethodGet, "/api/cart", nil, reqOpts{session: first})
	c := decodeData[cartResponse](t, resp)
	resp.Body.Close()
	if len(c.Items) != 1 {
		t.Fatalf("own session: expected 1 item, got %d", len(c.Items))
	}

	resp = doReq(t, http.MethodGet, "/api/cart", nil, reqOpts{session: newSession()})
	defer resp.Body.Close()
	c = decodeData[cartResponse](t, resp)
	if len(c.Items) != 0 {
		t.Errorf("other session: expected 0 items, got %d", len(c.Items))
	}
}

func TestCart_ApplyDiscount(t *testing.T) {
	session := newSession()

	resp := doReq(t, http.MethodPost, "/api/cart/items",
		cartItemRequest{ProductID: "villavicencio-agua-15l", Unit: "pack"},
		reqOpts{session: session})
	resp.Body.Close()

	resp = doReq(t, http.MethodPost, "/api/cart/discount",
		map[string]string{"code": "VERANO25"},
		reqOpts{session: session})
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	c := decodeData[cartResponse](t, resp)
	// 6900 * 0.75 = 5175
	if c.Total != 5175 {
		t.Errorf("total: got %v, want 5175", c.Total)
	}
}

func TestCart_ApplyDiscount_InvalidCode(t *testing.T) {
	session := newSession()

	resp := doReq(t, http.MethodPost, "/api/cart/items",
		cartItemRequest{ProductID: "villavicencio-agua-15l", Unit: "pack"},
		reqOpts{session: session})
	resp.Body.Close()

	resp = doReq(t, http.MethodPost, "/api/cart/discount",
		map[string]string{"code": "NONEXISTENT"},
		reqOpts{session: session})
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", resp.StatusCode)
	}
}

func TestCart_Clear(t *testing.T) {
	session := newSession()

	resp := doReq(t, http.MethodPost, "/api/cart/items",
		cartItemRequest{ProductID: "fernet-branca-750", Unit: "pack"},
		reqOpts{session: session})
	resp.Body.Close()

	resp = doReq(t, http.MethodDelete, "/api/cart", nil, reqOpts{session: session})
	c := decodeData[cartResponse](t, resp)
	resp.Body.Close()
	if len(c.Items) != 0 {
		t.Fatalf("expected empty cart after clear, got %d items", len(c.Items))
	}

	// The emptiness survives a reload.
	resp = doReq(t, http.MethodGet, "/api/cart", nil, reqOpts{session: session})
	defer resp.Body.Close()
	c = decodeData[cartResponse](t, resp)
	if len(c.Items) != 0 {
		t.Errorf("expected empty cart, got %d items", len(c.Items))
	}
}
