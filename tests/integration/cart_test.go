//go:build integration

package integration

import (
	"net/http"
	"testing"
)

type cartItemRequest struct {
	ProductID string `json:"productId"`
	Quantity  int    `json:"quantity"`
}

func TestCart_AddAndAccumulate(t *testing.T) {
	s := newSession(t)

	resp := s.do(t, http.MethodPost, "/api/cart/items", cartItemRequest{ProductID: "ceramic-mug", Quantity: 2})
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("first add: expected 200, got %d", resp.StatusCode)
	}

	resp = s.do(t, http.MethodPost, "/api/cart/items", cartItemRequest{ProductID: "ceramic-mug", Quantity: 3})
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("second add: expected 200, got %d", resp.StatusCode)
	}

	c := decodeJSON[cartResponse](t, resp)
	if len(c.Items) != 1 {
		t.Fatalf("expected 1 line, got %d", len(c.Items))
	}
	if c.Items[0].Quantity != 5 {
		t.Errorf("quantity: got %d, want 5", c.Items[0].Quantity)
	}
	if c.Total != 35.00 {
		t.Errorf("total: got %v, want 35.00", c.Total)
	}
}

func TestCart_SessionsAreIsolated(t *testing.T) {
	s1 := newSession(t)
	s2 := newSession(t)

	resp := s1.do(t, http.MethodPost, "/api/cart/items", cartItemRequest{ProductID: "paper-filters", Quantity: 1})
	resp.Body.Close()

	resp = s2.do(t, http.MethodGet, "/api/cart", nil)
	defer resp.Body.Close()

	c := decodeJSON[cartResponse](t, resp)
	if len(c.Items) != 0 {
		t.Fatalf("expected empty cart for fresh session, got %d lines", len(c.Items))
	}
}

func TestCart_UnknownProduct(t *testing.T) {
	resp := newSession(t).do(t, http.MethodPost, "/api/cart/items", cartItemRequest{ProductID: "no-such-product", Quantity: 1})
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.StatusCode)
	}
}

func TestCart_UnavailableProduct(t *testing.T) {
	resp := newSession(t).do(t, http.MethodPost, "/api/cart/items", cartItemRequest{ProductID: "cold-brew-jar", Quantity: 1})
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", resp.StatusCode)
	}
}

func TestCart_OverStock(t *testing.T) {
	resp := newSession(t).do(t, http.MethodPost, "/api/cart/items", cartItemRequest{ProductID: "hand-grinder", Quantity: 100})
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusConflict {
		t.Fatalf("expected 409, got %d", resp.StatusCode)
	}
}

func TestCart_UpdateAndRemove(t *testing.T) {
	s := newSession(t)

	resp := s.do(t, http.MethodPost, "/api/cart/items", cartItemRequest{ProductID: "travel-tumbler", Quantity: 2})
	resp.Body.Close()

	resp = s.do(t, http.MethodPut, "/api/cart/items/travel-tumbler", map[string]int{"quantity": 1})
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("update: expected 200, got %d", resp.StatusCode)
	}

	resp = s.do(t, http.MethodDelete, "/api/cart/items/travel-tumbler", nil)
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("remove: expected 200, got %d", resp.StatusCode)
	}

	resp = s.do(t, http.MethodGet, "/api/cart", nil)
	defer resp.Body.Close()
	c := decodeJSON[cartResponse](t, resp)
	if len(c.Items) != 0 {
		t.Fatalf("expected empty cart, got %d lines", len(c.Items))
	}
}
