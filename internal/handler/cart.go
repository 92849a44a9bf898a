package handler

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-faster/jx"
	"github.com/google/uuid"

	"github.com/xenking/storefront/internal/domain/cart"
)

const cartCookieName = "cart_session"

// sessionCart resolves the caller's cart from the session cookie, minting a
// new session when the cookie is absent or malformed.
func (h *Handler) sessionCart(w http.ResponseWriter, r *http.Request) *cart.Cart {
	if c, err := r.Cookie(cartCookieName); err == nil {
		if _, err := uuid.Parse(c.Value); err == nil {
			return h.carts.Get(c.Value)
		}
	}

	sessionID := uuid.NewString()
	http.SetCookie(w, &http.Cookie{
		Name:     cartCookieName,
		Value:    sessionID,
		Path:     "/",
		MaxAge:   int((24 * time.Hour).Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	return h.carts.Get(sessionID)
}

type cartItemRequest struct {
	ProductID string
	Quantity  int
}

func decodeCartItem(r *http.Request) (cartItemRequest, error) {
	var req cartItemRequest
	d := jx.Decode(r.Body, 512)
	err := d.Obj(func(d *jx.Decoder, key string) error {
		switch key {
		case "productId":
			v, err := d.Str()
			req.ProductID = v
			return err
		case "quantity":
			v, err := d.Int()
			req.Quantity = v
			return err
		default:
			return d.Skip()
		}
	})
	return req, err
}

// GetCart returns the session cart with its running total.
func (h *Handler) GetCart(w http.ResponseWriter, r *http.Request) {
	c := h.sessionCart(w, r)
	writeJSON(w, http.StatusOK, func(e *jx.Encoder) {
		encodeCart(e, c)
	})
}

// AddCartItem adds quantity of a product to the session cart. Repeated adds
// of the same product accumulate.
func (h *Handler) AddCartItem(w http.ResponseWriter, r *http.Request) {
	req, err := decodeCartItem(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "malformed request body")
		return
	}

	c := h.sessionCart(w, r)
	if err := h.cartSvc.AddLine(r.Context(), c, req.ProductID, req.Quantity); err != nil {
		respondError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, func(e *jx.Encoder) {
		encodeCart(e, c)
	})
}

// UpdateCartItem overwrites the quantity of a cart line. A quantity of zero
// or less removes the line.
func (h *Handler) UpdateCartItem(w http.ResponseWriter, r *http.Request) {
	req, err := decodeCartItem(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "malformed request body")
		return
	}

	c := h.sessionCart(w, r)
	if err := h.cartSvc.UpdateLine(r.Context(), c, chi.URLParam(r, "productID"), req.Quantity); err != nil {
		respondError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, func(e *jx.Encoder) {
		encodeCart(e, c)
	})
}

// RemoveCartItem deletes a line from the session cart. Removing an absent
// line is a no-op.
func (h *Handler) RemoveCartItem(w http.ResponseWriter, r *http.Request) {
	c := h.sessionCart(w, r)
	c.Remove(chi.URLParam(r, "productID"))

	writeJSON(w, http.StatusOK, func(e *jx.Encoder) {
		encodeCart(e, c)
	})
}

// ClearCart empties the session cart.
func (h *Handler) ClearCart(w http.ResponseWriter, r *http.Request) {
	c := h.sessionCart(w, r)
	c.Clear()

	writeJSON(w, http.StatusOK, func(e *jx.Encoder) {
		encodeCart(e, c)
	})
}
