package handler

import (
	"net/http"

	"github.com/go-faster/jx"
)

func decodeAddress(r *http.Request) (string, error) {
	var address string
	d := jx.Decode(r.Body, 512)
	err := d.Obj(func(d *jx.Decoder, key string) error {
		switch key {
		case "address":
			v, err := d.Str()
			address = v
			return err
		default:
			return d.Skip()
		}
	})
	return address, err
}

// PreviewCheckout validates the session cart against current stock and
// returns the would-be total with any profile warnings, without reserving
// anything.
func (h *Handler) PreviewCheckout(w http.ResponseWriter, r *http.Request) {
	p, ok := PrincipalFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "missing API key")
		return
	}

	address, err := decodeAddress(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "malformed request body")
		return
	}

	c := h.sessionCart(w, r)
	preview, err := h.orders.PreviewCheckout(r.Context(), c, p.Username, address)
	if err != nil {
		respondError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, func(e *jx.Encoder) {
		e.Obj(func(e *jx.Encoder) {
			e.Field("total", func(e *jx.Encoder) { e.Num(jx.Num(preview.Total.String())) })
			e.Field("warnings", func(e *jx.Encoder) {
				e.Arr(func(e *jx.Encoder) {
					for _, warn := range preview.Warnings {
						e.Str(warn)
					}
				})
			})
		})
	})
}

// ConfirmCheckout atomically reserves stock for every cart line, persists the
// order and clears the session cart. On any failure the cart and stock levels
// are left as they were.
func (h *Handler) ConfirmCheckout(w http.ResponseWriter, r *http.Request) {
	p, ok := PrincipalFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "missing API key")
		return
	}

	address, err := decodeAddress(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "malformed request body")
		return
	}

	c := h.sessionCart(w, r)
	o, err := h.orders.ConfirmCheckout(r.Context(), c, p.Username, address)
	if err != nil {
		respondError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, func(e *jx.Encoder) {
		encodeOrder(e, o)
	})
}
