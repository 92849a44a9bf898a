package handler

import (
	"net/http"
	"time"

	"github.com/go-faster/errors"
	"github.com/go-faster/jx"
	"github.com/go-faster/sdk/zctx"
	"go.uber.org/zap"

	"github.com/xenking/storefront/internal/domain/account"
	"github.com/xenking/storefront/internal/domain/cart"
	"github.com/xenking/storefront/internal/domain/order"
	"github.com/xenking/storefront/internal/domain/product"
)

// writeJSON encodes a response body with the given encoder callback and
// writes it with the status code.
func writeJSON(w http.ResponseWriter, code int, encode func(e *jx.Encoder)) {
	e := &jx.Encoder{}
	encode(e)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_, _ = w.Write(e.Bytes())
}

// writeError writes a JSON error body of the form {"code": N, "message": "..."}.
func writeError(w http.ResponseWriter, code int, message string) {
	writeJSON(w, code, func(e *jx.Encoder) {
		e.Obj(func(e *jx.Encoder) {
			e.Field("code", func(e *jx.Encoder) { e.Int(code) })
			e.Field("message", func(e *jx.Encoder) { e.Str(message) })
		})
	})
}

// respondError maps a domain error to its HTTP representation. Unknown errors
// become a logged 500 with a generic body.
func respondError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, product.ErrNotFound),
		errors.Is(err, order.ErrNotFound),
		errors.Is(err, account.ErrNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, product.ErrUnavailable):
		writeError(w, http.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, order.ErrEmptyCart),
		errors.Is(err, order.ErrAddressRequired),
		errors.Is(err, order.ErrPhoneRequired),
		errors.Is(err, order.ErrInvalidStatus):
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		var (
			stockErr      *product.InsufficientStockError
			qtyErr        *cart.InvalidQuantityError
			transitionErr *order.InvalidTransitionError
		)
		switch {
		case errors.As(err, &stockErr):
			writeError(w, http.StatusConflict, stockErr.Error())
		case errors.As(err, &transitionErr):
			writeError(w, http.StatusConflict, transitionErr.Error())
		case errors.As(err, &qtyErr):
			writeError(w, http.StatusUnprocessableEntity, qtyErr.Error())
		default:
			zctx.From(r.Context()).Error("request failed", zap.Error(err))
			writeError(w, http.StatusInternalServerError, "internal error")
		}
	}
}

func encodeProduct(e *jx.Encoder, p product.Product) {
	e.Obj(func(e *jx.Encoder) {
		e.Field("id", func(e *jx.Encoder) { e.Str(p.ID) })
		e.Field("name", func(e *jx.Encoder) { e.Str(p.Name) })
		e.Field("price", func(e *jx.Encoder) { e.Num(jx.Num(p.Price.String())) })
		e.Field("amount", func(e *jx.Encoder) { e.Int(p.Amount) })
		e.Field("available", func(e *jx.Encoder) { e.Bool(p.Available) })
		e.Field("category", func(e *jx.Encoder) { e.Str(p.Category) })
	})
}

func encodeCart(e *jx.Encoder, c *cart.Cart) {
	lines := c.Lines()
	e.Obj(func(e *jx.Encoder) {
		e.Field("items", func(e *jx.Encoder) {
			e.Arr(func(e *jx.Encoder) {
				for _, l := range lines {
					encodeCartLine(e, l)
				}
			})
		})
		e.Field("total", func(e *jx.Encoder) { e.Num(jx.Num(c.Total().String())) })
	})
}

func encodeCartLine(e *jx.Encoder, l cart.Line) {
	e.Obj(func(e *jx.Encoder) {
		e.Field("productId", func(e *jx.Encoder) { e.Str(l.ProductID) })
		e.Field("quantity", func(e *jx.Encoder) { e.Int(l.Quantity) })
		e.Field("unitPrice", func(e *jx.Encoder) { e.Num(jx.Num(l.UnitPrice.String())) })
		e.Field("subtotal", func(e *jx.Encoder) { e.Num(jx.Num(l.Subtotal().String())) })
	})
}

func encodeOrder(e *jx.Encoder, o *order.Order) {
	e.Obj(func(e *jx.Encoder) {
		e.Field("id", func(e *jx.Encoder) { e.Str(o.ID) })
		e.Field("username", func(e *jx.Encoder) { e.Str(o.Username) })
		e.Field("address", func(e *jx.Encoder) { e.Str(o.Address) })
		e.Field("status", func(e *jx.Encoder) { e.Str(string(o.Status)) })
		e.Field("total", func(e *jx.Encoder) { e.Num(jx.Num(o.Total.String())) })
		e.Field("createdAt", func(e *jx.Encoder) { e.Str(o.CreatedAt.UTC().Format(time.RFC3339)) })
		e.Field("details", func(e *jx.Encoder) {
			e.Arr(func(e *jx.Encoder) {
				for _, d := range o.Details {
					e.Obj(func(e *jx.Encoder) {
						e.Field("productId", func(e *jx.Encoder) { e.Str(d.ProductID) })
						e.Field("quantity", func(e *jx.Encoder) { e.Int(d.Quantity) })
						e.Field("unitPrice", func(e *jx.Encoder) { e.Num(jx.Num(d.UnitPrice.String())) })
					})
				}
			})
		})
	})
}
