// Package handler exposes the storefront HTTP API.
package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/xenking/storefront/internal/domain/account"
	"github.com/xenking/storefront/internal/domain/cart"
	"github.com/xenking/storefront/internal/domain/order"
	"github.com/xenking/storefront/internal/domain/product"
)

// Handler serves the storefront API, delegating business logic to the cart
// and order services.
type Handler struct {
	products product.Directory
	accounts account.Repository
	carts    *cart.Store
	cartSvc  *cart.Service
	orders   *order.Service
	security *Security
}

// NewHandler constructs a Handler with the required domain dependencies.
func NewHandler(
	products product.Directory,
	accounts account.Repository,
	carts *cart.Store,
	cartSvc *cart.Service,
	orders *order.Service,
	security *Security,
) *Handler {
	return &Handler{
		products: products,
		accounts: accounts,
		carts:    carts,
		cartSvc:  cartSvc,
		orders:   orders,
		security: security,
	}
}

// Routes builds the API router. Catalog and cart endpoints are public; the
// cart is tracked per browser session via a cookie. Checkout, profile and
// order management require an API key, and order management additionally
// requires the admin flag.
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Route("/api", func(r chi.Router) {
		r.Get("/products", h.ListProducts)
		r.Get("/products/{productID}", h.GetProduct)

		r.Route("/cart", func(r chi.Router) {
			r.Get("/", h.GetCart)
			r.Post("/items", h.AddCartItem)
			r.Put("/items/{productID}", h.UpdateCartItem)
			r.Delete("/items/{productID}", h.RemoveCartItem)
			r.Delete("/", h.ClearCart)
		})

		r.Group(func(r chi.Router) {
			r.Use(h.security.RequireAPIKey)

			r.Get("/profile", h.GetProfile)
			r.Post("/checkout/preview", h.PreviewCheckout)
			r.Post("/checkout/confirm", h.ConfirmCheckout)

			r.Group(func(r chi.Router) {
				r.Use(h.security.RequireAdmin)

				r.Get("/orders", h.ListOrders)
				r.Get("/orders/{orderID}", h.GetOrder)
				r.Put("/orders/{orderID}/status", h.UpdateOrderStatus)
			})
		})
	})

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusNotFound, "not found")
	})

	return r
}
