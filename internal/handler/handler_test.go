package handler

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xenking/storefront/internal/domain/account"
	"github.com/xenking/storefront/internal/domain/auth"
	"github.com/xenking/storefront/internal/domain/cart"
	"github.com/xenking/storefront/internal/domain/order"
	"github.com/xenking/storefront/internal/domain/product"
	"github.com/xenking/storefront/internal/domain/stock"
)

// --- Mock implementations ---

type mockDirectory struct {
	mu   sync.Mutex
	byID map[string]*product.Product
}

func (m *mockDirectory) List(_ context.Context) ([]product.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]product.Product, 0, len(m.byID))
	for _, p := range m.byID {
		out = append(out, *p)
	}
	return out, nil
}

func (m *mockDirectory) GetByID(_ context.Context, id string) (*product.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.byID[id]
	if !ok {
		return nil, product.ErrNotFound
	}
	clone := *p
	return &clone, nil
}

func (m *mockDirectory) Reserve(_ context.Context, id string, quantity int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.byID[id]
	if !ok || !p.Available || p.Amount < quantity {
		return &product.InsufficientStockError{ProductID: id, Requested: quantity}
	}
	p.Amount -= quantity
	return nil
}

func (m *mockDirectory) Restore(_ context.Context, id string, quantity int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if p, ok := m.byID[id]; ok {
		p.Amount += quantity
	}
	return nil
}

type mockAccountRepo struct {
	byUsername map[string]*account.Account
}

func (m *mockAccountRepo) GetByUsername(_ context.Context, username string) (*account.Account, error) {
	acc, ok := m.byUsername[username]
	if !ok {
		return nil, account.ErrNotFound
	}
	return acc, nil
}

type mockOrderRepo struct {
	mu     sync.Mutex
	orders map[string]*order.Order
}

func (m *mockOrderRepo) Create(_ context.Context, o *order.Order) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.orders == nil {
		m.orders = make(map[string]*order.Order)
	}
	m.orders[o.ID] = o
	return nil
}

func (m *mockOrderRepo) GetByID(_ context.Context, id string) (*order.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	o, ok := m.orders[id]
	if !ok {
		return nil, order.ErrNotFound
	}
	return o, nil
}

func (m *mockOrderRepo) List(_ context.Context) ([]order.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]order.Order, 0, len(m.orders))
	for _, o := range m.orders {
		out = append(out, *o)
	}
	return out, nil
}

func (m *mockOrderRepo) UpdateStatus(_ context.Context, id string, status order.Status) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	o, ok := m.orders[id]
	if !ok {
		return order.ErrNotFound
	}
	o.Status = status
	return nil
}

type mockAPIKeyRepo struct {
	byHash map[string]*auth.APIKeyInfo
}

func (m *mockAPIKeyRepo) FindByHash(_ context.Context, hash string) (*auth.APIKeyInfo, error) {
	info, ok := m.byHash[hash]
	if !ok {
		return nil, auth.ErrUnknownKey
	}
	return info, nil
}

// --- Helpers ---

const testPepper = "test-pepper"

func hashKey(key string) string {
	mac := hmac.New(sha256.New, []byte(testPepper))
	mac.Write([]byte(key))
	return hex.EncodeToString(mac.Sum(nil))
}

type fixture struct {
	handler  http.Handler
	products *mockDirectory
	orders   *mockOrderRepo
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	products := &mockDirectory{byID: map[string]*product.Product{
		"apple": {ID: "apple", Name: "Apple", Price: decimal.NewFromFloat(1.50), Amount: 10, Available: true, Category: "fruit"},
		"bread": {ID: "bread", Name: "Bread", Price: decimal.NewFromFloat(3.20), Amount: 2, Available: true, Category: "bakery"},
		"salt":  {ID: "salt", Name: "Salt", Price: decimal.NewFromFloat(0.90), Amount: 0, Available: false, Category: "pantry"},
	}}
	accounts := &mockAccountRepo{byUsername: map[string]*account.Account{
		"alice": {Username: "alice", FullName: "Alice Cooper", Email: "alice@example.com", Phone: "+15550100", Address: "1 Main St"},
		"bob":   {Username: "bob", FullName: "Bob Ross", Email: "bob@example.com"},
	}}
	orders := &mockOrderRepo{}
	apikeys := &mockAPIKeyRepo{byHash: map[string]*auth.APIKeyInfo{
		hashKey("alice-key"): {ID: "k1", KeyHash: hashKey("alice-key"), Username: "alice"},
		hashKey("bob-key"):   {ID: "k2", KeyHash: hashKey("bob-key"), Username: "bob"},
		hashKey("admin-key"): {ID: "k3", KeyHash: hashKey("admin-key"), Username: "alice", Admin: true},
	}}

	filter := product.NewIDFilter([]string{"apple", "bread", "salt"})
	cartSvc := cart.NewService(products, filter)
	orderSvc := order.NewService(products, accounts, orders, stock.NewGuard(products))

	h := NewHandler(
		products,
		accounts,
		cart.NewStore(time.Hour),
		cartSvc,
		orderSvc,
		NewSecurity(apikeys, []byte(testPepper)),
	)
	return &fixture{handler: h.Routes(), products: products, orders: orders}
}

// do performs a request, carrying session cookies between calls via jar.
func (f *fixture) do(t *testing.T, method, path, body string, cookies []*http.Cookie, header map[string]string) (*httptest.ResponseRecorder, []*http.Cookie) {
	t.Helper()

	var reader *strings.Reader
	if body != "" {
		reader = strings.NewReader(body)
	} else {
		reader = strings.NewReader("{}")
	}
	req := httptest.NewRequest(method, path, reader)
	for _, c := range cookies {
		req.AddCookie(c)
	}
	for k, v := range header {
		req.Header.Set(k, v)
	}

	rec := httptest.NewRecorder()
	f.handler.ServeHTTP(rec, req)

	out := cookies
	if set := rec.Result().Cookies(); len(set) > 0 {
		out = set
	}
	return rec, out
}

// --- Tests ---

func TestListProducts(t *testing.T) {
	f := newFixture(t)

	rec, _ := f.do(t, http.MethodGet, "/api/products", "", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var products []map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &products))
	assert.Len(t, products, 3)
}

func TestGetProduct_NotFound(t *testing.T) {
	f := newFixture(t)

	rec, _ := f.do(t, http.MethodGet, "/api/products/ghost", "", nil, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestAddCartItem_Accumulates(t *testing.T) {
	f := newFixture(t)

	rec, cookies := f.do(t, http.MethodPost, "/api/cart/items", `{"productId":"apple","quantity":2}`, nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec, _ = f.do(t, http.MethodPost, "/api/cart/items", `{"productId":"apple","quantity":3}`, cookies, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Items []struct {
			ProductID string `json:"productId"`
			Quantity  int    `json:"quantity"`
		} `json:"items"`
		Total json.Number `json:"total"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Len(t, body.Items, 1)
	assert.Equal(t, 5, body.Items[0].Quantity)
	assert.Equal(t, json.Number("7.5"), body.Total)
}

func TestAddCartItem_UnknownProduct(t *testing.T) {
	f := newFixture(t)

	rec, _ := f.do(t, http.MethodPost, "/api/cart/items", `{"productId":"ghost","quantity":1}`, nil, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestAddCartItem_Unavailable(t *testing.T) {
	f := newFixture(t)

	rec, _ := f.do(t, http.MethodPost, "/api/cart/items", `{"productId":"salt","quantity":1}`, nil, nil)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestAddCartItem_OverStock(t *testing.T) {
	f := newFixture(t)

	rec, _ := f.do(t, http.MethodPost, "/api/cart/items", `{"productId":"bread","quantity":5}`, nil, nil)
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestUpdateCartItem_ZeroRemovesLine(t *testing.T) {
	f := newFixture(t)

	_, cookies := f.do(t, http.MethodPost, "/api/cart/items", `{"productId":"apple","quantity":2}`, nil, nil)
	rec, _ := f.do(t, http.MethodPut, "/api/cart/items/apple", `{"quantity":0}`, cookies, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Items []any `json:"items"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Empty(t, body.Items)
}

func TestRemoveCartItem_AbsentIsNoop(t *testing.T) {
	f := newFixture(t)

	rec, _ := f.do(t, http.MethodDelete, "/api/cart/items/ghost", "", nil, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestCheckout_RequiresAPIKey(t *testing.T) {
	f := newFixture(t)

	rec, _ := f.do(t, http.MethodPost, "/api/checkout/confirm", `{"address":"1 Main St"}`, nil, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec, _ = f.do(t, http.MethodPost, "/api/checkout/confirm", `{"address":"1 Main St"}`, nil,
		map[string]string{"X-Api-Key": "wrong"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestConfirmCheckout_HappyPath(t *testing.T) {
	f := newFixture(t)
	authHdr := map[string]string{"X-Api-Key": "alice-key"}

	_, cookies := f.do(t, http.MethodPost, "/api/cart/items", `{"productId":"apple","quantity":4}`, nil, nil)
	rec, _ := f.do(t, http.MethodPost, "/api/checkout/confirm", `{"address":"5 Elm St"}`, cookies, authHdr)
	require.Equal(t, http.StatusCreated, rec.Code)

	var body struct {
		ID      string `json:"id"`
		Status  string `json:"status"`
		Total   json.Number `json:"total"`
		Details []any  `json:"details"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.NotEmpty(t, body.ID)
	assert.Equal(t, "PENDING", body.Status)
	assert.Equal(t, json.Number("6"), body.Total)
	assert.Len(t, body.Details, 1)

	// Stock was decremented and the cart cleared.
	p, err := f.products.GetByID(context.Background(), "apple")
	require.NoError(t, err)
	assert.Equal(t, 6, p.Amount)

	rec, _ = f.do(t, http.MethodGet, "/api/cart", "", cookies, nil)
	var cartBody struct {
		Items []any `json:"items"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &cartBody))
	assert.Empty(t, cartBody.Items)
}

func TestConfirmCheckout_MissingPhone(t *testing.T) {
	f := newFixture(t)

	_, cookies := f.do(t, http.MethodPost, "/api/cart/items", `{"productId":"apple","quantity":1}`, nil, nil)
	rec, _ := f.do(t, http.MethodPost, "/api/checkout/confirm", `{"address":"5 Elm St"}`, cookies,
		map[string]string{"X-Api-Key": "bob-key"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	// No stock side effects.
	p, err := f.products.GetByID(context.Background(), "apple")
	require.NoError(t, err)
	assert.Equal(t, 10, p.Amount)
}

func TestConfirmCheckout_EmptyCart(t *testing.T) {
	f := newFixture(t)

	rec, _ := f.do(t, http.MethodPost, "/api/checkout/confirm", `{"address":"5 Elm St"}`, nil,
		map[string]string{"X-Api-Key": "alice-key"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestPreviewCheckout_Warnings(t *testing.T) {
	f := newFixture(t)

	_, cookies := f.do(t, http.MethodPost, "/api/cart/items", `{"productId":"apple","quantity":2}`, nil, nil)
	rec, _ := f.do(t, http.MethodPost, "/api/checkout/preview", `{"address":"5 Elm St"}`, cookies,
		map[string]string{"X-Api-Key": "bob-key"})
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Total    json.Number `json:"total"`
		Warnings []string `json:"warnings"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, json.Number("3"), body.Total)
	assert.Len(t, body.Warnings, 2)
}

func TestOrders_RequireAdmin(t *testing.T) {
	f := newFixture(t)

	rec, _ := f.do(t, http.MethodGet, "/api/orders", "", nil,
		map[string]string{"X-Api-Key": "alice-key"})
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestUpdateOrderStatus_Lifecycle(t *testing.T) {
	f := newFixture(t)
	admin := map[string]string{"X-Api-Key": "admin-key"}

	_, cookies := f.do(t, http.MethodPost, "/api/cart/items", `{"productId":"apple","quantity":1}`, nil, nil)
	rec, _ := f.do(t, http.MethodPost, "/api/checkout/confirm", `{"address":"5 Elm St"}`, cookies,
		map[string]string{"X-Api-Key": "alice-key"})
	require.Equal(t, http.StatusCreated, rec.Code)

	var created struct {
		ID string `json:"id"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))

	rec, _ = f.do(t, http.MethodPut, "/api/orders/"+created.ID+"/status", `{"status":"confirmed"}`, nil, admin)
	require.Equal(t, http.StatusOK, rec.Code)

	// Skipping a lifecycle step is rejected.
	rec, _ = f.do(t, http.MethodPut, "/api/orders/"+created.ID+"/status", `{"status":"DELIVERED"}`, nil, admin)
	assert.Equal(t, http.StatusConflict, rec.Code)

	// Unknown status values are a bad request.
	rec, _ = f.do(t, http.MethodPut, "/api/orders/"+created.ID+"/status", `{"status":"TELEPORTED"}`, nil, admin)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetProfile(t *testing.T) {
	f := newFixture(t)

	rec, _ := f.do(t, http.MethodGet, "/api/profile", "", nil,
		map[string]string{"X-Api-Key": "alice-key"})
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Username string `json:"username"`
		Phone    string `json:"phone"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "alice", body.Username)
	assert.Equal(t, "+15550100", body.Phone)
}
