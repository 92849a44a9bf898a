package cart

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xenking/storefront/internal/domain/product"
)

type mockDirectory struct {
	byID map[string]*product.Product
	gets int
}

func (m *mockDirectory) List(_ context.Context) ([]product.Product, error) {
	return nil, nil
}

func (m *mockDirectory) GetByID(_ context.Context, id string) (*product.Product, error) {
	m.gets++
	p, ok := m.byID[id]
	if !ok {
		return nil, product.ErrNotFound
	}
	return p, nil
}

func (m *mockDirectory) Reserve(_ context.Context, _ string, _ int) error { return nil }
func (m *mockDirectory) Restore(_ context.Context, _ string, _ int) error { return nil }

func newDirectory(products ...product.Product) *mockDirectory {
	byID := make(map[string]*product.Product, len(products))
	for i := range products {
		byID[products[i].ID] = &products[i]
	}
	return &mockDirectory{byID: byID}
}

func testProduct(id string, price int64, amount int) product.Product {
	return product.Product{
		ID:        id,
		Name:      id,
		Price:     decimal.NewFromInt(price),
		Amount:    amount,
		Available: true,
		Category:  "test",
	}
}

func TestAddLine_InvalidQuantity(t *testing.T) {
	svc := NewService(newDirectory(testProduct("p1", 10, 5)), nil)

	c := New()
	err := svc.AddLine(context.Background(), c, "p1", 0)

	var iqErr *InvalidQuantityError
	require.ErrorAs(t, err, &iqErr)
	assert.Equal(t, "p1", iqErr.ProductID)
	assert.True(t, c.Empty())
}

func TestAddLine_UnknownProduct(t *testing.T) {
	svc := NewService(newDirectory(), nil)

	err := svc.AddLine(context.Background(), New(), "ghost", 1)
	require.ErrorIs(t, err, product.ErrNotFound)
}

func TestAddLine_FilterShortCircuitsLookup(t *testing.T) {
	dir := newDirectory(testProduct("p1", 10, 5))
	svc := NewService(dir, product.NewIDFilter([]string{"p1"}))

	err := svc.AddLine(context.Background(), New(), "definitely-not-in-filter", 1)
	require.ErrorIs(t, err, product.ErrNotFound)
	assert.Zero(t, dir.gets)
}

func TestAddLine_FilterBuiltBeforeCatalogSeeded(t *testing.T) {
	// The filter was built while the catalog was still empty (e.g. before
	// seeding). It carries no information, so lookups must reach the
	// directory instead of reporting the product as unknown.
	dir := newDirectory(testProduct("ceramic-mug", 10, 5))
	svc := NewService(dir, product.NewIDFilter(nil))

	c := New()
	require.NoError(t, svc.AddLine(context.Background(), c, "ceramic-mug", 1))
	assert.Equal(t, 1, c.Quantity("ceramic-mug"))
	assert.Equal(t, 1, dir.gets)
}

func TestAddLine_FilterReloadSeesNewProducts(t *testing.T) {
	dir := newDirectory(testProduct("espresso-beans", 10, 5), testProduct("ceramic-mug", 7, 5))
	filter := product.NewIDFilter([]string{"espresso-beans"})
	svc := NewService(dir, filter)

	err := svc.AddLine(context.Background(), New(), "ceramic-mug", 1)
	require.ErrorIs(t, err, product.ErrNotFound)

	// Catalog grew; a reload makes the new product addable.
	filter.Reload([]string{"espresso-beans", "ceramic-mug"})

	c := New()
	require.NoError(t, svc.AddLine(context.Background(), c, "ceramic-mug", 1))
	assert.Equal(t, 1, c.Quantity("ceramic-mug"))
}

func TestAddLine_Unavailable(t *testing.T) {
	p := testProduct("p1", 10, 5)
	p.Available = false
	svc := NewService(newDirectory(p), nil)

	err := svc.AddLine(context.Background(), New(), "p1", 1)
	require.ErrorIs(t, err, product.ErrUnavailable)
}

func TestAddLine_MergedQuantityOverStock(t *testing.T) {
	svc := NewService(newDirectory(testProduct("p1", 10, 5)), nil)

	c := New()
	require.NoError(t, svc.AddLine(context.Background(), c, "p1", 3))

	// 3 already in cart + 3 more exceeds the 5 available.
	err := svc.AddLine(context.Background(), c, "p1", 3)

	var stockErr *product.InsufficientStockError
	require.ErrorAs(t, err, &stockErr)
	assert.Equal(t, 3, stockErr.Requested, "error reports the failing add, not the merged total")
	assert.Equal(t, 3, stockErr.InCart)
	assert.Equal(t, 3, c.Quantity("p1"), "failed add leaves the cart untouched")
}

func TestAddLine_SnapshotsPriceOnFirstAdd(t *testing.T) {
	dir := newDirectory(testProduct("p1", 10, 50))
	svc := NewService(dir, nil)

	c := New()
	require.NoError(t, svc.AddLine(context.Background(), c, "p1", 1))

	// Catalog price changes after the first add.
	dir.byID["p1"].Price = decimal.NewFromInt(25)
	require.NoError(t, svc.AddLine(context.Background(), c, "p1", 1))

	assert.True(t, c.Total().Equal(decimal.NewFromInt(20)))
}

func TestUpdateLine_ZeroRemoves(t *testing.T) {
	svc := NewService(newDirectory(testProduct("p1", 10, 5)), nil)

	c := New()
	require.NoError(t, svc.AddLine(context.Background(), c, "p1", 2))
	require.NoError(t, svc.UpdateLine(context.Background(), c, "p1", 0))
	assert.True(t, c.Empty())

	require.NoError(t, svc.UpdateLine(context.Background(), c, "p1", -1))
}

func TestUpdateLine_AbsentLineIsNoop(t *testing.T) {
	dir := newDirectory(testProduct("p1", 10, 5))
	svc := NewService(dir, nil)

	c := New()
	require.NoError(t, svc.UpdateLine(context.Background(), c, "p1", 3))
	assert.True(t, c.Empty())
	assert.Zero(t, dir.gets)
}

func TestUpdateLine_OverwritesQuantity(t *testing.T) {
	svc := NewService(newDirectory(testProduct("p1", 10, 5)), nil)

	c := New()
	require.NoError(t, svc.AddLine(context.Background(), c, "p1", 2))
	require.NoError(t, svc.UpdateLine(context.Background(), c, "p1", 4))
	assert.Equal(t, 4, c.Quantity("p1"))
}

func TestUpdateLine_OverStock(t *testing.T) {
	svc := NewService(newDirectory(testProduct("p1", 10, 5)), nil)

	c := New()
	require.NoError(t, svc.AddLine(context.Background(), c, "p1", 2))

	err := svc.UpdateLine(context.Background(), c, "p1", 6)

	var stockErr *product.InsufficientStockError
	require.ErrorAs(t, err, &stockErr)
	assert.Equal(t, 2, c.Quantity("p1"), "failed update leaves the quantity untouched")
}
