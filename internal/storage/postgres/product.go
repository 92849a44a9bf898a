package postgres

import (
	"context"
	"fmt"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/xenking/storefront/internal/domain/product"
)

var _ product.Directory = (*ProductDirectory)(nil)

// ProductDirectory implements product.Directory backed by PostgreSQL.
type ProductDirectory struct {
	pool *pgxpool.Pool
}

// NewProductDirectory returns a ProductDirectory that uses the given pool.
func NewProductDirectory(pool *pgxpool.Pool) *ProductDirectory {
	return &ProductDirectory{pool: pool}
}

const productColumns = `id, name, price, amount, available, category, created_at`

func scanProduct(row pgx.Row) (*product.Product, error) {
	var p product.Product
	err := row.Scan(&p.ID, &p.Name, &p.Price, &p.Amount, &p.Available, &p.Category, &p.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// List returns all products from the catalog ordered by ID.
func (d *ProductDirectory) List(ctx context.Context) ([]product.Product, error) {
	rows, err := d.pool.Query(ctx, `SELECT `+productColumns+` FROM products ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("listing products: %w", err)
	}
	defer rows.Close()

	var products []product.Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning product: %w", err)
		}
		products = append(products, *p)
	}
	return products, rows.Err()
}

// GetByID returns a single product by its identifier, or product.ErrNotFound
// when no matching row exists.
func (d *ProductDirectory) GetByID(ctx context.Context, id string) (*product.Product, error) {
	row := d.pool.QueryRow(ctx, `SELECT `+productColumns+` FROM products WHERE id = $1`, id)
	p, err := scanProduct(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, product.ErrNotFound
		}
		return nil, fmt.Errorf("getting product %q: %w", id, err)
	}
	return p, nil
}

// Reserve atomically decrements the product's stock counter. The guard in the
// WHERE clause makes the read-check-decrement a single statement: PostgreSQL
// serializes it under the row lock, so two commits racing for the last unit
// cannot both succeed. Zero rows affected means the counter could not support
// the decrement.
func (d *ProductDirectory) Reserve(ctx context.Context, id string, quantity int) error {
	tag, err := d.pool.Exec(ctx,
		`UPDATE products SET amount = amount - $2
		 WHERE id = $1 AND available AND amount >= $2`,
		id, quantity,
	)
	if err != nil {
		return fmt.Errorf("reserving %d of product %q: %w", quantity, id, err)
	}
	if tag.RowsAffected() == 0 {
		return &product.InsufficientStockError{ProductID: id, Requested: quantity}
	}
	return nil
}

// Restore returns previously reserved stock to the counter. It is used only
// to compensate a partial reservation when a later commit step fails.
func (d *ProductDirectory) Restore(ctx context.Context, id string, quantity int) error {
	tag, err := d.pool.Exec(ctx,
		`UPDATE products SET amount = amount + $2 WHERE id = $1`,
		id, quantity,
	)
	if err != nil {
		return fmt.Errorf("restoring %d of product %q: %w", quantity, id, err)
	}
	if tag.RowsAffected() == 0 {
		return product.ErrNotFound
	}
	return nil
}
