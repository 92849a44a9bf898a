package postgres

import (
	"context"
	"fmt"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/xenking/storefront/internal/domain/order"
)

var _ order.Repository = (*OrderRepository)(nil)

// OrderRepository implements order.Repository backed by PostgreSQL.
type OrderRepository struct {
	pool *pgxpool.Pool
}

// NewOrderRepository returns an OrderRepository that uses the given pool.
func NewOrderRepository(pool *pgxpool.Pool) *OrderRepository {
	return &OrderRepository{pool: pool}
}

// Create persists the order together with its details in one transaction, so
// the order either lands as a complete unit or not at all.
func (r *OrderRepository) Create(ctx context.Context, o *order.Order) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin order tx: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	_, err = tx.Exec(ctx,
		`INSERT INTO orders (id, username, address, status, total, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		o.ID, o.Username, o.Address, string(o.Status), o.Total, o.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("inserting order %q: %w", o.ID, err)
	}

	for _, d := range o.Details {
		_, err = tx.Exec(ctx,
			`INSERT INTO order_details (order_id, product_id, quantity, unit_price)
			 VALUES ($1, $2, $3, $4)`,
			o.ID, d.ProductID, d.Quantity, d.UnitPrice,
		)
		if err != nil {
			return fmt.Errorf("inserting detail %s/%s: %w", o.ID, d.ProductID, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("committing order %q: %w", o.ID, err)
	}
	return nil
}

// GetByID returns an order with its details, or order.ErrNotFound.
func (r *OrderRepository) GetByID(ctx context.Context, id string) (*order.Order, error) {
	var o order.Order
	var status string
	err := r.pool.QueryRow(ctx,
		`SELECT id, username, address, status, total, created_at FROM orders WHERE id = $1`,
		id,
	).Scan(&o.ID, &o.Username, &o.Address, &status, &o.Total, &o.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, order.ErrNotFound
		}
		return nil, fmt.Errorf("getting order %q: %w", id, err)
	}
	o.Status = order.Status(status)

	details, err := r.loadDetails(ctx, id)
	if err != nil {
		return nil, err
	}
	o.Details = details
	return &o, nil
}

func (r *OrderRepository) loadDetails(ctx context.Context, orderID string) ([]order.Detail, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT product_id, quantity, unit_price FROM order_details
		 WHERE order_id = $1 ORDER BY product_id`,
		orderID,
	)
	if err != nil {
		return nil, fmt.Errorf("listing details of order %q: %w", orderID, err)
	}
	defer rows.Close()

	var details []order.Detail
	for rows.Next() {
		var d order.Detail
		if err := rows.Scan(&d.ProductID, &d.Quantity, &d.UnitPrice); err != nil {
			return nil, fmt.Errorf("scanning detail: %w", err)
		}
		details = append(details, d)
	}
	return details, rows.Err()
}

// List returns all orders newest first, without details. Operators drill into
// a single order via GetByID.
func (r *OrderRepository) List(ctx context.Context) ([]order.Order, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, username, address, status, total, created_at
		 FROM orders ORDER BY created_at DESC`,
	)
	if err != nil {
		return nil, fmt.Errorf("listing orders: %w", err)
	}
	defer rows.Close()

	var orders []order.Order
	for rows.Next() {
		var o order.Order
		var status string
		if err := rows.Scan(&o.ID, &o.Username, &o.Address, &status, &o.Total, &o.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning order: %w", err)
		}
		o.Status = order.Status(status)
		orders = append(orders, o)
	}
	return orders, rows.Err()
}

// UpdateStatus writes the order's status field, failing with order.ErrNotFound
// for an unknown ID.
func (r *OrderRepository) UpdateStatus(ctx context.Context, id string, status order.Status) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE orders SET status = $2 WHERE id = $1`,
		id, string(status),
	)
	if err != nil {
		return fmt.Errorf("updating status of order %q: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return order.ErrNotFound
	}
	return nil
}
