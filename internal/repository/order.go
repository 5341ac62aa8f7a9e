package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/vkarpenko/mini-crm/internal/domain/order"
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

const insertOrderSQL = `INSERT INTO orders (order_no, contact_id)
	VALUES ($1, $2) RETURNING id, created_at`

const insertOrderItemSQL = `INSERT INTO order_items
	(order_id, product_id, size_name, qty, unit_price, line_total, extras, customization)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8) RETURNING id`

// CreateWithItems persists the order row and all its items inside a single
// transaction. Any failure rolls everything back so no partial order is ever
// visible. A duplicate order number maps to order.ErrOrderNumberConflict.
func (r *OrderRepository) CreateWithItems(ctx context.Context, o *order.Order) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	err = tx.QueryRow(ctx, insertOrderSQL, o.OrderNo, o.ContactID).
		Scan(&o.ID, &o.CreatedAt)
	if err != nil {
		if isUniqueViolation(err, "orders_order_no_key") {
			return order.ErrOrderNumberConflict
		}
		return fmt.Errorf("inserting order %q: %w", o.OrderNo, err)
	}

	for i := range o.Items {
		item := &o.Items[i]
		item.OrderID = o.ID

		extrasJSON, err := marshalExtras(item.Extras)
		if err != nil {
			return fmt.Errorf("marshaling extras for product %d: %w", item.ProductID, err)
		}

		err = tx.QueryRow(ctx, insertOrderItemSQL,
			o.ID, item.ProductID, item.SizeName, item.Qty,
			item.UnitPrice, item.LineTotal, extrasJSON, item.Customization,
		).Scan(&item.ID)
		if err != nil {
			return fmt.Errorf("inserting item for product %d: %w", item.ProductID, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("committing order %q: %w", o.OrderNo, err)
	}
	return nil
}

const listOrdersSQL = `SELECT id, order_no, contact_id, created_at
	FROM orders ORDER BY created_at DESC, id DESC`

// List returns all orders, newest first, without items.
func (r *OrderRepository) List(ctx context.Context) ([]order.Order, error) {
	rows, err := r.pool.Query(ctx, listOrdersSQL)
	if err != nil {
		return nil, fmt.Errorf("listing orders: %w", err)
	}
	defer rows.Close()

	var orders []order.Order
	for rows.Next() {
		var o order.Order
		if err := rows.Scan(&o.ID, &o.OrderNo, &o.ContactID, &o.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning order: %w", err)
		}
		orders = append(orders, o)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("listing orders: %w", err)
	}
	return orders, nil
}

const getOrderSQL = `SELECT id, order_no, contact_id, created_at
	FROM orders WHERE id = $1`

const getOrderItemsSQL = `SELECT i.id, i.order_id, i.product_id, p.name,
		i.size_name, i.qty, i.unit_price, i.line_total, i.extras, i.customization
	FROM order_items i
	JOIN products p ON p.id = i.product_id
	WHERE i.order_id = $1
	ORDER BY i.id`

// GetByID returns an order with its items, or order.ErrNotFound.
func (r *OrderRepository) GetByID(ctx context.Context, id int64) (*order.Order, error) {
	var o order.Order
	err := r.pool.QueryRow(ctx, getOrderSQL, id).
		Scan(&o.ID, &o.OrderNo, &o.ContactID, &o.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, order.ErrNotFound
		}
		return nil, fmt.Errorf("getting order %d: %w", id, err)
	}

	rows, err := r.pool.Query(ctx, getOrderItemsSQL, id)
	if err != nil {
		return nil, fmt.Errorf("getting items for order %d: %w", id, err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			item       order.Item
			extrasJSON []byte
		)
		err := rows.Scan(&item.ID, &item.OrderID, &item.ProductID, &item.ProductName,
			&item.SizeName, &item.Qty, &item.UnitPrice, &item.LineTotal,
			&extrasJSON, &item.Customization)
		if err != nil {
			return nil, fmt.Errorf("scanning order item: %w", err)
		}
		if len(extrasJSON) > 0 {
			if err := json.Unmarshal(extrasJSON, &item.Extras); err != nil {
				return nil, fmt.Errorf("unmarshaling extras for item %d: %w", item.ID, err)
			}
		}
		o.Items = append(o.Items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("getting items for order %d: %w", id, err)
	}

	return &o, nil
}

// Count returns the number of orders.
func (r *OrderRepository) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := r.pool.QueryRow(ctx, `SELECT count(*) FROM orders`).Scan(&n); err != nil {
		return 0, fmt.Errorf("counting orders: %w", err)
	}
	return n, nil
}

// marshalExtras serializes an extras value for the JSONB column. A nil value
// stores an empty object, matching the column default.
func marshalExtras(extras any) ([]byte, error) {
	if extras == nil {
		return []byte(`{}`), nil
	}
	return json.Marshal(extras)
}
