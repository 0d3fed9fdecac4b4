package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"storefront-api/internal/domain"

	"github.com/google/uuid"
)

// OrderRepository defines the interface for order data access
type OrderRepository interface {
	Create(ctx context.Context, order *domain.Order) error
	ListByUser(ctx context.Context, userUID uuid.UUID) ([]*domain.Order, error)
	Delete(ctx context.Context, id int64) error
}

// OrderItemRepository defines the interface for order line data access
type OrderItemRepository interface {
	CreateBatch(ctx context.Context, items []*domain.OrderItem) error
	ListByOrder(ctx context.Context, orderID int64) ([]*domain.OrderItem, error)
	DeleteByOrder(ctx context.Context, orderID int64) (int64, error)
}

type orderRepository struct {
	db *sql.DB
}

// NewOrderRepository creates a new instance of OrderRepository
func NewOrderRepository(db *sql.DB) OrderRepository {
	return &orderRepository{db: db}
}

const orderColumns = `o.id, o.user_uid, o.customer_id, o.total, o.status, o.created_at, c.name`

func scanOrder(row interface{ Scan(...interface{}) error }) (*domain.Order, error) {
	order := &domain.Order{}
	var customerName sql.NullString

	err := row.Scan(
		&order.ID,
		&order.UserUID,
		&order.CustomerID,
		&order.Total,
		&order.Status,
		&order.CreatedAt,
		&customerName,
	)
	if err != nil {
		return nil, err
	}

	if customerName.Valid {
		order.CustomerName = &customerName.String
	}
	return order, nil
}

// Create inserts the order and fills in the store-assigned id, created_at
// (unless the caller set one) and the joined customer name
func (r *orderRepository) Create(ctx context.Context, order *domain.Order) error {
	query := `
		WITH o AS (
			INSERT INTO orders (user_uid, customer_id, total, status, created_at)
			VALUES ($1, $2, $3, $4, COALESCE($5, now()))
			RETURNING id, user_uid, customer_id, total, status, created_at
		)
		SELECT ` + orderColumns + `
		FROM o
		LEFT JOIN customers c ON c.id = o.customer_id
	`

	var createdAt *time.Time
	if !order.CreatedAt.IsZero() {
		createdAt = &order.CreatedAt
	}

	inserted, err := scanOrder(executor(ctx, r.db).QueryRowContext(
		ctx,
		query,
		order.UserUID,
		order.CustomerID,
		order.Total,
		order.Status,
		createdAt,
	))
	if err != nil {
		return fmt.Errorf("failed to create order: %w", err)
	}

	*order = *inserted
	return nil
}

// ListByUser retrieves every order owned by userUID in store order
func (r *orderRepository) ListByUser(ctx context.Context, userUID uuid.UUID) ([]*domain.Order, error) {
	query := `
		SELECT ` + orderColumns + `
		FROM orders o
		LEFT JOIN customers c ON c.id = o.customer_id
		WHERE o.user_uid = $1
	`

	rows, err := executor(ctx, r.db).QueryContext(ctx, query, userUID)
	if err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}
	defer rows.Close()

	orders := []*domain.Order{}
	for rows.Next() {
		order, err := scanOrder(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan order: %w", err)
		}
		orders = append(orders, order)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating orders: %w", err)
	}

	return orders, nil
}

// Delete removes an order row. Deleting a missing order is not an error.
func (r *orderRepository) Delete(ctx context.Context, id int64) error {
	if _, err := executor(ctx, r.db).ExecContext(ctx, `DELETE FROM orders WHERE id = $1`, id); err != nil {
		return fmt.Errorf("failed to delete order: %w", err)
	}
	return nil
}

type orderItemRepository struct {
	db *sql.DB
}

// NewOrderItemRepository creates a new instance of OrderItemRepository
func NewOrderItemRepository(db *sql.DB) OrderItemRepository {
	return &orderItemRepository{db: db}
}

// CreateBatch inserts all items in one statement and assigns their ids
func (r *orderItemRepository) CreateBatch(ctx context.Context, items []*domain.OrderItem) error {
	if len(items) == 0 {
		return nil
	}

	values := make([]string, 0, len(items))
	args := make([]interface{}, 0, len(items)*4)
	for i, item := range items {
		n := i * 4
		values = append(values, fmt.Sprintf("($%d, $%d, $%d, $%d)", n+1, n+2, n+3, n+4))
		args = append(args, item.OrderID, item.ProductID, item.Quantity, item.Price)
	}

	query := fmt.Sprintf(`
		INSERT INTO order_items (order_id, product_id, quantity, price)
		VALUES %s
		RETURNING id
	`, strings.Join(values, ", "))

	rows, err := executor(ctx, r.db).QueryContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to create order items: %w", err)
	}
	defer rows.Close()

	i := 0
	for rows.Next() {
		if i >= len(items) {
			return fmt.Errorf("failed to create order items: unexpected returned row")
		}
		if err := rows.Scan(&items[i].ID); err != nil {
			return fmt.Errorf("failed to scan order item id: %w", err)
		}
		i++
	}

	if err = rows.Err(); err != nil {
		return fmt.Errorf("failed to create order items: %w", err)
	}

	return nil
}

// ListByOrder retrieves the lines of an order
func (r *orderItemRepository) ListByOrder(ctx context.Context, orderID int64) ([]*domain.OrderItem, error) {
	query := `
		SELECT id, order_id, product_id, quantity, price
		FROM order_items
		WHERE order_id = $1
		ORDER BY id
	`

	rows, err := executor(ctx, r.db).QueryContext(ctx, query, orderID)
	if err != nil {
		return nil, fmt.Errorf("failed to list order items: %w", err)
	}
	defer rows.Close()

	items := []*domain.OrderItem{}
	for rows.Next() {
		item := &domain.OrderItem{}
		err := rows.Scan(
			&item.ID,
			&item.OrderID,
			&item.ProductID,
			&item.Quantity,
			&item.Price,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan order item: %w", err)
		}
		items = append(items, item)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating order items: %w", err)
	}

	return items, nil
}

// DeleteByOrder removes every line of an order and returns how many went
func (r *orderItemRepository) DeleteByOrder(ctx context.Context, orderID int64) (int64, error) {
	result, err := executor(ctx, r.db).ExecContext(ctx, `DELETE FROM order_items WHERE order_id = $1`, orderID)
	if err != nil {
		return 0, fmt.Errorf("failed to delete order items: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}

	return rowsAffected, nil
}
