package repository

import (
	"context"
	"database/sql"
	"fmt"

	"storefront-api/internal/domain"
)

// TransactionRepository defines the interface for payment transaction data access
type TransactionRepository interface {
	Create(ctx context.Context, txn *domain.Transaction) error
	ListByOrder(ctx context.Context, orderID int64) ([]*domain.Transaction, error)
	DeleteByOrder(ctx context.Context, orderID int64) (int64, error)
}

type transactionRepository struct {
	db *sql.DB
}

// NewTransactionRepository creates a new instance of TransactionRepository
func NewTransactionRepository(db *sql.DB) TransactionRepository {
	return &transactionRepository{db: db}
}

// Create inserts a transaction and fills in its id and created_at
func (r *transactionRepository) Create(ctx context.Context, txn *domain.Transaction) error {
	query := `
		INSERT INTO transactions (order_id, payment_method_id, amount, user_uid, status, category, type, description)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, created_at
	`

	err := executor(ctx, r.db).QueryRowContext(
		ctx,
		query,
		txn.OrderID,
		txn.PaymentMethodID,
		txn.Amount,
		txn.UserUID,
		txn.Status,
		txn.Category,
		txn.Type,
		txn.Description,
	).Scan(&txn.ID, &txn.CreatedAt)

	if err != nil {
		return fmt.Errorf("failed to create transaction: %w", err)
	}

	return nil
}

// ListByOrder retrieves the transactions recorded for an order
func (r *transactionRepository) ListByOrder(ctx context.Context, orderID int64) ([]*domain.Transaction, error) {
	query := `
		SELECT id, order_id, payment_method_id, amount, user_uid, status, category, type, description, created_at
		FROM transactions
		WHERE order_id = $1
		ORDER BY id
	`

	rows, err := executor(ctx, r.db).QueryContext(ctx, query, orderID)
	if err != nil {
		return nil, fmt.Errorf("failed to list transactions: %w", err)
	}
	defer rows.Close()

	txns := []*domain.Transaction{}
	for rows.Next() {
		txn := &domain.Transaction{}
		var description sql.NullString
		err := rows.Scan(
			&txn.ID,
			&txn.OrderID,
			&txn.PaymentMethodID,
			&txn.Amount,
			&txn.UserUID,
			&txn.Status,
			&txn.Category,
			&txn.Type,
			&description,
			&txn.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan transaction: %w", err)
		}
		txn.Description = description.String
		txns = append(txns, txn)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating transactions: %w", err)
	}

	return txns, nil
}

// DeleteByOrder removes the transactions of an order
func (r *transactionRepository) DeleteByOrder(ctx context.Context, orderID int64) (int64, error) {
	result, err := executor(ctx, r.db).ExecContext(ctx, `DELETE FROM transactions WHERE order_id = $1`, orderID)
	if err != nil {
		return 0, fmt.Errorf("failed to delete transactions: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}

	return rowsAffected, nil
}
