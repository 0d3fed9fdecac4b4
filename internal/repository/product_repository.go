package repository

import (
	"context"
	"database/sql"
	"fmt"

	"storefront-api/internal/domain"

	"github.com/google/uuid"
)

// ProductRepository defines the interface for product data access
type ProductRepository interface {
	Create(ctx context.Context, product *domain.Product) error
	ListByUser(ctx context.Context, userUID uuid.UUID) ([]*domain.Product, error)
}

type productRepository struct {
	db *sql.DB
}

// NewProductRepository creates a new instance of ProductRepository
func NewProductRepository(db *sql.DB) ProductRepository {
	return &productRepository{db: db}
}

// Create inserts a new product and fills in its id and created_at
func (r *productRepository) Create(ctx context.Context, product *domain.Product) error {
	query := `
		INSERT INTO products (user_uid, name, description, price, in_stock, category)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at
	`

	err := executor(ctx, r.db).QueryRowContext(
		ctx,
		query,
		product.UserUID,
		product.Name,
		product.Description,
		product.Price,
		product.InStock,
		product.Category,
	).Scan(&product.ID, &product.CreatedAt)

	if err != nil {
		return fmt.Errorf("failed to create product: %w", err)
	}

	return nil
}

// ListByUser retrieves every product owned by userUID in store order
func (r *productRepository) ListByUser(ctx context.Context, userUID uuid.UUID) ([]*domain.Product, error) {
	query := `
		SELECT id, user_uid, name, description, price, in_stock, category, created_at
		FROM products
		WHERE user_uid = $1
	`

	rows, err := executor(ctx, r.db).QueryContext(ctx, query, userUID)
	if err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}
	defer rows.Close()

	products := []*domain.Product{}
	for rows.Next() {
		product := &domain.Product{}
		var description, category sql.NullString
		err := rows.Scan(
			&product.ID,
			&product.UserUID,
			&product.Name,
			&description,
			&product.Price,
			&product.InStock,
			&category,
			&product.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan product: %w", err)
		}
		if description.Valid {
			product.Description = &description.String
		}
		if category.Valid {
			product.Category = &category.String
		}
		products = append(products, product)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating products: %w", err)
	}

	return products, nil
}
