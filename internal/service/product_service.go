package service

import (
	"context"

	"storefront-api/internal/domain"
	"storefront-api/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CreateProductInput is a validated product payload
type CreateProductInput struct {
	Name        string
	Description *string
	Price       decimal.Decimal
	InStock     int
	Category    *string
}

// ProductService defines the interface for product business logic
type ProductService interface {
	Create(ctx context.Context, userUID uuid.UUID, in CreateProductInput) (*domain.Product, error)
	List(ctx context.Context, userUID uuid.UUID) ([]*domain.Product, error)
}

type productService struct {
	products repository.ProductRepository
}

// NewProductService creates a new instance of ProductService
func NewProductService(products repository.ProductRepository) ProductService {
	return &productService{products: products}
}

// Create inserts one product owned by userUID
func (s *productService) Create(ctx context.Context, userUID uuid.UUID, in CreateProductInput) (*domain.Product, error) {
	product := &domain.Product{
		UserUID:     userUID,
		Name:        in.Name,
		Description: in.Description,
		Price:       in.Price,
		InStock:     in.InStock,
		Category:    in.Category,
	}

	if err := s.products.Create(ctx, product); err != nil {
		return nil, err
	}

	return product, nil
}

// List returns every product owned by userUID
func (s *productService) List(ctx context.Context, userUID uuid.UUID) ([]*domain.Product, error) {
	return s.products.ListByUser(ctx, userUID)
}
