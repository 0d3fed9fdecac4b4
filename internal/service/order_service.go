package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"storefront-api/internal/domain"
	"storefront-api/internal/repository"

	"github.com/google/uuid"
	"github.com/sethvargo/go-retry"
	"github.com/shopspring/decimal"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

// ErrInvalidOrderStatus is returned for a status the orders table rejects
var ErrInvalidOrderStatus = errors.New("invalid order status")

// OrderLineInput is one product line of a new order
type OrderLineInput struct {
	ProductID int64
	Quantity  int
	Price     decimal.Decimal
}

// CreateOrderInput is a validated order payload
type CreateOrderInput struct {
	CustomerID      int64
	PaymentMethodID *int64
	Total           decimal.Decimal
	// Status falls back to domain.DefaultOrderStatus when empty
	Status domain.OrderStatus
	// CreatedAt is left to the store when nil
	CreatedAt *time.Time
	Products  []OrderLineInput
}

// OrderService defines the interface for order business logic
type OrderService interface {
	Create(ctx context.Context, userUID uuid.UUID, in CreateOrderInput) (*domain.Order, error)
	List(ctx context.Context, userUID uuid.UUID) ([]*domain.Order, error)
}

// OrderServiceConfig tunes compensation of failed workflows
type OrderServiceConfig struct {
	CompensationMaxRetries uint64
	CompensationBackoff    time.Duration
}

type orderService struct {
	orders       repository.OrderRepository
	items        repository.OrderItemRepository
	transactions repository.TransactionRepository
	txManager    repository.TxManager
	cfg          OrderServiceConfig
	logger       *zap.Logger
}

// NewOrderService creates a new instance of OrderService. With a SQL
// transaction manager the workflow is atomic; with the no-op manager every
// step commits on its own and failures are undone by compensation.
func NewOrderService(
	orders repository.OrderRepository,
	items repository.OrderItemRepository,
	transactions repository.TransactionRepository,
	txManager repository.TxManager,
	cfg OrderServiceConfig,
	logger *zap.Logger,
) OrderService {
	if cfg.CompensationBackoff <= 0 {
		cfg.CompensationBackoff = 50 * time.Millisecond
	}
	return &orderService{
		orders:       orders,
		items:        items,
		transactions: transactions,
		txManager:    txManager,
		cfg:          cfg,
		logger:       logger,
	}
}

// Create persists an order, its lines and its payment. Steps run strictly
// in sequence; a failing step undoes the earlier ones and its own error is
// returned.
func (s *orderService) Create(ctx context.Context, userUID uuid.UUID, in CreateOrderInput) (*domain.Order, error) {
	status := in.Status
	if status == "" {
		status = domain.DefaultOrderStatus
	}
	if !status.IsValid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidOrderStatus, status)
	}

	var created *domain.Order
	err := s.txManager.WithinTransaction(ctx, func(ctx context.Context) error {
		order := &domain.Order{
			UserUID:    userUID,
			CustomerID: in.CustomerID,
			Total:      in.Total,
			Status:     status,
		}
		if in.CreatedAt != nil {
			order.CreatedAt = *in.CreatedAt
		}

		// Step 1: nothing persisted yet, nothing to undo.
		if err := s.orders.Create(ctx, order); err != nil {
			return err
		}

		// Step 2
		itemsInserted := false
		if len(in.Products) > 0 {
			items := make([]*domain.OrderItem, 0, len(in.Products))
			for _, line := range in.Products {
				items = append(items, &domain.OrderItem{
					OrderID:   order.ID,
					ProductID: line.ProductID,
					Quantity:  line.Quantity,
					Price:     line.Price,
				})
			}

			if err := s.items.CreateBatch(ctx, items); err != nil {
				s.compensate(ctx, order.ID, false, false, err)
				return err
			}
			itemsInserted = true
		}

		// Step 3
		if in.PaymentMethodID != nil {
			txn := domain.NewOrderPayment(order, *in.PaymentMethodID)
			if err := s.transactions.Create(ctx, txn); err != nil {
				s.compensate(ctx, order.ID, itemsInserted, true, err)
				return err
			}
		}

		created = order
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Debug("Order workflow completed",
		zap.Int64("order_id", created.ID),
		zap.Int("items", len(in.Products)),
		zap.Bool("paid", in.PaymentMethodID != nil),
	)

	return created, nil
}

// compensate removes what an aborted workflow already wrote. Inside a
// database transaction the rollback does this, so nothing runs here.
// Every delete is idempotent and retried with backoff; failures are logged
// on their own and never replace the triggering error.
func (s *orderService) compensate(ctx context.Context, orderID int64, itemsInserted, paymentAttempted bool, cause error) {
	if repository.InTransaction(ctx) {
		return
	}

	// Undo even when the caller has gone away.
	ctx = context.WithoutCancel(ctx)

	s.logger.Warn("Compensating failed order workflow",
		zap.Int64("order_id", orderID),
		zap.Error(cause),
	)

	var errs error

	// A transaction insert that failed on the wire may still have landed.
	if paymentAttempted {
		errs = multierr.Append(errs, s.withRetry(ctx, func(ctx context.Context) error {
			_, err := s.transactions.DeleteByOrder(ctx, orderID)
			return err
		}))
	}

	if itemsInserted {
		errs = multierr.Append(errs, s.withRetry(ctx, func(ctx context.Context) error {
			_, err := s.items.DeleteByOrder(ctx, orderID)
			return err
		}))
	}

	errs = multierr.Append(errs, s.withRetry(ctx, func(ctx context.Context) error {
		return s.orders.Delete(ctx, orderID)
	}))

	if errs != nil {
		s.logger.Error("Order compensation failed",
			zap.Int64("order_id", orderID),
			zap.Errors("compensation_errors", multierr.Errors(errs)),
			zap.NamedError("cause", cause),
		)
	}
}

func (s *orderService) withRetry(ctx context.Context, fn func(ctx context.Context) error) error {
	backoff := retry.WithMaxRetries(s.cfg.CompensationMaxRetries, retry.NewExponential(s.cfg.CompensationBackoff))

	return retry.Do(ctx, backoff, func(ctx context.Context) error {
		if err := fn(ctx); err != nil {
			return retry.RetryableError(err)
		}
		return nil
	})
}

// List returns every order owned by userUID
func (s *orderService) List(ctx context.Context, userUID uuid.UUID) ([]*domain.Order, error) {
	return s.orders.ListByUser(ctx, userUID)
}
