package service

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"testing"
	"time"

	"storefront-api/internal/domain"
	"storefront-api/internal/repository"

	"github.com/google/uuid"
	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func newTestOrderService(store *memoryStore, logger *zap.Logger) OrderService {
	return NewOrderService(
		mockOrderRepository{store},
		mockOrderItemRepository{store},
		mockTransactionRepository{store},
		repository.NewNoopTxManager(),
		OrderServiceConfig{CompensationMaxRetries: 2, CompensationBackoff: time.Millisecond},
		logger,
	)
}

func orderLines(n int) []OrderLineInput {
	lines := make([]OrderLineInput, 0, n)
	for i := 0; i < n; i++ {
		lines = append(lines, OrderLineInput{
			ProductID: int64(i + 1),
			Quantity:  i + 1,
			Price:     decimal.NewFromFloat(2.5),
		})
	}
	return lines
}

func int64Ptr(v int64) *int64 { return &v }

// Property: an order with products and no payment persists one item per line
func TestProperty_OrderWithProductsPersistsEveryLine(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("one order item per product entry, status defaults to completed", prop.ForAll(
		func(lineCount int, cents int64) bool {
			store := newMemoryStore()
			svc := newTestOrderService(store, zap.NewNop())
			userUID := uuid.New()

			order, err := svc.Create(context.Background(), userUID, CreateOrderInput{
				CustomerID: 1,
				Total:      decimal.New(cents, -2),
				Products:   orderLines(lineCount),
			})
			if err != nil {
				t.Logf("FAIL: create: %v", err)
				return false
			}

			if order.Status != domain.OrderStatusCompleted {
				t.Logf("FAIL: status %q", order.Status)
				return false
			}
			if order.UserUID != userUID || order.CustomerName == nil {
				return false
			}
			if _, ok := store.orders[order.ID]; !ok {
				return false
			}
			if len(store.items[order.ID]) != lineCount {
				t.Logf("FAIL: expected %d items, got %d", lineCount, len(store.items[order.ID]))
				return false
			}
			for _, item := range store.items[order.ID] {
				if item.OrderID != order.ID {
					return false
				}
			}
			return len(store.txns) == 0
		},
		gen.IntRange(1, 20),
		gen.Int64Range(0, 1000000),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}

// Property: a payment method produces exactly one income transaction
func TestProperty_PaymentCreatesSingleTransaction(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("transaction amount equals total and names the order", prop.ForAll(
		func(cents int64, paymentMethodID int64) bool {
			store := newMemoryStore()
			svc := newTestOrderService(store, zap.NewNop())
			total := decimal.New(cents, -2)

			order, err := svc.Create(context.Background(), uuid.New(), CreateOrderInput{
				CustomerID:      3,
				PaymentMethodID: int64Ptr(paymentMethodID),
				Total:           total,
			})
			if err != nil {
				return false
			}

			txns := store.txns[order.ID]
			if len(txns) != 1 {
				return false
			}
			txn := txns[0]
			return txn.Amount.Equal(total) &&
				txn.PaymentMethodID == paymentMethodID &&
				txn.UserUID == order.UserUID &&
				txn.Status == "completed" &&
				txn.Category == "selling" &&
				txn.Type == "income" &&
				strings.Contains(txn.Description, strconv.FormatInt(order.ID, 10))
		},
		gen.Int64Range(0, 1000000),
		gen.Int64Range(1, 1000),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}

func TestOrderService_Create_KeepsStatusAndTimestamp(t *testing.T) {
	store := newMemoryStore()
	svc := newTestOrderService(store, zap.NewNop())
	createdAt := time.Date(2024, 5, 4, 10, 0, 0, 0, time.UTC)

	order, err := svc.Create(context.Background(), uuid.New(), CreateOrderInput{
		CustomerID: 9,
		Total:      decimal.NewFromInt(10),
		Status:     domain.OrderStatusPending,
		CreatedAt:  &createdAt,
	})

	require.NoError(t, err)
	assert.Equal(t, domain.OrderStatusPending, order.Status)
	assert.True(t, order.CreatedAt.Equal(createdAt))
	assert.Equal(t, []string{"orders.create"}, store.calls)
}

func TestOrderService_Create_RejectsUnknownStatus(t *testing.T) {
	store := newMemoryStore()
	svc := newTestOrderService(store, zap.NewNop())

	_, err := svc.Create(context.Background(), uuid.New(), CreateOrderInput{
		CustomerID: 1,
		Total:      decimal.NewFromInt(1),
		Status:     domain.OrderStatus("shipped"),
	})

	require.ErrorIs(t, err, ErrInvalidOrderStatus)
	assert.Empty(t, store.calls)
}

func TestOrderService_Create_OrderInsertFailureTouchesNothingElse(t *testing.T) {
	store := newMemoryStore()
	store.failOrderCreate = errStoreDown
	svc := newTestOrderService(store, zap.NewNop())

	_, err := svc.Create(context.Background(), uuid.New(), CreateOrderInput{
		CustomerID:      1,
		PaymentMethodID: int64Ptr(1),
		Total:           decimal.NewFromInt(1),
		Products:        orderLines(2),
	})

	require.ErrorIs(t, err, errStoreDown)
	assert.Equal(t, []string{"orders.create"}, store.calls)
}

func TestOrderService_Create_ItemFailureDeletesOrder(t *testing.T) {
	store := newMemoryStore()
	itemsErr := errors.New(`insert or update on table "order_items" violates foreign key constraint`)
	store.failItemsCreate = itemsErr
	svc := newTestOrderService(store, zap.NewNop())
	userUID := uuid.New()

	_, err := svc.Create(context.Background(), userUID, CreateOrderInput{
		CustomerID:      1,
		PaymentMethodID: int64Ptr(1),
		Total:           decimal.NewFromInt(5),
		Products:        orderLines(3),
	})

	require.ErrorIs(t, err, itemsErr)
	assert.Empty(t, store.orders)
	assert.Empty(t, store.txns)
	assert.Equal(t, []string{"orders.create", "order_items.create", "orders.delete"}, store.calls)

	orders, err := svc.List(context.Background(), userUID)
	require.NoError(t, err)
	assert.Empty(t, orders)
}

func TestOrderService_Create_TransactionFailureDeletesItemsAndOrder(t *testing.T) {
	store := newMemoryStore()
	store.failTxnCreate = errStoreDown
	svc := newTestOrderService(store, zap.NewNop())

	_, err := svc.Create(context.Background(), uuid.New(), CreateOrderInput{
		CustomerID:      1,
		PaymentMethodID: int64Ptr(2),
		Total:           decimal.NewFromInt(5),
		Products:        orderLines(2),
	})

	require.ErrorIs(t, err, errStoreDown)
	assert.Empty(t, store.orders)
	assert.Empty(t, store.items)
	assert.Empty(t, store.txns)
	assert.Equal(t, []string{
		"orders.create",
		"order_items.create",
		"transactions.create",
		"transactions.delete",
		"order_items.delete",
		"orders.delete",
	}, store.calls)
}

func TestOrderService_Create_TransactionFailureWithoutItemsSkipsItemDelete(t *testing.T) {
	store := newMemoryStore()
	store.failTxnCreate = errStoreDown
	svc := newTestOrderService(store, zap.NewNop())

	_, err := svc.Create(context.Background(), uuid.New(), CreateOrderInput{
		CustomerID:      1,
		PaymentMethodID: int64Ptr(2),
		Total:           decimal.NewFromInt(5),
	})

	require.ErrorIs(t, err, errStoreDown)
	assert.Empty(t, store.orders)
	assert.NotContains(t, store.calls, "order_items.delete")
}

func TestOrderService_Compensation_RetriesDeletes(t *testing.T) {
	store := newMemoryStore()
	store.failItemsCreate = errors.New("items rejected")
	store.failOrderDeletes = 2
	svc := newTestOrderService(store, zap.NewNop())

	_, err := svc.Create(context.Background(), uuid.New(), CreateOrderInput{
		CustomerID: 1,
		Total:      decimal.NewFromInt(5),
		Products:   orderLines(1),
	})

	require.EqualError(t, err, "items rejected")
	assert.Empty(t, store.orders)
	assert.Equal(t, 0, store.failOrderDeletes)
}

func TestOrderService_Compensation_FailureIsLoggedDistinctly(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	store := newMemoryStore()
	store.failItemsCreate = errors.New("items rejected")
	store.failOrderDeletes = 100
	svc := newTestOrderService(store, zap.New(core))

	_, err := svc.Create(context.Background(), uuid.New(), CreateOrderInput{
		CustomerID: 1,
		Total:      decimal.NewFromInt(5),
		Products:   orderLines(1),
	})

	// The caller still sees the triggering error.
	require.EqualError(t, err, "items rejected")
	assert.Len(t, store.orders, 1)

	failures := logs.FilterMessage("Order compensation failed").All()
	require.Len(t, failures, 1)
	assert.Contains(t, failures[0].ContextMap(), "compensation_errors")
	assert.Equal(t, 1, logs.FilterMessage("Compensating failed order workflow").Len())
}

type recordingTxManager struct {
	calls int
}

func (m *recordingTxManager) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	m.calls++
	return fn(ctx)
}

func TestOrderService_Create_RunsInsideTxManager(t *testing.T) {
	store := newMemoryStore()
	txManager := &recordingTxManager{}
	svc := NewOrderService(
		mockOrderRepository{store},
		mockOrderItemRepository{store},
		mockTransactionRepository{store},
		txManager,
		OrderServiceConfig{},
		zap.NewNop(),
	)

	_, err := svc.Create(context.Background(), uuid.New(), CreateOrderInput{CustomerID: 1, Total: decimal.NewFromInt(1)})
	require.NoError(t, err)
	assert.Equal(t, 1, txManager.calls)
}

// Submitting the same payload twice creates two orders
func TestOrderService_Create_IsNotIdempotent(t *testing.T) {
	store := newMemoryStore()
	svc := newTestOrderService(store, zap.NewNop())
	userUID := uuid.New()
	in := CreateOrderInput{CustomerID: 1, Total: decimal.NewFromInt(7), Products: orderLines(1)}

	first, err := svc.Create(context.Background(), userUID, in)
	require.NoError(t, err)
	second, err := svc.Create(context.Background(), userUID, in)
	require.NoError(t, err)

	assert.NotEqual(t, first.ID, second.ID)
	orders, err := svc.List(context.Background(), userUID)
	require.NoError(t, err)
	assert.Len(t, orders, 2)
}

func TestOrderService_List_ScopedToUser(t *testing.T) {
	store := newMemoryStore()
	svc := newTestOrderService(store, zap.NewNop())
	alice, bob := uuid.New(), uuid.New()

	for _, user := range []uuid.UUID{alice, bob, bob} {
		_, err := svc.Create(context.Background(), user, CreateOrderInput{CustomerID: 1, Total: decimal.NewFromInt(1)})
		require.NoError(t, err)
	}

	orders, err := svc.List(context.Background(), alice)
	require.NoError(t, err)
	require.Len(t, orders, 1)
	assert.Equal(t, alice, orders[0].UserUID)
}

func TestOrderService_List_PropagatesStoreError(t *testing.T) {
	store := newMemoryStore()
	store.failList = errStoreDown
	svc := newTestOrderService(store, zap.NewNop())

	_, err := svc.List(context.Background(), uuid.New())
	assert.ErrorIs(t, err, errStoreDown)
}
