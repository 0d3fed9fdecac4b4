package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"storefront-api/internal/domain"

	"github.com/google/uuid"
)

var errStoreDown = errors.New("connection refused")

// memoryStore backs the mock repositories and records every call
type memoryStore struct {
	mu     sync.Mutex
	nextID int64

	orders   map[int64]*domain.Order
	items    map[int64][]*domain.OrderItem
	txns     map[int64][]*domain.Transaction
	products map[int64]*domain.Product

	failOrderCreate   error
	failItemsCreate   error
	failTxnCreate     error
	failProductCreate error
	failList          error
	// failOrderDeletes fails that many order deletes before succeeding
	failOrderDeletes int

	calls []string
}

func newMemoryStore() *memoryStore {
	return &memoryStore{
		orders:   make(map[int64]*domain.Order),
		items:    make(map[int64][]*domain.OrderItem),
		txns:     make(map[int64][]*domain.Transaction),
		products: make(map[int64]*domain.Product),
	}
}

func (m *memoryStore) record(call string) {
	m.calls = append(m.calls, call)
}

func (m *memoryStore) id() int64 {
	m.nextID++
	return m.nextID
}

type mockOrderRepository struct{ s *memoryStore }

func (r mockOrderRepository) Create(ctx context.Context, order *domain.Order) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.record("orders.create")

	if r.s.failOrderCreate != nil {
		return r.s.failOrderCreate
	}

	order.ID = r.s.id()
	if order.CreatedAt.IsZero() {
		order.CreatedAt = time.Now()
	}
	name := "Customer"
	order.CustomerName = &name

	stored := *order
	r.s.orders[order.ID] = &stored
	return nil
}

func (r mockOrderRepository) ListByUser(ctx context.Context, userUID uuid.UUID) ([]*domain.Order, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.record("orders.list")

	if r.s.failList != nil {
		return nil, r.s.failList
	}

	orders := []*domain.Order{}
	for _, order := range r.s.orders {
		if order.UserUID == userUID {
			copied := *order
			orders = append(orders, &copied)
		}
	}
	return orders, nil
}

func (r mockOrderRepository) Delete(ctx context.Context, id int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.record("orders.delete")

	if r.s.failOrderDeletes > 0 {
		r.s.failOrderDeletes--
		return errStoreDown
	}

	delete(r.s.orders, id)
	return nil
}

type mockOrderItemRepository struct{ s *memoryStore }

func (r mockOrderItemRepository) CreateBatch(ctx context.Context, items []*domain.OrderItem) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.record("order_items.create")

	if r.s.failItemsCreate != nil {
		return r.s.failItemsCreate
	}

	for _, item := range items {
		item.ID = r.s.id()
		stored := *item
		r.s.items[item.OrderID] = append(r.s.items[item.OrderID], &stored)
	}
	return nil
}

func (r mockOrderItemRepository) ListByOrder(ctx context.Context, orderID int64) ([]*domain.OrderItem, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return r.s.items[orderID], nil
}

func (r mockOrderItemRepository) DeleteByOrder(ctx context.Context, orderID int64) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.record("order_items.delete")

	n := int64(len(r.s.items[orderID]))
	delete(r.s.items, orderID)
	return n, nil
}

type mockTransactionRepository struct{ s *memoryStore }

func (r mockTransactionRepository) Create(ctx context.Context, txn *domain.Transaction) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.record("transactions.create")

	if r.s.failTxnCreate != nil {
		return r.s.failTxnCreate
	}

	txn.ID = r.s.id()
	txn.CreatedAt = time.Now()
	stored := *txn
	r.s.txns[txn.OrderID] = append(r.s.txns[txn.OrderID], &stored)
	return nil
}

func (r mockTransactionRepository) ListByOrder(ctx context.Context, orderID int64) ([]*domain.Transaction, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return r.s.txns[orderID], nil
}

func (r mockTransactionRepository) DeleteByOrder(ctx context.Context, orderID int64) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.record("transactions.delete")

	n := int64(len(r.s.txns[orderID]))
	delete(r.s.txns, orderID)
	return n, nil
}

type mockProductRepository struct{ s *memoryStore }

func (r mockProductRepository) Create(ctx context.Context, product *domain.Product) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.record("products.create")

	if r.s.failProductCreate != nil {
		return r.s.failProductCreate
	}

	product.ID = r.s.id()
	product.CreatedAt = time.Now()
	stored := *product
	r.s.products[product.ID] = &stored
	return nil
}

func (r mockProductRepository) ListByUser(ctx context.Context, userUID uuid.UUID) ([]*domain.Product, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if r.s.failList != nil {
		return nil, r.s.failList
	}

	products := []*domain.Product{}
	for _, product := range r.s.products {
		if product.UserUID == userUID {
			copied := *product
			products = append(products, &copied)
		}
	}
	return products, nil
}
