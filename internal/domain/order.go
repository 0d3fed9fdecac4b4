package domain

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

func init() {
	// Money travels as JSON numbers, the same shape clients send.
	decimal.MarshalJSONWithoutQuotes = true
}

// OrderStatus is the lifecycle state stored on an order row
type OrderStatus string

const (
	OrderStatusCompleted OrderStatus = "completed"
	OrderStatusPending   OrderStatus = "pending"
	OrderStatusCancelled OrderStatus = "cancelled"
)

// DefaultOrderStatus applies when the caller does not choose one
const DefaultOrderStatus = OrderStatusCompleted

// IsValid reports whether s is one of the stored statuses
func (s OrderStatus) IsValid() bool {
	switch s {
	case OrderStatusCompleted, OrderStatusPending, OrderStatusCancelled:
		return true
	}
	return false
}

// Order is an order row enriched with the joined customer name
type Order struct {
	ID           int64           `json:"id" db:"id"`
	UserUID      uuid.UUID       `json:"user_uid" db:"user_uid"`
	CustomerID   int64           `json:"customer_id" db:"customer_id"`
	Total        decimal.Decimal `json:"total" db:"total"`
	Status       OrderStatus     `json:"status" db:"status"`
	CreatedAt    time.Time       `json:"created_at" db:"created_at"`
	CustomerName *string         `json:"customer_name" db:"customer_name"`
}

// OrderItem is one product line of an order
type OrderItem struct {
	ID        int64           `json:"id" db:"id"`
	OrderID   int64           `json:"order_id" db:"order_id"`
	ProductID int64           `json:"product_id" db:"product_id"`
	Quantity  int             `json:"quantity" db:"quantity"`
	Price     decimal.Decimal `json:"price" db:"price"`
}

// Transaction values written for every order payment
const (
	TransactionStatusCompleted = "completed"
	TransactionCategorySelling = "selling"
	TransactionTypeIncome      = "income"
)

// Transaction records the payment of an order
type Transaction struct {
	ID              int64           `json:"id" db:"id"`
	OrderID         int64           `json:"order_id" db:"order_id"`
	PaymentMethodID int64           `json:"payment_method_id" db:"payment_method_id"`
	Amount          decimal.Decimal `json:"amount" db:"amount"`
	UserUID         uuid.UUID       `json:"user_uid" db:"user_uid"`
	Status          string          `json:"status" db:"status"`
	Category        string          `json:"category" db:"category"`
	Type            string          `json:"type" db:"type"`
	Description     string          `json:"description" db:"description"`
	CreatedAt       time.Time       `json:"created_at" db:"created_at"`
}

// PaymentDescription is the description stored on an order's transaction
func PaymentDescription(orderID int64) string {
	return fmt.Sprintf("Payment for order #%d", orderID)
}

// NewOrderPayment builds the income transaction paying for order
func NewOrderPayment(order *Order, paymentMethodID int64) *Transaction {
	return &Transaction{
		OrderID:         order.ID,
		PaymentMethodID: paymentMethodID,
		Amount:          order.Total,
		UserUID:         order.UserUID,
		Status:          TransactionStatusCompleted,
		Category:        TransactionCategorySelling,
		Type:            TransactionTypeIncome,
		Description:     PaymentDescription(order.ID),
	}
}
