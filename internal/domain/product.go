package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Product represents a product owned by a single user
type Product struct {
	ID          int64           `json:"id" db:"id"`
	UserUID     uuid.UUID       `json:"user_uid" db:"user_uid"`
	Name        string          `json:"name" db:"name"`
	Description *string         `json:"description" db:"description"`
	Price       decimal.Decimal `json:"price" db:"price"`
	InStock     int             `json:"in_stock" db:"in_stock"`
	Category    *string         `json:"category" db:"category"`
	CreatedAt   time.Time       `json:"created_at" db:"created_at"`
}
