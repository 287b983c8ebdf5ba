package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// order status
const (
	OrderStatusPending   = "PENDING"
	OrderStatusPaid      = "PAID"
	OrderStatusCancelled = "CANCELLED"
)

// payment status
const (
	PaymentStatusPending = "PENDING"
	PaymentStatusPaid    = "PAID"
	PaymentStatusFailed  = "FAILED"
)

// Order is order entity
type Order struct {
	ID            uint64
	UserID        uint64
	TotalAmount   decimal.Decimal
	Status        string
	PaymentStatus string
	CreatedAt     time.Time
}
