package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Payment is payment entity. Exactly one payment per order, created on the
// first payment request and never deleted.
type Payment struct {
	ID            uint64
	OrderID       uint64
	Amount        decimal.Decimal
	Status        string
	TransactionID string
	Method        string
	ApprovedAt    *time.Time

	// refund fields are set once by refund processing
	RefundAmount        *decimal.Decimal
	RefundedAt          *time.Time
	RefundTransactionID *string
	RefundReason        *string

	CreatedAt time.Time
}

// IsRefunded reports whether payment has already been refunded
func (p *Payment) IsRefunded() bool {
	return p.RefundAmount != nil && p.RefundAmount.IsPositive()
}

// WebhookEvent is payment gateway notification payload
type WebhookEvent struct {
	OrderID       uint64
	Status        string
	TransactionID string
}
