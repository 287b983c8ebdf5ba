package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/rookgm/gomarket/internal/models"
	"github.com/rookgm/gomarket/internal/repository/postgres"
	"github.com/shopspring/decimal"
)

// OrderRepository is interface for interacting with order-related data
type OrderRepository interface {
	// GetOrderByID returns order by id
	GetOrderByID(ctx context.Context, id uint64) (*models.Order, error)
	// GetOrderByIDForUpdate returns order by id locking its row
	GetOrderByIDForUpdate(ctx context.Context, q postgres.Querier, id uint64) (*models.Order, error)
	// UpdateOrderStatus updates order status and payment status
	UpdateOrderStatus(ctx context.Context, q postgres.Querier, id uint64, status, paymentStatus string) error
}

// PaymentRepository is interface for interacting with payment-related data
type PaymentRepository interface {
	// CreatePayment inserts new payment
	CreatePayment(ctx context.Context, payment *models.Payment) (*models.Payment, error)
	// GetPaymentByOrderID returns payment of order
	GetPaymentByOrderID(ctx context.Context, orderID uint64) (*models.Payment, error)
	// GetPaymentByOrderIDForUpdate returns payment of order locking its row
	GetPaymentByOrderIDForUpdate(ctx context.Context, q postgres.Querier, orderID uint64) (*models.Payment, error)
	// GetPaymentsByUserID returns payments of orders owned by user, newest first
	GetPaymentsByUserID(ctx context.Context, userID uint64) ([]models.Payment, error)
	// UpdatePaymentStatus updates payment status, transaction id and approval time
	UpdatePaymentStatus(ctx context.Context, q postgres.Querier, id uint64, status, transactionID string, approvedAt *time.Time) error
	// SetPaymentRefund records refund on payment
	SetPaymentRefund(ctx context.Context, q postgres.Querier, id uint64, status string, amount decimal.Decimal, refundedAt time.Time, transactionID, reason string) error
}

// Transactor runs a function inside a database transaction
type Transactor interface {
	WithinTx(ctx context.Context, fn func(q postgres.Querier) error) error
}

// PaymentService implements PaymentService interface
type PaymentService struct {
	orderRepo   OrderRepository
	paymentRepo PaymentRepository
}

// NewPaymentService creates new PaymentService instance
func NewPaymentService(orderRepo OrderRepository, paymentRepo PaymentRepository) *PaymentService {
	return &PaymentService{
		orderRepo:   orderRepo,
		paymentRepo: paymentRepo,
	}
}

// RequestPayment creates pending payment for order. Only the order owner may
// initiate it, and only while the order awaits payment.
func (ps *PaymentService) RequestPayment(ctx context.Context, orderID, userID uint64) (*models.Payment, error) {
	order, err := ps.orderRepo.GetOrderByID(ctx, orderID)
	if err != nil {
		return nil, err
	}

	if order.UserID != userID {
		return nil, models.ErrForbidden
	}

	if order.PaymentStatus != models.PaymentStatusPending {
		return nil, models.ErrPaymentAlreadyRequested
	}

	if _, err := ps.paymentRepo.GetPaymentByOrderID(ctx, orderID); err == nil {
		return nil, models.ErrPaymentAlreadyRequested
	} else if !errors.Is(err, models.ErrDataNotFound) {
		return nil, err
	}

	payment := &models.Payment{
		OrderID: order.ID,
		Amount:  order.TotalAmount,
		Status:  models.PaymentStatusPending,
		// provisional id, overwritten when the gateway confirms
		TransactionID: uuid.NewString(),
	}

	payment, err = ps.paymentRepo.CreatePayment(ctx, payment)
	if err != nil {
		// concurrent request won the unique constraint on order_id
		if errors.Is(err, models.ErrConflictData) {
			return nil, models.ErrPaymentAlreadyRequested
		}
		return nil, err
	}

	return payment, nil
}

// ListUserPayments returns payments of orders owned by user, newest first
func (ps *PaymentService) ListUserPayments(ctx context.Context, userID uint64) ([]models.Payment, error) {
	return ps.paymentRepo.GetPaymentsByUserID(ctx, userID)
}
