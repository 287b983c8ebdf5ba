package service

import (
	"context"
	"sync"
	"time"

	"github.com/rookgm/gomarket/internal/models"
	"github.com/rookgm/gomarket/internal/repository/postgres"
	"github.com/shopspring/decimal"
)

// memRepo is in-memory stand-in for the order and payment repositories. The
// Querier argument of the ...ForUpdate and update methods is ignored; the
// mutex plays the role of the row locks.
type memRepo struct {
	mu       sync.Mutex
	orders   map[uint64]*models.Order
	payments map[uint64]*models.Payment // keyed by order id
	nextID   uint64
}

func newMemRepo() *memRepo {
	return &memRepo{
		orders:   make(map[uint64]*models.Order),
		payments: make(map[uint64]*models.Payment),
	}
}

func (m *memRepo) addOrder(id, userID uint64, total int64) *models.Order {
	m.mu.Lock()
	defer m.mu.Unlock()
	order := &models.Order{
		ID:            id,
		UserID:        userID,
		TotalAmount:   decimal.NewFromInt(total),
		Status:        models.OrderStatusPending,
		PaymentStatus: models.PaymentStatusPending,
		CreatedAt:     time.Now(),
	}
	m.orders[id] = order
	return order
}

func (m *memRepo) GetOrderByID(_ context.Context, id uint64) (*models.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	order, ok := m.orders[id]
	if !ok {
		return nil, models.ErrDataNotFound
	}
	cp := *order
	return &cp, nil
}

func (m *memRepo) GetOrderByIDForUpdate(ctx context.Context, _ postgres.Querier, id uint64) (*models.Order, error) {
	return m.GetOrderByID(ctx, id)
}

func (m *memRepo) UpdateOrderStatus(_ context.Context, _ postgres.Querier, id uint64, status, paymentStatus string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	order, ok := m.orders[id]
	if !ok {
		return models.ErrDataNotFound
	}
	order.Status = status
	order.PaymentStatus = paymentStatus
	return nil
}

func (m *memRepo) CreatePayment(_ context.Context, payment *models.Payment) (*models.Payment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.payments[payment.OrderID]; ok {
		return nil, models.ErrConflictData
	}
	m.nextID++
	payment.ID = m.nextID
	payment.CreatedAt = time.Now()
	cp := *payment
	m.payments[payment.OrderID] = &cp
	return payment, nil
}

func (m *memRepo) GetPaymentByOrderID(_ context.Context, orderID uint64) (*models.Payment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	payment, ok := m.payments[orderID]
	if !ok {
		return nil, models.ErrDataNotFound
	}
	cp := *payment
	return &cp, nil
}

func (m *memRepo) GetPaymentByOrderIDForUpdate(ctx context.Context, _ postgres.Querier, orderID uint64) (*models.Payment, error) {
	return m.GetPaymentByOrderID(ctx, orderID)
}

func (m *memRepo) GetPaymentsByUserID(_ context.Context, userID uint64) ([]models.Payment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var payments []models.Payment
	for orderID, payment := range m.payments {
		order, ok := m.orders[orderID]
		if !ok || order.UserID != userID {
			continue
		}
		payments = append(payments, *payment)
	}
	for i := 0; i < len(payments); i++ {
		for j := i + 1; j < len(payments); j++ {
			if payments[j].CreatedAt.After(payments[i].CreatedAt) {
				payments[i], payments[j] = payments[j], payments[i]
			}
		}
	}
	return payments, nil
}

func (m *memRepo) UpdatePaymentStatus(_ context.Context, _ postgres.Querier, id uint64, status, transactionID string, approvedAt *time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, payment := range m.payments {
		if payment.ID == id {
			payment.Status = status
			payment.TransactionID = transactionID
			payment.ApprovedAt = approvedAt
			return nil
		}
	}
	return models.ErrDataNotFound
}

func (m *memRepo) SetPaymentRefund(_ context.Context, _ postgres.Querier, id uint64, status string, amount decimal.Decimal, refundedAt time.Time, transactionID, reason string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, payment := range m.payments {
		if payment.ID == id {
			payment.Status = status
			payment.RefundAmount = &amount
			payment.RefundedAt = &refundedAt
			payment.RefundTransactionID = &transactionID
			payment.RefundReason = &reason
			return nil
		}
	}
	return models.ErrDataNotFound
}

// fakeTx runs the transactional function directly
type fakeTx struct{}

func (fakeTx) WithinTx(_ context.Context, fn func(q postgres.Querier) error) error {
	return fn(nil)
}

// countingRestorer records stock restoration calls
type countingRestorer struct {
	mu    sync.Mutex
	calls []uint64
}

func (c *countingRestorer) RestoreStock(_ context.Context, orderID uint64) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls = append(c.calls, orderID)
	return nil
}

func (c *countingRestorer) count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.calls)
}
