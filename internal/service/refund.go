package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rookgm/gomarket/internal/models"
	"github.com/rookgm/gomarket/internal/repository/postgres"
	"go.uber.org/zap"
)

// RefundService reverses confirmed payments on administrator request
type RefundService struct {
	tx          Transactor
	orderRepo   OrderRepository
	paymentRepo PaymentRepository
	logger      *zap.Logger
	now         func() time.Time
}

// NewRefundService creates new RefundService instance
func NewRefundService(tx Transactor, orderRepo OrderRepository, paymentRepo PaymentRepository, logger *zap.Logger) *RefundService {
	return &RefundService{
		tx:          tx,
		orderRepo:   orderRepo,
		paymentRepo: paymentRepo,
		logger:      logger,
		now:         time.Now,
	}
}

// Refund reverses the paid payment of order. The refund sub-record marks the
// payment as refunded; status moves to FAILED and the order is cancelled.
func (rs *RefundService) Refund(ctx context.Context, orderID uint64, reason string, caller *models.TokenPayload) (*models.Payment, error) {
	if !caller.IsAdmin() {
		return nil, models.ErrForbidden
	}

	var refunded *models.Payment

	err := rs.tx.WithinTx(ctx, func(q postgres.Querier) error {
		// same lock order as the webhook processor
		order, err := rs.orderRepo.GetOrderByIDForUpdate(ctx, q, orderID)
		if err != nil {
			return err
		}

		payment, err := rs.paymentRepo.GetPaymentByOrderIDForUpdate(ctx, q, order.ID)
		if err != nil {
			return err
		}

		// after the first refund the status is FAILED, so this check must
		// come before the paid check to report the right conflict
		if payment.IsRefunded() {
			return models.ErrAlreadyRefunded
		}

		if payment.Status != models.PaymentStatusPaid {
			return models.ErrPaymentNotPaid
		}

		refundedAt := rs.now()
		refundTransactionID := uuid.NewString()

		err = rs.paymentRepo.SetPaymentRefund(ctx, q, payment.ID, models.PaymentStatusFailed,
			payment.Amount, refundedAt, refundTransactionID, reason)
		if err != nil {
			return err
		}

		err = rs.orderRepo.UpdateOrderStatus(ctx, q, order.ID, models.OrderStatusCancelled, models.PaymentStatusFailed)
		if err != nil {
			return err
		}

		amount := payment.Amount
		payment.Status = models.PaymentStatusFailed
		payment.RefundAmount = &amount
		payment.RefundedAt = &refundedAt
		payment.RefundTransactionID = &refundTransactionID
		payment.RefundReason = &reason
		refunded = payment

		return nil
	})
	if err != nil {
		return nil, err
	}

	rs.logger.Info("payment refunded",
		zap.Uint64("order_id", orderID),
		zap.Uint64("payment_id", refunded.ID),
		zap.String("refund_transaction_id", *refunded.RefundTransactionID))

	return refunded, nil
}
