package service

import (
	"context"
	"crypto/subtle"
	"strings"
	"time"

	"github.com/rookgm/gomarket/internal/models"
	"github.com/rookgm/gomarket/internal/repository/postgres"
	"go.uber.org/zap"
)

// gateway-reported outcome
const (
	webhookStatusPaid   = "PAID"
	webhookStatusFailed = "FAILED"
)

// StockRestorer returns reserved stock of order back to inventory
type StockRestorer interface {
	RestoreStock(ctx context.Context, orderID uint64) error
}

// WebhookService applies gateway-reported payment outcomes to orders.
// Webhooks are delivered at least once, so every transition is gated on the
// current payment status and redeliveries are acknowledged without effect.
type WebhookService struct {
	tx          Transactor
	orderRepo   OrderRepository
	paymentRepo PaymentRepository
	stock       StockRestorer
	secret      string
	logger      *zap.Logger
	now         func() time.Time
}

// NewWebhookService creates new WebhookService instance
func NewWebhookService(tx Transactor, orderRepo OrderRepository, paymentRepo PaymentRepository, stock StockRestorer, secret string, logger *zap.Logger) *WebhookService {
	return &WebhookService{
		tx:          tx,
		orderRepo:   orderRepo,
		paymentRepo: paymentRepo,
		stock:       stock,
		secret:      secret,
		logger:      logger,
		now:         time.Now,
	}
}

// Process authenticates and applies a gateway webhook. Both records of the
// order/payment pair are locked and mutated in one transaction; stock
// restoration runs only after the transaction has committed.
func (ws *WebhookService) Process(ctx context.Context, secret string, event models.WebhookEvent) error {
	// an unset secret must never authenticate a delivery
	if ws.secret == "" || subtle.ConstantTimeCompare([]byte(secret), []byte(ws.secret)) != 1 {
		return models.ErrBadWebhookSecret
	}

	var restoreStock bool

	err := ws.tx.WithinTx(ctx, func(q postgres.Querier) error {
		// lock order first, then payment; refund takes the same order
		order, err := ws.orderRepo.GetOrderByIDForUpdate(ctx, q, event.OrderID)
		if err != nil {
			return err
		}

		payment, err := ws.paymentRepo.GetPaymentByOrderIDForUpdate(ctx, q, order.ID)
		if err != nil {
			return err
		}

		switch strings.ToUpper(event.Status) {
		case webhookStatusPaid:
			if payment.Status == models.PaymentStatusPaid {
				ws.logger.Info("webhook replay, payment already paid", zap.Uint64("order_id", order.ID))
				return nil
			}
			if payment.Status != models.PaymentStatusPending {
				ws.logger.Warn("webhook outcome conflicts with terminal payment status",
					zap.Uint64("order_id", order.ID),
					zap.String("payment_status", payment.Status),
					zap.String("webhook_status", event.Status))
				return nil
			}

			approvedAt := ws.now()
			transactionID := payment.TransactionID
			if event.TransactionID != "" {
				transactionID = event.TransactionID
			}

			if err := ws.paymentRepo.UpdatePaymentStatus(ctx, q, payment.ID, models.PaymentStatusPaid, transactionID, &approvedAt); err != nil {
				return err
			}
			return ws.orderRepo.UpdateOrderStatus(ctx, q, order.ID, models.OrderStatusPaid, models.PaymentStatusPaid)

		case webhookStatusFailed:
			if payment.Status == models.PaymentStatusFailed {
				ws.logger.Info("webhook replay, payment already failed", zap.Uint64("order_id", order.ID))
				return nil
			}
			if payment.Status != models.PaymentStatusPending {
				ws.logger.Warn("webhook outcome conflicts with terminal payment status",
					zap.Uint64("order_id", order.ID),
					zap.String("payment_status", payment.Status),
					zap.String("webhook_status", event.Status))
				return nil
			}

			transactionID := payment.TransactionID
			if event.TransactionID != "" {
				transactionID = event.TransactionID
			}

			if err := ws.paymentRepo.UpdatePaymentStatus(ctx, q, payment.ID, models.PaymentStatusFailed, transactionID, nil); err != nil {
				return err
			}
			if err := ws.orderRepo.UpdateOrderStatus(ctx, q, order.ID, models.OrderStatusCancelled, models.PaymentStatusFailed); err != nil {
				return err
			}
			restoreStock = true
			return nil

		default:
			// unknown gateway status, acknowledge without effect
			ws.logger.Info("ignoring unknown webhook status",
				zap.Uint64("order_id", order.ID),
				zap.String("webhook_status", event.Status))
			return nil
		}
	})
	if err != nil {
		return err
	}

	// the transition is durable at this point; a restoration failure is
	// retried by the restorer, never rolled back here
	if restoreStock {
		if err := ws.stock.RestoreStock(ctx, event.OrderID); err != nil {
			ws.logger.Error("restore stock", zap.Uint64("order_id", event.OrderID), zap.Error(err))
		}
	}

	return nil
}
