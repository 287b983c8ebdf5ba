package service

import (
	"context"
	"testing"

	"github.com/rookgm/gomarket/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const testSecret = "s3cret"

func newTestWebhookService(repo *memRepo, stock *countingRestorer) *WebhookService {
	return NewWebhookService(fakeTx{}, repo, repo, stock, testSecret, zap.NewNop())
}

func TestWebhookService_BadSecretLeavesStateUntouched(t *testing.T) {
	repo := newMemRepo()
	stock := &countingRestorer{}
	repo.addOrder(1, 1, 10000)
	svc := newTestWebhookService(repo, stock)

	ps := NewPaymentService(repo, repo)
	_, err := ps.RequestPayment(context.Background(), 1, 1)
	require.NoError(t, err)

	err = svc.Process(context.Background(), "wrong", models.WebhookEvent{OrderID: 1, Status: "PAID", TransactionID: "TX1"})
	require.ErrorIs(t, err, models.ErrBadWebhookSecret)

	order, err := repo.GetOrderByID(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusPending, order.Status)
	assert.Equal(t, models.PaymentStatusPending, order.PaymentStatus)

	payment, err := repo.GetPaymentByOrderID(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, models.PaymentStatusPending, payment.Status)
	assert.Equal(t, 0, stock.count())
}

func TestWebhookService_EmptyConfiguredSecretRejectsAll(t *testing.T) {
	repo := newMemRepo()
	stock := &countingRestorer{}
	repo.addOrder(1, 1, 10000)
	svc := NewWebhookService(fakeTx{}, repo, repo, stock, "", zap.NewNop())

	ps := NewPaymentService(repo, repo)
	_, err := ps.RequestPayment(context.Background(), 1, 1)
	require.NoError(t, err)

	// a delivery without the header supplies "", which must not match an
	// unset secret
	err = svc.Process(context.Background(), "", models.WebhookEvent{OrderID: 1, Status: "PAID", TransactionID: "TX1"})
	require.ErrorIs(t, err, models.ErrBadWebhookSecret)

	order, err := repo.GetOrderByID(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusPending, order.Status)
	assert.Equal(t, models.PaymentStatusPending, order.PaymentStatus)

	payment, err := repo.GetPaymentByOrderID(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, models.PaymentStatusPending, payment.Status)
	assert.Equal(t, 0, stock.count())
}

func TestWebhookService_MissingPaymentReturnsNotFound(t *testing.T) {
	repo := newMemRepo()
	stock := &countingRestorer{}
	repo.addOrder(2, 1, 5000)
	svc := newTestWebhookService(repo, stock)

	// webhook before any payment request is invalid
	err := svc.Process(context.Background(), testSecret, models.WebhookEvent{OrderID: 2, Status: "FAILED"})
	require.ErrorIs(t, err, models.ErrDataNotFound)
	assert.Equal(t, 0, stock.count())
}

func TestWebhookService_UnknownOrderReturnsNotFound(t *testing.T) {
	repo := newMemRepo()
	svc := newTestWebhookService(repo, &countingRestorer{})

	err := svc.Process(context.Background(), testSecret, models.WebhookEvent{OrderID: 42, Status: "PAID"})
	require.ErrorIs(t, err, models.ErrDataNotFound)
}

func TestWebhookService_PaidTransition(t *testing.T) {
	repo := newMemRepo()
	stock := &countingRestorer{}
	repo.addOrder(1, 1, 10000)
	svc := newTestWebhookService(repo, stock)

	ps := NewPaymentService(repo, repo)
	_, err := ps.RequestPayment(context.Background(), 1, 1)
	require.NoError(t, err)

	err = svc.Process(context.Background(), testSecret, models.WebhookEvent{OrderID: 1, Status: "paid", TransactionID: "TX1"})
	require.NoError(t, err)

	order, err := repo.GetOrderByID(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusPaid, order.Status)
	assert.Equal(t, models.PaymentStatusPaid, order.PaymentStatus)

	payment, err := repo.GetPaymentByOrderID(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, models.PaymentStatusPaid, payment.Status)
	assert.Equal(t, "TX1", payment.TransactionID)
	assert.NotNil(t, payment.ApprovedAt)
	assert.Equal(t, 0, stock.count())
}

func TestWebhookService_PaidReplayIsIdempotent(t *testing.T) {
	repo := newMemRepo()
	stock := &countingRestorer{}
	repo.addOrder(1, 1, 10000)
	svc := newTestWebhookService(repo, stock)

	ps := NewPaymentService(repo, repo)
	_, err := ps.RequestPayment(context.Background(), 1, 1)
	require.NoError(t, err)

	event := models.WebhookEvent{OrderID: 1, Status: "PAID", TransactionID: "TX1"}
	require.NoError(t, svc.Process(context.Background(), testSecret, event))

	paymentAfterFirst, err := repo.GetPaymentByOrderID(context.Background(), 1)
	require.NoError(t, err)

	require.NoError(t, svc.Process(context.Background(), testSecret, event))

	order, err := repo.GetOrderByID(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusPaid, order.Status)
	assert.Equal(t, models.PaymentStatusPaid, order.PaymentStatus)

	paymentAfterSecond, err := repo.GetPaymentByOrderID(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, *paymentAfterFirst, *paymentAfterSecond)
	assert.Equal(t, 0, stock.count())
}

func TestWebhookService_FailedTransitionRestoresStockOnce(t *testing.T) {
	repo := newMemRepo()
	stock := &countingRestorer{}
	repo.addOrder(1, 1, 10000)
	svc := newTestWebhookService(repo, stock)

	ps := NewPaymentService(repo, repo)
	_, err := ps.RequestPayment(context.Background(), 1, 1)
	require.NoError(t, err)

	event := models.WebhookEvent{OrderID: 1, Status: "FAILED"}
	require.NoError(t, svc.Process(context.Background(), testSecret, event))
	require.NoError(t, svc.Process(context.Background(), testSecret, event))

	order, err := repo.GetOrderByID(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusCancelled, order.Status)
	assert.Equal(t, models.PaymentStatusFailed, order.PaymentStatus)

	payment, err := repo.GetPaymentByOrderID(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, models.PaymentStatusFailed, payment.Status)

	// redelivery must not trigger the side effect again
	assert.Equal(t, 1, stock.count())
}

func TestWebhookService_UnknownStatusIsNoOp(t *testing.T) {
	repo := newMemRepo()
	stock := &countingRestorer{}
	repo.addOrder(1, 1, 10000)
	svc := newTestWebhookService(repo, stock)

	ps := NewPaymentService(repo, repo)
	created, err := ps.RequestPayment(context.Background(), 1, 1)
	require.NoError(t, err)

	err = svc.Process(context.Background(), testSecret, models.WebhookEvent{OrderID: 1, Status: "REVIEW", TransactionID: "TX9"})
	require.NoError(t, err)

	payment, err := repo.GetPaymentByOrderID(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, models.PaymentStatusPending, payment.Status)
	// no-op must not even take the payload transaction id
	assert.Equal(t, created.TransactionID, payment.TransactionID)
	assert.Equal(t, 0, stock.count())
}

func TestWebhookService_ConflictingOutcomeAfterTerminalIsNoOp(t *testing.T) {
	repo := newMemRepo()
	stock := &countingRestorer{}
	repo.addOrder(1, 1, 10000)
	svc := newTestWebhookService(repo, stock)

	ps := NewPaymentService(repo, repo)
	_, err := ps.RequestPayment(context.Background(), 1, 1)
	require.NoError(t, err)

	require.NoError(t, svc.Process(context.Background(), testSecret, models.WebhookEvent{OrderID: 1, Status: "PAID", TransactionID: "TX1"}))
	require.NoError(t, svc.Process(context.Background(), testSecret, models.WebhookEvent{OrderID: 1, Status: "FAILED"}))

	order, err := repo.GetOrderByID(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusPaid, order.Status)

	payment, err := repo.GetPaymentByOrderID(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, models.PaymentStatusPaid, payment.Status)
	assert.Equal(t, 0, stock.count())
}
