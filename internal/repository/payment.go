package repository

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/rookgm/gomarket/internal/models"
	"github.com/rookgm/gomarket/internal/repository/postgres"
	"github.com/shopspring/decimal"
)

const (
	insertPaymentQuery = `
						INSERT INTO payments (order_id, amount, status, transaction_id)
						VALUES ($1, $2, $3, $4)
						RETURNING id, created_at
`
	selectPaymentByOrderIDQuery = `
						SELECT id, order_id, amount, status, transaction_id, method, approved_at,
						       refund_amount, refunded_at, refund_transaction_id, refund_reason, created_at
						FROM payments
						WHERE order_id = $1
`
	selectPaymentByOrderIDForUpdateQuery = selectPaymentByOrderIDQuery + `
						FOR UPDATE
`
	selectPaymentsByUserIDQuery = `
						SELECT p.id, p.order_id, p.amount, p.status, p.transaction_id, p.method, p.approved_at,
						       p.refund_amount, p.refunded_at, p.refund_transaction_id, p.refund_reason, p.created_at
						FROM payments p
						JOIN orders o ON o.id = p.order_id
						WHERE o.user_id = $1
						ORDER BY p.created_at DESC
`
	updatePaymentStatusQuery = `
						UPDATE payments
						SET status = $1, transaction_id = $2, approved_at = $3
						WHERE id = $4
`
	updatePaymentRefundQuery = `
						UPDATE payments
						SET status = $1, refund_amount = $2, refunded_at = $3, refund_transaction_id = $4, refund_reason = $5
						WHERE id = $6
`
)

// PaymentRepository implements PaymentRepository interface
type PaymentRepository struct {
	db *postgres.DB
}

// NewPaymentRepository creates new PaymentRepository instance
func NewPaymentRepository(db *postgres.DB) *PaymentRepository {
	return &PaymentRepository{db: db}
}

func scanPayment(row pgx.Row, payment *models.Payment) error {
	var txID, method *string
	err := row.Scan(&payment.ID, &payment.OrderID, &payment.Amount, &payment.Status, &txID, &method,
		&payment.ApprovedAt, &payment.RefundAmount, &payment.RefundedAt,
		&payment.RefundTransactionID, &payment.RefundReason, &payment.CreatedAt)
	if err != nil {
		return err
	}
	if txID != nil {
		payment.TransactionID = *txID
	}
	if method != nil {
		payment.Method = *method
	}
	return nil
}

// CreatePayment inserts new payment to database. The unique constraint on
// order_id makes a concurrent duplicate surface as ErrConflictData.
func (pr *PaymentRepository) CreatePayment(ctx context.Context, payment *models.Payment) (*models.Payment, error) {
	row := pr.db.QueryRow(ctx, insertPaymentQuery, payment.OrderID, payment.Amount, payment.Status, payment.TransactionID)
	if err := row.Scan(&payment.ID, &payment.CreatedAt); err != nil {
		if errCode := pr.db.ErrorCode(err); errCode == pgErrUniqueViolationCode {
			return nil, models.ErrConflictData
		}
		return nil, err
	}

	return payment, nil
}

// GetPaymentByOrderID returns payment of order
func (pr *PaymentRepository) GetPaymentByOrderID(ctx context.Context, orderID uint64) (*models.Payment, error) {
	payment := models.Payment{}
	if err := scanPayment(pr.db.QueryRow(ctx, selectPaymentByOrderIDQuery, orderID), &payment); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, models.ErrDataNotFound
		}
		return nil, err
	}

	return &payment, nil
}

// GetPaymentByOrderIDForUpdate returns payment of order locking its row
// until the transaction owning q finishes
func (pr *PaymentRepository) GetPaymentByOrderIDForUpdate(ctx context.Context, q postgres.Querier, orderID uint64) (*models.Payment, error) {
	payment := models.Payment{}
	if err := scanPayment(q.QueryRow(ctx, selectPaymentByOrderIDForUpdateQuery, orderID), &payment); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, models.ErrDataNotFound
		}
		return nil, err
	}

	return &payment, nil
}

// GetPaymentsByUserID returns payments of orders owned by user, newest first
func (pr *PaymentRepository) GetPaymentsByUserID(ctx context.Context, userID uint64) ([]models.Payment, error) {
	rows, err := pr.db.Query(ctx, selectPaymentsByUserIDQuery, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var payments []models.Payment

	for rows.Next() {
		payment := models.Payment{}
		if err := scanPayment(rows, &payment); err != nil {
			continue
		}
		payments = append(payments, payment)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return payments, nil
}

// UpdatePaymentStatus updates payment status, transaction id and approval time
func (pr *PaymentRepository) UpdatePaymentStatus(ctx context.Context, q postgres.Querier, id uint64, status, transactionID string, approvedAt *time.Time) error {
	cmd, err := q.Exec(ctx, updatePaymentStatusQuery, status, transactionID, approvedAt, id)
	if err != nil {
		return err
	}

	if cmd.RowsAffected() == 0 {
		return models.ErrDataNotFound
	}

	return nil
}

// SetPaymentRefund records refund on payment and moves it to status
func (pr *PaymentRepository) SetPaymentRefund(ctx context.Context, q postgres.Querier, id uint64, status string, amount decimal.Decimal, refundedAt time.Time, transactionID, reason string) error {
	cmd, err := q.Exec(ctx, updatePaymentRefundQuery, status, amount, refundedAt, transactionID, reason, id)
	if err != nil {
		return err
	}

	if cmd.RowsAffected() == 0 {
		return models.ErrDataNotFound
	}

	return nil
}
