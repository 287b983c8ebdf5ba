package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/rookgm/gomarket/internal/models"
	"github.com/rookgm/gomarket/internal/repository/postgres"
)

const pgErrUniqueViolationCode = "23505"

const (
	selectOrderByIDQuery = `
						SELECT id, user_id, total_amount, status, payment_status, created_at FROM orders
						WHERE id = $1
`
	selectOrderByIDForUpdateQuery = `
						SELECT id, user_id, total_amount, status, payment_status, created_at FROM orders
						WHERE id = $1
						FOR UPDATE
`
	updateOrderStatusQuery = `
						UPDATE orders
						SET status = $1, payment_status = $2
						WHERE id = $3
`
)

// OrderRepository implements OrderRepository interface
type OrderRepository struct {
	db *postgres.DB
}

// NewOrderRepository creates new OrderRepository instance
func NewOrderRepository(db *postgres.DB) *OrderRepository {
	return &OrderRepository{db: db}
}

func scanOrder(row pgx.Row, order *models.Order) error {
	return row.Scan(&order.ID, &order.UserID, &order.TotalAmount, &order.Status, &order.PaymentStatus, &order.CreatedAt)
}

// GetOrderByID returns order by id
func (or *OrderRepository) GetOrderByID(ctx context.Context, id uint64) (*models.Order, error) {
	order := models.Order{}
	if err := scanOrder(or.db.QueryRow(ctx, selectOrderByIDQuery, id), &order); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, models.ErrDataNotFound
		}
		return nil, err
	}

	return &order, nil
}

// GetOrderByIDForUpdate returns order by id locking its row until the
// transaction owning q finishes
func (or *OrderRepository) GetOrderByIDForUpdate(ctx context.Context, q postgres.Querier, id uint64) (*models.Order, error) {
	order := models.Order{}
	if err := scanOrder(q.QueryRow(ctx, selectOrderByIDForUpdateQuery, id), &order); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, models.ErrDataNotFound
		}
		return nil, err
	}

	return &order, nil
}

// UpdateOrderStatus updates order status and payment status
func (or *OrderRepository) UpdateOrderStatus(ctx context.Context, q postgres.Querier, id uint64, status, paymentStatus string) error {
	cmd, err := q.Exec(ctx, updateOrderStatusQuery, status, paymentStatus, id)
	if err != nil {
		return err
	}

	if cmd.RowsAffected() == 0 {
		return models.ErrDataNotFound
	}

	return nil
}
