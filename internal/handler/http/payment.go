package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rookgm/gomarket/internal/models"
)

type PaymentService interface {
	// RequestPayment creates pending payment for order
	RequestPayment(ctx context.Context, orderID, userID uint64) (*models.Payment, error)
	// ListUserPayments returns payments of orders owned by user, newest first
	ListUserPayments(ctx context.Context, userID uint64) ([]models.Payment, error)
}

// PaymentHandler represents HTTP handler for payment-related requests
type PaymentHandler struct {
	svc PaymentService
}

// NewPaymentHandler creates new PaymentHandler instance
func NewPaymentHandler(svc PaymentService) *PaymentHandler {
	return &PaymentHandler{svc: svc}
}

type paymentResponse struct {
	ID                  uint64  `json:"id"`
	OrderID             uint64  `json:"order_id"`
	Amount              string  `json:"amount"`
	Status              string  `json:"status"`
	TransactionID       string  `json:"transaction_id,omitempty"`
	Method              string  `json:"method,omitempty"`
	ApprovedAt          *string `json:"approved_at,omitempty"`
	RefundAmount        *string `json:"refund_amount,omitempty"`
	RefundedAt          *string `json:"refunded_at,omitempty"`
	RefundTransactionID *string `json:"refund_transaction_id,omitempty"`
	RefundReason        *string `json:"refund_reason,omitempty"`
	CreatedAt           string  `json:"created_at"`
}

func newPaymentResponse(p *models.Payment) paymentResponse {
	resp := paymentResponse{
		ID:            p.ID,
		OrderID:       p.OrderID,
		Amount:        p.Amount.StringFixed(2),
		Status:        p.Status,
		TransactionID: p.TransactionID,
		Method:        p.Method,
		CreatedAt:     p.CreatedAt.Format(time.RFC3339),
	}
	if p.ApprovedAt != nil {
		v := p.ApprovedAt.Format(time.RFC3339)
		resp.ApprovedAt = &v
	}
	if p.RefundAmount != nil {
		v := p.RefundAmount.StringFixed(2)
		resp.RefundAmount = &v
	}
	if p.RefundedAt != nil {
		v := p.RefundedAt.Format(time.RFC3339)
		resp.RefundedAt = &v
	}
	resp.RefundTransactionID = p.RefundTransactionID
	resp.RefundReason = p.RefundReason
	return resp
}

// orderIDParam extracts order id from url
func orderIDParam(r *http.Request) (uint64, error) {
	return strconv.ParseUint(chi.URLParam(r, "orderID"), 10, 64)
}

// RequestUserPayment initiates payment for order
// 201 — платёж создан;
// 400 — неверный формат запроса;
// 401 — пользователь не аутентифицирован;
// 403 — заказ принадлежит другому пользователю;
// 404 — заказ не найден;
// 409 — платёж уже создан или заказ уже обработан;
// 500 — внутренняя ошибка сервера.
func (ph *PaymentHandler) RequestUserPayment() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		payload, ok := getAuthPayload(r.Context())
		if !ok {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		orderID, err := orderIDParam(r)
		if err != nil {
			http.Error(w, "invalid order id", http.StatusBadRequest)
			return
		}

		payment, err := ph.svc.RequestPayment(r.Context(), orderID, payload.UserID)
		if err != nil {
			switch {
			case errors.Is(err, models.ErrDataNotFound):
				http.Error(w, "order not found", http.StatusNotFound)
			case errors.Is(err, models.ErrForbidden):
				http.Error(w, "forbidden", http.StatusForbidden)
			case errors.Is(err, models.ErrPaymentAlreadyRequested):
				http.Error(w, "payment already requested", http.StatusConflict)
			default:
				http.Error(w, "internal error", http.StatusInternalServerError)
			}
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)

		if err := json.NewEncoder(w).Encode(newPaymentResponse(payment)); err != nil {
			return
		}
	}
}

// ListUserPaymentsHistory returns payments of the caller, newest first
// 200 — успешная обработка запроса;
// 204 — нет ни одного платежа;
// 401 — пользователь не аутентифицирован;
// 500 — внутренняя ошибка сервера.
func (ph *PaymentHandler) ListUserPaymentsHistory() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		payload, ok := getAuthPayload(r.Context())
		if !ok {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		payments, err := ph.svc.ListUserPayments(r.Context(), payload.UserID)
		if err != nil {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		if len(payments) == 0 {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		resp := make([]paymentResponse, 0, len(payments))
		for i := range payments {
			resp = append(resp, newPaymentResponse(&payments[i]))
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)

		if err := json.NewEncoder(w).Encode(resp); err != nil {
			return
		}
	}
}
