package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rookgm/gomarket/internal/models"
)

type RefundService interface {
	// Refund reverses the paid payment of order
	Refund(ctx context.Context, orderID uint64, reason string, caller *models.TokenPayload) (*models.Payment, error)
}

// RefundHandler represents HTTP handler for refund requests
type RefundHandler struct {
	svc RefundService
}

// NewRefundHandler creates new RefundHandler instance
func NewRefundHandler(svc RefundService) *RefundHandler {
	return &RefundHandler{svc: svc}
}

type refundRequest struct {
	RefundReason string `json:"refundReason"`
}

// RefundOrderPayment refunds the paid payment of order
// 200 — платёж возвращён;
// 400 — неверный формат запроса;
// 401 — пользователь не аутентифицирован;
// 403 — пользователь не администратор;
// 404 — заказ или платёж не найден;
// 409 — платёж не оплачен или уже возвращён;
// 500 — внутренняя ошибка сервера.
func (rh *RefundHandler) RefundOrderPayment() http.HandlerFunc {
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

		var req refundRequest

		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad request", http.StatusBadRequest)
			return
		}
		defer r.Body.Close()

		if req.RefundReason == "" {
			http.Error(w, "refund reason is required", http.StatusBadRequest)
			return
		}

		payment, err := rh.svc.Refund(r.Context(), orderID, req.RefundReason, payload)
		if err != nil {
			switch {
			case errors.Is(err, models.ErrForbidden):
				http.Error(w, "forbidden", http.StatusForbidden)
			case errors.Is(err, models.ErrDataNotFound):
				http.Error(w, "order or payment not found", http.StatusNotFound)
			case errors.Is(err, models.ErrPaymentNotPaid):
				http.Error(w, "payment is not paid", http.StatusConflict)
			case errors.Is(err, models.ErrAlreadyRefunded):
				http.Error(w, "payment already refunded", http.StatusConflict)
			default:
				http.Error(w, "internal error", http.StatusInternalServerError)
			}
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)

		if err := json.NewEncoder(w).Encode(newPaymentResponse(payment)); err != nil {
			return
		}
	}
}
