package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rookgm/gomarket/internal/models"
)

type WebhookService interface {
	// Process authenticates and applies a gateway webhook
	Process(ctx context.Context, secret string, event models.WebhookEvent) error
}

// WebhookHandler represents HTTP handler for payment gateway notifications
type WebhookHandler struct {
	svc WebhookService
}

// NewWebhookHandler creates new WebhookHandler instance
func NewWebhookHandler(svc WebhookService) *WebhookHandler {
	return &WebhookHandler{svc: svc}
}

type webhookRequest struct {
	OrderID       uint64 `json:"orderId"`
	Status        string `json:"status"`
	TransactionID string `json:"transactionId"`
}

// PaymentWebhook applies gateway-reported payment outcome
// 200 — уведомление принято (включая повторные доставки);
// 400 — неверный формат запроса;
// 401 — неверный секрет;
// 404 — заказ или платёж не найден;
// 500 — внутренняя ошибка сервера.
func (wh *WebhookHandler) PaymentWebhook() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req webhookRequest

		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad request", http.StatusBadRequest)
			return
		}
		defer r.Body.Close()

		event := models.WebhookEvent{
			OrderID:       req.OrderID,
			Status:        req.Status,
			TransactionID: req.TransactionID,
		}

		err := wh.svc.Process(r.Context(), r.Header.Get("X-Webhook-Secret"), event)
		if err != nil {
			switch {
			case errors.Is(err, models.ErrBadWebhookSecret):
				http.Error(w, "unauthorized", http.StatusUnauthorized)
			case errors.Is(err, models.ErrDataNotFound):
				http.Error(w, "order or payment not found", http.StatusNotFound)
			default:
				http.Error(w, "internal error", http.StatusInternalServerError)
			}
			return
		}

		w.WriteHeader(http.StatusOK)
		w.Write([]byte("accepted"))
	}
}
