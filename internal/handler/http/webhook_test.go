package handler

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/golang/mock/gomock"
	"github.com/rookgm/gomarket/internal/handler/http/mocks"
	"github.com/rookgm/gomarket/internal/models"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func TestWebhookHandler_PaymentWebhook(t *testing.T) {
	tests := []struct {
		name           string
		secret         string
		body           string
		setup          func(t *testing.T) *mocks.MockWebhookService
		wantStatusCode int
	}{
		{
			// 200 — уведомление принято;
			name:   "valid_webhook_return_200",
			secret: "s3cret",
			body:   `{"orderId":1,"status":"PAID","transactionId":"TX1"}`,
			setup: func(t *testing.T) *mocks.MockWebhookService {

				ctrl := gomock.NewController(t)
				defer ctrl.Finish()

				svcMock := mocks.NewMockWebhookService(ctrl)
				svcMock.EXPECT().Process(gomock.Any(), "s3cret", models.WebhookEvent{
					OrderID:       1,
					Status:        "PAID",
					TransactionID: "TX1",
				}).Return(nil).AnyTimes()
				return svcMock
			},
			wantStatusCode: http.StatusOK,
		},
		{
			// 200 — повторная доставка принимается без эффекта;
			name:   "replayed_webhook_return_200",
			secret: "s3cret",
			body:   `{"orderId":1,"status":"PAID","transactionId":"TX1"}`,
			setup: func(t *testing.T) *mocks.MockWebhookService {

				ctrl := gomock.NewController(t)
				defer ctrl.Finish()

				svcMock := mocks.NewMockWebhookService(ctrl)
				svcMock.EXPECT().Process(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil).AnyTimes()
				return svcMock
			},
			wantStatusCode: http.StatusOK,
		},
		{
			// 400 — неверный формат запроса;
			name:   "malformed_body_return_400",
			secret: "s3cret",
			body:   `{"orderId":`,
			setup: func(t *testing.T) *mocks.MockWebhookService {

				ctrl := gomock.NewController(t)
				defer ctrl.Finish()

				svcMock := mocks.NewMockWebhookService(ctrl)
				svcMock.EXPECT().Process(gomock.Any(), gomock.Any(), gomock.Any()).Times(0)
				return svcMock
			},
			wantStatusCode: http.StatusBadRequest,
		},
		{
			// 401 — неверный секрет;
			name:   "bad_secret_return_401",
			secret: "wrong",
			body:   `{"orderId":1,"status":"PAID","transactionId":"TX1"}`,
			setup: func(t *testing.T) *mocks.MockWebhookService {

				ctrl := gomock.NewController(t)
				defer ctrl.Finish()

				svcMock := mocks.NewMockWebhookService(ctrl)
				svcMock.EXPECT().Process(gomock.Any(), "wrong", gomock.Any()).Return(models.ErrBadWebhookSecret).AnyTimes()
				return svcMock
			},
			wantStatusCode: http.StatusUnauthorized,
		},
		{
			// 404 — заказ или платёж не найден;
			name:   "unknown_order_return_404",
			secret: "s3cret",
			body:   `{"orderId":99,"status":"PAID","transactionId":"TX1"}`,
			setup: func(t *testing.T) *mocks.MockWebhookService {

				ctrl := gomock.NewController(t)
				defer ctrl.Finish()

				svcMock := mocks.NewMockWebhookService(ctrl)
				svcMock.EXPECT().Process(gomock.Any(), gomock.Any(), gomock.Any()).Return(models.ErrDataNotFound).AnyTimes()
				return svcMock
			},
			wantStatusCode: http.StatusNotFound,
		},
		{
			// 500 — внутренняя ошибка сервера.
			name:   "internal_error_return_500",
			secret: "s3cret",
			body:   `{"orderId":1,"status":"PAID","transactionId":"TX1"}`,
			setup: func(t *testing.T) *mocks.MockWebhookService {

				ctrl := gomock.NewController(t)
				defer ctrl.Finish()

				svcMock := mocks.NewMockWebhookService(ctrl)
				svcMock.EXPECT().Process(gomock.Any(), gomock.Any(), gomock.Any()).Return(models.ErrInternalError).AnyTimes()
				return svcMock
			},
			wantStatusCode: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, err := http.NewRequest(http.MethodPost, "/api/payments/webhook", strings.NewReader(tt.body))
			if err != nil {
				t.Fatal("cannot create request", zap.Error(err))
			}
			req.Header.Set("X-Webhook-Secret", tt.secret)

			w := httptest.NewRecorder()
			st := tt.setup(t)

			handler := NewWebhookHandler(st)
			h := handler.PaymentWebhook()
			h(w, req)

			res := w.Result()
			assert.Equal(t, tt.wantStatusCode, res.StatusCode)
			defer res.Body.Close()
		})
	}
}
