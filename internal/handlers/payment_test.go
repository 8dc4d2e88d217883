package handlers

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	apperrors "sumitpay/internal/errors"
	"sumitpay/internal/models"
	"sumitpay/internal/repositories/cache"
	"sumitpay/internal/utils"
	"sumitpay/internal/utils/logger"
	"sumitpay/internal/utils/validation"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var (
	customer = &models.UserClaims{UserID: 7, Role: models.RoleUser}
	admin    = &models.UserClaims{UserID: 1, Role: models.RoleAdmin}
)

// as stands in for the bearer middleware.
func as(claims *models.UserClaims) fiber.Handler {
	return func(c *fiber.Ctx) error {
		utils.SetUserClaims(c, claims)
		return c.Next()
	}
}

func ownedBy(id uint) interface{} {
	return mock.MatchedBy(func(p *uint) bool { return p != nil && *p == id })
}

func unscoped() interface{} {
	return mock.MatchedBy(func(p *uint) bool { return p == nil })
}

func amountOf(v string) interface{} {
	want := decimal.RequireFromString(v)
	return mock.MatchedBy(func(d decimal.Decimal) bool { return d.Equal(want) })
}

func doJSON(t *testing.T, app *fiber.App, method, path, body string, headers ...string) (*http.Response, map[string]interface{}) {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	out := map[string]interface{}{}
	if len(raw) > 0 {
		require.NoError(t, json.Unmarshal(raw, &out), string(raw))
	}
	return resp, out
}

type paymentFixture struct {
	app      *fiber.App
	payments *MockPaymentService
	tokens   *MockTokenService
	locker   *cache.MemoryLocker
}

func newPaymentFixture(claims *models.UserClaims) *paymentFixture {
	f := &paymentFixture{
		payments: new(MockPaymentService),
		tokens:   new(MockTokenService),
		locker:   cache.NewMemoryLocker(),
	}
	h := NewPaymentHandler(f.payments, f.tokens, f.locker, time.Minute, logger.Discard())
	f.app = fiber.New()
	f.app.Get("/payments/redirect", h.RedirectCallback)
	f.app.Post("/payments", as(claims), h.Charge)
	f.app.Post("/payments/refund", as(claims), h.Refund)
	return f
}

func TestCharge_SucceedsWithStoredToken(t *testing.T) {
	f := newPaymentFixture(customer)
	stored := &models.PaymentToken{ID: 5, UserID: 7, Token: "tok", CardLast4: "4242"}

	f.tokens.On("GetToken", mock.Anything, uint(5), ownedBy(7)).Return(stored, nil)
	f.payments.On("Charge", mock.Anything,
		mock.MatchedBy(func(o models.Order) bool {
			return o.OrderID == "A1" && o.UserID == 7 && o.Language == "he" &&
				o.Total.Equal(decimal.RequireFromString("10.50"))
		}),
		mock.MatchedBy(func(m models.PaymentMethod) bool { return m.Stored == stored }),
		3,
	).Return(models.ChargeResult{Success: true, TransactionID: "T-1", CardLast4: "4242", Outcome: models.OutcomeSucceeded})

	resp, body := doJSON(t, f.app, "POST", "/payments",
		`{"order_id":"A1","amount":"10.50","currency":"ILS","installments":3,"payment_method":{"token":"5"}}`,
		"Accept-Language", "he-IL,he;q=0.9")

	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, "T-1", body["transaction_id"])
	f.payments.AssertExpectations(t)
	f.tokens.AssertExpectations(t)
}

func TestCharge_FailureStatuses(t *testing.T) {
	tests := []struct {
		name   string
		result models.ChargeResult
		want   int
	}{
		{
			name:   "declined",
			result: models.ChargeResult{Error: "Card declined", Outcome: models.OutcomeDeclined, Err: apperrors.ErrGatewayDeclined.WithMessage("Card declined")},
			want:   fiber.StatusPaymentRequired,
		},
		{
			name:   "no response",
			result: models.ChargeResult{Error: "No response from payment gateway", Outcome: models.OutcomeTransportFailed, Err: apperrors.ErrNoResponse},
			want:   fiber.StatusBadGateway,
		},
		{
			name:   "not configured",
			result: models.ChargeResult{Error: "Payment gateway is not properly configured", Outcome: models.OutcomeRejected, Err: apperrors.ErrNotConfigured},
			want:   fiber.StatusServiceUnavailable,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newPaymentFixture(customer)
			f.payments.On("Charge", mock.Anything, mock.Anything, mock.Anything, 0).Return(tt.result)

			resp, body := doJSON(t, f.app, "POST", "/payments",
				`{"order_id":"A1","amount":10,"currency":"ILS","payment_method":{"single_use_token":"su"}}`)

			assert.Equal(t, tt.want, resp.StatusCode)
			assert.Equal(t, false, body["success"])
			assert.Equal(t, tt.result.Error, body["error"])
		})
	}
}

func TestCharge_ValidationErrorsAre422(t *testing.T) {
	f := newPaymentFixture(customer)
	errs := validation.Errors{{Field: "cvv", Message: "Card security code is invalid"}}
	f.payments.On("Charge", mock.Anything, mock.Anything, mock.Anything, 0).
		Return(models.ChargeResult{Error: errs.Error(), Outcome: models.OutcomeRejected, Err: errs})

	resp, body := doJSON(t, f.app, "POST", "/payments",
		`{"order_id":"A1","amount":10,"currency":"ILS","payment_method":{"card_number":"4580000000000000"}}`)

	assert.Equal(t, fiber.StatusUnprocessableEntity, resp.StatusCode)
	require.Len(t, body["errors"], 1)
}

func TestCharge_RejectsBadOrderBeforeCharging(t *testing.T) {
	f := newPaymentFixture(customer)

	resp, _ := doJSON(t, f.app, "POST", "/payments", `{"amount":10,"currency":"ILS"}`)
	assert.Equal(t, fiber.StatusUnprocessableEntity, resp.StatusCode)

	resp, body := doJSON(t, f.app, "POST", "/payments", `{"order_id":"A1","amount":0,"currency":"ILS"}`)
	assert.Equal(t, fiber.StatusUnprocessableEntity, resp.StatusCode)
	assert.Equal(t, "Amount must be greater than zero", body["error"])

	f.payments.AssertNotCalled(t, "Charge", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestCharge_UnknownTokenIs404(t *testing.T) {
	f := newPaymentFixture(customer)
	f.tokens.On("GetToken", mock.Anything, uint(9), ownedBy(7)).Return(nil, apperrors.ErrTokenNotFound)

	resp, _ := doJSON(t, f.app, "POST", "/payments",
		`{"order_id":"A1","amount":10,"currency":"ILS","payment_method":{"token_id":9}}`)

	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
	f.payments.AssertNotCalled(t, "Charge", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestCharge_OrderInFlightIs409(t *testing.T) {
	f := newPaymentFixture(customer)
	release, ok, err := f.locker.Acquire(context.Background(), cache.OrderLockKey("A1"), time.Minute)
	require.NoError(t, err)
	require.True(t, ok)
	defer release()

	resp, _ := doJSON(t, f.app, "POST", "/payments",
		`{"order_id":"A1","amount":10,"currency":"ILS","payment_method":{"single_use_token":"su"}}`)

	assert.Equal(t, fiber.StatusConflict, resp.StatusCode)
	f.payments.AssertNotCalled(t, "Charge", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestCharge_ReleasesOrderLock(t *testing.T) {
	f := newPaymentFixture(customer)
	f.payments.On("Charge", mock.Anything, mock.Anything, mock.Anything, 0).
		Return(models.ChargeResult{Success: true, TransactionID: "T-1", Outcome: models.OutcomeSucceeded})

	for i := 0; i < 2; i++ {
		resp, _ := doJSON(t, f.app, "POST", "/payments",
			`{"order_id":"A1","amount":10,"currency":"ILS","payment_method":{"single_use_token":"su"}}`)
		assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	}
	f.payments.AssertNumberOfCalls(t, "Charge", 2)
}

// recordingLocker grants every lease and remembers what was asked for.
type recordingLocker struct {
	key string
	ttl time.Duration
}

func (l *recordingLocker) Acquire(_ context.Context, key string, ttl time.Duration) (func(), bool, error) {
	l.key, l.ttl = key, ttl
	return func() {}, true, nil
}

func TestCharge_OrderLockOutlivesGatewayTimeout(t *testing.T) {
	gatewayTimeout := 180 * time.Second
	locker := &recordingLocker{}
	payments := new(MockPaymentService)
	payments.On("Charge", mock.Anything, mock.Anything, mock.Anything, 0).
		Return(models.ChargeResult{Success: true, TransactionID: "T-1", Outcome: models.OutcomeSucceeded})

	h := NewPaymentHandler(payments, new(MockTokenService), locker, OrderLockTTL(gatewayTimeout), logger.Discard())
	app := fiber.New()
	app.Post("/payments", as(customer), h.Charge)

	resp, _ := doJSON(t, app, "POST", "/payments",
		`{"order_id":"A1","amount":10,"currency":"ILS","payment_method":{"single_use_token":"su"}}`)

	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, cache.OrderLockKey("A1"), locker.key)
	assert.Greater(t, locker.ttl, gatewayTimeout)
}

func TestNewPaymentHandler_DefaultLockTTL(t *testing.T) {
	h := NewPaymentHandler(nil, nil, &recordingLocker{}, 0, logger.Discard())
	assert.Equal(t, OrderLockTTL(0), h.lockTTL)
	assert.Positive(t, h.lockTTL)
}

func TestRefund(t *testing.T) {
	f := newPaymentFixture(admin)
	f.payments.On("Refund", mock.Anything, "T-1", amountOf("5")).
		Return(models.RefundResult{Success: true, RefundID: "R-1"})
	f.payments.On("Refund", mock.Anything, "T-2", amountOf("5")).
		Return(models.RefundResult{Error: "Card expired", Err: apperrors.ErrGatewayDeclined.WithMessage("Card expired")})

	resp, body := doJSON(t, f.app, "POST", "/payments/refund", `{"transaction_id":"T-1","amount":5}`)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, "R-1", body["refund_id"])

	resp, body = doJSON(t, f.app, "POST", "/payments/refund", `{"transaction_id":"T-2","amount":5}`)
	assert.Equal(t, fiber.StatusPaymentRequired, resp.StatusCode)
	assert.Equal(t, "Card expired", body["error"])

	resp, _ = doJSON(t, f.app, "POST", "/payments/refund", `{"amount":5}`)
	assert.Equal(t, fiber.StatusUnprocessableEntity, resp.StatusCode)
}

func TestRefund_InFlightIs409(t *testing.T) {
	f := newPaymentFixture(admin)
	release, ok, err := f.locker.Acquire(context.Background(), cache.RefundLockKey("T-1"), time.Minute)
	require.NoError(t, err)
	require.True(t, ok)

	resp, _ := doJSON(t, f.app, "POST", "/payments/refund", `{"transaction_id":"T-1","amount":5}`)
	assert.Equal(t, fiber.StatusConflict, resp.StatusCode)
	f.payments.AssertNotCalled(t, "Refund", mock.Anything, mock.Anything, mock.Anything)

	release()
	f.payments.On("Refund", mock.Anything, "T-1", amountOf("5")).
		Return(models.RefundResult{Success: true, RefundID: "R-1"})
	resp, _ = doJSON(t, f.app, "POST", "/payments/refund", `{"transaction_id":"T-1","amount":5}`)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
}

func TestRedirectCallback(t *testing.T) {
	f := newPaymentFixture(customer)

	resp, body := doJSON(t, f.app, "GET", "/payments/redirect?OG-OrderID=A1&Success=true", "")
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, "A1", body["order_id"])

	resp, body = doJSON(t, f.app, "GET", "/payments/redirect?OG-OrderID=A1&Success=false", "")
	assert.Equal(t, fiber.StatusPaymentRequired, resp.StatusCode)
	assert.Equal(t, false, body["success"])

	resp, _ = doJSON(t, f.app, "GET", "/payments/redirect", "")
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}
