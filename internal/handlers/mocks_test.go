package handlers

import (
	"context"
	"time"

	"sumitpay/internal/models"
	"sumitpay/internal/repositories"
	"sumitpay/internal/scheduler"
	"sumitpay/internal/services/payment"
	"sumitpay/internal/services/recurring"
	"sumitpay/internal/utils/validation"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
)

type MockPaymentService struct {
	mock.Mock
}

func (m *MockPaymentService) Charge(ctx context.Context, order models.Order, method models.PaymentMethod, installments int) models.ChargeResult {
	args := m.Called(ctx, order, method, installments)
	return args.Get(0).(models.ChargeResult)
}

func (m *MockPaymentService) Refund(ctx context.Context, transactionID string, amount decimal.Decimal) models.RefundResult {
	args := m.Called(ctx, transactionID, amount)
	return args.Get(0).(models.RefundResult)
}

func (m *MockPaymentService) ValidatePaymentFields(method models.PaymentMethod) validation.Errors {
	args := m.Called(method)
	errs, _ := args.Get(0).(validation.Errors)
	return errs
}

func (m *MockPaymentService) BuildChargeRequest(order models.Order, method models.PaymentMethod, installments int) payment.ChargeRequest {
	args := m.Called(order, method, installments)
	return args.Get(0).(payment.ChargeRequest)
}

type MockTokenService struct {
	mock.Mock
}

func (m *MockTokenService) CreateToken(ctx context.Context, method models.PaymentMethod, ownerID uint) (*models.PaymentToken, error) {
	args := m.Called(ctx, method, ownerID)
	t, _ := args.Get(0).(*models.PaymentToken)
	return t, args.Error(1)
}

func (m *MockTokenService) GetToken(ctx context.Context, tokenID uint, ownerID *uint) (*models.PaymentToken, error) {
	args := m.Called(ctx, tokenID, ownerID)
	t, _ := args.Get(0).(*models.PaymentToken)
	return t, args.Error(1)
}

func (m *MockTokenService) ListTokens(ctx context.Context, ownerID uint) ([]models.PaymentToken, error) {
	args := m.Called(ctx, ownerID)
	t, _ := args.Get(0).([]models.PaymentToken)
	return t, args.Error(1)
}

func (m *MockTokenService) ListActiveTokens(ctx context.Context, ownerID uint) ([]models.PaymentToken, error) {
	args := m.Called(ctx, ownerID)
	t, _ := args.Get(0).([]models.PaymentToken)
	return t, args.Error(1)
}

func (m *MockTokenService) GetDefaultToken(ctx context.Context, ownerID uint) (*models.PaymentToken, error) {
	args := m.Called(ctx, ownerID)
	t, _ := args.Get(0).(*models.PaymentToken)
	return t, args.Error(1)
}

func (m *MockTokenService) SetDefault(ctx context.Context, tokenID, ownerID uint) (bool, error) {
	args := m.Called(ctx, tokenID, ownerID)
	return args.Bool(0), args.Error(1)
}

func (m *MockTokenService) DeleteToken(ctx context.Context, tokenID uint, ownerID *uint) (bool, error) {
	args := m.Called(ctx, tokenID, ownerID)
	return args.Bool(0), args.Error(1)
}

type MockRecurringService struct {
	mock.Mock
}

func (m *MockRecurringService) CreateSubscription(ctx context.Context, req recurring.CreateSubscriptionRequest) (*models.RecurringBilling, error) {
	args := m.Called(ctx, req)
	b, _ := args.Get(0).(*models.RecurringBilling)
	return b, args.Error(1)
}

func (m *MockRecurringService) GetSubscription(ctx context.Context, id uint, ownerID *uint) (*models.RecurringBilling, error) {
	args := m.Called(ctx, id, ownerID)
	b, _ := args.Get(0).(*models.RecurringBilling)
	return b, args.Error(1)
}

func (m *MockRecurringService) ListSubscriptions(ctx context.Context, ownerID uint) ([]models.RecurringBilling, error) {
	args := m.Called(ctx, ownerID)
	b, _ := args.Get(0).([]models.RecurringBilling)
	return b, args.Error(1)
}

func (m *MockRecurringService) DueSubscriptions(ctx context.Context, asOf time.Time) ([]models.RecurringBilling, error) {
	args := m.Called(ctx, asOf)
	b, _ := args.Get(0).([]models.RecurringBilling)
	return b, args.Error(1)
}

func (m *MockRecurringService) RunCycle(ctx context.Context, billing *models.RecurringBilling, token *models.PaymentToken) models.ChargeResult {
	args := m.Called(ctx, billing, token)
	return args.Get(0).(models.ChargeResult)
}

func (m *MockRecurringService) Cancel(ctx context.Context, id uint, ownerID *uint) (bool, error) {
	args := m.Called(ctx, id, ownerID)
	return args.Bool(0), args.Error(1)
}

type MockTransactionService struct {
	mock.Mock
}

func (m *MockTransactionService) GetTransaction(ctx context.Context, id uint) (*models.Transaction, error) {
	args := m.Called(ctx, id)
	t, _ := args.Get(0).(*models.Transaction)
	return t, args.Error(1)
}

func (m *MockTransactionService) GetByGatewayID(ctx context.Context, transactionID string) (*models.Transaction, error) {
	args := m.Called(ctx, transactionID)
	t, _ := args.Get(0).(*models.Transaction)
	return t, args.Error(1)
}

func (m *MockTransactionService) ListByOrder(ctx context.Context, orderID string) ([]models.Transaction, error) {
	args := m.Called(ctx, orderID)
	t, _ := args.Get(0).([]models.Transaction)
	return t, args.Error(1)
}

func (m *MockTransactionService) ListRecent(ctx context.Context, limit, offset int) ([]models.Transaction, int64, error) {
	args := m.Called(ctx, limit, offset)
	t, _ := args.Get(0).([]models.Transaction)
	return t, args.Get(1).(int64), args.Error(2)
}

func (m *MockTransactionService) Stats(ctx context.Context, window time.Duration) (map[models.TransactionStatus]repositories.StatusTotals, error) {
	args := m.Called(ctx, window)
	s, _ := args.Get(0).(map[models.TransactionStatus]repositories.StatusTotals)
	return s, args.Error(1)
}

type MockVerifier struct {
	mock.Mock
}

func (m *MockVerifier) VerifyCredentials(ctx context.Context, companyID, apiKey string) error {
	return m.Called(ctx, companyID, apiKey).Error(0)
}

func (m *MockVerifier) VerifyPublicCredentials(ctx context.Context, companyID, publicKey string) error {
	return m.Called(ctx, companyID, publicKey).Error(0)
}

type MockRunner struct {
	mock.Mock
}

func (m *MockRunner) RunDue(ctx context.Context) (scheduler.Summary, error) {
	args := m.Called(ctx)
	return args.Get(0).(scheduler.Summary), args.Error(1)
}
