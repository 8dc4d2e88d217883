package payment

import (
	"context"

	"sumitpay/internal/gateway"
	"sumitpay/internal/models"
	"sumitpay/internal/utils/validation"

	"github.com/shopspring/decimal"
)

// Service is the transaction engine. Charge and Refund never return
// transport or decline failures as Go errors; they fold them into the result.
type Service interface {
	Charge(ctx context.Context, order models.Order, method models.PaymentMethod, installments int) models.ChargeResult
	Refund(ctx context.Context, transactionID string, amount decimal.Decimal) models.RefundResult
	ValidatePaymentFields(method models.PaymentMethod) validation.Errors
	BuildChargeRequest(order models.Order, method models.PaymentMethod, installments int) ChargeRequest
}

// Gateway is the subset of the gateway client used by the engine.
type Gateway interface {
	Send(ctx context.Context, body interface{}, path string, includeClientIP bool) (*gateway.Response, error)
}
