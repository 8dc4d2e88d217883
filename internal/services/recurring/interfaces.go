package recurring

import (
	"context"
	"time"

	"sumitpay/internal/models"

	"github.com/shopspring/decimal"
)

type Service interface {
	CreateSubscription(ctx context.Context, req CreateSubscriptionRequest) (*models.RecurringBilling, error)
	// GetSubscription scopes the lookup to ownerID when it is not nil.
	GetSubscription(ctx context.Context, id uint, ownerID *uint) (*models.RecurringBilling, error)
	ListSubscriptions(ctx context.Context, ownerID uint) ([]models.RecurringBilling, error)
	DueSubscriptions(ctx context.Context, asOf time.Time) ([]models.RecurringBilling, error)
	// RunCycle charges one period with the subscription's stored token. Dates
	// move only when the charge succeeds; status never changes here.
	RunCycle(ctx context.Context, billing *models.RecurringBilling, token *models.PaymentToken) models.ChargeResult
	// Cancel is idempotent. It reports false when the subscription does not
	// exist or belongs to someone else.
	Cancel(ctx context.Context, id uint, ownerID *uint) (bool, error)
}

// Charger is the transaction engine as seen by the billing cycle.
type Charger interface {
	Charge(ctx context.Context, order models.Order, method models.PaymentMethod, installments int) models.ChargeResult
}

// TokenSource resolves stored tokens.
type TokenSource interface {
	GetToken(ctx context.Context, tokenID uint, ownerID *uint) (*models.PaymentToken, error)
}

type CreateSubscriptionRequest struct {
	UserID         uint             `json:"-"`
	PaymentTokenID uint             `json:"payment_token_id" validate:"required"`
	Amount         decimal.Decimal  `json:"amount"`
	Currency       string           `json:"currency" validate:"required,len=3"`
	VATRate        decimal.Decimal  `json:"vat_rate"`
	Frequency      models.Frequency `json:"frequency" validate:"required,oneof=daily weekly monthly yearly"`
	Description    string           `json:"description" validate:"max=255"`
	CustomerName   string           `json:"customer_name" validate:"max=255"`
	CustomerEmail  string           `json:"customer_email" validate:"omitempty,email"`
	// StartAt is the first charge date; empty means the next scheduler tick.
	StartAt *time.Time `json:"start_at"`
}
