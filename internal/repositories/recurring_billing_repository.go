package repositories

import (
	"context"
	"time"

	"sumitpay/internal/models"
)

type RecurringBillingRepository interface {
	Create(ctx context.Context, billing *models.RecurringBilling) error
	GetByID(ctx context.Context, id uint) (*models.RecurringBilling, error)
	ListByOwner(ctx context.Context, ownerID uint) ([]models.RecurringBilling, error)
	// ListDue returns active rows whose next payment date is at or before
	// asOf, oldest first.
	ListDue(ctx context.Context, asOf time.Time) ([]models.RecurringBilling, error)
	UpdatePaymentDates(ctx context.Context, id uint, last, next time.Time) error
	// Cancel reports whether the subscription exists. Cancelling twice is
	// not an error.
	Cancel(ctx context.Context, id uint, at time.Time) (bool, error)
	UpdateStatus(ctx context.Context, id uint, status models.BillingStatus) (bool, error)
}
