package repositories

import (
	"context"
	"time"

	"sumitpay/internal/models"

	"github.com/shopspring/decimal"
)

// TransactionRepository is append-only: rows are created, never updated.
type TransactionRepository interface {
	Create(ctx context.Context, tx *models.Transaction) error
	GetByID(ctx context.Context, id uint) (*models.Transaction, error)
	GetByGatewayID(ctx context.Context, gatewayTransactionID string) (*models.Transaction, error)
	ListByOrder(ctx context.Context, orderID string) ([]models.Transaction, error)
	List(ctx context.Context, limit, offset int) ([]models.Transaction, int64, error)
	Stats(ctx context.Context, since time.Time) (map[models.TransactionStatus]StatusTotals, error)
	// SumRefunded totals the refund rows recorded against a charge.
	SumRefunded(ctx context.Context, parentTransactionID string) (decimal.Decimal, error)
}

// StatusTotals aggregates the rows of one status.
type StatusTotals struct {
	Count  int64           `json:"count"`
	Volume decimal.Decimal `json:"volume"`
}
