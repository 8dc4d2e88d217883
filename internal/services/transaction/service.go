package transaction

import (
	"context"
	"time"

	"sumitpay/internal/models"
	"sumitpay/internal/repositories"
)

// Service answers read-only queries over the transaction ledger.
type Service interface {
	GetTransaction(ctx context.Context, id uint) (*models.Transaction, error)
	GetByGatewayID(ctx context.Context, transactionID string) (*models.Transaction, error)
	ListByOrder(ctx context.Context, orderID string) ([]models.Transaction, error)
	ListRecent(ctx context.Context, limit, offset int) ([]models.Transaction, int64, error)
	Stats(ctx context.Context, window time.Duration) (map[models.TransactionStatus]repositories.StatusTotals, error)
}

type service struct {
	repo repositories.TransactionRepository
	now  func() time.Time
}

func NewService(repo repositories.TransactionRepository) Service {
	return &service{repo: repo, now: time.Now}
}

func (s *service) GetTransaction(ctx context.Context, id uint) (*models.Transaction, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *service) GetByGatewayID(ctx context.Context, transactionID string) (*models.Transaction, error) {
	return s.repo.GetByGatewayID(ctx, transactionID)
}

func (s *service) ListByOrder(ctx context.Context, orderID string) ([]models.Transaction, error) {
	return s.repo.ListByOrder(ctx, orderID)
}

func (s *service) ListRecent(ctx context.Context, limit, offset int) ([]models.Transaction, int64, error) {
	return s.repo.List(ctx, limit, offset)
}

// Stats aggregates rows created within window of now.
func (s *service) Stats(ctx context.Context, window time.Duration) (map[models.TransactionStatus]repositories.StatusTotals, error) {
	if window <= 0 {
		window = 30 * 24 * time.Hour
	}
	return s.repo.Stats(ctx, s.now().Add(-window))
}
