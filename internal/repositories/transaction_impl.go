package repositories

import (
	"context"
	"fmt"
	"time"

	apperrors "sumitpay/internal/errors"
	"sumitpay/internal/models"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type transactionRepository struct {
	db *gorm.DB
}

func NewTransactionRepository(db *gorm.DB) TransactionRepository {
	return &transactionRepository{db: db}
}

func (r *transactionRepository) Create(ctx context.Context, tx *models.Transaction) error {
	if err := r.db.WithContext(ctx).Create(tx).Error; err != nil {
		if isUniqueViolation(err) {
			return apperrors.ErrDuplicateTransaction.Wrap(err)
		}
		return fmt.Errorf("failed to create transaction: %w", err)
	}
	return nil
}

func (r *transactionRepository) GetByID(ctx context.Context, id uint) (*models.Transaction, error) {
	var tx models.Transaction
	if err := r.db.WithContext(ctx).First(&tx, id).Error; err != nil {
		if isNotFound(err) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get transaction: %w", err)
	}
	return &tx, nil
}

func (r *transactionRepository) GetByGatewayID(ctx context.Context, gatewayTransactionID string) (*models.Transaction, error) {
	var tx models.Transaction
	err := r.db.WithContext(ctx).
		Where("transaction_id = ?", gatewayTransactionID).
		First(&tx).Error
	if err != nil {
		if isNotFound(err) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get transaction: %w", err)
	}
	return &tx, nil
}

func (r *transactionRepository) ListByOrder(ctx context.Context, orderID string) ([]models.Transaction, error) {
	var txs []models.Transaction
	err := r.db.WithContext(ctx).
		Where("order_id = ?", orderID).
		Order("created_at ASC").
		Order("id ASC").
		Find(&txs).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list order transactions: %w", err)
	}
	return txs, nil
}

func (r *transactionRepository) List(ctx context.Context, limit, offset int) ([]models.Transaction, int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).Model(&models.Transaction{}).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count transactions: %w", err)
	}

	var txs []models.Transaction
	err := r.db.WithContext(ctx).
		Order("created_at DESC").
		Order("id DESC").
		Limit(limit).
		Offset(offset).
		Find(&txs).Error
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list transactions: %w", err)
	}
	return txs, total, nil
}

func (r *transactionRepository) Stats(ctx context.Context, since time.Time) (map[models.TransactionStatus]StatusTotals, error) {
	type row struct {
		Status models.TransactionStatus
		Count  int64
		Volume decimal.Decimal
	}
	var rows []row

	err := r.db.WithContext(ctx).Model(&models.Transaction{}).
		Select("status, COUNT(*) AS count, COALESCE(SUM(amount), 0) AS volume").
		Where("created_at >= ?", since).
		Group("status").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate transactions: %w", err)
	}

	out := make(map[models.TransactionStatus]StatusTotals, len(rows))
	for _, r := range rows {
		out[r.Status] = StatusTotals{Count: r.Count, Volume: r.Volume}
	}
	return out, nil
}

func (r *transactionRepository) SumRefunded(ctx context.Context, parentTransactionID string) (decimal.Decimal, error) {
	var total struct {
		Amount decimal.Decimal
	}
	err := r.db.WithContext(ctx).Model(&models.Transaction{}).
		Select("COALESCE(SUM(amount), 0) AS amount").
		Where("parent_transaction_id = ? AND status = ?", parentTransactionID, models.TransactionStatusRefunded).
		Scan(&total).Error
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to total refunds: %w", err)
	}
	return total.Amount, nil
}
