package repositories

import (
	"context"
	"fmt"
	"time"

	apperrors "sumitpay/internal/errors"
	"sumitpay/internal/models"

	"gorm.io/gorm"
)

type recurringBillingRepository struct {
	db *gorm.DB
}

func NewRecurringBillingRepository(db *gorm.DB) RecurringBillingRepository {
	return &recurringBillingRepository{db: db}
}

func (r *recurringBillingRepository) Create(ctx context.Context, billing *models.RecurringBilling) error {
	if err := r.db.WithContext(ctx).Create(billing).Error; err != nil {
		return fmt.Errorf("failed to create subscription: %w", err)
	}
	return nil
}

func (r *recurringBillingRepository) GetByID(ctx context.Context, id uint) (*models.RecurringBilling, error) {
	var billing models.RecurringBilling
	if err := r.db.WithContext(ctx).First(&billing, id).Error; err != nil {
		if isNotFound(err) {
			return nil, apperrors.ErrSubscriptionNotFound
		}
		return nil, fmt.Errorf("failed to get subscription: %w", err)
	}
	return &billing, nil
}

func (r *recurringBillingRepository) ListByOwner(ctx context.Context, ownerID uint) ([]models.RecurringBilling, error) {
	var out []models.RecurringBilling
	err := r.db.WithContext(ctx).
		Where("user_id = ?", ownerID).
		Order("created_at DESC").
		Order("id DESC").
		Find(&out).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list subscriptions: %w", err)
	}
	return out, nil
}

func (r *recurringBillingRepository) ListDue(ctx context.Context, asOf time.Time) ([]models.RecurringBilling, error) {
	var out []models.RecurringBilling
	err := r.db.WithContext(ctx).
		Where("status = ?", models.BillingStatusActive).
		Where("next_payment_date IS NOT NULL AND next_payment_date <= ?", asOf).
		Order("next_payment_date ASC").
		Order("id ASC").
		Find(&out).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list due subscriptions: %w", err)
	}
	return out, nil
}

func (r *recurringBillingRepository) UpdatePaymentDates(ctx context.Context, id uint, last, next time.Time) error {
	result := r.db.WithContext(ctx).Model(&models.RecurringBilling{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"last_payment_date": last,
			"next_payment_date": next,
		})
	if result.Error != nil {
		return fmt.Errorf("failed to advance subscription: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return apperrors.ErrSubscriptionNotFound
	}
	return nil
}

func (r *recurringBillingRepository) Cancel(ctx context.Context, id uint, at time.Time) (bool, error) {
	var found bool
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var billing models.RecurringBilling
		if err := tx.Select("id", "ended_at").First(&billing, id).Error; err != nil {
			if isNotFound(err) {
				return nil
			}
			return err
		}
		found = true

		updates := map[string]interface{}{"status": models.BillingStatusCancelled}
		if billing.EndedAt == nil {
			updates["ended_at"] = at
		}
		return tx.Model(&models.RecurringBilling{}).Where("id = ?", id).Updates(updates).Error
	})
	if err != nil {
		return false, fmt.Errorf("failed to cancel subscription: %w", err)
	}
	return found, nil
}

func (r *recurringBillingRepository) UpdateStatus(ctx context.Context, id uint, status models.BillingStatus) (bool, error) {
	result := r.db.WithContext(ctx).Model(&models.RecurringBilling{}).
		Where("id = ?", id).
		Update("status", status)
	if result.Error != nil {
		return false, fmt.Errorf("failed to update subscription status: %w", result.Error)
	}
	return result.RowsAffected > 0, nil
}
