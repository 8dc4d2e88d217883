package repositories

import (
	"context"
	"fmt"
	"time"

	apperrors "sumitpay/internal/errors"
	"sumitpay/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type paymentTokenRepository struct {
	db     *gorm.DB
	sealer Sealer
}

func NewPaymentTokenRepository(db *gorm.DB, sealer Sealer) PaymentTokenRepository {
	return &paymentTokenRepository{
		db:     db,
		sealer: sealer,
	}
}

func (r *paymentTokenRepository) Create(ctx context.Context, token *models.PaymentToken) error {
	if err := r.seal(token); err != nil {
		return err
	}
	if err := r.db.WithContext(ctx).Create(token).Error; err != nil {
		return fmt.Errorf("failed to create payment token: %w", err)
	}
	return nil
}

func (r *paymentTokenRepository) GetByID(ctx context.Context, tokenID uint, ownerID *uint) (*models.PaymentToken, error) {
	var token models.PaymentToken
	q := r.db.WithContext(ctx).Where("id = ?", tokenID)
	if ownerID != nil {
		q = q.Where("user_id = ?", *ownerID)
	}
	if err := q.First(&token).Error; err != nil {
		if isNotFound(err) {
			return nil, apperrors.ErrTokenNotFound
		}
		return nil, fmt.Errorf("failed to get payment token: %w", err)
	}
	if err := r.open(&token); err != nil {
		return nil, err
	}
	return &token, nil
}

func (r *paymentTokenRepository) Delete(ctx context.Context, tokenID uint, ownerID *uint) (bool, error) {
	var deleted bool
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		q := tx.Where("id = ?", tokenID)
		if ownerID != nil {
			q = q.Where("user_id = ?", *ownerID)
		}
		result := q.Delete(&models.PaymentToken{})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return nil
		}
		deleted = true

		// Billing history survives token removal.
		return tx.Model(&models.RecurringBilling{}).
			Where("payment_token_id = ?", tokenID).
			Update("payment_token_id", nil).Error
	})
	if err != nil {
		return false, fmt.Errorf("failed to delete payment token: %w", err)
	}
	return deleted, nil
}

func (r *paymentTokenRepository) ListByOwner(ctx context.Context, ownerID uint) ([]models.PaymentToken, error) {
	var tokens []models.PaymentToken
	err := r.db.WithContext(ctx).
		Where("user_id = ?", ownerID).
		Order("is_default DESC").
		Order("created_at DESC").
		Order("id DESC").
		Find(&tokens).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list payment tokens: %w", err)
	}
	return tokens, r.openAll(tokens)
}

func (r *paymentTokenRepository) ListActiveByOwner(ctx context.Context, ownerID uint, asOf time.Time) ([]models.PaymentToken, error) {
	year, month := asOf.Year(), int(asOf.Month())

	var tokens []models.PaymentToken
	err := r.db.WithContext(ctx).
		Where("user_id = ?", ownerID).
		Where("exp_year > ? OR (exp_year = ? AND exp_month >= ?)", year, year, month).
		Order("is_default DESC").
		Order("created_at DESC").
		Order("id DESC").
		Find(&tokens).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list active payment tokens: %w", err)
	}
	return tokens, r.openAll(tokens)
}

func (r *paymentTokenRepository) GetDefault(ctx context.Context, ownerID uint) (*models.PaymentToken, error) {
	var token models.PaymentToken
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND is_default = ?", ownerID, true).
		First(&token).Error
	if err != nil {
		if isNotFound(err) {
			return nil, apperrors.ErrTokenNotFound
		}
		return nil, fmt.Errorf("failed to get default payment token: %w", err)
	}
	if err := r.open(&token); err != nil {
		return nil, err
	}
	return &token, nil
}

func (r *paymentTokenRepository) SetDefault(ctx context.Context, tokenID, ownerID uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// Lock the owner's rows so concurrent switches serialize.
		var owned []models.PaymentToken
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Select("id").
			Where("user_id = ?", ownerID).
			Find(&owned).Error; err != nil {
			return fmt.Errorf("failed to lock payment tokens: %w", err)
		}

		found := false
		for _, t := range owned {
			if t.ID == tokenID {
				found = true
				break
			}
		}
		if !found {
			return apperrors.ErrTokenNotFound
		}

		if err := tx.Model(&models.PaymentToken{}).
			Where("user_id = ? AND is_default = ?", ownerID, true).
			Update("is_default", false).Error; err != nil {
			return fmt.Errorf("failed to clear default token: %w", err)
		}

		if err := tx.Model(&models.PaymentToken{}).
			Where("id = ? AND user_id = ?", tokenID, ownerID).
			Update("is_default", true).Error; err != nil {
			return fmt.Errorf("failed to set default token: %w", err)
		}
		return nil
	})
}

func (r *paymentTokenRepository) seal(token *models.PaymentToken) error {
	sealed, err := r.sealer.Encrypt(token.Token)
	if err != nil {
		return fmt.Errorf("failed to seal payment token: %w", err)
	}
	token.TokenCiphertext = sealed

	sealed, err = r.sealer.Encrypt(token.CitizenID)
	if err != nil {
		return fmt.Errorf("failed to seal citizen id: %w", err)
	}
	token.CitizenIDCiphertext = sealed
	return nil
}

func (r *paymentTokenRepository) open(token *models.PaymentToken) error {
	plain, err := r.sealer.Decrypt(token.TokenCiphertext)
	if err != nil {
		return fmt.Errorf("failed to open payment token %d: %w", token.ID, err)
	}
	token.Token = plain

	plain, err = r.sealer.Decrypt(token.CitizenIDCiphertext)
	if err != nil {
		return fmt.Errorf("failed to open citizen id of token %d: %w", token.ID, err)
	}
	token.CitizenID = plain
	return nil
}

func (r *paymentTokenRepository) openAll(tokens []models.PaymentToken) error {
	for i := range tokens {
		if err := r.open(&tokens[i]); err != nil {
			return err
		}
	}
	return nil
}
