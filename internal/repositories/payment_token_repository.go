package repositories

import (
	"context"
	"time"

	"sumitpay/internal/models"
)

// Sealer encrypts token material before it is written and decrypts it after
// it is read.
type Sealer interface {
	Encrypt(plaintext string) (string, error)
	Decrypt(sealed string) (string, error)
}

type PaymentTokenRepository interface {
	// Core operations
	Create(ctx context.Context, token *models.PaymentToken) error
	// GetByID scopes the lookup to ownerID when it is not nil.
	GetByID(ctx context.Context, tokenID uint, ownerID *uint) (*models.PaymentToken, error)
	// Delete scopes the delete to ownerID when it is not nil and unlinks any
	// subscription that referenced the token. It reports whether a row was
	// removed.
	Delete(ctx context.Context, tokenID uint, ownerID *uint) (bool, error)

	// Query operations
	ListByOwner(ctx context.Context, ownerID uint) ([]models.PaymentToken, error)
	ListActiveByOwner(ctx context.Context, ownerID uint, asOf time.Time) ([]models.PaymentToken, error)
	GetDefault(ctx context.Context, ownerID uint) (*models.PaymentToken, error)

	// SetDefault clears every default flag of the owner and sets it on
	// tokenID in one database transaction.
	SetDefault(ctx context.Context, tokenID, ownerID uint) error
}
