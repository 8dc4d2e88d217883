package token

import (
	"context"

	"sumitpay/internal/gateway"
	"sumitpay/internal/models"
)

// Service manages reusable card tokens issued by the gateway.
type Service interface {
	// CreateToken tokenizes raw card fields (direct PCI mode) or a single-use
	// token and stores the result for ownerID. Nothing is stored on failure.
	CreateToken(ctx context.Context, method models.PaymentMethod, ownerID uint) (*models.PaymentToken, error)
	GetToken(ctx context.Context, tokenID uint, ownerID *uint) (*models.PaymentToken, error)
	ListTokens(ctx context.Context, ownerID uint) ([]models.PaymentToken, error)
	ListActiveTokens(ctx context.Context, ownerID uint) ([]models.PaymentToken, error)
	GetDefaultToken(ctx context.Context, ownerID uint) (*models.PaymentToken, error)
	// SetDefault returns false without side effects when the token does not
	// exist or belongs to someone else.
	SetDefault(ctx context.Context, tokenID, ownerID uint) (bool, error)
	DeleteToken(ctx context.Context, tokenID uint, ownerID *uint) (bool, error)
}

// Gateway is the subset of the gateway client used for tokenization.
type Gateway interface {
	Send(ctx context.Context, body interface{}, path string, includeClientIP bool) (*gateway.Response, error)
}
