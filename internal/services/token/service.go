package token

import (
	"context"
	"errors"
	"fmt"
	"time"

	"sumitpay/internal/config"
	apperrors "sumitpay/internal/errors"
	"sumitpay/internal/gateway"
	"sumitpay/internal/models"
	"sumitpay/internal/repositories"
	"sumitpay/internal/utils/logger"
	"sumitpay/internal/utils/validation"
)

const tokenCreationFailed = "Token creation failed"

type service struct {
	repo    repositories.PaymentTokenRepository
	gateway Gateway
	cfg     config.Configuration
	log     *logger.Logger
	now     func() time.Time
}

type Option func(*service)

// WithClock overrides time.Now for expiry checks.
func WithClock(now func() time.Time) Option {
	return func(s *service) { s.now = now }
}

func NewService(
	repo repositories.PaymentTokenRepository,
	gw Gateway,
	cfg config.Configuration,
	log *logger.Logger,
	opts ...Option,
) Service {
	s := &service{
		repo:    repo,
		gateway: gw,
		cfg:     cfg,
		log:     log,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

type tokenizeRequest struct {
	Credentials     gateway.Credentials `json:"Credentials"`
	ParamJ          string              `json:"ParamJ"`
	Amount          int                 `json:"Amount"`
	CardNumber      string              `json:"CardNumber,omitempty"`
	CVV             string              `json:"CVV,omitempty"`
	CitizenID       string              `json:"CitizenID,omitempty"`
	ExpirationMonth string              `json:"ExpirationMonth,omitempty"`
	ExpirationYear  string              `json:"ExpirationYear,omitempty"`
	SingleUseToken  string              `json:"SingleUseToken,omitempty"`
}

func (s *service) buildRequest(m models.PaymentMethod) tokenizeRequest {
	req := tokenizeRequest{
		Credentials: gateway.Credentials{
			CompanyID: s.cfg.Credentials.CompanyID,
			APIKey:    s.cfg.Credentials.APIKey,
		},
		ParamJ: s.cfg.Payment.TokenParam,
		Amount: 1,
	}

	if s.cfg.Payment.PCIMode == config.PCIModeDirect {
		req.CardNumber = m.CardNumber
		req.CVV = m.CVV
		req.CitizenID = m.CitizenID
		month, _ := m.ExpMonth.Int()
		req.ExpirationMonth = fmt.Sprintf("%02d", month)
		req.ExpirationYear = m.ExpYear.String()
		return req
	}
	req.SingleUseToken = m.SingleUseToken
	return req
}

func (s *service) validate(m models.PaymentMethod) error {
	if m.Kind() == models.PaymentMethodStoredToken {
		return validation.Errors{{Field: "token", Message: "Card is already tokenized"}}
	}
	mode := s.cfg.Payment.PCIMode
	if mode == config.PCIModeRedirect {
		// Redirect pages hand back a single-use token.
		mode = config.PCIModeTokenized
	}
	if errs := validation.PaymentFields(m, mode, s.now()); len(errs) > 0 {
		return errs
	}
	return nil
}

func (s *service) CreateToken(ctx context.Context, m models.PaymentMethod, ownerID uint) (*models.PaymentToken, error) {
	if err := s.validate(m); err != nil {
		return nil, err
	}

	resp, err := s.gateway.Send(ctx, s.buildRequest(m), gateway.PathTransaction, false)
	if err != nil {
		s.log.Errorf("tokenization for owner %d failed: %v", ownerID, err)
		return nil, err
	}
	if !resp.Succeeded() {
		msg := resp.ErrorMessage(tokenCreationFailed)
		s.log.Warnf("tokenization for owner %d declined: %s", ownerID, msg)
		return nil, apperrors.ErrGatewayDeclined.WithMessage(msg)
	}
	if resp.Data.CardToken == "" {
		return nil, apperrors.ErrMalformedResponse.WithMessage("gateway returned no card token")
	}

	token := tokenFromResponse(resp.Data, ownerID)
	if err := s.repo.Create(ctx, token); err != nil {
		return nil, apperrors.ErrPersistence.Wrap(err)
	}
	s.log.Infof("stored payment token %d for owner %d (%s)", token.ID, ownerID, token.MaskedCardNumber())
	return token, nil
}

func tokenFromResponse(d *gateway.ResponseData, ownerID uint) *models.PaymentToken {
	last4 := d.CardPattern
	if len(last4) > 4 {
		last4 = last4[len(last4)-4:]
	}
	month, _ := d.ExpirationMonth.Int()
	year, _ := d.ExpirationYear.Int()

	return &models.PaymentToken{
		UserID:    ownerID,
		Token:     d.CardToken,
		CardType:  "card",
		CardLast4: last4,
		CardBrand: d.Brand.String(),
		ExpMonth:  month,
		ExpYear:   year,
		CitizenID: d.CitizenID.String(),
	}
}

func (s *service) GetToken(ctx context.Context, tokenID uint, ownerID *uint) (*models.PaymentToken, error) {
	return s.repo.GetByID(ctx, tokenID, ownerID)
}

func (s *service) ListTokens(ctx context.Context, ownerID uint) ([]models.PaymentToken, error) {
	return s.repo.ListByOwner(ctx, ownerID)
}

func (s *service) ListActiveTokens(ctx context.Context, ownerID uint) ([]models.PaymentToken, error) {
	return s.repo.ListActiveByOwner(ctx, ownerID, s.now())
}

func (s *service) GetDefaultToken(ctx context.Context, ownerID uint) (*models.PaymentToken, error) {
	return s.repo.GetDefault(ctx, ownerID)
}

func (s *service) SetDefault(ctx context.Context, tokenID, ownerID uint) (bool, error) {
	if err := s.repo.SetDefault(ctx, tokenID, ownerID); err != nil {
		if errors.Is(err, apperrors.ErrTokenNotFound) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func (s *service) DeleteToken(ctx context.Context, tokenID uint, ownerID *uint) (bool, error) {
	deleted, err := s.repo.Delete(ctx, tokenID, ownerID)
	if err != nil {
		return false, err
	}
	if deleted {
		s.log.Infof("deleted payment token %d", tokenID)
	}
	return deleted, nil
}
