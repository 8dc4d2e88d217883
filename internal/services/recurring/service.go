package recurring

import (
	"context"
	"errors"
	"fmt"
	"time"

	apperrors "sumitpay/internal/errors"
	"sumitpay/internal/models"
	"sumitpay/internal/repositories"
	"sumitpay/internal/utils/logger"
)

const defaultItemName = "Subscription"

type service struct {
	repo    repositories.RecurringBillingRepository
	tokens  TokenSource
	charger Charger
	log     *logger.Logger
	now     func() time.Time
}

type Option func(*service)

func WithClock(now func() time.Time) Option {
	return func(s *service) { s.now = now }
}

func NewService(
	repo repositories.RecurringBillingRepository,
	tokens TokenSource,
	charger Charger,
	log *logger.Logger,
	opts ...Option,
) Service {
	s := &service{
		repo:    repo,
		tokens:  tokens,
		charger: charger,
		log:     log,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *service) CreateSubscription(ctx context.Context, req CreateSubscriptionRequest) (*models.RecurringBilling, error) {
	if !req.Amount.IsPositive() {
		return nil, apperrors.ErrValidation.WithMessage("Amount must be greater than zero")
	}
	now := s.now()
	if _, err := Advance(now, req.Frequency); err != nil {
		return nil, err
	}

	token, err := s.tokens.GetToken(ctx, req.PaymentTokenID, &req.UserID)
	if err != nil {
		return nil, err
	}
	if token.IsExpired(now) {
		return nil, apperrors.ErrValidation.WithMessage("Payment token is expired")
	}

	next := now
	if req.StartAt != nil && req.StartAt.After(now) {
		next = *req.StartAt
	}

	billing := &models.RecurringBilling{
		UserID:          req.UserID,
		PaymentTokenID:  &token.ID,
		Amount:          req.Amount,
		Currency:        req.Currency,
		VATRate:         req.VATRate,
		Frequency:       req.Frequency,
		Description:     req.Description,
		CustomerName:    req.CustomerName,
		CustomerEmail:   req.CustomerEmail,
		Status:          models.BillingStatusActive,
		NextPaymentDate: &next,
		StartedAt:       &now,
	}
	if err := s.repo.Create(ctx, billing); err != nil {
		return nil, err
	}
	s.log.Infof("created %s subscription %d for owner %d", billing.Frequency, billing.ID, billing.UserID)
	return billing, nil
}

func (s *service) GetSubscription(ctx context.Context, id uint, ownerID *uint) (*models.RecurringBilling, error) {
	billing, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if ownerID != nil && billing.UserID != *ownerID {
		return nil, apperrors.ErrSubscriptionNotFound
	}
	return billing, nil
}

func (s *service) ListSubscriptions(ctx context.Context, ownerID uint) ([]models.RecurringBilling, error) {
	return s.repo.ListByOwner(ctx, ownerID)
}

func (s *service) DueSubscriptions(ctx context.Context, asOf time.Time) ([]models.RecurringBilling, error) {
	return s.repo.ListDue(ctx, asOf)
}

func (s *service) RunCycle(ctx context.Context, billing *models.RecurringBilling, token *models.PaymentToken) models.ChargeResult {
	if billing == nil {
		return cycleRejected(apperrors.ErrSubscriptionNotFound)
	}
	if !billing.IsActive() {
		return cycleRejected(apperrors.ErrSubscriptionInactive)
	}

	now := s.now()
	// An unknown frequency must fail before money moves.
	next, err := Advance(now, billing.Frequency)
	if err != nil {
		s.log.Errorf("subscription %d: %v", billing.ID, err)
		return cycleRejected(err)
	}
	if token == nil {
		return cycleRejected(apperrors.ErrTokenNotFound)
	}

	result := s.charger.Charge(ctx, orderFor(billing, now), models.PaymentMethod{Stored: token}, 1)
	if !result.Success {
		s.log.Warnf("subscription %d charge failed: %s", billing.ID, result.Error)
		return result
	}

	if err := s.repo.UpdatePaymentDates(ctx, billing.ID, now, next); err != nil {
		s.log.Criticalf("subscription %d was charged (transaction %s) but its dates were not advanced: %v",
			billing.ID, result.TransactionID, err)
		if result.Err == nil {
			result.Err = apperrors.ErrPersistence.Wrap(err)
		}
		return result
	}
	billing.LastPaymentDate = &now
	billing.NextPaymentDate = &next
	s.log.Infof("subscription %d charged, next payment %s", billing.ID, next.Format(time.RFC3339))
	return result
}

func cycleRejected(err error) models.ChargeResult {
	return models.ChargeResult{
		Error:   apperrors.Message(err, err.Error()),
		Outcome: models.OutcomeRejected,
		Err:     err,
	}
}

func orderFor(b *models.RecurringBilling, now time.Time) models.Order {
	name := b.Description
	if name == "" {
		name = defaultItemName
	}
	return models.Order{
		OrderID:     fmt.Sprintf("SUB-%d-%s", b.ID, now.UTC().Format("20060102")),
		UserID:      b.UserID,
		Total:       b.Amount,
		Currency:    b.Currency,
		VATRate:     b.VATRate,
		Description: fmt.Sprintf("Recurring payment for subscription #%d", b.ID),
		Items: []models.OrderItem{
			{Name: name, Price: b.Amount, Quantity: 1},
		},
		Customer: models.Customer{
			Name:  b.CustomerName,
			Email: b.CustomerEmail,
		},
		SubscriptionID: b.ID,
	}
}

func (s *service) Cancel(ctx context.Context, id uint, ownerID *uint) (bool, error) {
	if ownerID != nil {
		if _, err := s.GetSubscription(ctx, id, ownerID); err != nil {
			if errors.Is(err, apperrors.ErrSubscriptionNotFound) {
				return false, nil
			}
			return false, err
		}
	}
	found, err := s.repo.Cancel(ctx, id, s.now())
	if err != nil {
		return false, err
	}
	if found {
		s.log.Infof("subscription %d cancelled", id)
	}
	return found, nil
}
