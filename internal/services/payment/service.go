package payment

import (
	"context"
	"errors"
	"strconv"
	"time"

	"sumitpay/internal/config"
	apperrors "sumitpay/internal/errors"
	"sumitpay/internal/gateway"
	"sumitpay/internal/models"
	"sumitpay/internal/repositories"
	"sumitpay/internal/services/notification"
	"sumitpay/internal/utils/logger"
	"sumitpay/internal/utils/validation"

	"github.com/shopspring/decimal"
)

const (
	paymentFailed = "Payment failed"
	refundFailed  = "Refund failed"
)

// noResponseText is reported for every transport failure regardless of
// what went wrong on the wire.
var noResponseText = apperrors.ErrNoResponse.Message

type service struct {
	gateway  Gateway
	txRepo   repositories.TransactionRepository
	notifier notification.Notifier
	cfg      config.Configuration
	log      *logger.Logger
	now      func() time.Time
}

type Option func(*service)

func WithClock(now func() time.Time) Option {
	return func(s *service) { s.now = now }
}

func NewService(
	gw Gateway,
	txRepo repositories.TransactionRepository,
	notifier notification.Notifier,
	cfg config.Configuration,
	log *logger.Logger,
	opts ...Option,
) Service {
	s := &service{
		gateway:  gw,
		txRepo:   txRepo,
		notifier: notifier,
		cfg:      cfg,
		log:      log,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *service) ValidatePaymentFields(method models.PaymentMethod) validation.Errors {
	return validation.PaymentFields(method, s.cfg.Payment.PCIMode, s.now())
}

func (s *service) Charge(ctx context.Context, order models.Order, method models.PaymentMethod, installments int) models.ChargeResult {
	if err := s.cfg.RequireCredentials(); err != nil {
		return rejected(err, apperrors.ErrNotConfigured.Message)
	}
	if errs := s.ValidatePaymentFields(method); len(errs) > 0 {
		return rejected(errs, errs.Error())
	}
	if errs := validation.DonationItems(order.Items, s.cfg.Features.Donations); len(errs) > 0 {
		return rejected(errs, errs.Error())
	}
	if limit := s.cfg.Payment.MaxInstallments; limit > 0 && installments > limit {
		errs := validation.Errors{{Field: "installments", Message: "Too many installments"}}
		return rejected(errs, errs.Error())
	}

	req := s.BuildChargeRequest(order, method, installments)
	resp, err := s.gateway.Send(ctx, req, gateway.PathTransaction, s.cfg.Gateway.SendClientIP)
	if err != nil {
		if !apperrors.IsTransport(err) {
			err = apperrors.ErrNoResponse.Wrap(err)
		}
		s.log.Errorf("charge for order %s got no usable response: %v", order.OrderID, err)
		s.recordFailure(ctx, order, method, nil, noResponseText)
		s.notifier.PaymentFailed(ctx, order, noResponseText)
		return models.ChargeResult{
			Error:   noResponseText,
			Outcome: models.OutcomeTransportFailed,
			Err:     err,
		}
	}

	if !resp.Succeeded() {
		msg := resp.ErrorMessage(paymentFailed)
		s.log.Warnf("charge for order %s declined: %s", order.OrderID, msg)
		s.recordFailure(ctx, order, method, resp, msg)
		s.notifier.PaymentFailed(ctx, order, msg)
		return models.ChargeResult{
			Error:   msg,
			Outcome: models.OutcomeDeclined,
			Err:     apperrors.ErrGatewayDeclined.WithMessage(msg),
		}
	}

	return s.recordSuccess(ctx, order, method, resp)
}

func rejected(err error, msg string) models.ChargeResult {
	return models.ChargeResult{
		Error:   msg,
		Outcome: models.OutcomeRejected,
		Err:     err,
	}
}

func (s *service) recordSuccess(ctx context.Context, order models.Order, method models.PaymentMethod, resp *gateway.Response) models.ChargeResult {
	d := resp.Data
	now := s.now()

	last4 := d.Last4Digits.String()
	if last4 == "" {
		last4 = method.CardLast4()
	}

	tx := s.baseTransaction(order, method)
	tx.Status = models.TransactionStatusCompleted
	tx.TransactionID = optional(d.TransactionID.String())
	tx.DocumentID = d.DocumentID.String()
	tx.CustomerID = d.CustomerID.String()
	tx.AuthNumber = d.AuthNumber.String()
	tx.CardLast4 = last4
	tx.ResponseData = resp.Payload()
	tx.ProcessedAt = &now

	result := models.ChargeResult{
		Success:       true,
		TransactionID: d.TransactionID.String(),
		DocumentID:    tx.DocumentID,
		CustomerID:    tx.CustomerID,
		AuthNumber:    tx.AuthNumber,
		CardLast4:     last4,
		Outcome:       models.OutcomeSucceeded,
	}

	if err := s.txRepo.Create(ctx, tx); err != nil {
		s.log.Criticalf("gateway captured order %s as transaction %s but the record was not saved: %v",
			order.OrderID, result.TransactionID, err)
		result.Err = apperrors.ErrPersistence.Wrap(err)
	} else {
		result.RecordID = tx.ID
	}

	s.notifier.PaymentProcessed(ctx, tx, tx.ResponseData)
	return result
}

func (s *service) recordFailure(ctx context.Context, order models.Order, method models.PaymentMethod, resp *gateway.Response, msg string) {
	tx := s.baseTransaction(order, method)
	tx.Status = models.TransactionStatusFailed
	tx.CardLast4 = method.CardLast4()
	tx.ErrorMessage = &msg
	tx.ResponseData = resp.Payload()

	if err := s.txRepo.Create(ctx, tx); err != nil {
		s.log.Errorf("failed to record failed charge for order %s: %v", order.OrderID, err)
	}
}

func (s *service) baseTransaction(order models.Order, method models.PaymentMethod) *models.Transaction {
	tx := &models.Transaction{
		UserID:   order.UserID,
		OrderID:  optional(order.OrderID),
		Amount:   order.Total,
		Currency: order.Currency,
	}
	if tx.Currency == "" {
		tx.Currency = s.defaultCurrency()
	}
	if method.Stored != nil {
		tx.CardBrand = method.Stored.CardBrand
	}
	return tx
}

func (s *service) Refund(ctx context.Context, transactionID string, amount decimal.Decimal) models.RefundResult {
	if err := s.cfg.RequireCredentials(); err != nil {
		return models.RefundResult{Error: apperrors.ErrNotConfigured.Message, Err: err}
	}
	if transactionID == "" || !amount.IsPositive() {
		err := apperrors.ErrValidation.WithMessage("A transaction ID and a positive amount are required")
		return models.RefundResult{Error: err.Message, Err: err}
	}

	original, err := s.txRepo.GetByGatewayID(ctx, transactionID)
	if err != nil && !errors.Is(err, apperrors.ErrNotFound) {
		s.log.Errorf("refund lookup of %s failed: %v", transactionID, err)
		return models.RefundResult{Error: refundFailed, Err: err}
	}
	if original != nil {
		refunded, err := s.txRepo.SumRefunded(ctx, transactionID)
		if err != nil {
			s.log.Errorf("refund total of %s failed: %v", transactionID, err)
			return models.RefundResult{Error: refundFailed, Err: err}
		}
		if amount.Add(refunded).GreaterThan(original.Amount) {
			err := apperrors.ErrValidation.WithMessage("Refund amount exceeds the original charge")
			return models.RefundResult{Error: err.Message, Err: err}
		}
	}

	resp, err := s.gateway.Send(ctx, refundRequest{
		Credentials: gateway.Credentials{
			CompanyID: s.cfg.Credentials.CompanyID,
			APIKey:    s.cfg.Credentials.APIKey,
		},
		TransactionID: transactionID,
		Amount:        money(amount),
	}, gateway.PathRefund, false)
	if err != nil {
		s.log.Errorf("refund of %s got no usable response: %v", transactionID, err)
		return models.RefundResult{Error: noResponseText, Err: err}
	}
	if !resp.Succeeded() {
		msg := resp.UserErrorMessage
		if msg == "" {
			msg = refundFailed
		}
		s.log.Warnf("refund of %s declined: %s", transactionID, msg)
		return models.RefundResult{Error: msg, Err: apperrors.ErrGatewayDeclined.WithMessage(msg)}
	}

	refundID := resp.Data.RefundID.String()
	now := s.now()
	row := &models.Transaction{
		Amount:              amount,
		Currency:            s.defaultCurrency(),
		Status:              models.TransactionStatusRefunded,
		TransactionID:       optional(refundID),
		ParentTransactionID: &transactionID,
		ResponseData:        resp.Payload(),
		ProcessedAt:         &now,
	}
	if original != nil {
		row.UserID = original.UserID
		row.OrderID = original.OrderID
		row.Currency = original.Currency
		row.CardLast4 = original.CardLast4
		row.CardBrand = original.CardBrand
	}

	result := models.RefundResult{Success: true, RefundID: refundID}
	if err := s.txRepo.Create(ctx, row); err != nil {
		s.log.Criticalf("gateway refunded %s as %s but the record was not saved: %v", transactionID, refundID, err)
		result.Err = apperrors.ErrPersistence.Wrap(err)
		return result
	}
	result.RecordID = row.ID
	s.log.Infof("refunded %s %s of transaction %s", amount.StringFixed(2), row.Currency, transactionID)
	return result
}

func (s *service) defaultCurrency() string {
	if c := s.cfg.Payment.DefaultCurrency; c != "" {
		return c
	}
	return "ILS"
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func itoa(i int) string {
	return strconv.Itoa(i)
}
