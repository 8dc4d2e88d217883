package handlers

import (
	"context"
	"errors"

	"sumitpay/internal/config"
	apperrors "sumitpay/internal/errors"
	"sumitpay/internal/scheduler"
	"sumitpay/internal/utils/logger"
	"sumitpay/internal/utils/response"

	"github.com/gofiber/fiber/v2"
)

// CredentialVerifier checks gateway credentials against the live API.
type CredentialVerifier interface {
	VerifyCredentials(ctx context.Context, companyID, apiKey string) error
	VerifyPublicCredentials(ctx context.Context, companyID, publicKey string) error
}

// RecurringRunner triggers a billing pass outside the cron schedule.
type RecurringRunner interface {
	RunDue(ctx context.Context) (scheduler.Summary, error)
}

type AdminHandler struct {
	cfg      config.Configuration
	verifier CredentialVerifier
	runner   RecurringRunner
	log      *logger.Logger
}

// NewAdminHandler accepts a nil runner when recurring billing is disabled.
func NewAdminHandler(cfg config.Configuration, verifier CredentialVerifier, runner RecurringRunner, log *logger.Logger) *AdminHandler {
	return &AdminHandler{
		cfg:      cfg,
		verifier: verifier,
		runner:   runner,
		log:      log,
	}
}

type credentialCheck struct {
	Valid bool   `json:"valid"`
	Error string `json:"error,omitempty"`
}

// VerifyCredentials runs the private and, when configured, public key
// checks with the configured company ID.
func (h *AdminHandler) VerifyCredentials(c *fiber.Ctx) error {
	creds := h.cfg.Credentials
	if err := h.cfg.RequireCredentials(); err != nil {
		return response.ServiceUnavailable(c, apperrors.ErrNotConfigured.Message)
	}

	result := fiber.Map{
		"api_key": check(h.verifier.VerifyCredentials(c.UserContext(), creds.CompanyID, creds.APIKey)),
	}
	if creds.APIPublicKey != "" {
		result["public_key"] = check(h.verifier.VerifyPublicCredentials(c.UserContext(), creds.CompanyID, creds.APIPublicKey))
	}
	return response.Success(c, "Credentials checked", result)
}

func check(err error) credentialCheck {
	if err == nil {
		return credentialCheck{Valid: true}
	}
	return credentialCheck{Error: apperrors.Message(err, err.Error())}
}

func (h *AdminHandler) RunRecurring(c *fiber.Ctx) error {
	if h.runner == nil {
		return response.Error(c, fiber.StatusConflict, "Recurring billing is disabled")
	}
	summary, err := h.runner.RunDue(c.UserContext())
	if err != nil {
		h.log.Errorf("manual recurring billing run: %v", err)
		if errors.Is(err, scheduler.ErrRunInProgress) {
			return response.Error(c, fiber.StatusConflict, err.Error())
		}
		return response.ServerError(c, "Recurring billing run failed")
	}
	return response.Success(c, "Recurring billing run completed", summary)
}
