package handlers

import (
	"errors"

	apperrors "sumitpay/internal/errors"
	"sumitpay/internal/models"
	"sumitpay/internal/utils"
	"sumitpay/internal/utils/response"
	"sumitpay/internal/utils/validation"

	"github.com/gofiber/fiber/v2"
)

// writeError maps service errors onto HTTP statuses.
func writeError(c *fiber.Ctx, err error, fallback string) error {
	var verrs validation.Errors
	switch {
	case errors.As(err, &verrs):
		return response.ValidationError(c, verrs)
	case errors.Is(err, apperrors.ErrValidation), errors.Is(err, apperrors.ErrUnknownFrequency):
		return response.Error(c, fiber.StatusUnprocessableEntity, apperrors.Message(err, fallback))
	case errors.Is(err, apperrors.ErrNotConfigured):
		return response.ServiceUnavailable(c, apperrors.ErrNotConfigured.Message)
	case errors.Is(err, apperrors.ErrGatewayDeclined):
		return response.Error(c, fiber.StatusPaymentRequired, apperrors.Message(err, fallback))
	case apperrors.IsTransport(err):
		return response.Error(c, fiber.StatusBadGateway, apperrors.Message(err, fallback))
	case errors.Is(err, apperrors.ErrTokenNotFound),
		errors.Is(err, apperrors.ErrSubscriptionNotFound),
		errors.Is(err, apperrors.ErrNotFound):
		return response.NotFound(c, apperrors.Message(err, fallback))
	case errors.Is(err, apperrors.ErrSubscriptionInactive):
		return response.Error(c, fiber.StatusConflict, apperrors.Message(err, fallback))
	}
	return response.ServerError(c, fallback)
}

// chargeStatus picks the HTTP status for a failed charge.
func chargeStatus(result models.ChargeResult) int {
	switch result.Outcome {
	case models.OutcomeDeclined:
		return fiber.StatusPaymentRequired
	case models.OutcomeTransportFailed:
		return fiber.StatusBadGateway
	case models.OutcomeRejected:
		if errors.Is(result.Err, apperrors.ErrNotConfigured) {
			return fiber.StatusServiceUnavailable
		}
		return fiber.StatusUnprocessableEntity
	}
	return fiber.StatusInternalServerError
}

// ownerScope returns nil for admins so they can act on any owner's records.
func ownerScope(claims *models.UserClaims) *uint {
	if claims.IsAdmin() {
		return nil
	}
	id := claims.UserID
	return &id
}

func currentClaims(c *fiber.Ctx) (*models.UserClaims, error) {
	return utils.GetUserClaims(c)
}
