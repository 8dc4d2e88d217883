package utils

import (
	"errors"

	"sumitpay/internal/models"

	"github.com/gofiber/fiber/v2"
)

const claimsKey = "claims"

// GetUserClaims extracts the user claims stored by the auth middleware.
func GetUserClaims(c *fiber.Ctx) (*models.UserClaims, error) {
	v := c.Locals(claimsKey)
	if v == nil {
		return nil, errors.New("claims not found in context")
	}

	claims, ok := v.(*models.UserClaims)
	if !ok {
		return nil, errors.New("invalid claims type")
	}
	return claims, nil
}

func SetUserClaims(c *fiber.Ctx, claims *models.UserClaims) {
	c.Locals(claimsKey, claims)
}
