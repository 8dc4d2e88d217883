// Package middleware provides the fiber middleware of the payment API:
// bearer authentication, gateway configuration gating, required-field
// checks, and request metrics.
package middleware

import (
	"strings"

	"sumitpay/internal/utils"
	"sumitpay/internal/utils/logger"
	"sumitpay/internal/utils/response"

	"github.com/gofiber/fiber/v2"
)

// AuthMiddleware validates bearer tokens issued by the host application and
// stores the caller's claims in the request context.
type AuthMiddleware struct {
	secret string
	log    *logger.Logger
}

func NewAuthMiddleware(secret string, log *logger.Logger) *AuthMiddleware {
	return &AuthMiddleware{
		secret: secret,
		log:    log,
	}
}

func (m *AuthMiddleware) Handler(c *fiber.Ctx) error {
	authHeader := c.Get(fiber.HeaderAuthorization)
	if authHeader == "" {
		return response.Error(c, fiber.StatusUnauthorized, "missing authorization header")
	}
	if !strings.HasPrefix(authHeader, "Bearer ") {
		return response.Error(c, fiber.StatusUnauthorized, "invalid authorization format")
	}

	claims, err := utils.ParseToken(m.secret, strings.TrimPrefix(authHeader, "Bearer "))
	if err != nil {
		m.log.Debugf("token validation error: %v", err)
		return response.Error(c, fiber.StatusUnauthorized, "invalid token")
	}

	utils.SetUserClaims(c, claims)
	return c.Next()
}

// RequireAdmin must run after Handler.
func RequireAdmin(c *fiber.Ctx) error {
	claims, err := utils.GetUserClaims(c)
	if err != nil {
		return response.Unauthorized(c)
	}
	if !claims.IsAdmin() {
		return response.Error(c, fiber.StatusForbidden, "Insufficient permissions")
	}
	return c.Next()
}
