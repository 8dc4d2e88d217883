package middleware

import (
	"encoding/json"
	"fmt"

	"sumitpay/internal/config"
	apperrors "sumitpay/internal/errors"
	"sumitpay/internal/gateway"
	"sumitpay/internal/utils/response"

	"github.com/gofiber/fiber/v2"
)

// RequireGatewayConfig answers 503 before any payment work when the gateway
// credentials are missing.
func RequireGatewayConfig(cfg config.Configuration) fiber.Handler {
	configured := cfg.RequireCredentials() == nil
	return func(c *fiber.Ctx) error {
		if !configured {
			return response.ServiceUnavailable(c, apperrors.ErrNotConfigured.Message)
		}
		return c.Next()
	}
}

// RequireFields rejects POST bodies missing any of fields with 422.
func RequireFields(fields ...string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if c.Method() != fiber.MethodPost {
			return c.Next()
		}
		var body map[string]json.RawMessage
		if err := json.Unmarshal(c.Body(), &body); err != nil {
			return response.BadRequest(c, "Invalid request body")
		}
		for _, f := range fields {
			if _, ok := body[f]; !ok {
				return response.Error(c, fiber.StatusUnprocessableEntity, fmt.Sprintf("Missing required field: %s", f))
			}
		}
		return c.Next()
	}
}

// ClientIP forwards the caller's address to the gateway client.
func ClientIP() fiber.Handler {
	return func(c *fiber.Ctx) error {
		c.SetUserContext(gateway.WithClientIP(c.UserContext(), c.IP()))
		return c.Next()
	}
}
