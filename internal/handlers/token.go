package handlers

import (
	"time"

	"sumitpay/internal/models"
	"sumitpay/internal/services/token"
	"sumitpay/internal/utils/response"

	"github.com/gofiber/fiber/v2"
)

type TokenHandler struct {
	tokens token.Service
	now    func() time.Time
}

func NewTokenHandler(tokens token.Service) *TokenHandler {
	return &TokenHandler{tokens: tokens, now: time.Now}
}

func (h *TokenHandler) Create(c *fiber.Ctx) error {
	claims, err := currentClaims(c)
	if err != nil {
		return response.Unauthorized(c)
	}

	var method models.PaymentMethod
	if err := c.BodyParser(&method); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	t, err := h.tokens.CreateToken(c.UserContext(), method, claims.UserID)
	if err != nil {
		return writeError(c, err, "Token creation failed")
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success": true,
		"data":    t.View(h.now()),
	})
}

// List returns the caller's tokens. ?active=true drops expired cards.
func (h *TokenHandler) List(c *fiber.Ctx) error {
	claims, err := currentClaims(c)
	if err != nil {
		return response.Unauthorized(c)
	}

	var tokens []models.PaymentToken
	if c.QueryBool("active") {
		tokens, err = h.tokens.ListActiveTokens(c.UserContext(), claims.UserID)
	} else {
		tokens, err = h.tokens.ListTokens(c.UserContext(), claims.UserID)
	}
	if err != nil {
		return response.ServerError(c, "Failed to fetch payment tokens")
	}

	now := h.now()
	views := make([]models.PaymentTokenView, len(tokens))
	for i := range tokens {
		views[i] = tokens[i].View(now)
	}
	return response.Success(c, "Payment tokens retrieved", views)
}

func (h *TokenHandler) SetDefault(c *fiber.Ctx) error {
	claims, err := currentClaims(c)
	if err != nil {
		return response.Unauthorized(c)
	}
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return response.BadRequest(c, "Invalid token ID")
	}

	ok, err := h.tokens.SetDefault(c.UserContext(), uint(id), claims.UserID)
	if err != nil {
		return response.ServerError(c, "Failed to update payment token")
	}
	if !ok {
		return response.NotFound(c, "Payment token not found")
	}
	return response.Success(c, "Default payment token updated", nil)
}

func (h *TokenHandler) Delete(c *fiber.Ctx) error {
	claims, err := currentClaims(c)
	if err != nil {
		return response.Unauthorized(c)
	}
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return response.BadRequest(c, "Invalid token ID")
	}

	deleted, err := h.tokens.DeleteToken(c.UserContext(), uint(id), ownerScope(claims))
	if err != nil {
		return response.ServerError(c, "Failed to delete payment token")
	}
	if !deleted {
		return response.NotFound(c, "Payment token not found")
	}
	return response.Success(c, "Payment token deleted", nil)
}
