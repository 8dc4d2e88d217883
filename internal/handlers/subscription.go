package handlers

import (
	"sumitpay/internal/services/recurring"
	"sumitpay/internal/utils/response"
	"sumitpay/internal/utils/validation"

	"github.com/gofiber/fiber/v2"
)

type SubscriptionHandler struct {
	billing recurring.Service
}

func NewSubscriptionHandler(billing recurring.Service) *SubscriptionHandler {
	return &SubscriptionHandler{billing: billing}
}

func (h *SubscriptionHandler) Create(c *fiber.Ctx) error {
	claims, err := currentClaims(c)
	if err != nil {
		return response.Unauthorized(c)
	}

	var req recurring.CreateSubscriptionRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if errs := validation.Struct(req); len(errs) > 0 {
		return response.ValidationError(c, errs)
	}
	req.UserID = claims.UserID

	sub, err := h.billing.CreateSubscription(c.UserContext(), req)
	if err != nil {
		return writeError(c, err, "Failed to create subscription")
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success": true,
		"data":    sub,
	})
}

func (h *SubscriptionHandler) List(c *fiber.Ctx) error {
	claims, err := currentClaims(c)
	if err != nil {
		return response.Unauthorized(c)
	}
	subs, err := h.billing.ListSubscriptions(c.UserContext(), claims.UserID)
	if err != nil {
		return response.ServerError(c, "Failed to fetch subscriptions")
	}
	return response.Success(c, "Subscriptions retrieved", subs)
}

func (h *SubscriptionHandler) Get(c *fiber.Ctx) error {
	claims, err := currentClaims(c)
	if err != nil {
		return response.Unauthorized(c)
	}
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return response.BadRequest(c, "Invalid subscription ID")
	}

	sub, err := h.billing.GetSubscription(c.UserContext(), uint(id), ownerScope(claims))
	if err != nil {
		return writeError(c, err, "Failed to fetch subscription")
	}
	return response.Success(c, "Subscription retrieved", sub)
}

func (h *SubscriptionHandler) Cancel(c *fiber.Ctx) error {
	claims, err := currentClaims(c)
	if err != nil {
		return response.Unauthorized(c)
	}
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return response.BadRequest(c, "Invalid subscription ID")
	}

	found, err := h.billing.Cancel(c.UserContext(), uint(id), ownerScope(claims))
	if err != nil {
		return response.ServerError(c, "Failed to cancel subscription")
	}
	if !found {
		return response.NotFound(c, "Subscription not found")
	}
	return response.Success(c, "Subscription cancelled", nil)
}
