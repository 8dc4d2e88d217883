package handlers

import (
	"errors"
	"strconv"
	"strings"
	"time"

	"sumitpay/internal/models"
	"sumitpay/internal/repositories/cache"
	"sumitpay/internal/services/payment"
	"sumitpay/internal/services/token"
	"sumitpay/internal/utils/logger"
	"sumitpay/internal/utils/response"
	"sumitpay/internal/utils/validation"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
)

// orderLockMargin covers the ledger writes that follow the gateway call.
const orderLockMargin = time.Minute

// OrderLockTTL is the lease held on an order while it is charged. It
// outlives the gateway timeout so a slow charge keeps its lock.
func OrderLockTTL(gatewayTimeout time.Duration) time.Duration {
	return gatewayTimeout + orderLockMargin
}

type PaymentHandler struct {
	payments payment.Service
	tokens   token.Service
	locker   cache.Locker
	lockTTL  time.Duration
	log      *logger.Logger
}

func NewPaymentHandler(payments payment.Service, tokens token.Service, locker cache.Locker, lockTTL time.Duration, log *logger.Logger) *PaymentHandler {
	if lockTTL <= 0 {
		lockTTL = OrderLockTTL(0)
	}
	return &PaymentHandler{
		payments: payments,
		tokens:   tokens,
		locker:   locker,
		lockTTL:  lockTTL,
		log:      log,
	}
}

type chargeInput struct {
	models.Order
	PaymentMethod models.PaymentMethod `json:"payment_method"`
	Installments  int                  `json:"installments"`
}

// Charge runs one payment for the caller. Only one charge per order
// reference may be in flight at a time.
func (h *PaymentHandler) Charge(c *fiber.Ctx) error {
	claims, err := currentClaims(c)
	if err != nil {
		return response.Unauthorized(c)
	}

	var input chargeInput
	if err := c.BodyParser(&input); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if errs := validation.Struct(input.Order); len(errs) > 0 {
		return response.ValidationError(c, errs)
	}
	if !input.Total.IsPositive() {
		return response.Error(c, fiber.StatusUnprocessableEntity, "Amount must be greater than zero")
	}

	order := input.Order
	order.UserID = claims.UserID
	order.Language = requestLanguage(c)

	method, err := h.resolveToken(c, input.PaymentMethod, claims.UserID)
	if err != nil {
		return writeError(c, err, "Failed to resolve payment token")
	}

	release, ok, err := h.locker.Acquire(c.UserContext(), cache.OrderLockKey(order.OrderID), h.lockTTL)
	if err != nil {
		h.log.Errorf("order lock for %s failed: %v", order.OrderID, err)
		return response.ServerError(c, "Failed to process payment")
	}
	if !ok {
		return response.Error(c, fiber.StatusConflict, "A payment for this order is already in progress")
	}
	defer release()

	result := h.payments.Charge(c.UserContext(), order, method, input.Installments)
	if result.Success {
		if result.Err != nil {
			h.log.Warnf("order %s charged as %s without a local record", order.OrderID, result.TransactionID)
		}
		return c.JSON(result)
	}
	var verrs validation.Errors
	if errors.As(result.Err, &verrs) {
		return response.ValidationError(c, verrs)
	}
	return c.Status(chargeStatus(result)).JSON(result)
}

// resolveToken loads the stored token a charge refers to. A numeric token
// value is a local token ID; "new" means raw card fields follow.
func (h *PaymentHandler) resolveToken(c *fiber.Ctx, m models.PaymentMethod, ownerID uint) (models.PaymentMethod, error) {
	if m.TokenID == 0 && m.Token != "" && m.Token != models.NewTokenSentinel {
		if id, err := strconv.ParseUint(m.Token, 10, 64); err == nil {
			m.TokenID = uint(id)
			m.Token = ""
		}
	}
	if m.TokenID == 0 {
		return m, nil
	}
	stored, err := h.tokens.GetToken(c.UserContext(), m.TokenID, &ownerID)
	if err != nil {
		return m, err
	}
	m.Stored = stored
	return m, nil
}

type refundInput struct {
	TransactionID string          `json:"transaction_id" validate:"required"`
	Amount        decimal.Decimal `json:"amount"`
}

func (h *PaymentHandler) Refund(c *fiber.Ctx) error {
	var input refundInput
	if err := c.BodyParser(&input); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if errs := validation.Struct(input); len(errs) > 0 {
		return response.ValidationError(c, errs)
	}

	// One refund per charge may be in flight.
	release, ok, err := h.locker.Acquire(c.UserContext(), cache.RefundLockKey(input.TransactionID), h.lockTTL)
	if err != nil {
		h.log.Errorf("refund lock for %s failed: %v", input.TransactionID, err)
		return response.ServerError(c, "Failed to process refund")
	}
	if !ok {
		return response.Error(c, fiber.StatusConflict, "A refund for this transaction is already in progress")
	}
	defer release()

	result := h.payments.Refund(c.UserContext(), input.TransactionID, input.Amount)
	if !result.Success {
		return writeError(c, result.Err, result.Error)
	}
	return c.JSON(result)
}

// RedirectCallback answers the customer's return from the hosted payment
// page.
func (h *PaymentHandler) RedirectCallback(c *fiber.Ctx) error {
	orderID := c.Query("OG-OrderID")
	if orderID == "" {
		return response.BadRequest(c, "Missing order reference")
	}
	if c.Query("Success") != "true" {
		h.log.Warnf("redirect payment for order %s was not completed", orderID)
		return c.Status(fiber.StatusPaymentRequired).JSON(fiber.Map{
			"success":  false,
			"order_id": orderID,
			"error":    "Payment was not completed",
		})
	}
	return c.JSON(fiber.Map{
		"success":  true,
		"order_id": orderID,
	})
}

// requestLanguage returns the primary language tag of Accept-Language.
func requestLanguage(c *fiber.Ctx) string {
	lang := c.Get(fiber.HeaderAcceptLanguage)
	if i := strings.IndexAny(lang, ",;"); i >= 0 {
		lang = lang[:i]
	}
	if i := strings.Index(lang, "-"); i >= 0 {
		lang = lang[:i]
	}
	return strings.ToLower(strings.TrimSpace(lang))
}
