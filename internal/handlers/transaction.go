package handlers

import (
	"time"

	"sumitpay/internal/models"
	"sumitpay/internal/services/transaction"
	"sumitpay/internal/utils/logger"
	"sumitpay/internal/utils/pagination"
	"sumitpay/internal/utils/response"

	"github.com/gofiber/fiber/v2"
)

type TransactionHandler struct {
	transactions transaction.Service
	log          *logger.Logger
}

func NewTransactionHandler(transactions transaction.Service, log *logger.Logger) *TransactionHandler {
	return &TransactionHandler{transactions: transactions, log: log}
}

// List pages through the ledger, newest first. ?order_id= narrows the
// result to one order reference.
func (h *TransactionHandler) List(c *fiber.Ctx) error {
	claims, err := currentClaims(c)
	if err != nil {
		return response.Unauthorized(c)
	}

	if orderID := c.Query("order_id"); orderID != "" {
		rows, err := h.transactions.ListByOrder(c.UserContext(), orderID)
		if err != nil {
			h.log.Errorf("transactions for order %s: %v", orderID, err)
			return response.ServerError(c, "Failed to retrieve transactions")
		}
		return response.Success(c, "Transactions retrieved", visibleTo(claims, rows))
	}

	if !claims.IsAdmin() {
		return response.Error(c, fiber.StatusForbidden, "Insufficient permissions")
	}
	p := pagination.ParseFromRequest(c)
	rows, total, err := h.transactions.ListRecent(c.UserContext(), p.Limit, p.Offset)
	if err != nil {
		h.log.Errorf("transaction history: %v", err)
		return response.ServerError(c, "Failed to retrieve transactions")
	}
	p.Total = total
	return c.JSON(pagination.Response(p, rows))
}

func (h *TransactionHandler) Get(c *fiber.Ctx) error {
	claims, err := currentClaims(c)
	if err != nil {
		return response.Unauthorized(c)
	}
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return response.BadRequest(c, "Invalid transaction ID")
	}

	tx, err := h.transactions.GetTransaction(c.UserContext(), uint(id))
	if err != nil {
		return writeError(c, err, "Failed to retrieve transaction")
	}
	if !claims.IsAdmin() && tx.UserID != claims.UserID {
		return response.NotFound(c, "Transaction not found")
	}
	return response.Success(c, "Transaction retrieved", tx)
}

// Stats aggregates counts and volume per status. ?days= sets the window.
func (h *TransactionHandler) Stats(c *fiber.Ctx) error {
	days := c.QueryInt("days", 30)
	if days < 1 {
		days = 30
	}
	stats, err := h.transactions.Stats(c.UserContext(), time.Duration(days)*24*time.Hour)
	if err != nil {
		h.log.Errorf("transaction stats: %v", err)
		return response.ServerError(c, "Failed to retrieve transaction stats")
	}
	return response.Success(c, "Transaction stats retrieved", stats)
}

func visibleTo(claims *models.UserClaims, rows []models.Transaction) []models.Transaction {
	if claims.IsAdmin() {
		return rows
	}
	out := make([]models.Transaction, 0, len(rows))
	for _, r := range rows {
		if r.UserID == claims.UserID {
			out = append(out, r)
		}
	}
	return out
}
