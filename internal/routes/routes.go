// Package routes wires the payment API handlers to their paths and
// middleware.
package routes

import (
	"net/http"

	"sumitpay/internal/config"
	"sumitpay/internal/handlers"
	"sumitpay/internal/middleware"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
)

// Handlers groups everything SetupRoutes mounts.
type Handlers struct {
	Health        *handlers.HealthHandler
	Payments      *handlers.PaymentHandler
	Tokens        *handlers.TokenHandler
	Subscriptions *handlers.SubscriptionHandler
	Transactions  *handlers.TransactionHandler
	Admin         *handlers.AdminHandler
}

// SetupRoutes mounts the API. metricsHandler may be nil to leave /metrics
// unmounted.
func SetupRoutes(app *fiber.App, cfg config.Configuration, h Handlers, auth *middleware.AuthMiddleware, metricsHandler http.Handler) {
	app.Get("/health", h.Health.HealthCheck)
	if metricsHandler != nil {
		app.Get("/metrics", adaptor.HTTPHandler(metricsHandler))
	}

	api := app.Group("/api")

	// The hosted payment page sends the customer back here without a bearer
	// token.
	api.Get("/payments/redirect", h.Payments.RedirectCallback)

	gatewayReady := middleware.RequireGatewayConfig(cfg)

	payments := api.Group("/payments", auth.Handler, gatewayReady, middleware.ClientIP())
	payments.Post("/", middleware.RequireFields("amount", "currency"), h.Payments.Charge)
	payments.Post("/refund", middleware.RequireAdmin, h.Payments.Refund)

	tokens := api.Group("/tokens", auth.Handler)
	tokens.Get("/", h.Tokens.List)
	tokens.Post("/", gatewayReady, h.Tokens.Create)
	tokens.Post("/:id/default", h.Tokens.SetDefault)
	tokens.Delete("/:id", h.Tokens.Delete)

	subs := api.Group("/subscriptions", auth.Handler)
	subs.Get("/", h.Subscriptions.List)
	subs.Post("/", h.Subscriptions.Create)
	subs.Get("/:id", h.Subscriptions.Get)
	subs.Post("/:id/cancel", h.Subscriptions.Cancel)

	txs := api.Group("/transactions", auth.Handler)
	txs.Get("/", h.Transactions.List)
	txs.Get("/stats", middleware.RequireAdmin, h.Transactions.Stats)
	txs.Get("/:id", h.Transactions.Get)

	admin := api.Group("/admin", auth.Handler, middleware.RequireAdmin)
	admin.Post("/credentials/verify", h.Admin.VerifyCredentials)
	admin.Post("/subscriptions/run", gatewayReady, h.Admin.RunRecurring)
}
