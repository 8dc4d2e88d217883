// Package main is the entry point of the payment API server.
package main

import (
	"context"
	"errors"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"sumitpay/internal/config"
	"sumitpay/internal/gateway"
	"sumitpay/internal/handlers"
	"sumitpay/internal/middleware"
	"sumitpay/internal/repositories"
	"sumitpay/internal/repositories/cache"
	"sumitpay/internal/routes"
	"sumitpay/internal/scheduler"
	"sumitpay/internal/services/notification"
	"sumitpay/internal/services/payment"
	"sumitpay/internal/services/recurring"
	"sumitpay/internal/services/token"
	"sumitpay/internal/services/transaction"
	"sumitpay/internal/utils/crypto"
	"sumitpay/internal/utils/logger"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const (
	version         = "1.0.0"
	shutdownTimeout = 30 * time.Second
)

func main() {
	config.LoadEnv()

	cfg, err := config.Resolve()
	if err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	appLog := logger.New("sumitpay", logger.ParseLevel(cfg.Logging.Level), cfg.Logging.Enabled)
	if err := cfg.RequireCredentials(); err != nil {
		appLog.Warnf("%v; payment routes will answer 503", err)
	}
	if cfg.Security.JWTSecret == "" {
		log.Fatal("JWT_SECRET must be set")
	}

	db, err := repositories.Open(cfg.Database)
	if err != nil {
		log.Fatalf("Database: %v", err)
	}
	defer func() {
		if err := repositories.Close(db); err != nil {
			appLog.Warnf("failed to close database connection: %v", err)
		}
	}()
	if err := repositories.Ping(context.Background(), db); err != nil {
		log.Fatalf("Failed to ping database: %v", err)
	}
	if err := repositories.Migrate(db); err != nil {
		log.Fatalf("Failed to migrate database: %v", err)
	}
	appLog.Infof("connected to database with connection pooling")

	cipher, err := crypto.NewTokenCipher(cfg.Security.TokenEncryptionKey)
	if err != nil {
		log.Fatalf("Token encryption: %v", err)
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	checks := map[string]handlers.Check{
		"database": func(ctx context.Context) error { return repositories.Ping(ctx, db) },
	}

	var locker cache.Locker
	if cfg.Redis.Enabled() {
		rdb := cache.NewRedisClient(cfg.Redis)
		defer rdb.Close()
		if err := cache.HealthCheck(context.Background(), rdb); err != nil {
			log.Fatalf("Redis: %v", err)
		}
		locker = cache.NewRedisLocker(rdb, appLog.With("lock"))
		checks["redis"] = func(ctx context.Context) error { return cache.HealthCheck(ctx, rdb) }
		appLog.Infof("using redis locks at %s:%s", cfg.Redis.Host, cfg.Redis.Port)
	} else {
		locker = cache.NewMemoryLocker()
		appLog.Warnf("REDIS_HOST not set; locks are local to this process")
	}

	dispatcher := notification.NewDispatcher(appLog.With("events"), reg, 256)
	dispatcher.Subscribe(notification.LogListener(appLog.With("payments")))

	gw := gateway.NewClient(cfg, appLog.With("gateway"), gateway.WithMetrics(gateway.NewMetrics(reg)))

	txRepo := repositories.NewTransactionRepository(db)
	tokenRepo := repositories.NewPaymentTokenRepository(db, cipher)
	billingRepo := repositories.NewRecurringBillingRepository(db)

	tokenService := token.NewService(tokenRepo, gw, cfg, appLog.With("tokens"))
	paymentService := payment.NewService(gw, txRepo, dispatcher, cfg, appLog.With("payments"))
	billingService := recurring.NewService(billingRepo, tokenService, paymentService, appLog.With("recurring"))
	transactionService := transaction.NewService(txRepo)

	// Leases outlive the slowest gateway call they guard.
	lockTTL := handlers.OrderLockTTL(cfg.Gateway.Timeout)

	var sched *scheduler.RecurringScheduler
	var runner handlers.RecurringRunner
	if cfg.Features.RecurringBilling {
		sched = scheduler.NewRecurringScheduler(scheduler.Config{
			Schedule:    cfg.Features.RecurringSchedule,
			Concurrency: cfg.Features.RecurringConcurrency,
			LockTTL:     lockTTL,
		}, billingService, tokenService, locker, appLog.With("scheduler"), reg)
		runner = sched
	}

	app := fiber.New(fiber.Config{
		AppName:      "sumitpay " + version,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: cfg.Gateway.Timeout + 10*time.Second,
	})

	httpMetrics := middleware.NewHTTPMetrics(reg)
	app.Use(recover.New())
	app.Use(requestid.New(requestid.Config{Generator: uuid.NewString}))
	app.Use(cors.New(cors.Config{
		AllowOrigins: cfg.Server.AllowOrigins,
		AllowHeaders: "Origin, Content-Type, Accept, Authorization, Accept-Language",
		AllowMethods: "GET,POST,DELETE",
	}))
	app.Use(fiberlogger.New(fiberlogger.Config{
		Format: "[${time}] ${locals:requestid} ${status} - ${latency} ${method} ${path}\n",
	}))
	app.Use(httpMetrics.TrackMetrics())
	app.Use("/api/payments", limiter.New(limiter.Config{
		Max:        30,
		Expiration: 1 * time.Minute,
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"success": false,
				"error":   "Too many requests. Please try again later.",
			})
		},
	}))

	routes.SetupRoutes(app, cfg, routes.Handlers{
		Health:        handlers.NewHealthHandler(version, checks),
		Payments:      handlers.NewPaymentHandler(paymentService, tokenService, locker, lockTTL, appLog.With("http")),
		Tokens:        handlers.NewTokenHandler(tokenService),
		Subscriptions: handlers.NewSubscriptionHandler(billingService),
		Transactions:  handlers.NewTransactionHandler(transactionService, appLog.With("http")),
		Admin:         handlers.NewAdminHandler(cfg, gw, runner, appLog.With("admin")),
	}, middleware.NewAuthMiddleware(cfg.Security.JWTSecret, appLog.With("auth")),
		promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))

	if sched != nil {
		if err := sched.Start(); err != nil {
			log.Fatalf("Scheduler: %v", err)
		}
	}

	go func() {
		if err := app.Listen(":" + cfg.Server.Port); err != nil {
			appLog.Errorf("server stopped: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit
	appLog.Infof("shutting down")

	shutdown(app, sched, dispatcher, appLog)
}

func shutdown(app *fiber.App, sched *scheduler.RecurringScheduler, dispatcher *notification.Dispatcher, appLog *logger.Logger) {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := app.ShutdownWithContext(ctx); err != nil {
		appLog.Warnf("http shutdown: %v", err)
	}
	if sched != nil {
		if err := sched.Stop(ctx); err != nil && !errors.Is(err, context.DeadlineExceeded) {
			appLog.Warnf("scheduler shutdown: %v", err)
		}
	}
	if err := dispatcher.Close(ctx); err != nil {
		appLog.Warnf("event dispatcher shutdown: %v", err)
	}
}
