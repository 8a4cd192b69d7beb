package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"shop-management-backend/cache"
	"shop-management-backend/config"
	"shop-management-backend/controllers"
	"shop-management-backend/database"
	"shop-management-backend/messaging"
	"shop-management-backend/middlewares"
	"shop-management-backend/repositories"
	"shop-management-backend/routes"
	"shop-management-backend/services"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "err", err)
		os.Exit(1)
	}
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.LogLevel()})))

	// ---- Database
	db, err := database.Connect(cfg)
	if err != nil {
		slog.Error("failed to connect to database", "err", err)
		os.Exit(1)
	}
	if err := database.Migrate(db); err != nil {
		slog.Error("failed to migrate database", "err", err)
		os.Exit(1)
	}
	// invoice numbers come from their own pool, never from the one holding request transactions
	seqDB, err := database.ConnectSequencer(cfg)
	if err != nil {
		slog.Error("failed to connect sequencer pool", "err", err)
		os.Exit(1)
	}

	// ---- Optional infrastructure
	dashboardCache, err := cache.New(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	if err != nil {
		slog.Warn("redis unavailable, dashboard cache disabled", "addr", cfg.Redis.Addr, "err", err)
	}
	var publisher messaging.Publisher = messaging.Noop{}
	if len(cfg.Kafka.Brokers) > 0 {
		publisher = messaging.NewKafkaPublisher(cfg.Kafka.Brokers)
		slog.Info("publishing voicer events", "brokers", cfg.Kafka.Brokers, "topic", cfg.Kafka.Topic)
	}

	auth, err := middlewares.NewAuth(cfg.JWT.Secret, cfg.TokenTTL())
	if err != nil {
		slog.Error("failed to configure auth", "err", err)
		os.Exit(1)
	}

	// ---- Services
	cash := services.NewCashService(nil)
	dashboards := services.NewDashboardService()
	ledger := services.NewLedgerService(cash, dashboards, nil)
	sequencer := repositories.NewGormSequencer(seqDB)

	h := &controllers.Controller{
		DB:         db,
		Auth:       auth,
		Sequencer:  sequencer,
		Sales:      services.NewSaleService(sequencer, ledger, dashboards, nil),
		Ledger:     ledger,
		Stock:      services.NewStockService(ledger, dashboards, nil),
		Cash:       cash,
		Dashboards: dashboards,
		Cache:      dashboardCache,
		Publisher:  publisher,
		EventTopic: cfg.Kafka.Topic,
	}

	// ---- Fiber app with global error handler + body limit
	app := fiber.New(fiber.Config{
		ErrorHandler: middlewares.ErrorHandler,
		BodyLimit:    cfg.Server.BodyLimitMB * 1024 * 1024,
	})
	app.Use(recover.New())
	app.Use(logger.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.Server.AllowedOrigins,
		AllowCredentials: false, // using Bearer tokens, not cookies
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization, Idempotency-Key",
	}))
	app.Use(limiter.New(limiter.Config{
		Max:        cfg.RateLimit.Max,
		Expiration: cfg.RateLimitWindow(),
		Next: func(c *fiber.Ctx) bool {
			return c.Path() == "/metrics" || c.Path() == "/healthz"
		},
	}))
	app.Use(middlewares.Metrics())

	routes.Register(app, h, db, cfg.RequestTimeout())

	// ---- Start, stop on SIGINT/SIGTERM
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		addr := ":" + strconv.Itoa(cfg.Server.Port)
		slog.Info("API server starting", "addr", addr)
		if err := app.Listen(addr); err != nil {
			slog.Error("server stopped", "err", err)
			stop()
		}
	}()

	<-ctx.Done()
	slog.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		slog.Error("server shutdown failed", "err", err)
	}
	if err := publisher.Close(); err != nil {
		slog.Warn("publisher close failed", "err", err)
	}
	if err := dashboardCache.Close(); err != nil {
		slog.Warn("cache close failed", "err", err)
	}
	if err := database.Close(db); err != nil {
		slog.Warn("database close failed", "err", err)
	}
	if err := database.Close(seqDB); err != nil {
		slog.Warn("sequencer pool close failed", "err", err)
	}
}
