package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofrs/flock"
	"go.uber.org/zap"

	"github.com/refstars/bot/internal/config"
	"github.com/refstars/bot/internal/handler"
	"github.com/refstars/bot/internal/logger"
	"github.com/refstars/bot/internal/repository"
	"github.com/refstars/bot/internal/service"
	"github.com/refstars/bot/internal/telegram"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	zl, err := logger.New(cfg.Log)
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer func() { _ = zl.Sync() }()

	// Two pollers on one token steal each other's updates.
	lock := flock.New(cfg.LockFile)
	locked, err := lock.TryLock()
	if err != nil {
		zl.Fatal("Failed to acquire instance lock", zap.String("path", cfg.LockFile), zap.Error(err))
	}
	if !locked {
		zl.Fatal("Another instance is already running", zap.String("path", cfg.LockFile))
	}
	defer func() { _ = lock.Unlock() }()

	// Database
	if err := repository.Migrate(cfg.Database.MigrationURL()); err != nil {
		zl.Fatal("Failed to run migrations", zap.Error(err))
	}
	repo, err := repository.New(cfg.Database.Driver, cfg.Database.DSN())
	if err != nil {
		zl.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer repo.Close()

	// Telegram bot first: it is the notifier and membership oracle of the services.
	bot, err := telegram.NewBot(cfg, zl.Named("telegram"))
	if err != nil {
		zl.Fatal("Failed to create Telegram bot", zap.Error(err))
	}

	// Create services
	directory := service.NewStaffDirectory(cfg.Staff)
	gate := service.NewSubscriptionGate(bot, cfg.Telegram.RequestTimeout, zl.Named("gate"))
	broadcaster := service.NewBroadcaster(repo, bot, cfg.Broadcast.Delay, zl.Named("broadcast"))

	bot.Register(telegram.Services{
		Referral:  service.NewReferralService(repo, gate, bot, zl.Named("referral")),
		Promo:     service.NewPromoCodeService(repo, zl.Named("promo")),
		Payout:    service.NewPayoutService(repo, directory, bot, config.PayoutThreshold, zl.Named("payout")),
		Staff:     service.NewStaffService(repo, directory, bot, broadcaster, zl.Named("staff")),
		Directory: directory,
	})

	// Keep-alive HTTP server
	app := fiber.New(fiber.Config{
		DisableStartupMessage: true,
	})
	app.Use(recover.New())
	app.Use(fiberlogger.New())
	handler.New(repo, zl.Named("http")).Register(app)

	// Start background jobs
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go bot.Start(ctx)

	healthWorker := service.NewHealthWorker(repo, cfg.Health.Interval, zl.Named("health"))
	go func() {
		if err := healthWorker.Start(ctx); err != nil {
			zl.Error("Health worker stopped", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-quit
		zl.Info("Shutting down")
		cancel()
		_ = app.Shutdown()
	}()

	zl.Info("Server starting",
		zap.String("port", cfg.Server.Port),
		zap.String("bot", bot.Username()),
		zap.String("db_driver", cfg.Database.Driver),
		zap.Int("admins", len(cfg.Staff.AdminIDs)),
		zap.Int("managers", len(cfg.Staff.ManagerIDs)))
	if err := app.Listen(":" + cfg.Server.Port); err != nil {
		zl.Error("Server stopped", zap.Error(err))
	}
}
