package main

import (
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"go.uber.org/zap"

	"github.com/example/gyansetu/internal/config"
	"github.com/example/gyansetu/internal/database"
	"github.com/example/gyansetu/internal/live"
	"github.com/example/gyansetu/internal/middleware"
	"github.com/example/gyansetu/internal/routes"
	"github.com/example/gyansetu/internal/services"
	"github.com/example/gyansetu/internal/storage"
)

func main() {
	cfg := config.Load()

	zapLogger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("failed to initialize logger: %v", err)
	}
	defer zapLogger.Sync()

	store, err := openStore(cfg, zapLogger)
	if err != nil {
		zapLogger.Fatal("failed to open storage", zap.Error(err))
	}

	sessions := services.NewSessions(cfg.SessionTTL, zapLogger)
	accounts := services.NewAccounts(store, zapLogger)
	payments := services.NewPayments(services.DummySigner{}, cfg.OrderTTL, zapLogger)
	hub := live.NewHub(zapLogger)

	cronService := services.NewCronService(sessions, payments, zapLogger)
	cronService.Start()
	defer cronService.Stop()

	app := fiber.New(fiber.Config{
		AppName:      "Gyan Setu Portal",
		ErrorHandler: middleware.ErrorHandler,
	})

	app.Use(recover.New())
	app.Use(logger.New())
	app.Use(cors.New())
	app.Use(middleware.Metrics())

	routes.Register(app, routes.Deps{
		Store:    store,
		Sessions: sessions,
		Accounts: accounts,
		Payments: payments,
		Hub:      hub,
		Cfg:      cfg,
		Logger:   zapLogger,
	})

	go gracefulShutdown(app, zapLogger)

	zapLogger.Info("starting server",
		zap.String("port", cfg.AppPort),
		zap.String("storage", cfg.StorageDriver))
	if err := app.Listen(":" + cfg.AppPort); err != nil {
		zapLogger.Fatal("fiber.Listen error", zap.Error(err))
	}
}

func openStore(cfg *config.Config, logger *zap.Logger) (storage.Store, error) {
	if cfg.StorageDriver == config.DriverFile {
		return storage.OpenFileStore(cfg.DataFile, logger)
	}
	return storage.NewGormStore(database.Connect(cfg.DatabaseURL)), nil
}

func gracefulShutdown(app *fiber.App, logger *zap.Logger) {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server")
	if err := app.Shutdown(); err != nil {
		logger.Error("error during shutdown", zap.Error(err))
	}
}
