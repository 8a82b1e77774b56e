package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"

	"tarit-loan/internal/adapters/http/middleware"
	"tarit-loan/internal/adapters/http/routes"
	"tarit-loan/internal/adapters/origination"
	"tarit-loan/internal/adapters/persistence/models"
	"tarit-loan/internal/adapters/persistence/repositories"
	"tarit-loan/internal/config"
	"tarit-loan/internal/core/services"
	"tarit-loan/internal/pkg/seal"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logrus.WithError(err).Fatal("failed to load configuration")
	}
	cfg.ConfigureLogging()

	// Session mirror (optional)
	var mirror services.SessionMirror
	if cfg.Session.MirrorEnabled {
		db, err := config.ConnectMirrorDatabase(context.Background(), cfg)
		if err != nil {
			logrus.WithError(err).Fatal("failed to connect to database")
		}
		defer config.CloseMirrorDatabase()

		if err := models.AutoMigrate(db); err != nil {
			logrus.WithError(err).Fatal("failed to auto migrate")
		}

		sealer, err := seal.New(cfg.Session.MirrorSecret)
		if err != nil {
			logrus.WithError(err).Fatal("failed to set up mirror sealing")
		}
		mirror = services.NewSealedMirror(repositories.NewSessionMirrorRepository(db), sealer, cfg.Session.MirrorTTL)
		logrus.Info("session mirror enabled")
	}

	// Origination backend
	origination.RegisterMetrics()
	opts := origination.Options{
		BaseURL: cfg.Origination.BaseURL,
		Timeout: cfg.Origination.Timeout,
		RPS:     cfg.Origination.RPS,
		Burst:   cfg.Origination.Burst,
	}
	tokens := origination.NewTokenManager(opts)
	api := origination.NewAPI(origination.NewClient(opts, tokens))

	// Services
	registry := services.NewSessionRegistry(mirror)
	otp := services.NewOTPService()
	deps := routes.Dependencies{
		Registry: registry,
		Auth:     services.NewAuthService(api, otp, registry, tokens),
		Wizard:   services.NewWizardService(api, services.NewSkinToneDetector()),
	}

	// Janitor and credential warm-up
	cronService := services.NewCronService(registry, mirror, otp, tokens, cfg.Session.IdleTimeout)
	if err := cronService.Start(); err != nil {
		logrus.WithError(err).Fatal("failed to start cron")
	}
	defer cronService.Stop()

	app := fiber.New(fiber.Config{
		AppName:      "Tarit Loan API",
		ErrorHandler: middleware.CustomErrorHandler,
		BodyLimit:    8 * 1024 * 1024,
	})

	middleware.Setup(app, cfg)
	routes.Setup(app, cfg, deps)

	go gracefulShutdown(app)

	logrus.WithFields(logrus.Fields{"port": cfg.Port, "mode": cfg.AppMode}).Info("server starting")
	if err := app.Listen(":" + cfg.Port); err != nil {
		logrus.WithError(err).Error("server stopped")
	}
}

// gracefulShutdown handles graceful shutdown
func gracefulShutdown(app *fiber.App) {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logrus.Info("shutting down server")
	if err := app.Shutdown(); err != nil {
		logrus.WithError(err).Error("error during shutdown")
	}
}
