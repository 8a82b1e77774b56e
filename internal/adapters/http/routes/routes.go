package routes

import (
	"tarit-loan/internal/adapters/http/handlers"
	"tarit-loan/internal/adapters/http/middleware"
	"tarit-loan/internal/config"
	"tarit-loan/internal/core/services"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Dependencies are the long-lived services the routes dispatch to
type Dependencies struct {
	Registry *services.SessionRegistry
	Auth     *services.AuthService
	Wizard   *services.WizardService
}

// Setup configures all routes for the application
func Setup(app *fiber.App, cfg *config.Config, deps Dependencies) {
	// Initialize handlers
	healthHandler := handlers.NewHealthHandler(cfg, deps.Registry)
	authHandler := handlers.NewAuthHandler(deps.Auth, deps.Registry, cfg)
	wizardHandler := handlers.NewWizardHandler(deps.Wizard)
	applicationHandler := handlers.NewApplicationHandler(deps.Wizard)

	// Health check, root and metrics
	app.Get("/", healthHandler.Root)
	app.Get("/health", healthHandler.HealthCheck)
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	requireSession := middleware.RequireSession(deps.Registry, cfg.JWT.Secret)
	optionalSession := middleware.OptionalSession(deps.Registry, cfg.JWT.Secret)

	apiV1 := app.Group("/api/v1", middleware.NoCacheHeaders())
	apiV1.Get("/", healthHandler.APIInfo)

	setupAuthRoutes(apiV1.Group("/auth"), authHandler, requireSession, optionalSession)
	apiV1.Get("/session/restore", optionalSession, authHandler.Restore)

	wizardRoutes := apiV1.Group("/wizard", requireSession)
	setupWizardRoutes(wizardRoutes, wizardHandler)

	// Master lists carry no customer data and may be cached
	apiV1.Get("/master/:type", middleware.MasterDataCache(), applicationHandler.MasterList)

	setupApplicationRoutes(apiV1, applicationHandler, requireSession)
}

// setupAuthRoutes configures OTP login routes
func setupAuthRoutes(router fiber.Router, handler *handlers.AuthHandler, requireSession, optionalSession fiber.Handler) {
	router.Post("/otp/send", middleware.AuthRateLimiter(), optionalSession, handler.SendOTP)
	router.Post("/otp/verify", middleware.AuthRateLimiter(), requireSession, handler.VerifyOTP)
	router.Post("/logout", requireSession, handler.Logout)
}

// setupWizardRoutes configures the step endpoints
func setupWizardRoutes(router fiber.Router, handler *handlers.WizardHandler) {
	router.Get("/", handler.State)
	router.Post("/back", handler.Back)
	router.Post("/personal", handler.Personal)
	router.Post("/address", handler.Address)
	router.Post("/liabilities", handler.Liabilities)
	router.Post("/loan", handler.Loan)
	router.Post("/summary", handler.Summary)
	router.Post("/face", middleware.UploadRateLimiter(), handler.Face)
	router.Post("/submit", handler.Submit)
}

// setupApplicationRoutes configures read models and lookups
func setupApplicationRoutes(router fiber.Router, handler *handlers.ApplicationHandler, requireSession fiber.Handler) {
	router.Get("/application", requireSession, handler.Application)
	router.Get("/dashboard", requireSession, handler.Dashboard)
	router.Get("/customer", requireSession, handler.Customer)
	router.Post("/emi", requireSession, handler.CalculateEMI)

	router.Get("/liabilities", requireSession, handler.ListLiabilities)
	router.Post("/liabilities", requireSession, handler.SaveLiability)
	router.Delete("/liabilities/:id", requireSession, handler.DeleteLiability)
}
