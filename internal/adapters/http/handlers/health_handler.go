package handlers

import (
	"tarit-loan/internal/config"
	"tarit-loan/internal/core/services"

	"github.com/gofiber/fiber/v2"
)

// HealthHandler handles health check endpoints
type HealthHandler struct {
	cfg      *config.Config
	registry *services.SessionRegistry
}

// NewHealthHandler creates a new health handler
func NewHealthHandler(cfg *config.Config, registry *services.SessionRegistry) *HealthHandler {
	return &HealthHandler{cfg: cfg, registry: registry}
}

// Root handles root endpoint
func (h *HealthHandler) Root(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status":  "running",
		"message": "Tarit Loan API is running",
		"mode":    h.cfg.AppMode,
	})
}

// HealthCheck reports API, mirror database and session counts.
// The database is only checked when the session mirror is on.
func (h *HealthHandler) HealthCheck(c *fiber.Ctx) error {
	dbStatus := "disabled"
	if h.cfg.Session.MirrorEnabled {
		dbStatus = "healthy"
		if err := config.MirrorHealth(c.UserContext(), h.cfg.Database.PingTimeout); err != nil {
			dbStatus = "unhealthy"
		}
	}

	return c.JSON(fiber.Map{
		"status": "ok",
		"checks": fiber.Map{
			"api":      "healthy",
			"database": dbStatus,
		},
		"sessions": h.registry.Len(),
	})
}

// APIInfo handles API v1 info
func (h *HealthHandler) APIInfo(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"message": "Tarit Loan API v1",
		"version": "1.0.0",
	})
}
