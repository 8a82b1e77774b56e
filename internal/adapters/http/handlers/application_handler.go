package handlers

import (
	"github.com/gofiber/fiber/v2"

	"tarit-loan/internal/adapters/http/middleware"
	"tarit-loan/internal/core/services"
	"tarit-loan/internal/pkg/i18n"
	"tarit-loan/internal/pkg/response"
)

// ApplicationHandler serves read models and lookups around the wizard
type ApplicationHandler struct {
	wizard *services.WizardService
}

// NewApplicationHandler creates a new application handler
func NewApplicationHandler(wizard *services.WizardService) *ApplicationHandler {
	return &ApplicationHandler{wizard: wizard}
}

// Application fetches the composite record and returns the mapped state
func (h *ApplicationHandler) Application(c *fiber.Ctx) error {
	state, env, err := h.wizard.LoadApplication(c.Context(), sessionOf(c))
	if err != nil {
		return fail(c, env, err)
	}
	return response.Envelope(c, env, state)
}

func (h *ApplicationHandler) Dashboard(c *fiber.Ctx) error {
	dash, env, err := h.wizard.LoadDashboard(c.Context(), sessionOf(c))
	if err != nil {
		return fail(c, env, err)
	}
	return response.Envelope(c, env, dash)
}

func (h *ApplicationHandler) Customer(c *fiber.Ctx) error {
	env, err := h.wizard.CustomerInfo(c.Context(), sessionOf(c))
	return relay(c, env, err)
}

// MasterList handles GET /master/:type?parentId=
func (h *ApplicationHandler) MasterList(c *fiber.Ctx) error {
	listType := c.Params("type")
	if listType == "" {
		return response.BadRequest(c, i18n.T(middleware.Lang(c), i18n.MsgInvalidBody))
	}
	env, err := h.wizard.MasterList(c.Context(), listType, c.Query("parentId"))
	return relay(c, env, err)
}

func (h *ApplicationHandler) CalculateEMI(c *fiber.Ctx) error {
	var req services.EMIInput
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, i18n.T(middleware.Lang(c), i18n.MsgInvalidBody))
	}
	env, err := h.wizard.CalculateEMI(c.Context(), sessionOf(c), req)
	return relay(c, env, err)
}

func (h *ApplicationHandler) ListLiabilities(c *fiber.Ctx) error {
	env, err := h.wizard.ListLiabilities(c.Context(), sessionOf(c))
	return relay(c, env, err)
}

func (h *ApplicationHandler) SaveLiability(c *fiber.Ctx) error {
	var req services.LiabilityInput
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, i18n.T(middleware.Lang(c), i18n.MsgInvalidBody))
	}
	env, err := h.wizard.SaveLiability(c.Context(), sessionOf(c), req)
	return relay(c, env, err)
}

func (h *ApplicationHandler) DeleteLiability(c *fiber.Ctx) error {
	env, err := h.wizard.DeleteLiability(c.Context(), sessionOf(c), c.Params("id"))
	return relay(c, env, err)
}
