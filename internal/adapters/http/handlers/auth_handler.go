package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"tarit-loan/internal/adapters/http/middleware"
	"tarit-loan/internal/config"
	"tarit-loan/internal/core/services"
	"tarit-loan/internal/pkg/i18n"
	"tarit-loan/internal/pkg/jwt"
	"tarit-loan/internal/pkg/response"
)

// NavigationHeader tells the API how the page was entered
const NavigationHeader = "X-Navigation-Type"

// AuthHandler handles OTP login, logout and reload recovery
type AuthHandler struct {
	authService *services.AuthService
	registry    *services.SessionRegistry
	cfg         *config.Config
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(authService *services.AuthService, registry *services.SessionRegistry, cfg *config.Config) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		registry:    registry,
		cfg:         cfg,
	}
}

// SendOTP starts a session when needed and asks the backend for an OTP
func (h *AuthHandler) SendOTP(c *fiber.Ctx) error {
	var req services.SendOTPInput
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, i18n.T(middleware.Lang(c), i18n.MsgInvalidBody))
	}

	sess, ok := middleware.Session(c)
	if !ok {
		sess = h.registry.Create()
		token, err := jwt.GenerateSessionToken(sess.ID, h.cfg.JWT.Secret, h.cfg.JWT.SessionMins)
		if err != nil {
			return fail(c, emptyEnvelope, err)
		}
		h.setSessionCookie(c, token)
	}

	env, err := h.authService.SendOTP(c.Context(), sess, req)
	return relay(c, env, err)
}

// VerifyOTP checks the code and moves the wizard to personal info
func (h *AuthHandler) VerifyOTP(c *fiber.Ctx) error {
	var req services.VerifyOTPInput
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, i18n.T(middleware.Lang(c), i18n.MsgInvalidBody))
	}

	sess := sessionOf(c)
	step, env, err := h.authService.VerifyOTP(c.Context(), sess, req)
	if err != nil {
		return fail(c, env, err)
	}
	return response.Success(c, env.Message, stepPayload(c, sess, step))
}

// Logout forgets the session and drops the cookie
func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	h.authService.Logout(c.Context(), sessionOf(c))
	h.clearSessionCookie(c)
	return response.Success(c, i18n.T(middleware.Lang(c), i18n.MsgLoggedOut), nil)
}

// Restore rebuilds the session after a browser reload
func (h *AuthHandler) Restore(c *fiber.Ctx) error {
	lang := middleware.Lang(c)
	reload := c.Get(NavigationHeader) == "reload"

	sess, restored, err := h.authService.Restore(c.Context(), middleware.SessionID(c), reload)
	if err != nil {
		return fail(c, emptyEnvelope, err)
	}
	if !restored {
		return response.Success(c, i18n.T(lang, i18n.MsgNotRestored), fiber.Map{"restored": false})
	}

	payload := stepPayload(c, sess, sess.Sequencer.Current())
	payload["restored"] = true
	return response.Success(c, i18n.T(lang, i18n.MsgRestored), payload)
}

func (h *AuthHandler) setSessionCookie(c *fiber.Ctx, token string) {
	c.Cookie(&fiber.Cookie{
		Name:     middleware.SessionCookie,
		Value:    token,
		Path:     "/",
		MaxAge:   h.cfg.JWT.SessionMins * 60,
		Secure:   h.cfg.Cookie.Secure,
		HTTPOnly: true,
		SameSite: h.cfg.Cookie.SameSite,
		Domain:   h.cfg.Cookie.Domain,
	})
}

func (h *AuthHandler) clearSessionCookie(c *fiber.Ctx) {
	c.Cookie(&fiber.Cookie{
		Name:     middleware.SessionCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		Expires:  time.Now().Add(-1 * time.Hour),
		Secure:   h.cfg.Cookie.Secure,
		HTTPOnly: true,
		SameSite: h.cfg.Cookie.SameSite,
		Domain:   h.cfg.Cookie.Domain,
	})
}
