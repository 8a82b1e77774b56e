package middleware

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"

	"tarit-loan/internal/core/domain"
	"tarit-loan/internal/core/services"
	"tarit-loan/internal/pkg/i18n"
	"tarit-loan/internal/pkg/jwt"
	"tarit-loan/internal/pkg/response"
)

// SessionCookie carries the signed session token
const SessionCookie = "tarit_session"

const (
	localSession   = "session"
	localSessionID = "sessionID"
)

// sessionToken reads the cookie first, then the Authorization header
func sessionToken(c *fiber.Ctx) string {
	if token := c.Cookies(SessionCookie); token != "" {
		return token
	}
	if auth := c.Get(fiber.HeaderAuthorization); strings.HasPrefix(auth, "Bearer ") {
		return strings.TrimPrefix(auth, "Bearer ")
	}
	return ""
}

// resolveSession maps a request to its wizard session. The session id is
// returned whenever the token itself is valid.
func resolveSession(c *fiber.Ctx, registry *services.SessionRegistry, secret string) (string, *services.WizardSession, error) {
	token := sessionToken(c)
	if token == "" {
		return "", nil, domain.ErrUnauthorized
	}
	claims, err := jwt.ValidateSessionToken(token, secret)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return "", nil, domain.ErrTokenExpired
		}
		return "", nil, domain.ErrTokenInvalid
	}
	sess, ok := registry.Get(claims.SessionID)
	if !ok {
		return claims.SessionID, nil, domain.ErrSessionNotFound
	}
	return claims.SessionID, sess, nil
}

// sessionMessage picks the 401 text for a session resolution error
func sessionMessage(err error) string {
	switch {
	case errors.Is(err, domain.ErrTokenExpired), errors.Is(err, domain.ErrSessionNotFound):
		return i18n.MsgSessionExpired
	default:
		return i18n.MsgSessionRequired
	}
}

// RequireSession rejects requests without a live wizard session
func RequireSession(registry *services.SessionRegistry, secret string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, sess, err := resolveSession(c, registry, secret)
		if id != "" {
			c.Locals(localSessionID, id)
		}
		if err != nil {
			return response.Unauthorized(c, i18n.T(Lang(c), sessionMessage(err)))
		}
		c.Locals(localSession, sess)

		return c.Next()
	}
}

// OptionalSession attaches the session when the token is valid and moves on otherwise
func OptionalSession(registry *services.SessionRegistry, secret string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, sess, err := resolveSession(c, registry, secret)
		if id != "" {
			c.Locals(localSessionID, id)
		}
		if err == nil {
			c.Locals(localSession, sess)
		}
		return c.Next()
	}
}

// Session returns the session attached by RequireSession or OptionalSession
func Session(c *fiber.Ctx) (*services.WizardSession, bool) {
	sess, ok := c.Locals(localSession).(*services.WizardSession)
	return sess, ok && sess != nil
}

// SessionID returns the id from a valid token even when the session is gone
func SessionID(c *fiber.Ctx) string {
	id, _ := c.Locals(localSessionID).(string)
	return id
}
