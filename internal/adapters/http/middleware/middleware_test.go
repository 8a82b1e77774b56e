package middleware

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tarit-loan/internal/core/domain"
	"tarit-loan/internal/core/services"
	"tarit-loan/internal/pkg/i18n"
	"tarit-loan/internal/pkg/jwt"
)

const testSecret = "test-secret"

func newSessionApp(registry *services.SessionRegistry) *fiber.App {
	app := fiber.New()
	app.Use(Language())
	app.Get("/required", RequireSession(registry, testSecret), func(c *fiber.Ctx) error {
		sess, ok := Session(c)
		if !ok {
			return c.SendStatus(fiber.StatusTeapot)
		}
		return c.SendString(sess.ID)
	})
	app.Get("/optional", OptionalSession(registry, testSecret), func(c *fiber.Ctx) error {
		_, ok := Session(c)
		return c.JSON(fiber.Map{"attached": ok, "id": SessionID(c)})
	})
	return app
}

func TestRequireSessionFromCookie(t *testing.T) {
	registry := services.NewSessionRegistry(nil)
	sess := registry.Create()
	token, err := jwt.GenerateSessionToken(sess.ID, testSecret, 10)
	require.NoError(t, err)

	req := httptest.NewRequest(fiber.MethodGet, "/required", nil)
	req.AddCookie(&http.Cookie{Name: SessionCookie, Value: token})
	resp, err := newSessionApp(registry).Test(req)
	require.NoError(t, err)

	body, _ := io.ReadAll(resp.Body)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, sess.ID, string(body))
}

func TestRequireSessionFromBearer(t *testing.T) {
	registry := services.NewSessionRegistry(nil)
	sess := registry.Create()
	token, err := jwt.GenerateSessionToken(sess.ID, testSecret, 10)
	require.NoError(t, err)

	req := httptest.NewRequest(fiber.MethodGet, "/required", nil)
	req.Header.Set(fiber.HeaderAuthorization, "Bearer "+token)
	resp, err := newSessionApp(registry).Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
}

func TestRequireSessionRejects(t *testing.T) {
	registry := services.NewSessionRegistry(nil)
	app := newSessionApp(registry)

	resp, err := app.Test(httptest.NewRequest(fiber.MethodGet, "/required", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)

	// valid token, unknown session
	token, err := jwt.GenerateSessionToken("gone", testSecret, 10)
	require.NoError(t, err)
	req := httptest.NewRequest(fiber.MethodGet, "/required", nil)
	req.Header.Set(fiber.HeaderAuthorization, "Bearer "+token)
	resp, err = app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)

	// wrong secret
	token, err = jwt.GenerateSessionToken("x", "other", 10)
	require.NoError(t, err)
	req = httptest.NewRequest(fiber.MethodGet, "/required", nil)
	req.Header.Set(fiber.HeaderAuthorization, "Bearer "+token)
	resp, err = app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

func TestResolveSessionErrors(t *testing.T) {
	registry := services.NewSessionRegistry(nil)
	live := registry.Create()
	valid, err := jwt.GenerateSessionToken(live.ID, testSecret, 10)
	require.NoError(t, err)
	expired, err := jwt.GenerateSessionToken(live.ID, testSecret, -5)
	require.NoError(t, err)
	orphan, err := jwt.GenerateSessionToken("gone", testSecret, 10)
	require.NoError(t, err)

	tests := []struct {
		name    string
		token   string
		wantErr error
		wantMsg string
	}{
		{"missing", "", domain.ErrUnauthorized, i18n.MsgSessionRequired},
		{"garbage", "not-a-jwt", domain.ErrTokenInvalid, i18n.MsgSessionRequired},
		{"expired", expired, domain.ErrTokenExpired, i18n.MsgSessionExpired},
		{"unknown session", orphan, domain.ErrSessionNotFound, i18n.MsgSessionExpired},
		{"live", valid, nil, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := fiber.New()
			app.Get("/", func(c *fiber.Ctx) error {
				_, sess, err := resolveSession(c, registry, testSecret)
				if tt.wantErr == nil {
					require.NoError(t, err)
					assert.Equal(t, live.ID, sess.ID)
					return nil
				}
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Equal(t, tt.wantMsg, sessionMessage(err))
				return nil
			})
			req := httptest.NewRequest(fiber.MethodGet, "/", nil)
			if tt.token != "" {
				req.Header.Set(fiber.HeaderAuthorization, "Bearer "+tt.token)
			}
			_, err := app.Test(req)
			require.NoError(t, err)
		})
	}
}

func TestOptionalSessionKeepsID(t *testing.T) {
	registry := services.NewSessionRegistry(nil)
	token, err := jwt.GenerateSessionToken("evicted", testSecret, 10)
	require.NoError(t, err)

	req := httptest.NewRequest(fiber.MethodGet, "/optional", nil)
	req.Header.Set(fiber.HeaderAuthorization, "Bearer "+token)
	resp, err := newSessionApp(registry).Test(req)
	require.NoError(t, err)

	body, _ := io.ReadAll(resp.Body)
	assert.JSONEq(t, `{"attached":false,"id":"evicted"}`, string(body))
}

func TestLanguage(t *testing.T) {
	app := fiber.New()
	app.Use(Language())
	app.Get("/", func(c *fiber.Ctx) error {
		base, _ := Lang(c).Base()
		return c.SendString(base.String())
	})

	req := httptest.NewRequest(fiber.MethodGet, "/?lang=bn", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	body, _ := io.ReadAll(resp.Body)
	assert.Equal(t, "bn", string(body))

	req = httptest.NewRequest(fiber.MethodGet, "/", nil)
	req.Header.Set(fiber.HeaderAcceptLanguage, "fr-FR")
	resp, err = app.Test(req)
	require.NoError(t, err)
	body, _ = io.ReadAll(resp.Body)
	assert.Equal(t, "en", string(body))
}

func TestNoCacheHeaders(t *testing.T) {
	app := fiber.New()
	app.Get("/", NoCacheHeaders(), func(c *fiber.Ctx) error { return c.SendString("ok") })
	app.Get("/master", MasterDataCache(), func(c *fiber.Ctx) error { return c.SendString("ok") })

	resp, err := app.Test(httptest.NewRequest(fiber.MethodGet, "/", nil))
	require.NoError(t, err)
	assert.Equal(t, "no-store, no-cache, must-revalidate", resp.Header.Get(fiber.HeaderCacheControl))

	resp, err = app.Test(httptest.NewRequest(fiber.MethodGet, "/master", nil))
	require.NoError(t, err)
	assert.Equal(t, "public, max-age=3600", resp.Header.Get(fiber.HeaderCacheControl))
}
