package jwt

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

func newApp() *fiber.App {
	app := fiber.New()
	app.Get("/private", NewAuthMiddleware(testSecret, "finadvice", ScopeHistoryRead), func(c *fiber.Ctx) error {
		sub, _ := c.Locals("subject").(string)
		return c.SendString(sub)
	})
	return app
}

func call(t *testing.T, app *fiber.App, header string) (int, string) {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/private", nil)
	if header != "" {
		req.Header.Set("Authorization", header)
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	return resp.StatusCode, string(body)
}

func TestMiddlewareAcceptsValidToken(t *testing.T) {
	token, err := NewGenerator(testSecret, "finadvice", time.Hour).Generate("ops", ScopeHistoryRead)
	require.NoError(t, err)

	code, body := call(t, newApp(), "Bearer "+token)
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "ops", body)

	code, _ = call(t, newApp(), token)
	assert.Equal(t, http.StatusOK, code)
}

func TestMiddlewareRejects(t *testing.T) {
	app := newApp()

	code, _ := call(t, app, "")
	assert.Equal(t, http.StatusUnauthorized, code)

	code, _ = call(t, app, "Bearer not-a-jwt")
	assert.Equal(t, http.StatusUnauthorized, code)

	wrongKey, _ := NewGenerator("other", "finadvice", time.Hour).Generate("ops", ScopeHistoryRead)
	code, _ = call(t, app, "Bearer "+wrongKey)
	assert.Equal(t, http.StatusUnauthorized, code)

	wrongIssuer, _ := NewGenerator(testSecret, "someone-else", time.Hour).Generate("ops", ScopeHistoryRead)
	code, _ = call(t, app, "Bearer "+wrongIssuer)
	assert.Equal(t, http.StatusUnauthorized, code)

	expired, _ := NewGenerator(testSecret, "finadvice", -time.Minute).Generate("ops", ScopeHistoryRead)
	code, _ = call(t, app, "Bearer "+expired)
	assert.Equal(t, http.StatusUnauthorized, code)

	noScope, _ := NewGenerator(testSecret, "finadvice", time.Hour).Generate("ops")
	code, _ = call(t, app, "Bearer "+noScope)
	assert.Equal(t, http.StatusForbidden, code)
}
