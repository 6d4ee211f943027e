package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"
)

func corsOrigin(t *testing.T, app *fiber.App, origin string) string {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set(fiber.HeaderOrigin, origin)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	return resp.Header.Get(fiber.HeaderAccessControlAllowOrigin)
}

func TestRegisterRestrictsCORSToConfiguredOrigins(t *testing.T) {
	app := fiber.New()
	Register(app, Config{AllowOrigins: []string{"https://coach.example.com"}})
	app.Get("/ping", func(c *fiber.Ctx) error { return c.SendStatus(http.StatusOK) })

	require.Equal(t, "https://coach.example.com", corsOrigin(t, app, "https://coach.example.com"))
	require.Empty(t, corsOrigin(t, app, "https://elsewhere.example.com"))
}

func TestRegisterAllowsAnyOriginByDefault(t *testing.T) {
	app := fiber.New()
	Register(app, Config{})
	app.Get("/ping", func(c *fiber.Ctx) error { return c.SendStatus(http.StatusOK) })

	require.Equal(t, "*", corsOrigin(t, app, "https://elsewhere.example.com"))
}
