package middleware

import (
	"io"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func userContextApp() *fiber.App {
	app := fiber.New()
	app.Get("/pet", UserContextMiddleware(), func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"user_id": c.Locals("user_id"),
			"admin":   HasRole(c, "admin"),
		})
	})
	return app
}

func TestUserContextRequiresUserID(t *testing.T) {
	app := userContextApp()

	req := httptest.NewRequest("GET", "/pet", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)

	body, _ := io.ReadAll(resp.Body)
	assert.Contains(t, string(body), "Not authenticated")
}

func TestUserContextAttachesIdentity(t *testing.T) {
	app := userContextApp()

	req := httptest.NewRequest("GET", "/pet", nil)
	req.Header.Set("X-User-ID", "user-42")
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	body, _ := io.ReadAll(resp.Body)
	assert.Contains(t, string(body), "user-42")
	assert.Contains(t, string(body), `"admin":false`)
}

func TestUserContextParsesRoles(t *testing.T) {
	app := userContextApp()

	req := httptest.NewRequest("GET", "/pet", nil)
	req.Header.Set("X-User-ID", "user-42")
	req.Header.Set("X-User-Roles", " admin , editor ")
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	body, _ := io.ReadAll(resp.Body)
	assert.Contains(t, string(body), `"admin":true`)
}

func TestGatewayAuth(t *testing.T) {
	t.Setenv("PET_SERVICE_TOKEN", "test-token")

	app := fiber.New()
	app.Use(GatewayAuthMiddleware())
	ok := func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"success": true})
	}
	app.Get("/pet/healthz", ok)
	app.Get("/pet", ok)

	tests := []struct {
		name       string
		path       string
		authHeader string
		wantStatus int
	}{
		{name: "missing header", path: "/pet", authHeader: "", wantStatus: fiber.StatusUnauthorized},
		{name: "wrong token", path: "/pet", authHeader: "Bearer nope", wantStatus: fiber.StatusUnauthorized},
		{name: "bearer token", path: "/pet", authHeader: "Bearer test-token", wantStatus: fiber.StatusOK},
		{name: "raw token", path: "/pet", authHeader: "test-token", wantStatus: fiber.StatusOK},
		{name: "healthz needs no token", path: "/pet/healthz", authHeader: "", wantStatus: fiber.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", tt.path, nil)
			if tt.authHeader != "" {
				req.Header.Set("Authorization", tt.authHeader)
			}
			resp, err := app.Test(req)
			require.NoError(t, err)
			assert.Equal(t, tt.wantStatus, resp.StatusCode)
		})
	}
}
