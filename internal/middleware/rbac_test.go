package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/codecontest-api/internal/models"
)

func newRoleApp(role string) *fiber.App {
	app := fiber.New()
	app.Use(func(c *fiber.Ctx) error {
		if role != "" {
			c.Locals(localUserRole, role)
		}
		return c.Next()
	})
	app.Use(RequireRole(models.RoleTeacher))
	app.Post("/contests/create", func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	})
	return app
}

func TestRequireRoleAllowsAuthorizedRoles(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/contests/create", nil)
	resp, err := newRoleApp("Teacher").Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
}

func TestRequireRoleRejectsUnauthorizedRoles(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/contests/create", nil)
	resp, err := newRoleApp("student").Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusForbidden, resp.StatusCode)
}

func TestRequireRoleRejectsAnonymousRequests(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/contests/create", nil)
	resp, err := newRoleApp("").Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}
