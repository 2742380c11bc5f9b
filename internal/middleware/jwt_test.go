package middleware

import (
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/aosagula/adm/internal/domain"
	"github.com/gofiber/fiber/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testJWTConfig = JWTConfig{
	Secret:    "test-secret",
	Issuer:    "agent-directory-manager",
	ExpiresIn: time.Hour,
}

func testUser() *domain.User {
	return &domain.User{
		ID:             "user-1",
		Email:          "a@example.com",
		OrganizationID: "org-1",
		Roles: []domain.Role{
			{
				Name: "User",
				Permissions: []domain.Permission{
					{Name: "projects.read", Resource: "projects", Action: "read"},
				},
			},
		},
	}
}

func TestTokenRoundTrip(t *testing.T) {
	token, err := GenerateToken(testUser(), testJWTConfig)
	require.NoError(t, err)

	claims, err := ParseToken(token, testJWTConfig.Secret, testJWTConfig.Issuer)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.Subject)
	assert.Equal(t, "a@example.com", claims.Email)
	assert.Equal(t, "org-1", claims.OrganizationID)
	assert.Contains(t, claims.Permissions, "projects.read")
}

func TestParseTokenRejectsBadSignature(t *testing.T) {
	token, err := GenerateToken(testUser(), testJWTConfig)
	require.NoError(t, err)

	_, err = ParseToken(token, "other-secret", testJWTConfig.Issuer)
	assert.Error(t, err)
}

func TestParseTokenRejectsWrongIssuer(t *testing.T) {
	token, err := GenerateToken(testUser(), testJWTConfig)
	require.NoError(t, err)

	_, err = ParseToken(token, testJWTConfig.Secret, "someone-else")
	assert.Error(t, err)
}

func TestParseTokenRejectsExpired(t *testing.T) {
	expired := testJWTConfig
	expired.ExpiresIn = -time.Minute
	token, err := GenerateToken(testUser(), expired)
	require.NoError(t, err)

	_, err = ParseToken(token, testJWTConfig.Secret, testJWTConfig.Issuer)
	assert.ErrorContains(t, err, "expired")
}

func TestParseTokenRejectsGarbage(t *testing.T) {
	_, err := ParseToken("not.a.token.at.all", "s", "i")
	assert.Error(t, err)
	_, err = ParseToken("two.parts", "s", "i")
	assert.Error(t, err)
}

func TestJWTMiddlewareInjectsPrincipal(t *testing.T) {
	app := fiber.New()
	app.Use(JWTMiddleware(testJWTConfig))
	app.Get("/me", func(c fiber.Ctx) error {
		p := GetPrincipal(c)
		require.NotNil(t, p)
		return c.JSON(p)
	})

	token, err := GenerateToken(testUser(), testJWTConfig)
	require.NoError(t, err)

	req := httptest.NewRequest("GET", "/me", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "user-1")
}

func TestJWTMiddlewareRejectsMissingToken(t *testing.T) {
	app := fiber.New()
	app.Use(JWTMiddleware(testJWTConfig))
	app.Get("/me", func(c fiber.Ctx) error { return c.SendString("ok") })

	resp, err := app.Test(httptest.NewRequest("GET", "/me", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

func TestRequirePermission(t *testing.T) {
	app := fiber.New()
	app.Use(JWTMiddleware(testJWTConfig))
	app.Get("/read", RequirePermission("projects.read"), func(c fiber.Ctx) error { return c.SendString("ok") })
	app.Get("/admin", RequirePermission("audit.read"), func(c fiber.Ctx) error { return c.SendString("ok") })

	token, err := GenerateToken(testUser(), testJWTConfig)
	require.NoError(t, err)

	allowed := httptest.NewRequest("GET", "/read", nil)
	allowed.Header.Set("Authorization", "Bearer "+token)
	resp, err := app.Test(allowed)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	denied := httptest.NewRequest("GET", "/admin", nil)
	denied.Header.Set("Authorization", "Bearer "+token)
	resp, err = app.Test(denied)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)
}
