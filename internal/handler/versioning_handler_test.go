package handler

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/aosagula/adm/internal/adapter/store"
	"github.com/aosagula/adm/internal/domain"
	"github.com/aosagula/adm/internal/middleware"
	"github.com/aosagula/adm/internal/service"
	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var handlerJWTConfig = middleware.JWTConfig{
	Secret:    "test-secret",
	Issuer:    "agent-directory-manager",
	ExpiresIn: time.Hour,
}

// newVersioningApp wires a fiber app with the versioning routes backed by the
// in-memory store, and returns a bearer token holding versioning permissions.
func newVersioningApp(t *testing.T) (*fiber.App, string) {
	t.Helper()
	mem := store.NewMemoryStore()
	versioning := service.NewVersioningService(mem)

	app := fiber.New()
	api := app.Group("/api/v1", middleware.JWTMiddleware(handlerJWTConfig))
	NewVersioningHandler(versioning).Register(api)

	token, err := middleware.GenerateToken(&domain.User{
		ID:             uuid.NewString(),
		Email:          "tester@example.com",
		OrganizationID: uuid.NewString(),
		Roles: []domain.Role{{
			Name: "Admin",
			Permissions: []domain.Permission{
				{Name: "versioning.create", Resource: "versioning", Action: "create"},
				{Name: "versioning.read", Resource: "versioning", Action: "read"},
			},
		}},
	}, handlerJWTConfig)
	require.NoError(t, err)
	return app, token
}

func doJSON(t *testing.T, app *fiber.App, token, method, path string, body any) (*http.Response, map[string]any) {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Authorization", "Bearer "+token)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := app.Test(req)
	require.NoError(t, err)

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	var decoded map[string]any
	if len(raw) > 0 {
		require.NoError(t, json.Unmarshal(raw, &decoded))
	}
	return resp, decoded
}

func createVersion(t *testing.T, app *fiber.App, token, projectID, entityID string, content map[string]any) map[string]any {
	t.Helper()
	resp, body := doJSON(t, app, token, "POST", "/api/v1/versioning/", map[string]any{
		"project_id":         projectID,
		"configuration_type": domain.ConfigTypeAgent,
		"entity_id":          entityID,
		"content":            content,
	})
	require.Equal(t, fiber.StatusCreated, resp.StatusCode, "body: %v", body)
	return body
}

func TestVersioningCreateAndHistory(t *testing.T) {
	app, token := newVersioningApp(t)
	projectID, entityID := uuid.NewString(), uuid.NewString()

	v1 := createVersion(t, app, token, projectID, entityID, map[string]any{"x": 1})
	assert.Equal(t, float64(1), v1["version"])

	v2 := createVersion(t, app, token, projectID, entityID, map[string]any{"x": 2})
	assert.Equal(t, float64(2), v2["version"])

	resp, body := doJSON(t, app, token, "GET", "/api/v1/versioning/project/"+projectID, nil)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, float64(2), body["count"])
	versions := body["versions"].([]any)
	newest := versions[0].(map[string]any)
	assert.Equal(t, float64(2), newest["version"])
}

func TestVersioningGetAndCompare(t *testing.T) {
	app, token := newVersioningApp(t)
	projectID, entityID := uuid.NewString(), uuid.NewString()

	v1 := createVersion(t, app, token, projectID, entityID, map[string]any{"x": 1})
	v2 := createVersion(t, app, token, projectID, entityID, map[string]any{"x": 2})

	resp, got := doJSON(t, app, token, "GET", "/api/v1/versioning/"+v1["id"].(string), nil)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, v1["id"], got["id"])

	path := fmt.Sprintf("/api/v1/versioning/compare/%s/%s", v1["id"], v2["id"])
	resp, comparison := doJSON(t, app, token, "GET", path, nil)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	diff := comparison["diff"].(string)
	assert.Contains(t, diff, `+  "x": 2`)
}

func TestVersioningRestore(t *testing.T) {
	app, token := newVersioningApp(t)
	projectID, entityID := uuid.NewString(), uuid.NewString()

	v1 := createVersion(t, app, token, projectID, entityID, map[string]any{"x": 1})
	createVersion(t, app, token, projectID, entityID, map[string]any{"x": 2})

	resp, restored := doJSON(t, app, token, "POST", "/api/v1/versioning/restore/"+v1["id"].(string), nil)
	assert.Equal(t, fiber.StatusCreated, resp.StatusCode)
	assert.Equal(t, float64(3), restored["version"])
	assert.Equal(t, "Restored to version 1", restored["changes_summary"])
}

func TestVersioningValidation(t *testing.T) {
	app, token := newVersioningApp(t)

	resp, _ := doJSON(t, app, token, "POST", "/api/v1/versioning/", map[string]any{
		"project_id": "not-a-uuid",
	})
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	resp, _ = doJSON(t, app, token, "GET", "/api/v1/versioning/"+uuid.NewString(), nil)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}

func TestVersioningRequiresAuth(t *testing.T) {
	app, _ := newVersioningApp(t)

	req := httptest.NewRequest("GET", "/api/v1/versioning/project/"+uuid.NewString(), nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

func TestVersioningRequiresPermission(t *testing.T) {
	app, _ := newVersioningApp(t)

	token, err := middleware.GenerateToken(&domain.User{
		ID:             uuid.NewString(),
		Email:          "noperm@example.com",
		OrganizationID: uuid.NewString(),
	}, handlerJWTConfig)
	require.NoError(t, err)

	resp, _ := doJSON(t, app, token, "GET", "/api/v1/versioning/project/"+uuid.NewString(), nil)
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)
}
