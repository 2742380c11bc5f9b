package service

import (
	"context"
	"testing"

	"github.com/aosagula/adm/internal/adapter/store"
	"github.com/aosagula/adm/internal/domain"
	"github.com/aosagula/adm/internal/port"
	"github.com/aosagula/adm/pkg/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig() *config.Config {
	return &config.Config{
		JWTSecret:             "test-secret",
		JWTRefreshSecret:      "test-refresh-secret",
		JWTIssuer:             "agent-directory-manager",
		JWTExpirationHours:    1,
		RefreshExpirationDays: 1,
	}
}

func newAuthFixture(t *testing.T) (*AuthService, *AuditService, *store.MemoryStore, string) {
	t.Helper()
	mem := store.NewMemoryStore()
	org := mem.SeedOrganization(domain.Organization{Name: "Acme", Slug: "acme", IsActive: true})
	audit := NewAuditService(mem)
	return NewAuthService(mem, mem, audit, testConfig()), audit, mem, org.ID
}

func TestRegisterHashesPasswordAndIssuesTokens(t *testing.T) {
	svc, audit, _, orgID := newAuthFixture(t)
	ctx := context.Background()

	pair, err := svc.Register(ctx, RegisterInput{
		Email:          "a@example.com",
		Password:       "hunter2hunter2",
		FirstName:      "Ada",
		LastName:       "Lovelace",
		OrganizationID: orgID,
		IPAddress:      "127.0.0.1",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, pair.AccessToken)
	assert.NotEmpty(t, pair.RefreshToken)
	require.NotNil(t, pair.User)
	assert.NotEmpty(t, pair.User.ID)
	assert.NotEqual(t, "hunter2hunter2", pair.User.PasswordHash)
	assert.True(t, pair.User.IsActive)

	page, err := audit.FindAll(ctx, port.AuditFilter{EventType: domain.EventCreate, Resource: "users"})
	require.NoError(t, err)
	require.Len(t, page.Data, 1)
	assert.Equal(t, "127.0.0.1", page.Data[0].IPAddress)
}

func TestRegisterRejectsUnknownOrganization(t *testing.T) {
	svc, _, mem, _ := newAuthFixture(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, RegisterInput{
		Email:          "stray@example.com",
		Password:       "hunter2hunter2",
		OrganizationID: "00000000-0000-4000-8000-000000000000",
	})
	assert.ErrorIs(t, err, port.ErrUnauthorized)

	_, err = mem.GetUserByEmail(ctx, "stray@example.com")
	assert.ErrorIs(t, err, port.ErrNotFound)
}

func TestRegisterRejectsInactiveOrganization(t *testing.T) {
	svc, _, mem, _ := newAuthFixture(t)
	ctx := context.Background()
	dormant := mem.SeedOrganization(domain.Organization{Name: "Dormant", Slug: "dormant", IsActive: false})

	_, err := svc.Register(ctx, RegisterInput{
		Email:          "late@example.com",
		Password:       "hunter2hunter2",
		OrganizationID: dormant.ID,
	})
	assert.ErrorIs(t, err, port.ErrUnauthorized)

	_, err = mem.GetUserByEmail(ctx, "late@example.com")
	assert.ErrorIs(t, err, port.ErrNotFound)
}

func TestRegisterAssignsDefaultRole(t *testing.T) {
	mem := store.NewMemoryStore()
	org := mem.SeedOrganization(domain.Organization{Name: "Acme", Slug: "acme", IsActive: true})
	mem.SeedRole(domain.Role{
		Name:      "User",
		IsSystem:  true,
		IsDefault: true,
		Permissions: []domain.Permission{
			{Name: "projects.read", Resource: "projects", Action: "read"},
		},
	})
	svc := NewAuthService(mem, mem, NewAuditService(mem), testConfig())

	pair, err := svc.Register(context.Background(), RegisterInput{
		Email:          "b@example.com",
		Password:       "hunter2hunter2",
		OrganizationID: org.ID,
	})
	require.NoError(t, err)

	loaded, err := mem.GetUserByID(context.Background(), pair.User.ID)
	require.NoError(t, err)
	require.Len(t, loaded.Roles, 1)
	assert.Equal(t, "User", loaded.Roles[0].Name)
	assert.Contains(t, loaded.Permissions(), "projects.read")
}

func TestRegisterDuplicateEmailConflicts(t *testing.T) {
	svc, _, _, orgID := newAuthFixture(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, RegisterInput{Email: "dup@example.com", Password: "hunter2hunter2", OrganizationID: orgID})
	require.NoError(t, err)

	_, err = svc.Register(ctx, RegisterInput{Email: "dup@example.com", Password: "hunter2hunter2", OrganizationID: orgID})
	assert.ErrorIs(t, err, port.ErrConflict)
}

func TestLoginReturnsTokenPair(t *testing.T) {
	svc, audit, _, orgID := newAuthFixture(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, RegisterInput{Email: "c@example.com", Password: "hunter2hunter2", OrganizationID: orgID})
	require.NoError(t, err)

	pair, err := svc.Login(ctx, "c@example.com", "hunter2hunter2", "127.0.0.1", "go-test")
	require.NoError(t, err)
	assert.NotEmpty(t, pair.AccessToken)
	assert.NotEmpty(t, pair.RefreshToken)
	assert.NotEqual(t, pair.AccessToken, pair.RefreshToken)
	require.NotNil(t, pair.User)
	assert.NotNil(t, pair.User.LastLoginAt)

	page, err := audit.FindAll(ctx, port.AuditFilter{EventType: domain.EventAuthLogin})
	require.NoError(t, err)
	require.Len(t, page.Data, 1)
	assert.Equal(t, pair.User.ID, page.Data[0].UserID)
	assert.Equal(t, "127.0.0.1", page.Data[0].IPAddress)
}

func TestFailedLoginWritesAnonymousAuditRow(t *testing.T) {
	svc, audit, _, orgID := newAuthFixture(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, RegisterInput{Email: "d@example.com", Password: "hunter2hunter2", OrganizationID: orgID})
	require.NoError(t, err)

	_, err = svc.Login(ctx, "d@example.com", "wrong-password", "10.0.0.1", "go-test")
	assert.ErrorIs(t, err, port.ErrUnauthorized)

	page, err := audit.FindAll(ctx, port.AuditFilter{EventType: domain.EventAuthFailed})
	require.NoError(t, err)
	require.Len(t, page.Data, 1)
	assert.Empty(t, page.Data[0].UserID)
	assert.Equal(t, "10.0.0.1", page.Data[0].IPAddress)
}

func TestLoginUnknownUserFailsClosed(t *testing.T) {
	svc, audit, _, _ := newAuthFixture(t)
	ctx := context.Background()

	_, err := svc.Login(ctx, "ghost@example.com", "whatever-pass", "", "")
	assert.ErrorIs(t, err, port.ErrUnauthorized)

	page, err := audit.FindAll(ctx, port.AuditFilter{EventType: domain.EventAuthFailed})
	require.NoError(t, err)
	assert.Len(t, page.Data, 1)
}

func TestLoginDeactivatedUserRejected(t *testing.T) {
	svc, _, mem, orgID := newAuthFixture(t)
	ctx := context.Background()

	pair, err := svc.Register(ctx, RegisterInput{Email: "e@example.com", Password: "hunter2hunter2", OrganizationID: orgID})
	require.NoError(t, err)
	require.NoError(t, mem.DeactivateUser(ctx, pair.User.ID))

	_, err = svc.Login(ctx, "e@example.com", "hunter2hunter2", "", "")
	assert.ErrorIs(t, err, port.ErrUnauthorized)
}

func TestRefreshIssuesNewPair(t *testing.T) {
	svc, _, _, orgID := newAuthFixture(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, RegisterInput{Email: "f@example.com", Password: "hunter2hunter2", OrganizationID: orgID})
	require.NoError(t, err)
	pair, err := svc.Login(ctx, "f@example.com", "hunter2hunter2", "", "")
	require.NoError(t, err)

	refreshed, err := svc.Refresh(ctx, pair.RefreshToken)
	require.NoError(t, err)
	assert.NotEmpty(t, refreshed.AccessToken)
	assert.Equal(t, pair.User.ID, refreshed.User.ID)

	// An access token is signed with the wrong secret for refresh.
	_, err = svc.Refresh(ctx, pair.AccessToken)
	assert.ErrorIs(t, err, port.ErrUnauthorized)
}

func TestLogoutWritesAuditRow(t *testing.T) {
	svc, audit, _, orgID := newAuthFixture(t)
	ctx := context.Background()

	pair, err := svc.Register(ctx, RegisterInput{Email: "g@example.com", Password: "hunter2hunter2", OrganizationID: orgID})
	require.NoError(t, err)

	svc.Logout(ctx, &domain.Principal{UserID: pair.User.ID, Email: pair.User.Email, OrganizationID: orgID}, "127.0.0.1", "go-test")

	page, err := audit.FindAll(ctx, port.AuditFilter{EventType: domain.EventAuthLogout})
	require.NoError(t, err)
	require.Len(t, page.Data, 1)
	assert.Equal(t, pair.User.ID, page.Data[0].UserID)
}
