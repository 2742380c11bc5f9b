package service

import (
	"context"
	"testing"

	"github.com/aosagula/adm/internal/adapter/store"
	"github.com/aosagula/adm/internal/domain"
	"github.com/aosagula/adm/internal/port"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type projectFixture struct {
	mem        *store.MemoryStore
	projects   *ProjectService
	versioning *VersioningService
	audit      *AuditService
	principal  *domain.Principal
}

func newProjectFixture(t *testing.T) *projectFixture {
	t.Helper()
	mem := store.NewMemoryStore()
	org := mem.SeedOrganization(domain.Organization{Name: "Acme", Slug: "acme"})
	owner, err := mem.CreateUser(context.Background(), &domain.User{
		Email:          "owner@example.com",
		OrganizationID: org.ID,
		IsActive:       true,
	})
	require.NoError(t, err)

	audit := NewAuditService(mem)
	versioning := NewVersioningService(mem)
	return &projectFixture{
		mem:        mem,
		projects:   NewProjectService(mem, versioning, audit),
		versioning: versioning,
		audit:      audit,
		principal: &domain.Principal{
			UserID:         owner.ID,
			Email:          owner.Email,
			OrganizationID: org.ID,
		},
	}
}

func (f *projectFixture) otherPrincipal(t *testing.T, email string) *domain.Principal {
	t.Helper()
	u, err := f.mem.CreateUser(context.Background(), &domain.User{
		Email:          email,
		OrganizationID: f.principal.OrganizationID,
		IsActive:       true,
	})
	require.NoError(t, err)
	return &domain.Principal{UserID: u.ID, Email: u.Email, OrganizationID: f.principal.OrganizationID}
}

func TestSlugify(t *testing.T) {
	assert.Equal(t, "my-cool-project", Slugify("My Cool  Project"))
	assert.Equal(t, "agent-v2", Slugify("Agent (v2)!"))
	assert.Equal(t, "x", Slugify("--x--"))
}

func TestCreateProjectDefaults(t *testing.T) {
	f := newProjectFixture(t)
	ctx := context.Background()

	project, err := f.projects.Create(ctx, f.principal, CreateProjectInput{Name: "My Project"})
	require.NoError(t, err)
	assert.Equal(t, "my-project", project.Slug)
	assert.Equal(t, domain.VisibilityPrivate, project.Visibility)
	assert.Equal(t, domain.ProjectStatusDevelopment, project.Status)
	assert.Equal(t, f.principal.UserID, project.OwnerID)

	// Owner is auto-added as OWNER member.
	require.Len(t, project.Members, 1)
	assert.Equal(t, domain.MemberRoleOwner, project.Members[0].Role)

	// Version 1 of the project snapshot exists.
	history, err := f.versioning.GetVersionHistory(ctx, project.ID, project.ID)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, 1, history[0].Version)
	assert.Equal(t, domain.ConfigTypeProject, history[0].ConfigurationType)
}

func TestCreateProjectDuplicateSlugConflicts(t *testing.T) {
	f := newProjectFixture(t)
	ctx := context.Background()

	_, err := f.projects.Create(ctx, f.principal, CreateProjectInput{Name: "Same"})
	require.NoError(t, err)
	_, err = f.projects.Create(ctx, f.principal, CreateProjectInput{Name: "Same"})
	assert.ErrorIs(t, err, port.ErrConflict)
}

func TestGetProjectScopedToOrganization(t *testing.T) {
	f := newProjectFixture(t)
	ctx := context.Background()

	project, err := f.projects.Create(ctx, f.principal, CreateProjectInput{Name: "Scoped"})
	require.NoError(t, err)

	stranger := &domain.Principal{UserID: uuid.NewString(), OrganizationID: uuid.NewString()}
	_, err = f.projects.Get(ctx, stranger, project.ID)
	assert.ErrorIs(t, err, port.ErrNotFound)
}

func TestUpdateProjectAppendsVersionAndAudit(t *testing.T) {
	f := newProjectFixture(t)
	ctx := context.Background()

	project, err := f.projects.Create(ctx, f.principal, CreateProjectInput{Name: "Before"})
	require.NoError(t, err)

	updated, err := f.projects.Update(ctx, f.principal, project.ID, UpdateProjectInput{Name: "After"})
	require.NoError(t, err)
	assert.Equal(t, "After", updated.Name)

	history, err := f.versioning.GetVersionHistory(ctx, project.ID, project.ID)
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Contains(t, history[0].Diff, `-  "name": "Before"`)
	assert.Contains(t, history[0].Diff, `+  "name": "After"`)

	page, err := f.audit.FindAll(ctx, port.AuditFilter{EventType: domain.EventUpdate, Resource: "projects"})
	require.NoError(t, err)
	require.Len(t, page.Data, 1)
	assert.NotEmpty(t, page.Data[0].OldValues)
	assert.NotEmpty(t, page.Data[0].NewValues)
}

func TestUpdateProjectNonMemberForbidden(t *testing.T) {
	f := newProjectFixture(t)
	ctx := context.Background()

	project, err := f.projects.Create(ctx, f.principal, CreateProjectInput{Name: "Locked"})
	require.NoError(t, err)

	outsider := f.otherPrincipal(t, "outsider@example.com")
	_, err = f.projects.Update(ctx, outsider, project.ID, UpdateProjectInput{Name: "Hacked"})
	assert.ErrorIs(t, err, port.ErrForbidden)
}

func TestUpdateStatusRecordsStatusChange(t *testing.T) {
	f := newProjectFixture(t)
	ctx := context.Background()

	project, err := f.projects.Create(ctx, f.principal, CreateProjectInput{Name: "Lifecycle"})
	require.NoError(t, err)

	updated, err := f.projects.UpdateStatus(ctx, f.principal, project.ID, domain.ProjectStatusProduction)
	require.NoError(t, err)
	assert.Equal(t, domain.ProjectStatusProduction, updated.Status)

	_, err = f.projects.UpdateStatus(ctx, f.principal, project.ID, "LIMBO")
	assert.ErrorIs(t, err, port.ErrInvalid)

	page, err := f.audit.FindAll(ctx, port.AuditFilter{EventType: domain.EventStatusChange})
	require.NoError(t, err)
	assert.Len(t, page.Data, 1)
}

func TestArchiveKeepsRowAndHistory(t *testing.T) {
	f := newProjectFixture(t)
	ctx := context.Background()

	project, err := f.projects.Create(ctx, f.principal, CreateProjectInput{Name: "Doomed"})
	require.NoError(t, err)

	// Non-owner cannot archive.
	outsider := f.otherPrincipal(t, "member@example.com")
	err = f.projects.Archive(ctx, outsider, project.ID)
	assert.ErrorIs(t, err, port.ErrForbidden)

	require.NoError(t, f.projects.Archive(ctx, f.principal, project.ID))

	archived, err := f.projects.Get(ctx, f.principal, project.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.ProjectStatusArchived, archived.Status)

	history, err := f.versioning.GetVersionHistory(ctx, project.ID, project.ID)
	require.NoError(t, err)
	assert.NotEmpty(t, history)
}

func TestMembershipManagement(t *testing.T) {
	f := newProjectFixture(t)
	ctx := context.Background()

	project, err := f.projects.Create(ctx, f.principal, CreateProjectInput{Name: "Team"})
	require.NoError(t, err)
	editor := f.otherPrincipal(t, "editor@example.com")

	member, err := f.projects.AddMember(ctx, f.principal, project.ID, editor.UserID, domain.MemberRoleEditor)
	require.NoError(t, err)
	assert.Equal(t, domain.MemberRoleEditor, member.Role)

	// Editors may update but not manage members.
	_, err = f.projects.Update(ctx, editor, project.ID, UpdateProjectInput{Description: "by editor"})
	require.NoError(t, err)
	_, err = f.projects.AddMember(ctx, editor, project.ID, uuid.NewString(), domain.MemberRoleViewer)
	assert.ErrorIs(t, err, port.ErrForbidden)

	// Owner membership cannot be removed.
	err = f.projects.RemoveMember(ctx, f.principal, project.ID, f.principal.UserID)
	assert.ErrorIs(t, err, port.ErrInvalid)

	require.NoError(t, f.projects.RemoveMember(ctx, f.principal, project.ID, editor.UserID))
	reloaded, err := f.projects.Get(ctx, f.principal, project.ID)
	require.NoError(t, err)
	assert.Len(t, reloaded.Members, 1)
}
