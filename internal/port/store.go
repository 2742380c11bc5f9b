package port

import (
	"context"
	"time"

	"github.com/aosagula/adm/internal/domain"
)

// Repository interfaces for every aggregate. The Postgres store implements
// all of them; the in-memory store mirrors it for tests. Each store is
// instantiated once per process with explicit open/close lifecycle calls.

// OrganizationStore reads tenant records.
type OrganizationStore interface {
	GetOrganization(ctx context.Context, id string) (*domain.Organization, error)
	ListOrganizations(ctx context.Context) ([]domain.Organization, error)
}

// UserStore manages accounts, roles and role assignments.
type UserStore interface {
	CreateUser(ctx context.Context, u *domain.User) (*domain.User, error)
	// GetUserByEmail loads a user with roles and permissions expanded.
	// Used by authentication; not tenant-scoped.
	GetUserByEmail(ctx context.Context, email string) (*domain.User, error)
	GetUserByID(ctx context.Context, id string) (*domain.User, error)
	GetUser(ctx context.Context, id, organizationID string) (*domain.User, error)
	ListUsers(ctx context.Context, organizationID string) ([]domain.User, error)
	UpdateUser(ctx context.Context, u *domain.User) (*domain.User, error)
	DeactivateUser(ctx context.Context, id string) error
	SetLastLogin(ctx context.Context, id string, at time.Time) error
	AssignRole(ctx context.Context, userID, roleID string) error
	RemoveRole(ctx context.Context, userID, roleID string) error
	GetRole(ctx context.Context, roleID string) (*domain.Role, error)
	// DefaultRole returns the role to assign on registration, or nil when
	// none is configured.
	DefaultRole(ctx context.Context) (*domain.Role, error)
}

// ProjectFilter narrows project listings. Empty fields are ignored.
type ProjectFilter struct {
	Status     string
	Visibility string
	OwnerID    string
}

// ProjectStore manages projects and their membership lists.
type ProjectStore interface {
	CreateProject(ctx context.Context, p *domain.Project) (*domain.Project, error)
	// GetProject returns the project with members loaded, scoped to the
	// caller's organization. Archived projects resolve normally; callers
	// decide what archived means for them.
	GetProject(ctx context.Context, id, organizationID string) (*domain.Project, error)
	GetProjectBySlug(ctx context.Context, slug, organizationID string) (*domain.Project, error)
	ListProjects(ctx context.Context, organizationID string, f ProjectFilter) ([]domain.Project, error)
	UpdateProject(ctx context.Context, p *domain.Project) (*domain.Project, error)
	AddProjectMember(ctx context.Context, m *domain.ProjectMember) (*domain.ProjectMember, error)
	GetProjectMember(ctx context.Context, projectID, userID string) (*domain.ProjectMember, error)
	RemoveProjectMember(ctx context.Context, memberID string) error
}

// AgentFilter narrows agent listings. Nil/empty fields are ignored.
type AgentFilter struct {
	ProjectID string
	IsActive  *bool
	Search    string
	Page      int
	Limit     int
}

// AgentStore manages agents and their prompts.
type AgentStore interface {
	CreateAgent(ctx context.Context, a *domain.Agent) (*domain.Agent, error)
	GetAgent(ctx context.Context, id, organizationID string) (*domain.Agent, error)
	ListAgents(ctx context.Context, organizationID string, f AgentFilter) ([]domain.Agent, int, error)
	ListAgentsByProject(ctx context.Context, projectID string) ([]domain.Agent, error)
	UpdateAgent(ctx context.Context, a *domain.Agent) (*domain.Agent, error)
	DeleteAgent(ctx context.Context, id string) error
	CreateAgentPrompt(ctx context.Context, p *domain.AgentPrompt) (*domain.AgentPrompt, error)
	ListAgentPrompts(ctx context.Context, agentID string) ([]domain.AgentPrompt, error)
}

// TemplateFilter narrows template listings.
type TemplateFilter struct {
	Category string
	IsPublic *bool
}

// TemplateStore manages templates. Reads see the organization's templates
// plus public ones from any organization.
type TemplateStore interface {
	CreateTemplate(ctx context.Context, t *domain.Template) (*domain.Template, error)
	GetTemplate(ctx context.Context, id, organizationID string) (*domain.Template, error)
	ListTemplates(ctx context.Context, organizationID string, f TemplateFilter) ([]domain.Template, error)
	UpdateTemplate(ctx context.Context, t *domain.Template) (*domain.Template, error)
	DeleteTemplate(ctx context.Context, id string) error
}

// TechnologyStore manages the technology catalog.
type TechnologyStore interface {
	CreateTechnology(ctx context.Context, t *domain.Technology) (*domain.Technology, error)
	GetTechnology(ctx context.Context, id, organizationID string) (*domain.Technology, error)
	ListTechnologies(ctx context.Context, organizationID, category string) ([]domain.Technology, error)
	UpdateTechnology(ctx context.Context, t *domain.Technology) (*domain.Technology, error)
	DeleteTechnology(ctx context.Context, id string) error
}

// PlatformStore manages deployment platforms.
type PlatformStore interface {
	CreatePlatform(ctx context.Context, p *domain.Platform) (*domain.Platform, error)
	GetPlatform(ctx context.Context, id, organizationID string) (*domain.Platform, error)
	ListPlatforms(ctx context.Context, organizationID, provider string) ([]domain.Platform, error)
	UpdatePlatform(ctx context.Context, p *domain.Platform) (*domain.Platform, error)
	DeletePlatform(ctx context.Context, id string) error
}

// TagStore manages organization tags.
type TagStore interface {
	CreateTag(ctx context.Context, t *domain.Tag) (*domain.Tag, error)
	GetTag(ctx context.Context, id, organizationID string) (*domain.Tag, error)
	GetTagByName(ctx context.Context, name, organizationID string) (*domain.Tag, error)
	ListTags(ctx context.Context, organizationID string, isSystem *bool) ([]domain.Tag, error)
	UpdateTag(ctx context.Context, t *domain.Tag) (*domain.Tag, error)
	DeleteTag(ctx context.Context, id string) error
}

// AuditFilter narrows audit log reads. A Limit <= 0 disables pagination
// (used by export).
type AuditFilter struct {
	EventType string
	Resource  string
	UserID    string
	StartDate *time.Time
	EndDate   *time.Time
	Page      int
	Limit     int
}

// AuditStore is the append-only audit log. There is deliberately no update
// or delete method.
type AuditStore interface {
	InsertAuditLog(ctx context.Context, l *domain.AuditLog) (*domain.AuditLog, error)
	// ListAuditLogs returns matching rows newest-first along with the total
	// match count (pre-pagination).
	ListAuditLogs(ctx context.Context, f AuditFilter) ([]domain.AuditLog, int, error)
	GetAuditLog(ctx context.Context, id string) (*domain.AuditLog, error)
}

// VersionStore is the append-only configuration version history. Rows are
// never updated or deleted.
type VersionStore interface {
	// InsertVersion persists the row. It returns ErrVersionConflict when a
	// row with the same (project, type, entity, version) key already exists.
	InsertVersion(ctx context.Context, v *domain.ConfigurationVersion) (*domain.ConfigurationVersion, error)
	// LatestVersion returns the highest-numbered version for the key, or
	// (nil, nil) when the entity has no versions yet.
	LatestVersion(ctx context.Context, projectID, configurationType, entityID string) (*domain.ConfigurationVersion, error)
	GetVersion(ctx context.Context, id string) (*domain.ConfigurationVersion, error)
	// ListVersions returns versions for a project newest-first, optionally
	// filtered to a single entity (entityID == "" means all).
	ListVersions(ctx context.Context, projectID, entityID string) ([]domain.ConfigurationVersion, error)
}
