package store

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/aosagula/adm/internal/domain"
	"github.com/aosagula/adm/internal/port"
	"github.com/google/uuid"
)

// MemoryStore is an in-memory implementation of every repository interface
// in internal/port. It backs the test suites and enforces the same
// uniqueness rules as the Postgres schema, including the unique version key
// on configuration_versions.
type MemoryStore struct {
	mu sync.Mutex

	organizations map[string]domain.Organization
	users         map[string]domain.User
	roles         map[string]domain.Role
	userRoles     map[string][]string // userID -> roleIDs
	projects      map[string]domain.Project
	members       map[string]domain.ProjectMember
	agents        map[string]domain.Agent
	prompts       map[string]domain.AgentPrompt
	templates     map[string]domain.Template
	technologies  map[string]domain.Technology
	platforms     map[string]domain.Platform
	tags          map[string]domain.Tag
	auditLogs     []domain.AuditLog
	versions      []domain.ConfigurationVersion
}

// NewMemoryStore returns an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		organizations: map[string]domain.Organization{},
		users:         map[string]domain.User{},
		roles:         map[string]domain.Role{},
		userRoles:     map[string][]string{},
		projects:      map[string]domain.Project{},
		members:       map[string]domain.ProjectMember{},
		agents:        map[string]domain.Agent{},
		prompts:       map[string]domain.AgentPrompt{},
		templates:     map[string]domain.Template{},
		technologies:  map[string]domain.Technology{},
		platforms:     map[string]domain.Platform{},
		tags:          map[string]domain.Tag{},
	}
}

// SeedOrganization inserts a tenant directly; test setup helper.
func (s *MemoryStore) SeedOrganization(o domain.Organization) domain.Organization {
	s.mu.Lock()
	defer s.mu.Unlock()
	if o.ID == "" {
		o.ID = uuid.NewString()
	}
	now := time.Now()
	o.CreatedAt, o.UpdatedAt = now, now
	s.organizations[o.ID] = o
	return o
}

// SeedRole inserts a role with permissions directly; test setup helper.
func (s *MemoryStore) SeedRole(r domain.Role) domain.Role {
	s.mu.Lock()
	defer s.mu.Unlock()
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	s.roles[r.ID] = r
	return r
}

// --- Organizations ---

func (s *MemoryStore) GetOrganization(ctx context.Context, id string) (*domain.Organization, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.organizations[id]
	if !ok {
		return nil, fmt.Errorf("organization %s: %w", id, port.ErrNotFound)
	}
	return &o, nil
}

func (s *MemoryStore) ListOrganizations(ctx context.Context) ([]domain.Organization, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var orgs []domain.Organization
	for _, o := range s.organizations {
		orgs = append(orgs, o)
	}
	sort.Slice(orgs, func(i, j int) bool { return orgs[i].Name < orgs[j].Name })
	return orgs, nil
}

// --- Users ---

func (s *MemoryStore) CreateUser(ctx context.Context, u *domain.User) (*domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.users {
		if existing.Email == u.Email {
			return nil, fmt.Errorf("user %s: %w", u.Email, port.ErrConflict)
		}
	}
	created := *u
	created.ID = uuid.NewString()
	now := time.Now()
	created.CreatedAt, created.UpdatedAt = now, now
	s.users[created.ID] = created
	out := created
	return &out, nil
}

func (s *MemoryStore) GetUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.Email == email {
			out := u
			out.Roles = s.rolesOf(u.ID)
			return &out, nil
		}
	}
	return nil, fmt.Errorf("user %s: %w", email, port.ErrNotFound)
}

func (s *MemoryStore) GetUserByID(ctx context.Context, id string) (*domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return nil, fmt.Errorf("user %s: %w", id, port.ErrNotFound)
	}
	out := u
	out.Roles = s.rolesOf(id)
	return &out, nil
}

func (s *MemoryStore) GetUser(ctx context.Context, id, organizationID string) (*domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok || u.OrganizationID != organizationID {
		return nil, fmt.Errorf("user %s: %w", id, port.ErrNotFound)
	}
	out := u
	out.Roles = s.rolesOf(id)
	return &out, nil
}

func (s *MemoryStore) ListUsers(ctx context.Context, organizationID string) ([]domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var users []domain.User
	for _, u := range s.users {
		if u.OrganizationID == organizationID {
			u.Roles = s.rolesOf(u.ID)
			users = append(users, u)
		}
	}
	sort.Slice(users, func(i, j int) bool { return users[i].CreatedAt.After(users[j].CreatedAt) })
	return users, nil
}

func (s *MemoryStore) UpdateUser(ctx context.Context, u *domain.User) (*domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	existing, ok := s.users[u.ID]
	if !ok {
		return nil, fmt.Errorf("user %s: %w", u.ID, port.ErrNotFound)
	}
	existing.FirstName = u.FirstName
	existing.LastName = u.LastName
	existing.AvatarURL = u.AvatarURL
	existing.IsActive = u.IsActive
	existing.IsVerified = u.IsVerified
	existing.UpdatedAt = time.Now()
	s.users[u.ID] = existing
	out := existing
	return &out, nil
}

func (s *MemoryStore) DeactivateUser(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return fmt.Errorf("user %s: %w", id, port.ErrNotFound)
	}
	u.IsActive = false
	u.UpdatedAt = time.Now()
	s.users[id] = u
	return nil
}

func (s *MemoryStore) SetLastLogin(ctx context.Context, id string, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return fmt.Errorf("user %s: %w", id, port.ErrNotFound)
	}
	u.LastLoginAt = &at
	s.users[id] = u
	return nil
}

func (s *MemoryStore) AssignRole(ctx context.Context, userID, roleID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, id := range s.userRoles[userID] {
		if id == roleID {
			return nil
		}
	}
	s.userRoles[userID] = append(s.userRoles[userID], roleID)
	return nil
}

func (s *MemoryStore) RemoveRole(ctx context.Context, userID, roleID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	ids := s.userRoles[userID]
	for i, id := range ids {
		if id == roleID {
			s.userRoles[userID] = append(ids[:i], ids[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("user role assignment: %w", port.ErrNotFound)
}

func (s *MemoryStore) GetRole(ctx context.Context, roleID string) (*domain.Role, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.roles[roleID]
	if !ok {
		return nil, fmt.Errorf("role %s: %w", roleID, port.ErrNotFound)
	}
	return &r, nil
}

func (s *MemoryStore) DefaultRole(ctx context.Context) (*domain.Role, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, r := range s.roles {
		if r.IsDefault {
			out := r
			return &out, nil
		}
	}
	return nil, nil
}

func (s *MemoryStore) rolesOf(userID string) []domain.Role {
	var roles []domain.Role
	for _, roleID := range s.userRoles[userID] {
		if r, ok := s.roles[roleID]; ok {
			roles = append(roles, r)
		}
	}
	return roles
}

// --- Projects ---

func (s *MemoryStore) CreateProject(ctx context.Context, p *domain.Project) (*domain.Project, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.projects {
		if existing.OrganizationID == p.OrganizationID && existing.Slug == p.Slug {
			return nil, fmt.Errorf("project slug %s: %w", p.Slug, port.ErrConflict)
		}
	}
	created := *p
	created.ID = uuid.NewString()
	now := time.Now()
	created.CreatedAt, created.UpdatedAt = now, now
	created.Members = nil
	s.projects[created.ID] = created
	out := created
	return &out, nil
}

func (s *MemoryStore) GetProject(ctx context.Context, id, organizationID string) (*domain.Project, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.projects[id]
	if !ok || p.OrganizationID != organizationID {
		return nil, fmt.Errorf("project %s: %w", id, port.ErrNotFound)
	}
	out := p
	out.Members = s.membersOf(id)
	return &out, nil
}

func (s *MemoryStore) GetProjectBySlug(ctx context.Context, slug, organizationID string) (*domain.Project, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, p := range s.projects {
		if p.OrganizationID == organizationID && p.Slug == slug {
			out := p
			return &out, nil
		}
	}
	return nil, fmt.Errorf("project %s: %w", slug, port.ErrNotFound)
}

func (s *MemoryStore) ListProjects(ctx context.Context, organizationID string, f port.ProjectFilter) ([]domain.Project, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var projects []domain.Project
	for _, p := range s.projects {
		if p.OrganizationID != organizationID {
			continue
		}
		if f.Status != "" && p.Status != f.Status {
			continue
		}
		if f.Visibility != "" && p.Visibility != f.Visibility {
			continue
		}
		if f.OwnerID != "" && p.OwnerID != f.OwnerID {
			continue
		}
		projects = append(projects, p)
	}
	sort.Slice(projects, func(i, j int) bool { return projects[i].CreatedAt.After(projects[j].CreatedAt) })
	return projects, nil
}

func (s *MemoryStore) UpdateProject(ctx context.Context, p *domain.Project) (*domain.Project, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	existing, ok := s.projects[p.ID]
	if !ok {
		return nil, fmt.Errorf("project %s: %w", p.ID, port.ErrNotFound)
	}
	existing.Name = p.Name
	existing.Description = p.Description
	existing.LongDescription = p.LongDescription
	existing.Visibility = p.Visibility
	existing.Status = p.Status
	existing.UpdatedAt = time.Now()
	s.projects[p.ID] = existing
	out := existing
	out.Members = s.membersOf(p.ID)
	return &out, nil
}

func (s *MemoryStore) AddProjectMember(ctx context.Context, m *domain.ProjectMember) (*domain.ProjectMember, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.members {
		if existing.ProjectID == m.ProjectID && existing.UserID == m.UserID {
			return nil, fmt.Errorf("project member: %w", port.ErrConflict)
		}
	}
	created := *m
	created.ID = uuid.NewString()
	created.CreatedAt = time.Now()
	s.members[created.ID] = created
	out := created
	return &out, nil
}

func (s *MemoryStore) GetProjectMember(ctx context.Context, projectID, userID string) (*domain.ProjectMember, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, m := range s.members {
		if m.ProjectID == projectID && m.UserID == userID {
			out := m
			return &out, nil
		}
	}
	return nil, fmt.Errorf("project member: %w", port.ErrNotFound)
}

func (s *MemoryStore) RemoveProjectMember(ctx context.Context, memberID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.members[memberID]; !ok {
		return fmt.Errorf("project member %s: %w", memberID, port.ErrNotFound)
	}
	delete(s.members, memberID)
	return nil
}

func (s *MemoryStore) membersOf(projectID string) []domain.ProjectMember {
	var members []domain.ProjectMember
	for _, m := range s.members {
		if m.ProjectID == projectID {
			members = append(members, m)
		}
	}
	sort.Slice(members, func(i, j int) bool { return members[i].CreatedAt.Before(members[j].CreatedAt) })
	return members
}

// --- Agents ---

func (s *MemoryStore) CreateAgent(ctx context.Context, a *domain.Agent) (*domain.Agent, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	created := *a
	created.ID = uuid.NewString()
	now := time.Now()
	created.CreatedAt, created.UpdatedAt = now, now
	created.Prompts = nil
	s.agents[created.ID] = created
	out := created
	return &out, nil
}

func (s *MemoryStore) GetAgent(ctx context.Context, id, organizationID string) (*domain.Agent, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.agents[id]
	if !ok {
		return nil, fmt.Errorf("agent %s: %w", id, port.ErrNotFound)
	}
	p, ok := s.projects[a.ProjectID]
	if !ok || p.OrganizationID != organizationID {
		return nil, fmt.Errorf("agent %s: %w", id, port.ErrNotFound)
	}
	out := a
	out.Prompts = s.promptsOf(id)
	return &out, nil
}

func (s *MemoryStore) ListAgents(ctx context.Context, organizationID string, f port.AgentFilter) ([]domain.Agent, int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var agents []domain.Agent
	for _, a := range s.agents {
		p, ok := s.projects[a.ProjectID]
		if !ok || p.OrganizationID != organizationID {
			continue
		}
		if f.ProjectID != "" && a.ProjectID != f.ProjectID {
			continue
		}
		if f.IsActive != nil && a.IsActive != *f.IsActive {
			continue
		}
		if f.Search != "" {
			needle := strings.ToLower(f.Search)
			if !strings.Contains(strings.ToLower(a.Name), needle) &&
				!strings.Contains(strings.ToLower(a.Description), needle) {
				continue
			}
		}
		agents = append(agents, a)
	}
	sort.Slice(agents, func(i, j int) bool { return agents[i].CreatedAt.After(agents[j].CreatedAt) })
	total := len(agents)
	if f.Limit > 0 {
		start := 0
		if f.Page > 1 {
			start = (f.Page - 1) * f.Limit
		}
		if start > len(agents) {
			start = len(agents)
		}
		end := start + f.Limit
		if end > len(agents) {
			end = len(agents)
		}
		agents = agents[start:end]
	}
	return agents, total, nil
}

func (s *MemoryStore) ListAgentsByProject(ctx context.Context, projectID string) ([]domain.Agent, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var agents []domain.Agent
	for _, a := range s.agents {
		if a.ProjectID == projectID {
			agents = append(agents, a)
		}
	}
	sort.Slice(agents, func(i, j int) bool { return agents[i].CreatedAt.After(agents[j].CreatedAt) })
	return agents, nil
}

func (s *MemoryStore) UpdateAgent(ctx context.Context, a *domain.Agent) (*domain.Agent, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	existing, ok := s.agents[a.ID]
	if !ok {
		return nil, fmt.Errorf("agent %s: %w", a.ID, port.ErrNotFound)
	}
	existing.Name = a.Name
	existing.Description = a.Description
	existing.Config = a.Config
	existing.IsActive = a.IsActive
	existing.UpdatedAt = time.Now()
	s.agents[a.ID] = existing
	out := existing
	return &out, nil
}

func (s *MemoryStore) DeleteAgent(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.agents[id]; !ok {
		return fmt.Errorf("agent %s: %w", id, port.ErrNotFound)
	}
	delete(s.agents, id)
	for pid, p := range s.prompts {
		if p.AgentID == id {
			delete(s.prompts, pid)
		}
	}
	return nil
}

func (s *MemoryStore) CreateAgentPrompt(ctx context.Context, p *domain.AgentPrompt) (*domain.AgentPrompt, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	created := *p
	created.ID = uuid.NewString()
	created.CreatedAt = time.Now()
	s.prompts[created.ID] = created
	out := created
	return &out, nil
}

func (s *MemoryStore) ListAgentPrompts(ctx context.Context, agentID string) ([]domain.AgentPrompt, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.promptsOf(agentID), nil
}

func (s *MemoryStore) promptsOf(agentID string) []domain.AgentPrompt {
	var prompts []domain.AgentPrompt
	for _, p := range s.prompts {
		if p.AgentID == agentID {
			prompts = append(prompts, p)
		}
	}
	sort.Slice(prompts, func(i, j int) bool { return prompts[i].Order < prompts[j].Order })
	return prompts
}

// --- Templates ---

func (s *MemoryStore) CreateTemplate(ctx context.Context, t *domain.Template) (*domain.Template, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	created := *t
	created.ID = uuid.NewString()
	now := time.Now()
	created.CreatedAt, created.UpdatedAt = now, now
	s.templates[created.ID] = created
	out := created
	return &out, nil
}

func (s *MemoryStore) GetTemplate(ctx context.Context, id, organizationID string) (*domain.Template, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.templates[id]
	if !ok || (t.OrganizationID != organizationID && !t.IsPublic) {
		return nil, fmt.Errorf("template %s: %w", id, port.ErrNotFound)
	}
	out := t
	return &out, nil
}

func (s *MemoryStore) ListTemplates(ctx context.Context, organizationID string, f port.TemplateFilter) ([]domain.Template, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var templates []domain.Template
	for _, t := range s.templates {
		if t.OrganizationID != organizationID && !t.IsPublic {
			continue
		}
		if f.Category != "" && t.Category != f.Category {
			continue
		}
		if f.IsPublic != nil && t.IsPublic != *f.IsPublic {
			continue
		}
		templates = append(templates, t)
	}
	sort.Slice(templates, func(i, j int) bool { return templates[i].CreatedAt.After(templates[j].CreatedAt) })
	return templates, nil
}

func (s *MemoryStore) UpdateTemplate(ctx context.Context, t *domain.Template) (*domain.Template, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	existing, ok := s.templates[t.ID]
	if !ok {
		return nil, fmt.Errorf("template %s: %w", t.ID, port.ErrNotFound)
	}
	existing.Name = t.Name
	existing.Description = t.Description
	existing.Category = t.Category
	existing.BaseConfig = t.BaseConfig
	existing.IsPublic = t.IsPublic
	existing.UpdatedAt = time.Now()
	s.templates[t.ID] = existing
	out := existing
	return &out, nil
}

func (s *MemoryStore) DeleteTemplate(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.templates[id]; !ok {
		return fmt.Errorf("template %s: %w", id, port.ErrNotFound)
	}
	delete(s.templates, id)
	return nil
}

// --- Technologies ---

func (s *MemoryStore) CreateTechnology(ctx context.Context, t *domain.Technology) (*domain.Technology, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	created := *t
	created.ID = uuid.NewString()
	now := time.Now()
	created.CreatedAt, created.UpdatedAt = now, now
	s.technologies[created.ID] = created
	out := created
	return &out, nil
}

func (s *MemoryStore) GetTechnology(ctx context.Context, id, organizationID string) (*domain.Technology, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.technologies[id]
	if !ok || t.OrganizationID != organizationID {
		return nil, fmt.Errorf("technology %s: %w", id, port.ErrNotFound)
	}
	out := t
	return &out, nil
}

func (s *MemoryStore) ListTechnologies(ctx context.Context, organizationID, category string) ([]domain.Technology, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var techs []domain.Technology
	for _, t := range s.technologies {
		if t.OrganizationID != organizationID {
			continue
		}
		if category != "" && t.Category != category {
			continue
		}
		techs = append(techs, t)
	}
	sort.Slice(techs, func(i, j int) bool { return techs[i].Name < techs[j].Name })
	return techs, nil
}

func (s *MemoryStore) UpdateTechnology(ctx context.Context, t *domain.Technology) (*domain.Technology, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	existing, ok := s.technologies[t.ID]
	if !ok {
		return nil, fmt.Errorf("technology %s: %w", t.ID, port.ErrNotFound)
	}
	existing.Name = t.Name
	existing.Category = t.Category
	existing.Version = t.Version
	existing.Description = t.Description
	existing.UpdatedAt = time.Now()
	s.technologies[t.ID] = existing
	out := existing
	return &out, nil
}

func (s *MemoryStore) DeleteTechnology(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.technologies[id]; !ok {
		return fmt.Errorf("technology %s: %w", id, port.ErrNotFound)
	}
	delete(s.technologies, id)
	return nil
}

// --- Platforms ---

func (s *MemoryStore) CreatePlatform(ctx context.Context, p *domain.Platform) (*domain.Platform, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	created := *p
	created.ID = uuid.NewString()
	now := time.Now()
	created.CreatedAt, created.UpdatedAt = now, now
	s.platforms[created.ID] = created
	out := created
	return &out, nil
}

func (s *MemoryStore) GetPlatform(ctx context.Context, id, organizationID string) (*domain.Platform, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.platforms[id]
	if !ok || p.OrganizationID != organizationID {
		return nil, fmt.Errorf("platform %s: %w", id, port.ErrNotFound)
	}
	out := p
	return &out, nil
}

func (s *MemoryStore) ListPlatforms(ctx context.Context, organizationID, provider string) ([]domain.Platform, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var platforms []domain.Platform
	for _, p := range s.platforms {
		if p.OrganizationID != organizationID {
			continue
		}
		if provider != "" && p.Provider != provider {
			continue
		}
		platforms = append(platforms, p)
	}
	sort.Slice(platforms, func(i, j int) bool { return platforms[i].Name < platforms[j].Name })
	return platforms, nil
}

func (s *MemoryStore) UpdatePlatform(ctx context.Context, p *domain.Platform) (*domain.Platform, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	existing, ok := s.platforms[p.ID]
	if !ok {
		return nil, fmt.Errorf("platform %s: %w", p.ID, port.ErrNotFound)
	}
	existing.Name = p.Name
	existing.Provider = p.Provider
	existing.Description = p.Description
	existing.Config = p.Config
	existing.UpdatedAt = time.Now()
	s.platforms[p.ID] = existing
	out := existing
	return &out, nil
}

func (s *MemoryStore) DeletePlatform(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.platforms[id]; !ok {
		return fmt.Errorf("platform %s: %w", id, port.ErrNotFound)
	}
	delete(s.platforms, id)
	return nil
}

// --- Tags ---

func (s *MemoryStore) CreateTag(ctx context.Context, t *domain.Tag) (*domain.Tag, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.tags {
		if existing.OrganizationID == t.OrganizationID && existing.Name == t.Name {
			return nil, fmt.Errorf("tag %s: %w", t.Name, port.ErrConflict)
		}
	}
	created := *t
	created.ID = uuid.NewString()
	now := time.Now()
	created.CreatedAt, created.UpdatedAt = now, now
	s.tags[created.ID] = created
	out := created
	return &out, nil
}

func (s *MemoryStore) GetTag(ctx context.Context, id, organizationID string) (*domain.Tag, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.tags[id]
	if !ok || t.OrganizationID != organizationID {
		return nil, fmt.Errorf("tag %s: %w", id, port.ErrNotFound)
	}
	out := t
	return &out, nil
}

func (s *MemoryStore) GetTagByName(ctx context.Context, name, organizationID string) (*domain.Tag, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, t := range s.tags {
		if t.OrganizationID == organizationID && t.Name == name {
			out := t
			return &out, nil
		}
	}
	return nil, fmt.Errorf("tag %s: %w", name, port.ErrNotFound)
}

func (s *MemoryStore) ListTags(ctx context.Context, organizationID string, isSystem *bool) ([]domain.Tag, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var tags []domain.Tag
	for _, t := range s.tags {
		if t.OrganizationID != organizationID {
			continue
		}
		if isSystem != nil && t.IsSystem != *isSystem {
			continue
		}
		tags = append(tags, t)
	}
	sort.Slice(tags, func(i, j int) bool { return tags[i].Name < tags[j].Name })
	return tags, nil
}

func (s *MemoryStore) UpdateTag(ctx context.Context, t *domain.Tag) (*domain.Tag, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	existing, ok := s.tags[t.ID]
	if !ok {
		return nil, fmt.Errorf("tag %s: %w", t.ID, port.ErrNotFound)
	}
	for _, other := range s.tags {
		if other.ID != t.ID && other.OrganizationID == existing.OrganizationID && other.Name == t.Name {
			return nil, fmt.Errorf("tag %s: %w", t.Name, port.ErrConflict)
		}
	}
	existing.Name = t.Name
	existing.Color = t.Color
	existing.Description = t.Description
	existing.UpdatedAt = time.Now()
	s.tags[t.ID] = existing
	out := existing
	return &out, nil
}

func (s *MemoryStore) DeleteTag(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.tags[id]; !ok {
		return fmt.Errorf("tag %s: %w", id, port.ErrNotFound)
	}
	delete(s.tags, id)
	return nil
}

// --- Audit logs ---

func (s *MemoryStore) InsertAuditLog(ctx context.Context, l *domain.AuditLog) (*domain.AuditLog, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	created := *l
	created.ID = uuid.NewString()
	created.CreatedAt = time.Now()
	s.auditLogs = append(s.auditLogs, created)
	out := created
	return &out, nil
}

func (s *MemoryStore) ListAuditLogs(ctx context.Context, f port.AuditFilter) ([]domain.AuditLog, int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var matched []domain.AuditLog
	// auditLogs is append-only, so reverse iteration is newest-first.
	for i := len(s.auditLogs) - 1; i >= 0; i-- {
		l := s.auditLogs[i]
		if f.EventType != "" && l.EventType != f.EventType {
			continue
		}
		if f.Resource != "" && l.Resource != f.Resource {
			continue
		}
		if f.UserID != "" && l.UserID != f.UserID {
			continue
		}
		if f.StartDate != nil && l.CreatedAt.Before(*f.StartDate) {
			continue
		}
		if f.EndDate != nil && l.CreatedAt.After(*f.EndDate) {
			continue
		}
		matched = append(matched, l)
	}
	total := len(matched)
	if f.Limit > 0 {
		start := 0
		if f.Page > 1 {
			start = (f.Page - 1) * f.Limit
		}
		if start > len(matched) {
			start = len(matched)
		}
		end := start + f.Limit
		if end > len(matched) {
			end = len(matched)
		}
		matched = matched[start:end]
	}
	return matched, total, nil
}

func (s *MemoryStore) GetAuditLog(ctx context.Context, id string) (*domain.AuditLog, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, l := range s.auditLogs {
		if l.ID == id {
			out := l
			return &out, nil
		}
	}
	return nil, fmt.Errorf("audit log %s: %w", id, port.ErrNotFound)
}

// --- Configuration versions ---

func (s *MemoryStore) InsertVersion(ctx context.Context, v *domain.ConfigurationVersion) (*domain.ConfigurationVersion, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.versions {
		if existing.ProjectID == v.ProjectID &&
			existing.ConfigurationType == v.ConfigurationType &&
			existing.EntityID == v.EntityID &&
			existing.Version == v.Version {
			return nil, fmt.Errorf("version %d for %s/%s/%s: %w",
				v.Version, v.ProjectID, v.ConfigurationType, v.EntityID, port.ErrVersionConflict)
		}
	}
	created := *v
	created.ID = uuid.NewString()
	created.CreatedAt = time.Now()
	s.versions = append(s.versions, created)
	out := created
	return &out, nil
}

func (s *MemoryStore) LatestVersion(ctx context.Context, projectID, configurationType, entityID string) (*domain.ConfigurationVersion, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var latest *domain.ConfigurationVersion
	for i := range s.versions {
		v := s.versions[i]
		if v.ProjectID != projectID || v.ConfigurationType != configurationType || v.EntityID != entityID {
			continue
		}
		if latest == nil || v.Version > latest.Version {
			vc := v
			latest = &vc
		}
	}
	return latest, nil
}

func (s *MemoryStore) GetVersion(ctx context.Context, id string) (*domain.ConfigurationVersion, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, v := range s.versions {
		if v.ID == id {
			out := v
			return &out, nil
		}
	}
	return nil, fmt.Errorf("version %s: %w", id, port.ErrNotFound)
}

func (s *MemoryStore) ListVersions(ctx context.Context, projectID, entityID string) ([]domain.ConfigurationVersion, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var versions []domain.ConfigurationVersion
	// versions is append-only, so reverse iteration is newest-first.
	for i := len(s.versions) - 1; i >= 0; i-- {
		v := s.versions[i]
		if v.ProjectID != projectID {
			continue
		}
		if entityID != "" && v.EntityID != entityID {
			continue
		}
		versions = append(versions, v)
	}
	return versions, nil
}
