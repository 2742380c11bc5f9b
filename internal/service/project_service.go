package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"regexp"
	"strings"

	"github.com/aosagula/adm/internal/domain"
	"github.com/aosagula/adm/internal/port"
)

// ProjectService manages projects and their membership, snapshotting every
// mutation into the configuration history.
type ProjectService struct {
	projects   port.ProjectStore
	versioning *VersioningService
	audit      *AuditService
}

// NewProjectService creates a new project service.
func NewProjectService(projects port.ProjectStore, versioning *VersioningService, audit *AuditService) *ProjectService {
	return &ProjectService{projects: projects, versioning: versioning, audit: audit}
}

var slugPattern = regexp.MustCompile(`[^a-z0-9]+`)

// Slugify lowercases the name and collapses runs of non-alphanumerics into
// single hyphens.
func Slugify(name string) string {
	slug := slugPattern.ReplaceAllString(strings.ToLower(name), "-")
	return strings.Trim(slug, "-")
}

// CreateProjectInput carries a new project request.
type CreateProjectInput struct {
	Name            string
	Slug            string
	Description     string
	LongDescription string
	Visibility      string
	TemplateID      string
}

// Create creates a project owned by the caller. The owner is added as an
// OWNER member and the project snapshot becomes version 1 of its history.
func (s *ProjectService) Create(ctx context.Context, p *domain.Principal, in CreateProjectInput) (*domain.Project, error) {
	slug := in.Slug
	if slug == "" {
		slug = Slugify(in.Name)
	}
	visibility := in.Visibility
	if visibility == "" {
		visibility = domain.VisibilityPrivate
	}

	project, err := s.projects.CreateProject(ctx, &domain.Project{
		OrganizationID:  p.OrganizationID,
		OwnerID:         p.UserID,
		TemplateID:      in.TemplateID,
		Name:            in.Name,
		Slug:            slug,
		Description:     in.Description,
		LongDescription: in.LongDescription,
		Visibility:      visibility,
		Status:          domain.ProjectStatusDevelopment,
	})
	if err != nil {
		return nil, fmt.Errorf("create project: %w", err)
	}

	if _, err := s.projects.AddProjectMember(ctx, &domain.ProjectMember{
		ProjectID: project.ID,
		UserID:    p.UserID,
		Role:      domain.MemberRoleOwner,
	}); err != nil {
		slog.Error("owner membership insert failed", "project", project.ID, "error", err)
	}

	s.snapshot(ctx, project, "Initial version", p.UserID)
	s.audit.Record(ctx, AuditEvent{
		EventType:   domain.EventCreate,
		Resource:    "projects",
		ResourceID:  project.ID,
		Action:      "create",
		Description: fmt.Sprintf("Project %s created", project.Name),
		UserID:      p.UserID,
		NewValues:   marshalValues(project),
	})
	slog.Info("project created", "project", project.ID, "slug", project.Slug)
	return s.projects.GetProject(ctx, project.ID, p.OrganizationID)
}

// List returns the organization's projects matching the filter.
func (s *ProjectService) List(ctx context.Context, p *domain.Principal, f port.ProjectFilter) ([]domain.Project, error) {
	return s.projects.ListProjects(ctx, p.OrganizationID, f)
}

// Get returns a project in the caller's organization.
func (s *ProjectService) Get(ctx context.Context, p *domain.Principal, id string) (*domain.Project, error) {
	return s.projects.GetProject(ctx, id, p.OrganizationID)
}

// UpdateProjectInput carries project field updates. Empty fields keep their
// current value.
type UpdateProjectInput struct {
	Name            string
	Description     string
	LongDescription string
	Visibility      string
}

// Update applies field changes. Only members may update; each update appends
// a version and an audit row carrying old and new values.
func (s *ProjectService) Update(ctx context.Context, p *domain.Principal, id string, in UpdateProjectInput) (*domain.Project, error) {
	project, err := s.projects.GetProject(ctx, id, p.OrganizationID)
	if err != nil {
		return nil, err
	}
	if !project.IsMember(p.UserID) {
		return nil, fmt.Errorf("not a project member: %w", port.ErrForbidden)
	}

	old := marshalValues(project)
	if in.Name != "" {
		project.Name = in.Name
	}
	if in.Description != "" {
		project.Description = in.Description
	}
	if in.LongDescription != "" {
		project.LongDescription = in.LongDescription
	}
	if in.Visibility != "" {
		project.Visibility = in.Visibility
	}

	updated, err := s.projects.UpdateProject(ctx, project)
	if err != nil {
		return nil, fmt.Errorf("update project: %w", err)
	}

	s.snapshot(ctx, updated, "Project updated", p.UserID)
	s.audit.Record(ctx, AuditEvent{
		EventType:   domain.EventUpdate,
		Resource:    "projects",
		ResourceID:  updated.ID,
		Action:      "update",
		Description: fmt.Sprintf("Project %s updated", updated.Name),
		UserID:      p.UserID,
		OldValues:   old,
		NewValues:   marshalValues(updated),
	})
	return updated, nil
}

// UpdateStatus moves the project through its lifecycle and records a
// STATUS_CHANGE audit row.
func (s *ProjectService) UpdateStatus(ctx context.Context, p *domain.Principal, id, status string) (*domain.Project, error) {
	switch status {
	case domain.ProjectStatusDevelopment, domain.ProjectStatusTesting,
		domain.ProjectStatusProduction, domain.ProjectStatusArchived:
	default:
		return nil, fmt.Errorf("status %q: %w", status, port.ErrInvalid)
	}

	project, err := s.projects.GetProject(ctx, id, p.OrganizationID)
	if err != nil {
		return nil, err
	}
	if !project.IsMember(p.UserID) {
		return nil, fmt.Errorf("not a project member: %w", port.ErrForbidden)
	}

	previous := project.Status
	project.Status = status
	updated, err := s.projects.UpdateProject(ctx, project)
	if err != nil {
		return nil, fmt.Errorf("update project status: %w", err)
	}

	s.audit.Record(ctx, AuditEvent{
		EventType:   domain.EventStatusChange,
		Resource:    "projects",
		ResourceID:  updated.ID,
		Action:      "update_status",
		Description: fmt.Sprintf("Project %s moved from %s to %s", updated.Name, previous, status),
		UserID:      p.UserID,
	})
	return updated, nil
}

// Archive is the project delete: owner-only, and the row stays behind with
// ARCHIVED status so its history remains readable.
func (s *ProjectService) Archive(ctx context.Context, p *domain.Principal, id string) error {
	project, err := s.projects.GetProject(ctx, id, p.OrganizationID)
	if err != nil {
		return err
	}
	if project.OwnerID != p.UserID {
		return fmt.Errorf("only the owner may archive: %w", port.ErrForbidden)
	}

	project.Status = domain.ProjectStatusArchived
	if _, err := s.projects.UpdateProject(ctx, project); err != nil {
		return fmt.Errorf("archive project: %w", err)
	}

	s.audit.Record(ctx, AuditEvent{
		EventType:   domain.EventDelete,
		Resource:    "projects",
		ResourceID:  project.ID,
		Action:      "archive",
		Description: fmt.Sprintf("Project %s archived", project.Name),
		UserID:      p.UserID,
	})
	slog.Info("project archived", "project", project.ID)
	return nil
}

// AddMember adds a user to the project. Owner-only.
func (s *ProjectService) AddMember(ctx context.Context, p *domain.Principal, projectID, userID, role string) (*domain.ProjectMember, error) {
	switch role {
	case domain.MemberRoleOwner, domain.MemberRoleEditor, domain.MemberRoleViewer:
	default:
		return nil, fmt.Errorf("member role %q: %w", role, port.ErrInvalid)
	}

	project, err := s.projects.GetProject(ctx, projectID, p.OrganizationID)
	if err != nil {
		return nil, err
	}
	if project.OwnerID != p.UserID {
		return nil, fmt.Errorf("only the owner may manage members: %w", port.ErrForbidden)
	}

	member, err := s.projects.AddProjectMember(ctx, &domain.ProjectMember{
		ProjectID: projectID,
		UserID:    userID,
		Role:      role,
	})
	if err != nil {
		return nil, fmt.Errorf("add project member: %w", err)
	}

	s.audit.Record(ctx, AuditEvent{
		EventType:   domain.EventCreate,
		Resource:    "project_members",
		ResourceID:  member.ID,
		Action:      "add_member",
		Description: fmt.Sprintf("User %s added to project %s as %s", userID, project.Name, role),
		UserID:      p.UserID,
	})
	return member, nil
}

// RemoveMember removes a user from the project. Owner-only; the owner's own
// membership cannot be removed.
func (s *ProjectService) RemoveMember(ctx context.Context, p *domain.Principal, projectID, userID string) error {
	project, err := s.projects.GetProject(ctx, projectID, p.OrganizationID)
	if err != nil {
		return err
	}
	if project.OwnerID != p.UserID {
		return fmt.Errorf("only the owner may manage members: %w", port.ErrForbidden)
	}
	if userID == project.OwnerID {
		return fmt.Errorf("owner membership is fixed: %w", port.ErrInvalid)
	}

	member, err := s.projects.GetProjectMember(ctx, projectID, userID)
	if err != nil {
		return err
	}
	if err := s.projects.RemoveProjectMember(ctx, member.ID); err != nil {
		return fmt.Errorf("remove project member: %w", err)
	}

	s.audit.Record(ctx, AuditEvent{
		EventType:   domain.EventDelete,
		Resource:    "project_members",
		ResourceID:  member.ID,
		Action:      "remove_member",
		Description: fmt.Sprintf("User %s removed from project %s", userID, project.Name),
		UserID:      p.UserID,
	})
	return nil
}

func (s *ProjectService) snapshot(ctx context.Context, project *domain.Project, summary, userID string) {
	content := marshalValues(struct {
		Name            string `json:"name"`
		Slug            string `json:"slug"`
		Description     string `json:"description"`
		LongDescription string `json:"long_description"`
		Visibility      string `json:"visibility"`
		Status          string `json:"status"`
	}{
		Name:            project.Name,
		Slug:            project.Slug,
		Description:     project.Description,
		LongDescription: project.LongDescription,
		Visibility:      project.Visibility,
		Status:          project.Status,
	})
	if _, err := s.versioning.CreateVersion(ctx, CreateVersionInput{
		ProjectID:         project.ID,
		ConfigurationType: domain.ConfigTypeProject,
		EntityID:          project.ID,
		Content:           content,
		ChangesSummary:    summary,
		CreatedBy:         userID,
	}); err != nil {
		slog.Error("project version snapshot failed", "project", project.ID, "error", err)
	}
}

// marshalValues serializes audit/version payloads, falling back to null on
// marshal failure so a bad payload never blocks the action.
func marshalValues(v any) json.RawMessage {
	b, err := json.Marshal(v)
	if err != nil {
		return json.RawMessage("null")
	}
	return b
}
