package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/aosagula/adm/internal/domain"
	"github.com/aosagula/adm/internal/port"
)

const projectColumns = `id, organization_id, owner_id, COALESCE(template_id::text, ''), name, slug,
	COALESCE(description, ''), COALESCE(long_description, ''), visibility, status, created_at, updated_at`

func scanProject(row interface{ Scan(...any) error }) (*domain.Project, error) {
	var p domain.Project
	err := row.Scan(
		&p.ID, &p.OrganizationID, &p.OwnerID, &p.TemplateID, &p.Name, &p.Slug,
		&p.Description, &p.LongDescription, &p.Visibility, &p.Status,
		&p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// CreateProject inserts a new project.
func (s *PostgresStore) CreateProject(ctx context.Context, p *domain.Project) (*domain.Project, error) {
	query := `INSERT INTO projects (organization_id, owner_id, template_id, name, slug, description, long_description, visibility, status)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	          RETURNING ` + projectColumns

	created, err := scanProject(s.db.QueryRowContext(ctx, query,
		p.OrganizationID, p.OwnerID, nullStr(p.TemplateID), p.Name, p.Slug,
		nullStr(p.Description), nullStr(p.LongDescription), p.Visibility, p.Status,
	))
	if isUniqueViolation(err) {
		return nil, fmt.Errorf("project slug %s: %w", p.Slug, port.ErrConflict)
	}
	if err != nil {
		return nil, fmt.Errorf("create project: %w", err)
	}
	return created, nil
}

// GetProject returns a project with members, scoped to an organization.
func (s *PostgresStore) GetProject(ctx context.Context, id, organizationID string) (*domain.Project, error) {
	query := `SELECT ` + projectColumns + ` FROM projects WHERE id = $1 AND organization_id = $2`

	p, err := scanProject(s.db.QueryRowContext(ctx, query, id, organizationID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("project %s: %w", id, port.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get project: %w", err)
	}
	members, err := s.projectMembers(ctx, p.ID)
	if err != nil {
		return nil, err
	}
	p.Members = members
	return p, nil
}

// GetProjectBySlug looks a project up by its organization-unique slug.
func (s *PostgresStore) GetProjectBySlug(ctx context.Context, slug, organizationID string) (*domain.Project, error) {
	query := `SELECT ` + projectColumns + ` FROM projects WHERE slug = $1 AND organization_id = $2`

	p, err := scanProject(s.db.QueryRowContext(ctx, query, slug, organizationID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("project %s: %w", slug, port.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get project by slug: %w", err)
	}
	return p, nil
}

// ListProjects returns an organization's projects, newest first.
func (s *PostgresStore) ListProjects(ctx context.Context, organizationID string, f port.ProjectFilter) ([]domain.Project, error) {
	query := `SELECT ` + projectColumns + ` FROM projects WHERE organization_id = $1`
	args := []any{organizationID}
	argIdx := 2

	if f.Status != "" {
		query += fmt.Sprintf(" AND status = $%d", argIdx)
		args = append(args, f.Status)
		argIdx++
	}
	if f.Visibility != "" {
		query += fmt.Sprintf(" AND visibility = $%d", argIdx)
		args = append(args, f.Visibility)
		argIdx++
	}
	if f.OwnerID != "" {
		query += fmt.Sprintf(" AND owner_id = $%d", argIdx)
		args = append(args, f.OwnerID)
	}

	query += " ORDER BY created_at DESC"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list projects: %w", err)
	}
	defer rows.Close()

	var projects []domain.Project
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return nil, fmt.Errorf("scan project: %w", err)
		}
		projects = append(projects, *p)
	}
	return projects, rows.Err()
}

// UpdateProject updates mutable project fields.
func (s *PostgresStore) UpdateProject(ctx context.Context, p *domain.Project) (*domain.Project, error) {
	query := `UPDATE projects
	          SET name = $1, description = $2, long_description = $3, visibility = $4, status = $5, updated_at = NOW()
	          WHERE id = $6
	          RETURNING ` + projectColumns

	updated, err := scanProject(s.db.QueryRowContext(ctx, query,
		p.Name, nullStr(p.Description), nullStr(p.LongDescription), p.Visibility, p.Status, p.ID,
	))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("project %s: %w", p.ID, port.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("update project: %w", err)
	}
	return updated, nil
}

// AddProjectMember links a user to a project.
func (s *PostgresStore) AddProjectMember(ctx context.Context, m *domain.ProjectMember) (*domain.ProjectMember, error) {
	query := `INSERT INTO project_members (project_id, user_id, role)
	          VALUES ($1, $2, $3)
	          RETURNING id, project_id, user_id, role, created_at`

	var created domain.ProjectMember
	err := s.db.QueryRowContext(ctx, query, m.ProjectID, m.UserID, m.Role).Scan(
		&created.ID, &created.ProjectID, &created.UserID, &created.Role, &created.CreatedAt,
	)
	if isUniqueViolation(err) {
		return nil, fmt.Errorf("project member: %w", port.ErrConflict)
	}
	if err != nil {
		return nil, fmt.Errorf("add project member: %w", err)
	}
	return &created, nil
}

// GetProjectMember returns the membership row for a user within a project.
func (s *PostgresStore) GetProjectMember(ctx context.Context, projectID, userID string) (*domain.ProjectMember, error) {
	query := `SELECT id, project_id, user_id, role, created_at
	          FROM project_members WHERE project_id = $1 AND user_id = $2`

	var m domain.ProjectMember
	err := s.db.QueryRowContext(ctx, query, projectID, userID).Scan(
		&m.ID, &m.ProjectID, &m.UserID, &m.Role, &m.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("project member: %w", port.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get project member: %w", err)
	}
	return &m, nil
}

// RemoveProjectMember deletes a membership row.
func (s *PostgresStore) RemoveProjectMember(ctx context.Context, memberID string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM project_members WHERE id = $1`, memberID)
	if err != nil {
		return fmt.Errorf("remove project member: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("project member %s: %w", memberID, port.ErrNotFound)
	}
	return nil
}

func (s *PostgresStore) projectMembers(ctx context.Context, projectID string) ([]domain.ProjectMember, error) {
	query := `SELECT id, project_id, user_id, role, created_at
	          FROM project_members WHERE project_id = $1 ORDER BY created_at ASC`

	rows, err := s.db.QueryContext(ctx, query, projectID)
	if err != nil {
		return nil, fmt.Errorf("list project members: %w", err)
	}
	defer rows.Close()

	var members []domain.ProjectMember
	for rows.Next() {
		var m domain.ProjectMember
		if err := rows.Scan(&m.ID, &m.ProjectID, &m.UserID, &m.Role, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan project member: %w", err)
		}
		members = append(members, m)
	}
	return members, rows.Err()
}
