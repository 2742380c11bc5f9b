package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/aosagula/adm/internal/domain"
	"github.com/aosagula/adm/internal/port"
)

const templateColumns = `id, organization_id, created_by_id, name, COALESCE(description, ''),
	COALESCE(category, ''), COALESCE(base_config::text, '{}'), is_public, created_at, updated_at`

func scanTemplate(row interface{ Scan(...any) error }) (*domain.Template, error) {
	var t domain.Template
	var baseConfig string
	err := row.Scan(
		&t.ID, &t.OrganizationID, &t.CreatedByID, &t.Name, &t.Description,
		&t.Category, &baseConfig, &t.IsPublic, &t.CreatedAt, &t.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	t.BaseConfig = []byte(baseConfig)
	return &t, nil
}

// CreateTemplate inserts a new template.
func (s *PostgresStore) CreateTemplate(ctx context.Context, t *domain.Template) (*domain.Template, error) {
	query := `INSERT INTO templates (organization_id, created_by_id, name, description, category, base_config, is_public)
	          VALUES ($1, $2, $3, $4, $5, $6::jsonb, $7)
	          RETURNING ` + templateColumns

	created, err := scanTemplate(s.db.QueryRowContext(ctx, query,
		t.OrganizationID, t.CreatedByID, t.Name, nullStr(t.Description),
		nullStr(t.Category), string(t.BaseConfig), t.IsPublic,
	))
	if err != nil {
		return nil, fmt.Errorf("create template: %w", err)
	}
	return created, nil
}

// GetTemplate returns a template visible to the organization: its own, or
// any public one.
func (s *PostgresStore) GetTemplate(ctx context.Context, id, organizationID string) (*domain.Template, error) {
	query := `SELECT ` + templateColumns + ` FROM templates
	          WHERE id = $1 AND (organization_id = $2 OR is_public = TRUE)`

	t, err := scanTemplate(s.db.QueryRowContext(ctx, query, id, organizationID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("template %s: %w", id, port.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get template: %w", err)
	}
	return t, nil
}

// ListTemplates returns the organization's templates plus public ones.
func (s *PostgresStore) ListTemplates(ctx context.Context, organizationID string, f port.TemplateFilter) ([]domain.Template, error) {
	query := `SELECT ` + templateColumns + ` FROM templates
	          WHERE (organization_id = $1 OR is_public = TRUE)`
	args := []any{organizationID}
	argIdx := 2

	if f.Category != "" {
		query += fmt.Sprintf(" AND category = $%d", argIdx)
		args = append(args, f.Category)
		argIdx++
	}
	if f.IsPublic != nil {
		query += fmt.Sprintf(" AND is_public = $%d", argIdx)
		args = append(args, *f.IsPublic)
	}

	query += " ORDER BY created_at DESC"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list templates: %w", err)
	}
	defer rows.Close()

	var templates []domain.Template
	for rows.Next() {
		t, err := scanTemplate(rows)
		if err != nil {
			return nil, fmt.Errorf("scan template: %w", err)
		}
		templates = append(templates, *t)
	}
	return templates, rows.Err()
}

// UpdateTemplate updates a template's mutable fields.
func (s *PostgresStore) UpdateTemplate(ctx context.Context, t *domain.Template) (*domain.Template, error) {
	query := `UPDATE templates
	          SET name = $1, description = $2, category = $3, base_config = $4::jsonb, is_public = $5, updated_at = NOW()
	          WHERE id = $6
	          RETURNING ` + templateColumns

	updated, err := scanTemplate(s.db.QueryRowContext(ctx, query,
		t.Name, nullStr(t.Description), nullStr(t.Category), string(t.BaseConfig), t.IsPublic, t.ID,
	))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("template %s: %w", t.ID, port.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("update template: %w", err)
	}
	return updated, nil
}

// DeleteTemplate hard-deletes a template.
func (s *PostgresStore) DeleteTemplate(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM templates WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete template: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("template %s: %w", id, port.ErrNotFound)
	}
	return nil
}
