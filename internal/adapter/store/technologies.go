package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/aosagula/adm/internal/domain"
	"github.com/aosagula/adm/internal/port"
)

const technologyColumns = `id, organization_id, name, COALESCE(category, ''), COALESCE(version, ''),
	COALESCE(description, ''), created_at, updated_at`

func scanTechnology(row interface{ Scan(...any) error }) (*domain.Technology, error) {
	var t domain.Technology
	err := row.Scan(&t.ID, &t.OrganizationID, &t.Name, &t.Category, &t.Version, &t.Description, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// CreateTechnology inserts a catalog entry.
func (s *PostgresStore) CreateTechnology(ctx context.Context, t *domain.Technology) (*domain.Technology, error) {
	query := `INSERT INTO technologies (organization_id, name, category, version, description)
	          VALUES ($1, $2, $3, $4, $5)
	          RETURNING ` + technologyColumns

	created, err := scanTechnology(s.db.QueryRowContext(ctx, query,
		t.OrganizationID, t.Name, nullStr(t.Category), nullStr(t.Version), nullStr(t.Description),
	))
	if err != nil {
		return nil, fmt.Errorf("create technology: %w", err)
	}
	return created, nil
}

// GetTechnology returns a catalog entry scoped to an organization.
func (s *PostgresStore) GetTechnology(ctx context.Context, id, organizationID string) (*domain.Technology, error) {
	query := `SELECT ` + technologyColumns + ` FROM technologies WHERE id = $1 AND organization_id = $2`

	t, err := scanTechnology(s.db.QueryRowContext(ctx, query, id, organizationID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("technology %s: %w", id, port.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get technology: %w", err)
	}
	return t, nil
}

// ListTechnologies returns an organization's catalog, name-ordered, with an
// optional category filter.
func (s *PostgresStore) ListTechnologies(ctx context.Context, organizationID, category string) ([]domain.Technology, error) {
	query := `SELECT ` + technologyColumns + ` FROM technologies WHERE organization_id = $1`
	args := []any{organizationID}

	if category != "" {
		query += " AND category = $2"
		args = append(args, category)
	}

	query += " ORDER BY name ASC"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list technologies: %w", err)
	}
	defer rows.Close()

	var techs []domain.Technology
	for rows.Next() {
		t, err := scanTechnology(rows)
		if err != nil {
			return nil, fmt.Errorf("scan technology: %w", err)
		}
		techs = append(techs, *t)
	}
	return techs, rows.Err()
}

// UpdateTechnology updates a catalog entry.
func (s *PostgresStore) UpdateTechnology(ctx context.Context, t *domain.Technology) (*domain.Technology, error) {
	query := `UPDATE technologies
	          SET name = $1, category = $2, version = $3, description = $4, updated_at = NOW()
	          WHERE id = $5
	          RETURNING ` + technologyColumns

	updated, err := scanTechnology(s.db.QueryRowContext(ctx, query,
		t.Name, nullStr(t.Category), nullStr(t.Version), nullStr(t.Description), t.ID,
	))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("technology %s: %w", t.ID, port.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("update technology: %w", err)
	}
	return updated, nil
}

// DeleteTechnology hard-deletes a catalog entry.
func (s *PostgresStore) DeleteTechnology(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM technologies WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete technology: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("technology %s: %w", id, port.ErrNotFound)
	}
	return nil
}
