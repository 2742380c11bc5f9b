package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/aosagula/adm/internal/domain"
	"github.com/aosagula/adm/internal/port"
)

// GetOrganization retrieves a tenant by ID.
func (s *PostgresStore) GetOrganization(ctx context.Context, id string) (*domain.Organization, error) {
	query := `SELECT id, name, slug, COALESCE(description, ''), is_active, created_at, updated_at
	          FROM organizations WHERE id = $1`

	var o domain.Organization
	err := s.db.QueryRowContext(ctx, query, id).Scan(
		&o.ID, &o.Name, &o.Slug, &o.Description, &o.IsActive, &o.CreatedAt, &o.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("organization %s: %w", id, port.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get organization: %w", err)
	}
	return &o, nil
}

// ListOrganizations returns all tenants.
func (s *PostgresStore) ListOrganizations(ctx context.Context) ([]domain.Organization, error) {
	query := `SELECT id, name, slug, COALESCE(description, ''), is_active, created_at, updated_at
	          FROM organizations ORDER BY name ASC`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list organizations: %w", err)
	}
	defer rows.Close()

	var orgs []domain.Organization
	for rows.Next() {
		var o domain.Organization
		if err := rows.Scan(&o.ID, &o.Name, &o.Slug, &o.Description, &o.IsActive, &o.CreatedAt, &o.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan organization: %w", err)
		}
		orgs = append(orgs, o)
	}
	return orgs, rows.Err()
}
