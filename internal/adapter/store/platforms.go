package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/aosagula/adm/internal/domain"
	"github.com/aosagula/adm/internal/port"
)

const platformColumns = `id, organization_id, name, COALESCE(provider, ''), COALESCE(description, ''),
	COALESCE(config::text, '{}'), created_at, updated_at`

func scanPlatform(row interface{ Scan(...any) error }) (*domain.Platform, error) {
	var p domain.Platform
	var config string
	err := row.Scan(&p.ID, &p.OrganizationID, &p.Name, &p.Provider, &p.Description, &config, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	p.Config = []byte(config)
	return &p, nil
}

// CreatePlatform inserts a deployment platform.
func (s *PostgresStore) CreatePlatform(ctx context.Context, p *domain.Platform) (*domain.Platform, error) {
	query := `INSERT INTO platforms (organization_id, name, provider, description, config)
	          VALUES ($1, $2, $3, $4, $5::jsonb)
	          RETURNING ` + platformColumns

	created, err := scanPlatform(s.db.QueryRowContext(ctx, query,
		p.OrganizationID, p.Name, nullStr(p.Provider), nullStr(p.Description), string(p.Config),
	))
	if err != nil {
		return nil, fmt.Errorf("create platform: %w", err)
	}
	return created, nil
}

// GetPlatform returns a platform scoped to an organization.
func (s *PostgresStore) GetPlatform(ctx context.Context, id, organizationID string) (*domain.Platform, error) {
	query := `SELECT ` + platformColumns + ` FROM platforms WHERE id = $1 AND organization_id = $2`

	p, err := scanPlatform(s.db.QueryRowContext(ctx, query, id, organizationID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("platform %s: %w", id, port.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get platform: %w", err)
	}
	return p, nil
}

// ListPlatforms returns an organization's platforms with an optional
// provider filter, name-ordered.
func (s *PostgresStore) ListPlatforms(ctx context.Context, organizationID, provider string) ([]domain.Platform, error) {
	query := `SELECT ` + platformColumns + ` FROM platforms WHERE organization_id = $1`
	args := []any{organizationID}

	if provider != "" {
		query += " AND provider = $2"
		args = append(args, provider)
	}

	query += " ORDER BY name ASC"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list platforms: %w", err)
	}
	defer rows.Close()

	var platforms []domain.Platform
	for rows.Next() {
		p, err := scanPlatform(rows)
		if err != nil {
			return nil, fmt.Errorf("scan platform: %w", err)
		}
		platforms = append(platforms, *p)
	}
	return platforms, rows.Err()
}

// UpdatePlatform updates a platform's mutable fields.
func (s *PostgresStore) UpdatePlatform(ctx context.Context, p *domain.Platform) (*domain.Platform, error) {
	query := `UPDATE platforms
	          SET name = $1, provider = $2, description = $3, config = $4::jsonb, updated_at = NOW()
	          WHERE id = $5
	          RETURNING ` + platformColumns

	updated, err := scanPlatform(s.db.QueryRowContext(ctx, query,
		p.Name, nullStr(p.Provider), nullStr(p.Description), string(p.Config), p.ID,
	))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("platform %s: %w", p.ID, port.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("update platform: %w", err)
	}
	return updated, nil
}

// DeletePlatform hard-deletes a platform.
func (s *PostgresStore) DeletePlatform(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM platforms WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete platform: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("platform %s: %w", id, port.ErrNotFound)
	}
	return nil
}
