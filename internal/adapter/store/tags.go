package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/aosagula/adm/internal/domain"
	"github.com/aosagula/adm/internal/port"
)

const tagColumns = `id, organization_id, name, COALESCE(color, ''), COALESCE(description, ''), is_system, created_at, updated_at`

func scanTag(row interface{ Scan(...any) error }) (*domain.Tag, error) {
	var t domain.Tag
	err := row.Scan(&t.ID, &t.OrganizationID, &t.Name, &t.Color, &t.Description, &t.IsSystem, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// CreateTag inserts a tag.
func (s *PostgresStore) CreateTag(ctx context.Context, t *domain.Tag) (*domain.Tag, error) {
	query := `INSERT INTO tags (organization_id, name, color, description, is_system)
	          VALUES ($1, $2, $3, $4, $5)
	          RETURNING ` + tagColumns

	created, err := scanTag(s.db.QueryRowContext(ctx, query,
		t.OrganizationID, t.Name, nullStr(t.Color), nullStr(t.Description), t.IsSystem,
	))
	if isUniqueViolation(err) {
		return nil, fmt.Errorf("tag %s: %w", t.Name, port.ErrConflict)
	}
	if err != nil {
		return nil, fmt.Errorf("create tag: %w", err)
	}
	return created, nil
}

// GetTag returns a tag scoped to an organization.
func (s *PostgresStore) GetTag(ctx context.Context, id, organizationID string) (*domain.Tag, error) {
	query := `SELECT ` + tagColumns + ` FROM tags WHERE id = $1 AND organization_id = $2`

	t, err := scanTag(s.db.QueryRowContext(ctx, query, id, organizationID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("tag %s: %w", id, port.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get tag: %w", err)
	}
	return t, nil
}

// GetTagByName looks a tag up by its organization-unique name.
func (s *PostgresStore) GetTagByName(ctx context.Context, name, organizationID string) (*domain.Tag, error) {
	query := `SELECT ` + tagColumns + ` FROM tags WHERE name = $1 AND organization_id = $2`

	t, err := scanTag(s.db.QueryRowContext(ctx, query, name, organizationID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("tag %s: %w", name, port.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get tag by name: %w", err)
	}
	return t, nil
}

// ListTags returns an organization's tags, name-ordered.
func (s *PostgresStore) ListTags(ctx context.Context, organizationID string, isSystem *bool) ([]domain.Tag, error) {
	query := `SELECT ` + tagColumns + ` FROM tags WHERE organization_id = $1`
	args := []any{organizationID}

	if isSystem != nil {
		query += " AND is_system = $2"
		args = append(args, *isSystem)
	}

	query += " ORDER BY name ASC"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list tags: %w", err)
	}
	defer rows.Close()

	var tags []domain.Tag
	for rows.Next() {
		t, err := scanTag(rows)
		if err != nil {
			return nil, fmt.Errorf("scan tag: %w", err)
		}
		tags = append(tags, *t)
	}
	return tags, rows.Err()
}

// UpdateTag updates a tag's mutable fields.
func (s *PostgresStore) UpdateTag(ctx context.Context, t *domain.Tag) (*domain.Tag, error) {
	query := `UPDATE tags
	          SET name = $1, color = $2, description = $3, updated_at = NOW()
	          WHERE id = $4
	          RETURNING ` + tagColumns

	updated, err := scanTag(s.db.QueryRowContext(ctx, query,
		t.Name, nullStr(t.Color), nullStr(t.Description), t.ID,
	))
	if isUniqueViolation(err) {
		return nil, fmt.Errorf("tag %s: %w", t.Name, port.ErrConflict)
	}
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("tag %s: %w", t.ID, port.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("update tag: %w", err)
	}
	return updated, nil
}

// DeleteTag hard-deletes a tag.
func (s *PostgresStore) DeleteTag(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM tags WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete tag: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("tag %s: %w", id, port.ErrNotFound)
	}
	return nil
}
