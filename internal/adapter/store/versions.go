package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/aosagula/adm/internal/domain"
	"github.com/aosagula/adm/internal/port"
)

const versionColumns = `id, project_id, configuration_type, entity_id, version, content::text,
	COALESCE(diff, ''), COALESCE(changes_summary, ''), created_by, created_at`

func scanVersion(row interface{ Scan(...any) error }) (*domain.ConfigurationVersion, error) {
	var v domain.ConfigurationVersion
	var content string
	err := row.Scan(
		&v.ID, &v.ProjectID, &v.ConfigurationType, &v.EntityID, &v.Version,
		&content, &v.Diff, &v.ChangesSummary, &v.CreatedBy, &v.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	v.Content = []byte(content)
	return &v, nil
}

// InsertVersion appends a configuration version row. The table carries a
// unique index on (project_id, configuration_type, entity_id, version);
// a concurrent writer that loses the race gets ErrVersionConflict.
func (s *PostgresStore) InsertVersion(ctx context.Context, v *domain.ConfigurationVersion) (*domain.ConfigurationVersion, error) {
	query := `INSERT INTO configuration_versions (project_id, configuration_type, entity_id, version, content, diff, changes_summary, created_by)
	          VALUES ($1, $2, $3, $4, $5::jsonb, $6, $7, $8)
	          RETURNING ` + versionColumns

	created, err := scanVersion(s.db.QueryRowContext(ctx, query,
		v.ProjectID, v.ConfigurationType, v.EntityID, v.Version,
		string(v.Content), nullStr(v.Diff), nullStr(v.ChangesSummary), v.CreatedBy,
	))
	if isUniqueViolation(err) {
		return nil, fmt.Errorf("version %d for %s/%s/%s: %w",
			v.Version, v.ProjectID, v.ConfigurationType, v.EntityID, port.ErrVersionConflict)
	}
	if err != nil {
		return nil, fmt.Errorf("insert version: %w", err)
	}
	return created, nil
}

// LatestVersion returns the highest-numbered version for the three-part key,
// or (nil, nil) when the entity has no versions yet.
func (s *PostgresStore) LatestVersion(ctx context.Context, projectID, configurationType, entityID string) (*domain.ConfigurationVersion, error) {
	query := `SELECT ` + versionColumns + ` FROM configuration_versions
	          WHERE project_id = $1 AND configuration_type = $2 AND entity_id = $3
	          ORDER BY version DESC LIMIT 1`

	v, err := scanVersion(s.db.QueryRowContext(ctx, query, projectID, configurationType, entityID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("latest version: %w", err)
	}
	return v, nil
}

// GetVersion retrieves a version by its row ID.
func (s *PostgresStore) GetVersion(ctx context.Context, id string) (*domain.ConfigurationVersion, error) {
	query := `SELECT ` + versionColumns + ` FROM configuration_versions WHERE id = $1`

	v, err := scanVersion(s.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("version %s: %w", id, port.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get version: %w", err)
	}
	return v, nil
}

// ListVersions returns a project's version history newest-first, optionally
// filtered to a single entity.
func (s *PostgresStore) ListVersions(ctx context.Context, projectID, entityID string) ([]domain.ConfigurationVersion, error) {
	query := `SELECT ` + versionColumns + ` FROM configuration_versions WHERE project_id = $1`
	args := []any{projectID}

	if entityID != "" {
		query += " AND entity_id = $2"
		args = append(args, entityID)
	}

	query += " ORDER BY created_at DESC"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list versions: %w", err)
	}
	defer rows.Close()

	var versions []domain.ConfigurationVersion
	for rows.Next() {
		v, err := scanVersion(rows)
		if err != nil {
			return nil, fmt.Errorf("scan version: %w", err)
		}
		versions = append(versions, *v)
	}
	return versions, rows.Err()
}
