package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/aosagula/adm/internal/domain"
	"github.com/aosagula/adm/internal/port"
)

const auditColumns = `id, event_type, resource, COALESCE(resource_id, ''), action, COALESCE(description, ''),
	COALESCE(user_id::text, ''), COALESCE(ip_address, ''), COALESCE(user_agent, ''),
	COALESCE(old_values::text, ''), COALESCE(new_values::text, ''), COALESCE(metadata::text, ''), created_at`

func scanAuditLog(row interface{ Scan(...any) error }) (*domain.AuditLog, error) {
	var l domain.AuditLog
	var oldVals, newVals, meta string
	err := row.Scan(
		&l.ID, &l.EventType, &l.Resource, &l.ResourceID, &l.Action, &l.Description,
		&l.UserID, &l.IPAddress, &l.UserAgent, &oldVals, &newVals, &meta, &l.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	if oldVals != "" {
		l.OldValues = []byte(oldVals)
	}
	if newVals != "" {
		l.NewValues = []byte(newVals)
	}
	if meta != "" {
		l.Metadata = []byte(meta)
	}
	return &l, nil
}

// InsertAuditLog appends an audit row. The audit log is write-once: there is
// no corresponding UPDATE or DELETE statement anywhere in this store.
func (s *PostgresStore) InsertAuditLog(ctx context.Context, l *domain.AuditLog) (*domain.AuditLog, error) {
	query := `INSERT INTO audit_logs (event_type, resource, resource_id, action, description, user_id, ip_address, user_agent, old_values, new_values, metadata)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9::jsonb, $10::jsonb, $11::jsonb)
	          RETURNING ` + auditColumns

	created, err := scanAuditLog(s.db.QueryRowContext(ctx, query,
		l.EventType, l.Resource, nullStr(l.ResourceID), l.Action, nullStr(l.Description),
		nullStr(l.UserID), nullStr(l.IPAddress), nullStr(l.UserAgent),
		nullJSON(l.OldValues), nullJSON(l.NewValues), nullJSON(l.Metadata),
	))
	if err != nil {
		return nil, fmt.Errorf("insert audit log: %w", err)
	}
	return created, nil
}

// ListAuditLogs returns filtered audit rows newest-first with the total
// match count. Limit <= 0 disables pagination.
func (s *PostgresStore) ListAuditLogs(ctx context.Context, f port.AuditFilter) ([]domain.AuditLog, int, error) {
	where := " FROM audit_logs WHERE 1=1"
	args := []any{}
	argIdx := 1

	if f.EventType != "" {
		where += fmt.Sprintf(" AND event_type = $%d", argIdx)
		args = append(args, f.EventType)
		argIdx++
	}
	if f.Resource != "" {
		where += fmt.Sprintf(" AND resource = $%d", argIdx)
		args = append(args, f.Resource)
		argIdx++
	}
	if f.UserID != "" {
		where += fmt.Sprintf(" AND user_id = $%d", argIdx)
		args = append(args, f.UserID)
		argIdx++
	}
	if f.StartDate != nil {
		where += fmt.Sprintf(" AND created_at >= $%d", argIdx)
		args = append(args, *f.StartDate)
		argIdx++
	}
	if f.EndDate != nil {
		where += fmt.Sprintf(" AND created_at <= $%d", argIdx)
		args = append(args, *f.EndDate)
		argIdx++
	}

	var total int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*)"+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count audit logs: %w", err)
	}

	query := "SELECT " + auditColumns + where + " ORDER BY created_at DESC"
	if f.Limit > 0 {
		offset := 0
		if f.Page > 1 {
			offset = (f.Page - 1) * f.Limit
		}
		query += fmt.Sprintf(" LIMIT $%d OFFSET $%d", argIdx, argIdx+1)
		args = append(args, f.Limit, offset)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list audit logs: %w", err)
	}
	defer rows.Close()

	var logs []domain.AuditLog
	for rows.Next() {
		l, err := scanAuditLog(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan audit log: %w", err)
		}
		logs = append(logs, *l)
	}
	return logs, total, rows.Err()
}

// GetAuditLog retrieves a single audit row.
func (s *PostgresStore) GetAuditLog(ctx context.Context, id string) (*domain.AuditLog, error) {
	query := `SELECT ` + auditColumns + ` FROM audit_logs WHERE id = $1`

	l, err := scanAuditLog(s.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("audit log %s: %w", id, port.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get audit log: %w", err)
	}
	return l, nil
}
