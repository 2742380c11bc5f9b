package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/aosagula/adm/internal/domain"
	"github.com/aosagula/adm/internal/port"
)

const agentColumns = `id, project_id, name, COALESCE(description, ''), COALESCE(config::text, '{}'), is_active, created_at, updated_at`

func scanAgent(row interface{ Scan(...any) error }) (*domain.Agent, error) {
	var a domain.Agent
	var config string
	err := row.Scan(&a.ID, &a.ProjectID, &a.Name, &a.Description, &config, &a.IsActive, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		return nil, err
	}
	a.Config = []byte(config)
	return &a, nil
}

// CreateAgent inserts a new agent.
func (s *PostgresStore) CreateAgent(ctx context.Context, a *domain.Agent) (*domain.Agent, error) {
	query := `INSERT INTO agents (project_id, name, description, config, is_active)
	          VALUES ($1, $2, $3, $4::jsonb, $5)
	          RETURNING ` + agentColumns

	created, err := scanAgent(s.db.QueryRowContext(ctx, query,
		a.ProjectID, a.Name, nullStr(a.Description), string(a.Config), a.IsActive,
	))
	if err != nil {
		return nil, fmt.Errorf("create agent: %w", err)
	}
	return created, nil
}

// GetAgent returns an agent by ID, scoped to an organization through its
// project, with prompts loaded.
func (s *PostgresStore) GetAgent(ctx context.Context, id, organizationID string) (*domain.Agent, error) {
	query := `SELECT a.id, a.project_id, a.name, COALESCE(a.description, ''), COALESCE(a.config::text, '{}'), a.is_active, a.created_at, a.updated_at
	          FROM agents a
	          JOIN projects p ON p.id = a.project_id
	          WHERE a.id = $1 AND p.organization_id = $2`

	a, err := scanAgent(s.db.QueryRowContext(ctx, query, id, organizationID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("agent %s: %w", id, port.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get agent: %w", err)
	}
	prompts, err := s.ListAgentPrompts(ctx, a.ID)
	if err != nil {
		return nil, err
	}
	a.Prompts = prompts
	return a, nil
}

// ListAgents returns agents across an organization with filters and
// pagination, newest first, along with the total match count.
func (s *PostgresStore) ListAgents(ctx context.Context, organizationID string, f port.AgentFilter) ([]domain.Agent, int, error) {
	where := ` FROM agents a JOIN projects p ON p.id = a.project_id WHERE p.organization_id = $1`
	args := []any{organizationID}
	argIdx := 2

	if f.ProjectID != "" {
		where += fmt.Sprintf(" AND a.project_id = $%d", argIdx)
		args = append(args, f.ProjectID)
		argIdx++
	}
	if f.IsActive != nil {
		where += fmt.Sprintf(" AND a.is_active = $%d", argIdx)
		args = append(args, *f.IsActive)
		argIdx++
	}
	if f.Search != "" {
		where += fmt.Sprintf(" AND (a.name ILIKE $%d OR a.description ILIKE $%d)", argIdx, argIdx)
		args = append(args, "%"+f.Search+"%")
		argIdx++
	}

	var total int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*)`+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count agents: %w", err)
	}

	query := `SELECT a.id, a.project_id, a.name, COALESCE(a.description, ''), COALESCE(a.config::text, '{}'), a.is_active, a.created_at, a.updated_at` +
		where + " ORDER BY a.created_at DESC"

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
		return nil, 0, fmt.Errorf("list agents: %w", err)
	}
	defer rows.Close()

	var agents []domain.Agent
	for rows.Next() {
		a, err := scanAgent(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan agent: %w", err)
		}
		agents = append(agents, *a)
	}
	return agents, total, rows.Err()
}

// ListAgentsByProject returns all agents under a project, newest first.
func (s *PostgresStore) ListAgentsByProject(ctx context.Context, projectID string) ([]domain.Agent, error) {
	query := `SELECT ` + agentColumns + ` FROM agents WHERE project_id = $1 ORDER BY created_at DESC`

	rows, err := s.db.QueryContext(ctx, query, projectID)
	if err != nil {
		return nil, fmt.Errorf("list agents by project: %w", err)
	}
	defer rows.Close()

	var agents []domain.Agent
	for rows.Next() {
		a, err := scanAgent(rows)
		if err != nil {
			return nil, fmt.Errorf("scan agent: %w", err)
		}
		agents = append(agents, *a)
	}
	return agents, rows.Err()
}

// UpdateAgent updates an agent's mutable fields including its config blob.
func (s *PostgresStore) UpdateAgent(ctx context.Context, a *domain.Agent) (*domain.Agent, error) {
	query := `UPDATE agents
	          SET name = $1, description = $2, config = $3::jsonb, is_active = $4, updated_at = NOW()
	          WHERE id = $5
	          RETURNING ` + agentColumns

	updated, err := scanAgent(s.db.QueryRowContext(ctx, query,
		a.Name, nullStr(a.Description), string(a.Config), a.IsActive, a.ID,
	))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("agent %s: %w", a.ID, port.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("update agent: %w", err)
	}
	return updated, nil
}

// DeleteAgent hard-deletes an agent and its prompts (cascade).
func (s *PostgresStore) DeleteAgent(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM agents WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete agent: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("agent %s: %w", id, port.ErrNotFound)
	}
	return nil
}

// CreateAgentPrompt inserts a prompt attached to an agent.
func (s *PostgresStore) CreateAgentPrompt(ctx context.Context, p *domain.AgentPrompt) (*domain.AgentPrompt, error) {
	query := `INSERT INTO agent_prompts (agent_id, name, content, parameters, position, is_active)
	          VALUES ($1, $2, $3, $4::jsonb, $5, $6)
	          RETURNING id, agent_id, name, content, COALESCE(parameters::text, '{}'), position, is_active, created_at`

	var created domain.AgentPrompt
	var params string
	err := s.db.QueryRowContext(ctx, query,
		p.AgentID, p.Name, p.Content, string(p.Parameters), p.Order, p.IsActive,
	).Scan(&created.ID, &created.AgentID, &created.Name, &created.Content, &params, &created.Order, &created.IsActive, &created.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("create agent prompt: %w", err)
	}
	created.Parameters = []byte(params)
	return &created, nil
}

// ListAgentPrompts returns an agent's prompts in display order.
func (s *PostgresStore) ListAgentPrompts(ctx context.Context, agentID string) ([]domain.AgentPrompt, error) {
	query := `SELECT id, agent_id, name, content, COALESCE(parameters::text, '{}'), position, is_active, created_at
	          FROM agent_prompts WHERE agent_id = $1 ORDER BY position ASC`

	rows, err := s.db.QueryContext(ctx, query, agentID)
	if err != nil {
		return nil, fmt.Errorf("list agent prompts: %w", err)
	}
	defer rows.Close()

	var prompts []domain.AgentPrompt
	for rows.Next() {
		var p domain.AgentPrompt
		var params string
		if err := rows.Scan(&p.ID, &p.AgentID, &p.Name, &p.Content, &params, &p.Order, &p.IsActive, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan agent prompt: %w", err)
		}
		p.Parameters = []byte(params)
		prompts = append(prompts, p)
	}
	return prompts, rows.Err()
}
