package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/aosagula/adm/internal/domain"
	"github.com/aosagula/adm/internal/port"
)

// AgentService manages agents within projects. Agent config is an opaque
// JSON object; every change appends an AGENT configuration version.
type AgentService struct {
	agents     port.AgentStore
	projects   port.ProjectStore
	versioning *VersioningService
	audit      *AuditService
}

// NewAgentService creates a new agent service.
func NewAgentService(agents port.AgentStore, projects port.ProjectStore, versioning *VersioningService, audit *AuditService) *AgentService {
	return &AgentService{agents: agents, projects: projects, versioning: versioning, audit: audit}
}

// CreateAgentInput carries a new agent request.
type CreateAgentInput struct {
	ProjectID   string
	Name        string
	Description string
	Config      json.RawMessage
}

// Create registers an agent under a project the caller is a member of, and
// snapshots its config as version 1.
func (s *AgentService) Create(ctx context.Context, p *domain.Principal, in CreateAgentInput) (*domain.Agent, error) {
	project, err := s.memberProject(ctx, p, in.ProjectID)
	if err != nil {
		return nil, err
	}

	config := in.Config
	if len(config) == 0 {
		config = json.RawMessage("{}")
	}
	agent, err := s.agents.CreateAgent(ctx, &domain.Agent{
		ProjectID:   project.ID,
		Name:        in.Name,
		Description: in.Description,
		Config:      config,
		IsActive:    true,
	})
	if err != nil {
		return nil, fmt.Errorf("create agent: %w", err)
	}

	s.snapshot(ctx, agent, "Initial version", p.UserID)
	s.audit.Record(ctx, AuditEvent{
		EventType:   domain.EventCreate,
		Resource:    "agents",
		ResourceID:  agent.ID,
		Action:      "create",
		Description: fmt.Sprintf("Agent %s created in project %s", agent.Name, project.Name),
		UserID:      p.UserID,
		NewValues:   marshalValues(agent),
	})
	slog.Info("agent created", "agent", agent.ID, "project", project.ID)
	return agent, nil
}

// List returns the organization's agents matching the filter along with the
// pre-pagination total.
func (s *AgentService) List(ctx context.Context, p *domain.Principal, f port.AgentFilter) ([]domain.Agent, int, error) {
	return s.agents.ListAgents(ctx, p.OrganizationID, f)
}

// ListByProject returns all agents of one project in the caller's
// organization.
func (s *AgentService) ListByProject(ctx context.Context, p *domain.Principal, projectID string) ([]domain.Agent, error) {
	if _, err := s.projects.GetProject(ctx, projectID, p.OrganizationID); err != nil {
		return nil, err
	}
	return s.agents.ListAgentsByProject(ctx, projectID)
}

// Get returns an agent, scoped to the caller's organization through its
// project.
func (s *AgentService) Get(ctx context.Context, p *domain.Principal, id string) (*domain.Agent, error) {
	return s.agents.GetAgent(ctx, id, p.OrganizationID)
}

// UpdateAgentInput carries agent field updates. Config, when present, is
// shallow-merged over the stored config.
type UpdateAgentInput struct {
	Name        string
	Description string
	Config      json.RawMessage
}

// Update applies field changes and merges config, appending a version.
func (s *AgentService) Update(ctx context.Context, p *domain.Principal, id string, in UpdateAgentInput) (*domain.Agent, error) {
	agent, err := s.agents.GetAgent(ctx, id, p.OrganizationID)
	if err != nil {
		return nil, err
	}
	if _, err := s.memberProject(ctx, p, agent.ProjectID); err != nil {
		return nil, err
	}

	old := marshalValues(agent)
	if in.Name != "" {
		agent.Name = in.Name
	}
	if in.Description != "" {
		agent.Description = in.Description
	}
	if len(in.Config) > 0 {
		merged, err := mergeConfig(agent.Config, in.Config)
		if err != nil {
			return nil, fmt.Errorf("merge config: %w: %v", port.ErrSerialization, err)
		}
		agent.Config = merged
	}

	updated, err := s.agents.UpdateAgent(ctx, agent)
	if err != nil {
		return nil, fmt.Errorf("update agent: %w", err)
	}

	s.snapshot(ctx, updated, "Agent updated", p.UserID)
	s.audit.Record(ctx, AuditEvent{
		EventType:   domain.EventUpdate,
		Resource:    "agents",
		ResourceID:  updated.ID,
		Action:      "update",
		Description: fmt.Sprintf("Agent %s updated", updated.Name),
		UserID:      p.UserID,
		OldValues:   old,
		NewValues:   marshalValues(updated),
	})
	return updated, nil
}

// UpdateConfig merges a config patch into the agent's config and appends a
// version holding only the config document.
func (s *AgentService) UpdateConfig(ctx context.Context, p *domain.Principal, id string, patch json.RawMessage) (*domain.Agent, error) {
	agent, err := s.agents.GetAgent(ctx, id, p.OrganizationID)
	if err != nil {
		return nil, err
	}
	if _, err := s.memberProject(ctx, p, agent.ProjectID); err != nil {
		return nil, err
	}

	merged, err := mergeConfig(agent.Config, patch)
	if err != nil {
		return nil, fmt.Errorf("merge config: %w: %v", port.ErrSerialization, err)
	}
	agent.Config = merged

	updated, err := s.agents.UpdateAgent(ctx, agent)
	if err != nil {
		return nil, fmt.Errorf("update agent config: %w", err)
	}

	if _, err := s.versioning.CreateVersion(ctx, CreateVersionInput{
		ProjectID:         updated.ProjectID,
		ConfigurationType: domain.ConfigTypeAgent,
		EntityID:          updated.ID,
		Content:           marshalValues(map[string]json.RawMessage{"config": updated.Config}),
		ChangesSummary:    "Config updated",
		CreatedBy:         p.UserID,
	}); err != nil {
		slog.Error("agent version snapshot failed", "agent", updated.ID, "error", err)
	}
	s.audit.Record(ctx, AuditEvent{
		EventType:   domain.EventUpdate,
		Resource:    "agents",
		ResourceID:  updated.ID,
		Action:      "update_config",
		Description: fmt.Sprintf("Agent %s config updated", updated.Name),
		UserID:      p.UserID,
		NewValues:   updated.Config,
	})
	return updated, nil
}

// ToggleActive flips the agent's active flag and records a STATUS_CHANGE.
func (s *AgentService) ToggleActive(ctx context.Context, p *domain.Principal, id string) (*domain.Agent, error) {
	agent, err := s.agents.GetAgent(ctx, id, p.OrganizationID)
	if err != nil {
		return nil, err
	}
	if _, err := s.memberProject(ctx, p, agent.ProjectID); err != nil {
		return nil, err
	}

	agent.IsActive = !agent.IsActive
	updated, err := s.agents.UpdateAgent(ctx, agent)
	if err != nil {
		return nil, fmt.Errorf("toggle agent: %w", err)
	}

	state := "deactivated"
	if updated.IsActive {
		state = "activated"
	}
	s.audit.Record(ctx, AuditEvent{
		EventType:   domain.EventStatusChange,
		Resource:    "agents",
		ResourceID:  updated.ID,
		Action:      "toggle_active",
		Description: fmt.Sprintf("Agent %s %s", updated.Name, state),
		UserID:      p.UserID,
	})
	return updated, nil
}

// Remove hard-deletes an agent. Only the project owner may remove agents;
// the version history stays behind.
func (s *AgentService) Remove(ctx context.Context, p *domain.Principal, id string) error {
	agent, err := s.agents.GetAgent(ctx, id, p.OrganizationID)
	if err != nil {
		return err
	}
	project, err := s.projects.GetProject(ctx, agent.ProjectID, p.OrganizationID)
	if err != nil {
		return err
	}
	if project.OwnerID != p.UserID {
		return fmt.Errorf("only the project owner may delete agents: %w", port.ErrForbidden)
	}

	if err := s.agents.DeleteAgent(ctx, id); err != nil {
		return fmt.Errorf("delete agent: %w", err)
	}

	s.audit.Record(ctx, AuditEvent{
		EventType:   domain.EventDelete,
		Resource:    "agents",
		ResourceID:  agent.ID,
		Action:      "delete",
		Description: fmt.Sprintf("Agent %s deleted", agent.Name),
		UserID:      p.UserID,
		OldValues:   marshalValues(agent),
	})
	slog.Info("agent deleted", "agent", agent.ID)
	return nil
}

// VersionHistory returns the agent's configuration versions newest-first.
func (s *AgentService) VersionHistory(ctx context.Context, p *domain.Principal, id string) ([]domain.ConfigurationVersion, error) {
	agent, err := s.agents.GetAgent(ctx, id, p.OrganizationID)
	if err != nil {
		return nil, err
	}
	return s.versioning.GetVersionHistory(ctx, agent.ProjectID, agent.ID)
}

// Clone copies an agent into a target project the caller is a member of.
// Prompts are copied; the clone starts inactive and gets its own history.
func (s *AgentService) Clone(ctx context.Context, p *domain.Principal, id, targetProjectID string) (*domain.Agent, error) {
	source, err := s.agents.GetAgent(ctx, id, p.OrganizationID)
	if err != nil {
		return nil, err
	}
	target, err := s.memberProject(ctx, p, targetProjectID)
	if err != nil {
		return nil, err
	}

	clone, err := s.agents.CreateAgent(ctx, &domain.Agent{
		ProjectID:   target.ID,
		Name:        source.Name + " (copy)",
		Description: source.Description,
		Config:      source.Config,
		IsActive:    false,
	})
	if err != nil {
		return nil, fmt.Errorf("clone agent: %w", err)
	}

	for _, prompt := range source.Prompts {
		if _, err := s.agents.CreateAgentPrompt(ctx, &domain.AgentPrompt{
			AgentID:    clone.ID,
			Name:       prompt.Name,
			Content:    prompt.Content,
			Parameters: prompt.Parameters,
			Order:      prompt.Order,
			IsActive:   prompt.IsActive,
		}); err != nil {
			slog.Error("prompt copy failed", "agent", clone.ID, "prompt", prompt.Name, "error", err)
		}
	}

	s.snapshot(ctx, clone, fmt.Sprintf("Cloned from agent %s", source.ID), p.UserID)
	s.audit.Record(ctx, AuditEvent{
		EventType:   domain.EventCreate,
		Resource:    "agents",
		ResourceID:  clone.ID,
		Action:      "clone",
		Description: fmt.Sprintf("Agent %s cloned into project %s", source.Name, target.Name),
		UserID:      p.UserID,
		Metadata:    marshalValues(map[string]string{"source_agent_id": source.ID}),
	})
	return s.agents.GetAgent(ctx, clone.ID, p.OrganizationID)
}

func (s *AgentService) memberProject(ctx context.Context, p *domain.Principal, projectID string) (*domain.Project, error) {
	project, err := s.projects.GetProject(ctx, projectID, p.OrganizationID)
	if err != nil {
		return nil, err
	}
	if !project.IsMember(p.UserID) {
		return nil, fmt.Errorf("not a project member: %w", port.ErrForbidden)
	}
	return project, nil
}

func (s *AgentService) snapshot(ctx context.Context, agent *domain.Agent, summary, userID string) {
	content := marshalValues(struct {
		Name        string          `json:"name"`
		Description string          `json:"description"`
		Config      json.RawMessage `json:"config"`
		IsActive    bool            `json:"is_active"`
	}{
		Name:        agent.Name,
		Description: agent.Description,
		Config:      agent.Config,
		IsActive:    agent.IsActive,
	})
	if _, err := s.versioning.CreateVersion(ctx, CreateVersionInput{
		ProjectID:         agent.ProjectID,
		ConfigurationType: domain.ConfigTypeAgent,
		EntityID:          agent.ID,
		Content:           content,
		ChangesSummary:    summary,
		CreatedBy:         userID,
	}); err != nil {
		slog.Error("agent version snapshot failed", "agent", agent.ID, "error", err)
	}
}

// mergeConfig shallow-merges patch keys over base. Both must be JSON objects.
func mergeConfig(base, patch json.RawMessage) (json.RawMessage, error) {
	merged := map[string]any{}
	if len(base) > 0 {
		if err := json.Unmarshal(base, &merged); err != nil {
			return nil, err
		}
	}
	overlay := map[string]any{}
	if err := json.Unmarshal(patch, &overlay); err != nil {
		return nil, err
	}
	for k, v := range overlay {
		merged[k] = v
	}
	return json.Marshal(merged)
}
