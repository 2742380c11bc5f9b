package service

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/aosagula/adm/internal/domain"
	"github.com/aosagula/adm/internal/port"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type agentFixture struct {
	*projectFixture
	agents  *AgentService
	project *domain.Project
}

func newAgentFixture(t *testing.T) *agentFixture {
	t.Helper()
	pf := newProjectFixture(t)
	project, err := pf.projects.Create(context.Background(), pf.principal, CreateProjectInput{Name: "Agent Home"})
	require.NoError(t, err)
	return &agentFixture{
		projectFixture: pf,
		agents:         NewAgentService(pf.mem, pf.mem, pf.versioning, pf.audit),
		project:        project,
	}
}

func TestCreateAgentSnapshotsConfig(t *testing.T) {
	f := newAgentFixture(t)
	ctx := context.Background()

	agent, err := f.agents.Create(ctx, f.principal, CreateAgentInput{
		ProjectID: f.project.ID,
		Name:      "helper",
		Config:    json.RawMessage(`{"model":"small"}`),
	})
	require.NoError(t, err)
	assert.True(t, agent.IsActive)

	history, err := f.agents.VersionHistory(ctx, f.principal, agent.ID)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, domain.ConfigTypeAgent, history[0].ConfigurationType)
	assert.Equal(t, agent.ID, history[0].EntityID)
}

func TestCreateAgentEmptyConfigDefaults(t *testing.T) {
	f := newAgentFixture(t)

	agent, err := f.agents.Create(context.Background(), f.principal, CreateAgentInput{
		ProjectID: f.project.ID,
		Name:      "bare",
	})
	require.NoError(t, err)
	assert.JSONEq(t, `{}`, string(agent.Config))
}

func TestCreateAgentNonMemberForbidden(t *testing.T) {
	f := newAgentFixture(t)
	outsider := f.otherPrincipal(t, "outsider@example.com")

	_, err := f.agents.Create(context.Background(), outsider, CreateAgentInput{
		ProjectID: f.project.ID,
		Name:      "intruder",
	})
	assert.ErrorIs(t, err, port.ErrForbidden)
}

func TestUpdateAgentMergesConfig(t *testing.T) {
	f := newAgentFixture(t)
	ctx := context.Background()

	agent, err := f.agents.Create(ctx, f.principal, CreateAgentInput{
		ProjectID: f.project.ID,
		Name:      "merger",
		Config:    json.RawMessage(`{"model":"small","temp":0.2}`),
	})
	require.NoError(t, err)

	updated, err := f.agents.Update(ctx, f.principal, agent.ID, UpdateAgentInput{
		Config: json.RawMessage(`{"model":"large"}`),
	})
	require.NoError(t, err)
	assert.JSONEq(t, `{"model":"large","temp":0.2}`, string(updated.Config))
}

func TestUpdateConfigVersionsOnlyConfig(t *testing.T) {
	f := newAgentFixture(t)
	ctx := context.Background()

	agent, err := f.agents.Create(ctx, f.principal, CreateAgentInput{
		ProjectID: f.project.ID,
		Name:      "configurable",
		Config:    json.RawMessage(`{"x":1}`),
	})
	require.NoError(t, err)

	updated, err := f.agents.UpdateConfig(ctx, f.principal, agent.ID, json.RawMessage(`{"x":2}`))
	require.NoError(t, err)
	assert.JSONEq(t, `{"x":2}`, string(updated.Config))

	history, err := f.agents.VersionHistory(ctx, f.principal, agent.ID)
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.JSONEq(t, `{"config":{"x":2}}`, string(history[0].Content))

	_, err = f.agents.UpdateConfig(ctx, f.principal, agent.ID, json.RawMessage(`not-json`))
	assert.ErrorIs(t, err, port.ErrSerialization)
}

func TestToggleActiveRecordsStatusChange(t *testing.T) {
	f := newAgentFixture(t)
	ctx := context.Background()

	agent, err := f.agents.Create(ctx, f.principal, CreateAgentInput{ProjectID: f.project.ID, Name: "switch"})
	require.NoError(t, err)

	toggled, err := f.agents.ToggleActive(ctx, f.principal, agent.ID)
	require.NoError(t, err)
	assert.False(t, toggled.IsActive)

	back, err := f.agents.ToggleActive(ctx, f.principal, agent.ID)
	require.NoError(t, err)
	assert.True(t, back.IsActive)

	page, err := f.audit.FindAll(ctx, port.AuditFilter{EventType: domain.EventStatusChange, Resource: "agents"})
	require.NoError(t, err)
	assert.Len(t, page.Data, 2)
}

func TestListAgentsFilterAndPagination(t *testing.T) {
	f := newAgentFixture(t)
	ctx := context.Background()

	for _, name := range []string{"alpha bot", "beta bot", "gamma worker"} {
		_, err := f.agents.Create(ctx, f.principal, CreateAgentInput{ProjectID: f.project.ID, Name: name})
		require.NoError(t, err)
	}

	bots, total, err := f.agents.List(ctx, f.principal, port.AgentFilter{Search: "bot"})
	require.NoError(t, err)
	assert.Equal(t, 2, total)
	assert.Len(t, bots, 2)

	paged, total, err := f.agents.List(ctx, f.principal, port.AgentFilter{Page: 2, Limit: 2})
	require.NoError(t, err)
	assert.Equal(t, 3, total)
	assert.Len(t, paged, 1)
}

func TestRemoveAgentOwnerOnlyHardDelete(t *testing.T) {
	f := newAgentFixture(t)
	ctx := context.Background()

	agent, err := f.agents.Create(ctx, f.principal, CreateAgentInput{ProjectID: f.project.ID, Name: "doomed"})
	require.NoError(t, err)

	editor := f.otherPrincipal(t, "editor@example.com")
	_, err = f.projects.AddMember(ctx, f.principal, f.project.ID, editor.UserID, domain.MemberRoleEditor)
	require.NoError(t, err)

	err = f.agents.Remove(ctx, editor, agent.ID)
	assert.ErrorIs(t, err, port.ErrForbidden)

	require.NoError(t, f.agents.Remove(ctx, f.principal, agent.ID))
	_, err = f.agents.Get(ctx, f.principal, agent.ID)
	assert.ErrorIs(t, err, port.ErrNotFound)

	// History survives the delete.
	history, err := f.versioning.GetVersionHistory(ctx, f.project.ID, agent.ID)
	require.NoError(t, err)
	assert.NotEmpty(t, history)
}

func TestCloneAgentCopiesPromptsAndStartsInactive(t *testing.T) {
	f := newAgentFixture(t)
	ctx := context.Background()

	source, err := f.agents.Create(ctx, f.principal, CreateAgentInput{
		ProjectID: f.project.ID,
		Name:      "original",
		Config:    json.RawMessage(`{"model":"big"}`),
	})
	require.NoError(t, err)
	_, err = f.mem.CreateAgentPrompt(ctx, &domain.AgentPrompt{
		AgentID: source.ID,
		Name:    "system",
		Content: "You are helpful.",
		Order:   1,
	})
	require.NoError(t, err)

	target, err := f.projects.Create(ctx, f.principal, CreateProjectInput{Name: "Target"})
	require.NoError(t, err)

	// Reload so prompts are attached.
	source, err = f.agents.Get(ctx, f.principal, source.ID)
	require.NoError(t, err)
	clone, err := f.agents.Clone(ctx, f.principal, source.ID, target.ID)
	require.NoError(t, err)

	assert.Equal(t, target.ID, clone.ProjectID)
	assert.Equal(t, "original (copy)", clone.Name)
	assert.False(t, clone.IsActive)
	assert.JSONEq(t, string(source.Config), string(clone.Config))
	require.Len(t, clone.Prompts, 1)
	assert.Equal(t, "system", clone.Prompts[0].Name)

	// The clone's history starts fresh in the target project.
	history, err := f.versioning.GetVersionHistory(ctx, target.ID, clone.ID)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, 1, history[0].Version)
}
