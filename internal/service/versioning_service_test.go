package service

import (
	"context"
	"encoding/json"
	"sync"
	"testing"

	"github.com/aosagula/adm/internal/adapter/store"
	"github.com/aosagula/adm/internal/domain"
	"github.com/aosagula/adm/internal/port"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newVersioningFixture() (*VersioningService, string, string) {
	return NewVersioningService(store.NewMemoryStore()), uuid.NewString(), uuid.NewString()
}

func TestCreateVersionSequence(t *testing.T) {
	svc, projectID, entityID := newVersioningFixture()
	ctx := context.Background()

	for i, content := range []string{`{"x":1}`, `{"x":2}`, `{"x":3}`} {
		v, err := svc.CreateVersion(ctx, CreateVersionInput{
			ProjectID:         projectID,
			ConfigurationType: domain.ConfigTypeAgent,
			EntityID:          entityID,
			Content:           json.RawMessage(content),
		})
		require.NoError(t, err)
		assert.Equal(t, i+1, v.Version)
	}

	history, err := svc.GetVersionHistory(ctx, projectID, entityID)
	require.NoError(t, err)
	require.Len(t, history, 3)
	// Newest first.
	assert.Equal(t, 3, history[0].Version)
	assert.Equal(t, 1, history[2].Version)
}

func TestCreateVersionFirstHasNoDiff(t *testing.T) {
	svc, projectID, entityID := newVersioningFixture()

	v, err := svc.CreateVersion(context.Background(), CreateVersionInput{
		ProjectID:         projectID,
		ConfigurationType: domain.ConfigTypeAgent,
		EntityID:          entityID,
		Content:           json.RawMessage(`{"x":1}`),
	})
	require.NoError(t, err)
	assert.Equal(t, 1, v.Version)
	assert.Empty(t, v.Diff)
}

func TestCreateVersionDiffAgainstPrevious(t *testing.T) {
	svc, projectID, entityID := newVersioningFixture()
	ctx := context.Background()

	_, err := svc.CreateVersion(ctx, CreateVersionInput{
		ProjectID:         projectID,
		ConfigurationType: domain.ConfigTypeAgent,
		EntityID:          entityID,
		Content:           json.RawMessage(`{"x":1}`),
	})
	require.NoError(t, err)

	v2, err := svc.CreateVersion(ctx, CreateVersionInput{
		ProjectID:         projectID,
		ConfigurationType: domain.ConfigTypeAgent,
		EntityID:          entityID,
		Content:           json.RawMessage(`{"x":2}`),
	})
	require.NoError(t, err)
	assert.Contains(t, v2.Diff, `-  "x": 1`)
	assert.Contains(t, v2.Diff, `+  "x": 2`)
}

func TestCreateVersionKeyOrderInsensitive(t *testing.T) {
	svc, projectID, entityID := newVersioningFixture()
	ctx := context.Background()

	_, err := svc.CreateVersion(ctx, CreateVersionInput{
		ProjectID:         projectID,
		ConfigurationType: domain.ConfigTypeAgent,
		EntityID:          entityID,
		Content:           json.RawMessage(`{"b":2,"a":1}`),
	})
	require.NoError(t, err)

	v2, err := svc.CreateVersion(ctx, CreateVersionInput{
		ProjectID:         projectID,
		ConfigurationType: domain.ConfigTypeAgent,
		EntityID:          entityID,
		Content:           json.RawMessage(`{"a":1,"b":2}`),
	})
	require.NoError(t, err)
	assert.Empty(t, v2.Diff)
}

func TestCreateVersionRejectsBadInput(t *testing.T) {
	svc, projectID, entityID := newVersioningFixture()
	ctx := context.Background()

	_, err := svc.CreateVersion(ctx, CreateVersionInput{
		ProjectID:         projectID,
		ConfigurationType: "BOGUS",
		EntityID:          entityID,
		Content:           json.RawMessage(`{}`),
	})
	assert.ErrorIs(t, err, port.ErrInvalid)

	_, err = svc.CreateVersion(ctx, CreateVersionInput{
		ProjectID:         projectID,
		ConfigurationType: domain.ConfigTypeAgent,
		EntityID:          entityID,
		Content:           json.RawMessage(`{broken`),
	})
	assert.ErrorIs(t, err, port.ErrSerialization)
}

func TestVersionsIndependentPerEntity(t *testing.T) {
	svc, projectID, _ := newVersioningFixture()
	ctx := context.Background()
	entityA, entityB := uuid.NewString(), uuid.NewString()

	for _, entity := range []string{entityA, entityB} {
		v, err := svc.CreateVersion(ctx, CreateVersionInput{
			ProjectID:         projectID,
			ConfigurationType: domain.ConfigTypeAgent,
			EntityID:          entity,
			Content:           json.RawMessage(`{}`),
		})
		require.NoError(t, err)
		assert.Equal(t, 1, v.Version)
	}

	all, err := svc.GetVersionHistory(ctx, projectID, "")
	require.NoError(t, err)
	assert.Len(t, all, 2)

	onlyA, err := svc.GetVersionHistory(ctx, projectID, entityA)
	require.NoError(t, err)
	assert.Len(t, onlyA, 1)
}

func TestCompareVersionsAsymmetry(t *testing.T) {
	svc, projectID, entityID := newVersioningFixture()
	ctx := context.Background()

	v1, err := svc.CreateVersion(ctx, CreateVersionInput{
		ProjectID:         projectID,
		ConfigurationType: domain.ConfigTypeAgent,
		EntityID:          entityID,
		Content:           json.RawMessage(`{"x":1}`),
	})
	require.NoError(t, err)
	v2, err := svc.CreateVersion(ctx, CreateVersionInput{
		ProjectID:         projectID,
		ConfigurationType: domain.ConfigTypeAgent,
		EntityID:          entityID,
		Content:           json.RawMessage(`{"x":2}`),
	})
	require.NoError(t, err)

	forward, err := svc.CompareVersions(ctx, v1.ID, v2.ID)
	require.NoError(t, err)
	backward, err := svc.CompareVersions(ctx, v2.ID, v1.ID)
	require.NoError(t, err)

	assert.NotEqual(t, forward.Diff, backward.Diff)
	assert.Contains(t, forward.Diff, `+  "x": 2`)
	assert.Contains(t, backward.Diff, `+  "x": 1`)
	assert.Equal(t, v1.ID, forward.Version1.ID)
	assert.Equal(t, v2.ID, forward.Version2.ID)
}

func TestRestoreVersionScenario(t *testing.T) {
	svc, projectID, entityID := newVersioningFixture()
	ctx := context.Background()

	v1, err := svc.CreateVersion(ctx, CreateVersionInput{
		ProjectID:         projectID,
		ConfigurationType: domain.ConfigTypeAgent,
		EntityID:          entityID,
		Content:           json.RawMessage(`{"x":1}`),
	})
	require.NoError(t, err)
	_, err = svc.CreateVersion(ctx, CreateVersionInput{
		ProjectID:         projectID,
		ConfigurationType: domain.ConfigTypeAgent,
		EntityID:          entityID,
		Content:           json.RawMessage(`{"x":2}`),
	})
	require.NoError(t, err)

	restored, err := svc.RestoreVersion(ctx, v1.ID, uuid.NewString())
	require.NoError(t, err)
	assert.Equal(t, 3, restored.Version)
	assert.Equal(t, "Restored to version 1", restored.ChangesSummary)
	assert.JSONEq(t, `{"x":1}`, string(restored.Content))
	// Restoring back to x:1 after x:2 shows the inverse change.
	assert.Contains(t, restored.Diff, `-  "x": 2`)
	assert.Contains(t, restored.Diff, `+  "x": 1`)

	// History is append-only: all three versions remain.
	history, err := svc.GetVersionHistory(ctx, projectID, entityID)
	require.NoError(t, err)
	assert.Len(t, history, 3)
}

func TestConcurrentCreateVersionNoDuplicates(t *testing.T) {
	svc, projectID, entityID := newVersioningFixture()
	ctx := context.Background()

	const writers = 8
	var wg sync.WaitGroup
	results := make(chan *domain.ConfigurationVersion, writers)
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			v, err := svc.CreateVersion(ctx, CreateVersionInput{
				ProjectID:         projectID,
				ConfigurationType: domain.ConfigTypeAgent,
				EntityID:          entityID,
				Content:           marshalValues(map[string]int{"n": n}),
			})
			if err == nil {
				results <- v
			}
		}(i)
	}
	wg.Wait()
	close(results)

	seen := map[int]bool{}
	for v := range results {
		assert.False(t, seen[v.Version], "version %d assigned twice", v.Version)
		seen[v.Version] = true
	}
	require.NotEmpty(t, seen)
}
