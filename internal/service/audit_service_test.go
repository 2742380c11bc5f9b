package service

import (
	"context"
	"testing"
	"time"

	"github.com/aosagula/adm/internal/adapter/store"
	"github.com/aosagula/adm/internal/domain"
	"github.com/aosagula/adm/internal/port"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAuditLogRequiresCoreFields(t *testing.T) {
	svc := NewAuditService(store.NewMemoryStore())

	_, err := svc.Log(context.Background(), AuditEvent{Resource: "projects", Action: "create"})
	assert.ErrorIs(t, err, port.ErrInvalid)

	_, err = svc.Log(context.Background(), AuditEvent{EventType: domain.EventCreate, Action: "create"})
	assert.ErrorIs(t, err, port.ErrInvalid)

	_, err = svc.Log(context.Background(), AuditEvent{EventType: domain.EventCreate, Resource: "projects"})
	assert.ErrorIs(t, err, port.ErrInvalid)
}

func TestAuditLogAnonymousEvent(t *testing.T) {
	svc := NewAuditService(store.NewMemoryStore())

	log, err := svc.Log(context.Background(), AuditEvent{
		EventType: domain.EventAuthFailed,
		Resource:  "auth",
		Action:    "login",
	})
	require.NoError(t, err)
	assert.Empty(t, log.UserID)
	assert.NotEmpty(t, log.ID)
}

func TestAuditFindAllPagination(t *testing.T) {
	svc := NewAuditService(store.NewMemoryStore())
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		_, err := svc.Log(ctx, AuditEvent{
			EventType: domain.EventCreate,
			Resource:  "projects",
			Action:    "create",
		})
		require.NoError(t, err)
	}

	page, err := svc.FindAll(ctx, port.AuditFilter{Page: 1, Limit: 2})
	require.NoError(t, err)
	assert.Len(t, page.Data, 2)
	assert.Equal(t, 5, page.Meta.Total)
	assert.Equal(t, 3, page.Meta.TotalPages)

	last, err := svc.FindAll(ctx, port.AuditFilter{Page: 3, Limit: 2})
	require.NoError(t, err)
	assert.Len(t, last.Data, 1)
}

func TestAuditFindAllDefaults(t *testing.T) {
	svc := NewAuditService(store.NewMemoryStore())

	page, err := svc.FindAll(context.Background(), port.AuditFilter{})
	require.NoError(t, err)
	assert.Equal(t, 1, page.Meta.Page)
	assert.Equal(t, 50, page.Meta.Limit)
	assert.NotNil(t, page.Data)
	assert.Equal(t, 0, page.Meta.TotalPages)
}

func TestAuditFindAllFilters(t *testing.T) {
	svc := NewAuditService(store.NewMemoryStore())
	ctx := context.Background()

	_, err := svc.Log(ctx, AuditEvent{EventType: domain.EventCreate, Resource: "projects", Action: "create", UserID: "u1"})
	require.NoError(t, err)
	_, err = svc.Log(ctx, AuditEvent{EventType: domain.EventDelete, Resource: "agents", Action: "delete", UserID: "u2"})
	require.NoError(t, err)

	byType, err := svc.FindAll(ctx, port.AuditFilter{EventType: domain.EventDelete})
	require.NoError(t, err)
	require.Len(t, byType.Data, 1)
	assert.Equal(t, "agents", byType.Data[0].Resource)

	byUser, err := svc.FindAll(ctx, port.AuditFilter{UserID: "u1"})
	require.NoError(t, err)
	require.Len(t, byUser.Data, 1)
	assert.Equal(t, "projects", byUser.Data[0].Resource)
}

func TestAuditDateWindowFiltering(t *testing.T) {
	svc := NewAuditService(store.NewMemoryStore())
	ctx := context.Background()

	before := time.Now().Add(-time.Minute)
	_, err := svc.Log(ctx, AuditEvent{EventType: domain.EventCreate, Resource: "projects", Action: "create"})
	require.NoError(t, err)
	after := time.Now().Add(time.Minute)

	inside, err := svc.FindAll(ctx, port.AuditFilter{StartDate: &before, EndDate: &after})
	require.NoError(t, err)
	assert.Len(t, inside.Data, 1)

	tooLate := time.Now().Add(time.Hour)
	outside, err := svc.FindAll(ctx, port.AuditFilter{StartDate: &tooLate})
	require.NoError(t, err)
	assert.Empty(t, outside.Data)
}

func TestAuditExportIgnoresPagination(t *testing.T) {
	svc := NewAuditService(store.NewMemoryStore())
	ctx := context.Background()

	for i := 0; i < 60; i++ {
		_, err := svc.Log(ctx, AuditEvent{EventType: domain.EventCreate, Resource: "projects", Action: "create"})
		require.NoError(t, err)
	}

	logs, err := svc.ExportLogs(ctx, port.AuditFilter{Page: 2, Limit: 10})
	require.NoError(t, err)
	assert.Len(t, logs, 60)
}

func TestAuditRecordSwallowsInvalidEvents(t *testing.T) {
	mem := store.NewMemoryStore()
	svc := NewAuditService(mem)
	ctx := context.Background()

	// Missing fields: Record must not panic and must not write a row.
	svc.Record(ctx, AuditEvent{})

	page, err := svc.FindAll(ctx, port.AuditFilter{})
	require.NoError(t, err)
	assert.Empty(t, page.Data)
}
