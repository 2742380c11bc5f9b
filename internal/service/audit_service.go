package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/aosagula/adm/internal/domain"
	"github.com/aosagula/adm/internal/port"
)

// AuditService writes and reads the append-only audit trail.
type AuditService struct {
	store port.AuditStore
}

// NewAuditService creates a new audit service.
func NewAuditService(store port.AuditStore) *AuditService {
	return &AuditService{store: store}
}

// AuditEvent describes one auditable action. UserID is empty for anonymous
// events such as failed logins.
type AuditEvent struct {
	EventType   string
	Resource    string
	ResourceID  string
	Action      string
	Description string
	UserID      string
	IPAddress   string
	UserAgent   string
	OldValues   json.RawMessage
	NewValues   json.RawMessage
	Metadata    json.RawMessage
}

// Log writes one audit row. EventType, Resource and Action are required.
func (s *AuditService) Log(ctx context.Context, e AuditEvent) (*domain.AuditLog, error) {
	if e.EventType == "" || e.Resource == "" || e.Action == "" {
		return nil, fmt.Errorf("event type, resource and action are required: %w", port.ErrInvalid)
	}
	return s.store.InsertAuditLog(ctx, &domain.AuditLog{
		EventType:   e.EventType,
		Resource:    e.Resource,
		ResourceID:  e.ResourceID,
		Action:      e.Action,
		Description: e.Description,
		UserID:      e.UserID,
		IPAddress:   e.IPAddress,
		UserAgent:   e.UserAgent,
		OldValues:   e.OldValues,
		NewValues:   e.NewValues,
		Metadata:    e.Metadata,
	})
}

// Record is the best-effort variant used from other services: an audit write
// failure is logged and swallowed so it never fails the action it describes.
func (s *AuditService) Record(ctx context.Context, e AuditEvent) {
	if _, err := s.Log(ctx, e); err != nil {
		slog.Error("audit write failed",
			"event_type", e.EventType, "resource", e.Resource, "action", e.Action, "error", err)
	}
}

// AuditPage is a paginated audit listing.
type AuditPage struct {
	Data []domain.AuditLog `json:"data"`
	Meta PageMeta          `json:"meta"`
}

// PageMeta describes pagination state for list responses.
type PageMeta struct {
	Total      int `json:"total"`
	Page       int `json:"page"`
	Limit      int `json:"limit"`
	TotalPages int `json:"totalPages"`
}

// FindAll returns matching audit rows newest-first, paginated. Page defaults
// to 1 and limit to 50.
func (s *AuditService) FindAll(ctx context.Context, f port.AuditFilter) (*AuditPage, error) {
	if f.Page <= 0 {
		f.Page = 1
	}
	if f.Limit <= 0 {
		f.Limit = 50
	}
	logs, total, err := s.store.ListAuditLogs(ctx, f)
	if err != nil {
		return nil, fmt.Errorf("list audit logs: %w", err)
	}
	if logs == nil {
		logs = []domain.AuditLog{}
	}
	totalPages := 0
	if total > 0 {
		totalPages = (total + f.Limit - 1) / f.Limit
	}
	return &AuditPage{
		Data: logs,
		Meta: PageMeta{Total: total, Page: f.Page, Limit: f.Limit, TotalPages: totalPages},
	}, nil
}

// FindOne returns a single audit row by ID.
func (s *AuditService) FindOne(ctx context.Context, id string) (*domain.AuditLog, error) {
	return s.store.GetAuditLog(ctx, id)
}

// ExportLogs returns every row matching the filter with pagination disabled,
// for offline export.
func (s *AuditService) ExportLogs(ctx context.Context, f port.AuditFilter) ([]domain.AuditLog, error) {
	f.Page = 0
	f.Limit = 0
	logs, _, err := s.store.ListAuditLogs(ctx, f)
	if err != nil {
		return nil, fmt.Errorf("export audit logs: %w", err)
	}
	if logs == nil {
		logs = []domain.AuditLog{}
	}
	return logs, nil
}
