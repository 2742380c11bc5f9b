package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/aosagula/adm/internal/domain"
	"github.com/aosagula/adm/internal/port"
)

// PlatformService manages deployment platforms.
type PlatformService struct {
	platforms port.PlatformStore
	audit     *AuditService
}

// NewPlatformService creates a new platform service.
func NewPlatformService(platforms port.PlatformStore, audit *AuditService) *PlatformService {
	return &PlatformService{platforms: platforms, audit: audit}
}

// PlatformInput carries platform create/update fields.
type PlatformInput struct {
	Name        string
	Provider    string
	Description string
	Config      json.RawMessage
}

// Create registers a deployment platform.
func (s *PlatformService) Create(ctx context.Context, p *domain.Principal, in PlatformInput) (*domain.Platform, error) {
	config := in.Config
	if len(config) == 0 {
		config = json.RawMessage("{}")
	}
	platform, err := s.platforms.CreatePlatform(ctx, &domain.Platform{
		OrganizationID: p.OrganizationID,
		Name:           in.Name,
		Provider:       in.Provider,
		Description:    in.Description,
		Config:         config,
	})
	if err != nil {
		return nil, fmt.Errorf("create platform: %w", err)
	}

	s.audit.Record(ctx, AuditEvent{
		EventType:   domain.EventCreate,
		Resource:    "platforms",
		ResourceID:  platform.ID,
		Action:      "create",
		Description: fmt.Sprintf("Platform %s created", platform.Name),
		UserID:      p.UserID,
		NewValues:   marshalValues(platform),
	})
	slog.Info("platform created", "platform", platform.ID, "provider", platform.Provider)
	return platform, nil
}

// List returns platforms, optionally filtered by provider.
func (s *PlatformService) List(ctx context.Context, p *domain.Principal, provider string) ([]domain.Platform, error) {
	return s.platforms.ListPlatforms(ctx, p.OrganizationID, provider)
}

// Get returns one platform.
func (s *PlatformService) Get(ctx context.Context, p *domain.Principal, id string) (*domain.Platform, error) {
	return s.platforms.GetPlatform(ctx, id, p.OrganizationID)
}

// Update applies field changes.
func (s *PlatformService) Update(ctx context.Context, p *domain.Principal, id string, in PlatformInput) (*domain.Platform, error) {
	platform, err := s.platforms.GetPlatform(ctx, id, p.OrganizationID)
	if err != nil {
		return nil, err
	}

	old := marshalValues(platform)
	if in.Name != "" {
		platform.Name = in.Name
	}
	if in.Provider != "" {
		platform.Provider = in.Provider
	}
	if in.Description != "" {
		platform.Description = in.Description
	}
	if len(in.Config) > 0 {
		platform.Config = in.Config
	}

	updated, err := s.platforms.UpdatePlatform(ctx, platform)
	if err != nil {
		return nil, fmt.Errorf("update platform: %w", err)
	}

	s.audit.Record(ctx, AuditEvent{
		EventType:   domain.EventUpdate,
		Resource:    "platforms",
		ResourceID:  updated.ID,
		Action:      "update",
		Description: fmt.Sprintf("Platform %s updated", updated.Name),
		UserID:      p.UserID,
		OldValues:   old,
		NewValues:   marshalValues(updated),
	})
	return updated, nil
}

// Remove deletes a platform.
func (s *PlatformService) Remove(ctx context.Context, p *domain.Principal, id string) error {
	platform, err := s.platforms.GetPlatform(ctx, id, p.OrganizationID)
	if err != nil {
		return err
	}
	if err := s.platforms.DeletePlatform(ctx, id); err != nil {
		return fmt.Errorf("delete platform: %w", err)
	}

	s.audit.Record(ctx, AuditEvent{
		EventType:   domain.EventDelete,
		Resource:    "platforms",
		ResourceID:  platform.ID,
		Action:      "delete",
		Description: fmt.Sprintf("Platform %s deleted", platform.Name),
		UserID:      p.UserID,
		OldValues:   marshalValues(platform),
	})
	return nil
}
