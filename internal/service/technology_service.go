package service

import (
	"context"
	"fmt"

	"github.com/aosagula/adm/internal/domain"
	"github.com/aosagula/adm/internal/port"
)

// TechnologyService manages the organization's technology catalog.
type TechnologyService struct {
	technologies port.TechnologyStore
	audit        *AuditService
}

// NewTechnologyService creates a new technology service.
func NewTechnologyService(technologies port.TechnologyStore, audit *AuditService) *TechnologyService {
	return &TechnologyService{technologies: technologies, audit: audit}
}

// TechnologyInput carries technology create/update fields.
type TechnologyInput struct {
	Name        string
	Category    string
	Version     string
	Description string
}

// Create adds a technology to the catalog.
func (s *TechnologyService) Create(ctx context.Context, p *domain.Principal, in TechnologyInput) (*domain.Technology, error) {
	tech, err := s.technologies.CreateTechnology(ctx, &domain.Technology{
		OrganizationID: p.OrganizationID,
		Name:           in.Name,
		Category:       in.Category,
		Version:        in.Version,
		Description:    in.Description,
	})
	if err != nil {
		return nil, fmt.Errorf("create technology: %w", err)
	}

	s.audit.Record(ctx, AuditEvent{
		EventType:   domain.EventCreate,
		Resource:    "technologies",
		ResourceID:  tech.ID,
		Action:      "create",
		Description: fmt.Sprintf("Technology %s created", tech.Name),
		UserID:      p.UserID,
		NewValues:   marshalValues(tech),
	})
	return tech, nil
}

// List returns the catalog, optionally filtered by category.
func (s *TechnologyService) List(ctx context.Context, p *domain.Principal, category string) ([]domain.Technology, error) {
	return s.technologies.ListTechnologies(ctx, p.OrganizationID, category)
}

// Get returns one catalog entry.
func (s *TechnologyService) Get(ctx context.Context, p *domain.Principal, id string) (*domain.Technology, error) {
	return s.technologies.GetTechnology(ctx, id, p.OrganizationID)
}

// Update applies field changes.
func (s *TechnologyService) Update(ctx context.Context, p *domain.Principal, id string, in TechnologyInput) (*domain.Technology, error) {
	tech, err := s.technologies.GetTechnology(ctx, id, p.OrganizationID)
	if err != nil {
		return nil, err
	}

	old := marshalValues(tech)
	if in.Name != "" {
		tech.Name = in.Name
	}
	if in.Category != "" {
		tech.Category = in.Category
	}
	if in.Version != "" {
		tech.Version = in.Version
	}
	if in.Description != "" {
		tech.Description = in.Description
	}

	updated, err := s.technologies.UpdateTechnology(ctx, tech)
	if err != nil {
		return nil, fmt.Errorf("update technology: %w", err)
	}

	s.audit.Record(ctx, AuditEvent{
		EventType:   domain.EventUpdate,
		Resource:    "technologies",
		ResourceID:  updated.ID,
		Action:      "update",
		Description: fmt.Sprintf("Technology %s updated", updated.Name),
		UserID:      p.UserID,
		OldValues:   old,
		NewValues:   marshalValues(updated),
	})
	return updated, nil
}

// Remove deletes a catalog entry.
func (s *TechnologyService) Remove(ctx context.Context, p *domain.Principal, id string) error {
	tech, err := s.technologies.GetTechnology(ctx, id, p.OrganizationID)
	if err != nil {
		return err
	}
	if err := s.technologies.DeleteTechnology(ctx, id); err != nil {
		return fmt.Errorf("delete technology: %w", err)
	}

	s.audit.Record(ctx, AuditEvent{
		EventType:   domain.EventDelete,
		Resource:    "technologies",
		ResourceID:  tech.ID,
		Action:      "delete",
		Description: fmt.Sprintf("Technology %s deleted", tech.Name),
		UserID:      p.UserID,
		OldValues:   marshalValues(tech),
	})
	return nil
}
