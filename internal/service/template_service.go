package service

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/aosagula/adm/internal/domain"
	"github.com/aosagula/adm/internal/port"
)

// TemplateService manages project templates. Listings include the
// organization's templates plus public ones from any organization.
type TemplateService struct {
	templates port.TemplateStore
	audit     *AuditService
}

// NewTemplateService creates a new template service.
func NewTemplateService(templates port.TemplateStore, audit *AuditService) *TemplateService {
	return &TemplateService{templates: templates, audit: audit}
}

// CreateTemplateInput carries a new template request.
type CreateTemplateInput struct {
	Name        string
	Description string
	Category    string
	BaseConfig  json.RawMessage
	IsPublic    bool
}

// Create creates a template owned by the caller.
func (s *TemplateService) Create(ctx context.Context, p *domain.Principal, in CreateTemplateInput) (*domain.Template, error) {
	baseConfig := in.BaseConfig
	if len(baseConfig) == 0 {
		baseConfig = json.RawMessage("{}")
	}
	template, err := s.templates.CreateTemplate(ctx, &domain.Template{
		OrganizationID: p.OrganizationID,
		CreatedByID:    p.UserID,
		Name:           in.Name,
		Description:    in.Description,
		Category:       in.Category,
		BaseConfig:     baseConfig,
		IsPublic:       in.IsPublic,
	})
	if err != nil {
		return nil, fmt.Errorf("create template: %w", err)
	}

	s.audit.Record(ctx, AuditEvent{
		EventType:   domain.EventCreate,
		Resource:    "templates",
		ResourceID:  template.ID,
		Action:      "create",
		Description: fmt.Sprintf("Template %s created", template.Name),
		UserID:      p.UserID,
		NewValues:   marshalValues(template),
	})
	return template, nil
}

// List returns visible templates matching the filter.
func (s *TemplateService) List(ctx context.Context, p *domain.Principal, f port.TemplateFilter) ([]domain.Template, error) {
	return s.templates.ListTemplates(ctx, p.OrganizationID, f)
}

// Get returns one visible template.
func (s *TemplateService) Get(ctx context.Context, p *domain.Principal, id string) (*domain.Template, error) {
	return s.templates.GetTemplate(ctx, id, p.OrganizationID)
}

// UpdateTemplateInput carries template field updates.
type UpdateTemplateInput struct {
	Name        string
	Description string
	Category    string
	BaseConfig  json.RawMessage
	IsPublic    *bool
}

// Update applies field changes. Only the creator may update.
func (s *TemplateService) Update(ctx context.Context, p *domain.Principal, id string, in UpdateTemplateInput) (*domain.Template, error) {
	template, err := s.creatorTemplate(ctx, p, id)
	if err != nil {
		return nil, err
	}

	old := marshalValues(template)
	if in.Name != "" {
		template.Name = in.Name
	}
	if in.Description != "" {
		template.Description = in.Description
	}
	if in.Category != "" {
		template.Category = in.Category
	}
	if len(in.BaseConfig) > 0 {
		template.BaseConfig = in.BaseConfig
	}
	if in.IsPublic != nil {
		template.IsPublic = *in.IsPublic
	}

	updated, err := s.templates.UpdateTemplate(ctx, template)
	if err != nil {
		return nil, fmt.Errorf("update template: %w", err)
	}

	s.audit.Record(ctx, AuditEvent{
		EventType:   domain.EventUpdate,
		Resource:    "templates",
		ResourceID:  updated.ID,
		Action:      "update",
		Description: fmt.Sprintf("Template %s updated", updated.Name),
		UserID:      p.UserID,
		OldValues:   old,
		NewValues:   marshalValues(updated),
	})
	return updated, nil
}

// Remove deletes a template. Only the creator may delete.
func (s *TemplateService) Remove(ctx context.Context, p *domain.Principal, id string) error {
	template, err := s.creatorTemplate(ctx, p, id)
	if err != nil {
		return err
	}
	if err := s.templates.DeleteTemplate(ctx, id); err != nil {
		return fmt.Errorf("delete template: %w", err)
	}

	s.audit.Record(ctx, AuditEvent{
		EventType:   domain.EventDelete,
		Resource:    "templates",
		ResourceID:  template.ID,
		Action:      "delete",
		Description: fmt.Sprintf("Template %s deleted", template.Name),
		UserID:      p.UserID,
		OldValues:   marshalValues(template),
	})
	return nil
}

func (s *TemplateService) creatorTemplate(ctx context.Context, p *domain.Principal, id string) (*domain.Template, error) {
	template, err := s.templates.GetTemplate(ctx, id, p.OrganizationID)
	if err != nil {
		return nil, err
	}
	if template.CreatedByID != p.UserID {
		return nil, fmt.Errorf("only the creator may modify a template: %w", port.ErrForbidden)
	}
	return template, nil
}
