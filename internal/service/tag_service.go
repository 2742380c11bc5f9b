package service

import (
	"context"
	"fmt"

	"github.com/aosagula/adm/internal/domain"
	"github.com/aosagula/adm/internal/port"
)

// TagService manages organization tags. System tags are seeded and cannot be
// deleted.
type TagService struct {
	tags  port.TagStore
	audit *AuditService
}

// NewTagService creates a new tag service.
func NewTagService(tags port.TagStore, audit *AuditService) *TagService {
	return &TagService{tags: tags, audit: audit}
}

// TagInput carries tag create/update fields.
type TagInput struct {
	Name        string
	Color       string
	Description string
}

// Create adds a tag. Names are unique per organization.
func (s *TagService) Create(ctx context.Context, p *domain.Principal, in TagInput) (*domain.Tag, error) {
	tag, err := s.tags.CreateTag(ctx, &domain.Tag{
		OrganizationID: p.OrganizationID,
		Name:           in.Name,
		Color:          in.Color,
		Description:    in.Description,
	})
	if err != nil {
		return nil, fmt.Errorf("create tag: %w", err)
	}

	s.audit.Record(ctx, AuditEvent{
		EventType:   domain.EventCreate,
		Resource:    "tags",
		ResourceID:  tag.ID,
		Action:      "create",
		Description: fmt.Sprintf("Tag %s created", tag.Name),
		UserID:      p.UserID,
		NewValues:   marshalValues(tag),
	})
	return tag, nil
}

// List returns tags, optionally filtered to system or custom tags.
func (s *TagService) List(ctx context.Context, p *domain.Principal, isSystem *bool) ([]domain.Tag, error) {
	return s.tags.ListTags(ctx, p.OrganizationID, isSystem)
}

// Get returns one tag.
func (s *TagService) Get(ctx context.Context, p *domain.Principal, id string) (*domain.Tag, error) {
	return s.tags.GetTag(ctx, id, p.OrganizationID)
}

// Update applies field changes. Renaming onto an existing tag name fails
// with a conflict.
func (s *TagService) Update(ctx context.Context, p *domain.Principal, id string, in TagInput) (*domain.Tag, error) {
	tag, err := s.tags.GetTag(ctx, id, p.OrganizationID)
	if err != nil {
		return nil, err
	}

	old := marshalValues(tag)
	if in.Name != "" {
		tag.Name = in.Name
	}
	if in.Color != "" {
		tag.Color = in.Color
	}
	if in.Description != "" {
		tag.Description = in.Description
	}

	updated, err := s.tags.UpdateTag(ctx, tag)
	if err != nil {
		return nil, fmt.Errorf("update tag: %w", err)
	}

	s.audit.Record(ctx, AuditEvent{
		EventType:   domain.EventUpdate,
		Resource:    "tags",
		ResourceID:  updated.ID,
		Action:      "update",
		Description: fmt.Sprintf("Tag %s updated", updated.Name),
		UserID:      p.UserID,
		OldValues:   old,
		NewValues:   marshalValues(updated),
	})
	return updated, nil
}

// Remove deletes a tag. System tags cannot be removed.
func (s *TagService) Remove(ctx context.Context, p *domain.Principal, id string) error {
	tag, err := s.tags.GetTag(ctx, id, p.OrganizationID)
	if err != nil {
		return err
	}
	if tag.IsSystem {
		return fmt.Errorf("system tags cannot be deleted: %w", port.ErrForbidden)
	}
	if err := s.tags.DeleteTag(ctx, id); err != nil {
		return fmt.Errorf("delete tag: %w", err)
	}

	s.audit.Record(ctx, AuditEvent{
		EventType:   domain.EventDelete,
		Resource:    "tags",
		ResourceID:  tag.ID,
		Action:      "delete",
		Description: fmt.Sprintf("Tag %s deleted", tag.Name),
		UserID:      p.UserID,
		OldValues:   marshalValues(tag),
	})
	return nil
}
