package service

import (
	"context"

	"github.com/aosagula/adm/internal/domain"
	"github.com/aosagula/adm/internal/port"
)

// OrganizationService reads tenant records.
type OrganizationService struct {
	organizations port.OrganizationStore
}

// NewOrganizationService creates a new organization service.
func NewOrganizationService(organizations port.OrganizationStore) *OrganizationService {
	return &OrganizationService{organizations: organizations}
}

// List returns all organizations.
func (s *OrganizationService) List(ctx context.Context) ([]domain.Organization, error) {
	return s.organizations.ListOrganizations(ctx)
}

// Get returns one organization.
func (s *OrganizationService) Get(ctx context.Context, id string) (*domain.Organization, error) {
	return s.organizations.GetOrganization(ctx, id)
}
