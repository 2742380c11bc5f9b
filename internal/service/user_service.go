package service

import (
	"context"
	"fmt"

	"github.com/aosagula/adm/internal/domain"
	"github.com/aosagula/adm/internal/port"
)

// UserService manages accounts and role assignments within an organization.
type UserService struct {
	users port.UserStore
	audit *AuditService
}

// NewUserService creates a new user service.
func NewUserService(users port.UserStore, audit *AuditService) *UserService {
	return &UserService{users: users, audit: audit}
}

// List returns the organization's users with roles expanded.
func (s *UserService) List(ctx context.Context, p *domain.Principal) ([]domain.User, error) {
	return s.users.ListUsers(ctx, p.OrganizationID)
}

// Get returns one user in the caller's organization with roles expanded.
func (s *UserService) Get(ctx context.Context, p *domain.Principal, id string) (*domain.User, error) {
	return s.users.GetUser(ctx, id, p.OrganizationID)
}

// UpdateUserInput carries profile field updates.
type UpdateUserInput struct {
	FirstName string
	LastName  string
	AvatarURL string
}

// Update applies profile changes to a user in the caller's organization.
func (s *UserService) Update(ctx context.Context, p *domain.Principal, id string, in UpdateUserInput) (*domain.User, error) {
	user, err := s.users.GetUser(ctx, id, p.OrganizationID)
	if err != nil {
		return nil, err
	}

	old := marshalValues(user)
	if in.FirstName != "" {
		user.FirstName = in.FirstName
	}
	if in.LastName != "" {
		user.LastName = in.LastName
	}
	if in.AvatarURL != "" {
		user.AvatarURL = in.AvatarURL
	}

	updated, err := s.users.UpdateUser(ctx, user)
	if err != nil {
		return nil, fmt.Errorf("update user: %w", err)
	}

	s.audit.Record(ctx, AuditEvent{
		EventType:   domain.EventUpdate,
		Resource:    "users",
		ResourceID:  updated.ID,
		Action:      "update",
		Description: fmt.Sprintf("User %s updated", updated.Email),
		UserID:      p.UserID,
		OldValues:   old,
		NewValues:   marshalValues(updated),
	})
	return updated, nil
}

// Remove deactivates the account. User rows are never deleted so the audit
// trail keeps resolving.
func (s *UserService) Remove(ctx context.Context, p *domain.Principal, id string) error {
	user, err := s.users.GetUser(ctx, id, p.OrganizationID)
	if err != nil {
		return err
	}
	if err := s.users.DeactivateUser(ctx, id); err != nil {
		return fmt.Errorf("deactivate user: %w", err)
	}

	s.audit.Record(ctx, AuditEvent{
		EventType:   domain.EventDelete,
		Resource:    "users",
		ResourceID:  user.ID,
		Action:      "deactivate",
		Description: fmt.Sprintf("User %s deactivated", user.Email),
		UserID:      p.UserID,
	})
	return nil
}

// AssignRole grants a role to a user in the caller's organization.
func (s *UserService) AssignRole(ctx context.Context, p *domain.Principal, userID, roleID string) error {
	user, err := s.users.GetUser(ctx, userID, p.OrganizationID)
	if err != nil {
		return err
	}
	role, err := s.users.GetRole(ctx, roleID)
	if err != nil {
		return err
	}
	if err := s.users.AssignRole(ctx, userID, roleID); err != nil {
		return fmt.Errorf("assign role: %w", err)
	}

	s.audit.Record(ctx, AuditEvent{
		EventType:   domain.EventUpdate,
		Resource:    "users",
		ResourceID:  user.ID,
		Action:      "assign_role",
		Description: fmt.Sprintf("Role %s assigned to %s", role.Name, user.Email),
		UserID:      p.UserID,
	})
	return nil
}

// RemoveRole revokes a role from a user. System roles cannot be revoked.
func (s *UserService) RemoveRole(ctx context.Context, p *domain.Principal, userID, roleID string) error {
	user, err := s.users.GetUser(ctx, userID, p.OrganizationID)
	if err != nil {
		return err
	}
	role, err := s.users.GetRole(ctx, roleID)
	if err != nil {
		return err
	}
	if role.IsSystem {
		return fmt.Errorf("system roles cannot be revoked: %w", port.ErrForbidden)
	}
	if err := s.users.RemoveRole(ctx, userID, roleID); err != nil {
		return fmt.Errorf("remove role: %w", err)
	}

	s.audit.Record(ctx, AuditEvent{
		EventType:   domain.EventUpdate,
		Resource:    "users",
		ResourceID:  user.ID,
		Action:      "remove_role",
		Description: fmt.Sprintf("Role %s removed from %s", role.Name, user.Email),
		UserID:      p.UserID,
	})
	return nil
}
