package domain

import "time"

// Project groups agents and configuration inside an organization.
type Project struct {
	ID              string    `json:"id"               db:"id"`
	OrganizationID  string    `json:"organization_id"  db:"organization_id"`
	OwnerID         string    `json:"owner_id"         db:"owner_id"`
	TemplateID      string    `json:"template_id,omitempty" db:"template_id"`
	Name            string    `json:"name"             db:"name"`
	Slug            string    `json:"slug"             db:"slug"`
	Description     string    `json:"description"      db:"description"`
	LongDescription string    `json:"long_description" db:"long_description"`
	Visibility      string    `json:"visibility"       db:"visibility"`
	Status          string    `json:"status"           db:"status"`
	CreatedAt       time.Time `json:"created_at"       db:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"       db:"updated_at"`

	Members []ProjectMember `json:"members,omitempty"`
}

// IsMember reports whether userID is the owner or appears in the member list.
func (p *Project) IsMember(userID string) bool {
	if p.OwnerID == userID {
		return true
	}
	for _, m := range p.Members {
		if m.UserID == userID {
			return true
		}
	}
	return false
}

// ProjectMember links a user to a project with a project-level role.
type ProjectMember struct {
	ID        string    `json:"id"         db:"id"`
	ProjectID string    `json:"project_id" db:"project_id"`
	UserID    string    `json:"user_id"    db:"user_id"`
	Role      string    `json:"role"       db:"role"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// Project status constants.
const (
	ProjectStatusDevelopment = "DEVELOPMENT"
	ProjectStatusTesting     = "TESTING"
	ProjectStatusProduction  = "PRODUCTION"
	ProjectStatusArchived    = "ARCHIVED"
)

// Project visibility constants.
const (
	VisibilityPrivate  = "PRIVATE"
	VisibilityInternal = "INTERNAL"
	VisibilityPublic   = "PUBLIC"
)

// Project member role constants.
const (
	MemberRoleOwner  = "OWNER"
	MemberRoleEditor = "EDITOR"
	MemberRoleViewer = "VIEWER"
)
