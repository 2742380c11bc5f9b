package domain

import "time"

// User represents an account scoped to an organization.
type User struct {
	ID             string     `json:"id"              db:"id"`
	Email          string     `json:"email"           db:"email"`
	PasswordHash   string     `json:"-"               db:"password_hash"` // never serialized to JSON
	FirstName      string     `json:"first_name"      db:"first_name"`
	LastName       string     `json:"last_name"       db:"last_name"`
	AvatarURL      string     `json:"avatar_url"      db:"avatar_url"`
	OrganizationID string     `json:"organization_id" db:"organization_id"`
	IsActive       bool       `json:"is_active"       db:"is_active"`
	IsVerified     bool       `json:"is_verified"     db:"is_verified"`
	LastLoginAt    *time.Time `json:"last_login_at,omitempty" db:"last_login_at"`
	CreatedAt      time.Time  `json:"created_at"      db:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"      db:"updated_at"`

	Roles []Role `json:"roles,omitempty"`
}

// Permissions flattens the user's role/permission set into permission names.
func (u *User) Permissions() []string {
	seen := map[string]bool{}
	var names []string
	for _, r := range u.Roles {
		for _, p := range r.Permissions {
			if !seen[p.Name] {
				seen[p.Name] = true
				names = append(names, p.Name)
			}
		}
	}
	return names
}

// Role groups permissions. System roles are seeded and cannot be removed.
type Role struct {
	ID          string `json:"id"          db:"id"`
	Name        string `json:"name"        db:"name"`
	Description string `json:"description" db:"description"`
	IsSystem    bool   `json:"is_system"   db:"is_system"`
	IsDefault   bool   `json:"is_default"  db:"is_default"`

	Permissions []Permission `json:"permissions,omitempty"`
}

// Permission is a named capability in "resource.action" form.
type Permission struct {
	ID          string `json:"id"          db:"id"`
	Name        string `json:"name"        db:"name"`
	Resource    string `json:"resource"    db:"resource"`
	Action      string `json:"action"      db:"action"`
	Description string `json:"description" db:"description"`
}

// Principal is the authenticated caller injected into request handlers.
type Principal struct {
	UserID         string   `json:"user_id"`
	Email          string   `json:"email"`
	OrganizationID string   `json:"organization_id"`
	Permissions    []string `json:"permissions"`
}

// HasPermission reports whether the principal holds the named permission.
func (p *Principal) HasPermission(name string) bool {
	for _, have := range p.Permissions {
		if have == name {
			return true
		}
	}
	return false
}
