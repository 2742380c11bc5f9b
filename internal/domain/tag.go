package domain

import "time"

// Tag labels projects inside an organization. System tags are seeded and
// cannot be deleted.
type Tag struct {
	ID             string    `json:"id"              db:"id"`
	OrganizationID string    `json:"organization_id" db:"organization_id"`
	Name           string    `json:"name"            db:"name"`
	Color          string    `json:"color"           db:"color"`
	Description    string    `json:"description"     db:"description"`
	IsSystem       bool      `json:"is_system"       db:"is_system"`
	CreatedAt      time.Time `json:"created_at"      db:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"      db:"updated_at"`
}
