package domain

import "time"

// Organization is the tenant boundary. Every other entity belongs to
// exactly one organization.
type Organization struct {
	ID          string    `json:"id"          db:"id"`
	Name        string    `json:"name"        db:"name"`
	Slug        string    `json:"slug"        db:"slug"`
	Description string    `json:"description" db:"description"`
	IsActive    bool      `json:"is_active"   db:"is_active"`
	CreatedAt   time.Time `json:"created_at"  db:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"  db:"updated_at"`
}
