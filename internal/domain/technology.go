package domain

import "time"

// Technology is a catalog entry (framework, model, runtime) usable in stacks.
type Technology struct {
	ID             string    `json:"id"              db:"id"`
	OrganizationID string    `json:"organization_id" db:"organization_id"`
	Name           string    `json:"name"            db:"name"`
	Category       string    `json:"category"        db:"category"`
	Version        string    `json:"version"         db:"version"`
	Description    string    `json:"description"     db:"description"`
	CreatedAt      time.Time `json:"created_at"      db:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"      db:"updated_at"`
}
