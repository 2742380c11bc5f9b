package domain

import (
	"encoding/json"
	"time"
)

// Template is a reusable base configuration for projects. Public templates
// are visible across organizations.
type Template struct {
	ID             string          `json:"id"              db:"id"`
	OrganizationID string          `json:"organization_id" db:"organization_id"`
	CreatedByID    string          `json:"created_by_id"   db:"created_by_id"`
	Name           string          `json:"name"            db:"name"`
	Description    string          `json:"description"     db:"description"`
	Category       string          `json:"category"        db:"category"`
	BaseConfig     json.RawMessage `json:"base_config"     db:"base_config"`
	IsPublic       bool            `json:"is_public"       db:"is_public"`
	CreatedAt      time.Time       `json:"created_at"      db:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"      db:"updated_at"`
}
