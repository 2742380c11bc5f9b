package domain

import (
	"encoding/json"
	"time"
)

// Platform is a deployment target (cloud provider, runtime platform).
type Platform struct {
	ID             string          `json:"id"              db:"id"`
	OrganizationID string          `json:"organization_id" db:"organization_id"`
	Name           string          `json:"name"            db:"name"`
	Provider       string          `json:"provider"        db:"provider"`
	Description    string          `json:"description"     db:"description"`
	Config         json.RawMessage `json:"config"          db:"config"`
	CreatedAt      time.Time       `json:"created_at"      db:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"      db:"updated_at"`
}
