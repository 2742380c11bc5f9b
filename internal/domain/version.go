package domain

import (
	"encoding/json"
	"time"
)

// ConfigurationVersion is an append-only snapshot of a versionable entity's
// configuration. Version numbers are a contiguous ascending sequence per
// (ProjectID, ConfigurationType, EntityID), starting at 1.
type ConfigurationVersion struct {
	ID                string          `json:"id"                 db:"id"`
	ProjectID         string          `json:"project_id"         db:"project_id"`
	ConfigurationType string          `json:"configuration_type" db:"configuration_type"`
	EntityID          string          `json:"entity_id"          db:"entity_id"`
	Version           int             `json:"version"            db:"version"`
	Content           json.RawMessage `json:"content"            db:"content"`
	Diff              string          `json:"diff,omitempty"     db:"diff"` // unified patch vs. the previous version; empty for version 1
	ChangesSummary    string          `json:"changes_summary"    db:"changes_summary"`
	CreatedBy         string          `json:"created_by"         db:"created_by"`
	CreatedAt         time.Time       `json:"created_at"         db:"created_at"`
}

// Configuration type constants.
const (
	ConfigTypeProject  = "PROJECT"
	ConfigTypeAgent    = "AGENT"
	ConfigTypeTemplate = "TEMPLATE"
	ConfigTypePlatform = "PLATFORM"
)
