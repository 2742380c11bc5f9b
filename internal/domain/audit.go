package domain

import (
	"encoding/json"
	"time"
)

// AuditLog records every significant action in the system for compliance.
// Rows are append-only: there is no update or delete path.
type AuditLog struct {
	ID          string          `json:"id"          db:"id"`
	EventType   string          `json:"event_type"  db:"event_type"`
	Resource    string          `json:"resource"    db:"resource"`
	ResourceID  string          `json:"resource_id,omitempty" db:"resource_id"`
	Action      string          `json:"action"      db:"action"`
	Description string          `json:"description" db:"description"`
	UserID      string          `json:"user_id,omitempty" db:"user_id"` // empty for anonymous failed logins
	IPAddress   string          `json:"ip_address"  db:"ip_address"`
	UserAgent   string          `json:"user_agent"  db:"user_agent"`
	OldValues   json.RawMessage `json:"old_values,omitempty" db:"old_values"`
	NewValues   json.RawMessage `json:"new_values,omitempty" db:"new_values"`
	Metadata    json.RawMessage `json:"metadata,omitempty"   db:"metadata"`
	CreatedAt   time.Time       `json:"created_at"  db:"created_at"`
}

// Audit event type constants.
const (
	EventCreate       = "CREATE"
	EventUpdate       = "UPDATE"
	EventDelete       = "DELETE"
	EventStatusChange = "STATUS_CHANGE"
	EventAuthLogin    = "AUTH_LOGIN"
	EventAuthLogout   = "AUTH_LOGOUT"
	EventAuthFailed   = "AUTH_FAILED"
)
