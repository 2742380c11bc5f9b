package domain

import (
	"encoding/json"
	"time"
)

// Agent is an AI agent registered under a project. Config is an arbitrary
// JSON blob; its history is tracked by the versioning service.
type Agent struct {
	ID          string          `json:"id"          db:"id"`
	ProjectID   string          `json:"project_id"  db:"project_id"`
	Name        string          `json:"name"        db:"name"`
	Description string          `json:"description" db:"description"`
	Config      json.RawMessage `json:"config"      db:"config"`
	IsActive    bool            `json:"is_active"   db:"is_active"`
	CreatedAt   time.Time       `json:"created_at"  db:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"  db:"updated_at"`

	Prompts []AgentPrompt `json:"prompts,omitempty"`
}

// AgentPrompt is an ordered prompt attached to an agent.
type AgentPrompt struct {
	ID         string          `json:"id"         db:"id"`
	AgentID    string          `json:"agent_id"   db:"agent_id"`
	Name       string          `json:"name"       db:"name"`
	Content    string          `json:"content"    db:"content"`
	Parameters json.RawMessage `json:"parameters" db:"parameters"`
	Order      int             `json:"order"      db:"position"`
	IsActive   bool            `json:"is_active"  db:"is_active"`
	CreatedAt  time.Time       `json:"created_at" db:"created_at"`
}
