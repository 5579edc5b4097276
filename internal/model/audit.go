package model

import "time"

// AuditEntry is an append-only record of an action taken in the system.
type AuditEntry struct {
	ID          string         `json:"id"`
	ActorID     string         `json:"actor_id"`
	Action      string         `json:"action"`
	EntityType  string         `json:"entity_type"`
	EntityID    string         `json:"entity_id"`
	WorkspaceID string         `json:"workspace_id,omitempty"`
	Details     map[string]any `json:"details,omitempty"`
	RequestID   string         `json:"request_id,omitempty"`
	CreatedAt   time.Time      `json:"created_at"`
}
