package model

import "time"

type Workspace struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	OwnerID     string    `json:"owner_id"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type CollaboratorRole string

const (
	CollaboratorOwner  CollaboratorRole = "owner"
	CollaboratorEditor CollaboratorRole = "editor"
	CollaboratorViewer CollaboratorRole = "viewer"
)

type WorkspaceCollaboration struct {
	WorkspaceID string           `json:"workspace_id"`
	UserID      string           `json:"user_id"`
	Role        CollaboratorRole `json:"role"`
	InvitedBy   string           `json:"invited_by"`
	CreatedAt   time.Time        `json:"created_at"`
}
