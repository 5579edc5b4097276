package repository

import (
	"context"

	"docaudit/internal/model"
)

type WorkspaceRepository interface {
	// Create inserts the workspace together with its owner collaboration.
	Create(ctx context.Context, ws *model.Workspace) error
	FindByID(ctx context.Context, id string) (*model.Workspace, error)
	ListForUser(ctx context.Context, userID string, pq PageQuery) (*PageResult[model.Workspace], error)
	Update(ctx context.Context, ws *model.Workspace) error
	Delete(ctx context.Context, id string) error

	UpsertCollaborator(ctx context.Context, c *model.WorkspaceCollaboration) error
	RemoveCollaborator(ctx context.Context, workspaceID, userID string) error
	FindCollaborator(ctx context.Context, workspaceID, userID string) (*model.WorkspaceCollaboration, error)
	ListCollaborators(ctx context.Context, workspaceID string) ([]model.WorkspaceCollaboration, error)
}
