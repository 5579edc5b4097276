package repository

import (
	"context"

	"docaudit/internal/model"
)

type WorkflowRepository interface {
	CreateWorkflow(ctx context.Context, w *model.Workflow) error
	FindWorkflow(ctx context.Context, id string) (*model.Workflow, error)
	ListWorkflows(ctx context.Context, workspaceID string, pq PageQuery) (*PageResult[model.Workflow], error)

	// CreateInstance inserts the instance and its steps atomically.
	CreateInstance(ctx context.Context, inst *model.WorkflowInstance) error
	// FindInstance returns the instance with its steps ordered by position.
	FindInstance(ctx context.Context, id string) (*model.WorkflowInstance, error)
	ListInstances(ctx context.Context, documentID string) ([]model.WorkflowInstance, error)
	// SaveTransition persists the instance and the changed steps atomically. The
	// instance update is guarded on the previous step index still being current and
	// the instance still in progress; otherwise ErrStaleState is returned.
	SaveTransition(ctx context.Context, inst *model.WorkflowInstance, prevStep int, steps []model.WorkflowStep) error
}
