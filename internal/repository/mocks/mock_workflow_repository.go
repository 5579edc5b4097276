package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"docaudit/internal/model"
	"docaudit/internal/repository"
)

type MockWorkflowRepository struct {
	mock.Mock
}

func (m *MockWorkflowRepository) CreateWorkflow(ctx context.Context, w *model.Workflow) error {
	return m.Called(ctx, w).Error(0)
}

func (m *MockWorkflowRepository) FindWorkflow(ctx context.Context, id string) (*model.Workflow, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Workflow), args.Error(1)
}

func (m *MockWorkflowRepository) ListWorkflows(ctx context.Context, workspaceID string, pq repository.PageQuery) (*repository.PageResult[model.Workflow], error) {
	args := m.Called(ctx, workspaceID, pq)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*repository.PageResult[model.Workflow]), args.Error(1)
}

func (m *MockWorkflowRepository) CreateInstance(ctx context.Context, inst *model.WorkflowInstance) error {
	return m.Called(ctx, inst).Error(0)
}

func (m *MockWorkflowRepository) FindInstance(ctx context.Context, id string) (*model.WorkflowInstance, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.WorkflowInstance), args.Error(1)
}

func (m *MockWorkflowRepository) ListInstances(ctx context.Context, documentID string) ([]model.WorkflowInstance, error) {
	args := m.Called(ctx, documentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.WorkflowInstance), args.Error(1)
}

func (m *MockWorkflowRepository) SaveTransition(ctx context.Context, inst *model.WorkflowInstance, prevStep int, steps []model.WorkflowStep) error {
	return m.Called(ctx, inst, prevStep, steps).Error(0)
}
