package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"docaudit/internal/model"
	"docaudit/internal/service"
)

type MockWorkflowService struct {
	mock.Mock
}

func (m *MockWorkflowService) CreateWorkflow(ctx context.Context, in service.CreateWorkflowInput) (*model.Workflow, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Workflow), args.Error(1)
}

func (m *MockWorkflowService) ListWorkflows(ctx context.Context, workspaceID string, limit, offset int) (*service.WorkflowListResult, error) {
	args := m.Called(ctx, workspaceID, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.WorkflowListResult), args.Error(1)
}

func (m *MockWorkflowService) GetWorkflow(ctx context.Context, id string) (*model.Workflow, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Workflow), args.Error(1)
}

func (m *MockWorkflowService) Start(ctx context.Context, workflowID, documentID, actorID string) (*model.WorkflowInstance, error) {
	args := m.Called(ctx, workflowID, documentID, actorID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.WorkflowInstance), args.Error(1)
}

func (m *MockWorkflowService) Act(ctx context.Context, instanceID, actorID string, decision service.Decision, comment string) (*model.WorkflowInstance, error) {
	args := m.Called(ctx, instanceID, actorID, decision, comment)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.WorkflowInstance), args.Error(1)
}

func (m *MockWorkflowService) Cancel(ctx context.Context, instanceID, actorID, comment string) (*model.WorkflowInstance, error) {
	args := m.Called(ctx, instanceID, actorID, comment)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.WorkflowInstance), args.Error(1)
}

func (m *MockWorkflowService) GetInstance(ctx context.Context, id string) (*model.WorkflowInstance, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.WorkflowInstance), args.Error(1)
}

func (m *MockWorkflowService) ListInstances(ctx context.Context, documentID string) ([]model.WorkflowInstance, error) {
	args := m.Called(ctx, documentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.WorkflowInstance), args.Error(1)
}
