package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"docaudit/internal/model"
	"docaudit/internal/service"
)

type MockWorkspaceService struct {
	mock.Mock
}

func (m *MockWorkspaceService) Create(ctx context.Context, in service.CreateWorkspaceInput) (*model.Workspace, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Workspace), args.Error(1)
}

func (m *MockWorkspaceService) Get(ctx context.Context, id string) (*model.Workspace, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Workspace), args.Error(1)
}

func (m *MockWorkspaceService) ListForUser(ctx context.Context, userID string, limit, offset int) (*service.WorkspaceListResult, error) {
	args := m.Called(ctx, userID, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.WorkspaceListResult), args.Error(1)
}

func (m *MockWorkspaceService) Update(ctx context.Context, id, actorID string, in service.UpdateWorkspaceInput) (*model.Workspace, error) {
	args := m.Called(ctx, id, actorID, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Workspace), args.Error(1)
}

func (m *MockWorkspaceService) Delete(ctx context.Context, id, actorID string) error {
	return m.Called(ctx, id, actorID).Error(0)
}

func (m *MockWorkspaceService) AddCollaborator(ctx context.Context, workspaceID, userID string, role model.CollaboratorRole, actorID string) (*model.WorkspaceCollaboration, error) {
	args := m.Called(ctx, workspaceID, userID, role, actorID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.WorkspaceCollaboration), args.Error(1)
}

func (m *MockWorkspaceService) RemoveCollaborator(ctx context.Context, workspaceID, userID, actorID string) error {
	return m.Called(ctx, workspaceID, userID, actorID).Error(0)
}

func (m *MockWorkspaceService) ListCollaborators(ctx context.Context, workspaceID string) ([]model.WorkspaceCollaboration, error) {
	args := m.Called(ctx, workspaceID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.WorkspaceCollaboration), args.Error(1)
}
