package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"docaudit/internal/model"
	"docaudit/internal/repository"
)

type MockWorkspaceRepository struct {
	mock.Mock
}

func (m *MockWorkspaceRepository) Create(ctx context.Context, ws *model.Workspace) error {
	return m.Called(ctx, ws).Error(0)
}

func (m *MockWorkspaceRepository) FindByID(ctx context.Context, id string) (*model.Workspace, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Workspace), args.Error(1)
}

func (m *MockWorkspaceRepository) ListForUser(ctx context.Context, userID string, pq repository.PageQuery) (*repository.PageResult[model.Workspace], error) {
	args := m.Called(ctx, userID, pq)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*repository.PageResult[model.Workspace]), args.Error(1)
}

func (m *MockWorkspaceRepository) Update(ctx context.Context, ws *model.Workspace) error {
	return m.Called(ctx, ws).Error(0)
}

func (m *MockWorkspaceRepository) Delete(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockWorkspaceRepository) UpsertCollaborator(ctx context.Context, c *model.WorkspaceCollaboration) error {
	return m.Called(ctx, c).Error(0)
}

func (m *MockWorkspaceRepository) RemoveCollaborator(ctx context.Context, workspaceID, userID string) error {
	return m.Called(ctx, workspaceID, userID).Error(0)
}

func (m *MockWorkspaceRepository) FindCollaborator(ctx context.Context, workspaceID, userID string) (*model.WorkspaceCollaboration, error) {
	args := m.Called(ctx, workspaceID, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.WorkspaceCollaboration), args.Error(1)
}

func (m *MockWorkspaceRepository) ListCollaborators(ctx context.Context, workspaceID string) ([]model.WorkspaceCollaboration, error) {
	args := m.Called(ctx, workspaceID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.WorkspaceCollaboration), args.Error(1)
}
