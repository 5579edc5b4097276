package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"docaudit/internal/model"
	"docaudit/internal/rbac"
	"docaudit/internal/service"
)

type MockUserService struct {
	mock.Mock
}

func (m *MockUserService) GetProfile(ctx context.Context, id string) (*model.UserProfile, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.UserProfile), args.Error(1)
}

func (m *MockUserService) UpsertProfile(ctx context.Context, id string, in service.UpsertProfileInput) (*model.UserProfile, error) {
	args := m.Called(ctx, id, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.UserProfile), args.Error(1)
}

func (m *MockUserService) ListRoles(ctx context.Context, userID string) ([]model.UserRole, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.UserRole), args.Error(1)
}

func (m *MockUserService) AssignRole(ctx context.Context, userID, role, actorID string) (*model.UserRole, error) {
	args := m.Called(ctx, userID, role, actorID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.UserRole), args.Error(1)
}

func (m *MockUserService) RevokeRole(ctx context.Context, userID, role, actorID string) error {
	return m.Called(ctx, userID, role, actorID).Error(0)
}

func (m *MockUserService) HasPermission(ctx context.Context, userID string, p rbac.Permission) (bool, error) {
	args := m.Called(ctx, userID, p)
	return args.Bool(0), args.Error(1)
}

func (m *MockUserService) RolesOf(ctx context.Context, userID string) ([]string, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

type MockAuditService struct {
	mock.Mock
}

func (m *MockAuditService) Record(ctx context.Context, e model.AuditEntry) {
	m.Called(ctx, e)
}

func (m *MockAuditService) List(ctx context.Context, in service.AuditListInput) (*service.AuditListResult, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.AuditListResult), args.Error(1)
}
