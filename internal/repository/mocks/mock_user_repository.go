package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"docaudit/internal/model"
)

type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) FindProfile(ctx context.Context, id string) (*model.UserProfile, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.UserProfile), args.Error(1)
}

func (m *MockUserRepository) UpsertProfile(ctx context.Context, p *model.UserProfile) (*model.UserProfile, error) {
	args := m.Called(ctx, p)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.UserProfile), args.Error(1)
}

func (m *MockUserRepository) ListRoles(ctx context.Context, userID string) ([]model.UserRole, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.UserRole), args.Error(1)
}

func (m *MockUserRepository) AddRole(ctx context.Context, r *model.UserRole) error {
	return m.Called(ctx, r).Error(0)
}

func (m *MockUserRepository) RemoveRole(ctx context.Context, userID, role string) error {
	return m.Called(ctx, userID, role).Error(0)
}
