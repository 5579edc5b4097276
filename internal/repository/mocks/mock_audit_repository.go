package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"docaudit/internal/model"
	"docaudit/internal/repository"
)

type MockAuditRepository struct {
	mock.Mock
}

func (m *MockAuditRepository) Create(ctx context.Context, e *model.AuditEntry) error {
	return m.Called(ctx, e).Error(0)
}

func (m *MockAuditRepository) List(ctx context.Context, f repository.AuditFilter) (*repository.PageResult[model.AuditEntry], error) {
	args := m.Called(ctx, f)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*repository.PageResult[model.AuditEntry]), args.Error(1)
}
