package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"docaudit/internal/model"
	"docaudit/internal/repository"
)

type MockComplianceRepository struct {
	mock.Mock
}

func (m *MockComplianceRepository) CreateFramework(ctx context.Context, f *model.ComplianceFramework) error {
	return m.Called(ctx, f).Error(0)
}

func (m *MockComplianceRepository) FindFramework(ctx context.Context, id string) (*model.ComplianceFramework, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.ComplianceFramework), args.Error(1)
}

func (m *MockComplianceRepository) ListFrameworks(ctx context.Context, pq repository.PageQuery) (*repository.PageResult[model.ComplianceFramework], error) {
	args := m.Called(ctx, pq)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*repository.PageResult[model.ComplianceFramework]), args.Error(1)
}

func (m *MockComplianceRepository) DeleteFramework(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockComplianceRepository) CreateCheck(ctx context.Context, c *model.ComplianceCheck) error {
	return m.Called(ctx, c).Error(0)
}

func (m *MockComplianceRepository) ListChecks(ctx context.Context, documentID string) ([]model.ComplianceCheck, error) {
	args := m.Called(ctx, documentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.ComplianceCheck), args.Error(1)
}

func (m *MockComplianceRepository) LatestChecks(ctx context.Context, documentID string) ([]model.ComplianceCheck, error) {
	args := m.Called(ctx, documentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.ComplianceCheck), args.Error(1)
}

type MockRiskRepository struct {
	mock.Mock
}

func (m *MockRiskRepository) Create(ctx context.Context, a *model.RiskAssessment) error {
	return m.Called(ctx, a).Error(0)
}

func (m *MockRiskRepository) ListByDocument(ctx context.Context, documentID string) ([]model.RiskAssessment, error) {
	args := m.Called(ctx, documentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.RiskAssessment), args.Error(1)
}
