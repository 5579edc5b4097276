package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"docaudit/internal/model"
	"docaudit/internal/service"
)

type MockComplianceService struct {
	mock.Mock
}

func (m *MockComplianceService) CreateFramework(ctx context.Context, in service.CreateFrameworkInput) (*model.ComplianceFramework, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.ComplianceFramework), args.Error(1)
}

func (m *MockComplianceService) ListFrameworks(ctx context.Context, limit, offset int) (*service.FrameworkListResult, error) {
	args := m.Called(ctx, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.FrameworkListResult), args.Error(1)
}

func (m *MockComplianceService) GetFramework(ctx context.Context, id string) (*model.ComplianceFramework, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.ComplianceFramework), args.Error(1)
}

func (m *MockComplianceService) DeleteFramework(ctx context.Context, id, actorID string) error {
	return m.Called(ctx, id, actorID).Error(0)
}

func (m *MockComplianceService) RunCheck(ctx context.Context, documentID, frameworkID, actorID string) (*model.ComplianceCheck, error) {
	args := m.Called(ctx, documentID, frameworkID, actorID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.ComplianceCheck), args.Error(1)
}

func (m *MockComplianceService) ListChecks(ctx context.Context, documentID string) ([]model.ComplianceCheck, error) {
	args := m.Called(ctx, documentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.ComplianceCheck), args.Error(1)
}

type MockRiskService struct {
	mock.Mock
}

func (m *MockRiskService) Assess(ctx context.Context, documentID, actorID string) (*model.RiskAssessment, error) {
	args := m.Called(ctx, documentID, actorID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.RiskAssessment), args.Error(1)
}

func (m *MockRiskService) ListAssessments(ctx context.Context, documentID string) ([]model.RiskAssessment, error) {
	args := m.Called(ctx, documentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.RiskAssessment), args.Error(1)
}
