package repository

import (
	"context"

	"docaudit/internal/model"
)

type ComplianceRepository interface {
	CreateFramework(ctx context.Context, f *model.ComplianceFramework) error
	FindFramework(ctx context.Context, id string) (*model.ComplianceFramework, error)
	ListFrameworks(ctx context.Context, pq PageQuery) (*PageResult[model.ComplianceFramework], error)
	DeleteFramework(ctx context.Context, id string) error

	CreateCheck(ctx context.Context, c *model.ComplianceCheck) error
	ListChecks(ctx context.Context, documentID string) ([]model.ComplianceCheck, error)
	// LatestChecks returns the most recent check per framework for a document.
	LatestChecks(ctx context.Context, documentID string) ([]model.ComplianceCheck, error)
}

type RiskRepository interface {
	Create(ctx context.Context, a *model.RiskAssessment) error
	ListByDocument(ctx context.Context, documentID string) ([]model.RiskAssessment, error)
}
