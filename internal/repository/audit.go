package repository

import (
	"context"

	"docaudit/internal/model"
)

// AuditRepository is append-only.
type AuditRepository interface {
	Create(ctx context.Context, e *model.AuditEntry) error
	List(ctx context.Context, f AuditFilter) (*PageResult[model.AuditEntry], error)
}
