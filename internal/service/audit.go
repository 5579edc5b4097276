package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"docaudit/internal/model"
	"docaudit/internal/repository"
)

// Audit actions recorded by the services.
const (
	ActionDocumentUpload   = "document.upload"
	ActionDocumentDelete   = "document.delete"
	ActionDocumentProcess  = "document.process"
	ActionFrameworkCreate  = "compliance.framework.create"
	ActionFrameworkDelete  = "compliance.framework.delete"
	ActionComplianceCheck  = "compliance.check"
	ActionRiskAssess       = "risk.assess"
	ActionWorkflowCreate   = "workflow.create"
	ActionWorkflowStart    = "workflow.start"
	ActionWorkflowApprove  = "workflow.approve"
	ActionWorkflowReject   = "workflow.reject"
	ActionWorkflowCancel   = "workflow.cancel"
	ActionWorkspaceCreate  = "workspace.create"
	ActionWorkspaceUpdate  = "workspace.update"
	ActionWorkspaceDelete  = "workspace.delete"
	ActionCollaboratorAdd  = "workspace.collaborator.add"
	ActionCollaboratorDrop = "workspace.collaborator.remove"
	ActionRoleAssign       = "user.role.assign"
	ActionRoleRevoke       = "user.role.revoke"
)

// AuditListInput narrows an audit trail listing.
type AuditListInput struct {
	ActorID    string
	Action     string
	EntityType string
	EntityID   string
	Since      time.Time
	Until      time.Time
	Limit      int
	Offset     int
}

// AuditListResult is a page of audit entries.
type AuditListResult struct {
	Items []model.AuditEntry `json:"data"`
	Total int                `json:"total"`
}

// AuditService appends to and reads the audit trail.
type AuditService interface {
	// Record stores an entry. Failures are logged and never returned.
	Record(ctx context.Context, e model.AuditEntry)
	List(ctx context.Context, in AuditListInput) (*AuditListResult, error)
}

type auditService struct {
	repo repository.AuditRepository
	log  *zap.Logger
}

func NewAuditService(repo repository.AuditRepository, log *zap.Logger) AuditService {
	if log == nil {
		log = zap.NewNop()
	}
	return &auditService{repo: repo, log: log}
}

func (s *auditService) Record(ctx context.Context, e model.AuditEntry) {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now().UTC()
	}
	if e.RequestID == "" {
		e.RequestID = RequestIDFrom(ctx)
	}
	if e.Details == nil {
		e.Details = map[string]any{}
	}
	if err := s.repo.Create(ctx, &e); err != nil {
		s.log.Error("audit record failed",
			zap.String("action", e.Action),
			zap.String("entity_type", e.EntityType),
			zap.String("entity_id", e.EntityID),
			zap.String("request_id", e.RequestID),
			zap.Error(err),
		)
	}
}

func (s *auditService) List(ctx context.Context, in AuditListInput) (*AuditListResult, error) {
	if !in.Since.IsZero() && !in.Until.IsZero() && in.Until.Before(in.Since) {
		return nil, ErrInvalidInput
	}
	limit, offset := normalizePage(in.Limit, in.Offset)
	res, err := s.repo.List(ctx, repository.AuditFilter{
		ActorID:    in.ActorID,
		Action:     in.Action,
		EntityType: in.EntityType,
		EntityID:   in.EntityID,
		Since:      in.Since,
		Until:      in.Until,
		Page:       repository.PageQuery{Limit: limit, Offset: offset},
	})
	if err != nil {
		return nil, err
	}
	return &AuditListResult{Items: res.Items, Total: res.Total}, nil
}
