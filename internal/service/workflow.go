package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"docaudit/internal/model"
	"docaudit/internal/rbac"
	"docaudit/internal/repository"
)

// Decision is an approver's verdict on the current step.
type Decision string

const (
	DecisionApprove Decision = "approve"
	DecisionReject  Decision = "reject"
)

// RoleLookup resolves the roles held by a user.
type RoleLookup interface {
	RolesOf(ctx context.Context, userID string) ([]string, error)
}

// CreateWorkflowInput describes a workflow template.
type CreateWorkflowInput struct {
	WorkspaceID string
	Name        string                 `validate:"required,max=200"`
	Description string                 `validate:"max=2000"`
	Steps       []model.StepDefinition `validate:"required,min=1,dive"`
	CreatedBy   string
}

// WorkflowListResult is a page of workflow templates.
type WorkflowListResult struct {
	Items []model.Workflow `json:"data"`
	Total int              `json:"total"`
}

// WorkflowService manages approval workflows and drives their instances.
type WorkflowService interface {
	CreateWorkflow(ctx context.Context, in CreateWorkflowInput) (*model.Workflow, error)
	ListWorkflows(ctx context.Context, workspaceID string, limit, offset int) (*WorkflowListResult, error)
	GetWorkflow(ctx context.Context, id string) (*model.Workflow, error)

	Start(ctx context.Context, workflowID, documentID, actorID string) (*model.WorkflowInstance, error)
	Act(ctx context.Context, instanceID, actorID string, decision Decision, comment string) (*model.WorkflowInstance, error)
	Cancel(ctx context.Context, instanceID, actorID, comment string) (*model.WorkflowInstance, error)
	GetInstance(ctx context.Context, id string) (*model.WorkflowInstance, error)
	ListInstances(ctx context.Context, documentID string) ([]model.WorkflowInstance, error)
}

type workflowService struct {
	repo  repository.WorkflowRepository
	docs  repository.DocumentRepository
	roles RoleLookup
	audit AuditService
	now   func() time.Time
}

func NewWorkflowService(repo repository.WorkflowRepository, docs repository.DocumentRepository, roles RoleLookup, audit AuditService) WorkflowService {
	return &workflowService{
		repo:  repo,
		docs:  docs,
		roles: roles,
		audit: audit,
		now:   func() time.Time { return time.Now().UTC() },
	}
}

func (s *workflowService) CreateWorkflow(ctx context.Context, in CreateWorkflowInput) (*model.Workflow, error) {
	for i := range in.Steps {
		in.Steps[i].ApproverRole = rbac.Normalize(in.Steps[i].ApproverRole)
	}
	if err := validateStruct(in); err != nil {
		return nil, err
	}
	w := &model.Workflow{
		ID:          uuid.NewString(),
		WorkspaceID: in.WorkspaceID,
		Name:        in.Name,
		Description: in.Description,
		Steps:       in.Steps,
		CreatedBy:   in.CreatedBy,
		CreatedAt:   s.now(),
	}
	if err := s.repo.CreateWorkflow(ctx, w); err != nil {
		return nil, fmt.Errorf("create workflow: %w", err)
	}
	s.audit.Record(ctx, model.AuditEntry{
		ActorID:     in.CreatedBy,
		Action:      ActionWorkflowCreate,
		EntityType:  "workflow",
		EntityID:    w.ID,
		WorkspaceID: w.WorkspaceID,
		Details:     map[string]any{"name": w.Name, "steps": len(w.Steps)},
	})
	return w, nil
}

func (s *workflowService) ListWorkflows(ctx context.Context, workspaceID string, limit, offset int) (*WorkflowListResult, error) {
	limit, offset = normalizePage(limit, offset)
	res, err := s.repo.ListWorkflows(ctx, workspaceID, repository.PageQuery{Limit: limit, Offset: offset})
	if err != nil {
		return nil, err
	}
	return &WorkflowListResult{Items: res.Items, Total: res.Total}, nil
}

func (s *workflowService) GetWorkflow(ctx context.Context, id string) (*model.Workflow, error) {
	if id == "" {
		return nil, ErrIDRequired
	}
	w, err := s.repo.FindWorkflow(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return w, nil
}

func (s *workflowService) Start(ctx context.Context, workflowID, documentID, actorID string) (*model.WorkflowInstance, error) {
	if documentID == "" {
		return nil, ErrIDRequired
	}
	w, err := s.GetWorkflow(ctx, workflowID)
	if err != nil {
		return nil, err
	}
	if len(w.Steps) == 0 {
		return nil, fmt.Errorf("%w: workflow has no steps", ErrInvalidInput)
	}
	doc, err := s.docs.FindByID(ctx, documentID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	now := s.now()
	inst := &model.WorkflowInstance{
		ID:          uuid.NewString(),
		WorkflowID:  w.ID,
		DocumentID:  doc.ID,
		Status:      model.InstanceInProgress,
		CurrentStep: 0,
		StartedBy:   actorID,
		CreatedAt:   now,
		UpdatedAt:   now,
		Steps:       make([]model.WorkflowStep, len(w.Steps)),
	}
	for i, def := range w.Steps {
		inst.Steps[i] = model.WorkflowStep{
			ID:           uuid.NewString(),
			InstanceID:   inst.ID,
			Position:     i,
			Name:         def.Name,
			ApproverRole: def.ApproverRole,
			Status:       model.StepPending,
		}
	}
	if err := s.repo.CreateInstance(ctx, inst); err != nil {
		return nil, fmt.Errorf("create workflow instance: %w", err)
	}
	s.audit.Record(ctx, model.AuditEntry{
		ActorID:     actorID,
		Action:      ActionWorkflowStart,
		EntityType:  "workflow_instance",
		EntityID:    inst.ID,
		WorkspaceID: doc.WorkspaceID,
		Details:     map[string]any{"workflow_id": w.ID, "document_id": doc.ID},
	})
	return inst, nil
}

func (s *workflowService) Act(ctx context.Context, instanceID, actorID string, decision Decision, comment string) (*model.WorkflowInstance, error) {
	if decision != DecisionApprove && decision != DecisionReject {
		return nil, fmt.Errorf("%w: unknown decision %q", ErrInvalidInput, decision)
	}
	inst, err := s.GetInstance(ctx, instanceID)
	if err != nil {
		return nil, err
	}
	step, err := currentStep(inst)
	if err != nil {
		return nil, err
	}

	roles, err := s.roles.RolesOf(ctx, actorID)
	if err != nil {
		return nil, fmt.Errorf("resolve roles: %w", err)
	}
	if !rbac.HasRole(roles, step.ApproverRole) {
		return nil, fmt.Errorf("%w: step %q requires role %s", ErrForbidden, step.Name, step.ApproverRole)
	}

	prev := inst.CurrentStep
	changed := applyDecision(inst, decision, actorID, comment, s.now())
	if err := s.save(ctx, inst, prev, changed); err != nil {
		return nil, err
	}

	action := ActionWorkflowApprove
	if decision == DecisionReject {
		action = ActionWorkflowReject
	}
	s.audit.Record(ctx, model.AuditEntry{
		ActorID:    actorID,
		Action:     action,
		EntityType: "workflow_instance",
		EntityID:   inst.ID,
		Details: map[string]any{
			"step":    prev,
			"status":  string(inst.Status),
			"comment": comment,
		},
	})
	return inst, nil
}

func (s *workflowService) Cancel(ctx context.Context, instanceID, actorID, comment string) (*model.WorkflowInstance, error) {
	inst, err := s.GetInstance(ctx, instanceID)
	if err != nil {
		return nil, err
	}
	if _, err := currentStep(inst); err != nil {
		return nil, err
	}

	prev := inst.CurrentStep
	changed := applyCancel(inst, actorID, comment, s.now())
	if err := s.save(ctx, inst, prev, changed); err != nil {
		return nil, err
	}
	s.audit.Record(ctx, model.AuditEntry{
		ActorID:    actorID,
		Action:     ActionWorkflowCancel,
		EntityType: "workflow_instance",
		EntityID:   inst.ID,
		Details:    map[string]any{"step": prev, "comment": comment},
	})
	return inst, nil
}

func (s *workflowService) save(ctx context.Context, inst *model.WorkflowInstance, prev int, changed []model.WorkflowStep) error {
	if err := s.repo.SaveTransition(ctx, inst, prev, changed); err != nil {
		if errors.Is(err, repository.ErrStaleState) {
			return fmt.Errorf("%w: instance changed concurrently", ErrInvalidTransition)
		}
		return fmt.Errorf("save transition: %w", err)
	}
	return nil
}

func (s *workflowService) GetInstance(ctx context.Context, id string) (*model.WorkflowInstance, error) {
	if id == "" {
		return nil, ErrIDRequired
	}
	inst, err := s.repo.FindInstance(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return inst, nil
}

func (s *workflowService) ListInstances(ctx context.Context, documentID string) ([]model.WorkflowInstance, error) {
	if documentID == "" {
		return nil, ErrIDRequired
	}
	return s.repo.ListInstances(ctx, documentID)
}

// currentStep returns the pending step of an in-progress instance.
func currentStep(inst *model.WorkflowInstance) (*model.WorkflowStep, error) {
	if inst.Status != model.InstanceInProgress {
		return nil, fmt.Errorf("%w: instance is %s", ErrInvalidTransition, inst.Status)
	}
	if inst.CurrentStep < 0 || inst.CurrentStep >= len(inst.Steps) {
		return nil, fmt.Errorf("%w: no current step", ErrInvalidTransition)
	}
	step := &inst.Steps[inst.CurrentStep]
	if step.Status != model.StepPending {
		return nil, fmt.Errorf("%w: step %d is %s", ErrInvalidTransition, step.Position, step.Status)
	}
	return step, nil
}

// applyDecision moves inst forward in place and returns the steps it changed.
// inst must be in progress with a pending current step.
func applyDecision(inst *model.WorkflowInstance, d Decision, actorID, comment string, now time.Time) []model.WorkflowStep {
	cur := inst.CurrentStep
	step := &inst.Steps[cur]
	step.ActedBy = actorID
	step.Comment = comment
	step.ActedAt = &now
	inst.UpdatedAt = now

	if d == DecisionReject {
		step.Status = model.StepRejected
		changed := []model.WorkflowStep{*step}
		changed = append(changed, skipFrom(inst, cur+1, now)...)
		inst.Status = model.InstanceRejected
		inst.CompletedAt = &now
		return changed
	}

	step.Status = model.StepApproved
	if cur == len(inst.Steps)-1 {
		inst.Status = model.InstanceApproved
		inst.CompletedAt = &now
	} else {
		inst.CurrentStep = cur + 1
	}
	return []model.WorkflowStep{*step}
}

// applyCancel closes inst in place and returns the steps it skipped.
func applyCancel(inst *model.WorkflowInstance, actorID, comment string, now time.Time) []model.WorkflowStep {
	changed := skipFrom(inst, inst.CurrentStep, now)
	if len(changed) > 0 {
		first := &inst.Steps[inst.CurrentStep]
		first.ActedBy = actorID
		first.Comment = comment
		changed[0] = *first
	}
	inst.Status = model.InstanceCancelled
	inst.UpdatedAt = now
	inst.CompletedAt = &now
	return changed
}

func skipFrom(inst *model.WorkflowInstance, from int, now time.Time) []model.WorkflowStep {
	var changed []model.WorkflowStep
	for i := from; i < len(inst.Steps); i++ {
		if inst.Steps[i].Status != model.StepPending {
			continue
		}
		inst.Steps[i].Status = model.StepSkipped
		inst.Steps[i].ActedAt = &now
		changed = append(changed, inst.Steps[i])
	}
	return changed
}
