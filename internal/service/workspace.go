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

// CreateWorkspaceInput describes a new workspace.
type CreateWorkspaceInput struct {
	Name        string `validate:"required,max=200"`
	Description string `validate:"max=2000"`
	OwnerID     string `validate:"required"`
}

// UpdateWorkspaceInput holds the fields to change; nil leaves a field as is.
type UpdateWorkspaceInput struct {
	Name        *string `validate:"omitnil,min=1,max=200"`
	Description *string `validate:"omitnil,max=2000"`
}

// WorkspaceListResult is a page of workspaces.
type WorkspaceListResult struct {
	Items []model.Workspace `json:"data"`
	Total int               `json:"total"`
}

// WorkspaceService manages workspaces and their collaborators.
type WorkspaceService interface {
	Create(ctx context.Context, in CreateWorkspaceInput) (*model.Workspace, error)
	Get(ctx context.Context, id string) (*model.Workspace, error)
	ListForUser(ctx context.Context, userID string, limit, offset int) (*WorkspaceListResult, error)
	Update(ctx context.Context, id, actorID string, in UpdateWorkspaceInput) (*model.Workspace, error)
	Delete(ctx context.Context, id, actorID string) error

	AddCollaborator(ctx context.Context, workspaceID, userID string, role model.CollaboratorRole, actorID string) (*model.WorkspaceCollaboration, error)
	RemoveCollaborator(ctx context.Context, workspaceID, userID, actorID string) error
	ListCollaborators(ctx context.Context, workspaceID string) ([]model.WorkspaceCollaboration, error)
}

type workspaceService struct {
	repo  repository.WorkspaceRepository
	roles RoleLookup
	audit AuditService
}

func NewWorkspaceService(repo repository.WorkspaceRepository, roles RoleLookup, audit AuditService) WorkspaceService {
	return &workspaceService{repo: repo, roles: roles, audit: audit}
}

func (s *workspaceService) Create(ctx context.Context, in CreateWorkspaceInput) (*model.Workspace, error) {
	if err := validateStruct(in); err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	ws := &model.Workspace{
		ID:          uuid.NewString(),
		Name:        in.Name,
		Description: in.Description,
		OwnerID:     in.OwnerID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.repo.Create(ctx, ws); err != nil {
		return nil, fmt.Errorf("create workspace: %w", err)
	}
	s.audit.Record(ctx, model.AuditEntry{
		ActorID:     in.OwnerID,
		Action:      ActionWorkspaceCreate,
		EntityType:  "workspace",
		EntityID:    ws.ID,
		WorkspaceID: ws.ID,
		Details:     map[string]any{"name": ws.Name},
	})
	return ws, nil
}

func (s *workspaceService) Get(ctx context.Context, id string) (*model.Workspace, error) {
	if id == "" {
		return nil, ErrIDRequired
	}
	ws, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return ws, nil
}

func (s *workspaceService) ListForUser(ctx context.Context, userID string, limit, offset int) (*WorkspaceListResult, error) {
	if userID == "" {
		return nil, ErrIDRequired
	}
	limit, offset = normalizePage(limit, offset)
	res, err := s.repo.ListForUser(ctx, userID, repository.PageQuery{Limit: limit, Offset: offset})
	if err != nil {
		return nil, err
	}
	return &WorkspaceListResult{Items: res.Items, Total: res.Total}, nil
}

func (s *workspaceService) Update(ctx context.Context, id, actorID string, in UpdateWorkspaceInput) (*model.Workspace, error) {
	if err := validateStruct(in); err != nil {
		return nil, err
	}
	ws, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.authorize(ctx, ws, actorID, model.CollaboratorOwner, model.CollaboratorEditor); err != nil {
		return nil, err
	}

	if in.Name != nil {
		ws.Name = *in.Name
	}
	if in.Description != nil {
		ws.Description = *in.Description
	}
	ws.UpdatedAt = time.Now().UTC()
	if err := s.repo.Update(ctx, ws); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("update workspace: %w", err)
	}
	s.audit.Record(ctx, model.AuditEntry{
		ActorID:     actorID,
		Action:      ActionWorkspaceUpdate,
		EntityType:  "workspace",
		EntityID:    ws.ID,
		WorkspaceID: ws.ID,
		Details:     map[string]any{"name": ws.Name},
	})
	return ws, nil
}

func (s *workspaceService) Delete(ctx context.Context, id, actorID string) error {
	ws, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := s.authorize(ctx, ws, actorID, model.CollaboratorOwner); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.audit.Record(ctx, model.AuditEntry{
		ActorID:     actorID,
		Action:      ActionWorkspaceDelete,
		EntityType:  "workspace",
		EntityID:    id,
		WorkspaceID: id,
		Details:     map[string]any{"name": ws.Name},
	})
	return nil
}

func (s *workspaceService) AddCollaborator(ctx context.Context, workspaceID, userID string, role model.CollaboratorRole, actorID string) (*model.WorkspaceCollaboration, error) {
	if userID == "" {
		return nil, ErrIDRequired
	}
	if role != model.CollaboratorEditor && role != model.CollaboratorViewer {
		return nil, fmt.Errorf("%w: collaborator role must be editor or viewer", ErrInvalidInput)
	}
	ws, err := s.Get(ctx, workspaceID)
	if err != nil {
		return nil, err
	}
	if userID == ws.OwnerID {
		return nil, fmt.Errorf("%w: the owner's role cannot be changed", ErrInvalidInput)
	}
	if err := s.authorize(ctx, ws, actorID, model.CollaboratorOwner); err != nil {
		return nil, err
	}

	c := &model.WorkspaceCollaboration{
		WorkspaceID: ws.ID,
		UserID:      userID,
		Role:        role,
		InvitedBy:   actorID,
		CreatedAt:   time.Now().UTC(),
	}
	if err := s.repo.UpsertCollaborator(ctx, c); err != nil {
		return nil, fmt.Errorf("add collaborator: %w", err)
	}
	s.audit.Record(ctx, model.AuditEntry{
		ActorID:     actorID,
		Action:      ActionCollaboratorAdd,
		EntityType:  "workspace",
		EntityID:    ws.ID,
		WorkspaceID: ws.ID,
		Details:     map[string]any{"user_id": userID, "role": string(role)},
	})
	return c, nil
}

func (s *workspaceService) RemoveCollaborator(ctx context.Context, workspaceID, userID, actorID string) error {
	if userID == "" {
		return ErrIDRequired
	}
	ws, err := s.Get(ctx, workspaceID)
	if err != nil {
		return err
	}
	if userID == ws.OwnerID {
		return fmt.Errorf("%w: the owner cannot be removed", ErrForbidden)
	}
	// Collaborators may always leave on their own.
	if userID != actorID {
		if err := s.authorize(ctx, ws, actorID, model.CollaboratorOwner); err != nil {
			return err
		}
	}
	if err := s.repo.RemoveCollaborator(ctx, ws.ID, userID); err != nil {
		return err
	}
	s.audit.Record(ctx, model.AuditEntry{
		ActorID:     actorID,
		Action:      ActionCollaboratorDrop,
		EntityType:  "workspace",
		EntityID:    ws.ID,
		WorkspaceID: ws.ID,
		Details:     map[string]any{"user_id": userID},
	})
	return nil
}

func (s *workspaceService) ListCollaborators(ctx context.Context, workspaceID string) ([]model.WorkspaceCollaboration, error) {
	ws, err := s.Get(ctx, workspaceID)
	if err != nil {
		return nil, err
	}
	return s.repo.ListCollaborators(ctx, ws.ID)
}

func (s *workspaceService) authorize(ctx context.Context, ws *model.Workspace, actorID string, allowed ...model.CollaboratorRole) error {
	return authorizeWorkspace(ctx, s.repo, s.roles, ws, actorID, allowed...)
}

// authorizeWorkspace passes when actorID owns ws, collaborates on it with one of
// the allowed roles, or holds the admin role.
func authorizeWorkspace(ctx context.Context, repo repository.WorkspaceRepository, roles RoleLookup, ws *model.Workspace, actorID string, allowed ...model.CollaboratorRole) error {
	if actorID == ws.OwnerID {
		return nil
	}
	c, err := repo.FindCollaborator(ctx, ws.ID, actorID)
	switch {
	case err == nil:
		for _, r := range allowed {
			if c.Role == r {
				return nil
			}
		}
	case !errors.Is(err, sql.ErrNoRows):
		return err
	}

	held, err := roles.RolesOf(ctx, actorID)
	if err != nil {
		return fmt.Errorf("resolve roles: %w", err)
	}
	for _, r := range held {
		if rbac.Normalize(r) == rbac.RoleAdmin {
			return nil
		}
	}
	return ErrForbidden
}
