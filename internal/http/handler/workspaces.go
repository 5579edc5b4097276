package handler

import (
	"github.com/gofiber/fiber/v2"

	"docaudit/internal/http/middleware"
	"docaudit/internal/model"
	"docaudit/internal/service"
)

type createWorkspaceRequest struct {
	Name        string `json:"name" validate:"required,max=200"`
	Description string `json:"description" validate:"max=2000"`
}

type updateWorkspaceRequest struct {
	Name        *string `json:"name" validate:"omitnil,min=1,max=200"`
	Description *string `json:"description" validate:"omitnil,max=2000"`
}

type addCollaboratorRequest struct {
	UserID string `json:"user_id" validate:"required,max=200"`
	Role   string `json:"role" validate:"required,oneof=editor viewer"`
}

// CreateWorkspace creates a workspace owned by the caller.
//
// @Summary Create a workspace
// @Tags workspaces
// @Accept json
// @Produce json
// @Param body body createWorkspaceRequest true "Workspace"
// @Success 201 {object} model.Workspace
// @Router /workspaces [post]
func CreateWorkspace(svc service.WorkspaceService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req createWorkspaceRequest
		if !bind(c, &req) {
			return nil
		}
		ws, err := svc.Create(c.UserContext(), service.CreateWorkspaceInput{
			Name:        req.Name,
			Description: req.Description,
			OwnerID:     middleware.UserID(c),
		})
		if err != nil {
			return handleError(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(ws)
	}
}

// ListWorkspaces lists the workspaces the caller collaborates on.
//
// @Summary List my workspaces
// @Tags workspaces
// @Produce json
// @Param limit query int false "Page size (max 100)"
// @Param offset query int false "Offset"
// @Success 200 {object} service.WorkspaceListResult
// @Router /workspaces [get]
func ListWorkspaces(svc service.WorkspaceService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		limit, offset, ok := page(c)
		if !ok {
			return nil
		}
		res, err := svc.ListForUser(c.UserContext(), middleware.UserID(c), limit, offset)
		if err != nil {
			return handleError(c, err)
		}
		return c.JSON(res)
	}
}

// @Summary Get a workspace
// @Tags workspaces
// @Produce json
// @Param id path string true "Workspace ID"
// @Success 200 {object} model.Workspace
// @Router /workspaces/{id} [get]
func GetWorkspace(svc service.WorkspaceService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := uuidParam(c, "id")
		if !ok {
			return nil
		}
		ws, err := svc.Get(c.UserContext(), id)
		if err != nil {
			return handleError(c, err)
		}
		return c.JSON(ws)
	}
}

// @Summary Update a workspace
// @Tags workspaces
// @Accept json
// @Produce json
// @Param id path string true "Workspace ID"
// @Param body body updateWorkspaceRequest true "Fields to change"
// @Success 200 {object} model.Workspace
// @Router /workspaces/{id} [patch]
func UpdateWorkspace(svc service.WorkspaceService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := uuidParam(c, "id")
		if !ok {
			return nil
		}
		var req updateWorkspaceRequest
		if !bind(c, &req) {
			return nil
		}
		ws, err := svc.Update(c.UserContext(), id, middleware.UserID(c), service.UpdateWorkspaceInput{
			Name:        req.Name,
			Description: req.Description,
		})
		if err != nil {
			return handleError(c, err)
		}
		return c.JSON(ws)
	}
}

// @Summary Delete a workspace
// @Tags workspaces
// @Param id path string true "Workspace ID"
// @Success 204
// @Router /workspaces/{id} [delete]
func DeleteWorkspace(svc service.WorkspaceService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := uuidParam(c, "id")
		if !ok {
			return nil
		}
		if err := svc.Delete(c.UserContext(), id, middleware.UserID(c)); err != nil {
			return handleError(c, err)
		}
		return c.SendStatus(fiber.StatusNoContent)
	}
}

// @Summary List workspace collaborators
// @Tags workspaces
// @Produce json
// @Param id path string true "Workspace ID"
// @Success 200 {array} model.WorkspaceCollaboration
// @Router /workspaces/{id}/collaborators [get]
func ListCollaborators(svc service.WorkspaceService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := uuidParam(c, "id")
		if !ok {
			return nil
		}
		items, err := svc.ListCollaborators(c.UserContext(), id)
		if err != nil {
			return handleError(c, err)
		}
		return c.JSON(fiber.Map{"data": items})
	}
}

// AddCollaborator invites a user or changes their role.
//
// @Summary Add or update a collaborator
// @Tags workspaces
// @Accept json
// @Produce json
// @Param id path string true "Workspace ID"
// @Param body body addCollaboratorRequest true "Collaborator"
// @Success 200 {object} model.WorkspaceCollaboration
// @Router /workspaces/{id}/collaborators [post]
func AddCollaborator(svc service.WorkspaceService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := uuidParam(c, "id")
		if !ok {
			return nil
		}
		var req addCollaboratorRequest
		if !bind(c, &req) {
			return nil
		}
		collab, err := svc.AddCollaborator(c.UserContext(), id, req.UserID, model.CollaboratorRole(req.Role), middleware.UserID(c))
		if err != nil {
			return handleError(c, err)
		}
		return c.JSON(collab)
	}
}

// @Summary Remove a collaborator
// @Tags workspaces
// @Param id path string true "Workspace ID"
// @Param userId path string true "User ID"
// @Success 204
// @Router /workspaces/{id}/collaborators/{userId} [delete]
func RemoveCollaborator(svc service.WorkspaceService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := uuidParam(c, "id")
		if !ok {
			return nil
		}
		if err := svc.RemoveCollaborator(c.UserContext(), id, c.Params("userId"), middleware.UserID(c)); err != nil {
			return handleError(c, err)
		}
		return c.SendStatus(fiber.StatusNoContent)
	}
}
