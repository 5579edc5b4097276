package handler

import (
	"github.com/gofiber/fiber/v2"

	"docaudit/internal/http/middleware"
	"docaudit/internal/model"
	"docaudit/internal/service"
)

type createWorkflowRequest struct {
	WorkspaceID string                 `json:"workspace_id" validate:"omitempty,uuid"`
	Name        string                 `json:"name" validate:"required,max=200"`
	Description string                 `json:"description" validate:"max=2000"`
	Steps       []model.StepDefinition `json:"steps" validate:"required,min=1,dive"`
}

type startWorkflowRequest struct {
	DocumentID string `json:"document_id" validate:"required,uuid"`
}

type actionRequest struct {
	Decision string `json:"decision" validate:"required,oneof=approve reject"`
	Comment  string `json:"comment" validate:"max=2000"`
}

type cancelRequest struct {
	Comment string `json:"comment" validate:"max=2000"`
}

// @Summary Create a workflow template
// @Tags workflows
// @Accept json
// @Produce json
// @Param body body createWorkflowRequest true "Workflow"
// @Success 201 {object} model.Workflow
// @Router /workflows [post]
func CreateWorkflow(svc service.WorkflowService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req createWorkflowRequest
		if !bind(c, &req) {
			return nil
		}
		w, err := svc.CreateWorkflow(c.UserContext(), service.CreateWorkflowInput{
			WorkspaceID: req.WorkspaceID,
			Name:        req.Name,
			Description: req.Description,
			Steps:       req.Steps,
			CreatedBy:   middleware.UserID(c),
		})
		if err != nil {
			return handleError(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(w)
	}
}

// @Summary List workflow templates
// @Tags workflows
// @Produce json
// @Param workspace_id query string false "Workspace"
// @Param limit query int false "Page size (max 100)"
// @Param offset query int false "Offset"
// @Success 200 {object} service.WorkflowListResult
// @Router /workflows [get]
func ListWorkflows(svc service.WorkflowService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		limit, offset, ok := page(c)
		if !ok {
			return nil
		}
		res, err := svc.ListWorkflows(c.UserContext(), c.Query("workspace_id"), limit, offset)
		if err != nil {
			return handleError(c, err)
		}
		return c.JSON(res)
	}
}

// @Summary Get a workflow template
// @Tags workflows
// @Produce json
// @Param id path string true "Workflow ID"
// @Success 200 {object} model.Workflow
// @Router /workflows/{id} [get]
func GetWorkflow(svc service.WorkflowService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := uuidParam(c, "id")
		if !ok {
			return nil
		}
		w, err := svc.GetWorkflow(c.UserContext(), id)
		if err != nil {
			return handleError(c, err)
		}
		return c.JSON(w)
	}
}

// StartWorkflow opens an instance of a workflow for a document.
//
// @Summary Start a workflow on a document
// @Tags workflows
// @Accept json
// @Produce json
// @Param id path string true "Workflow ID"
// @Param body body startWorkflowRequest true "Document"
// @Success 201 {object} model.WorkflowInstance
// @Router /workflows/{id}/instances [post]
func StartWorkflow(svc service.WorkflowService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := uuidParam(c, "id")
		if !ok {
			return nil
		}
		var req startWorkflowRequest
		if !bind(c, &req) {
			return nil
		}
		inst, err := svc.Start(c.UserContext(), id, req.DocumentID, middleware.UserID(c))
		if err != nil {
			return handleError(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(inst)
	}
}

// @Summary Get a workflow instance with its steps
// @Tags workflows
// @Produce json
// @Param id path string true "Instance ID"
// @Success 200 {object} model.WorkflowInstance
// @Router /workflow-instances/{id} [get]
func GetWorkflowInstance(svc service.WorkflowService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := uuidParam(c, "id")
		if !ok {
			return nil
		}
		inst, err := svc.GetInstance(c.UserContext(), id)
		if err != nil {
			return handleError(c, err)
		}
		return c.JSON(inst)
	}
}

// ActOnWorkflowInstance approves or rejects the current step.
//
// @Summary Approve or reject the current step
// @Tags workflows
// @Accept json
// @Produce json
// @Param id path string true "Instance ID"
// @Param body body actionRequest true "Decision"
// @Success 200 {object} model.WorkflowInstance
// @Failure 403 {object} errorPayload
// @Failure 409 {object} errorPayload
// @Router /workflow-instances/{id}/actions [post]
func ActOnWorkflowInstance(svc service.WorkflowService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := uuidParam(c, "id")
		if !ok {
			return nil
		}
		var req actionRequest
		if !bind(c, &req) {
			return nil
		}
		inst, err := svc.Act(c.UserContext(), id, middleware.UserID(c), service.Decision(req.Decision), req.Comment)
		if err != nil {
			return handleError(c, err)
		}
		return c.JSON(inst)
	}
}

// CancelWorkflowInstance closes an in-progress instance. The body is optional.
//
// @Summary Cancel a workflow instance
// @Tags workflows
// @Accept json
// @Produce json
// @Param id path string true "Instance ID"
// @Param body body cancelRequest false "Comment"
// @Success 200 {object} model.WorkflowInstance
// @Router /workflow-instances/{id}/cancel [post]
func CancelWorkflowInstance(svc service.WorkflowService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := uuidParam(c, "id")
		if !ok {
			return nil
		}
		var req cancelRequest
		if len(c.Body()) > 0 && !bind(c, &req) {
			return nil
		}
		inst, err := svc.Cancel(c.UserContext(), id, middleware.UserID(c), req.Comment)
		if err != nil {
			return handleError(c, err)
		}
		return c.JSON(inst)
	}
}

// @Summary List workflow instances of a document
// @Tags workflows
// @Produce json
// @Param id path string true "Document ID"
// @Success 200 {array} model.WorkflowInstance
// @Router /documents/{id}/workflow-instances [get]
func ListDocumentWorkflowInstances(svc service.WorkflowService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := uuidParam(c, "id")
		if !ok {
			return nil
		}
		items, err := svc.ListInstances(c.UserContext(), id)
		if err != nil {
			return handleError(c, err)
		}
		return c.JSON(fiber.Map{"data": items})
	}
}
