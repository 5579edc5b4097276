package handler

import (
	"github.com/gofiber/fiber/v2"

	"docaudit/internal/http/middleware"
	"docaudit/internal/model"
	"docaudit/internal/service"
)

type createFrameworkRequest struct {
	Name        string       `json:"name" validate:"required,max=200"`
	Description string       `json:"description" validate:"max=2000"`
	Version     string       `json:"version" validate:"max=50"`
	Rules       []model.Rule `json:"rules" validate:"required,min=1,dive"`
}

type runCheckRequest struct {
	FrameworkID string `json:"framework_id" validate:"required,uuid"`
}

// CreateFramework stores a compliance framework and its rules.
//
// @Summary Create a compliance framework
// @Tags compliance
// @Accept json
// @Produce json
// @Param body body createFrameworkRequest true "Framework"
// @Success 201 {object} model.ComplianceFramework
// @Failure 400 {object} errorPayload
// @Router /compliance/frameworks [post]
func CreateFramework(svc service.ComplianceService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req createFrameworkRequest
		if !bind(c, &req) {
			return nil
		}
		f, err := svc.CreateFramework(c.UserContext(), service.CreateFrameworkInput{
			Name:        req.Name,
			Description: req.Description,
			Version:     req.Version,
			Rules:       req.Rules,
			CreatedBy:   middleware.UserID(c),
		})
		if err != nil {
			return handleError(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(f)
	}
}

// @Summary List compliance frameworks
// @Tags compliance
// @Produce json
// @Param limit query int false "Page size (max 100)"
// @Param offset query int false "Offset"
// @Success 200 {object} service.FrameworkListResult
// @Router /compliance/frameworks [get]
func ListFrameworks(svc service.ComplianceService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		limit, offset, ok := page(c)
		if !ok {
			return nil
		}
		res, err := svc.ListFrameworks(c.UserContext(), limit, offset)
		if err != nil {
			return handleError(c, err)
		}
		return c.JSON(res)
	}
}

// @Summary Get a compliance framework
// @Tags compliance
// @Produce json
// @Param id path string true "Framework ID"
// @Success 200 {object} model.ComplianceFramework
// @Router /compliance/frameworks/{id} [get]
func GetFramework(svc service.ComplianceService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := uuidParam(c, "id")
		if !ok {
			return nil
		}
		f, err := svc.GetFramework(c.UserContext(), id)
		if err != nil {
			return handleError(c, err)
		}
		return c.JSON(f)
	}
}

// @Summary Delete a compliance framework
// @Tags compliance
// @Param id path string true "Framework ID"
// @Success 204
// @Router /compliance/frameworks/{id} [delete]
func DeleteFramework(svc service.ComplianceService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := uuidParam(c, "id")
		if !ok {
			return nil
		}
		if err := svc.DeleteFramework(c.UserContext(), id, middleware.UserID(c)); err != nil {
			return handleError(c, err)
		}
		return c.SendStatus(fiber.StatusNoContent)
	}
}

// RunComplianceCheck evaluates a processed document against a framework.
//
// @Summary Run a compliance check
// @Tags compliance
// @Accept json
// @Produce json
// @Param id path string true "Document ID"
// @Param body body runCheckRequest true "Framework to check against"
// @Success 201 {object} model.ComplianceCheck
// @Failure 409 {object} errorPayload "Document not processed yet"
// @Router /documents/{id}/compliance-checks [post]
func RunComplianceCheck(svc service.ComplianceService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := uuidParam(c, "id")
		if !ok {
			return nil
		}
		var req runCheckRequest
		if !bind(c, &req) {
			return nil
		}
		check, err := svc.RunCheck(c.UserContext(), id, req.FrameworkID, middleware.UserID(c))
		if err != nil {
			return handleError(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(check)
	}
}

// @Summary List compliance checks of a document
// @Tags compliance
// @Produce json
// @Param id path string true "Document ID"
// @Success 200 {array} model.ComplianceCheck
// @Router /documents/{id}/compliance-checks [get]
func ListComplianceChecks(svc service.ComplianceService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := uuidParam(c, "id")
		if !ok {
			return nil
		}
		checks, err := svc.ListChecks(c.UserContext(), id)
		if err != nil {
			return handleError(c, err)
		}
		return c.JSON(fiber.Map{"data": checks})
	}
}

// AssessRisk scores a document from its latest checks and extraction.
//
// @Summary Assess document risk
// @Tags risk
// @Produce json
// @Param id path string true "Document ID"
// @Success 201 {object} model.RiskAssessment
// @Router /documents/{id}/risk-assessments [post]
func AssessRisk(svc service.RiskService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := uuidParam(c, "id")
		if !ok {
			return nil
		}
		a, err := svc.Assess(c.UserContext(), id, middleware.UserID(c))
		if err != nil {
			return handleError(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(a)
	}
}

// @Summary List risk assessments of a document
// @Tags risk
// @Produce json
// @Param id path string true "Document ID"
// @Success 200 {array} model.RiskAssessment
// @Router /documents/{id}/risk-assessments [get]
func ListRiskAssessments(svc service.RiskService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := uuidParam(c, "id")
		if !ok {
			return nil
		}
		items, err := svc.ListAssessments(c.UserContext(), id)
		if err != nil {
			return handleError(c, err)
		}
		return c.JSON(fiber.Map{"data": items})
	}
}
