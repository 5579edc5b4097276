package handler

import (
	"database/sql"

	"github.com/gofiber/fiber/v2"

	"docaudit/internal/http/middleware"
	"docaudit/internal/rbac"
	"docaudit/internal/service"
)

// Services bundles the use cases the HTTP layer exposes.
type Services struct {
	Documents  service.DocumentService
	Processing service.ProcessingService
	Compliance service.ComplianceService
	Risk       service.RiskService
	Workflows  service.WorkflowService
	Workspaces service.WorkspaceService
	Users      service.UserService
	Audit      service.AuditService

	// ObjectStore is checked by the readiness probe when set.
	ObjectStore Pinger
}

// RegisterRoutes attaches HTTP routes to the provided Fiber app. Probes are public;
// every other route runs auth first and then a permission check against the
// caller's roles.
func RegisterRoutes(app *fiber.App, db *sql.DB, svc Services, auth fiber.Handler) {
	app.Get("/health", HealthCheck(db, svc.ObjectStore))
	app.Get("/healthz", LivenessProbe())

	can := func(p rbac.Permission) fiber.Handler {
		return middleware.RequirePermission(svc.Users, p)
	}

	docs := app.Group("/documents", auth)
	docs.Post("/", can(rbac.DocumentsWrite), UploadDocument(svc.Documents))
	docs.Get("/", can(rbac.DocumentsRead), ListDocuments(svc.Documents))
	docs.Get("/:id", can(rbac.DocumentsRead), GetDocument(svc.Documents))
	docs.Delete("/:id", can(rbac.DocumentsDelete), DeleteDocument(svc.Documents))
	docs.Get("/:id/download", can(rbac.DocumentsRead), DownloadDocument(svc.Documents))
	docs.Post("/:id/process", can(rbac.DocumentsProcess), ProcessDocument(svc.Processing))
	docs.Get("/:id/parsed", can(rbac.DocumentsRead), GetParsedData(svc.Processing))
	docs.Get("/:id/financial", can(rbac.DocumentsRead), GetFinancialData(svc.Processing))
	docs.Post("/:id/compliance-checks", can(rbac.ComplianceRun), RunComplianceCheck(svc.Compliance))
	docs.Get("/:id/compliance-checks", can(rbac.ComplianceRead), ListComplianceChecks(svc.Compliance))
	docs.Post("/:id/risk-assessments", can(rbac.RiskAssess), AssessRisk(svc.Risk))
	docs.Get("/:id/risk-assessments", can(rbac.RiskRead), ListRiskAssessments(svc.Risk))
	docs.Get("/:id/workflow-instances", can(rbac.WorkflowsRead), ListDocumentWorkflowInstances(svc.Workflows))

	frameworks := app.Group("/compliance/frameworks", auth)
	frameworks.Post("/", can(rbac.ComplianceManage), CreateFramework(svc.Compliance))
	frameworks.Get("/", can(rbac.ComplianceRead), ListFrameworks(svc.Compliance))
	frameworks.Get("/:id", can(rbac.ComplianceRead), GetFramework(svc.Compliance))
	frameworks.Delete("/:id", can(rbac.ComplianceManage), DeleteFramework(svc.Compliance))

	workflows := app.Group("/workflows", auth)
	workflows.Post("/", can(rbac.WorkflowsManage), CreateWorkflow(svc.Workflows))
	workflows.Get("/", can(rbac.WorkflowsRead), ListWorkflows(svc.Workflows))
	workflows.Get("/:id", can(rbac.WorkflowsRead), GetWorkflow(svc.Workflows))
	workflows.Post("/:id/instances", can(rbac.WorkflowsManage), StartWorkflow(svc.Workflows))

	instances := app.Group("/workflow-instances", auth)
	instances.Get("/:id", can(rbac.WorkflowsRead), GetWorkflowInstance(svc.Workflows))
	instances.Post("/:id/actions", can(rbac.WorkflowsAct), ActOnWorkflowInstance(svc.Workflows))
	instances.Post("/:id/cancel", can(rbac.WorkflowsManage), CancelWorkflowInstance(svc.Workflows))

	app.Get("/audit-trail", auth, can(rbac.AuditRead), ListAuditTrail(svc.Audit))

	// Membership checks for workspaces live in the service; the permission gate
	// only covers creating and changing them.
	workspaces := app.Group("/workspaces", auth)
	workspaces.Post("/", can(rbac.WorkspacesManage), CreateWorkspace(svc.Workspaces))
	workspaces.Get("/", ListWorkspaces(svc.Workspaces))
	workspaces.Get("/:id", GetWorkspace(svc.Workspaces))
	workspaces.Patch("/:id", can(rbac.WorkspacesManage), UpdateWorkspace(svc.Workspaces))
	workspaces.Delete("/:id", can(rbac.WorkspacesManage), DeleteWorkspace(svc.Workspaces))
	workspaces.Get("/:id/collaborators", ListCollaborators(svc.Workspaces))
	workspaces.Post("/:id/collaborators", can(rbac.WorkspacesManage), AddCollaborator(svc.Workspaces))
	workspaces.Delete("/:id/collaborators/:userId", RemoveCollaborator(svc.Workspaces))

	users := app.Group("/users", auth)
	users.Get("/me", GetMyProfile(svc.Users))
	users.Put("/me", PutMyProfile(svc.Users))
	users.Get("/:id/roles", can(rbac.UsersManage), ListUserRoles(svc.Users))
	users.Post("/:id/roles", can(rbac.UsersManage), AssignUserRole(svc.Users))
	users.Delete("/:id/roles/:role", can(rbac.UsersManage), RevokeUserRole(svc.Users))
}
