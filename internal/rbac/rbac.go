// Package rbac holds the static role-to-permission table.
package rbac

import "strings"

type Permission string

const (
	DocumentsRead    Permission = "documents:read"
	DocumentsWrite   Permission = "documents:write"
	DocumentsDelete  Permission = "documents:delete"
	DocumentsProcess Permission = "documents:process"
	ComplianceRead   Permission = "compliance:read"
	ComplianceRun    Permission = "compliance:run"
	ComplianceManage Permission = "compliance:manage"
	RiskRead         Permission = "risk:read"
	RiskAssess       Permission = "risk:assess"
	WorkflowsRead    Permission = "workflows:read"
	WorkflowsManage  Permission = "workflows:manage"
	WorkflowsAct     Permission = "workflows:act"
	AuditRead        Permission = "audit:read"
	WorkspacesManage Permission = "workspaces:manage"
	UsersManage      Permission = "users:manage"
)

const (
	RoleAdmin    = "admin"
	RoleAuditor  = "auditor"
	RoleReviewer = "reviewer"
	RoleViewer   = "viewer"
)

// DefaultRole applies to users without any granted role.
const DefaultRole = RoleViewer

var rolePermissions = map[string][]Permission{
	RoleAuditor: {
		DocumentsRead, DocumentsWrite, DocumentsProcess,
		ComplianceRead, ComplianceRun, ComplianceManage,
		RiskRead, RiskAssess,
		WorkflowsRead, WorkflowsManage, WorkflowsAct,
		AuditRead, WorkspacesManage,
	},
	RoleReviewer: {
		DocumentsRead, DocumentsWrite,
		ComplianceRead, RiskRead,
		WorkflowsRead, WorkflowsAct,
		WorkspacesManage,
	},
	RoleViewer: {
		DocumentsRead, ComplianceRead, RiskRead, WorkflowsRead,
	},
}

// Normalize lower-cases and trims a role name.
func Normalize(role string) string {
	return strings.ToLower(strings.TrimSpace(role))
}

// ValidRole reports whether role is one of the known roles.
func ValidRole(role string) bool {
	switch Normalize(role) {
	case RoleAdmin, RoleAuditor, RoleReviewer, RoleViewer:
		return true
	}
	return false
}

// Can reports whether a single role grants the permission. Admin grants everything.
func Can(role string, p Permission) bool {
	role = Normalize(role)
	if role == RoleAdmin {
		return true
	}
	for _, granted := range rolePermissions[role] {
		if granted == p {
			return true
		}
	}
	return false
}

// AnyCan reports whether any of the roles grants the permission. An empty role set
// is evaluated as DefaultRole.
func AnyCan(roles []string, p Permission) bool {
	if len(roles) == 0 {
		return Can(DefaultRole, p)
	}
	for _, r := range roles {
		if Can(r, p) {
			return true
		}
	}
	return false
}

// HasRole reports whether roles contains want, treating admin as a holder of every role.
func HasRole(roles []string, want string) bool {
	want = Normalize(want)
	if len(roles) == 0 {
		return want == DefaultRole
	}
	for _, r := range roles {
		r = Normalize(r)
		if r == want || r == RoleAdmin {
			return true
		}
	}
	return false
}
