package model

import "time"

// StepDefinition is a template step of a workflow. Viewers cannot act on
// workflows, so they are not valid approvers.
type StepDefinition struct {
	Name         string `json:"name" validate:"required"`
	ApproverRole string `json:"approver_role" validate:"required,oneof=admin auditor reviewer"`
}

type Workflow struct {
	ID          string           `json:"id"`
	WorkspaceID string           `json:"workspace_id,omitempty"`
	Name        string           `json:"name"`
	Description string           `json:"description"`
	Steps       []StepDefinition `json:"steps"`
	CreatedBy   string           `json:"created_by"`
	CreatedAt   time.Time        `json:"created_at"`
}

type InstanceStatus string

const (
	InstanceInProgress InstanceStatus = "in_progress"
	InstanceApproved   InstanceStatus = "approved"
	InstanceRejected   InstanceStatus = "rejected"
	InstanceCancelled  InstanceStatus = "cancelled"
)

type StepStatus string

const (
	StepPending  StepStatus = "pending"
	StepApproved StepStatus = "approved"
	StepRejected StepStatus = "rejected"
	StepSkipped  StepStatus = "skipped"
)

type WorkflowInstance struct {
	ID          string         `json:"id"`
	WorkflowID  string         `json:"workflow_id"`
	DocumentID  string         `json:"document_id"`
	Status      InstanceStatus `json:"status"`
	CurrentStep int            `json:"current_step"`
	StartedBy   string         `json:"started_by"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	CompletedAt *time.Time     `json:"completed_at,omitempty"`
	Steps       []WorkflowStep `json:"steps,omitempty"`
}

type WorkflowStep struct {
	ID           string     `json:"id"`
	InstanceID   string     `json:"instance_id"`
	Position     int        `json:"position"`
	Name         string     `json:"name"`
	ApproverRole string     `json:"approver_role"`
	Status       StepStatus `json:"status"`
	ActedBy      string     `json:"acted_by,omitempty"`
	Comment      string     `json:"comment,omitempty"`
	ActedAt      *time.Time `json:"acted_at,omitempty"`
}
