package repository

import (
	"context"

	"hrm-admin/console/pkg/models"
)

// Mutating operations take the caller's access token as their last argument;
// an empty token sends no Authorization header.

// WorkflowStore manages workflow headers.
type WorkflowStore interface {
	// ListWorkflows returns every workflow. No token is sent.
	ListWorkflows(ctx context.Context) ([]models.Workflow, error)
	// GetWorkflow returns a single workflow.
	GetWorkflow(ctx context.Context, id int64) (*models.Workflow, error)
	CreateWorkflow(ctx context.Context, req models.WorkflowRequest, token string) (*models.Workflow, error)
	UpdateWorkflow(ctx context.Context, id int64, req models.WorkflowRequest, token string) (*models.Workflow, error)
	// DeleteWorkflow soft-deletes the workflow; the backend marks it inactive.
	DeleteWorkflow(ctx context.Context, id int64, token string) error
}

// StageStore manages the stages of a workflow.
type StageStore interface {
	// ListStages returns the stages of a workflow with their approvers embedded.
	ListStages(ctx context.Context, workflowID int64) ([]models.WorkflowStage, error)
	CreateStage(ctx context.Context, req models.CreateStageRequest, token string) (*models.WorkflowStage, error)
	UpdateStage(ctx context.Context, id int64, req models.UpdateStageRequest, token string) (*models.WorkflowStage, error)
	DeleteStage(ctx context.Context, id int64, token string) error
}

// ApproverStore manages the approver records of a stage.
type ApproverStore interface {
	ListApprovers(ctx context.Context, stageID int64, token string) ([]models.WorkflowStageApprover, error)
	CreateApprover(ctx context.Context, req models.CreateApproverRequest, token string) (*models.WorkflowStageApprover, error)
	UpdateApprover(ctx context.Context, id int64, req models.UpdateApproverRequest, token string) (*models.WorkflowStageApprover, error)
	DeleteApprover(ctx context.Context, id int64, token string) error
}

// DefinitionStore is everything needed to read and write a workflow definition.
type DefinitionStore interface {
	WorkflowStore
	StageStore
	ApproverStore
}

// DirectoryStore manages users and roles.
type DirectoryStore interface {
	ListUsers(ctx context.Context, token string) ([]models.User, error)
	CreateUser(ctx context.Context, req models.UserRequest, token string) (*models.User, error)
	UpdateUser(ctx context.Context, id int64, req models.UserRequest, token string) (*models.User, error)
	ActivateUser(ctx context.Context, id int64, token string) error
	DeactivateUser(ctx context.Context, id int64, token string) error

	ListRoles(ctx context.Context, token string) ([]models.Role, error)
	CreateRole(ctx context.Context, req models.RoleRequest, token string) (*models.Role, error)
	SetRoleStatus(ctx context.Context, id int64, active bool, token string) error
}

// TaskStore manages approval tasks.
type TaskStore interface {
	ListTasks(ctx context.Context, token string) ([]models.Task, error)
	GetTask(ctx context.Context, id int64, token string) (*models.Task, error)
	CreateTask(ctx context.Context, req models.TaskRequest, token string) (*models.Task, error)
	UpdateTask(ctx context.Context, id int64, req models.TaskRequest, token string) (*models.Task, error)
	ApproveTask(ctx context.Context, id int64, comments string, token string) error
	RejectTask(ctx context.Context, id int64, reason string, token string) error
	CancelTask(ctx context.Context, id int64, token string) error
}

// AttendanceStore records check-ins and check-outs.
type AttendanceStore interface {
	CheckIn(ctx context.Context, req models.CheckInRequest, token string) (*models.AttendanceResponse, error)
	CheckOut(ctx context.Context, employeeID int64, token string) (*models.AttendanceResponse, error)
	History(ctx context.Context, employeeID int64, token string) ([]models.AttendanceRecord, error)
}

// AuthStore exchanges credentials for a session.
type AuthStore interface {
	Login(ctx context.Context, req models.LoginRequest) (*models.LoginResponse, error)
}

// Backend is the full remote HR API.
type Backend interface {
	DefinitionStore
	DirectoryStore
	TaskStore
	AttendanceStore
	AuthStore
}
