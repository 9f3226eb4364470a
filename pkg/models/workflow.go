package models

// WorkflowType is the business process a workflow approves.
type WorkflowType string

const (
	WorkflowTypeLeave       WorkflowType = "Leave"
	WorkflowTypeOvertime    WorkflowType = "Overtime"
	WorkflowTypeAttendance  WorkflowType = "Attendance"
	WorkflowTypePayroll     WorkflowType = "Payroll"
	WorkflowTypePerformance WorkflowType = "Performance"
)

// WorkflowTypes lists the selectable workflow types in display order.
var WorkflowTypes = []WorkflowType{
	WorkflowTypeLeave,
	WorkflowTypeOvertime,
	WorkflowTypeAttendance,
	WorkflowTypePayroll,
	WorkflowTypePerformance,
}

// Valid reports whether t is one of the known workflow types.
func (t WorkflowType) Valid() bool {
	for _, known := range WorkflowTypes {
		if t == known {
			return true
		}
	}
	return false
}

// ApprovalType is the canonical (backend) approval rule of a stage.
type ApprovalType string

const (
	ApprovalSingle ApprovalType = "Single" // one approver decides
	ApprovalAny    ApprovalType = "Any"    // any one of the assigned group
	ApprovalAll    ApprovalType = "All"    // every assigned approver must approve
)

// ApproverType tags which field of a WorkflowStageApprover is populated.
type ApproverType int

const (
	ApproverTypeUser    ApproverType = 1
	ApproverTypeRole    ApproverType = 2
	ApproverTypeDynamic ApproverType = 3
)

// DynamicRule is an organisational rule resolved by the backend at approval time.
type DynamicRule string

const (
	DynamicDirectManager DynamicRule = "DIRECT_MANAGER"
	DynamicDeptHead      DynamicRule = "DEPT_HEAD"
	DynamicHRManager     DynamicRule = "HR_MANAGER"
)

// DynamicRules lists the rules offered for dynamic approver assignment.
var DynamicRules = []DynamicRule{DynamicDirectManager, DynamicDeptHead, DynamicHRManager}

// Workflow is a named, typed approval process definition as returned by the backend.
type Workflow struct {
	WorkflowID     int64           `json:"workflowId"`
	WorkflowName   string          `json:"workflowName"`
	WorkflowType   WorkflowType    `json:"workflowType"`
	Description    *string         `json:"description"`
	IsActive       bool            `json:"isActive"`
	EffectiveDate  *string         `json:"effectiveDate"`
	CreatedDate    string          `json:"createdDate,omitempty"`
	CreatedBy      *int64          `json:"createdBy"`
	ModifiedDate   *string         `json:"modifiedDate"`
	ModifiedBy     *int64          `json:"modifiedBy"`
	WorkflowStages []WorkflowStage `json:"workflowStages,omitempty"`
}

// Request returns the header body that re-submits w unchanged.
func (w Workflow) Request() WorkflowRequest {
	return WorkflowRequest{
		WorkflowName:  w.WorkflowName,
		WorkflowType:  w.WorkflowType,
		Description:   w.Description,
		EffectiveDate: w.EffectiveDate,
		IsActive:      w.IsActive,
	}
}

// WorkflowStage is one ordered step of a workflow's approval sequence.
type WorkflowStage struct {
	StageID       int64                   `json:"stageId"`
	WorkflowID    int64                   `json:"workflowId"`
	StageOrder    int                     `json:"stageOrder"`
	StageName     string                  `json:"stageName"`
	ApprovalType  ApprovalType            `json:"approvalType"`
	TimeoutHours  *int                    `json:"timeoutHours"`
	IsAutoApprove bool                    `json:"isAutoApprove"`
	CreatedDate   string                  `json:"createdDate,omitempty"`
	Approvers     []WorkflowStageApprover `json:"workflowStageApprovers,omitempty"`
}

// WorkflowStageApprover assigns who may approve a stage. Exactly one of
// UserID, RoleID and DynamicRule is set, according to ApproverType.
type WorkflowStageApprover struct {
	ID           int64        `json:"id"`
	StageID      int64        `json:"stageId"`
	ApproverType ApproverType `json:"approverType"`
	RoleID       *int64       `json:"roleId"`
	UserID       *int64       `json:"userId"`
	IsDynamic    bool         `json:"isDynamic"`
	DynamicRule  *string      `json:"dynamicRule"`
}

// WorkflowRequest is the body of POST /Workflow and PUT /Workflow/{id}.
// Nil optional fields are left out of the payload.
type WorkflowRequest struct {
	WorkflowName  string       `json:"WorkflowName"`
	WorkflowType  WorkflowType `json:"WorkflowType"`
	Description   *string      `json:"Description,omitempty"`
	EffectiveDate *string      `json:"EffectiveDate,omitempty"`
	IsActive      bool         `json:"IsActive"`
}

// CreateStageRequest is the body of POST /WorkflowStage.
type CreateStageRequest struct {
	WorkflowID    int64        `json:"WorkflowId"`
	StageOrder    int          `json:"StageOrder"`
	StageName     string       `json:"StageName"`
	ApprovalType  ApprovalType `json:"ApprovalType"`
	TimeoutHours  int          `json:"TimeoutHours"`
	IsAutoApprove bool         `json:"IsAutoApprove"`
}

// UpdateStageRequest is the body of PUT /WorkflowStage/{id}.
type UpdateStageRequest struct {
	StageOrder    int          `json:"StageOrder"`
	StageName     string       `json:"StageName"`
	ApprovalType  ApprovalType `json:"ApprovalType"`
	TimeoutHours  int          `json:"TimeoutHours"`
	IsAutoApprove bool         `json:"IsAutoApprove"`
}

// CreateApproverRequest is the body of POST /WorkflowStageApprove.
type CreateApproverRequest struct {
	StageID      int64        `json:"StageId"`
	ApproverType ApproverType `json:"ApproverType"`
	RoleID       *int64       `json:"RoleId"`
	UserID       *int64       `json:"UserId"`
	IsDynamic    bool         `json:"IsDynamic"`
	DynamicRule  *string      `json:"DynamicRule"`
}

// UpdateApproverRequest is the body of PUT /WorkflowStageApprove/{id}.
type UpdateApproverRequest struct {
	ApproverType ApproverType `json:"ApproverType"`
	RoleID       *int64       `json:"RoleId"`
	UserID       *int64       `json:"UserId"`
	DynamicRule  *string      `json:"DynamicRule"`
}
