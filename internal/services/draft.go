package services

import (
	"fmt"
	"strconv"
	"strings"

	"hrm-admin/console/pkg/models"
)

// DefaultTimeoutHours is the stage timeout offered for new stages.
const DefaultTimeoutHours = 3

// ApprovalChoice is the lower-case approval rule used in drafts.
type ApprovalChoice string

const (
	ChoiceSingle ApprovalChoice = "single"
	ChoiceAny    ApprovalChoice = "any"
	ChoiceAll    ApprovalChoice = "all"
)

// Canonical maps the choice to the backend form. Anything unrecognised is Single.
func (c ApprovalChoice) Canonical() models.ApprovalType {
	switch c {
	case ChoiceAny:
		return models.ApprovalAny
	case ChoiceAll:
		return models.ApprovalAll
	default:
		return models.ApprovalSingle
	}
}

// ChoiceOf maps a backend approval type back to its draft form.
func ChoiceOf(t models.ApprovalType) ApprovalChoice {
	return ApprovalChoice(strings.ToLower(string(t)))
}

// ApproverKind selects how a stage's approver is identified. It decides which
// values are acceptable in the sibling Value field.
type ApproverKind string

const (
	KindRole     ApproverKind = "role"     // Value is a role name
	KindDynamic  ApproverKind = "dynamic"  // Value is a dynamic rule
	KindSpecific ApproverKind = "specific" // Value is a user id
)

// ApproverAssignment is the approver of one stage as edited in the wizard.
type ApproverAssignment struct {
	Kind  ApproverKind `json:"approverType" validate:"required,oneof=role dynamic specific"`
	Value string       `json:"approverValue" validate:"required"`
}

// StageDraft is one stage row. StageID and ApproverID are set for rows that
// already exist on the backend.
type StageDraft struct {
	StageID      *int64             `json:"stageId,omitempty"`
	ApproverID   *int64             `json:"approverId,omitempty"`
	Name         string             `json:"stageName" validate:"required"`
	ApprovalType ApprovalChoice     `json:"approvalType" validate:"required,oneof=single any all"`
	TimeoutHours int                `json:"timeout" validate:"gt=0"`
	Approver     ApproverAssignment `json:"approver"`
}

// NewStageDraft returns a blank stage row with the form defaults.
func NewStageDraft(name string, timeoutHours int) StageDraft {
	return StageDraft{
		Name:         name,
		ApprovalType: ChoiceSingle,
		TimeoutHours: timeoutHours,
		Approver:     ApproverAssignment{Kind: KindRole},
	}
}

// BasicInfo is the workflow header as edited in the first wizard step.
type BasicInfo struct {
	Name          string              `json:"workflowName" validate:"required"`
	Type          models.WorkflowType `json:"workflowType" validate:"required,oneof=Leave Overtime Attendance Payroll Performance"`
	Description   string              `json:"description,omitempty"`
	EffectiveDate string              `json:"effectiveDate,omitempty" validate:"omitempty,datetime=2006-01-02"`
	IsActive      bool                `json:"isActive"`
}

// Request builds the header body. Empty optional fields are left out.
func (b BasicInfo) Request() models.WorkflowRequest {
	req := models.WorkflowRequest{
		WorkflowName: strings.TrimSpace(b.Name),
		WorkflowType: b.Type,
		IsActive:     b.IsActive,
	}
	if b.Description != "" {
		desc := b.Description
		req.Description = &desc
	}
	if b.EffectiveDate != "" {
		date := b.EffectiveDate
		req.EffectiveDate = &date
	}
	return req
}

// WorkflowDraft is the whole wizard form.
type WorkflowDraft struct {
	BasicInfo BasicInfo    `json:"basicInfo"`
	Stages    []StageDraft `json:"stages"`
}

func (d WorkflowDraft) clone() WorkflowDraft {
	d.Stages = append([]StageDraft(nil), d.Stages...)
	return d
}

// approverFields is a resolved approver: exactly one of the pointer fields is set.
type approverFields struct {
	Type        models.ApproverType
	RoleID      *int64
	UserID      *int64
	DynamicRule *string
}

func (f approverFields) createRequest(stageID int64) models.CreateApproverRequest {
	return models.CreateApproverRequest{
		StageID:      stageID,
		ApproverType: f.Type,
		RoleID:       f.RoleID,
		UserID:       f.UserID,
		IsDynamic:    f.Type == models.ApproverTypeDynamic,
		DynamicRule:  f.DynamicRule,
	}
}

func (f approverFields) updateRequest() models.UpdateApproverRequest {
	return models.UpdateApproverRequest{
		ApproverType: f.Type,
		RoleID:       f.RoleID,
		UserID:       f.UserID,
		DynamicRule:  f.DynamicRule,
	}
}

// resolveApprover turns an assignment into backend fields, looking role names
// up in roles.
func resolveApprover(a ApproverAssignment, roles []models.Role) (approverFields, error) {
	switch a.Kind {
	case KindSpecific:
		id, err := strconv.ParseInt(strings.TrimSpace(a.Value), 10, 64)
		if err != nil {
			return approverFields{}, fmt.Errorf("%w: %q", ErrInvalidUserID, a.Value)
		}
		return approverFields{Type: models.ApproverTypeUser, UserID: &id}, nil
	case KindDynamic:
		rule := a.Value
		return approverFields{Type: models.ApproverTypeDynamic, DynamicRule: &rule}, nil
	default:
		for _, r := range roles {
			if r.RoleName == a.Value {
				id := r.RoleID
				return approverFields{Type: models.ApproverTypeRole, RoleID: &id}, nil
			}
		}
		return approverFields{}, fmt.Errorf("%w: %q", ErrUnknownRole, a.Value)
	}
}

// assignmentOf maps a persisted approver back into its editable form. A stage
// without approvers gets an empty role assignment.
func assignmentOf(a *models.WorkflowStageApprover, roles []models.Role) ApproverAssignment {
	out := ApproverAssignment{Kind: KindRole}
	if a == nil {
		return out
	}
	switch {
	case a.ApproverType == models.ApproverTypeUser:
		out.Kind = KindSpecific
		if a.UserID != nil {
			out.Value = strconv.FormatInt(*a.UserID, 10)
		}
	case a.ApproverType == models.ApproverTypeRole:
		if a.RoleID != nil {
			out.Value = strconv.FormatInt(*a.RoleID, 10)
			for _, r := range roles {
				if r.RoleID == *a.RoleID {
					out.Value = r.RoleName
					break
				}
			}
		}
	case a.ApproverType == models.ApproverTypeDynamic || a.IsDynamic:
		out.Kind = KindDynamic
		if a.DynamicRule != nil {
			out.Value = *a.DynamicRule
		}
	}
	return out
}

// StageDraftOf maps a persisted stage and its first approver into a stage row.
func StageDraftOf(st models.WorkflowStage, roles []models.Role, defaultTimeout int) StageDraft {
	stageID := st.StageID
	draft := StageDraft{
		StageID:      &stageID,
		Name:         st.StageName,
		ApprovalType: ChoiceOf(st.ApprovalType),
		TimeoutHours: defaultTimeout,
	}
	if st.TimeoutHours != nil && *st.TimeoutHours > 0 {
		draft.TimeoutHours = *st.TimeoutHours
	}

	var first *models.WorkflowStageApprover
	if len(st.Approvers) > 0 {
		first = &st.Approvers[0]
		approverID := first.ID
		draft.ApproverID = &approverID
	}
	draft.Approver = assignmentOf(first, roles)
	return draft
}

// DraftOf builds the edit form of w from its persisted stages.
func DraftOf(w models.Workflow, stages []models.WorkflowStage, roles []models.Role, defaultTimeout int) WorkflowDraft {
	info := BasicInfo{
		Name:     w.WorkflowName,
		Type:     w.WorkflowType,
		IsActive: w.IsActive,
	}
	if w.Description != nil {
		info.Description = *w.Description
	}
	if w.EffectiveDate != nil {
		info.EffectiveDate = dateOnly(*w.EffectiveDate)
	}

	draft := WorkflowDraft{BasicInfo: info, Stages: make([]StageDraft, 0, len(stages))}
	for _, st := range stages {
		draft.Stages = append(draft.Stages, StageDraftOf(st, roles, defaultTimeout))
	}
	return draft
}

// dateOnly trims a timestamp such as 2024-01-31T00:00:00 to its date.
func dateOnly(s string) string {
	if i := strings.IndexByte(s, 'T'); i >= 0 {
		return s[:i]
	}
	return s
}
