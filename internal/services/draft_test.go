package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hrm-admin/console/pkg/models"
)

func ptr[T any](v T) *T { return &v }

func TestStageDraftOf_InverseMapping(t *testing.T) {
	roles := []models.Role{{RoleID: 2, RoleName: "MANAGE"}}
	cases := []struct {
		name      string
		approvers []models.WorkflowStageApprover
		kind      ApproverKind
		value     string
	}{
		{"user", []models.WorkflowStageApprover{{ID: 1, ApproverType: models.ApproverTypeUser, UserID: ptr(int64(12))}}, KindSpecific, "12"},
		{"known role", []models.WorkflowStageApprover{{ID: 1, ApproverType: models.ApproverTypeRole, RoleID: ptr(int64(2))}}, KindRole, "MANAGE"},
		{"unknown role", []models.WorkflowStageApprover{{ID: 1, ApproverType: models.ApproverTypeRole, RoleID: ptr(int64(99))}}, KindRole, "99"},
		{"dynamic", []models.WorkflowStageApprover{{ID: 1, ApproverType: models.ApproverTypeDynamic, DynamicRule: ptr("HR_MANAGER")}}, KindDynamic, "HR_MANAGER"},
		{"dynamic flag", []models.WorkflowStageApprover{{ID: 1, IsDynamic: true, DynamicRule: ptr("DEPT_HEAD")}}, KindDynamic, "DEPT_HEAD"},
		{"first approver wins", []models.WorkflowStageApprover{
			{ID: 1, ApproverType: models.ApproverTypeUser, UserID: ptr(int64(3))},
			{ID: 2, ApproverType: models.ApproverTypeRole, RoleID: ptr(int64(2))},
		}, KindSpecific, "3"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			st := models.WorkflowStage{StageID: 7, StageName: "s", ApprovalType: models.ApprovalAny, Approvers: tc.approvers}
			draft := StageDraftOf(st, roles, 3)
			assert.Equal(t, tc.kind, draft.Approver.Kind)
			assert.Equal(t, tc.value, draft.Approver.Value)
			require.NotNil(t, draft.ApproverID)
			assert.Equal(t, int64(1), *draft.ApproverID)
			assert.Equal(t, ChoiceAny, draft.ApprovalType)
		})
	}
}

func TestStageDraftOf_NoApprover(t *testing.T) {
	draft := StageDraftOf(models.WorkflowStage{StageID: 7, StageName: "s", ApprovalType: models.ApprovalAll,
		TimeoutHours: ptr(24)}, nil, 3)
	assert.Equal(t, ApproverAssignment{Kind: KindRole}, draft.Approver)
	assert.Nil(t, draft.ApproverID)
	assert.Equal(t, 24, draft.TimeoutHours)
	assert.Equal(t, ChoiceAll, draft.ApprovalType)
	require.NotNil(t, draft.StageID)
	assert.Equal(t, int64(7), *draft.StageID)

	noTimeout := StageDraftOf(models.WorkflowStage{StageID: 8, ApprovalType: models.ApprovalSingle}, nil, 3)
	assert.Equal(t, 3, noTimeout.TimeoutHours)
}

func TestApprovalChoice_Canonical(t *testing.T) {
	assert.Equal(t, models.ApprovalSingle, ChoiceSingle.Canonical())
	assert.Equal(t, models.ApprovalAny, ChoiceAny.Canonical())
	assert.Equal(t, models.ApprovalAll, ChoiceAll.Canonical())
}

func TestBasicInfo_RequestOmitsEmptyOptionals(t *testing.T) {
	req := BasicInfo{Name: " Leave ", Type: models.WorkflowTypeLeave}.Request()
	assert.Equal(t, "Leave", req.WorkflowName)
	assert.Nil(t, req.Description)
	assert.Nil(t, req.EffectiveDate)
	assert.False(t, req.IsActive)

	req = BasicInfo{Name: "x", Description: "d", EffectiveDate: "2025-01-01", IsActive: true}.Request()
	require.NotNil(t, req.Description)
	assert.Equal(t, "2025-01-01", *req.EffectiveDate)
}

func TestDraftOf_TrimsEffectiveDate(t *testing.T) {
	draft := DraftOf(models.Workflow{WorkflowName: "x", WorkflowType: models.WorkflowTypeLeave,
		EffectiveDate: ptr("2025-03-01T00:00:00")}, nil, nil, 3)
	assert.Equal(t, "2025-03-01", draft.BasicInfo.EffectiveDate)
	assert.Empty(t, draft.Stages)
}
