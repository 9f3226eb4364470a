package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hrm-admin/console/internal/auth"
	"hrm-admin/console/pkg/models"
)

func TestCreate_SingleRoleStage(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	wz := NewCreateWizard(f.rec, f.roles, nil, 3)
	require.NoError(t, wz.SetBasicInfo(BasicInfo{Name: "Annual Leave Approval", Type: models.WorkflowTypeLeave, IsActive: true}))
	require.NoError(t, wz.SetStage(0, roleStage("Manager Review", "MANAGE")))
	require.NoError(t, wz.Next())
	require.NoError(t, wz.Next())
	require.Equal(t, StepFinalize, wz.Step())

	id, err := wz.Submit(ctx, f.session)
	require.NoError(t, err)

	assert.Equal(t, []string{"POST /Workflow", "POST /WorkflowStage", "POST /WorkflowStageApprove"}, f.store.CallLog())
	calls := f.store.Calls()

	stageReq := calls[1].Body.(models.CreateStageRequest)
	assert.Equal(t, id, stageReq.WorkflowID)
	assert.Equal(t, 1, stageReq.StageOrder)
	assert.Equal(t, "Manager Review", stageReq.StageName)
	assert.Equal(t, models.ApprovalSingle, stageReq.ApprovalType)
	assert.False(t, stageReq.IsAutoApprove)

	approverReq := calls[2].Body.(models.CreateApproverRequest)
	assert.Equal(t, models.ApproverTypeRole, approverReq.ApproverType)
	require.NotNil(t, approverReq.RoleID)
	assert.Equal(t, f.manage.RoleID, *approverReq.RoleID)
	assert.Nil(t, approverReq.UserID)
	assert.Nil(t, approverReq.DynamicRule)
	assert.False(t, approverReq.IsDynamic)

	stages, err := f.store.ListStages(ctx, id)
	require.NoError(t, err)
	require.Len(t, stages, 1)
	assert.Equal(t, stages[0].StageID, approverReq.StageID)

	for _, c := range calls {
		assert.Equal(t, "tok", c.Token, c.String())
	}
	assert.Equal(t, StepFinalize, wz.Step())
	assert.True(t, wz.State().Closed)
}

func TestUpdate_RemovedStageApproversDeletedFirst(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	roleID := f.manage.RoleID
	wf := f.store.PutWorkflow(models.Workflow{
		WorkflowName: "Overtime",
		WorkflowType: models.WorkflowTypeOvertime,
		IsActive:     true,
		WorkflowStages: []models.WorkflowStage{
			{StageOrder: 1, StageName: "Lead", ApprovalType: models.ApprovalSingle,
				Approvers: []models.WorkflowStageApprover{{ApproverType: models.ApproverTypeRole, RoleID: &roleID}}},
			{StageOrder: 2, StageName: "HR", ApprovalType: models.ApprovalAll,
				Approvers: []models.WorkflowStageApprover{{ApproverType: models.ApproverTypeRole, RoleID: &roleID}}},
		},
	})
	first, second := wf.WorkflowStages[0], wf.WorkflowStages[1]

	wz, err := NewEditWizard(ctx, f.rec, wf, f.roles, nil, 3)
	require.NoError(t, err)
	f.store.ResetCalls()

	require.NoError(t, wz.RemoveStage(1))
	require.NoError(t, wz.Next())
	require.NoError(t, wz.Next())
	_, err = wz.Submit(ctx, f.session)
	require.NoError(t, err)

	assert.Equal(t, []string{
		fmt.Sprintf("PUT /Workflow/%d", wf.WorkflowID),
		fmt.Sprintf("DELETE /WorkflowStageApprove/%d", second.Approvers[0].ID),
		fmt.Sprintf("DELETE /WorkflowStage/%d", second.StageID),
		fmt.Sprintf("PUT /WorkflowStage/%d", first.StageID),
		fmt.Sprintf("PUT /WorkflowStageApprove/%d", first.Approvers[0].ID),
	}, f.store.CallLog())

	update := f.store.Calls()[3].Body.(models.UpdateStageRequest)
	assert.Equal(t, 1, update.StageOrder)
	assert.Equal(t, "Lead", update.StageName)
}

func TestUpdate_StageOrderFollowsSubmittedPosition(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	created, err := f.rec.Create(ctx, f.session, leaveDraft(
		roleStage("a", "ADMIN"), roleStage("b", "MANAGE"), roleStage("c", "ADMIN"),
	), f.roles)
	require.NoError(t, err)
	wf, err := f.store.GetWorkflow(ctx, created.WorkflowID)
	require.NoError(t, err)

	wz, err := NewEditWizard(ctx, f.rec, *wf, f.roles, nil, 3)
	require.NoError(t, err)
	require.NoError(t, wz.RemoveStage(0))
	idx, err := wz.AddStage()
	require.NoError(t, err)
	require.NoError(t, wz.SetStage(idx, roleStage("d", "MANAGE")))
	require.NoError(t, wz.Next())
	require.NoError(t, wz.Next())
	_, err = wz.Submit(ctx, f.session)
	require.NoError(t, err)

	stages, err := f.store.ListStages(ctx, created.WorkflowID)
	require.NoError(t, err)
	var names []string
	for i, st := range stages {
		assert.Equal(t, i+1, st.StageOrder)
		assert.Len(t, st.Approvers, 1)
		names = append(names, st.StageName)
	}
	assert.Equal(t, []string{"b", "c", "d"}, names)
}

func TestUpdate_ResubmitKeepsIDs(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	created, err := f.rec.Create(ctx, f.session, leaveDraft(roleStage("a", "ADMIN"), roleStage("b", "MANAGE")), f.roles)
	require.NoError(t, err)
	wf, err := f.store.GetWorkflow(ctx, created.WorkflowID)
	require.NoError(t, err)
	before := wf.WorkflowStages

	wz, err := NewEditWizard(ctx, f.rec, *wf, f.roles, nil, 3)
	require.NoError(t, err)
	f.store.ResetCalls()
	require.NoError(t, wz.Next())
	require.NoError(t, wz.Next())
	_, err = wz.Submit(ctx, f.session)
	require.NoError(t, err)

	for _, c := range f.store.Calls() {
		assert.NotEqual(t, http.MethodPost, c.Method, c.String())
		assert.NotEqual(t, http.MethodDelete, c.Method, c.String())
	}
	after, err := f.store.ListStages(ctx, created.WorkflowID)
	require.NoError(t, err)
	require.Len(t, after, len(before))
	for i := range before {
		assert.Equal(t, before[i].StageID, after[i].StageID)
		require.Len(t, after[i].Approvers, 1)
		assert.Equal(t, before[i].Approvers[0].ID, after[i].Approvers[0].ID)
	}
}

func TestApproverPayload_ExactlyOneTarget(t *testing.T) {
	roles := []models.Role{{RoleID: 5, RoleName: "HR"}}
	cases := []struct {
		assignment ApproverAssignment
		wantType   models.ApproverType
	}{
		{ApproverAssignment{Kind: KindRole, Value: "HR"}, models.ApproverTypeRole},
		{ApproverAssignment{Kind: KindSpecific, Value: "42"}, models.ApproverTypeUser},
		{ApproverAssignment{Kind: KindDynamic, Value: "DEPT_HEAD"}, models.ApproverTypeDynamic},
	}
	for _, tc := range cases {
		t.Run(string(tc.assignment.Kind), func(t *testing.T) {
			fields, err := resolveApprover(tc.assignment, roles)
			require.NoError(t, err)
			req := fields.createRequest(9)

			set := 0
			if req.RoleID != nil {
				set++
			}
			if req.UserID != nil {
				set++
			}
			if req.DynamicRule != nil {
				set++
			}
			assert.Equal(t, 1, set)
			assert.Equal(t, tc.wantType, req.ApproverType)
			assert.Equal(t, req.ApproverType == models.ApproverTypeDynamic, req.IsDynamic)
			assert.Equal(t, int64(9), req.StageID)
		})
	}
}

func TestCreate_UnresolvableApproverWritesNothing(t *testing.T) {
	f := newFixture(t)

	_, err := f.rec.Create(context.Background(), f.session, leaveDraft(
		roleStage("a", "ADMIN"), roleStage("b", "NOBODY"),
	), f.roles)
	assert.ErrorIs(t, err, ErrUnknownRole)
	assert.Empty(t, f.store.CallLog())

	specific := roleStage("a", "x")
	specific.Approver = ApproverAssignment{Kind: KindSpecific, Value: "MANAGE"}
	_, err = f.rec.Create(context.Background(), f.session, leaveDraft(specific), f.roles)
	assert.ErrorIs(t, err, ErrInvalidUserID)
	assert.Empty(t, f.store.CallLog())
}

func TestCreate_RequiresSession(t *testing.T) {
	f := newFixture(t)

	_, err := f.rec.Create(context.Background(), nil, leaveDraft(roleStage("a", "ADMIN")), f.roles)
	assert.ErrorIs(t, err, auth.ErrSessionExpired)

	noUser := auth.NewSession(models.LoginResponse{AccessToken: "tok"})
	_, err = f.rec.Update(context.Background(), noUser, 1, leaveDraft(roleStage("a", "ADMIN")), nil, f.roles)
	assert.ErrorIs(t, err, auth.ErrSessionExpired)
	assert.Empty(t, f.store.CallLog())
}

func TestCreate_AbortsOnFirstFailure(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	boom := errors.New("boom")
	f.store.FailOn(http.MethodPost, "/WorkflowStageApprove", boom)

	created, err := f.rec.Create(ctx, f.session, leaveDraft(roleStage("a", "ADMIN"), roleStage("b", "MANAGE")), f.roles)
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, []string{"POST /Workflow", "POST /WorkflowStage", "POST /WorkflowStageApprove"}, f.store.CallLog())

	require.NotNil(t, created)
	stages, err := f.store.ListStages(ctx, created.WorkflowID)
	require.NoError(t, err)
	assert.Len(t, stages, 1)
}

func TestCreate_CompensationUndoesCreatedRecords(t *testing.T) {
	f := newFixture(t, WithCompensation(true))
	ctx := context.Background()
	f.store.FailOn(http.MethodPost, "/WorkflowStage", errors.New("boom"))
	first := roleStage("a", "ADMIN")

	// The header is created, the first stage fails.
	created, err := f.rec.Create(ctx, f.session, leaveDraft(first), f.roles)
	require.Error(t, err)
	require.NotNil(t, created)
	assert.Equal(t, []string{
		"POST /Workflow",
		"POST /WorkflowStage",
		fmt.Sprintf("DELETE /Workflow/%d", created.WorkflowID),
	}, f.store.CallLog())
}

func TestUpdate_CompensationDeletesNewStageAndApprover(t *testing.T) {
	f := newFixture(t, WithCompensation(true))
	ctx := context.Background()
	roleID := f.admin.RoleID
	wf := f.store.PutWorkflow(models.Workflow{
		WorkflowName: "Payroll",
		WorkflowType: models.WorkflowTypePayroll,
		IsActive:     true,
		WorkflowStages: []models.WorkflowStage{{StageOrder: 1, StageName: "a", ApprovalType: models.ApprovalSingle,
			Approvers: []models.WorkflowStageApprover{{ApproverType: models.ApproverTypeRole, RoleID: &roleID}}}},
	})

	wz, err := NewEditWizard(ctx, f.rec, wf, f.roles, nil, 3)
	require.NoError(t, err)
	draft := wz.Draft()
	draft.Stages = append(draft.Stages, roleStage("b", "MANAGE"), roleStage("c", "MANAGE"))
	persisted, err := f.store.ListStages(ctx, wf.WorkflowID)
	require.NoError(t, err)

	boom := errors.New("boom")
	f.store.ResetCalls()
	// Fail the third stage: the second stage and its approver were created by this run.
	failing := &failNthStageStore{MemoryStore: f.store, failOn: 2, err: boom}
	rec := NewReconciler(failing, f.rec.logger, WithCompensation(true))
	progress, err := rec.Update(ctx, f.session, wf.WorkflowID, draft, persisted, f.roles)
	require.ErrorIs(t, err, boom)
	assert.Empty(t, progress.CreatedStages)
	assert.Empty(t, progress.CreatedApprovers)

	log := f.store.CallLog()
	require.GreaterOrEqual(t, len(log), 2)
	assert.Regexp(t, `^DELETE /WorkflowStageApprove/\d+$`, log[len(log)-2])
	assert.Regexp(t, `^DELETE /WorkflowStage/\d+$`, log[len(log)-1])

	stages, err := f.store.ListStages(ctx, wf.WorkflowID)
	require.NoError(t, err)
	require.Len(t, stages, 1)
	assert.Equal(t, "a", stages[0].StageName)
}

func TestUpdate_ListsApproversOfBareStage(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	roleID := f.manage.RoleID
	wf := f.store.PutWorkflow(models.Workflow{
		WorkflowName: "Overtime",
		WorkflowType: models.WorkflowTypeOvertime,
		WorkflowStages: []models.WorkflowStage{
			{StageOrder: 1, StageName: "Lead", ApprovalType: models.ApprovalSingle,
				Approvers: []models.WorkflowStageApprover{{ApproverType: models.ApproverTypeRole, RoleID: &roleID}}},
			{StageOrder: 2, StageName: "HR", ApprovalType: models.ApprovalSingle,
				Approvers: []models.WorkflowStageApprover{{ApproverType: models.ApproverTypeRole, RoleID: &roleID}}},
		},
	})
	first, second := wf.WorkflowStages[0], wf.WorkflowStages[1]

	draft := DraftOf(wf, wf.WorkflowStages[:1], f.roles, 3)
	bare := second
	bare.Approvers = nil
	f.store.ResetCalls()

	progress, err := f.rec.Update(ctx, f.session, wf.WorkflowID, draft, []models.WorkflowStage{first, bare}, f.roles)
	require.NoError(t, err)
	assert.Equal(t, []string{
		fmt.Sprintf("PUT /Workflow/%d", wf.WorkflowID),
		fmt.Sprintf("GET /WorkflowStageApprove/stage/%d", second.StageID),
		fmt.Sprintf("DELETE /WorkflowStageApprove/%d", second.Approvers[0].ID),
		fmt.Sprintf("DELETE /WorkflowStage/%d", second.StageID),
		fmt.Sprintf("PUT /WorkflowStage/%d", first.StageID),
		fmt.Sprintf("PUT /WorkflowStageApprove/%d", first.Approvers[0].ID),
	}, f.store.CallLog())
	assert.Equal(t, []int64{second.StageID}, progress.DeletedStages)
	assert.Equal(t, []int64{second.Approvers[0].ID}, progress.DeletedApprovers)
}

func TestUpdate_ReportsProgressOnFailure(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	created, err := f.rec.Create(ctx, f.session, leaveDraft(roleStage("a", "ADMIN"), roleStage("b", "MANAGE")), f.roles)
	require.NoError(t, err)
	wf, err := f.store.GetWorkflow(ctx, created.WorkflowID)
	require.NoError(t, err)
	persisted := wf.WorkflowStages

	draft := DraftOf(*wf, persisted[:1], f.roles, 3)
	draft.Stages = append(draft.Stages, roleStage("c", "ADMIN"))
	boom := errors.New("boom")
	f.store.FailOn(http.MethodPost, "/WorkflowStageApprove", boom)

	progress, err := f.rec.Update(ctx, f.session, wf.WorkflowID, draft, persisted, f.roles)
	require.ErrorIs(t, err, boom)
	assert.Equal(t, []int64{persisted[1].StageID}, progress.DeletedStages)
	assert.Equal(t, []int64{persisted[1].Approvers[0].ID}, progress.DeletedApprovers)
	require.Contains(t, progress.CreatedStages, 1)
	assert.NotContains(t, progress.CreatedApprovers, 1)

	stages, err := f.store.ListStages(ctx, wf.WorkflowID)
	require.NoError(t, err)
	require.Len(t, stages, 2)
	assert.Equal(t, progress.CreatedStages[1], stages[1].StageID)
}
