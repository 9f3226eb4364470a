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
	"hrm-admin/console/internal/logging"
	"hrm-admin/console/pkg/models"
)

func newBoardFixture(t *testing.T) (*fixture, *Board) {
	t.Helper()
	f := newFixture(t)
	f.store.PutWorkflow(models.Workflow{WorkflowName: "Annual Leave", WorkflowType: models.WorkflowTypeLeave, IsActive: true})
	f.store.PutWorkflow(models.Workflow{WorkflowName: "Sick leave", WorkflowType: models.WorkflowTypeLeave, IsActive: false})
	f.store.PutWorkflow(models.Workflow{WorkflowName: "Overtime", WorkflowType: models.WorkflowTypeOvertime, IsActive: true})
	board := NewBoard(f.store, f.store, f.rec, logging.Nop(), 3)
	require.NoError(t, board.Load(context.Background(), f.session))
	return f, board
}

func names(ws []models.Workflow) []string {
	out := make([]string, len(ws))
	for i, w := range ws {
		out[i] = w.WorkflowName
	}
	return out
}

func TestBoard_Filters(t *testing.T) {
	_, board := newBoardFixture(t)
	active, inactive := true, false

	assert.Len(t, board.Workflows(Filter{}), 3)
	assert.Equal(t, []string{"Annual Leave", "Sick leave"}, names(board.Workflows(Filter{Search: "LEAVE"})))
	assert.Equal(t, []string{"Overtime"}, names(board.Workflows(Filter{Type: models.WorkflowTypeOvertime})))
	assert.Equal(t, []string{"Sick leave"}, names(board.Workflows(Filter{Active: &inactive})))
	assert.Equal(t, []string{"Annual Leave"}, names(board.Workflows(Filter{Search: "leave", Active: &active})))
	assert.Empty(t, board.Workflows(Filter{Search: "leave", Type: models.WorkflowTypeOvertime}))

	assert.Equal(t, Stats{Total: 3, Active: 2, Inactive: 1}, board.Stats())
}

func TestBoard_ToggleOffIssuesSingleDelete(t *testing.T) {
	f, board := newBoardFixture(t)
	ctx := context.Background()
	target := board.Workflows(Filter{Search: "Annual"})[0]
	f.store.ResetCalls()

	active, err := board.Toggle(ctx, f.session, target.WorkflowID)
	require.NoError(t, err)
	assert.False(t, active)
	assert.Equal(t, []string{fmt.Sprintf("DELETE /Workflow/%d", target.WorkflowID)}, f.store.CallLog())

	row, ok := board.Workflow(target.WorkflowID)
	require.True(t, ok)
	assert.False(t, row.IsActive)
	assert.Equal(t, Stats{Total: 3, Active: 1, Inactive: 2}, board.Stats())
}

func TestBoard_ToggleOnResubmitsHeader(t *testing.T) {
	f, board := newBoardFixture(t)
	ctx := context.Background()
	target := board.Workflows(Filter{Search: "Sick"})[0]
	f.store.ResetCalls()

	active, err := board.Toggle(ctx, f.session, target.WorkflowID)
	require.NoError(t, err)
	assert.True(t, active)

	calls := f.store.Calls()
	require.Len(t, calls, 1)
	assert.Equal(t, fmt.Sprintf("PUT /Workflow/%d", target.WorkflowID), calls[0].String())
	req := calls[0].Body.(models.WorkflowRequest)
	assert.Equal(t, "Sick leave", req.WorkflowName)
	assert.Equal(t, models.WorkflowTypeLeave, req.WorkflowType)
	assert.True(t, req.IsActive)

	row, _ := board.Workflow(target.WorkflowID)
	assert.True(t, row.IsActive)
}

func TestBoard_ToggleFailureKeepsRow(t *testing.T) {
	f, board := newBoardFixture(t)
	target := board.Workflows(Filter{Search: "Annual"})[0]
	f.store.FailOn(http.MethodDelete, fmt.Sprintf("/Workflow/%d", target.WorkflowID), errors.New("boom"))

	_, err := board.Toggle(context.Background(), f.session, target.WorkflowID)
	require.Error(t, err)
	row, _ := board.Workflow(target.WorkflowID)
	assert.True(t, row.IsActive)
}

func TestBoard_ToggleNeedsSession(t *testing.T) {
	f, board := newBoardFixture(t)
	target := board.Workflows(Filter{Search: "Annual"})[0]
	f.store.ResetCalls()

	_, err := board.Toggle(context.Background(), nil, target.WorkflowID)
	assert.ErrorIs(t, err, auth.ErrSessionExpired)
	assert.Empty(t, f.store.CallLog())
}

func TestBoard_SubmitRefreshesList(t *testing.T) {
	f, board := newBoardFixture(t)
	ctx := context.Background()

	wz := board.OpenCreate()
	require.NoError(t, wz.SetBasicInfo(BasicInfo{Name: "Payroll sign-off", Type: models.WorkflowTypePayroll, IsActive: true}))
	require.NoError(t, wz.SetStage(0, roleStage("Finance", "ADMIN")))
	require.NoError(t, wz.Next())
	require.NoError(t, wz.Next())
	f.store.ResetCalls()

	id, err := board.Submit(ctx, f.session, wz)
	require.NoError(t, err)
	log := f.store.CallLog()
	assert.Equal(t, "GET /Workflow", log[len(log)-1])

	row, ok := board.Workflow(id)
	require.True(t, ok)
	assert.Equal(t, "Payroll sign-off", row.WorkflowName)
	assert.Equal(t, 4, board.Stats().Total)
}

func TestBoard_OpenEditLoadsStages(t *testing.T) {
	f, board := newBoardFixture(t)
	ctx := context.Background()
	created, err := f.rec.Create(ctx, f.session, leaveDraft(roleStage("a", "MANAGE")), f.roles)
	require.NoError(t, err)
	require.NoError(t, board.Refresh(ctx))

	wz, err := board.OpenEdit(ctx, created.WorkflowID)
	require.NoError(t, err)
	state := wz.State()
	assert.Equal(t, ModeEdit, state.Mode)
	require.Len(t, state.Draft.Stages, 1)
	assert.Equal(t, ApproverAssignment{Kind: KindRole, Value: "MANAGE"}, state.Draft.Stages[0].Approver)
	assert.NotNil(t, state.Draft.Stages[0].StageID)
	assert.NotNil(t, state.Draft.Stages[0].ApproverID)
}
