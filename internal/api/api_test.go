package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hrm-admin/console/internal/auth"
	"hrm-admin/console/internal/logging"
	"hrm-admin/console/internal/repository"
	"hrm-admin/console/internal/services"
	"hrm-admin/console/pkg/models"
)

type testAPI struct {
	e     *echo.Echo
	store *repository.MemoryStore
}

func newTestAPI(t *testing.T) *testAPI {
	t.Helper()
	store := repository.NewMemoryStore()
	store.PutRole(models.Role{RoleName: "ADMIN", IsActive: true})
	store.PutRole(models.Role{RoleName: "MANAGE", IsActive: true})
	store.PutLogin("admin", "secret", models.LoginResponse{AccessToken: "admin-token", UserID: 1, Username: "admin", Role: models.RoleAdmin})
	store.PutLogin("admin2", "secret", models.LoginResponse{AccessToken: "admin2-token", UserID: 2, Username: "admin2", Role: models.RoleAdmin})
	store.PutLogin("emp", "secret", models.LoginResponse{AccessToken: "emp-token", UserID: 5, Username: "emp", Role: models.RoleEmployee})

	logger := logging.Nop()
	rec := services.NewReconciler(store, logger)
	board := services.NewBoard(store, store, rec, logger, services.DefaultTimeoutHours)
	hr := services.NewHRService(store, store, store, logger)
	srv := NewServer(auth.New(store, logger), auth.NewRegistry(), board, hr, logger)

	e := echo.New()
	srv.Register(e, NewHandler("test"))
	return &testAPI{e: e, store: store}
}

func (a *testAPI) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var payload *strings.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		payload = strings.NewReader(string(raw))
	} else {
		payload = strings.NewReader("")
	}
	req := httptest.NewRequest(method, path, payload)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	if token != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	a.e.ServeHTTP(rec, req)
	return rec
}

func (a *testAPI) login(t *testing.T, username string) string {
	t.Helper()
	rec := a.do(t, http.MethodPost, "/api/v1/login", "", models.LoginRequest{Username: username, Password: "secret"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var resp LoginResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp.AccessToken
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func TestHealthz(t *testing.T) {
	a := newTestAPI(t)
	rec := a.do(t, http.MethodGet, "/healthz", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	status := decode[HealthStatus](t, rec)
	assert.Equal(t, "ok", status.Status)
	assert.Equal(t, "test", status.Version)
}

func TestLogin(t *testing.T) {
	a := newTestAPI(t)

	rec := a.do(t, http.MethodPost, "/api/v1/login", "", models.LoginRequest{Username: "admin", Password: "secret"})
	require.Equal(t, http.StatusOK, rec.Code)
	resp := decode[LoginResponse](t, rec)
	assert.Equal(t, "/dashboard/admin", resp.Landing)
	assert.Nil(t, resp.ExpiresAt)

	rec = a.do(t, http.MethodPost, "/api/v1/login", "", models.LoginRequest{Username: "admin", Password: "wrong"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	problem := decode[ProblemDetails](t, rec)
	assert.Equal(t, "Invalid username or password", problem.Detail)

	rec = a.do(t, http.MethodPost, "/api/v1/login", "", models.LoginRequest{})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestNavigationAndLogout(t *testing.T) {
	a := newTestAPI(t)
	token := a.login(t, "emp")

	rec := a.do(t, http.MethodGet, "/api/v1/navigation", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	nav := decode[NavigationResponse](t, rec)
	assert.Equal(t, "/dashboard/employee", nav.Landing)
	require.Len(t, nav.Menu, 1)
	assert.Equal(t, auth.SectionDashboard, nav.Menu[0].Section)
	assert.Equal(t, int64(-1), nav.RemainingSeconds)

	assert.Equal(t, http.StatusNoContent, a.do(t, http.MethodPost, "/api/v1/logout", token, nil).Code)
	assert.Equal(t, http.StatusUnauthorized, a.do(t, http.MethodGet, "/api/v1/navigation", token, nil).Code)
}

func TestSessionAndSectionGuards(t *testing.T) {
	a := newTestAPI(t)

	rec := a.do(t, http.MethodGet, "/api/v1/workflows", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "application/problem+json", rec.Header().Get(echo.HeaderContentType))

	assert.Equal(t, http.StatusUnauthorized, a.do(t, http.MethodGet, "/api/v1/workflows", "forged", nil).Code)

	emp := a.login(t, "emp")
	assert.Equal(t, http.StatusForbidden, a.do(t, http.MethodGet, "/api/v1/workflows", emp, nil).Code)
	assert.Equal(t, http.StatusForbidden, a.do(t, http.MethodPost, "/api/v1/wizards", emp, nil).Code)
	assert.Empty(t, a.store.CallLog()[1:], "a forbidden request reaches no backend")
}

func TestWorkflowListAndToggle(t *testing.T) {
	a := newTestAPI(t)
	token := a.login(t, "admin")
	leave := a.store.PutWorkflow(models.Workflow{WorkflowName: "Leave Approval", WorkflowType: models.WorkflowTypeLeave, IsActive: true})
	a.store.PutWorkflow(models.Workflow{WorkflowName: "Overtime Approval", WorkflowType: models.WorkflowTypeOvertime})

	rec := a.do(t, http.MethodGet, "/api/v1/workflows?active=true", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	list := decode[WorkflowList](t, rec)
	require.Len(t, list.Items, 1)
	assert.Equal(t, "Leave Approval", list.Items[0].WorkflowName)
	assert.Equal(t, services.Stats{Total: 2, Active: 1, Inactive: 1}, list.Stats)

	assert.Equal(t, http.StatusBadRequest, a.do(t, http.MethodGet, "/api/v1/workflows?active=maybe", token, nil).Code)

	a.store.ResetCalls()
	id := strconv.FormatInt(leave.WorkflowID, 10)
	rec = a.do(t, http.MethodPost, "/api/v1/workflows/"+id+"/toggle", token, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, ToggleResponse{WorkflowID: leave.WorkflowID, IsActive: false}, decode[ToggleResponse](t, rec))
	assert.Equal(t, []string{"DELETE /Workflow/" + id}, a.store.CallLog())

	assert.Equal(t, http.StatusNotFound, a.do(t, http.MethodPost, "/api/v1/workflows/999/toggle", token, nil).Code)
}

func TestWizardCreateFlow(t *testing.T) {
	a := newTestAPI(t)
	token := a.login(t, "admin")

	rec := a.do(t, http.MethodPost, "/api/v1/wizards", token, OpenWizardRequest{Mode: services.ModeCreate})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	wz := decode[WizardView](t, rec)
	require.NotEmpty(t, wz.ID)
	base := "/api/v1/wizards/" + wz.ID

	rec = a.do(t, http.MethodPost, base+"/next", token, nil)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	problem := decode[ProblemDetails](t, rec)
	assert.Contains(t, problem.Errors, "workflowName")

	rec = a.do(t, http.MethodPut, base+"/basic", token, services.BasicInfo{
		Name: "Leave Approval", Type: models.WorkflowTypeLeave, IsActive: true,
	})
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, http.StatusOK, a.do(t, http.MethodPost, base+"/next", token, nil).Code)

	rec = a.do(t, http.MethodPost, base+"/submit", token, nil)
	assert.Equal(t, http.StatusConflict, rec.Code, "submit only from the final step")

	rec = a.do(t, http.MethodPut, base+"/stages", token, []services.StageDraft{{
		Name:         "Manager Review",
		ApprovalType: services.ChoiceSingle,
		TimeoutHours: 24,
		Approver:     services.ApproverAssignment{Kind: services.KindRole, Value: "MANAGE"},
	}})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	rec = a.do(t, http.MethodPost, base+"/next", token, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, services.StepFinalize, decode[WizardView](t, rec).Step)

	a.store.ResetCalls()
	rec = a.do(t, http.MethodPost, base+"/submit", token, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	saved := decode[SubmitResponse](t, rec)
	assert.NotZero(t, saved.WorkflowID)
	assert.Equal(t, []string{
		"POST /Workflow",
		"POST /WorkflowStage",
		"POST /WorkflowStageApprove",
		"GET /Workflow",
	}, a.store.CallLog())

	assert.Equal(t, http.StatusNotFound, a.do(t, http.MethodGet, base, token, nil).Code, "wizard is discarded after saving")
}

func TestWizardStageEditing(t *testing.T) {
	a := newTestAPI(t)
	token := a.login(t, "admin")
	wz := decode[WizardView](t, a.do(t, http.MethodPost, "/api/v1/wizards", token, OpenWizardRequest{}))
	base := "/api/v1/wizards/" + wz.ID

	rec := a.do(t, http.MethodPost, base+"/stages", token, nil)
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Len(t, decode[WizardView](t, rec).Draft.Stages, 2)

	rec = a.do(t, http.MethodPut, base+"/stages/1/kind", token, map[string]string{"approverType": "dynamic"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, services.KindDynamic, decode[WizardView](t, rec).Draft.Stages[1].Approver.Kind)

	rec = a.do(t, http.MethodDelete, base+"/stages/1", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[WizardView](t, rec).Draft.Stages, 1)

	assert.Equal(t, http.StatusConflict, a.do(t, http.MethodDelete, base+"/stages/0", token, nil).Code)
	assert.Equal(t, http.StatusBadRequest, a.do(t, http.MethodDelete, base+"/stages/x", token, nil).Code)

	rec = a.do(t, http.MethodGet, base+"/options?kind=role", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]services.Option](t, rec), 2)

	assert.Equal(t, http.StatusNoContent, a.do(t, http.MethodDelete, base, token, nil).Code)
	assert.Equal(t, http.StatusNotFound, a.do(t, http.MethodGet, base, token, nil).Code)
}

func TestWizardBelongsToOpener(t *testing.T) {
	a := newTestAPI(t)
	owner := a.login(t, "admin")
	other := a.login(t, "admin2")

	wz := decode[WizardView](t, a.do(t, http.MethodPost, "/api/v1/wizards", owner, OpenWizardRequest{}))
	assert.Equal(t, http.StatusNotFound, a.do(t, http.MethodGet, "/api/v1/wizards/"+wz.ID, other, nil).Code)
	assert.Equal(t, http.StatusOK, a.do(t, http.MethodGet, "/api/v1/wizards/"+wz.ID, owner, nil).Code)
}

func TestOpenEditWizard(t *testing.T) {
	a := newTestAPI(t)
	token := a.login(t, "admin")

	assert.Equal(t, http.StatusBadRequest,
		a.do(t, http.MethodPost, "/api/v1/wizards", token, OpenWizardRequest{Mode: services.ModeEdit}).Code)

	w := a.store.PutWorkflow(models.Workflow{
		WorkflowName: "Payroll", WorkflowType: models.WorkflowTypePayroll, IsActive: true,
		WorkflowStages: []models.WorkflowStage{{StageName: "Finance", StageOrder: 1}},
	})
	rec := a.do(t, http.MethodPost, "/api/v1/wizards", token, OpenWizardRequest{Mode: services.ModeEdit, WorkflowID: w.WorkflowID})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	view := decode[WizardView](t, rec)
	assert.Equal(t, services.ModeEdit, view.Mode)
	assert.Equal(t, w.WorkflowID, view.WorkflowID)
	require.Len(t, view.Draft.Stages, 1)
	assert.Equal(t, "Finance", view.Draft.Stages[0].Name)
}

func TestTasks(t *testing.T) {
	a := newTestAPI(t)
	token := a.login(t, "admin")
	open := a.store.PutTask(models.Task{TaskTitle: "Review leave", Status: models.TaskPending, AssignedTo: 1})
	done := a.store.PutTask(models.Task{TaskTitle: "Old request", Status: models.TaskApproved, AssignedTo: 1})
	a.store.PutTask(models.Task{TaskTitle: "Someone else", Status: models.TaskPending, AssignedTo: 9})

	rec := a.do(t, http.MethodGet, "/api/v1/tasks", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]models.Task](t, rec), 2)

	path := "/api/v1/tasks/" + strconv.FormatInt(open.TaskID, 10) + "/reject"
	rec = a.do(t, http.MethodPost, path, token, map[string]string{"reason": "no"})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, decode[ProblemDetails](t, rec).Errors, "reason")

	rec = a.do(t, http.MethodPost, path, token, map[string]string{"reason": "overlaps with release week"})
	assert.Equal(t, http.StatusNoContent, rec.Code, rec.Body.String())

	path = "/api/v1/tasks/" + strconv.FormatInt(done.TaskID, 10) + "/approve"
	assert.Equal(t, http.StatusConflict, a.do(t, http.MethodPost, path, token, nil).Code)
}

func TestUserCreateAndEdit(t *testing.T) {
	a := newTestAPI(t)
	token := a.login(t, "admin")

	rec := a.do(t, http.MethodPost, "/api/v1/users", token, models.UserRequest{Username: "jane", Email: "jane"})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	problem := decode[ProblemDetails](t, rec)
	assert.Contains(t, problem.Errors, "email")
	assert.Contains(t, problem.Errors, "password")

	rec = a.do(t, http.MethodPost, "/api/v1/users", token,
		models.UserRequest{Username: "jane", Email: "jane@example.com", Password: "pw", Roles: []string{"MANAGE"}})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	user := decode[models.User](t, rec)
	assert.Equal(t, []string{"MANAGE"}, user.Roles)

	path := "/api/v1/users/" + strconv.FormatInt(user.UserID, 10)
	rec = a.do(t, http.MethodPut, path, token, models.UserRequest{Username: "jane.doe", Email: "jane@example.com"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "jane.doe", decode[models.User](t, rec).Username)

	rec = a.do(t, http.MethodGet, "/api/v1/users", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"jane.doe"`)

	assert.Equal(t, http.StatusNotFound,
		a.do(t, http.MethodPut, "/api/v1/users/999", token, models.UserRequest{Username: "x", Email: "x@example.com"}).Code)

	emp := a.login(t, "emp")
	assert.Equal(t, http.StatusForbidden,
		a.do(t, http.MethodPost, "/api/v1/users", emp, models.UserRequest{Username: "x", Email: "x@example.com", Password: "pw"}).Code)
}

func TestTaskEdit(t *testing.T) {
	a := newTestAPI(t)
	task := a.store.PutTask(models.Task{TaskTitle: "Review leave", Priority: models.PriorityLow, Status: models.TaskPending, AssignedTo: 1})
	path := "/api/v1/tasks/" + strconv.FormatInt(task.TaskID, 10)

	token := a.login(t, "admin")
	rec := a.do(t, http.MethodPut, path, token, models.TaskRequest{Priority: models.PriorityHigh})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	got := decode[models.Task](t, rec)
	assert.Equal(t, models.PriorityHigh, got.Priority)
	assert.Equal(t, "Review leave", got.TaskTitle)

	assert.Equal(t, http.StatusBadRequest, a.do(t, http.MethodPut, path, token, models.TaskRequest{}).Code)

	emp := a.login(t, "emp")
	assert.Equal(t, http.StatusForbidden, a.do(t, http.MethodPut, path, emp, models.TaskRequest{TaskTitle: "x"}).Code)
}

func TestAttendance(t *testing.T) {
	a := newTestAPI(t)
	token := a.login(t, "emp")

	rec := a.do(t, http.MethodPost, "/api/v1/attendance/check-in", token, map[string]string{"location": "HQ"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, http.StatusConflict, a.do(t, http.MethodPost, "/api/v1/attendance/check-in", token, nil).Code)

	require.Equal(t, http.StatusOK, a.do(t, http.MethodPost, "/api/v1/attendance/check-out", token, nil).Code)
	rec = a.do(t, http.MethodGet, "/api/v1/attendance/history", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]models.AttendanceRecord](t, rec), 1)
}

func TestStatusOf(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"validation", services.ValidationErrors{"x": "is required"}, http.StatusBadRequest},
		{"session", auth.ErrSessionExpired, http.StatusUnauthorized},
		{"forbidden", services.ErrForbidden, http.StatusForbidden},
		{"not found", repository.ErrNotFound, http.StatusNotFound},
		{"wizard state", services.ErrSubmitting, http.StatusConflict},
		{"upstream", &repository.RequestError{Status: http.StatusInternalServerError}, http.StatusBadGateway},
		{"upstream 404", &repository.RequestError{Status: http.StatusNotFound}, http.StatusNotFound},
		{"upstream conflict", &repository.RequestError{Status: http.StatusConflict}, http.StatusConflict},
		{"echo", echo.NewHTTPError(http.StatusTeapot), http.StatusTeapot},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, statusOf(tt.err))
		})
	}
}
