package repository

import (
	"context"
	"fmt"
	"net/http"
	"sort"
	"sync"
	"time"

	"hrm-admin/console/pkg/models"
)

// Call is one request received by a MemoryStore, in REST form.
type Call struct {
	Method string
	Path   string
	Body   any
	Token  string
}

// String renders the call as "METHOD /path".
func (c Call) String() string {
	return c.Method + " " + c.Path
}

// MemoryStore is an in-process Backend. It mirrors the REST contract closely
// enough for offline runs and records every call so callers can assert on
// request order.
type MemoryStore struct {
	mu sync.Mutex

	workflows  []models.Workflow
	stages     []models.WorkflowStage
	approvers  []models.WorkflowStageApprover
	users      []models.User
	roles      []models.Role
	tasks      []models.Task
	attendance map[int64][]models.AttendanceRecord
	logins     map[string]memoryLogin

	nextID   int64
	calls    []Call
	failures map[string]error

	// Now stamps created records. Defaults to time.Now.
	Now func() time.Time
}

type memoryLogin struct {
	password string
	resp     models.LoginResponse
}

var _ Backend = (*MemoryStore)(nil)

// NewMemoryStore returns an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		attendance: make(map[int64][]models.AttendanceRecord),
		logins:     make(map[string]memoryLogin),
		failures:   make(map[string]error),
		Now:        time.Now,
	}
}

// FailOn makes every call matching method and path return err.
func (m *MemoryStore) FailOn(method, path string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failures[method+" "+path] = err
}

// Calls returns the calls received so far.
func (m *MemoryStore) Calls() []Call {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Call(nil), m.calls...)
}

// CallLog returns the calls received so far as "METHOD /path" strings.
func (m *MemoryStore) CallLog() []string {
	calls := m.Calls()
	out := make([]string, len(calls))
	for i, c := range calls {
		out[i] = c.String()
	}
	return out
}

// ResetCalls clears the call log.
func (m *MemoryStore) ResetCalls() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = nil
}

// PutRole stores r, assigning an id when it has none.
func (m *MemoryStore) PutRole(r models.Role) models.Role {
	m.mu.Lock()
	defer m.mu.Unlock()
	if r.RoleID == 0 {
		r.RoleID = m.id()
	}
	m.roles = append(m.roles, r)
	return r
}

// PutUser stores u, assigning an id when it has none.
func (m *MemoryStore) PutUser(u models.User) models.User {
	m.mu.Lock()
	defer m.mu.Unlock()
	if u.UserID == 0 {
		u.UserID = m.id()
	}
	m.users = append(m.users, u)
	return u
}

// PutTask stores t, assigning an id when it has none.
func (m *MemoryStore) PutTask(t models.Task) models.Task {
	m.mu.Lock()
	defer m.mu.Unlock()
	if t.TaskID == 0 {
		t.TaskID = m.id()
	}
	m.tasks = append(m.tasks, t)
	return t
}

// PutLogin registers credentials that Login will accept.
func (m *MemoryStore) PutLogin(username, password string, resp models.LoginResponse) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.logins[username] = memoryLogin{password: password, resp: resp}
}

// PutWorkflow stores w together with its embedded stages and approvers,
// assigning ids where missing, and returns the stored copy.
func (m *MemoryStore) PutWorkflow(w models.Workflow) models.Workflow {
	m.mu.Lock()
	defer m.mu.Unlock()
	if w.WorkflowID == 0 {
		w.WorkflowID = m.id()
	}
	for _, st := range w.WorkflowStages {
		if st.StageID == 0 {
			st.StageID = m.id()
		}
		st.WorkflowID = w.WorkflowID
		for _, a := range st.Approvers {
			if a.ID == 0 {
				a.ID = m.id()
			}
			a.StageID = st.StageID
			m.approvers = append(m.approvers, a)
		}
		st.Approvers = nil
		m.stages = append(m.stages, st)
	}
	w.WorkflowStages = nil
	m.workflows = append(m.workflows, w)
	return m.workflowView(w)
}

func (m *MemoryStore) id() int64 {
	m.nextID++
	return m.nextID
}

// begin records the call and returns the injected failure, if any.
func (m *MemoryStore) begin(method, path string, body any, token string) error {
	m.calls = append(m.calls, Call{Method: method, Path: path, Body: body, Token: token})
	return m.failures[method+" "+path]
}

func notFound(method, path, what string) error {
	return &RequestError{Method: method, Path: path, Status: http.StatusNotFound, Message: what + " not found"}
}

func (m *MemoryStore) stamp() string {
	return m.Now().UTC().Format(time.RFC3339)
}

func (m *MemoryStore) stageView(st models.WorkflowStage) models.WorkflowStage {
	st.Approvers = nil
	for _, a := range m.approvers {
		if a.StageID == st.StageID {
			st.Approvers = append(st.Approvers, a)
		}
	}
	return st
}

func (m *MemoryStore) stagesOf(workflowID int64) []models.WorkflowStage {
	var out []models.WorkflowStage
	for _, st := range m.stages {
		if st.WorkflowID == workflowID {
			out = append(out, m.stageView(st))
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].StageOrder < out[j].StageOrder })
	return out
}

func (m *MemoryStore) workflowView(w models.Workflow) models.Workflow {
	w.WorkflowStages = m.stagesOf(w.WorkflowID)
	return w
}

func (m *MemoryStore) ListWorkflows(ctx context.Context) ([]models.Workflow, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.begin(http.MethodGet, "/Workflow", nil, ""); err != nil {
		return nil, err
	}
	out := make([]models.Workflow, 0, len(m.workflows))
	for _, w := range m.workflows {
		out = append(out, m.workflowView(w))
	}
	return out, nil
}

func (m *MemoryStore) GetWorkflow(ctx context.Context, id int64) (*models.Workflow, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	path := fmt.Sprintf("/Workflow/%d", id)
	if err := m.begin(http.MethodGet, path, nil, ""); err != nil {
		return nil, err
	}
	for _, w := range m.workflows {
		if w.WorkflowID == id {
			view := m.workflowView(w)
			return &view, nil
		}
	}
	return nil, notFound(http.MethodGet, path, "workflow")
}

func (m *MemoryStore) CreateWorkflow(ctx context.Context, req models.WorkflowRequest, token string) (*models.Workflow, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.begin(http.MethodPost, "/Workflow", req, token); err != nil {
		return nil, err
	}
	w := models.Workflow{
		WorkflowID:    m.id(),
		WorkflowName:  req.WorkflowName,
		WorkflowType:  req.WorkflowType,
		Description:   req.Description,
		EffectiveDate: req.EffectiveDate,
		IsActive:      req.IsActive,
		CreatedDate:   m.stamp(),
	}
	m.workflows = append(m.workflows, w)
	return &w, nil
}

func (m *MemoryStore) UpdateWorkflow(ctx context.Context, id int64, req models.WorkflowRequest, token string) (*models.Workflow, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	path := fmt.Sprintf("/Workflow/%d", id)
	if err := m.begin(http.MethodPut, path, req, token); err != nil {
		return nil, err
	}
	for i := range m.workflows {
		w := &m.workflows[i]
		if w.WorkflowID != id {
			continue
		}
		w.WorkflowName = req.WorkflowName
		w.WorkflowType = req.WorkflowType
		w.Description = req.Description
		if req.EffectiveDate != nil {
			w.EffectiveDate = req.EffectiveDate
		}
		w.IsActive = req.IsActive
		modified := m.stamp()
		w.ModifiedDate = &modified
		updated := *w
		return &updated, nil
	}
	return nil, notFound(http.MethodPut, path, "workflow")
}

func (m *MemoryStore) DeleteWorkflow(ctx context.Context, id int64, token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	path := fmt.Sprintf("/Workflow/%d", id)
	if err := m.begin(http.MethodDelete, path, nil, token); err != nil {
		return err
	}
	for i := range m.workflows {
		if m.workflows[i].WorkflowID == id {
			m.workflows[i].IsActive = false
			return nil
		}
	}
	return notFound(http.MethodDelete, path, "workflow")
}

func (m *MemoryStore) ListStages(ctx context.Context, workflowID int64) ([]models.WorkflowStage, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.begin(http.MethodGet, fmt.Sprintf("/WorkflowStage/workflow/%d", workflowID), nil, ""); err != nil {
		return nil, err
	}
	return m.stagesOf(workflowID), nil
}

func (m *MemoryStore) CreateStage(ctx context.Context, req models.CreateStageRequest, token string) (*models.WorkflowStage, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.begin(http.MethodPost, "/WorkflowStage", req, token); err != nil {
		return nil, err
	}
	timeout := req.TimeoutHours
	st := models.WorkflowStage{
		StageID:       m.id(),
		WorkflowID:    req.WorkflowID,
		StageOrder:    req.StageOrder,
		StageName:     req.StageName,
		ApprovalType:  req.ApprovalType,
		TimeoutHours:  &timeout,
		IsAutoApprove: req.IsAutoApprove,
		CreatedDate:   m.stamp(),
	}
	m.stages = append(m.stages, st)
	return &st, nil
}

func (m *MemoryStore) UpdateStage(ctx context.Context, id int64, req models.UpdateStageRequest, token string) (*models.WorkflowStage, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	path := fmt.Sprintf("/WorkflowStage/%d", id)
	if err := m.begin(http.MethodPut, path, req, token); err != nil {
		return nil, err
	}
	for i := range m.stages {
		st := &m.stages[i]
		if st.StageID != id {
			continue
		}
		timeout := req.TimeoutHours
		st.StageOrder = req.StageOrder
		st.StageName = req.StageName
		st.ApprovalType = req.ApprovalType
		st.TimeoutHours = &timeout
		st.IsAutoApprove = req.IsAutoApprove
		updated := m.stageView(*st)
		return &updated, nil
	}
	return nil, notFound(http.MethodPut, path, "stage")
}

// DeleteStage refuses to remove a stage that still has approvers.
func (m *MemoryStore) DeleteStage(ctx context.Context, id int64, token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	path := fmt.Sprintf("/WorkflowStage/%d", id)
	if err := m.begin(http.MethodDelete, path, nil, token); err != nil {
		return err
	}
	for _, a := range m.approvers {
		if a.StageID == id {
			return &RequestError{Method: http.MethodDelete, Path: path, Status: http.StatusConflict,
				Message: "stage still has approvers"}
		}
	}
	for i, st := range m.stages {
		if st.StageID == id {
			m.stages = append(m.stages[:i], m.stages[i+1:]...)
			return nil
		}
	}
	return notFound(http.MethodDelete, path, "stage")
}

func (m *MemoryStore) ListApprovers(ctx context.Context, stageID int64, token string) ([]models.WorkflowStageApprover, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.begin(http.MethodGet, fmt.Sprintf("/WorkflowStageApprove/stage/%d", stageID), nil, token); err != nil {
		return nil, err
	}
	var out []models.WorkflowStageApprover
	for _, a := range m.approvers {
		if a.StageID == stageID {
			out = append(out, a)
		}
	}
	return out, nil
}

func (m *MemoryStore) CreateApprover(ctx context.Context, req models.CreateApproverRequest, token string) (*models.WorkflowStageApprover, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.begin(http.MethodPost, "/WorkflowStageApprove", req, token); err != nil {
		return nil, err
	}
	found := false
	for _, st := range m.stages {
		if st.StageID == req.StageID {
			found = true
			break
		}
	}
	if !found {
		return nil, notFound(http.MethodPost, "/WorkflowStageApprove", "stage")
	}
	a := models.WorkflowStageApprover{
		ID:           m.id(),
		StageID:      req.StageID,
		ApproverType: req.ApproverType,
		RoleID:       req.RoleID,
		UserID:       req.UserID,
		IsDynamic:    req.IsDynamic,
		DynamicRule:  req.DynamicRule,
	}
	m.approvers = append(m.approvers, a)
	return &a, nil
}

func (m *MemoryStore) UpdateApprover(ctx context.Context, id int64, req models.UpdateApproverRequest, token string) (*models.WorkflowStageApprover, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	path := fmt.Sprintf("/WorkflowStageApprove/%d", id)
	if err := m.begin(http.MethodPut, path, req, token); err != nil {
		return nil, err
	}
	for i := range m.approvers {
		a := &m.approvers[i]
		if a.ID != id {
			continue
		}
		a.ApproverType = req.ApproverType
		a.RoleID = req.RoleID
		a.UserID = req.UserID
		a.DynamicRule = req.DynamicRule
		a.IsDynamic = req.ApproverType == models.ApproverTypeDynamic
		updated := *a
		return &updated, nil
	}
	return nil, notFound(http.MethodPut, path, "approver")
}

func (m *MemoryStore) DeleteApprover(ctx context.Context, id int64, token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	path := fmt.Sprintf("/WorkflowStageApprove/%d", id)
	if err := m.begin(http.MethodDelete, path, nil, token); err != nil {
		return err
	}
	for i, a := range m.approvers {
		if a.ID == id {
			m.approvers = append(m.approvers[:i], m.approvers[i+1:]...)
			return nil
		}
	}
	return notFound(http.MethodDelete, path, "approver")
}
