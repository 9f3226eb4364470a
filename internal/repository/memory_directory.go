package repository

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"hrm-admin/console/pkg/models"
)

func (m *MemoryStore) ListUsers(ctx context.Context, token string) ([]models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.begin(http.MethodGet, "/User", nil, token); err != nil {
		return nil, err
	}
	return append([]models.User(nil), m.users...), nil
}

func (m *MemoryStore) CreateUser(ctx context.Context, req models.UserRequest, token string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.begin(http.MethodPost, "/User", req, token); err != nil {
		return nil, err
	}
	u := models.User{UserID: m.id(), Username: req.Username, Email: req.Email, IsActive: true, Roles: req.Roles}
	m.users = append(m.users, u)
	return &u, nil
}

func (m *MemoryStore) UpdateUser(ctx context.Context, id int64, req models.UserRequest, token string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	path := fmt.Sprintf("/User/%d", id)
	if err := m.begin(http.MethodPut, path, req, token); err != nil {
		return nil, err
	}
	for i := range m.users {
		u := &m.users[i]
		if u.UserID != id {
			continue
		}
		u.Username = req.Username
		u.Email = req.Email
		if req.Roles != nil {
			u.Roles = req.Roles
		}
		updated := *u
		return &updated, nil
	}
	return nil, notFound(http.MethodPut, path, "user")
}

func (m *MemoryStore) setUserActive(id int64, active bool, token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	action := "deactivate"
	if active {
		action = "activate"
	}
	path := fmt.Sprintf("/User/%d/%s", id, action)
	if err := m.begin(http.MethodPatch, path, nil, token); err != nil {
		return err
	}
	for i := range m.users {
		if m.users[i].UserID == id {
			m.users[i].IsActive = active
			return nil
		}
	}
	return notFound(http.MethodPatch, path, "user")
}

func (m *MemoryStore) ActivateUser(ctx context.Context, id int64, token string) error {
	return m.setUserActive(id, true, token)
}

func (m *MemoryStore) DeactivateUser(ctx context.Context, id int64, token string) error {
	return m.setUserActive(id, false, token)
}

func (m *MemoryStore) ListRoles(ctx context.Context, token string) ([]models.Role, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.begin(http.MethodGet, "/Role", nil, token); err != nil {
		return nil, err
	}
	return append([]models.Role(nil), m.roles...), nil
}

func (m *MemoryStore) CreateRole(ctx context.Context, req models.RoleRequest, token string) (*models.Role, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.begin(http.MethodPost, "/Role", req, token); err != nil {
		return nil, err
	}
	for _, r := range m.roles {
		if r.RoleName == req.RoleName {
			return nil, &RequestError{Method: http.MethodPost, Path: "/Role", Status: http.StatusConflict,
				Message: fmt.Sprintf("role %s already exists", req.RoleName)}
		}
	}
	r := models.Role{RoleID: m.id(), RoleName: req.RoleName, Description: req.Description, IsActive: true}
	m.roles = append(m.roles, r)
	return &r, nil
}

func (m *MemoryStore) SetRoleStatus(ctx context.Context, id int64, active bool, token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	path := fmt.Sprintf("/Role/%d/status?isActive=%t", id, active)
	if err := m.begin(http.MethodPatch, path, nil, token); err != nil {
		return err
	}
	for i := range m.roles {
		if m.roles[i].RoleID == id {
			m.roles[i].IsActive = active
			return nil
		}
	}
	return notFound(http.MethodPatch, path, "role")
}

func (m *MemoryStore) ListTasks(ctx context.Context, token string) ([]models.Task, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.begin(http.MethodGet, "/Task", nil, token); err != nil {
		return nil, err
	}
	return append([]models.Task(nil), m.tasks...), nil
}

func (m *MemoryStore) GetTask(ctx context.Context, id int64, token string) (*models.Task, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	path := fmt.Sprintf("/Task/%d", id)
	if err := m.begin(http.MethodGet, path, nil, token); err != nil {
		return nil, err
	}
	for _, t := range m.tasks {
		if t.TaskID == id {
			return &t, nil
		}
	}
	return nil, notFound(http.MethodGet, path, "task")
}

func (m *MemoryStore) CreateTask(ctx context.Context, req models.TaskRequest, token string) (*models.Task, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.begin(http.MethodPost, "/Task", req, token); err != nil {
		return nil, err
	}
	t := models.Task{
		TaskID:      m.id(),
		TaskTitle:   req.TaskTitle,
		TaskType:    req.TaskType,
		Priority:    req.Priority,
		Status:      models.TaskPending,
		AssignedTo:  req.AssignedTo,
		CreatedDate: m.stamp(),
	}
	if req.TaskDescription != "" {
		desc := req.TaskDescription
		t.TaskDescription = &desc
	}
	if req.DueDate != "" {
		due := req.DueDate
		t.DueDate = &due
	}
	m.tasks = append(m.tasks, t)
	return &t, nil
}

func (m *MemoryStore) UpdateTask(ctx context.Context, id int64, req models.TaskRequest, token string) (*models.Task, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	path := fmt.Sprintf("/Task/%d", id)
	if err := m.begin(http.MethodPut, path, req, token); err != nil {
		return nil, err
	}
	for i := range m.tasks {
		t := &m.tasks[i]
		if t.TaskID != id {
			continue
		}
		if req.TaskTitle != "" {
			t.TaskTitle = req.TaskTitle
		}
		if req.Priority != "" {
			t.Priority = req.Priority
		}
		if req.AssignedTo != 0 {
			t.AssignedTo = req.AssignedTo
		}
		if req.CompletionNotes != "" {
			notes := req.CompletionNotes
			t.CompletionNotes = &notes
		}
		updated := *t
		return &updated, nil
	}
	return nil, notFound(http.MethodPut, path, "task")
}

func (m *MemoryStore) decideTask(id int64, action string, body any, status models.TaskStatus, token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	path := fmt.Sprintf("/Task/%d/%s", id, action)
	if err := m.begin(http.MethodPatch, path, body, token); err != nil {
		return err
	}
	for i := range m.tasks {
		t := &m.tasks[i]
		if t.TaskID != id {
			continue
		}
		if !t.Status.Decidable() {
			return &RequestError{Method: http.MethodPatch, Path: path, Status: http.StatusBadRequest,
				Message: fmt.Sprintf("task is already %s", t.Status)}
		}
		t.Status = status
		done := m.stamp()
		t.CompletedDate = &done
		return nil
	}
	return notFound(http.MethodPatch, path, "task")
}

func (m *MemoryStore) ApproveTask(ctx context.Context, id int64, comments string, token string) error {
	return m.decideTask(id, "approve", map[string]string{"comments": comments}, models.TaskApproved, token)
}

func (m *MemoryStore) RejectTask(ctx context.Context, id int64, reason string, token string) error {
	return m.decideTask(id, "reject", map[string]string{"reason": reason}, models.TaskRejected, token)
}

func (m *MemoryStore) CancelTask(ctx context.Context, id int64, token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	path := fmt.Sprintf("/Task/%d", id)
	if err := m.begin(http.MethodDelete, path, nil, token); err != nil {
		return err
	}
	for i := range m.tasks {
		if m.tasks[i].TaskID == id {
			m.tasks[i].Status = models.TaskCancelled
			return nil
		}
	}
	return notFound(http.MethodDelete, path, "task")
}

func (m *MemoryStore) CheckIn(ctx context.Context, req models.CheckInRequest, token string) (*models.AttendanceResponse, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.begin(http.MethodPost, "/attendance/check-in", req, token); err != nil {
		return nil, err
	}
	now := m.Now()
	date := now.Format(time.DateOnly)
	for _, rec := range m.attendance[req.EmployeeID] {
		if rec.Date == date {
			return nil, &RequestError{Method: http.MethodPost, Path: "/attendance/check-in", Status: http.StatusConflict,
				Message: "already checked in today"}
		}
	}
	checkIn := now.Format(time.TimeOnly)
	m.attendance[req.EmployeeID] = append(m.attendance[req.EmployeeID], models.AttendanceRecord{
		Date:    date,
		CheckIn: &checkIn,
		Status:  "Present",
	})
	return &models.AttendanceResponse{
		AttendanceID:   m.id(),
		AttendanceDate: date,
		CheckInTime:    checkIn,
		Status:         "Present",
		Message:        "Checked in",
	}, nil
}

func (m *MemoryStore) CheckOut(ctx context.Context, employeeID int64, token string) (*models.AttendanceResponse, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	path := fmt.Sprintf("/attendance/check-out/%d", employeeID)
	if err := m.begin(http.MethodPost, path, nil, token); err != nil {
		return nil, err
	}
	now := m.Now()
	date := now.Format(time.DateOnly)
	records := m.attendance[employeeID]
	for i := range records {
		rec := &records[i]
		if rec.Date != date || rec.CheckIn == nil {
			continue
		}
		if rec.CheckOut != nil {
			return nil, &RequestError{Method: http.MethodPost, Path: path, Status: http.StatusConflict,
				Message: "already checked out today"}
		}
		checkOut := now.Format(time.TimeOnly)
		rec.CheckOut = &checkOut
		if in, err := time.Parse(time.TimeOnly, *rec.CheckIn); err == nil {
			out, _ := time.Parse(time.TimeOnly, checkOut)
			hours := out.Sub(in).Hours()
			rec.TotalHours = &hours
		}
		return &models.AttendanceResponse{
			AttendanceDate: date,
			CheckInTime:    *rec.CheckIn,
			Status:         rec.Status,
			Message:        "Checked out",
		}, nil
	}
	return nil, &RequestError{Method: http.MethodPost, Path: path, Status: http.StatusBadRequest,
		Message: "no check-in recorded today"}
}

func (m *MemoryStore) History(ctx context.Context, employeeID int64, token string) ([]models.AttendanceRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.begin(http.MethodGet, fmt.Sprintf("/attendance/history/%d", employeeID), nil, token); err != nil {
		return nil, err
	}
	return append([]models.AttendanceRecord(nil), m.attendance[employeeID]...), nil
}

func (m *MemoryStore) Login(ctx context.Context, req models.LoginRequest) (*models.LoginResponse, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.begin(http.MethodPost, "/Auth/login", models.LoginRequest{Username: req.Username}, ""); err != nil {
		return nil, err
	}
	login, ok := m.logins[req.Username]
	if !ok || login.password != req.Password {
		return nil, &RequestError{Method: http.MethodPost, Path: "/Auth/login", Status: http.StatusUnauthorized,
			Message: "Invalid username or password"}
	}
	resp := login.resp
	return &resp, nil
}
