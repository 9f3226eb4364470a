package services

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"

	"hrm-admin/console/internal/auth"
	"hrm-admin/console/internal/repository"
	"hrm-admin/console/pkg/models"
)

// MinRejectReason is the shortest accepted rejection reason.
const MinRejectReason = 10

// HRService covers the thin CRUD screens: users, roles, tasks and attendance.
type HRService struct {
	dir        repository.DirectoryStore
	tasks      repository.TaskStore
	attendance repository.AttendanceStore
	logger     Logger
	validate   *validator.Validate
}

// NewHRService creates an HRService.
func NewHRService(dir repository.DirectoryStore, tasks repository.TaskStore, attendance repository.AttendanceStore,
	logger Logger) *HRService {
	return &HRService{dir: dir, tasks: tasks, attendance: attendance, logger: logger, validate: newValidator()}
}

func (s *HRService) ListUsers(ctx context.Context, session *auth.Session) ([]models.User, error) {
	if err := session.Require(); err != nil {
		return nil, err
	}
	return s.dir.ListUsers(ctx, session.AccessToken())
}

func normalizeUser(req models.UserRequest) models.UserRequest {
	req.Username = strings.TrimSpace(req.Username)
	req.Email = strings.TrimSpace(req.Email)
	roles := make([]string, 0, len(req.Roles))
	for _, r := range req.Roles {
		if r = strings.ToUpper(strings.TrimSpace(r)); r != "" {
			roles = append(roles, r)
		}
	}
	req.Roles = nil
	if len(roles) > 0 {
		req.Roles = roles
	}
	return req
}

// CreateUser adds an account. Username, email and password are required.
func (s *HRService) CreateUser(ctx context.Context, session *auth.Session, req models.UserRequest) (*models.User, error) {
	if err := session.Require(); err != nil {
		return nil, err
	}
	req = normalizeUser(req)
	if errs := validateUser(s.validate, req, true); errs != nil {
		return nil, errs
	}
	user, err := s.dir.CreateUser(ctx, req, session.AccessToken())
	if err != nil {
		return nil, fmt.Errorf("create user %q: %w", req.Username, err)
	}
	s.logger.Info("user created", "user_id", user.UserID, "username", user.Username)
	return user, nil
}

// UpdateUser edits an account. An empty password leaves it unchanged and nil
// roles keep the current assignment.
func (s *HRService) UpdateUser(ctx context.Context, session *auth.Session, id int64, req models.UserRequest) (*models.User, error) {
	if err := session.Require(); err != nil {
		return nil, err
	}
	req = normalizeUser(req)
	if errs := validateUser(s.validate, req, false); errs != nil {
		return nil, errs
	}
	user, err := s.dir.UpdateUser(ctx, id, req, session.AccessToken())
	if err != nil {
		return nil, fmt.Errorf("update user %d: %w", id, err)
	}
	s.logger.Info("user updated", "user_id", id)
	return user, nil
}

// SetUserActive activates or deactivates a user account.
func (s *HRService) SetUserActive(ctx context.Context, session *auth.Session, id int64, active bool) error {
	if err := session.Require(); err != nil {
		return err
	}
	var err error
	if active {
		err = s.dir.ActivateUser(ctx, id, session.AccessToken())
	} else {
		err = s.dir.DeactivateUser(ctx, id, session.AccessToken())
	}
	if err != nil {
		return fmt.Errorf("set user %d active=%t: %w", id, active, err)
	}
	s.logger.Info("user status changed", "user_id", id, "active", active)
	return nil
}

func (s *HRService) ListRoles(ctx context.Context, session *auth.Session) ([]models.Role, error) {
	if err := session.Require(); err != nil {
		return nil, err
	}
	return s.dir.ListRoles(ctx, session.AccessToken())
}

// CreateRole adds a role. Names are upper-cased like the built-in roles.
func (s *HRService) CreateRole(ctx context.Context, session *auth.Session, name, description string) (*models.Role, error) {
	if err := session.Require(); err != nil {
		return nil, err
	}
	name = strings.ToUpper(strings.TrimSpace(name))
	if name == "" {
		return nil, ValidationErrors{"roleName": "is required"}
	}
	req := models.RoleRequest{RoleName: name}
	if description != "" {
		req.Description = &description
	}
	return s.dir.CreateRole(ctx, req, session.AccessToken())
}

func (s *HRService) SetRoleStatus(ctx context.Context, session *auth.Session, id int64, active bool) error {
	if err := session.Require(); err != nil {
		return err
	}
	return s.dir.SetRoleStatus(ctx, id, active, session.AccessToken())
}

// TaskFilter narrows the task list. Zero fields match everything.
type TaskFilter struct {
	Search   string
	Priority models.TaskPriority
	Status   models.TaskStatus
}

// FilterTasks keeps the tasks assigned to or created by userID that match f.
// Search looks at the id, title and type.
func FilterTasks(tasks []models.Task, userID int64, f TaskFilter) []models.Task {
	search := strings.ToLower(strings.TrimSpace(f.Search))
	out := make([]models.Task, 0, len(tasks))
	for _, t := range tasks {
		if t.AssignedTo != userID && t.CreatedBy != userID {
			continue
		}
		if search != "" &&
			!strings.Contains(strconv.FormatInt(t.TaskID, 10), search) &&
			!strings.Contains(strings.ToLower(t.TaskTitle), search) &&
			!strings.Contains(strings.ToLower(t.TaskType), search) {
			continue
		}
		if f.Priority != "" && t.Priority != f.Priority {
			continue
		}
		if f.Status != "" && t.Status != f.Status {
			continue
		}
		out = append(out, t)
	}
	return out
}

// ListTasks returns the session user's tasks matching f.
func (s *HRService) ListTasks(ctx context.Context, session *auth.Session, f TaskFilter) ([]models.Task, error) {
	if err := session.Require(); err != nil {
		return nil, err
	}
	tasks, err := s.tasks.ListTasks(ctx, session.AccessToken())
	if err != nil {
		return nil, err
	}
	return FilterTasks(tasks, session.UserID, f), nil
}

// CanCreateTasks reports whether role may create tasks.
func CanCreateTasks(role models.RoleName) bool {
	return role == models.RoleAdmin || role == models.RoleManage || role == models.RoleHR
}

func (s *HRService) CreateTask(ctx context.Context, session *auth.Session, req models.TaskRequest) (*models.Task, error) {
	if err := session.Require(); err != nil {
		return nil, err
	}
	if !CanCreateTasks(session.Role) {
		return nil, ErrForbidden
	}
	if strings.TrimSpace(req.TaskTitle) == "" {
		return nil, ValidationErrors{"taskTitle": "is required"}
	}
	return s.tasks.CreateTask(ctx, req, session.AccessToken())
}

// UpdateTask edits a task. Empty fields are left unchanged, so at least one
// must be set. Only roles that may create tasks may edit them.
func (s *HRService) UpdateTask(ctx context.Context, session *auth.Session, id int64, req models.TaskRequest) (*models.Task, error) {
	if err := session.Require(); err != nil {
		return nil, err
	}
	if !CanCreateTasks(session.Role) {
		return nil, ErrForbidden
	}
	req.TaskTitle = strings.TrimSpace(req.TaskTitle)
	if req == (models.TaskRequest{}) {
		return nil, ValidationErrors{"task": "nothing to update"}
	}
	switch req.Priority {
	case "", models.PriorityHigh, models.PriorityMedium, models.PriorityLow:
	default:
		return nil, ValidationErrors{"priority": "must be one of High, Medium, Low"}
	}
	task, err := s.tasks.UpdateTask(ctx, id, req, session.AccessToken())
	if err != nil {
		return nil, fmt.Errorf("update task %d: %w", id, err)
	}
	s.logger.Info("task updated", "task_id", id, "user_id", session.UserID)
	return task, nil
}

// decidable loads task id and checks that it can still be approved or rejected.
func (s *HRService) decidable(ctx context.Context, session *auth.Session, id int64) error {
	task, err := s.tasks.GetTask(ctx, id, session.AccessToken())
	if err != nil {
		return err
	}
	if !task.Status.Decidable() {
		return fmt.Errorf("task %d is %s: %w", id, task.Status, ErrTaskClosed)
	}
	return nil
}

func (s *HRService) ApproveTask(ctx context.Context, session *auth.Session, id int64, comments string) error {
	if err := session.Require(); err != nil {
		return err
	}
	if err := s.decidable(ctx, session, id); err != nil {
		return err
	}
	if err := s.tasks.ApproveTask(ctx, id, comments, session.AccessToken()); err != nil {
		return err
	}
	s.logger.Info("task approved", "task_id", id, "user_id", session.UserID)
	return nil
}

// RejectTask rejects a task. The reason must be at least MinRejectReason characters.
func (s *HRService) RejectTask(ctx context.Context, session *auth.Session, id int64, reason string) error {
	if err := session.Require(); err != nil {
		return err
	}
	reason = strings.TrimSpace(reason)
	if len([]rune(reason)) < MinRejectReason {
		return ValidationErrors{"reason": fmt.Sprintf("must be at least %d characters", MinRejectReason)}
	}
	if err := s.decidable(ctx, session, id); err != nil {
		return err
	}
	if err := s.tasks.RejectTask(ctx, id, reason, session.AccessToken()); err != nil {
		return err
	}
	s.logger.Info("task rejected", "task_id", id, "user_id", session.UserID)
	return nil
}

func (s *HRService) CancelTask(ctx context.Context, session *auth.Session, id int64) error {
	if err := session.Require(); err != nil {
		return err
	}
	return s.tasks.CancelTask(ctx, id, session.AccessToken())
}

// CheckIn records the session user's arrival.
func (s *HRService) CheckIn(ctx context.Context, session *auth.Session, location, remarks string) (*models.AttendanceResponse, error) {
	if err := session.Require(); err != nil {
		return nil, err
	}
	req := models.CheckInRequest{EmployeeID: session.UserID, Location: location, Remarks: remarks}
	return s.attendance.CheckIn(ctx, req, session.AccessToken())
}

// CheckOut records the session user's departure.
func (s *HRService) CheckOut(ctx context.Context, session *auth.Session) (*models.AttendanceResponse, error) {
	if err := session.Require(); err != nil {
		return nil, err
	}
	return s.attendance.CheckOut(ctx, session.UserID, session.AccessToken())
}

// History returns the session user's attendance records.
func (s *HRService) History(ctx context.Context, session *auth.Session) ([]models.AttendanceRecord, error) {
	if err := session.Require(); err != nil {
		return nil, err
	}
	return s.attendance.History(ctx, session.UserID, session.AccessToken())
}
