package api

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"hrm-admin/console/internal/auth"
	"hrm-admin/console/internal/services"
	"hrm-admin/console/pkg/models"
)

// ListUsers returns every user account
// (GET /api/v1/users)
func (s *Server) ListUsers(c echo.Context) error {
	users, err := s.HR.ListUsers(c.Request().Context(), auth.SessionFrom(c))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, users)
}

// CreateUser adds an account
// (POST /api/v1/users)
func (s *Server) CreateUser(c echo.Context) error {
	var req models.UserRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request body: "+err.Error())
	}
	user, err := s.HR.CreateUser(c.Request().Context(), auth.SessionFrom(c), req)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, user)
}

// UpdateUser (PUT /api/v1/users/:id)
func (s *Server) UpdateUser(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	var req models.UserRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request body: "+err.Error())
	}
	user, err := s.HR.UpdateUser(c.Request().Context(), auth.SessionFrom(c), id, req)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, user)
}

// ActivateUser (POST /api/v1/users/:id/activate)
func (s *Server) ActivateUser(c echo.Context) error {
	return s.setUserActive(c, true)
}

// DeactivateUser (POST /api/v1/users/:id/deactivate)
func (s *Server) DeactivateUser(c echo.Context) error {
	return s.setUserActive(c, false)
}

func (s *Server) setUserActive(c echo.Context, active bool) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	if err := s.HR.SetUserActive(c.Request().Context(), auth.SessionFrom(c), id, active); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// ListRoles (GET /api/v1/roles)
func (s *Server) ListRoles(c echo.Context) error {
	roles, err := s.HR.ListRoles(c.Request().Context(), auth.SessionFrom(c))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, roles)
}

// CreateRole (POST /api/v1/roles)
func (s *Server) CreateRole(c echo.Context) error {
	var req struct {
		RoleName    string `json:"roleName"`
		Description string `json:"description"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request body: "+err.Error())
	}
	role, err := s.HR.CreateRole(c.Request().Context(), auth.SessionFrom(c), req.RoleName, req.Description)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, role)
}

// SetRoleStatus (PATCH /api/v1/roles/:id/status)
func (s *Server) SetRoleStatus(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	var req struct {
		IsActive *bool `json:"isActive"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request body: "+err.Error())
	}
	if req.IsActive == nil {
		return services.ValidationErrors{"isActive": "is required"}
	}
	if err := s.HR.SetRoleStatus(c.Request().Context(), auth.SessionFrom(c), id, *req.IsActive); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// ListTasks returns the caller's tasks
// (GET /api/v1/tasks?search=&priority=&status=)
func (s *Server) ListTasks(c echo.Context) error {
	f := services.TaskFilter{
		Search:   c.QueryParam("search"),
		Priority: models.TaskPriority(c.QueryParam("priority")),
		Status:   models.TaskStatus(c.QueryParam("status")),
	}
	tasks, err := s.HR.ListTasks(c.Request().Context(), auth.SessionFrom(c), f)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, tasks)
}

// CreateTask (POST /api/v1/tasks)
func (s *Server) CreateTask(c echo.Context) error {
	var req models.TaskRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request body: "+err.Error())
	}
	task, err := s.HR.CreateTask(c.Request().Context(), auth.SessionFrom(c), req)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, task)
}

// UpdateTask (PUT /api/v1/tasks/:id)
func (s *Server) UpdateTask(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	var req models.TaskRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request body: "+err.Error())
	}
	task, err := s.HR.UpdateTask(c.Request().Context(), auth.SessionFrom(c), id, req)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, task)
}

// ApproveTask (POST /api/v1/tasks/:id/approve)
func (s *Server) ApproveTask(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	var req struct {
		Comments string `json:"comments"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request body: "+err.Error())
	}
	if err := s.HR.ApproveTask(c.Request().Context(), auth.SessionFrom(c), id, req.Comments); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// RejectTask (POST /api/v1/tasks/:id/reject)
func (s *Server) RejectTask(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	var req struct {
		Reason string `json:"reason"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request body: "+err.Error())
	}
	if err := s.HR.RejectTask(c.Request().Context(), auth.SessionFrom(c), id, req.Reason); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// CancelTask (DELETE /api/v1/tasks/:id)
func (s *Server) CancelTask(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	if err := s.HR.CancelTask(c.Request().Context(), auth.SessionFrom(c), id); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// CheckIn records the caller's arrival
// (POST /api/v1/attendance/check-in)
func (s *Server) CheckIn(c echo.Context) error {
	var req struct {
		Location string `json:"location"`
		Remarks  string `json:"remarks"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request body: "+err.Error())
	}
	resp, err := s.HR.CheckIn(c.Request().Context(), auth.SessionFrom(c), req.Location, req.Remarks)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, resp)
}

// CheckOut (POST /api/v1/attendance/check-out)
func (s *Server) CheckOut(c echo.Context) error {
	resp, err := s.HR.CheckOut(c.Request().Context(), auth.SessionFrom(c))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, resp)
}

// AttendanceHistory (GET /api/v1/attendance/history)
func (s *Server) AttendanceHistory(c echo.Context) error {
	records, err := s.HR.History(c.Request().Context(), auth.SessionFrom(c))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, records)
}
