package api

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"hrm-admin/console/internal/auth"
	"hrm-admin/console/internal/services"
	"hrm-admin/console/pkg/models"
)

// WorkflowList is the body of GET /api/v1/workflows.
type WorkflowList struct {
	Items []models.Workflow `json:"items"`
	Stats services.Stats    `json:"stats"`
}

// ToggleResponse reports the active flag after a toggle.
type ToggleResponse struct {
	WorkflowID int64 `json:"workflowId"`
	IsActive   bool  `json:"isActive"`
}

// ListWorkflows re-fetches the board and returns the filtered rows with the
// unfiltered counters
// (GET /api/v1/workflows)
func (s *Server) ListWorkflows(c echo.Context) error {
	ctx := c.Request().Context()

	filter := services.Filter{
		Search: c.QueryParam("search"),
		Type:   models.WorkflowType(c.QueryParam("type")),
	}
	if raw := c.QueryParam("active"); raw != "" {
		active, err := strconv.ParseBool(raw)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "active must be true or false")
		}
		filter.Active = &active
	}

	if err := s.Board.Load(ctx, auth.SessionFrom(c)); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, WorkflowList{
		Items: s.Board.Workflows(filter),
		Stats: s.Board.Stats(),
	})
}

// ToggleWorkflow flips a workflow between active and inactive
// (POST /api/v1/workflows/:id/toggle)
func (s *Server) ToggleWorkflow(c echo.Context) error {
	ctx := c.Request().Context()
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}

	session := auth.SessionFrom(c)
	if _, ok := s.Board.Workflow(id); !ok {
		if err := s.Board.Load(ctx, session); err != nil {
			return err
		}
	}

	active, err := s.Board.Toggle(ctx, session, id)
	if err != nil {
		return err
	}
	s.Logger.Info("workflow toggled", "workflow_id", id, "active", active, "username", session.Username)
	return c.JSON(http.StatusOK, ToggleResponse{WorkflowID: id, IsActive: active})
}

// WorkflowStages lists the persisted stages of a workflow
// (GET /api/v1/workflows/:id/stages)
func (s *Server) WorkflowStages(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	stages, err := s.Board.Stages(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, stages)
}
