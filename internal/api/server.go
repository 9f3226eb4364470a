// Package api contains the HTTP handlers for the admin console BFF.
package api

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"hrm-admin/console/internal/auth"
	"hrm-admin/console/internal/services"
)

// Logger is the logging surface the handlers use.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// Server holds the dependencies for the API server.
type Server struct {
	Auth     *auth.Authenticator
	Sessions *auth.Registry
	Board    *services.Board
	HR       *services.HRService
	Wizards  *WizardSessions
	Logger   Logger
}

// NewServer creates a new Server with an empty wizard table.
func NewServer(authn *auth.Authenticator, sessions *auth.Registry, board *services.Board, hr *services.HRService,
	logger Logger) *Server {
	return &Server{
		Auth:     authn,
		Sessions: sessions,
		Board:    board,
		HR:       hr,
		Wizards:  NewWizardSessions(),
		Logger:   logger,
	}
}

// Register mounts the health check and the /api/v1 routes on e.
func (s *Server) Register(e *echo.Echo, h *Handler) {
	e.HTTPErrorHandler = ErrorHandler(s.Logger)
	e.GET("/healthz", echo.WrapHandler(http.HandlerFunc(h.HandleHealth)))

	g := e.Group("/api/v1")
	g.POST("/login", s.Login)

	session := s.Sessions.RequireSession(s.Logger)
	workflows := auth.RequireSection(auth.SectionWorkflows)
	users := auth.RequireSection(auth.SectionUsers)
	roles := auth.RequireSection(auth.SectionRoles)

	g.POST("/logout", s.Logout, session)
	g.GET("/navigation", s.Navigation, session)

	g.GET("/workflows", s.ListWorkflows, session, workflows)
	g.POST("/workflows/:id/toggle", s.ToggleWorkflow, session, workflows)
	g.GET("/workflows/:id/stages", s.WorkflowStages, session, workflows)

	g.POST("/wizards", s.OpenWizard, session, workflows)
	g.GET("/wizards/:wid", s.GetWizard, session, workflows)
	g.DELETE("/wizards/:wid", s.CloseWizard, session, workflows)
	g.PUT("/wizards/:wid/basic", s.SetWizardBasic, session, workflows)
	g.PUT("/wizards/:wid/stages", s.SetWizardStages, session, workflows)
	g.POST("/wizards/:wid/stages", s.AddWizardStage, session, workflows)
	g.PUT("/wizards/:wid/stages/:index", s.SetWizardStage, session, workflows)
	g.DELETE("/wizards/:wid/stages/:index", s.RemoveWizardStage, session, workflows)
	g.PUT("/wizards/:wid/stages/:index/kind", s.SetWizardApproverKind, session, workflows)
	g.GET("/wizards/:wid/options", s.WizardOptions, session, workflows)
	g.POST("/wizards/:wid/next", s.WizardNext, session, workflows)
	g.POST("/wizards/:wid/prev", s.WizardPrev, session, workflows)
	g.POST("/wizards/:wid/submit", s.SubmitWizard, session, workflows)

	g.GET("/users", s.ListUsers, session, users)
	g.POST("/users", s.CreateUser, session, users)
	g.PUT("/users/:id", s.UpdateUser, session, users)
	g.POST("/users/:id/activate", s.ActivateUser, session, users)
	g.POST("/users/:id/deactivate", s.DeactivateUser, session, users)
	g.GET("/roles", s.ListRoles, session, roles)
	g.POST("/roles", s.CreateRole, session, roles)
	g.PATCH("/roles/:id/status", s.SetRoleStatus, session, roles)

	g.GET("/tasks", s.ListTasks, session)
	g.POST("/tasks", s.CreateTask, session)
	g.PUT("/tasks/:id", s.UpdateTask, session)
	g.POST("/tasks/:id/approve", s.ApproveTask, session)
	g.POST("/tasks/:id/reject", s.RejectTask, session)
	g.DELETE("/tasks/:id", s.CancelTask, session)

	g.POST("/attendance/check-in", s.CheckIn, session)
	g.POST("/attendance/check-out", s.CheckOut, session)
	g.GET("/attendance/history", s.AttendanceHistory, session)
}
