package api

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"hrm-admin/console/internal/auth"
	"hrm-admin/console/pkg/models"
)

// LoginResponse is returned by POST /api/v1/login.
type LoginResponse struct {
	AccessToken string          `json:"accessToken"`
	UserID      int64           `json:"userId"`
	Username    string          `json:"username"`
	Role        models.RoleName `json:"role"`
	ExpiresAt   *time.Time      `json:"expiresAt,omitempty"`
	Landing     string          `json:"landing"`
}

// NavigationResponse describes what the signed-in user may open.
type NavigationResponse struct {
	Username         string          `json:"username"`
	Role             models.RoleName `json:"role"`
	Landing          string          `json:"landing"`
	Menu             []auth.MenuItem `json:"menu"`
	RemainingSeconds int64           `json:"remainingSeconds"`
}

// Login signs in against the backend and registers the session
// (POST /api/v1/login)
func (s *Server) Login(c echo.Context) error {
	var req models.LoginRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request body: "+err.Error())
	}

	session, err := s.Auth.Login(c.Request().Context(), req.Username, req.Password)
	if err != nil {
		return err
	}
	s.Sessions.Put(session)

	resp := LoginResponse{
		AccessToken: session.AccessToken(),
		UserID:      session.UserID,
		Username:    session.Username,
		Role:        session.Role,
		Landing:     auth.LandingRoute(session.Role),
	}
	if !session.Token.Expiry.IsZero() {
		exp := session.Token.Expiry
		resp.ExpiresAt = &exp
	}
	return c.JSON(http.StatusOK, resp)
}

// Logout forgets the session and every wizard it opened
// (POST /api/v1/logout)
func (s *Server) Logout(c echo.Context) error {
	session := auth.SessionFrom(c)
	s.Sessions.Remove(session.AccessToken())
	s.Wizards.DropOwner(session.UserID)
	return c.NoContent(http.StatusNoContent)
}

// Navigation returns the role-gated menu
// (GET /api/v1/navigation)
func (s *Server) Navigation(c echo.Context) error {
	session := auth.SessionFrom(c)
	remaining := session.Remaining(time.Now())
	secs := int64(-1)
	if remaining >= 0 {
		secs = int64(remaining / time.Second)
	}
	return c.JSON(http.StatusOK, NavigationResponse{
		Username:         session.Username,
		Role:             session.Role,
		Landing:          auth.LandingRoute(session.Role),
		Menu:             auth.MenuFor(session.Role),
		RemainingSeconds: secs,
	})
}
