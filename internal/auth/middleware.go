package auth

import (
	"net/http"
	"strings"
	"sync"

	"github.com/labstack/echo/v4"
)

const sessionKey = "hrm.session"

// Registry holds the sessions of the server's signed-in clients, keyed by
// access token.
type Registry struct {
	mu       sync.RWMutex
	sessions map[string]*Session
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{sessions: make(map[string]*Session)}
}

// Put registers s under its access token.
func (r *Registry) Put(s *Session) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sessions[s.AccessToken()] = s
}

// Get returns the session for token, if any.
func (r *Registry) Get(token string) (*Session, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.sessions[token]
	return s, ok
}

// Remove forgets token.
func (r *Registry) Remove(token string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.sessions, token)
}

// RequireSession is middleware that resolves the bearer token against the
// registry and rejects unknown or expired sessions with 401.
func (r *Registry) RequireSession(logger Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			authHeader := c.Request().Header.Get(echo.HeaderAuthorization)
			if !strings.HasPrefix(authHeader, "Bearer ") {
				return echo.NewHTTPError(http.StatusUnauthorized, "missing bearer token")
			}
			token := strings.TrimPrefix(authHeader, "Bearer ")

			session, ok := r.Get(token)
			if !ok {
				return echo.NewHTTPError(http.StatusUnauthorized, "unknown session")
			}
			if err := session.Require(); err != nil {
				logger.Debug("rejecting expired session", "username", session.Username)
				r.Remove(token)
				return echo.NewHTTPError(http.StatusUnauthorized, err.Error())
			}

			c.Set(sessionKey, session)
			return next(c)
		}
	}
}

// SessionFrom returns the session RequireSession attached to c.
func SessionFrom(c echo.Context) *Session {
	s, _ := c.Get(sessionKey).(*Session)
	return s
}

// RequireSection rejects requests whose session role may not open section.
func RequireSection(section Section) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			s := SessionFrom(c)
			if s == nil {
				return echo.NewHTTPError(http.StatusUnauthorized, ErrSessionExpired.Error())
			}
			if !Allowed(s.Role, section) {
				return echo.NewHTTPError(http.StatusForbidden, "role "+string(s.Role)+" may not access "+string(section))
			}
			return next(c)
		}
	}
}
