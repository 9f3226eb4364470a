package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/oauth2"

	"hrm-admin/console/pkg/models"
)

// ErrSessionExpired is returned when an operation needs a signed-in user and
// there is none, or its token has expired.
var ErrSessionExpired = errors.New("session expired, please sign in again")

// Session is the identity of a signed-in user. It is passed explicitly to
// every operation that talks to the backend on the user's behalf.
type Session struct {
	UserID   int64
	Username string
	Role     models.RoleName
	Token    *oauth2.Token
}

// NewSession builds a session from a login response. When the access token is
// a JWT its exp claim becomes the session expiry.
func NewSession(resp models.LoginResponse) *Session {
	return &Session{
		UserID:   resp.UserID,
		Username: resp.Username,
		Role:     resp.Role,
		Token: &oauth2.Token{
			AccessToken: resp.AccessToken,
			TokenType:   "Bearer",
			Expiry:      tokenExpiry(resp.AccessToken),
		},
	}
}

// tokenExpiry reads exp without verifying the signature; the backend does that.
func tokenExpiry(raw string) time.Time {
	claims := &jwt.RegisteredClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(raw, claims); err != nil {
		return time.Time{}
	}
	if claims.ExpiresAt == nil {
		return time.Time{}
	}
	return claims.ExpiresAt.Time
}

// AccessToken returns the bearer token, or "" for a nil session.
func (s *Session) AccessToken() string {
	if s == nil || s.Token == nil {
		return ""
	}
	return s.Token.AccessToken
}

// Require returns ErrSessionExpired unless s identifies a user with a usable token.
func (s *Session) Require() error {
	if s == nil || s.UserID == 0 || s.Token == nil || !s.Token.Valid() {
		return ErrSessionExpired
	}
	return nil
}

// Remaining is the time left before the token expires. It is zero for
// expired tokens and negative when the token carries no expiry.
func (s *Session) Remaining(now time.Time) time.Duration {
	if s == nil || s.Token == nil {
		return 0
	}
	if s.Token.Expiry.IsZero() {
		return -1
	}
	if left := s.Token.Expiry.Sub(now); left > 0 {
		return left
	}
	return 0
}
