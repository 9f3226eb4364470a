package auth

import (
	"context"
	"errors"
	"strings"

	"hrm-admin/console/internal/repository"
	"hrm-admin/console/pkg/models"
)

// Logger defines the logging interface compatible with the application logger.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Error(msg string, args ...any)
}

// ErrMissingCredentials is returned when username or password is blank.
var ErrMissingCredentials = errors.New("username and password are required")

// Authenticator signs users in against the backend.
type Authenticator struct {
	store  repository.AuthStore
	logger Logger
}

// New creates an Authenticator.
func New(store repository.AuthStore, logger Logger) *Authenticator {
	return &Authenticator{store: store, logger: logger}
}

// Login exchanges credentials for a session.
func (a *Authenticator) Login(ctx context.Context, username, password string) (*Session, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return nil, ErrMissingCredentials
	}

	resp, err := a.store.Login(ctx, models.LoginRequest{Username: username, Password: password})
	if err != nil {
		a.logger.Error("login failed", "username", username, "error", err)
		return nil, err
	}

	session := NewSession(*resp)
	a.logger.Info("signed in", "username", session.Username, "role", session.Role)
	return session, nil
}
