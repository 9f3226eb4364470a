package repository

import (
	"context"
	"errors"
	"net/http"

	"hrm-admin/console/pkg/models"
)

// Login posts the credentials to the login path. The response must carry an
// access token.
func (s *RESTStore) Login(ctx context.Context, req models.LoginRequest) (*models.LoginResponse, error) {
	var resp models.LoginResponse
	if err := s.doRequest(ctx, "auth.login", http.MethodPost, s.loginPath, req, &resp, ""); err != nil {
		return nil, err
	}
	if resp.AccessToken == "" {
		return nil, errors.New("login response has no access token")
	}
	return &resp, nil
}
