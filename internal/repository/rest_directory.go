package repository

import (
	"context"
	"fmt"
	"net/http"

	"hrm-admin/console/pkg/models"
)

func (s *RESTStore) ListUsers(ctx context.Context, token string) ([]models.User, error) {
	var users []models.User
	if err := s.doRequest(ctx, "user.list", http.MethodGet, "/User", nil, &users, token); err != nil {
		return nil, err
	}
	return users, nil
}

func (s *RESTStore) CreateUser(ctx context.Context, req models.UserRequest, token string) (*models.User, error) {
	var user models.User
	if err := s.doRequest(ctx, "user.create", http.MethodPost, "/User", req, &user, token); err != nil {
		return nil, err
	}
	return &user, nil
}

func (s *RESTStore) UpdateUser(ctx context.Context, id int64, req models.UserRequest, token string) (*models.User, error) {
	var user models.User
	if err := s.doRequest(ctx, "user.update", http.MethodPut, fmt.Sprintf("/User/%d", id), req, &user, token); err != nil {
		return nil, err
	}
	return &user, nil
}

func (s *RESTStore) ActivateUser(ctx context.Context, id int64, token string) error {
	return s.doRequest(ctx, "user.activate", http.MethodPatch, fmt.Sprintf("/User/%d/activate", id), nil, nil, token)
}

func (s *RESTStore) DeactivateUser(ctx context.Context, id int64, token string) error {
	return s.doRequest(ctx, "user.deactivate", http.MethodPatch, fmt.Sprintf("/User/%d/deactivate", id), nil, nil, token)
}

func (s *RESTStore) ListRoles(ctx context.Context, token string) ([]models.Role, error) {
	var roles []models.Role
	if err := s.doRequest(ctx, "role.list", http.MethodGet, "/Role", nil, &roles, token); err != nil {
		return nil, err
	}
	return roles, nil
}

func (s *RESTStore) CreateRole(ctx context.Context, req models.RoleRequest, token string) (*models.Role, error) {
	var role models.Role
	if err := s.doRequest(ctx, "role.create", http.MethodPost, "/Role", req, &role, token); err != nil {
		return nil, err
	}
	return &role, nil
}

func (s *RESTStore) SetRoleStatus(ctx context.Context, id int64, active bool, token string) error {
	path := fmt.Sprintf("/Role/%d/status?isActive=%t", id, active)
	return s.doRequest(ctx, "role.status", http.MethodPatch, path, nil, nil, token)
}
