package repository

import (
	"context"
	"fmt"
	"net/http"

	"hrm-admin/console/pkg/models"
)

func (s *RESTStore) ListTasks(ctx context.Context, token string) ([]models.Task, error) {
	var tasks []models.Task
	if err := s.doRequest(ctx, "task.list", http.MethodGet, "/Task", nil, &tasks, token); err != nil {
		return nil, err
	}
	return tasks, nil
}

func (s *RESTStore) GetTask(ctx context.Context, id int64, token string) (*models.Task, error) {
	var task models.Task
	if err := s.doRequest(ctx, "task.get", http.MethodGet, fmt.Sprintf("/Task/%d", id), nil, &task, token); err != nil {
		return nil, err
	}
	return &task, nil
}

func (s *RESTStore) CreateTask(ctx context.Context, req models.TaskRequest, token string) (*models.Task, error) {
	var task models.Task
	if err := s.doRequest(ctx, "task.create", http.MethodPost, "/Task", req, &task, token); err != nil {
		return nil, err
	}
	return &task, nil
}

func (s *RESTStore) UpdateTask(ctx context.Context, id int64, req models.TaskRequest, token string) (*models.Task, error) {
	var task models.Task
	if err := s.doRequest(ctx, "task.update", http.MethodPut, fmt.Sprintf("/Task/%d", id), req, &task, token); err != nil {
		return nil, err
	}
	return &task, nil
}

func (s *RESTStore) ApproveTask(ctx context.Context, id int64, comments string, token string) error {
	body := map[string]string{"comments": comments}
	return s.doRequest(ctx, "task.approve", http.MethodPatch, fmt.Sprintf("/Task/%d/approve", id), body, nil, token)
}

func (s *RESTStore) RejectTask(ctx context.Context, id int64, reason string, token string) error {
	body := map[string]string{"reason": reason}
	return s.doRequest(ctx, "task.reject", http.MethodPatch, fmt.Sprintf("/Task/%d/reject", id), body, nil, token)
}

func (s *RESTStore) CancelTask(ctx context.Context, id int64, token string) error {
	return s.doRequest(ctx, "task.cancel", http.MethodDelete, fmt.Sprintf("/Task/%d", id), nil, nil, token)
}
