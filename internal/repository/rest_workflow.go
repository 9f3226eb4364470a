package repository

import (
	"context"
	"fmt"
	"net/http"

	"hrm-admin/console/pkg/models"
)

func (s *RESTStore) ListWorkflows(ctx context.Context) ([]models.Workflow, error) {
	var workflows []models.Workflow
	if err := s.doRequest(ctx, "workflow.list", http.MethodGet, "/Workflow", nil, &workflows, ""); err != nil {
		return nil, err
	}
	return workflows, nil
}

func (s *RESTStore) GetWorkflow(ctx context.Context, id int64) (*models.Workflow, error) {
	var workflow models.Workflow
	if err := s.doRequest(ctx, "workflow.get", http.MethodGet, fmt.Sprintf("/Workflow/%d", id), nil, &workflow, ""); err != nil {
		return nil, err
	}
	return &workflow, nil
}

func (s *RESTStore) CreateWorkflow(ctx context.Context, req models.WorkflowRequest, token string) (*models.Workflow, error) {
	var workflow models.Workflow
	if err := s.doRequest(ctx, "workflow.create", http.MethodPost, "/Workflow", req, &workflow, token); err != nil {
		return nil, err
	}
	return &workflow, nil
}

func (s *RESTStore) UpdateWorkflow(ctx context.Context, id int64, req models.WorkflowRequest, token string) (*models.Workflow, error) {
	var workflow models.Workflow
	if err := s.doRequest(ctx, "workflow.update", http.MethodPut, fmt.Sprintf("/Workflow/%d", id), req, &workflow, token); err != nil {
		return nil, err
	}
	return &workflow, nil
}

func (s *RESTStore) DeleteWorkflow(ctx context.Context, id int64, token string) error {
	return s.doRequest(ctx, "workflow.delete", http.MethodDelete, fmt.Sprintf("/Workflow/%d", id), nil, nil, token)
}

func (s *RESTStore) ListStages(ctx context.Context, workflowID int64) ([]models.WorkflowStage, error) {
	var stages []models.WorkflowStage
	path := fmt.Sprintf("/WorkflowStage/workflow/%d", workflowID)
	if err := s.doRequest(ctx, "stage.list", http.MethodGet, path, nil, &stages, ""); err != nil {
		return nil, err
	}
	return stages, nil
}

func (s *RESTStore) CreateStage(ctx context.Context, req models.CreateStageRequest, token string) (*models.WorkflowStage, error) {
	var stage models.WorkflowStage
	if err := s.doRequest(ctx, "stage.create", http.MethodPost, "/WorkflowStage", req, &stage, token); err != nil {
		return nil, err
	}
	return &stage, nil
}

func (s *RESTStore) UpdateStage(ctx context.Context, id int64, req models.UpdateStageRequest, token string) (*models.WorkflowStage, error) {
	var stage models.WorkflowStage
	if err := s.doRequest(ctx, "stage.update", http.MethodPut, fmt.Sprintf("/WorkflowStage/%d", id), req, &stage, token); err != nil {
		return nil, err
	}
	return &stage, nil
}

func (s *RESTStore) DeleteStage(ctx context.Context, id int64, token string) error {
	return s.doRequest(ctx, "stage.delete", http.MethodDelete, fmt.Sprintf("/WorkflowStage/%d", id), nil, nil, token)
}

func (s *RESTStore) ListApprovers(ctx context.Context, stageID int64, token string) ([]models.WorkflowStageApprover, error) {
	var approvers []models.WorkflowStageApprover
	path := fmt.Sprintf("/WorkflowStageApprove/stage/%d", stageID)
	if err := s.doRequest(ctx, "approver.list", http.MethodGet, path, nil, &approvers, token); err != nil {
		return nil, err
	}
	return approvers, nil
}

func (s *RESTStore) CreateApprover(ctx context.Context, req models.CreateApproverRequest, token string) (*models.WorkflowStageApprover, error) {
	var approver models.WorkflowStageApprover
	if err := s.doRequest(ctx, "approver.create", http.MethodPost, "/WorkflowStageApprove", req, &approver, token); err != nil {
		return nil, err
	}
	return &approver, nil
}

func (s *RESTStore) UpdateApprover(ctx context.Context, id int64, req models.UpdateApproverRequest, token string) (*models.WorkflowStageApprover, error) {
	var approver models.WorkflowStageApprover
	path := fmt.Sprintf("/WorkflowStageApprove/%d", id)
	if err := s.doRequest(ctx, "approver.update", http.MethodPut, path, req, &approver, token); err != nil {
		return nil, err
	}
	return &approver, nil
}

func (s *RESTStore) DeleteApprover(ctx context.Context, id int64, token string) error {
	return s.doRequest(ctx, "approver.delete", http.MethodDelete, fmt.Sprintf("/WorkflowStageApprove/%d", id), nil, nil, token)
}
