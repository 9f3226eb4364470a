package repository

import (
	"context"
	"fmt"
	"net/http"

	"hrm-admin/console/pkg/models"
)

func (s *RESTStore) CheckIn(ctx context.Context, req models.CheckInRequest, token string) (*models.AttendanceResponse, error) {
	var resp models.AttendanceResponse
	if err := s.doRequest(ctx, "attendance.check_in", http.MethodPost, "/attendance/check-in", req, &resp, token); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (s *RESTStore) CheckOut(ctx context.Context, employeeID int64, token string) (*models.AttendanceResponse, error) {
	var resp models.AttendanceResponse
	path := fmt.Sprintf("/attendance/check-out/%d", employeeID)
	if err := s.doRequest(ctx, "attendance.check_out", http.MethodPost, path, nil, &resp, token); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (s *RESTStore) History(ctx context.Context, employeeID int64, token string) ([]models.AttendanceRecord, error) {
	var records []models.AttendanceRecord
	path := fmt.Sprintf("/attendance/history/%d", employeeID)
	if err := s.doRequest(ctx, "attendance.history", http.MethodGet, path, nil, &records, token); err != nil {
		return nil, err
	}
	return records, nil
}
