package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"hrm-admin/console/internal/auth"
	"hrm-admin/console/internal/repository"
	"hrm-admin/console/internal/services"
)

// Handler contains the handlers that need no session.
type Handler struct {
	version string
}

// NewHandler creates a new Handler.
func NewHandler(version string) *Handler {
	return &Handler{version: version}
}

// HealthStatus represents the health check response
type HealthStatus struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
	Service   string    `json:"service"`
	Version   string    `json:"version"`
}

// HandleHealth returns basic health status (always returns 200 OK)
func (h *Handler) HandleHealth(w http.ResponseWriter, r *http.Request) {
	status := HealthStatus{
		Status:    "ok",
		Timestamp: time.Now(),
		Service:   "hrm-admin-console",
		Version:   h.version,
	}
	writeJSON(w, http.StatusOK, status)
}

// writeJSON writes a JSON response with the given status code
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		// Log error but can't change response at this point
		http.Error(w, "Failed to encode response", http.StatusInternalServerError)
	}
}

// ProblemDetails represents an RFC 7807 Problem Details response
type ProblemDetails struct {
	Type     string            `json:"type"`
	Title    string            `json:"title"`
	Status   int               `json:"status"`
	Detail   string            `json:"detail"`
	Instance string            `json:"instance,omitempty"`
	Errors   map[string]string `json:"errors,omitempty"`
}

// writeError writes an RFC 7807 Problem Details JSON error response
func writeError(w http.ResponseWriter, problem ProblemDetails) {
	if problem.Type == "" {
		problem.Type = "about:blank"
	}
	w.Header().Set("Content-Type", "application/problem+json")
	w.WriteHeader(problem.Status)
	_ = json.NewEncoder(w).Encode(problem)
}

// statusOf maps an error to the HTTP status reported for it.
func statusOf(err error) int {
	var httpErr *echo.HTTPError
	var valErr services.ValidationErrors
	var reqErr *repository.RequestError
	switch {
	case errors.As(err, &httpErr):
		return httpErr.Code
	case errors.As(err, &valErr),
		errors.Is(err, services.ErrStageIndex),
		errors.Is(err, services.ErrUnknownRole),
		errors.Is(err, services.ErrInvalidUserID),
		errors.Is(err, auth.ErrMissingCredentials):
		return http.StatusBadRequest
	case errors.Is(err, auth.ErrSessionExpired):
		return http.StatusUnauthorized
	case errors.Is(err, services.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, repository.ErrNotFound), errors.Is(err, errWizardNotFound):
		return http.StatusNotFound
	case errors.Is(err, services.ErrSubmitting),
		errors.Is(err, services.ErrWizardClosed),
		errors.Is(err, services.ErrNotAtFinalize),
		errors.Is(err, services.ErrLastStage),
		errors.Is(err, services.ErrTaskClosed):
		return http.StatusConflict
	case errors.As(err, &reqErr):
		// Client errors from the backend are the caller's to fix.
		if reqErr.Status >= 400 && reqErr.Status < 500 {
			return reqErr.Status
		}
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// ErrorHandler renders every handler error as a problem document.
func ErrorHandler(logger Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}
		status := statusOf(err)
		problem := ProblemDetails{
			Title:    http.StatusText(status),
			Status:   status,
			Instance: c.Request().URL.Path,
		}

		var httpErr *echo.HTTPError
		var valErr services.ValidationErrors
		switch {
		case errors.As(err, &httpErr):
			if msg, ok := httpErr.Message.(string); ok {
				problem.Detail = msg
			} else {
				problem.Detail = http.StatusText(httpErr.Code)
			}
		case errors.As(err, &valErr):
			problem.Detail = "One or more fields are invalid"
			problem.Errors = valErr
		default:
			problem.Detail = services.UserMessage(err, http.StatusText(status))
		}

		if status >= http.StatusInternalServerError {
			logger.Error("request failed", "path", c.Request().URL.Path, "status", status, "error", err)
		}
		writeError(c.Response(), problem)
	}
}

// pathID parses the named path parameter as a positive id.
func pathID(c echo.Context, name string) (int64, error) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, echo.NewHTTPError(http.StatusBadRequest, "invalid "+name)
	}
	return id, nil
}
