package services

import (
	"errors"
	"sort"
	"strings"

	"hrm-admin/console/internal/auth"
	"hrm-admin/console/internal/repository"
)

var (
	ErrNotAtFinalize = errors.New("workflow can only be submitted from the finalize step")
	ErrSubmitting    = errors.New("workflow is being submitted")
	ErrWizardClosed  = errors.New("wizard is closed")
	ErrLastStage     = errors.New("a workflow needs at least one stage")
	ErrStageIndex    = errors.New("no stage at that position")
	ErrUnknownRole   = errors.New("unknown role")
	ErrInvalidUserID = errors.New("approver user id must be numeric")
	ErrForbidden     = errors.New("your role may not perform this action")
	ErrTaskClosed    = errors.New("task is no longer pending")
)

// ValidationErrors maps a field path such as "stages[0].stageName" to its message.
type ValidationErrors map[string]string

func (v ValidationErrors) Error() string {
	fields := make([]string, 0, len(v))
	for f := range v {
		fields = append(fields, f)
	}
	sort.Strings(fields)
	parts := make([]string, len(fields))
	for i, f := range fields {
		parts[i] = f + " " + v[f]
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// UserMessage picks the single notification text shown for err: the server's
// own message when there is one, otherwise the fallback.
func UserMessage(err error, fallback string) string {
	if err == nil {
		return ""
	}
	var reqErr *repository.RequestError
	var valErr ValidationErrors
	switch {
	case errors.Is(err, auth.ErrSessionExpired):
		return auth.ErrSessionExpired.Error()
	case errors.As(err, &valErr):
		return valErr.Error()
	case errors.As(err, &reqErr) && reqErr.Message != "":
		return reqErr.Message
	}
	for _, known := range []error{ErrNotAtFinalize, ErrSubmitting, ErrWizardClosed, ErrLastStage,
		ErrUnknownRole, ErrInvalidUserID, ErrForbidden, ErrTaskClosed} {
		if errors.Is(err, known) {
			return err.Error()
		}
	}
	return fallback
}
