package api

import (
	"errors"
	"net/http"
	"strconv"
	"sync"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"hrm-admin/console/internal/auth"
	"hrm-admin/console/internal/services"
)

var errWizardNotFound = errors.New("wizard not found")

type wizardEntry struct {
	owner  int64
	wizard *services.Wizard
}

// WizardSessions holds the open wizards, keyed by a random id. A wizard is
// visible only to the user that opened it.
type WizardSessions struct {
	mu      sync.Mutex
	wizards map[string]wizardEntry
}

// NewWizardSessions returns an empty table.
func NewWizardSessions() *WizardSessions {
	return &WizardSessions{wizards: make(map[string]wizardEntry)}
}

// Add stores wz for owner and returns its id.
func (w *WizardSessions) Add(owner int64, wz *services.Wizard) string {
	id := uuid.New().String()
	w.mu.Lock()
	defer w.mu.Unlock()
	w.wizards[id] = wizardEntry{owner: owner, wizard: wz}
	return id
}

// Get returns the wizard id if it belongs to owner.
func (w *WizardSessions) Get(owner int64, id string) (*services.Wizard, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	e, ok := w.wizards[id]
	if !ok || e.owner != owner {
		return nil, errWizardNotFound
	}
	return e.wizard, nil
}

// Remove forgets id.
func (w *WizardSessions) Remove(id string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	delete(w.wizards, id)
}

// DropOwner forgets every wizard opened by owner.
func (w *WizardSessions) DropOwner(owner int64) {
	w.mu.Lock()
	defer w.mu.Unlock()
	for id, e := range w.wizards {
		if e.owner == owner {
			delete(w.wizards, id)
		}
	}
}

// Len returns the number of open wizards.
func (w *WizardSessions) Len() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.wizards)
}

// OpenWizardRequest is the body of POST /api/v1/wizards.
type OpenWizardRequest struct {
	Mode       services.Mode `json:"mode"`
	WorkflowID int64         `json:"workflowId"`
}

// WizardView is a wizard snapshot together with its id.
type WizardView struct {
	ID string `json:"id"`
	services.WizardState
}

// SubmitResponse carries the id of the saved workflow.
type SubmitResponse struct {
	WorkflowID int64 `json:"workflowId"`
}

func (s *Server) wizard(c echo.Context) (*services.Wizard, string, error) {
	id := c.Param("wid")
	wz, err := s.Wizards.Get(auth.SessionFrom(c).UserID, id)
	return wz, id, err
}

func view(c echo.Context, status int, id string, wz *services.Wizard) error {
	return c.JSON(status, WizardView{ID: id, WizardState: wz.State()})
}

func stageIndex(c echo.Context) (int, error) {
	i, err := strconv.Atoi(c.Param("index"))
	if err != nil || i < 0 {
		return 0, echo.NewHTTPError(http.StatusBadRequest, "invalid stage index")
	}
	return i, nil
}

// OpenWizard starts a create or edit wizard over freshly loaded roles and users
// (POST /api/v1/wizards)
func (s *Server) OpenWizard(c echo.Context) error {
	ctx := c.Request().Context()
	session := auth.SessionFrom(c)

	var req OpenWizardRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request body: "+err.Error())
	}
	if req.Mode == "" {
		req.Mode = services.ModeCreate
	}
	if req.Mode == services.ModeEdit && req.WorkflowID <= 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "workflowId is required in edit mode")
	}
	if req.Mode != services.ModeCreate && req.Mode != services.ModeEdit {
		return echo.NewHTTPError(http.StatusBadRequest, "mode must be create or edit")
	}

	if err := s.Board.Load(ctx, session); err != nil {
		return err
	}

	var wz *services.Wizard
	if req.Mode == services.ModeEdit {
		var err error
		if wz, err = s.Board.OpenEdit(ctx, req.WorkflowID); err != nil {
			return err
		}
	} else {
		wz = s.Board.OpenCreate()
	}

	id := s.Wizards.Add(session.UserID, wz)
	s.Logger.Debug("wizard opened", "wizard_id", id, "mode", req.Mode, "workflow_id", req.WorkflowID)
	return view(c, http.StatusCreated, id, wz)
}

// GetWizard returns the wizard state
// (GET /api/v1/wizards/:wid)
func (s *Server) GetWizard(c echo.Context) error {
	wz, id, err := s.wizard(c)
	if err != nil {
		return err
	}
	return view(c, http.StatusOK, id, wz)
}

// CloseWizard discards the wizard unless a submit is in flight
// (DELETE /api/v1/wizards/:wid)
func (s *Server) CloseWizard(c echo.Context) error {
	wz, id, err := s.wizard(c)
	if err != nil {
		return err
	}
	if err := wz.Close(); err != nil {
		return err
	}
	s.Wizards.Remove(id)
	return c.NoContent(http.StatusNoContent)
}

// SetWizardBasic replaces the basic information
// (PUT /api/v1/wizards/:wid/basic)
func (s *Server) SetWizardBasic(c echo.Context) error {
	wz, id, err := s.wizard(c)
	if err != nil {
		return err
	}
	var info services.BasicInfo
	if err := c.Bind(&info); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request body: "+err.Error())
	}
	if err := wz.SetBasicInfo(info); err != nil {
		return err
	}
	return view(c, http.StatusOK, id, wz)
}

// SetWizardStages replaces the whole stage list
// (PUT /api/v1/wizards/:wid/stages)
func (s *Server) SetWizardStages(c echo.Context) error {
	wz, id, err := s.wizard(c)
	if err != nil {
		return err
	}
	var stages []services.StageDraft
	if err := c.Bind(&stages); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request body: "+err.Error())
	}
	if err := wz.SetStages(stages); err != nil {
		return err
	}
	return view(c, http.StatusOK, id, wz)
}

// AddWizardStage appends a default stage
// (POST /api/v1/wizards/:wid/stages)
func (s *Server) AddWizardStage(c echo.Context) error {
	wz, id, err := s.wizard(c)
	if err != nil {
		return err
	}
	if _, err := wz.AddStage(); err != nil {
		return err
	}
	return view(c, http.StatusCreated, id, wz)
}

// SetWizardStage replaces one stage row
// (PUT /api/v1/wizards/:wid/stages/:index)
func (s *Server) SetWizardStage(c echo.Context) error {
	wz, id, err := s.wizard(c)
	if err != nil {
		return err
	}
	i, err := stageIndex(c)
	if err != nil {
		return err
	}
	var st services.StageDraft
	if err := c.Bind(&st); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request body: "+err.Error())
	}
	if err := wz.SetStage(i, st); err != nil {
		return err
	}
	return view(c, http.StatusOK, id, wz)
}

// RemoveWizardStage drops one stage row
// (DELETE /api/v1/wizards/:wid/stages/:index)
func (s *Server) RemoveWizardStage(c echo.Context) error {
	wz, id, err := s.wizard(c)
	if err != nil {
		return err
	}
	i, err := stageIndex(c)
	if err != nil {
		return err
	}
	if err := wz.RemoveStage(i); err != nil {
		return err
	}
	return view(c, http.StatusOK, id, wz)
}

// SetWizardApproverKind switches the approver kind of one stage and keeps its value
// (PUT /api/v1/wizards/:wid/stages/:index/kind)
func (s *Server) SetWizardApproverKind(c echo.Context) error {
	wz, id, err := s.wizard(c)
	if err != nil {
		return err
	}
	i, err := stageIndex(c)
	if err != nil {
		return err
	}
	var body struct {
		Kind services.ApproverKind `json:"approverType"`
	}
	if err := c.Bind(&body); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request body: "+err.Error())
	}
	if err := wz.SetApproverKind(i, body.Kind); err != nil {
		return err
	}
	return view(c, http.StatusOK, id, wz)
}

// WizardOptions lists the selectable approver values for a kind
// (GET /api/v1/wizards/:wid/options?kind=)
func (s *Server) WizardOptions(c echo.Context) error {
	wz, _, err := s.wizard(c)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, wz.Options(services.ApproverKind(c.QueryParam("kind"))))
}

// WizardNext validates the current step and advances
// (POST /api/v1/wizards/:wid/next)
func (s *Server) WizardNext(c echo.Context) error {
	wz, id, err := s.wizard(c)
	if err != nil {
		return err
	}
	if err := wz.Next(); err != nil {
		return err
	}
	return view(c, http.StatusOK, id, wz)
}

// WizardPrev goes back one step without validating
// (POST /api/v1/wizards/:wid/prev)
func (s *Server) WizardPrev(c echo.Context) error {
	wz, id, err := s.wizard(c)
	if err != nil {
		return err
	}
	wz.Prev()
	return view(c, http.StatusOK, id, wz)
}

// SubmitWizard saves the draft through the reconciler. The wizard is
// discarded on success and kept at the final step on failure
// (POST /api/v1/wizards/:wid/submit)
func (s *Server) SubmitWizard(c echo.Context) error {
	wz, id, err := s.wizard(c)
	if err != nil {
		return err
	}
	session := auth.SessionFrom(c)
	workflowID, err := s.Board.Submit(c.Request().Context(), session, wz)
	if err != nil {
		s.Logger.Warn("wizard submit failed", "wizard_id", id, "error", err)
		return err
	}
	s.Wizards.Remove(id)
	s.Logger.Info("workflow saved", "workflow_id", workflowID, "username", session.Username)
	return c.JSON(http.StatusOK, SubmitResponse{WorkflowID: workflowID})
}
