package services

import (
	"context"
	"fmt"
	"strconv"
	"sync"

	"github.com/go-playground/validator/v10"

	"hrm-admin/console/internal/auth"
	"hrm-admin/console/pkg/models"
)

// Step is a wizard page.
type Step int

const (
	StepBasicInfo Step = iota
	StepStages
	StepFinalize
)

func (s Step) String() string {
	switch s {
	case StepBasicInfo:
		return "basic_info"
	case StepStages:
		return "stages"
	case StepFinalize:
		return "finalize"
	default:
		return "step(" + strconv.Itoa(int(s)) + ")"
	}
}

// Mode tells whether a wizard creates a workflow or edits one.
type Mode string

const (
	ModeCreate Mode = "create"
	ModeEdit   Mode = "edit"
)

// Option is one selectable approver value.
type Option struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

// Wizard is the three-step workflow builder. It is safe for concurrent use.
type Wizard struct {
	mu sync.Mutex

	mode       Mode
	step       Step
	draft      WorkflowDraft
	errs       ValidationErrors
	submitting bool
	closed     bool

	workflowID int64
	persisted  []models.WorkflowStage
	roles      []models.Role
	users      []models.User

	defaultTimeout int
	validate       *validator.Validate
	reconciler     *Reconciler
}

// WizardState is a snapshot of a wizard.
type WizardState struct {
	Mode       Mode             `json:"mode"`
	Step       Step             `json:"step"`
	StepName   string           `json:"stepName"`
	WorkflowID int64            `json:"workflowId,omitempty"`
	Draft      WorkflowDraft    `json:"draft"`
	Errors     ValidationErrors `json:"errors,omitempty"`
	Submitting bool             `json:"submitting"`
	Closed     bool             `json:"closed"`
}

// NewCreateWizard starts an empty builder with one pre-filled stage.
func NewCreateWizard(rec *Reconciler, roles []models.Role, users []models.User, defaultTimeout int) *Wizard {
	if defaultTimeout <= 0 {
		defaultTimeout = DefaultTimeoutHours
	}
	return &Wizard{
		mode: ModeCreate,
		step: StepBasicInfo,
		draft: WorkflowDraft{
			BasicInfo: BasicInfo{IsActive: true},
			Stages:    []StageDraft{NewStageDraft("First Approval", defaultTimeout)},
		},
		roles:          roles,
		users:          users,
		defaultTimeout: defaultTimeout,
		validate:       newValidator(),
		reconciler:     rec,
	}
}

// NewEditWizard fetches the current stages of w and returns a builder
// pre-filled with them. It blocks until the fetch completes.
func NewEditWizard(ctx context.Context, rec *Reconciler, w models.Workflow, roles []models.Role, users []models.User,
	defaultTimeout int) (*Wizard, error) {
	if defaultTimeout <= 0 {
		defaultTimeout = DefaultTimeoutHours
	}
	stages, err := rec.Store().ListStages(ctx, w.WorkflowID)
	if err != nil {
		return nil, fmt.Errorf("load stages of workflow %d: %w", w.WorkflowID, err)
	}
	return &Wizard{
		mode:           ModeEdit,
		step:           StepBasicInfo,
		draft:          DraftOf(w, stages, roles, defaultTimeout),
		workflowID:     w.WorkflowID,
		persisted:      stages,
		roles:          roles,
		users:          users,
		defaultTimeout: defaultTimeout,
		validate:       newValidator(),
		reconciler:     rec,
	}, nil
}

// State returns a snapshot of the wizard.
func (w *Wizard) State() WizardState {
	w.mu.Lock()
	defer w.mu.Unlock()
	return WizardState{
		Mode:       w.mode,
		Step:       w.step,
		StepName:   w.step.String(),
		WorkflowID: w.workflowID,
		Draft:      w.draft.clone(),
		Errors:     w.errs,
		Submitting: w.submitting,
		Closed:     w.closed,
	}
}

// Step returns the current step.
func (w *Wizard) Step() Step {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.step
}

// Draft returns a copy of the form.
func (w *Wizard) Draft() WorkflowDraft {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.draft.clone()
}

// editable reports why the form cannot change right now. Callers hold mu.
func (w *Wizard) editable() error {
	if w.closed {
		return ErrWizardClosed
	}
	if w.submitting {
		return ErrSubmitting
	}
	return nil
}

// SetBasicInfo replaces the header fields.
func (w *Wizard) SetBasicInfo(info BasicInfo) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if err := w.editable(); err != nil {
		return err
	}
	w.draft.BasicInfo = info
	return nil
}

// SetStages replaces the stage rows.
func (w *Wizard) SetStages(stages []StageDraft) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if err := w.editable(); err != nil {
		return err
	}
	w.draft.Stages = append([]StageDraft(nil), stages...)
	return nil
}

// SetStage replaces the row at i.
func (w *Wizard) SetStage(i int, st StageDraft) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if err := w.editable(); err != nil {
		return err
	}
	if i < 0 || i >= len(w.draft.Stages) {
		return ErrStageIndex
	}
	w.draft.Stages[i] = st
	return nil
}

// SetApproverKind switches the approver kind of stage i. The value is kept as
// entered; validation decides whether it still fits the new kind.
func (w *Wizard) SetApproverKind(i int, kind ApproverKind) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if err := w.editable(); err != nil {
		return err
	}
	if i < 0 || i >= len(w.draft.Stages) {
		return ErrStageIndex
	}
	w.draft.Stages[i].Approver.Kind = kind
	return nil
}

// AddStage appends a blank row and returns its index.
func (w *Wizard) AddStage() (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if err := w.editable(); err != nil {
		return 0, err
	}
	w.draft.Stages = append(w.draft.Stages, NewStageDraft("", w.defaultTimeout))
	return len(w.draft.Stages) - 1, nil
}

// RemoveStage drops row i. When creating, the last remaining row cannot be removed.
func (w *Wizard) RemoveStage(i int) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if err := w.editable(); err != nil {
		return err
	}
	if i < 0 || i >= len(w.draft.Stages) {
		return ErrStageIndex
	}
	if w.mode == ModeCreate && len(w.draft.Stages) == 1 {
		return ErrLastStage
	}
	w.draft.Stages = append(w.draft.Stages[:i], w.draft.Stages[i+1:]...)
	return nil
}

// Next validates the fields of the current step and advances when they pass.
// On failure the step and the form are left as they were and the field errors
// are returned.
func (w *Wizard) Next() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if err := w.editable(); err != nil {
		return err
	}

	var errs ValidationErrors
	switch w.step {
	case StepBasicInfo:
		errs = validateBasicInfo(w.validate, w.draft.BasicInfo)
	case StepStages:
		errs = validateStages(w.validate, w.draft.Stages)
	default:
		return nil
	}
	w.errs = errs
	if len(errs) > 0 {
		return errs
	}
	w.step++
	return nil
}

// Prev steps back without validating. It does nothing on the first step.
func (w *Wizard) Prev() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed || w.submitting {
		return
	}
	if w.step > StepBasicInfo {
		w.step--
	}
	w.errs = nil
}

// Options lists the values allowed for kind.
func (w *Wizard) Options(kind ApproverKind) []Option {
	w.mu.Lock()
	defer w.mu.Unlock()
	var out []Option
	switch kind {
	case KindRole:
		for _, r := range w.roles {
			out = append(out, Option{Value: r.RoleName, Label: r.RoleName})
		}
	case KindSpecific:
		for _, u := range w.users {
			out = append(out, Option{Value: strconv.FormatInt(u.UserID, 10), Label: u.Username})
		}
	case KindDynamic:
		for _, rule := range models.DynamicRules {
			out = append(out, Option{Value: string(rule), Label: string(rule)})
		}
	}
	return out
}

// Submit saves the draft. It is only allowed on the finalize step and only
// one submission runs at a time. A successful submit closes the wizard; a
// failed one leaves it on the finalize step with the form intact.
func (w *Wizard) Submit(ctx context.Context, session *auth.Session) (int64, error) {
	w.mu.Lock()
	if err := w.editable(); err != nil {
		w.mu.Unlock()
		return 0, err
	}
	if w.step != StepFinalize {
		w.mu.Unlock()
		return 0, ErrNotAtFinalize
	}
	if err := session.Require(); err != nil {
		w.mu.Unlock()
		return 0, err
	}
	errs := validateBasicInfo(w.validate, w.draft.BasicInfo)
	for field, msg := range validateStages(w.validate, w.draft.Stages) {
		if errs == nil {
			errs = ValidationErrors{}
		}
		errs[field] = msg
	}
	if len(errs) > 0 {
		w.errs = errs
		w.mu.Unlock()
		return 0, errs
	}
	w.submitting = true
	mode, workflowID := w.mode, w.workflowID
	draft := w.draft.clone()
	persisted, roles := w.persisted, w.roles
	w.mu.Unlock()

	var (
		err      error
		progress UpdateProgress
	)
	if mode == ModeCreate {
		var created *models.Workflow
		created, err = w.reconciler.Create(ctx, session, draft, roles)
		if created != nil {
			workflowID = created.WorkflowID
		}
	} else {
		progress, err = w.reconciler.Update(ctx, session, workflowID, draft, persisted, roles)
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	w.submitting = false
	if err != nil {
		if mode == ModeEdit {
			w.absorb(progress)
		}
		return workflowID, err
	}
	w.closed = true
	w.workflowID = workflowID
	return workflowID, nil
}

// absorb folds the writes of a failed update into the wizard so a retry
// neither deletes a record twice nor creates one again. The draft cannot be
// edited while submitting, so progress indexes still match w.draft.Stages.
func (w *Wizard) absorb(p UpdateProgress) {
	goneStages := make(map[int64]bool, len(p.DeletedStages))
	for _, id := range p.DeletedStages {
		goneStages[id] = true
	}
	goneApprovers := make(map[int64]bool, len(p.DeletedApprovers))
	for _, id := range p.DeletedApprovers {
		goneApprovers[id] = true
	}

	persisted := make([]models.WorkflowStage, 0, len(w.persisted)+len(p.CreatedStages))
	for _, st := range w.persisted {
		if goneStages[st.StageID] {
			continue
		}
		var approvers []models.WorkflowStageApprover
		for _, a := range st.Approvers {
			if !goneApprovers[a.ID] {
				approvers = append(approvers, a)
			}
		}
		st.Approvers = approvers
		persisted = append(persisted, st)
	}

	for i := range w.draft.Stages {
		row := &w.draft.Stages[i]
		if id, ok := p.CreatedStages[i]; ok {
			stageID := id
			row.StageID = &stageID
			persisted = append(persisted, models.WorkflowStage{
				StageID:    stageID,
				WorkflowID: w.workflowID,
				StageOrder: i + 1,
				StageName:  row.Name,
			})
		}
		id, ok := p.CreatedApprovers[i]
		if !ok || row.StageID == nil {
			continue
		}
		approverID := id
		row.ApproverID = &approverID
		for j := range persisted {
			if persisted[j].StageID == *row.StageID {
				persisted[j].Approvers = append(persisted[j].Approvers,
					models.WorkflowStageApprover{ID: approverID, StageID: *row.StageID})
			}
		}
	}
	w.persisted = persisted
}

// Submitting reports whether a submission is in flight.
func (w *Wizard) Submitting() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.submitting
}

// Close discards the wizard. It fails while a submission is in flight.
func (w *Wizard) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.submitting {
		return ErrSubmitting
	}
	w.closed = true
	return nil
}
