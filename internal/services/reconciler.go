package services

import (
	"context"
	"fmt"

	"hrm-admin/console/internal/auth"
	"hrm-admin/console/internal/repository"
	"hrm-admin/console/pkg/models"
)

// Reconciler writes a workflow draft to the backend. Calls are issued one at a
// time in a fixed order; the first failure stops the run. Whatever was written
// before the failure stays unless compensation is enabled.
type Reconciler struct {
	store      repository.DefinitionStore
	logger     Logger
	compensate bool
}

// ReconcilerOption configures a Reconciler.
type ReconcilerOption func(*Reconciler)

// WithCompensation makes a failed run delete, newest first, the records it
// created. Updates and deletes are not undone.
func WithCompensation(enabled bool) ReconcilerOption {
	return func(r *Reconciler) { r.compensate = enabled }
}

// NewReconciler creates a Reconciler over store.
func NewReconciler(store repository.DefinitionStore, logger Logger, opts ...ReconcilerOption) *Reconciler {
	r := &Reconciler{store: store, logger: logger}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Store returns the store the reconciler writes to.
func (r *Reconciler) Store() repository.DefinitionStore {
	return r.store
}

type undoStep struct {
	what string
	id   int64
	run  func(ctx context.Context) error
}

type undoStack []undoStep

func (u *undoStack) push(what string, id int64, run func(ctx context.Context) error) {
	*u = append(*u, undoStep{what: what, id: id, run: run})
}

// abort runs the compensation stack when enabled and returns cause.
func (r *Reconciler) abort(ctx context.Context, cause error, undo undoStack) error {
	if !r.compensate || len(undo) == 0 {
		r.logger.Error("workflow save aborted", "error", cause)
		return cause
	}
	r.logger.Warn("workflow save aborted, undoing created records", "error", cause, "records", len(undo))
	for i := len(undo) - 1; i >= 0; i-- {
		step := undo[i]
		if err := step.run(ctx); err != nil {
			r.logger.Error("compensation failed", "record", step.what, "id", step.id, "error", err)
		}
	}
	return cause
}

func resolveAll(stages []StageDraft, roles []models.Role) ([]approverFields, error) {
	out := make([]approverFields, len(stages))
	for i, st := range stages {
		f, err := resolveApprover(st.Approver, roles)
		if err != nil {
			return nil, fmt.Errorf("stage %d (%s): %w", i+1, st.Name, err)
		}
		out[i] = f
	}
	return out, nil
}

// Create writes a new workflow: the header, then for each stage in order the
// stage with StageOrder i+1 followed by its approver. Approvers are resolved
// before the first call so an unknown role writes nothing.
func (r *Reconciler) Create(ctx context.Context, session *auth.Session, draft WorkflowDraft, roles []models.Role) (*models.Workflow, error) {
	if err := session.Require(); err != nil {
		return nil, err
	}
	approvers, err := resolveAll(draft.Stages, roles)
	if err != nil {
		return nil, err
	}
	token := session.AccessToken()

	workflow, err := r.store.CreateWorkflow(ctx, draft.BasicInfo.Request(), token)
	if err != nil {
		r.logger.Error("create workflow failed", "name", draft.BasicInfo.Name, "error", err)
		return nil, fmt.Errorf("create workflow: %w", err)
	}
	workflowID := workflow.WorkflowID
	r.logger.Debug("created workflow", "workflow_id", workflowID)

	var undo undoStack
	undo.push("workflow", workflowID, func(ctx context.Context) error {
		return r.store.DeleteWorkflow(ctx, workflowID, token)
	})

	for i, st := range draft.Stages {
		stageID, err := r.createStage(ctx, workflowID, i, st, token, &undo)
		if err != nil {
			return workflow, r.abort(ctx, err, undo)
		}
		if _, err := r.createApprover(ctx, stageID, approvers[i], token, &undo); err != nil {
			return workflow, r.abort(ctx, fmt.Errorf("stage %d: %w", i+1, err), undo)
		}
	}

	r.logger.Info("workflow created", "workflow_id", workflowID, "stages", len(draft.Stages))
	return workflow, nil
}

// UpdateProgress records what an Update wrote before it stopped. Created ids
// are keyed by draft position; they are empty when compensation removed them.
type UpdateProgress struct {
	DeletedStages    []int64
	DeletedApprovers []int64
	CreatedStages    map[int]int64
	CreatedApprovers map[int]int64
}

// Update converges workflowID to draft. persisted is the stage set fetched
// when the edit began: stages missing from the draft are deleted, approvers
// first; the rest are updated or created in draft order. The returned
// progress is meaningful on failure too.
func (r *Reconciler) Update(ctx context.Context, session *auth.Session, workflowID int64, draft WorkflowDraft,
	persisted []models.WorkflowStage, roles []models.Role) (UpdateProgress, error) {
	progress := UpdateProgress{CreatedStages: map[int]int64{}, CreatedApprovers: map[int]int64{}}
	if err := session.Require(); err != nil {
		return progress, err
	}
	approvers, err := resolveAll(draft.Stages, roles)
	if err != nil {
		return progress, err
	}
	token := session.AccessToken()

	if _, err := r.store.UpdateWorkflow(ctx, workflowID, draft.BasicInfo.Request(), token); err != nil {
		r.logger.Error("update workflow failed", "workflow_id", workflowID, "error", err)
		return progress, fmt.Errorf("update workflow: %w", err)
	}
	r.logger.Debug("updated workflow", "workflow_id", workflowID)

	var undo undoStack
	fail := func(cause error) (UpdateProgress, error) {
		err := r.abort(ctx, cause, undo)
		if r.compensate {
			progress.CreatedStages = map[int]int64{}
			progress.CreatedApprovers = map[int]int64{}
		}
		return progress, err
	}

	kept := make(map[int64]bool, len(draft.Stages))
	for _, st := range draft.Stages {
		if st.StageID != nil {
			kept[*st.StageID] = true
		}
	}
	for _, st := range persisted {
		if kept[st.StageID] {
			continue
		}
		if err := r.deleteStage(ctx, st, token, &progress); err != nil {
			return fail(err)
		}
	}

	for i, st := range draft.Stages {
		var stageID int64
		if st.StageID != nil {
			stageID = *st.StageID
			req := models.UpdateStageRequest{
				StageOrder:   i + 1,
				StageName:    st.Name,
				ApprovalType: st.ApprovalType.Canonical(),
				TimeoutHours: st.TimeoutHours,
			}
			if _, err := r.store.UpdateStage(ctx, stageID, req, token); err != nil {
				return fail(fmt.Errorf("update stage %d: %w", stageID, err))
			}
			r.logger.Debug("updated stage", "stage_id", stageID, "order", i+1)
		} else {
			stageID, err = r.createStage(ctx, workflowID, i, st, token, &undo)
			if err != nil {
				return fail(err)
			}
			progress.CreatedStages[i] = stageID
		}

		if st.ApproverID != nil {
			if _, err := r.store.UpdateApprover(ctx, *st.ApproverID, approvers[i].updateRequest(), token); err != nil {
				return fail(fmt.Errorf("update approver %d: %w", *st.ApproverID, err))
			}
			r.logger.Debug("updated approver", "approver_id", *st.ApproverID, "stage_id", stageID)
			continue
		}
		approverID, err := r.createApprover(ctx, stageID, approvers[i], token, &undo)
		if err != nil {
			return fail(fmt.Errorf("stage %d: %w", i+1, err))
		}
		progress.CreatedApprovers[i] = approverID
	}

	r.logger.Info("workflow updated", "workflow_id", workflowID, "stages", len(draft.Stages))
	return progress, nil
}

func (r *Reconciler) createStage(ctx context.Context, workflowID int64, i int, st StageDraft, token string, undo *undoStack) (int64, error) {
	req := models.CreateStageRequest{
		WorkflowID:   workflowID,
		StageOrder:   i + 1,
		StageName:    st.Name,
		ApprovalType: st.ApprovalType.Canonical(),
		TimeoutHours: st.TimeoutHours,
	}
	stage, err := r.store.CreateStage(ctx, req, token)
	if err != nil {
		return 0, fmt.Errorf("create stage %q: %w", st.Name, err)
	}
	if stage.StageID == 0 {
		return 0, fmt.Errorf("create stage %q: response carries no stage id", st.Name)
	}
	stageID := stage.StageID
	undo.push("stage", stageID, func(ctx context.Context) error {
		return r.store.DeleteStage(ctx, stageID, token)
	})
	r.logger.Debug("created stage", "stage_id", stageID, "order", i+1)
	return stageID, nil
}

func (r *Reconciler) createApprover(ctx context.Context, stageID int64, f approverFields, token string, undo *undoStack) (int64, error) {
	approver, err := r.store.CreateApprover(ctx, f.createRequest(stageID), token)
	if err != nil {
		return 0, fmt.Errorf("create approver: %w", err)
	}
	approverID := approver.ID
	undo.push("approver", approverID, func(ctx context.Context) error {
		return r.store.DeleteApprover(ctx, approverID, token)
	})
	r.logger.Debug("created approver", "approver_id", approverID, "stage_id", stageID, "type", f.Type)
	return approverID, nil
}

// deleteStage removes every approver of st and then st itself. A stage
// that arrives without its approvers embedded has them listed first.
func (r *Reconciler) deleteStage(ctx context.Context, st models.WorkflowStage, token string, progress *UpdateProgress) error {
	approvers := st.Approvers
	if len(approvers) == 0 {
		listed, err := r.store.ListApprovers(ctx, st.StageID, token)
		if err != nil {
			return fmt.Errorf("list approvers of stage %d: %w", st.StageID, err)
		}
		approvers = listed
	}
	for _, a := range approvers {
		if err := r.store.DeleteApprover(ctx, a.ID, token); err != nil {
			return fmt.Errorf("delete approver %d of stage %d: %w", a.ID, st.StageID, err)
		}
		progress.DeletedApprovers = append(progress.DeletedApprovers, a.ID)
	}
	if err := r.store.DeleteStage(ctx, st.StageID, token); err != nil {
		return fmt.Errorf("delete stage %d: %w", st.StageID, err)
	}
	progress.DeletedStages = append(progress.DeletedStages, st.StageID)
	r.logger.Debug("deleted stage", "stage_id", st.StageID, "approvers", len(approvers))
	return nil
}
