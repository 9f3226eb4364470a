package services

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"hrm-admin/console/internal/auth"
	"hrm-admin/console/internal/repository"
	"hrm-admin/console/pkg/models"
)

// Filter narrows the workflow list. Zero fields match everything.
type Filter struct {
	Search string
	Type   models.WorkflowType
	Active *bool
}

// Match reports whether w passes every set field of f.
func (f Filter) Match(w models.Workflow) bool {
	if f.Search != "" && !strings.Contains(strings.ToLower(w.WorkflowName), strings.ToLower(f.Search)) {
		return false
	}
	if f.Type != "" && w.WorkflowType != f.Type {
		return false
	}
	if f.Active != nil && w.IsActive != *f.Active {
		return false
	}
	return true
}

// Stats are the summary counts of the workflow list.
type Stats struct {
	Total    int `json:"total"`
	Active   int `json:"active"`
	Inactive int `json:"inactive"`
}

// Board is the workflow list together with the roles and users the wizard
// needs. It re-fetches after saves instead of patching rows, except for the
// active toggle which updates its row in place.
type Board struct {
	defs       repository.DefinitionStore
	dir        repository.DirectoryStore
	reconciler *Reconciler
	logger     Logger

	defaultTimeout int

	mu        sync.RWMutex
	workflows []models.Workflow
	roles     []models.Role
	users     []models.User
}

// NewBoard creates an empty board. Call Load before reading it.
func NewBoard(defs repository.DefinitionStore, dir repository.DirectoryStore, rec *Reconciler, logger Logger,
	defaultTimeout int) *Board {
	return &Board{
		defs:           defs,
		dir:            dir,
		reconciler:     rec,
		logger:         logger,
		defaultTimeout: defaultTimeout,
	}
}

// Load fetches workflows and roles, and users when the session allows it.
// A failed user fetch only narrows the specific-user options.
func (b *Board) Load(ctx context.Context, session *auth.Session) error {
	workflows, err := b.defs.ListWorkflows(ctx)
	if err != nil {
		return fmt.Errorf("load workflows: %w", err)
	}
	roles, err := b.dir.ListRoles(ctx, session.AccessToken())
	if err != nil {
		return fmt.Errorf("load roles: %w", err)
	}
	users, err := b.dir.ListUsers(ctx, session.AccessToken())
	if err != nil {
		b.logger.Warn("could not load users for approver options", "error", err)
		users = nil
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	b.workflows, b.roles, b.users = workflows, roles, users
	return nil
}

// Refresh re-fetches only the workflow list.
func (b *Board) Refresh(ctx context.Context) error {
	workflows, err := b.defs.ListWorkflows(ctx)
	if err != nil {
		return fmt.Errorf("refresh workflows: %w", err)
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.workflows = workflows
	return nil
}

// Workflows returns the loaded workflows that match f.
func (b *Board) Workflows(f Filter) []models.Workflow {
	b.mu.RLock()
	defer b.mu.RUnlock()
	out := make([]models.Workflow, 0, len(b.workflows))
	for _, w := range b.workflows {
		if f.Match(w) {
			out = append(out, w)
		}
	}
	return out
}

// Stats counts all loaded workflows regardless of any filter.
func (b *Board) Stats() Stats {
	b.mu.RLock()
	defer b.mu.RUnlock()
	s := Stats{Total: len(b.workflows)}
	for _, w := range b.workflows {
		if w.IsActive {
			s.Active++
		}
	}
	s.Inactive = s.Total - s.Active
	return s
}

// Roles returns the loaded roles.
func (b *Board) Roles() []models.Role {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return append([]models.Role(nil), b.roles...)
}

// Workflow returns the loaded workflow with id.
func (b *Board) Workflow(id int64) (models.Workflow, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	for _, w := range b.workflows {
		if w.WorkflowID == id {
			return w, true
		}
	}
	return models.Workflow{}, false
}

// Stages returns the persisted stages of a workflow.
func (b *Board) Stages(ctx context.Context, id int64) ([]models.WorkflowStage, error) {
	return b.defs.ListStages(ctx, id)
}

func (b *Board) setActive(id int64, active bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for i := range b.workflows {
		if b.workflows[i].WorkflowID == id {
			b.workflows[i].IsActive = active
		}
	}
}

// Deactivate soft-deletes the workflow and marks its row inactive.
func (b *Board) Deactivate(ctx context.Context, session *auth.Session, id int64) error {
	if err := session.Require(); err != nil {
		return err
	}
	if err := b.defs.DeleteWorkflow(ctx, id, session.AccessToken()); err != nil {
		b.logger.Error("deactivate workflow failed", "workflow_id", id, "error", err)
		return fmt.Errorf("deactivate workflow %d: %w", id, err)
	}
	b.setActive(id, false)
	b.logger.Info("workflow deactivated", "workflow_id", id)
	return nil
}

// Activate re-submits the workflow header unchanged except for the active flag.
func (b *Board) Activate(ctx context.Context, session *auth.Session, id int64) error {
	if err := session.Require(); err != nil {
		return err
	}
	w, ok := b.Workflow(id)
	if !ok {
		fetched, err := b.defs.GetWorkflow(ctx, id)
		if err != nil {
			return fmt.Errorf("load workflow %d: %w", id, err)
		}
		w = *fetched
	}
	req := w.Request()
	req.IsActive = true
	if _, err := b.defs.UpdateWorkflow(ctx, id, req, session.AccessToken()); err != nil {
		b.logger.Error("activate workflow failed", "workflow_id", id, "error", err)
		return fmt.Errorf("activate workflow %d: %w", id, err)
	}
	b.setActive(id, true)
	b.logger.Info("workflow activated", "workflow_id", id)
	return nil
}

// Toggle flips the active flag of a loaded workflow and returns the new value.
func (b *Board) Toggle(ctx context.Context, session *auth.Session, id int64) (bool, error) {
	w, ok := b.Workflow(id)
	if !ok {
		return false, fmt.Errorf("workflow %d: %w", id, repository.ErrNotFound)
	}
	if w.IsActive {
		return false, b.Deactivate(ctx, session, id)
	}
	return true, b.Activate(ctx, session, id)
}

// OpenCreate starts a create wizard over the loaded roles and users.
func (b *Board) OpenCreate() *Wizard {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return NewCreateWizard(b.reconciler, b.roles, b.users, b.defaultTimeout)
}

// OpenEdit starts an edit wizard for workflow id.
func (b *Board) OpenEdit(ctx context.Context, id int64) (*Wizard, error) {
	w, ok := b.Workflow(id)
	if !ok {
		fetched, err := b.defs.GetWorkflow(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("load workflow %d: %w", id, err)
		}
		w = *fetched
	}
	b.mu.RLock()
	roles, users := b.roles, b.users
	b.mu.RUnlock()
	return NewEditWizard(ctx, b.reconciler, w, roles, users, b.defaultTimeout)
}

// Submit submits wz and re-fetches the list when it succeeds.
func (b *Board) Submit(ctx context.Context, session *auth.Session, wz *Wizard) (int64, error) {
	id, err := wz.Submit(ctx, session)
	if err != nil {
		return id, err
	}
	if err := b.Refresh(ctx); err != nil {
		b.logger.Warn("workflow saved but list refresh failed", "workflow_id", id, "error", err)
	}
	return id, nil
}
