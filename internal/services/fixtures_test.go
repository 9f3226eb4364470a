package services

import (
	"context"
	"strconv"
	"sync"
	"testing"

	"hrm-admin/console/internal/auth"
	"hrm-admin/console/internal/logging"
	"hrm-admin/console/internal/repository"
	"hrm-admin/console/pkg/models"
)

type fixture struct {
	store   *repository.MemoryStore
	rec     *Reconciler
	roles   []models.Role
	admin   models.Role
	manage  models.Role
	session *auth.Session
}

func newFixture(t *testing.T, opts ...ReconcilerOption) *fixture {
	t.Helper()
	store := repository.NewMemoryStore()
	admin := store.PutRole(models.Role{RoleName: "ADMIN", IsActive: true})
	manage := store.PutRole(models.Role{RoleName: "MANAGE", IsActive: true})
	return &fixture{
		store:  store,
		rec:    NewReconciler(store, logging.Nop(), opts...),
		roles:  []models.Role{admin, manage},
		admin:  admin,
		manage: manage,
		session: auth.NewSession(models.LoginResponse{
			AccessToken: "tok",
			UserID:      1,
			Username:    "admin",
			Role:        models.RoleAdmin,
		}),
	}
}

func roleStage(name, role string) StageDraft {
	return StageDraft{
		Name:         name,
		ApprovalType: ChoiceSingle,
		TimeoutHours: 3,
		Approver:     ApproverAssignment{Kind: KindRole, Value: role},
	}
}

func leaveDraft(stages ...StageDraft) WorkflowDraft {
	return WorkflowDraft{
		BasicInfo: BasicInfo{Name: "Annual Leave Approval", Type: models.WorkflowTypeLeave, IsActive: true},
		Stages:    stages,
	}
}

// blockingStore holds CreateWorkflow until release is closed.
type blockingStore struct {
	*repository.MemoryStore
	once    sync.Once
	entered chan struct{}
	release chan struct{}
}

func (b *blockingStore) CreateWorkflow(ctx context.Context, req models.WorkflowRequest, token string) (*models.Workflow, error) {
	b.once.Do(func() { close(b.entered) })
	<-b.release
	return b.MemoryStore.CreateWorkflow(ctx, req, token)
}

// failNthStageStore fails the failOn-th CreateStage call without forwarding it.
type failNthStageStore struct {
	*repository.MemoryStore
	failOn int
	err    error

	mu    sync.Mutex
	count int
}

func (s *failNthStageStore) CreateStage(ctx context.Context, req models.CreateStageRequest, token string) (*models.WorkflowStage, error) {
	s.mu.Lock()
	s.count++
	n := s.count
	s.mu.Unlock()
	if n == s.failOn {
		return nil, s.err
	}
	return s.MemoryStore.CreateStage(ctx, req, token)
}

func itoa(n int64) string {
	return strconv.FormatInt(n, 10)
}
