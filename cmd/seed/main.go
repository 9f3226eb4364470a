package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"

	"hrm-admin/console/internal/auth"
	"hrm-admin/console/internal/config"
	"hrm-admin/console/internal/logging"
	"hrm-admin/console/internal/repository"
	"hrm-admin/console/internal/services"
	"hrm-admin/console/pkg/models"
)

func main() {
	ctx := context.Background()

	envFile := flag.String("env", "", "Path to .env file")
	username := flag.String("username", os.Getenv("HRM_SEED_USERNAME"), "Admin username")
	password := flag.String("password", os.Getenv("HRM_SEED_PASSWORD"), "Admin password")
	flag.Parse()

	// Load config
	cfg, err := config.LoadConfig(*envFile)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	logger := logging.New(os.Stdout, cfg.Log.Level, cfg.Log.Format)

	store := repository.NewRESTStore(cfg.API.BaseURL,
		repository.WithTimeout(cfg.API.Timeout),
		repository.WithLoginPath(cfg.API.LoginPath),
	)

	session, err := auth.New(store, logger).Login(ctx, *username, *password)
	if err != nil {
		log.Fatalf("Failed to sign in: %v", err)
	}

	rec := services.NewReconciler(store, logger, services.WithCompensation(cfg.Workflow.CompensateOnFailure))
	created, err := seed(ctx, store, rec, session, sampleWorkflows(), logger)
	if err != nil {
		log.Fatalf("Seeding failed: %v", err)
	}
	logger.Info("Seeding complete!", "created", created)
}

// sampleWorkflows are the workflows a fresh installation starts with.
func sampleWorkflows() []services.WorkflowDraft {
	stage := func(name string, choice services.ApprovalChoice, hours int, kind services.ApproverKind, value string) services.StageDraft {
		return services.StageDraft{
			Name:         name,
			ApprovalType: choice,
			TimeoutHours: hours,
			Approver:     services.ApproverAssignment{Kind: kind, Value: value},
		}
	}
	return []services.WorkflowDraft{
		{
			BasicInfo: services.BasicInfo{Name: "Leave Request Approval", Type: models.WorkflowTypeLeave, IsActive: true,
				Description: "Direct manager, then HR"},
			Stages: []services.StageDraft{
				stage("Manager Review", services.ChoiceSingle, 24, services.KindDynamic, string(models.DynamicDirectManager)),
				stage("HR Confirmation", services.ChoiceAny, 48, services.KindRole, string(models.RoleHR)),
			},
		},
		{
			BasicInfo: services.BasicInfo{Name: "Overtime Approval", Type: models.WorkflowTypeOvertime, IsActive: true},
			Stages: []services.StageDraft{
				stage("Department Head", services.ChoiceSingle, 12, services.KindDynamic, string(models.DynamicDeptHead)),
			},
		},
		{
			BasicInfo: services.BasicInfo{Name: "Payroll Sign-off", Type: models.WorkflowTypePayroll, IsActive: false},
			Stages: []services.StageDraft{
				stage("HR Manager", services.ChoiceSingle, 24, services.KindDynamic, string(models.DynamicHRManager)),
				stage("Administrators", services.ChoiceAll, 72, services.KindRole, string(models.RoleAdmin)),
			},
		},
	}
}

// seed creates every draft whose name is not taken yet and returns the
// names it created.
func seed(ctx context.Context, dir repository.DirectoryStore, rec *services.Reconciler, session *auth.Session,
	drafts []services.WorkflowDraft, logger services.Logger) ([]string, error) {
	existing, err := rec.Store().ListWorkflows(ctx)
	if err != nil {
		return nil, fmt.Errorf("list existing workflows: %w", err)
	}
	existingMap := make(map[string]bool)
	for _, w := range existing {
		existingMap[w.WorkflowName] = true
	}

	roles, err := dir.ListRoles(ctx, session.AccessToken())
	if err != nil {
		return nil, fmt.Errorf("list roles: %w", err)
	}

	var created []string
	for _, d := range drafts {
		if existingMap[d.BasicInfo.Name] {
			logger.Info("Skipping existing workflow", "name", d.BasicInfo.Name)
			continue
		}
		w, err := rec.Create(ctx, session, d, roles)
		if err != nil {
			return created, fmt.Errorf("create workflow %q: %w", d.BasicInfo.Name, err)
		}
		logger.Info("Seeded workflow", "name", d.BasicInfo.Name, "id", w.WorkflowID)
		created = append(created, d.BasicInfo.Name)
	}
	return created, nil
}
