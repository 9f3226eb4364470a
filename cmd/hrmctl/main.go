package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"hrm-admin/console/internal/auth"
	"hrm-admin/console/internal/cli"
	"hrm-admin/console/internal/config"
	"hrm-admin/console/internal/logging"
	"hrm-admin/console/internal/repository"
)

var rootCmd = &cobra.Command{
	Use:   "hrmctl",
	Short: "Administer HR approval workflows from the terminal",
}

func main() {
	envFile := os.Getenv("HRM_ENV_FILE")
	cfg, err := config.LoadConfig(envFile)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	store := repository.NewRESTStore(cfg.API.BaseURL,
		repository.WithTimeout(cfg.API.Timeout),
		repository.WithLoginPath(cfg.API.LoginPath),
	)
	cli.SetupCLI(rootCmd, &cli.App{
		Backend:        store,
		Sessions:       auth.NewFileSessionStore(cfg.Session.File),
		Logger:         logging.New(os.Stderr, cfg.Log.Level, cfg.Log.Format),
		DefaultTimeout: cfg.Workflow.DefaultTimeoutHours,
		Compensate:     cfg.Workflow.CompensateOnFailure,
	})

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
