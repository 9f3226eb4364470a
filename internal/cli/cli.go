// Package cli implements the hrmctl commands.
package cli

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"hrm-admin/console/internal/auth"
	"hrm-admin/console/internal/repository"
	"hrm-admin/console/internal/services"
)

// App carries what every command needs.
type App struct {
	Backend        repository.Backend
	Sessions       *auth.FileSessionStore
	Logger         services.Logger
	DefaultTimeout int
	Compensate     bool

	// Now is used for the session countdown. Defaults to time.Now.
	Now func() time.Time
}

func (a *App) now() time.Time {
	if a.Now != nil {
		return a.Now()
	}
	return time.Now()
}

// session loads the saved session and drops it once it has expired.
func (a *App) session() (*auth.Session, error) {
	s, err := a.Sessions.Load()
	if errors.Is(err, auth.ErrNoSession) {
		return nil, fmt.Errorf("%w: run hrmctl login first", err)
	}
	if err != nil {
		return nil, err
	}
	if err := s.Require(); err != nil {
		if clearErr := a.Sessions.Clear(); clearErr != nil {
			a.Logger.Warn("could not remove expired session", "error", clearErr)
		}
		return nil, err
	}
	return s, nil
}

func (a *App) board() *services.Board {
	rec := services.NewReconciler(a.Backend, a.Logger, services.WithCompensation(a.Compensate))
	return services.NewBoard(a.Backend, a.Backend, rec, a.Logger, a.DefaultTimeout)
}

func (a *App) hr() *services.HRService {
	return services.NewHRService(a.Backend, a.Backend, a.Backend, a.Logger)
}

// failure turns err into the message shown to the user.
func failure(err error, fallback string) error {
	return errors.New(services.UserMessage(err, fallback))
}

func parseID(arg string) (int64, error) {
	id, err := strconv.ParseInt(arg, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid id %q", arg)
	}
	return id, nil
}

// SetupCLI adds every hrmctl command to rootCmd.
func SetupCLI(rootCmd *cobra.Command, app *App) {
	rootCmd.SilenceUsage = true
	rootCmd.SilenceErrors = true
	rootCmd.AddCommand(
		loginCmd(app),
		logoutCmd(app),
		whoamiCmd(app),
		workflowCmd(app),
		taskCmd(app),
		userCmd(app),
		attendanceCmd(app),
	)
}

func loginCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in and remember the session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			username, _ := cmd.Flags().GetString("username")
			password, _ := cmd.Flags().GetString("password")

			session, err := auth.New(app.Backend, app.Logger).Login(cmd.Context(), username, password)
			if err != nil {
				return failure(err, "Login failed")
			}
			if err := app.Sessions.Save(session); err != nil {
				return fmt.Errorf("save session: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Signed in as %s (%s)\n", session.Username, session.Role)
			return nil
		},
	}
	cmd.Flags().StringP("username", "u", "", "Username")
	cmd.Flags().StringP("password", "p", "", "Password")
	_ = cmd.MarkFlagRequired("username")
	_ = cmd.MarkFlagRequired("password")
	return cmd
}

func logoutCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the saved session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.Sessions.Clear(); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Signed out")
			return nil
		},
	}
}

func whoamiCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the signed-in user",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := app.session()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s (id %d, role %s)\n", s.Username, s.UserID, s.Role)
			if left := s.Remaining(app.now()); left >= 0 {
				fmt.Fprintf(out, "Session expires in %s\n", left.Truncate(time.Second))
			}
			for _, item := range auth.MenuFor(s.Role) {
				fmt.Fprintf(out, "  %-10s %s\n", item.Section, item.Label)
			}
			return nil
		},
	}
}
