package cli

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"hrm-admin/console/internal/auth"
	"hrm-admin/console/internal/services"
	"hrm-admin/console/pkg/models"
)

func taskCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "task",
		Short: "Review tasks assigned to or created by you",
	}

	list := &cobra.Command{
		Use:   "list",
		Short: "List your tasks",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := app.session()
			if err != nil {
				return err
			}
			search, _ := cmd.Flags().GetString("search")
			priority, _ := cmd.Flags().GetString("priority")
			status, _ := cmd.Flags().GetString("status")
			tasks, err := app.hr().ListTasks(cmd.Context(), s, services.TaskFilter{
				Search:   search,
				Priority: models.TaskPriority(priority),
				Status:   models.TaskStatus(status),
			})
			if err != nil {
				return failure(err, "Could not load tasks")
			}
			out := cmd.OutOrStdout()
			if len(tasks) == 0 {
				fmt.Fprintln(out, "No tasks found.")
				return nil
			}
			tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tTITLE\tTYPE\tPRIORITY\tSTATUS")
			for _, t := range tasks {
				fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\n", t.TaskID, t.TaskTitle, t.TaskType, t.Priority, t.Status)
			}
			return tw.Flush()
		},
	}
	list.Flags().String("search", "", "Match on id, title or type")
	list.Flags().String("priority", "", "High, Medium or Low")
	list.Flags().String("status", "", "Pending, InProgress, Approved, Rejected or Cancelled")

	approve := &cobra.Command{
		Use:   "approve <id>",
		Short: "Approve a pending task",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			s, err := app.session()
			if err != nil {
				return err
			}
			comments, _ := cmd.Flags().GetString("comments")
			if err := app.hr().ApproveTask(cmd.Context(), s, id, comments); err != nil {
				return failure(err, "Failed to approve task")
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Task %d approved\n", id)
			return nil
		},
	}
	approve.Flags().String("comments", "", "Approval comments")

	reject := &cobra.Command{
		Use:   "reject <id>",
		Short: "Reject a pending task",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			s, err := app.session()
			if err != nil {
				return err
			}
			reason, _ := cmd.Flags().GetString("reason")
			if err := app.hr().RejectTask(cmd.Context(), s, id, reason); err != nil {
				return failure(err, "Failed to reject task")
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Task %d rejected\n", id)
			return nil
		},
	}
	reject.Flags().String("reason", "", fmt.Sprintf("Why the task is rejected (at least %d characters)", services.MinRejectReason))
	_ = reject.MarkFlagRequired("reason")

	update := &cobra.Command{
		Use:   "update <id>",
		Short: "Edit a task; only the flags given are changed",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			s, err := app.session()
			if err != nil {
				return err
			}
			var req models.TaskRequest
			req.TaskTitle, _ = cmd.Flags().GetString("title")
			req.TaskDescription, _ = cmd.Flags().GetString("description")
			priority, _ := cmd.Flags().GetString("priority")
			req.Priority = models.TaskPriority(priority)
			req.AssignedTo, _ = cmd.Flags().GetInt64("assign")
			req.DueDate, _ = cmd.Flags().GetString("due")
			req.CompletionNotes, _ = cmd.Flags().GetString("notes")
			task, err := app.hr().UpdateTask(cmd.Context(), s, id, req)
			if err != nil {
				return failure(err, "Failed to update task")
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Task %d updated: %s (%s)\n", task.TaskID, task.TaskTitle, task.Priority)
			return nil
		},
	}
	update.Flags().String("title", "", "New title")
	update.Flags().String("description", "", "New description")
	update.Flags().String("priority", "", "High, Medium or Low")
	update.Flags().Int64("assign", 0, "User id to assign the task to")
	update.Flags().String("due", "", "Due date (YYYY-MM-DD)")
	update.Flags().String("notes", "", "Completion notes")

	cmd.AddCommand(list, approve, reject, update)
	return cmd
}

// userAdmin returns the saved session when its role may manage accounts.
func (a *App) userAdmin() (*auth.Session, error) {
	s, err := a.session()
	if err != nil {
		return nil, err
	}
	if !auth.Allowed(s.Role, auth.SectionUsers) {
		return nil, services.ErrForbidden
	}
	return s, nil
}

func userCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "user",
		Short: "Manage user accounts",
	}

	list := &cobra.Command{
		Use:   "list",
		Short: "List user accounts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := app.userAdmin()
			if err != nil {
				return err
			}
			users, err := app.hr().ListUsers(cmd.Context(), s)
			if err != nil {
				return failure(err, "Could not load users")
			}
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tUSERNAME\tEMAIL\tROLES\tACTIVE")
			for _, u := range users {
				fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%t\n", u.UserID, u.Username, u.Email, strings.Join(u.Roles, ","), u.IsActive)
			}
			return tw.Flush()
		},
	}

	create := &cobra.Command{
		Use:   "create",
		Short: "Add a user account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := app.userAdmin()
			if err != nil {
				return err
			}
			var req models.UserRequest
			req.Username, _ = cmd.Flags().GetString("username")
			req.Email, _ = cmd.Flags().GetString("email")
			req.Password, _ = cmd.Flags().GetString("password")
			req.Roles, _ = cmd.Flags().GetStringSlice("role")
			user, err := app.hr().CreateUser(cmd.Context(), s, req)
			if err != nil {
				return failure(err, "Failed to create user")
			}
			fmt.Fprintf(cmd.OutOrStdout(), "User %d created: %s\n", user.UserID, user.Username)
			return nil
		},
	}
	create.Flags().String("username", "", "Login name")
	create.Flags().String("email", "", "Email address")
	create.Flags().String("password", "", "Initial password")
	create.Flags().StringSlice("role", nil, "Role to assign; repeat for several")

	update := &cobra.Command{
		Use:   "update <id>",
		Short: "Edit a user account; omitted flags keep their current value",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			s, err := app.userAdmin()
			if err != nil {
				return err
			}
			users, err := app.hr().ListUsers(cmd.Context(), s)
			if err != nil {
				return failure(err, "Could not load users")
			}
			var current *models.User
			for i := range users {
				if users[i].UserID == id {
					current = &users[i]
				}
			}
			if current == nil {
				return fmt.Errorf("user %d not found", id)
			}
			req := models.UserRequest{Username: current.Username, Email: current.Email}
			if cmd.Flags().Changed("username") {
				req.Username, _ = cmd.Flags().GetString("username")
			}
			if cmd.Flags().Changed("email") {
				req.Email, _ = cmd.Flags().GetString("email")
			}
			if cmd.Flags().Changed("role") {
				req.Roles, _ = cmd.Flags().GetStringSlice("role")
			}
			req.Password, _ = cmd.Flags().GetString("password")
			user, err := app.hr().UpdateUser(cmd.Context(), s, id, req)
			if err != nil {
				return failure(err, "Failed to update user")
			}
			fmt.Fprintf(cmd.OutOrStdout(), "User %d updated: %s <%s>\n", user.UserID, user.Username, user.Email)
			return nil
		},
	}
	update.Flags().String("username", "", "New login name")
	update.Flags().String("email", "", "New email address")
	update.Flags().String("password", "", "New password")
	update.Flags().StringSlice("role", nil, "Replace the assigned roles; repeat for several")

	cmd.AddCommand(list, create, update)
	return cmd
}

func attendanceCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "attendance",
		Short: "Record and review your attendance",
	}

	checkIn := &cobra.Command{
		Use:   "check-in",
		Short: "Record your arrival",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := app.session()
			if err != nil {
				return err
			}
			location, _ := cmd.Flags().GetString("location")
			remarks, _ := cmd.Flags().GetString("remarks")
			resp, err := app.hr().CheckIn(cmd.Context(), s, location, remarks)
			if err != nil {
				return failure(err, "Check-in failed")
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Checked in at %s (%s)\n", resp.CheckInTime, resp.Status)
			return nil
		},
	}
	checkIn.Flags().String("location", "", "Where you are working from")
	checkIn.Flags().String("remarks", "", "Free-form remarks")

	checkOut := &cobra.Command{
		Use:   "check-out",
		Short: "Record your departure",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := app.session()
			if err != nil {
				return err
			}
			resp, err := app.hr().CheckOut(cmd.Context(), s)
			if err != nil {
				return failure(err, "Check-out failed")
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Checked out (%s)\n", resp.AttendanceDate)
			return nil
		},
	}

	history := &cobra.Command{
		Use:   "history",
		Short: "Show your attendance records",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := app.session()
			if err != nil {
				return err
			}
			records, err := app.hr().History(cmd.Context(), s)
			if err != nil {
				return failure(err, "Could not load attendance")
			}
			out := cmd.OutOrStdout()
			if len(records) == 0 {
				fmt.Fprintln(out, "No attendance records.")
				return nil
			}
			tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "DATE\tIN\tOUT\tHOURS\tSTATUS")
			for _, r := range records {
				hours := "-"
				if r.TotalHours != nil {
					hours = fmt.Sprintf("%.2f", *r.TotalHours)
				}
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", r.Date, deref(r.CheckIn), deref(r.CheckOut), hours, r.Status)
			}
			return tw.Flush()
		},
	}

	cmd.AddCommand(checkIn, checkOut, history)
	return cmd
}

func deref(s *string) string {
	if s == nil {
		return "-"
	}
	return *s
}
