package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"hrm-admin/console/internal/auth"
	"hrm-admin/console/internal/services"
	"hrm-admin/console/pkg/models"
)

func workflowCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "workflow",
		Short: "Manage approval workflows",
	}
	cmd.AddCommand(
		workflowListCmd(app),
		workflowStatsCmd(app),
		workflowShowCmd(app),
		workflowCreateCmd(app),
		workflowEditCmd(app),
		workflowToggleCmd(app, "activate", true),
		workflowToggleCmd(app, "deactivate", false),
	)
	return cmd
}

// loadedBoard signs in from the saved session and loads the board.
func (a *App) loadedBoard(cmd *cobra.Command) (*services.Board, *auth.Session, error) {
	s, err := a.session()
	if err != nil {
		return nil, nil, err
	}
	if !auth.Allowed(s.Role, auth.SectionWorkflows) {
		return nil, nil, services.ErrForbidden
	}
	board := a.board()
	if err := board.Load(cmd.Context(), s); err != nil {
		return nil, nil, failure(err, "Could not load workflows")
	}
	return board, s, nil
}

func workflowListCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List workflows",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			search, _ := cmd.Flags().GetString("search")
			typ, _ := cmd.Flags().GetString("type")
			active, _ := cmd.Flags().GetString("active")

			filter := services.Filter{Search: search, Type: models.WorkflowType(typ)}
			if active != "" {
				v, err := strconv.ParseBool(active)
				if err != nil {
					return fmt.Errorf("--active must be true or false")
				}
				filter.Active = &v
			}

			board, _, err := app.loadedBoard(cmd)
			if err != nil {
				return err
			}
			workflows := board.Workflows(filter)
			out := cmd.OutOrStdout()
			if len(workflows) == 0 {
				fmt.Fprintln(out, "No workflows found.")
				return nil
			}
			tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tNAME\tTYPE\tSTAGES\tSTATUS")
			for _, w := range workflows {
				status := "inactive"
				if w.IsActive {
					status = "active"
				}
				fmt.Fprintf(tw, "%d\t%s\t%s\t%d\t%s\n", w.WorkflowID, w.WorkflowName, w.WorkflowType, len(w.WorkflowStages), status)
			}
			return tw.Flush()
		},
	}
	cmd.Flags().String("search", "", "Match on workflow name")
	cmd.Flags().String("type", "", "Workflow type (Leave, Overtime, Attendance, Payroll, Performance)")
	cmd.Flags().String("active", "", "true or false")
	return cmd
}

func workflowStatsCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Count workflows by status",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			board, _, err := app.loadedBoard(cmd)
			if err != nil {
				return err
			}
			st := board.Stats()
			fmt.Fprintf(cmd.OutOrStdout(), "Total: %d  Active: %d  Inactive: %d\n", st.Total, st.Active, st.Inactive)
			return nil
		},
	}
}

func workflowShowCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show <id>",
		Short: "Show a workflow and its stages",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			board, _, err := app.loadedBoard(cmd)
			if err != nil {
				return err
			}
			w, ok := board.Workflow(id)
			if !ok {
				return fmt.Errorf("workflow %d not found", id)
			}
			stages, err := board.Stages(cmd.Context(), id)
			if err != nil {
				return failure(err, "Could not load stages")
			}

			out := cmd.OutOrStdout()
			if asDraft, _ := cmd.Flags().GetBool("draft"); asDraft {
				draft := services.DraftOf(w, stages, board.Roles(), app.DefaultTimeout)
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(draft)
			}

			fmt.Fprintf(out, "%s (%s), active: %t\n", w.WorkflowName, w.WorkflowType, w.IsActive)
			if w.Description != nil && *w.Description != "" {
				fmt.Fprintln(out, *w.Description)
			}
			tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ORDER\tSTAGE\tAPPROVAL\tTIMEOUT\tAPPROVER")
			for _, st := range stages {
				d := services.StageDraftOf(st, board.Roles(), app.DefaultTimeout)
				approver := "-"
				if d.Approver.Value != "" {
					approver = string(d.Approver.Kind) + ":" + d.Approver.Value
				}
				fmt.Fprintf(tw, "%d\t%s\t%s\t%dh\t%s\n", st.StageOrder, st.StageName, d.ApprovalType, d.TimeoutHours, approver)
			}
			return tw.Flush()
		},
	}
	cmd.Flags().Bool("draft", false, "Print the workflow as an editable draft file")
	return cmd
}

// readDraft loads a draft file. Files ending in .yaml or .yml are YAML with
// the same keys as the JSON form; anything else is read as JSON.
func readDraft(path string) (services.WorkflowDraft, error) {
	var draft services.WorkflowDraft
	raw, err := os.ReadFile(path)
	if err != nil {
		return draft, fmt.Errorf("read draft: %w", err)
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		var doc any
		if err := yaml.Unmarshal(raw, &doc); err != nil {
			return draft, fmt.Errorf("parse draft %s: %w", path, err)
		}
		if raw, err = json.Marshal(doc); err != nil {
			return draft, fmt.Errorf("parse draft %s: %w", path, err)
		}
	}
	if err := json.Unmarshal(raw, &draft); err != nil {
		return draft, fmt.Errorf("parse draft %s: %w", path, err)
	}
	return draft, nil
}

// runWizard walks wz through every step with draft and submits it, so a
// file is held to the same checks as the interactive builder.
func runWizard(cmd *cobra.Command, board *services.Board, s *auth.Session, wz *services.Wizard,
	draft services.WorkflowDraft) (int64, error) {
	if err := wz.SetBasicInfo(draft.BasicInfo); err != nil {
		return 0, err
	}
	if err := wz.Next(); err != nil {
		return 0, err
	}
	if err := wz.SetStages(draft.Stages); err != nil {
		return 0, err
	}
	if err := wz.Next(); err != nil {
		return 0, err
	}
	return board.Submit(cmd.Context(), s, wz)
}

func workflowCreateCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a workflow from a draft file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			file, _ := cmd.Flags().GetString("file")
			draft, err := readDraft(file)
			if err != nil {
				return err
			}
			board, s, err := app.loadedBoard(cmd)
			if err != nil {
				return err
			}
			id, err := runWizard(cmd, board, s, board.OpenCreate(), draft)
			if err != nil {
				return failure(err, "Failed to create workflow")
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created workflow '%s' with ID %d\n", draft.BasicInfo.Name, id)
			return nil
		},
	}
	cmd.Flags().StringP("file", "f", "", "Draft file (JSON)")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}

func workflowEditCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "edit <id>",
		Short: "Update a workflow from a draft file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			file, _ := cmd.Flags().GetString("file")
			draft, err := readDraft(file)
			if err != nil {
				return err
			}
			board, s, err := app.loadedBoard(cmd)
			if err != nil {
				return err
			}
			wz, err := board.OpenEdit(cmd.Context(), id)
			if err != nil {
				return failure(err, "Could not open workflow")
			}
			if _, err := runWizard(cmd, board, s, wz, draft); err != nil {
				return failure(err, "Failed to update workflow")
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Updated workflow %d\n", id)
			return nil
		},
	}
	cmd.Flags().StringP("file", "f", "", "Draft file (JSON)")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}

func workflowToggleCmd(app *App, use string, active bool) *cobra.Command {
	return &cobra.Command{
		Use:   use + " <id>",
		Short: "Mark a workflow " + map[bool]string{true: "active", false: "inactive"}[active],
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			board, s, err := app.loadedBoard(cmd)
			if err != nil {
				return err
			}
			if active {
				err = board.Activate(cmd.Context(), s, id)
			} else {
				err = board.Deactivate(cmd.Context(), s, id)
			}
			if err != nil {
				return failure(err, "Failed to "+use+" workflow")
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Workflow %d %sd\n", id, use)
			return nil
		},
	}
}
