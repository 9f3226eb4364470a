// Package mcp exposes the workflow board as MCP tools.
package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"hrm-admin/console/internal/auth"
	"hrm-admin/console/internal/services"
	"hrm-admin/console/pkg/models"
)

type Server struct {
	mcpServer *server.MCPServer
	board     *services.Board
	session   *auth.Session
}

// NewServer registers the workflow tools. session may be nil, in which case
// the read-only tools still work and the toggles report an expired session.
func NewServer(board *services.Board, session *auth.Session, version string) *Server {
	s := &Server{
		mcpServer: server.NewMCPServer(
			"HRM Workflow Admin",
			version,
			server.WithToolCapabilities(true),
		),
		board:   board,
		session: session,
	}

	s.registerTools()
	return s
}

// ConfiguredSession builds the session the MCP tools act as from the
// configured token and user id. It returns nil when no token is configured.
func ConfiguredSession(token string, userID int64) *auth.Session {
	if token == "" {
		return nil
	}
	return auth.NewSession(models.LoginResponse{
		AccessToken: token,
		UserID:      userID,
		Username:    "mcp",
		Role:        models.RoleAdmin,
	})
}

func (s *Server) GetMCPServer() *server.MCPServer {
	return s.mcpServer
}

func (s *Server) registerTools() {
	s.mcpServer.AddTool(
		mcp.NewTool(
			"list_workflows",
			mcp.WithDescription("List approval workflows, optionally filtered"),
			mcp.WithString("search", mcp.Description("Case-insensitive match on the workflow name")),
			mcp.WithString("type", mcp.Description("Workflow type"),
				mcp.Enum("Leave", "Overtime", "Attendance", "Payroll", "Performance")),
			mcp.WithString("active", mcp.Description("Filter by status: true or false")),
		),
		s.handleListWorkflows,
	)

	s.mcpServer.AddTool(
		mcp.NewTool(
			"workflow_stats",
			mcp.WithDescription("Count workflows by status"),
		),
		s.handleStats,
	)

	s.mcpServer.AddTool(
		mcp.NewTool(
			"workflow_stages",
			mcp.WithDescription("List the stages of a workflow"),
			mcp.WithNumber("id", mcp.Required(), mcp.Description("The workflow id")),
		),
		s.handleStages,
	)

	s.mcpServer.AddTool(
		mcp.NewTool(
			"deactivate_workflow",
			mcp.WithDescription("Deactivate a workflow"),
			mcp.WithNumber("id", mcp.Required(), mcp.Description("The workflow id")),
		),
		s.handleDeactivate,
	)

	s.mcpServer.AddTool(
		mcp.NewTool(
			"activate_workflow",
			mcp.WithDescription("Activate a workflow"),
			mcp.WithNumber("id", mcp.Required(), mcp.Description("The workflow id")),
		),
		s.handleActivate,
	)
}

func arguments(request mcp.CallToolRequest) map[string]interface{} {
	args, ok := request.Params.Arguments.(map[string]interface{})
	if !ok {
		return map[string]interface{}{}
	}
	return args
}

func workflowID(request mcp.CallToolRequest) (int64, bool) {
	switch v := arguments(request)["id"].(type) {
	case float64:
		return int64(v), v > 0
	case string:
		id, err := strconv.ParseInt(v, 10, 64)
		return id, err == nil && id > 0
	default:
		return 0, false
	}
}

func jsonResult(v any) *mcp.CallToolResult {
	jsonBytes, _ := json.Marshal(v)
	return mcp.NewToolResultText(string(jsonBytes))
}

func (s *Server) handleListWorkflows(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)
	filter := services.Filter{}
	filter.Search, _ = args["search"].(string)
	if t, ok := args["type"].(string); ok {
		filter.Type = models.WorkflowType(t)
	}
	if raw, ok := args["active"].(string); ok && raw != "" {
		active, err := strconv.ParseBool(raw)
		if err != nil {
			return mcp.NewToolResultError("active must be true or false"), nil
		}
		filter.Active = &active
	}

	if err := s.board.Refresh(ctx); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to list workflows: %v", err)), nil
	}
	return jsonResult(s.board.Workflows(filter)), nil
}

func (s *Server) handleStats(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if err := s.board.Refresh(ctx); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to load workflows: %v", err)), nil
	}
	return jsonResult(s.board.Stats()), nil
}

func (s *Server) handleStages(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, ok := workflowID(request)
	if !ok {
		return mcp.NewToolResultError("Missing required parameter: id"), nil
	}
	stages, err := s.board.Stages(ctx, id)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to list stages: %v", err)), nil
	}
	return jsonResult(stages), nil
}

func (s *Server) handleDeactivate(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, ok := workflowID(request)
	if !ok {
		return mcp.NewToolResultError("Missing required parameter: id"), nil
	}
	if err := s.board.Deactivate(ctx, s.session, id); err != nil {
		return mcp.NewToolResultError(services.UserMessage(err, "Failed to deactivate workflow")), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("Workflow %d deactivated", id)), nil
}

func (s *Server) handleActivate(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, ok := workflowID(request)
	if !ok {
		return mcp.NewToolResultError("Missing required parameter: id"), nil
	}
	if err := s.board.Activate(ctx, s.session, id); err != nil {
		return mcp.NewToolResultError(services.UserMessage(err, "Failed to activate workflow")), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("Workflow %d activated", id)), nil
}

// MountHTTPHandlers serves the SSE transport under /mcp.
func MountHTTPHandlers(mux *http.ServeMux, mcpServer *server.MCPServer) {
	sseServer := server.NewSSEServer(mcpServer, server.WithStaticBasePath("/mcp"))

	mux.HandleFunc("/mcp", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			sseServer.ServeHTTP(w, r)
			return
		}
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	})

	mux.HandleFunc("/mcp/sse", sseServer.ServeHTTP)
	mux.HandleFunc("/mcp/message", sseServer.ServeHTTP)
}
