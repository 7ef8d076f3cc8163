// Package server wires the store, entity operations, and MCP components
// into a runnable corkboard server.
//
// This is the composition root: it creates concrete implementations and
// injects them into the layers that depend on abstractions. No board
// logic lives here, only wiring and transports.
package server

import (
	"context"
	"fmt"
	"time"

	"github.com/corkboardhq/corkboard/internal/config"
	"github.com/corkboardhq/corkboard/internal/dispatch"
	"github.com/corkboardhq/corkboard/internal/logging"
	"github.com/corkboardhq/corkboard/internal/ops"
	"github.com/corkboardhq/corkboard/internal/prompts"
	"github.com/corkboardhq/corkboard/internal/resources"
	"github.com/corkboardhq/corkboard/internal/store"
	"github.com/corkboardhq/corkboard/internal/store/postgrest"
	"github.com/corkboardhq/corkboard/internal/store/sqlite"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// Version is set at build time via ldflags.
var Version = "dev"

// bootstrapTimeout bounds the startup workspace check against a slow
// or unreachable backend.
const bootstrapTimeout = 10 * time.Second

// Server bundles the MCP server with the dispatcher and settings it
// was built from. Transports hang off it: ServeStdio here, ServeSSE
// in sse.go.
type Server struct {
	MCP        *server.MCPServer
	Dispatcher *dispatch.Dispatcher

	cfg *config.Config
	log *logging.Logger
}

// New creates and configures the corkboard server with all tools,
// prompts, and resources registered. This is the single place where
// all dependencies are resolved.
//
// The returned cleanup function closes the backing store and must be
// called on shutdown (typically via defer). It is always non-nil and
// safe to call even when New fails.
func New(cfg *config.Config, log *logging.Logger) (*Server, func(), error) {
	st, err := openStore(cfg, log)
	if err != nil {
		return nil, noop, err
	}
	cleanup := func() {
		if err := st.Close(); err != nil {
			log.Warn("store close", "error", err)
		}
	}

	o := ops.New(st, log, cfg.DefaultWorkspace)
	d := dispatch.New(o, log)

	s := server.NewMCPServer(
		"corkboard",
		Version,
		server.WithToolCapabilities(true),
		server.WithResourceCapabilities(false, true),
		server.WithPromptCapabilities(true),
		server.WithRecovery(),
		server.WithInstructions(serverInstructions()),
	)

	for _, t := range d.Tools() {
		s.AddTool(t.Definition, toolHandler(d, t.Definition.Name))
	}

	standup := prompts.NewStandupPrompt()
	s.AddPrompt(standup.Definition(), standup.Handle)

	plan := prompts.NewPlanPrompt()
	s.AddPrompt(plan.Definition(), plan.Handle)

	resourceHandler := resources.NewHandler(o)
	s.AddResource(resourceHandler.WorkspacesResource(), resourceHandler.HandleWorkspaces)

	log.Info("server configured",
		"version", Version,
		"backend", cfg.ResolvedBackend(),
		"tools", d.Count(),
	)

	return &Server{MCP: s, Dispatcher: d, cfg: cfg, log: log}, cleanup, nil
}

// noop is the default cleanup when no store was opened.
func noop() {}

// openStore builds the configured store backend. The embedded database
// additionally seeds a first workspace so a fresh install is usable
// without any setup calls.
func openStore(cfg *config.Config, log *logging.Logger) (store.Store, error) {
	switch cfg.ResolvedBackend() {
	case config.BackendPostgREST:
		log.Info("using postgrest store", "url", cfg.StoreURL)
		return postgrest.New(cfg.StoreURL, cfg.StoreKey, log), nil

	case config.BackendSQLite:
		st, err := sqlite.New(cfg.DBPath)
		if err != nil {
			return nil, fmt.Errorf("server: open sqlite store: %w", err)
		}

		ctx, cancel := context.WithTimeout(context.Background(), bootstrapTimeout)
		defer cancel()
		id, err := st.EnsureWorkspace(ctx, cfg.BootstrapWorkspace)
		if err != nil {
			st.Close()
			return nil, fmt.Errorf("server: bootstrap workspace: %w", err)
		}
		if id != "" {
			log.Info("bootstrapped workspace", "name", cfg.BootstrapWorkspace, "id", id)
		}

		log.Info("using sqlite store", "path", cfg.DBPath)
		return st, nil

	default:
		return nil, fmt.Errorf("server: unknown backend %q", cfg.ResolvedBackend())
	}
}

// ServeStdio runs the server over stdin/stdout until the client hangs
// up. Logs go to stderr so the protocol stream stays clean.
func (s *Server) ServeStdio() error {
	s.log.Info("stdio transport ready")
	return server.ServeStdio(s.MCP)
}

// toolHandler adapts a dispatcher route to the MCP handler signature.
// Failed envelopes become tool errors so hosts can tell success from
// failure without parsing the payload; both carry the full JSON.
func toolHandler(d *dispatch.Dispatcher, name string) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		res := d.Dispatch(ctx, name, req.GetArguments())
		if !res.Success {
			return mcp.NewToolResultError(res.JSON()), nil
		}
		return mcp.NewToolResultText(res.JSON()), nil
	}
}

// serverInstructions returns the system instructions that tell the AI
// how to work the board effectively.
func serverInstructions() string {
	return `You have access to corkboard, a kanban-style project management server.

## DATA MODEL
corkboard is a three-level hierarchy:
- Workspace: a team or client area. Owns projects and team members.
- Project: a deliverable with status, priority, progress, and an optional budget.
- Task: a unit of work on a project board, ordered within its project.

Every entity is addressed by ID. IDs come from list and create responses.
Never invent an ID.

## FINDING YOUR BEARINGS
1. Call list_workspaces to see what exists
2. Call get_workspace_summary for counts and recently active projects
3. Call get_work_in_progress to see what is mid-flight right now
4. Call list_projects and get_project to drill into one board

## STATUS VOCABULARIES
- Project statuses: planning, active, on-hold, completed
- Task statuses: backlog, todo, in-progress, review, done
- Priorities (both): low, medium, high, critical

move_task rejects anything outside the task list. Pick from it.

## WORKING THE BOARD
- Create work with create_project and create_task. Only names and titles
  are required; sensible defaults cover the rest.
- Move tasks with move_task, or the start_task / complete_task /
  review_task shortcuts.
- Update fields with update_task / update_project. Send only the fields
  you want to change; omitted fields keep their values.
- Find things with search_tasks. It matches titles and descriptions,
  case-insensitively, and can be narrowed by workspace, project, or status.

## PROGRESS
Project progress is the rounded share of its tasks in status done. It is
recomputed automatically whenever a task is created, deleted, or changes
status. Use update_project_progress only to override it by hand, and
expect the next task change to overwrite the override.

## RESPONSES
Every tool returns a JSON envelope with "success" and "message", plus
"data" on success or "error" and a stable "code" on failure. Read the
message for a human summary and data for the payload. On failure, relay
the error instead of retrying blindly: a NOT_FOUND code means the ID is
wrong or stale, and INVALID_STATUS lists the accepted values.

## GOOD BEHAVIOR
- Confirm with the user before delete_task; deletion is permanent.
- Keep task titles short and imperative ("Ship login flow") and put
  details in the description.
- When the user references work loosely ("the login thing"), resolve it
  with search_tasks before acting on it.`
}
