package dispatch

import (
	"context"

	"github.com/corkboardhq/corkboard/internal/ops"
	"github.com/corkboardhq/corkboard/internal/result"
	"github.com/mark3labs/mcp-go/mcp"
)

func (d *Dispatcher) registerWorkspaceTools(o *ops.Ops) {
	d.add(mcp.NewTool("list_workspaces",
		mcp.WithDescription(
			"List every workspace, most recently updated first. "+
				"Call this first when the user has not named a workspace.",
		),
		mcp.WithNumber("limit",
			mcp.Description("Maximum number of workspaces to return (default: all)"),
		),
	), func(ctx context.Context, args map[string]any) result.Result {
		limit, _ := intArg(args, "limit")
		return o.ListWorkspaces(ctx, limit)
	})

	d.add(mcp.NewTool("get_workspace",
		mcp.WithDescription("Fetch a single workspace by its ID."),
		mcp.WithString("workspace_id",
			mcp.Required(),
			mcp.Description("Workspace ID"),
		),
	), func(ctx context.Context, args map[string]any) result.Result {
		return o.GetWorkspace(ctx, stringArg(args, "workspace_id"))
	})

	d.add(mcp.NewTool("get_workspace_summary",
		mcp.WithDescription(
			"Aggregate one workspace: project counts by status, task counts by "+
				"kanban column, team size, and the most recently active projects. "+
				"The best single call for a status overview.",
		),
		mcp.WithString("workspace_id",
			mcp.Required(),
			mcp.Description("Workspace ID"),
		),
	), func(ctx context.Context, args map[string]any) result.Result {
		return o.GetWorkspaceSummary(ctx, stringArg(args, "workspace_id"))
	})

	d.add(mcp.NewTool("get_work_in_progress",
		mcp.WithDescription(
			"List the workspace's tasks currently in flight (in-progress or "+
				"review), most recently updated first, each joined with its "+
				"owning project. Ideal for 'what am I working on?' questions.",
		),
		mcp.WithString("workspace_id",
			mcp.Required(),
			mcp.Description("Workspace ID"),
		),
	), func(ctx context.Context, args map[string]any) result.Result {
		return o.GetWorkInProgress(ctx, stringArg(args, "workspace_id"))
	})
}
