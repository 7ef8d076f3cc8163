package dispatch

import (
	"context"

	"github.com/corkboardhq/corkboard/internal/ops"
	"github.com/corkboardhq/corkboard/internal/result"
	"github.com/corkboardhq/corkboard/internal/store"
	"github.com/mark3labs/mcp-go/mcp"
)

// projectUpdateKeys lists the columns update_project may touch. Workspace
// ownership is immutable, and progress goes through the clamp in the
// operation layer.
var projectUpdateKeys = []string{
	"name", "description", "status", "priority", "progress",
	"budget", "spent", "due_date", "client", "team_size", "estimated_duration",
}

func (d *Dispatcher) registerProjectTools(o *ops.Ops) {
	d.add(mcp.NewTool("list_projects",
		mcp.WithDescription(
			"List a workspace's projects, most recently updated first. When "+
				"workspace_id is omitted the configured default workspace is used.",
		),
		mcp.WithString("workspace_id",
			mcp.Description("Workspace ID (default: the configured default workspace)"),
		),
		mcp.WithString("status",
			mcp.Description("Only projects with this status"),
			mcp.Enum(store.ProjectStatuses...),
		),
		mcp.WithNumber("limit",
			mcp.Description("Maximum number of projects to return (default: all)"),
		),
	), handle(o.ListProjects))

	d.add(mcp.NewTool("get_project",
		mcp.WithDescription(
			"Fetch one project. By default the payload embeds the project's "+
				"tasks in board order plus a task-count breakdown per column.",
		),
		mcp.WithString("project_id",
			mcp.Required(),
			mcp.Description("Project ID"),
		),
		mcp.WithBoolean("include_tasks",
			mcp.DefaultBool(true),
			mcp.Description("Embed the project's tasks and task counts"),
		),
	), func(ctx context.Context, args map[string]any) result.Result {
		return o.GetProject(ctx, stringArg(args, "project_id"), boolArg(args, "include_tasks", true))
	})

	d.add(mcp.NewTool("create_project",
		mcp.WithDescription(
			"Create a project in a workspace. Progress always starts at 0; "+
				"status defaults to planning and priority to medium.",
		),
		mcp.WithString("workspace_id",
			mcp.Required(),
			mcp.Description("Workspace to create the project in"),
		),
		mcp.WithString("name",
			mcp.Required(),
			mcp.Description("Project name"),
		),
		mcp.WithString("description",
			mcp.Description("What the project is about"),
		),
		mcp.WithString("status",
			mcp.Description("Initial status"),
			mcp.DefaultString(store.ProjectPlanning),
			mcp.Enum(store.ProjectStatuses...),
		),
		mcp.WithString("priority",
			mcp.Description("Priority"),
			mcp.DefaultString(store.PriorityMedium),
			mcp.Enum(store.Priorities...),
		),
		mcp.WithNumber("budget",
			mcp.Description("Budget amount"),
		),
		mcp.WithString("due_date",
			mcp.Description("Due date, ISO 8601"),
		),
		mcp.WithString("client",
			mcp.Description("Client name or reference"),
		),
		mcp.WithNumber("team_size",
			mcp.Description("Number of people on the project"),
		),
		mcp.WithNumber("estimated_duration",
			mcp.Description("Estimated duration in days"),
		),
	), handle(o.CreateProject))

	d.add(mcp.NewTool("update_project",
		mcp.WithDescription(
			"Update a project. Only the supplied fields change; omitted fields "+
				"keep their values. Progress is clamped to 0-100.",
		),
		mcp.WithString("project_id",
			mcp.Required(),
			mcp.Description("Project ID"),
		),
		mcp.WithString("name",
			mcp.Description("New project name"),
		),
		mcp.WithString("description",
			mcp.Description("New description"),
		),
		mcp.WithString("status",
			mcp.Description("New status"),
			mcp.Enum(store.ProjectStatuses...),
		),
		mcp.WithString("priority",
			mcp.Description("New priority"),
			mcp.Enum(store.Priorities...),
		),
		mcp.WithNumber("progress",
			mcp.Description("Completion percentage (0-100)"),
		),
		mcp.WithNumber("budget",
			mcp.Description("Budget amount"),
		),
		mcp.WithNumber("spent",
			mcp.Description("Amount spent so far"),
		),
		mcp.WithString("due_date",
			mcp.Description("Due date, ISO 8601"),
		),
		mcp.WithString("client",
			mcp.Description("Client name or reference"),
		),
		mcp.WithNumber("team_size",
			mcp.Description("Number of people on the project"),
		),
		mcp.WithNumber("estimated_duration",
			mcp.Description("Estimated duration in days"),
		),
	), func(ctx context.Context, args map[string]any) result.Result {
		return o.UpdateProject(ctx, stringArg(args, "project_id"), pluckFields(args, projectUpdateKeys))
	})

	d.add(mcp.NewTool("update_project_progress",
		mcp.WithDescription("Set a project's completion percentage directly, clamped to 0-100."),
		mcp.WithString("project_id",
			mcp.Required(),
			mcp.Description("Project ID"),
		),
		mcp.WithNumber("progress",
			mcp.Required(),
			mcp.Description("Completion percentage (0-100)"),
		),
	), func(ctx context.Context, args map[string]any) result.Result {
		progress, ok := intArg(args, "progress")
		if !ok {
			return result.Errorf(result.CodeInvalidArguments, "progress must be a number")
		}
		return o.UpdateProjectProgress(ctx, stringArg(args, "project_id"), progress)
	})
}
