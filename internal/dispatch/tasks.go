package dispatch

import (
	"context"

	"github.com/corkboardhq/corkboard/internal/ops"
	"github.com/corkboardhq/corkboard/internal/result"
	"github.com/corkboardhq/corkboard/internal/store"
	"github.com/mark3labs/mcp-go/mcp"
)

// taskUpdateKeys lists the columns update_task may touch. Project
// ownership and board order are immutable after creation.
var taskUpdateKeys = []string{
	"title", "description", "status", "priority", "assignee", "due_date", "tags",
}

func (d *Dispatcher) registerTaskTools(o *ops.Ops) {
	d.add(mcp.NewTool("create_task",
		mcp.WithDescription(
			"Create a task in a project. It lands at the end of its column; "+
				"status defaults to todo and priority to medium. The project's "+
				"progress recomputes automatically.",
		),
		mcp.WithString("project_id",
			mcp.Required(),
			mcp.Description("Project to create the task in"),
		),
		mcp.WithString("title",
			mcp.Required(),
			mcp.Description("Task title"),
		),
		mcp.WithString("description",
			mcp.Description("What the task involves"),
		),
		mcp.WithString("status",
			mcp.Description("Initial kanban column"),
			mcp.DefaultString(store.TaskTodo),
			mcp.Enum(store.TaskStatuses...),
		),
		mcp.WithString("priority",
			mcp.Description("Priority"),
			mcp.DefaultString(store.PriorityMedium),
			mcp.Enum(store.Priorities...),
		),
		mcp.WithString("assignee",
			mcp.Description("Who works on it (free text)"),
		),
		mcp.WithString("due_date",
			mcp.Description("Due date, ISO 8601"),
		),
		mcp.WithArray("tags",
			mcp.Description("Free-text labels"),
			mcp.Items(map[string]any{"type": "string"}),
		),
	), handle(o.CreateTask))

	d.add(mcp.NewTool("get_task",
		mcp.WithDescription("Fetch one task together with its owning project's id, name, and workspace."),
		mcp.WithString("task_id",
			mcp.Required(),
			mcp.Description("Task ID"),
		),
	), func(ctx context.Context, args map[string]any) result.Result {
		return o.GetTask(ctx, stringArg(args, "task_id"))
	})

	d.add(mcp.NewTool("update_task",
		mcp.WithDescription(
			"Update a task. Only the supplied fields change; omitted fields "+
				"keep their values. Changing status recomputes the project's progress.",
		),
		mcp.WithString("task_id",
			mcp.Required(),
			mcp.Description("Task ID"),
		),
		mcp.WithString("title",
			mcp.Description("New title"),
		),
		mcp.WithString("description",
			mcp.Description("New description"),
		),
		mcp.WithString("status",
			mcp.Description("New kanban column"),
			mcp.Enum(store.TaskStatuses...),
		),
		mcp.WithString("priority",
			mcp.Description("New priority"),
			mcp.Enum(store.Priorities...),
		),
		mcp.WithString("assignee",
			mcp.Description("New assignee (free text)"),
		),
		mcp.WithString("due_date",
			mcp.Description("New due date, ISO 8601"),
		),
		mcp.WithArray("tags",
			mcp.Description("Replacement set of labels"),
			mcp.Items(map[string]any{"type": "string"}),
		),
	), func(ctx context.Context, args map[string]any) result.Result {
		return o.UpdateTask(ctx, stringArg(args, "task_id"), pluckFields(args, taskUpdateKeys))
	})

	d.add(mcp.NewTool("move_task",
		mcp.WithDescription(
			"Move a task to another kanban column. Any column can move to any "+
				"other; the project's progress recomputes afterwards.",
		),
		mcp.WithString("task_id",
			mcp.Required(),
			mcp.Description("Task ID"),
		),
		mcp.WithString("new_status",
			mcp.Required(),
			mcp.Description("Target column"),
			mcp.Enum(store.TaskStatuses...),
		),
	), func(ctx context.Context, args map[string]any) result.Result {
		return o.MoveTask(ctx, stringArg(args, "task_id"), stringArg(args, "new_status"))
	})

	d.add(mcp.NewTool("start_task",
		mcp.WithDescription("Move a task to in-progress. Shortcut for move_task."),
		mcp.WithString("task_id",
			mcp.Required(),
			mcp.Description("Task ID"),
		),
	), func(ctx context.Context, args map[string]any) result.Result {
		return o.StartTask(ctx, stringArg(args, "task_id"))
	})

	d.add(mcp.NewTool("complete_task",
		mcp.WithDescription("Move a task to done. Shortcut for move_task."),
		mcp.WithString("task_id",
			mcp.Required(),
			mcp.Description("Task ID"),
		),
	), func(ctx context.Context, args map[string]any) result.Result {
		return o.CompleteTask(ctx, stringArg(args, "task_id"))
	})

	d.add(mcp.NewTool("review_task",
		mcp.WithDescription("Move a task to review. Shortcut for move_task."),
		mcp.WithString("task_id",
			mcp.Required(),
			mcp.Description("Task ID"),
		),
	), func(ctx context.Context, args map[string]any) result.Result {
		return o.ReviewTask(ctx, stringArg(args, "task_id"))
	})

	d.add(mcp.NewTool("search_tasks",
		mcp.WithDescription(
			"Search tasks by case-insensitive substring against title and "+
				"description, optionally narrowed to a workspace, project, or "+
				"status. Results join the owning project, newest first.",
		),
		mcp.WithString("query",
			mcp.Required(),
			mcp.Description("Text to look for"),
		),
		mcp.WithString("workspace_id",
			mcp.Description("Only tasks whose project belongs to this workspace"),
		),
		mcp.WithString("project_id",
			mcp.Description("Only tasks in this project"),
		),
		mcp.WithString("status",
			mcp.Description("Only tasks in this column"),
			mcp.Enum(store.TaskStatuses...),
		),
		mcp.WithNumber("limit",
			mcp.DefaultNumber(20),
			mcp.Description("Maximum number of matches"),
		),
	), handle(o.SearchTasks))

	d.add(mcp.NewTool("list_project_tasks",
		mcp.WithDescription("List a project's tasks in board order, optionally filtered to one column."),
		mcp.WithString("project_id",
			mcp.Required(),
			mcp.Description("Project ID"),
		),
		mcp.WithString("status",
			mcp.Description("Only tasks in this column"),
			mcp.Enum(store.TaskStatuses...),
		),
	), func(ctx context.Context, args map[string]any) result.Result {
		return o.ListProjectTasks(ctx, stringArg(args, "project_id"), stringArg(args, "status"))
	})

	d.add(mcp.NewTool("delete_task",
		mcp.WithDescription("Delete a task permanently and recompute the project's progress."),
		mcp.WithString("task_id",
			mcp.Required(),
			mcp.Description("Task ID"),
		),
	), func(ctx context.Context, args map[string]any) result.Result {
		return o.DeleteTask(ctx, stringArg(args, "task_id"))
	})
}
