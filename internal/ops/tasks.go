package ops

import (
	"context"
	"errors"
	"strings"

	"github.com/corkboardhq/corkboard/internal/result"
	"github.com/corkboardhq/corkboard/internal/store"
)

// defaultSearchLimit caps search results when the caller gives no limit.
const defaultSearchLimit = 20

// CreateTaskInput carries the create_task arguments.
type CreateTaskInput struct {
	ProjectID   string   `json:"project_id"`
	Title       string   `json:"title"`
	Description string   `json:"description,omitempty"`
	Status      string   `json:"status,omitempty"`
	Priority    string   `json:"priority,omitempty"`
	Assignee    string   `json:"assignee,omitempty"`
	DueDate     string   `json:"due_date,omitempty"`
	Tags        []string `json:"tags,omitempty"`
}

// SearchTasksInput carries the search_tasks arguments.
type SearchTasksInput struct {
	Query       string `json:"query"`
	WorkspaceID string `json:"workspace_id,omitempty"`
	ProjectID   string `json:"project_id,omitempty"`
	Status      string `json:"status,omitempty"`
	Limit       int    `json:"limit,omitempty"`
}

// DeletedTask confirms a deletion.
type DeletedTask struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	ProjectID string `json:"project_id"`
	Deleted   bool   `json:"deleted"`
}

// nextTaskOrder returns max existing order + 1, or 0 for the project's
// first task. Orders are never renumbered on deletion.
func (o *Ops) nextTaskOrder(ctx context.Context, projectID string) (int, error) {
	tasks, err := o.store.ListTasks(ctx, store.TaskFilter{
		ProjectID:  projectID,
		OrderBy:    "order",
		Descending: true,
		Limit:      1,
	})
	if err != nil {
		return 0, err
	}
	if len(tasks) == 0 {
		return 0, nil
	}
	return tasks[0].Order + 1, nil
}

// CreateTask creates a task at the end of its column's ordering. The
// owning project's progress resyncs afterwards: even a not-done task
// changes the denominator.
func (o *Ops) CreateTask(ctx context.Context, in CreateTaskInput) result.Result {
	if in.Title == "" {
		return result.Errorf(result.CodeInvalidArguments, "Task title is required")
	}
	if r, ok := o.requireProject(ctx, in.ProjectID); !ok {
		return r
	}

	status := in.Status
	if status == "" {
		status = store.TaskTodo
	}
	priority := in.Priority
	if priority == "" {
		priority = store.PriorityMedium
	}

	order, err := o.nextTaskOrder(ctx, in.ProjectID)
	if err != nil {
		return o.dbError("next task order", err)
	}

	ts := store.Now()
	fields := store.Fields{
		"project_id": in.ProjectID,
		"title":      in.Title,
		"status":     status,
		"priority":   priority,
		"order":      order,
		"created_at": ts,
		"updated_at": ts,
	}
	if in.Description != "" {
		fields["description"] = in.Description
	}
	if in.Assignee != "" {
		fields["assignee"] = in.Assignee
	}
	if in.DueDate != "" {
		fields["due_date"] = in.DueDate
	}
	if len(in.Tags) > 0 {
		fields["tags"] = in.Tags
	}

	task, err := o.store.InsertTask(ctx, fields)
	if err != nil {
		return o.dbError("insert task", err)
	}

	o.syncProgress(ctx, task.ProjectID)
	return result.OKf(task, "Task '%s' created", task.Title)
}

// GetTask returns one task joined with its owning-project projection.
func (o *Ops) GetTask(ctx context.Context, id string) result.Result {
	task, err := o.store.GetTask(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return result.Errorf(result.CodeTaskNotFound, "Task with ID %s not found", id)
	}
	if err != nil {
		return o.dbError("get task", err)
	}
	return result.OK(task)
}

// UpdateTask applies a partial update. When status is among the supplied
// fields, the owning project's progress resyncs after the write.
func (o *Ops) UpdateTask(ctx context.Context, id string, fields store.Fields) result.Result {
	if len(fields) == 0 {
		return result.Errorf(result.CodeInvalidArguments, "No fields provided to update")
	}

	current, err := o.store.GetTask(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return result.Errorf(result.CodeTaskNotFound, "Task with ID %s not found", id)
	}
	if err != nil {
		return o.dbError("get task", err)
	}

	_, statusChanged := fields["status"]
	fields["updated_at"] = store.Now()

	task, err := o.store.UpdateTask(ctx, id, fields)
	if errors.Is(err, store.ErrNotFound) {
		return result.Errorf(result.CodeTaskNotFound, "Task with ID %s not found", id)
	}
	if err != nil {
		return o.dbError("update task", err)
	}

	if statusChanged {
		o.syncProgress(ctx, current.ProjectID)
	}
	return result.OKf(task, "Task '%s' updated", task.Title)
}

// MoveTask moves a task to another kanban column. The status is validated
// before any store access; the project's progress always resyncs.
func (o *Ops) MoveTask(ctx context.Context, id, newStatus string) result.Result {
	if !store.ValidTaskStatus(newStatus) {
		return result.Errorf(result.CodeInvalidStatus,
			"Invalid status '%s'. Valid statuses: %s", newStatus, strings.Join(store.TaskStatuses, ", "))
	}

	current, err := o.store.GetTask(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return result.Errorf(result.CodeTaskNotFound, "Task with ID %s not found", id)
	}
	if err != nil {
		return o.dbError("get task", err)
	}
	previous := current.Status

	task, err := o.store.UpdateTask(ctx, id, store.Fields{
		"status":     newStatus,
		"updated_at": store.Now(),
	})
	if errors.Is(err, store.ErrNotFound) {
		return result.Errorf(result.CodeTaskNotFound, "Task with ID %s not found", id)
	}
	if err != nil {
		return o.dbError("update task", err)
	}

	o.syncProgress(ctx, current.ProjectID)
	return result.OKf(task, "Task '%s' moved from %s to %s", task.Title, previous, newStatus)
}

// StartTask moves a task to in-progress.
func (o *Ops) StartTask(ctx context.Context, id string) result.Result {
	return o.MoveTask(ctx, id, store.TaskInProgress)
}

// CompleteTask moves a task to done.
func (o *Ops) CompleteTask(ctx context.Context, id string) result.Result {
	return o.MoveTask(ctx, id, store.TaskDone)
}

// ReviewTask moves a task to review.
func (o *Ops) ReviewTask(ctx context.Context, id string) result.Result {
	return o.MoveTask(ctx, id, store.TaskReview)
}

// SearchTasks matches tasks by case-insensitive substring against title
// and description. The store cannot filter on the joined workspace column,
// so a workspace constraint is applied after the limited fetch; counts can
// fall short of the limit even when more in-workspace matches exist.
func (o *Ops) SearchTasks(ctx context.Context, in SearchTasksInput) result.Result {
	if in.Query == "" {
		return result.Errorf(result.CodeInvalidArguments, "Search query is required")
	}
	limit := in.Limit
	if limit <= 0 {
		limit = defaultSearchLimit
	}

	tasks, err := o.store.ListTasks(ctx, store.TaskFilter{
		ProjectID:   in.ProjectID,
		Status:      in.Status,
		Search:      in.Query,
		WithProject: true,
		OrderBy:     "updated_at",
		Descending:  true,
		Limit:       limit,
	})
	if err != nil {
		return o.dbError("search tasks", err)
	}

	if in.WorkspaceID != "" {
		matched := make([]store.Task, 0, len(tasks))
		for _, t := range tasks {
			if t.Project != nil && t.Project.WorkspaceID == in.WorkspaceID {
				matched = append(matched, t)
			}
		}
		tasks = matched
	}
	return result.OKf(tasks, "Found %d tasks matching '%s'", len(tasks), in.Query)
}

// ListProjectTasks returns a project's tasks in board order, optionally
// filtered to one column.
func (o *Ops) ListProjectTasks(ctx context.Context, projectID, status string) result.Result {
	if r, ok := o.requireProject(ctx, projectID); !ok {
		return r
	}

	tasks, err := o.store.ListTasks(ctx, store.TaskFilter{
		ProjectID: projectID,
		Status:    status,
		OrderBy:   "order",
	})
	if err != nil {
		return o.dbError("list tasks", err)
	}
	return result.OKf(tasks, "Found %d tasks", len(tasks))
}

// DeleteTask removes a task and resyncs the former owner's progress.
func (o *Ops) DeleteTask(ctx context.Context, id string) result.Result {
	current, err := o.store.GetTask(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return result.Errorf(result.CodeTaskNotFound, "Task with ID %s not found", id)
	}
	if err != nil {
		return o.dbError("get task", err)
	}

	if err := o.store.DeleteTask(ctx, id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return result.Errorf(result.CodeTaskNotFound, "Task with ID %s not found", id)
		}
		return o.dbError("delete task", err)
	}

	o.syncProgress(ctx, current.ProjectID)
	return result.OKf(DeletedTask{
		ID:        current.ID,
		Title:     current.Title,
		ProjectID: current.ProjectID,
		Deleted:   true,
	}, "Task '%s' deleted", current.Title)
}
