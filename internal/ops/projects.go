package ops

import (
	"context"
	"errors"

	"github.com/corkboardhq/corkboard/internal/result"
	"github.com/corkboardhq/corkboard/internal/store"
)

// ListProjectsInput narrows a project listing.
type ListProjectsInput struct {
	WorkspaceID string `json:"workspace_id,omitempty"`
	Status      string `json:"status,omitempty"`
	Limit       int    `json:"limit,omitempty"`
}

// CreateProjectInput carries the create_project arguments.
type CreateProjectInput struct {
	WorkspaceID       string   `json:"workspace_id"`
	Name              string   `json:"name"`
	Description       string   `json:"description,omitempty"`
	Status            string   `json:"status,omitempty"`
	Priority          string   `json:"priority,omitempty"`
	Budget            *float64 `json:"budget,omitempty"`
	DueDate           string   `json:"due_date,omitempty"`
	Client            string   `json:"client,omitempty"`
	TeamSize          *int     `json:"team_size,omitempty"`
	EstimatedDuration *int     `json:"estimated_duration,omitempty"`
}

// ProjectDetail is a project joined with its tasks and a per-column count.
type ProjectDetail struct {
	store.Project
	Tasks      []store.Task `json:"tasks"`
	TaskCounts TaskCounts   `json:"task_counts"`
}

// ProgressReport is the payload of a progress computation.
type ProgressReport struct {
	ProjectID  string `json:"project_id"`
	Progress   int    `json:"progress"`
	DoneTasks  int    `json:"done_tasks"`
	TotalTasks int    `json:"total_tasks"`
}

// ListProjects lists a workspace's projects, most recently updated first.
// The workspace id falls back to the process-wide default when the caller
// gives none.
func (o *Ops) ListProjects(ctx context.Context, in ListProjectsInput) result.Result {
	workspaceID := in.WorkspaceID
	if workspaceID == "" {
		workspaceID = o.defaultWorkspace
	}
	if workspaceID == "" {
		return result.Errorf(result.CodeMissingWorkspaceID,
			"No workspace ID provided and no default workspace configured")
	}
	if r, ok := o.requireWorkspace(ctx, workspaceID); !ok {
		return r
	}

	projects, err := o.store.ListProjects(ctx, store.ProjectFilter{
		WorkspaceID: workspaceID,
		Status:      in.Status,
		OrderBy:     "updated_at",
		Descending:  true,
		Limit:       in.Limit,
	})
	if err != nil {
		return o.dbError("list projects", err)
	}
	return result.OKf(projects, "Found %d projects", len(projects))
}

// GetProject returns one project, by default joined with its tasks and a
// task-count breakdown.
func (o *Ops) GetProject(ctx context.Context, id string, includeTasks bool) result.Result {
	project, err := o.store.GetProject(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return result.Errorf(result.CodeProjectNotFound, "Project with ID %s not found", id)
	}
	if err != nil {
		return o.dbError("get project", err)
	}

	if !includeTasks {
		return result.OK(project)
	}

	tasks, err := o.store.ListTasks(ctx, store.TaskFilter{ProjectID: id, OrderBy: "order"})
	if err != nil {
		return o.dbError("list tasks", err)
	}

	detail := ProjectDetail{
		Project:    *project,
		Tasks:      tasks,
		TaskCounts: countTasks(tasks),
	}
	return result.OKf(detail, "Project '%s' with %d tasks", project.Name, len(tasks))
}

// CreateProject creates a project in a workspace. Progress always starts
// at zero; status defaults to planning and priority to medium.
func (o *Ops) CreateProject(ctx context.Context, in CreateProjectInput) result.Result {
	if in.Name == "" {
		return result.Errorf(result.CodeInvalidArguments, "Project name is required")
	}
	if r, ok := o.requireWorkspace(ctx, in.WorkspaceID); !ok {
		return r
	}

	status := in.Status
	if status == "" {
		status = store.ProjectPlanning
	}
	priority := in.Priority
	if priority == "" {
		priority = store.PriorityMedium
	}

	ts := store.Now()
	fields := store.Fields{
		"workspace_id": in.WorkspaceID,
		"name":         in.Name,
		"status":       status,
		"priority":     priority,
		"progress":     0,
		"item_type":    "project",
		"created_at":   ts,
		"updated_at":   ts,
	}
	if in.Description != "" {
		fields["description"] = in.Description
	}
	if in.Budget != nil {
		fields["budget"] = *in.Budget
	}
	if in.DueDate != "" {
		fields["due_date"] = in.DueDate
	}
	if in.Client != "" {
		fields["client"] = in.Client
	}
	if in.TeamSize != nil {
		fields["team_size"] = *in.TeamSize
	}
	if in.EstimatedDuration != nil {
		fields["estimated_duration"] = *in.EstimatedDuration
	}

	project, err := o.store.InsertProject(ctx, fields)
	if err != nil {
		return o.dbError("insert project", err)
	}
	return result.OKf(project, "Project '%s' created", project.Name)
}

// UpdateProject applies a partial update. Only the supplied fields are
// written; progress is clamped to [0,100]; the update timestamp always
// refreshes.
func (o *Ops) UpdateProject(ctx context.Context, id string, fields store.Fields) result.Result {
	if len(fields) == 0 {
		return result.Errorf(result.CodeInvalidArguments, "No fields provided to update")
	}
	if r, ok := o.requireProject(ctx, id); !ok {
		return r
	}

	if v, ok := fields["progress"]; ok {
		if n, ok := intValue(v); ok {
			fields["progress"] = clampProgress(n)
		} else {
			return result.Errorf(result.CodeInvalidArguments, "progress must be a number")
		}
	}
	fields["updated_at"] = store.Now()

	project, err := o.store.UpdateProject(ctx, id, fields)
	if errors.Is(err, store.ErrNotFound) {
		return result.Errorf(result.CodeProjectNotFound, "Project with ID %s not found", id)
	}
	if err != nil {
		return o.dbError("update project", err)
	}
	return result.OKf(project, "Project '%s' updated", project.Name)
}

// UpdateProjectProgress sets the completion percentage directly.
func (o *Ops) UpdateProjectProgress(ctx context.Context, id string, progress int) result.Result {
	return o.UpdateProject(ctx, id, store.Fields{"progress": clampProgress(progress)})
}

// CalculateProjectProgress computes the completion percentage from task
// statuses without writing anything.
func (o *Ops) CalculateProjectProgress(ctx context.Context, id string) result.Result {
	if r, ok := o.requireProject(ctx, id); !ok {
		return r
	}

	tasks, err := o.store.ListTasks(ctx, store.TaskFilter{ProjectID: id})
	if err != nil {
		return o.dbError("list tasks", err)
	}

	report := ProgressReport{
		ProjectID:  id,
		Progress:   progressFor(tasks),
		TotalTasks: len(tasks),
	}
	for _, t := range tasks {
		if t.Status == store.TaskDone {
			report.DoneTasks++
		}
	}
	if report.TotalTasks == 0 {
		return result.OKf(report, "Project has no tasks; progress is 0")
	}
	return result.OKf(report, "%d of %d tasks done: %d%%", report.DoneTasks, report.TotalTasks, report.Progress)
}

// SyncProjectProgress recomputes the completion percentage and writes it
// back. A compute failure propagates without attempting the write.
func (o *Ops) SyncProjectProgress(ctx context.Context, id string) result.Result {
	if r, ok := o.requireProject(ctx, id); !ok {
		return r
	}

	tasks, err := o.store.ListTasks(ctx, store.TaskFilter{ProjectID: id})
	if err != nil {
		return o.dbError("list tasks", err)
	}

	progress := progressFor(tasks)
	project, err := o.store.UpdateProject(ctx, id, store.Fields{
		"progress":   progress,
		"updated_at": store.Now(),
	})
	if err != nil {
		return o.dbError("update project", err)
	}
	return result.OKf(project, "Project progress synced to %d%%", progress)
}
