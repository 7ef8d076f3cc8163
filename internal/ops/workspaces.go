package ops

import (
	"context"
	"errors"
	"sort"

	"github.com/corkboardhq/corkboard/internal/result"
	"github.com/corkboardhq/corkboard/internal/store"
)

// recentProjectsCap bounds the recent-projects list in a summary.
const recentProjectsCap = 5

// WorkspaceSummary is the composite payload of the summary operation.
type WorkspaceSummary struct {
	Workspace      *store.Workspace `json:"workspace"`
	Projects       ProjectCounts    `json:"projects"`
	Tasks          TaskCounts       `json:"tasks"`
	TeamMembers    int              `json:"team_members"`
	RecentProjects []store.Project  `json:"recent_projects"`
}

// ListWorkspaces returns all workspaces, most recently updated first,
// optionally capped.
func (o *Ops) ListWorkspaces(ctx context.Context, limit int) result.Result {
	workspaces, err := o.store.ListWorkspaces(ctx, limit)
	if err != nil {
		return o.dbError("list workspaces", err)
	}
	return result.OKf(workspaces, "Found %d workspaces", len(workspaces))
}

// GetWorkspace returns a single workspace.
func (o *Ops) GetWorkspace(ctx context.Context, id string) result.Result {
	ws, err := o.store.GetWorkspace(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return result.Errorf(result.CodeWorkspaceNotFound, "Workspace with ID %s not found", id)
	}
	if err != nil {
		return o.dbError("get workspace", err)
	}
	return result.OK(ws)
}

// GetWorkspaceSummary aggregates project counts, task counts, team size,
// and the most recently active projects for one workspace. Any backend
// failure aborts the remaining fetches.
func (o *Ops) GetWorkspaceSummary(ctx context.Context, id string) result.Result {
	ws, err := o.store.GetWorkspace(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return result.Errorf(result.CodeWorkspaceNotFound, "Workspace with ID %s not found", id)
	}
	if err != nil {
		return o.dbError("get workspace", err)
	}

	projects, err := o.store.ListProjects(ctx, store.ProjectFilter{WorkspaceID: id})
	if err != nil {
		return o.dbError("list projects", err)
	}

	// With no projects there is nothing to fetch tasks for.
	tasks := make([]store.Task, 0)
	if len(projects) > 0 {
		ids := make([]string, len(projects))
		for i, p := range projects {
			ids[i] = p.ID
		}
		tasks, err = o.store.ListTasks(ctx, store.TaskFilter{ProjectIDs: ids})
		if err != nil {
			return o.dbError("list tasks", err)
		}
	}

	members, err := o.store.ListTeamMembers(ctx, id)
	if err != nil {
		return o.dbError("list team members", err)
	}

	summary := WorkspaceSummary{
		Workspace:      ws,
		Projects:       countProjects(projects),
		Tasks:          countTasks(tasks),
		TeamMembers:    len(members),
		RecentProjects: recentActive(projects),
	}
	return result.OKf(summary, "Workspace '%s': %d projects, %d tasks", ws.Name, summary.Projects.Total, summary.Tasks.Total)
}

// recentActive picks the active projects, most recently updated first,
// capped at recentProjectsCap.
func recentActive(projects []store.Project) []store.Project {
	recent := make([]store.Project, 0)
	for _, p := range projects {
		if p.Status == store.ProjectActive {
			recent = append(recent, p)
		}
	}
	sort.Slice(recent, func(i, j int) bool {
		return recent[i].UpdatedAt > recent[j].UpdatedAt
	})
	if len(recent) > recentProjectsCap {
		recent = recent[:recentProjectsCap]
	}
	return recent
}

// GetWorkInProgress returns the workspace's tasks currently in flight
// (in-progress or review), most recently updated first.
func (o *Ops) GetWorkInProgress(ctx context.Context, id string) result.Result {
	if r, ok := o.requireWorkspace(ctx, id); !ok {
		return r
	}

	projects, err := o.store.ListProjects(ctx, store.ProjectFilter{WorkspaceID: id})
	if err != nil {
		return o.dbError("list projects", err)
	}
	if len(projects) == 0 {
		return result.OKf(make([]store.Task, 0), "No projects in this workspace yet")
	}

	ids := make([]string, len(projects))
	for i, p := range projects {
		ids[i] = p.ID
	}
	tasks, err := o.store.ListTasks(ctx, store.TaskFilter{
		ProjectIDs:  ids,
		Statuses:    []string{store.TaskInProgress, store.TaskReview},
		WithProject: true,
		OrderBy:     "updated_at",
		Descending:  true,
	})
	if err != nil {
		return o.dbError("list tasks", err)
	}
	return result.OKf(tasks, "Found %d tasks in flight", len(tasks))
}
