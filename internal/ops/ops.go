// Package ops implements the entity operations behind every corkboard
// tool: workspace reads and summaries, project and task lifecycle, and the
// progress synchronizer that keeps a project's completion percentage in
// step with its tasks.
//
// Every operation returns a result envelope. Existence checks run before
// mutating calls; backend failures surface as DATABASE_ERROR envelopes with
// the underlying message passed through verbatim.
package ops

import (
	"context"
	"math"

	"github.com/corkboardhq/corkboard/internal/logging"
	"github.com/corkboardhq/corkboard/internal/result"
	"github.com/corkboardhq/corkboard/internal/store"
)

// Ops carries the gateway handle and process-wide defaults, both set once
// at startup.
type Ops struct {
	store            store.Store
	log              *logging.Logger
	defaultWorkspace string
}

// New builds the operation set on top of a gateway.
func New(st store.Store, log *logging.Logger, defaultWorkspace string) *Ops {
	return &Ops{store: st, log: log, defaultWorkspace: defaultWorkspace}
}

// ─── Shared plumbing ────────────────────────────────────────────────────────

func (o *Ops) dbError(action string, err error) result.Result {
	o.log.Error("store failure", "action", action, "error", err)
	return result.Error(result.CodeDatabaseError, err)
}

// requireWorkspace short-circuits with an envelope unless the workspace
// exists.
func (o *Ops) requireWorkspace(ctx context.Context, id string) (result.Result, bool) {
	exists, err := o.store.WorkspaceExists(ctx, id)
	if err != nil {
		return o.dbError("check workspace", err), false
	}
	if !exists {
		return result.Errorf(result.CodeWorkspaceNotFound, "Workspace with ID %s not found", id), false
	}
	return result.Result{}, true
}

// requireProject short-circuits with an envelope unless the project exists.
func (o *Ops) requireProject(ctx context.Context, id string) (result.Result, bool) {
	exists, err := o.store.ProjectExists(ctx, id)
	if err != nil {
		return o.dbError("check project", err), false
	}
	if !exists {
		return result.Errorf(result.CodeProjectNotFound, "Project with ID %s not found", id), false
	}
	return result.Result{}, true
}

// intValue coerces the numeric shapes a decoded argument bag can carry.
func intValue(v any) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case int64:
		return int(n), true
	case float64:
		return int(n), true
	}
	return 0, false
}

// ─── Progress ───────────────────────────────────────────────────────────────

// progressFor computes round(100 * done / total), or 0 with no tasks.
func progressFor(tasks []store.Task) int {
	if len(tasks) == 0 {
		return 0
	}
	done := 0
	for _, t := range tasks {
		if t.Status == store.TaskDone {
			done++
		}
	}
	return int(math.Round(float64(done) / float64(len(tasks)) * 100))
}

// clampProgress bounds a directly supplied percentage to [0,100].
func clampProgress(p int) int {
	if p < 0 {
		return 0
	}
	if p > 100 {
		return 100
	}
	return p
}

// syncProgress recomputes and writes back the owning project's completion
// percentage after a task mutation. Failures are logged, not surfaced: the
// task write already committed, and the next status-affecting write
// recomputes from scratch.
func (o *Ops) syncProgress(ctx context.Context, projectID string) {
	tasks, err := o.store.ListTasks(ctx, store.TaskFilter{ProjectID: projectID})
	if err != nil {
		o.log.Warn("progress sync failed", "project_id", projectID, "error", err)
		return
	}
	_, err = o.store.UpdateProject(ctx, projectID, store.Fields{
		"progress":   progressFor(tasks),
		"updated_at": store.Now(),
	})
	if err != nil {
		o.log.Warn("progress sync failed", "project_id", projectID, "error", err)
	}
}

// ─── Counts ─────────────────────────────────────────────────────────────────

// TaskCounts breaks a task set down by kanban column.
type TaskCounts struct {
	Backlog    int `json:"backlog"`
	Todo       int `json:"todo"`
	InProgress int `json:"in_progress"`
	Review     int `json:"review"`
	Done       int `json:"done"`
	Total      int `json:"total"`
}

func countTasks(tasks []store.Task) TaskCounts {
	c := TaskCounts{Total: len(tasks)}
	for _, t := range tasks {
		switch t.Status {
		case store.TaskBacklog:
			c.Backlog++
		case store.TaskTodo:
			c.Todo++
		case store.TaskInProgress:
			c.InProgress++
		case store.TaskReview:
			c.Review++
		case store.TaskDone:
			c.Done++
		}
	}
	return c
}

// ProjectCounts breaks a project set down by status.
type ProjectCounts struct {
	Active    int `json:"active"`
	Completed int `json:"completed"`
	Planning  int `json:"planning"`
	OnHold    int `json:"on_hold"`
	Total     int `json:"total"`
}

func countProjects(projects []store.Project) ProjectCounts {
	c := ProjectCounts{Total: len(projects)}
	for _, p := range projects {
		switch p.Status {
		case store.ProjectActive:
			c.Active++
		case store.ProjectCompleted:
			c.Completed++
		case store.ProjectPlanning:
			c.Planning++
		case store.ProjectOnHold:
			c.OnHold++
		}
	}
	return c
}
