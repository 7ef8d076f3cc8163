package ops

import (
	"context"
	"testing"

	"github.com/corkboardhq/corkboard/internal/result"
	"github.com/corkboardhq/corkboard/internal/store"
)

// ─── ListWorkspaces ─────────────────────────────────────────────────────────

func TestListWorkspaces(t *testing.T) {
	o, st := newTestOps(t)
	seedWorkspace(t, st, "Acme")
	seedWorkspace(t, st, "Personal")

	res := o.ListWorkspaces(context.Background(), 0)
	mustOK(t, res)
	if res.Message != "Found 2 workspaces" {
		t.Errorf("message = %q", res.Message)
	}
	if got := len(res.Data.([]store.Workspace)); got != 2 {
		t.Errorf("workspaces = %d, want 2", got)
	}
}

func TestListWorkspaces_Limit(t *testing.T) {
	o, st := newTestOps(t)
	seedWorkspace(t, st, "Acme")
	seedWorkspace(t, st, "Personal")

	res := o.ListWorkspaces(context.Background(), 1)
	mustOK(t, res)
	if got := len(res.Data.([]store.Workspace)); got != 1 {
		t.Errorf("workspaces = %d, want 1", got)
	}
}

// ─── GetWorkspace ───────────────────────────────────────────────────────────

func TestGetWorkspace(t *testing.T) {
	o, st := newTestOps(t)
	ws := seedWorkspace(t, st, "Acme")

	res := o.GetWorkspace(context.Background(), ws)
	mustOK(t, res)
	if res.Data.(*store.Workspace).Name != "Acme" {
		t.Errorf("workspace name = %q, want Acme", res.Data.(*store.Workspace).Name)
	}
}

func TestGetWorkspace_NotFound(t *testing.T) {
	o, _ := newTestOps(t)

	res := o.GetWorkspace(context.Background(), "ws-missing")
	mustCode(t, res, result.CodeWorkspaceNotFound)
	if res.Error != "Workspace with ID ws-missing not found" {
		t.Errorf("error = %q", res.Error)
	}
}

// ─── GetWorkspaceSummary ────────────────────────────────────────────────────

func TestGetWorkspaceSummary(t *testing.T) {
	o, st := newTestOps(t)
	ctx := context.Background()
	ws := seedWorkspace(t, st, "Acme")

	website := seedProject(t, o, ws, "Website")
	mustOK(t, o.UpdateProject(ctx, website.ID, store.Fields{"status": store.ProjectActive}))
	seedProject(t, o, ws, "Mobile App")

	seedTask(t, o, website.ID, "Design homepage", store.TaskDone)
	seedTask(t, o, website.ID, "Build API", store.TaskInProgress)
	seedTask(t, o, website.ID, "Write docs", store.TaskTodo)

	if _, err := st.CreateTeamMember(ctx, ws, "Ana", "designer"); err != nil {
		t.Fatalf("CreateTeamMember error: %v", err)
	}
	if _, err := st.CreateTeamMember(ctx, ws, "Luis", "engineer"); err != nil {
		t.Fatalf("CreateTeamMember error: %v", err)
	}

	res := o.GetWorkspaceSummary(ctx, ws)
	mustOK(t, res)
	if res.Message != "Workspace 'Acme': 2 projects, 3 tasks" {
		t.Errorf("message = %q", res.Message)
	}

	summary := res.Data.(WorkspaceSummary)
	if summary.Workspace.ID != ws {
		t.Error("summary should embed the workspace")
	}
	if summary.Projects.Active != 1 || summary.Projects.Planning != 1 || summary.Projects.Total != 2 {
		t.Errorf("project counts = %+v", summary.Projects)
	}
	if summary.Tasks.Done != 1 || summary.Tasks.InProgress != 1 || summary.Tasks.Todo != 1 || summary.Tasks.Total != 3 {
		t.Errorf("task counts = %+v", summary.Tasks)
	}
	if summary.TeamMembers != 2 {
		t.Errorf("team members = %d, want 2", summary.TeamMembers)
	}
	if len(summary.RecentProjects) != 1 || summary.RecentProjects[0].ID != website.ID {
		t.Errorf("recent projects should hold only the active one, got %d", len(summary.RecentProjects))
	}
}

func TestGetWorkspaceSummary_Empty(t *testing.T) {
	o, st := newTestOps(t)
	ws := seedWorkspace(t, st, "Empty")

	res := o.GetWorkspaceSummary(context.Background(), ws)
	mustOK(t, res)

	summary := res.Data.(WorkspaceSummary)
	if summary.Projects.Total != 0 || summary.Tasks.Total != 0 || summary.TeamMembers != 0 {
		t.Errorf("expected zeroed counts, got %+v", summary)
	}
	if summary.RecentProjects == nil || len(summary.RecentProjects) != 0 {
		t.Error("recent projects should be an empty list")
	}
}

func TestGetWorkspaceSummary_NotFound(t *testing.T) {
	o, _ := newTestOps(t)

	res := o.GetWorkspaceSummary(context.Background(), "ws-missing")
	mustCode(t, res, result.CodeWorkspaceNotFound)
}

func TestRecentActive_OrderAndCap(t *testing.T) {
	projects := []store.Project{
		{ID: "p1", Status: store.ProjectActive, UpdatedAt: "2026-01-01T10:00:00.000Z"},
		{ID: "p2", Status: store.ProjectPlanning, UpdatedAt: "2026-01-09T10:00:00.000Z"},
		{ID: "p3", Status: store.ProjectActive, UpdatedAt: "2026-01-03T10:00:00.000Z"},
		{ID: "p4", Status: store.ProjectActive, UpdatedAt: "2026-01-07T10:00:00.000Z"},
		{ID: "p5", Status: store.ProjectActive, UpdatedAt: "2026-01-02T10:00:00.000Z"},
		{ID: "p6", Status: store.ProjectActive, UpdatedAt: "2026-01-06T10:00:00.000Z"},
		{ID: "p7", Status: store.ProjectActive, UpdatedAt: "2026-01-05T10:00:00.000Z"},
		{ID: "p8", Status: store.ProjectActive, UpdatedAt: "2026-01-04T10:00:00.000Z"},
	}

	recent := recentActive(projects)
	if len(recent) != recentProjectsCap {
		t.Fatalf("recent = %d projects, want %d", len(recent), recentProjectsCap)
	}
	want := []string{"p4", "p6", "p7", "p8", "p3"}
	for i, id := range want {
		if recent[i].ID != id {
			t.Errorf("recent[%d] = %s, want %s", i, recent[i].ID, id)
		}
	}
}

// ─── GetWorkInProgress ──────────────────────────────────────────────────────

func TestGetWorkInProgress(t *testing.T) {
	o, st := newTestOps(t)
	ctx := context.Background()
	ws := seedWorkspace(t, st, "Acme")
	project := seedProject(t, o, ws, "Website")

	older := seedTask(t, o, project.ID, "Build API", store.TaskInProgress)
	newer := seedTask(t, o, project.ID, "Review design", store.TaskReview)
	seedTask(t, o, project.ID, "Write docs", store.TaskTodo)
	seedTask(t, o, project.ID, "Ship it", store.TaskDone)

	// Force distinct recency stamps.
	if _, err := st.UpdateTask(ctx, older.ID, store.Fields{"updated_at": "2026-01-01T10:00:00.000Z"}); err != nil {
		t.Fatalf("UpdateTask error: %v", err)
	}
	if _, err := st.UpdateTask(ctx, newer.ID, store.Fields{"updated_at": "2026-01-02T10:00:00.000Z"}); err != nil {
		t.Fatalf("UpdateTask error: %v", err)
	}

	res := o.GetWorkInProgress(ctx, ws)
	mustOK(t, res)
	if res.Message != "Found 2 tasks in flight" {
		t.Errorf("message = %q", res.Message)
	}

	tasks := res.Data.([]store.Task)
	if len(tasks) != 2 {
		t.Fatalf("tasks = %d, want 2", len(tasks))
	}
	if tasks[0].ID != newer.ID || tasks[1].ID != older.ID {
		t.Error("tasks should come back most recently updated first")
	}
	for _, task := range tasks {
		if task.Project == nil || task.Project.WorkspaceID != ws {
			t.Errorf("task %s should embed its owning project", task.ID)
		}
	}
}

func TestGetWorkInProgress_NoProjects(t *testing.T) {
	o, st := newTestOps(t)
	ws := seedWorkspace(t, st, "Fresh")

	res := o.GetWorkInProgress(context.Background(), ws)
	mustOK(t, res)
	if res.Message != "No projects in this workspace yet" {
		t.Errorf("message = %q", res.Message)
	}
	if got := len(res.Data.([]store.Task)); got != 0 {
		t.Errorf("tasks = %d, want 0", got)
	}
}

func TestGetWorkInProgress_NotFound(t *testing.T) {
	o, _ := newTestOps(t)

	res := o.GetWorkInProgress(context.Background(), "ws-missing")
	mustCode(t, res, result.CodeWorkspaceNotFound)
}
