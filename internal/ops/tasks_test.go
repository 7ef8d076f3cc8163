package ops

import (
	"context"
	"strings"
	"testing"

	"github.com/corkboardhq/corkboard/internal/logging"
	"github.com/corkboardhq/corkboard/internal/result"
	"github.com/corkboardhq/corkboard/internal/store"
)

func projectProgress(t *testing.T, o *Ops, projectID string) int {
	t.Helper()
	res := o.GetProject(context.Background(), projectID, false)
	mustOK(t, res)
	return res.Data.(*store.Project).Progress
}

// ─── CreateTask ─────────────────────────────────────────────────────────────

func TestCreateTask_Defaults(t *testing.T) {
	o, st := newTestOps(t)
	ws := seedWorkspace(t, st, "Acme")
	project := seedProject(t, o, ws, "Website")

	res := o.CreateTask(context.Background(), CreateTaskInput{
		ProjectID: project.ID,
		Title:     "Design homepage",
	})
	mustOK(t, res)
	if res.Message != "Task 'Design homepage' created" {
		t.Errorf("message = %q", res.Message)
	}

	task := res.Data.(*store.Task)
	if task.Status != store.TaskTodo {
		t.Errorf("status = %q, want todo", task.Status)
	}
	if task.Priority != store.PriorityMedium {
		t.Errorf("priority = %q, want medium", task.Priority)
	}
	if task.Order != 0 {
		t.Errorf("order = %d, want 0", task.Order)
	}
	if task.CreatedAt == "" || task.UpdatedAt == "" {
		t.Error("timestamps should be set")
	}
}

func TestCreateTask_OrderSequence(t *testing.T) {
	o, st := newTestOps(t)
	ctx := context.Background()
	ws := seedWorkspace(t, st, "Acme")
	project := seedProject(t, o, ws, "Website")

	first := seedTask(t, o, project.ID, "One", store.TaskTodo)
	second := seedTask(t, o, project.ID, "Two", store.TaskTodo)
	third := seedTask(t, o, project.ID, "Three", store.TaskTodo)
	for i, task := range []*store.Task{first, second, third} {
		if task.Order != i {
			t.Errorf("task %d order = %d, want %d", i+1, task.Order, i)
		}
	}

	// Deletion leaves a gap; the next order is still max+1.
	mustOK(t, o.DeleteTask(ctx, second.ID))
	fourth := seedTask(t, o, project.ID, "Four", store.TaskTodo)
	if fourth.Order != 3 {
		t.Errorf("order after gap = %d, want 3", fourth.Order)
	}
}

func TestCreateTask_SyncsProgress(t *testing.T) {
	o, st := newTestOps(t)
	ws := seedWorkspace(t, st, "Acme")
	project := seedProject(t, o, ws, "Website")

	seedTask(t, o, project.ID, "One", store.TaskDone)
	if got := projectProgress(t, o, project.ID); got != 100 {
		t.Errorf("progress after 1/1 done = %d, want 100", got)
	}

	// A new not-done task grows the denominator.
	seedTask(t, o, project.ID, "Two", store.TaskTodo)
	if got := projectProgress(t, o, project.ID); got != 50 {
		t.Errorf("progress after 1/2 done = %d, want 50", got)
	}

	seedTask(t, o, project.ID, "Three", store.TaskTodo)
	if got := projectProgress(t, o, project.ID); got != 33 {
		t.Errorf("progress after 1/3 done = %d, want 33", got)
	}
}

func TestCreateTask_Tags(t *testing.T) {
	o, st := newTestOps(t)
	ws := seedWorkspace(t, st, "Acme")
	project := seedProject(t, o, ws, "Website")

	res := o.CreateTask(context.Background(), CreateTaskInput{
		ProjectID: project.ID,
		Title:     "Design homepage",
		Tags:      []string{"design", "frontend"},
	})
	mustOK(t, res)

	task := res.Data.(*store.Task)
	if len(task.Tags) != 2 || task.Tags[0] != "design" || task.Tags[1] != "frontend" {
		t.Errorf("tags = %v", task.Tags)
	}
}

func TestCreateTask_MissingTitle(t *testing.T) {
	o, st := newTestOps(t)
	ws := seedWorkspace(t, st, "Acme")
	project := seedProject(t, o, ws, "Website")

	res := o.CreateTask(context.Background(), CreateTaskInput{ProjectID: project.ID})
	mustCode(t, res, result.CodeInvalidArguments)
}

func TestCreateTask_UnknownProject(t *testing.T) {
	o, _ := newTestOps(t)

	res := o.CreateTask(context.Background(), CreateTaskInput{
		ProjectID: "p-missing",
		Title:     "Design homepage",
	})
	mustCode(t, res, result.CodeProjectNotFound)
}

// ─── GetTask ────────────────────────────────────────────────────────────────

func TestGetTask(t *testing.T) {
	o, st := newTestOps(t)
	ws := seedWorkspace(t, st, "Acme")
	project := seedProject(t, o, ws, "Website")
	created := seedTask(t, o, project.ID, "Design homepage", store.TaskTodo)

	res := o.GetTask(context.Background(), created.ID)
	mustOK(t, res)

	task := res.Data.(*store.Task)
	if task.Title != "Design homepage" {
		t.Errorf("title = %q", task.Title)
	}
	if task.Project == nil || task.Project.ID != project.ID || task.Project.WorkspaceID != ws {
		t.Error("task should embed its owning project")
	}
}

func TestGetTask_NotFound(t *testing.T) {
	o, _ := newTestOps(t)

	res := o.GetTask(context.Background(), "t-missing")
	mustCode(t, res, result.CodeTaskNotFound)
	if res.Error != "Task with ID t-missing not found" {
		t.Errorf("error = %q", res.Error)
	}
}

// ─── UpdateTask ─────────────────────────────────────────────────────────────

func TestUpdateTask_Partial(t *testing.T) {
	o, st := newTestOps(t)
	ctx := context.Background()
	ws := seedWorkspace(t, st, "Acme")
	project := seedProject(t, o, ws, "Website")

	created := o.CreateTask(ctx, CreateTaskInput{
		ProjectID:   project.ID,
		Title:       "Design homepage",
		Description: "Hero plus pricing table",
		Assignee:    "ana",
	})
	mustOK(t, created)
	task := created.Data.(*store.Task)

	res := o.UpdateTask(ctx, task.ID, store.Fields{"title": "Design landing page"})
	mustOK(t, res)
	if res.Message != "Task 'Design landing page' updated" {
		t.Errorf("message = %q", res.Message)
	}

	updated := res.Data.(*store.Task)
	if updated.Title != "Design landing page" {
		t.Errorf("title = %q", updated.Title)
	}
	if updated.Description != "Hero plus pricing table" || updated.Assignee != "ana" {
		t.Error("untouched fields should survive a partial update")
	}
}

func TestUpdateTask_StatusKeySyncsProgress(t *testing.T) {
	o, st := newTestOps(t)
	ctx := context.Background()
	ws := seedWorkspace(t, st, "Acme")
	project := seedProject(t, o, ws, "Website")
	task := seedTask(t, o, project.ID, "Design homepage", store.TaskTodo)

	res := o.UpdateTask(ctx, task.ID, store.Fields{"status": store.TaskDone})
	mustOK(t, res)
	if got := projectProgress(t, o, project.ID); got != 100 {
		t.Errorf("progress after status update = %d, want 100", got)
	}

	// Status key present but value unchanged still triggers a resync.
	if _, err := st.UpdateProject(ctx, project.ID, store.Fields{"progress": 5}); err != nil {
		t.Fatalf("UpdateProject error: %v", err)
	}
	mustOK(t, o.UpdateTask(ctx, task.ID, store.Fields{"status": store.TaskDone}))
	if got := projectProgress(t, o, project.ID); got != 100 {
		t.Errorf("progress after same-status update = %d, want 100", got)
	}
}

func TestUpdateTask_NonStatusFieldSkipsSync(t *testing.T) {
	o, st := newTestOps(t)
	ctx := context.Background()
	ws := seedWorkspace(t, st, "Acme")
	project := seedProject(t, o, ws, "Website")
	task := seedTask(t, o, project.ID, "Design homepage", store.TaskDone)

	// Plant a stale stored value; a title-only update must not resync.
	if _, err := st.UpdateProject(ctx, project.ID, store.Fields{"progress": 5}); err != nil {
		t.Fatalf("UpdateProject error: %v", err)
	}

	mustOK(t, o.UpdateTask(ctx, task.ID, store.Fields{"title": "Redesign homepage"}))
	if got := projectProgress(t, o, project.ID); got != 5 {
		t.Errorf("progress = %d, title-only update should not resync", got)
	}
}

func TestUpdateTask_NoFields(t *testing.T) {
	o, st := newTestOps(t)
	ws := seedWorkspace(t, st, "Acme")
	project := seedProject(t, o, ws, "Website")
	task := seedTask(t, o, project.ID, "Design homepage", store.TaskTodo)

	res := o.UpdateTask(context.Background(), task.ID, store.Fields{})
	mustCode(t, res, result.CodeInvalidArguments)
}

func TestUpdateTask_NotFound(t *testing.T) {
	o, _ := newTestOps(t)

	res := o.UpdateTask(context.Background(), "t-missing", store.Fields{"title": "X"})
	mustCode(t, res, result.CodeTaskNotFound)
}

// ─── MoveTask and shortcuts ─────────────────────────────────────────────────

func TestMoveTask(t *testing.T) {
	o, st := newTestOps(t)
	ctx := context.Background()
	ws := seedWorkspace(t, st, "Acme")
	project := seedProject(t, o, ws, "Website")
	task := seedTask(t, o, project.ID, "Design homepage", store.TaskTodo)

	res := o.MoveTask(ctx, task.ID, store.TaskDone)
	mustOK(t, res)
	if res.Message != "Task 'Design homepage' moved from todo to done" {
		t.Errorf("message = %q", res.Message)
	}
	if res.Data.(*store.Task).Status != store.TaskDone {
		t.Error("status should persist")
	}
	if got := projectProgress(t, o, project.ID); got != 100 {
		t.Errorf("progress after move = %d, want 100", got)
	}
}

func TestMoveTask_InvalidStatus(t *testing.T) {
	o, st := newTestOps(t)
	ctx := context.Background()
	ws := seedWorkspace(t, st, "Acme")
	project := seedProject(t, o, ws, "Website")
	task := seedTask(t, o, project.ID, "Design homepage", store.TaskTodo)

	res := o.MoveTask(ctx, task.ID, "finished")
	mustCode(t, res, result.CodeInvalidStatus)
	if !strings.Contains(res.Error, "finished") {
		t.Errorf("error should name the rejected status: %q", res.Error)
	}
	for _, status := range store.TaskStatuses {
		if !strings.Contains(res.Error, status) {
			t.Errorf("error should list valid status %q: %q", status, res.Error)
		}
	}

	// Nothing was written.
	stored, err := st.GetTask(ctx, task.ID)
	if err != nil {
		t.Fatalf("GetTask error: %v", err)
	}
	if stored.Status != store.TaskTodo {
		t.Errorf("status = %q, rejected move must not write", stored.Status)
	}
	if stored.UpdatedAt != task.UpdatedAt {
		t.Error("updated_at changed on a rejected move")
	}
}

func TestMoveTask_NotFound(t *testing.T) {
	o, _ := newTestOps(t)

	res := o.MoveTask(context.Background(), "t-missing", store.TaskDone)
	mustCode(t, res, result.CodeTaskNotFound)
}

func TestMoveTask_DeletedBetweenFetchAndWrite(t *testing.T) {
	o, st := newTestOps(t)
	ws := seedWorkspace(t, st, "Acme")
	project := seedProject(t, o, ws, "Website")
	task := seedTask(t, o, project.ID, "Design homepage", store.TaskTodo)

	racy := New(vanishedTaskStore{Store: st}, logging.Nop(), "")
	res := racy.MoveTask(context.Background(), task.ID, store.TaskDone)
	mustCode(t, res, result.CodeTaskNotFound)
}

func TestMoveShortcuts(t *testing.T) {
	o, st := newTestOps(t)
	ctx := context.Background()
	ws := seedWorkspace(t, st, "Acme")
	project := seedProject(t, o, ws, "Website")
	task := seedTask(t, o, project.ID, "Design homepage", store.TaskBacklog)

	res := o.StartTask(ctx, task.ID)
	mustOK(t, res)
	if res.Data.(*store.Task).Status != store.TaskInProgress {
		t.Error("start should move to in-progress")
	}

	res = o.ReviewTask(ctx, task.ID)
	mustOK(t, res)
	if res.Data.(*store.Task).Status != store.TaskReview {
		t.Error("review should move to review")
	}

	res = o.CompleteTask(ctx, task.ID)
	mustOK(t, res)
	if res.Data.(*store.Task).Status != store.TaskDone {
		t.Error("complete should move to done")
	}
}

// ─── SearchTasks ────────────────────────────────────────────────────────────

func TestSearchTasks(t *testing.T) {
	o, st := newTestOps(t)
	ctx := context.Background()
	ws := seedWorkspace(t, st, "Acme")
	project := seedProject(t, o, ws, "Website")

	mustOK(t, o.CreateTask(ctx, CreateTaskInput{ProjectID: project.ID, Title: "Fix login bug"}))
	mustOK(t, o.CreateTask(ctx, CreateTaskInput{ProjectID: project.ID, Title: "Build dashboard"}))
	mustOK(t, o.CreateTask(ctx, CreateTaskInput{
		ProjectID:   project.ID,
		Title:       "Polish signup",
		Description: "Shares styling with the Login screen",
	}))

	res := o.SearchTasks(ctx, SearchTasksInput{Query: "login"})
	mustOK(t, res)
	if res.Message != "Found 2 tasks matching 'login'" {
		t.Errorf("message = %q", res.Message)
	}
	if got := len(res.Data.([]store.Task)); got != 2 {
		t.Errorf("matches = %d, want 2 (title and description)", got)
	}

	res = o.SearchTasks(ctx, SearchTasksInput{Query: "DASHBOARD"})
	mustOK(t, res)
	if got := len(res.Data.([]store.Task)); got != 1 {
		t.Errorf("case-insensitive matches = %d, want 1", got)
	}

	res = o.SearchTasks(ctx, SearchTasksInput{Query: "nonexistent"})
	mustOK(t, res)
	if res.Message != "Found 0 tasks matching 'nonexistent'" {
		t.Errorf("message = %q", res.Message)
	}
	if got := len(res.Data.([]store.Task)); got != 0 {
		t.Errorf("matches = %d, want 0", got)
	}
}

func TestSearchTasks_WorkspaceFilter(t *testing.T) {
	o, st := newTestOps(t)
	ctx := context.Background()
	acme := seedWorkspace(t, st, "Acme")
	personal := seedWorkspace(t, st, "Personal")

	acmeProject := seedProject(t, o, acme, "Website")
	personalProject := seedProject(t, o, personal, "Blog")
	seedTask(t, o, acmeProject.ID, "Fix login bug", store.TaskTodo)
	seedTask(t, o, personalProject.ID, "Fix login form", store.TaskTodo)

	res := o.SearchTasks(ctx, SearchTasksInput{Query: "login", WorkspaceID: acme})
	mustOK(t, res)

	tasks := res.Data.([]store.Task)
	if len(tasks) != 1 {
		t.Fatalf("matches = %d, want 1", len(tasks))
	}
	if tasks[0].Project == nil || tasks[0].Project.WorkspaceID != acme {
		t.Error("match should belong to the requested workspace")
	}
}

func TestSearchTasks_ProjectAndStatusFilter(t *testing.T) {
	o, st := newTestOps(t)
	ctx := context.Background()
	ws := seedWorkspace(t, st, "Acme")
	website := seedProject(t, o, ws, "Website")
	mobile := seedProject(t, o, ws, "Mobile App")

	seedTask(t, o, website.ID, "Fix login bug", store.TaskTodo)
	seedTask(t, o, website.ID, "Fix login redirect", store.TaskDone)
	seedTask(t, o, mobile.ID, "Fix login crash", store.TaskTodo)

	res := o.SearchTasks(ctx, SearchTasksInput{Query: "login", ProjectID: website.ID})
	mustOK(t, res)
	if got := len(res.Data.([]store.Task)); got != 2 {
		t.Errorf("project-scoped matches = %d, want 2", got)
	}

	res = o.SearchTasks(ctx, SearchTasksInput{Query: "login", ProjectID: website.ID, Status: store.TaskDone})
	mustOK(t, res)
	if got := len(res.Data.([]store.Task)); got != 1 {
		t.Errorf("status-scoped matches = %d, want 1", got)
	}
}

func TestSearchTasks_EmptyQuery(t *testing.T) {
	o, _ := newTestOps(t)

	res := o.SearchTasks(context.Background(), SearchTasksInput{})
	mustCode(t, res, result.CodeInvalidArguments)
}

// ─── ListProjectTasks ───────────────────────────────────────────────────────

func TestListProjectTasks_BoardOrder(t *testing.T) {
	o, st := newTestOps(t)
	ctx := context.Background()
	ws := seedWorkspace(t, st, "Acme")
	project := seedProject(t, o, ws, "Website")

	first := seedTask(t, o, project.ID, "One", store.TaskTodo)
	second := seedTask(t, o, project.ID, "Two", store.TaskInProgress)
	third := seedTask(t, o, project.ID, "Three", store.TaskTodo)

	res := o.ListProjectTasks(ctx, project.ID, "")
	mustOK(t, res)
	if res.Message != "Found 3 tasks" {
		t.Errorf("message = %q", res.Message)
	}

	tasks := res.Data.([]store.Task)
	wantOrder := []string{first.ID, second.ID, third.ID}
	for i, id := range wantOrder {
		if tasks[i].ID != id {
			t.Errorf("tasks[%d] = %s, want %s", i, tasks[i].ID, id)
		}
	}

	res = o.ListProjectTasks(ctx, project.ID, store.TaskTodo)
	mustOK(t, res)
	if got := len(res.Data.([]store.Task)); got != 2 {
		t.Errorf("todo tasks = %d, want 2", got)
	}
}

func TestListProjectTasks_UnknownProject(t *testing.T) {
	o, _ := newTestOps(t)

	res := o.ListProjectTasks(context.Background(), "p-missing", "")
	mustCode(t, res, result.CodeProjectNotFound)
}

// ─── DeleteTask ─────────────────────────────────────────────────────────────

func TestDeleteTask(t *testing.T) {
	o, st := newTestOps(t)
	ctx := context.Background()
	ws := seedWorkspace(t, st, "Acme")
	project := seedProject(t, o, ws, "Website")

	seedTask(t, o, project.ID, "One", store.TaskDone)
	open := seedTask(t, o, project.ID, "Two", store.TaskTodo)

	res := o.DeleteTask(ctx, open.ID)
	mustOK(t, res)
	if res.Message != "Task 'Two' deleted" {
		t.Errorf("message = %q", res.Message)
	}

	deleted := res.Data.(DeletedTask)
	if deleted.ID != open.ID || deleted.Title != "Two" || deleted.ProjectID != project.ID || !deleted.Deleted {
		t.Errorf("deletion payload = %+v", deleted)
	}

	if _, err := st.GetTask(ctx, open.ID); err == nil {
		t.Error("task should be gone")
	}

	// Only the done task remains, so progress resyncs to 100.
	if got := projectProgress(t, o, project.ID); got != 100 {
		t.Errorf("progress after delete = %d, want 100", got)
	}
}

func TestDeleteTask_NotFound(t *testing.T) {
	o, _ := newTestOps(t)

	res := o.DeleteTask(context.Background(), "t-missing")
	mustCode(t, res, result.CodeTaskNotFound)
}
