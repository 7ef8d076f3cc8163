package prompts

import (
	"context"
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
)

func promptText(t *testing.T, res *mcp.GetPromptResult) string {
	t.Helper()
	if len(res.Messages) != 1 {
		t.Fatalf("got %d messages, want 1", len(res.Messages))
	}
	if res.Messages[0].Role != mcp.RoleUser {
		t.Errorf("role = %q, want %q", res.Messages[0].Role, mcp.RoleUser)
	}
	content, ok := res.Messages[0].Content.(mcp.TextContent)
	if !ok {
		t.Fatalf("content is %T, want mcp.TextContent", res.Messages[0].Content)
	}
	return content.Text
}

// ─── Standup ────────────────────────────────────────────────────────────────

func TestStandupPrompt_Definition(t *testing.T) {
	def := NewStandupPrompt().Definition()
	if def.Name != "daily-standup" {
		t.Errorf("name = %q, want %q", def.Name, "daily-standup")
	}
	if def.Description == "" {
		t.Error("description is empty")
	}
}

func TestStandupPrompt_WithWorkspace(t *testing.T) {
	var req mcp.GetPromptRequest
	req.Params.Arguments = map[string]string{"workspace_id": "ws-1"}

	res, err := NewStandupPrompt().Handle(context.Background(), req)
	if err != nil {
		t.Fatalf("Handle error: %v", err)
	}

	text := promptText(t, res)
	for _, want := range []string{"get_workspace_summary", "get_work_in_progress", "ws-1"} {
		if !strings.Contains(text, want) {
			t.Errorf("prompt text missing %q", want)
		}
	}
	if strings.Contains(text, "list_workspaces") {
		t.Error("prompt with a workspace should not ask to list workspaces")
	}
}

func TestStandupPrompt_WithoutWorkspace(t *testing.T) {
	res, err := NewStandupPrompt().Handle(context.Background(), mcp.GetPromptRequest{})
	if err != nil {
		t.Fatalf("Handle error: %v", err)
	}

	text := promptText(t, res)
	if !strings.Contains(text, "list_workspaces") {
		t.Error("prompt without a workspace should ask to list workspaces")
	}
}

// ─── Plan ───────────────────────────────────────────────────────────────────

func TestPlanPrompt_Definition(t *testing.T) {
	def := NewPlanPrompt().Definition()
	if def.Name != "plan-project" {
		t.Errorf("name = %q, want %q", def.Name, "plan-project")
	}
}

func TestPlanPrompt_WithProjectAndGoal(t *testing.T) {
	var req mcp.GetPromptRequest
	req.Params.Arguments = map[string]string{
		"project_id": "p-1",
		"goal":       "Launch the marketing site",
	}

	res, err := NewPlanPrompt().Handle(context.Background(), req)
	if err != nil {
		t.Fatalf("Handle error: %v", err)
	}
	if res.Description != "Plan project p-1" {
		t.Errorf("description = %q, want %q", res.Description, "Plan project p-1")
	}

	text := promptText(t, res)
	for _, want := range []string{"get_project", "p-1", "Launch the marketing site", "create_task", "list_project_tasks"} {
		if !strings.Contains(text, want) {
			t.Errorf("prompt text missing %q", want)
		}
	}
}

func TestPlanPrompt_WithoutProject(t *testing.T) {
	res, err := NewPlanPrompt().Handle(context.Background(), mcp.GetPromptRequest{})
	if err != nil {
		t.Fatalf("Handle error: %v", err)
	}

	text := promptText(t, res)
	if !strings.Contains(text, "list_projects") {
		t.Error("prompt without a project should suggest list_projects")
	}
	if strings.Contains(text, "get_project`") && strings.Contains(text, "project_id='") {
		t.Error("prompt without a project should not reference a project id")
	}
}
