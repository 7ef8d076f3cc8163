package prompts

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
)

// PlanPrompt handles the plan-project MCP prompt.
// It instructs the AI to inspect a project board and break the
// remaining work into concrete tasks.
type PlanPrompt struct{}

// NewPlanPrompt creates a PlanPrompt.
func NewPlanPrompt() *PlanPrompt {
	return &PlanPrompt{}
}

// Definition returns the MCP prompt definition for registration.
func (p *PlanPrompt) Definition() mcp.Prompt {
	return mcp.NewPrompt("plan-project",
		mcp.WithPromptDescription(
			"Plan the remaining work for a project. "+
				"Reviews the board, proposes the missing tasks, and "+
				"creates them after your confirmation.",
		),
		mcp.WithArgument("project_id",
			mcp.ArgumentDescription("Project to plan"),
		),
		mcp.WithArgument("goal",
			mcp.ArgumentDescription("What the finished project should deliver, in one or two sentences"),
		),
	)
}

// Handle processes the plan-project prompt request.
func (p *PlanPrompt) Handle(ctx context.Context, req mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
	projectID := ""
	goal := ""
	if args := req.Params.Arguments; args != nil {
		if id, ok := args["project_id"]; ok && id != "" {
			projectID = id
		}
		if g, ok := args["goal"]; ok && g != "" {
			goal = g
		}
	}

	description := "Plan project work"
	lookup := "1. Ask me which project to plan, or find it with `list_projects`\n"
	if projectID != "" {
		description = fmt.Sprintf("Plan project %s", projectID)
		lookup = fmt.Sprintf("1. Run `get_project` with project_id='%s' to see the board and what is already done\n", projectID)
	}

	goalLine := ""
	if goal != "" {
		goalLine = fmt.Sprintf("The goal: %s\n", goal)
	}

	return &mcp.GetPromptResult{
		Description: description,
		Messages: []mcp.PromptMessage{
			{
				Role: mcp.RoleUser,
				Content: mcp.NewTextContent(fmt.Sprintf(
					"I want to plan the remaining work for my project.\n%s\n"+
						"Please:\n"+
						"%s"+
						"2. Break the remaining work into small, actionable tasks\n"+
						"3. Show me the proposed list and wait for my confirmation\n"+
						"4. Create the confirmed tasks with `create_task`, one call per task\n"+
						"5. Finish with `list_project_tasks` so I can see the updated board",
					goalLine, lookup,
				)),
			},
		},
	}, nil
}
