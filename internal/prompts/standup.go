// Package prompts implements the MCP prompts for the corkboard server.
//
// MCP prompts are user-triggered workflows (like slash commands) that
// instruct the AI to run a specific sequence of board tools. Unlike
// tools, which the AI calls on its own, prompts are initiated by the
// user.
package prompts

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
)

// StandupPrompt handles the daily-standup MCP prompt.
// It instructs the AI to gather workspace state and report what moved,
// what is in flight, and what to pick up next.
type StandupPrompt struct{}

// NewStandupPrompt creates a StandupPrompt.
func NewStandupPrompt() *StandupPrompt {
	return &StandupPrompt{}
}

// Definition returns the MCP prompt definition for registration.
func (p *StandupPrompt) Definition() mcp.Prompt {
	return mcp.NewPrompt("daily-standup",
		mcp.WithPromptDescription(
			"Run a daily standup for a workspace. "+
				"Summarizes project health, lists the tasks in flight, "+
				"and suggests what to focus on today.",
		),
		mcp.WithArgument("workspace_id",
			mcp.ArgumentDescription("Workspace to report on. If omitted, the assistant picks one via list_workspaces."),
		),
	)
}

// Handle processes the daily-standup prompt request.
func (p *StandupPrompt) Handle(ctx context.Context, req mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
	workspaceID := ""
	if args := req.Params.Arguments; args != nil {
		if id, ok := args["workspace_id"]; ok && id != "" {
			workspaceID = id
		}
	}

	if workspaceID == "" {
		return &mcp.GetPromptResult{
			Description: "Daily standup",
			Messages: []mcp.PromptMessage{
				{
					Role: mcp.RoleUser,
					Content: mcp.NewTextContent(
						"Run my daily standup.\n\n" +
							"Please:\n" +
							"1. Run `list_workspaces` and ask me which workspace to report on\n" +
							"2. Run `get_workspace_summary` with that workspace for the big picture\n" +
							"3. Run `get_work_in_progress` to see what is mid-flight\n" +
							"4. Summarize what moved recently, what is in progress, and what looks stuck\n" +
							"5. Suggest the two or three tasks I should focus on today",
					),
				},
			},
		}, nil
	}

	return &mcp.GetPromptResult{
		Description: fmt.Sprintf("Daily standup for workspace %s", workspaceID),
		Messages: []mcp.PromptMessage{
			{
				Role: mcp.RoleUser,
				Content: mcp.NewTextContent(fmt.Sprintf(
					"Run my daily standup for workspace '%s'.\n\n"+
						"Please:\n"+
						"1. Run `get_workspace_summary` with workspace_id='%s' for the big picture\n"+
						"2. Run `get_work_in_progress` with workspace_id='%s' to see what is mid-flight\n"+
						"3. Summarize what moved recently, what is in progress, and what looks stuck\n"+
						"4. Suggest the two or three tasks I should focus on today",
					workspaceID, workspaceID, workspaceID,
				)),
			},
		},
	}, nil
}
