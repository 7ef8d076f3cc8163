// Package resources implements the MCP resources for the corkboard server.
//
// Resources provide read-only data that the host can consume for context.
// They use URI-based addressing (corkboard://...) following MCP conventions.
package resources

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/corkboardhq/corkboard/internal/ops"
	"github.com/mark3labs/mcp-go/mcp"
)

// Handler manages the board's resource endpoints.
type Handler struct {
	ops *ops.Ops
}

// NewHandler creates a resource Handler with its dependencies.
func NewHandler(o *ops.Ops) *Handler {
	return &Handler{ops: o}
}

// WorkspacesResource returns the MCP resource definition for the
// workspace directory.
func (h *Handler) WorkspacesResource() mcp.Resource {
	return mcp.NewResource(
		"corkboard://workspaces",
		"Workspaces",
		mcp.WithResourceDescription("All workspaces visible to this server, with their IDs"),
		mcp.WithMIMEType("application/json"),
	)
}

// HandleWorkspaces returns the workspace directory as JSON.
func (h *Handler) HandleWorkspaces(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	res := h.ops.ListWorkspaces(ctx, 0)
	if !res.Success {
		return errorResource(req.Params.URI, res.Error), nil
	}

	data, err := json.MarshalIndent(res.Data, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshaling workspaces: %w", err)
	}

	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      req.Params.URI,
			MIMEType: "application/json",
			Text:     string(data),
		},
	}, nil
}

// errorResource returns a resource with an error message.
func errorResource(uri, message string) []mcp.ResourceContents {
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      uri,
			MIMEType: "text/plain",
			Text:     fmt.Sprintf("Error: %s", message),
		},
	}
}
