// Package dispatch holds the static tool catalog and routes named calls
// with loosely-typed argument bags to entity operations.
//
// The dispatcher performs one typed decode per operation and returns the
// operation's result envelope unchanged. Unknown names, undecodable
// arguments, and recovered panics become envelopes of their own, so a raw
// failure never crosses the transport boundary.
package dispatch

import (
	"context"
	"encoding/json"

	"github.com/corkboardhq/corkboard/internal/logging"
	"github.com/corkboardhq/corkboard/internal/ops"
	"github.com/corkboardhq/corkboard/internal/result"
	"github.com/corkboardhq/corkboard/internal/store"
	"github.com/mark3labs/mcp-go/mcp"
)

// Handler runs one operation against a decoded argument bag.
type Handler func(ctx context.Context, args map[string]any) result.Result

// Tool couples an MCP tool definition with its handler.
type Tool struct {
	Definition mcp.Tool
	Handler    Handler
}

// Dispatcher routes tool calls by exact name match.
type Dispatcher struct {
	log   *logging.Logger
	tools []Tool
	index map[string]int
}

// New builds the full tool catalog over the given operation set.
func New(o *ops.Ops, log *logging.Logger) *Dispatcher {
	d := &Dispatcher{log: log, index: make(map[string]int)}
	d.registerWorkspaceTools(o)
	d.registerProjectTools(o)
	d.registerTaskTools(o)
	return d
}

func (d *Dispatcher) add(def mcp.Tool, h Handler) {
	d.index[def.Name] = len(d.tools)
	d.tools = append(d.tools, Tool{Definition: def, Handler: h})
}

// Tools returns the catalog in registration order.
func (d *Dispatcher) Tools() []Tool {
	return d.tools
}

// Count returns the number of registered tools.
func (d *Dispatcher) Count() int {
	return len(d.tools)
}

// Names returns the registered tool names in registration order.
func (d *Dispatcher) Names() []string {
	names := make([]string, len(d.tools))
	for i, t := range d.tools {
		names[i] = t.Definition.Name
	}
	return names
}

// Dispatch routes one call. A panic inside a handler is recovered into an
// INTERNAL_ERROR envelope.
func (d *Dispatcher) Dispatch(ctx context.Context, name string, args map[string]any) (res result.Result) {
	defer func() {
		if r := recover(); r != nil {
			d.log.Error("tool panicked", "tool", name, "panic", r)
			res = result.Errorf(result.CodeInternalError, "Internal error in %s: %v", name, r)
		}
	}()

	i, ok := d.index[name]
	if !ok {
		return result.Errorf(result.CodeUnknownTool, "Unknown tool: %s", name)
	}
	return d.tools[i].Handler(ctx, args)
}

// ─── Argument plumbing ──────────────────────────────────────────────────────

// handle decodes the argument bag into the operation's input struct via a
// JSON round-trip. A decode failure short-circuits with INVALID_ARGUMENTS
// before the operation runs.
func handle[T any](fn func(context.Context, T) result.Result) Handler {
	return func(ctx context.Context, args map[string]any) result.Result {
		raw, err := json.Marshal(args)
		if err != nil {
			return result.Errorf(result.CodeInvalidArguments, "Invalid arguments: %v", err)
		}
		var in T
		if err := json.Unmarshal(raw, &in); err != nil {
			return result.Errorf(result.CodeInvalidArguments, "Invalid arguments: %v", err)
		}
		return fn(ctx, in)
	}
}

func stringArg(args map[string]any, key string) string {
	if v, ok := args[key].(string); ok {
		return v
	}
	return ""
}

func boolArg(args map[string]any, key string, def bool) bool {
	if v, ok := args[key].(bool); ok {
		return v
	}
	return def
}

// intArg reads a numeric argument; JSON decoding hands numbers over as
// float64.
func intArg(args map[string]any, key string) (int, bool) {
	switch n := args[key].(type) {
	case float64:
		return int(n), true
	case int:
		return n, true
	}
	return 0, false
}

// pluckFields keeps only the whitelisted keys actually present in the bag,
// preserving the absent-versus-explicitly-set distinction partial updates
// depend on.
func pluckFields(args map[string]any, keys []string) store.Fields {
	fields := store.Fields{}
	for _, k := range keys {
		if v, ok := args[k]; ok {
			fields[k] = v
		}
	}
	return fields
}
