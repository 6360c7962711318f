package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/papercomputeco/stackchat/pkg/llm"
)

// mcpCallID marks tool calls that arrived over MCP in logs.
const mcpCallID = "mcp"

// NewMCPServer exposes every function registered in r as an MCP tool. Calls
// go through Dispatch, so they are validated and logged like model calls.
// Functions registered after the server is built are not exposed.
func NewMCPServer(r *Registry, version string) *mcp.Server {
	server := mcp.NewServer(&mcp.Implementation{Name: "stackchat", Version: version}, nil)

	for _, def := range r.Defs() {
		server.AddTool(&mcp.Tool{
			Name:        def.ToolName,
			Description: def.Description,
			InputSchema: inputSchema(def),
		}, r.mcpHandler(def.ToolName))
	}
	return server
}

func (r *Registry) mcpHandler(name string) mcp.ToolHandler {
	return func(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		var args map[string]any
		if len(req.Params.Arguments) > 0 {
			if err := json.Unmarshal(req.Params.Arguments, &args); err != nil {
				return nil, fmt.Errorf("decode %s arguments: %w", name, err)
			}
		}

		result, err := r.Dispatch(ctx, []llm.ToolCall{{CallID: mcpCallID, ToolName: name, Arguments: args}})
		if err != nil {
			return &mcp.CallToolResult{
				IsError: true,
				Content: []mcp.Content{&mcp.TextContent{Text: err.Error()}},
			}, nil
		}
		return &mcp.CallToolResult{
			Content: []mcp.Content{&mcp.TextContent{Text: result}},
		}, nil
	}
}

// inputSchema renders def's parameters as a JSON schema object.
func inputSchema(def llm.ToolDef) map[string]any {
	names := make([]string, 0, len(def.Parameters))
	for name := range def.Parameters {
		names = append(names, name)
	}
	sort.Strings(names)

	properties := make(map[string]any, len(names))
	required := []string{}
	for _, name := range names {
		param := def.Parameters[name]
		properties[name] = map[string]any{
			"type":        schemaType(param.ParamType),
			"description": param.Description,
		}
		if param.Required {
			required = append(required, name)
		}
	}

	return map[string]any{
		"type":       "object",
		"properties": properties,
		"required":   required,
	}
}

func schemaType(paramType string) string {
	switch paramType {
	case "int", "integer":
		return "integer"
	case "float", "number":
		return "number"
	case "bool", "boolean":
		return "boolean"
	default:
		return "string"
	}
}
