package llm

import (
	"maps"
	"slices"
)

// ToolChoiceAuto lets the model decide whether to call a tool.
const ToolChoiceAuto = "auto"

// ToolPromptFormat controls how tool definitions are rendered into the prompt
// on the server side.
type ToolPromptFormat string

const (
	ToolPromptJSON        ToolPromptFormat = "json"
	ToolPromptPythonList  ToolPromptFormat = "python_list"
	ToolPromptFunctionTag ToolPromptFormat = "function_tag"
)

// Valid reports whether f is a known tool prompt format.
func (f ToolPromptFormat) Valid() bool {
	switch f {
	case ToolPromptJSON, ToolPromptPythonList, ToolPromptFunctionTag:
		return true
	}
	return false
}

// ToolParamDef describes a single tool parameter.
type ToolParamDef struct {
	ParamType   string `json:"param_type"`
	Description string `json:"description,omitempty"`
	Required    bool   `json:"required"`
}

// ToolDef describes a tool the model may call.
type ToolDef struct {
	ToolName    string                  `json:"tool_name"`
	Description string                  `json:"description,omitempty"`
	Parameters  map[string]ToolParamDef `json:"parameters,omitempty"`
}

// ToolParameter describes one parameter of an agent client tool.
type ToolParameter struct {
	Name          string `json:"name"`
	ParameterType string `json:"parameter_type"`
	Description   string `json:"description"`
	Required      bool   `json:"required"`
	Default       any    `json:"default,omitempty"`
}

// ClientToolDef describes a tool offered to an agent and run by the client.
// Agents take parameters as an ordered list rather than the map used by
// chat completion tool definitions.
type ClientToolDef struct {
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Parameters  []ToolParameter `json:"parameters"`
}

// ClientTool converts a chat completion tool definition into an agent client
// tool. Parameters are sorted by name.
func ClientTool(def ToolDef) ClientToolDef {
	params := make([]ToolParameter, 0, len(def.Parameters))
	for _, name := range slices.Sorted(maps.Keys(def.Parameters)) {
		p := def.Parameters[name]
		params = append(params, ToolParameter{
			Name:          name,
			ParameterType: p.ParamType,
			Description:   p.Description,
			Required:      p.Required,
		})
	}
	return ClientToolDef{
		Name:        def.ToolName,
		Description: def.Description,
		Parameters:  params,
	}
}

// ClientTools converts defs with ClientTool.
func ClientTools(defs []ToolDef) []ClientToolDef {
	tools := make([]ClientToolDef, 0, len(defs))
	for _, def := range defs {
		tools = append(tools, ClientTool(def))
	}
	return tools
}

// ToolCall is a tool invocation produced by the model.
type ToolCall struct {
	CallID    string         `json:"call_id"`
	ToolName  string         `json:"tool_name"`
	Arguments map[string]any `json:"arguments"`
}
