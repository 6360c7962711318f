package llm

import "encoding/json"

// Role identifies the author of a message.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleTool      Role = "tool"
)

// StopReason tells why the model stopped generating.
type StopReason string

const (
	StopEndOfTurn    StopReason = "end_of_turn"
	StopEndOfMessage StopReason = "end_of_message"
	StopOutOfTokens  StopReason = "out_of_tokens"
)

// Message represents a single message in a conversation. It is a tagged union
// over system, user, completion (assistant) and tool response messages; Role
// is the tag and decides which of the remaining fields are encoded.
type Message struct {
	Role       Role       `json:"role"`
	Content    Content    `json:"content"`
	StopReason StopReason `json:"stop_reason,omitempty"` // Completion messages only
	ToolCalls  []ToolCall `json:"tool_calls,omitempty"`  // Completion messages only
	CallID     string     `json:"call_id,omitempty"`     // Tool responses only
	ToolName   string     `json:"tool_name,omitempty"`   // Tool responses only
}

// SystemMessage returns a system message carrying text.
func SystemMessage(text string) Message {
	return Message{Role: RoleSystem, Content: TextContent(text)}
}

// UserMessage returns a user message carrying text.
func UserMessage(text string) Message {
	return Message{Role: RoleUser, Content: TextContent(text)}
}

// UserImageMessage returns a user message carrying a single image item.
func UserImageMessage(uri string) Message {
	return Message{Role: RoleUser, Content: ImageURLContent(uri)}
}

// CompletionMessage returns an assistant message for a previous model response.
func CompletionMessage(text string) Message {
	return Message{
		Role:       RoleAssistant,
		Content:    TextContent(text),
		StopReason: StopEndOfMessage,
		ToolCalls:  []ToolCall{},
	}
}

// ToolResponseMessage returns a tool response message.
func ToolResponseMessage(callID, toolName, text string) Message {
	return Message{
		Role:     RoleTool,
		CallID:   callID,
		ToolName: toolName,
		Content:  TextContent(text),
	}
}

// MarshalJSON implements json.Marshaler. Completion messages always carry
// stop_reason and tool_calls, tool responses always carry call_id and
// tool_name, even when empty.
func (m Message) MarshalJSON() ([]byte, error) {
	switch m.Role {
	case RoleAssistant:
		calls := m.ToolCalls
		if calls == nil {
			calls = []ToolCall{}
		}
		stop := m.StopReason
		if stop == "" {
			stop = StopEndOfMessage
		}
		return json.Marshal(struct {
			Role       Role       `json:"role"`
			Content    Content    `json:"content"`
			StopReason StopReason `json:"stop_reason"`
			ToolCalls  []ToolCall `json:"tool_calls"`
		}{m.Role, m.Content, stop, calls})

	case RoleTool:
		return json.Marshal(struct {
			Role     Role    `json:"role"`
			CallID   string  `json:"call_id"`
			ToolName string  `json:"tool_name"`
			Content  Content `json:"content"`
		}{m.Role, m.CallID, m.ToolName, m.Content})

	default:
		return json.Marshal(struct {
			Role    Role    `json:"role"`
			Content Content `json:"content"`
		}{m.Role, m.Content})
	}
}
