package llm

// ChatResponse represents a non-streaming chat completion response.
type ChatResponse struct {
	CompletionMessage Message `json:"completion_message"` // The assistant's response
}

// AgentCreateResponse is returned when an agent is created.
type AgentCreateResponse struct {
	AgentID string `json:"agent_id"`
}

// SessionCreateResponse is returned when an agent session is created.
type SessionCreateResponse struct {
	SessionID string `json:"session_id"`
}
