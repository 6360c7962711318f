package llm

// ChatRequest represents a chat completion request.
type ChatRequest struct {
	ModelID          string           `json:"model_id"`                     // Model identifier (e.g., "meta-llama/Llama-3.2-3B-Instruct")
	Messages         []Message        `json:"messages"`                     // Conversation history, system message first
	SamplingParams   SamplingParams   `json:"sampling_params"`              // Always greedy
	Tools            []ToolDef        `json:"tools,omitempty"`              // Optional tool definitions
	ToolChoice       string           `json:"tool_choice,omitempty"`        // "auto"
	ToolPromptFormat ToolPromptFormat `json:"tool_prompt_format,omitempty"` // Chosen per model
	Stream           bool             `json:"stream"`                       // Whether to stream responses
}

// AgentConfig configures an agent created on the remote service.
type AgentConfig struct {
	Model                    string           `json:"model"`
	Instructions             string           `json:"instructions"`
	SamplingParams           SamplingParams   `json:"sampling_params"`
	ToolChoice               string           `json:"tool_choice,omitempty"`
	ToolPromptFormat         ToolPromptFormat `json:"tool_prompt_format,omitempty"`
	ClientTools              []ClientToolDef  `json:"client_tools"`
	MaxInferIters            int              `json:"max_infer_iters"`
	EnableSessionPersistence bool             `json:"enable_session_persistence"`
}

// AgentCreateRequest is the body of an agent creation call.
type AgentCreateRequest struct {
	AgentConfig AgentConfig `json:"agent_config"`
}

// SessionCreateRequest is the body of an agent session creation call.
type SessionCreateRequest struct {
	SessionName string `json:"session_name"`
}

// TurnCreateRequest is the body of an agent turn creation call. The agent and
// session identifiers travel in the URL path.
type TurnCreateRequest struct {
	Messages []Message `json:"messages"`
	Stream   bool      `json:"stream"`
}
