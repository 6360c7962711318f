package llm

// TurnEventType tags the payload of an agent turn stream event.
type TurnEventType string

const (
	TurnStart    TurnEventType = "turn_start"
	StepStart    TurnEventType = "step_start"
	StepProgress TurnEventType = "step_progress"
	StepComplete TurnEventType = "step_complete"
	TurnComplete TurnEventType = "turn_complete"
)

// StepTypeInference is the step type of a model inference step.
const StepTypeInference = "inference"

// StepDetails describes a completed agent step. ModelResponse is only present
// for inference steps.
type StepDetails struct {
	StepType      string   `json:"step_type"`
	StepID        string   `json:"step_id,omitempty"`
	TurnID        string   `json:"turn_id,omitempty"`
	ModelResponse *Message `json:"model_response,omitempty"`
}

// ToolCalls returns the tool calls of an inference step, if any.
func (s *StepDetails) ToolCalls() []ToolCall {
	if s == nil || s.StepType != StepTypeInference || s.ModelResponse == nil {
		return nil
	}
	return s.ModelResponse.ToolCalls
}

// TurnPayload is the tagged payload of an agent turn stream event.
type TurnPayload struct {
	EventType   TurnEventType `json:"event_type"`
	StepType    string        `json:"step_type,omitempty"`
	StepID      string        `json:"step_id,omitempty"`
	TurnID      string        `json:"turn_id,omitempty"`
	Delta       *Delta        `json:"delta,omitempty"`        // step_progress only
	StepDetails *StepDetails  `json:"step_details,omitempty"` // step_complete only
}

// AgentStreamEvent wraps a turn payload.
type AgentStreamEvent struct {
	Payload TurnPayload `json:"payload"`
}

// AgentStreamChunk represents a single chunk in a streaming agent turn.
type AgentStreamChunk struct {
	Event AgentStreamEvent `json:"event"`
}
