package clienttest

import "github.com/papercomputeco/stackchat/pkg/llm"

// ChatText returns a chat progress event carrying text.
func ChatText(text string) llm.ChatStreamChunk {
	return llm.ChatStreamChunk{Event: llm.ChatStreamEvent{
		EventType: llm.ChatEventProgress,
		Delta:     llm.Delta{Type: llm.DeltaText, Text: text},
	}}
}

// ChatStart returns the chat start event.
func ChatStart() llm.ChatStreamChunk {
	return llm.ChatStreamChunk{Event: llm.ChatStreamEvent{
		EventType: llm.ChatEventStart,
		Delta:     llm.Delta{Type: llm.DeltaText},
	}}
}

// ChatEnd returns the chat completion event, which stops at end of turn.
func ChatEnd() llm.ChatStreamChunk {
	return llm.ChatStreamChunk{Event: llm.ChatStreamEvent{
		EventType:  llm.ChatEventComplete,
		Delta:      llm.Delta{Type: llm.DeltaText},
		StopReason: llm.StopEndOfTurn,
	}}
}

// ChatToolCall returns a chat progress event carrying a parsed tool call.
func ChatToolCall(call llm.ToolCall) llm.ChatStreamChunk {
	return llm.ChatStreamChunk{Event: llm.ChatStreamEvent{
		EventType: llm.ChatEventProgress,
		Delta:     llm.Delta{Type: llm.DeltaToolCall, ToolCall: &call, ParseStatus: llm.ParseSucceeded},
	}}
}

// TurnEvent returns an agent turn event with only its type set.
func TurnEvent(eventType llm.TurnEventType) llm.AgentStreamChunk {
	return llm.AgentStreamChunk{Event: llm.AgentStreamEvent{Payload: llm.TurnPayload{EventType: eventType}}}
}

// StepText returns an agent step progress event carrying text.
func StepText(text string) llm.AgentStreamChunk {
	return llm.AgentStreamChunk{Event: llm.AgentStreamEvent{Payload: llm.TurnPayload{
		EventType: llm.StepProgress,
		StepType:  llm.StepTypeInference,
		Delta:     &llm.Delta{Type: llm.DeltaText, Text: text},
	}}}
}

// StepToolCalls returns an inference step completion event carrying tool calls.
func StepToolCalls(calls ...llm.ToolCall) llm.AgentStreamChunk {
	response := llm.CompletionMessage("")
	response.StopReason = llm.StopEndOfTurn
	response.ToolCalls = calls
	return llm.AgentStreamChunk{Event: llm.AgentStreamEvent{Payload: llm.TurnPayload{
		EventType: llm.StepComplete,
		StepType:  llm.StepTypeInference,
		StepDetails: &llm.StepDetails{
			StepType:      llm.StepTypeInference,
			ModelResponse: &response,
		},
	}}}
}
