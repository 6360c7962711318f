package llm

import (
	"bytes"
	"encoding/json"
)

// DeltaType tags the kind of incremental content carried by a Delta.
type DeltaType string

const (
	DeltaText     DeltaType = "text"
	DeltaToolCall DeltaType = "tool_call"
	DeltaImage    DeltaType = "image"
)

// Tool call parse statuses reported on tool call deltas.
const (
	ParseStarted    = "started"
	ParseInProgress = "in_progress"
	ParseFailed     = "failed"
	ParseSucceeded  = "succeeded"
)

// Delta is an incremental piece of model output.
type Delta struct {
	Type        DeltaType `json:"type"`
	Text        string    `json:"text,omitempty"`
	ToolCall    *ToolCall `json:"-"`                      // Set once the server has parsed a tool call
	ToolCallRaw string    `json:"-"`                      // Partial tool call text while parsing
	ParseStatus string    `json:"parse_status,omitempty"` // Tool call deltas only
}

// IsText reports whether d carries text.
func (d Delta) IsText() bool {
	return d.Type == DeltaText
}

// IsToolCall reports whether d carries a (possibly partial) tool call.
func (d Delta) IsToolCall() bool {
	return d.Type == DeltaToolCall
}

// UnmarshalJSON implements json.Unmarshaler. The tool_call field is either a
// parsed tool call object or the raw text accumulated so far.
func (d *Delta) UnmarshalJSON(data []byte) error {
	type fields Delta
	var aux struct {
		fields
		ToolCall json.RawMessage `json:"tool_call,omitempty"`
	}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	*d = Delta(aux.fields)

	raw := bytes.TrimSpace(aux.ToolCall)
	switch {
	case len(raw) == 0 || bytes.Equal(raw, []byte("null")):
	case raw[0] == '{':
		var call ToolCall
		if err := json.Unmarshal(raw, &call); err != nil {
			return err
		}
		d.ToolCall = &call
	default:
		var text string
		if err := json.Unmarshal(raw, &text); err != nil {
			return err
		}
		d.ToolCallRaw = text
	}
	return nil
}

// MarshalJSON implements json.Marshaler.
func (d Delta) MarshalJSON() ([]byte, error) {
	type fields Delta
	aux := struct {
		fields
		ToolCall any `json:"tool_call,omitempty"`
	}{fields: fields(d)}
	switch {
	case d.ToolCall != nil:
		aux.ToolCall = d.ToolCall
	case d.ToolCallRaw != "":
		aux.ToolCall = d.ToolCallRaw
	}
	return json.Marshal(aux)
}

// Chat completion event types.
const (
	ChatEventStart    = "start"
	ChatEventProgress = "progress"
	ChatEventComplete = "complete"
)

// ChatStreamEvent is a single streamed chat completion event.
type ChatStreamEvent struct {
	EventType  string     `json:"event_type"`
	Delta      Delta      `json:"delta"`
	StopReason StopReason `json:"stop_reason,omitempty"`
}

// ChatStreamChunk represents a single chunk in a streaming chat completion.
type ChatStreamChunk struct {
	Event ChatStreamEvent `json:"event"`
}
