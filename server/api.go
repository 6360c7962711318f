package server

import (
	"github.com/papercomputeco/stackchat/pkg/conversation"
)

// HistoryTurn is one chat history entry as sent by UI clients.
type HistoryTurn struct {
	Text        string `json:"text"`
	IsSent      bool   `json:"is_sent"`
	MessageType string `json:"message_type,omitempty"` // "text" (default) or "image"
	ImagePath   string `json:"image_path,omitempty"`
}

// ChatRequest is the body of POST /api/chat.
type ChatRequest struct {
	Model        string        `json:"model,omitempty"`
	Temperature  *float64      `json:"temperature,omitempty"`
	SystemPrompt string        `json:"system_prompt,omitempty"`
	Stream       *bool         `json:"stream,omitempty"` // Defaults to true
	History      []HistoryTurn `json:"history"`
}

// ChatResponse is the body of a non-streamed chat reply.
type ChatResponse struct {
	Result string `json:"result"`
}

// AgentRequest is the body of POST /api/agents.
type AgentRequest struct {
	Model        string   `json:"model,omitempty"`
	Temperature  *float64 `json:"temperature,omitempty"`
	SystemPrompt string   `json:"system_prompt,omitempty"`
}

// TurnRequest is the body of POST /api/agents/:agent_id/sessions/:session_id/turns.
type TurnRequest struct {
	History []HistoryTurn `json:"history"`
}

// Stream line types.
const (
	LineChunk = "chunk"
	LineStat  = "stat"
	LineDone  = "done"
	LineError = "error"
)

// StreamLine is one NDJSON line of a streamed reply.
type StreamLine struct {
	Type   string  `json:"type"`
	Text   string  `json:"text,omitempty"`
	TPS    float32 `json:"tps,omitempty"`
	Result string  `json:"result,omitempty"`
	Error  string  `json:"error,omitempty"`
}

func toTurns(history []HistoryTurn) []conversation.Turn {
	turns := make([]conversation.Turn, 0, len(history))
	for _, h := range history {
		turns = append(turns, conversation.Turn{
			Text:      h.Text,
			IsSent:    h.IsSent,
			Type:      conversation.ParseMessageType(h.MessageType),
			ImagePath: h.ImagePath,
		})
	}
	return turns
}
