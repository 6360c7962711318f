// Package llm provides the wire representations of the remote inference API:
// chat-completion requests and responses, agent configuration, and the
// server-sent events emitted by streaming chat completions and agent turns.
package llm

// ErrorResponse represents an error returned to UI clients.
type ErrorResponse struct {
	Error string `json:"error"`
}
