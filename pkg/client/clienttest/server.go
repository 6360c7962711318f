// Package clienttest provides a fake remote inference service for tests.
package clienttest

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"

	"github.com/papercomputeco/stackchat/pkg/llm"
)

// Request is a request recorded by the fake server.
type Request struct {
	Path   string
	Header http.Header
	Body   []byte
}

// Decode unmarshals the recorded body into v.
func (r Request) Decode(v any) error {
	return json.Unmarshal(r.Body, v)
}

// Server is a fake remote inference service. Configure the exported fields
// before issuing requests.
type Server struct {
	*httptest.Server

	// ChatEvents are streamed by the chat completion endpoint when stream=true.
	ChatEvents []llm.ChatStreamChunk

	// ChatResponse is returned by the chat completion endpoint when stream=false.
	ChatResponse llm.ChatResponse

	// TurnEvents are streamed by the agent turn endpoint.
	TurnEvents []llm.AgentStreamChunk

	// AgentID and SessionID are returned by the creation endpoints.
	AgentID   string
	SessionID string

	// FailStatus, when non-zero, makes every endpoint answer with that status.
	FailStatus int

	// BreakStream appends an undecodable event after the configured events.
	BreakStream bool

	mu       sync.Mutex
	requests []Request
}

// NewServer starts a fake remote inference service.
func NewServer() *Server {
	s := &Server{
		AgentID:   "agent-1",
		SessionID: "session-1",
	}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /v1/inference/chat-completion", s.handleChat)
	mux.HandleFunc("POST /v1/agents", s.handleCreateAgent)
	mux.HandleFunc("POST /v1/agents/{agent}/session", s.handleCreateSession)
	mux.HandleFunc("POST /v1/agents/{agent}/session/{session}/turn", s.handleTurn)

	s.Server = httptest.NewServer(s.record(mux))
	return s
}

// Requests returns every request received so far.
func (s *Server) Requests() []Request {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Request(nil), s.requests...)
}

// LastRequest returns the most recent request for path.
func (s *Server) LastRequest(path string) (Request, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := len(s.requests) - 1; i >= 0; i-- {
		if s.requests[i].Path == path {
			return s.requests[i], true
		}
	}
	return Request{}, false
}

func (s *Server) record(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		r.Body.Close()

		s.mu.Lock()
		s.requests = append(s.requests, Request{Path: r.URL.Path, Header: r.Header.Clone(), Body: body})
		s.mu.Unlock()

		if s.FailStatus != 0 {
			http.Error(w, "remote failure", s.FailStatus)
			return
		}

		r.Body = io.NopCloser(bytes.NewReader(body))
		next.ServeHTTP(w, r)
	})
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Stream bool `json:"stream"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}

	if !req.Stream {
		writeJSON(w, s.ChatResponse)
		return
	}
	writeEvents(w, s.ChatEvents, s.BreakStream)
}

func (s *Server) handleCreateAgent(w http.ResponseWriter, r *http.Request) {
	var req llm.AgentCreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}
	for i, tool := range req.AgentConfig.ClientTools {
		if tool.Name == "" {
			http.Error(w, fmt.Sprintf("agent_config.client_tools[%d].name is required", i), http.StatusUnprocessableEntity)
			return
		}
		for j, param := range tool.Parameters {
			if param.Name == "" || param.ParameterType == "" {
				http.Error(w, fmt.Sprintf("agent_config.client_tools[%d].parameters[%d] needs name and parameter_type", i, j), http.StatusUnprocessableEntity)
				return
			}
		}
	}
	writeJSON(w, llm.AgentCreateResponse{AgentID: s.AgentID})
}

func (s *Server) handleCreateSession(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, llm.SessionCreateResponse{SessionID: s.SessionID})
}

func (s *Server) handleTurn(w http.ResponseWriter, _ *http.Request) {
	writeEvents(w, s.TurnEvents, s.BreakStream)
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

func writeEvents[T any](w http.ResponseWriter, events []T, broken bool) {
	w.Header().Set("Content-Type", "text/event-stream")
	flusher, _ := w.(http.Flusher)

	for _, event := range events {
		data, err := json.Marshal(event)
		if err != nil {
			panic(err)
		}
		fmt.Fprintf(w, "data: %s\n\n", data)
		if flusher != nil {
			flusher.Flush()
		}
	}
	if broken {
		fmt.Fprint(w, "data: {not json\n\n")
	}
}
