// Package client is an HTTP client for the remote inference service's chat
// completion and agent endpoints.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/papercomputeco/stackchat/pkg/llm"
)

const (
	// DefaultClientVersion is sent in the client version header when none is configured.
	DefaultClientVersion = "0.1.0"

	// DefaultTimeout bounds a whole request, including reading a streamed body.
	DefaultTimeout = 5 * time.Minute

	headerClientVersion = "X-LlamaStack-Client-Version"
	headerContentType   = "Content-Type"
	headerAccept        = "Accept"
	mimeJSON            = "application/json"
	mimeEventStream     = "text/event-stream"

	pathChatCompletion = "/v1/inference/chat-completion"
	pathAgents         = "/v1/agents"
)

// ErrInvalidBaseURL is returned by New when the base URL cannot be used.
var ErrInvalidBaseURL = errors.New("invalid base URL")

// StatusError is returned when the remote service answers with a non-2xx status.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("remote returned %d: %s", e.StatusCode, e.Body)
}

// Config is the remote client configuration.
type Config struct {
	// Base URL of the remote inference service (e.g., "http://localhost:5050")
	BaseURL string

	// Value for the client version header
	ClientVersion string

	// Timeout for a single request. Zero uses DefaultTimeout.
	Timeout time.Duration
}

// Client talks to the remote inference service.
type Client struct {
	baseURL    string
	version    string
	httpClient *http.Client
	logger     *zap.Logger
}

// New creates a new Client.
func New(cfg Config, logger *zap.Logger) (*Client, error) {
	base := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if base == "" {
		return nil, fmt.Errorf("%w: empty", ErrInvalidBaseURL)
	}
	u, err := url.Parse(base)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidBaseURL, err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, fmt.Errorf("%w: %q", ErrInvalidBaseURL, cfg.BaseURL)
	}

	version := cfg.ClientVersion
	if version == "" {
		version = DefaultClientVersion
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Client{
		baseURL: base,
		version: version,
		httpClient: &http.Client{
			// Agent turns can run several inference iterations
			Timeout: timeout,
		},
		logger: logger,
	}, nil
}

// BaseURL returns the normalized base URL.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// ChatCompletion performs a non-streaming chat completion.
func (c *Client) ChatCompletion(ctx context.Context, req llm.ChatRequest) (*llm.ChatResponse, error) {
	req.Stream = false

	var resp llm.ChatResponse
	if err := c.doJSON(ctx, pathChatCompletion, req, &resp); err != nil {
		return nil, fmt.Errorf("chat completion: %w", err)
	}
	return &resp, nil
}

// ChatCompletionStream performs a streaming chat completion.
func (c *Client) ChatCompletionStream(ctx context.Context, req llm.ChatRequest) (*Stream[llm.ChatStreamChunk], error) {
	req.Stream = true

	body, err := c.openStream(ctx, pathChatCompletion, req)
	if err != nil {
		return nil, fmt.Errorf("chat completion stream: %w", err)
	}
	return NewStream[llm.ChatStreamChunk](body), nil
}

// CreateAgent creates an agent and returns its identifier.
func (c *Client) CreateAgent(ctx context.Context, cfg llm.AgentConfig) (string, error) {
	var resp llm.AgentCreateResponse
	if err := c.doJSON(ctx, pathAgents, llm.AgentCreateRequest{AgentConfig: cfg}, &resp); err != nil {
		return "", fmt.Errorf("create agent: %w", err)
	}
	if resp.AgentID == "" {
		return "", fmt.Errorf("create agent: empty agent id")
	}
	return resp.AgentID, nil
}

// CreateSession creates a session for agentID and returns its identifier.
func (c *Client) CreateSession(ctx context.Context, agentID, name string) (string, error) {
	path := pathAgents + "/" + url.PathEscape(agentID) + "/session"

	var resp llm.SessionCreateResponse
	if err := c.doJSON(ctx, path, llm.SessionCreateRequest{SessionName: name}, &resp); err != nil {
		return "", fmt.Errorf("create session: %w", err)
	}
	if resp.SessionID == "" {
		return "", fmt.Errorf("create session: empty session id")
	}
	return resp.SessionID, nil
}

// CreateTurnStream starts a streaming agent turn in the given session.
func (c *Client) CreateTurnStream(ctx context.Context, agentID, sessionID string, messages []llm.Message) (*Stream[llm.AgentStreamChunk], error) {
	path := pathAgents + "/" + url.PathEscape(agentID) + "/session/" + url.PathEscape(sessionID) + "/turn"

	body, err := c.openStream(ctx, path, llm.TurnCreateRequest{Messages: messages, Stream: true})
	if err != nil {
		return nil, fmt.Errorf("create turn: %w", err)
	}
	return NewStream[llm.AgentStreamChunk](body), nil
}

// doJSON posts payload to path and decodes the JSON response into out.
func (c *Client) doJSON(ctx context.Context, path string, payload, out any) error {
	resp, err := c.post(ctx, path, payload, mimeJSON)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// openStream posts payload to path and returns the event stream body.
// Caller is responsible for closing the returned ReadCloser.
func (c *Client) openStream(ctx context.Context, path string, payload any) (io.ReadCloser, error) {
	resp, err := c.post(ctx, path, payload, mimeEventStream)
	if err != nil {
		return nil, err
	}
	return resp.Body, nil
}

// post sends payload as JSON. Non-2xx responses are drained, closed and
// returned as a *StatusError.
func (c *Client) post(ctx context.Context, path string, payload any, accept string) (*http.Response, error) {
	reqBody, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	endpoint := c.baseURL + path
	c.logger.Debug("sending request to remote",
		zap.String("url", endpoint),
		zap.Int("body_size", len(reqBody)),
	)

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(reqBody))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set(headerContentType, mimeJSON)
	httpReq.Header.Set(headerAccept, accept)
	httpReq.Header.Set(headerClientVersion, c.version)

	httpResp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("do request: %w", err)
	}

	if httpResp.StatusCode < 200 || httpResp.StatusCode >= 300 {
		defer httpResp.Body.Close()
		body, _ := io.ReadAll(io.LimitReader(httpResp.Body, 64*1024))
		c.logger.Error("remote returned error",
			zap.String("url", endpoint),
			zap.Int("status", httpResp.StatusCode),
			zap.String("body", string(body)),
		)
		return nil, &StatusError{StatusCode: httpResp.StatusCode, Body: strings.TrimSpace(string(body))}
	}

	return httpResp, nil
}
