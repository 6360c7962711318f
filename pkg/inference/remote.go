// Package inference exposes the entry points the front-ends call: plain chat
// completion with local tool dispatch, and agent creation and turns against
// the remote inference service.
package inference

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/papercomputeco/stackchat/pkg/client"
	"github.com/papercomputeco/stackchat/pkg/config"
	"github.com/papercomputeco/stackchat/pkg/conversation"
	"github.com/papercomputeco/stackchat/pkg/dispatch"
	"github.com/papercomputeco/stackchat/pkg/llm"
	"github.com/papercomputeco/stackchat/pkg/media"
	"github.com/papercomputeco/stackchat/pkg/tools"
)

const (
	// EmptyResponseMessage is returned when a non-streaming completion has
	// neither content nor tool calls.
	EmptyResponseMessage = "Empty tool calls and model response. File a bug"

	// maxInferIters bounds the inference iterations of one agent turn.
	maxInferIters = 100

	sessionNamePrefix = "stackchat-"
)

// ErrClientUnavailable is returned by every entry point when the remote
// client could not be built.
var ErrClientUnavailable = errors.New("client is null for remote inference")

// AgentSession identifies an agent and one of its sessions on the remote service.
type AgentSession struct {
	AgentID   string `json:"agent_id"`
	SessionID string `json:"session_id"`
}

// Option configures a Remote.
type Option func(*Remote)

// WithClock sets the clock used for the date in default prompts.
func WithClock(now func() time.Time) Option {
	return func(r *Remote) {
		r.now = now
	}
}

// WithResolver sets how image references in the history are resolved.
func WithResolver(resolver media.Resolver) Option {
	return func(r *Remote) {
		r.resolver = resolver
	}
}

type inferOptions struct {
	stream bool
}

// InferOption configures a single InferWithoutAgent call.
type InferOption func(*inferOptions)

// WithoutStreaming requests a single non-streamed completion.
func WithoutStreaming() InferOption {
	return func(o *inferOptions) {
		o.stream = false
	}
}

// Remote runs inference against the remote service.
type Remote struct {
	client     *client.Client
	clientErr  error
	cfg        config.Config
	formats    *config.ToolFormats
	tools      *tools.Registry
	translator *conversation.Translator
	dispatcher *dispatch.Dispatcher
	resolver   media.Resolver
	now        func() time.Time
	logger     *zap.Logger
}

// New creates a Remote. A client that cannot be built does not fail New: the
// failure is logged and returned, wrapped in ErrClientUnavailable, by every
// later call. Nil formats are built from cfg, nil tools give an empty registry.
func New(cfg config.Config, formats *config.ToolFormats, registry *tools.Registry, logger *zap.Logger, opts ...Option) *Remote {
	if logger == nil {
		logger = zap.NewNop()
	}
	if formats == nil {
		formats = config.FormatsFrom(cfg)
	}
	if registry == nil {
		registry = tools.NewRegistry(logger)
	}

	r := &Remote{
		cfg:      cfg,
		formats:  formats,
		tools:    registry,
		resolver: media.FileResolver{},
		now:      time.Now,
		logger:   logger,
	}
	for _, opt := range opts {
		opt(r)
	}

	r.client, r.clientErr = client.New(client.Config{
		BaseURL:       cfg.Remote.URL,
		ClientVersion: cfg.Remote.ClientVersion,
		Timeout:       cfg.Remote.Timeout,
	}, logger)
	if r.clientErr != nil {
		logger.Error("could not create remote inference client",
			zap.String("url", cfg.Remote.URL),
			zap.Error(r.clientErr),
		)
	}

	r.translator = conversation.NewTranslator(r.resolver, logger)
	r.dispatcher = dispatch.New(registry, logger)
	return r
}

// Ready reports whether the remote client was built.
func (r *Remote) Ready() error {
	if r.clientErr != nil {
		return fmt.Errorf("remote inference: %w: %w", ErrClientUnavailable, r.clientErr)
	}
	return nil
}

// InferWithoutAgent runs a plain chat completion over history. An empty
// systemPrompt is replaced by the default tool calling prompt. Streamed
// output goes to cb as it arrives and the aggregate text is returned; a
// non-streamed call returns the completion text, or the result of its tool
// calls when the content is empty. temperature is logged only: sampling is
// always greedy.
func (r *Remote) InferWithoutAgent(
	ctx context.Context,
	model string,
	temperature float64,
	history []conversation.Turn,
	systemPrompt string,
	cb dispatch.Callback,
	opts ...InferOption,
) (string, error) {
	if err := r.Ready(); err != nil {
		return "", err
	}

	options := inferOptions{stream: true}
	for _, opt := range opts {
		opt(&options)
	}

	model = r.model(model)
	instruction := systemPrompt
	if instruction == "" {
		instruction = chatPrompt(r.now(), r.tools.Signatures())
	}

	req := llm.ChatRequest{
		ModelID:          model,
		Messages:         r.translator.ForChat(history, instruction),
		SamplingParams:   llm.GreedySampling(),
		ToolChoice:       llm.ToolChoiceAuto,
		ToolPromptFormat: r.formats.Lookup(model),
		Stream:           options.stream,
	}

	r.logger.Debug("chat inference",
		zap.String("model", model),
		zap.Float64("temperature", temperature),
		zap.Bool("stream", options.stream),
		zap.String("tool_prompt_format", string(req.ToolPromptFormat)),
	)

	return runWorker(ctx, r.logger, "chat", func(ctx context.Context) (string, error) {
		if !options.stream {
			return r.complete(ctx, req)
		}

		stream, err := r.client.ChatCompletionStream(ctx, req)
		if err != nil {
			return "", err
		}
		return r.dispatcher.Chat(ctx, stream, cb)
	})
}

func (r *Remote) complete(ctx context.Context, req llm.ChatRequest) (string, error) {
	resp, err := r.client.ChatCompletion(ctx, req)
	if err != nil {
		return "", err
	}

	message := resp.CompletionMessage
	if text := message.Content.String(); text != "" {
		return text, nil
	}
	if len(message.ToolCalls) == 0 {
		r.logger.Warn("completion without content or tool calls", zap.String("model", req.ModelID))
		return EmptyResponseMessage, nil
	}
	return r.tools.Dispatch(ctx, message.ToolCalls)
}

// CreateAgent creates an agent and a session for it. An empty systemPrompt
// is replaced by the default agent instruction, and every registered tool is
// offered to the agent as a client tool. A caller supplied prompt gets no
// client tools.
func (r *Remote) CreateAgent(ctx context.Context, model string, temperature float64, systemPrompt string) (AgentSession, error) {
	if err := r.Ready(); err != nil {
		return AgentSession{}, err
	}

	model = r.model(model)
	agentConfig := llm.AgentConfig{
		Model:                    model,
		Instructions:             systemPrompt,
		SamplingParams:           llm.GreedySampling(),
		ToolChoice:               llm.ToolChoiceAuto,
		ToolPromptFormat:         r.formats.Lookup(model),
		ClientTools:              []llm.ClientToolDef{},
		MaxInferIters:            maxInferIters,
		EnableSessionPersistence: false,
	}
	if systemPrompt == "" {
		agentConfig.Instructions = agentPrompt(r.now())
		agentConfig.ClientTools = llm.ClientTools(r.tools.Defs())
	}

	r.logger.Debug("creating agent",
		zap.String("model", model),
		zap.Float64("temperature", temperature),
		zap.Int("client_tools", len(agentConfig.ClientTools)),
	)

	return runWorker(ctx, r.logger, "create_agent", func(ctx context.Context) (AgentSession, error) {
		agentID, err := r.client.CreateAgent(ctx, agentConfig)
		if err != nil {
			return AgentSession{}, err
		}

		sessionID, err := r.client.CreateSession(ctx, agentID, sessionNamePrefix+uuid.NewString())
		if err != nil {
			return AgentSession{}, fmt.Errorf("agent %s: %w", agentID, err)
		}

		r.logger.Info("agent session created",
			zap.String("agent_id", agentID),
			zap.String("session_id", sessionID),
		)
		return AgentSession{AgentID: agentID, SessionID: sessionID}, nil
	})
}

// InferWithAgent runs one agent turn over history. All output goes to cb;
// the returned text is always empty.
func (r *Remote) InferWithAgent(ctx context.Context, session AgentSession, history []conversation.Turn, cb dispatch.Callback) (string, error) {
	if err := r.Ready(); err != nil {
		return "", err
	}

	messages := r.translator.ForAgent(history)

	return runWorker(ctx, r.logger, "agent_turn", func(ctx context.Context) (string, error) {
		stream, err := r.client.CreateTurnStream(ctx, session.AgentID, session.SessionID, messages)
		if err != nil {
			return "", err
		}
		return r.dispatcher.Agent(ctx, stream, cb)
	})
}

func (r *Remote) model(model string) string {
	if model == "" {
		return r.cfg.Inference.DefaultModel
	}
	return model
}
