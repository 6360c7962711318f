// Package server provides the HTTP front-end that UI clients use to run chat
// completions and agent turns, streaming callback output back as NDJSON.
package server

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/papercomputeco/stackchat/pkg/conversation"
	"github.com/papercomputeco/stackchat/pkg/dispatch"
	"github.com/papercomputeco/stackchat/pkg/inference"
	"github.com/papercomputeco/stackchat/pkg/llm"
)

const headerRequestID = "X-Request-Id"

// Inferer runs inference on behalf of the server. *inference.Remote
// implements it.
type Inferer interface {
	InferWithoutAgent(ctx context.Context, model string, temperature float64, history []conversation.Turn, systemPrompt string, cb dispatch.Callback, opts ...inference.InferOption) (string, error)
	CreateAgent(ctx context.Context, model string, temperature float64, systemPrompt string) (inference.AgentSession, error)
	InferWithAgent(ctx context.Context, session inference.AgentSession, history []conversation.Turn, cb dispatch.Callback) (string, error)
}

// Server is the HTTP front-end. It holds no conversation state: every
// request carries the full history.
type Server struct {
	config Config
	remote Inferer
	logger *zap.Logger
	server *fiber.App
}

// New creates a new Server.
func New(config Config, remote Inferer, logger *zap.Logger) (*Server, error) {
	if remote == nil {
		return nil, errors.New("server needs an inferer")
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	app := fiber.New(fiber.Config{
		// Disable startup message for cleaner logs
		DisableStartupMessage: true,
	})

	s := &Server{
		config: config,
		remote: remote,
		logger: logger,
		server: app,
	}

	app.Use(s.requestID)

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(map[string]string{"status": "ok"})
	})

	app.Post("/api/chat", s.handleChat)
	app.Post("/api/agents", s.handleCreateAgent)
	app.Post("/api/agents/:agent_id/sessions/:session_id/turns", s.handleTurn)

	registerDebugRoutes(app)

	return s, nil
}

// App returns the underlying fiber app.
func (s *Server) App() *fiber.App {
	return s.server
}

// Run starts the server on the configured listening address.
func (s *Server) Run() error {
	s.logger.Info("starting server", zap.String("listen", s.config.ListenAddr))
	return s.server.Listen(s.config.ListenAddr)
}

// Shutdown stops the server, waiting for open requests until ctx is done.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.server.ShutdownWithContext(ctx)
}

func (s *Server) requestID(c *fiber.Ctx) error {
	id := c.Get(headerRequestID)
	if id == "" {
		id = uuid.NewString()
	}
	c.Set(headerRequestID, id)
	c.Locals(headerRequestID, id)
	return c.Next()
}

func (s *Server) requestLogger(c *fiber.Ctx) *zap.Logger {
	id, _ := c.Locals(headerRequestID).(string)
	return s.logger.With(zap.String("request_id", id))
}

// handleChat runs a plain chat completion over the posted history.
func (s *Server) handleChat(c *fiber.Ctx) error {
	logger := s.requestLogger(c)

	var req ChatRequest
	if err := json.Unmarshal(c.Body(), &req); err != nil {
		logger.Error("failed to parse request", zap.Error(err))
		countMetric(metricBadRequests)
		return c.Status(fiber.StatusBadRequest).JSON(llm.ErrorResponse{Error: "invalid request body"})
	}
	if len(req.History) == 0 {
		countMetric(metricBadRequests)
		return c.Status(fiber.StatusBadRequest).JSON(llm.ErrorResponse{Error: "history is required"})
	}

	model := s.model(req.Model)
	temperature := s.temperature(req.Temperature)
	history := toTurns(req.History)
	streaming := req.Stream == nil || *req.Stream
	countMetric(metricChatRequests)

	logger.Debug("received chat request",
		zap.String("model", model),
		zap.Int("history_length", len(history)),
		zap.Bool("stream", streaming),
	)

	if !streaming {
		result, err := s.remote.InferWithoutAgent(c.UserContext(), model, temperature, history, req.SystemPrompt, nil, inference.WithoutStreaming())
		if err != nil {
			countMetric(metricInferenceErrors)
			logger.Error("chat inference failed", zap.Error(err))
			return c.Status(fiber.StatusBadGateway).JSON(llm.ErrorResponse{Error: err.Error()})
		}
		return c.JSON(ChatResponse{Result: result})
	}

	return s.stream(c, logger, func(ctx context.Context, cb dispatch.Callback) (string, error) {
		return s.remote.InferWithoutAgent(ctx, model, temperature, history, req.SystemPrompt, cb)
	})
}

// handleCreateAgent creates an agent and a session for it.
func (s *Server) handleCreateAgent(c *fiber.Ctx) error {
	logger := s.requestLogger(c)

	var req AgentRequest
	if len(c.Body()) > 0 {
		if err := json.Unmarshal(c.Body(), &req); err != nil {
			logger.Error("failed to parse request", zap.Error(err))
			countMetric(metricBadRequests)
			return c.Status(fiber.StatusBadRequest).JSON(llm.ErrorResponse{Error: "invalid request body"})
		}
	}

	session, err := s.remote.CreateAgent(c.UserContext(), s.model(req.Model), s.temperature(req.Temperature), req.SystemPrompt)
	if err != nil {
		countMetric(metricInferenceErrors)
		logger.Error("agent creation failed", zap.Error(err))
		return c.Status(fiber.StatusBadGateway).JSON(llm.ErrorResponse{Error: err.Error()})
	}

	countMetric(metricAgentsCreated)
	return c.Status(fiber.StatusCreated).JSON(session)
}

// handleTurn runs one agent turn in an existing session.
func (s *Server) handleTurn(c *fiber.Ctx) error {
	logger := s.requestLogger(c)

	session := inference.AgentSession{
		AgentID:   c.Params("agent_id"),
		SessionID: c.Params("session_id"),
	}

	var req TurnRequest
	if err := json.Unmarshal(c.Body(), &req); err != nil {
		logger.Error("failed to parse request", zap.Error(err))
		countMetric(metricBadRequests)
		return c.Status(fiber.StatusBadRequest).JSON(llm.ErrorResponse{Error: "invalid request body"})
	}
	if len(req.History) == 0 {
		countMetric(metricBadRequests)
		return c.Status(fiber.StatusBadRequest).JSON(llm.ErrorResponse{Error: "history is required"})
	}

	history := toTurns(req.History)
	countMetric(metricAgentTurns)
	logger.Debug("received turn request",
		zap.String("agent_id", session.AgentID),
		zap.String("session_id", session.SessionID),
		zap.Int("history_length", len(history)),
	)

	return s.stream(c, logger, func(ctx context.Context, cb dispatch.Callback) (string, error) {
		return s.remote.InferWithAgent(ctx, session, history, cb)
	})
}

// stream runs infer inside the response body writer, so every callback
// chunk reaches the client as soon as it is produced. The fiber context is
// not valid inside the writer; infer gets its own context that is cancelled
// when the client goes away.
func (s *Server) stream(c *fiber.Ctx, logger *zap.Logger, infer func(context.Context, dispatch.Callback) (string, error)) error {
	c.Set("Content-Type", "application/x-ndjson")
	c.Set("Transfer-Encoding", "chunked")

	c.Context().SetBodyStreamWriter(fasthttp.StreamWriter(func(w *bufio.Writer) {
		startTime := time.Now()
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		out := &lineWriter{w: w, cancel: cancel, logger: logger}
		result, err := infer(ctx, out)
		out.finish(result, err)

		if err != nil {
			countMetric(metricInferenceErrors)
			logger.Error("streamed inference failed", zap.Error(err), zap.Duration("duration", time.Since(startTime)))
			return
		}
		logger.Debug("streaming complete", zap.Duration("duration", time.Since(startTime)))
	}))

	return nil
}

func (s *Server) model(model string) string {
	if model == "" {
		return s.config.DefaultModel
	}
	return model
}

func (s *Server) temperature(temperature *float64) float64 {
	if temperature == nil {
		return s.config.DefaultTemperature
	}
	return *temperature
}
