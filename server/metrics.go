package server

import (
	"expvar"

	"github.com/gofiber/adaptor/v2"
	"github.com/gofiber/fiber/v2"
)

// Counters published under "stackchat" on /debug/vars.
const (
	metricChatRequests    = "chat_requests"
	metricAgentsCreated   = "agents_created"
	metricAgentTurns      = "agent_turns"
	metricInferenceErrors = "inference_errors"
	metricBadRequests     = "bad_requests"
)

var metrics = expvar.NewMap("stackchat")

func countMetric(name string) {
	metrics.Add(name, 1)
}

// registerDebugRoutes mounts the expvar handler.
func registerDebugRoutes(app *fiber.App) {
	app.Get("/debug/vars", adaptor.HTTPHandler(expvar.Handler()))
}
