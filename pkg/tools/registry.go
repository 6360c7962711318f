// Package tools holds the functions the model may call and dispatches the
// tool calls it produces.
package tools

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/papercomputeco/stackchat/pkg/llm"
)

var (
	// ErrUnknownFunction is returned when a tool call names an unregistered function.
	ErrUnknownFunction = errors.New("unknown function")

	// ErrMissingParameter is returned when a tool call omits a required parameter.
	ErrMissingParameter = errors.New("missing required parameter")
)

// Handler executes a tool call with its decoded arguments and returns a text result.
type Handler func(ctx context.Context, args map[string]any) (string, error)

// Function is a callable tool and its definition.
type Function struct {
	Def  llm.ToolDef
	Call Handler
}

// Registry keeps functions by name, in registration order. It is safe for
// concurrent use.
type Registry struct {
	mu     sync.RWMutex
	order  []string
	funcs  map[string]Function
	logger *zap.Logger
}

// NewRegistry creates an empty Registry.
func NewRegistry(logger *zap.Logger) *Registry {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Registry{
		funcs:  make(map[string]Function),
		logger: logger,
	}
}

// Register adds fn. Names must be non-empty and unique.
func (r *Registry) Register(fn Function) error {
	name := fn.Def.ToolName
	if name == "" {
		return errors.New("tool name is required")
	}
	if fn.Call == nil {
		return fmt.Errorf("tool %s: handler is required", name)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.funcs[name]; exists {
		return fmt.Errorf("tool %s already registered", name)
	}
	r.funcs[name] = fn
	r.order = append(r.order, name)
	return nil
}

// Get returns the function registered under name.
func (r *Registry) Get(name string) (Function, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	fn, ok := r.funcs[name]
	return fn, ok
}

// Defs returns the definitions of all registered functions in registration order.
func (r *Registry) Defs() []llm.ToolDef {
	r.mu.RLock()
	defer r.mu.RUnlock()

	defs := make([]llm.ToolDef, 0, len(r.order))
	for _, name := range r.order {
		defs = append(defs, r.funcs[name].Def)
	}
	return defs
}

// Signatures renders the registered definitions as indented JSON, for
// embedding into a system prompt.
func (r *Registry) Signatures() string {
	data, err := json.MarshalIndent(r.Defs(), "", "  ")
	if err != nil {
		// ToolDef only holds strings, bools and maps of them
		panic("failed to marshal tool definitions: " + err.Error())
	}
	return string(data)
}

// Dispatch runs calls in order and joins their results with newlines. It
// stops at the first failing call.
func (r *Registry) Dispatch(ctx context.Context, calls []llm.ToolCall) (string, error) {
	results := make([]string, 0, len(calls))
	for _, call := range calls {
		result, err := r.call(ctx, call)
		if err != nil {
			r.logger.Error("tool call failed",
				zap.String("tool", call.ToolName),
				zap.String("call_id", call.CallID),
				zap.Error(err),
			)
			return "", fmt.Errorf("tool %s: %w", call.ToolName, err)
		}
		results = append(results, result)
	}
	return strings.Join(results, "\n"), nil
}

func (r *Registry) call(ctx context.Context, call llm.ToolCall) (string, error) {
	r.logger.Info("executing tool call", zap.String("tool", call.ToolName))

	fn, ok := r.Get(call.ToolName)
	if !ok {
		return "", ErrUnknownFunction
	}

	for name, param := range fn.Def.Parameters {
		if !param.Required {
			continue
		}
		if v, ok := call.Arguments[name]; !ok || v == nil {
			return "", fmt.Errorf("%w: %s", ErrMissingParameter, name)
		}
	}

	args := call.Arguments
	if args == nil {
		args = map[string]any{}
	}
	return fn.Call(ctx, args)
}
