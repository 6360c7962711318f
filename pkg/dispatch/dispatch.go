// Package dispatch consumes streamed chat completion and agent turn events
// and forwards their output to a caller supplied callback, one event at a
// time and in arrival order.
package dispatch

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/papercomputeco/stackchat/pkg/client"
	"github.com/papercomputeco/stackchat/pkg/llm"
)

// EmptyToolCallMessage is forwarded when the server reports a tool call it
// could not parse.
const EmptyToolCallMessage = "Empty tool call. File a bug"

// ErrNoToolDispatcher is returned when a stream carries tool calls but the
// Dispatcher has nothing to run them with.
var ErrNoToolDispatcher = errors.New("no tool dispatcher configured")

// Callback receives streamed output. Methods are called synchronously from
// the goroutine consuming the stream, and never after the context passed to
// the Dispatcher is done.
type Callback interface {
	// OnStreamReceived receives a chunk of text.
	OnStreamReceived(chunk string)

	// OnStatStreamReceived receives the throughput of a finished stream in
	// chunks per second.
	OnStatStreamReceived(tps float32)
}

// ToolDispatcher executes tool calls and returns their text result.
type ToolDispatcher interface {
	Dispatch(ctx context.Context, calls []llm.ToolCall) (string, error)
}

// Dispatcher forwards stream events to callbacks.
type Dispatcher struct {
	tools  ToolDispatcher
	logger *zap.Logger
	now    func() time.Time
}

// New creates a Dispatcher running tool calls with tools.
func New(tools ToolDispatcher, logger *zap.Logger) *Dispatcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Dispatcher{tools: tools, logger: logger, now: time.Now}
}

// Chat consumes a plain chat completion stream. Tool calls are dispatched as
// soon as they arrive and their result is forwarded after a newline; text is
// forwarded until the model stops at end of turn. It returns everything that
// was forwarded. The stream is always closed.
func (d *Dispatcher) Chat(ctx context.Context, stream *client.Stream[llm.ChatStreamChunk], cb Callback) (string, error) {
	defer stream.Close()

	out := newOutput(ctx, cb, d.now)
	for stream.Next() {
		if err := ctx.Err(); err != nil {
			return out.String(), err
		}

		event := stream.Current().Event
		delta := event.Delta

		if delta.IsToolCall() {
			switch {
			case delta.ToolCall != nil:
				result, err := d.dispatchTools(ctx, []llm.ToolCall{*delta.ToolCall})
				if err != nil {
					return out.String(), err
				}
				out.forward("\n" + result)
			case delta.ParseStatus == llm.ParseStarted || delta.ParseStatus == llm.ParseInProgress:
				// Partial tool call text, the parsed call follows.
			default:
				d.logger.Warn("tool call delta without a parsed call", zap.String("parse_status", delta.ParseStatus))
				out.forward("\n" + EmptyToolCallMessage)
			}
			continue
		}

		if event.StopReason != llm.StopEndOfTurn && delta.IsText() && delta.Text != "" {
			out.forward(delta.Text)
		}
	}

	if err := stream.Err(); err != nil {
		return out.String(), fmt.Errorf("read chat stream: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return out.String(), err
	}

	out.reportThroughput()
	d.logger.Debug("chat stream complete", zap.Int("chunks", out.chunks))
	return out.String(), nil
}

// Agent consumes an agent turn stream. Only step progress text and tool calls
// from completed inference steps reach the callback. It always returns an
// empty string: all output goes through cb. The stream is always closed.
func (d *Dispatcher) Agent(ctx context.Context, stream *client.Stream[llm.AgentStreamChunk], cb Callback) (string, error) {
	defer stream.Close()

	out := newOutput(ctx, cb, d.now)
	for stream.Next() {
		if err := ctx.Err(); err != nil {
			return "", err
		}

		payload := stream.Current().Event.Payload
		switch payload.EventType {
		case llm.StepProgress:
			if payload.Delta != nil && payload.Delta.IsText() && payload.Delta.Text != "" {
				out.forward(payload.Delta.Text)
			}

		case llm.StepComplete:
			calls := payload.StepDetails.ToolCalls()
			if len(calls) == 0 {
				continue
			}
			result, err := d.dispatchTools(ctx, calls)
			if err != nil {
				return "", err
			}
			out.forward(result)

		case llm.TurnStart, llm.StepStart, llm.TurnComplete:

		default:
			d.logger.Debug("ignoring agent event", zap.String("event_type", string(payload.EventType)))
		}
	}

	if err := stream.Err(); err != nil {
		return "", fmt.Errorf("read agent stream: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}

	out.reportThroughput()
	d.logger.Debug("agent stream complete", zap.Int("chunks", out.chunks))
	return "", nil
}

func (d *Dispatcher) dispatchTools(ctx context.Context, calls []llm.ToolCall) (string, error) {
	if d.tools == nil {
		return "", ErrNoToolDispatcher
	}
	result, err := d.tools.Dispatch(ctx, calls)
	if err != nil {
		return "", fmt.Errorf("dispatch tool calls: %w", err)
	}
	return result, nil
}

// output forwards chunks to a callback while keeping the aggregate text and
// the numbers needed for the throughput statistic. Once ctx is done nothing
// more reaches the callback: the caller has already been answered.
type output struct {
	ctx    context.Context
	cb     Callback
	now    func() time.Time
	start  time.Time
	chunks int
	text   strings.Builder
}

func newOutput(ctx context.Context, cb Callback, now func() time.Time) *output {
	return &output{ctx: ctx, cb: cb, now: now, start: now()}
}

func (o *output) forward(chunk string) {
	if o.ctx.Err() != nil {
		return
	}
	o.chunks++
	o.text.WriteString(chunk)
	if o.cb != nil {
		o.cb.OnStreamReceived(chunk)
	}
}

func (o *output) reportThroughput() {
	if o.cb == nil || o.chunks == 0 || o.ctx.Err() != nil {
		return
	}
	elapsed := max(o.now().Sub(o.start), time.Millisecond).Seconds()
	o.cb.OnStatStreamReceived(float32(float64(o.chunks) / elapsed))
}

func (o *output) String() string {
	return o.text.String()
}
