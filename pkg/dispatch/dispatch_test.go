package dispatch_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"strings"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/stackchat/pkg/client"
	"github.com/papercomputeco/stackchat/pkg/client/clienttest"
	"github.com/papercomputeco/stackchat/pkg/dispatch"
	"github.com/papercomputeco/stackchat/pkg/llm"
)

// trackingBody records whether the stream closed its body.
type trackingBody struct {
	io.Reader
	closed bool
}

func (b *trackingBody) Close() error {
	b.closed = true
	return nil
}

func sseBody[T any](events ...T) *trackingBody {
	var b strings.Builder
	for _, event := range events {
		data, err := json.Marshal(event)
		Expect(err).NotTo(HaveOccurred())
		b.WriteString("data: ")
		b.Write(data)
		b.WriteString("\n\n")
	}
	return &trackingBody{Reader: strings.NewReader(b.String())}
}

// fakeTools records dispatched calls and answers with a fixed result.
type fakeTools struct {
	calls  [][]llm.ToolCall
	result string
	err    error

	// onDispatch runs before the result is returned.
	onDispatch func()
}

func (f *fakeTools) Dispatch(_ context.Context, calls []llm.ToolCall) (string, error) {
	f.calls = append(f.calls, calls)
	if f.onDispatch != nil {
		f.onDispatch()
	}
	return f.result, f.err
}

var calendarCall = llm.ToolCall{
	CallID:    "call-1",
	ToolName:  "create_calendar_event",
	Arguments: map[string]any{"title": "Dentist"},
}

var _ = Describe("Dispatcher", func() {
	var (
		tools      *fakeTools
		dispatcher *dispatch.Dispatcher
		recorder   *dispatch.Recorder
		ctx        context.Context
	)

	BeforeEach(func() {
		tools = &fakeTools{result: "Created calendar event"}
		dispatcher = dispatch.New(tools, nil)
		recorder = &dispatch.Recorder{}
		ctx = context.Background()
	})

	Describe("Chat", func() {
		It("forwards text deltas in order and returns the aggregate", func() {
			body := sseBody(clienttest.ChatStart(), clienttest.ChatText("Hel"), clienttest.ChatText("lo"), clienttest.ChatEnd())

			text, err := dispatcher.Chat(ctx, client.NewStream[llm.ChatStreamChunk](body), recorder)
			Expect(err).NotTo(HaveOccurred())
			Expect(text).To(Equal("Hello"))
			Expect(recorder.Chunks).To(Equal([]string{"Hel", "lo"}))
			Expect(recorder.Stats).To(HaveLen(1))
			Expect(body.closed).To(BeTrue())
		})

		It("does not forward text once the model stops at end of turn", func() {
			end := clienttest.ChatEnd()
			end.Event.Delta.Text = "trailing"
			body := sseBody(clienttest.ChatText("Hi"), end)

			text, err := dispatcher.Chat(ctx, client.NewStream[llm.ChatStreamChunk](body), recorder)
			Expect(err).NotTo(HaveOccurred())
			Expect(text).To(Equal("Hi"))
		})

		It("dispatches parsed tool calls and forwards the result after a newline", func() {
			body := sseBody(clienttest.ChatText("Sure."), clienttest.ChatToolCall(calendarCall), clienttest.ChatEnd())

			text, err := dispatcher.Chat(ctx, client.NewStream[llm.ChatStreamChunk](body), recorder)
			Expect(err).NotTo(HaveOccurred())
			Expect(tools.calls).To(HaveLen(1))
			Expect(tools.calls[0]).To(HaveLen(1))
			Expect(tools.calls[0][0].ToolName).To(Equal("create_calendar_event"))
			Expect(recorder.Chunks).To(Equal([]string{"Sure.", "\nCreated calendar event"}))
			Expect(text).To(Equal("Sure.\nCreated calendar event"))
		})

		It("waits for partial tool calls and reports failed ones", func() {
			partial := llm.ChatStreamChunk{Event: llm.ChatStreamEvent{
				EventType: llm.ChatEventProgress,
				Delta:     llm.Delta{Type: llm.DeltaToolCall, ToolCallRaw: "[create_", ParseStatus: llm.ParseInProgress},
			}}
			failed := llm.ChatStreamChunk{Event: llm.ChatStreamEvent{
				EventType: llm.ChatEventProgress,
				Delta:     llm.Delta{Type: llm.DeltaToolCall, ParseStatus: llm.ParseFailed},
			}}
			body := sseBody(partial, failed, clienttest.ChatEnd())

			_, err := dispatcher.Chat(ctx, client.NewStream[llm.ChatStreamChunk](body), recorder)
			Expect(err).NotTo(HaveOccurred())
			Expect(tools.calls).To(BeEmpty())
			Expect(recorder.Chunks).To(Equal([]string{"\n" + dispatch.EmptyToolCallMessage}))
		})

		It("stops at the first tool error", func() {
			tools.err = errors.New("boom")
			body := sseBody(clienttest.ChatToolCall(calendarCall), clienttest.ChatText("never"))

			_, err := dispatcher.Chat(ctx, client.NewStream[llm.ChatStreamChunk](body), recorder)
			Expect(err).To(MatchError(ContainSubstring("boom")))
			Expect(recorder.Chunks).To(BeEmpty())
			Expect(recorder.Stats).To(BeEmpty())
			Expect(body.closed).To(BeTrue())
		})

		It("fails tool calls without a tool dispatcher", func() {
			dispatcher = dispatch.New(nil, nil)
			body := sseBody(clienttest.ChatToolCall(calendarCall))

			_, err := dispatcher.Chat(ctx, client.NewStream[llm.ChatStreamChunk](body), recorder)
			Expect(err).To(MatchError(dispatch.ErrNoToolDispatcher))
		})

		It("surfaces malformed events", func() {
			body := &trackingBody{Reader: strings.NewReader("data: {not json\n\n")}

			_, err := dispatcher.Chat(ctx, client.NewStream[llm.ChatStreamChunk](body), recorder)
			Expect(err).To(HaveOccurred())
			Expect(body.closed).To(BeTrue())
		})

		It("reports nothing for an empty stream", func() {
			body := sseBody[llm.ChatStreamChunk]()

			text, err := dispatcher.Chat(ctx, client.NewStream[llm.ChatStreamChunk](body), recorder)
			Expect(err).NotTo(HaveOccurred())
			Expect(text).To(BeEmpty())
			Expect(recorder.Chunks).To(BeEmpty())
			Expect(recorder.Stats).To(BeEmpty())
		})
	})

	Describe("Agent", func() {
		It("forwards only step progress text", func() {
			body := sseBody(
				clienttest.TurnEvent(llm.TurnStart),
				clienttest.TurnEvent(llm.StepStart),
				clienttest.StepText("Hi"),
				clienttest.StepText(" there"),
				clienttest.TurnEvent(llm.TurnComplete),
			)

			text, err := dispatcher.Agent(ctx, client.NewStream[llm.AgentStreamChunk](body), recorder)
			Expect(err).NotTo(HaveOccurred())
			Expect(text).To(BeEmpty())
			Expect(recorder.Chunks).To(Equal([]string{"Hi", " there"}))
			Expect(recorder.Stats).To(HaveLen(1))
			Expect(body.closed).To(BeTrue())
		})

		It("dispatches tool calls of completed inference steps", func() {
			body := sseBody(clienttest.StepToolCalls(calendarCall), clienttest.TurnEvent(llm.TurnComplete))

			_, err := dispatcher.Agent(ctx, client.NewStream[llm.AgentStreamChunk](body), recorder)
			Expect(err).NotTo(HaveOccurred())
			Expect(tools.calls).To(HaveLen(1))
			Expect(recorder.Chunks).To(Equal([]string{"Created calendar event"}))
		})

		It("ignores completed steps without tool calls", func() {
			step := clienttest.StepToolCalls()
			other := clienttest.StepToolCalls(calendarCall)
			other.Event.Payload.StepDetails.StepType = "tool_execution"
			body := sseBody(step, other)

			_, err := dispatcher.Agent(ctx, client.NewStream[llm.AgentStreamChunk](body), recorder)
			Expect(err).NotTo(HaveOccurred())
			Expect(tools.calls).To(BeEmpty())
			Expect(recorder.Chunks).To(BeEmpty())
		})

		It("returns tool errors", func() {
			tools.err = errors.New("boom")
			body := sseBody(clienttest.StepToolCalls(calendarCall))

			_, err := dispatcher.Agent(ctx, client.NewStream[llm.AgentStreamChunk](body), recorder)
			Expect(err).To(MatchError(ContainSubstring("boom")))
		})

		It("stops when the context is cancelled", func() {
			cancelled, cancel := context.WithCancel(ctx)
			cancel()
			body := sseBody(clienttest.StepText("Hi"))

			_, err := dispatcher.Agent(cancelled, client.NewStream[llm.AgentStreamChunk](body), recorder)
			Expect(err).To(MatchError(context.Canceled))
			Expect(recorder.Chunks).To(BeEmpty())
		})
	})

	Describe("after the caller gave up", func() {
		It("stops calling back in chat streams", func() {
			cancellable, cancel := context.WithCancel(ctx)
			defer cancel()
			tools.onDispatch = cancel
			body := sseBody(
				clienttest.ChatText("Sure."),
				clienttest.ChatToolCall(calendarCall),
				clienttest.ChatText("late"),
			)

			text, err := dispatcher.Chat(cancellable, client.NewStream[llm.ChatStreamChunk](body), recorder)
			Expect(err).To(MatchError(context.Canceled))
			Expect(text).To(Equal("Sure."))
			Expect(recorder.Chunks).To(Equal([]string{"Sure."}))
			Expect(recorder.Stats).To(BeEmpty())
			Expect(body.closed).To(BeTrue())
		})

		It("stops calling back when the agent turn ends with a tool call", func() {
			cancellable, cancel := context.WithCancel(ctx)
			defer cancel()
			tools.onDispatch = cancel
			body := sseBody(clienttest.StepText("Booking"), clienttest.StepToolCalls(calendarCall))

			_, err := dispatcher.Agent(cancellable, client.NewStream[llm.AgentStreamChunk](body), recorder)
			Expect(err).To(MatchError(context.Canceled))
			Expect(recorder.Chunks).To(Equal([]string{"Booking"}))
			Expect(recorder.Stats).To(BeEmpty())
		})
	})

	Describe("CallbackFuncs", func() {
		It("skips nil functions", func() {
			var got []string
			cb := dispatch.CallbackFuncs{Chunk: func(s string) { got = append(got, s) }}
			cb.OnStreamReceived("a")
			cb.OnStatStreamReceived(1)
			Expect(got).To(Equal([]string{"a"}))
		})
	})
})
