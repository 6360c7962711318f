package tools_test

import (
	"context"
	"encoding/json"
	"errors"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"go.uber.org/zap"

	"github.com/papercomputeco/stackchat/pkg/llm"
	"github.com/papercomputeco/stackchat/pkg/tools"
)

func echo(name string) tools.Function {
	return tools.Function{
		Def: llm.ToolDef{
			ToolName: name,
			Parameters: map[string]llm.ToolParamDef{
				"text": {ParamType: "string", Required: true},
			},
		},
		Call: func(_ context.Context, args map[string]any) (string, error) {
			return name + ": " + args["text"].(string), nil
		},
	}
}

var _ = Describe("Registry", func() {
	var (
		ctx      context.Context
		registry *tools.Registry
	)

	BeforeEach(func() {
		ctx = context.Background()
		registry = tools.NewRegistry(zap.NewNop())
	})

	Describe("Register", func() {
		It("keeps registration order", func() {
			Expect(registry.Register(echo("b"))).To(Succeed())
			Expect(registry.Register(echo("a"))).To(Succeed())

			defs := registry.Defs()
			Expect(defs).To(HaveLen(2))
			Expect(defs[0].ToolName).To(Equal("b"))
			Expect(defs[1].ToolName).To(Equal("a"))
		})

		It("rejects duplicates, empty names and missing handlers", func() {
			Expect(registry.Register(echo("a"))).To(Succeed())
			Expect(registry.Register(echo("a"))).NotTo(Succeed())
			Expect(registry.Register(echo(""))).NotTo(Succeed())
			Expect(registry.Register(tools.Function{Def: llm.ToolDef{ToolName: "x"}})).NotTo(Succeed())
		})
	})

	Describe("Signatures", func() {
		It("renders the definitions as JSON", func() {
			Expect(tools.RegisterBuiltins(registry)).To(Succeed())

			var defs []llm.ToolDef
			Expect(json.Unmarshal([]byte(registry.Signatures()), &defs)).To(Succeed())
			Expect(defs).To(HaveLen(1))
			Expect(defs[0].ToolName).To(Equal(tools.CalendarEventTool))
			Expect(defs[0].Parameters).To(HaveKey("start_date"))
		})

		It("renders an empty list for an empty registry", func() {
			Expect(registry.Signatures()).To(Equal("[]"))
		})
	})

	Describe("Dispatch", func() {
		BeforeEach(func() {
			Expect(registry.Register(echo("first"))).To(Succeed())
			Expect(registry.Register(echo("second"))).To(Succeed())
		})

		It("runs calls in order and joins the results", func() {
			result, err := registry.Dispatch(ctx, []llm.ToolCall{
				{CallID: "1", ToolName: "second", Arguments: map[string]any{"text": "b"}},
				{CallID: "2", ToolName: "first", Arguments: map[string]any{"text": "a"}},
			})
			Expect(err).NotTo(HaveOccurred())
			Expect(result).To(Equal("second: b\nfirst: a"))
		})

		It("fails for unknown functions", func() {
			_, err := registry.Dispatch(ctx, []llm.ToolCall{{ToolName: "nope"}})
			Expect(errors.Is(err, tools.ErrUnknownFunction)).To(BeTrue())
		})

		It("fails when a required parameter is missing", func() {
			_, err := registry.Dispatch(ctx, []llm.ToolCall{{ToolName: "first", Arguments: map[string]any{}}})
			Expect(errors.Is(err, tools.ErrMissingParameter)).To(BeTrue())
			Expect(err.Error()).To(ContainSubstring("text"))
		})
	})
})

var _ = Describe("CalendarEvent", func() {
	var registry *tools.Registry

	BeforeEach(func() {
		registry = tools.NewRegistry(nil)
		Expect(tools.RegisterBuiltins(registry)).To(Succeed())
	})

	It("confirms a valid event", func() {
		result, err := registry.Dispatch(context.Background(), []llm.ToolCall{{
			ToolName: tools.CalendarEventTool,
			Arguments: map[string]any{
				"title":      "Dentist",
				"start_date": "2026-10-20",
				"time":       "14:30",
				"duration":   "1:00",
				"location":   "Main St",
			},
		}})
		Expect(err).NotTo(HaveOccurred())
		Expect(result).To(Equal(`Created calendar event "Dentist" on 2026-10-20 at 14:30 for 1:00 at Main St`))
	})

	It("rejects malformed dates", func() {
		_, err := registry.Dispatch(context.Background(), []llm.ToolCall{{
			ToolName: tools.CalendarEventTool,
			Arguments: map[string]any{
				"title":      "Dentist",
				"start_date": "next tuesday",
				"time":       "14:30",
			},
		}})
		Expect(err).To(MatchError(ContainSubstring("invalid start")))
	})
})
