package llm_test

import (
	"encoding/json"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/stackchat/pkg/llm"
)

var _ = Describe("Message encoding", func() {
	It("encodes plain text content as a string", func() {
		data, err := json.Marshal(llm.UserMessage("hello"))
		Expect(err).NotTo(HaveOccurred())
		Expect(data).To(MatchJSON(`{"role":"user","content":"hello"}`))
	})

	It("encodes image content as a single image item", func() {
		data, err := json.Marshal(llm.UserImageMessage("data:image/png;base64,AAAA"))
		Expect(err).NotTo(HaveOccurred())
		Expect(data).To(MatchJSON(`{
			"role": "user",
			"content": {"type": "image", "image": {"url": {"uri": "data:image/png;base64,AAAA"}}}
		}`))
	})

	It("always includes stop reason and tool calls on completion messages", func() {
		data, err := json.Marshal(llm.Message{Role: llm.RoleAssistant, Content: llm.TextContent("earlier answer")})
		Expect(err).NotTo(HaveOccurred())
		Expect(data).To(MatchJSON(`{
			"role": "assistant",
			"content": "earlier answer",
			"stop_reason": "end_of_message",
			"tool_calls": []
		}`))
	})

	It("always includes call id and tool name on tool responses", func() {
		data, err := json.Marshal(llm.ToolResponseMessage("", "", "previous reply"))
		Expect(err).NotTo(HaveOccurred())
		Expect(data).To(MatchJSON(`{"role":"tool","call_id":"","tool_name":"","content":"previous reply"}`))
	})

	It("decodes completion messages with tool calls", func() {
		var msg llm.Message
		err := json.Unmarshal([]byte(`{
			"role": "assistant",
			"content": "",
			"stop_reason": "end_of_turn",
			"tool_calls": [{"call_id": "c1", "tool_name": "create_calendar_event", "arguments": {"title": "Dentist"}}]
		}`), &msg)
		Expect(err).NotTo(HaveOccurred())
		Expect(msg.Role).To(Equal(llm.RoleAssistant))
		Expect(msg.StopReason).To(Equal(llm.StopEndOfTurn))
		Expect(msg.ToolCalls).To(HaveLen(1))
		Expect(msg.ToolCalls[0].Arguments).To(HaveKeyWithValue("title", "Dentist"))
	})
})

var _ = Describe("Content decoding", func() {
	It("accepts a list of items", func() {
		var c llm.Content
		Expect(json.Unmarshal([]byte(`[{"type":"text","text":"a"},{"type":"text","text":"b"}]`), &c)).To(Succeed())
		Expect(c.Items).To(HaveLen(2))
		Expect(c.String()).To(Equal("ab"))
		Expect(c.IsImage()).To(BeFalse())
	})

	It("treats null as empty content", func() {
		var c llm.Content
		Expect(json.Unmarshal([]byte(`null`), &c)).To(Succeed())
		Expect(c.String()).To(BeEmpty())
	})

	It("rejects numbers", func() {
		var c llm.Content
		Expect(json.Unmarshal([]byte(`42`), &c)).NotTo(Succeed())
	})
})

var _ = Describe("Agent client tools", func() {
	It("encodes parameters as a named list", func() {
		def := llm.ToolDef{
			ToolName:    "create_calendar_event",
			Description: "Create a new calendar event.",
			Parameters: map[string]llm.ToolParamDef{
				"title":    {ParamType: "string", Description: "Title of the event.", Required: true},
				"duration": {ParamType: "string", Description: "Duration of the event."},
			},
		}

		data, err := json.Marshal(llm.AgentConfig{ClientTools: llm.ClientTools([]llm.ToolDef{def})})
		Expect(err).NotTo(HaveOccurred())

		var decoded struct {
			ClientTools json.RawMessage `json:"client_tools"`
		}
		Expect(json.Unmarshal(data, &decoded)).To(Succeed())
		Expect(decoded.ClientTools).To(MatchJSON(`[{
			"name": "create_calendar_event",
			"description": "Create a new calendar event.",
			"parameters": [
				{"name": "duration", "parameter_type": "string", "description": "Duration of the event.", "required": false},
				{"name": "title", "parameter_type": "string", "description": "Title of the event.", "required": true}
			]
		}]`))
	})

	It("keeps an empty parameter list", func() {
		tool := llm.ClientTool(llm.ToolDef{ToolName: "ping"})
		data, err := json.Marshal(tool)
		Expect(err).NotTo(HaveOccurred())
		Expect(data).To(MatchJSON(`{"name":"ping","description":"","parameters":[]}`))
	})
})
