package agentcmder

import (
	"bytes"
	"os"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/stackchat/cmd/stackchat/setup"
	"github.com/papercomputeco/stackchat/pkg/client/clienttest"
	"github.com/papercomputeco/stackchat/pkg/llm"
)

var _ = Describe("Agent Command", func() {
	var (
		remote *clienttest.Server
		flags  *setup.Flags
		out    *bytes.Buffer
	)

	BeforeEach(func() {
		remote = clienttest.NewServer()
		DeferCleanup(remote.Close)

		path := filepath.Join(GinkgoT().TempDir(), "config.toml")
		Expect(os.WriteFile(path, nil, 0o600)).To(Succeed())

		flags = &setup.Flags{
			ConfigPath: path,
			URL:        remote.URL,
			Getenv:     func(string) string { return "" },
		}
		out = &bytes.Buffer{}
	})

	execute := func(args ...string) error {
		cmd := NewAgentCmd(flags)
		cmd.SetOut(out)
		cmd.SetErr(&bytes.Buffer{})
		cmd.SetArgs(args)
		return cmd.Execute()
	}

	It("creates an agent and streams one turn", func() {
		remote.TurnEvents = []llm.AgentStreamChunk{
			clienttest.TurnEvent(llm.TurnStart),
			clienttest.StepText("Booked"),
			clienttest.StepText(" it."),
			clienttest.TurnEvent(llm.TurnComplete),
		}

		Expect(execute("book", "the", "dentist")).To(Succeed())
		Expect(out.String()).To(Equal("Booked it.\n"))

		_, ok := remote.LastRequest("/v1/agents")
		Expect(ok).To(BeTrue())
		req, ok := remote.LastRequest("/v1/agents/agent-1/session/session-1/turn")
		Expect(ok).To(BeTrue())

		var turn llm.TurnCreateRequest
		Expect(req.Decode(&turn)).To(Succeed())
		Expect(turn.Messages).To(HaveLen(1))
		Expect(turn.Messages[0].Content.String()).To(Equal("book the dentist"))
	})

	It("stops when the agent cannot be created", func() {
		remote.FailStatus = 500

		Expect(execute("hi")).To(HaveOccurred())
		_, ok := remote.LastRequest("/v1/agents/agent-1/session/session-1/turn")
		Expect(ok).To(BeFalse())
	})
})
