package agentcmder

import (
	"context"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/papercomputeco/stackchat/cmd/stackchat/printer"
	"github.com/papercomputeco/stackchat/cmd/stackchat/setup"
)

const agentLongDesc string = `Create an agent and a session on the remote service and run one turn.

Without --system the agent gets the default instruction and the built-in
tools as client tools; their calls are run locally.

Examples:
  stackchat agent "Book a dentist appointment next Tuesday at 2pm"
  stackchat agent --image fridge.jpg "What can I cook with this?"`

const agentShortDesc string = "Run an agent turn"

type agentCommander struct {
	flags *setup.Flags

	model        string
	systemPrompt string
	image        string
}

func NewAgentCmd(flags *setup.Flags) *cobra.Command {
	cmder := &agentCommander{flags: flags}

	cmd := &cobra.Command{
		Use:   "agent <prompt>",
		Short: agentShortDesc,
		Long:  agentLongDesc,
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmder.run(cmd.Context(), cmd, strings.Join(args, " "))
		},
	}

	cmd.Flags().StringVarP(&cmder.model, "model", "m", "", "Model id (default from config)")
	cmd.Flags().StringVarP(&cmder.systemPrompt, "system", "s", "", "Agent instruction (default: tool calling instruction)")
	cmd.Flags().StringVarP(&cmder.image, "image", "i", "", "Image file sent before the prompt")

	return cmd
}

func (c *agentCommander) run(ctx context.Context, cmd *cobra.Command, prompt string) error {
	env, err := c.flags.Setup()
	if err != nil {
		return err
	}
	defer env.Logger.Sync()

	out := printer.New(cmd.OutOrStdout(), cmd.ErrOrStderr(), false)

	session, err := env.Remote.CreateAgent(ctx, c.model, env.Config.Inference.Temperature, c.systemPrompt)
	if err != nil {
		return err
	}
	env.Logger.Debug("running agent turn",
		zap.String("agent_id", session.AgentID),
		zap.String("session_id", session.SessionID),
	)

	result, err := env.Remote.InferWithAgent(ctx, session, setup.History(prompt, c.image), out)
	if err != nil {
		return err
	}
	return out.Finish(result)
}
