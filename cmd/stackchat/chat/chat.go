package chatcmder

import (
	"context"
	"strings"

	"github.com/spf13/cobra"

	"github.com/papercomputeco/stackchat/cmd/stackchat/printer"
	"github.com/papercomputeco/stackchat/cmd/stackchat/setup"
	"github.com/papercomputeco/stackchat/pkg/inference"
)

const chatLongDesc string = `Send a prompt to the remote chat completion endpoint.

Without --system the default tool calling prompt is used, and tool calls the
model makes are run locally. Output is streamed as it arrives unless
--no-stream is given.

Examples:
  stackchat chat "What is the capital of France?"
  stackchat chat --image receipt.png "How much did I spend?"
  stackchat chat --render --model meta-llama/Llama-3.2-3B-Instruct "Write a haiku"`

const chatShortDesc string = "Run a chat completion"

type chatCommander struct {
	flags *setup.Flags

	model        string
	temperature  float64
	systemPrompt string
	image        string
	noStream     bool
	render       bool
}

func NewChatCmd(flags *setup.Flags) *cobra.Command {
	cmder := &chatCommander{flags: flags}

	cmd := &cobra.Command{
		Use:   "chat <prompt>",
		Short: chatShortDesc,
		Long:  chatLongDesc,
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmder.run(cmd.Context(), cmd, strings.Join(args, " "))
		},
	}

	cmd.Flags().StringVarP(&cmder.model, "model", "m", "", "Model id (default from config)")
	cmd.Flags().Float64VarP(&cmder.temperature, "temperature", "t", 0, "Sampling temperature (default from config)")
	cmd.Flags().StringVarP(&cmder.systemPrompt, "system", "s", "", "System prompt (default: tool calling prompt)")
	cmd.Flags().StringVarP(&cmder.image, "image", "i", "", "Image file sent before the prompt")
	cmd.Flags().BoolVar(&cmder.noStream, "no-stream", false, "Wait for the whole completion")
	cmd.Flags().BoolVarP(&cmder.render, "render", "r", false, "Render the reply as markdown")

	return cmd
}

func (c *chatCommander) run(ctx context.Context, cmd *cobra.Command, prompt string) error {
	env, err := c.flags.Setup()
	if err != nil {
		return err
	}
	defer env.Logger.Sync()

	temperature := env.Config.Inference.Temperature
	if cmd.Flags().Changed("temperature") {
		temperature = c.temperature
	}

	var opts []inference.InferOption
	if c.noStream {
		opts = append(opts, inference.WithoutStreaming())
	}

	out := printer.New(cmd.OutOrStdout(), cmd.ErrOrStderr(), c.render)
	result, err := env.Remote.InferWithoutAgent(ctx, c.model, temperature, setup.History(prompt, c.image), c.systemPrompt, out, opts...)
	if err != nil {
		return err
	}
	return out.Finish(result)
}
