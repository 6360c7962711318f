package mcpcmder

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/spf13/cobra"

	"github.com/papercomputeco/stackchat/cmd/stackchat/setup"
	"github.com/papercomputeco/stackchat/pkg/tools"
)

const mcpLongDesc string = `Serve the built-in tools over the Model Context Protocol on stdio.

The same functions the model can call during chat and agent turns become
available to any MCP client. Logs go to stderr so stdout stays a clean
protocol stream.

Examples:
  stackchat mcp`

const mcpShortDesc string = "Serve the built-in tools over MCP"

type mcpCommander struct {
	flags *setup.Flags
}

func NewMCPCmd(flags *setup.Flags, version string) *cobra.Command {
	cmder := &mcpCommander{flags: flags}

	return &cobra.Command{
		Use:   "mcp",
		Short: mcpShortDesc,
		Long:  mcpLongDesc,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmder.run(cmd.Context(), version)
		},
	}
}

func (c *mcpCommander) run(ctx context.Context, version string) error {
	env, err := c.flags.Setup()
	if err != nil {
		return err
	}
	defer env.Logger.Sync()

	env.Logger.Info("serving tools over MCP")
	return tools.NewMCPServer(env.Tools, version).Run(ctx, &mcp.StdioTransport{})
}
