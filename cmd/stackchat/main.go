package main

import (
	"os"

	"github.com/spf13/cobra"

	agentcmder "github.com/papercomputeco/stackchat/cmd/stackchat/agent"
	chatcmder "github.com/papercomputeco/stackchat/cmd/stackchat/chat"
	mcpcmder "github.com/papercomputeco/stackchat/cmd/stackchat/mcp"
	"github.com/papercomputeco/stackchat/cmd/stackchat/printer"
	servecmder "github.com/papercomputeco/stackchat/cmd/stackchat/serve"
	"github.com/papercomputeco/stackchat/cmd/stackchat/setup"
)

// version is overridden at build time with -ldflags "-X main.version=...".
var version = "dev"

const rootLongDesc string = `stackchat talks to a Llama Stack compatible inference service.

It runs plain chat completions and agent turns, executes the tool calls the
model makes locally, and can serve both to UI clients over HTTP.

Configuration is read from --config, or from the per-user config file when
it exists. STACKCHAT_REMOTE_URL and STACKCHAT_DEBUG override the file.`

func newRootCmd() *cobra.Command {
	flags := &setup.Flags{}

	cmd := &cobra.Command{
		Use:           "stackchat",
		Short:         "Chat with a remote Llama Stack inference service",
		Long:          rootLongDesc,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVarP(&flags.ConfigPath, "config", "c", "", "Path to a TOML config file")
	cmd.PersistentFlags().BoolVar(&flags.Debug, "debug", false, "Enable debug logging")
	cmd.PersistentFlags().StringVar(&flags.URL, "url", "", "Remote inference service URL")

	cmd.AddCommand(chatcmder.NewChatCmd(flags))
	cmd.AddCommand(agentcmder.NewAgentCmd(flags))
	cmd.AddCommand(servecmder.NewServeCmd(flags))
	cmd.AddCommand(mcpcmder.NewMCPCmd(flags, version))

	return cmd
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		printer.New(os.Stdout, os.Stderr, false).Error(err)
		os.Exit(1)
	}
}
