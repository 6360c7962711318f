package servecmder

import (
	"context"
	"errors"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/papercomputeco/stackchat/cmd/stackchat/setup"
	"github.com/papercomputeco/stackchat/pkg/config"
	"github.com/papercomputeco/stackchat/server"
)

const serveLongDesc string = `Run the HTTP front-end for UI clients.

Chat completions and agent turns are streamed back as NDJSON lines. When a
config file is in use, its model table is reloaded whenever the file changes.

Examples:
  stackchat serve
  stackchat serve --listen :9090 --url http://gpu-box:8321`

const serveShortDesc string = "Run the HTTP front-end"

const shutdownTimeout = 10 * time.Second

type serveCommander struct {
	flags  *setup.Flags
	listen string
}

func NewServeCmd(flags *setup.Flags) *cobra.Command {
	cmder := &serveCommander{flags: flags}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: serveShortDesc,
		Long:  serveLongDesc,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmder.run(cmd.Context())
		},
	}

	cmd.Flags().StringVarP(&cmder.listen, "listen", "l", "", "Address to listen on (default from config)")

	return cmd
}

func (c *serveCommander) run(ctx context.Context) error {
	env, err := c.flags.Setup()
	if err != nil {
		return err
	}
	defer env.Logger.Sync()

	if err := env.Remote.Ready(); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if env.ConfigPath != "" {
		if err := config.Watch(ctx, env.ConfigPath, env.Formats, env.Logger); err != nil {
			env.Logger.Warn("model table hot reload disabled", zap.Error(err))
		}
	}

	listen := env.Config.Server.Listen
	if c.listen != "" {
		listen = c.listen
	}

	srv, err := server.New(server.Config{
		ListenAddr:         listen,
		DefaultModel:       env.Config.Inference.DefaultModel,
		DefaultTemperature: env.Config.Inference.Temperature,
	}, env.Remote, env.Logger)
	if err != nil {
		return err
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Run()
	}()

	env.Logger.Info("stackchat server started",
		zap.String("listen", listen),
		zap.String("remote", env.Config.Remote.URL),
	)

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	env.Logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil && !errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	return nil
}
