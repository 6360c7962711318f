// Package setup turns the global stackchat flags into a ready to use
// configuration, logger and remote inference handle.
package setup

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"go.uber.org/zap"

	"github.com/papercomputeco/stackchat/pkg/config"
	"github.com/papercomputeco/stackchat/pkg/conversation"
	"github.com/papercomputeco/stackchat/pkg/inference"
	"github.com/papercomputeco/stackchat/pkg/logger"
	"github.com/papercomputeco/stackchat/pkg/tools"
)

// Flags are the persistent flags shared by every subcommand.
type Flags struct {
	ConfigPath string
	Debug      bool
	URL        string

	// Getenv reads environment overrides. Nil uses os.Getenv.
	Getenv func(string) string
}

// Env is everything a subcommand needs to talk to the remote service.
type Env struct {
	Config     config.Config
	ConfigPath string
	Logger     *zap.Logger
	Formats    *config.ToolFormats
	Tools      *tools.Registry
	Remote     *inference.Remote
}

// Load resolves the configuration. Values come from the defaults, then the
// config file, then the environment, then the flags.
func (f *Flags) Load() (config.Config, string, error) {
	path, err := f.configPath()
	if err != nil {
		return config.Config{}, "", err
	}

	cfg, err := config.Load(path)
	if err != nil {
		return config.Config{}, "", err
	}

	getenv := f.Getenv
	if getenv == nil {
		getenv = os.Getenv
	}
	if err := cfg.ApplyEnv(getenv); err != nil {
		return config.Config{}, "", err
	}

	if f.URL != "" {
		cfg.Remote.URL = f.URL
	}
	if f.Debug {
		cfg.Debug = true
	}
	return cfg, path, nil
}

// Setup loads the configuration and builds the remote inference handle with
// the built-in tools registered.
func (f *Flags) Setup() (*Env, error) {
	cfg, path, err := f.Load()
	if err != nil {
		return nil, err
	}

	log := logger.NewLogger(cfg.Debug)
	log.Debug("configuration loaded",
		zap.String("path", path),
		zap.String("remote", cfg.Remote.URL),
	)

	registry := tools.NewRegistry(log)
	if err := tools.RegisterBuiltins(registry); err != nil {
		return nil, fmt.Errorf("could not register tools: %w", err)
	}

	formats := config.FormatsFrom(cfg)
	return &Env{
		Config:     cfg,
		ConfigPath: path,
		Logger:     log,
		Formats:    formats,
		Tools:      registry,
		Remote:     inference.New(cfg, formats, registry, log),
	}, nil
}

// configPath returns the explicit config path, or the per-user default when
// that file exists. An empty result means built-in defaults.
func (f *Flags) configPath() (string, error) {
	if f.ConfigPath != "" {
		return f.ConfigPath, nil
	}

	path, err := config.DefaultPath()
	if err != nil {
		return "", nil
	}
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", nil
		}
		return "", fmt.Errorf("could not stat config %s: %w", path, err)
	}
	return path, nil
}

// History builds a single prompt history. With an image the history is the
// image turn followed by the prompt.
func History(prompt, image string) []conversation.Turn {
	if image == "" {
		return []conversation.Turn{conversation.SentText(prompt)}
	}
	return []conversation.Turn{
		conversation.SentImage(image),
		conversation.SentText(prompt),
	}
}
