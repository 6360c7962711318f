// Package config loads stackchat settings from TOML and keeps the per-model
// tool prompt format table that can be reloaded while the server runs.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/papercomputeco/stackchat/pkg/llm"
)

// Environment variables applied over the loaded configuration.
const (
	EnvRemoteURL = "STACKCHAT_REMOTE_URL"
	EnvDebug     = "STACKCHAT_DEBUG"
)

// ErrInvalidConfig is returned when a configuration file decodes but holds
// values stackchat cannot use.
var ErrInvalidConfig = errors.New("invalid config")

// MinRemoteTimeout is the shortest remote timeout Validate accepts. A bare
// TOML integer decodes as nanoseconds, so anything shorter is a missing unit.
const MinRemoteTimeout = time.Second

// Config is the complete stackchat configuration.
type Config struct {
	Debug     bool                   `toml:"debug"`
	Remote    RemoteConfig           `toml:"remote"`
	Inference InferenceConfig        `toml:"inference"`
	Server    ServerConfig           `toml:"server"`
	Models    map[string]ModelConfig `toml:"models"`
}

// RemoteConfig points at the remote inference service.
type RemoteConfig struct {
	URL           string        `toml:"url"`
	ClientVersion string        `toml:"client_version"`
	Timeout       time.Duration `toml:"timeout"`
}

// InferenceConfig holds request defaults.
type InferenceConfig struct {
	DefaultModel            string               `toml:"default_model"`
	Temperature             float64              `toml:"temperature"`
	DefaultToolPromptFormat llm.ToolPromptFormat `toml:"default_tool_prompt_format"`
}

// ServerConfig configures the HTTP front-end.
type ServerConfig struct {
	Listen string `toml:"listen"`
}

// ModelConfig holds per-model settings.
type ModelConfig struct {
	ToolPromptFormat llm.ToolPromptFormat `toml:"tool_prompt_format"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Remote: RemoteConfig{
			URL:           "http://localhost:8321",
			ClientVersion: "0.1.0",
			Timeout:       5 * time.Minute,
		},
		Inference: InferenceConfig{
			DefaultModel:            "meta-llama/Llama-3.1-8B-Instruct",
			DefaultToolPromptFormat: llm.ToolPromptPythonList,
		},
		Server: ServerConfig{
			Listen: ":8080",
		},
		Models: map[string]ModelConfig{
			"meta-llama/Llama-3.1-8B-Instruct":         {ToolPromptFormat: llm.ToolPromptJSON},
			"meta-llama/Llama-3.2-11B-Vision-Instruct": {ToolPromptFormat: llm.ToolPromptJSON},
			"meta-llama/Llama-3.2-90B-Vision-Instruct": {ToolPromptFormat: llm.ToolPromptJSON},
		},
	}
}

// DefaultPath returns the per-user configuration file location.
func DefaultPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "stackchat", "config.toml"), nil
}

// Load reads the TOML file at path over the defaults. An empty path returns
// the defaults. Unknown keys are rejected.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	meta, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return Config{}, fmt.Errorf("could not decode config %s: %w", path, err)
	}

	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, 0, len(undecoded))
		for _, key := range undecoded {
			keys = append(keys, key.String())
		}
		return Config{}, fmt.Errorf("%w: unknown keys in %s: %s", ErrInvalidConfig, path, strings.Join(keys, ", "))
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks values the TOML decoder cannot.
func (c Config) Validate() error {
	if c.Remote.Timeout < 0 {
		return fmt.Errorf("%w: negative remote timeout %s", ErrInvalidConfig, c.Remote.Timeout)
	}
	if c.Remote.Timeout > 0 && c.Remote.Timeout < MinRemoteTimeout {
		return fmt.Errorf("%w: remote timeout %s is below %s, write it with a unit such as \"30s\"",
			ErrInvalidConfig, c.Remote.Timeout, MinRemoteTimeout)
	}
	if !c.Inference.DefaultToolPromptFormat.Valid() {
		return fmt.Errorf("%w: unknown default_tool_prompt_format %q", ErrInvalidConfig, c.Inference.DefaultToolPromptFormat)
	}

	models := make([]string, 0, len(c.Models))
	for model := range c.Models {
		models = append(models, model)
	}
	sort.Strings(models)
	for _, model := range models {
		if format := c.Models[model].ToolPromptFormat; !format.Valid() {
			return fmt.Errorf("%w: model %s: unknown tool_prompt_format %q", ErrInvalidConfig, model, format)
		}
	}
	return nil
}

// ApplyEnv overrides c with values from getenv. Unset variables leave c as is.
func (c *Config) ApplyEnv(getenv func(string) string) error {
	if url := getenv(EnvRemoteURL); url != "" {
		c.Remote.URL = url
	}
	if raw := getenv(EnvDebug); raw != "" {
		debug, err := strconv.ParseBool(raw)
		if err != nil {
			return fmt.Errorf("%w: %s=%q: %w", ErrInvalidConfig, EnvDebug, raw, err)
		}
		c.Debug = debug
	}
	return nil
}

// ModelFormats returns the tool prompt format of every configured model.
func (c Config) ModelFormats() map[string]llm.ToolPromptFormat {
	formats := make(map[string]llm.ToolPromptFormat, len(c.Models))
	for model, mc := range c.Models {
		formats[model] = mc.ToolPromptFormat
	}
	return formats
}
