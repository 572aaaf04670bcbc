// Package config provides centralized configuration management using Viper.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// Storage backends for API key metadata.
const (
	StorageNATS = "nats"
	StorageFile = "file"
)

// Defaults shared with the HTTP server and CLI flags.
const (
	DefaultModel     = "claude-3-5-sonnet-20241022"
	DefaultMaxTokens = 4000
	DefaultBaseURL   = "https://api.anthropic.com"
	DefaultOutput    = "CLAUDE.md"
)

// Config holds all configuration values for claudemd.
type Config struct {
	// Model is the Anthropic model used for generation.
	Model     string `mapstructure:"model" yaml:"model"`
	MaxTokens int    `mapstructure:"max_tokens" yaml:"max_tokens"`
	// AnthropicBaseURL is the upstream Messages API root.
	AnthropicBaseURL string `mapstructure:"anthropic_base_url" yaml:"anthropic_base_url"`
	// Endpoint points the wizard at an already running claudemd server.
	// Empty means the wizard starts its own server on a loopback port.
	Endpoint   string `mapstructure:"endpoint" yaml:"endpoint"`
	ServerAddr string `mapstructure:"server_addr" yaml:"server_addr"`
	DataDir    string `mapstructure:"data_dir" yaml:"data_dir"`
	Storage    string `mapstructure:"storage" yaml:"storage"`
	Output     string `mapstructure:"output" yaml:"output"`
	Template   string `mapstructure:"template" yaml:"template"`
	LogLevel   string `mapstructure:"log_level" yaml:"log_level"`
	LogFile    string `mapstructure:"log_file" yaml:"log_file"`
}

// Default returns the configuration used when no file or env overrides exist.
func Default() *Config {
	return &Config{
		Model:            DefaultModel,
		MaxTokens:        DefaultMaxTokens,
		AnthropicBaseURL: DefaultBaseURL,
		ServerAddr:       "127.0.0.1:8787",
		DataDir:          ".claudemd",
		Storage:          StorageNATS,
		Output:           DefaultOutput,
		LogLevel:         "info",
	}
}

var envKeys = []string{
	"model",
	"max_tokens",
	"anthropic_base_url",
	"endpoint",
	"server_addr",
	"data_dir",
	"storage",
	"output",
	"template",
	"log_level",
	"log_file",
}

// Load loads configuration with full precedence:
// CLI flags > ENV vars > project config > XDG global config > defaults
func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigType("yaml")
	v.SetConfigName("claudemd")

	def := Default()
	v.SetDefault("model", def.Model)
	v.SetDefault("max_tokens", def.MaxTokens)
	v.SetDefault("anthropic_base_url", def.AnthropicBaseURL)
	v.SetDefault("endpoint", "")
	v.SetDefault("server_addr", def.ServerAddr)
	v.SetDefault("data_dir", def.DataDir)
	v.SetDefault("storage", def.Storage)
	v.SetDefault("output", def.Output)
	v.SetDefault("template", "")
	v.SetDefault("log_level", def.LogLevel)
	v.SetDefault("log_file", "")

	v.SetEnvPrefix("CLAUDEMD")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// Explicit bindings so ints parse from the environment.
	for _, key := range envKeys {
		if err := v.BindEnv(key, "CLAUDEMD_"+strings.ToUpper(key)); err != nil {
			return nil, fmt.Errorf("binding %s env: %w", key, err)
		}
	}

	globalPath := GlobalPath()
	if fileExists(globalPath) {
		v.SetConfigFile(globalPath)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("reading global config: %w", err)
		}
	}

	projectPath := ProjectPath()
	if fileExists(projectPath) {
		v.SetConfigFile(projectPath)
		if err := v.MergeInConfig(); err != nil {
			return nil, fmt.Errorf("merging project config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate checks values that viper cannot type-check.
func (c *Config) Validate() error {
	switch c.Storage {
	case StorageNATS, StorageFile:
	default:
		return fmt.Errorf("invalid storage %q: must be %q or %q", c.Storage, StorageNATS, StorageFile)
	}
	if c.MaxTokens <= 0 {
		return fmt.Errorf("invalid max_tokens %d: must be positive", c.MaxTokens)
	}
	if c.Model == "" {
		return fmt.Errorf("model must not be empty")
	}
	return nil
}

// Exists returns true if any config file exists (global or project).
func Exists() bool {
	return fileExists(GlobalPath()) || fileExists(ProjectPath())
}

// GlobalPath returns ~/.config/claudemd/claudemd.yml or
// $XDG_CONFIG_HOME/claudemd/claudemd.yml.
func GlobalPath() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "claudemd", "claudemd.yml")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "claudemd", "claudemd.yml")
}

// ProjectPath returns the project-local config path.
func ProjectPath() string {
	return "claudemd.yml"
}

// WriteGlobal writes the config to the XDG global location.
func WriteGlobal(cfg *Config) error {
	path := GlobalPath()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}
	return write(path, cfg)
}

// WriteProject writes the config to the project-local location.
func WriteProject(cfg *Config) error {
	return write(ProjectPath(), cfg)
}

func write(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
