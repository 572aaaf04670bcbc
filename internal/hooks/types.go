package hooks

// Config is the top-level configuration loaded from .claudemd.hooks.yml.
type Config struct {
	Version int         `yaml:"version"`
	Hooks   HooksConfig `yaml:"hooks"`
}

// HooksConfig lists the hook points.
type HooksConfig struct {
	// PostSave runs in order after a CLAUDE.md has been written.
	PostSave []*HookConfig `yaml:"post_save"`
}

// HookConfig defines a single hook command.
type HookConfig struct {
	Command string `yaml:"command"`
	Timeout int    `yaml:"timeout"` // seconds, default 30
}

// DefaultTimeout is the default timeout for hook execution in seconds.
const DefaultTimeout = 30
