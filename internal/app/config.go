package app

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/user"
	"path/filepath"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/florianilch/claude-adapter/internal/keystore"
	"github.com/florianilch/claude-adapter/internal/providers"
)

// LogFormat represents the logging output format.
type LogFormat string

const (
	LogFormatText LogFormat = "text"
	LogFormatJSON LogFormat = "json"
)

// KeyStorageType represents the different storage types supported for the
// upstream API key.
type KeyStorageType string

const (
	KeyStorageTypeNone    KeyStorageType = "none"
	KeyStorageTypeStatic  KeyStorageType = "static"
	KeyStorageTypeEnv     KeyStorageType = "env"
	KeyStorageTypeFile    KeyStorageType = "file"
	KeyStorageTypeKeyring KeyStorageType = "keyring"
)

// Default configuration values
const (
	DefaultConfigLogFormat        = LogFormatText
	DefaultConfigServerHost       = "127.0.0.1"
	DefaultConfigServerPort       = 8787
	DefaultConfigShutdownTimeout  = 5 * time.Second
	DefaultConfigUpstreamProvider = "custom"
)

// ServerConfig holds server-specific configuration.
type ServerConfig struct {
	Host string `json:"host" validate:"hostname_rfc1123|ip"`
	Port uint16 `json:"port"` // Port range 0-65535 handled by uint16 type
}

// ShutdownConfig holds shutdown behavior configuration.
type ShutdownConfig struct {
	// Timeout for graceful shutdown.
	Timeout time.Duration `json:"timeout"`
}

// UpstreamConfig holds upstream endpoint configuration. Unset fields are
// filled from the selected provider preset.
type UpstreamConfig struct {
	Provider string `json:"provider" validate:"required,oneof=nvidia ollama lmstudio deepseek custom"`
	BaseURL  string `json:"base_url" validate:"required,url"`

	// ToolFormat selects native function calling or the XML prompt contract.
	ToolFormat string `json:"tool_format" validate:"required,oneof=native xml"`

	// MaxContextWindow bounds request shaping; 0 disables fitting.
	MaxContextWindow int `json:"max_context_window" validate:"min=0"`
}

// ModelsConfig maps the three Anthropic tiers to upstream model names.
type ModelsConfig struct {
	Opus   string `json:"opus" validate:"required"`
	Sonnet string `json:"sonnet" validate:"required"`
	Haiku  string `json:"haiku" validate:"required"`
}

// AuthConfig describes where the upstream API key comes from.
type AuthConfig struct {
	Storage KeyStorageType `json:"storage" validate:"required,oneof=none static env file keyring"`

	// Storage-specific settings (mutually exclusive based on Storage type)
	Key         string `json:"key,omitempty"`          // For static storage: the key itself
	EnvKey      string `json:"env_key,omitempty"`      // For env storage: environment variable name
	File        string `json:"file,omitempty"`         // For file storage: path to key file
	KeyringUser string `json:"keyring_user,omitempty"` // For keyring storage: user identifier
}

// ApplyDefaults infers the storage type and fills storage-specific settings
// from the environment.
func (a *AuthConfig) ApplyDefaults() error {
	if a.Storage == "" {
		if a.Key != "" {
			a.Storage = KeyStorageTypeStatic
		} else {
			a.Storage = KeyStorageTypeNone
		}
	}

	switch a.Storage {
	case KeyStorageTypeFile:
		if a.File == "" {
			configDir, err := os.UserConfigDir()
			if err != nil {
				return fmt.Errorf("auth.file required (auto-detect failed: %w)", err)
			}
			a.File = filepath.Join(configDir, "claude-adapter", "key")
		}
	case KeyStorageTypeKeyring:
		if a.KeyringUser == "" {
			currentUser, err := user.Current()
			if err != nil {
				return fmt.Errorf("auth.keyring_user required (auto-detect failed: %w)", err)
			}
			a.KeyringUser = currentUser.Username
		}
	}

	return nil
}

// NewKeyStore creates a KeyStore from the authentication configuration.
// Returns nil for storage "none" (unauthenticated local upstreams).
func (a *AuthConfig) NewKeyStore() (keystore.KeyStore, error) {
	switch a.Storage {
	case KeyStorageTypeNone:
		return nil, nil
	case KeyStorageTypeStatic:
		return keystore.NewStaticStore(a.Key)
	case KeyStorageTypeEnv:
		return keystore.NewEnvStore(a.EnvKey)
	case KeyStorageTypeFile:
		return keystore.NewFileStore(a.File)
	case KeyStorageTypeKeyring:
		return keystore.NewKeyringStore("claude-adapter-key", a.KeyringUser)
	default:
		return nil, fmt.Errorf("unsupported storage type: %s", a.Storage)
	}
}

// Config holds the application's configuration.
type Config struct {
	// LogLevel for logging output (defaults to Info if unset).
	LogLevel  slog.Level     `json:"log_level"`
	LogFormat LogFormat      `json:"log_format" validate:"oneof=text json"`
	Server    ServerConfig   `json:"server"`
	Shutdown  ShutdownConfig `json:"shutdown"`
	Upstream  UpstreamConfig `json:"upstream"`
	Models    ModelsConfig   `json:"models"`
	Auth      AuthConfig     `json:"auth"`

	// DataDir holds usage and error records (defaults to ~/.claude-adapter).
	DataDir string `json:"data_dir"`
}

// Default creates a new Config with default values applied.
func Default() (*Config, error) {
	cfg := &Config{}
	if err := cfg.ApplyDefaults(); err != nil {
		return nil, fmt.Errorf("failed to apply defaults: %w", err)
	}
	return cfg, nil
}

// ApplyDefaults fills unset config fields with sensible defaults, pulling
// endpoint defaults from the selected provider preset.
func (c *Config) ApplyDefaults() error {
	if c.LogFormat == "" {
		c.LogFormat = DefaultConfigLogFormat
	}
	if c.Server.Host == "" {
		c.Server.Host = DefaultConfigServerHost
	}
	if c.Server.Port == 0 {
		c.Server.Port = DefaultConfigServerPort
	}
	if c.Shutdown.Timeout == 0 {
		c.Shutdown.Timeout = DefaultConfigShutdownTimeout
	}
	if c.Upstream.Provider == "" {
		c.Upstream.Provider = DefaultConfigUpstreamProvider
	}

	if preset, ok := providers.Get(c.Upstream.Provider); ok {
		if c.Upstream.BaseURL == "" {
			c.Upstream.BaseURL = preset.BaseURL
		}
		if c.Upstream.ToolFormat == "" {
			c.Upstream.ToolFormat = preset.DefaultToolFormat
		}
		if c.Upstream.MaxContextWindow == 0 {
			c.Upstream.MaxContextWindow = preset.MaxContextWindow
		}
		if c.Models.Opus == "" {
			c.Models.Opus = preset.DefaultModels.Opus
		}
		if c.Models.Sonnet == "" {
			c.Models.Sonnet = preset.DefaultModels.Sonnet
		}
		if c.Models.Haiku == "" {
			c.Models.Haiku = preset.DefaultModels.Haiku
		}
	}
	if c.Upstream.ToolFormat == "" {
		c.Upstream.ToolFormat = "native"
	}

	if err := c.Auth.ApplyDefaults(); err != nil {
		return err
	}

	if c.DataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return fmt.Errorf("data_dir required (auto-detect failed: %w)", err)
		}
		c.DataDir = filepath.Join(home, ".claude-adapter")
	}

	return nil
}

// Validate validates the configuration using struct tags and enum values.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return err
	}

	switch c.Auth.Storage {
	case KeyStorageTypeStatic:
		if c.Auth.Key == "" {
			return errors.New("key required for static storage")
		}
	case KeyStorageTypeEnv:
		if c.Auth.EnvKey == "" {
			return errors.New("env_key required for env storage")
		}
	case KeyStorageTypeFile:
		if c.Auth.File == "" {
			return errors.New("file path required for file storage")
		}
	case KeyStorageTypeKeyring:
		if c.Auth.KeyringUser == "" {
			return errors.New("keyring_user required for keyring storage")
		}
	}

	return nil
}
