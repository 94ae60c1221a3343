package commands

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"github.com/urfave/cli/v3"
	"golang.org/x/term"

	"github.com/florianilch/claude-adapter/internal/app"
	"github.com/florianilch/claude-adapter/internal/providers"
)

func configInitCommand() *cli.Command {
	return &cli.Command{
		Name:  "init",
		Usage: "interactively create a configuration file",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "output",
				Aliases: []string{"o"},
				Usage:   "path to write the config file to",
			},
			&cli.BoolFlag{
				Name:  "force",
				Usage: "overwrite an existing config file",
			},
		},
		Action: configInitAction,
	}
}

func configInitAction(ctx context.Context, cmd *cli.Command) error {
	outputPath := cmd.String("output")
	if outputPath == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return fmt.Errorf("failed to determine home directory: %w", err)
		}
		outputPath = filepath.Join(home, ".claude-adapter", "config.toml")
	}

	if _, err := os.Stat(outputPath); err == nil && !cmd.Bool("force") {
		return fmt.Errorf("config file already exists at %s (use --force to overwrite)", outputPath)
	}

	in := bufio.NewReader(os.Stdin)

	providerName, err := promptChoice(in, "Provider", providers.Names(), app.DefaultConfigUpstreamProvider)
	if err != nil {
		return err
	}
	preset, _ := providers.Get(providerName)

	baseURL, err := promptLine(in, "Upstream base URL", preset.BaseURL)
	if err != nil {
		return err
	}

	opus, err := promptLine(in, "Model for opus requests", preset.DefaultModels.Opus)
	if err != nil {
		return err
	}
	sonnet, err := promptLine(in, "Model for sonnet requests", preset.DefaultModels.Sonnet)
	if err != nil {
		return err
	}
	haiku, err := promptLine(in, "Model for haiku requests", preset.DefaultModels.Haiku)
	if err != nil {
		return err
	}

	authCfg := app.AuthConfig{Storage: app.KeyStorageTypeNone}
	if preset.APIKeyRequired {
		authCfg, err = promptAuth(ctx, in)
		if err != nil {
			return err
		}
	}

	cfg := map[string]any{
		"upstream": map[string]any{
			"provider":           providerName,
			"base_url":           baseURL,
			"tool_format":        preset.DefaultToolFormat,
			"max_context_window": preset.MaxContextWindow,
		},
		"models": map[string]any{
			"opus":   opus,
			"sonnet": sonnet,
			"haiku":  haiku,
		},
		"auth": authConfigMap(authCfg),
	}

	data, err := toml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(outputPath), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if err := os.WriteFile(outputPath, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	fmt.Printf("Wrote %s\n", outputPath)
	fmt.Printf("Start the gateway with: claude-adapter -c %s start\n", outputPath)
	return nil
}

// promptAuth asks for the API key and where to keep it, and writes the key
// to the chosen backend. The config file never contains the key itself
// unless static storage is chosen explicitly.
func promptAuth(ctx context.Context, in *bufio.Reader) (app.AuthConfig, error) {
	storage, err := promptChoice(in, "API key storage", []string{"keyring", "file", "env", "static"}, "keyring")
	if err != nil {
		return app.AuthConfig{}, err
	}

	cfg := app.AuthConfig{Storage: app.KeyStorageType(storage)}
	if err := cfg.ApplyDefaults(); err != nil {
		return app.AuthConfig{}, err
	}

	if cfg.Storage == app.KeyStorageTypeEnv {
		envKey, err := promptLine(in, "Environment variable holding the key", "CLAUDE_ADAPTER_API_KEY")
		if err != nil {
			return app.AuthConfig{}, err
		}
		cfg.EnvKey = envKey
		return cfg, nil
	}

	key, err := promptSecret(in, "API key")
	if err != nil {
		return app.AuthConfig{}, err
	}
	if key == "" {
		return app.AuthConfig{}, fmt.Errorf("API key must not be empty")
	}

	if cfg.Storage == app.KeyStorageTypeStatic {
		cfg.Key = key
		return cfg, nil
	}

	store, err := cfg.NewKeyStore()
	if err != nil {
		return app.AuthConfig{}, fmt.Errorf("failed to create key store: %w", err)
	}
	if err := store.Write(ctx, key); err != nil {
		return app.AuthConfig{}, fmt.Errorf("failed to store API key: %w", err)
	}

	return cfg, nil
}

func authConfigMap(cfg app.AuthConfig) map[string]any {
	m := map[string]any{"storage": string(cfg.Storage)}
	switch cfg.Storage {
	case app.KeyStorageTypeStatic:
		m["key"] = cfg.Key
	case app.KeyStorageTypeEnv:
		m["env_key"] = cfg.EnvKey
	case app.KeyStorageTypeFile:
		m["file"] = cfg.File
	case app.KeyStorageTypeKeyring:
		m["keyring_user"] = cfg.KeyringUser
	}
	return m
}

func promptLine(in *bufio.Reader, label, defaultValue string) (string, error) {
	if defaultValue != "" {
		fmt.Printf("%s [%s]: ", label, defaultValue)
	} else {
		fmt.Printf("%s: ", label)
	}

	line, err := in.ReadString('\n')
	if err != nil {
		return "", fmt.Errorf("failed to read input: %w", err)
	}

	line = strings.TrimSpace(line)
	if line == "" {
		return defaultValue, nil
	}
	return line, nil
}

func promptChoice(in *bufio.Reader, label string, options []string, defaultValue string) (string, error) {
	for {
		value, err := promptLine(in, fmt.Sprintf("%s (%s)", label, strings.Join(options, "|")), defaultValue)
		if err != nil {
			return "", err
		}
		for _, option := range options {
			if value == option {
				return value, nil
			}
		}
		fmt.Printf("Unknown option %q\n", value)
	}
}

// promptSecret reads without echo when stdin is a terminal, so the key
// does not end up in scrollback or shell history captures.
func promptSecret(in *bufio.Reader, label string) (string, error) {
	fmt.Printf("%s: ", label)

	if term.IsTerminal(int(os.Stdin.Fd())) {
		secret, err := term.ReadPassword(int(os.Stdin.Fd()))
		fmt.Println()
		if err != nil {
			return "", fmt.Errorf("failed to read input: %w", err)
		}
		return strings.TrimSpace(string(secret)), nil
	}

	line, err := in.ReadString('\n')
	if err != nil {
		return "", fmt.Errorf("failed to read input: %w", err)
	}
	return strings.TrimSpace(line), nil
}
