package commands

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/florianilch/claude-adapter/internal/app"
)

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadConfig_FileWithPresetDefaults(t *testing.T) {
	path := writeConfigFile(t, `
log_format = "json"

[server]
port = 9000

[upstream]
provider = "ollama"
`)

	cfg, err := loadConfig(path, nil, func() []string { return nil })
	if err != nil {
		t.Fatalf("loadConfig: %v", err)
	}

	if cfg.LogFormat != app.LogFormatJSON {
		t.Errorf("log format = %q", cfg.LogFormat)
	}
	if cfg.Server.Port != 9000 {
		t.Errorf("port = %d", cfg.Server.Port)
	}
	if cfg.Server.Host != app.DefaultConfigServerHost {
		t.Errorf("host = %q, want default", cfg.Server.Host)
	}
	if cfg.Upstream.BaseURL == "" {
		t.Error("preset base URL not applied")
	}
	if cfg.Models.Sonnet == "" {
		t.Error("preset models not applied")
	}
	if cfg.Auth.Storage != app.KeyStorageTypeNone {
		t.Errorf("auth storage = %q, want none inferred", cfg.Auth.Storage)
	}
}

func TestLoadConfig_EnvOverridesFile(t *testing.T) {
	path := writeConfigFile(t, `
[server]
port = 9000

[upstream]
provider = "ollama"
`)

	environ := func() []string {
		return []string{
			"CLAUDE_ADAPTER_SERVER__PORT=9100",
			"CLAUDE_ADAPTER_UPSTREAM__TOOL_FORMAT=xml",
			"UNRELATED_VAR=ignored",
		}
	}

	cfg, err := loadConfig(path, nil, environ)
	if err != nil {
		t.Fatalf("loadConfig: %v", err)
	}

	if cfg.Server.Port != 9100 {
		t.Errorf("port = %d, want env override 9100", cfg.Server.Port)
	}
	if cfg.Upstream.ToolFormat != "xml" {
		t.Errorf("tool format = %q, want env override xml", cfg.Upstream.ToolFormat)
	}
}

func TestLoadConfig_InvalidProviderRejected(t *testing.T) {
	path := writeConfigFile(t, `
[upstream]
provider = "nonsense"
`)

	if _, err := loadConfig(path, nil, func() []string { return nil }); err == nil {
		t.Error("invalid provider accepted")
	}
}

func TestLoadConfig_StaticKeyInfersStorage(t *testing.T) {
	path := writeConfigFile(t, `
[upstream]
provider = "deepseek"

[auth]
key = "sk-test"
`)

	cfg, err := loadConfig(path, nil, func() []string { return nil })
	if err != nil {
		t.Fatalf("loadConfig: %v", err)
	}
	if cfg.Auth.Storage != app.KeyStorageTypeStatic {
		t.Errorf("auth storage = %q, want static inferred from key", cfg.Auth.Storage)
	}
}
