package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestExpandPath(t *testing.T) {
	home := GetHomeDir()

	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"tilde prefix", "~/data", filepath.Join(home, "data")},
		{"absolute path untouched", "/var/lib/aigw", "/var/lib/aigw"},
		{"empty stays empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ExpandPath(tt.input); got != tt.expected {
				t.Errorf("ExpandPath(%q) = %q, want %q", tt.input, got, tt.expected)
			}
		})
	}
}

func TestApplyEnvOverrides(t *testing.T) {
	t.Setenv("AI_GATEWAY_API_KEY", "env-key")
	t.Setenv("AI_GATEWAY_BASE_URL", "https://example.test/v1")
	t.Setenv("AIGW_MODEL", "env-model")
	t.Setenv("AIGW_REPLY_RESERVE", "2048")

	cfg := defaultConfig()
	cfg.applyEnvOverrides()

	if cfg.APIKey != "env-key" {
		t.Errorf("APIKey = %q, want env override", cfg.APIKey)
	}
	if cfg.GatewayBaseURL != "https://example.test/v1" {
		t.Errorf("GatewayBaseURL = %q, want env override", cfg.GatewayBaseURL)
	}
	if cfg.DefaultModel != "env-model" {
		t.Errorf("DefaultModel = %q, want env override", cfg.DefaultModel)
	}
	if cfg.ReplyReserve != 2048 {
		t.Errorf("ReplyReserve = %d, want 2048", cfg.ReplyReserve)
	}
}

func TestApplyEnvOverridesBadReserve(t *testing.T) {
	t.Setenv("AIGW_REPLY_RESERVE", "not-a-number")

	cfg := defaultConfig()
	cfg.applyEnvOverrides()

	if cfg.ReplyReserve != 4096 {
		t.Errorf("ReplyReserve = %d, want default 4096 when the override is invalid", cfg.ReplyReserve)
	}
}

func TestLoadUserConfigFirstRun(t *testing.T) {
	dataDir := t.TempDir()

	cfg, err := LoadUserConfig(dataDir)
	if err != nil {
		t.Fatalf("LoadUserConfig: %v", err)
	}

	if cfg.Provider != "openai" {
		t.Errorf("Provider = %q, want default openai", cfg.Provider)
	}
	if cfg.StorageBackend != "files" {
		t.Errorf("StorageBackend = %q, want files", cfg.StorageBackend)
	}

	// First run must leave a commented template behind.
	path := filepath.Join(dataDir, "config.toml")
	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("template not written: %v", err)
	}
	if perm := info.Mode().Perm(); perm != 0600 {
		t.Errorf("config file mode = %o, want 0600", perm)
	}

	// A second load parses the file it just wrote.
	if _, err := LoadUserConfig(dataDir); err != nil {
		t.Fatalf("re-load: %v", err)
	}
}

func TestApplyUserConfig(t *testing.T) {
	cfg := defaultConfig()
	cfg.applyUserConfig(&UserConfig{
		Provider: "ollama",
		Ollama: OllamaConfig{
			Host:         "http://remote:11434",
			DefaultModel: "qwen2.5",
		},
		StorageBackend: "sqlite",
		ReplyReserve:   8192,
	})

	if cfg.Provider != "ollama" {
		t.Errorf("Provider = %q, want ollama", cfg.Provider)
	}
	if cfg.OllamaHost != "http://remote:11434" {
		t.Errorf("OllamaHost = %q", cfg.OllamaHost)
	}
	if cfg.StorageBackend != "sqlite" {
		t.Errorf("StorageBackend = %q, want sqlite", cfg.StorageBackend)
	}
	if cfg.ReplyReserve != 8192 {
		t.Errorf("ReplyReserve = %d, want 8192", cfg.ReplyReserve)
	}
	// Unset fields keep their defaults.
	if cfg.GatewayBaseURL != DefaultGatewayBaseURL {
		t.Errorf("GatewayBaseURL = %q, want default preserved", cfg.GatewayBaseURL)
	}
}
