package config

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strconv"
)

// SystemConfig lives at ~/.config/aigw/settings.toml and only locates
// the data directory; everything else is user config inside it.
type SystemConfig struct {
	DataDirectory string `toml:"data_directory"`
}

type GatewayConfig struct {
	BaseURL      string `toml:"base_url"`
	APIKey       string `toml:"api_key,omitempty"`
	DefaultModel string `toml:"default_model"`
}

type OllamaConfig struct {
	Host         string `toml:"host"`
	DefaultModel string `toml:"default_model"`
}

// UserConfig lives at <data_dir>/config.toml.
type UserConfig struct {
	Provider            string        `toml:"provider"`
	Gateway             GatewayConfig `toml:"gateway"`
	Ollama              OllamaConfig  `toml:"ollama"`
	DefaultSystemPrompt string        `toml:"default_system_prompt,omitempty"`
	StorageBackend      string        `toml:"storage_backend"`
	ReplyReserve        int           `toml:"reply_reserve"`
	Temperature         float64       `toml:"temperature"`
}

// Config is the resolved runtime configuration.
type Config struct {
	DataDirectory       string
	Provider            string
	GatewayBaseURL      string
	APIKey              string
	DefaultModel        string
	DefaultSystemPrompt string
	StorageBackend      string
	ReplyReserve        int
	Temperature         float64
	OllamaHost          string
	OllamaModel         string
}

var Debug = false
var DebugLog *log.Logger

// DataDir returns the expanded data directory path.
func (c *Config) DataDir() string {
	return ExpandPath(c.DataDirectory)
}

// applyEnvOverrides applies environment variables on top of file
// config. AI_GATEWAY_API_KEY and AI_GATEWAY_BASE_URL keep their
// historical names; the rest are AIGW_*.
func (c *Config) applyEnvOverrides() {
	if key := os.Getenv("AI_GATEWAY_API_KEY"); key != "" {
		c.APIKey = key
	}
	if baseURL := os.Getenv("AI_GATEWAY_BASE_URL"); baseURL != "" {
		c.GatewayBaseURL = baseURL
	}
	if model := os.Getenv("AIGW_MODEL"); model != "" {
		c.DefaultModel = model
	}
	if dataDir := os.Getenv("AIGW_DATA_DIR"); dataDir != "" {
		c.DataDirectory = dataDir
	}
	if reserve := os.Getenv("AIGW_REPLY_RESERVE"); reserve != "" {
		if n, err := strconv.Atoi(reserve); err == nil && n > 0 {
			c.ReplyReserve = n
		}
	}
}

func CheckDebug() bool {
	debug := os.Getenv("AIGW_DEBUG")
	return debug == "true" || debug == "1"
}

// InitDebugLog opens <data_dir>/debug.log when AIGW_DEBUG is set.
func InitDebugLog(dataDir string) {
	if !CheckDebug() {
		return
	}

	Debug = true
	logPath := filepath.Join(dataDir, "debug.log")

	// 0600 - the log may quote conversation content
	f, err := os.OpenFile(logPath, os.O_RDWR|os.O_CREATE|os.O_APPEND, 0600)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: Could not open debug log at %s: %v\n", logPath, err)
		return
	}

	DebugLog = log.New(f, "", log.Ldate|log.Ltime|log.Lmicroseconds|log.Lshortfile)
	DebugLog.Printf("=== Debug logging started (AIGW_DEBUG=%s) ===", os.Getenv("AIGW_DEBUG"))
}

// Load resolves configuration: defaults, then settings.toml and the
// user config, then environment overrides. The data directory is
// created on first use.
func Load() (*Config, error) {
	cfg := defaultConfig()

	systemCfg, err := LoadSystemConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load system config: %w", err)
	}
	cfg.DataDirectory = systemCfg.DataDirectory

	// AIGW_DATA_DIR must win before the user config is located.
	if dataDir := os.Getenv("AIGW_DATA_DIR"); dataDir != "" {
		cfg.DataDirectory = dataDir
	}

	dataDir := cfg.DataDir()
	if err := EnsureDir(dataDir); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	userCfg, err := LoadUserConfig(dataDir)
	if err != nil {
		return nil, fmt.Errorf("failed to load user config: %w", err)
	}
	cfg.applyUserConfig(userCfg)
	cfg.applyEnvOverrides()

	return cfg, nil
}

func (c *Config) applyUserConfig(userCfg *UserConfig) {
	if userCfg.Provider != "" {
		c.Provider = userCfg.Provider
	}
	if userCfg.Gateway.BaseURL != "" {
		c.GatewayBaseURL = userCfg.Gateway.BaseURL
	}
	if userCfg.Gateway.APIKey != "" {
		c.APIKey = userCfg.Gateway.APIKey
	}
	if userCfg.Gateway.DefaultModel != "" {
		c.DefaultModel = userCfg.Gateway.DefaultModel
	}
	if userCfg.Ollama.Host != "" {
		c.OllamaHost = userCfg.Ollama.Host
	}
	if userCfg.Ollama.DefaultModel != "" {
		c.OllamaModel = userCfg.Ollama.DefaultModel
	}
	if userCfg.StorageBackend != "" {
		c.StorageBackend = userCfg.StorageBackend
	}
	if userCfg.ReplyReserve > 0 {
		c.ReplyReserve = userCfg.ReplyReserve
	}
	if userCfg.Temperature > 0 {
		c.Temperature = userCfg.Temperature
	}
	c.DefaultSystemPrompt = userCfg.DefaultSystemPrompt
}
