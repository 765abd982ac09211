package config

// DefaultGatewayBaseURL points at the Vercel AI Gateway, which fronts
// every vendor in the catalog behind one OpenAI-compatible endpoint.
const DefaultGatewayBaseURL = "https://ai-gateway.vercel.sh/v1"

// DefaultModel is the gateway's cheapest generally-capable model.
const DefaultModel = "deepseek/deepseek-v3.2-exp"

func DefaultSystemConfig() *SystemConfig {
	return &SystemConfig{
		DataDirectory: "~/.local/share/aigw",
	}
}

func DefaultUserConfig() *UserConfig {
	return &UserConfig{
		Provider: "openai",
		Gateway: GatewayConfig{
			BaseURL:      DefaultGatewayBaseURL,
			DefaultModel: DefaultModel,
		},
		Ollama: OllamaConfig{
			Host:         "http://localhost:11434",
			DefaultModel: "llama3.1:latest",
		},
		StorageBackend: "files",
		ReplyReserve:   4096,
		Temperature:    0.7,
	}
}

func defaultConfig() *Config {
	return &Config{
		DataDirectory:  "~/.local/share/aigw",
		Provider:       "openai",
		GatewayBaseURL: DefaultGatewayBaseURL,
		DefaultModel:   DefaultModel,
		StorageBackend: "files",
		ReplyReserve:   4096,
		Temperature:    0.7,
		OllamaHost:     "http://localhost:11434",
		OllamaModel:    "llama3.1:latest",
	}
}

func GenerateSystemConfigTemplate() string {
	return `# aigw System Configuration
# Location: ~/.config/aigw/settings.toml
# This file uses TOML format: https://toml.io

# Directory where conversations and user config are stored
data_directory = "~/.local/share/aigw"
`
}

func GenerateUserConfigTemplate() string {
	return `# aigw User Configuration
# Location: <data_directory>/config.toml
# This file uses TOML format: https://toml.io

# Provider to use: "openai" (any OpenAI-compatible gateway),
# "anthropic", or "ollama"
provider = "openai"

[gateway]
# OpenAI-compatible endpoint
base_url = "https://ai-gateway.vercel.sh/v1"

# Default model for new conversations
default_model = "deepseek/deepseek-v3.2-exp"

# API key; the AI_GATEWAY_API_KEY environment variable takes precedence
# api_key = ""

[ollama]
# Ollama server URL
host = "http://localhost:11434"

# Default model when provider = "ollama"
default_model = "llama3.1:latest"

# System prompt for new conversations (optional, no built-in default)
default_system_prompt = ""

# Conversation storage backend: "files" (one JSON file per
# conversation) or "sqlite" (single database)
storage_backend = "files"

# Tokens reserved for the model's reply when budgeting history
reply_reserve = 4096

# Sampling temperature
temperature = 0.7
`
}
