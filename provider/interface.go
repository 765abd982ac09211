// Package provider abstracts the model API clients (OpenAI-compatible
// gateways, Anthropic, local Ollama) behind one interface.
//
// The core treats a provider as a black box: an ordered list of
// role/content messages goes in, a completed text or a stream of text
// fragments comes out. Provider-specific response metadata beyond the
// final text and token usage is never inspected. Retries belong here
// or above, never in the memory manager.
package provider

import (
	"context"

	"aigw/storage"
)

// ProviderType identifies the provider implementation.
type ProviderType string

const (
	ProviderTypeOpenAI    ProviderType = "openai"
	ProviderTypeAnthropic ProviderType = "anthropic"
	ProviderTypeOllama    ProviderType = "ollama"
)

// Config holds provider-specific configuration.
type Config struct {
	Type        ProviderType
	BaseURL     string
	APIKey      string // unused for Ollama
	Model       string
	Temperature float64
	MaxTokens   int // 0 means provider default
}

// StreamCallback is called for each fragment of a streamed response.
// Returning an error aborts the stream.
type StreamCallback func(chunk string) error

// Usage reports token accounting from the provider, when available.
type Usage struct {
	PromptTokens     int64
	CompletionTokens int64
	TotalTokens      int64
}

// Completion is a single non-streamed response.
type Completion struct {
	Content      string
	Model        string
	FinishReason string
	Usage        Usage
}

// ModelInfo describes one model offered by a provider.
type ModelInfo struct {
	Name     string
	Provider string
	Size     int64 // bytes on disk for local models, 0 otherwise
}

// Provider is the contract every model API client implements.
type Provider interface {
	// Chat sends messages and streams the response through callback,
	// terminated by a nil return once the stream ends.
	Chat(ctx context.Context, messages []storage.Message, callback StreamCallback) error

	// Complete sends messages and returns the full response with
	// token usage.
	Complete(ctx context.Context, messages []storage.Message) (*Completion, error)

	// ListModels returns the models available from this provider.
	ListModels(ctx context.Context) ([]ModelInfo, error)

	// GetModel returns the currently selected model name.
	GetModel() string

	// SetModel changes the active model.
	SetModel(model string)

	// Ping checks that the provider is reachable.
	Ping(ctx context.Context) error
}
