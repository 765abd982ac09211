package provider

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/ollama/ollama/api"

	"aigw/storage"
)

// OllamaProvider runs against a local Ollama server.
type OllamaProvider struct {
	client      *api.Client
	model       string
	temperature float64
	maxTokens   int
}

// NewOllamaProvider creates a provider for an Ollama server. No API
// key is needed; an empty base URL defaults to localhost.
func NewOllamaProvider(cfg Config) (*OllamaProvider, error) {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = "http://localhost:11434"
	}
	model := cfg.Model
	if model == "" {
		model = "llama3.1:latest"
	}

	parsedURL, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid Ollama URL: %w", err)
	}

	return &OllamaProvider{
		client:      api.NewClient(parsedURL, http.DefaultClient),
		model:       model,
		temperature: cfg.Temperature,
		maxTokens:   cfg.MaxTokens,
	}, nil
}

func (p *OllamaProvider) request(messages []storage.Message, stream bool) *api.ChatRequest {
	req := &api.ChatRequest{
		Model:    p.model,
		Messages: convertToOllamaMessages(messages),
		Stream:   &stream,
	}
	options := map[string]any{}
	if p.temperature > 0 {
		options["temperature"] = p.temperature
	}
	if p.maxTokens > 0 {
		options["num_predict"] = p.maxTokens
	}
	if len(options) > 0 {
		req.Options = options
	}
	return req
}

// Chat implements Provider.Chat with streaming.
func (p *OllamaProvider) Chat(ctx context.Context, messages []storage.Message, callback StreamCallback) error {
	respFunc := func(resp api.ChatResponse) error {
		if callback != nil && resp.Message.Content != "" {
			return callback(resp.Message.Content)
		}
		return nil
	}

	if err := p.client.Chat(ctx, p.request(messages, true), respFunc); err != nil {
		return fmt.Errorf("streaming error: %w", err)
	}
	return nil
}

// Complete implements Provider.Complete.
func (p *OllamaProvider) Complete(ctx context.Context, messages []storage.Message) (*Completion, error) {
	var final api.ChatResponse
	respFunc := func(resp api.ChatResponse) error {
		final = resp
		return nil
	}

	if err := p.client.Chat(ctx, p.request(messages, false), respFunc); err != nil {
		return nil, fmt.Errorf("chat request failed: %w", err)
	}

	prompt := int64(final.Metrics.PromptEvalCount)
	completion := int64(final.Metrics.EvalCount)

	return &Completion{
		Content:      final.Message.Content,
		Model:        final.Model,
		FinishReason: final.DoneReason,
		Usage: Usage{
			PromptTokens:     prompt,
			CompletionTokens: completion,
			TotalTokens:      prompt + completion,
		},
	}, nil
}

// ListModels implements Provider.ListModels.
func (p *OllamaProvider) ListModels(ctx context.Context) ([]ModelInfo, error) {
	resp, err := p.client.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list models: %w", err)
	}

	models := make([]ModelInfo, len(resp.Models))
	for i, m := range resp.Models {
		models[i] = ModelInfo{
			Name:     m.Name,
			Provider: string(ProviderTypeOllama),
			Size:     m.Size,
		}
	}
	return models, nil
}

// GetModel implements Provider.GetModel.
func (p *OllamaProvider) GetModel() string {
	return p.model
}

// SetModel implements Provider.SetModel.
func (p *OllamaProvider) SetModel(model string) {
	p.model = model
}

// Ping implements Provider.Ping.
func (p *OllamaProvider) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if _, err := p.client.List(ctx); err != nil {
		return fmt.Errorf("ping failed: %w", err)
	}
	return nil
}
