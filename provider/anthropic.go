package provider

import (
	"context"
	"fmt"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"aigw/storage"
)

// defaultAnthropicMaxTokens is used when no max is configured; the
// Anthropic API requires an explicit value.
const defaultAnthropicMaxTokens = 4096

// AnthropicProvider talks to the Anthropic API directly.
type AnthropicProvider struct {
	client      *anthropic.Client
	model       anthropic.Model
	temperature float64
	maxTokens   int
}

// NewAnthropicProvider creates an Anthropic provider. Returns an error
// if the API key is missing.
func NewAnthropicProvider(cfg Config) (*AnthropicProvider, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("API key is required")
	}

	opts := []option.RequestOption{option.WithAPIKey(cfg.APIKey)}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}
	client := anthropic.NewClient(opts...)

	model := anthropic.Model(cfg.Model)
	if cfg.Model == "" {
		model = anthropic.ModelClaudeSonnet4_5_20250929
	}

	return &AnthropicProvider{
		client:      &client,
		model:       model,
		temperature: cfg.Temperature,
		maxTokens:   cfg.MaxTokens,
	}, nil
}

func (p *AnthropicProvider) params(messages []storage.Message) anthropic.MessageNewParams {
	anthropicMessages, systemBlocks := convertToAnthropicMessages(messages)

	maxTokens := p.maxTokens
	if maxTokens <= 0 {
		maxTokens = defaultAnthropicMaxTokens
	}

	params := anthropic.MessageNewParams{
		Model:     p.model,
		Messages:  anthropicMessages,
		MaxTokens: int64(maxTokens),
	}
	if len(systemBlocks) > 0 {
		params.System = systemBlocks
	}
	if p.temperature > 0 {
		params.Temperature = anthropic.Float(p.temperature)
	}
	return params
}

// Chat implements Provider.Chat with streaming.
func (p *AnthropicProvider) Chat(ctx context.Context, messages []storage.Message, callback StreamCallback) error {
	stream := p.client.Messages.NewStreaming(ctx, p.params(messages))

	for stream.Next() {
		event := stream.Current()
		switch eventVariant := event.AsAny().(type) {
		case anthropic.ContentBlockDeltaEvent:
			switch deltaVariant := eventVariant.Delta.AsAny().(type) {
			case anthropic.TextDelta:
				if callback != nil {
					if err := callback(deltaVariant.Text); err != nil {
						return err
					}
				}
			}
		}
	}

	if err := stream.Err(); err != nil {
		return fmt.Errorf("streaming error: %w", err)
	}
	return nil
}

// Complete implements Provider.Complete.
func (p *AnthropicProvider) Complete(ctx context.Context, messages []storage.Message) (*Completion, error) {
	msg, err := p.client.Messages.New(ctx, p.params(messages))
	if err != nil {
		return nil, fmt.Errorf("message request failed: %w", err)
	}

	var text strings.Builder
	for _, block := range msg.Content {
		if textBlock, ok := block.AsAny().(anthropic.TextBlock); ok {
			text.WriteString(textBlock.Text)
		}
	}

	return &Completion{
		Content:      text.String(),
		Model:        string(msg.Model),
		FinishReason: string(msg.StopReason),
		Usage: Usage{
			PromptTokens:     msg.Usage.InputTokens,
			CompletionTokens: msg.Usage.OutputTokens,
			TotalTokens:      msg.Usage.InputTokens + msg.Usage.OutputTokens,
		},
	}, nil
}

// ListModels implements Provider.ListModels. Anthropic has no models
// endpoint, so a curated list of current Claude models is returned.
func (p *AnthropicProvider) ListModels(ctx context.Context) ([]ModelInfo, error) {
	models := []anthropic.Model{
		anthropic.ModelClaudeSonnet4_5_20250929,
		anthropic.ModelClaude3_5Haiku20241022,
		anthropic.ModelClaude_3_Opus_20240229,
		anthropic.ModelClaude_3_Haiku_20240307,
	}

	result := make([]ModelInfo, 0, len(models))
	for _, m := range models {
		result = append(result, ModelInfo{
			Name:     string(m),
			Provider: string(ProviderTypeAnthropic),
		})
	}
	return result, nil
}

// GetModel implements Provider.GetModel.
func (p *AnthropicProvider) GetModel() string {
	return string(p.model)
}

// SetModel implements Provider.SetModel.
func (p *AnthropicProvider) SetModel(model string) {
	p.model = anthropic.Model(model)
}

// Ping implements Provider.Ping with a minimal one-token request,
// since Anthropic has no health endpoint.
func (p *AnthropicProvider) Ping(ctx context.Context) error {
	_, err := p.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     p.model,
		MaxTokens: 1,
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock("ping")),
		},
	})
	if err != nil {
		return fmt.Errorf("ping failed: %w", err)
	}
	return nil
}
