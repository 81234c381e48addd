package llm

import (
	"context"
	"fmt"
	"time"

	"github.com/cloudwego/eino-ext/components/model/ark"
	"github.com/cloudwego/eino-ext/components/model/openai"
	"github.com/cloudwego/eino/components/model"
)

type ProviderKind string

const (
	ProviderOpenAI     ProviderKind = "openai"
	ProviderCompatible ProviderKind = "openai_compatible"
	ProviderArk        ProviderKind = "ark"
)

type ProviderConfig struct {
	Kind        ProviderKind
	APIKey      string
	Model       string
	BaseURL     string
	MaxTokens   int
	Temperature float32
	Timeout     time.Duration
}

type Factory struct{}

func NewFactory() *Factory {
	return &Factory{}
}

// CreateChatModel builds the generation model for the configured provider.
func (f *Factory) CreateChatModel(ctx context.Context, cfg *ProviderConfig) (model.BaseChatModel, error) {
	if cfg == nil {
		return nil, fmt.Errorf("provider config is nil")
	}
	if cfg.Model == "" {
		return nil, fmt.Errorf("model name is required")
	}

	var maxTokens *int
	if cfg.MaxTokens > 0 {
		maxTokens = &cfg.MaxTokens
	}
	temperature := cfg.Temperature

	switch cfg.Kind {
	case ProviderOpenAI, ProviderCompatible, "":
		return openai.NewChatModel(ctx, &openai.ChatModelConfig{
			APIKey:      cfg.APIKey,
			Model:       cfg.Model,
			BaseURL:     cfg.BaseURL,
			Timeout:     cfg.Timeout,
			MaxTokens:   maxTokens,
			Temperature: &temperature,
		})
	case ProviderArk:
		return ark.NewChatModel(ctx, &ark.ChatModelConfig{
			APIKey:      cfg.APIKey,
			Model:       cfg.Model,
			BaseURL:     cfg.BaseURL,
			MaxTokens:   maxTokens,
			Temperature: &temperature,
		})
	default:
		return nil, fmt.Errorf("unsupported provider: %s", cfg.Kind)
	}
}
