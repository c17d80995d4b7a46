// Package llm builds the chat model named by the configuration.
package llm

import (
	"context"
	"errors"
	"fmt"

	"github.com/cloudwego/eino-ext/components/model/openai"
	"github.com/cloudwego/eino/components/model"

	"github.com/tbxark/tripagent/config"
)

var ErrMissingAPIKey = errors.New("api key is required")

// New returns an OpenAI compatible model or a Gemini model depending on cfg.Provider.
func New(ctx context.Context, cfg *config.Config) (model.BaseChatModel, error) {
	switch cfg.Provider {
	case config.ProviderGemini:
		return NewGemini(ctx, cfg.APIKey, cfg.Model)
	case config.ProviderOpenAI, "":
		return NewOpenAI(ctx, cfg)
	default:
		return nil, fmt.Errorf("unknown provider %q", cfg.Provider)
	}
}

func NewOpenAI(ctx context.Context, cfg *config.Config) (model.ToolCallingChatModel, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("openai: %w", ErrMissingAPIKey)
	}
	cm, err := openai.NewChatModel(ctx, &openai.ChatModelConfig{
		APIKey:  cfg.APIKey,
		Model:   cfg.Model,
		BaseURL: cfg.BaseURL,
	})
	if err != nil {
		return nil, fmt.Errorf("create openai chat model: %w", err)
	}
	return cm, nil
}
