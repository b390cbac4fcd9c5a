package llmclient

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/xkilldash9x/webpilot/api/schemas"
	"github.com/xkilldash9x/webpilot/internal/config"
)

// NewTextModel creates the model behind the text-action loop.
func NewTextModel(ctx context.Context, cfg config.LLMConfig, logger *zap.Logger) (schemas.TextModel, error) {
	switch strings.ToLower(cfg.Provider) {
	case config.ProviderOpenAI:
		return NewOpenAIClient(cfg, logger)
	case config.ProviderGemini:
		return NewGeminiClient(ctx, cfg, logger)
	default:
		return nil, fmt.Errorf("unknown or unsupported text model provider configured: '%s'. Supported: [%s, %s]",
			cfg.Provider, config.ProviderOpenAI, config.ProviderGemini)
	}
}

// NewToolModel creates the model behind the tool-calling loop.
func NewToolModel(ctx context.Context, cfg config.LLMConfig, logger *zap.Logger) (schemas.ToolModel, error) {
	switch strings.ToLower(cfg.Provider) {
	case config.ProviderAnthropic:
		return NewAnthropicClient(cfg, logger)
	default:
		return nil, fmt.Errorf("unknown or unsupported tool model provider configured: '%s'. Supported: [%s]",
			cfg.Provider, config.ProviderAnthropic)
	}
}
