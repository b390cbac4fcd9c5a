package llmclient

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/xkilldash9x/webpilot/internal/config"
)

func TestNewTextModel(t *testing.T) {
	ctx := context.Background()
	logger := zaptest.NewLogger(t)

	m, err := NewTextModel(ctx, testLLMConfig(config.ProviderOpenAI, "http://localhost:8000/v1"), logger)
	require.NoError(t, err)
	assert.IsType(t, &OpenAIClient{}, m)

	m, err = NewTextModel(ctx, testLLMConfig("Gemini", ""), logger)
	require.NoError(t, err)
	assert.IsType(t, &GeminiClient{}, m)

	_, err = NewTextModel(ctx, testLLMConfig(config.ProviderAnthropic, ""), logger)
	assert.ErrorContains(t, err, "unsupported text model provider")
}

func TestNewToolModel(t *testing.T) {
	ctx := context.Background()
	logger := zaptest.NewLogger(t)

	m, err := NewToolModel(ctx, testLLMConfig(config.ProviderAnthropic, ""), logger)
	require.NoError(t, err)
	assert.IsType(t, &AnthropicClient{}, m)

	_, err = NewToolModel(ctx, testLLMConfig(config.ProviderOpenAI, ""), logger)
	assert.ErrorContains(t, err, "unsupported tool model provider")
}
