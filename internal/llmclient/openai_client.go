package llmclient

import (
	"context"
	"fmt"
	"time"

	"github.com/openai/openai-go/v2"
	"github.com/openai/openai-go/v2/option"
	"go.uber.org/zap"

	"github.com/xkilldash9x/webpilot/api/schemas"
	"github.com/xkilldash9x/webpilot/internal/config"
)

const maxRetries = 2

// OpenAIClient implements schemas.TextModel against any OpenAI-compatible
// chat completions endpoint, including self-hosted UI-TARS servers.
type OpenAIClient struct {
	client openai.Client
	cfg    config.LLMConfig
	logger *zap.Logger
}

// NewOpenAIClient initializes the client. An empty endpoint targets api.openai.com.
func NewOpenAIClient(cfg config.LLMConfig, logger *zap.Logger) (*OpenAIClient, error) {
	if cfg.Model == "" {
		return nil, fmt.Errorf("openai model is required")
	}
	opts := []option.RequestOption{
		option.WithMaxRetries(maxRetries),
	}
	if cfg.APIKey != "" {
		opts = append(opts, option.WithAPIKey(cfg.APIKey))
	} else {
		// Self-hosted servers usually ignore the key but the header must be present.
		opts = append(opts, option.WithAPIKey("empty"))
	}
	if cfg.Endpoint != "" {
		opts = append(opts, option.WithBaseURL(cfg.Endpoint))
	}
	if cfg.RequestTimeout > 0 {
		opts = append(opts, option.WithRequestTimeout(cfg.RequestTimeout))
	}

	return &OpenAIClient{
		client: openai.NewClient(opts...),
		cfg:    cfg,
		logger: logger.Named("llm_client.openai"),
	}, nil
}

// Complete sends the transcript and returns the first choice's text.
func (c *OpenAIClient) Complete(ctx context.Context, entries []schemas.Entry) (string, error) {
	params := openai.ChatCompletionNewParams{
		Model:            openai.ChatModel(c.cfg.Model),
		Messages:         c.messages(entries),
		MaxTokens:        openai.Int(int64(c.cfg.MaxTokens)),
		Temperature:      openai.Float(c.cfg.Temperature),
		FrequencyPenalty: openai.Float(c.cfg.FrequencyPenalty),
	}

	start := time.Now()
	resp, err := c.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return "", fmt.Errorf("openai chat completion failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("openai API returned no choices")
	}

	c.logger.Info("LLM generation complete (OpenAI)",
		zap.Duration("duration", time.Since(start)),
		zap.String("finish_reason", resp.Choices[0].FinishReason),
		zap.Int64("prompt_tokens", resp.Usage.PromptTokens),
		zap.Int64("completion_tokens", resp.Usage.CompletionTokens),
		zap.Int64("total_tokens", resp.Usage.TotalTokens),
	)
	return resp.Choices[0].Message.Content, nil
}

func (c *OpenAIClient) messages(entries []schemas.Entry) []openai.ChatCompletionMessageParamUnion {
	msgs := make([]openai.ChatCompletionMessageParamUnion, 0, len(entries))
	for _, e := range entries {
		parts := flatten(e.Blocks)
		if len(parts) == 0 {
			continue
		}
		if e.Role == schemas.RoleAssistant {
			msgs = append(msgs, openai.AssistantMessage(joinText(parts)))
			continue
		}
		content := make([]openai.ChatCompletionContentPartUnionParam, 0, len(parts))
		for _, p := range parts {
			if p.image != nil {
				content = append(content, openai.ImageContentPart(openai.ChatCompletionContentPartImageImageURLParam{
					URL: dataURL(p.image),
				}))
				continue
			}
			content = append(content, openai.TextContentPart(p.text))
		}
		msgs = append(msgs, openai.UserMessage(content))
	}
	return msgs
}

// Close is a no-op; the SDK client holds no resources.
func (c *OpenAIClient) Close() error { return nil }
