package llmclient

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"
	"google.golang.org/genai"

	"github.com/xkilldash9x/webpilot/api/schemas"
	"github.com/xkilldash9x/webpilot/internal/config"
)

// GeminiClient implements schemas.TextModel for Google Gemini models.
type GeminiClient struct {
	client *genai.Client
	cfg    config.LLMConfig
	logger *zap.Logger
}

// NewGeminiClient initializes the client.
func NewGeminiClient(ctx context.Context, cfg config.LLMConfig, logger *zap.Logger) (*GeminiClient, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("Gemini API Key is required")
	}

	clientCfg := &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	}
	if cfg.Endpoint != "" {
		clientCfg.HTTPOptions.BaseURL = cfg.Endpoint
	}
	if cfg.RequestTimeout > 0 {
		clientCfg.HTTPClient = &http.Client{Timeout: cfg.RequestTimeout}
	}

	client, err := genai.NewClient(ctx, clientCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	return &GeminiClient{
		client: client,
		cfg:    cfg,
		logger: logger.Named("llm_client.gemini"),
	}, nil
}

// Complete sends the transcript and returns the first candidate's text.
func (c *GeminiClient) Complete(ctx context.Context, entries []schemas.Entry) (string, error) {
	genCfg := &genai.GenerateContentConfig{
		Temperature:      genai.Ptr(float32(c.cfg.Temperature)),
		MaxOutputTokens:  int32(c.cfg.MaxTokens),
		FrequencyPenalty: genai.Ptr(float32(c.cfg.FrequencyPenalty)),
	}

	start := time.Now()
	resp, err := c.client.Models.GenerateContent(ctx, c.cfg.Model, contents(entries), genCfg)
	if err != nil {
		return "", fmt.Errorf("gemini generate content failed: %w", err)
	}

	if len(resp.Candidates) == 0 {
		if resp.PromptFeedback != nil && resp.PromptFeedback.BlockReason != "" {
			return "", fmt.Errorf("gemini API blocked the request (Reason: %s)", resp.PromptFeedback.BlockReason)
		}
		return "", fmt.Errorf("gemini API returned no candidates")
	}
	candidate := resp.Candidates[0]
	if candidate.Content == nil || len(candidate.Content.Parts) == 0 {
		return "", fmt.Errorf("gemini API returned empty content parts (Reason: %s)", candidate.FinishReason)
	}

	fields := []zap.Field{zap.Duration("duration", time.Since(start))}
	if usage := resp.UsageMetadata; usage != nil {
		fields = append(fields,
			zap.Int32("prompt_tokens", usage.PromptTokenCount),
			zap.Int32("completion_tokens", usage.CandidatesTokenCount),
			zap.Int32("total_tokens", usage.TotalTokenCount),
		)
	}
	c.logger.Info("LLM generation complete (Gemini)", fields...)

	return resp.Text(), nil
}

func contents(entries []schemas.Entry) []*genai.Content {
	out := make([]*genai.Content, 0, len(entries))
	for _, e := range entries {
		parts := flatten(e.Blocks)
		if len(parts) == 0 {
			continue
		}
		role := string(genai.RoleUser)
		if e.Role == schemas.RoleAssistant {
			role = string(genai.RoleModel)
		}
		content := &genai.Content{Role: role}
		for _, p := range parts {
			if p.image != nil {
				content.Parts = append(content.Parts, genai.NewPartFromBytes(p.image.Data, p.image.MediaType))
				continue
			}
			content.Parts = append(content.Parts, genai.NewPartFromText(p.text))
		}
		out = append(out, content)
	}
	return out
}

// Close is a no-op; genai clients hold no resources that need releasing.
func (c *GeminiClient) Close() error { return nil }
