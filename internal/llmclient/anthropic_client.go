package llmclient

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"go.uber.org/zap"

	"github.com/xkilldash9x/webpilot/api/schemas"
	"github.com/xkilldash9x/webpilot/internal/config"
)

// AnthropicClient implements schemas.ToolModel over the Messages API with
// the browser tools declared as custom tools.
type AnthropicClient struct {
	client anthropic.Client
	cfg    config.LLMConfig
	logger *zap.Logger
}

// NewAnthropicClient initializes the client.
func NewAnthropicClient(cfg config.LLMConfig, logger *zap.Logger) (*AnthropicClient, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("Anthropic API Key is required")
	}
	opts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
		option.WithMaxRetries(maxRetries),
	}
	if cfg.Endpoint != "" {
		opts = append(opts, option.WithBaseURL(cfg.Endpoint))
	}
	if cfg.RequestTimeout > 0 {
		opts = append(opts, option.WithRequestTimeout(cfg.RequestTimeout))
	}

	return &AnthropicClient{
		client: anthropic.NewClient(opts...),
		cfg:    cfg,
		logger: logger.Named("llm_client.anthropic"),
	}, nil
}

// Next sends one tool-loop turn and converts the reply into an assistant entry.
func (c *AnthropicClient) Next(ctx context.Context, req schemas.ToolRequest) (schemas.Entry, error) {
	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(c.cfg.Model),
		MaxTokens: int64(c.cfg.MaxTokens),
		Messages:  messageParams(req.Entries),
		Tools:     toolParams(req.Tools),
	}
	if req.System != "" {
		params.System = []anthropic.TextBlockParam{{Text: req.System}}
	}
	if c.cfg.Temperature > 0 {
		params.Temperature = anthropic.Float(c.cfg.Temperature)
	}

	start := time.Now()
	msg, err := c.client.Messages.New(ctx, params)
	if err != nil {
		return schemas.Entry{}, fmt.Errorf("anthropic messages request failed: %w", err)
	}

	c.logger.Info("LLM generation complete (Anthropic)",
		zap.Duration("duration", time.Since(start)),
		zap.String("stop_reason", string(msg.StopReason)),
		zap.Int64("prompt_tokens", msg.Usage.InputTokens),
		zap.Int64("completion_tokens", msg.Usage.OutputTokens),
	)

	entry := schemas.Entry{Role: schemas.RoleAssistant}
	for _, block := range msg.Content {
		switch block.Type {
		case "text":
			entry.Blocks = append(entry.Blocks, schemas.TextBlock(block.Text))
		case "tool_use":
			entry.Blocks = append(entry.Blocks, schemas.ContentBlock{
				Type:      schemas.BlockToolUse,
				ToolUseID: block.ID,
				ToolName:  block.Name,
				ToolInput: append(json.RawMessage(nil), block.Input...),
			})
		default:
			c.logger.Debug("Ignoring unsupported content block.", zap.String("type", block.Type))
		}
	}
	return entry, nil
}

func messageParams(entries []schemas.Entry) []anthropic.MessageParam {
	msgs := make([]anthropic.MessageParam, 0, len(entries))
	for _, e := range entries {
		blocks := make([]anthropic.ContentBlockParamUnion, 0, len(e.Blocks))
		for _, b := range e.Blocks {
			switch b.Type {
			case schemas.BlockText:
				if b.Text != "" {
					blocks = append(blocks, anthropic.NewTextBlock(b.Text))
				}
			case schemas.BlockImage:
				if b.Image != nil {
					blocks = append(blocks, anthropic.NewImageBlockBase64(b.Image.MediaType, base64.StdEncoding.EncodeToString(b.Image.Data)))
				}
			case schemas.BlockToolUse:
				input := b.ToolInput
				if len(input) == 0 {
					input = json.RawMessage(`{}`)
				}
				blocks = append(blocks, anthropic.NewToolUseBlock(b.ToolUseID, input, b.ToolName))
			case schemas.BlockToolResult:
				blocks = append(blocks, toolResultParam(b))
			}
		}
		if len(blocks) == 0 {
			continue
		}
		if e.Role == schemas.RoleAssistant {
			msgs = append(msgs, anthropic.NewAssistantMessage(blocks...))
		} else {
			msgs = append(msgs, anthropic.NewUserMessage(blocks...))
		}
	}
	return msgs
}

func toolResultParam(b schemas.ContentBlock) anthropic.ContentBlockParamUnion {
	result := &anthropic.ToolResultBlockParam{ToolUseID: b.ToolUseID}
	if b.IsError {
		result.IsError = anthropic.Bool(true)
	}
	for _, c := range b.Content {
		switch c.Type {
		case schemas.BlockText:
			result.Content = append(result.Content, anthropic.ToolResultBlockParamContentUnion{
				OfText: &anthropic.TextBlockParam{Text: c.Text},
			})
		case schemas.BlockImage:
			if c.Image == nil {
				continue
			}
			result.Content = append(result.Content, anthropic.ToolResultBlockParamContentUnion{
				OfImage: &anthropic.ImageBlockParam{
					Source: anthropic.ImageBlockParamSourceUnion{
						OfBase64: &anthropic.Base64ImageSourceParam{
							Data:      base64.StdEncoding.EncodeToString(c.Image.Data),
							MediaType: anthropic.Base64ImageSourceMediaType(c.Image.MediaType),
						},
					},
				},
			})
		}
	}
	return anthropic.ContentBlockParamUnion{OfToolResult: result}
}

func toolParams(descriptors []schemas.ToolDescriptor) []anthropic.ToolUnionParam {
	tools := make([]anthropic.ToolUnionParam, 0, len(descriptors))
	for _, d := range descriptors {
		tools = append(tools, anthropic.ToolUnionParam{
			OfTool: &anthropic.ToolParam{
				Name:        d.Name,
				Description: anthropic.String(d.Description),
				InputSchema: anthropic.ToolInputSchemaParam{
					Properties: d.Properties(),
					Required:   d.RequiredParams(),
				},
			},
		})
	}
	return tools
}

// Close is a no-op; the SDK client holds no resources.
func (c *AnthropicClient) Close() error { return nil }
