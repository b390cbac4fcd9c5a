package llmclient

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/xkilldash9x/webpilot/api/schemas"
)

const messageResponse = `{
  "id": "msg_1",
  "type": "message",
  "role": "assistant",
  "model": "test-model",
  "content": [
    {"type": "text", "text": "Let me look."},
    {"type": "tool_use", "id": "toolu_1", "name": "computer", "input": {"action": "screenshot"}}
  ],
  "stop_reason": "tool_use",
  "usage": {"input_tokens": 20, "output_tokens": 8}
}`

func toolTranscript() []schemas.Entry {
	return []schemas.Entry{
		{Role: schemas.RoleUser, Blocks: []schemas.ContentBlock{schemas.TextBlock("check the page")}},
		{Role: schemas.RoleAssistant, Blocks: []schemas.ContentBlock{{
			Type: schemas.BlockToolUse, ToolUseID: "toolu_0", ToolName: "computer",
			ToolInput: json.RawMessage(`{"action":"screenshot"}`),
		}}},
		{Role: schemas.RoleUser, Blocks: []schemas.ContentBlock{
			schemas.ToolResult{Image: []byte("png-bytes")}.ToBlock("toolu_0"),
		}},
	}
}

func TestAnthropicClient_Next(t *testing.T) {
	api := newFakeAPI(t, http.StatusOK, messageResponse)
	client, err := NewAnthropicClient(testLLMConfig("anthropic", api.URL), zaptest.NewLogger(t))
	require.NoError(t, err)

	tools := []schemas.ToolDescriptor{{
		Name:        "set_url",
		Description: "Navigate to a URL.",
		Params:      []schemas.ParamSpec{{Name: "url", Type: schemas.ParamString, Required: true}},
	}}
	entry, err := client.Next(context.Background(), schemas.ToolRequest{
		System:  "be careful",
		Entries: toolTranscript(),
		Tools:   tools,
	})
	require.NoError(t, err)

	assert.Equal(t, schemas.RoleAssistant, entry.Role)
	require.Len(t, entry.Blocks, 2)
	assert.Equal(t, "Let me look.", entry.Blocks[0].Text)
	uses := entry.ToolUses()
	require.Len(t, uses, 1)
	assert.Equal(t, "toolu_1", uses[0].ToolUseID)
	assert.Equal(t, "computer", uses[0].ToolName)
	assert.JSONEq(t, `{"action":"screenshot"}`, string(uses[0].ToolInput))

	assert.Equal(t, "/v1/messages", api.lastPath(t))
	body := api.lastBody(t)
	assert.EqualValues(t, 1000, body["max_tokens"])

	system := body["system"].([]any)
	assert.Equal(t, "be careful", system[0].(map[string]any)["text"])

	sentTools := body["tools"].([]any)
	require.Len(t, sentTools, 1)
	tool := sentTools[0].(map[string]any)
	assert.Equal(t, "set_url", tool["name"])
	schema := tool["input_schema"].(map[string]any)
	assert.Equal(t, "object", schema["type"])
	assert.Equal(t, []any{"url"}, schema["required"])

	msgs := body["messages"].([]any)
	require.Len(t, msgs, 3)
	result := msgs[2].(map[string]any)["content"].([]any)[0].(map[string]any)
	assert.Equal(t, "tool_result", result["type"])
	assert.Equal(t, "toolu_0", result["tool_use_id"])
	img := result["content"].([]any)[0].(map[string]any)
	assert.Equal(t, "image", img["type"])
	assert.Equal(t, "cG5nLWJ5dGVz", img["source"].(map[string]any)["data"])
}

func TestAnthropicClient_ErrorResultIsFlagged(t *testing.T) {
	block := toolResultParam(schemas.ErrorResult("invalid action: teleport").ToBlock("toolu_9"))
	require.NotNil(t, block.OfToolResult)
	assert.Equal(t, "toolu_9", block.OfToolResult.ToolUseID)
	assert.True(t, block.OfToolResult.IsError.Value)
	require.Len(t, block.OfToolResult.Content, 1)
	assert.Equal(t, "invalid action: teleport", block.OfToolResult.Content[0].OfText.Text)
}

func TestAnthropicClient_Errors(t *testing.T) {
	t.Run("missing key", func(t *testing.T) {
		cfg := testLLMConfig("anthropic", "")
		cfg.APIKey = ""
		_, err := NewAnthropicClient(cfg, zaptest.NewLogger(t))
		assert.Error(t, err)
	})

	t.Run("api error", func(t *testing.T) {
		api := newFakeAPI(t, http.StatusBadRequest, `{"type":"error","error":{"type":"invalid_request_error","message":"bad tools"}}`)
		client, err := NewAnthropicClient(testLLMConfig("anthropic", api.URL), zaptest.NewLogger(t))
		require.NoError(t, err)

		_, err = client.Next(context.Background(), schemas.ToolRequest{Entries: toolTranscript()})
		assert.ErrorContains(t, err, "anthropic messages request failed")
	})
}
