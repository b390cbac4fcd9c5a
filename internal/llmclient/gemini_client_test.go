package llmclient

import (
	"context"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

const generateContentResponse = `{
  "candidates": [{"content": {"role": "model", "parts": [{"text": "Action: finished(content='ok')"}]}, "finishReason": "STOP"}],
  "usageMetadata": {"promptTokenCount": 12, "candidatesTokenCount": 4, "totalTokenCount": 16}
}`

func TestGeminiClient_Complete(t *testing.T) {
	api := newFakeAPI(t, http.StatusOK, generateContentResponse)
	ctx := context.Background()
	client, err := NewGeminiClient(ctx, testLLMConfig("gemini", api.URL), zaptest.NewLogger(t))
	require.NoError(t, err)

	text, err := client.Complete(ctx, sampleTranscript())
	require.NoError(t, err)
	assert.Equal(t, "Action: finished(content='ok')", text)
	assert.True(t, strings.HasSuffix(api.lastPath(t), "models/test-model:generateContent"))

	body := api.lastBody(t)
	contents, ok := body["contents"].([]any)
	require.True(t, ok)
	require.Len(t, contents, 3)
	assert.Equal(t, "user", contents[0].(map[string]any)["role"])
	assert.Equal(t, "model", contents[1].(map[string]any)["role"])

	parts := contents[0].(map[string]any)["parts"].([]any)
	require.Len(t, parts, 2)
	inline := parts[1].(map[string]any)["inlineData"].(map[string]any)
	assert.Equal(t, "image/png", inline["mimeType"])
	assert.Equal(t, "cG5nLWJ5dGVz", inline["data"])
}

func TestGeminiClient_Errors(t *testing.T) {
	ctx := context.Background()

	t.Run("missing key", func(t *testing.T) {
		cfg := testLLMConfig("gemini", "")
		cfg.APIKey = ""
		_, err := NewGeminiClient(ctx, cfg, zaptest.NewLogger(t))
		assert.ErrorContains(t, err, "API Key is required")
	})

	t.Run("blocked prompt", func(t *testing.T) {
		api := newFakeAPI(t, http.StatusOK, `{"candidates":[],"promptFeedback":{"blockReason":"SAFETY"}}`)
		client, err := NewGeminiClient(ctx, testLLMConfig("gemini", api.URL), zaptest.NewLogger(t))
		require.NoError(t, err)

		_, err = client.Complete(ctx, sampleTranscript())
		assert.ErrorContains(t, err, "blocked")
	})

	t.Run("empty parts", func(t *testing.T) {
		api := newFakeAPI(t, http.StatusOK, `{"candidates":[{"content":{"role":"model","parts":[]},"finishReason":"MAX_TOKENS"}]}`)
		client, err := NewGeminiClient(ctx, testLLMConfig("gemini", api.URL), zaptest.NewLogger(t))
		require.NoError(t, err)

		_, err = client.Complete(ctx, sampleTranscript())
		assert.ErrorContains(t, err, "MAX_TOKENS")
	})
}
