package llmclient

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/xkilldash9x/webpilot/api/schemas"
	"github.com/xkilldash9x/webpilot/internal/config"
)

// fakeAPI is an httptest server that records request bodies and answers
// with a canned status and payload.
type fakeAPI struct {
	*httptest.Server
	mu     sync.Mutex
	paths  []string
	bodies []map[string]any
}

func newFakeAPI(t *testing.T, status int, payload string) *fakeAPI {
	t.Helper()
	f := &fakeAPI{}
	f.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		var body map[string]any
		_ = json.Unmarshal(raw, &body)

		f.mu.Lock()
		f.paths = append(f.paths, r.URL.Path)
		f.bodies = append(f.bodies, body)
		f.mu.Unlock()

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = io.WriteString(w, payload)
	}))
	t.Cleanup(f.Close)
	return f
}

func (f *fakeAPI) lastBody(t *testing.T) map[string]any {
	t.Helper()
	f.mu.Lock()
	defer f.mu.Unlock()
	require.NotEmpty(t, f.bodies, "no request reached the fake API")
	return f.bodies[len(f.bodies)-1]
}

func (f *fakeAPI) lastPath(t *testing.T) string {
	t.Helper()
	f.mu.Lock()
	defer f.mu.Unlock()
	require.NotEmpty(t, f.paths)
	return f.paths[len(f.paths)-1]
}

func testLLMConfig(provider, endpoint string) config.LLMConfig {
	return config.LLMConfig{
		Provider:         provider,
		Model:            "test-model",
		APIKey:           "test-api-key",
		Endpoint:         endpoint,
		MaxTokens:        1000,
		FrequencyPenalty: 1,
		RequestTimeout:   5 * time.Second,
	}
}

func sampleTranscript() []schemas.Entry {
	return []schemas.Entry{
		{Role: schemas.RoleUser, Blocks: []schemas.ContentBlock{
			schemas.TextBlock("open the docs"),
			schemas.ImageBlock([]byte("png-bytes")),
		}},
		{Role: schemas.RoleAssistant, Blocks: []schemas.ContentBlock{schemas.TextBlock("Action: wait()")}},
		{Role: schemas.RoleUser, Blocks: []schemas.ContentBlock{schemas.ImageBlock([]byte("png-2"))}},
	}
}
